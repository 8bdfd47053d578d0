package watchdog_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/nsneverhax/nhxinfobot/models"
	"github.com/nsneverhax/nhxinfobot/watchdog"
)

func testScorer() *watchdog.Scorer {
	return watchdog.NewScorer(models.ScamPitchConfig{
		MinTextLen: 280,
		Phrases:    []string{"DM me", "open to projects"},
		Keywords:   []string{"blockchain", "web3", "defi", "solana", "nft"},
	})
}

func TestScorerAdditiveRules(t *testing.T) {
	t.Parallel()

	filler := strings.Repeat("lorem ipsum ", 25) // 300 chars

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "empty", text: "", want: 0},
		{name: "blank", text: " \n\t", want: 0},
		{name: "plain chat", text: "hello there", want: 0},
		{name: "length only", text: filler, want: 2},
		{name: "phrase only", text: "dm me", want: 4},
		{name: "phrase counted once", text: "dm me, DM ME, open to projects", want: 4},
		{name: "one keyword", text: "i like nft", want: 1},
		{name: "two keywords", text: "nft and defi", want: 2},
		{name: "three keywords", text: "nft defi web3", want: 2},
		{name: "four keywords", text: "nft defi web3 solana", want: 3},
		{name: "repeated keyword counts once", text: "nft nft nft", want: 1},
		{name: "one label line", text: "Stack: go", want: 0},
		{name: "two label lines", text: "Stack: go\nRole: backend", want: 1},
		{
			name: "three label lines",
			text: "Stack: go\nRole: backend\nRate: hourly",
			want: 2,
		},
		{
			name: "long label line ignored",
			text: "Stack: go\n" + "Role: " + strings.Repeat("x", 60),
			want: 0,
		},
		{name: "bullet needs newline", text: "• one • two", want: 0},
		{name: "bullet with newline", text: "• one\n• two", want: 1},
		{name: "dash bullet", text: "things\n- one", want: 1},
		{
			name: "full pitch",
			text: "Blockchain: smart contracts\nWeb3: dapps\nI also do defi work, dm me for details " + filler,
			// length 2 + phrase 4 + three keywords 2 + two label lines 1
			want: 9,
		},
		{
			name: "full pitch with bullets",
			text: "Blockchain: smart contracts\nWeb3: dapps\n• defi work, dm me " + filler,
			want: 10,
		},
	}

	s := testScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.Score(tt.text))
		})
	}
}

func TestScorerLineBreaks(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		text string
		want int
	}{
		{name: "crlf", text: "Stack: go\r\nRole: backend\r\nRate: hourly", want: 2},
		{name: "line separator", text: "Stack: go\u2028Role: backend\u2028Rate: hourly", want: 2},
		{name: "paragraph separator and nel", text: "Stack: go\u2029Role: backend\u0085Rate: hourly", want: 2},
		{name: "vertical tab and form feed", text: "Stack: go\vRole: backend", want: 1},
		{name: "record separators", text: "Stack: go\x1cRole: backend\x1dRate: hourly\x1eTZ: utc", want: 2},
		{name: "single line", text: "Stack: go Role: backend Rate: hourly", want: 0},
	}

	s := testScorer()
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, s.Score(tt.text))
		})
	}
}

func TestIsNewMember(t *testing.T) {
	t.Parallel()

	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	member := func(joined time.Time) watchdog.Author {
		return watchdog.Author{ID: "1", Member: &watchdog.MemberInfo{JoinedAt: joined}}
	}

	tests := []struct {
		name   string
		author watchdog.Author
		want   bool
	}{
		{name: "bare user", author: watchdog.Author{ID: "1"}, want: false},
		{name: "unknown join time", author: member(time.Time{}), want: false},
		{name: "joined today", author: member(now.Add(-time.Hour)), want: true},
		{name: "joined 2 days ago", author: member(now.Add(-48 * time.Hour)), want: true},
		{name: "14 days and change", author: member(now.Add(-14*24*time.Hour - 23*time.Hour)), want: true},
		{name: "15 days", author: member(now.Add(-15 * 24 * time.Hour)), want: false},
		{name: "old member", author: member(now.AddDate(-1, 0, 0)), want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, watchdog.IsNewMember(tt.author, now, 14))
		})
	}
}
