package triggers_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/nsneverhax/nhxinfobot/triggers"
)

func TestParseCommand(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		want    triggers.Command
		ok      bool
	}{
		{name: "empty", content: "   ", ok: false},
		{name: "no prefix", content: "hello there", ok: false},
		{name: "english", content: "!Dolphin", want: triggers.Command{Prefix: "!", Name: "dolphin"}, ok: true},
		{name: "spanish", content: "¡ayuda", want: triggers.Command{Prefix: "¡", Name: "ayuda"}, ok: true},
		{name: "portuguese", content: "@ajuda", want: triggers.Command{Prefix: "@", Name: "ajuda"}, ok: true},
		{name: "mid sentence", content: "how do I use !xenia please", want: triggers.Command{Prefix: "!", Name: "xenia"}, ok: true},
		{name: "first command wins", content: "try @golfinho or !dolphin", want: triggers.Command{Prefix: "@", Name: "golfinho"}, ok: true},
		{name: "bare prefix", content: "wow !", want: triggers.Command{Prefix: "!", Name: ""}, ok: true},
		{name: "mention is not a command", content: "<@123> hi", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := triggers.ParseCommand(tt.content, triggers.DefaultPrefixes)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSplitMessage(t *testing.T) {
	t.Parallel()

	assert.Nil(t, triggers.SplitMessage("", 2000))
	assert.Equal(t, []string{"short"}, triggers.SplitMessage("short", 2000))

	// Cut at the last newline before the limit.
	text := strings.Repeat("a", 6) + "\n" + strings.Repeat("b", 6)
	assert.Equal(t, []string{"aaaaaa", "bbbbbb"}, triggers.SplitMessage(text, 10))

	// No newline means a hard cut.
	assert.Equal(t, []string{"aaaa", "aaaa", "aa"}, triggers.SplitMessage(strings.Repeat("a", 10), 4))

	// Leading newlines of the remainder are dropped.
	text = "abc\n\n\ndef"
	assert.Equal(t, []string{"abc\n", "def"}, triggers.SplitMessage(text, 5))

	// Limits count characters, not bytes.
	text = strings.Repeat("é", 5)
	assert.Equal(t, []string{text}, triggers.SplitMessage(text, 5))

	long := strings.Repeat(strings.Repeat("x", 99)+"\n", 50)
	for _, chunk := range triggers.SplitMessage(long, triggers.MaxMessageLen) {
		assert.LessOrEqual(t, len(chunk), triggers.MaxMessageLen)
		assert.False(t, strings.HasPrefix(chunk, "\n"))
	}
}
