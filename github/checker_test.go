package github_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/nsneverhax/nhxinfobot/github"
	"github.com/nsneverhax/nhxinfobot/models"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

type fakeRepo struct {
	runAge    time.Duration // zero means no runs
	artifacts int
	status    int // non-zero fails the runs endpoint
}

func fakeGitHub(t *testing.T, owner string, listed []string, repos map[string]fakeRepo) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/users/"+owner+"/repos", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "token secret", r.Header.Get("Authorization"))
		assert.Equal(t, "100", r.URL.Query().Get("per_page"))
		parts := make([]string, len(listed))
		for i, name := range listed {
			parts[i] = fmt.Sprintf(`{"name":%q}`, name)
		}
		fmt.Fprintf(w, "[%s]", strings.Join(parts, ","))
	})
	mux.HandleFunc("/repos/", func(w http.ResponseWriter, r *http.Request) {
		// /repos/{owner}/{name}/actions/runs[/{id}/artifacts]
		parts := strings.Split(strings.TrimPrefix(r.URL.Path, "/repos/"), "/")
		full := parts[0] + "/" + parts[1]
		repo, ok := repos[full]
		if !ok {
			http.NotFound(w, r)
			return
		}

		if len(parts) == 4 {
			if repo.status != 0 {
				w.WriteHeader(repo.status)
				return
			}
			if repo.runAge == 0 {
				fmt.Fprint(w, `{"total_count":0,"workflow_runs":[]}`)
				return
			}
			created := now.Add(-repo.runAge).Format(time.RFC3339)
			fmt.Fprintf(w, `{"workflow_runs":[{"id":7,"created_at":%q,"html_url":"https://github.com/%s/actions/runs/7"}]}`, created, full)
			return
		}

		items := make([]string, repo.artifacts)
		for i := range items {
			items[i] = fmt.Sprintf(`{"id":%d}`, i+1)
		}
		fmt.Fprintf(w, `{"artifacts":[%s]}`, strings.Join(items, ","))
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

const day = 24 * time.Hour

func TestCheck(t *testing.T) {
	t.Parallel()

	srv := fakeGitHub(t, "nsneverhax",
		[]string{"fresh", "stale", "noart", "noruns", "broken", "ignored", "edge"},
		map[string]fakeRepo{
			"nsneverhax/fresh":   {runAge: 10 * day, artifacts: 2},
			"nsneverhax/stale":   {runAge: 100 * day, artifacts: 1},
			"nsneverhax/noart":   {runAge: 200 * day},
			"nsneverhax/noruns":  {},
			"nsneverhax/broken":  {status: http.StatusForbidden},
			"nsneverhax/ignored": {runAge: 300 * day, artifacts: 1},
			"nsneverhax/edge":    {runAge: 89*day + time.Hour, artifacts: 1},
			"other/tool":         {runAge: 120 * day, artifacts: 3},
		})

	client := github.NewClient(srv.URL, "secret", 0, zaptest.NewLogger(t))
	checker := github.NewChecker(client, models.ActionsConfig{
		Owner:        "nsneverhax",
		IgnoredRepos: []string{"ignored"},
		ExtraRepos:   []string{"other/tool", "stale", "nsneverhax/fresh"},
		Concurrency:  3,
	}, zaptest.NewLogger(t), github.WithNow(func() time.Time { return now }))

	repos, err := checker.MonitoredRepos(context.Background())
	require.NoError(t, err)
	assert.Len(t, repos, 7, "ignored dropped, duplicates folded")
	assert.Equal(t, github.RepoRef{Owner: "other", Name: "tool"}, repos[len(repos)-1])

	stale, err := checker.Check(context.Background())
	require.NoError(t, err)
	require.Len(t, stale, 3)

	assert.Equal(t, "stale", stale[0].Display)
	assert.Equal(t, "edge", stale[1].Display)
	assert.Equal(t, "other/tool", stale[2].Display)
	assert.Equal(t, "https://github.com/other/tool/actions/runs/7", stale[2].URL)
	assert.True(t, now.Add(-100*day).Equal(stale[0].LastRun))
}

func TestCheckListFailure(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	checker := github.NewChecker(github.NewClient(srv.URL, "", 0, nil), models.ActionsConfig{Owner: "x"}, nil)
	_, err := checker.Check(context.Background())

	var se *github.StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, http.StatusUnauthorized, se.StatusCode)
}

func TestClientRetriesServerErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		fmt.Fprint(w, `[{"name":"a"},{"name":"b"}]`)
	}))
	defer srv.Close()

	names, err := github.NewClient(srv.URL, "", 0, nil).ListUserRepos(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
	assert.Equal(t, int32(2), calls.Load())
}

func TestClientDoesNotRetryClientErrors(t *testing.T) {
	t.Parallel()

	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.NotFound(w, r)
	}))
	defer srv.Close()

	run, err := github.NewClient(srv.URL, "", 0, nil).LatestRun(context.Background(), "x", "y")
	assert.Error(t, err)
	assert.Nil(t, run)
	assert.Equal(t, int32(1), calls.Load())
}

func TestReportEmbed(t *testing.T) {
	t.Parallel()

	assert.Nil(t, github.ReportEmbed(nil, 89))

	embed := github.ReportEmbed([]github.StaleRepo{
		{Display: "milo", LastRun: time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC), URL: "https://x.test/1"},
		{Display: "other/tool", LastRun: time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC), URL: "https://x.test/2"},
	}, 89)

	require.NotNil(t, embed)
	assert.Equal(t, "🛠️ Stale GitHub Actions", embed.Title)
	assert.Equal(t, "Workflows with no runs in the last 89 days:", embed.Description)
	assert.Equal(t, 0xe67e22, embed.Color)
	require.Len(t, embed.Fields, 1)
	assert.Equal(t, "2 stale repos", embed.Fields[0].Name)
	assert.Equal(t,
		"• **milo** — last run `2025-01-02`: <https://x.test/1>\n• **other/tool** — last run `2024-12-31`: <https://x.test/2>",
		embed.Fields[0].Value)
}

func TestReportEmbedSplitsLongReports(t *testing.T) {
	t.Parallel()

	stale := make([]github.StaleRepo, 40)
	for i := range stale {
		stale[i] = github.StaleRepo{
			Display: fmt.Sprintf("repository-with-a-long-name-%02d", i),
			LastRun: now,
			URL:     fmt.Sprintf("https://github.com/nsneverhax/repository-with-a-long-name-%02d/actions/runs/%d", i, i),
		}
	}

	embed := github.ReportEmbed(stale, 89)
	require.Greater(t, len(embed.Fields), 1)
	assert.Equal(t, "40 stale repos", embed.Fields[0].Name)

	lines := 0
	for _, f := range embed.Fields {
		assert.LessOrEqual(t, len(f.Value), 1024)
		lines += len(strings.Split(f.Value, "\n"))
	}
	assert.Equal(t, 40, lines)
}
