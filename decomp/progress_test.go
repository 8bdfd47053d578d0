package decomp_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nsneverhax/nhxinfobot/decomp"
	"github.com/nsneverhax/nhxinfobot/models"
)

const progressJSON = `{
  "rb3": {
    "SZBE69_B8": {
      "dol": [
        {
          "timestamp": 1741122900,
          "git_hash": "0123456789abcdef",
          "measures": {
            "matched_code": 250, "matched_code/total": 1000,
            "code": 100, "code/total": 1000,
            "matched_data": 1, "matched_data/total": 3,
            "matched_functions": 50, "matched_functions/total": 200
          }
        },
        {"timestamp": 1, "git_hash": "old", "measures": {}}
      ]
    }
  }
}`

func testConfig(url string) models.DecompConfig {
	return models.DecompConfig{
		URL:      url,
		Project:  "rb3",
		Version:  "SZBE69_B8",
		Category: "dol",
		Title:    "Rock Band 3 Decompilation",
		Link:     "https://rb3dx.milohax.org/decomp",
	}
}

func TestSummary(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, progressJSON)
	}))
	defer srv.Close()

	got, err := decomp.NewClient(testConfig(srv.URL), nil).Summary(context.Background())
	require.NoError(t, err)

	want := "# Rock Band 3 Decompilation\n" +
		"Last commit: **March 04 2025, 09:15:00 PM** *(0123456)*\n\n" +
		"**25.00%** matched code\n" +
		"**10.00%** linked code (i.e. fully complete, in-order)\n" +
		"**33.33%** matched data\n" +
		"**25.00%** matching functions\n\n" +
		"<https://rb3dx.milohax.org/decomp>"
	assert.Equal(t, want, got)
}

func TestFetchErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		project string
	}{
		{name: "server error", status: http.StatusInternalServerError},
		{name: "bad json", status: http.StatusOK, body: "{"},
		{name: "missing project", status: http.StatusOK, body: progressJSON, project: "rb2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, tt.body)
			}))
			defer srv.Close()

			cfg := testConfig(srv.URL)
			if tt.project != "" {
				cfg.Project = tt.project
			}
			_, err := decomp.NewClient(cfg, nil).Fetch(context.Background())
			assert.Error(t, err)
		})
	}
}

func TestFormatZeroTotals(t *testing.T) {
	t.Parallel()

	out := decomp.Format(&decomp.Entry{Timestamp: 0, GitHash: "abc"}, "T", "https://x.test")
	assert.Contains(t, out, "*(abc)*")
	assert.Contains(t, out, "**0.00%** matched code")
	assert.Contains(t, out, "January 01 1970, 12:00:00 AM")
}
