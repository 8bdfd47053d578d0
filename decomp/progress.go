package decomp

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/bytedance/sonic"

	"github.com/nsneverhax/nhxinfobot/models"
)

// CommitTimeLayout renders commit times as "March 04 2025, 09:15:00 PM".
const CommitTimeLayout = "January 02 2006, 03:04:05 PM"

// Entry is one frogress data point.
type Entry struct {
	Timestamp int64              `json:"timestamp"`
	GitHash   string             `json:"git_hash"`
	Measures  map[string]float64 `json:"measures"`
}

// ratio returns measure/measure+"/total" as a percentage.
func (e *Entry) ratio(measure string) float64 {
	total := e.Measures[measure+"/total"]
	if total == 0 {
		return 0
	}
	return e.Measures[measure] / total * 100
}

// Client fetches progress from a frogress instance.
type Client struct {
	http *http.Client
	cfg  models.DecompConfig
}

func NewClient(cfg models.DecompConfig, hc *http.Client) *Client {
	if hc == nil {
		hc = &http.Client{Timeout: 15 * time.Second}
	}
	return &Client{http: hc, cfg: cfg}
}

// Fetch downloads the progress document and returns the latest entry for the
// configured project, version and category.
func (c *Client) Fetch(ctx context.Context) (*Entry, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build progress request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch progress: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("progress endpoint returned %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read progress: %w", err)
	}

	var doc map[string]map[string]map[string][]Entry
	if err := sonic.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("failed to decode progress: %w", err)
	}

	entries := doc[c.cfg.Project][c.cfg.Version][c.cfg.Category]
	if len(entries) == 0 {
		return nil, fmt.Errorf("no progress data for %s/%s/%s", c.cfg.Project, c.cfg.Version, c.cfg.Category)
	}
	return &entries[0], nil
}

// Summary fetches and formats the progress message.
func (c *Client) Summary(ctx context.Context) (string, error) {
	e, err := c.Fetch(ctx)
	if err != nil {
		return "", err
	}
	return Format(e, c.cfg.Title, c.cfg.Link), nil
}

// Format renders the markdown progress message.
func Format(e *Entry, title, link string) string {
	hash := e.GitHash
	if len(hash) > 7 {
		hash = hash[:7]
	}
	commit := time.Unix(e.Timestamp, 0).UTC().Format(CommitTimeLayout)

	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n", title)
	fmt.Fprintf(&b, "Last commit: **%s** *(%s)*\n\n", commit, hash)
	fmt.Fprintf(&b, "**%.2f%%** matched code\n", e.ratio("matched_code"))
	fmt.Fprintf(&b, "**%.2f%%** linked code (i.e. fully complete, in-order)\n", e.ratio("code"))
	fmt.Fprintf(&b, "**%.2f%%** matched data\n", e.ratio("matched_data"))
	fmt.Fprintf(&b, "**%.2f%%** matching functions\n\n", e.ratio("matched_functions"))
	fmt.Fprintf(&b, "<%s>", link)
	return b.String()
}
