package github

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	DefaultBaseURL = "https://api.github.com"

	maxElapsedTime  = 30 * time.Second
	initialInterval = 500 * time.Millisecond
	maxInterval     = 5 * time.Second
	maxRetries      = uint64(3)
)

// WorkflowRun is the subset of a GitHub Actions run the checker reads.
type WorkflowRun struct {
	ID        int64     `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	HTMLURL   string    `json:"html_url"`
}

type repository struct {
	Name string `json:"name"`
}

type runsPage struct {
	WorkflowRuns []WorkflowRun `json:"workflow_runs"`
}

type artifactsPage struct {
	Artifacts []struct {
		ID int64 `json:"id"`
	} `json:"artifacts"`
}

// StatusError is returned for responses other than 200 OK.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("github: GET %s returned %d", e.URL, e.StatusCode)
}

// Client is a small GitHub REST client with request pacing and retries on
// transient failures.
type Client struct {
	http    *http.Client
	baseURL string
	token   string
	limiter *rate.Limiter
	logger  *zap.Logger
}

// ClientOption customizes a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the default HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.http = hc }
}

// NewClient creates a client. A zero requestsPerSec disables pacing.
func NewClient(baseURL, token string, requestsPerSec float64, logger *zap.Logger, opts ...ClientOption) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	limit := rate.Inf
	if requestsPerSec > 0 {
		limit = rate.Limit(requestsPerSec)
	}

	c := &Client{
		http:    &http.Client{Timeout: 30 * time.Second},
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		limiter: rate.NewLimiter(limit, 1),
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ListUserRepos returns the names of every public repository of owner (first
// 100).
func (c *Client) ListUserRepos(ctx context.Context, owner string) ([]string, error) {
	var repos []repository
	if err := c.get(ctx, "/users/"+url.PathEscape(owner)+"/repos?per_page=100", &repos); err != nil {
		return nil, fmt.Errorf("failed to list repos of %s: %w", owner, err)
	}
	names := make([]string, 0, len(repos))
	for _, r := range repos {
		names = append(names, r.Name)
	}
	return names, nil
}

// LatestRun returns the most recent workflow run of a repository, or nil when
// it has none.
func (c *Client) LatestRun(ctx context.Context, owner, name string) (*WorkflowRun, error) {
	var page runsPage
	path := fmt.Sprintf("/repos/%s/%s/actions/runs?per_page=1", url.PathEscape(owner), url.PathEscape(name))
	if err := c.get(ctx, path, &page); err != nil {
		return nil, err
	}
	if len(page.WorkflowRuns) == 0 {
		return nil, nil
	}
	return &page.WorkflowRuns[0], nil
}

// ArtifactCount returns how many artifacts a run produced.
func (c *Client) ArtifactCount(ctx context.Context, owner, name string, runID int64) (int, error) {
	var page artifactsPage
	path := fmt.Sprintf("/repos/%s/%s/actions/runs/%d/artifacts", url.PathEscape(owner), url.PathEscape(name), runID)
	if err := c.get(ctx, path, &page); err != nil {
		return 0, err
	}
	return len(page.Artifacts), nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	target := c.baseURL + path

	b := backoff.WithMaxRetries(backoff.NewExponentialBackOff(
		backoff.WithMaxElapsedTime(maxElapsedTime),
		backoff.WithInitialInterval(initialInterval),
		backoff.WithMaxInterval(maxInterval),
	), maxRetries)

	var body []byte
	err := backoff.Retry(func() error {
		if err := c.limiter.Wait(ctx); err != nil {
			return backoff.Permanent(err)
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Accept", "application/vnd.github.v3+json")
		if c.token != "" {
			req.Header.Set("Authorization", "token "+c.token)
		}

		resp, err := c.http.Do(req)
		if err != nil {
			c.logger.Debug("GitHub request failed, retrying", zap.String("url", target), zap.Error(err))
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode != http.StatusOK {
			statusErr := &StatusError{StatusCode: resp.StatusCode, URL: target}
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				return statusErr
			}
			return backoff.Permanent(statusErr)
		}

		body, err = io.ReadAll(resp.Body)
		return err
	}, backoff.WithContext(b, ctx))
	if err != nil {
		return err
	}

	if err := sonic.Unmarshal(body, out); err != nil {
		return fmt.Errorf("failed to decode %s: %w", target, err)
	}
	return nil
}
