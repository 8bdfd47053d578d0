package github

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/sourcegraph/conc/pool"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/models"
)

const (
	DefaultStaleAfterDays = 89

	colorOrange     = 0xe67e22
	fieldValueLimit = 1024
)

// RepoRef names one repository.
type RepoRef struct {
	Owner string
	Name  string
}

// StaleRepo is a repository whose latest artifact-producing run is too old.
type StaleRepo struct {
	Display string
	LastRun time.Time
	URL     string
}

// Checker finds repositories whose GitHub Actions builds have gone stale.
type Checker struct {
	client *Client
	cfg    models.ActionsConfig
	now    func() time.Time
	logger *zap.Logger
}

// CheckerOption customizes a Checker.
type CheckerOption func(*Checker)

// WithNow replaces time.Now.
func WithNow(now func() time.Time) CheckerOption {
	return func(c *Checker) { c.now = now }
}

func NewChecker(client *Client, cfg models.ActionsConfig, logger *zap.Logger, opts ...CheckerOption) *Checker {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.StaleAfterDays <= 0 {
		cfg.StaleAfterDays = DefaultStaleAfterDays
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	c := &Checker{client: client, cfg: cfg, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StaleAfterDays is the age in days at which a run counts as stale.
func (c *Checker) StaleAfterDays() int {
	return c.cfg.StaleAfterDays
}

// MonitoredRepos lists the owner's repositories minus the ignored ones, then
// appends the configured extras that are not already present.
func (c *Checker) MonitoredRepos(ctx context.Context) ([]RepoRef, error) {
	names, err := c.client.ListUserRepos(ctx, c.cfg.Owner)
	if err != nil {
		return nil, err
	}

	ignored := make(map[string]struct{}, len(c.cfg.IgnoredRepos))
	for _, name := range c.cfg.IgnoredRepos {
		ignored[name] = struct{}{}
	}

	seen := make(map[RepoRef]struct{})
	var repos []RepoRef
	add := func(r RepoRef) {
		if _, ok := seen[r]; ok {
			return
		}
		seen[r] = struct{}{}
		repos = append(repos, r)
	}

	for _, name := range names {
		if _, skip := ignored[name]; !skip {
			add(RepoRef{Owner: c.cfg.Owner, Name: name})
		}
	}
	for _, full := range c.cfg.ExtraRepos {
		if owner, name, ok := strings.Cut(full, "/"); ok {
			add(RepoRef{Owner: owner, Name: name})
		} else {
			add(RepoRef{Owner: c.cfg.Owner, Name: full})
		}
	}
	return repos, nil
}

// Check returns the stale repositories in monitored order. Repositories
// whose runs or artifacts cannot be read, that have never run, or whose latest
// run produced no artifacts are skipped.
func (c *Checker) Check(ctx context.Context) ([]StaleRepo, error) {
	repos, err := c.MonitoredRepos(ctx)
	if err != nil {
		return nil, err
	}

	var (
		p       = pool.New().WithMaxGoroutines(c.cfg.Concurrency).WithContext(ctx)
		results = make([]*StaleRepo, len(repos))
		now     = c.now()
	)

	for i, repo := range repos {
		p.Go(func(ctx context.Context) error {
			// Each goroutine owns its slot.
			if stale, ok := c.checkRepo(ctx, repo, now); ok {
				results[i] = stale
			}
			return nil
		})
	}
	if err := p.Wait(); err != nil {
		return nil, fmt.Errorf("actions check failed: %w", err)
	}

	var stale []StaleRepo
	for _, r := range results {
		if r != nil {
			stale = append(stale, *r)
		}
	}
	c.logger.Info("Actions staleness check finished",
		zap.Int("repos", len(repos)), zap.Int("stale", len(stale)))
	return stale, nil
}

func (c *Checker) checkRepo(ctx context.Context, repo RepoRef, now time.Time) (*StaleRepo, bool) {
	log := c.logger.With(zap.String("owner", repo.Owner), zap.String("repo", repo.Name))

	run, err := c.client.LatestRun(ctx, repo.Owner, repo.Name)
	if err != nil {
		log.Debug("Skipping repo, runs unavailable", zap.Error(err))
		return nil, false
	}
	if run == nil {
		return nil, false
	}

	artifacts, err := c.client.ArtifactCount(ctx, repo.Owner, repo.Name, run.ID)
	if err != nil {
		log.Debug("Skipping repo, artifacts unavailable", zap.Error(err))
		return nil, false
	}
	if artifacts == 0 {
		return nil, false
	}

	if int(now.Sub(run.CreatedAt)/(24*time.Hour)) < c.cfg.StaleAfterDays {
		return nil, false
	}

	display := repo.Name
	if repo.Owner != c.cfg.Owner {
		display = repo.Owner + "/" + repo.Name
	}
	return &StaleRepo{Display: display, LastRun: run.CreatedAt, URL: run.HTMLURL}, true
}

// ReportEmbed renders the staleness report, or nil when nothing is stale.
// Lines are spread over several fields when they exceed the field limit.
func ReportEmbed(stale []StaleRepo, staleAfterDays int) *discordgo.MessageEmbed {
	if len(stale) == 0 {
		return nil
	}

	var fields []*discordgo.MessageEmbedField
	var cur strings.Builder
	flush := func() {
		if cur.Len() == 0 {
			return
		}
		name := "\u200b"
		if len(fields) == 0 {
			name = fmt.Sprintf("%d stale repos", len(stale))
		}
		fields = append(fields, &discordgo.MessageEmbedField{Name: name, Value: cur.String()})
		cur.Reset()
	}

	for _, r := range stale {
		line := fmt.Sprintf("• **%s** — last run `%s`: <%s>", r.Display, r.LastRun.UTC().Format("2006-01-02"), r.URL)
		if cur.Len() > 0 && cur.Len()+1+len(line) > fieldValueLimit {
			flush()
		}
		if cur.Len() > 0 {
			cur.WriteByte('\n')
		}
		cur.WriteString(line)
	}
	flush()

	return &discordgo.MessageEmbed{
		Title:       "🛠️ Stale GitHub Actions",
		Description: fmt.Sprintf("Workflows with no runs in the last %d days:", staleAfterDays),
		Color:       colorOrange,
		Fields:      fields,
	}
}
