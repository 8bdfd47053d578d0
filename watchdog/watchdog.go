package watchdog

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/models"
	"github.com/nsneverhax/nhxinfobot/observability"
)

// Decision is what HandlePost did with a post.
type Decision int

const (
	Ignored Decision = iota
	Tracked
	ScamPitchActioned
	BurstActioned
)

func (d Decision) String() string {
	switch d {
	case Ignored:
		return "ignored"
	case Tracked:
		return "tracked"
	case ScamPitchActioned:
		return "scam_pitch"
	case BurstActioned:
		return "burst"
	default:
		return "unknown"
	}
}

// Watchdog detects cross-channel spam bursts and single-message solicitation
// pitches and softbans the author. All state lives in memory.
type Watchdog struct {
	cfg       models.WatchdogConfig
	th        Thresholds
	allowlist map[string]struct{}

	scorer    *Scorer
	tracker   *Tracker
	cooldowns *Cooldowns
	executor  *Executor

	locks sync.Map // Key -> *sync.Mutex
	now   func() time.Time

	logger  *zap.Logger
	metrics *observability.Metrics
}

// Option customizes a Watchdog.
type Option func(*Watchdog)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(w *Watchdog) { w.now = now }
}

func New(cfg models.WatchdogConfig, mod Moderator, logger *zap.Logger, metrics *observability.Metrics, opts ...Option) *Watchdog {
	if logger == nil {
		logger = zap.NewNop()
	}

	allow := make(map[string]struct{}, len(cfg.ScamPitch.ChannelAllowlist))
	for _, id := range cfg.ScamPitch.ChannelAllowlist {
		allow[id] = struct{}{}
	}

	w := &Watchdog{
		cfg: cfg,
		th: Thresholds{
			MinMessages:       cfg.MinMessages,
			MinChannels:       cfg.MinChannels,
			RequireDuplicates: cfg.RequireDuplicatePayload,
			MinDuplicates:     cfg.MinDuplicates,
		},
		allowlist: allow,
		scorer:    NewScorer(cfg.ScamPitch),
		tracker:   NewTracker(),
		cooldowns: NewCooldowns(),
		executor:  NewExecutor(mod, cfg.ReportChannelID, cfg.CallTimeout, cfg.UnbanDelay, logger, metrics),
		now:       time.Now,
		logger:    logger,
		metrics:   metrics,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

func (w *Watchdog) lockFor(key Key) *sync.Mutex {
	mu, _ := w.locks.LoadOrStore(key, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// HandlePost inspects one guild post. The bool is true when the post was
// consumed by a moderation action and should not be processed further.
// Blocks until any triggered action has finished.
func (w *Watchdog) HandlePost(ctx context.Context, p Post) (Decision, bool) {
	d, job := w.decide(p)
	w.metrics.ObserveDecision(d.String())
	if job == nil {
		return d, false
	}

	w.logger.Info("Spam watchdog triggered",
		zap.String("guild_id", p.GuildID),
		zap.String("user_id", p.Author.ID),
		zap.String("decision", d.String()),
		zap.String("reason", job.reason))

	// The action must finish even if the caller goes away.
	w.executor.Execute(context.WithoutCancel(ctx), p, job.evidence, job.reason)
	return d, true
}

type action struct {
	evidence []PostRecord
	reason   string
}

// decide runs every check under the key lock and returns the action to take,
// if any. Cooldown is marked before the lock is released.
func (w *Watchdog) decide(p Post) (Decision, *action) {
	if !w.cfg.Enabled || p.GuildID == "" {
		return Ignored, nil
	}
	if p.Author.Bot {
		return Ignored, nil
	}
	if p.ChannelID == w.cfg.ReportChannelID {
		return Ignored, nil
	}
	if p.Author.Elevated() {
		return Ignored, nil
	}

	key := Key{GuildID: p.GuildID, UserID: p.Author.ID}
	mu := w.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	now := w.now()
	if w.cooldowns.OnCooldown(key, now, w.cfg.ActionCooldown) {
		return Ignored, nil
	}

	sig := Signature(p)
	if sig == "" {
		return Ignored, nil
	}

	rec := PostRecord{
		Timestamp: now,
		ChannelID: p.ChannelID,
		MessageID: p.MessageID,
		Permalink: p.Permalink,
		Signature: sig,
	}

	if w.scamPitchApplies(p, now) {
		if score := w.scorer.Score(p.Content); score >= w.cfg.ScamPitch.MinScore {
			w.cooldowns.Mark(key, now)
			return ScamPitchActioned, &action{
				evidence: []PostRecord{rec},
				reason:   fmt.Sprintf("Spam watchdog (softban): solicitation/scam pitch heuristic (score=%d)", score),
			}
		}
	}

	w.tracker.Record(key, rec)
	w.tracker.Prune(key, now, w.cfg.Window)

	ev := w.tracker.Evaluate(key, w.th)
	if !ev.Met {
		return Tracked, nil
	}

	w.cooldowns.Mark(key, now)
	evidence := w.tracker.Consume(key)
	return BurstActioned, &action{evidence: evidence, reason: w.burstReason(ev)}
}

func (w *Watchdog) burstReason(ev Evaluation) string {
	reason := fmt.Sprintf("Spam watchdog: %d msgs in %gs across %d channels",
		ev.Count, w.cfg.Window.Seconds(), ev.Channels)
	if w.cfg.RequireDuplicatePayload {
		reason += fmt.Sprintf(", duplicate_payload=%d+", w.cfg.MinDuplicates)
	}
	return reason
}

func (w *Watchdog) scamPitchApplies(p Post, now time.Time) bool {
	sp := w.cfg.ScamPitch
	if !sp.Enabled {
		return false
	}
	if len(w.allowlist) > 0 {
		if _, ok := w.allowlist[p.ChannelID]; !ok {
			return false
		}
	}
	return IsNewMember(p.Author, now, sp.NewMemberMaxDays)
}

// IsNewMember reports whether author joined the guild at most maxDays whole
// days before now. Bare users and members with no join time are never new.
func IsNewMember(author Author, now time.Time, maxDays int) bool {
	if author.Member == nil || author.Member.JoinedAt.IsZero() {
		return false
	}
	days := int(now.Sub(author.Member.JoinedAt) / (24 * time.Hour))
	return days <= maxDays
}

// Pending returns how many posts are currently tracked for key.
func (w *Watchdog) Pending(key Key) int {
	return w.tracker.Len(key)
}

// Sweep drops expired window records and cooldowns. Run periodically so users
// who stop posting do not pin memory.
func (w *Watchdog) Sweep() (windows, cooldowns int) {
	now := w.now()
	windows = w.tracker.Sweep(now, w.cfg.Window)
	cooldowns = w.cooldowns.Sweep(now, w.cfg.ActionCooldown)
	return windows, cooldowns
}
