package watchdog

import (
	"context"
	"errors"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/observability"
)

var (
	// ErrNotFound is wrapped by Moderator implementations when the target no
	// longer exists. Deleting a missing message counts as success.
	ErrNotFound = errors.New("not found")
	// ErrForbidden is wrapped when the bot lacks the permission for a call.
	ErrForbidden = errors.New("forbidden")
)

// Moderator is the slice of the chat platform the executor needs.
type Moderator interface {
	FetchMessage(ctx context.Context, channelID, messageID string) error
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	// Ban bans the user and purges their recent messages using the purge
	// window the implementation was configured with.
	Ban(ctx context.Context, guildID, userID, reason string) error
	Unban(ctx context.Context, guildID, userID, reason string) error
	ResolveChannel(ctx context.Context, channelID string) error
	SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error
}

// Outcome summarizes one softban attempt.
type Outcome struct {
	Deleted      int
	DeleteFailed int
	BanErr       error
	UnbanErr     error
	Unbanned     bool
	Reported     bool
	ReportErr    error
}

// Executor deletes evidence, softbans the author and reports to staff.
// It never returns an error; every failure ends up in the Outcome.
type Executor struct {
	mod             Moderator
	reportChannelID string
	callTimeout     time.Duration
	unbanDelay      time.Duration
	logger          *zap.Logger
	metrics         *observability.Metrics
}

func NewExecutor(mod Moderator, reportChannelID string, callTimeout, unbanDelay time.Duration, logger *zap.Logger, metrics *observability.Metrics) *Executor {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Executor{
		mod:             mod,
		reportChannelID: reportChannelID,
		callTimeout:     callTimeout,
		unbanDelay:      unbanDelay,
		logger:          logger,
		metrics:         metrics,
	}
}

func (e *Executor) call(ctx context.Context, fn func(ctx context.Context) error) error {
	if e.callTimeout <= 0 {
		return fn(ctx)
	}
	ctx, cancel := context.WithTimeout(ctx, e.callTimeout)
	defer cancel()
	return fn(ctx)
}

// Execute runs the softban sequence for post's author using evidence.
func (e *Executor) Execute(ctx context.Context, post Post, evidence []PostRecord, reason string) Outcome {
	var out Outcome
	log := e.logger.With(
		zap.String("guild_id", post.GuildID),
		zap.String("user_id", post.Author.ID),
	)

	for _, rec := range evidence {
		if err := e.deleteEvidence(ctx, rec); err != nil {
			out.DeleteFailed++
			log.Warn("Failed to delete evidence message",
				zap.String("channel_id", rec.ChannelID),
				zap.String("message_id", rec.MessageID),
				zap.Error(err))
			continue
		}
		out.Deleted++
	}

	out.BanErr = e.call(ctx, func(ctx context.Context) error {
		return e.mod.Ban(ctx, post.GuildID, post.Author.ID, reason)
	})
	e.metrics.ObserveBan(out.BanErr)

	if out.BanErr != nil {
		log.Error("Softban ban step failed", zap.String("reason", reason), zap.Error(out.BanErr))
	} else {
		if e.unbanDelay > 0 {
			select {
			case <-time.After(e.unbanDelay):
			case <-ctx.Done():
			}
		}
		out.UnbanErr = e.call(ctx, func(ctx context.Context) error {
			return e.mod.Unban(ctx, post.GuildID, post.Author.ID, "Softban release: "+reason)
		})
		e.metrics.ObserveUnban(out.UnbanErr)
		out.Unbanned = out.UnbanErr == nil
		if out.UnbanErr != nil {
			log.Error("Softban unban step failed, user may still be banned", zap.Error(out.UnbanErr))
		} else {
			log.Info("User softbanned",
				zap.String("reason", reason),
				zap.Int("deleted", out.Deleted),
				zap.Int("delete_failed", out.DeleteFailed))
		}
	}

	e.report(ctx, post, evidence, reason, &out)
	return out
}

// deleteEvidence fetches and deletes one message. A message that is already
// gone is treated as deleted.
func (e *Executor) deleteEvidence(ctx context.Context, rec PostRecord) error {
	err := e.call(ctx, func(ctx context.Context) error {
		return e.mod.FetchMessage(ctx, rec.ChannelID, rec.MessageID)
	})
	if err == nil {
		err = e.call(ctx, func(ctx context.Context) error {
			return e.mod.DeleteMessage(ctx, rec.ChannelID, rec.MessageID)
		})
	}
	if errors.Is(err, ErrNotFound) {
		err = nil
	}
	e.metrics.ObserveDelete(err)
	return err
}

func (e *Executor) report(ctx context.Context, post Post, evidence []PostRecord, reason string, out *Outcome) {
	if e.reportChannelID == "" {
		e.logger.Warn("No report channel configured, dropping report",
			zap.String("user_id", post.Author.ID), zap.Bool("ban_failed", out.BanErr != nil),
			zap.NamedError("unban_error", out.UnbanErr))
		return
	}

	err := e.call(ctx, func(ctx context.Context) error {
		return e.mod.ResolveChannel(ctx, e.reportChannelID)
	})
	if err != nil {
		e.logger.Warn("Report channel unavailable, dropping report",
			zap.String("channel_id", e.reportChannelID), zap.Error(err))
		return
	}

	var embed *discordgo.MessageEmbed
	if out.BanErr != nil {
		embed = banFailedEmbed(post.Author, reason, *out)
	} else {
		embed = softbanEmbed(post.Author, reason, evidence, *out)
	}

	out.ReportErr = e.call(ctx, func(ctx context.Context) error {
		return e.mod.SendEmbed(ctx, e.reportChannelID, embed)
	})
	e.metrics.ObserveReport(out.ReportErr)
	if out.ReportErr != nil {
		e.logger.Warn("Failed to send moderation report", zap.Error(out.ReportErr))
		return
	}
	out.Reported = true
}
