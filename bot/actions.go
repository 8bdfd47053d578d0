package bot

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/github"
	"github.com/nsneverhax/nhxinfobot/utils"
)

// ReportStaleActions runs the staleness check and posts the report. Nothing is
// sent when no repository is stale or the report channel is unset or
// unreachable.
func (b *Bot) ReportStaleActions(ctx context.Context) error {
	stale, err := b.Actions.Check(ctx)
	if err != nil {
		utils.Error("actions", "check", fmt.Sprintf("Actions staleness check failed: %v", err))
		return err
	}
	b.Metrics.SetStaleRepos(len(stale))

	embed := github.ReportEmbed(stale, b.Actions.StaleAfterDays())
	if embed == nil {
		return nil
	}

	channelID := b.Config.Actions.ReportChannelID
	if channelID == "" {
		b.Logger.Warn("Stale repos found but actions.report_channel_id is not set", zap.Int("stale", len(stale)))
		return nil
	}
	if _, err := b.Session.State.Channel(channelID); err != nil {
		if _, err := b.Session.Channel(channelID); err != nil {
			b.Logger.Warn("Actions report channel unavailable", zap.String("channel_id", channelID), zap.Error(err))
			return nil
		}
	}

	if _, err := b.Session.ChannelMessageSendEmbed(channelID, embed); err != nil {
		return fmt.Errorf("failed to send actions report: %w", err)
	}
	return nil
}
