package handlers

import (
	"context"
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/bot"
	"github.com/nsneverhax/nhxinfobot/triggers"
	"github.com/nsneverhax/nhxinfobot/utils"
)

const commandBudget = 2 * time.Minute

// MessageCreate runs every new message through the spam watchdog, then
// handles crossposting and prefixed commands.
func MessageCreate(b *bot.Bot) func(s *discordgo.Session, m *discordgo.MessageCreate) {
	return func(s *discordgo.Session, m *discordgo.MessageCreate) {
		// Ignore all messages created by the bot itself
		if m.Author == nil || (s.State.User != nil && m.Author.ID == s.State.User.ID) {
			return
		}

		if runWatchdog(b, s, m) {
			return
		}

		if publish := b.Config.Bot.PublishChannelID; publish != "" && m.ChannelID == publish {
			if _, err := s.ChannelMessageCrosspost(m.ChannelID, m.ID); err != nil {
				b.Logger.Warn("Failed to publish message", zap.String("message_id", m.ID), zap.Error(err))
			} else {
				b.Logger.Info("Published message", zap.String("message_id", m.ID), zap.String("channel_id", m.ChannelID))
			}
			return
		}

		cmd, ok := triggers.ParseCommand(m.Content, b.Config.Bot.Prefixes)
		if !ok {
			return
		}
		handleCommand(b, s, m, cmd)
	}
}

// runWatchdog reports whether the watchdog consumed the message. A panic in
// the watchdog is logged and the message continues as if it were ignored.
func runWatchdog(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate) (handled bool) {
	defer func() {
		if r := recover(); r != nil {
			b.Logger.Error("Spam watchdog panicked", zap.Any("panic", r), zap.String("message_id", m.ID))
			handled = false
		}
	}()

	post, err := ToPost(s.State, s, m.Message)
	if err != nil {
		b.Logger.Warn("Skipping spam watchdog, author permissions unknown",
			zap.String("message_id", m.ID), zap.Error(err))
		return false
	}
	decision, handled := b.Watchdog.HandlePost(context.Background(), post)
	if handled {
		utils.Warn("watchdog", decision.String(),
			fmt.Sprintf("Acted on %s (%s) in <#%s>", post.Author.Name, post.Author.ID, post.ChannelID))
	}
	return handled
}

func handleCommand(b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, cmd triggers.Command) {
	ctx, cancel := context.WithTimeout(context.Background(), commandBudget)
	defer cancel()

	if _, isList := triggers.ListAliases[cmd.Name]; isList {
		sendList(b, s, m.ChannelID, m.Author.ID)
		return
	}

	switch cmd.Name {
	case "ping":
		sendPing(b, s, m.ChannelID)
	case "actions":
		if err := b.ReportStaleActions(ctx); err != nil {
			b.Logger.Warn("Manual actions check failed", zap.Error(err))
		}
	case "progress", "hugh":
		summary, err := b.Progress.Summary(ctx)
		if err != nil {
			b.Logger.Warn("Failed to fetch decomp progress", zap.Error(err))
			return
		}
		if _, err := s.ChannelMessageSend(m.ChannelID, summary); err != nil {
			b.Logger.Warn("Failed to send decomp progress", zap.String("channel_id", m.ChannelID), zap.Error(err))
		}
	default:
		sendTrigger(ctx, b, s, m, cmd)
	}
}

func sendPing(b *bot.Bot, s *discordgo.Session, channelID string) {
	before := time.Now()
	msg, err := s.ChannelMessageSend(channelID, "🏓 Pong?")
	if err != nil {
		b.Logger.Warn("Failed to send ping", zap.Error(err))
		return
	}
	if _, err := s.ChannelMessageEdit(channelID, msg.ID, pongMessage(s.HeartbeatLatency(), time.Since(before))); err != nil {
		b.Logger.Debug("Failed to edit ping", zap.Error(err))
	}
}

func pongMessage(ws, rtt time.Duration) string {
	return fmt.Sprintf("🏓 **Pong!**\nWebSocket latency: `%.1f ms`\nRound-trip latency: `%.1f ms`",
		float64(ws)/float64(time.Millisecond), float64(rtt)/float64(time.Millisecond))
}

func sendTrigger(ctx context.Context, b *bot.Bot, s *discordgo.Session, m *discordgo.MessageCreate, cmd triggers.Command) {
	resp, lang, ok := b.Triggers.Lookup(cmd.Prefix, cmd.Name)
	if !ok {
		b.Logger.Debug("Unknown trigger", zap.String("prefix", cmd.Prefix), zap.String("command", cmd.Name))
		return
	}

	if err := deliverResponse(s, b.Config.Bot.BaseDir, m.ChannelID, resp); err != nil {
		b.Logger.Warn("Failed to deliver trigger", zap.String("command", cmd.Name), zap.Error(err))
	}
	b.Metrics.ObserveTrigger(string(lang))

	if m.GuildID == "" {
		return
	}
	if err := b.Stats.IncrementUse(ctx, m.GuildID, cmd.Name, string(lang), time.Now()); err != nil {
		b.Logger.Warn("Failed to record trigger use", zap.Error(err))
	}
}
