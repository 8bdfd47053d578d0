package handlers

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/bot"
	"github.com/nsneverhax/nhxinfobot/database"
)

const (
	defaultTopDays = 30
	topLimit       = 10
)

// HandlePing handles the logic for the /ping command.
func HandlePing(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	before := time.Now()
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: "🏓 Pong?"},
	})
	if err != nil {
		b.Logger.Warn("Failed to answer /ping", zap.Error(err))
		return
	}

	content := pongMessage(s.HeartbeatLatency(), time.Since(before))
	if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
		b.Logger.Debug("Failed to edit /ping response", zap.Error(err))
	}
}

// HandleTriggers opens the paginated trigger list for the invoking user.
func HandleTriggers(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	sess, embed, comps := newList(b, interactionUserID(i), i.ChannelID)
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Embeds:     []*discordgo.MessageEmbed{embed},
			Components: comps,
		},
	})
	if err != nil {
		b.Logger.Warn("Failed to answer /triggers", zap.Error(err))
		return
	}

	msg, err := s.InteractionResponse(i.Interaction)
	if err != nil {
		b.Logger.Debug("Failed to fetch /triggers response", zap.Error(err))
		return
	}
	b.Lists.Bind(sess.ID, msg.ID)
}

// HandleTopTriggers lists the most used triggers of the guild.
func HandleTopTriggers(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.GuildID == "" {
		s.InteractionRespond(i.Interaction, ephemeral("This command only works in a server."))
		return
	}

	days := defaultTopDays
	for _, opt := range i.ApplicationCommandData().Options {
		if opt.Name == "days" {
			days = int(opt.IntValue())
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	since := time.Now().AddDate(0, 0, -(days - 1))
	uses, err := b.Stats.TopTriggers(ctx, i.GuildID, since, topLimit)
	if err != nil {
		b.Logger.Warn("Failed to query trigger stats", zap.Error(err))
		s.InteractionRespond(i.Interaction, ephemeral("Could not load trigger statistics."))
		return
	}

	s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: topTriggersMessage(uses, days)},
	})
}

func topTriggersMessage(uses []database.TriggerUse, days int) string {
	if len(uses) == 0 {
		return fmt.Sprintf("No triggers were used in the last %d days.", days)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "**Top triggers, last %d days**", days)
	for n, u := range uses {
		plural := "s"
		if u.Uses == 1 {
			plural = ""
		}
		fmt.Fprintf(&b, "\n%d. `%s` (%s): %d use%s", n+1, u.Trigger, u.Lang, u.Uses, plural)
	}
	return b.String()
}
