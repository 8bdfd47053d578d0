package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/bot"
)

// InteractionCreate handles slash commands and trigger list buttons.
func InteractionCreate(b *bot.Bot) func(s *discordgo.Session, i *discordgo.InteractionCreate) {
	return func(s *discordgo.Session, i *discordgo.InteractionCreate) {
		switch i.Type {
		case discordgo.InteractionApplicationCommand:
			CommandDispatcher(b, s, i)
		case discordgo.InteractionMessageComponent:
			resp, ok := listButtonResponse(b.Lists, i.MessageComponentData().CustomID, interactionUserID(i))
			if !ok {
				return
			}
			if err := s.InteractionRespond(i.Interaction, resp); err != nil {
				b.Logger.Debug("Failed to answer list button", zap.Error(err))
			}
		}
	}
}

// interactionUserID returns the invoking user in guilds and DMs alike.
func interactionUserID(i *discordgo.InteractionCreate) string {
	if i.Member != nil && i.Member.User != nil {
		return i.Member.User.ID
	}
	if i.User != nil {
		return i.User.ID
	}
	return ""
}
