package handlers

import (
	"github.com/bwmarrin/discordgo"

	"github.com/nsneverhax/nhxinfobot/bot"
)

// CommandDispatcher is the central handler for all application command
// interactions.
func CommandDispatcher(b *bot.Bot, s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.ApplicationCommandData().Name {
	case "ping":
		HandlePing(b, s, i)
	case "triggers":
		HandleTriggers(b, s, i)
	case "top_triggers":
		HandleTopTriggers(b, s, i)
	default:
		s.InteractionRespond(i.Interaction, ephemeral("🚫 Unknown command."))
	}
}
