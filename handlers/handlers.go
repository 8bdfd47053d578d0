package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/bot"
	"github.com/nsneverhax/nhxinfobot/triggers"
)

// Register all handlers to the bot.
func Register(b *bot.Bot) {
	b.Lists = triggers.NewStore(triggers.ListTimeout, expireList(b))

	b.Session.AddHandler(MessageCreate(b))
	b.Session.AddHandler(InteractionCreate(b))

	b.Session.AddHandler(func(s *discordgo.Session, r *discordgo.Ready) {
		b.Logger.Info("Logged in", zap.String("user", r.User.Username), zap.Int("guilds", len(r.Guilds)))
		b.SetConnected(true)
	})
	b.Session.AddHandler(func(s *discordgo.Session, _ *discordgo.Resumed) {
		b.SetConnected(true)
	})
	b.Session.AddHandler(func(s *discordgo.Session, _ *discordgo.Disconnect) {
		b.Logger.Warn("Gateway disconnected")
		b.SetConnected(false)
	})
}
