package handlers

import (
	"github.com/bwmarrin/discordgo"
	"go.uber.org/zap"

	"github.com/nsneverhax/nhxinfobot/bot"
	"github.com/nsneverhax/nhxinfobot/triggers"
)

const (
	notYourList = "You did not trigger this list. Use !list to browse through commands."
	listExpired = "This list has expired. Use !list to browse through commands."
)

// newList opens a list session for ownerID and renders its first page.
func newList(b *bot.Bot, ownerID, channelID string) (*triggers.Session, *discordgo.MessageEmbed, []discordgo.MessageComponent) {
	items, aliases := b.Triggers.ListItems()
	sess := b.Lists.Create(ownerID, channelID, triggers.NewPaginator(items, aliases))

	var embed *discordgo.MessageEmbed
	var comps []discordgo.MessageComponent
	sess.View(func(p *triggers.Paginator) {
		embed = p.Embed()
		comps = p.Components(sess.ID, false)
	})
	return sess, embed, comps
}

// sendList posts a fresh trigger list in reply to a prefixed command.
func sendList(b *bot.Bot, s *discordgo.Session, channelID, ownerID string) {
	sess, embed, comps := newList(b, ownerID, channelID)
	msg, err := s.ChannelMessageSendComplex(channelID, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{embed},
		Components: comps,
	})
	if err != nil {
		b.Logger.Warn("Failed to send trigger list", zap.String("channel_id", channelID), zap.Error(err))
		return
	}
	b.Lists.Bind(sess.ID, msg.ID)
}

// listButtonResponse applies a button press to its session and returns the
// interaction response. ok is false when the custom ID is not a list button.
func listButtonResponse(store *triggers.Store, customID, userID string) (resp *discordgo.InteractionResponse, ok bool) {
	id, action, ok := triggers.ParseCustomID(customID)
	if !ok {
		return nil, false
	}

	sess, live := store.Get(id)
	switch {
	case !live:
		return ephemeral(listExpired), true
	case sess.OwnerID != userID:
		return ephemeral(notYourList), true
	}

	data := &discordgo.InteractionResponseData{}
	sess.View(func(p *triggers.Paginator) {
		p.Apply(action)
		data.Embeds = []*discordgo.MessageEmbed{p.Embed()}
		data.Components = p.Components(sess.ID, false)
	})
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseUpdateMessage,
		Data: data,
	}, true
}

// expireList greys out the buttons of a list whose session timed out.
func expireList(b *bot.Bot) func(*triggers.Session) {
	return func(sess *triggers.Session) {
		if sess.MessageID == "" {
			return
		}
		var comps []discordgo.MessageComponent
		sess.View(func(p *triggers.Paginator) {
			comps = p.Components(sess.ID, true)
		})

		edit := discordgo.NewMessageEdit(sess.ChannelID, sess.MessageID)
		edit.Components = &comps
		if _, err := b.Session.ChannelMessageEditComplex(edit); err != nil {
			b.Logger.Debug("Failed to disable expired trigger list", zap.String("session", sess.ID), zap.Error(err))
		}
	}
}

func ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	}
}
