package handlers

import (
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/nsneverhax/nhxinfobot/utils"
	"github.com/nsneverhax/nhxinfobot/watchdog"
)

// Permalink builds the jump URL of a guild message.
func Permalink(guildID, channelID, messageID string) string {
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, channelID, messageID)
}

// guildSource fetches a guild over REST. *discordgo.Session implements it.
type guildSource interface {
	Guild(guildID string, options ...discordgo.RequestOption) (*discordgo.Guild, error)
}

// ToPost converts a gateway message into the watchdog's view of it. Webhook
// messages and messages without member data become bare users. Member
// permissions come from the state cache, or from rest when the guild is not
// cached; an error means they could not be resolved at all.
func ToPost(state *discordgo.State, rest guildSource, m *discordgo.Message) (watchdog.Post, error) {
	p := watchdog.Post{
		GuildID:   m.GuildID,
		ChannelID: m.ChannelID,
		MessageID: m.ID,
		Content:   m.Content,
	}
	if m.GuildID != "" {
		p.Permalink = Permalink(m.GuildID, m.ChannelID, m.ID)
	}

	for _, a := range m.Attachments {
		p.Attachments = append(p.Attachments, watchdog.Attachment{
			Filename:    a.Filename,
			Size:        a.Size,
			ContentType: a.ContentType,
		})
	}
	for _, e := range m.Embeds {
		p.EmbedURLs = append(p.EmbedURLs, e.URL)
	}

	if m.Author != nil {
		p.Author = watchdog.Author{ID: m.Author.ID, Name: m.Author.Username, Bot: m.Author.Bot}
	}

	if m.Member != nil && m.WebhookID == "" && m.Author != nil {
		// Gateway message members omit the user.
		member := *m.Member
		member.User = m.Author
		perms, err := memberPermissions(state, rest, m.GuildID, &member)
		if err != nil {
			return p, err
		}
		p.Author.Member = &watchdog.MemberInfo{
			JoinedAt:    m.Member.JoinedAt,
			Permissions: perms,
		}
	}
	return p, nil
}

func memberPermissions(state *discordgo.State, rest guildSource, guildID string, member *discordgo.Member) (int64, error) {
	if perms, ok := utils.MemberPermissions(state, guildID, member); ok {
		return perms, nil
	}
	if rest == nil {
		return 0, fmt.Errorf("guild %s is not cached", guildID)
	}
	guild, err := rest.Guild(guildID)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch guild %s: %w", guildID, err)
	}
	return utils.GuildPermissions(guild, member), nil
}
