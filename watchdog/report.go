package watchdog

import (
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"
)

const (
	colorRed    = 0xe74c3c
	colorOrange = 0xe67e22

	fieldValueLimit    = 1024
	unbanErrorLimit    = 900
	maxChannelMentions = 25
	maxMessageLinks    = 10
)

func banFailedEmbed(author Author, reason string, out Outcome) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: "Spam watchdog: softban failed (ban step)",
		Color: colorRed,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "User", Value: fmt.Sprintf("%s (%s)", author.Name, author.ID)},
			{Name: "Reason", Value: reason},
			{Name: "Delete results", Value: deleteResults(out)},
			{Name: "Error", Value: truncate(out.BanErr.Error(), fieldValueLimit)},
		},
	}
}

func softbanEmbed(author Author, reason string, evidence []PostRecord, out Outcome) *discordgo.MessageEmbed {
	fields := []*discordgo.MessageEmbedField{
		{Name: "User", Value: fmt.Sprintf("%s (<@%s>)", author.Name, author.ID)},
		{Name: "Reason", Value: reason},
		{Name: "Delete results", Value: deleteResults(out)},
		{Name: "Channels hit (window)", Value: truncate(channelMentions(evidence), fieldValueLimit)},
	}

	if out.UnbanErr == nil {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Unban", Value: "✅ Unbanned (softban complete)",
		})
	} else {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name:  "Unban",
			Value: "⚠️ Unban failed, user may still be banned\n" + truncate(out.UnbanErr.Error(), unbanErrorLimit),
		})
	}

	var links []string
	sample := ""
	for _, rec := range evidence {
		if rec.Permalink != "" {
			links = append(links, rec.Permalink)
		}
		if rec.Signature != "" {
			sample = rec.Signature
		}
	}
	if len(links) > maxMessageLinks {
		links = links[:maxMessageLinks]
	}
	if len(links) > 0 {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Message links", Value: truncate(strings.Join(links, "\n"), fieldValueLimit),
		})
	}
	if sample != "" {
		fields = append(fields, &discordgo.MessageEmbedField{
			Name: "Sample payload", Value: truncate(sample, fieldValueLimit),
		})
	}

	return &discordgo.MessageEmbed{
		Title:  "Spam watchdog: user softbanned",
		Color:  colorOrange,
		Fields: fields,
	}
}

func deleteResults(out Outcome) string {
	return fmt.Sprintf("deleted=%d, failed=%d", out.Deleted, out.DeleteFailed)
}

// channelMentions renders the distinct evidence channels in ascending
// snowflake order.
func channelMentions(evidence []PostRecord) string {
	seen := make(map[string]struct{}, len(evidence))
	var ids []string
	for _, rec := range evidence {
		if _, ok := seen[rec.ChannelID]; ok {
			continue
		}
		seen[rec.ChannelID] = struct{}{}
		ids = append(ids, rec.ChannelID)
	}
	if len(ids) == 0 {
		return "None"
	}
	sort.Slice(ids, func(i, j int) bool {
		if len(ids[i]) != len(ids[j]) {
			return len(ids[i]) < len(ids[j])
		}
		return ids[i] < ids[j]
	})
	if len(ids) > maxChannelMentions {
		ids = ids[:maxChannelMentions]
	}

	mentions := make([]string, len(ids))
	for i, id := range ids {
		mentions[i] = "<#" + id + ">"
	}
	return strings.Join(mentions, ", ")
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
