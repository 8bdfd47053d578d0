package utils

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/nsneverhax/nhxinfobot/watchdog"
)

const (
	BanStrategySeconds = "seconds"
	BanStrategyDays    = "days"

	maxPurgeSeconds = 7 * 24 * 60 * 60
	maxPurgeDays    = 7
)

// DiscordModerator implements watchdog.Moderator on a discordgo session. The
// purge form of the ban call is fixed at construction.
type DiscordModerator struct {
	session  *discordgo.Session
	strategy string
	purge    time.Duration
}

func NewDiscordModerator(s *discordgo.Session, strategy string, purge time.Duration) (*DiscordModerator, error) {
	switch strategy {
	case "":
		strategy = BanStrategySeconds
	case BanStrategySeconds, BanStrategyDays:
	default:
		return nil, fmt.Errorf("unknown ban strategy %q", strategy)
	}
	if purge < 0 {
		return nil, fmt.Errorf("purge window must not be negative, got %s", purge)
	}
	return &DiscordModerator{session: s, strategy: strategy, purge: purge}, nil
}

// PurgeSeconds is the delete_message_seconds value sent with a ban.
func (d *DiscordModerator) PurgeSeconds() int {
	return min(int(d.purge/time.Second), maxPurgeSeconds)
}

// PurgeDays is the delete_message_days value sent with a ban: the purge window
// rounded up to whole days, between 1 and 7.
func (d *DiscordModerator) PurgeDays() int {
	days := int((d.purge + 24*time.Hour - 1) / (24 * time.Hour))
	return max(1, min(days, maxPurgeDays))
}

func (d *DiscordModerator) FetchMessage(ctx context.Context, channelID, messageID string) error {
	_, err := d.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	return classify(err)
}

func (d *DiscordModerator) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return classify(d.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (d *DiscordModerator) Ban(ctx context.Context, guildID, userID, reason string) error {
	if d.strategy == BanStrategyDays {
		return classify(d.session.GuildBanCreateWithReason(guildID, userID, reason, d.PurgeDays(), discordgo.WithContext(ctx)))
	}

	body := struct {
		DeleteMessageSeconds int `json:"delete_message_seconds"`
	}{d.PurgeSeconds()}

	_, err := d.session.RequestWithBucketID(http.MethodPut,
		discordgo.EndpointGuildBan(guildID, userID), body,
		discordgo.EndpointGuildBan(guildID, ""),
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason))
	return classify(err)
}

func (d *DiscordModerator) Unban(ctx context.Context, guildID, userID, reason string) error {
	return classify(d.session.GuildBanDelete(guildID, userID,
		discordgo.WithContext(ctx), discordgo.WithAuditLogReason(reason)))
}

// ResolveChannel checks the state cache first and falls back to REST.
func (d *DiscordModerator) ResolveChannel(ctx context.Context, channelID string) error {
	if d.session.State != nil {
		if _, err := d.session.State.Channel(channelID); err == nil {
			return nil
		}
	}
	_, err := d.session.Channel(channelID, discordgo.WithContext(ctx))
	return classify(err)
}

func (d *DiscordModerator) SendEmbed(ctx context.Context, channelID string, embed *discordgo.MessageEmbed) error {
	_, err := d.session.ChannelMessageSendEmbed(channelID, embed, discordgo.WithContext(ctx))
	return classify(err)
}

// classify wraps REST failures with the watchdog sentinels so callers can use
// errors.Is.
func classify(err error) error {
	if err == nil {
		return nil
	}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		switch restErr.Response.StatusCode {
		case http.StatusNotFound:
			return fmt.Errorf("%w: %w", watchdog.ErrNotFound, err)
		case http.StatusForbidden:
			return fmt.Errorf("%w: %w", watchdog.ErrForbidden, err)
		}
	}
	return err
}
