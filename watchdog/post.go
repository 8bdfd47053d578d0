package watchdog

import "time"

// Guild permission bits the watchdog cares about. Values match Discord's.
const (
	PermissionKickMembers    int64 = 1 << 1
	PermissionBanMembers     int64 = 1 << 2
	PermissionAdministrator  int64 = 1 << 3
	PermissionManageGuild    int64 = 1 << 5
	PermissionManageMessages int64 = 1 << 13

	elevatedPermissions = PermissionAdministrator | PermissionManageGuild |
		PermissionManageMessages | PermissionBanMembers | PermissionKickMembers
)

// Attachment describes an uploaded file by metadata only.
type Attachment struct {
	Filename    string
	Size        int
	ContentType string
}

// MemberInfo is present when the author resolved to a guild member.
type MemberInfo struct {
	JoinedAt    time.Time // zero when unknown
	Permissions int64     // computed guild-level permissions
}

// Author is either a full guild member (Member != nil) or a bare user such as a
// webhook.
type Author struct {
	ID     string
	Name   string
	Bot    bool
	Member *MemberInfo
}

// IsMember reports whether the author resolved to a guild member record.
func (a Author) IsMember() bool {
	return a.Member != nil
}

// Elevated reports whether the author holds any staff-level permission.
// Bare users never do.
func (a Author) Elevated() bool {
	if a.Member == nil {
		return false
	}
	return a.Member.Permissions&elevatedPermissions != 0
}

// Post is an inbound guild message as seen by the watchdog.
type Post struct {
	GuildID     string
	ChannelID   string
	MessageID   string
	Permalink   string
	Content     string
	Attachments []Attachment
	EmbedURLs   []string
	Author      Author
}

// Key identifies the per-user state inside one guild.
type Key struct {
	GuildID string
	UserID  string
}

// PostRecord is one tracked post inside a sliding window.
type PostRecord struct {
	Timestamp time.Time
	ChannelID string
	MessageID string
	Permalink string
	Signature string
}
