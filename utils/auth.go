package utils

import (
	"github.com/bwmarrin/discordgo"
)

// MemberPermissions computes a member's guild-level permission bits from the
// state cache. The guild owner and administrators get every bit. It returns
// false when the guild is not cached.
func MemberPermissions(state *discordgo.State, guildID string, member *discordgo.Member) (int64, bool) {
	if state == nil || member == nil {
		return 0, false
	}
	guild, err := state.Guild(guildID)
	if err != nil {
		return 0, false
	}
	return GuildPermissions(guild, member), true
}

// GuildPermissions folds the @everyone role and the member's roles together.
func GuildPermissions(guild *discordgo.Guild, member *discordgo.Member) int64 {
	if member.User != nil && guild.OwnerID == member.User.ID {
		return discordgo.PermissionAll
	}

	roles := make(map[string]int64, len(guild.Roles))
	for _, r := range guild.Roles {
		roles[r.ID] = r.Permissions
	}

	// The @everyone role shares the guild's ID.
	perms := roles[guild.ID]
	for _, id := range member.Roles {
		perms |= roles[id]
	}

	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}
