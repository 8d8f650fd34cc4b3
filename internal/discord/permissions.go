package discord

import (
	"github.com/bwmarrin/discordgo"
)

// archivePerms are what the bot needs in a channel it copies pins into.
const archivePerms = discordgo.PermissionViewChannel | discordgo.PermissionSendMessages | discordgo.PermissionEmbedLinks

// CanArchiveTo reports whether the bot can post archive embeds in channelID.
func CanArchiveTo(s *discordgo.Session, channelID string) bool {
	if s == nil || s.State == nil || s.State.User == nil {
		return false
	}
	perms, err := s.UserChannelPermissions(s.State.User.ID, channelID)
	if err != nil {
		return false
	}
	return hasAll(perms, archivePerms)
}

// CanReadHistory reports whether the bot can list pins and messages in channelID.
func CanReadHistory(s *discordgo.Session, channelID string) bool {
	if s == nil || s.State == nil || s.State.User == nil {
		return false
	}
	perms, err := s.UserChannelPermissions(s.State.User.ID, channelID)
	if err != nil {
		return false
	}
	return hasAll(perms, discordgo.PermissionViewChannel|discordgo.PermissionReadMessageHistory)
}

func hasAll(perms, want int64) bool {
	return perms&discordgo.PermissionAdministrator != 0 || perms&want == want
}
