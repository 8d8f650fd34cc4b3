package middleware

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

var PermissionNames = map[int64]string{
	discordgo.PermissionKickMembers:    "Kick Members",
	discordgo.PermissionBanMembers:     "Ban Members",
	discordgo.PermissionAdministrator:  "Administrator",
	discordgo.PermissionManageChannels: "Manage Channels",
	discordgo.PermissionManageServer:   "Manage Server",
	discordgo.PermissionManageMessages: "Manage Messages",
}

// memberPermissions resolves the invoking member's permissions in the channel.
// Interactions carry them; messages need the session state.
var memberPermissions = func(req *command.Request) (int64, error) {
	if req.IsSlash() && req.Member != nil {
		return req.Member.Permissions, nil
	}
	return req.Session.UserChannelPermissions(req.AuthorID(), req.ChannelID)
}

// WithUserPermissionCheck requires at least one of the command's UserPermissions.
// Administrators and the bot owner always pass.
func WithUserPermissionCheck(isOwner OwnerFunc) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			req, ok := command.RequestFrom(inv)
			if !ok {
				return c.Run(ctx, inv)
			}
			meta, ok := cmd.Root(c).(command.DiscordMeta)
			if !ok || len(meta.UserPermissions()) == 0 {
				return c.Run(ctx, inv)
			}
			if isOwner != nil && isOwner(req.AuthorID()) {
				return c.Run(ctx, inv)
			}
			if req.GuildID == "" {
				return errkind.New(errkind.MissingPermissions, "`%s` needs server permissions and can't run in direct messages.", c.Name())
			}

			perms, err := memberPermissions(req)
			if err != nil {
				return fmt.Errorf("failed to get user permissions: %w", err)
			}
			if perms&discordgo.PermissionAdministrator != 0 {
				return c.Run(ctx, inv)
			}

			required := meta.UserPermissions()
			for _, p := range required {
				if perms&p != 0 {
					return c.Run(ctx, inv)
				}
			}

			var allowed []string
			for _, p := range required {
				name := PermissionNames[p]
				if name == "" {
					name = fmt.Sprintf("0x%x", p)
				}
				allowed = append(allowed, name)
			}
			return errkind.New(errkind.MissingPermissions,
				"You need at least one of the following permissions to run this command:\n`%s`",
				strings.Join(allowed, "`, `"))
		})
	}
}
