package middleware

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// WithGroupAccessCheck rejects commands whose group is disabled in the guild.
func WithGroupAccessCheck() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			req, ok := command.RequestFrom(inv)
			if !ok || req.GuildID == "" || req.Storage == nil {
				return c.Run(ctx, inv)
			}
			if disabledGroup(c, req) {
				return errkind.New(errkind.CommandDisabled, "This command is disabled on this server.")
			}
			return c.Run(ctx, inv)
		})
	}
}

func disabledGroup(c cmd.Command, req *command.Request) bool {
	meta, ok := cmd.Root(c).(command.DiscordMeta)
	if !ok || meta.Group() == "" {
		return false
	}
	disabled, err := req.Storage.IsGroupDisabled(req.GuildID, meta.Group())
	if err != nil {
		log.Warn().Err(err).Str("guild", req.GuildID).Str("group", meta.Group()).Msg("group check failed")
		return false
	}
	return disabled
}
