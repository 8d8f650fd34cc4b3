package middleware

import (
	"context"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// WithGuildOnly rejects invocations from direct messages.
func WithGuildOnly() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			if req, ok := command.RequestFrom(inv); ok && req.GuildID == "" {
				return errkind.New(errkind.BadArgument, "This command only works in a server.")
			}
			return c.Run(ctx, inv)
		})
	}
}
