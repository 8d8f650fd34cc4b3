package middleware

import (
	"context"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// OwnerFunc reports whether a user ID belongs to the bot owner.
type OwnerFunc func(userID string) bool

// WithOwnerOnly lets only the bot owner run the command.
func WithOwnerOnly(isOwner OwnerFunc) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			req, ok := command.RequestFrom(inv)
			if !ok || isOwner == nil || !isOwner(req.AuthorID()) {
				return errkind.New(errkind.NotOwner, "Only the bot owner can use `%s`.", c.Name())
			}
			return c.Run(ctx, inv)
		})
	}
}
