package middleware

import (
	"context"
	"errors"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

// Scope selects what a concurrency gate is keyed on.
type Scope int

const (
	PerGuild Scope = iota
	PerUser
)

func (s Scope) key(req *command.Request) string {
	if s == PerUser {
		return "user:" + req.AuthorID()
	}
	if req.GuildID == "" {
		// direct messages have no guild; gate them per user
		return "dm:" + req.AuthorID()
	}
	return "guild:" + req.GuildID
}

// WithMaxConcurrency lets one invocation of bucket run per scope at a time.
// Commands sharing a bucket share the gate. A second invocation fails at once.
func WithMaxConcurrency(jobs *jobmgr.Manager, bucket string, scope Scope) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			req, ok := command.RequestFrom(inv)
			if !ok {
				return c.Run(ctx, inv)
			}
			release, err := jobs.Acquire(bucket + ":" + scope.key(req))
			if errors.Is(err, jobmgr.ErrBusy) {
				where := "this server"
				if scope == PerUser {
					where = "you"
				}
				return errkind.New(errkind.MaxConcurrencyReached,
					"`%s` is already running for %s, try again when it's done.", c.Name(), where)
			}
			if err != nil {
				return err
			}
			defer release()
			return c.Run(ctx, inv)
		})
	}
}
