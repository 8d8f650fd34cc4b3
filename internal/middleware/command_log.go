package middleware

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// WithCommandLogger attaches a request-scoped logger to ctx, logs the outcome
// and records guild invocations in the command history.
func WithCommandLogger() cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			req, ok := command.RequestFrom(inv)
			if !ok {
				return c.Run(ctx, inv)
			}

			l := log.With().
				Str("req", req.ID).
				Str("cmd", c.Name()).
				Str("guild", req.GuildID).
				Str("user", req.AuthorID()).
				Bool("slash", req.IsSlash()).
				Logger()
			ctx = l.WithContext(ctx)

			start := time.Now()
			l.Debug().Strs("args", req.Args).Msg("command started")
			err := c.Run(ctx, inv)

			ev := l.Info()
			if err != nil {
				ev = l.Warn().Err(err)
			}
			ev.Dur("took", time.Since(start)).Msg("command finished")

			if req.GuildID != "" && req.Storage != nil {
				if e := recordCommand(req, c.Name()); e != nil {
					l.Warn().Err(e).Msg("failed to record command")
				}
			}
			return err
		})
	}
}

func recordCommand(req *command.Request, name string) error {
	var channelName, guildName, username string
	if req.Author != nil {
		username = req.Author.Username
	}
	if req.Session != nil && req.Session.State != nil {
		if ch, err := req.Session.State.Channel(req.ChannelID); err == nil {
			channelName = ch.Name
		}
		if g, err := req.Session.State.Guild(req.GuildID); err == nil {
			guildName = g.Name
		}
	}
	return req.Storage.SetCommand(req.GuildID, req.ChannelID, channelName, guildName,
		req.AuthorID(), username, name, req.Rest(0))
}

// Logger returns the request-scoped logger set by WithCommandLogger, or the global one.
func Logger(ctx context.Context) *zerolog.Logger {
	l := zerolog.Ctx(ctx)
	if l.GetLevel() == zerolog.Disabled {
		return &log.Logger
	}
	return l
}
