package discord

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/storage"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

// traceTail is how many trace lines a user sees for an unexpected failure.
const traceTail = 2

// reportError is the top-level error hook. Kinded errors reply with their
// message unless the kind is ignored; anything else is a bug and the user gets
// the tail of its trace. Panics recovered on the worker pool arrive here as
// *jobmgr.PanicError.
func (b *Bot) reportError(req *command.Request, err error) {
	if kind, ok := errkind.KindOf(err); ok {
		if b.isIgnored(kind) {
			log.Debug().Str("req", req.ID).Str("kind", string(kind)).Msg("ignored command error")
			return
		}
		b.reply(req, errkind.Message(err))
		return
	}

	var pe *jobmgr.PanicError
	if errors.As(err, &pe) {
		b.reportPanic(req, pe.Value, pe.Stack)
		return
	}

	if errors.Is(err, context.Canceled) {
		log.Info().Str("req", req.ID).Str("cmd", req.Invoked).Msg("command cancelled")
		return
	}

	b.reportTrace(req, errorTrace(err))
}

func (b *Bot) reportPanic(req *command.Request, v any, stack []byte) {
	b.reportTrace(req, panicTrace(v, stack))
}

func (b *Bot) reportTrace(req *command.Request, trace []string) {
	ev := log.Error().Str("req", req.ID).Str("cmd", req.Invoked).Str("guild", req.GuildID)
	if b.cfg.PrintTracebacks {
		ev = ev.Str("trace", strings.Join(trace, "\n"))
	}
	ev.Msg("command failed")

	b.reply(req, "```\n"+lastLines(trace, traceTail)+"\n```")
}

func (b *Bot) reply(req *command.Request, msg string) {
	if req.Session == nil {
		return
	}
	if err := req.Reply(msg); err != nil {
		log.Warn().Err(err).Str("req", req.ID).Msg("failed to report error to user")
	}
}

func (b *Bot) isIgnored(kind errkind.Kind) bool {
	ignored := storage.DefaultIgnored
	if b.storage != nil {
		var err error
		if ignored, err = b.storage.IgnoredKinds(); err != nil {
			log.Warn().Err(err).Msg("reading ignored error kinds")
			ignored = storage.DefaultIgnored
		}
	}
	return slices.Contains(ignored, string(kind))
}

// errorTrace lists err's chain outermost first, one line per wrapped error.
func errorTrace(err error) []string {
	var lines []string
	for e := err; e != nil; e = errors.Unwrap(e) {
		lines = append(lines, fmt.Sprintf("%T: %s", e, e.Error()))
	}
	return lines
}

// panicTrace turns a goroutine stack into trace lines, outermost frame first,
// ending with the frame that panicked and the panic value.
func panicTrace(v any, stack []byte) []string {
	lines := strings.Split(strings.TrimSpace(string(stack)), "\n")

	// Frames above the panic call belong to the recovery machinery.
	var frames []string
	seenPanic := false
	for i := 0; i+1 < len(lines); i++ {
		fn := strings.TrimSpace(lines[i])
		if !seenPanic {
			if strings.HasPrefix(fn, "panic(") {
				seenPanic = true
				i++
			}
			continue
		}
		frames = append(frames, fn+" "+strings.TrimSpace(lines[i+1]))
		i++
	}
	slices.Reverse(frames)
	return append(frames, fmt.Sprintf("panic: %v", v))
}

func lastLines(lines []string, n int) string {
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.Join(lines, "\n")
}
