// Package errkind names the user-facing failure kinds the bot reports.
package errkind

import (
	"errors"
	"fmt"
	"sort"
)

// Kind classifies an error. A Kind is itself an error so errors.Is(err, Kind) works.
type Kind string

func (k Kind) Error() string { return string(k) }

const (
	InvalidLinkFormat     Kind = "InvalidLinkFormat"
	SourceUnavailable     Kind = "SourceUnavailable"
	MixedSourceError      Kind = "MixedSourceError"
	ArgumentOutOfRange    Kind = "ArgumentOutOfRange"
	BadArgument           Kind = "BadArgument"
	CommandNotFound       Kind = "CommandNotFound"
	CommandOnCooldown     Kind = "CommandOnCooldown"
	MaxConcurrencyReached Kind = "MaxConcurrencyReached"
	NotOwner              Kind = "NotOwner"
	ItemNotFound          Kind = "ItemNotFound"
	MissingPermissions    Kind = "MissingPermissions"
	CommandDisabled       Kind = "CommandDisabled"
)

var known = map[Kind]struct{}{
	InvalidLinkFormat:     {},
	SourceUnavailable:     {},
	MixedSourceError:      {},
	ArgumentOutOfRange:    {},
	BadArgument:           {},
	CommandNotFound:       {},
	CommandOnCooldown:     {},
	MaxConcurrencyReached: {},
	NotOwner:              {},
	ItemNotFound:          {},
	MissingPermissions:    {},
	CommandDisabled:       {},
}

// Error is a kinded error with a message meant for the chat user.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Msg)
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the error's Kind.
func (e *Error) Is(target error) bool {
	k, ok := target.(Kind)
	return ok && k == e.Kind
}

// New returns a kinded error with a formatted user message.
func New(kind Kind, format string, args ...any) error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap attaches kind and a user message to err.
func Wrap(err error, kind Kind, msg string) error {
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf returns the kind of the first kinded error in err's chain.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	var k Kind
	if errors.As(err, &k) {
		return k, true
	}
	return "", false
}

// Message returns the user message of err, or its kind's default text.
func Message(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Msg != "" {
		return e.Msg
	}
	if k, ok := KindOf(err); ok {
		return k.Default()
	}
	return err.Error()
}

// Default is the reply used when a kinded error has no message of its own.
func (k Kind) Default() string {
	switch k {
	case InvalidLinkFormat:
		return "That link doesn't point to a PNG or JPEG image."
	case SourceUnavailable:
		return "Couldn't fetch or read that image."
	case MixedSourceError:
		return "Use either two attachments or two links, not a mix."
	case ArgumentOutOfRange:
		return "That argument is out of range."
	case BadArgument:
		return "Bad argument."
	case CommandNotFound:
		return "No such command."
	case CommandOnCooldown:
		return "This command is on cooldown."
	case MaxConcurrencyReached:
		return "This command is already running here, try again when it's done."
	case NotOwner:
		return "Only the bot owner can do that."
	case ItemNotFound:
		return "Item not found."
	case MissingPermissions:
		return "You don't have permission to do that."
	case CommandDisabled:
		return "This command is disabled on this server."
	}
	return string(k)
}

// Parse returns the known Kind named s.
func Parse(s string) (Kind, bool) {
	k := Kind(s)
	_, ok := known[k]
	return k, ok
}

// All returns every known kind, sorted.
func All() []Kind {
	out := make([]Kind, 0, len(known))
	for k := range known {
		out = append(out, k)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
