// Package cmd is the transport-agnostic command core. A command has a name, a
// description and Run(ctx, invocation); adapters decide how it is dispatched.
package cmd

import "context"

// Invocation is what an adapter hands to a command. Data carries the adapter's
// own context (for Discord, a *command.MessageContext or *command.SlashInteractionContext).
type Invocation struct {
	ID      string
	Invoked string
	Args    []string
	Data    interface{}
}

// Command is the universal contract shared by every adapter.
type Command interface {
	Name() string
	Description() string
	Run(ctx context.Context, inv *Invocation) error
}

// Aliased is implemented by commands reachable under more than one name.
type Aliased interface {
	Aliases() []string
}
