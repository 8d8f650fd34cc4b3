// Package core holds the commands every server gets: help, ping and group toggles.
package core

import (
	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/middleware"
)

const group = "core"

// Register adds the core commands to the default registry.
func Register(prefix string, isOwner middleware.OwnerFunc) {
	command.RegisterCommand(
		&HelpCommand{Prefix: prefix},
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(
		&PingCommand{},
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(
		&CommandsCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(isOwner),
		middleware.WithCommandLogger(),
	)
}
