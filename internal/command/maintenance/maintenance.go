// Package maintenance holds the operator commands: the ignored error kinds,
// background jobs and the guild's command history.
package maintenance

import (
	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/middleware"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

const (
	group    = "core"
	category = "🛠️ Maintenance"
)

func Register(jobs *jobmgr.Manager, isOwner middleware.OwnerFunc) {
	command.RegisterCommand(&IgnoredCommand{IsOwner: isOwner},
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(&JobsCommand{Jobs: jobs},
		middleware.WithOwnerOnly(isOwner),
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(&HistoryCommand{},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(isOwner),
		middleware.WithCommandLogger(),
	)
}
