// Package oldschool holds the Old School RuneScape Grand Exchange commands:
// price graphs, a per-user queue of items to plot together and random items.
package oldschool

import (
	"context"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/middleware"
	"github.com/sudosnok/owopondbot/internal/osrs"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

const (
	group    = "osrs"
	category = "📈 OSRS"

	// fetchWorkers bounds concurrent price history requests for graph show.
	fetchWorkers = 4
)

// Prices is the part of the Grand Exchange client the commands use.
type Prices interface {
	Lookup(ctx context.Context, name string) (*osrs.Item, error)
	History(ctx context.Context, it *osrs.Item) (*osrs.History, error)
	RandomItem(ctx context.Context) (*osrs.Item, error)
}

// Register adds graph, maxwidth and randitem to the default registry.
func Register(prices Prices, jobs *jobmgr.Manager) {
	command.RegisterCommand(&GraphCommand{Prices: prices, Jobs: jobs},
		middleware.WithMaxConcurrency(jobs, "graph", middleware.PerUser),
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(&MaxWidthCommand{},
		middleware.WithGuildOnly(),
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(&RandItemCommand{Prices: prices},
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
}

// queueKey is where a request's pending items live. Direct messages share one
// record so the queue works outside servers too.
func queueKey(req *command.Request) string {
	if req.GuildID == "" {
		return "dm"
	}
	return req.GuildID
}

// deferReply acknowledges a slow command. A failed acknowledgement only costs
// the typing indicator, so it is logged and the command carries on.
func deferReply(ctx context.Context, req *command.Request) {
	if err := req.Defer(); err != nil {
		middleware.Logger(ctx).Debug().Err(err).Msg("defer failed")
	}
}
