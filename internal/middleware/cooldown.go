package middleware

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/time/rate"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// cooldownBuckets bounds how many users are tracked per command.
const cooldownBuckets = 1024

// WithCooldown allows each user one use of the command per `per`. The owner is exempt.
func WithCooldown(per time.Duration, isOwner OwnerFunc) cmd.Middleware {
	return func(c cmd.Command) cmd.Command {
		// A bucket idle for `per` is full again, so it can be forgotten.
		buckets := expirable.NewLRU[string, *rate.Limiter](cooldownBuckets, nil, per)
		var mu sync.Mutex

		return cmd.Wrap(c, func(ctx context.Context, inv *cmd.Invocation) error {
			req, ok := command.RequestFrom(inv)
			if !ok {
				return c.Run(ctx, inv)
			}
			user := req.AuthorID()
			if isOwner != nil && isOwner(user) {
				return c.Run(ctx, inv)
			}

			mu.Lock()
			wait := takeToken(buckets, user, per)
			mu.Unlock()
			if wait > 0 {
				return errkind.New(errkind.CommandOnCooldown,
					"This command is on cooldown, try again in %.2fs.", wait.Seconds())
			}
			return c.Run(ctx, inv)
		})
	}
}

// takeToken spends user's token and returns how long until one is available
// if there was none. Callers serialize access to buckets.
func takeToken(buckets *expirable.LRU[string, *rate.Limiter], user string, per time.Duration) time.Duration {
	lim, found := buckets.Get(user)
	if !found {
		lim = rate.NewLimiter(rate.Every(per), 1)
	}
	// Re-adding refreshes the bucket's expiry.
	buckets.Add(user, lim)

	now := time.Now()
	r := lim.ReserveN(now, 1)
	wait := r.DelayFrom(now)
	if wait > 0 {
		r.CancelAt(now)
	}
	return wait
}
