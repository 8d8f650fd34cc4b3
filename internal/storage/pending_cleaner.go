package storage

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"
)

// PendingTTL is how long an untouched pending graph list is kept.
const PendingTTL = 24 * time.Hour

// RunPendingCleaner drops stale pending graph lists every interval until ctx
// is done. Call from main or app lifecycle.
func RunPendingCleaner(ctx context.Context, store *Storage, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			n, err := store.PrunePending(time.Now().Add(-PendingTTL))
			if err != nil {
				log.Error().Err(err).Msg("pruning pending graphs")
				continue
			}
			if n > 0 {
				log.Info().Int("dropped", n).Msg("pruned stale pending graphs")
			}
		}
	}
}
