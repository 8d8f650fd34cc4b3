package discord

import (
	"context"

	"github.com/rs/zerolog/log"
)

func (b *Bot) handleSystemEvents(ctx context.Context) {
	for {
		select {
		case ev := <-SystemEvents():
			switch ev.Type {
			case SystemEventRefreshCommands:
				log.Info().Str("guild", ev.GuildID).Str("target", ev.Target).Msg("refreshing commands")
				go b.handleRefreshCommands(ev)
			default:
				log.Warn().Str("type", string(ev.Type)).Msg("unknown system event")
			}
		case <-ctx.Done():
			return
		}
	}
}
