// cmd/discord/main.go
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/command/core"
	"github.com/sudosnok/owopondbot/internal/command/images"
	"github.com/sudosnok/owopondbot/internal/command/maintenance"
	"github.com/sudosnok/owopondbot/internal/command/oldschool"
	"github.com/sudosnok/owopondbot/internal/command/pins"
	_ "github.com/sudosnok/owopondbot/internal/command/roll"
	"github.com/sudosnok/owopondbot/internal/config"
	"github.com/sudosnok/owopondbot/internal/discord"
	"github.com/sudosnok/owopondbot/internal/httpfetch"
	"github.com/sudosnok/owopondbot/internal/imagesource"
	"github.com/sudosnok/owopondbot/internal/logger"
	"github.com/sudosnok/owopondbot/internal/osrs"
	"github.com/sudosnok/owopondbot/internal/status"
	"github.com/sudosnok/owopondbot/internal/storage"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

const (
	appName = "owopondbot"

	pendingCleanEvery = time.Hour
)

func main() {
	started := time.Now()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("configuration")
	}
	closer := logger.Setup(logger.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	defer closer.Close()

	log.Info().Str("app", appName).Str("prefix", cfg.CommandPrefix).Msg("starting bot")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.StoragePath).Msg("open storage")
	}
	defer store.Close()

	go storage.RunPendingCleaner(ctx, store, pendingCleanEvery)

	fetcher := httpfetch.New(
		httpfetch.WithUserAgent(cfg.HTTPUserAgent),
		httpfetch.WithTimeout(cfg.HTTPTimeout),
	)
	resolver, err := imagesource.NewResolver(fetcher, cfg.ResolverCacheSize)
	if err != nil {
		log.Fatal().Err(err).Msg("image resolver")
	}
	prices := osrs.New(fetcher)
	jobs := jobmgr.NewManager(cfg.WorkerCount, func(msg string) {
		log.Debug().Str("event", msg).Msg("job status")
	})

	bot := discord.NewBot(cfg, store)

	core.Register(cfg.CommandPrefix, bot.IsOwner)
	images.Register(images.Deps{Resolver: resolver, Jobs: jobs, IsOwner: bot.IsOwner})
	oldschool.Register(prices, jobs)
	pins.Register(pins.Deps{Jobs: jobs, IsOwner: bot.IsOwner, DefaultChannel: cfg.PinChannelID})
	maintenance.Register(jobs, bot.IsOwner)

	if cfg.StatusAddr != "" {
		go func() {
			err := status.Run(ctx, cfg.StatusAddr, status.Sources{
				Bot:      bot,
				Resolver: resolver.Stats,
				Store:    store.Stats,
				Jobs:     jobs.List,
				Started:  started,
			})
			if err != nil {
				log.Error().Err(err).Msg("status server exited")
			}
		}()
	}

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		log.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil {
			log.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	case <-ctx.Done():
	}

	// Let the session close before storage is flushed.
	for range errCh {
	}
	log.Info().Msg("bot exited cleanly")
}
