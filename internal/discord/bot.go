package discord

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/config"
	"github.com/sudosnok/owopondbot/internal/storage"
)

// Bot is the Discord runtime: it owns the gateway session, dispatches
// commands from prefixed messages and slash interactions, and keeps guild
// slash commands in sync.
type Bot struct {
	dg      *discordgo.Session
	cfg     *config.Config
	storage *storage.Storage

	mu      sync.RWMutex
	ctx     context.Context
	ownerID string
	ready   atomic.Bool
}

// NewBot creates a bot. The session is opened by Run.
func NewBot(cfg *config.Config, store *storage.Storage) *Bot {
	return &Bot{
		cfg:     cfg,
		storage: store,
		ctx:     context.Background(),
		ownerID: cfg.OwnerID,
	}
}

// Run connects to Discord and blocks until ctx is done.
func (b *Bot) Run(ctx context.Context) error {
	dg, err := discordgo.New("Bot " + b.cfg.DiscordToken)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	b.mu.Lock()
	b.dg = dg
	b.ctx = ctx
	b.mu.Unlock()

	b.configureIntents()
	dg.AddHandler(b.onReady)
	dg.AddHandler(b.onMessageCreate)
	dg.AddHandler(b.onInteractionCreate)
	dg.AddHandler(b.onGuildCreate)

	if err := dg.Open(); err != nil {
		return fmt.Errorf("failed to open Discord session: %w", err)
	}
	defer dg.Close()

	go b.handleSystemEvents(ctx)

	<-ctx.Done()
	b.ready.Store(false)
	log.Info().Msg("shutdown signal received, closing Discord session")
	return nil
}

func (b *Bot) configureIntents() {
	b.dg.Identify.Intents = discordgo.IntentGuilds |
		discordgo.IntentGuildMessages |
		discordgo.IntentDirectMessages |
		discordgo.IntentMessageContent
}

// context is the bot's lifetime context; commands run under it.
func (b *Bot) context() context.Context {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ctx
}

// IsOwner reports whether userID owns the bot. Without DISCORD_OWNER_ID the
// application owner is looked up once the session is ready.
func (b *Bot) IsOwner(userID string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.ownerID != "" && userID == b.ownerID
}

// Ready reports whether the gateway session is up.
func (b *Bot) Ready() bool { return b.ready.Load() }

// Latency is the last heartbeat round trip.
func (b *Bot) Latency() time.Duration {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.dg == nil {
		return 0
	}
	return b.dg.HeartbeatLatency()
}

// GuildCount is the number of guilds in the session state.
func (b *Bot) GuildCount() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.dg == nil || b.dg.State == nil {
		return 0
	}
	b.dg.State.RLock()
	defer b.dg.State.RUnlock()
	return len(b.dg.State.Guilds)
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	for _, g := range r.Guilds {
		if b.leaveIfBlacklisted(s, g.ID) {
			continue
		}
		if b.cfg.InitSlash {
			if err := b.registerCommands(g.ID); err != nil {
				log.Error().Err(err).Str("guild", g.ID).Msg("registering slash commands failed")
			}
		}
	}
	if !b.cfg.InitSlash {
		log.Info().Msg("slash command registration skipped")
	}

	b.resolveOwner(s)
	b.ready.Store(true)
	log.Info().
		Str("user", r.User.Username).
		Int("guilds", len(r.Guilds)).
		Str("prefix", b.cfg.CommandPrefix).
		Msg("Discord bot is running")
}

func (b *Bot) onGuildCreate(s *discordgo.Session, g *discordgo.GuildCreate) {
	log.Info().Str("guild", g.ID).Str("name", g.Name).Msg("guild available")
	if b.leaveIfBlacklisted(s, g.ID) {
		return
	}
	if !b.cfg.InitSlash {
		return
	}
	if err := b.registerCommands(g.ID); err != nil {
		log.Error().Err(err).Str("guild", g.ID).Msg("registering slash commands failed")
	}
}

func (b *Bot) leaveIfBlacklisted(s *discordgo.Session, guildID string) bool {
	if !b.cfg.IsBlacklisted(guildID) {
		return false
	}
	log.Info().Str("guild", guildID).Msg("leaving blacklisted guild")
	if err := s.GuildLeave(guildID); err != nil {
		log.Error().Err(err).Str("guild", guildID).Msg("failed to leave guild")
	}
	return true
}

func (b *Bot) resolveOwner(s *discordgo.Session) {
	b.mu.RLock()
	known := b.ownerID != ""
	b.mu.RUnlock()
	if known {
		return
	}

	app, err := s.Application("@me")
	if err != nil || app.Owner == nil {
		log.Warn().Err(err).Msg("could not resolve application owner; owner-only commands are unavailable")
		return
	}
	b.mu.Lock()
	b.ownerID = app.Owner.ID
	b.mu.Unlock()
	log.Info().Str("owner", app.Owner.ID).Msg("resolved bot owner")
}
