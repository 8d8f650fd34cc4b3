package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
)

// Config is read from the environment, after an optional .env file.
type Config struct {
	DiscordToken    string   `env:"DISCORD_TOKEN,required,notEmpty"`
	OwnerID         string   `env:"DISCORD_OWNER_ID"`
	CommandPrefix   string   `env:"COMMAND_PREFIX" envDefault:"."`
	StoragePath     string   `env:"STORAGE_PATH" envDefault:"datastore.json"`
	InitSlash       bool     `env:"INIT_SLASH_COMMANDS" envDefault:"false"`
	GuildBlacklist  []string `env:"DISCORD_GUILD_BLACKLIST" envSeparator:","`
	PinChannelID    string   `env:"PIN_CHANNEL_ID"`
	CommandCacheDir string   `env:"COMMAND_CACHE_DIR" envDefault:"data/commands"`

	ResolverCacheSize int           `env:"RESOLVER_CACHE_SIZE" envDefault:"15"`
	WorkerCount       int           `env:"WORKER_COUNT" envDefault:"2"`
	HTTPTimeout       time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	HTTPUserAgent     string        `env:"HTTP_USER_AGENT"`

	LogLevel        string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile         string `env:"LOG_FILE"`
	PrintTracebacks bool   `env:"PRINT_TRACEBACKS" envDefault:"true"`
	StatusAddr      string `env:"STATUS_ADDR"`
}

// Load reads .env if present and parses the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Warn().Err(err).Msg("reading .env")
	}
	return Parse(env.Options{})
}

// Parse parses the environment described by opts, e.g. a fixed map in tests.
func Parse(opts env.Options) (*Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, opts); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.ResolverCacheSize < 1 {
		return nil, fmt.Errorf("parse config: RESOLVER_CACHE_SIZE must be at least 1, got %d", cfg.ResolverCacheSize)
	}
	if cfg.WorkerCount < 1 {
		cfg.WorkerCount = 1
	}
	return &cfg, nil
}

// IsOwner reports whether userID is the configured bot owner.
func (c *Config) IsOwner(userID string) bool {
	return c.OwnerID != "" && userID == c.OwnerID
}

// IsBlacklisted reports whether the bot should leave guildID.
func (c *Config) IsBlacklisted(guildID string) bool {
	for _, id := range c.GuildBlacklist {
		if id == guildID {
			return true
		}
	}
	return false
}
