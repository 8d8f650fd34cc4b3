package discord

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"
)

// hashCache remembers, per guild, the definition hash of every slash command
// last sent to Discord.
type hashCache struct {
	dir string
}

func (c hashCache) path(guildID string) string {
	return filepath.Join(c.dir, guildID+".json")
}

// load returns the cached hashes, empty when the guild was never synced.
func (c hashCache) load(guildID string) map[string]string {
	out := make(map[string]string)
	data, err := os.ReadFile(c.path(guildID))
	if err != nil {
		return out
	}
	if err := json.Unmarshal(data, &out); err != nil {
		log.Warn().Err(err).Str("guild", guildID).Msg("corrupt command cache, resyncing")
		return make(map[string]string)
	}
	return out
}

func (c hashCache) save(guildID string, hashes map[string]string) {
	path := c.path(guildID)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("creating command cache dir")
		return
	}
	data, err := json.MarshalIndent(hashes, "", "  ")
	if err != nil {
		return
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("writing command cache")
	}
}
