package discord

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// registerEvery paces command creation well under Discord's limit.
const registerEvery = time.Second / 40

func (b *Bot) hashes() hashCache {
	return hashCache{dir: b.cfg.CommandCacheDir}
}

// registerCommands syncs slash commands for a guild with Discord:
// deletes obsolete ones, creates/updates commands whose definition has changed.
func (b *Bot) registerCommands(guildID string) error {
	appID, err := b.appID()
	if err != nil {
		return err
	}

	remote, err := b.dg.ApplicationCommands(appID, guildID)
	if err != nil {
		return fmt.Errorf("list commands of guild %s: %w", guildID, err)
	}
	remoteByName := make(map[string]*discordgo.ApplicationCommand, len(remote))
	for _, c := range remote {
		remoteByName[c.Name] = c
	}

	disabled, _ := b.storage.GetDisabledGroups(guildID)
	local := buildCommandDefinitions(disabled)

	cache := b.hashes()
	hashes := cache.load(guildID)
	b.deleteObsoleteCommands(appID, guildID, remoteByName, local, hashes)
	b.upsertChangedCommands(appID, guildID, local, remoteByName, hashes)
	cache.save(guildID, hashes)
	return nil
}

// buildCommandDefinitions returns definitions for every registered command
// that has one and whose group is not disabled.
func buildCommandDefinitions(disabledGroups []string) []*discordgo.ApplicationCommand {
	var defs []*discordgo.ApplicationCommand
	for _, c := range cmd.DefaultRegistry.GetAll() {
		if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && slices.Contains(disabledGroups, meta.Group()) {
			continue
		}
		if def := commandDefinition(c); def != nil {
			defs = append(defs, def)
		}
	}
	return defs
}

// deleteObsoleteCommands removes commands from Discord that are no longer wanted.
func (b *Bot) deleteObsoleteCommands(appID, guildID string, remote map[string]*discordgo.ApplicationCommand, local []*discordgo.ApplicationCommand, hashes map[string]string) {
	localNames := make(map[string]struct{}, len(local))
	for _, d := range local {
		localNames[d.Name] = struct{}{}
	}

	for name, rc := range remote {
		if _, exists := localNames[name]; exists {
			continue
		}
		log.Info().Str("guild", guildID).Str("cmd", name).Msg("deleting obsolete command")
		if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("cmd", name).Msg("delete failed")
			continue
		}
		delete(hashes, name)
	}
}

// upsertChangedCommands creates or updates commands whose hash differs from the
// cached value or that Discord does not know about.
func (b *Bot) upsertChangedCommands(appID, guildID string, defs []*discordgo.ApplicationCommand, remote map[string]*discordgo.ApplicationCommand, hashes map[string]string) {
	changed := changedDefinitions(defs, remote, hashes)
	if len(changed) == 0 {
		return
	}

	log.Info().Str("guild", guildID).Int("count", len(changed)).Msg("registering changed commands")
	lim := rate.NewLimiter(rate.Every(registerEvery), 1)
	for _, d := range changed {
		if err := lim.Wait(b.context()); err != nil {
			return
		}
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, d); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("cmd", d.Name).Msg("register failed")
			continue
		}
		hashes[d.Name] = hashCommand(d)
		log.Debug().Str("guild", guildID).Str("cmd", d.Name).Msg("registered")
	}
}

func changedDefinitions(defs []*discordgo.ApplicationCommand, remote map[string]*discordgo.ApplicationCommand, hashes map[string]string) []*discordgo.ApplicationCommand {
	var changed []*discordgo.ApplicationCommand
	for _, d := range defs {
		_, known := remote[d.Name]
		if !known || hashes[d.Name] != hashCommand(d) {
			changed = append(changed, d)
		}
	}
	return changed
}

// handleRefreshCommands processes a SystemEventRefreshCommands event.
func (b *Bot) handleRefreshCommands(evt SystemEvent) {
	if !b.cfg.InitSlash {
		return
	}
	appID, err := b.appID()
	if err != nil {
		log.Error().Err(err).Str("guild", evt.GuildID).Msg("failed to resolve app ID")
		return
	}

	if b.cfg.IsBlacklisted(evt.GuildID) {
		b.removeAllCommands(appID, evt.GuildID)
		return
	}

	switch {
	case strings.HasPrefix(evt.Target, "group:"):
		b.refreshGroup(appID, evt.GuildID, strings.TrimPrefix(evt.Target, "group:"))
	case evt.Target == "" || strings.EqualFold(evt.Target, "all"):
		if err := b.registerCommands(evt.GuildID); err != nil {
			log.Error().Err(err).Str("guild", evt.GuildID).Msg("refresh failed")
		}
	default:
		b.refreshSingle(appID, evt.GuildID, evt.Target)
	}
}

func (b *Bot) removeAllCommands(appID, guildID string) {
	log.Info().Str("guild", guildID).Msg("blacklisted guild, removing all commands")
	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	for _, c := range existing {
		if err := b.dg.ApplicationCommandDelete(appID, guildID, c.ID); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("cmd", c.Name).Msg("delete failed")
		}
	}
	b.hashes().save(guildID, map[string]string{})
}

func (b *Bot) refreshGroup(appID, guildID, group string) {
	disabled, _ := b.storage.IsGroupDisabled(guildID, group)

	existing, _ := b.dg.ApplicationCommands(appID, guildID)
	existingByName := make(map[string]*discordgo.ApplicationCommand, len(existing))
	for _, c := range existing {
		existingByName[c.Name] = c
	}

	cache := b.hashes()
	hashes := cache.load(guildID)
	for _, c := range cmd.DefaultRegistry.GetAll() {
		meta, ok := cmd.Root(c).(command.DiscordMeta)
		if !ok || meta.Group() != group {
			continue
		}
		rc, registered := existingByName[c.Name()]
		switch {
		case disabled && registered:
			log.Info().Str("guild", guildID).Str("cmd", c.Name()).Msg("removing disabled command")
			if err := b.dg.ApplicationCommandDelete(appID, guildID, rc.ID); err == nil {
				delete(hashes, c.Name())
			}
		case !disabled && !registered:
			if def := commandDefinition(c); def != nil {
				log.Info().Str("guild", guildID).Str("cmd", c.Name()).Msg("registering enabled command")
				if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err == nil {
					hashes[def.Name] = hashCommand(def)
				}
			}
		}
	}
	cache.save(guildID, hashes)
}

func (b *Bot) refreshSingle(appID, guildID, name string) {
	c := cmd.DefaultRegistry.Get(name)
	if c == nil {
		log.Warn().Str("guild", guildID).Str("target", name).Msg("no command found for refresh target")
		return
	}
	if def := commandDefinition(c); def != nil {
		if _, err := b.dg.ApplicationCommandCreate(appID, guildID, def); err != nil {
			log.Error().Err(err).Str("guild", guildID).Str("cmd", def.Name).Msg("refresh failed")
		}
	}
}

// commandDefinition extracts the ApplicationCommand definition from a registered command,
// walking through middleware wrappers via cmd.Root.
func commandDefinition(c cmd.Command) *discordgo.ApplicationCommand {
	slash, ok := cmd.Root(c).(command.SlashProvider)
	if !ok {
		return nil
	}
	def := slash.SlashDefinition()
	if def == nil {
		return nil
	}
	if def.Type == 0 {
		def.Type = discordgo.ChatApplicationCommand
	}
	return def
}

// appID returns the bot's application ID, fetching from Discord if not cached in State.
func (b *Bot) appID() (string, error) {
	if b.dg.State != nil && b.dg.State.User != nil && b.dg.State.User.ID != "" {
		return b.dg.State.User.ID, nil
	}
	u, err := b.dg.User("@me")
	if err != nil {
		return "", fmt.Errorf("failed to fetch bot user: %w", err)
	}
	return u.ID, nil
}
