// Package pins copies pinned messages into an archive channel, so channels
// never hit Discord's pin limit and old pins stay readable.
package pins

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/middleware"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

const (
	group    = "pins"
	category = "📌 Pins"

	footerLayout = "02 Jan '06; 03:04 PM"
)

// Deps are what the pin commands need from the runtime.
type Deps struct {
	Jobs    *jobmgr.Manager
	IsOwner middleware.OwnerFunc
	// DefaultChannel is the archive channel for guilds that never ran pinchannel.
	DefaultChannel string
}

func Register(d Deps) {
	command.RegisterCommand(&PinsCommand{Jobs: d.Jobs, DefaultChannel: d.DefaultChannel},
		middleware.WithGuildOnly(),
		middleware.WithOwnerOnly(d.IsOwner),
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(&PinCommand{DefaultChannel: d.DefaultChannel},
		middleware.WithGuildOnly(),
		middleware.WithCooldown(5*time.Second, d.IsOwner),
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
	command.RegisterCommand(&PinChannelCommand{DefaultChannel: d.DefaultChannel},
		middleware.WithGuildOnly(),
		middleware.WithUserPermissionCheck(d.IsOwner),
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
}

// archiveChannel is the guild's configured archive channel or the default one.
func archiveChannel(req *command.Request, def string) (string, error) {
	if req.Storage != nil {
		id, err := req.Storage.PinChannel(req.GuildID)
		if err != nil {
			return "", err
		}
		if id != "" {
			return id, nil
		}
	}
	if def == "" {
		return "", errkind.New(errkind.BadArgument, "No pin channel is set, pick one with `pinchannel #channel`.")
	}
	return def, nil
}

// JumpURL links to m in the client.
func JumpURL(guildID string, m *discordgo.Message) string {
	if guildID == "" {
		guildID = "@me"
	}
	return fmt.Sprintf("https://discord.com/channels/%s/%s/%s", guildID, m.ChannelID, m.ID)
}

// ArchiveEmbed renders m for the archive channel.
func ArchiveEmbed(guildID string, m *discordgo.Message) *discordgo.MessageEmbed {
	e := &discordgo.MessageEmbed{
		Color:       command.RandomColor(),
		Description: m.Content + fmt.Sprintf("\n[Click to jump](%s \"Jump to message\")", JumpURL(guildID, m)),
		Footer:      &discordgo.MessageEmbedFooter{Text: m.Timestamp.UTC().Format(footerLayout)},
	}
	if m.Author != nil {
		e.Author = &discordgo.MessageEmbedAuthor{
			Name:    displayName(m),
			IconURL: m.Author.AvatarURL(""),
		}
	}
	for _, a := range m.Attachments {
		if strings.HasPrefix(a.ContentType, "image/") {
			e.Image = &discordgo.MessageEmbedImage{URL: a.URL}
			break
		}
	}
	return e
}

func displayName(m *discordgo.Message) string {
	if m.Member != nil && m.Member.Nick != "" {
		return m.Member.Nick
	}
	if m.Author.GlobalName != "" {
		return m.Author.GlobalName
	}
	return m.Author.Username
}

var messageLink = regexp.MustCompile(`^<?https://(?:(?:ptb|canary)\.)?discord(?:app)?\.com/channels/(\d+|@me)/(\d+)/(\d+)>?$`)

// ParseMessageLink splits a message link into guild, channel and message ids.
func ParseMessageLink(link string) (guildID, channelID, messageID string, ok bool) {
	m := messageLink.FindStringSubmatch(strings.TrimSpace(link))
	if m == nil {
		return "", "", "", false
	}
	return m[1], m[2], m[3], true
}

var channelMention = regexp.MustCompile(`^<#(\d+)>$|^(\d+)$`)

// ParseChannel accepts a channel mention or a bare id.
func ParseChannel(arg string) (string, bool) {
	m := channelMention.FindStringSubmatch(strings.TrimSpace(arg))
	if m == nil {
		return "", false
	}
	if m[1] != "" {
		return m[1], true
	}
	return m[2], true
}
