package pins

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
)

// PinCommand archives a single message given by link or by replying to it.
type PinCommand struct {
	DefaultChannel string
}

func (c *PinCommand) Name() string             { return "pin" }
func (c *PinCommand) Description() string      { return "Post a message to the pin channel" }
func (c *PinCommand) Group() string            { return group }
func (c *PinCommand) Category() string         { return category }
func (c *PinCommand) UserPermissions() []int64 { return nil }
func (c *PinCommand) Usage() string            { return "[message link], or reply to a message" }

func (c *PinCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "link",
			Description: "Link to the message",
			Required:    true,
		}},
	}
}

func (c *PinCommand) Run(ctx context.Context, req *command.Request) error {
	msg, err := c.target(req)
	if err != nil {
		return err
	}
	target, err := archiveChannel(req, c.DefaultChannel)
	if err != nil {
		return err
	}
	if _, err := req.Session.ChannelMessageSendEmbed(target, ArchiveEmbed(req.GuildID, msg)); err != nil {
		return fmt.Errorf("post pin %s: %w", msg.ID, err)
	}
	return req.Replyf("Pinned to <#%s>.", target)
}

// target finds the message to pin: a link argument wins over a reply.
func (c *PinCommand) target(req *command.Request) (*discordgo.Message, error) {
	if link := req.Arg(0, ""); link != "" {
		guildID, channelID, messageID, ok := ParseMessageLink(link)
		if !ok {
			return nil, errkind.New(errkind.BadArgument, "`%s` is not a message link.", link)
		}
		if guildID != req.GuildID {
			return nil, errkind.New(errkind.BadArgument, "That message is in another server.")
		}
		return fetch(req.Session, channelID, messageID)
	}

	if req.Message != nil {
		if req.Message.ReferencedMessage != nil {
			return req.Message.ReferencedMessage, nil
		}
		if ref := req.Message.MessageReference; ref != nil && ref.MessageID != "" {
			channelID := ref.ChannelID
			if channelID == "" {
				channelID = req.ChannelID
			}
			return fetch(req.Session, channelID, ref.MessageID)
		}
	}
	return nil, errkind.New(errkind.BadArgument, "Could not resolve message reference, give me a link or reply to the message.")
}

func fetch(s *discordgo.Session, channelID, messageID string) (*discordgo.Message, error) {
	m, err := s.ChannelMessage(channelID, messageID)
	if err != nil {
		return nil, errkind.Wrap(err, errkind.BadArgument, "Could not find that message.")
	}
	return m, nil
}
