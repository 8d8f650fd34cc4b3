package pins

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/discord"
	"github.com/sudosnok/owopondbot/internal/errkind"
)

// PinChannelCommand shows or sets the guild's archive channel.
type PinChannelCommand struct {
	DefaultChannel string
}

func (c *PinChannelCommand) Name() string        { return "pinchannel" }
func (c *PinChannelCommand) Description() string { return "Show or set the channel pins are copied to" }
func (c *PinChannelCommand) Group() string       { return group }
func (c *PinChannelCommand) Category() string    { return category }
func (c *PinChannelCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}
func (c *PinChannelCommand) Usage() string { return "[#channel]" }

func (c *PinChannelCommand) SlashDefinition() *discordgo.ApplicationCommand {
	perm := int64(discordgo.PermissionManageServer)
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &perm,
		Options: []*discordgo.ApplicationCommandOption{{
			Type:         discordgo.ApplicationCommandOptionChannel,
			Name:         "channel",
			Description:  "Archive channel",
			ChannelTypes: []discordgo.ChannelType{discordgo.ChannelTypeGuildText},
		}},
	}
}

func (c *PinChannelCommand) Run(ctx context.Context, req *command.Request) error {
	arg := req.Arg(0, "")
	if arg == "" {
		current, err := archiveChannel(req, c.DefaultChannel)
		if err != nil {
			return err
		}
		return req.Replyf("Pins are copied to <#%s>.", current)
	}

	channelID, ok := ParseChannel(arg)
	if !ok {
		return errkind.New(errkind.BadArgument, "`%s` is not a channel.", arg)
	}
	if !discord.CanArchiveTo(req.Session, channelID) {
		return errkind.New(errkind.MissingPermissions, "I can't post embeds in <#%s>.", channelID)
	}
	if err := req.Storage.SetPinChannel(req.GuildID, channelID); err != nil {
		return err
	}
	return req.Replyf("Pins will be copied to <#%s>.", channelID)
}
