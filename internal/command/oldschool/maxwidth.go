package oldschool

import (
	"context"
	"strconv"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/storage"
)

var (
	minWidth = 2.0
	maxWidth = 4.0
)

// MaxWidthCommand sets how many tiles wide graph show draws per row.
type MaxWidthCommand struct{}

func (c *MaxWidthCommand) Name() string             { return "maxwidth" }
func (c *MaxWidthCommand) Aliases() []string        { return []string{"mw", "max_width"} }
func (c *MaxWidthCommand) Description() string      { return "Set the tile width of graph show, 2 to 4" }
func (c *MaxWidthCommand) Group() string            { return group }
func (c *MaxWidthCommand) Category() string         { return category }
func (c *MaxWidthCommand) UserPermissions() []int64 { return nil }
func (c *MaxWidthCommand) Usage() string            { return "<2..4>" }

func (c *MaxWidthCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionInteger,
			Name:        "width",
			Description: "Tiles per row",
			Required:    true,
			MinValue:    &minWidth,
			MaxValue:    maxWidth,
		}},
	}
}

func (c *MaxWidthCommand) Run(ctx context.Context, req *command.Request) error {
	if len(req.Args) == 0 {
		return errkind.New(errkind.BadArgument, "Give me the new max width.")
	}
	width, err := strconv.Atoi(req.Args[0])
	if err != nil {
		return errkind.New(errkind.BadArgument, "`%s` is not a whole number.", req.Args[0])
	}
	if width < int(minWidth) || width > int(maxWidth) {
		return errkind.New(errkind.ArgumentOutOfRange, "The new max width must be between 2 and 4 inclusive.")
	}

	prev, err := req.Storage.SetGraphWidth(req.GuildID, width)
	if err != nil {
		return err
	}
	if prev == 0 {
		prev = storage.DefaultGraphWidth
	}
	return req.Replyf("max_width changed; %d -> %d", prev, width)
}
