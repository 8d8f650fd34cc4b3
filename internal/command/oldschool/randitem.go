package oldschool

import (
	"context"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
)

type RandItemCommand struct {
	Prices Prices
}

func (c *RandItemCommand) Name() string             { return "randitem" }
func (c *RandItemCommand) Description() string      { return "Show a random item from the Grand Exchange" }
func (c *RandItemCommand) Group() string            { return group }
func (c *RandItemCommand) Category() string         { return category }
func (c *RandItemCommand) UserPermissions() []int64 { return nil }

func (c *RandItemCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{Name: c.Name(), Description: c.Description()}
}

func (c *RandItemCommand) Run(ctx context.Context, req *command.Request) error {
	deferReply(ctx, req)
	item, err := c.Prices.RandomItem(ctx)
	if err != nil {
		return err
	}
	return req.Reply("```\n" + item.Summary() + "```")
}
