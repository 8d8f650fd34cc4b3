package core

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
)

type PingCommand struct{}

func (c *PingCommand) Name() string             { return "ping" }
func (c *PingCommand) Description() string      { return "Check bot latency" }
func (c *PingCommand) Group() string            { return group }
func (c *PingCommand) Category() string         { return "🕯️ Information" }
func (c *PingCommand) UserPermissions() []int64 { return nil }

func (c *PingCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
	}
}

func (c *PingCommand) Run(ctx context.Context, req *command.Request) error {
	return req.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Pong! 🏓",
		Description: fmt.Sprintf("Latency: %dms", req.Session.HeartbeatLatency().Milliseconds()),
		Color:       command.EmbedColor,
	})
}
