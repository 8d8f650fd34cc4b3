package command

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/storage"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// Discord-specific contexts (what the runtime receives before a Request is built).

type SlashInteractionContext struct {
	Session *discordgo.Session
	Event   *discordgo.InteractionCreate
	Args    []string
	Storage *storage.Storage
}

type MessageContext struct {
	Session *discordgo.Session
	Event   *discordgo.MessageCreate
	Args    []string
	Storage *storage.Storage
}

// SlashProvider is implemented by commands that are also registered as slash commands.
type SlashProvider interface {
	SlashDefinition() *discordgo.ApplicationCommand
}

// UsageProvider describes positional arguments for help output, e.g. "<degrees> [link]".
type UsageProvider interface {
	Usage() string
}

// DiscordMeta is exposed by the Discord adapter so middleware can read Group/Category/Permissions
// without depending on the concrete Discord command type.
type DiscordMeta interface {
	Group() string
	Category() string
	UserPermissions() []int64
}

// DiscordCommand is what individual Discord commands implement.
type DiscordCommand interface {
	Name() string
	Description() string
	Group() string
	Category() string
	UserPermissions() []int64
	Run(ctx context.Context, req *Request) error
}

// DiscordAdapter adapts a DiscordCommand to cmd.Command so it can live in the universal registry.
// It delegates SlashProvider, UsageProvider, Aliased and DiscordMeta to the inner command.
type DiscordAdapter struct {
	Cmd DiscordCommand
}

func (a *DiscordAdapter) Name() string             { return a.Cmd.Name() }
func (a *DiscordAdapter) Description() string      { return a.Cmd.Description() }
func (a *DiscordAdapter) Group() string            { return a.Cmd.Group() }
func (a *DiscordAdapter) Category() string         { return a.Cmd.Category() }
func (a *DiscordAdapter) UserPermissions() []int64 { return a.Cmd.UserPermissions() }

func (a *DiscordAdapter) Run(ctx context.Context, inv *cmd.Invocation) error {
	req, ok := RequestFrom(inv)
	if !ok {
		return fmt.Errorf("command %s: unsupported invocation data %T", a.Cmd.Name(), inv.Data)
	}
	return a.Cmd.Run(ctx, req)
}

func (a *DiscordAdapter) Aliases() []string {
	if al, ok := a.Cmd.(cmd.Aliased); ok {
		return al.Aliases()
	}
	return nil
}

func (a *DiscordAdapter) Usage() string {
	if u, ok := a.Cmd.(UsageProvider); ok {
		return u.Usage()
	}
	return ""
}

func (a *DiscordAdapter) SlashDefinition() *discordgo.ApplicationCommand {
	if sp, ok := a.Cmd.(SlashProvider); ok {
		return sp.SlashDefinition()
	}
	return nil
}

// RegisterCommand registers a Discord command with the universal registry and applies middlewares.
func RegisterCommand(discordCmd DiscordCommand, mws ...cmd.Middleware) {
	c := cmd.Apply(&DiscordAdapter{Cmd: discordCmd}, mws...)
	cmd.DefaultRegistry.Register(c)
}

// RequestFrom extracts the Request an adapter stored in inv.
func RequestFrom(inv *cmd.Invocation) (*Request, bool) {
	if inv == nil {
		return nil, false
	}
	req, ok := inv.Data.(*Request)
	return req, ok && req != nil
}
