package maintenance

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/middleware"
)

// IgnoredCommand lists, and for the owner edits, the error kinds the bot
// swallows instead of reporting.
type IgnoredCommand struct {
	IsOwner middleware.OwnerFunc
}

func (c *IgnoredCommand) Name() string             { return "ignored" }
func (c *IgnoredCommand) Group() string            { return group }
func (c *IgnoredCommand) Category() string         { return category }
func (c *IgnoredCommand) UserPermissions() []int64 { return nil }
func (c *IgnoredCommand) Usage() string            { return "[add|remove <Kind>]" }

func (c *IgnoredCommand) Description() string {
	return "List or edit the error kinds that are not reported"
}

func (c *IgnoredCommand) SlashDefinition() *discordgo.ApplicationCommand {
	kinds := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(errkind.All()))
	for _, k := range errkind.All() {
		kinds = append(kinds, &discordgo.ApplicationCommandOptionChoice{Name: string(k), Value: string(k)})
	}
	kindOption := []*discordgo.ApplicationCommandOption{{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "kind",
		Description: "Error kind",
		Required:    true,
		Choices:     kinds,
	}}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Show ignored kinds"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "add", Description: "Stop reporting a kind", Options: kindOption},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "remove", Description: "Report a kind again", Options: kindOption},
		},
	}
}

func (c *IgnoredCommand) Run(ctx context.Context, req *command.Request) error {
	action := strings.ToLower(req.Arg(0, "list"))
	if action == "list" {
		return c.list(req)
	}
	if action != "add" && action != "remove" {
		return errkind.New(errkind.BadArgument, "Usage: `ignored [add|remove <Kind>]`.")
	}

	if c.IsOwner == nil || !c.IsOwner(req.AuthorID()) {
		return errkind.New(errkind.NotOwner, "Only the bot owner can change ignored errors.")
	}
	kind, ok := errkind.Parse(req.Arg(1, ""))
	if !ok {
		return errkind.New(errkind.BadArgument, "Unknown error kind `%s`. Known kinds: %s.",
			req.Arg(1, ""), joinKinds(errkind.All()))
	}

	var (
		changed bool
		err     error
	)
	if action == "add" {
		changed, err = req.Storage.IgnoreKind(string(kind))
	} else {
		changed, err = req.Storage.UnignoreKind(string(kind))
	}
	if err != nil {
		return fmt.Errorf("%s ignored kind %s: %w", action, kind, err)
	}

	middleware.Logger(ctx).Info().Str("kind", string(kind)).Str("action", action).Bool("changed", changed).Msg("ignored kinds edited")
	switch {
	case !changed && action == "add":
		return req.Replyf("`%s` was already ignored.", kind)
	case !changed:
		return req.Replyf("`%s` wasn't ignored.", kind)
	case action == "add":
		return req.Replyf("`%s` errors are now ignored.", kind)
	default:
		return req.Replyf("`%s` errors are reported again.", kind)
	}
}

func (c *IgnoredCommand) list(req *command.Request) error {
	kinds, err := req.Storage.IgnoredKinds()
	if err != nil {
		return err
	}
	if len(kinds) == 0 {
		return req.Reply("No error kinds are ignored.")
	}
	return req.Reply("Ignored error kinds: `" + strings.Join(kinds, "`, `") + "`")
}

func joinKinds(kinds []errkind.Kind) string {
	names := make([]string, len(kinds))
	for i, k := range kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
