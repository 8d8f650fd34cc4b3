package core

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/discord"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// CommandsCommand toggles command groups per guild.
type CommandsCommand struct{}

func (c *CommandsCommand) Name() string     { return "commands" }
func (c *CommandsCommand) Group() string    { return group }
func (c *CommandsCommand) Category() string { return "⚙️ Settings" }
func (c *CommandsCommand) Usage() string    { return "<status|enable|disable> [group]" }
func (c *CommandsCommand) Description() string {
	return "Enable or disable command groups on this server"
}
func (c *CommandsCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}

func (c *CommandsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	groupOpt := func() []*discordgo.ApplicationCommandOption {
		return []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "group",
			Description: "Command group",
			Required:    true,
		}}
	}
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "status", Description: "Show which groups are disabled"},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "enable", Description: "Enable a group", Options: groupOpt()},
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "disable", Description: "Disable a group", Options: groupOpt()},
		},
	}
}

func (c *CommandsCommand) Run(ctx context.Context, req *command.Request) error {
	groups := knownGroups(cmd.DefaultRegistry.GetAll())

	sub := strings.ToLower(req.Arg(0, "status"))
	if sub == "status" {
		disabled, err := req.Storage.GetDisabledGroups(req.GuildID)
		if err != nil {
			return fmt.Errorf("read disabled groups: %w", err)
		}
		return req.ReplyEmbed(&discordgo.MessageEmbed{
			Title:       "Command groups",
			Description: groupStatus(groups, disabled),
			Color:       command.EmbedColor,
		})
	}

	name := strings.ToLower(req.Arg(1, ""))
	if name == "" {
		return errkind.New(errkind.BadArgument, "Which group? Known groups: `%s`", strings.Join(groups, "`, `"))
	}
	if !slices.Contains(groups, name) {
		return errkind.New(errkind.BadArgument, "Unknown group `%s`. Known groups: `%s`", name, strings.Join(groups, "`, `"))
	}

	var err error
	switch sub {
	case "enable":
		err = req.Storage.EnableGroup(req.GuildID, name)
	case "disable":
		if name == group {
			return errkind.New(errkind.BadArgument, "The `%s` group can't be disabled.", group)
		}
		err = req.Storage.DisableGroup(req.GuildID, name)
	default:
		return errkind.New(errkind.BadArgument, "Unknown action `%s`, use status, enable or disable.", sub)
	}
	if err != nil {
		return fmt.Errorf("%s group %s: %w", sub, name, err)
	}

	discord.PublishSystemEvent(discord.SystemEvent{
		Type:    discord.SystemEventRefreshCommands,
		GuildID: req.GuildID,
		Target:  "group:" + name,
	})
	return req.Replyf("Group `%s` %sd.", name, sub)
}

func knownGroups(all []cmd.Command) []string {
	seen := make(map[string]struct{})
	for _, c := range all {
		if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && meta.Group() != "" {
			seen[meta.Group()] = struct{}{}
		}
	}
	out := make([]string, 0, len(seen))
	for g := range seen {
		out = append(out, g)
	}
	sort.Strings(out)
	return out
}

func groupStatus(groups, disabled []string) string {
	var sb strings.Builder
	for _, g := range groups {
		state := "✅ enabled"
		if slices.Contains(disabled, g) {
			state = "🚫 disabled"
		}
		sb.WriteString(fmt.Sprintf("`%s` %s\n", g, state))
	}
	return strings.TrimSpace(sb.String())
}
