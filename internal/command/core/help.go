package core

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/config"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

type HelpCommand struct {
	Prefix string
}

func (c *HelpCommand) Name() string             { return "help" }
func (c *HelpCommand) Description() string      { return "List commands, or show how to use one" }
func (c *HelpCommand) Group() string            { return group }
func (c *HelpCommand) Category() string         { return "🕯️ Information" }
func (c *HelpCommand) UserPermissions() []int64 { return nil }
func (c *HelpCommand) Usage() string            { return "[command]" }

func (c *HelpCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "command",
				Description: "Command to describe",
			},
		},
	}
}

func (c *HelpCommand) Run(ctx context.Context, req *command.Request) error {
	if name := req.Arg(0, ""); name != "" {
		target := cmd.DefaultRegistry.Get(name)
		if target == nil {
			return errkind.New(errkind.BadArgument, "No command called `%s` found.", name)
		}
		return req.ReplyEmbed(commandDetail(target, c.Prefix))
	}

	return req.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "Commands",
		Description: buildHelpByCategory(cmd.DefaultRegistry.GetAll()),
		Color:       command.EmbedColor,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Use %shelp <command> for details.", c.Prefix),
		},
	})
}

func buildHelpByCategory(all []cmd.Command) string {
	categoryMap := make(map[string][]cmd.Command)
	for _, c := range all {
		cat := "Other"
		if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && meta.Category() != "" {
			cat = meta.Category()
		}
		categoryMap[cat] = append(categoryMap[cat], c)
	}

	cats := make([]string, 0, len(categoryMap))
	for cat := range categoryMap {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, wj := weight(cats[i]), weight(cats[j])
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var sb strings.Builder
	for _, cat := range cats {
		sb.WriteString(fmt.Sprintf("**%s**\n", cat))
		cmds := categoryMap[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		for _, c := range cmds {
			sb.WriteString(fmt.Sprintf("`%s` - %s\n", c.Name(), c.Description()))
		}
		sb.WriteString("\n")
	}
	return strings.TrimSpace(sb.String())
}

// weight orders known categories first, unknown ones last.
func weight(cat string) int {
	if w, ok := config.CategoryWeights[cat]; ok {
		return w
	}
	return 1 << 20
}

func commandDetail(c cmd.Command, prefix string) *discordgo.MessageEmbed {
	root := cmd.Root(c)

	usage := prefix + c.Name()
	if u, ok := root.(command.UsageProvider); ok && u.Usage() != "" {
		usage += " " + u.Usage()
	}

	embed := &discordgo.MessageEmbed{
		Title:       prefix + c.Name(),
		Description: c.Description(),
		Color:       command.EmbedColor,
		Fields: []*discordgo.MessageEmbedField{
			{Name: "Usage", Value: "`" + usage + "`"},
		},
	}
	if a, ok := root.(cmd.Aliased); ok && len(a.Aliases()) > 0 {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{
			Name:  "Aliases",
			Value: "`" + strings.Join(a.Aliases(), "`, `") + "`",
		})
	}
	if meta, ok := root.(command.DiscordMeta); ok {
		embed.Fields = append(embed.Fields,
			&discordgo.MessageEmbedField{Name: "Group", Value: meta.Group(), Inline: true},
			&discordgo.MessageEmbedField{Name: "Category", Value: meta.Category(), Inline: true},
		)
	}
	return embed
}
