package roll

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/middleware"
)

// maxFormulas bounds how many formulas one invocation rolls.
const maxFormulas = 5

type RollCommand struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func (c *RollCommand) Name() string             { return "roll" }
func (c *RollCommand) Description() string      { return "Roll dice like `2d20+1d6-2`" }
func (c *RollCommand) Group() string            { return "roll" }
func (c *RollCommand) Category() string         { return "🎲 Fun" }
func (c *RollCommand) UserPermissions() []int64 { return nil }
func (c *RollCommand) Usage() string            { return "<NdM[+|-K]>..." }

func (c *RollCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Type:        discordgo.ChatApplicationCommand,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "formula",
				Description: "Supports `2d6+1d4*2-3` and similar math",
				Required:    true,
			},
		},
	}
}

func (c *RollCommand) Run(ctx context.Context, req *command.Request) error {
	if len(req.Args) == 0 {
		return errkind.New(errkind.BadArgument, "Give me something to roll, e.g. `2d6+3`.")
	}
	formulas := req.Args
	if len(formulas) > maxFormulas {
		return errkind.New(errkind.ArgumentOutOfRange, "At most %d formulas at once.", maxFormulas)
	}

	results := make([]*Result, 0, len(formulas))
	for _, f := range formulas {
		res, err := c.evaluate(f)
		if err != nil {
			return errkind.New(errkind.BadArgument, "`%s` is not a valid die format: %v", f, err)
		}
		results = append(results, res)
	}

	return req.ReplyEmbed(&discordgo.MessageEmbed{
		Title:       "🎲 Dice Roll",
		Description: describe(results),
		Color:       command.EmbedColor,
	})
}

func (c *RollCommand) evaluate(formula string) (*Result, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return Evaluate(formula, c.rng)
}

func describe(results []*Result) string {
	var sb strings.Builder
	for i, r := range results {
		if i > 0 {
			sb.WriteString("\n\n")
		}
		sb.WriteString(fmt.Sprintf("**User Input**:\t`%s`\n**Calculation**:\t%s\n**Result**:\t**%d**", r.Formula, r.Detail, r.Total))
		if len(r.Rolls) > 0 {
			rolls := make([]string, len(r.Rolls))
			for j, v := range r.Rolls {
				rolls[j] = fmt.Sprint(v)
			}
			sb.WriteString(fmt.Sprintf("\n**Rolls**:\t%s\n**Average roll**:\t%.2f", strings.Join(rolls, ", "), r.Average()))
		}
	}
	return sb.String()
}

func init() {
	command.RegisterCommand(
		&RollCommand{},
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	)
}
