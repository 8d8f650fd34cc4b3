package maintenance

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

type JobsCommand struct {
	Jobs *jobmgr.Manager
}

func (c *JobsCommand) Name() string             { return "jobs" }
func (c *JobsCommand) Description() string      { return "List or stop background jobs" }
func (c *JobsCommand) Group() string            { return group }
func (c *JobsCommand) Category() string         { return category }
func (c *JobsCommand) UserPermissions() []int64 { return nil }
func (c *JobsCommand) Usage() string            { return "[stop <name>]" }

func (c *JobsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{Type: discordgo.ApplicationCommandOptionSubCommand, Name: "list", Description: "Show running jobs"},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "stop",
				Description: "Cancel a job",
				Options: []*discordgo.ApplicationCommandOption{{
					Type: discordgo.ApplicationCommandOptionString, Name: "name", Description: "Job name", Required: true,
				}},
			},
		},
	}
}

func (c *JobsCommand) Run(ctx context.Context, req *command.Request) error {
	switch strings.ToLower(req.Arg(0, "list")) {
	case "list":
		msg := c.Jobs.Status()
		if busy := c.Jobs.Busy(); len(busy) > 0 {
			msg += "\nBusy scopes: " + strings.Join(busy, ", ")
		}
		return req.Reply(msg)
	case "stop":
		name := req.Arg(1, "")
		if err := c.Jobs.Stop(name); err != nil {
			if errors.Is(err, jobmgr.ErrNotRunning) {
				return errkind.New(errkind.BadArgument, "No job named `%s` is running.", name)
			}
			return err
		}
		return req.Replyf("Stopped `%s`.", name)
	}
	return errkind.New(errkind.BadArgument, "Usage: `jobs [stop <name>]`.")
}
