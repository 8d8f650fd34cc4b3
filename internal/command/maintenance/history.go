package maintenance

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
)

const (
	maxMessageLength = 2000
	codeBlockOpen    = "```md\n"
	codeBlockClose   = "```"
)

// HistoryCommand shows the guild's most recent command invocations.
type HistoryCommand struct{}

func (c *HistoryCommand) Name() string        { return "history" }
func (c *HistoryCommand) Aliases() []string   { return []string{"commands-log"} }
func (c *HistoryCommand) Description() string { return "Review the most recent commands used here" }
func (c *HistoryCommand) Group() string       { return group }
func (c *HistoryCommand) Category() string    { return category }
func (c *HistoryCommand) UserPermissions() []int64 {
	return []int64{discordgo.PermissionManageServer}
}

func (c *HistoryCommand) SlashDefinition() *discordgo.ApplicationCommand {
	perm := int64(discordgo.PermissionManageServer)
	return &discordgo.ApplicationCommand{
		Name:                     c.Name(),
		Description:              c.Description(),
		DefaultMemberPermissions: &perm,
	}
}

func (c *HistoryCommand) Run(ctx context.Context, req *command.Request) error {
	records, err := req.Storage.GetCommandsHistory(req.GuildID)
	if err != nil {
		return fmt.Errorf("command history of %s: %w", req.GuildID, err)
	}
	if len(records) == 0 {
		return req.Reply("No command history yet.")
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%-19s  %-15s  %-12s  %s\n", "# Datetime", "# Username", "# Channel", "# Command")
	room := maxMessageLength - len(codeBlockOpen) - len(codeBlockClose)

	// Newest first, dropping the oldest lines once the message is full.
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		line := fmt.Sprintf("%-19s  %-15s  #%-11s  %s %s\n",
			r.Datetime.Format("2006-01-02 15:04:05"), r.Username, r.ChannelName, r.Command, r.Param)
		if b.Len()+len(line) > room {
			break
		}
		b.WriteString(line)
	}
	return req.Reply(codeBlockOpen + b.String() + codeBlockClose)
}
