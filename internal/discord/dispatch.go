package discord

import (
	"runtime/debug"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// onMessageCreate dispatches messages starting with the command prefix or a mention of the bot.
func (b *Bot) onMessageCreate(s *discordgo.Session, m *discordgo.MessageCreate) {
	if m.Author == nil || m.Author.Bot {
		return
	}

	name, args, ok := command.ParseInvocation(m.Content, b.cfg.CommandPrefix)
	if !ok && s.State != nil && s.State.User != nil {
		name, args, ok = command.ParseInvocation(m.Content, mentionPrefix(m.Content, s.State.User.ID))
	}
	if !ok {
		return
	}

	req := command.NewMessageRequest(&command.MessageContext{
		Session: s,
		Event:   m,
		Args:    args,
		Storage: b.storage,
	}, name)

	c := cmd.DefaultRegistry.Get(name)
	if c == nil {
		b.reportError(req, errkind.New(errkind.CommandNotFound, "Command `%s` not found.", name))
		return
	}
	b.execute(c, req)
}

// onInteractionCreate dispatches slash commands.
func (b *Bot) onInteractionCreate(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	req := command.NewSlashRequest(&command.SlashInteractionContext{
		Session: s,
		Event:   i,
		Storage: b.storage,
	})

	c := cmd.DefaultRegistry.Get(req.Invoked)
	if c == nil {
		b.reportError(req, errkind.New(errkind.CommandNotFound, "Command `%s` not found.", req.Invoked))
		return
	}
	b.execute(c, req)
}

// execute runs c and routes any failure, including a panic, to the error hook.
func (b *Bot) execute(c cmd.Command, req *command.Request) {
	defer func() {
		if r := recover(); r != nil {
			b.reportPanic(req, r, debug.Stack())
		}
	}()
	if err := c.Run(b.context(), req.Invocation()); err != nil {
		b.reportError(req, err)
	}
}

// mentionPrefix returns the mention form of botID that content starts with,
// including the space after it, or "".
func mentionPrefix(content, botID string) string {
	if botID == "" {
		return ""
	}
	for _, p := range []string{"<@" + botID + ">", "<@!" + botID + ">"} {
		if !strings.HasPrefix(content, p) {
			continue
		}
		rest := content[len(p):]
		trimmed := strings.TrimLeft(rest, " ")
		return p + rest[:len(rest)-len(trimmed)]
	}
	return ""
}
