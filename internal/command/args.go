package command

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/bwmarrin/discordgo"
)

// SplitArgs splits a message into words. Double quotes group words; an
// unterminated quote runs to the end of the input. Other quote characters are
// literal so chat text like "don't" survives.
func SplitArgs(s string) []string {
	var (
		args    []string
		cur     strings.Builder
		inQuote bool
		started bool
	)
	flush := func() {
		if started {
			args = append(args, cur.String())
		}
		cur.Reset()
		started = false
	}

	for _, r := range s {
		switch {
		case r == '"':
			if inQuote {
				inQuote = false
				flush()
				continue
			}
			if cur.Len() == 0 {
				inQuote = true
				started = true
				continue
			}
			cur.WriteRune(r)
		case unicode.IsSpace(r) && !inQuote:
			flush()
		default:
			cur.WriteRune(r)
			started = true
		}
	}
	flush()
	return args
}

// ParseInvocation splits content after prefix into the invoked name and its
// arguments. ok is false when content does not start with prefix or names nothing.
func ParseInvocation(content, prefix string) (name string, args []string, ok bool) {
	if prefix == "" || !strings.HasPrefix(content, prefix) {
		return "", nil, false
	}
	words := SplitArgs(strings.TrimPrefix(content, prefix))
	if len(words) == 0 || strings.HasPrefix(content[len(prefix):], " ") {
		return "", nil, false
	}
	return strings.ToLower(words[0]), words[1:], true
}

// SlashArgs flattens interaction options into positional arguments in the
// order they were given. Subcommand names become arguments themselves.
// Attachment options are returned separately and resolved from data.Resolved.
func SlashArgs(data discordgo.ApplicationCommandInteractionData) ([]string, []*discordgo.MessageAttachment) {
	var (
		args        []string
		attachments []*discordgo.MessageAttachment
	)

	var walk func(opts []*discordgo.ApplicationCommandInteractionDataOption)
	walk = func(opts []*discordgo.ApplicationCommandInteractionDataOption) {
		for _, o := range opts {
			switch o.Type {
			case discordgo.ApplicationCommandOptionSubCommand, discordgo.ApplicationCommandOptionSubCommandGroup:
				args = append(args, o.Name)
				walk(o.Options)
			case discordgo.ApplicationCommandOptionAttachment:
				id, _ := o.Value.(string)
				if data.Resolved != nil {
					if a, ok := data.Resolved.Attachments[id]; ok {
						attachments = append(attachments, a)
					}
				}
			default:
				args = append(args, optionString(o.Value))
			}
		}
	}
	walk(data.Options)
	return args, attachments
}

func optionString(v interface{}) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		if x == float64(int64(x)) {
			return fmt.Sprintf("%d", int64(x))
		}
		return fmt.Sprintf("%g", x)
	case nil:
		return ""
	default:
		return fmt.Sprint(x)
	}
}
