package command

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/google/uuid"

	"github.com/sudosnok/owopondbot/internal/imagesource"
	"github.com/sudosnok/owopondbot/internal/storage"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

// Request is a single command invocation, from a prefixed message or a slash
// interaction. Commands reply through it without knowing which one it was.
type Request struct {
	ID      string
	Invoked string
	Started time.Time

	Session *discordgo.Session
	Storage *storage.Storage

	GuildID     string
	ChannelID   string
	Author      *discordgo.User
	Member      *discordgo.Member
	Args        []string
	Attachments []*discordgo.MessageAttachment

	// Exactly one of Message and Interaction is set.
	Message     *discordgo.Message
	Interaction *discordgo.InteractionCreate

	mu        sync.Mutex
	deferred  bool
	responded bool
}

// NewMessageRequest builds a request for a prefixed message. The args exclude the command name.
func NewMessageRequest(mc *MessageContext, invoked string) *Request {
	m := mc.Event.Message
	return &Request{
		ID:          uuid.NewString(),
		Invoked:     invoked,
		Started:     time.Now(),
		Session:     mc.Session,
		Storage:     mc.Storage,
		GuildID:     m.GuildID,
		ChannelID:   m.ChannelID,
		Author:      m.Author,
		Member:      m.Member,
		Args:        mc.Args,
		Attachments: m.Attachments,
		Message:     m,
	}
}

// NewSlashRequest builds a request for an application command interaction.
func NewSlashRequest(sc *SlashInteractionContext) *Request {
	e := sc.Event
	data := e.ApplicationCommandData()
	args, attachments := SlashArgs(data)
	if sc.Args != nil {
		args = sc.Args
	}

	author := e.User
	if e.Member != nil && e.Member.User != nil {
		author = e.Member.User
	}

	return &Request{
		ID:          uuid.NewString(),
		Invoked:     data.Name,
		Started:     time.Now(),
		Session:     sc.Session,
		Storage:     sc.Storage,
		GuildID:     e.GuildID,
		ChannelID:   e.ChannelID,
		Author:      author,
		Member:      e.Member,
		Args:        args,
		Attachments: attachments,
		Interaction: e,
	}
}

// Invocation wraps r for dispatch through the registry.
func (r *Request) Invocation() *cmd.Invocation {
	return &cmd.Invocation{ID: r.ID, Invoked: r.Invoked, Args: r.Args, Data: r}
}

// IsSlash reports whether r came from an interaction.
func (r *Request) IsSlash() bool { return r.Interaction != nil }

// AuthorID is empty when the author is unknown.
func (r *Request) AuthorID() string {
	if r.Author == nil {
		return ""
	}
	return r.Author.ID
}

// Arg returns the i-th argument or def.
func (r *Request) Arg(i int, def string) string {
	if i < 0 || i >= len(r.Args) {
		return def
	}
	return r.Args[i]
}

// Rest joins the arguments from i on.
func (r *Request) Rest(i int) string {
	if i >= len(r.Args) {
		return ""
	}
	return strings.Join(r.Args[i:], " ")
}

// ImageRequest describes the images available to an image command: the
// invoking message's attachments, the given links and the author's avatar.
func (r *Request) ImageRequest(links ...string) imagesource.Request {
	req := imagesource.Request{Links: links}
	for _, a := range r.Attachments {
		if a == nil {
			continue
		}
		req.Attachments = append(req.Attachments, imagesource.Attachment{
			ID:       a.ID,
			URL:      a.URL,
			Filename: a.Filename,
		})
	}
	if r.Author != nil {
		req.Avatar = imagesource.Avatar{
			UserID: r.Author.ID,
			URL:    r.Author.AvatarURL(imagesource.AvatarSize),
			Name:   r.Author.Username + ".png",
		}
	}
	return req
}

// Defer acknowledges a slow command: a deferred response for interactions,
// a typing indicator for messages.
func (r *Request) Defer() error {
	if r.IsSlash() {
		r.mu.Lock()
		defer r.mu.Unlock()
		if r.deferred || r.responded {
			return nil
		}
		err := r.Session.InteractionRespond(r.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		})
		if err == nil {
			r.deferred = true
		}
		return err
	}
	return r.Session.ChannelTyping(r.ChannelID)
}

// Reply sends plain text.
func (r *Request) Reply(content string) error {
	return r.send(content, nil, nil)
}

// Replyf formats and sends plain text.
func (r *Request) Replyf(format string, args ...any) error {
	return r.Reply(fmt.Sprintf(format, args...))
}

// ReplyEmbed sends embed with optional files referenced as attachment://<name>.
func (r *Request) ReplyEmbed(embed *discordgo.MessageEmbed, files ...*discordgo.File) error {
	return r.send("", []*discordgo.MessageEmbed{embed}, files)
}

func (r *Request) send(content string, embeds []*discordgo.MessageEmbed, files []*discordgo.File) error {
	if !r.IsSlash() {
		_, err := r.Session.ChannelMessageSendComplex(r.ChannelID, &discordgo.MessageSend{
			Content: content,
			Embeds:  embeds,
			Files:   files,
		})
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// The first answer to an undeferred interaction is its response; everything
	// after that, including the answer to a deferred one, is a followup.
	if !r.deferred && !r.responded {
		err := r.Session.InteractionRespond(r.Interaction.Interaction, &discordgo.InteractionResponse{
			Type: discordgo.InteractionResponseChannelMessageWithSource,
			Data: &discordgo.InteractionResponseData{
				Content: content,
				Embeds:  embeds,
				Files:   files,
			},
		})
		if err == nil {
			r.responded = true
		}
		return err
	}

	_, err := r.Session.FollowupMessageCreate(r.Interaction.Interaction, true, &discordgo.WebhookParams{
		Content: content,
		Embeds:  embeds,
		Files:   files,
	})
	if err == nil {
		r.responded = true
	}
	return err
}

// Elapsed is the time since the request was built.
func (r *Request) Elapsed() time.Duration {
	return time.Since(r.Started)
}
