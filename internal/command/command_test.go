package command

import (
	"context"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasb-eyer/go-colorful"

	"github.com/sudosnok/owopondbot/pkg/cmd"
)

func TestSplitArgs(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{"", nil},
		{"   ", nil},
		{"rotate 90", []string{"rotate", "90"}},
		{"graph add  \"dragon bones\"  coal", []string{"graph", "add", "dragon bones", "coal"}},
		{"don't stop", []string{"don't", "stop"}},
		{"say \"unterminated quote", []string{"say", "unterminated quote"}},
		{"a\"b c", []string{"a\"b", "c"}},
		{"empty \"\" arg", []string{"empty", "", "arg"}},
		{"tabs\tand\nnewlines", []string{"tabs", "and", "newlines"}},
	}
	for _, tt := range tests {
		got := SplitArgs(tt.in)
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("SplitArgs(%q) = %#v, want %#v", tt.in, got, tt.want)
		}
	}
}

func TestParseInvocation(t *testing.T) {
	tests := []struct {
		content  string
		wantName string
		wantArgs []string
		wantOK   bool
	}{
		{".rotate 90 <https://x/y.png>", "rotate", []string{"90", "<https://x/y.png>"}, true},
		{".HELP", "help", []string{}, true},
		{"rotate 90", "", nil, false},
		{".", "", nil, false},
		{". help", "", nil, false},
	}
	for _, tt := range tests {
		name, args, ok := ParseInvocation(tt.content, ".")
		if ok != tt.wantOK || name != tt.wantName {
			t.Errorf("ParseInvocation(%q) = %q, %v; want %q, %v", tt.content, name, ok, tt.wantName, tt.wantOK)
			continue
		}
		if ok && len(args) != len(tt.wantArgs) {
			t.Errorf("ParseInvocation(%q) args = %#v, want %#v", tt.content, args, tt.wantArgs)
		}
	}
}

func TestSlashArgs(t *testing.T) {
	att := &discordgo.MessageAttachment{ID: "a1", URL: "https://cdn/a.png", Filename: "a.png"}
	data := discordgo.ApplicationCommandInteractionData{
		Name: "graph",
		Options: []*discordgo.ApplicationCommandInteractionDataOption{
			{
				Name: "show",
				Type: discordgo.ApplicationCommandOptionSubCommand,
				Options: []*discordgo.ApplicationCommandInteractionDataOption{
					{Name: "separate", Type: discordgo.ApplicationCommandOptionBoolean, Value: true},
					{Name: "width", Type: discordgo.ApplicationCommandOptionInteger, Value: float64(3)},
					{Name: "ratio", Type: discordgo.ApplicationCommandOptionNumber, Value: 1.5},
					{Name: "image", Type: discordgo.ApplicationCommandOptionAttachment, Value: "a1"},
					{Name: "missing", Type: discordgo.ApplicationCommandOptionAttachment, Value: "nope"},
				},
			},
		},
		Resolved: &discordgo.ApplicationCommandInteractionDataResolved{
			Attachments: map[string]*discordgo.MessageAttachment{"a1": att},
		},
	}

	args, attachments := SlashArgs(data)
	if want := []string{"show", "true", "3", "1.5"}; !reflect.DeepEqual(args, want) {
		t.Errorf("args = %#v, want %#v", args, want)
	}
	if len(attachments) != 1 || attachments[0] != att {
		t.Errorf("attachments = %#v, want [a1]", attachments)
	}
}

func TestNewMessageRequest(t *testing.T) {
	author := &discordgo.User{ID: "42", Username: "snok", Avatar: "abc"}
	msg := &discordgo.Message{
		ID:        "m1",
		GuildID:   "g1",
		ChannelID: "c1",
		Author:    author,
		Attachments: []*discordgo.MessageAttachment{
			{ID: "a1", URL: "https://cdn/a.png", Filename: "a.png"},
		},
	}
	req := NewMessageRequest(&MessageContext{Event: &discordgo.MessageCreate{Message: msg}, Args: []string{"90"}}, "rotate")

	if req.ID == "" || req.IsSlash() || req.GuildID != "g1" || req.ChannelID != "c1" || req.AuthorID() != "42" {
		t.Fatalf("unexpected request: %+v", req)
	}
	if got := req.Arg(0, ""); got != "90" {
		t.Errorf("Arg(0) = %q", got)
	}
	if got := req.Arg(3, "def"); got != "def" {
		t.Errorf("Arg(3) = %q, want default", got)
	}

	img := req.ImageRequest("https://x/y.png")
	if len(img.Attachments) != 1 || img.Attachments[0].ID != "a1" {
		t.Errorf("attachments = %+v", img.Attachments)
	}
	if len(img.Links) != 1 {
		t.Errorf("links = %v", img.Links)
	}
	if img.Avatar.UserID != "42" || !strings.Contains(img.Avatar.URL, "size=128") {
		t.Errorf("avatar = %+v", img.Avatar)
	}

	inv := req.Invocation()
	got, ok := RequestFrom(inv)
	if !ok || got != req || inv.Invoked != "rotate" {
		t.Errorf("RequestFrom(Invocation()) = %v, %v", got, ok)
	}
}

type stubDiscordCommand struct {
	ran *Request
}

func (s *stubDiscordCommand) Name() string             { return "invert" }
func (s *stubDiscordCommand) Description() string      { return "Invert colours" }
func (s *stubDiscordCommand) Group() string            { return "images" }
func (s *stubDiscordCommand) Category() string         { return "🖼️ Images" }
func (s *stubDiscordCommand) UserPermissions() []int64 { return nil }
func (s *stubDiscordCommand) Aliases() []string        { return []string{"negative"} }
func (s *stubDiscordCommand) Usage() string            { return "[link]" }
func (s *stubDiscordCommand) Run(ctx context.Context, req *Request) error {
	s.ran = req
	return nil
}

func TestDiscordAdapter(t *testing.T) {
	inner := &stubDiscordCommand{}
	reg := cmd.NewRegistry()
	reg.Register(cmd.Apply(&DiscordAdapter{Cmd: inner}))

	c := reg.Get("negative")
	if c == nil {
		t.Fatal("alias not registered")
	}
	if u, ok := cmd.Root(c).(UsageProvider); !ok || u.Usage() != "[link]" {
		t.Errorf("usage not exposed through adapter")
	}

	req := &Request{Invoked: "negative"}
	if err := c.Run(context.Background(), req.Invocation()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if inner.ran != req {
		t.Error("inner command did not receive the request")
	}

	if err := c.Run(context.Background(), &cmd.Invocation{Data: "bogus"}); err == nil {
		t.Error("expected error for foreign invocation data")
	}
}

func TestImageEmbed(t *testing.T) {
	e := ImageEmbed("Rotationings finished", "rotate.png", 1500*time.Millisecond)
	if e.Image.URL != "attachment://rotate.png" {
		t.Errorf("image url = %q", e.Image.URL)
	}
	if e.Footer.Text != "Processed in 1.50s" {
		t.Errorf("footer = %q", e.Footer.Text)
	}
	if e.Color < 0 || e.Color > 0xffffff {
		t.Errorf("color out of range: %x", e.Color)
	}
	if got := ColorInt(colorful.Color{R: 1, G: 0, B: 0}); got != 0xff0000 {
		t.Errorf("ColorInt(red) = %x", got)
	}
}
