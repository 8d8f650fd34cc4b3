package pins

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command/commandtest"
	"github.com/sudosnok/owopondbot/internal/errkind"
)

func TestParseSince(t *testing.T) {
	got, err := ParseSince("")
	if err != nil || !got.Equal(DefaultSince) {
		t.Errorf("default = %v, %v", got, err)
	}
	got, err = ParseSince("05:03:21")
	if err != nil {
		t.Fatal(err)
	}
	if want := time.Date(2021, time.March, 5, 0, 0, 0, 0, time.UTC); !got.Equal(want) {
		t.Errorf("ParseSince = %v, want %v", got, want)
	}
	for _, bad := range []string{"2021-03-05", "32:01:21", "yesterday"} {
		if _, err := ParseSince(bad); !errors.Is(err, errkind.BadArgument) {
			t.Errorf("ParseSince(%q) error = %v", bad, err)
		}
	}
}

func TestParseMessageLink(t *testing.T) {
	tests := []struct {
		link                string
		guild, channel, msg string
		ok                  bool
	}{
		{"https://discord.com/channels/1/2/3", "1", "2", "3", true},
		{"<https://canary.discord.com/channels/1/2/3>", "1", "2", "3", true},
		{"https://discordapp.com/channels/@me/2/3", "@me", "2", "3", true},
		{"https://example.com/channels/1/2/3", "", "", "", false},
		{"https://discord.com/channels/1/2", "", "", "", false},
	}
	for _, tt := range tests {
		g, c, m, ok := ParseMessageLink(tt.link)
		if ok != tt.ok || g != tt.guild || c != tt.channel || m != tt.msg {
			t.Errorf("ParseMessageLink(%q) = %q %q %q %v", tt.link, g, c, m, ok)
		}
	}
}

func TestParseChannel(t *testing.T) {
	for in, want := range map[string]string{"<#42>": "42", "42": "42", " <#7> ": "7"} {
		if got, ok := ParseChannel(in); !ok || got != want {
			t.Errorf("ParseChannel(%q) = %q, %v", in, got, ok)
		}
	}
	if _, ok := ParseChannel("#general"); ok {
		t.Error("channel name accepted as id")
	}
}

func pinned(id string, day int) *discordgo.Message {
	return &discordgo.Message{
		ID:        id,
		ChannelID: "c1",
		Content:   "pin " + id,
		Timestamp: time.Date(2020, time.January, day, 12, 0, 0, 0, time.UTC),
		Author:    &discordgo.User{ID: "u" + id, Username: "user" + id},
	}
}

func TestSelectPins(t *testing.T) {
	// Newest first, as Discord returns them.
	in := []*discordgo.Message{pinned("c", 3), pinned("b", 2), pinned("a", 1)}
	got := SelectPins(in, time.Date(2020, time.January, 2, 0, 0, 0, 0, time.UTC))
	if len(got) != 2 || got[0].ID != "b" || got[1].ID != "c" {
		var ids []string
		for _, m := range got {
			ids = append(ids, m.ID)
		}
		t.Errorf("selected = %v, want [b c]", ids)
	}
}

func TestArchiveEmbed(t *testing.T) {
	m := pinned("9", 4)
	m.Member = &discordgo.Member{Nick: "Nickname"}
	m.Attachments = []*discordgo.MessageAttachment{
		{URL: "https://cdn/x.txt", ContentType: "text/plain"},
		{URL: "https://cdn/x.png", ContentType: "image/png"},
	}
	e := ArchiveEmbed("g1", m)

	if e.Author == nil || e.Author.Name != "Nickname" {
		t.Errorf("author = %+v", e.Author)
	}
	if !strings.Contains(e.Description, "pin 9") || !strings.Contains(e.Description, "https://discord.com/channels/g1/c1/9") {
		t.Errorf("description = %q", e.Description)
	}
	if e.Image == nil || e.Image.URL != "https://cdn/x.png" {
		t.Errorf("image = %+v", e.Image)
	}
	if e.Footer.Text != "04 Jan '20; 12:00 PM" {
		t.Errorf("footer = %q", e.Footer.Text)
	}
}

func TestArchive(t *testing.T) {
	s, d := commandtest.NewSession(t)
	d.Respond("GET", "/api/v9/channels/c1/pins", `[
		{"id":"3","channel_id":"c1","content":"newest","timestamp":"2020-01-03T00:00:00Z","author":{"id":"u","username":"a"}},
		{"id":"2","channel_id":"c1","content":"middle","timestamp":"2020-01-02T00:00:00Z","author":{"id":"u","username":"a"}},
		{"id":"1","channel_id":"c1","content":"oldest","timestamp":"2015-01-01T00:00:00Z","author":{"id":"u","username":"a"}}
	]`)

	n, err := Archive(context.Background(), s, "g1", "c1", "archive", DefaultSince)
	if err != nil {
		t.Fatal(err)
	}
	if n != 2 {
		t.Fatalf("archived %d, want 2", n)
	}
	msgs := d.Messages()
	if len(msgs) != 2 {
		t.Fatalf("sent %d messages", len(msgs))
	}
	if !strings.Contains(msgs[0].Embeds[0].Description, "middle") || !strings.Contains(msgs[1].Embeds[0].Description, "newest") {
		t.Error("pins not archived oldest first")
	}
	for _, c := range d.Calls() {
		if c.Method == "POST" && c.Path != "/api/v9/channels/archive/messages" {
			t.Errorf("posted to %s", c.Path)
		}
	}
}

func TestArchive_Cancelled(t *testing.T) {
	s, d := commandtest.NewSession(t)
	d.Respond("GET", "/api/v9/channels/c1/pins",
		`[{"id":"1","channel_id":"c1","timestamp":"2020-01-01T00:00:00Z","author":{"id":"u","username":"a"}}]`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	n, err := Archive(ctx, s, "g1", "c1", "archive", DefaultSince)
	if !errors.Is(err, context.Canceled) || n != 0 {
		t.Errorf("Archive = %d, %v", n, err)
	}
}

func TestPinCommand_Target(t *testing.T) {
	s, d := commandtest.NewSession(t)
	store := commandtest.NewStorage(t)
	c := &PinCommand{DefaultChannel: "archive"}

	tests := []struct {
		name string
		args []string
	}{
		{"nothing to pin", nil},
		{"not a link", []string{"hello"}},
		{"other server", []string{"https://discord.com/channels/other/c1/5"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := commandtest.MessageRequest(s, store, "g1", "u1", "pin", tt.args...)
			if err := c.Run(context.Background(), req); !errors.Is(err, errkind.BadArgument) {
				t.Errorf("error = %v, want BadArgument", err)
			}
		})
	}

	req := commandtest.MessageRequest(s, store, "g1", "u1", "pin")
	req.Message.ReferencedMessage = pinned("7", 1)
	if err := c.Run(context.Background(), req); err != nil {
		t.Fatal(err)
	}
	msgs := d.Messages()
	if len(msgs) != 2 || len(msgs[0].Embeds) != 1 || msgs[1].Content != "Pinned to <#archive>." {
		t.Errorf("messages = %+v", msgs)
	}
}

func TestArchiveChannel(t *testing.T) {
	s, _ := commandtest.NewSession(t)
	store := commandtest.NewStorage(t)
	req := commandtest.MessageRequest(s, store, "g1", "u1", "pin")

	if _, err := archiveChannel(req, ""); !errors.Is(err, errkind.BadArgument) {
		t.Errorf("no channel error = %v", err)
	}
	if got, _ := archiveChannel(req, "fallback"); got != "fallback" {
		t.Errorf("fallback = %q", got)
	}
	if err := store.SetPinChannel("g1", "configured"); err != nil {
		t.Fatal(err)
	}
	if got, _ := archiveChannel(req, "fallback"); got != "configured" {
		t.Errorf("configured = %q", got)
	}
}
