// Package commandtest provides a fake Discord REST API and throwaway storage
// for command tests.
package commandtest

import (
	"bytes"
	"encoding/json"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"

	"github.com/sudosnok/owopondbot/datastore"
	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/storage"
)

// Call is one request the fake API received.
type Call struct {
	Method string
	Path   string
	// Payload is the JSON body, or the payload_json part of a multipart body.
	Payload []byte
	Files   []string
}

// Discord records REST calls. Calls without a canned response are answered
// with an empty message.
type Discord struct {
	mu        sync.Mutex
	calls     []Call
	responses map[string]string
	failures  map[string]int
}

// Respond cans the JSON body returned for method on path, e.g.
// Respond("GET", "/api/v9/channels/c1/pins", "[]").
func (d *Discord) Respond(method, path, body string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.responses == nil {
		d.responses = make(map[string]string)
	}
	d.responses[method+" "+path] = body
}

// Fail makes method on path answer with status and a Discord error body.
func (d *Discord) Fail(method, path string, status int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.failures == nil {
		d.failures = make(map[string]int)
	}
	d.failures[method+" "+path] = status
}

// NewSession returns a session whose REST traffic goes to the returned fake.
func NewSession(t testing.TB) (*discordgo.Session, *Discord) {
	t.Helper()
	s, err := discordgo.New("Bot test-token")
	if err != nil {
		t.Fatalf("new session: %v", err)
	}
	d := &Discord{}
	s.Client = &http.Client{Transport: d}
	s.State.User = &discordgo.User{ID: "bot", Username: "bot"}
	return s, d
}

func (d *Discord) RoundTrip(r *http.Request) (*http.Response, error) {
	call := Call{Method: r.Method, Path: r.URL.Path}
	if r.Body != nil {
		body, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, err
		}
		call.Payload, call.Files = splitBody(r.Header.Get("Content-Type"), body)
	}

	d.mu.Lock()
	d.calls = append(d.calls, call)
	status, failed := d.failures[r.Method+" "+r.URL.Path]
	resp, ok := d.responses[r.Method+" "+r.URL.Path]
	d.mu.Unlock()
	switch {
	case failed:
		resp = `{"message":"Missing Access","code":50001}`
	case !ok:
		resp = `{"id":"1","channel_id":"c1"}`
	}
	if !failed {
		status = http.StatusOK
	}

	return &http.Response{
		StatusCode: status,
		Header:     http.Header{"Content-Type": []string{"application/json"}},
		Body:       io.NopCloser(strings.NewReader(resp)),
		Request:    r,
	}, nil
}

func splitBody(contentType string, body []byte) ([]byte, []string) {
	mediaType, params, err := mime.ParseMediaType(contentType)
	if err != nil || !strings.HasPrefix(mediaType, "multipart/") {
		return body, nil
	}
	var (
		payload []byte
		files   []string
	)
	mr := multipart.NewReader(bytes.NewReader(body), params["boundary"])
	for {
		part, err := mr.NextPart()
		if err != nil {
			break
		}
		if part.FormName() == "payload_json" {
			payload, _ = io.ReadAll(part)
			continue
		}
		if part.FileName() != "" {
			files = append(files, part.FileName())
		}
	}
	return payload, files
}

// Calls returns every recorded call in order.
func (d *Discord) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}

// Messages decodes the bodies of every message sent to a channel.
func (d *Discord) Messages() []discordgo.MessageSend {
	var out []discordgo.MessageSend
	for _, c := range d.Calls() {
		if c.Method != http.MethodPost || !strings.HasSuffix(c.Path, "/messages") {
			continue
		}
		var m discordgo.MessageSend
		if json.Unmarshal(c.Payload, &m) == nil {
			out = append(out, m)
		}
	}
	return out
}

// LastContent is the text of the last message sent, or "".
func (d *Discord) LastContent() string {
	msgs := d.Messages()
	if len(msgs) == 0 {
		return ""
	}
	return msgs[len(msgs)-1].Content
}

// NewStorage opens storage in a temporary directory that is closed with t.
func NewStorage(t testing.TB) *storage.Storage {
	t.Helper()
	ds, err := datastore.OpenWithConfig(datastore.Config{
		FilePath: filepath.Join(t.TempDir(), "store.json"),
		Logger:   zerolog.Nop(),
	})
	if err != nil {
		t.Fatalf("open datastore: %v", err)
	}
	s := storage.NewWithStore(ds)
	t.Cleanup(func() { s.Close() })
	return s
}

// MessageRequest builds a prefix-command request from user in guild, as the
// dispatcher would.
func MessageRequest(s *discordgo.Session, store *storage.Storage, guildID, userID, invoked string, args ...string) *command.Request {
	return command.NewMessageRequest(&command.MessageContext{
		Session: s,
		Event: &discordgo.MessageCreate{Message: &discordgo.Message{
			ID:        "m1",
			ChannelID: "c1",
			GuildID:   guildID,
			Author:    &discordgo.User{ID: userID, Username: "user-" + userID},
		}},
		Args:    args,
		Storage: store,
	}, invoked)
}
