package cmd

import (
	"context"
	"strings"
	"testing"
)

type stubCommand struct {
	name    string
	aliases []string
	calls   *[]string
}

func (s *stubCommand) Name() string        { return s.name }
func (s *stubCommand) Description() string { return "stub " + s.name }
func (s *stubCommand) Aliases() []string   { return s.aliases }
func (s *stubCommand) Run(ctx context.Context, inv *Invocation) error {
	if s.calls != nil {
		*s.calls = append(*s.calls, "run")
	}
	return nil
}

func tagging(tag string, calls *[]string) Middleware {
	return func(c Command) Command {
		return Wrap(c, func(ctx context.Context, inv *Invocation) error {
			*calls = append(*calls, tag)
			return c.Run(ctx, inv)
		})
	}
}

func TestRegistry_Aliases(t *testing.T) {
	r := NewRegistry()
	r.Register(&stubCommand{name: "invert", aliases: []string{"negative"}})
	r.Register(&stubCommand{name: "rotate"})

	tests := []struct {
		lookup string
		want   string
	}{
		{"invert", "invert"},
		{"negative", "invert"},
		{"NEGATIVE", "invert"},
		{"rotate", "rotate"},
	}
	for _, tt := range tests {
		c := r.Get(tt.lookup)
		if c == nil {
			t.Fatalf("Get(%q) returned nil", tt.lookup)
		}
		if c.Name() != tt.want {
			t.Errorf("Get(%q) = %q, want %q", tt.lookup, c.Name(), tt.want)
		}
	}

	if r.Get("missing") != nil {
		t.Error("Get(missing) should be nil")
	}
	if got := len(r.GetAll()); got != 2 {
		t.Errorf("GetAll returned %d commands, want 2", got)
	}
}

func TestRegistry_AliasesThroughMiddleware(t *testing.T) {
	var calls []string
	r := NewRegistry()
	r.Register(Apply(&stubCommand{name: "invert", aliases: []string{"negative"}}, tagging("a", &calls)))

	if r.Get("negative") == nil {
		t.Fatal("alias of wrapped command not registered")
	}
}

func TestApply_Order(t *testing.T) {
	var calls []string
	c := Apply(&stubCommand{name: "x", calls: &calls}, tagging("inner", &calls), tagging("outer", &calls))

	if err := c.Run(context.Background(), &Invocation{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if got := strings.Join(calls, ","); got != "outer,inner,run" {
		t.Errorf("call order = %s", got)
	}
	if _, ok := Root(c).(*stubCommand); !ok {
		t.Errorf("Root returned %T", Root(c))
	}
	if c.Name() != "x" || c.Description() != "stub x" {
		t.Errorf("wrapped identity lost: %s / %s", c.Name(), c.Description())
	}
}
