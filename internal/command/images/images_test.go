package images

import (
	"context"
	"errors"
	"image"
	"image/color"
	"math/rand"
	"strings"
	"testing"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/imagesource"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

func byName(t *testing.T, name string) *ImageCommand {
	t.Helper()
	for _, c := range definitions() {
		if c.name == name {
			return c
		}
	}
	t.Fatalf("no image command %q", name)
	return nil
}

func TestParseArguments(t *testing.T) {
	tests := []struct {
		cmd      string
		args     []string
		wantKind errkind.Kind
		number   int
		word     string
		links    int
	}{
		{cmd: "shift", args: nil},
		{cmd: "shift", args: []string{"https://x/a.png"}, links: 1},
		{cmd: "shift", args: []string{"cat"}, wantKind: errkind.InvalidLinkFormat},
		{cmd: "morejpeg", args: nil, number: 15},
		{cmd: "morejpeg", args: []string{"40", "<https://x/a.png>"}, number: 40, links: 1},
		{cmd: "morejpeg", args: []string{"https://x/a.png"}, number: 15, links: 1},
		{cmd: "morejpeg", args: []string{"101"}, wantKind: errkind.ArgumentOutOfRange},
		{cmd: "morejpeg", args: []string{"lots"}, wantKind: errkind.BadArgument},
		{cmd: "poster", args: []string{"3"}, number: 3},
		{cmd: "poster", args: []string{"0"}, wantKind: errkind.ArgumentOutOfRange},
		{cmd: "poster", args: nil, number: 8},
		{cmd: "rotate", args: []string{"-90"}, number: -90},
		{cmd: "rotate", args: nil, wantKind: errkind.BadArgument},
		{cmd: "rotate", args: []string{"1.5"}, wantKind: errkind.BadArgument},
		{cmd: "filter", args: []string{"Emboss"}, word: "emboss"},
		{cmd: "filter", args: []string{"sparkles"}, wantKind: errkind.ArgumentOutOfRange},
		{cmd: "filter", args: []string{"https://x/a.png"}, wantKind: errkind.BadArgument},
		{cmd: "diff", args: []string{"https://x/a.png", "https://x/b.png", "https://x/c.png"}, links: 2},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			p, err := byName(t, tt.cmd).parse(tt.args)
			if tt.wantKind != "" {
				if !errors.Is(err, tt.wantKind) {
					t.Fatalf("parse(%q) error = %v, want %s", tt.args, err, tt.wantKind)
				}
				return
			}
			if err != nil {
				t.Fatalf("parse(%q): %v", tt.args, err)
			}
			if p.number != tt.number || p.word != tt.word || len(p.links) != tt.links {
				t.Errorf("parse(%q) = %+v", tt.args, p)
			}
		})
	}
}

func TestDefinitions(t *testing.T) {
	seen := map[string]bool{}
	for _, c := range definitions() {
		if seen[c.name] {
			t.Errorf("duplicate command %q", c.name)
		}
		seen[c.name] = true
		if c.title == "" || c.cooldown <= 0 || c.op == nil || c.parse == nil {
			t.Errorf("%s is incomplete", c.name)
		}
		def := c.SlashDefinition()
		if def.Name != c.name || len(def.Options) == 0 {
			t.Errorf("%s slash definition = %+v", c.name, def)
		}
		// Required options must come first for Discord to accept the definition.
		optional := false
		for _, o := range def.Options {
			if o.Required && optional {
				t.Errorf("%s: required option %q after an optional one", c.name, o.Name)
			}
			optional = optional || !o.Required
		}
	}
	for _, name := range []string{"shift", "morejpeg", "diff", "invert", "poster", "filter", "rotate"} {
		if !seen[name] {
			t.Errorf("missing command %q", name)
		}
	}
}

func TestRun_RejectsBeforeTouchingDiscord(t *testing.T) {
	c := byName(t, "rotate")
	err := c.Run(context.Background(), &command.Request{Args: []string{"sideways"}})
	if !errors.Is(err, errkind.BadArgument) {
		t.Errorf("error = %v, want BadArgument", err)
	}
}

func TestRegister_Aliases(t *testing.T) {
	cmds := Commands(Deps{})
	reg := cmd.NewRegistry()
	for _, c := range cmds {
		reg.Register(&command.DiscordAdapter{Cmd: c})
	}
	if got := reg.Get("negative"); got == nil || got.Name() != "invert" {
		t.Errorf("negative resolved to %v", got)
	}
}

func solid(w, h int, c color.Color) image.Image {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func sourceOf(t *testing.T, img image.Image) *imagesource.Source {
	t.Helper()
	out, err := encodePNG(img, "x.png")
	if err != nil {
		t.Fatal(err)
	}
	src, err := imagesource.Decode(imagesource.KindLink, "x.png", out.Data)
	if err != nil {
		t.Fatal(err)
	}
	return src
}

func TestOperations(t *testing.T) {
	white := sourceOf(t, solid(8, 8, color.White))
	black := sourceOf(t, solid(8, 8, color.Black))

	tests := []struct {
		cmd      string
		in       *Input
		filename string
	}{
		{"shift", &Input{Sources: []*imagesource.Source{white}, Rand: rand.New(rand.NewSource(1))}, "shifted.jpg"},
		{"morejpeg", &Input{Sources: []*imagesource.Source{white}, Number: 15}, "morejpeg.jpg"},
		{"diff", &Input{Sources: []*imagesource.Source{white, black}}, "diff.png"},
		{"invert", &Input{Sources: []*imagesource.Source{white}}, "inverted.png"},
		{"poster", &Input{Sources: []*imagesource.Source{white}, Number: 2}, "poster.png"},
		{"filter", &Input{Sources: []*imagesource.Source{white}, Word: "blur"}, "filtered.png"},
		{"rotate", &Input{Sources: []*imagesource.Source{white}, Number: 90}, "rotated.png"},
	}
	for _, tt := range tests {
		t.Run(tt.cmd, func(t *testing.T) {
			out, err := byName(t, tt.cmd).op(context.Background(), tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if out.Filename != tt.filename || len(out.Data) == 0 {
				t.Errorf("output = %s (%d bytes)", out.Filename, len(out.Data))
			}
			want := "image/png"
			if strings.HasSuffix(tt.filename, ".jpg") {
				want = "image/jpeg"
			}
			if got := contentType(out.Filename); got != want {
				t.Errorf("content type = %s, want %s", got, want)
			}
		})
	}
}
