package docs

import (
	"context"
	"strings"
	"testing"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

type docCommand struct {
	name, category string
	aliases        []string
}

func (d *docCommand) Name() string                                { return d.name }
func (d *docCommand) Description() string                         { return "does " + d.name }
func (d *docCommand) Group() string                               { return "g" }
func (d *docCommand) Category() string                            { return d.category }
func (d *docCommand) UserPermissions() []int64                    { return nil }
func (d *docCommand) Aliases() []string                           { return d.aliases }
func (d *docCommand) Run(context.Context, *command.Request) error { return nil }

func TestCommandSections(t *testing.T) {
	cmds := []cmd.Command{
		&command.DiscordAdapter{Cmd: &docCommand{name: "rotate", category: "Images"}},
		&command.DiscordAdapter{Cmd: &docCommand{name: "invert", category: "Images", aliases: []string{"negative"}}},
		&command.DiscordAdapter{Cmd: &docCommand{name: "help", category: "Information"}},
		&command.DiscordAdapter{Cmd: &docCommand{name: "mystery", category: ""}},
	}
	out := CommandSections(cmds, ".", map[string]int{"Information": 0, "Images": 10})

	order := []string{"### Information", "`.help`", "### Images", "`.invert`", "(aliases: `negative`)", "`.rotate`", "### Other", "`.mystery`"}
	last := -1
	for _, s := range order {
		i := strings.Index(out, s)
		if i <= last {
			t.Fatalf("%q out of order in:\n%s", s, out)
		}
		last = i
	}
}

func TestRenderReadme(t *testing.T) {
	var b strings.Builder
	if err := RenderReadme(&b, "# Bot\n\n{{.CommandSections}}", "### X\n"); err != nil {
		t.Fatal(err)
	}
	if b.String() != "# Bot\n\n### X\n" {
		t.Errorf("rendered %q", b.String())
	}
	if err := RenderReadme(&b, "{{.Broken", ""); err == nil {
		t.Error("bad template accepted")
	}
}
