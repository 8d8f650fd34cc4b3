// Package docs renders the command reference into README.md.
package docs

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"text/template"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

const otherCategory = "Other"

// CommandSections renders one markdown section per category, ordered by
// weights (unknown categories last) and commands by name.
func CommandSections(commands []cmd.Command, prefix string, weights map[string]int) string {
	byCategory := make(map[string][]cmd.Command)
	for _, c := range commands {
		byCategory[categoryOf(c)] = append(byCategory[categoryOf(c)], c)
	}

	cats := make([]string, 0, len(byCategory))
	for cat := range byCategory {
		cats = append(cats, cat)
	}
	sort.Slice(cats, func(i, j int) bool {
		wi, oki := weights[cats[i]]
		wj, okj := weights[cats[j]]
		if oki != okj {
			return oki
		}
		if wi != wj {
			return wi < wj
		}
		return cats[i] < cats[j]
	})

	var b strings.Builder
	for i, cat := range cats {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### %s\n\n", cat)
		cmds := byCategory[cat]
		sort.Slice(cmds, func(i, j int) bool { return cmds[i].Name() < cmds[j].Name() })
		for _, c := range cmds {
			fmt.Fprintf(&b, "- **`%s%s`** %s", prefix, c.Name(), c.Description())
			if a, ok := cmd.Root(c).(cmd.Aliased); ok && len(a.Aliases()) > 0 {
				fmt.Fprintf(&b, " (aliases: `%s`)", strings.Join(a.Aliases(), "`, `"))
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func categoryOf(c cmd.Command) string {
	if meta, ok := cmd.Root(c).(command.DiscordMeta); ok && meta.Category() != "" {
		return meta.Category()
	}
	return otherCategory
}

// RenderReadme executes the README template with the command sections.
func RenderReadme(w io.Writer, tmpl string, sections string) error {
	t, err := template.New("readme").Parse(tmpl)
	if err != nil {
		return fmt.Errorf("parse readme template: %w", err)
	}
	data := struct{ CommandSections string }{CommandSections: sections}
	if err := t.Execute(w, data); err != nil {
		return fmt.Errorf("render readme: %w", err)
	}
	return nil
}
