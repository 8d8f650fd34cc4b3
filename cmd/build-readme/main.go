// Command build-readme regenerates README.md from README.md.tmpl and the
// registered commands.
package main

import (
	"bytes"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/command/core"
	"github.com/sudosnok/owopondbot/internal/command/images"
	"github.com/sudosnok/owopondbot/internal/command/maintenance"
	"github.com/sudosnok/owopondbot/internal/command/oldschool"
	"github.com/sudosnok/owopondbot/internal/command/pins"
	_ "github.com/sudosnok/owopondbot/internal/command/roll"
	"github.com/sudosnok/owopondbot/internal/config"
	"github.com/sudosnok/owopondbot/internal/docs"
	"github.com/sudosnok/owopondbot/internal/logger"
	"github.com/sudosnok/owopondbot/pkg/cmd"
)

const (
	templatePath = "README.md.tmpl"
	outputPath   = "README.md"
	prefix       = "."
)

func main() {
	logger.Setup(logger.Options{Level: "info"})

	// Commands are only listed, never run, so they need no live dependencies.
	core.Register(prefix, nil)
	images.Register(images.Deps{})
	oldschool.Register(nil, nil)
	pins.Register(pins.Deps{})
	maintenance.Register(nil, nil)

	tmpl, err := os.ReadFile(templatePath)
	if err != nil {
		log.Fatal().Err(err).Msg("read template")
	}

	var out bytes.Buffer
	sections := docs.CommandSections(cmd.DefaultRegistry.GetAll(), prefix, config.CategoryWeights)
	if err := docs.RenderReadme(&out, string(tmpl), sections); err != nil {
		log.Fatal().Err(err).Msg("render")
	}
	if err := os.WriteFile(outputPath, out.Bytes(), 0o644); err != nil {
		log.Fatal().Err(err).Msg("write readme")
	}
	log.Info().Int("commands", len(cmd.DefaultRegistry.GetAll())).Msg("README.md updated")
}
