// Package images holds the image manipulation commands. Each one takes an
// attachment, a link or falls back to the author's avatar.
package images

import (
	"bytes"
	"context"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/imagesource"
	"github.com/sudosnok/owopondbot/internal/middleware"
	"github.com/sudosnok/owopondbot/pkg/cmd"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
)

const (
	group    = "images"
	category = "🖼️ Images"

	// concurrencyBucket is shared by every image command, so a guild runs one at a time.
	concurrencyBucket = "images"
)

// Deps are what the image commands need from the runtime.
type Deps struct {
	Resolver *imagesource.Resolver
	Jobs     *jobmgr.Manager
	IsOwner  middleware.OwnerFunc
}

// Output is a rendered image ready to attach.
type Output struct {
	Data     []byte
	Filename string
}

// operation turns the request's arguments and sources into an Output. It runs
// on the worker pool.
type operation func(ctx context.Context, in *Input) (*Output, error)

// Input is what an operation works on.
type Input struct {
	Sources []*imagesource.Source
	Number  int
	Word    string
	Rand    *rand.Rand
}

// ImageCommand is one image command. The arguments it takes are described by
// its parse function.
type ImageCommand struct {
	name        string
	aliases     []string
	description string
	usage       string
	title       string
	cooldown    time.Duration
	options     []*discordgo.ApplicationCommandOption
	parse       func(args []string) (*parsed, error)
	op          operation

	resolver *imagesource.Resolver
	jobs     *jobmgr.Manager

	rngMu sync.Mutex
	rng   *rand.Rand
}

// parsed are the arguments of one invocation.
type parsed struct {
	number int
	word   string
	links  []string
	pair   bool
}

func (c *ImageCommand) Name() string             { return c.name }
func (c *ImageCommand) Description() string      { return c.description }
func (c *ImageCommand) Group() string            { return group }
func (c *ImageCommand) Category() string         { return category }
func (c *ImageCommand) UserPermissions() []int64 { return nil }
func (c *ImageCommand) Aliases() []string        { return c.aliases }
func (c *ImageCommand) Usage() string            { return c.usage }

func (c *ImageCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.name,
		Description: c.description,
		Options:     c.options,
	}
}

func (c *ImageCommand) Run(ctx context.Context, req *command.Request) error {
	p, err := c.parse(req.Args)
	if err != nil {
		return err
	}

	if err := req.Defer(); err != nil {
		middleware.Logger(ctx).Debug().Err(err).Msg("defer failed")
	}

	in := &Input{Number: p.number, Word: p.word, Rand: c.newRand()}
	imgReq := req.ImageRequest(p.links...)
	if p.pair {
		a, b, err := c.resolver.ResolvePair(ctx, imgReq)
		if err != nil {
			return err
		}
		in.Sources = []*imagesource.Source{a, b}
	} else {
		src, err := c.resolver.Resolve(ctx, imgReq, 0)
		if err != nil {
			return err
		}
		in.Sources = []*imagesource.Source{src}
	}

	start := time.Now()
	var out *Output
	err = c.jobs.Offload(ctx, func(ctx context.Context) error {
		var err error
		out, err = c.op(ctx, in)
		return err
	})
	if err != nil {
		return err
	}

	return req.ReplyEmbed(
		command.ImageEmbed(c.title, out.Filename, time.Since(start)),
		&discordgo.File{Name: out.Filename, ContentType: contentType(out.Filename), Reader: bytes.NewReader(out.Data)},
	)
}

func (c *ImageCommand) newRand() *rand.Rand {
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	if c.rng == nil {
		c.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return rand.New(rand.NewSource(c.rng.Int63()))
}

func contentType(filename string) string {
	if strings.HasSuffix(filename, ".jpg") {
		return "image/jpeg"
	}
	return "image/png"
}

// Commands builds every image command wired to d.
func Commands(d Deps) []*ImageCommand {
	cmds := definitions()
	for _, c := range cmds {
		c.resolver = d.Resolver
		c.jobs = d.Jobs
	}
	return cmds
}

// Register adds the image commands to the default registry.
func Register(d Deps) {
	for _, c := range Commands(d) {
		command.RegisterCommand(c, middlewares(c, d)...)
	}
}

func middlewares(c *ImageCommand, d Deps) []cmd.Middleware {
	return []cmd.Middleware{
		middleware.WithMaxConcurrency(d.Jobs, concurrencyBucket, middleware.PerGuild),
		middleware.WithCooldown(c.cooldown, d.IsOwner),
		middleware.WithGroupAccessCheck(),
		middleware.WithCommandLogger(),
	}
}

// Argument parsers.

// linksOnly accepts up to n links.
func linksOnly(n int) func(args []string) (*parsed, error) {
	return func(args []string) (*parsed, error) {
		if err := checkLinks(args); err != nil {
			return nil, err
		}
		if len(args) > n {
			args = args[:n]
		}
		return &parsed{links: args, pair: n == 2}, nil
	}
}

// optionalNumber accepts "[number=def] [link]".
func optionalNumber(def int) func(args []string) (*parsed, error) {
	return func(args []string) (*parsed, error) {
		p := &parsed{number: def}
		if len(args) > 0 && !imagesource.LooksLikeLink(args[0]) {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return nil, errkind.New(errkind.BadArgument, "`%s` is not a whole number.", args[0])
			}
			p.number = n
			args = args[1:]
		}
		if err := checkLinks(args); err != nil {
			return nil, err
		}
		p.links = args
		return p, nil
	}
}

// requiredNumber accepts "<number> [link]".
func requiredNumber(what string) func(args []string) (*parsed, error) {
	return func(args []string) (*parsed, error) {
		if len(args) == 0 {
			return nil, errkind.New(errkind.BadArgument, "Missing argument: %s.", what)
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, errkind.New(errkind.BadArgument, "%s must be a whole number, got `%s`.", what, args[0])
		}
		if err := checkLinks(args[1:]); err != nil {
			return nil, err
		}
		return &parsed{number: n, links: args[1:]}, nil
	}
}

// requiredWord accepts "<word> [link]".
func requiredWord(what string) func(args []string) (*parsed, error) {
	return func(args []string) (*parsed, error) {
		if len(args) == 0 || imagesource.LooksLikeLink(args[0]) {
			return nil, errkind.New(errkind.BadArgument, "Missing argument: %s.", what)
		}
		if err := checkLinks(args[1:]); err != nil {
			return nil, err
		}
		return &parsed{word: strings.ToLower(args[0]), links: args[1:]}, nil
	}
}

func checkLinks(args []string) error {
	for _, a := range args {
		if !imagesource.LooksLikeLink(a) {
			return errkind.New(errkind.InvalidLinkFormat, "`%s` is not a link.", a)
		}
	}
	return nil
}
