package images

import (
	"context"
	"image"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/disintegration/imaging"

	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/imageops"
)

const (
	shortCooldown = 5 * time.Second
	longCooldown  = 10 * time.Second

	defaultSeverity = 15
	defaultBits     = 8
)

var (
	minSeverity = 0.0
	minBits     = 1.0
)

func linkOption(name, description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        name,
		Description: description,
	}
}

func attachmentOption(name string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionAttachment,
		Name:        name,
		Description: "Image to use instead of a link",
	}
}

// imageOptions are the trailing source options every command accepts.
func imageOptions() []*discordgo.ApplicationCommandOption {
	return []*discordgo.ApplicationCommandOption{
		linkOption("link", "Link to an image, defaults to your avatar"),
		attachmentOption("image"),
	}
}

// checked wraps parse with a validation of the parsed number, so range
// errors surface before anything is downloaded.
func checked(parse func([]string) (*parsed, error), check func(int) error) func([]string) (*parsed, error) {
	return func(args []string) (*parsed, error) {
		p, err := parse(args)
		if err != nil {
			return nil, err
		}
		if err := check(p.number); err != nil {
			return nil, err
		}
		return p, nil
	}
}

func encodePNG(img image.Image, filename string) (*Output, error) {
	data, err := imageops.Encode(img, imaging.PNG)
	if err != nil {
		return nil, err
	}
	return &Output{Data: data, Filename: filename}, nil
}

func checkBits(n int) error {
	if n < 1 || n > 8 {
		return errkind.New(errkind.ArgumentOutOfRange, "Bits argument should be between 1 and 8 inclusive.")
	}
	return nil
}

// checkFilter rejects unknown filter names before anything is downloaded.
func checkFilter(parse func([]string) (*parsed, error)) func([]string) (*parsed, error) {
	return func(args []string) (*parsed, error) {
		p, err := parse(args)
		if err != nil {
			return nil, err
		}
		if !slices.Contains(imageops.FilterNames(), p.word) {
			return nil, errkind.New(errkind.ArgumentOutOfRange, "Filter must be one of: %s.",
				strings.Join(imageops.FilterNames(), ", "))
		}
		return p, nil
	}
}

func filterChoices() []*discordgo.ApplicationCommandOptionChoice {
	names := imageops.FilterNames()
	choices := make([]*discordgo.ApplicationCommandOptionChoice, 0, len(names))
	for _, n := range names {
		choices = append(choices, &discordgo.ApplicationCommandOptionChoice{Name: n, Value: n})
	}
	return choices
}

func definitions() []*ImageCommand {
	return []*ImageCommand{
		{
			name:        "shift",
			description: "Shifts the colours of an image",
			usage:       "[link]",
			title:       "Shifting done",
			cooldown:    shortCooldown,
			options:     imageOptions(),
			parse:       linksOnly(1),
			op: func(_ context.Context, in *Input) (*Output, error) {
				data, err := imageops.JPEG(imageops.Shift(in.Sources[0].Image(), in.Rand), 0)
				if err != nil {
					return nil, err
				}
				return &Output{Data: data, Filename: "shifted.jpg"}, nil
			},
		},
		{
			name:        "morejpeg",
			aliases:     []string{"jpeg", "jpegify"},
			description: "Compresses an image until it hurts",
			usage:       "[severity=15] [link]",
			title:       "Jpegifying done",
			cooldown:    shortCooldown,
			options: append([]*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "severity",
				Description: "How much quality to throw away, 0 to 100",
				MinValue:    &minSeverity,
				MaxValue:    100,
			}}, imageOptions()...),
			parse: checked(optionalNumber(defaultSeverity), func(n int) error {
				_, err := imageops.JPEGQuality(n)
				return err
			}),
			op: func(_ context.Context, in *Input) (*Output, error) {
				data, err := imageops.JPEG(in.Sources[0].Image(), in.Number)
				if err != nil {
					return nil, err
				}
				return &Output{Data: data, Filename: "morejpeg.jpg"}, nil
			},
		},
		{
			name:        "diff",
			aliases:     []string{"difference"},
			description: "Shows the difference between two images",
			usage:       "[link] [link]",
			title:       "Difference gotten",
			cooldown:    shortCooldown,
			options: []*discordgo.ApplicationCommandOption{
				linkOption("first", "First image link"),
				linkOption("second", "Second image link"),
				attachmentOption("image"),
				attachmentOption("other"),
			},
			parse: linksOnly(2),
			op: func(_ context.Context, in *Input) (*Output, error) {
				return encodePNG(imageops.Diff(in.Sources[0].Image(), in.Sources[1].Image()), "diff.png")
			},
		},
		{
			name:        "invert",
			aliases:     []string{"negative"},
			description: "Inverts the colours of an image",
			usage:       "[link]",
			title:       "Inverting finished",
			cooldown:    longCooldown,
			options:     imageOptions(),
			parse:       linksOnly(1),
			op: func(_ context.Context, in *Input) (*Output, error) {
				return encodePNG(imageops.Invert(in.Sources[0].Image()), "inverted.png")
			},
		},
		{
			name:        "poster",
			aliases:     []string{"posterize"},
			description: "Reduces the number of bits per colour channel",
			usage:       "[bits=8] [link]",
			title:       "Postering done",
			cooldown:    longCooldown,
			options: append([]*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "bits",
				Description: "Bits kept per channel, 1 to 8",
				MinValue:    &minBits,
				MaxValue:    8,
			}}, imageOptions()...),
			parse: checked(optionalNumber(defaultBits), checkBits),
			op: func(_ context.Context, in *Input) (*Output, error) {
				img, err := imageops.Posterize(in.Sources[0].Image(), in.Number)
				if err != nil {
					return nil, err
				}
				return encodePNG(img, "poster.png")
			},
		},
		{
			name:        "filter",
			description: "Applies a convolution filter to an image",
			usage:       "<name> [link]",
			title:       "Applying the filter done",
			cooldown:    longCooldown,
			options: append([]*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "name",
				Description: "Filter name: " + strings.Join(imageops.FilterNames(), ", "),
				Required:    true,
				Choices:     filterChoices(),
			}}, imageOptions()...),
			parse: checkFilter(requiredWord("filter name")),
			op: func(_ context.Context, in *Input) (*Output, error) {
				img, err := imageops.Filter(in.Sources[0].Image(), in.Word)
				if err != nil {
					return nil, err
				}
				return encodePNG(img, "filtered.png")
			},
		},
		{
			name:        "rotate",
			description: "Rotates an image counter-clockwise",
			usage:       "<degrees> [link]",
			title:       "Rotationings finished",
			cooldown:    longCooldown,
			options: append([]*discordgo.ApplicationCommandOption{{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "degrees",
				Description: "Angle to rotate by",
				Required:    true,
			}}, imageOptions()...),
			parse: requiredNumber("degrees"),
			op: func(_ context.Context, in *Input) (*Output, error) {
				return encodePNG(imageops.Rotate(in.Sources[0].Image(), in.Number), "rotated.png")
			},
		},
	}
}
