package command

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/lucasb-eyer/go-colorful"
)

const EmbedColor = 0xb01e66

// RandomColor returns a bright random embed colour.
func RandomColor() int {
	return ColorInt(colorful.FastHappyColor())
}

// ColorInt packs c into Discord's 0xRRGGBB form.
func ColorInt(c colorful.Color) int {
	r, g, b := c.Clamped().RGB255()
	return int(r)<<16 | int(g)<<8 | int(b)
}

// ImageEmbed is the reply for a finished image command: file shown inline and
// the processing time in the footer.
func ImageEmbed(title, filename string, took time.Duration) *discordgo.MessageEmbed {
	return &discordgo.MessageEmbed{
		Title: title,
		Color: RandomColor(),
		Image: &discordgo.MessageEmbedImage{URL: "attachment://" + filename},
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Processed in %.2fs", took.Seconds()),
		},
	}
}
