package pins

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/discord"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/middleware"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
	"github.com/sudosnok/owopondbot/pkg/util"
)

const dateTemplate = "DD:MM:YY"

// DefaultSince is the creation date of the channel pins were first archived from.
var DefaultSince = time.Date(2016, time.September, 18, 0, 0, 0, 0, time.UTC)

// PinsCommand archives every pin of the current channel in a background job.
type PinsCommand struct {
	Jobs           *jobmgr.Manager
	DefaultChannel string
}

func (c *PinsCommand) Name() string { return "pins" }
func (c *PinsCommand) Description() string {
	return "Copy this channel's pins to the pin channel"
}
func (c *PinsCommand) Group() string            { return group }
func (c *PinsCommand) Category() string         { return category }
func (c *PinsCommand) UserPermissions() []int64 { return nil }
func (c *PinsCommand) Usage() string            { return "[dd:mm:yy | stop]" }

func (c *PinsCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{{
			Type:        discordgo.ApplicationCommandOptionString,
			Name:        "since",
			Description: "Only pins created on or after dd:mm:yy, or stop to cancel",
		}},
	}
}

func jobName(channelID string) string { return "pins:" + channelID }

func (c *PinsCommand) Run(ctx context.Context, req *command.Request) error {
	arg := req.Arg(0, "")
	if strings.EqualFold(arg, "stop") {
		if err := c.Jobs.Stop(jobName(req.ChannelID)); err != nil {
			return req.Reply("No pin archive is running in this channel.")
		}
		return req.Reply("Stopped archiving pins.")
	}

	since, err := ParseSince(arg)
	if err != nil {
		return err
	}
	target, err := archiveChannel(req, c.DefaultChannel)
	if err != nil {
		return err
	}
	if !discord.CanReadHistory(req.Session, req.ChannelID) {
		return errkind.New(errkind.MissingPermissions, "I can't read the pins of this channel.")
	}
	if !discord.CanArchiveTo(req.Session, target) {
		return errkind.New(errkind.MissingPermissions, "I can't post embeds in <#%s>.", target)
	}

	logger := middleware.Logger(ctx).With().Str("job", jobName(req.ChannelID)).Logger()
	err = c.Jobs.StartAsync(ctx, jobName(req.ChannelID), func(ctx context.Context) error {
		n, err := Archive(ctx, req.Session, req.GuildID, req.ChannelID, target, since)
		if err != nil {
			logger.Error().Err(err).Int("archived", n).Msg("pin archive failed")
			_ = req.Replyf("Archiving stopped after %d pins: %v", n, err)
			return err
		}
		logger.Info().Int("archived", n).Msg("pin archive finished")
		return req.Replyf("Archived %d pins to <#%s>.", n, target)
	})
	if err != nil {
		return errkind.New(errkind.MaxConcurrencyReached, "Pins of this channel are already being archived, use `pins stop` to cancel.")
	}
	return req.Replyf("Archiving pins since %s to <#%s>...", util.FormatDateTpl(since, dateTemplate), target)
}

// ParseSince reads a dd:mm:yy date, defaulting to DefaultSince.
func ParseSince(arg string) (time.Time, error) {
	if arg == "" {
		return DefaultSince, nil
	}
	t, err := util.ParseDateTpl(arg, dateTemplate)
	if err != nil {
		return time.Time{}, errkind.New(errkind.BadArgument, "Time passed did not match the dd:mm:yy format.")
	}
	return t, nil
}

// Archive posts every pin of channelID created on or after since to target,
// oldest first, and returns how many were posted.
func Archive(ctx context.Context, s *discordgo.Session, guildID, channelID, target string, since time.Time) (int, error) {
	pinned, err := s.ChannelMessagesPinned(channelID)
	if err != nil {
		return 0, fmt.Errorf("list pins of %s: %w", channelID, err)
	}
	msgs := SelectPins(pinned, since)

	for i, m := range msgs {
		if err := ctx.Err(); err != nil {
			return i, err
		}
		if _, err := s.ChannelMessageSendEmbed(target, ArchiveEmbed(guildID, m)); err != nil {
			return i, fmt.Errorf("post pin %s: %w", m.ID, err)
		}
	}
	return len(msgs), nil
}

// SelectPins orders pins oldest first and drops those created before since.
// Discord lists pins newest first.
func SelectPins(pinned []*discordgo.Message, since time.Time) []*discordgo.Message {
	out := make([]*discordgo.Message, 0, len(pinned))
	for _, m := range pinned {
		if !m.Timestamp.Before(since) {
			out = append(out, m)
		}
	}
	slices.SortStableFunc(out, func(a, b *discordgo.Message) int {
		return a.Timestamp.Compare(b.Timestamp)
	})
	return out
}
