package oldschool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/sudosnok/owopondbot/internal/command"
	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/internal/middleware"
	"github.com/sudosnok/owopondbot/internal/osrs"
	"github.com/sudosnok/owopondbot/internal/plot"
	"github.com/sudosnok/owopondbot/internal/storage"
	"github.com/sudosnok/owopondbot/pkg/jobmgr"
	"github.com/sudosnok/owopondbot/pkg/util"
)

const showFilename = "OSRS-items.png"

type GraphCommand struct {
	Prices Prices
	Jobs   *jobmgr.Manager
}

func (c *GraphCommand) Name() string { return "graph" }
func (c *GraphCommand) Description() string {
	return "Graph an item's price over the last 180 days"
}
func (c *GraphCommand) Group() string            { return group }
func (c *GraphCommand) Category() string         { return category }
func (c *GraphCommand) UserPermissions() []int64 { return nil }
func (c *GraphCommand) Usage() string {
	return "<item name> | add <item> | remove <item> | list | show [separate=true]"
}

func itemOption() *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        "name",
		Description: "Item name as on the wiki",
		Required:    true,
	}
}

func (c *GraphCommand) SlashDefinition() *discordgo.ApplicationCommand {
	return &discordgo.ApplicationCommand{
		Name:        c.Name(),
		Description: c.Description(),
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "item",
				Description: "Graph one item now",
				Options:     []*discordgo.ApplicationCommandOption{itemOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "add",
				Description: "Queue an item for graph show",
				Options:     []*discordgo.ApplicationCommandOption{itemOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "remove",
				Description: "Drop an item from your queue",
				Options:     []*discordgo.ApplicationCommandOption{itemOption()},
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "list",
				Description: "Show your queued items",
			},
			{
				Type:        discordgo.ApplicationCommandOptionSubCommand,
				Name:        "show",
				Description: "Plot every queued item and clear the queue",
				Options: []*discordgo.ApplicationCommandOption{{
					Type:        discordgo.ApplicationCommandOptionBoolean,
					Name:        "separate",
					Description: "One tile per item instead of a single chart",
				}},
			},
		},
	}
}

func (c *GraphCommand) Run(ctx context.Context, req *command.Request) error {
	sub := strings.ToLower(req.Arg(0, ""))
	switch sub {
	case "":
		return errkind.New(errkind.BadArgument, "Give me an item name, e.g. `graph abyssal whip`.")
	case "add":
		return c.add(ctx, req, req.Rest(1))
	case "remove":
		return c.remove(ctx, req, req.Rest(1))
	case "list":
		return c.list(req)
	case "show":
		return c.show(ctx, req, req.Arg(1, "true"))
	case "item":
		return c.single(ctx, req, req.Rest(1))
	default:
		return c.single(ctx, req, req.Rest(0))
	}
}

func (c *GraphCommand) single(ctx context.Context, req *command.Request, name string) error {
	if strings.TrimSpace(name) == "" {
		return errkind.New(errkind.BadArgument, "Give me an item name.")
	}
	deferReply(ctx, req)

	item, err := c.Prices.Lookup(ctx, name)
	if err != nil {
		return err
	}
	hist, err := c.Prices.History(ctx, item)
	if err != nil {
		return err
	}

	var png []byte
	err = c.Jobs.Offload(ctx, func(context.Context) error {
		var perr error
		png, perr = plot.Single(SeriesOf(hist))
		return perr
	})
	if err != nil {
		return err
	}

	filename := strings.ReplaceAll(item.Name, " ", "_") + ".png"
	embed := &discordgo.MessageEmbed{
		Title:       item.Name,
		Description: item.Description,
		Color:       command.RandomColor(),
		Image:       &discordgo.MessageEmbedImage{URL: "attachment://" + filename},
	}
	if item.IconLarge != "" {
		embed.Thumbnail = &discordgo.MessageEmbedThumbnail{URL: item.IconLarge}
	}
	return req.ReplyEmbed(embed, pngFile(filename, png))
}

func (c *GraphCommand) add(ctx context.Context, req *command.Request, name string) error {
	if strings.TrimSpace(name) == "" {
		return errkind.New(errkind.BadArgument, "Which item should I add?")
	}
	item, err := c.Prices.Lookup(ctx, name)
	if err != nil {
		return err
	}

	items, err := req.Storage.AddPending(queueKey(req), req.AuthorID(), item.Name)
	switch {
	case errors.Is(err, storage.ErrPendingFull):
		return req.Replyf("You can't have more than %d items per plot, here are the items in the list if you want to remove one:\n%s",
			storage.MaxPending, formatQueue(items))
	case errors.Is(err, storage.ErrAlreadyPending):
		return req.Reply("Item is already in the list to show.")
	case err != nil:
		return fmt.Errorf("queue %s: %w", item.Name, err)
	}
	return req.Replyf("%s added to the plots (%d/%d).", item.Name, len(items), storage.MaxPending)
}

func (c *GraphCommand) remove(ctx context.Context, req *command.Request, name string) error {
	if strings.TrimSpace(name) == "" {
		return errkind.New(errkind.BadArgument, "Which item should I remove?")
	}
	key, user := queueKey(req), req.AuthorID()

	// Queued names are canonical, so only fall back to a lookup when the
	// caller's spelling differs.
	found, err := req.Storage.RemovePending(key, user, strings.TrimSpace(name))
	if err != nil {
		return err
	}
	if !found {
		item, err := c.Prices.Lookup(ctx, name)
		if err != nil {
			return err
		}
		name = item.Name
		if found, err = req.Storage.RemovePending(key, user, name); err != nil {
			return err
		}
	}
	if !found {
		return req.Replyf("%s wasn't in the list of items to plot.", name)
	}
	return req.Replyf("%s removed from the plots.", name)
}

func (c *GraphCommand) list(req *command.Request) error {
	items, err := req.Storage.Pending(queueKey(req), req.AuthorID())
	if err != nil {
		return err
	}
	return req.Reply(formatQueue(items))
}

func (c *GraphCommand) show(ctx context.Context, req *command.Request, separateArg string) error {
	separate, err := strconv.ParseBool(separateArg)
	if err != nil {
		return errkind.New(errkind.BadArgument, "`%s` is not true or false.", separateArg)
	}

	key, user := queueKey(req), req.AuthorID()
	names, err := req.Storage.Pending(key, user)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		return errkind.New(errkind.BadArgument, "Nothing to show, queue items with `graph add <item>` first.")
	}
	deferReply(ctx, req)

	start := time.Now()
	series, err := util.ParallelMap(ctx, names, fetchWorkers, func(ctx context.Context, name string) (plot.Series, error) {
		item, err := c.Prices.Lookup(ctx, name)
		if err != nil {
			return plot.Series{}, err
		}
		hist, err := c.Prices.History(ctx, item)
		if err != nil {
			return plot.Series{}, err
		}
		return SeriesOf(hist), nil
	})
	if err != nil {
		return err
	}
	middleware.Logger(ctx).Debug().Int("items", len(series)).Dur("fetch", time.Since(start)).Msg("price histories fetched")

	width, _ := req.Storage.GraphWidth(key)
	if width == 0 {
		width = storage.DefaultGraphWidth
	}

	var png []byte
	err = c.Jobs.Offload(ctx, func(context.Context) error {
		var perr error
		if separate {
			png, perr = plot.Grid(series, width)
		} else {
			png, perr = plot.Combined(series, strings.Join(names, ", "))
		}
		return perr
	})
	if err != nil {
		return err
	}

	if _, err := req.Storage.DropPending(key, user, names); err != nil {
		middleware.Logger(ctx).Warn().Err(err).Msg("clearing pending graphs")
	}

	embed := command.ImageEmbed("Your graphs", showFilename, time.Since(start))
	return req.ReplyEmbed(embed, pngFile(showFilename, png))
}

// SeriesOf converts a price history into a plottable series named after the item.
func SeriesOf(h *osrs.History) plot.Series {
	s := plot.Series{Points: make([]plot.Point, len(h.Points))}
	if h.Item != nil {
		s.Name = h.Item.Name
	}
	for i, p := range h.Points {
		s.Points[i] = plot.Point{Time: p.Time, Value: float64(p.Price)}
	}
	return s
}

func formatQueue(items []string) string {
	if len(items) == 0 {
		return "None"
	}
	return strings.Join(items, "\n")
}

func pngFile(name string, data []byte) *discordgo.File {
	return &discordgo.File{Name: name, ContentType: "image/png", Reader: bytes.NewReader(data)}
}
