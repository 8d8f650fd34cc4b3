// Package osrs looks up Old School RuneScape Grand Exchange items: the wiki
// gives an item's id, the catalogue API its details and daily price history.
package osrs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"
	"golang.org/x/net/html"

	"github.com/sudosnok/owopondbot/internal/errkind"
	"github.com/sudosnok/owopondbot/pkg/retrylimit"
)

const (
	WikiURL   = "https://oldschool.runescape.wiki/w/%s"
	DetailURL = "https://services.runescape.com/m=itemdb_oldschool/api/catalogue/detail.json?item=%d"
	GraphURL  = "https://services.runescape.com/m=itemdb_oldschool/api/graph/%d.json"

	// MaxItemID bounds randitem.
	MaxItemID = 25514
	// RandomAttempts is how many ids randitem tries before giving up.
	RandomAttempts = 25
	cacheSize      = 15
)

// Getter is the HTTP surface the client needs.
type Getter interface {
	GetText(ctx context.Context, url string) (string, error)
	GetJSON(ctx context.Context, url string, v any) error
}

type Client struct {
	get       Getter
	wikiURL   string
	detailURL string
	graphURL  string
	ids       *lru.Cache[string, int]
	items     *lru.Cache[int, *Item]

	rngMu sync.Mutex
	rng   *rand.Rand
}

type Option func(*Client)

// WithURLs overrides the three endpoint templates.
func WithURLs(wiki, detail, graph string) Option {
	return func(c *Client) {
		c.wikiURL, c.detailURL, c.graphURL = wiki, detail, graph
	}
}

func WithRand(rng *rand.Rand) Option {
	return func(c *Client) { c.rng = rng }
}

func New(get Getter, opts ...Option) *Client {
	ids, _ := lru.New[string, int](cacheSize)
	items, _ := lru.New[int, *Item](cacheSize)
	c := &Client{
		get:       get,
		wikiURL:   WikiURL,
		detailURL: DetailURL,
		graphURL:  GraphURL,
		ids:       ids,
		items:     items,
		rng:       rand.New(rand.NewSource(rand.Int63())),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// PageName turns "abyssal whip" into the wiki page name "Abyssal_whip".
func PageName(name string) string {
	page := strings.Join(strings.Fields(strings.ReplaceAll(name, "_", " ")), "_")
	if page == "" {
		return ""
	}
	return strings.ToUpper(page[:1]) + page[1:]
}

// ItemID scrapes the item id from the item's wiki page.
func (c *Client) ItemID(ctx context.Context, name string) (int, error) {
	page := PageName(name)
	if page == "" {
		return 0, errkind.New(errkind.BadArgument, "Give me an item name.")
	}
	if id, ok := c.ids.Get(page); ok {
		return id, nil
	}

	body, err := c.get.GetText(ctx, fmt.Sprintf(c.wikiURL, url.PathEscape(page)))
	if err != nil {
		if isNotFound(err) {
			return 0, errkind.New(errkind.ItemNotFound, "%s could not be found.", name)
		}
		return 0, fmt.Errorf("wiki page %s: %w", page, err)
	}

	id, ok := extractItemID(body)
	if !ok {
		return 0, errkind.New(errkind.ItemNotFound, "%s could not be found.", name)
	}
	c.ids.Add(page, id)
	return id, nil
}

// Item fetches catalogue details for id.
func (c *Client) Item(ctx context.Context, id int) (*Item, error) {
	if it, ok := c.items.Get(id); ok {
		return it, nil
	}

	var resp struct {
		Item *Item `json:"item"`
	}
	err := c.get.GetJSON(ctx, fmt.Sprintf(c.detailURL, id), &resp)
	if err != nil && !isNotFound(err) && !isDecode(err) {
		return nil, fmt.Errorf("item %d: %w", id, err)
	}
	if err != nil || resp.Item == nil || resp.Item.Name == "" {
		return nil, errkind.New(errkind.ItemNotFound, "No tradeable item with id %d.", id)
	}

	c.items.Add(id, resp.Item)
	return resp.Item, nil
}

// Lookup resolves an item by name.
func (c *Client) Lookup(ctx context.Context, name string) (*Item, error) {
	id, err := c.ItemID(ctx, name)
	if err != nil {
		return nil, err
	}
	return c.Item(ctx, id)
}

// History fetches the daily price series of it.
func (c *Client) History(ctx context.Context, it *Item) (*History, error) {
	var resp struct {
		Daily map[string]float64 `json:"daily"`
	}
	if err := c.get.GetJSON(ctx, fmt.Sprintf(c.graphURL, it.ID), &resp); err != nil {
		return nil, fmt.Errorf("price graph of %s: %w", it.Name, err)
	}
	if len(resp.Daily) == 0 {
		return nil, errkind.New(errkind.ItemNotFound, "No price history for %s.", it.Name)
	}

	pts, err := ParseDaily(resp.Daily)
	if err != nil {
		return nil, err
	}
	return &History{Item: it, Points: pts}, nil
}

// RandomItem picks random ids until one is a real item.
func (c *Client) RandomItem(ctx context.Context) (*Item, error) {
	for i := 0; i < RandomAttempts; i++ {
		c.rngMu.Lock()
		id := c.rng.Intn(MaxItemID)
		c.rngMu.Unlock()

		it, err := c.Item(ctx, id)
		if err == nil {
			return it, nil
		}
		if !errors.Is(err, errkind.ItemNotFound) {
			return nil, err
		}
		log.Debug().Int("id", id).Msg("random item id is not tradeable")
	}
	return nil, errkind.New(errkind.ItemNotFound, "Couldn't find a real item in %d tries.", RandomAttempts)
}

func extractItemID(page string) (int, bool) {
	doc, err := html.Parse(strings.NewReader(page))
	if err != nil {
		return 0, false
	}

	var walk func(*html.Node) (int, bool)
	walk = func(n *html.Node) (int, bool) {
		if n.Type == html.ElementNode && n.Data == "div" && hasClass(n, "GEdataprices") {
			if v := attr(n, "data-itemid"); v != "" {
				if id, err := strconv.Atoi(v); err == nil {
					return id, true
				}
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			if id, ok := walk(child); ok {
				return id, true
			}
		}
		return 0, false
	}
	return walk(doc)
}

func hasClass(n *html.Node, class string) bool {
	for _, c := range strings.Fields(attr(n, "class")) {
		if c == class {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func isNotFound(err error) bool {
	var he retrylimit.HTTPError
	return errors.As(err, &he) && he.StatusCode() == http.StatusNotFound
}

func isDecode(err error) bool {
	var se *json.SyntaxError
	var te *json.UnmarshalTypeError
	return errors.As(err, &se) || errors.As(err, &te)
}
