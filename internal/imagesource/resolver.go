package imagesource

import (
	"context"
	"fmt"
	"sync/atomic"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/rs/zerolog/log"

	"github.com/sudosnok/owopondbot/internal/errkind"
)

// DefaultCacheSize is the number of resolved sources kept.
const DefaultCacheSize = 15

// AvatarSize is the avatar resolution requested when no image is supplied.
const AvatarSize = "128"

// Fetcher downloads URLs.
type Fetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
	FetchPrefix(ctx context.Context, url string, n int) ([]byte, error)
}

// Attachment is a file attached to the invoking message.
type Attachment struct {
	ID       string
	URL      string
	Filename string
}

// Avatar is the invoking user's profile picture.
type Avatar struct {
	UserID string
	URL    string
	Name   string
}

// Request carries everything an image command can be given.
type Request struct {
	Attachments []Attachment
	Links       []string
	Avatar      Avatar
}

// Stats describes the resolution cache.
type Stats struct {
	Hits     uint64 `json:"hits"`
	Misses   uint64 `json:"misses"`
	Size     int    `json:"size"`
	Capacity int    `json:"capacity"`
}

// Resolver resolves image arguments and memoizes the results. Safe for
// concurrent use.
type Resolver struct {
	fetch    Fetcher
	cache    *lru.Cache[string, *Source]
	capacity int
	hits     atomic.Uint64
	misses   atomic.Uint64
}

// NewResolver returns a resolver caching up to size sources. size < 1 uses DefaultCacheSize.
func NewResolver(f Fetcher, size int) (*Resolver, error) {
	if size < 1 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[string, *Source](size)
	if err != nil {
		return nil, fmt.Errorf("create resolution cache: %w", err)
	}
	return &Resolver{fetch: f, cache: cache, capacity: size}, nil
}

// Resolve returns the source at index: the attachment at index if present,
// else the link at index, else the avatar.
func (r *Resolver) Resolve(ctx context.Context, req Request, index int) (*Source, error) {
	switch {
	case index < 0:
		return nil, fmt.Errorf("negative source index %d", index)
	case index < len(req.Attachments):
		return r.attachment(ctx, req.Attachments[index])
	case index < len(req.Links):
		return r.link(ctx, req.Links[index])
	default:
		return r.avatar(ctx, req.Avatar)
	}
}

// ResolvePair returns the two sources of a two-image operation. Both must be
// attachments, or there must be no attachments and exactly two links.
func (r *Resolver) ResolvePair(ctx context.Context, req Request) (*Source, *Source, error) {
	switch {
	case len(req.Attachments) == 2:
	case len(req.Attachments) == 0 && len(req.Links) == 2:
	default:
		return nil, nil, errkind.New(errkind.MixedSourceError,
			"Images must both be attachments or links, not a mixture.")
	}

	a, err := r.Resolve(ctx, req, 0)
	if err != nil {
		return nil, nil, err
	}
	b, err := r.Resolve(ctx, req, 1)
	if err != nil {
		return nil, nil, err
	}
	return a, b, nil
}

// Stats returns cache counters.
func (r *Resolver) Stats() Stats {
	return Stats{
		Hits:     r.hits.Load(),
		Misses:   r.misses.Load(),
		Size:     r.cache.Len(),
		Capacity: r.capacity,
	}
}

func (r *Resolver) attachment(ctx context.Context, a Attachment) (*Source, error) {
	key := string(KindAttachment) + ":" + a.ID
	if a.ID == "" {
		key = string(KindAttachment) + ":" + a.URL
	}
	return r.cached(key, func() (*Source, error) {
		data, err := r.fetch.Fetch(ctx, a.URL)
		if err != nil {
			return nil, errkind.Wrap(err, errkind.SourceUnavailable, "Couldn't download that attachment.")
		}
		return decode(KindAttachment, a.Filename, data)
	})
}

func (r *Resolver) link(ctx context.Context, raw string) (*Source, error) {
	link, ok := NormalizeLink(raw)
	if !ok {
		return nil, errkind.New(errkind.InvalidLinkFormat, "%q is not a usable link.", raw)
	}

	return r.cached(string(KindLink)+":"+link, func() (*Source, error) {
		prefix, err := r.fetch.FetchPrefix(ctx, link, SniffLen)
		if err != nil {
			return nil, errkind.Wrap(err, errkind.SourceUnavailable, "Couldn't reach that link.")
		}
		if Sniff(prefix) == "" {
			return nil, errkind.New(errkind.InvalidLinkFormat, "That link doesn't point to a PNG or JPEG image.")
		}

		data, err := r.fetch.Fetch(ctx, link)
		if err != nil {
			return nil, errkind.Wrap(err, errkind.SourceUnavailable, "Couldn't download that image.")
		}
		return decode(KindLink, linkName(link), data)
	})
}

func (r *Resolver) avatar(ctx context.Context, av Avatar) (*Source, error) {
	if av.URL == "" {
		return nil, errkind.New(errkind.SourceUnavailable, "No image given and no avatar to fall back on.")
	}
	return r.cached(string(KindAvatar)+":"+av.URL, func() (*Source, error) {
		data, err := r.fetch.Fetch(ctx, av.URL)
		if err != nil {
			return nil, errkind.Wrap(err, errkind.SourceUnavailable, "Couldn't download your avatar.")
		}
		return decode(KindAvatar, av.Name+".png", data)
	})
}

func (r *Resolver) cached(key string, load func() (*Source, error)) (*Source, error) {
	if src, ok := r.cache.Get(key); ok {
		r.hits.Add(1)
		return src, nil
	}
	r.misses.Add(1)

	src, err := load()
	if err != nil {
		return nil, err
	}
	r.cache.Add(key, src)
	log.Debug().Str("key", key).Str("fingerprint", src.Fingerprint()[:12]).
		Int("width", src.Width()).Int("height", src.Height()).Msg("image source resolved")
	return src, nil
}

func decode(kind Kind, name string, data []byte) (*Source, error) {
	src, err := Decode(kind, name, data)
	if err != nil {
		return nil, errkind.Wrap(err, errkind.SourceUnavailable, "That file isn't an image I can read.")
	}
	return src, nil
}
