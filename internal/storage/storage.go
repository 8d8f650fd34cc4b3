package storage

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/sudosnok/owopondbot/datastore"
)

const (
	commandHistoryLimit = 20

	// MaxPending is the most items one user can queue for graph show.
	MaxPending = 9
	// DefaultGraphWidth is the tile width used when a guild never set one.
	DefaultGraphWidth = 3

	botKey = "_bot"
)

var (
	ErrPendingFull    = errors.New("pending list is full")
	ErrAlreadyPending = errors.New("item already pending")
)

// DefaultIgnored are the error kinds swallowed until the owner changes the list.
var DefaultIgnored = []string{"CommandNotFound"}

type CommandHistory struct {
	ChannelID   string    `json:"channel_id"`
	ChannelName string    `json:"channel_name"`
	GuildName   string    `json:"guild_name"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	Command     string    `json:"command"`
	Param       string    `json:"param"`
	Datetime    time.Time `json:"datetime"`
}

// PendingGraph is one user's queue of items for graph show.
type PendingGraph struct {
	Items     []string  `json:"items"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Record is everything stored per guild.
type Record struct {
	CommandsDisabled []string                `json:"cmd_disabled"`
	CommandsHistory  []CommandHistory        `json:"cmd_history"`
	PinChannel       string                  `json:"pin_channel"`
	GraphWidth       int                     `json:"graph_width"`
	Pending          map[string]PendingGraph `json:"pending"`
}

// BotRecord is stored once for the whole bot.
type BotRecord struct {
	Ignored []string `json:"ignored"`
}

// Storage serializes read-modify-write cycles on guild records, so concurrent
// commands from different users cannot lose each other's updates.
type Storage struct {
	ds *datastore.DataStore
	mu sync.Mutex
}

func New(filePath string) (*Storage, error) {
	ds, err := datastore.Open(filePath)
	if err != nil {
		return nil, err
	}
	return &Storage{ds: ds}, nil
}

// NewWithStore wraps an already open datastore.
func NewWithStore(ds *datastore.DataStore) *Storage {
	return &Storage{ds: ds}
}

func (s *Storage) Close() error {
	return s.ds.Close()
}

func (s *Storage) Stats() datastore.Stats {
	return s.ds.Stats()
}

func (s *Storage) getOrCreateGuildRecord(guildID string) (*Record, error) {
	var record Record
	if _, err := s.ds.Get(guildID, &record); err != nil {
		return nil, fmt.Errorf("load guild %s: %w", guildID, err)
	}

	if record.Pending == nil {
		record.Pending = make(map[string]PendingGraph)
	}
	if record.GraphWidth == 0 {
		record.GraphWidth = DefaultGraphWidth
	}
	if len(record.CommandsHistory) > commandHistoryLimit {
		record.CommandsHistory = record.CommandsHistory[len(record.CommandsHistory)-commandHistoryLimit:]
	}
	return &record, nil
}

// update runs fn on the guild's record and stores it unless fn fails.
func (s *Storage) update(guildID string, fn func(*Record) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	record, err := s.getOrCreateGuildRecord(guildID)
	if err != nil {
		return err
	}
	if err := fn(record); err != nil {
		return err
	}
	return s.ds.Put(guildID, record)
}

func (s *Storage) view(guildID string) (*Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.getOrCreateGuildRecord(guildID)
}

// Guild returns a copy of the guild's record, with defaults filled in.
func (s *Storage) Guild(guildID string) (*Record, error) {
	return s.view(guildID)
}

// GuildIDs lists every guild with a stored record.
func (s *Storage) GuildIDs() []string {
	keys := s.ds.Keys()
	out := keys[:0]
	for _, k := range keys {
		if k != botKey {
			out = append(out, k)
		}
	}
	return out
}
