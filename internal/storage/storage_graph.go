package storage

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

// AddPending queues item for the user and returns the new list.
func (s *Storage) AddPending(guildID, userID, item string) ([]string, error) {
	var out []string
	err := s.update(guildID, func(r *Record) error {
		p := r.Pending[userID]
		if containsFold(p.Items, item) {
			return ErrAlreadyPending
		}
		if len(p.Items) >= MaxPending {
			out = slices.Clone(p.Items)
			return ErrPendingFull
		}
		p.Items = append(p.Items, item)
		p.UpdatedAt = time.Now()
		r.Pending[userID] = p
		out = slices.Clone(p.Items)
		return nil
	})
	return out, err
}

// RemovePending drops item from the user's list and reports whether it was there.
func (s *Storage) RemovePending(guildID, userID, item string) (bool, error) {
	found := false
	err := s.update(guildID, func(r *Record) error {
		p := r.Pending[userID]
		n := len(p.Items)
		p.Items = slices.DeleteFunc(p.Items, func(v string) bool { return strings.EqualFold(v, item) })
		found = len(p.Items) != n
		if len(p.Items) == 0 {
			delete(r.Pending, userID)
		} else {
			p.UpdatedAt = time.Now()
			r.Pending[userID] = p
		}
		return nil
	})
	return found, err
}

func (s *Storage) Pending(guildID, userID string) ([]string, error) {
	r, err := s.view(guildID)
	if err != nil {
		return nil, err
	}
	return r.Pending[userID].Items, nil
}

// DropPending removes items from the user's list and returns what is left.
// Items queued since the caller read the list are kept.
func (s *Storage) DropPending(guildID, userID string, items []string) ([]string, error) {
	var left []string
	err := s.update(guildID, func(r *Record) error {
		p := r.Pending[userID]
		p.Items = slices.DeleteFunc(p.Items, func(v string) bool { return containsFold(items, v) })
		if len(p.Items) == 0 {
			delete(r.Pending, userID)
			return nil
		}
		r.Pending[userID] = p
		left = slices.Clone(p.Items)
		return nil
	})
	return left, err
}

// SetGraphWidth stores the tile width and returns the previous one.
func (s *Storage) SetGraphWidth(guildID string, width int) (int, error) {
	if width < 2 || width > 4 {
		return 0, fmt.Errorf("graph width %d outside 2..4", width)
	}
	prev := 0
	err := s.update(guildID, func(r *Record) error {
		prev = r.GraphWidth
		r.GraphWidth = width
		return nil
	})
	return prev, err
}

func (s *Storage) GraphWidth(guildID string) (int, error) {
	r, err := s.view(guildID)
	if err != nil {
		return DefaultGraphWidth, err
	}
	return r.GraphWidth, nil
}

// PrunePending drops pending lists not touched since before cutoff and
// returns how many were dropped.
func (s *Storage) PrunePending(cutoff time.Time) (int, error) {
	dropped := 0
	for _, guildID := range s.GuildIDs() {
		err := s.update(guildID, func(r *Record) error {
			for user, p := range r.Pending {
				if p.UpdatedAt.Before(cutoff) {
					delete(r.Pending, user)
					dropped++
				}
			}
			return nil
		})
		if err != nil {
			return dropped, err
		}
	}
	return dropped, nil
}

func containsFold(list []string, v string) bool {
	return slices.ContainsFunc(list, func(x string) bool { return strings.EqualFold(x, v) })
}
