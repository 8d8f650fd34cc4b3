package storage

import (
	"fmt"
	"slices"
)

func (s *Storage) botRecord() (*BotRecord, error) {
	var r BotRecord
	ok, err := s.ds.Get(botKey, &r)
	if err != nil {
		return nil, fmt.Errorf("load bot record: %w", err)
	}
	if !ok {
		r.Ignored = slices.Clone(DefaultIgnored)
	}
	return &r, nil
}

func (s *Storage) updateBot(fn func(*BotRecord) bool) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, err := s.botRecord()
	if err != nil {
		return false, err
	}
	if !fn(r) {
		return false, nil
	}
	return true, s.ds.Put(botKey, r)
}

// IgnoredKinds returns the error kinds the error hook swallows.
func (s *Storage) IgnoredKinds() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, err := s.botRecord()
	if err != nil {
		return nil, err
	}
	return r.Ignored, nil
}

// IgnoreKind adds kind and reports whether the list changed.
func (s *Storage) IgnoreKind(kind string) (bool, error) {
	return s.updateBot(func(r *BotRecord) bool {
		if slices.Contains(r.Ignored, kind) {
			return false
		}
		r.Ignored = append(r.Ignored, kind)
		return true
	})
}

// UnignoreKind removes kind and reports whether the list changed.
func (s *Storage) UnignoreKind(kind string) (bool, error) {
	return s.updateBot(func(r *BotRecord) bool {
		n := len(r.Ignored)
		r.Ignored = slices.DeleteFunc(r.Ignored, func(k string) bool { return k == kind })
		return len(r.Ignored) != n
	})
}
