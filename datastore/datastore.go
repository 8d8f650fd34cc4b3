// Package datastore is a small JSON-file key/value store. Values live in
// memory, are flushed on a timer and on Close, and every flush is an atomic
// replace with rotating backups.
package datastore

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ErrClosed is returned by writes after Close.
var ErrClosed = errors.New("datastore: closed")

type Config struct {
	FilePath         string
	AutoSaveInterval time.Duration // 0 disables autosave
	BackupCount      int
	Logger           zerolog.Logger
}

// DefaultConfig saves every 10 seconds and keeps 3 backups.
func DefaultConfig(filePath string) Config {
	return Config{
		FilePath:         filePath,
		AutoSaveInterval: 10 * time.Second,
		BackupCount:      3,
		Logger:           log.With().Str("component", "datastore").Logger(),
	}
}

type DataStore struct {
	cfg Config

	mu           sync.RWMutex
	data         map[string]json.RawMessage
	lastChecksum string
	closed       bool

	saveMu sync.Mutex
	stop   chan struct{}
	wg     sync.WaitGroup
}

// Open loads path (creating it if missing) with DefaultConfig.
func Open(path string) (*DataStore, error) {
	return OpenWithConfig(DefaultConfig(path))
}

func OpenWithConfig(cfg Config) (*DataStore, error) {
	if cfg.FilePath == "" {
		return nil, errors.New("datastore: empty file path")
	}
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}

	ds := &DataStore{
		cfg:  cfg,
		data: make(map[string]json.RawMessage),
		stop: make(chan struct{}),
	}

	raw, err := os.ReadFile(cfg.FilePath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		if err := ds.writeAtomic([]byte("{}")); err != nil {
			return nil, err
		}
	case err != nil:
		return nil, fmt.Errorf("read %s: %w", cfg.FilePath, err)
	default:
		if err := json.Unmarshal(raw, &ds.data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", cfg.FilePath, err)
		}
		if ds.data == nil {
			ds.data = make(map[string]json.RawMessage)
		}
		ds.lastChecksum = checksum(raw)
	}

	if cfg.AutoSaveInterval > 0 {
		ds.wg.Add(1)
		go ds.autoSave()
	}
	return ds, nil
}

// Put stores v under key as JSON.
func (ds *DataStore) Put(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	ds.mu.Lock()
	defer ds.mu.Unlock()
	if ds.closed {
		return ErrClosed
	}
	ds.data[key] = raw
	return nil
}

// Get decodes the value under key into v and reports whether it existed.
func (ds *DataStore) Get(key string, v any) (bool, error) {
	ds.mu.RLock()
	raw, ok := ds.data[key]
	ds.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return true, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func (ds *DataStore) Delete(key string) {
	ds.mu.Lock()
	delete(ds.data, key)
	ds.mu.Unlock()
}

// Keys returns all keys, sorted.
func (ds *DataStore) Keys() []string {
	ds.mu.RLock()
	keys := make([]string, 0, len(ds.data))
	for k := range ds.data {
		keys = append(keys, k)
	}
	ds.mu.RUnlock()
	sort.Strings(keys)
	return keys
}

// Save flushes to disk now. Unchanged data is not rewritten.
func (ds *DataStore) Save() error {
	ds.saveMu.Lock()
	defer ds.saveMu.Unlock()

	ds.mu.RLock()
	out, err := json.MarshalIndent(ds.data, "", "  ")
	ds.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode store: %w", err)
	}

	sum := checksum(out)
	if sum == ds.lastChecksum {
		return nil
	}
	if ds.cfg.BackupCount > 0 {
		if err := ds.backup(); err != nil {
			ds.cfg.Logger.Warn().Err(err).Msg("backup failed")
		}
	}
	if err := ds.writeAtomic(out); err != nil {
		return err
	}
	ds.lastChecksum = sum
	return nil
}

// Close stops autosave and flushes.
func (ds *DataStore) Close() error {
	ds.mu.Lock()
	if ds.closed {
		ds.mu.Unlock()
		return nil
	}
	ds.closed = true
	ds.mu.Unlock()

	close(ds.stop)
	ds.wg.Wait()
	return ds.Save()
}

// Stats is reported by the status endpoint.
type Stats struct {
	Keys     int    `json:"keys"`
	Bytes    int    `json:"bytes"`
	FilePath string `json:"file_path"`
}

func (ds *DataStore) Stats() Stats {
	ds.mu.RLock()
	defer ds.mu.RUnlock()
	n := 0
	for _, v := range ds.data {
		n += len(v)
	}
	return Stats{Keys: len(ds.data), Bytes: n, FilePath: ds.cfg.FilePath}
}

func (ds *DataStore) autoSave() {
	defer ds.wg.Done()

	t := time.NewTicker(ds.cfg.AutoSaveInterval)
	defer t.Stop()
	for {
		select {
		case <-ds.stop:
			return
		case <-t.C:
			if err := ds.Save(); err != nil {
				ds.cfg.Logger.Error().Err(err).Msg("autosave failed")
			}
		}
	}
}

func (ds *DataStore) writeAtomic(data []byte) error {
	tmp := ds.cfg.FilePath + ".tmp"
	f, err := os.OpenFile(tmp, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return fmt.Errorf("open temp file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		os.Remove(tmp)
		return fmt.Errorf("sync temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("close temp file: %w", err)
	}
	if err := os.Rename(tmp, ds.cfg.FilePath); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("replace %s: %w", ds.cfg.FilePath, err)
	}

	written, err := os.ReadFile(ds.cfg.FilePath)
	if err != nil {
		return fmt.Errorf("verify %s: %w", ds.cfg.FilePath, err)
	}
	if !bytes.Equal(written, data) {
		return fmt.Errorf("verify %s: content mismatch", ds.cfg.FilePath)
	}
	return nil
}

func (ds *DataStore) backup() error {
	src, err := os.Open(ds.cfg.FilePath)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	defer src.Close()

	name := fmt.Sprintf("%s.backup.%s", ds.cfg.FilePath, time.Now().Format("20060102_150405.000"))
	dst, err := os.Create(name)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}

	ds.pruneBackups()
	return nil
}

func (ds *DataStore) pruneBackups() {
	matches, err := filepath.Glob(ds.cfg.FilePath + ".backup.*")
	if err != nil || len(matches) <= ds.cfg.BackupCount {
		return
	}
	// Timestamps sort lexically.
	sort.Strings(matches)
	for _, m := range matches[:len(matches)-ds.cfg.BackupCount] {
		if err := os.Remove(m); err != nil {
			ds.cfg.Logger.Warn().Err(err).Str("file", m).Msg("remove old backup")
		}
	}
}

func checksum(b []byte) string {
	h := sha256.Sum256(b)
	return hex.EncodeToString(h[:])
}
