package datastore

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
)

type record struct {
	Name  string   `json:"name"`
	Items []string `json:"items"`
}

func testConfig(t *testing.T) Config {
	t.Helper()
	return Config{
		FilePath:    filepath.Join(t.TempDir(), "data", "store.json"),
		BackupCount: 2,
		Logger:      zerolog.Nop(),
	}
}

func TestPutGetPersist(t *testing.T) {
	cfg := testConfig(t)
	ds, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}

	want := record{Name: "guild", Items: []string{"Abyssal whip", "Dragon bones"}}
	if err := ds.Put("g1", want); err != nil {
		t.Fatalf("Put: %v", err)
	}
	if err := ds.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if err := ds.Put("g2", want); !errors.Is(err, ErrClosed) {
		t.Errorf("Put after Close err = %v, want ErrClosed", err)
	}

	reopened, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	var got record
	ok, err := reopened.Get("g1", &got)
	if err != nil || !ok {
		t.Fatalf("Get = %v, %v", ok, err)
	}
	if got.Name != want.Name || len(got.Items) != 2 || got.Items[1] != "Dragon bones" {
		t.Errorf("got %+v", got)
	}
	if ok, _ := reopened.Get("missing", &got); ok {
		t.Error("Get(missing) reported ok")
	}
}

func TestBackupsPruned(t *testing.T) {
	cfg := testConfig(t)
	ds, err := OpenWithConfig(cfg)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer ds.Close()

	for i := 0; i < 5; i++ {
		if err := ds.Put("n", i); err != nil {
			t.Fatal(err)
		}
		if err := ds.Save(); err != nil {
			t.Fatalf("Save %d: %v", i, err)
		}
	}

	backups, _ := filepath.Glob(cfg.FilePath + ".backup.*")
	if len(backups) > cfg.BackupCount {
		t.Errorf("%d backups kept, want at most %d", len(backups), cfg.BackupCount)
	}
	if _, err := os.Stat(cfg.FilePath + ".tmp"); !os.IsNotExist(err) {
		t.Error("temp file left behind")
	}
}

func TestOpen_InvalidJSON(t *testing.T) {
	cfg := testConfig(t)
	if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.FilePath, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenWithConfig(cfg); err == nil {
		t.Error("expected error for corrupt file")
	}
}

func TestKeysAndDelete(t *testing.T) {
	ds, err := OpenWithConfig(testConfig(t))
	if err != nil {
		t.Fatal(err)
	}
	defer ds.Close()

	for _, k := range []string{"b", "a", "c"} {
		if err := ds.Put(k, k); err != nil {
			t.Fatal(err)
		}
	}
	ds.Delete("b")
	keys := ds.Keys()
	if len(keys) != 2 || keys[0] != "a" || keys[1] != "c" {
		t.Errorf("Keys = %v", keys)
	}
	if st := ds.Stats(); st.Keys != 2 {
		t.Errorf("Stats = %+v", st)
	}
}
