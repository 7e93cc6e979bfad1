package kvlite_test

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"kvlite/internal/config"
	"kvlite/internal/storage"
)

// Integration tests verify end-to-end functionality across packages.

func TestE2E_SetGetRemove(t *testing.T) {
	dir := t.TempDir()

	store, err := storage.Open(dir, storage.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}

	if err := store.Set("a", "1"); err != nil {
		t.Fatal(err)
	}
	if err := store.Set("b", "2"); err != nil {
		t.Fatal(err)
	}

	if value, ok, err := store.Get("a"); err != nil || !ok || value != "1" {
		t.Fatalf("get a = (%q, %v, %v), want (1, true, nil)", value, ok, err)
	}

	if err := store.Remove("a"); err != nil {
		t.Fatal(err)
	}
	if _, ok, err := store.Get("a"); err != nil || ok {
		t.Fatalf("expected a to be gone, got ok=%v err=%v", ok, err)
	}
	if value, _, err := store.Get("b"); err != nil || value != "2" {
		t.Fatalf("get b = (%q, %v), want (2, nil)", value, err)
	}

	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	// State must survive a reopen via replay of the log.
	reopened, err := storage.Open(dir, storage.DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	defer reopened.Close()

	if _, ok, err := reopened.Get("a"); err != nil || ok {
		t.Fatalf("expected a to stay removed after reopen, got ok=%v err=%v", ok, err)
	}
	if value, _, err := reopened.Get("b"); err != nil || value != "2" {
		t.Fatalf("get b after reopen = (%q, %v), want (2, nil)", value, err)
	}

	if err := reopened.Remove("a"); !storage.IsKeyNotFound(err) {
		t.Fatalf("expected key-not-found, got %v", err)
	}
}

func TestE2E_CompactionBoundsLogGrowth(t *testing.T) {
	dir := t.TempDir()

	cfg := storage.DefaultConfig()
	cfg.CompactAfter = 20
	store, err := storage.Open(dir, cfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	// A single hot key overwritten many times: without compaction the log
	// holds every stale record; with it, size stays near one record.
	for i := 0; i < 500; i++ {
		if err := store.Set("hot", fmt.Sprintf("value-%d", i)); err != nil {
			t.Fatal(err)
		}
	}

	size, err := store.Size()
	if err != nil {
		t.Fatal(err)
	}
	line := len(`{"op":"set","key":"hot","value":"value-000"}`) + 1
	if maxSize := int64(line * (cfg.CompactAfter + 2)); size > maxSize {
		t.Errorf("log size %d exceeds compaction bound %d", size, maxSize)
	}

	if value, ok, err := store.Get("hot"); err != nil || !ok || value != "value-499" {
		t.Fatalf("get hot = (%q, %v, %v), want (value-499, true, nil)", value, ok, err)
	}
}

func TestE2E_ConfigFile(t *testing.T) {
	dir := t.TempDir()

	raw := fmt.Sprintf("dir: %s\ncompact_after: 10\nlog_level: debug\n", dir)
	path := filepath.Join(dir, ".kvlite.yaml")
	if err := os.WriteFile(path, []byte(raw), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Dir != dir || cfg.CompactAfter != 10 {
		t.Fatalf("unexpected config: %+v", cfg)
	}

	storeCfg := storage.DefaultConfig()
	storeCfg.CompactAfter = cfg.CompactAfter
	store, err := storage.Open(cfg.Dir, storeCfg)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if err := store.Set("k", "v"); err != nil {
		t.Fatal(err)
	}
	if value, ok, err := store.Get("k"); err != nil || !ok || value != "v" {
		t.Fatalf("get k = (%q, %v, %v), want (v, true, nil)", value, ok, err)
	}
}
