package rebalance

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

func TestSnapshotOncePerRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market_data.json")
	if err := os.WriteFile(path, []byte("original"), 0644); err != nil {
		t.Fatal(err)
	}

	b := newBackupSet()
	if err := b.snapshot(path); err != nil {
		t.Fatal(err)
	}
	if err := b.snapshot(path); err != nil {
		t.Fatal(err)
	}

	backups, err := filepath.Glob(filepath.Join(dir, ".history", "market_data.json.*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}
	content, err := os.ReadFile(backups[0])
	if err != nil {
		t.Fatal(err)
	}
	if string(content) != "original" {
		t.Errorf("backup content = %q, want the pre-write bytes", content)
	}
}

func TestSnapshotMissingFile(t *testing.T) {
	dir := t.TempDir()
	b := newBackupSet()
	if err := b.snapshot(filepath.Join(dir, "missing.json")); err != nil {
		t.Fatalf("snapshot of a missing file should be a no-op, got %v", err)
	}
}

// A store bound to a file backs it up before the first rewrite, and only
// then.
func TestStoreSaveBacksUpOnce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "market_data.json")
	if err := os.WriteFile(path, []byte(marketFixture), 0644); err != nil {
		t.Fatal(err)
	}

	s, err := OpenStore(path, "CNY", zerolog.Nop())
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}
	if err := s.Save(); err != nil {
		t.Fatal(err)
	}

	backups, err := filepath.Glob(filepath.Join(dir, ".history", "*"))
	if err != nil {
		t.Fatal(err)
	}
	if len(backups) != 1 {
		t.Fatalf("got %d backups, want 1", len(backups))
	}

	written, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(written), "110011") {
		t.Error("rewritten file lost its content")
	}
}
