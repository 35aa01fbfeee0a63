package rebalance

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

const historyDirName = ".history"

// backupSet copies a file into its .history directory before the first
// rewrite of a run. Later rewrites of the same file in the same run reuse
// that snapshot, so each run leaves exactly one audit copy per file.
type backupSet struct {
	done map[string]struct{}
}

func newBackupSet() *backupSet {
	return &backupSet{done: make(map[string]struct{})}
}

func (b *backupSet) snapshot(path string) error {
	if _, ok := b.done[path]; ok {
		return nil
	}
	src, err := os.Open(path)
	if os.IsNotExist(err) {
		// Nothing to preserve for a file being created.
		b.done[path] = struct{}{}
		return nil
	}
	if err != nil {
		return fmt.Errorf("cannot open %q for backup: %w", path, err)
	}
	defer src.Close()

	dir := filepath.Join(filepath.Dir(path), historyDirName)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("cannot create history directory %q: %w", dir, err)
	}
	name := fmt.Sprintf("%s.%s", filepath.Base(path), time.Now().Format("20060102-150405"))
	dstPath := filepath.Join(dir, name)
	dst, err := os.Create(dstPath)
	if err != nil {
		return fmt.Errorf("cannot create backup file %q: %w", dstPath, err)
	}
	defer dst.Close()
	if _, err := io.Copy(dst, src); err != nil {
		return fmt.Errorf("cannot write backup file %q: %w", dstPath, err)
	}
	b.done[path] = struct{}{}
	return nil
}
