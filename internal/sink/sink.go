// Package sink implements the optional change sink: an atomic file writer
// that reflects the most recently observed beatmap path.
package sink

import (
	"fmt"
	"os"
	"path/filepath"
)

// Write atomically replaces path's contents with the single line
// "0 <fullPath>", byte-for-byte, no trailing newline. It writes to a temp
// sibling and renames over the destination so a reader never observes a
// partial write. It does not special-case path already existing as a
// directory.
func Write(path, fullPath string) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".osu_path-*.tmp")
	if err != nil {
		return fmt.Errorf("sink: create temp file: %w", err)
	}
	tmpPath := tmp.Name()

	line := fmt.Sprintf("0 %s", fullPath)
	if _, err := tmp.WriteString(line); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("sink: write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("sink: close temp file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("sink: rename into place: %w", err)
	}
	return nil
}
