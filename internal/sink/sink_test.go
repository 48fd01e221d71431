package sink

import (
	"os"
	"path/filepath"
	"testing"
)

func TestWriteCreatesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osu_path")

	if err := Write(path, "/home/u/Songs/Artist - Title/map.osu"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "0 /home/u/Songs/Artist - Title/map.osu"
	if string(got) != want {
		t.Errorf("file contents = %q, want %q", string(got), want)
	}
}

func TestWriteOverwritesExistingContent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osu_path")
	if err := os.WriteFile(path, []byte("stale content that is much longer than the new line"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := Write(path, "/home/u/Songs/x/y.osu"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	want := "0 /home/u/Songs/x/y.osu"
	if string(got) != want {
		t.Errorf("file contents = %q, want %q", string(got), want)
	}
}

func TestWriteNoTempFileLeftBehind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "osu_path")

	if err := Write(path, "/x/y.osu"); err != nil {
		t.Fatalf("Write() error = %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("dir has %d entries, want 1 (no leftover temp file)", len(entries))
	}
}
