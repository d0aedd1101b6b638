package bank

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Store loads and saves whole snapshots. The engine never writes
// incrementally: load everything, mutate in memory, save everything.
type Store interface {
	Load(ctx context.Context) (*Snapshot, error)
	Save(ctx context.Context, snap *Snapshot) error
}

// Stamp fills the meta fields every Store sets on save: the current schema,
// an install identifier when there is none yet, and the save time.
func Stamp(snap *Snapshot, now time.Time) {
	snap.Meta.Schema = SchemaVersion
	if snap.Meta.Install == "" {
		snap.Meta.Install = uuid.NewString()
	}
	snap.Meta.Saved = now.UTC()
}

// FileStore keeps the snapshot in a JSONL file.
type FileStore struct {
	Path string
}

// Load reads the snapshot file. A missing file returns an error wrapping fs.ErrNotExist.
func (s FileStore) Load(_ context.Context) (*Snapshot, error) {
	f, err := os.Open(s.Path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	snap, err := DecodeSnapshot(f)
	if err != nil {
		return nil, fmt.Errorf("could not decode snapshot %q: %w", s.Path, err)
	}
	return snap, nil
}

// Save writes the snapshot to a temporary file and renames it over Path, so a
// crash never leaves a half written snapshot.
func (s FileStore) Save(_ context.Context, snap *Snapshot) error {
	Stamp(snap, time.Now())

	var buf bytes.Buffer
	if err := EncodeSnapshot(&buf, snap); err != nil {
		return err
	}
	if dir := filepath.Dir(s.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("could not create directory for %q: %w", s.Path, err)
		}
	}
	tmp := s.Path + ".tmp"
	if err := os.WriteFile(tmp, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("could not write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, s.Path); err != nil {
		return fmt.Errorf("could not replace %q: %w", s.Path, err)
	}
	return nil
}

// Backup copies the snapshot file to dir/bank_<timestamp>.jsonl and returns the path.
func (s FileStore) Backup(dir string, now time.Time) (string, error) {
	src, err := os.Open(s.Path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("could not create backup directory %q: %w", dir, err)
	}
	path := filepath.Join(dir, "bank_"+now.Format("20060102_150405")+".jsonl")
	dst, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("could not create backup %q: %w", path, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return "", fmt.Errorf("could not copy backup %q: %w", path, err)
	}
	return path, dst.Close()
}
