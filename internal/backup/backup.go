// Package backup exports a full JSON snapshot of every entity collection.
// There is deliberately no restore path; the snapshot is an offline safety
// copy, not a migration format.
package backup

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"
)

// SnapshotPort loads the raw collections.
type SnapshotPort interface {
	Collections(ctx context.Context) (map[string]json.RawMessage, error)
}

// Snapshot is the exported document.
type Snapshot struct {
	GeneratedAt time.Time                  `json:"generated_at"`
	Collections map[string]json.RawMessage `json:"collections"`
}

// Service assembles and writes snapshots.
type Service struct {
	repo SnapshotPort
	now  func() time.Time
}

// NewService builds a backup service.
func NewService(repo SnapshotPort) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Filename returns the attachment name for a snapshot taken now.
func (s *Service) Filename() string {
	return fmt.Sprintf("backup_%s.json", s.now().UTC().Format("2006-01-02"))
}

// Build loads all collections into one snapshot document.
func (s *Service) Build(ctx context.Context) (*Snapshot, error) {
	collections, err := s.repo.Collections(ctx)
	if err != nil {
		return nil, fmt.Errorf("backup: load collections: %w", err)
	}
	return &Snapshot{GeneratedAt: s.now().UTC(), Collections: collections}, nil
}

// Write streams the snapshot as indented JSON.
func (s *Service) Write(ctx context.Context, w io.Writer) error {
	snapshot, err := s.Build(ctx)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snapshot)
}

// WriteFile writes the snapshot into dir using the dated filename, creating
// the directory if needed. Used by the nightly job.
func (s *Service) WriteFile(ctx context.Context, dir string) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("backup: create dir: %w", err)
	}
	path := filepath.Join(dir, s.Filename())
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("backup: create file: %w", err)
	}
	defer f.Close()

	if err := s.Write(ctx, f); err != nil {
		return "", err
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("backup: close file: %w", err)
	}
	return path, nil
}
