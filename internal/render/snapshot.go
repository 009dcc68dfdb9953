package render

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"devtomirror/internal/domain"
	"devtomirror/internal/fetch"
	"devtomirror/internal/ports"
	"devtomirror/internal/reconcile"
)

// Snapshot persists the reconciled dataset back to the posts cache file.
// Fresh articles are merged with the existing cache through deduplication,
// so a partial fetch never shrinks the mirrored dataset.
type Snapshot struct {
	postsDataPath string
	logger        *slog.Logger
}

var _ ports.SiteRenderer = (*Snapshot)(nil)

// NewSnapshot wires the snapshot writer.
func NewSnapshot(postsDataPath string, logger *slog.Logger) *Snapshot {
	if logger == nil {
		logger = slog.Default()
	}
	return &Snapshot{postsDataPath: postsDataPath, logger: logger}
}

// Render writes a new cache snapshot for successful live fetches. Cache,
// mock, and forced-empty results leave the dataset untouched.
func (s *Snapshot) Render(ctx context.Context, result fetch.Result) error {
	if !result.Success || result.Source != fetch.SourceAPI {
		s.logger.Debug("skipping snapshot write", "source", string(result.Source), "success", result.Success)
		return nil
	}

	merged := s.mergeWithExisting(result.Articles)

	if err := s.backupOnce(); err != nil {
		return err
	}

	payload, err := json.MarshalIndent(merged, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}

	tmp := s.postsDataPath + ".tmp"
	if err := os.WriteFile(tmp, payload, 0o644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	if err := os.Rename(tmp, s.postsDataPath); err != nil {
		return fmt.Errorf("replace snapshot: %w", err)
	}

	s.logger.Info("snapshot written", "path", s.postsDataPath, "posts", len(merged))
	return nil
}

// mergeWithExisting places fresh articles first so they stay primary on
// activity-timestamp ties during deduplication.
func (s *Snapshot) mergeWithExisting(fresh []domain.Post) []domain.Post {
	combined := make([]domain.Post, 0, len(fresh))
	combined = append(combined, fresh...)

	raw, err := os.ReadFile(s.postsDataPath)
	if err == nil {
		var items []any
		if err := json.Unmarshal(raw, &items); err == nil {
			for _, item := range items {
				if post, ok := domain.PostFromAny(item); ok {
					combined = append(combined, post)
				}
			}
		}
	}

	return reconcile.Dedupe(combined)
}

func (s *Snapshot) backupOnce() error {
	backup := s.postsDataPath + ".bak"
	if _, err := os.Stat(backup); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("stat backup: %w", err)
	}

	raw, err := os.ReadFile(s.postsDataPath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read cache for backup: %w", err)
	}

	if err := os.WriteFile(backup, raw, 0o644); err != nil {
		return fmt.Errorf("write backup: %w", err)
	}
	return nil
}
