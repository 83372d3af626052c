// Package output keeps briefings on the local filesystem as Markdown and JSON.
package output

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"KBeautyBriefing/internal/domain"
	"KBeautyBriefing/internal/logging"
	"KBeautyBriefing/internal/ports"
)

const filePrefix = "kbeauty_briefing_"

// ErrNoBriefing means no briefing file exists yet.
var ErrNoBriefing = fmt.Errorf("no briefing available: %w", ports.ErrNotFound)

// FileStore owns the output directory.
type FileStore struct {
	dir    string
	now    func() time.Time
	logger *slog.Logger
}

// NewFileStore prepares dir. On read-only deployments, or when dir cannot be created,
// files go to the system temp dir instead.
func NewFileStore(dir string, readOnly bool, logger *slog.Logger) *FileStore {
	logger = logging.OrDiscard(logger)
	resolved := resolveDir(dir, readOnly, logger)
	return &FileStore{dir: resolved, now: time.Now, logger: logger}
}

func resolveDir(dir string, readOnly bool, logger *slog.Logger) string {
	fallback := filepath.Join(os.TempDir(), "kbeauty_output")
	if dir == "" {
		dir = "output"
	}
	if readOnly {
		dir = fallback
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Warn("output dir unavailable, using temp dir", "dir", dir, "error", err)
		dir = fallback
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logger.Error("temp output dir unavailable", "dir", dir, "error", err)
		}
	}
	return dir
}

// Dir is the directory files are written to.
func (s *FileStore) Dir() string { return s.dir }

// WriteFile replaces name atomically inside the store.
func (s *FileStore) WriteFile(ctx context.Context, name string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", name, err)
	}

	path := filepath.Join(s.dir, name)
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("rename %s: %w", name, err)
	}
	s.logger.Debug("briefing file written", "path", path, "bytes", len(data))
	return nil
}

// LatestJSON loads the newest JSON briefing by modification time.
func (s *FileStore) LatestJSON() (domain.Briefing, error) {
	path, err := s.latest(".json")
	if err != nil {
		return domain.Briefing{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return domain.Briefing{}, fmt.Errorf("read %s: %w", path, err)
	}
	var b domain.Briefing
	if err := json.Unmarshal(raw, &b); err != nil {
		return domain.Briefing{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return b, nil
}

// LatestMarkdown returns the newest report and its file name.
func (s *FileStore) LatestMarkdown() ([]byte, string, error) {
	return s.LatestFile(".md")
}

// LatestFile returns the newest briefing file with the given extension.
func (s *FileStore) LatestFile(ext string) ([]byte, string, error) {
	path, err := s.latest(ext)
	if err != nil {
		return nil, "", err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("read %s: %w", path, err)
	}
	return raw, filepath.Base(path), nil
}

type briefingFile struct {
	path    string
	modTime time.Time
}

func (s *FileStore) files(ext string) ([]briefingFile, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("list %s: %w", s.dir, err)
	}

	var out []briefingFile
	for _, e := range entries {
		name := e.Name()
		if e.IsDir() || !strings.HasPrefix(name, filePrefix) || (ext != "" && filepath.Ext(name) != ext) {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, briefingFile{path: filepath.Join(s.dir, name), modTime: info.ModTime()})
	}
	return out, nil
}

func (s *FileStore) latest(ext string) (string, error) {
	files, err := s.files(ext)
	if err != nil {
		return "", err
	}
	if len(files) == 0 {
		return "", ErrNoBriefing
	}
	sort.Slice(files, func(i, j int) bool {
		if files[i].modTime.Equal(files[j].modTime) {
			return files[i].path > files[j].path
		}
		return files[i].modTime.After(files[j].modTime)
	})
	return files[0].path, nil
}

// Prune deletes briefing files last modified more than olderThan ago and returns how many went.
func (s *FileStore) Prune(ctx context.Context, olderThan time.Duration) (int, error) {
	files, err := s.files("")
	if err != nil {
		return 0, err
	}

	cutoff := s.now().Add(-olderThan)
	removed := 0
	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return removed, err
		}
		if !f.modTime.Before(cutoff) {
			continue
		}
		if err := os.Remove(f.path); err != nil {
			errs = append(errs, fmt.Errorf("remove %s: %w", f.path, err))
			continue
		}
		removed++
		s.logger.Info("old briefing removed", "path", f.path)
	}

	s.logger.Info("retention prune done", "removed", removed, "cutoff", cutoff)
	return removed, errors.Join(errs...)
}
