package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/deusflow/trenddigest/internal/digest"
)

var (
	// ErrPathNotAllowed is returned for a path that resolves outside the data root.
	ErrPathNotAllowed = errors.New("path outside allowed data directory")
	// ErrTooFewStories is returned when a digest has fewer top stories than required.
	ErrTooFewStories = errors.New("digest has too few top stories")
)

// FileStore writes digests as JSON under an allow-listed root: the latest
// digest to one file and every digest to archive/<date>/<type>.json.
type FileStore struct {
	root       string
	latest     string
	archiveDir string
	// MinStories rejects digests with fewer top stories. Zero accepts all.
	MinStories int

	mu  sync.Mutex
	log *slog.Logger
}

// NewFileStore validates the layout; latest and archiveDir are relative to root.
func NewFileStore(root, latest, archiveDir string, minStories int, log *slog.Logger) (*FileStore, error) {
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve data dir: %w", err)
	}
	if log == nil {
		log = slog.Default()
	}
	s := &FileStore{
		root:       absRoot,
		MinStories: minStories,
		log:        log.With("component", "storage"),
	}

	if s.latest, err = s.Resolve(latest); err != nil {
		return nil, err
	}
	if s.archiveDir, err = s.Resolve(archiveDir); err != nil {
		return nil, err
	}
	return s, nil
}

// Resolve maps a path relative to the root to an absolute path, rejecting
// anything that escapes the root.
func (s *FileStore) Resolve(rel string) (string, error) {
	if rel == "" || filepath.IsAbs(rel) {
		return "", fmt.Errorf("%w: %q", ErrPathNotAllowed, rel)
	}
	p := filepath.Join(s.root, rel)
	r, err := filepath.Rel(s.root, p)
	if err != nil || r == ".." || strings.HasPrefix(r, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q", ErrPathNotAllowed, rel)
	}
	return p, nil
}

// LatestPath is where the most recent digest is written.
func (s *FileStore) LatestPath() string {
	return s.latest
}

// ArchivePath is where d is archived.
func (s *FileStore) ArchivePath(d *digest.Digest) (string, error) {
	if d.Date == "" || d.DigestType == "" {
		return "", fmt.Errorf("%w: digest has no date or type", ErrPathNotAllowed)
	}
	rel, err := filepath.Rel(s.root, filepath.Join(s.archiveDir, d.Date, string(d.DigestType)+".json"))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrPathNotAllowed, err)
	}
	return s.Resolve(rel)
}

// Write stores d as the latest digest and in the archive.
func (s *FileStore) Write(ctx context.Context, d *digest.Digest) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if len(d.TopStories) < s.MinStories {
		return fmt.Errorf("%w: %d < %d", ErrTooFewStories, len(d.TopStories), s.MinStories)
	}

	archive, err := s.ArchivePath(d)
	if err != nil {
		return err
	}
	data, err := encode(d)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// The archive goes first so a failed write never leaves the latest
	// digest ahead of its archived copy.
	for _, path := range []string{archive, s.latest} {
		if err := writeAtomic(path, data); err != nil {
			return err
		}
	}

	s.log.Info("digest saved", "type", d.DigestType, "latest", s.latest, "archive", archive, "top_stories", len(d.TopStories))
	return nil
}

// LoadLatest reads the latest digest back. A missing file returns os.ErrNotExist.
func (s *FileStore) LoadLatest() (*digest.Digest, error) {
	data, err := os.ReadFile(s.latest)
	if err != nil {
		return nil, err
	}
	var d digest.Digest
	if err := json.Unmarshal(data, &d); err != nil {
		return nil, fmt.Errorf("failed to unmarshal digest: %w", err)
	}
	return &d, nil
}

// encode renders two-space indented JSON with non-ASCII text kept as is.
func encode(d *digest.Digest) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(d); err != nil {
		return nil, fmt.Errorf("failed to marshal digest: %w", err)
	}
	return buf.Bytes(), nil
}

func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	if err := os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to replace %s: %w", path, err)
	}
	return nil
}
