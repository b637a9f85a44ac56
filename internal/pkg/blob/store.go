// Package blob keeps uploaded file content on a filesystem, addressed by
// server generated names.
package blob

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"
)

var (
	ErrNotFound    = errors.New("blob not found")
	ErrInvalidName = errors.New("invalid blob name")
	ErrExists      = errors.New("blob already exists")
)

const maxExtLen = 10

// Store writes blobs flat into the root of fs.
type Store struct {
	fs  afero.Fs
	now func() time.Time
}

// NewStore wraps an already rooted filesystem. Tests pass afero.NewMemMapFs().
func NewStore(fs afero.Fs) *Store {
	return &Store{fs: fs, now: time.Now}
}

// NewOSStore roots the store at dir on the local disk, creating it if needed.
func NewOSStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create uploads dir: %w", err)
	}
	return NewStore(afero.NewBasePathFs(afero.NewOsFs(), dir)), nil
}

// GenerateName derives a unique blob name from a nanosecond timestamp and a
// random component, keeping the extension of originalName.
func (s *Store) GenerateName(originalName string) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:12]
	return fmt.Sprintf("%d-%s%s", s.now().UnixNano(), random, cleanExt(originalName))
}

// Save streams r into a new blob and returns the number of bytes written.
// A partially written blob is removed on failure.
func (s *Store) Save(name string, r io.Reader) (int64, error) {
	if err := validName(name); err != nil {
		return 0, err
	}

	f, err := s.fs.OpenFile(name, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			return 0, ErrExists
		}
		return 0, fmt.Errorf("create blob: %w", err)
	}

	n, err := io.Copy(f, r)
	if err != nil {
		_ = f.Close()
		_ = s.fs.Remove(name)
		return 0, fmt.Errorf("write blob: %w", err)
	}
	if err := f.Close(); err != nil {
		_ = s.fs.Remove(name)
		return 0, fmt.Errorf("close blob: %w", err)
	}
	return n, nil
}

// Open returns the blob for reading. The returned file supports Seek, so it
// can be served with http.ServeContent.
func (s *Store) Open(name string) (afero.File, error) {
	if err := validName(name); err != nil {
		return nil, err
	}
	f, err := s.fs.Open(name)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}
	return f, nil
}

// Remove deletes the blob. A blob that is already gone is not an error.
func (s *Store) Remove(name string) error {
	if err := validName(name); err != nil {
		return err
	}
	if err := s.fs.Remove(name); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove blob: %w", err)
	}
	return nil
}

func validName(name string) error {
	if name == "" || name == "." || name == ".." || filepath.Base(name) != name || strings.ContainsAny(name, `/\`) {
		return ErrInvalidName
	}
	return nil
}

// cleanExt keeps a short lowercase alphanumeric extension, or nothing.
func cleanExt(originalName string) string {
	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filepath.Base(originalName)), "."))
	ext = strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext)
	if ext == "" {
		return ""
	}
	if len(ext) > maxExtLen {
		ext = ext[:maxExtLen]
	}
	return "." + ext
}
