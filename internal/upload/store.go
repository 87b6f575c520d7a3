package upload

import (
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// ErrTooLarge is returned before anything is written when an upload is
// above the configured ceiling.
var ErrTooLarge = errors.New("upload exceeds size limit")

// DefaultMaxBytes applies when no positive ceiling is configured.
const DefaultMaxBytes int64 = 5 * 1024 * 1024

// Store keeps uploaded spreadsheets on disk for the duration of a request.
type Store struct {
	dir      string
	maxBytes int64
	now      func() time.Time
}

// File is a stored upload. Remove must be called on every exit path.
type File struct {
	Path         string
	OriginalName string
	Size         int64

	once sync.Once
	err  error
}

func NewStore(dir string, maxBytes int64) (*Store, error) {
	if dir == "" {
		dir = filepath.Join(os.TempDir(), "olist-helper")
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Store{dir: dir, maxBytes: maxBytes, now: time.Now}, nil
}

func (s *Store) Dir() string {
	return s.dir
}

func (s *Store) MaxBytes() int64 {
	return s.maxBytes
}

// Save copies the multipart file to the upload directory. The declared size
// is checked first; the copy is also capped in case the header lies.
func (s *Store) Save(fh *multipart.FileHeader) (*File, error) {
	if fh.Size > s.maxBytes {
		return nil, ErrTooLarge
	}

	src, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer src.Close()

	return s.write(src, fh.Filename)
}

// SaveReader stores r under a generated name carrying originalName's extension.
func (s *Store) SaveReader(r io.Reader, originalName string) (*File, error) {
	return s.write(r, originalName)
}

func (s *Store) write(r io.Reader, originalName string) (*File, error) {
	ext := strings.ToLower(filepath.Ext(originalName))
	path := filepath.Join(s.dir, uuid.NewString()+ext)

	dst, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("create temp file: %w", err)
	}

	file := &File{Path: path, OriginalName: originalName}

	n, err := io.Copy(dst, io.LimitReader(r, s.maxBytes+1))
	if cerr := dst.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		file.Remove()
		return nil, fmt.Errorf("write temp file: %w", err)
	}
	if n > s.maxBytes {
		file.Remove()
		return nil, ErrTooLarge
	}

	file.Size = n
	return file, nil
}

// Remove deletes the file. Safe to call more than once.
func (f *File) Remove() error {
	f.once.Do(func() {
		if err := os.Remove(f.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
			f.err = err
		}
	})
	return f.err
}

// Sweep deletes files older than maxAge left behind by interrupted requests.
func (s *Store) Sweep(maxAge time.Duration) (int, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return 0, fmt.Errorf("read upload dir: %w", err)
	}

	cutoff := s.now().Add(-maxAge)
	removed := 0
	var errs []error
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		if err := os.Remove(filepath.Join(s.dir, entry.Name())); err != nil && !errors.Is(err, os.ErrNotExist) {
			errs = append(errs, err)
			continue
		}
		removed++
	}

	return removed, errors.Join(errs...)
}
