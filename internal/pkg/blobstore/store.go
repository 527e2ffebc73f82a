package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"time"
)

var (
	ErrNotFound   = errors.New("blob not found")
	ErrWrite      = errors.New("blob write failed")
	ErrInvalidKey = errors.New("invalid blob key")
)

const maxExtLen = 10

// Object is an opened blob. The caller must Close it.
type Object struct {
	io.ReadCloser
	Size    int64
	ModTime time.Time
}

type ObjectInfo struct {
	Key     string
	Size    int64
	ModTime time.Time
}

// Backend is a flat key/value blob container.
// Delete of a missing key must succeed.
type Backend interface {
	Name() string
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) (int64, error)
	Open(ctx context.Context, key string) (*Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]ObjectInfo, error)
	// Location is the human readable path recorded next to the metadata row.
	Location(key string) string
}

// Saved describes a blob written by Store.Save.
type Saved struct {
	Key      string
	Location string
	Size     int64
}

// Store generates storage keys and delegates the bytes to a Backend.
type Store struct {
	backend Backend
	now     func() time.Time
	randN   func(n int64) int64
}

func New(backend Backend) *Store {
	return &Store{
		backend: backend,
		now:     time.Now,
		randN:   rand.Int64N,
	}
}

func (s *Store) Backend() string { return s.backend.Name() }

// Save writes r under a freshly generated key derived from the upload time,
// a random number and the extension of originalName.
// Keys are not checked against existing blobs.
func (s *Store) Save(ctx context.Context, r io.Reader, size int64, originalName, contentType string) (*Saved, error) {
	key := s.newKey(originalName)
	n, err := s.backend.Put(ctx, key, r, size, contentType)
	if err != nil {
		if errors.Is(err, ErrWrite) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", ErrWrite, err)
	}
	return &Saved{Key: key, Location: s.backend.Location(key), Size: n}, nil
}

func (s *Store) Open(ctx context.Context, key string) (*Object, error) {
	if !ValidKey(key) {
		return nil, ErrNotFound
	}
	return s.backend.Open(ctx, key)
}

// Delete removes the blob; a missing blob is not an error.
func (s *Store) Delete(ctx context.Context, key string) error {
	if !ValidKey(key) {
		return fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return s.backend.Delete(ctx, key)
}

func (s *Store) List(ctx context.Context) ([]ObjectInfo, error) {
	return s.backend.List(ctx)
}

// Close releases the backend's client when it holds one.
func (s *Store) Close() error {
	if c, ok := s.backend.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

func (s *Store) newKey(originalName string) string {
	return fmt.Sprintf("%d-%d%s", s.now().UnixMilli(), s.randN(1e9), sanitizeExt(originalName))
}

// ValidKey reports whether key is a single flat name that cannot escape the
// storage root.
func ValidKey(key string) bool {
	if key == "" || key == "." || key == ".." || len(key) > 255 {
		return false
	}
	if strings.ContainsAny(key, `/\`) || strings.Contains(key, "..") {
		return false
	}
	for _, r := range key {
		if r < 0x20 || r == 0x7f {
			return false
		}
	}
	return true
}

func sanitizeExt(name string) string {
	ext := filepath.Ext(filepath.Base(strings.ReplaceAll(name, `\`, "/")))
	if ext == "" {
		return ""
	}
	body := strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			return r
		}
		return -1
	}, ext[1:])
	if body == "" {
		return ""
	}
	if len(body) > maxExtLen {
		body = body[:maxExtLen]
	}
	return "." + body
}
