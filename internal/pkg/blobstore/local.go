package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local keeps blobs as plain files in a single directory.
type Local struct {
	root string
}

// NewLocal creates the root directory if it does not exist yet.
func NewLocal(root string) (*Local, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	return &Local{root: root}, nil
}

func (l *Local) Name() string { return "local" }

func (l *Local) Location(key string) string {
	return filepath.Join(l.root, key)
}

func (l *Local) Put(_ context.Context, key string, r io.Reader, _ int64, _ string) (int64, error) {
	// the directory may have been removed since startup
	if err := os.MkdirAll(l.root, 0o755); err != nil {
		return 0, fmt.Errorf("%w: create storage dir: %w", ErrWrite, err)
	}

	path := l.Location(key)
	dst, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return 0, fmt.Errorf("%w: create file: %w", ErrWrite, err)
	}

	n, err := io.Copy(dst, r)
	if err != nil {
		_ = dst.Close()
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: write file: %w", ErrWrite, err)
	}
	if err := dst.Close(); err != nil {
		_ = os.Remove(path)
		return 0, fmt.Errorf("%w: close file: %w", ErrWrite, err)
	}
	return n, nil
}

func (l *Local) Open(_ context.Context, key string) (*Object, error) {
	f, err := os.Open(l.Location(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	st, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, err
	}
	if st.IsDir() {
		_ = f.Close()
		return nil, ErrNotFound
	}
	return &Object{ReadCloser: f, Size: st.Size(), ModTime: st.ModTime()}, nil
}

func (l *Local) Delete(_ context.Context, key string) error {
	err := os.Remove(l.Location(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

func (l *Local) List(_ context.Context) ([]ObjectInfo, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, err
	}

	out := make([]ObjectInfo, 0, len(entries))
	for _, e := range entries {
		if !e.Type().IsRegular() {
			continue
		}
		info, err := e.Info()
		if err != nil {
			continue
		}
		out = append(out, ObjectInfo{Key: e.Name(), Size: info.Size(), ModTime: info.ModTime()})
	}
	return out, nil
}
