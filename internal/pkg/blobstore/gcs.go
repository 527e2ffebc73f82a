package blobstore

import (
	"context"
	"errors"
	"fmt"
	"io"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
)

// GCS stores blobs in a Google Cloud Storage bucket. Credentials come from
// GOOGLE_APPLICATION_CREDENTIALS or the metadata server.
type GCS struct {
	client *storage.Client
	bucket string
}

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("create gcs client: %w", err)
	}
	return &GCS{client: client, bucket: bucket}, nil
}

func (g *GCS) Name() string { return "gcs" }

func (g *GCS) Location(key string) string {
	return "gs://" + g.bucket + "/" + key
}

func (g *GCS) Put(ctx context.Context, key string, r io.Reader, _ int64, contentType string) (int64, error) {
	w := g.client.Bucket(g.bucket).Object(key).NewWriter(ctx)
	if contentType == "" {
		contentType = defaultContentType
	}
	w.ContentType = contentType

	n, err := io.Copy(w, r)
	if err != nil {
		_ = w.Close()
		return 0, fmt.Errorf("%w: write object: %w", ErrWrite, err)
	}
	if err := w.Close(); err != nil {
		return 0, fmt.Errorf("%w: close writer: %w", ErrWrite, err)
	}
	return n, nil
}

func (g *GCS) Open(ctx context.Context, key string) (*Object, error) {
	rd, err := g.client.Bucket(g.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &Object{ReadCloser: rd, Size: rd.Attrs.Size, ModTime: rd.Attrs.LastModified}, nil
}

func (g *GCS) Delete(ctx context.Context, key string) error {
	err := g.client.Bucket(g.bucket).Object(key).Delete(ctx)
	if err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return err
	}
	return nil
}

func (g *GCS) List(ctx context.Context) ([]ObjectInfo, error) {
	var out []ObjectInfo
	it := g.client.Bucket(g.bucket).Objects(ctx, nil)
	for {
		attrs, err := it.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return out, err
		}
		out = append(out, ObjectInfo{Key: attrs.Name, Size: attrs.Size, ModTime: attrs.Updated})
	}
	return out, nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
