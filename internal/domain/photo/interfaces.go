package photo

import (
	"context"
	"io"

	"photoshare/internal/pkg/blobstore"
)

// BlobStore holds the image bytes, keyed by generated filename.
type BlobStore interface {
	Save(ctx context.Context, r io.Reader, size int64, originalName, contentType string) (*blobstore.Saved, error)
	Open(ctx context.Context, key string) (*blobstore.Object, error)
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) ([]blobstore.ObjectInfo, error)
}

// LinkIssuer creates download tokens and the QR codes that point at them.
type LinkIssuer interface {
	NewToken() string
	DownloadURL(baseURL, token string) string
	RenderQR(url string) (string, error)
}

// Notifier receives photo lifecycle events. Publish must not block.
type Notifier interface {
	Publish(e Event)
}
