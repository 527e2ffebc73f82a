package photo

import (
	"io"
	"time"

	"photoshare/internal/pkg/blobstore"
)

// UploadInput is one incoming file, already separated from its transport.
type UploadInput struct {
	OriginalName string    `validate:"required,max=255"`
	MimeType     string    `validate:"max=100"`
	Size         int64     `validate:"gte=0"`
	Content      io.Reader `validate:"required"`
}

type Limits struct {
	MaxFileSize int64
	MaxFiles    int
	MaxFields   int
}

func DefaultLimits() Limits {
	return Limits{MaxFileSize: 50 * 1024 * 1024, MaxFiles: 5, MaxFields: 10}
}

type UploadResult struct {
	Photo       View
	QRCode      string
	DownloadURL string
}

// UploadOutcome is the result for one file of a batch.
type UploadOutcome struct {
	Index        int
	OriginalName string
	Result       *UploadResult
	Err          error
}

type QRResult struct {
	QRCode      string `json:"qrCode"`
	DownloadURL string `json:"downloadUrl"`
}

// Download is an opened blob together with its record. Close releases the blob.
type Download struct {
	Photo  *Photo
	Object *blobstore.Object
}

func (d *Download) Close() error {
	return d.Object.Close()
}

const (
	EventUploaded   = "photo.uploaded"
	EventDeleted    = "photo.deleted"
	EventDownloaded = "photo.downloaded"
)

type Event struct {
	Type    string    `json:"type"`
	PhotoID int64     `json:"photoId"`
	Photo   *View     `json:"photo,omitempty"`
	At      time.Time `json:"at"`
}

type SweepReport struct {
	Scanned      int      `json:"scanned"`
	OrphanBlobs  []string `json:"orphanBlobs"`
	MissingBlobs []string `json:"missingBlobs"`
	Deleted      int      `json:"deleted"`
}
