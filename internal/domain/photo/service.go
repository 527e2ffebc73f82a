package photo

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gabriel-vasile/mimetype"

	"photoshare/internal/pkg/blobstore"
	"photoshare/internal/pkg/validator"
)

const sniffLen = 3072

type Options struct {
	Limits Limits
	// CleanupOnFailure removes the stored blob when the row insert fails.
	// Off by default: the blob is left behind for the orphan sweep.
	CleanupOnFailure bool
	Notifier         Notifier
}

// Service turns incoming files into stored, downloadable, shareable photos.
type Service struct {
	repo             Repository
	blobs            BlobStore
	links            LinkIssuer
	notifier         Notifier
	limits           Limits
	cleanupOnFailure bool
	now              func() time.Time
}

func NewService(repo Repository, blobs BlobStore, links LinkIssuer, opts Options) *Service {
	limits := opts.Limits
	def := DefaultLimits()
	if limits.MaxFileSize <= 0 {
		limits.MaxFileSize = def.MaxFileSize
	}
	if limits.MaxFiles <= 0 {
		limits.MaxFiles = def.MaxFiles
	}
	if limits.MaxFields <= 0 {
		limits.MaxFields = def.MaxFields
	}
	return &Service{
		repo:             repo,
		blobs:            blobs,
		links:            links,
		notifier:         opts.Notifier,
		limits:           limits,
		cleanupOnFailure: opts.CleanupOnFailure,
		now:              time.Now,
	}
}

func (s *Service) Limits() Limits { return s.limits }

// Upload validates one file, stores it, records it and issues its download
// link and QR code. Validation failures happen before any write. Later
// failures are wrapped in ErrUpload and are not rolled back unless
// CleanupOnFailure is set.
func (s *Service) Upload(ctx context.Context, in UploadInput, links Links) (*UploadResult, error) {
	in, err := s.prepare(in)
	if err != nil {
		return nil, err
	}

	saved, err := s.blobs.Save(ctx, &limitedReader{r: in.Content, n: s.limits.MaxFileSize}, in.Size, in.OriginalName, in.MimeType)
	if err != nil {
		if errors.Is(err, ErrFileTooLarge) {
			return nil, ErrFileTooLarge
		}
		return nil, fmt.Errorf("%w: store blob: %w", ErrUpload, err)
	}

	token := s.links.NewToken()
	p := &Photo{
		Filename:      saved.Key,
		OriginalName:  in.OriginalName,
		FilePath:      saved.Location,
		FileSize:      saved.Size,
		MimeType:      in.MimeType,
		DownloadToken: token,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		if s.cleanupOnFailure {
			if derr := s.blobs.Delete(ctx, saved.Key); derr != nil {
				log.Printf("photo_upload cleanup_failed filename=%s error=%q", saved.Key, derr)
			}
		} else {
			log.Printf("photo_upload orphan_blob filename=%s kind=%s", saved.Key, Kind(err))
		}
		return nil, fmt.Errorf("%w: %w", ErrUpload, err)
	}

	downloadURL := s.links.DownloadURL(links.APIBase, token)
	qr, err := s.links.RenderQR(downloadURL)
	if err != nil {
		return nil, fmt.Errorf("%w: render qr: %w", ErrUpload, err)
	}

	view := links.View(p)
	log.Printf("photo_upload ok id=%d filename=%s size=%d mime=%s", p.ID, p.Filename, p.FileSize, p.MimeType)
	s.publish(Event{Type: EventUploaded, PhotoID: p.ID, Photo: &view})

	return &UploadResult{Photo: view, QRCode: qr, DownloadURL: downloadURL}, nil
}

// UploadBatch uploads files one after another in submission order and
// reports each outcome separately.
func (s *Service) UploadBatch(ctx context.Context, inputs []UploadInput, links Links) ([]UploadOutcome, error) {
	if len(inputs) == 0 {
		return nil, ErrNoFile
	}
	if len(inputs) > s.limits.MaxFiles {
		return nil, ErrTooManyFiles
	}

	outcomes := make([]UploadOutcome, len(inputs))
	for i, in := range inputs {
		res, err := s.Upload(ctx, in, links)
		outcomes[i] = UploadOutcome{Index: i, OriginalName: in.OriginalName, Result: res, Err: err}
	}
	return outcomes, nil
}

func (s *Service) List(ctx context.Context, links Links) ([]View, error) {
	photos, err := s.repo.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	views := make([]View, 0, len(photos))
	for _, p := range photos {
		views = append(views, links.View(p))
	}
	return views, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Photo, error) {
	return s.repo.GetByID(ctx, id)
}

// QRCode re-renders the QR code of an existing photo. The token is the one
// issued at upload time.
func (s *Service) QRCode(ctx context.Context, id int64, links Links) (*QRResult, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	downloadURL := s.links.DownloadURL(links.APIBase, p.DownloadToken)
	qr, err := s.links.RenderQR(downloadURL)
	if err != nil {
		return nil, err
	}
	return &QRResult{QRCode: qr, DownloadURL: downloadURL}, nil
}

// Download resolves a token, opens the blob and counts the download.
// The counter is only incremented once the blob is known to be readable.
func (s *Service) Download(ctx context.Context, token string) (*Download, error) {
	if token == "" {
		return nil, ErrNotFound
	}
	p, err := s.repo.GetByToken(ctx, token)
	if err != nil {
		return nil, err
	}

	obj, err := s.blobs.Open(ctx, p.Filename)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			log.Printf("photo_download missing_blob id=%d filename=%s", p.ID, p.Filename)
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("open blob: %w", err)
	}

	if err := s.repo.IncrementDownloadCount(ctx, p.ID); err != nil {
		_ = obj.Close()
		return nil, err
	}
	p.DownloadCount++

	s.publish(Event{Type: EventDownloaded, PhotoID: p.ID})
	return &Download{Photo: p, Object: obj}, nil
}

// Delete removes the blob and then the row. The two steps are not atomic;
// a failure in between leaves the row pointing at a missing blob.
func (s *Service) Delete(ctx context.Context, id int64) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.blobs.Delete(ctx, p.Filename); err != nil && !errors.Is(err, blobstore.ErrInvalidKey) {
		return fmt.Errorf("delete blob: %w", err)
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	log.Printf("photo_delete ok id=%d filename=%s", p.ID, p.Filename)
	s.publish(Event{Type: EventDeleted, PhotoID: p.ID})
	return nil
}

// Image opens a stored blob by filename.
func (s *Service) Image(ctx context.Context, filename string) (*blobstore.Object, error) {
	obj, err := s.blobs.Open(ctx, filename)
	if err != nil {
		if errors.Is(err, blobstore.ErrNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return obj, nil
}

// SweepOrphans compares blobs with rows. Blobs without a row that are older
// than grace are orphans and are deleted when apply is set. Rows whose blob
// is gone are only reported.
func (s *Service) SweepOrphans(ctx context.Context, grace time.Duration, apply bool) (*SweepReport, error) {
	blobs, err := s.blobs.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list blobs: %w", err)
	}
	names, err := s.repo.ListFilenames(ctx)
	if err != nil {
		return nil, err
	}

	known := make(map[string]struct{}, len(names))
	for _, n := range names {
		known[n] = struct{}{}
	}
	stored := make(map[string]struct{}, len(blobs))

	report := &SweepReport{Scanned: len(blobs), OrphanBlobs: []string{}, MissingBlobs: []string{}}
	cutoff := s.now().Add(-grace)
	for _, b := range blobs {
		stored[b.Key] = struct{}{}
		if _, ok := known[b.Key]; ok {
			continue
		}
		// may belong to an upload whose row is not inserted yet
		if b.ModTime.After(cutoff) {
			continue
		}
		report.OrphanBlobs = append(report.OrphanBlobs, b.Key)
		if apply {
			if err := s.blobs.Delete(ctx, b.Key); err != nil {
				log.Printf("photo_sweep delete_failed filename=%s error=%q", b.Key, err)
				continue
			}
			report.Deleted++
		}
	}
	for _, n := range names {
		if _, ok := stored[n]; !ok {
			report.MissingBlobs = append(report.MissingBlobs, n)
		}
	}
	return report, nil
}

// prepare checks the input before anything is written. It sniffs the
// content type when the client did not declare a usable one.
func (s *Service) prepare(in UploadInput) (UploadInput, error) {
	if errs := validator.Validate(in); errs != nil {
		if _, ok := errs["Content"]; ok {
			return in, ErrNoFile
		}
		return in, fmt.Errorf("%w: %s", ErrValidation, validator.Describe(errs))
	}

	in.MimeType = normalizeMime(in.MimeType)
	if in.MimeType == "" || in.MimeType == "application/octet-stream" {
		head := make([]byte, sniffLen)
		n, err := io.ReadFull(in.Content, head)
		if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
			return in, fmt.Errorf("%w: read file: %w", ErrUpload, err)
		}
		head = head[:n]
		in.MimeType = normalizeMime(mimetype.Detect(head).String())
		in.Content = io.MultiReader(bytes.NewReader(head), in.Content)
	}

	if !strings.HasPrefix(in.MimeType, "image/") {
		return in, ErrInvalidMimeType
	}
	if in.Size == 0 {
		return in, ErrEmptyFile
	}
	if in.Size > s.limits.MaxFileSize {
		return in, ErrFileTooLarge
	}
	return in, nil
}

func (s *Service) publish(e Event) {
	if s.notifier == nil {
		return
	}
	e.At = s.now()
	s.notifier.Publish(e)
}

func normalizeMime(m string) string {
	m = strings.Split(m, ";")[0]
	return strings.ToLower(strings.TrimSpace(m))
}

// limitedReader fails with ErrFileTooLarge once more than n bytes are read,
// guarding against a declared size smaller than the real content.
type limitedReader struct {
	r io.Reader
	n int64
}

func (l *limitedReader) Read(p []byte) (int, error) {
	n, err := l.r.Read(p)
	l.n -= int64(n)
	if l.n < 0 {
		return n, ErrFileTooLarge
	}
	return n, err
}
