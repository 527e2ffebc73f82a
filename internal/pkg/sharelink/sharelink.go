package sharelink

import (
	"encoding/base64"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/google/uuid"
	qrcode "github.com/skip2/go-qrcode"
)

var ErrEncoding = errors.New("qr encoding failed")

const (
	DefaultQRSize = 256
	dataURIPrefix = "data:image/png;base64,"
)

// Service issues download tokens and renders QR codes for download links.
type Service struct {
	size  int
	level qrcode.RecoveryLevel
}

func New(size int) *Service {
	if size <= 0 {
		size = DefaultQRSize
	}
	return &Service{size: size, level: qrcode.Medium}
}

// NewToken returns a random (version 4) UUID. Uniqueness is probabilistic;
// the database enforces it with a unique index.
func (s *Service) NewToken() string {
	return uuid.NewString()
}

// DownloadURL joins the API base URL and the token.
func (s *Service) DownloadURL(baseURL, token string) string {
	return strings.TrimRight(baseURL, "/") + "/download/" + url.PathEscape(token)
}

// RenderQR encodes rawURL as a PNG QR code wrapped in a data URI.
// The output is deterministic for a given URL.
func (s *Service) RenderQR(rawURL string) (string, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return "", fmt.Errorf("%w: %q is not an absolute http(s) url", ErrEncoding, rawURL)
	}

	png, err := qrcode.Encode(rawURL, s.level, s.size)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrEncoding, err)
	}
	return dataURIPrefix + base64.StdEncoding.EncodeToString(png), nil
}

// TokenFromURL extracts the token from a download URL built by DownloadURL.
func TokenFromURL(rawURL string) (string, bool) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "", false
	}
	i := strings.LastIndex(u.Path, "/download/")
	if i < 0 {
		return "", false
	}
	token := u.Path[i+len("/download/"):]
	if token == "" || strings.Contains(token, "/") {
		return "", false
	}
	return token, true
}
