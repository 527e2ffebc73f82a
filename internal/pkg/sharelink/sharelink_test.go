package sharelink

import (
	"bytes"
	"encoding/base64"
	"image/png"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewToken(t *testing.T) {
	s := New(0)

	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		tok := s.NewToken()
		parsed, err := uuid.Parse(tok)
		require.NoError(t, err)
		assert.Equal(t, uuid.Version(4), parsed.Version())
		assert.False(t, seen[tok])
		seen[tok] = true
	}
}

func TestDownloadURL(t *testing.T) {
	s := New(0)
	assert.Equal(t, "http://host:5050/api/download/abc", s.DownloadURL("http://host:5050/api/", "abc"))
	assert.Equal(t, "http://host/api/download/abc", s.DownloadURL("http://host/api", "abc"))
}

func TestRenderQR(t *testing.T) {
	s := New(128)
	link := "https://photos.example.com/api/download/" + s.NewToken()

	first, err := s.RenderQR(link)
	require.NoError(t, err)
	second, err := s.RenderQR(link)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	require.True(t, strings.HasPrefix(first, "data:image/png;base64,"))
	raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(first, "data:image/png;base64,"))
	require.NoError(t, err)
	img, err := png.Decode(bytes.NewReader(raw))
	require.NoError(t, err)
	assert.Equal(t, 128, img.Bounds().Dx())

	other, err := s.RenderQR(link + "x")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestRenderQR_MalformedURL(t *testing.T) {
	s := New(0)
	for _, bad := range []string{"", "not a url", "/api/download/x", "ftp://host/x", "http://%zz"} {
		_, err := s.RenderQR(bad)
		assert.ErrorIs(t, err, ErrEncoding, bad)
	}
}

func TestTokenFromURL(t *testing.T) {
	s := New(0)
	tok := s.NewToken()

	got, ok := TokenFromURL(s.DownloadURL("http://h/api", tok))
	require.True(t, ok)
	assert.Equal(t, tok, got)

	_, ok = TokenFromURL("http://h/api/image/x.png")
	assert.False(t, ok)
	_, ok = TokenFromURL("http://h/api/download/")
	assert.False(t, ok)
}
