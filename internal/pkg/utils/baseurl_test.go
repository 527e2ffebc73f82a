package utils

import (
	"crypto/tls"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBaseURL_FromRequest(t *testing.T) {
	b, err := NewBaseURLResolver("", nil)
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "http://photos.local:5050/api/photos", nil)
	assert.Equal(t, "http://photos.local:5050", b.Resolve(r))

	r.TLS = &tls.ConnectionState{}
	assert.Equal(t, "https://photos.local:5050", b.Resolve(r))
}

func TestBaseURL_ForwardedHeadersFromTrustedProxy(t *testing.T) {
	b, err := NewBaseURLResolver("", []string{"10.0.0.0/8", "::1"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "http://10.0.0.2:5050/api/photos", nil)
	r.RemoteAddr = "10.1.2.3:41000"
	r.Header.Set("X-Forwarded-Proto", "https, http")
	r.Header.Set("X-Forwarded-Host", "share.example.com")
	assert.Equal(t, "https://share.example.com", b.Resolve(r))

	r.RemoteAddr = "[::1]:41000"
	assert.Equal(t, "https://share.example.com", b.Resolve(r))
}

func TestBaseURL_ForwardedHeadersIgnoredFromOtherClients(t *testing.T) {
	b, err := NewBaseURLResolver("", []string{"10.0.0.1"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "http://photos.local:5050/api/photos", nil)
	r.RemoteAddr = "203.0.113.7:5555"
	r.Header.Set("X-Forwarded-Proto", "https")
	r.Header.Set("X-Forwarded-Host", "evil.example.com")
	assert.Equal(t, "http://photos.local:5050", b.Resolve(r))

	none, err := NewBaseURLResolver("", nil)
	require.NoError(t, err)
	r.RemoteAddr = "10.0.0.1:5555"
	assert.Equal(t, "http://photos.local:5050", none.Resolve(r))
}

func TestBaseURL_Override(t *testing.T) {
	b, err := NewBaseURLResolver("https://cdn.example.com/", []string{"0.0.0.0/0"})
	require.NoError(t, err)

	r := httptest.NewRequest("GET", "http://10.0.0.2:5050/api/photos", nil)
	r.Header.Set("X-Forwarded-Host", "share.example.com")
	assert.Equal(t, "https://cdn.example.com", b.Resolve(r))
}

func TestNewBaseURLResolver_InvalidProxy(t *testing.T) {
	_, err := NewBaseURLResolver("", []string{"not-an-ip"})
	assert.Error(t, err)

	_, err = NewBaseURLResolver("", []string{"10.0.0.0/99"})
	assert.Error(t, err)
}
