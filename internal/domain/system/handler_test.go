package system

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"photoshare/internal/pkg/utils"
)

type fakePinger struct{ err error }

func (f fakePinger) PingContext(context.Context) error { return f.err }

func newRouter(db Pinger, base string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	// httptest requests come from 192.0.2.1
	baseURL, err := utils.NewBaseURLResolver(base, []string{"192.0.2.1"})
	if err != nil {
		panic(err)
	}
	h := NewHandler(db, baseURL)
	h.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	RegisterRoutes(r, h)
	return r
}

func TestHealth_OK(t *testing.T) {
	r := newRouter(fakePinger{}, "")

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	req.Host = "photos.local:5050"
	req.Header.Set("User-Agent", "probe/1.0")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "OK", body["status"])
	assert.Equal(t, "up", body["database"])
	assert.Equal(t, "probe/1.0", body["userAgent"])
	assert.Equal(t, "http://photos.local:5050", body["baseUrl"])
	assert.Equal(t, "2026-01-02T03:04:05Z", body["timestamp"])
}

func TestHealth_DatabaseDown(t *testing.T) {
	r := newRouter(fakePinger{err: errors.New("connection refused")}, "https://photos.example.com")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/health", nil))

	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "down", body["database"])
	assert.Equal(t, "https://photos.example.com", body["baseUrl"])
}

func TestTest_EchoesHeaders(t *testing.T) {
	r := newRouter(nil, "")

	req := httptest.NewRequest(http.MethodGet, "/api/test", nil)
	req.Header.Set("X-Forwarded-Proto", "https")
	req.Header.Set("X-Forwarded-Host", "gallery.example.com")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status  string            `json:"status"`
		BaseURL string            `json:"baseUrl"`
		Headers map[string]string `json:"headers"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "API is working", body.Status)
	assert.Equal(t, "https://gallery.example.com", body.BaseURL)
	assert.Equal(t, "https", body.Headers["X-Forwarded-Proto"])
}
