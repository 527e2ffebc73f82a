package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "5050", cfg.Port)
	assert.Equal(t, int64(50*1024*1024), cfg.Upload.MaxFileSize)
	assert.Equal(t, 5, cfg.Upload.MaxFiles)
	assert.Equal(t, 10, cfg.Upload.MaxFields)
	assert.False(t, cfg.Upload.CleanupOnFailure)
	assert.Equal(t, DriverLocal, cfg.Storage.Driver)
	assert.Equal(t, "uploads", cfg.Storage.Dir)
	assert.Equal(t, time.Hour, cfg.Sweep.GracePeriod)
	assert.Equal(t, "photoshare.db", cfg.DSN())
	assert.Equal(t, []string{"127.0.0.1", "::1"}, cfg.TrustedProxies)
}

func TestDSN_FromDiscreteSettings(t *testing.T) {
	t.Setenv("DB_HOST", "db.local")
	t.Setenv("DB_NAME", "photos")
	t.Setenv("DB_USER", "app")
	t.Setenv("DB_PASSWORD", "secret")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "host=db.local port=5432 user=app password=secret dbname=photos sslmode=disable", cfg.DSN())
}

func TestDSN_DatabaseURLWins(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://u:p@h/db")
	t.Setenv("DB_HOST", "ignored")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "postgres://u:p@h/db", cfg.DSN())
}

func TestParse_CORSOrigins(t *testing.T) {
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test,http://b.test")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.CORSAllowedOrigins)
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		env  map[string]string
	}{
		{name: "zero file size", env: map[string]string{"UPLOAD_MAX_FILE_SIZE": "0"}},
		{name: "zero files", env: map[string]string{"UPLOAD_MAX_FILES": "0"}},
		{name: "unknown driver", env: map[string]string{"STORAGE_DRIVER": "ftp"}},
		{name: "minio without endpoint", env: map[string]string{"STORAGE_DRIVER": "minio"}},
		{name: "s3 without bucket", env: map[string]string{"STORAGE_DRIVER": "s3"}},
		{name: "gcs without bucket", env: map[string]string{"STORAGE_DRIVER": "gcs"}},
		{name: "relative base url", env: map[string]string{"PUBLIC_BASE_URL": "/photos"}},
		{name: "prod on sqlite", env: map[string]string{"APP_ENV": "production"}},
		{name: "bad bool", env: map[string]string{"PPROF_ENABLED": "maybe"}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for k, v := range tc.env {
				t.Setenv(k, v)
			}
			_, err := Parse()
			assert.Error(t, err)
		})
	}
}

func TestParse_TrimsBaseURL(t *testing.T) {
	t.Setenv("PUBLIC_BASE_URL", "https://photos.example.com/")

	cfg, err := Parse()
	require.NoError(t, err)
	assert.Equal(t, "https://photos.example.com", cfg.PublicBaseURL)
}
