package database

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsPostgres(t *testing.T) {
	assert.True(t, IsPostgres("postgres://u:p@localhost/db"))
	assert.True(t, IsPostgres("postgresql://u:p@localhost/db"))
	assert.True(t, IsPostgres("host=localhost port=5432 dbname=photos"))
	assert.False(t, IsPostgres("photoshare.db"))
	assert.False(t, IsPostgres(":memory:"))
}

func TestConnect_SQLiteFile(t *testing.T) {
	db, err := Connect(filepath.Join(t.TempDir(), "test.db"), WithLogLevel("silent"))
	require.NoError(t, err)

	var one int
	require.NoError(t, db.Raw("SELECT 1").Scan(&one).Error)
	assert.Equal(t, 1, one)
}
