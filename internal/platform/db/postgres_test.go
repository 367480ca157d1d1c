package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type widget struct {
	ID   string `gorm:"primaryKey"`
	Name string
}

func TestOpenSQLiteAndMigrate(t *testing.T) {
	conn, err := Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.AutoMigrate(&widget{}))
	require.NoError(t, conn.DB.Create(&widget{ID: "w-1", Name: "first"}).Error)

	var got widget
	require.NoError(t, conn.DB.First(&got, "id = ?", "w-1").Error)
	assert.Equal(t, "first", got.Name)
}

func TestOpenRejectsBadInput(t *testing.T) {
	_, err := Open("sqlite", "")
	assert.Error(t, err)
	_, err = Open("oracle", "dsn")
	assert.Error(t, err)
	assert.NoError(t, (*Postgres)(nil).Close())
}
