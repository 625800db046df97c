package db

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSqliteDBInMemory(t *testing.T) {
	conn, err := NewSqliteDB()
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY, v TEXT);")
	require.NoError(t, err)
}

func TestNewSqliteDBCreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "sim.db")

	conn, err := NewSqliteDB(WithPath(path))
	require.NoError(t, err)
	defer conn.Close()

	assert.DirExists(t, filepath.Dir(path))
	assert.FileExists(t, path)
}

func TestNewSqliteDBCustomPragmas(t *testing.T) {
	conn, err := NewSqliteDB(WithPragmas("PRAGMA journal_mode=WAL;"), WithMaxOpenConns(1))
	require.NoError(t, err)
	defer conn.Close()

	_, err = conn.Exec("CREATE TABLE t (id INTEGER PRIMARY KEY);")
	assert.NoError(t, err)
}
