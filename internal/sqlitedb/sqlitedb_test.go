package sqlitedb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "db.sqlite")
	db, err := Open(path, `CREATE TABLE IF NOT EXISTS t (id INTEGER PRIMARY KEY)`)
	require.NoError(t, err)
	defer db.Close()

	var mode string
	require.NoError(t, db.QueryRow(`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)

	var timeout int
	require.NoError(t, db.QueryRow(`PRAGMA busy_timeout`).Scan(&timeout))
	assert.Equal(t, 10000, timeout)

	_, err = db.Exec(`INSERT INTO t (id) VALUES (1)`)
	require.NoError(t, err)
}

func TestOpenMemory(t *testing.T) {
	db, err := Open(Memory, `CREATE TABLE t (id INTEGER)`)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO t VALUES (1)`)
	require.NoError(t, err)

	var n int
	require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
	assert.Equal(t, 1, n)
}

func TestOpenBadSchema(t *testing.T) {
	_, err := Open(Memory, `NOT SQL`)
	assert.Error(t, err)
}
