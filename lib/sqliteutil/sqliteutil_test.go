package sqliteutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

const testSchema = `CREATE TABLE IF NOT EXISTS items (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	name TEXT NOT NULL
);`

func TestOpenDBAppliesSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "test.db")

	db, err := OpenDB(testSchema, path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(`INSERT INTO items (name) VALUES ('a')`)
	require.NoError(t, err)

	var count int
	err = db.QueryRow(`SELECT COUNT(*) FROM items`).Scan(&count)
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestOpenDBIdempotentSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	db, err := OpenDB(testSchema, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	// reopening must tolerate the already applied schema
	db, err = OpenDB(testSchema, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}

func TestDatabaseOpenLocalFile(t *testing.T) {
	config := Database{File: filepath.Join(t.TempDir(), "test.db")}
	db, err := config.Open(testSchema)
	require.NoError(t, err)
	require.NoError(t, db.Close())
}
