package database

import (
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsMemory(t *testing.T) {
	assert.True(t, IsMemory(":memory:"))
	assert.True(t, IsMemory("file:tickets?mode=memory&cache=shared"))
	assert.False(t, IsMemory("./data/index.db"))
}

func TestNew(t *testing.T) {
	t.Run("in-memory database keeps one connection", func(t *testing.T) {
		db, err := New(WithDriver("sqlite3"), WithDataSource(":memory:"), WithMaxOpenConns(10))
		require.NoError(t, err)
		defer db.Close()

		_, err = db.Exec(`CREATE TABLE t (id INTEGER)`)
		require.NoError(t, err)
		_, err = db.Exec(`INSERT INTO t (id) VALUES (1)`)
		require.NoError(t, err)

		var n int
		require.NoError(t, db.QueryRow(`SELECT COUNT(*) FROM t`).Scan(&n))
		assert.Equal(t, 1, n)
		assert.Equal(t, 1, db.Stats().MaxOpenConnections)
	})

	t.Run("empty driver", func(t *testing.T) {
		db, err := New(WithDriver(""))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("empty data source", func(t *testing.T) {
		db, err := New(WithDataSource(""))
		assert.Error(t, err)
		assert.Nil(t, db)
	})

	t.Run("unknown driver fails after retries", func(t *testing.T) {
		db, err := New(WithDriver("nope"), WithRetry(2, 0))
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "after 2 attempts")
		assert.Nil(t, db)
	})
}
