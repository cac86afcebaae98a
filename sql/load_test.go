package sql

import (
	"testing"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInit(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Initialize database extensions", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		var exists bool
		err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_extension WHERE extname = 'pgcrypto');").Scan(&exists)
		require.NoError(t, err)
		assert.True(t, exists, "pgcrypto extension should be created")
	})

	t.Run("Initialize database extensions is idempotent", func(t *testing.T) {
		err := Init(db.Instance)
		assert.NoError(t, err)

		err = Init(db.Instance)
		assert.NoError(t, err)
	})
}

func TestLoadStatesSql(t *testing.T) {
	db := initDB(t)
	defer db.Close()

	t.Run("Load states SQL functions", func(t *testing.T) {
		err := LoadStatesSql(db.Instance, false)
		assert.NoError(t, err)

		for _, funcName := range StatesFunctions {
			var exists bool
			err = db.Instance.QueryRow("SELECT EXISTS(SELECT 1 FROM pg_proc WHERE proname = $1);", funcName).Scan(&exists)
			require.NoError(t, err)
			assert.True(t, exists, "Function %s should exist", funcName)
		}
	})

	t.Run("Load states SQL is idempotent without force", func(t *testing.T) {
		err := LoadStatesSql(db.Instance, false)
		assert.NoError(t, err)
	})

	t.Run("Load states SQL with force reloads", func(t *testing.T) {
		err := LoadStatesSql(db.Instance, true)
		assert.NoError(t, err)

		exist, err := checkFunctions(db.Instance, StatesFunctions)
		require.NoError(t, err)
		assert.True(t, exist, "Expected functions to exist after force reload")
	})

	t.Run("Check reports missing functions", func(t *testing.T) {
		exist, err := checkFunctions(db.Instance, []string{"function_that_does_not_exist"})
		require.NoError(t, err)
		assert.False(t, exist)
	})
}
