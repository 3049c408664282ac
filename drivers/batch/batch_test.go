package batch

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/datazip-inc/olake-pager/constants"
)

func TestSource_SetupSQLite(t *testing.T) {
	ctx := context.Background()
	source := NewSource(&Config{
		Driver:   constants.SQLite,
		Path:     filepath.Join(t.TempDir(), "shop.db"),
		Entities: []Entity{itemEntity()},
	})
	require.NoError(t, source.Setup(ctx))
	defer source.Close()

	_, err := source.Client().ExecContext(ctx, `CREATE TABLE item (id INTEGER PRIMARY KEY, name TEXT)`)
	require.NoError(t, err)
	_, err = source.Client().ExecContext(ctx, `INSERT INTO item (id, name) VALUES (1, 'pen'), (2, 'ink')`)
	require.NoError(t, err)

	rows, err := source.Reader().Execute(ctx, "SELECT * FROM item ORDER BY id")
	require.NoError(t, err)
	defer rows.Close()

	var names []any
	for rows.Next() {
		row, err := rows.Row()
		require.NoError(t, err)
		names = append(names, row["name"])
	}
	require.NoError(t, rows.Err())
	assert.Equal(t, []any{"pen", "ink"}, names)
	assert.Equal(t, constants.DefaultThreadCount, source.Config().MaxThreads)
}

func TestSource_SetupInvalidConfig(t *testing.T) {
	source := NewSource(&Config{Driver: constants.SQLite})
	err := source.Setup(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to validate config")
	assert.NoError(t, source.Close())
}
