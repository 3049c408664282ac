package abstract

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/destination"
	"github.com/datazip-inc/olake-pager/drivers/batch"
	"github.com/datazip-inc/olake-pager/pkg/jdbc"
	"github.com/datazip-inc/olake-pager/types"
)

func setupShop(t *testing.T, n int) *sqlx.DB {
	t.Helper()
	db, err := sqlx.Connect("sqlite", "file::memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = db.Close() })

	db.MustExec(`CREATE TABLE item (id INTEGER PRIMARY KEY, name TEXT NOT NULL, updated TEXT NOT NULL)`)
	db.MustExec(`CREATE TABLE item_deleted (id INTEGER PRIMARY KEY)`)
	for i := 1; i <= n; i++ {
		db.MustExec(`INSERT INTO item (id, name, updated) VALUES (?, ?, ?)`, i, fmt.Sprintf("item-%d", i), "2025-01-01 00:00:00")
	}
	return db
}

func shopConfig() *batch.Config {
	return &batch.Config{
		Driver:     constants.SQLite,
		Path:       "file::memory:",
		MaxThreads: 1,
		Entities: []batch.Entity{{
			Name:           "item",
			BatchSize:      5,
			Query:          "SELECT * FROM item",
			DeltaQuery:     "SELECT id FROM item WHERE updated > '${dataimporter.last_index_time}'",
			DeletedPKQuery: "SELECT id FROM item_deleted",
			PK:             "id",
		}},
	}
}

func readLines(t *testing.T, path string) []map[string]any {
	t.Helper()
	file, err := os.Open(path)
	require.NoError(t, err)
	defer file.Close()

	var lines []map[string]any
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var line map[string]any
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &line))
		lines = append(lines, line)
	}
	require.NoError(t, scanner.Err())
	return lines
}

func TestSync_FullDumpSQLite(t *testing.T) {
	ctx := context.Background()
	db := setupShop(t, 23)
	output := filepath.Join(t.TempDir(), "out.jsonl")

	writer, err := destination.NewWriter(destination.JSONL, destination.Config{Path: output})
	require.NoError(t, err)

	importer := NewImporter(shopConfig(), CursorProcessor(jdbc.NewReader(db)), writer, nil, nil)
	stats, err := importer.Run(ctx, types.FullDump)
	require.NoError(t, err)
	require.NoError(t, writer.Close(ctx))

	require.Len(t, stats, 1)
	assert.Equal(t, int64(23), stats[0].Rows)
	// pages of 5, 5, 5, 5 and a short page of 3
	assert.Equal(t, int64(5), stats[0].Queries)

	lines := readLines(t, output)
	require.Len(t, lines, 23)
	for idx, line := range lines {
		assert.Equal(t, float64(idx+1), line["id"])
		assert.Equal(t, "item", line[constants.EntityID])
		assert.Equal(t, constants.OpRead, line[constants.OpType])
	}
}

func TestSync_DeltaDumpSQLite(t *testing.T) {
	ctx := context.Background()
	db := setupShop(t, 12)
	db.MustExec(`UPDATE item SET updated = '2025-02-01 00:00:00', name = 'changed' WHERE id IN (3, 4, 11)`)
	db.MustExec(`INSERT INTO item_deleted (id) VALUES (4), (20)`)

	state := types.NewState()
	state.SetLastIndexTime("item", "2025-01-15 00:00:00")
	writer := &recordingWriter{}

	importer := NewImporter(shopConfig(), CursorProcessor(jdbc.NewReader(db)), writer, state, nil)
	stats, err := importer.Run(ctx, types.DeltaDump)
	require.NoError(t, err)

	records := writer.byEntity("item")
	var deletes, upserts []any
	for _, r := range records {
		switch r.op {
		case constants.OpDelete:
			deletes = append(deletes, r.row["id"])
		case constants.OpUpsert:
			upserts = append(upserts, r.row["id"])
			assert.Equal(t, "changed", r.row["name"])
		}
	}
	assert.Equal(t, []any{int64(4), int64(20)}, deletes)
	assert.Equal(t, []any{int64(3), int64(11)}, upserts)

	assert.Equal(t, int64(3), stats[0].ModifiedKeys)
	assert.Equal(t, int64(2), stats[0].DeletedKeys)
	assert.NotEqual(t, "2025-01-15 00:00:00", state.GetLastIndexTime("item"))
}
