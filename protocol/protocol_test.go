package protocol

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "modernc.org/sqlite" // sqlite driver

	"github.com/datazip-inc/olake-pager/constants"
	"github.com/datazip-inc/olake-pager/types"
)

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "config.yaml", `
driver: postgres
host: db
username: postgres
password: from-file
database: shop
max_threads: 2
params:
  region: eu
entities:
  - name: item
    batchSize: 50
    query: SELECT * FROM item
    deltaQuery: SELECT id FROM item WHERE updated > '${dataimporter.last_index_time}'
    pk: id
`)
	t.Setenv("OLAKE_PAGER_PASSWORD", "from-env")

	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())

	assert.Equal(t, constants.Postgres, config.Driver)
	assert.Equal(t, "from-env", config.Password)
	assert.Equal(t, 2, config.MaxThreads)
	assert.Equal(t, 5432, config.Port)
	assert.Equal(t, "eu", config.Params["region"])
	require.Len(t, config.Entities, 1)
	assert.Equal(t, 50, config.Entities[0].BatchSize)
	assert.Equal(t, "id", config.Entities[0].PK)
	assert.Contains(t, config.Entities[0].DeltaQuery, "${dataimporter.last_index_time}")
}

func TestLoadConfig_Errors(t *testing.T) {
	_, err := LoadConfig("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--config")

	_, err = LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read config")
}

func TestSampleConfigLoads(t *testing.T) {
	data, err := SampleConfig()
	require.NoError(t, err)

	path := writeFile(t, t.TempDir(), "sample.yaml", string(data))
	config, err := LoadConfig(path)
	require.NoError(t, err)
	require.NoError(t, config.Validate())
	require.Len(t, config.Entities, 2)
	assert.Equal(t, 1000, config.Entities[0].BatchSize)
	assert.NotEmpty(t, config.Entities[1].DeltaImportQuery)
}

func setupDatabase(t *testing.T, dir string, n int) string {
	t.Helper()
	path := filepath.Join(dir, "shop.db")
	db, err := sqlx.Connect("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	db.MustExec(`CREATE TABLE item (id INTEGER PRIMARY KEY, name TEXT NOT NULL)`)
	for i := 1; i <= n; i++ {
		db.MustExec(`INSERT INTO item (id, name) VALUES (?, ?)`, i, "item")
	}
	return path
}

func TestCheckSource(t *testing.T) {
	dir := t.TempDir()
	dbPath := setupDatabase(t, dir, 1)

	valid := writeFile(t, dir, "valid.yaml", `
driver: sqlite
path: `+dbPath+`
entities:
  - name: item
    batchSize: 10
    query: SELECT * FROM item
`)
	status := checkSource(context.Background(), valid)
	assert.Equal(t, types.ConnectionSucceed, status.Status)
	assert.Empty(t, status.Message)

	invalid := writeFile(t, dir, "invalid.yaml", `
driver: sqlite
path: `+dbPath+`
entities:
  - name: item
    query: SELECT * FROM item
`)
	status = checkSource(context.Background(), invalid)
	assert.Equal(t, types.ConnectionFailed, status.Status)
	assert.Contains(t, status.Message, "batchSize")
}

func TestSyncCommand(t *testing.T) {
	dir := t.TempDir()
	dbPath := setupDatabase(t, dir, 12)
	configFile := writeFile(t, dir, "config.yaml", `
driver: sqlite
path: `+dbPath+`
entities:
  - name: item
    batchSize: 5
    query: SELECT * FROM item
    pk: id
`)
	statePath := filepath.Join(dir, "state.json")
	output := filepath.Join(dir, "out.jsonl")
	metricsFile := filepath.Join(dir, "pager.prom")

	RootCmd.SetArgs([]string{"sync", "--config", configFile, "--state", statePath, "--output", output, "--metrics-file", metricsFile})
	require.NoError(t, RootCmd.Execute())

	data, err := os.ReadFile(output)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	assert.Len(t, lines, 12)
	assert.Contains(t, lines[0], `"_op_type":"r"`)

	state, err := types.LoadState(statePath)
	require.NoError(t, err)
	assert.NotEmpty(t, state.GetLastIndexTime("item"))

	metrics, err := os.ReadFile(metricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), `olake_pager_queries_total{entity="item"} 3`)
	assert.Contains(t, string(metrics), `olake_pager_rows_total{entity="item",op="r"} 12`)
}

func TestSyncCommand_DryRunKeepsState(t *testing.T) {
	t.Cleanup(func() {
		dryRun = false
		deltaImport = false
	})

	dir := t.TempDir()
	dbPath := setupDatabase(t, dir, 3)
	configFile := writeFile(t, dir, "config.yaml", `
driver: sqlite
path: `+dbPath+`
entities:
  - name: item
    batchSize: 5
    query: SELECT * FROM item
    deltaQuery: SELECT id FROM item
    pk: id
`)
	statePath := filepath.Join(dir, "state.json")
	previous := types.NewState()
	previous.SetLastIndexTime("item", "2025-01-01 10:00:00")
	require.NoError(t, previous.Save(statePath))
	output := filepath.Join(dir, "out.jsonl")

	RootCmd.SetArgs([]string{"sync", "--config", configFile, "--state", statePath, "--output", output,
		"--metrics-file", filepath.Join(dir, "pager.prom"), "--delta", "--dry-run"})
	require.NoError(t, RootCmd.Execute())

	state, err := types.LoadState(statePath)
	require.NoError(t, err)
	assert.Equal(t, "2025-01-01 10:00:00", state.GetLastIndexTime("item"))

	_, err = os.Stat(output)
	assert.True(t, os.IsNotExist(err))
}
