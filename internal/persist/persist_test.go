package persist

import (
	"context"
	"testing"

	"github.com/rstracer/rstracer/internal/executor"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAttachesMemoryAndFileCatalogs(t *testing.T) {
	e, err := executor.Open(":memory:")
	require.NoError(t, err)
	defer e.Close()

	dir := t.TempDir()
	b, err := Open(context.Background(), e.DB(), dir+"/rstracer.db", rlog.New(rlog.Options{}))
	require.NoError(t, err)

	var count int
	require.NoError(t, e.DB().QueryRow(
		"SELECT COUNT(DISTINCT table_name) FROM memory.information_schema.tables;",
	).Scan(&count))
	assert.Greater(t, count, 0)

	require.NoError(t, b.Checkpoint(context.Background()))
}

func TestOpenWithEmptyPathSkipsFileCatalog(t *testing.T) {
	e, err := executor.Open(":memory:")
	require.NoError(t, err)
	defer e.Close()

	b, err := Open(context.Background(), e.DB(), "", rlog.New(rlog.Options{}))
	require.NoError(t, err)

	assert.NoError(t, b.FlushLayer(context.Background(), "bronze_"))
	assert.NoError(t, b.Checkpoint(context.Background()))
}

func TestQualifyPrefixesCreateStatements(t *testing.T) {
	ddl := "CREATE SEQUENCE IF NOT EXISTS s_serial;\nCREATE TABLE IF NOT EXISTS t (id INTEGER);"
	qualified := qualify(ddl, "memory")
	assert.Contains(t, qualified, "CREATE SEQUENCE IF NOT EXISTS memory.s_serial")
	assert.Contains(t, qualified, "CREATE TABLE IF NOT EXISTS memory.t")
}
