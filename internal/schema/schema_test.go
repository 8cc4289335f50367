package schema

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSchemaMatchesDDL(t *testing.T) {
	tables := GetSchema()
	require.Len(t, tables, 39)
	assert.Contains(t, tables, "bronze_process_list")
	assert.Contains(t, tables, "silver_network_dns")
	assert.Contains(t, tables, "gold_process_network")
	assert.Contains(t, tables, "gold_file_service")
	assert.Contains(t, tables, "gold_tech_chrono")
}

func TestGetSchemaNoDuplicates(t *testing.T) {
	seen := map[string]bool{}
	for _, table := range GetSchema() {
		assert.Falsef(t, seen[table], "table %s listed twice", table)
		seen[table] = true
	}
}

func TestColumnsExcludesAutoincrementAndPrimaryKeyLine(t *testing.T) {
	columns := Columns("bronze_process_list")
	assert.NotContains(t, columns, "_id")
	assert.Contains(t, columns, "pid")
	assert.Contains(t, columns, "brz_ingestion_duration")
}

func TestColumnsKeepsNonGeneratedPrimaryKey(t *testing.T) {
	columns := Columns("gold_dim_services")
	assert.Contains(t, columns, "name")
	assert.Contains(t, columns, "port")
	assert.NotContains(t, columns, "PRIMARY")
}

func TestColumnsUnknownTable(t *testing.T) {
	assert.Nil(t, Columns("does_not_exist"))
}
