package correlate

import (
	"strings"
	"testing"

	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/model"
	"github.com/stretchr/testify/assert"
)

func TestSilverRequestSubstitutesOffset(t *testing.T) {
	sql := SilverRequest(-14400)
	assert.Contains(t, sql, "INTERVAL '-14400 seconds'")
	assert.Contains(t, sql, "INSERT OR IGNORE INTO memory.silver_process_list BY NAME")
	assert.Contains(t, sql, "silver_network_arp")
}

func TestGoldRequestContainsAllTransforms(t *testing.T) {
	sql := GoldRequest()
	for _, want := range []string{
		"gold_process_list", "gold_open_files_regular", "gold_open_files_network",
		"gold_network_packet", "gold_network_ip", "gold_process_network",
		"gold_process_command", "gold_tech_table_count", "gold_tech_chrono",
	} {
		assert.Contains(t, sql, want)
	}
	assert.Equal(t, len(chronoSilverTables), strings.Count(sql, "INSERT INTO memory.gold_tech_chrono"))
}

func TestDimensionRequestEscapesAndFormats(t *testing.T) {
	sql := DimensionRequest(
		[]model.Service{{Name: "o'reilly", Port: 22, Protocol: "tcp"}},
		[]model.Host{{Name: "localhost", Address: "127.0.0.1"}},
	)
	assert.Contains(t, sql, "TRUNCATE memory.gold_dim_services")
	assert.Contains(t, sql, "('o''reilly', 22, 'tcp', CURRENT_TIMESTAMP)")
	assert.Contains(t, sql, "TRUNCATE memory.gold_dim_hosts")
	assert.Contains(t, sql, "('localhost', '127.0.0.1', CURRENT_TIMESTAMP)")
}

func TestFileRequestQuotesUID(t *testing.T) {
	sql := FileRequest(nil, nil, []model.User{{Name: "root", UID: 0}})
	assert.Contains(t, sql, "TRUNCATE gold_file_user")
	assert.Contains(t, sql, "('root', '0', CURRENT_TIMESTAMP)")
}

func TestVacuumRequestSkipsGoldFileAndTech(t *testing.T) {
	sql := VacuumRequest(config.Vacuum{Bronze: 15, Silver: 30, Gold: 1000})
	assert.NotContains(t, sql, "gold_file_")
	assert.NotContains(t, sql, "_tech_")
	assert.Contains(t, sql, "DELETE FROM bronze_process_list WHERE inserted_at + '15 seconds' < CURRENT_TIMESTAMP")
	assert.Contains(t, sql, "DELETE FROM silver_process_list WHERE inserted_at + '30 seconds' < CURRENT_TIMESTAMP")
}

func TestVacuumRequestZeroMeansPermanent(t *testing.T) {
	sql := VacuumRequest(config.Vacuum{Bronze: 15, Silver: 30, Gold: 0})
	assert.NotContains(t, sql, "gold_")
}

func TestCopyLayerRequestOverwriteTruncatesFirst(t *testing.T) {
	sql := CopyLayerRequest("memory", "file", "silver_process_list", true)
	assert.Contains(t, sql, "TRUNCATE file.silver_process_list;")
	assert.Contains(t, sql, "INSERT INTO file.silver_process_list")
	assert.Contains(t, sql, "SELECT")
	assert.Contains(t, sql, "FROM memory.silver_process_list;")
	assert.Contains(t, sql, "(_id,pid,")
}

func TestCopyLayerRequestWithoutOverwriteSkipsTruncate(t *testing.T) {
	sql := CopyLayerRequest("memory", "file", "bronze_process_list", false)
	assert.NotContains(t, sql, "TRUNCATE")
	assert.Contains(t, sql, "INSERT INTO file.bronze_process_list")
}

func TestExportRequestOnlyGoldTables(t *testing.T) {
	sql := ExportRequest("/exports", "parquet")
	assert.Contains(t, sql, "COPY gold_process_list TO '/exports/gold_process_list.parquet' (FORMAT parquet);")
	assert.NotContains(t, sql, "COPY bronze_")
	assert.NotContains(t, sql, "COPY silver_")
}
