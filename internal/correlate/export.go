package correlate

import (
	"fmt"
	"strings"

	"github.com/rstracer/rstracer/internal/schema"
)

// tableExportRequest renders one COPY ... TO statement, ported verbatim
// from original_source/rstracer/src/pipeline/stage/export.rs's
// table_export_request.
func tableExportRequest(table, directory, format string) string {
	return fmt.Sprintf("COPY %s TO '%s/%s.%s' (FORMAT %s);", table, directory, table, format, format)
}

// ExportRequest renders one COPY statement per gold_* table, writing each
// to directory/<table>.<format>. format must already be validated by
// config.Config.Validate (parquet, csv, or json).
func ExportRequest(directory, format string) string {
	var lines []string
	for _, table := range schema.GetSchema() {
		if !strings.HasPrefix(table, "gold_") {
			continue
		}
		lines = append(lines, tableExportRequest(table, directory, format))
	}
	return strings.Join(lines, "\n")
}
