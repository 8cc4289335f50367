package correlate

import (
	"fmt"
	"strings"

	"github.com/rstracer/rstracer/internal/schema"
)

// copyTableRequest renders the overwrite-or-append replication of one
// table between two attached databases, ported verbatim from
// original_source/rstracer/src/pipeline/stage/copy.rs's copy_table_request.
func copyTableRequest(source, target, table, columns string, overwrite bool) string {
	var b strings.Builder
	if overwrite {
		fmt.Fprintf(&b, "TRUNCATE %s.%s;", target, table)
	}
	fmt.Fprintf(&b, "INSERT INTO %s.%s (%s) SELECT %s FROM %s.%s;", target, table, columns, columns, source, table)
	return b.String()
}

// CopyLayerRequest replicates every table in the named layer from source to
// target, skipping auto-generated columns the same way copy_layer_request
// does by consulting schema.Columns instead of a live information_schema
// query (DuckDB's catalog is equivalent here since both databases share the
// same DDL).
func CopyLayerRequest(source, target, layer string, overwrite bool) string {
	var b strings.Builder
	for _, table := range schema.GetSchema() {
		if !strings.HasPrefix(table, layer) {
			continue
		}
		columns := schema.Columns(table)
		if len(columns) == 0 {
			continue
		}
		b.WriteString(copyTableRequest(source, target, table, strings.Join(columns, ","), overwrite))
	}
	return b.String()
}
