package correlate

import (
	"fmt"
	"strings"

	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/schema"
)

// VacuumRequest renders one DELETE per table whose layer prefix has a
// nonzero retention window, skipping gold_file_* (static reference data,
// never aged out) and any _tech_ table (running aggregates, not raw
// events), ported from original_source/rstracer/src/pipeline/stage/
// vacuum.rs's request().
func VacuumRequest(cfg config.Vacuum) string {
	var b strings.Builder
	for _, table := range schema.GetSchema() {
		if strings.Contains(table, "gold_file_") || strings.Contains(table, "_tech_") {
			continue
		}
		for _, layer := range cfg.List() {
			if layer.Seconds == 0 {
				continue
			}
			if strings.HasPrefix(table, layer.Layer) {
				fmt.Fprintf(&b, "DELETE FROM %s WHERE inserted_at + '%d seconds' < CURRENT_TIMESTAMP;", table, layer.Seconds)
			}
		}
	}
	return b.String()
}
