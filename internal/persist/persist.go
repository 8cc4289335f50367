// Package persist bridges rstracer's fast in-memory working database to
// the durable on-disk one, grounded on
// original_source/rstracer/src/pipeline/database.rs (a single active
// connection, `execute_request(sql, in_memory)`, `CHECKPOINT;` at
// shutdown) composed with stage/copy.rs's layer-at-a-time replication
// (`copy_layer_request`). The original's `in_memory` flag picks one of two
// module-level singleton connections to run every statement against; here
// the executor's single *sql.DB plays that role, with the on-disk database
// ATTACHed alongside an in-memory one under the same connection so
// "memory.table" and "file.table" qualified names (as gold.rs/copy.rs use
// them) both resolve.
package persist

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/rstracer/rstracer/internal/correlate"
	"github.com/rstracer/rstracer/internal/rlog"
	"github.com/rstracer/rstracer/internal/schema"
)

// Bridge owns the attach/detach lifecycle and periodic layer flush between
// the "memory" and "file" catalogs of one DuckDB connection.
type Bridge struct {
	db   *sql.DB
	path string
	log  rlog.Logger
}

// Open creates the full schema in db's default catalog — named "memory"
// by DuckDB for a ":memory:" connection, which is the only catalog name
// every correlate/schedule/encode SQL string assumes — and, when path is
// non-empty, additionally ATTACHes a file-backed catalog named "file" and
// creates the same schema there. An empty path leaves "file" unattached —
// the in-memory-only mode spec.md §6 names for ephemeral runs.
func Open(ctx context.Context, db *sql.DB, path string, log rlog.Logger) (*Bridge, error) {
	b := &Bridge{db: db, path: path, log: log}

	if err := b.createSchemaIn(ctx, "memory"); err != nil {
		return nil, err
	}

	if path != "" {
		if _, err := db.ExecContext(ctx, fmt.Sprintf("ATTACH '%s' AS file;", path)); err != nil {
			return nil, fmt.Errorf("persist: attach file %s: %w", path, err)
		}
		if err := b.createSchemaIn(ctx, "file"); err != nil {
			return nil, err
		}
	}

	return b, nil
}

func (b *Bridge) createSchemaIn(ctx context.Context, catalog string) error {
	ddl := qualify(schema.CreateSchemaRequest(), catalog)
	if _, err := b.db.ExecContext(ctx, ddl); err != nil {
		return fmt.Errorf("persist: create schema in %s: %w", catalog, err)
	}
	return nil
}

// qualify prefixes every "CREATE TABLE IF NOT EXISTS" and
// "CREATE SEQUENCE IF NOT EXISTS" target with catalog, since
// schema.CreateSchemaRequest renders unqualified DDL meant to run against
// whichever catalog is current.
func qualify(ddl, catalog string) string {
	replacer := strings.NewReplacer(
		"CREATE TABLE IF NOT EXISTS ", "CREATE TABLE IF NOT EXISTS "+catalog+".",
		"CREATE SEQUENCE IF NOT EXISTS ", "CREATE SEQUENCE IF NOT EXISTS "+catalog+".",
	)
	return replacer.Replace(ddl)
}

// FlushLayer replicates every table under layer from the memory catalog to
// the file catalog, overwriting whatever the file catalog already holds.
// It is a no-op when the bridge was opened without a file path.
func (b *Bridge) FlushLayer(ctx context.Context, layer string) error {
	if b.path == "" {
		return nil
	}
	stmt := correlate.CopyLayerRequest("memory", "file", layer, true)
	if stmt == "" {
		return nil
	}
	if _, err := b.db.ExecContext(ctx, stmt); err != nil {
		return fmt.Errorf("persist: flush layer %s: %w", layer, err)
	}
	b.log.Debug().Str("layer", layer).Msg("persist: layer flushed to disk")
	return nil
}

// Checkpoint forces DuckDB to write its WAL back into the file-backed
// catalog, mirroring close_connection's final `CHECKPOINT;` before shutdown.
func (b *Bridge) Checkpoint(ctx context.Context) error {
	if b.path == "" {
		return nil
	}
	if _, err := b.db.ExecContext(ctx, "CHECKPOINT file;"); err != nil {
		return fmt.Errorf("persist: checkpoint: %w", err)
	}
	return nil
}
