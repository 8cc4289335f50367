// Package encode turns adapter-produced rows into literal-interpolated
// bronze INSERT text, grounded on original_source/rstracer/src/pipeline/
// stage/bronze.rs's Bronze trait (to_sql()) and
// gravwell/gravwell/v3/ingest/processors/entryencoders.go's
// "batch of typed records -> one wire payload" shape.
package encode

import (
	"fmt"
	"strings"
	"time"

	"github.com/rstracer/rstracer/internal/model"
)

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}

func unixTimestamp(t time.Time) string {
	if t.IsZero() {
		return "NULL"
	}
	return fmt.Sprintf("to_timestamp(%d)", t.Unix())
}

// Process renders one process-list row as a bronze_process_list INSERT.
func Process(p model.Process) string {
	return fmt.Sprintf(
		"INSERT INTO bronze_process_list (pid, ppid, uid, lstart, pcpu, pmem, status, command, created_at, inserted_at, brz_ingestion_duration) VALUES (%d, %d, %d, %s, %f, %f, '%s', '%s', %s, current_timestamp, age(current_timestamp, %s));",
		p.PID, p.PPID, p.UID, unixTimestamp(p.LStart), p.PCPU, p.PMem, escape(p.Status), escape(p.Command), unixTimestamp(p.CreatedAt), unixTimestamp(p.CreatedAt),
	)
}

// Processes concatenates one INSERT per row, mirroring
// create_insert_batch_request's per-type batching.
func Processes(rows []model.Process) string {
	var b strings.Builder
	for _, p := range rows {
		b.WriteString(Process(p))
	}
	return b.String()
}

// OpenFile renders one open-file row as a bronze_open_files INSERT.
func OpenFile(f model.OpenFile) string {
	return fmt.Sprintf(
		"INSERT INTO bronze_open_files (command, pid, uid, fd, type, device, size, node, name, created_at, inserted_at, brz_ingestion_duration) VALUES ('%s', %d, %d, '%s', '%s', '%s', %d, '%s', '%s', %s, current_timestamp, age(current_timestamp, %s));",
		escape(f.Command), f.PID, f.UID, escape(f.FD), escape(f.Type), escape(f.Device), f.Size, escape(f.Node), escape(f.Name), unixTimestamp(f.CreatedAt), unixTimestamp(f.CreatedAt),
	)
}

// OpenFiles concatenates one INSERT per row.
func OpenFiles(rows []model.OpenFile) string {
	var b strings.Builder
	for _, f := range rows {
		b.WriteString(OpenFile(f))
	}
	return b.String()
}

// InterfaceAddress renders one local interface address as a
// bronze_network_interface_address upsert (INSERT OR REPLACE, since the
// same interface/address pair is resampled on a slow static-adapter tick).
func InterfaceAddress(a model.InterfaceAddress) string {
	return fmt.Sprintf(
		"INSERT OR REPLACE INTO bronze_network_interface_address (interface, address, netmask, broadcast_address, destination_address, inserted_at) VALUES ('%s', '%s', '%s', '%s', '%s', current_timestamp);",
		escape(a.Interface), escape(a.Address), escape(a.Netmask), escape(a.BroadcastAddress), escape(a.DestinationAddress),
	)
}

// InterfaceAddresses concatenates one upsert per row.
func InterfaceAddresses(rows []model.InterfaceAddress) string {
	var b strings.Builder
	for _, a := range rows {
		b.WriteString(InterfaceAddress(a))
	}
	return b.String()
}

// Host renders one /etc/hosts row as a gold_file_host upsert: static
// dimension data sourced from configuration, not from network observation,
// so it bypasses bronze entirely (there is no bronze_network_host table in
// the schema; see file.rs's insert_host_request in original_source).
func Host(h model.Host) string {
	return fmt.Sprintf("INSERT OR REPLACE INTO gold_file_host (name, address, inserted_at) VALUES ('%s', '%s', current_timestamp);", escape(h.Name), escape(h.Address))
}

// Service renders one /etc/services row as a gold_file_service upsert.
func Service(s model.Service) string {
	return fmt.Sprintf("INSERT OR REPLACE INTO gold_file_service (name, port, protocol, inserted_at) VALUES ('%s', %d, '%s', current_timestamp);", escape(s.Name), s.Port, escape(s.Protocol))
}

// User renders one /etc/passwd row as a gold_file_user upsert.
func User(u model.User) string {
	return fmt.Sprintf("INSERT OR REPLACE INTO gold_file_user (name, uid, inserted_at) VALUES ('%s', %d, current_timestamp);", escape(u.Name), u.UID)
}
