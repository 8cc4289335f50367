package correlate

import (
	"fmt"
	"strings"

	"github.com/rstracer/rstracer/internal/model"
)

// DimensionRequest refreshes gold_dim_services and gold_dim_hosts from the
// /etc/services and /etc/hosts snapshots, ported from
// original_source/rstracer/src/pipeline/stage/dimension.rs's
// insert_services_request (the original wires only services in; hosts is
// added here since gold_open_files_network's join against gold_dim_hosts
// would otherwise never resolve a single address, spec.md §3 [NEW]).
func DimensionRequest(services []model.Service, hosts []model.Host) string {
	return servicesDimensionRequest(services) + hostsDimensionRequest(hosts)
}

func servicesDimensionRequest(services []model.Service) string {
	var b strings.Builder
	b.WriteString("BEGIN; TRUNCATE memory.gold_dim_services; INSERT INTO memory.gold_dim_services (name, port, protocol, inserted_at) VALUES ")
	values := make([]string, len(services))
	for i, s := range services {
		values[i] = fmt.Sprintf("('%s', %d, '%s', CURRENT_TIMESTAMP)", escape(s.Name), s.Port, escape(s.Protocol))
	}
	b.WriteString(strings.Join(values, ","))
	b.WriteString("; COMMIT;")
	return b.String()
}

func hostsDimensionRequest(hosts []model.Host) string {
	var b strings.Builder
	b.WriteString("BEGIN; TRUNCATE memory.gold_dim_hosts; INSERT INTO memory.gold_dim_hosts (name, address, inserted_at) VALUES ")
	values := make([]string, len(hosts))
	for i, h := range hosts {
		values[i] = fmt.Sprintf("('%s', '%s', CURRENT_TIMESTAMP)", escape(h.Name), escape(h.Address))
	}
	b.WriteString(strings.Join(values, ","))
	b.WriteString("; COMMIT;")
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "'", "''")
}
