// Package schema holds the DuckDB DDL for rstracer's bronze/silver/gold
// medallion tables, ported from original_source/rstracer/src/pipeline/
// stage/schema.rs. GetSchema regexes the table list out of the DDL it just
// issued instead of hand-maintaining a second list, per spec.md §4.5.
package schema

import (
	"regexp"
	"strings"
)

const bronzeProcessList = `
CREATE SEQUENCE IF NOT EXISTS bronze_process_list_serial;
CREATE TABLE IF NOT EXISTS bronze_process_list (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_process_list_serial'),
    pid INTEGER,
    ppid INTEGER,
    uid INTEGER,
    lstart TIMESTAMP,
    pcpu FLOAT,
    pmem FLOAT,
    status TEXT,
    command TEXT,
    created_at TIMESTAMP,
    inserted_at TIMESTAMP,
    brz_ingestion_duration INTERVAL
);`

const bronzeOpenFiles = `
CREATE SEQUENCE IF NOT EXISTS bronze_open_files_serial;
CREATE TABLE IF NOT EXISTS bronze_open_files (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_open_files_serial'),
    command TEXT,
    pid INTEGER,
    uid INTEGER,
    fd TEXT,
    type TEXT,
    device TEXT,
    size BIGINT,
    node TEXT,
    name TEXT,
    created_at TIMESTAMP,
    inserted_at TIMESTAMP,
    brz_ingestion_duration INTERVAL
);`

const bronzeNetworkPacket = `
CREATE TABLE IF NOT EXISTS bronze_network_packet (
    _id UHUGEINT PRIMARY KEY,
    interface TEXT,
    length UINTEGER,
    created_at TIMESTAMP,
    inserted_at TIMESTAMP,
    brz_ingestion_duration INTERVAL
);`

const bronzeNetworkInterfaceAddress = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_interface_address_serial;
CREATE TABLE IF NOT EXISTS bronze_network_interface_address (
    _id INTEGER DEFAULT nextval('bronze_network_interface_address_serial'),
    interface TEXT,
    address TEXT,
    netmask TEXT,
    broadcast_address TEXT,
    destination_address TEXT,
    inserted_at TIMESTAMP,
    PRIMARY KEY (interface, address)
);`

const bronzeNetworkEthernet = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_ethernet_serial;
CREATE TABLE IF NOT EXISTS bronze_network_ethernet (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_ethernet_serial'),
    packet_id UHUGEINT,
    source TEXT,
    destination TEXT,
    ether_type USMALLINT,
    payload_length UINTEGER,
    inserted_at TIMESTAMP
);`

const bronzeNetworkIPv4 = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_ipv4_serial;
CREATE TABLE IF NOT EXISTS bronze_network_ipv4 (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_ipv4_serial'),
    packet_id UHUGEINT,
    version USMALLINT,
    header_length USMALLINT,
    dscp USMALLINT,
    ecn USMALLINT,
    total_length USMALLINT,
    identification USMALLINT,
    flags USMALLINT,
    fragment_offset USMALLINT,
    ttl USMALLINT,
    next_level_protocol USMALLINT,
    checksum USMALLINT,
    source TEXT,
    destination TEXT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkIPv6 = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_ipv6_serial;
CREATE TABLE IF NOT EXISTS bronze_network_ipv6 (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_ipv6_serial'),
    packet_id UHUGEINT,
    version USMALLINT,
    traffic_class USMALLINT,
    flow_label UINTEGER,
    payload_length USMALLINT,
    next_header USMALLINT,
    hop_limit USMALLINT,
    source TEXT,
    destination TEXT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkARP = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_arp_serial;
CREATE TABLE IF NOT EXISTS bronze_network_arp (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_arp_serial'),
    packet_id UHUGEINT,
    hardware_type USMALLINT,
    protocol_type USMALLINT,
    hw_addr_len USMALLINT,
    proto_addr_len USMALLINT,
    operation USMALLINT,
    sender_hw_addr TEXT,
    sender_proto_addr TEXT,
    target_hw_addr TEXT,
    target_proto_addr TEXT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkTCP = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_tcp_serial;
CREATE TABLE IF NOT EXISTS bronze_network_tcp (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_tcp_serial'),
    packet_id UHUGEINT,
    source USMALLINT,
    destination USMALLINT,
    sequence UINTEGER,
    acknowledgement UINTEGER,
    data_offset USMALLINT,
    reserved USMALLINT,
    flags USMALLINT,
    window USMALLINT,
    checksum USMALLINT,
    urgent_ptr USMALLINT,
    options TEXT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkUDP = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_udp_serial;
CREATE TABLE IF NOT EXISTS bronze_network_udp (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_udp_serial'),
    packet_id UHUGEINT,
    source USMALLINT,
    destination USMALLINT,
    length USMALLINT,
    checksum USMALLINT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkICMP = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_icmp_serial;
CREATE TABLE IF NOT EXISTS bronze_network_icmp (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_icmp_serial'),
    packet_id UHUGEINT,
    version USMALLINT,
    type USMALLINT,
    code USMALLINT,
    checksum USMALLINT,
    payload_length UINTEGER,
    inserted_at TIMESTAMP
);`

const bronzeNetworkTLS = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_tls_serial;
CREATE TABLE IF NOT EXISTS bronze_network_tls (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_tls_serial'),
    packet_id UHUGEINT,
    content_type USMALLINT,
    version USMALLINT,
    length USMALLINT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkDNSHeader = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_dns_header_serial;
CREATE TABLE IF NOT EXISTS bronze_network_dns_header (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_dns_header_serial'),
    packet_id UHUGEINT,
    id USMALLINT,
    is_response USMALLINT,
    opcode USMALLINT,
    is_authoriative USMALLINT,
    is_truncated USMALLINT,
    is_recursion_desirable USMALLINT,
    is_recursion_available USMALLINT,
    zero_reserved USMALLINT,
    is_answer_authenticated USMALLINT,
    is_non_authenticated_data USMALLINT,
    rcode USMALLINT,
    query_count USMALLINT,
    response_count USMALLINT,
    authority_rr_count USMALLINT,
    additional_rr_count USMALLINT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkDNSQuery = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_dns_query_serial;
CREATE TABLE IF NOT EXISTS bronze_network_dns_query (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_dns_query_serial'),
    packet_id UHUGEINT,
    qname UTINYINT[],
    qtype TEXT,
    qclass TEXT,
    inserted_at TIMESTAMP
);`

const bronzeNetworkDNSResponse = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_dns_response_serial;
CREATE TABLE IF NOT EXISTS bronze_network_dns_response (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_dns_response_serial'),
    packet_id UHUGEINT,
    origin USMALLINT,
    name_tag USMALLINT,
    rtype TEXT,
    rclass TEXT,
    ttl UINTEGER,
    rdlength USMALLINT,
    rdata UTINYINT[],
    inserted_at TIMESTAMP
);`

const bronzeNetworkHTTP = `
CREATE SEQUENCE IF NOT EXISTS bronze_network_http_serial;
CREATE TABLE IF NOT EXISTS bronze_network_http (
    _id INTEGER PRIMARY KEY DEFAULT nextval('bronze_network_http_serial'),
    packet_id UHUGEINT,
    type TEXT,
    method TEXT,
    uri TEXT,
    version TEXT,
    status_code USMALLINT,
    status_text TEXT,
    headers TEXT,
    body TEXT,
    inserted_at TIMESTAMP
);`

const silverProcessList = `
CREATE TABLE IF NOT EXISTS silver_process_list (
    _id INTEGER PRIMARY KEY,
    pid INTEGER,
    ppid INTEGER,
    uid INTEGER,
    lstart TIMESTAMP,
    pcpu FLOAT,
    pmem FLOAT,
    status TEXT,
    command TEXT,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    duration INTERVAL,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverOpenFiles = `
CREATE TABLE IF NOT EXISTS silver_open_files (
    _id INTEGER PRIMARY KEY,
    command TEXT,
    pid INTEGER,
    uid INTEGER,
    fd TEXT,
    type TEXT,
    device TEXT,
    size BIGINT,
    node TEXT,
    name TEXT,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    ip_source_address TEXT,
    ip_source_port TEXT,
    ip_destination_address TEXT,
    ip_destination_port TEXT,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkPacket = `
CREATE TABLE IF NOT EXISTS silver_network_packet (
    _id UHUGEINT PRIMARY KEY,
    interface TEXT,
    length UINTEGER,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    data_link TEXT,
    network TEXT,
    transport TEXT,
    application TEXT,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkInterfaceAddress = `
CREATE TABLE IF NOT EXISTS silver_network_interface_address (
    _id INTEGER PRIMARY KEY,
    interface TEXT,
    address INET,
    broadcast_address INET,
    destination_address INET,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkEthernet = `
CREATE TABLE IF NOT EXISTS silver_network_ethernet (
    _id UHUGEINT PRIMARY KEY,
    source TEXT,
    destination TEXT,
    ether_type USMALLINT,
    payload_length UINTEGER,
    packet_length UINTEGER,
    interface TEXT,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkDNS = `
CREATE TABLE IF NOT EXISTS silver_network_dns (
    _id TEXT PRIMARY KEY,
    packet_id UHUGEINT,
    id USMALLINT,
    is_response USMALLINT,
    opcode USMALLINT,
    is_authoriative USMALLINT,
    is_truncated USMALLINT,
    is_recursion_desirable USMALLINT,
    is_recursion_available USMALLINT,
    zero_reserved USMALLINT,
    is_answer_authenticated USMALLINT,
    is_non_authenticated_data USMALLINT,
    rcode USMALLINT,
    query_count USMALLINT,
    response_count USMALLINT,
    authority_rr_count USMALLINT,
    additional_rr_count USMALLINT,
    qname UTINYINT[],
    qtype TEXT,
    qclass TEXT,
    origin USMALLINT,
    name_tag USMALLINT,
    rtype TEXT,
    rclass TEXT,
    ttl UINTEGER,
    rdlength USMALLINT,
    rdata UTINYINT[],
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    question_parsed TEXT,
    response_parsed TEXT,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkIP = `
CREATE TABLE IF NOT EXISTS silver_network_ip (
    _id UHUGEINT PRIMARY KEY,
    version USMALLINT,
    length USMALLINT,
    hop_limit USMALLINT,
    next_protocol USMALLINT,
    source INET,
    destination INET,
    packet_length UINTEGER,
    interface TEXT,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkTransport = `
CREATE TABLE IF NOT EXISTS silver_network_transport (
    _id UHUGEINT PRIMARY KEY,
    protocol TEXT,
    source USMALLINT,
    destination USMALLINT,
    packet_length UINTEGER,
    interface TEXT,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const silverNetworkARP = `
CREATE TABLE IF NOT EXISTS silver_network_arp (
    _id UHUGEINT PRIMARY KEY,
    hardware_type USMALLINT,
    protocol_type USMALLINT,
    hw_addr_len USMALLINT,
    proto_addr_len USMALLINT,
    operation USMALLINT,
    sender_hw_addr TEXT,
    sender_proto_addr TEXT,
    target_hw_addr TEXT,
    target_proto_addr TEXT,
    packet_length UINTEGER,
    interface TEXT,
    created_at TIMESTAMP,
    brz_ingestion_duration INTERVAL,
    inserted_at TIMESTAMP,
    svr_ingestion_duration INTERVAL
);`

const goldDimServices = `
CREATE TABLE IF NOT EXISTS gold_dim_services (
    name TEXT,
    port USMALLINT,
    protocol TEXT,
    inserted_at TIMESTAMP,
    PRIMARY KEY (name, port, protocol)
);`

const goldDimHosts = `
CREATE TABLE IF NOT EXISTS gold_dim_hosts (
    name TEXT,
    address TEXT,
    inserted_at TIMESTAMP,
    PRIMARY KEY (name, address)
);`

const goldFileService = `
CREATE TABLE IF NOT EXISTS gold_file_service (
    name TEXT,
    port USMALLINT,
    protocol TEXT,
    inserted_at TIMESTAMP,
    PRIMARY KEY (name, port, protocol)
);`

const goldFileHost = `
CREATE TABLE IF NOT EXISTS gold_file_host (
    name TEXT,
    address TEXT,
    inserted_at TIMESTAMP,
    PRIMARY KEY (name, address)
);`

const goldFileUser = `
CREATE TABLE IF NOT EXISTS gold_file_user (
    name TEXT,
    uid USMALLINT,
    inserted_at TIMESTAMP,
    PRIMARY KEY (name, uid)
);`

const goldProcessList = `
CREATE TABLE IF NOT EXISTS gold_process_list (
    pid USMALLINT,
    ppid USMALLINT,
    uid USMALLINT,
    command TEXT,
    min_pcpu FLOAT,
    max_pcpu FLOAT,
    last_pcpu FLOAT,
    min_pmem FLOAT,
    max_pmem FLOAT,
    last_pmem FLOAT,
    silver_id BIGINT,
    started_at TIMESTAMP,
    inserted_at TIMESTAMP,
    PRIMARY KEY (pid, started_at)
);`

const goldOpenFilesRegular = `
CREATE TABLE IF NOT EXISTS gold_open_files_regular (
    pid USMALLINT,
    uid USMALLINT,
    fd TEXT,
    node TEXT,
    command TEXT,
    name TEXT,
    min_size BIGINT,
    max_size BIGINT,
    last_size BIGINT,
    silver_id INTEGER,
    started_at TIMESTAMP,
    inserted_at TIMESTAMP,
    PRIMARY KEY (pid, fd, node)
);`

const goldOpenFilesNetwork = `
CREATE TABLE IF NOT EXISTS gold_open_files_network (
    _id UBIGINT PRIMARY KEY,
    pid USMALLINT,
    uid USMALLINT,
    command TEXT,
    source_address INET,
    source_port USMALLINT,
    destination_address TEXT,
    destination_port USMALLINT,
    silver_id INTEGER,
    started_at TIMESTAMP,
    inserted_at TIMESTAMP
);`

const goldNetworkPacket = `
CREATE TABLE IF NOT EXISTS gold_network_packet (
    _id UHUGEINT PRIMARY KEY,
    interface TEXT,
    length UINTEGER,
    created_at TIMESTAMP,
    data_link TEXT,
    network TEXT,
    transport TEXT,
    application TEXT,
    inserted_at TIMESTAMP
);`

const goldNetworkIP = `
CREATE TABLE IF NOT EXISTS gold_network_ip (
    _id UHUGEINT PRIMARY KEY,
    ip_version UTINYINT,
    transport_protocol TEXT,
    source_address INET,
    source_port TEXT,
    destination_address INET,
    destination_port TEXT,
    created_at TIMESTAMP,
    inserted_at TIMESTAMP
);`

const goldProcessNetwork = `
CREATE TABLE IF NOT EXISTS gold_process_network (
    _id UBIGINT PRIMARY KEY,
    pid USMALLINT,
    uid USMALLINT,
    command TEXT,
    source_address INET,
    source_port USMALLINT,
    destination_address INET,
    destination_port USMALLINT,
    is_source BOOL,
    process_svr_id INTEGER,
    open_file_svr_id INTEGER,
    packet_id UHUGEINT,
    inserted_at TIMESTAMP
);`

const goldProcessCommand = `
CREATE TABLE IF NOT EXISTS gold_process_command (
    pid USMALLINT PRIMARY KEY,
    ppid USMALLINT,
    command TEXT,
    inserted_at TIMESTAMP
);`

const goldTechTableCount = `
CREATE TABLE IF NOT EXISTS gold_tech_table_count (
    _id USMALLINT PRIMARY KEY,
    name TEXT,
    min_count BIGINT,
    max_count BIGINT,
    last_count BIGINT,
    inserted_at TIMESTAMP
);`

const goldTechChrono = `
CREATE TABLE IF NOT EXISTS gold_tech_chrono (
    name TEXT PRIMARY KEY,
    brz_max_ingest FLOAT,
    brz_min_ingest FLOAT,
    svr_max_ingest FLOAT,
    svr_min_ingest FLOAT,
    max_ingest FLOAT,
    min_ingest FLOAT,
    inserted_at TIMESTAMP
);`

// ddlSections lists every CREATE statement, in dependency order, that
// CreateSchemaRequest concatenates. gold_file_{service,host,user} extend the
// original schema.rs DDL (SPEC_FULL.md §3 [NEW]): the Rust file.rs module
// TRUNCATEs/INSERTs into these three tables but original_source never
// defines them, so here they are given concrete DDL alongside gold_dim_*,
// preserving vacuum's gold_file_ exclusion and giving the file-dimension
// task somewhere real to write.
var ddlSections = []string{
	bronzeProcessList,
	bronzeOpenFiles,
	bronzeNetworkPacket,
	bronzeNetworkInterfaceAddress,
	bronzeNetworkEthernet,
	bronzeNetworkIPv4,
	bronzeNetworkIPv6,
	bronzeNetworkARP,
	bronzeNetworkTCP,
	bronzeNetworkUDP,
	bronzeNetworkICMP,
	bronzeNetworkTLS,
	bronzeNetworkDNSHeader,
	bronzeNetworkDNSQuery,
	bronzeNetworkDNSResponse,
	bronzeNetworkHTTP,
	silverProcessList,
	silverOpenFiles,
	silverNetworkPacket,
	silverNetworkInterfaceAddress,
	silverNetworkEthernet,
	silverNetworkDNS,
	silverNetworkIP,
	silverNetworkTransport,
	silverNetworkARP,
	goldDimServices,
	goldDimHosts,
	goldFileService,
	goldFileHost,
	goldFileUser,
	goldProcessList,
	goldOpenFilesRegular,
	goldOpenFilesNetwork,
	goldNetworkPacket,
	goldNetworkIP,
	goldProcessNetwork,
	goldProcessCommand,
	goldTechTableCount,
	goldTechChrono,
}

// CreateSchemaRequest returns the full DDL text for every rstracer table.
func CreateSchemaRequest() string {
	return strings.Join(ddlSections, "\n")
}

var tableNameRe = regexp.MustCompile(`CREATE TABLE IF NOT EXISTS\s+(\w+)\s*\(`)

// GetSchema extracts the authoritative table list from CreateSchemaRequest's
// own text, so callers (vacuum, copy, export) never hand-maintain a second
// list that can drift out of sync with the DDL.
func GetSchema() []string {
	matches := tableNameRe.FindAllStringSubmatch(CreateSchemaRequest(), -1)
	tables := make([]string, 0, len(matches))
	for _, m := range matches {
		tables = append(tables, m[1])
	}
	return tables
}

var tableBlockRe = regexp.MustCompile(`(?s)CREATE TABLE IF NOT EXISTS\s+(\w+)\s*\((.*?)\n\);`)

// Columns returns every non-autoincrement column name declared for table,
// in DDL order, the set copy's layer-replication walk selects BY NAME
// (original_source/rstracer/src/pipeline/stage/copy.rs filters out
// `is_autoincrement` columns before building its column list). A column
// counts as autoincrement when its DEFAULT is a nextval(...) sequence draw;
// everything else, including primary-key columns that don't self-generate,
// is copied across layers.
func Columns(table string) []string {
	for _, section := range ddlSections {
		blocks := tableBlockRe.FindAllStringSubmatch(section, -1)
		for _, block := range blocks {
			if block[1] != table {
				continue
			}
			return parseColumns(block[2])
		}
	}
	return nil
}

func parseColumns(body string) []string {
	var columns []string
	for _, line := range strings.Split(body, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimSuffix(line, ",")
		if line == "" {
			continue
		}
		if strings.HasPrefix(strings.ToUpper(line), "PRIMARY KEY") {
			continue
		}
		if strings.Contains(line, "DEFAULT nextval(") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		columns = append(columns, fields[0])
	}
	return columns
}
