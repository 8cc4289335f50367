// Package correlate renders the SQL that moves rows between medallion
// layers — silver normalization, gold fact/dimension upserts, dimension and
// file-dimension refreshes, vacuum retention deletes, and cross-database
// layer copies — ported from original_source/rstracer/src/pipeline/stage/
// {silver,gold,dimension,file,vacuum,copy,export}.rs.
package correlate

import "fmt"

// silverProcessList mirrors SILVER_INGEST_PROCESS_LIST: lstart is shifted
// from the OS-local time ps(1) reports to UTC by the caller's UTC offset,
// the same string-substitution trick the original performs with
// `Local::now().offset().local_minus_utc()`.
const silverProcessList = `
INSERT OR IGNORE INTO memory.silver_process_list BY NAME
(
SELECT
    brz._id,
    brz.pid,
    brz.ppid,
    brz.uid,
    brz.lstart - INTERVAL '%d seconds' AS lstart,
    brz.pcpu,
    brz.pmem,
    brz.status,
    brz.command,
    brz.created_at,
    brz.brz_ingestion_duration,
    age(brz.created_at, brz.lstart - INTERVAL '%d seconds') AS duration,
    current_timestamp AS inserted_at,
    age(current_timestamp, brz.created_at) AS svr_ingestion_duration
FROM bronze_process_list brz
);`

// silverOpenFiles splits the bronze lsof "name" column (on "->", then ":")
// into IP-socket address/port fields when type is IPv4/IPv6 and leaves them NULL for
// regular files, matching gold.rs's later WHERE UPPER(type) IN ('IPV4','IPV6')
// split of the same silver table.
const silverOpenFiles = `
INSERT OR IGNORE INTO memory.silver_open_files BY NAME
(
SELECT
    brz._id,
    brz.command,
    brz.pid,
    brz.uid,
    brz.fd,
    brz.type,
    brz.device,
    brz.size,
    brz.node,
    brz.name,
    brz.created_at,
    brz.brz_ingestion_duration,
    CASE WHEN UPPER(brz.type) IN ('IPV4', 'IPV6')
        THEN split_part(split_part(brz.name, '->', 1), ':', 1)
        ELSE NULL
    END AS ip_source_address,
    CASE WHEN UPPER(brz.type) IN ('IPV4', 'IPV6')
        THEN split_part(split_part(brz.name, '->', 1), ':', 2)
        ELSE NULL
    END AS ip_source_port,
    CASE WHEN UPPER(brz.type) IN ('IPV4', 'IPV6')
        THEN split_part(split_part(brz.name, '->', 2), ':', 1)
        ELSE NULL
    END AS ip_destination_address,
    CASE WHEN UPPER(brz.type) IN ('IPV4', 'IPV6')
        THEN split_part(split_part(brz.name, '->', 2), ':', 2)
        ELSE NULL
    END AS ip_destination_port,
    current_timestamp AS inserted_at,
    age(current_timestamp, brz.created_at) AS svr_ingestion_duration
FROM bronze_open_files brz
);`

const silverNetworkPacket = `
INSERT OR IGNORE INTO memory.silver_network_packet BY NAME
(
SELECT
    brz._id,
    brz.interface,
    brz.length,
    brz.created_at,
    brz.brz_ingestion_duration,
    NULL AS data_link,
    NULL AS network,
    NULL AS transport,
    NULL AS application,
    current_timestamp AS inserted_at,
    age(current_timestamp, brz.created_at) AS svr_ingestion_duration
FROM bronze_network_packet brz
);`

const silverNetworkInterfaceAddress = `
INSERT OR IGNORE INTO memory.silver_network_interface_address BY NAME
(
SELECT
    brz._id,
    brz.interface,
    brz.address::INET AS address,
    brz.broadcast_address::INET AS broadcast_address,
    brz.destination_address::INET AS destination_address,
    current_timestamp AS inserted_at,
    age(current_timestamp, brz.inserted_at) AS svr_ingestion_duration
FROM bronze_network_interface_address brz
);`

const silverNetworkEthernet = `
INSERT OR IGNORE INTO memory.silver_network_ethernet BY NAME
(
SELECT
    eth._id,
    eth.source,
    eth.destination,
    eth.ether_type,
    eth.payload_length,
    pkt.length AS packet_length,
    pkt.interface,
    pkt.created_at,
    pkt.brz_ingestion_duration,
    current_timestamp AS inserted_at,
    age(current_timestamp, pkt.created_at) AS svr_ingestion_duration
FROM bronze_network_ethernet eth
INNER JOIN bronze_network_packet pkt ON pkt._id = eth.packet_id
);`

const silverNetworkDNS = `
INSERT OR IGNORE INTO memory.silver_network_dns BY NAME
(
SELECT
    CONCAT(hdr.packet_id, '-', COALESCE(res.origin, 255), '-', COALESCE(res.name_tag, 0)) AS _id,
    hdr.packet_id,
    hdr.id,
    hdr.is_response,
    hdr.opcode,
    hdr.is_authoriative,
    hdr.is_truncated,
    hdr.is_recursion_desirable,
    hdr.is_recursion_available,
    hdr.zero_reserved,
    hdr.is_answer_authenticated,
    hdr.is_non_authenticated_data,
    hdr.rcode,
    hdr.query_count,
    hdr.response_count,
    hdr.authority_rr_count,
    hdr.additional_rr_count,
    qry.qname,
    qry.qtype,
    qry.qclass,
    res.origin,
    res.name_tag,
    res.rtype,
    res.rclass,
    res.ttl,
    res.rdlength,
    res.rdata,
    pkt.created_at,
    pkt.brz_ingestion_duration,
    array_to_string(list_transform(qry.qname, x -> chr(x)), '') AS question_parsed,
    array_to_string(list_transform(res.rdata, x -> chr(x)), '') AS response_parsed,
    current_timestamp AS inserted_at,
    age(current_timestamp, pkt.created_at) AS svr_ingestion_duration
FROM bronze_network_dns_header hdr
INNER JOIN bronze_network_packet pkt ON pkt._id = hdr.packet_id
LEFT JOIN bronze_network_dns_query qry ON qry.packet_id = hdr.packet_id
LEFT JOIN bronze_network_dns_response res ON res.packet_id = hdr.packet_id
);`

const silverNetworkIP = `
INSERT OR IGNORE INTO memory.silver_network_ip BY NAME
(
SELECT
    pkt._id,
    COALESCE(v4.version, v6.version) AS version,
    COALESCE(v4.total_length, v6.payload_length) AS length,
    COALESCE(v4.ttl, v6.hop_limit) AS hop_limit,
    COALESCE(v4.next_level_protocol, v6.next_header) AS next_protocol,
    COALESCE(v4.source, v6.source)::INET AS source,
    COALESCE(v4.destination, v6.destination)::INET AS destination,
    pkt.length AS packet_length,
    pkt.interface,
    pkt.created_at,
    pkt.brz_ingestion_duration,
    current_timestamp AS inserted_at,
    age(current_timestamp, pkt.created_at) AS svr_ingestion_duration
FROM bronze_network_packet pkt
LEFT JOIN bronze_network_ipv4 v4 ON v4.packet_id = pkt._id
LEFT JOIN bronze_network_ipv6 v6 ON v6.packet_id = pkt._id
WHERE v4._id IS NOT NULL OR v6._id IS NOT NULL
);`

const silverNetworkTransport = `
INSERT OR IGNORE INTO memory.silver_network_transport BY NAME
(
SELECT
    pkt._id,
    CASE
        WHEN tcp._id IS NOT NULL THEN 'tcp'
        WHEN udp._id IS NOT NULL THEN 'udp'
        WHEN icmp._id IS NOT NULL THEN 'icmp'
        ELSE NULL
    END AS protocol,
    COALESCE(tcp.source, udp.source) AS source,
    COALESCE(tcp.destination, udp.destination) AS destination,
    pkt.length AS packet_length,
    pkt.interface,
    pkt.created_at,
    pkt.brz_ingestion_duration,
    current_timestamp AS inserted_at,
    age(current_timestamp, pkt.created_at) AS svr_ingestion_duration
FROM bronze_network_packet pkt
LEFT JOIN bronze_network_tcp tcp ON tcp.packet_id = pkt._id
LEFT JOIN bronze_network_udp udp ON udp.packet_id = pkt._id
LEFT JOIN bronze_network_icmp icmp ON icmp.packet_id = pkt._id
WHERE tcp._id IS NOT NULL OR udp._id IS NOT NULL OR icmp._id IS NOT NULL
);`

const silverNetworkARP = `
INSERT OR IGNORE INTO memory.silver_network_arp BY NAME
(
SELECT
    arp._id,
    arp.hardware_type,
    arp.protocol_type,
    arp.hw_addr_len,
    arp.proto_addr_len,
    arp.operation,
    arp.sender_hw_addr,
    arp.sender_proto_addr,
    arp.target_hw_addr,
    arp.target_proto_addr,
    pkt.length AS packet_length,
    pkt.interface,
    pkt.created_at,
    pkt.brz_ingestion_duration,
    current_timestamp AS inserted_at,
    age(current_timestamp, pkt.created_at) AS svr_ingestion_duration
FROM bronze_network_arp arp
INNER JOIN bronze_network_packet pkt ON pkt._id = arp.packet_id
);`

// SilverRequest renders every bronze-to-silver transform, parameterized by
// localMinusUTCSeconds — the process-list lstart timezone correction the
// original recomputes on every call via Local::now().offset().local_minus_utc().
func SilverRequest(localMinusUTCSeconds int) string {
	return fmt.Sprintf(silverProcessList, localMinusUTCSeconds, localMinusUTCSeconds) +
		silverOpenFiles +
		silverNetworkPacket +
		silverNetworkInterfaceAddress +
		silverNetworkEthernet +
		silverNetworkDNS +
		silverNetworkIP +
		silverNetworkTransport +
		silverNetworkARP
}
