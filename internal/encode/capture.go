package encode

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rstracer/rstracer/internal/model"
)

func byteArrayLiteral(b []byte) string {
	if len(b) == 0 {
		return "[]::UTINYINT[]"
	}
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}
	return "[" + strings.Join(parts, ", ") + "]::UTINYINT[]"
}

func boolToSmallint(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Capture renders bronze_network_packet plus every populated layer table
// for one decoded packet, keyed by packet_id = c.ID, mirroring
// Capture::to_insert_sql dispatching across the layer tree.
func Capture(c model.Capture) string {
	var b strings.Builder

	fmt.Fprintf(&b,
		"INSERT INTO bronze_network_packet (_id, interface, length, created_at, inserted_at, brz_ingestion_duration) VALUES (%d, '%s', %d, %s, current_timestamp, age(current_timestamp, %s));",
		c.ID, escape(c.Interface), len(c.Packet), unixTimestamp(c.CreatedAt), unixTimestamp(c.CreatedAt),
	)

	if c.DataLink != nil && c.DataLink.Ethernet != nil {
		e := c.DataLink.Ethernet
		fmt.Fprintf(&b,
			"INSERT INTO bronze_network_ethernet (packet_id, source, destination, ether_type, payload_length, inserted_at) VALUES (%d, '%s', '%s', %d, %d, current_timestamp);",
			c.ID, escape(e.Source), escape(e.Destination), e.EtherType, e.PayloadLength,
		)
	}

	if c.Network != nil {
		encodeNetwork(&b, c.ID, c.Network)
	}

	if c.Transport != nil {
		encodeTransport(&b, c.ID, c.Transport)
	}

	if c.Application != nil {
		encodeApplication(&b, c.ID, c.Application)
	}

	return b.String()
}

func encodeNetwork(b *strings.Builder, packetID uint64, n *model.Network) {
	switch n.Protocol {
	case model.NetworkIPv4:
		ip := n.IP
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_ipv4 (packet_id, version, header_length, dscp, ecn, total_length, identification, flags, fragment_offset, ttl, next_level_protocol, checksum, source, destination, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, '%s', '%s', current_timestamp);",
			packetID, ip.Version, ip.HeaderLength, ip.DSCP, ip.ECN, ip.TotalLength, ip.Identification, ip.Flags, ip.FragmentOffset, ip.TTL, ip.NextLevelProtocol, ip.Checksum, escape(ip.Source), escape(ip.Destination),
		)
	case model.NetworkIPv6:
		ip := n.IP
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_ipv6 (packet_id, version, traffic_class, flow_label, payload_length, next_header, hop_limit, source, destination, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, %d, '%s', '%s', current_timestamp);",
			packetID, ip.Version, ip.TrafficClass, ip.FlowLabel, ip.PayloadLength, ip.NextHeader, ip.HopLimit, escape(ip.Source), escape(ip.Destination),
		)
	case model.NetworkARP:
		a := n.ARP
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_arp (packet_id, hardware_type, protocol_type, hw_addr_len, proto_addr_len, operation, sender_hw_addr, sender_proto_addr, target_hw_addr, target_proto_addr, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, '%s', '%s', '%s', '%s', current_timestamp);",
			packetID, a.HardwareType, a.ProtocolType, a.HWAddrLen, a.ProtoAddrLen, a.Operation, escape(a.SenderHWAddr), escape(a.SenderProtoAddr), escape(a.TargetHWAddr), escape(a.TargetProtoAddr),
		)
	case model.NetworkICMPv4, model.NetworkICMPv6:
		i := n.ICMP
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_icmp (packet_id, version, type, code, checksum, payload_length, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, current_timestamp);",
			packetID, i.Version, i.Type, i.Code, i.Checksum, i.PayloadLength,
		)
	}
}

func encodeTransport(b *strings.Builder, packetID uint64, t *model.Transport) {
	switch t.Protocol {
	case model.TransportTCP:
		tcp := t.TCP
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_tcp (packet_id, source, destination, sequence, acknowledgement, data_offset, reserved, flags, window, checksum, urgent_ptr, options, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, '%s', current_timestamp);",
			packetID, tcp.Source, tcp.Destination, tcp.Sequence, tcp.Acknowledgement, tcp.DataOffset, tcp.Reserved, tcp.Flags, tcp.Window, tcp.Checksum, tcp.UrgentPtr, escape(tcp.Options),
		)
	case model.TransportUDP:
		udp := t.UDP
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_udp (packet_id, source, destination, length, checksum, inserted_at) VALUES (%d, %d, %d, %d, %d, current_timestamp);",
			packetID, udp.Source, udp.Destination, udp.Length, udp.Checksum,
		)
	case model.TransportICMPv4:
		encodeICMPTransport(b, packetID, t.ICMPv4)
	case model.TransportICMPv6:
		encodeICMPTransport(b, packetID, t.ICMPv6)
	}
}

func encodeICMPTransport(b *strings.Builder, packetID uint64, i *model.ICMP) {
	fmt.Fprintf(b,
		"INSERT INTO bronze_network_icmp (packet_id, version, type, code, checksum, payload_length, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, current_timestamp);",
		packetID, i.Version, i.Type, i.Code, i.Checksum, i.PayloadLength,
	)
}

func encodeApplication(b *strings.Builder, packetID uint64, a *model.Application) {
	switch a.Protocol {
	case model.ApplicationDNS:
		encodeDNS(b, packetID, a.DNS)
	case model.ApplicationHTTP:
		encodeHTTP(b, packetID, a.HTTP)
	case model.ApplicationTLS:
		tls := a.TLS
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_tls (packet_id, content_type, version, length, inserted_at) VALUES (%d, %d, %d, %d, current_timestamp);",
			packetID, tls.ContentType, tls.Version, tls.Length,
		)
	}
}

func encodeDNS(b *strings.Builder, packetID uint64, dns *model.DNS) {
	h := dns.Header
	fmt.Fprintf(b,
		"INSERT INTO bronze_network_dns_header (packet_id, id, is_response, opcode, is_authoriative, is_truncated, is_recursion_desirable, is_recursion_available, zero_reserved, is_answer_authenticated, is_non_authenticated_data, rcode, query_count, response_count, authority_rr_count, additional_rr_count, inserted_at) VALUES (%d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, %d, current_timestamp);",
		packetID, h.ID, boolToSmallint(h.IsResponse), h.Opcode, boolToSmallint(h.IsAuthoritative), boolToSmallint(h.IsTruncated), boolToSmallint(h.IsRecursionDesirable), boolToSmallint(h.IsRecursionAvailable), boolToSmallint(h.ZeroReserved), boolToSmallint(h.IsAnswerAuthenticated), boolToSmallint(h.IsNonAuthenticatedData), h.RCode, h.QueryCount, h.ResponseCount, h.AuthorityRRCount, h.AdditionalRRCount,
	)

	if dns.Question != nil {
		q := dns.Question
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_dns_query (packet_id, qname, qtype, qclass, inserted_at) VALUES (%d, %s, '%s', '%s', current_timestamp);",
			packetID, byteArrayLiteral(q.QName), escape(q.QType), escape(q.QClass),
		)
	}

	for _, r := range dns.Records {
		fmt.Fprintf(b,
			"INSERT INTO bronze_network_dns_response (packet_id, origin, name_tag, rtype, rclass, ttl, rdlength, rdata, inserted_at) VALUES (%d, %d, %d, '%s', '%s', %d, %d, %s, current_timestamp);",
			packetID, r.Origin, r.NameTag, escape(r.RType), escape(r.RClass), r.TTL, r.RDLength, byteArrayLiteral(r.RData),
		)
	}
}

func encodeHTTP(b *strings.Builder, packetID uint64, h *model.HTTP) {
	var headerText strings.Builder
	for k, v := range h.Headers {
		fmt.Fprintf(&headerText, "%s: %s\r\n", k, v)
	}
	fmt.Fprintf(b,
		"INSERT INTO bronze_network_http (packet_id, type, method, uri, version, status_code, status_text, headers, body, inserted_at) VALUES (%d, '%s', '%s', '%s', '%s', %d, '%s', '%s', '%s', current_timestamp);",
		packetID, h.Kind, escape(h.Method), escape(h.URI), escape(h.Version), h.StatusCode, escape(h.StatusText), escape(headerText.String()), escape(string(h.Body)),
	)
}
