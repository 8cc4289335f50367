package packet

import (
	"encoding/binary"
	"fmt"
	"strconv"
	"strings"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"

	"github.com/rstracer/rstracer/internal/model"
)

// decodeDataLink extracts the Ethernet frame header, the only DataLink
// variant rstracer currently populates (original_source/network/src/osi/data_link.rs
// only ever constructs Layer::Ethernet on a wired capture).
func decodeDataLink(pkt gopacket.Packet) (*model.DataLink, error) {
	eth, ok := pkt.LinkLayer().(*layers.Ethernet)
	if !ok || eth == nil {
		return &model.DataLink{Protocol: model.DataLinkUnknown}, nil
	}
	return &model.DataLink{
		Protocol: model.DataLinkEthernet,
		Ethernet: &model.Ethernet{
			Source:        eth.SrcMAC.String(),
			Destination:   eth.DstMAC.String(),
			EtherType:     uint16(eth.EthernetType),
			PayloadLength: uint32(len(eth.Payload)),
		},
	}, nil
}

// decodeNetwork picks whichever of ARP/IPv4/IPv6 gopacket decoded, mirroring
// Capture::parse's sequential dispatch in original_source/network/src/capture/mod.rs.
// A packet carrying no recognized network layer (e.g. a bare ARP probe on a
// non-Ethernet link) yields NetworkUnknown rather than an error — absence of
// a layer is not malformed input.
func decodeNetwork(pkt gopacket.Packet) (*model.Network, error) {
	if arpLayer := pkt.Layer(layers.LayerTypeARP); arpLayer != nil {
		a := arpLayer.(*layers.ARP)
		return &model.Network{
			Protocol: model.NetworkARP,
			ARP: &model.ARP{
				HardwareType:    uint16(a.AddrType),
				ProtocolType:    uint16(a.Protocol),
				HWAddrLen:       a.HwAddressSize,
				ProtoAddrLen:    a.ProtAddressSize,
				Operation:       a.Operation,
				SenderHWAddr:    hardwareAddrString(a.SourceHwAddress),
				SenderProtoAddr: ipAddrString(a.SourceProtAddress),
				TargetHWAddr:    hardwareAddrString(a.DstHwAddress),
				TargetProtoAddr: ipAddrString(a.DstProtAddress),
			},
		}, nil
	}

	if ip4Layer := pkt.Layer(layers.LayerTypeIPv4); ip4Layer != nil {
		ip := ip4Layer.(*layers.IPv4)
		return &model.Network{
			Protocol: model.NetworkIPv4,
			IP: &model.IP{
				Version:           uint8(ip.Version),
				HeaderLength:      ip.IHL,
				DSCP:              uint8(ip.TOS >> 2),
				ECN:               ip.TOS & 0x3,
				TotalLength:       ip.Length,
				Identification:    ip.Id,
				Flags:             uint8(ip.Flags),
				FragmentOffset:    ip.FragOffset,
				TTL:               ip.TTL,
				NextLevelProtocol: uint8(ip.Protocol),
				Checksum:          ip.Checksum,
				Source:            ip.SrcIP.String(),
				Destination:       ip.DstIP.String(),
			},
		}, nil
	}

	if ip6Layer := pkt.Layer(layers.LayerTypeIPv6); ip6Layer != nil {
		ip := ip6Layer.(*layers.IPv6)
		return &model.Network{
			Protocol: model.NetworkIPv6,
			IP: &model.IP{
				Version:       uint8(ip.Version),
				TrafficClass:  ip.TrafficClass,
				FlowLabel:     ip.FlowLabel,
				PayloadLength: ip.Length,
				NextHeader:    uint8(ip.NextHeader),
				HopLimit:      ip.HopLimit,
				Source:        ip.SrcIP.String(),
				Destination:   ip.DstIP.String(),
			},
		}, nil
	}

	if icmp4Layer := pkt.Layer(layers.LayerTypeICMPv4); icmp4Layer != nil {
		i := icmp4Layer.(*layers.ICMPv4)
		return &model.Network{
			Protocol: model.NetworkICMPv4,
			ICMP: &model.ICMP{
				Version:       4,
				Type:          i.TypeCode.Type(),
				Code:          i.TypeCode.Code(),
				Checksum:      i.Checksum,
				PayloadLength: uint32(len(i.Payload)),
			},
			Payload: i.Payload,
		}, nil
	}

	if icmp6Layer := pkt.Layer(layers.LayerTypeICMPv6); icmp6Layer != nil {
		i := icmp6Layer.(*layers.ICMPv6)
		return &model.Network{
			Protocol: model.NetworkICMPv6,
			ICMP: &model.ICMP{
				Version:       6,
				Type:          i.TypeCode.Type(),
				Code:          i.TypeCode.Code(),
				Checksum:      i.Checksum,
				PayloadLength: uint32(len(i.Payload)),
			},
			Payload: i.Payload,
		}, nil
	}

	return &model.Network{Protocol: model.NetworkUnknown}, nil
}

func hardwareAddrString(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = fmt.Sprintf("%02x", v)
	}
	return strings.Join(parts, ":")
}

func ipAddrString(b []byte) string {
	parts := make([]string, len(b))
	for i, v := range b {
		parts[i] = strconv.Itoa(int(v))
	}
	return strings.Join(parts, ".")
}

// decodeTransport mirrors decodeNetwork's sequential-dispatch shape over
// TCP/UDP/ICMP, the layer carrying a source/destination port pair (or, for
// ICMP, re-surfacing the network-layer ICMP struct — original_source/network/src/osi/transport.rs
// treats ICMP as valid at either layer depending on whether it rides
// directly atop IP or is itself the payload of a transport header).
func decodeTransport(pkt gopacket.Packet) (*model.Transport, error) {
	if tcpLayer := pkt.Layer(layers.LayerTypeTCP); tcpLayer != nil {
		t := tcpLayer.(*layers.TCP)
		return &model.Transport{
			Protocol: model.TransportTCP,
			TCP: &model.TCP{
				Source:          uint16(t.SrcPort),
				Destination:     uint16(t.DstPort),
				Sequence:        t.Seq,
				Acknowledgement: t.Ack,
				DataOffset:      t.DataOffset,
				Flags:           tcpFlags(t),
				Window:          t.Window,
				Checksum:        t.Checksum,
				UrgentPtr:       t.Urgent,
				Options:         tcpOptionsString(t.Options),
			},
			Payload: t.Payload,
		}, nil
	}

	if udpLayer := pkt.Layer(layers.LayerTypeUDP); udpLayer != nil {
		u := udpLayer.(*layers.UDP)
		return &model.Transport{
			Protocol: model.TransportUDP,
			UDP: &model.UDP{
				Source:      uint16(u.SrcPort),
				Destination: uint16(u.DstPort),
				Length:      u.Length,
				Checksum:    u.Checksum,
			},
			Payload: u.Payload,
		}, nil
	}

	if icmp4Layer := pkt.Layer(layers.LayerTypeICMPv4); icmp4Layer != nil {
		i := icmp4Layer.(*layers.ICMPv4)
		return &model.Transport{
			Protocol: model.TransportICMPv4,
			ICMPv4: &model.ICMP{
				Version:       4,
				Type:          i.TypeCode.Type(),
				Code:          i.TypeCode.Code(),
				Checksum:      i.Checksum,
				PayloadLength: uint32(len(i.Payload)),
			},
			Payload: i.Payload,
		}, nil
	}

	if icmp6Layer := pkt.Layer(layers.LayerTypeICMPv6); icmp6Layer != nil {
		i := icmp6Layer.(*layers.ICMPv6)
		return &model.Transport{
			Protocol: model.TransportICMPv6,
			ICMPv6: &model.ICMP{
				Version:       6,
				Type:          i.TypeCode.Type(),
				Code:          i.TypeCode.Code(),
				Checksum:      i.Checksum,
				PayloadLength: uint32(len(i.Payload)),
			},
			Payload: i.Payload,
		}, nil
	}

	return &model.Transport{Protocol: model.TransportUnknown}, nil
}

func tcpFlags(t *layers.TCP) uint8 {
	var f uint8
	if t.FIN {
		f |= 1 << 0
	}
	if t.SYN {
		f |= 1 << 1
	}
	if t.RST {
		f |= 1 << 2
	}
	if t.PSH {
		f |= 1 << 3
	}
	if t.ACK {
		f |= 1 << 4
	}
	if t.URG {
		f |= 1 << 5
	}
	if t.ECE {
		f |= 1 << 6
	}
	if t.CWR {
		f |= 1 << 7
	}
	return f
}

func tcpOptionsString(opts []layers.TCPOption) string {
	parts := make([]string, len(opts))
	for i, o := range opts {
		parts[i] = o.OptionType.String()
	}
	return strings.Join(parts, ",")
}

// decodeApplication recognizes DNS (UDP/53), TLS (TCP 443 with a payload
// whose first byte is a valid ContentType) and HTTP/1.x (TCP payload
// starting with a known verb or "HTTP/") by payload sniffing, the same
// port/prefix heuristic original_source/network/src/capture/application/mod.rs
// uses to choose a parser. Anything else, or too short to hold a header,
// yields ApplicationUnknown; a payload that is chosen for a parser and then
// fails to parse returns that parser's error.
func decodeApplication(pkt gopacket.Packet, t *model.Transport) (*model.Application, error) {
	if t == nil {
		return &model.Application{Protocol: model.ApplicationUnknown}, nil
	}

	switch t.Protocol {
	case model.TransportUDP:
		if t.UDP != nil && (t.UDP.Source == 53 || t.UDP.Destination == 53) && len(t.Payload) >= 12 {
			dns, err := parseDNS(t.Payload)
			if err != nil {
				return nil, fmt.Errorf("packet: dns: %w", err)
			}
			return &model.Application{Protocol: model.ApplicationDNS, DNS: dns}, nil
		}
	case model.TransportTCP:
		if len(t.Payload) == 0 {
			return &model.Application{Protocol: model.ApplicationUnknown}, nil
		}
		if t.TCP != nil && (t.TCP.Source == 443 || t.TCP.Destination == 443) && isTLSContentType(t.Payload[0]) {
			tls, err := parseTLS(t.Payload)
			if err != nil {
				return nil, fmt.Errorf("packet: tls: %w", err)
			}
			return &model.Application{Protocol: model.ApplicationTLS, TLS: tls}, nil
		}
		if looksLikeHTTP(t.Payload) {
			http, err := parseHTTP(t.Payload)
			if err != nil {
				return nil, fmt.Errorf("packet: http: %w", err)
			}
			return &model.Application{Protocol: model.ApplicationHTTP, HTTP: http}, nil
		}
	}

	return &model.Application{Protocol: model.ApplicationUnknown}, nil
}

// --- DNS -------------------------------------------------------------
//
// Ported from original_source/network/src/capture/application/dns.rs. The
// Rust parser wraps every call site in panic::catch_unwind to recover from
// slice-index-out-of-bounds panics on truncated packets; the REDESIGN FLAG
// in spec.md §9 replaces that with explicit bounds checks returning a typed
// error, so a malformed packet is a normal error value, never a panic.

type dnsCursor struct {
	buf []byte
	pos int
}

func (c *dnsCursor) need(n int) error {
	if c.pos+n > len(c.buf) {
		return fmt.Errorf("packet: dns: need %d bytes at offset %d, have %d", n, c.pos, len(c.buf))
	}
	return nil
}

func (c *dnsCursor) u8() (uint8, error) {
	if err := c.need(1); err != nil {
		return 0, err
	}
	v := c.buf[c.pos]
	c.pos++
	return v, nil
}

func (c *dnsCursor) u16() (uint16, error) {
	if err := c.need(2); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint16(c.buf[c.pos:])
	c.pos += 2
	return v, nil
}

func (c *dnsCursor) u32() (uint32, error) {
	if err := c.need(4); err != nil {
		return 0, err
	}
	v := binary.BigEndian.Uint32(c.buf[c.pos:])
	c.pos += 4
	return v, nil
}

func (c *dnsCursor) bytes(n int) ([]byte, error) {
	if err := c.need(n); err != nil {
		return nil, err
	}
	v := c.buf[c.pos : c.pos+n]
	c.pos += n
	return v, nil
}

// qname reads a length-prefixed label sequence, stopping at a zero length
// byte or a compression pointer (top two bits set), returning the raw bytes
// consumed including any terminator.
func (c *dnsCursor) qname() ([]byte, error) {
	start := c.pos
	for {
		length, err := c.u8()
		if err != nil {
			return nil, err
		}
		if length == 0 {
			break
		}
		if length&0xC0 == 0xC0 {
			if _, err := c.u8(); err != nil {
				return nil, err
			}
			break
		}
		if _, err := c.bytes(int(length)); err != nil {
			return nil, err
		}
	}
	return c.buf[start:c.pos], nil
}

func parseDNS(payload []byte) (*model.DNS, error) {
	c := &dnsCursor{buf: payload}

	id, err := c.u16()
	if err != nil {
		return nil, err
	}
	flags, err := c.u16()
	if err != nil {
		return nil, err
	}
	qdcount, err := c.u16()
	if err != nil {
		return nil, err
	}
	ancount, err := c.u16()
	if err != nil {
		return nil, err
	}
	nscount, err := c.u16()
	if err != nil {
		return nil, err
	}
	arcount, err := c.u16()
	if err != nil {
		return nil, err
	}

	header := model.DNSHeader{
		ID:                     id,
		IsResponse:             flags&0x8000 != 0,
		Opcode:                 uint8(flags >> 11 & 0xF),
		IsAuthoritative:        flags&0x0400 != 0,
		IsTruncated:            flags&0x0200 != 0,
		IsRecursionDesirable:   flags&0x0100 != 0,
		IsRecursionAvailable:   flags&0x0080 != 0,
		ZeroReserved:           flags&0x0040 != 0,
		IsAnswerAuthenticated:  flags&0x0020 != 0,
		IsNonAuthenticatedData: flags&0x0010 != 0,
		RCode:                  uint8(flags & 0xF),
		QueryCount:             qdcount,
		ResponseCount:          ancount,
		AuthorityRRCount:       nscount,
		AdditionalRRCount:      arcount,
	}

	dns := &model.DNS{Header: header}

	if qdcount > 0 {
		qname, err := c.qname()
		if err != nil {
			return nil, err
		}
		qtype, err := c.u16()
		if err != nil {
			return nil, err
		}
		qclass, err := c.u16()
		if err != nil {
			return nil, err
		}
		dns.Question = &model.DNSQuestion{
			QName:  qname,
			QType:  dnsTypeString(qtype),
			QClass: dnsClassString(qclass),
		}
	}

	sections := []struct {
		origin uint8
		count  uint16
	}{
		{0, ancount},
		{1, nscount},
		{2, arcount},
	}
	for _, section := range sections {
		for i := uint16(0); i < section.count; i++ {
			rec, err := parseDNSRecord(c, section.origin)
			if err != nil {
				// A truncated answer section is common on partial captures;
				// keep what parsed so far rather than discarding the header.
				return dns, nil
			}
			dns.Records = append(dns.Records, *rec)
		}
	}

	return dns, nil
}

func parseDNSRecord(c *dnsCursor, origin uint8) (*model.DNSRecord, error) {
	nameTag, err := c.u8()
	if err != nil {
		return nil, err
	}
	if nameTag&0xC0 == 0xC0 {
		if _, err := c.u8(); err != nil {
			return nil, err
		}
	} else {
		c.pos--
		if _, err := c.qname(); err != nil {
			return nil, err
		}
	}

	rtype, err := c.u16()
	if err != nil {
		return nil, err
	}
	rclass, err := c.u16()
	if err != nil {
		return nil, err
	}
	ttl, err := c.u32()
	if err != nil {
		return nil, err
	}
	rdlength, err := c.u16()
	if err != nil {
		return nil, err
	}
	rdata, err := c.bytes(int(rdlength))
	if err != nil {
		return nil, err
	}

	return &model.DNSRecord{
		Origin:   origin,
		NameTag:  nameTag,
		RType:    dnsTypeString(rtype),
		RClass:   dnsClassString(rclass),
		TTL:      ttl,
		RDLength: rdlength,
		RData:    rdata,
	}, nil
}

func dnsTypeString(t uint16) string {
	switch t {
	case 1:
		return "A"
	case 2:
		return "NS"
	case 5:
		return "CNAME"
	case 6:
		return "SOA"
	case 12:
		return "PTR"
	case 15:
		return "MX"
	case 16:
		return "TXT"
	case 28:
		return "AAAA"
	case 33:
		return "SRV"
	default:
		return fmt.Sprintf("TYPE%d", t)
	}
}

func dnsClassString(c uint16) string {
	if c == 1 {
		return "IN"
	}
	return fmt.Sprintf("CLASS%d", c)
}

// --- TLS ---------------------------------------------------------------
//
// Ported from original_source/network/src/capture/application/tls.rs: a TLS
// record's first 5 bytes are content_type(1) + version(2) + length(2),
// never more than a fixed header is inspected.

func isTLSContentType(b byte) bool {
	switch b {
	case 20, 21, 22, 23:
		return true
	default:
		return false
	}
}

func parseTLS(payload []byte) (*model.TLS, error) {
	if len(payload) < 5 {
		return nil, fmt.Errorf("packet: tls: short record header, got %d bytes", len(payload))
	}
	return &model.TLS{
		ContentType: payload[0],
		Version:     binary.BigEndian.Uint16(payload[1:3]),
		Length:      binary.BigEndian.Uint16(payload[3:5]),
	}, nil
}

// --- HTTP ----------------------------------------------------------------
//
// A minimal HTTP/1.x request/response line + header parser, ported from
// original_source/network/src/capture/application/http.rs. Only the start
// line and headers are parsed field-by-field; anything after the blank
// line separator is kept as an opaque body.

var httpMethods = []string{"GET", "POST", "PUT", "DELETE", "HEAD", "OPTIONS", "PATCH", "CONNECT", "TRACE"}

func looksLikeHTTP(payload []byte) bool {
	s := string(payload)
	if strings.HasPrefix(s, "HTTP/") {
		return true
	}
	for _, m := range httpMethods {
		if strings.HasPrefix(s, m+" ") {
			return true
		}
	}
	return false
}

func parseHTTP(payload []byte) (*model.HTTP, error) {
	text := string(payload)
	headEnd := strings.Index(text, "\r\n\r\n")
	if headEnd < 0 {
		return nil, fmt.Errorf("packet: http: missing header/body separator")
	}
	head := text[:headEnd]
	body := text[headEnd+4:]

	lines := strings.Split(head, "\r\n")
	if len(lines) == 0 || lines[0] == "" {
		return nil, fmt.Errorf("packet: http: empty start line")
	}

	h := &model.HTTP{Headers: map[string]string{}, Body: []byte(body)}

	if strings.HasPrefix(lines[0], "HTTP/") {
		fields := strings.SplitN(lines[0], " ", 3)
		if len(fields) < 3 {
			return nil, fmt.Errorf("packet: http: malformed status line %q", lines[0])
		}
		code, err := strconv.ParseUint(fields[1], 10, 16)
		if err != nil {
			return nil, fmt.Errorf("packet: http: status code: %w", err)
		}
		h.Kind = model.HTTPResponse
		h.Version = fields[0]
		h.StatusCode = uint16(code)
		h.StatusText = fields[2]
	} else {
		fields := strings.SplitN(lines[0], " ", 3)
		if len(fields) < 3 {
			return nil, fmt.Errorf("packet: http: malformed request line %q", lines[0])
		}
		h.Kind = model.HTTPRequest
		h.Method = fields[0]
		h.URI = fields[1]
		h.Version = fields[2]
	}

	for _, line := range lines[1:] {
		if line == "" {
			continue
		}
		idx := strings.Index(line, ":")
		if idx < 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		h.Headers[key] = value
	}

	return h, nil
}
