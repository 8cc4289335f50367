package model

import "time"

// Layer names one of the four OSI groupings rstracer decodes.
type Layer string

const (
	LayerDataLink    Layer = "data_link"
	LayerNetwork     Layer = "network"
	LayerTransport   Layer = "transport"
	LayerApplication Layer = "application"
)

// DataLinkProtocol discriminates DataLink.Payload.
type DataLinkProtocol string

const (
	DataLinkEthernet DataLinkProtocol = "ethernet"
	DataLinkUnknown  DataLinkProtocol = "unknown"
)

// Ethernet is the one DataLink payload variant currently decoded.
type Ethernet struct {
	Source        string
	Destination   string
	EtherType     uint16
	PayloadLength uint32
}

// DataLink is a discriminated union: Protocol names which of the payload
// fields is populated. Only one is ever non-nil, enforced by construction
// instead of by an `Option<T>`-per-field runtime invariant.
type DataLink struct {
	Protocol DataLinkProtocol
	Ethernet *Ethernet
}

// NetworkProtocol discriminates Network's payload.
type NetworkProtocol string

const (
	NetworkARP     NetworkProtocol = "arp"
	NetworkICMPv4  NetworkProtocol = "icmpv4"
	NetworkICMPv6  NetworkProtocol = "icmpv6"
	NetworkIPv4    NetworkProtocol = "ipv4"
	NetworkIPv6    NetworkProtocol = "ipv6"
	NetworkUnknown NetworkProtocol = "unknown"
)

// IP is the common shape shared by the IPv4 and IPv6 variants, already
// normalized to a single set of fields silver_network_ip expects.
type IP struct {
	Version            uint8
	HeaderLength       uint8
	DSCP               uint8
	ECN                uint8
	TotalLength        uint16
	Identification     uint16
	Flags              uint8
	FragmentOffset     uint16
	TTL                uint8
	NextLevelProtocol  uint8
	Checksum           uint16
	Source             string
	Destination        string
	TrafficClass       uint8
	FlowLabel          uint32
	PayloadLength      uint16
	NextHeader         uint8
	HopLimit           uint8
}

// ARP is the decoded ARP payload.
type ARP struct {
	HardwareType     uint16
	ProtocolType     uint16
	HWAddrLen        uint8
	ProtoAddrLen     uint8
	Operation        uint16
	SenderHWAddr     string
	SenderProtoAddr  string
	TargetHWAddr     string
	TargetProtoAddr  string
}

// ICMP is the decoded ICMP (v4 or v6) payload.
type ICMP struct {
	Version       uint8
	Type          uint8
	Code          uint8
	Checksum      uint16
	PayloadLength uint32
}

// Network is a discriminated union over ARP/ICMP/IP payloads.
type Network struct {
	Protocol NetworkProtocol
	IP       *IP
	ARP      *ARP
	ICMP     *ICMP
	Payload  []byte
}

// TransportProtocol discriminates Transport's payload.
type TransportProtocol string

const (
	TransportTCP     TransportProtocol = "tcp"
	TransportUDP     TransportProtocol = "udp"
	TransportICMPv4  TransportProtocol = "icmpv4"
	TransportICMPv6  TransportProtocol = "icmpv6"
	TransportUnknown TransportProtocol = "unknown"
)

// TCP is the decoded TCP header.
type TCP struct {
	Source          uint16
	Destination     uint16
	Sequence        uint32
	Acknowledgement uint32
	DataOffset      uint8
	Reserved        uint8
	Flags           uint8
	Window          uint16
	Checksum        uint16
	UrgentPtr       uint16
	Options         string
}

// UDP is the decoded UDP header.
type UDP struct {
	Source      uint16
	Destination uint16
	Length      uint16
	Checksum    uint16
}

// Transport is a discriminated union over TCP/UDP/ICMP payloads.
type Transport struct {
	Protocol TransportProtocol
	TCP      *TCP
	UDP      *UDP
	ICMPv4   *ICMP
	ICMPv6   *ICMP
	Payload  []byte
}

// ApplicationProtocol discriminates Application's payload.
type ApplicationProtocol string

const (
	ApplicationDNS     ApplicationProtocol = "dns"
	ApplicationHTTP    ApplicationProtocol = "http"
	ApplicationTLS     ApplicationProtocol = "tls"
	ApplicationUnknown ApplicationProtocol = "unknown"
)

// DNSHeader is the fixed 12-byte DNS header, field-exploded the way
// bronze_network_dns_header stores it.
type DNSHeader struct {
	ID                     uint16
	IsResponse             bool
	Opcode                 uint8
	IsAuthoritative        bool
	IsTruncated            bool
	IsRecursionDesirable   bool
	IsRecursionAvailable   bool
	ZeroReserved           bool
	IsAnswerAuthenticated  bool
	IsNonAuthenticatedData bool
	RCode                  uint8
	QueryCount             uint16
	ResponseCount          uint16
	AuthorityRRCount       uint16
	AdditionalRRCount      uint16
}

// DNSQuestion is one parsed query section entry.
type DNSQuestion struct {
	QName  []byte
	QType  string
	QClass string
}

// DNSRecord is one parsed answer/authority/additional section entry.
// Origin distinguishes which section it came from (0=answer,1=authority,
// 2=additional) and NameTag is the label-compression pointer tag byte.
type DNSRecord struct {
	Origin   uint8
	NameTag  uint8
	RType    string
	RClass   string
	TTL      uint32
	RDLength uint16
	RData    []byte
}

// DNS bundles the header with one question and zero-or-more records, the
// way rstracer only ever inspects the first question of a request packet.
type DNS struct {
	Header   DNSHeader
	Question *DNSQuestion
	Records  []DNSRecord
}

// HTTPKind discriminates a parsed HTTP message as request or response.
type HTTPKind string

const (
	HTTPRequest  HTTPKind = "request"
	HTTPResponse HTTPKind = "response"
)

// HTTP is a minimally parsed HTTP/1.x message.
type HTTP struct {
	Kind       HTTPKind
	Method     string
	URI        string
	Version    string
	StatusCode uint16
	StatusText string
	Headers    map[string]string
	Body       []byte
}

// TLS is a raw TLS record header; the record payload is not kept.
type TLS struct {
	ContentType uint8
	Version     uint16
	Length      uint16
}

// Application is a discriminated union over DNS/HTTP/TLS payloads.
type Application struct {
	Protocol ApplicationProtocol
	DNS      *DNS
	HTTP     *HTTP
	TLS      *TLS
}

// Capture is one captured packet plus its layered decode, mirroring the
// bronze_network_* table family.
type Capture struct {
	ID          uint64
	Interface   string
	Packet      []byte
	CreatedAt   time.Time
	DataLink    *DataLink
	Network     *Network
	Transport   *Transport
	Application *Application
}
