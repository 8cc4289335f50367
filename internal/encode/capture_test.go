package encode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rstracer/rstracer/internal/model"
)

func TestCaptureEncodesDNSPacket(t *testing.T) {
	c := model.Capture{
		ID:        42,
		Interface: "en0",
		Packet:    make([]byte, 83),
		CreatedAt: time.Unix(1700000000, 0),
		DataLink: &model.DataLink{
			Protocol: model.DataLinkEthernet,
			Ethernet: &model.Ethernet{Source: "aa:bb", Destination: "cc:dd", EtherType: 0x0800, PayloadLength: 69},
		},
		Network: &model.Network{
			Protocol: model.NetworkIPv4,
			IP:       &model.IP{Version: 4, Source: "192.168.1.79", Destination: "192.168.1.1"},
		},
		Transport: &model.Transport{
			Protocol: model.TransportUDP,
			UDP:      &model.UDP{Source: 64567, Destination: 53, Length: 47},
		},
		Application: &model.Application{
			Protocol: model.ApplicationDNS,
			DNS: &model.DNS{
				Header:   model.DNSHeader{ID: 0x7192, QueryCount: 1},
				Question: &model.DNSQuestion{QName: []byte("taivem.com"), QType: "A", QClass: "IN"},
			},
		},
	}

	sql := Capture(c)
	assert.Contains(t, sql, "bronze_network_packet")
	assert.Contains(t, sql, "bronze_network_ethernet")
	assert.Contains(t, sql, "bronze_network_ipv4")
	assert.Contains(t, sql, "bronze_network_udp")
	assert.Contains(t, sql, "bronze_network_dns_header")
	assert.Contains(t, sql, "bronze_network_dns_query")
	assert.Contains(t, sql, "VALUES (42,")
}
