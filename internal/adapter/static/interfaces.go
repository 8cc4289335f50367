package static

import (
	"fmt"

	"github.com/google/gopacket/pcap"

	"github.com/rstracer/rstracer/internal/model"
)

// ReadInterfaceAddresses enumerates every local network interface and its
// bound addresses via libpcap's device list, the same device source
// cmd/rstracer's defaultCaptureDevice uses to pick a capture interface — so no second,
// netmask-less stdlib net.Interfaces() path is needed alongside it.
func ReadInterfaceAddresses() ([]model.InterfaceAddress, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return nil, fmt.Errorf("static: pcap.FindAllDevs: %w", err)
	}

	var rows []model.InterfaceAddress
	for _, dev := range devices {
		for _, addr := range dev.Addresses {
			row := model.InterfaceAddress{
				Interface: dev.Name,
			}
			if addr.IP != nil {
				row.Address = addr.IP.String()
			}
			if addr.Netmask != nil {
				row.Netmask = addr.Netmask.String()
			}
			if addr.Broadaddr != nil {
				row.BroadcastAddress = addr.Broadaddr.String()
			}
			if addr.P2P != nil {
				row.DestinationAddress = addr.P2P.String()
			}
			rows = append(rows, row)
		}
	}
	return rows, nil
}
