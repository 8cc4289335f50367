// Command print-packet opens the default capture device and prints every
// decoded packet until interrupted, the Go equivalent of
// original_source/network/examples/print_packet.rs.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/gopacket/pcap"

	"github.com/rstracer/rstracer/internal/adapter/packet"
	"github.com/rstracer/rstracer/utils"
)

func main() {
	device, err := defaultDevice()
	if err != nil {
		fmt.Fprintf(os.Stderr, "print-packet: %v\n", err)
		os.Exit(1)
	}

	adapter, err := packet.Open(packet.Options{Device: device})
	if err != nil {
		fmt.Fprintf(os.Stderr, "print-packet: open %s: %v\n", device, err)
		os.Exit(1)
	}
	defer adapter.Close()
	fmt.Printf("capturing on %s, press Ctrl+C to stop\n", device)

	quit := utils.GetQuitChannel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case <-quit:
			return
		default:
		}

		captures, errs := adapter.Collect(ctx)
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "print-packet: decode error: %v\n", err)
		}
		for _, c := range captures {
			fmt.Printf("%+v\n", c)
		}
	}
}

func defaultDevice() (string, error) {
	devices, err := pcap.FindAllDevs()
	if err != nil {
		return "", err
	}
	if len(devices) == 0 {
		return "", fmt.Errorf("no capture devices found")
	}
	for _, dev := range devices {
		for _, addr := range dev.Addresses {
			if addr.IP != nil && !addr.IP.IsLoopback() {
				return dev.Name, nil
			}
		}
	}
	return devices[0].Name, nil
}
