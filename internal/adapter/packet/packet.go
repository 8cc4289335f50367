// Package packet captures and decodes live network traffic, grounded on
// gravwell/gravwell/v3/ingesters/networkLog/main.go's pcap.OpenLive wiring
// (promiscuous mode, BPF filter, non-blocking read timeout) and the layer
// tree in original_source/network/src/{osi,capture}/**.
package packet

import (
	"context"
	"fmt"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/pcap"

	"github.com/rstracer/rstracer/internal/model"
)

const readTimeout = 500 * time.Millisecond

// Adapter captures packets off one network device.
type Adapter struct {
	device   string
	snaplen  int32
	bpf      string
	handle   *pcap.Handle
	nextID   uint64
}

// Options configures an Adapter.
type Options struct {
	Device  string
	Snaplen int32
	BPF     string
}

// Open starts a promiscuous, non-blocking live capture on Options.Device,
// mirroring networkLog's pcap.OpenLive(device, snaplen, true, timeout).
func Open(opts Options) (*Adapter, error) {
	snaplen := opts.Snaplen
	if snaplen <= 0 {
		snaplen = 65535
	}
	handle, err := pcap.OpenLive(opts.Device, snaplen, true, readTimeout)
	if err != nil {
		return nil, fmt.Errorf("packet: open %s: %w", opts.Device, err)
	}
	if opts.BPF != "" {
		if err := handle.SetBPFFilter(opts.BPF); err != nil {
			handle.Close()
			return nil, fmt.Errorf("packet: bpf filter %q: %w", opts.BPF, err)
		}
	}
	return &Adapter{device: opts.Device, snaplen: snaplen, bpf: opts.BPF, handle: handle}, nil
}

// Close releases the pcap handle.
func (a *Adapter) Close() {
	a.handle.Close()
}

// Collect reads whatever packets are available before ctx is cancelled or
// readTimeout elapses with nothing captured, decoding each into a
// model.Capture. A per-packet decode error is not fatal: the packet is
// skipped (spec.md §7 — per-row adapter failures are warnings, not
// pipeline-ending errors), and does not panic or recover (spec.md §9
// REDESIGN FLAG: no panic::catch_unwind-style suppression).
func (a *Adapter) Collect(ctx context.Context) ([]model.Capture, []error) {
	src := gopacket.NewPacketSource(a.handle, a.handle.LinkType())
	src.DecodeOptions = gopacket.DecodeOptions{Lazy: true, NoCopy: true}

	var captures []model.Capture
	var errs []error

	deadline := time.After(readTimeout)
	for {
		select {
		case <-ctx.Done():
			return captures, errs
		case <-deadline:
			return captures, errs
		case pkt, ok := <-src.Packets():
			if !ok {
				return captures, errs
			}
			cap, err := a.decode(pkt)
			if err != nil {
				errs = append(errs, err)
				continue
			}
			captures = append(captures, cap)
		}
	}
}

func (a *Adapter) decode(pkt gopacket.Packet) (model.Capture, error) {
	a.nextID++
	cap := model.Capture{
		ID:        a.nextID,
		Interface: a.device,
		Packet:    pkt.Data(),
		CreatedAt: time.Now(),
	}

	dataLink, err := decodeDataLink(pkt)
	if err != nil {
		return model.Capture{}, err
	}
	cap.DataLink = dataLink

	network, err := decodeNetwork(pkt)
	if err != nil {
		return cap, err
	}
	cap.Network = network

	transport, err := decodeTransport(pkt)
	if err != nil {
		return cap, err
	}
	cap.Transport = transport

	application, err := decodeApplication(pkt, transport)
	if err != nil {
		return cap, err
	}
	cap.Application = application

	return cap, nil
}
