// Package model holds the row shapes produced by the telemetry adapters
// before they are encoded into bronze SQL text.
package model

import "time"

// Process is one row of a process-list sample.
type Process struct {
	PID       int32
	PPID      int32
	UID       int32
	LStart    time.Time
	PCPU      float32
	PMem      float32
	Status    string
	Command   string
	CreatedAt time.Time
}

// OpenFile is one row of an lsof-style open file descriptor sample.
type OpenFile struct {
	Command   string
	PID       int32
	UID       int32
	FD        string
	Type      string
	Device    string
	Size      int64
	Node      string
	Name      string
	CreatedAt time.Time
}

// Host is a resolved name/address pair from /etc/hosts.
type Host struct {
	Name    string
	Address string
}

// Service is a name/port/protocol triple from /etc/services.
type Service struct {
	Name     string
	Port     uint16
	Protocol string
}

// User is a name/uid pair from /etc/passwd (or the platform equivalent).
type User struct {
	Name string
	UID  int32
}

// InterfaceAddress is one address bound to one local network interface.
type InterfaceAddress struct {
	Interface           string
	Address             string
	Netmask             string
	BroadcastAddress    string
	DestinationAddress  string
}
