// Command show-sockets runs one lsof(1) snapshot, keeps only IPv4/IPv6
// socket rows, and prints them as a local/remote address table — the Go
// equivalent of original_source/netstat/examples/show_sockets.rs. There is
// no standalone netstat adapter: sockets are open files of type IPv4/IPv6,
// so this reuses internal/adapter/openfiles rather than re-deriving the
// socket table from /proc or getsockopt.
package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/rstracer/rstracer/internal/adapter/openfiles"
	"github.com/rstracer/rstracer/internal/model"
)

func main() {
	rows, err := openfiles.New().Collect(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "show-sockets: %v\n", err)
		os.Exit(1)
	}
	display(sockets(rows))
}

type socket struct {
	pid, uid             int32
	command               string
	localAddr, remoteAddr string
}

// sockets keeps only IPv4/IPv6 open-file rows and splits their name at the
// first "-" into local/remote halves (silverOpenFiles splits on "->"
// instead).
func sockets(rows []model.OpenFile) []socket {
	var out []socket
	for _, r := range rows {
		switch strings.ToUpper(r.Type) {
		case "IPV4", "IPV6":
		default:
			continue
		}
		local, remote, _ := strings.Cut(r.Name, "-")
		out = append(out, socket{
			pid:        r.PID,
			uid:        r.UID,
			command:    r.Command,
			localAddr:  local,
			remoteAddr: remote,
		})
	}
	return out
}

func display(sockets []socket) {
	fmt.Printf("%-6s | %-5s | %-20s | %-20s | %-20s\n",
		"pid", "uid", "command", "local_address", "remote_address")
	for _, s := range sockets {
		fmt.Printf("%-6d | %-5d | %-20s | %-20s | %-20s\n",
			s.pid, s.uid, s.command, s.localAddr, s.remoteAddr)
	}
}
