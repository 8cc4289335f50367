// Command list-open-files runs one lsof(1) snapshot and prints every row as
// a fixed-width table, the Go equivalent of
// original_source/lsof/examples/list_open_file.rs's one-shot display.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/rstracer/rstracer/internal/adapter/openfiles"
	"github.com/rstracer/rstracer/internal/model"
)

func main() {
	rows, err := openfiles.New().Collect(context.Background())
	if err != nil {
		fmt.Fprintf(os.Stderr, "list-open-files: %v\n", err)
		os.Exit(1)
	}
	display(rows)
}

func display(files []model.OpenFile) {
	fmt.Printf("%-6s | %-5s | %-5s | %-10s | %-5s | %-10s | %-6s | %-5s | %-5s\n",
		"pid", "uid", "command", "fd", "type", "device", "size", "node", "name")
	for _, f := range files {
		name := f.Name
		if len(name) > 100 {
			name = name[:100]
		}
		fmt.Printf("%-6d | %-5d | %-5s | %-10s | %-5s | %-10s | %-6d | %-5s | %-5s\n",
			f.PID, f.UID, f.Command, f.FD, f.Type, f.Device, f.Size, f.Node, name)
	}
}
