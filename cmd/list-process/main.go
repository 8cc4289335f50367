// Command list-process samples the process list once a second and prints
// each snapshot, standalone and disconnected from the bronze/silver/gold
// pipeline. It exercises internal/adapter/process the way
// original_source/ps/examples/list_process.rs exercises the ps crate.
package main

import (
	"context"
	"fmt"
	"time"

	"github.com/rstracer/rstracer/internal/adapter/process"
	"github.com/rstracer/rstracer/utils"
)

const frequency = time.Second

func main() {
	adapter := process.New()
	ticker := time.NewTicker(frequency)
	defer ticker.Stop()

	quit := utils.GetQuitChannel()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	for {
		select {
		case <-quit:
			return
		case <-ticker.C:
			rows, err := adapter.Collect(ctx)
			if err != nil {
				fmt.Printf("list-process: collect failed: %v\n", err)
				continue
			}
			for _, p := range rows {
				fmt.Printf("%+v\n", p)
			}
		}
	}
}
