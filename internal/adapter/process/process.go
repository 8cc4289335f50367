// Package process samples the running process list by shelling out to
// ps(1), grounded on original_source/ps/src/ps/unix.rs's
// `ps -eo pid,ppid,uid,lstart,pcpu,pmem,stat,args --no-headers` invocation
// and row format, wrapped in the one-shot Collect(ctx) ([]T, error) shape
// ja7ad/consumption's pkg/system/proc samplers use.
package process

import (
	"bufio"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rstracer/rstracer/internal/model"
)

const lstartFormat = "Mon Jan 2 15:04:05 2006"

// Adapter collects one process-list snapshot per Collect call.
type Adapter struct {
	now func() time.Time
}

// New returns a ready Adapter.
func New() *Adapter {
	return &Adapter{now: time.Now}
}

// Collect runs ps(1) once and parses every row.
func (a *Adapter) Collect(ctx context.Context) ([]model.Process, error) {
	cmd := exec.CommandContext(ctx, "ps", "-eo", "pid,ppid,uid,lstart,pcpu,pmem,stat,args", "--no-headers")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("process: ps: %w", err)
	}
	return parseOutput(string(out), a.now())
}

func parseOutput(output string, createdAt time.Time) ([]model.Process, error) {
	var processes []model.Process
	scanner := bufio.NewScanner(strings.NewReader(output))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		p, err := parseRow(line, createdAt)
		if err != nil {
			return nil, err
		}
		processes = append(processes, p)
	}
	return processes, scanner.Err()
}

func parseRow(row string, createdAt time.Time) (model.Process, error) {
	fields := strings.Fields(row)
	if len(fields) < 12 {
		return model.Process{}, fmt.Errorf("process: short row %q", row)
	}

	pid, err := strconv.ParseInt(fields[0], 10, 32)
	if err != nil {
		return model.Process{}, fmt.Errorf("process: pid: %w", err)
	}
	ppid, err := strconv.ParseInt(fields[1], 10, 32)
	if err != nil {
		return model.Process{}, fmt.Errorf("process: ppid: %w", err)
	}
	uid, err := strconv.ParseInt(fields[2], 10, 32)
	if err != nil {
		return model.Process{}, fmt.Errorf("process: uid: %w", err)
	}
	lstart, err := time.ParseInLocation(lstartFormat, strings.Join(fields[3:8], " "), time.Local)
	if err != nil {
		return model.Process{}, fmt.Errorf("process: lstart: %w", err)
	}
	pcpu, err := strconv.ParseFloat(fields[8], 32)
	if err != nil {
		return model.Process{}, fmt.Errorf("process: pcpu: %w", err)
	}
	pmem, err := strconv.ParseFloat(fields[9], 32)
	if err != nil {
		return model.Process{}, fmt.Errorf("process: pmem: %w", err)
	}

	return model.Process{
		PID:       int32(pid),
		PPID:      int32(ppid),
		UID:       int32(uid),
		LStart:    lstart,
		PCPU:      float32(pcpu),
		PMem:      float32(pmem),
		Status:    fields[10],
		Command:   strings.Join(fields[11:], " "),
		CreatedAt: createdAt,
	}, nil
}
