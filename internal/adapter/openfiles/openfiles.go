// Package openfiles samples open file descriptors by shelling out to
// lsof(1), ported field-for-field from
// original_source/lsof/src/lsof/unix.rs (`lsof -b -F pcuftDsin`, split on
// "\np" then "\nf", tagged-field header/row parsing).
package openfiles

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/rstracer/rstracer/internal/model"
)

// Adapter collects one open-files snapshot per Collect call.
type Adapter struct {
	now func() time.Time
}

// New returns a ready Adapter.
func New() *Adapter {
	return &Adapter{now: time.Now}
}

// Collect runs lsof(1) once and parses every row.
func (a *Adapter) Collect(ctx context.Context) ([]model.OpenFile, error) {
	cmd := exec.CommandContext(ctx, "lsof", "-b", "-F", "pcuftDsin")
	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("openfiles: lsof: %w", err)
	}
	return ParseOutput(string(out), a.now())
}

type header struct {
	pid     int32
	uid     int32
	command string
}

// ParseOutput parses lsof -F pcuftDsin output into rows.
func ParseOutput(output string, createdAt time.Time) ([]model.OpenFile, error) {
	var rows []model.OpenFile
	for _, process := range splitPerProcess(output) {
		perRow := splitPerRow(process)
		if len(perRow) == 0 {
			continue
		}
		hdr, err := deserializeHeader(perRow[0])
		if err != nil {
			return nil, err
		}
		for _, row := range perRow[1:] {
			of, err := rowToOpenFile(hdr, row, createdAt)
			if err != nil {
				return nil, err
			}
			rows = append(rows, of)
		}
	}
	return rows, nil
}

func splitPerProcess(output string) []string {
	return strings.Split(output, "\np")
}

func splitPerRow(process string) []string {
	return strings.Split(process, "\nf")
}

func deserializeHeader(block string) (header, error) {
	lines := strings.Split(block, "\n")
	if len(lines) < 3 {
		return header{}, fmt.Errorf("openfiles: short header block %q", block)
	}
	pidField := strings.TrimPrefix(lines[0], "p")
	pid, err := strconv.ParseInt(pidField, 10, 32)
	if err != nil {
		return header{}, fmt.Errorf("openfiles: pid: %w", err)
	}
	if len(lines[1]) < 1 || len(lines[2]) < 1 {
		return header{}, fmt.Errorf("openfiles: malformed header block %q", block)
	}
	command := lines[1][1:]
	uid, err := strconv.ParseInt(lines[2][1:], 10, 32)
	if err != nil {
		return header{}, fmt.Errorf("openfiles: uid: %w", err)
	}
	return header{pid: int32(pid), uid: int32(uid), command: command}, nil
}

func rowToOpenFile(h header, row string, createdAt time.Time) (model.OpenFile, error) {
	fields := strings.Split(row, "\n")
	if len(fields) == 0 {
		return model.OpenFile{}, fmt.Errorf("openfiles: empty row")
	}
	of := model.OpenFile{
		PID:       h.pid,
		UID:       h.uid,
		Command:   h.command,
		FD:        fields[0],
		CreatedAt: createdAt,
	}
	for _, field := range fields[1:] {
		if field == "" {
			continue
		}
		tag, value := field[:1], field[1:]
		switch tag {
		case "t":
			of.Type = value
		case "s":
			size, err := strconv.ParseInt(value, 10, 64)
			if err != nil {
				return model.OpenFile{}, fmt.Errorf("openfiles: size: %w", err)
			}
			of.Size = size
		case "i":
			of.Node = value
		case "D":
			of.Device = value
		case "n":
			of.Name = value
		default:
			return model.OpenFile{}, fmt.Errorf("openfiles: invalid field label %q", tag)
		}
	}
	return of, nil
}
