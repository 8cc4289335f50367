// Package static reads the slow-changing /etc configuration files
// (hosts, services, passwd-equivalent) rstracer uses as dimension data,
// grounded on original_source/etc/src/etc/{host,service,passwd}.rs.
package static

import (
	"bufio"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rstracer/rstracer/internal/model"
)

const defaultHostsPath = "/etc/hosts"

// ReadHosts reads /etc/hosts (or path, if non-empty) and prepends the
// machine's own hostname/address row, deduplicating by (name, address) the
// way host.rs's read_etc_file does with its contains() check.
func ReadHosts(path string) ([]model.Host, error) {
	if path == "" {
		path = defaultHostsPath
	}

	hosts := []model.Host{hostnameRow()}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("static: open %s: %w", path, err)
	}
	defer f.Close()

	seen := map[model.Host]bool{hosts[0]: true}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		for _, h := range parseHostRow(scanner.Text()) {
			if !seen[h] {
				seen[h] = true
				hosts = append(hosts, h)
			}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("static: read %s: %w", path, err)
	}
	return hosts, nil
}

func parseHostRow(row string) []model.Host {
	if strings.HasPrefix(row, "#") {
		return nil
	}
	fields := strings.Fields(row)
	if len(fields) < 2 {
		return nil
	}
	var out []model.Host
	for _, name := range fields[1:] {
		out = append(out, model.Host{Name: name, Address: fields[0]})
	}
	return out
}

// hostnameRow shells out to hostname(1) and dig(1), mirroring
// get_hostname_row. A failure to resolve is tolerated: the row is still
// emitted with an empty address, since rstracer should never block startup
// on DNS availability.
func hostnameRow() model.Host {
	name := ""
	if out, err := exec.Command("hostname").Output(); err == nil {
		name = strings.TrimSpace(string(out))
	}
	address := ""
	if name != "" {
		if out, err := exec.Command("dig", "+short", name).Output(); err == nil {
			address = strings.TrimSpace(strings.SplitN(string(out), "\n", 2)[0])
		}
	}
	return model.Host{Name: name, Address: address}
}

// parsePort is a small helper used by service parsing.
func parsePort(s string) (uint16, error) {
	v, err := strconv.ParseUint(s, 10, 16)
	if err != nil {
		return 0, err
	}
	return uint16(v), nil
}
