package static

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/rstracer/rstracer/internal/model"
)

const defaultServicesPath = "/etc/services"

var serviceRowRe = regexp.MustCompile(`^([a-zA-Z0-9-]+)\s+(\d{1,5})/([a-zA-Z0-9-]+)`)

// ReadServices reads /etc/services (or path, if non-empty), skipping any
// line that doesn't match name, port/protocol — grounded on
// service.rs's ROW_REGEX.
func ReadServices(path string) ([]model.Service, error) {
	if path == "" {
		path = defaultServicesPath
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("static: open %s: %w", path, err)
	}

	var services []model.Service
	for _, line := range strings.Split(string(data), "\n") {
		m := serviceRowRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		port, err := parsePort(m[2])
		if err != nil {
			continue
		}
		services = append(services, model.Service{Name: m[1], Port: port, Protocol: m[3]})
	}
	return services, nil
}
