package static

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rstracer/rstracer/internal/model"
)

const defaultPasswdPath = "/etc/passwd"

// ReadUsers reads /etc/passwd (or path, if non-empty), taking the name
// (field 1) and uid (field 3) of each colon-delimited row — the same two
// fields passwd.rs's Linux path extracts via `cut -d: -f1,3`.
func ReadUsers(path string) ([]model.User, error) {
	if path == "" {
		path = defaultPasswdPath
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("static: open %s: %w", path, err)
	}
	defer f.Close()

	var users []model.User
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		row := scanner.Text()
		if strings.HasPrefix(row, "#") || row == "" {
			continue
		}
		fields := strings.Split(row, ":")
		if len(fields) < 3 {
			continue
		}
		uid, err := strconv.ParseInt(fields[2], 10, 32)
		if err != nil {
			continue
		}
		users = append(users, model.User{Name: fields[0], UID: int32(uid)})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("static: read %s: %w", path, err)
	}
	return users, nil
}

// ReadInterfaceAddresses is supplemental to original_source/etc: the Rust
// crate never models local interface addresses as a static reader (it is
// produced inline by the network capture device enumeration), but
// schema.rs's bronze_network_interface_address table needs a producer. It
// shares this package because, like hosts/services/users, it samples
// slow-changing host configuration rather than live traffic.
