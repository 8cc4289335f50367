package correlate

import (
	"fmt"
	"strings"

	"github.com/rstracer/rstracer/internal/model"
)

// FileRequest refreshes the gold_file_* static reference tables from the
// same /etc snapshots DimensionRequest uses, ported from
// original_source/rstracer/src/pipeline/stage/file.rs's
// insert_{service,host,user}_request trio.
func FileRequest(services []model.Service, hosts []model.Host, users []model.User) string {
	return fileServiceRequest(services) + fileHostRequest(hosts) + fileUserRequest(users)
}

func fileServiceRequest(services []model.Service) string {
	var b strings.Builder
	b.WriteString("BEGIN; TRUNCATE gold_file_service; INSERT INTO gold_file_service (name, port, protocol, inserted_at) VALUES ")
	values := make([]string, len(services))
	for i, s := range services {
		values[i] = fmt.Sprintf("('%s', %d, '%s', CURRENT_TIMESTAMP)", escape(s.Name), s.Port, escape(s.Protocol))
	}
	b.WriteString(strings.Join(values, ","))
	b.WriteString("; COMMIT;")
	return b.String()
}

func fileHostRequest(hosts []model.Host) string {
	var b strings.Builder
	b.WriteString("BEGIN; TRUNCATE gold_file_host; INSERT INTO gold_file_host (name, address, inserted_at) VALUES ")
	values := make([]string, len(hosts))
	for i, h := range hosts {
		values[i] = fmt.Sprintf("('%s', '%s', CURRENT_TIMESTAMP)", escape(h.Name), escape(h.Address))
	}
	b.WriteString(strings.Join(values, ","))
	b.WriteString("; COMMIT;")
	return b.String()
}

func fileUserRequest(users []model.User) string {
	var b strings.Builder
	b.WriteString("BEGIN; TRUNCATE gold_file_user; INSERT INTO gold_file_user (name, uid, inserted_at) VALUES ")
	values := make([]string, len(users))
	for i, u := range users {
		values[i] = fmt.Sprintf("('%s', '%d', CURRENT_TIMESTAMP)", escape(u.Name), u.UID)
	}
	b.WriteString(strings.Join(values, ","))
	b.WriteString("; COMMIT;")
	return b.String()
}
