package static

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTemp(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestParseHostRowMultipleNames(t *testing.T) {
	hosts := parseHostRow("127.0.0.1\tlocalhost loopback")
	require.Len(t, hosts, 2)
	assert.Equal(t, "localhost", hosts[0].Name)
	assert.Equal(t, "loopback", hosts[1].Name)
	assert.Equal(t, "127.0.0.1", hosts[0].Address)
}

func TestParseHostRowCommentIgnored(t *testing.T) {
	assert.Nil(t, parseHostRow("# a comment"))
}

func TestReadServicesSkipsMalformedLines(t *testing.T) {
	path := writeTemp(t, "http           80/tcp\ninvalid_entry\nhttps          443/tcp\n")
	services, err := ReadServices(path)
	require.NoError(t, err)
	require.Len(t, services, 2)
	assert.Equal(t, "http", services[0].Name)
	assert.Equal(t, uint16(80), services[0].Port)
	assert.Equal(t, "tcp", services[0].Protocol)
}

func TestReadUsersParsesNameAndUID(t *testing.T) {
	path := writeTemp(t, "root:x:0:0:root:/root:/bin/bash\nnobody:x:65534:65534::/:\n")
	users, err := ReadUsers(path)
	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "root", users[0].Name)
	assert.Equal(t, int32(0), users[0].UID)
	assert.Equal(t, int32(65534), users[1].UID)
}
