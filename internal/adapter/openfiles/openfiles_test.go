package openfiles

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fixture mirrors the exact lsof -F pcuftDsin output captured in
// original_source/lsof/src/lsof/unix.rs's create_lsof_output test helper.
const fixture = `p163
cloginwindow
u501
fcwd
tDIR
D0x1000010
s640
i2
n/
ftxt
tREG
D0x1000010
s2722512
i1152921500312132720
n/System/Library/CoreServices/loginwindow.app/Contents/MacOS/loginwindow
p8015
cmdworker_shared
u501
fcwd
tDIR
D0x1000010
s640
i2
n/
ftxt
tREG
D0x1000010
s1133680
i1152921500312170301
n/System/Library/Frameworks/CoreServices.framework/Versions/A/Frameworks/Metadata.framework/Versions/A/Support/mdworker_shared
ftxt
tREG
D0x1000010
s58184
i11556174
n/Library/Preferences/Logging/.plist-cache.DCgGV34s
`

func TestParseOutputFixture(t *testing.T) {
	rows, err := ParseOutput(fixture, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, rows, 5)

	first := rows[0]
	assert.Equal(t, int32(163), first.PID)
	assert.Equal(t, int32(501), first.UID)
	assert.Equal(t, "loginwindow", first.Command)
	assert.Equal(t, "cwd", first.FD)
	assert.Equal(t, "DIR", first.Type)
	assert.Equal(t, "0x1000010", first.Device)
	assert.Equal(t, int64(640), first.Size)
	assert.Equal(t, "2", first.Node)
	assert.Equal(t, "/", first.Name)
}

func TestDeserializeHeader(t *testing.T) {
	block := "p163\ncloginwindow\nu501"
	h, err := deserializeHeader(block)
	require.NoError(t, err)
	assert.Equal(t, int32(163), h.pid)
	assert.Equal(t, int32(501), h.uid)
	assert.Equal(t, "loginwindow", h.command)
}

func TestRowToOpenFileRejectsUnknownTag(t *testing.T) {
	_, err := rowToOpenFile(header{pid: 1, uid: 1, command: "x"}, "cwd\nzbad", time.Unix(0, 0))
	assert.Error(t, err)
}
