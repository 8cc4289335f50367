package process

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRow(t *testing.T) {
	row := "163 1 501 Wed Jul 29 08:30:00 2026 1.5 2.3 Ss /usr/sbin/loginwindow"
	p, err := parseRow(row, time.Unix(0, 0))
	require.NoError(t, err)
	assert.Equal(t, int32(163), p.PID)
	assert.Equal(t, int32(1), p.PPID)
	assert.Equal(t, int32(501), p.UID)
	assert.Equal(t, float32(1.5), p.PCPU)
	assert.Equal(t, "Ss", p.Status)
	assert.Equal(t, "/usr/sbin/loginwindow", p.Command)
}

func TestParseOutputSkipsBlankLines(t *testing.T) {
	output := "163 1 501 Wed Jul 29 08:30:00 2026 1.5 2.3 Ss cmd\n\n164 1 501 Wed Jul 29 08:30:00 2026 0.1 0.2 R cmd2\n"
	processes, err := parseOutput(output, time.Unix(0, 0))
	require.NoError(t, err)
	require.Len(t, processes, 2)
}

func TestParseRowRejectsShortRow(t *testing.T) {
	_, err := parseRow("1 2 3", time.Unix(0, 0))
	assert.Error(t, err)
}
