package encode

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rstracer/rstracer/internal/model"
)

func TestProcessEscapesQuotes(t *testing.T) {
	p := model.Process{
		PID: 1, PPID: 0, UID: 0,
		LStart:  time.Unix(1000, 0),
		PCPU:    1.5, PMem: 2.5,
		Status:  "running",
		Command: "it's a test",
		CreatedAt: time.Unix(1000, 0),
	}
	sql := Process(p)
	assert.Contains(t, sql, "bronze_process_list")
	assert.Contains(t, sql, "it''s a test")
	assert.Contains(t, sql, "to_timestamp(1000)")
}

func TestOpenFilesConcatenatesBatch(t *testing.T) {
	rows := []model.OpenFile{
		{Command: "lsof", PID: 1, UID: 0, FD: "cwd", Type: "DIR"},
		{Command: "lsof", PID: 2, UID: 0, FD: "txt", Type: "REG"},
	}
	sql := OpenFiles(rows)
	assert.Equal(t, 2, countOccurrences(sql, "INSERT INTO bronze_open_files"))
}

func countOccurrences(haystack, needle string) int {
	count := 0
	for i := 0; i+len(needle) <= len(haystack); i++ {
		if haystack[i:i+len(needle)] == needle {
			count++
		}
	}
	return count
}
