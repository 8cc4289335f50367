package rotate

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestFileRotatorRotatesOnBucketBoundary(t *testing.T) {
	dir := t.TempDir()
	fr, err := Open(dir, "rstracer.log", Minutely, 0o644)
	require.NoError(t, err)

	base := time.Date(2026, 1, 1, 0, 0, 30, 0, time.UTC)
	fr.now = func() time.Time { return base }
	fr.currBucket = fr.bucket.truncate(base)

	_, err = fr.Write([]byte("line one\n"))
	require.NoError(t, err)

	fr.now = func() time.Time { return base.Add(time.Minute) }
	_, err = fr.Write([]byte("line two\n"))
	require.NoError(t, err)

	require.NoError(t, fr.Close())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)

	var sawCurrent, sawArchived bool
	for _, e := range entries {
		switch {
		case e.Name() == "rstracer.log":
			sawCurrent = true
		case filepath.Ext(e.Name()) == ".gz":
			sawArchived = true
		}
	}
	require.True(t, sawCurrent, "current log file should exist")
	require.True(t, sawArchived, "rotated bucket should be gzip-compressed")
}

func TestFileRotatorDoubleCloseErrors(t *testing.T) {
	dir := t.TempDir()
	fr, err := Open(dir, "rstracer.log", Hourly, 0o644)
	require.NoError(t, err)
	require.NoError(t, fr.Close())
	require.ErrorIs(t, fr.Close(), ErrAlreadyClosed)
}
