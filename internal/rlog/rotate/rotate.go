// Package rotate implements time-bucketed log file rotation for rlog,
// adapted from gravwell's ingest/log/rotate's size-based FileRotator: the
// same mutex-guarded os.File plus gzip-old-file shape, but the rotation
// trigger is a wall-clock bucket boundary (MINUTELY/HOURLY/DAILY) instead of
// a byte-count threshold.
package rotate

import (
	"compress/gzip"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Bucket names the rotation granularity.
type Bucket string

const (
	Minutely Bucket = "MINUTELY"
	Hourly   Bucket = "HOURLY"
	Daily    Bucket = "DAILY"
)

// ErrAlreadyClosed mirrors the teacher rotator's sentinel for a double Close.
var ErrAlreadyClosed = errors.New("already closed")

func (b Bucket) truncate(t time.Time) time.Time {
	switch b {
	case Minutely:
		return t.Truncate(time.Minute)
	case Daily:
		return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	case Hourly:
		fallthrough
	default:
		return t.Truncate(time.Hour)
	}
}

// FileRotator writes to directory/baseName, rolling to a new file and
// gzip-compressing the previous one whenever now() crosses into a new
// Bucket.
type FileRotator struct {
	mu        sync.Mutex
	directory string
	baseName  string
	bucket    Bucket
	perm      os.FileMode
	now       func() time.Time

	fout       *os.File
	currBucket time.Time
}

// Open creates (or appends to) directory/baseName and rotates it on Bucket
// boundaries.
func Open(directory, baseName string, bucket Bucket, perm os.FileMode) (*FileRotator, error) {
	if baseName == "" {
		return nil, fmt.Errorf("rotate: base filename required")
	}
	if err := os.MkdirAll(directory, 0o755); err != nil {
		return nil, fmt.Errorf("rotate: mkdir %s: %w", directory, err)
	}

	fr := &FileRotator{
		directory: directory,
		baseName:  baseName,
		bucket:    bucket,
		perm:      perm,
		now:       time.Now,
	}
	if err := fr.openCurrent(); err != nil {
		return nil, err
	}
	return fr, nil
}

func (fr *FileRotator) openCurrent() error {
	fr.currBucket = fr.bucket.truncate(fr.now())
	f, err := os.OpenFile(fr.currentPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, fr.perm)
	if err != nil {
		return fmt.Errorf("rotate: open %s: %w", fr.currentPath(), err)
	}
	fr.fout = f
	return nil
}

func (fr *FileRotator) currentPath() string {
	return filepath.Join(fr.directory, fr.baseName)
}

func (fr *FileRotator) rotatedPath(bucket time.Time) string {
	ext := filepath.Ext(fr.baseName)
	stem := fr.baseName[:len(fr.baseName)-len(ext)]
	return filepath.Join(fr.directory, fmt.Sprintf("%s-%s%s", stem, bucket.Format("20060102T150405"), ext))
}

// Write implements io.Writer, rotating first if now() has crossed a bucket
// boundary since the file was opened.
func (fr *FileRotator) Write(buf []byte) (int, error) {
	fr.mu.Lock()
	defer fr.mu.Unlock()

	if fr.fout == nil {
		return 0, ErrAlreadyClosed
	}

	next := fr.bucket.truncate(fr.now())
	if next.After(fr.currBucket) {
		if err := fr.rotateLocked(next); err != nil {
			return 0, err
		}
	}
	return fr.fout.Write(buf)
}

func (fr *FileRotator) rotateLocked(next time.Time) error {
	prevBucket := fr.currBucket
	if err := fr.fout.Close(); err != nil {
		return fmt.Errorf("rotate: close: %w", err)
	}
	archived := fr.rotatedPath(prevBucket)
	if err := os.Rename(fr.currentPath(), archived); err != nil {
		return fmt.Errorf("rotate: rename: %w", err)
	}
	if err := compress(archived); err != nil {
		return fmt.Errorf("rotate: compress: %w", err)
	}

	fr.currBucket = next
	f, err := os.OpenFile(fr.currentPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, fr.perm)
	if err != nil {
		return fmt.Errorf("rotate: reopen: %w", err)
	}
	fr.fout = f
	return nil
}

func compress(path string) error {
	src, err := os.Open(path)
	if err != nil {
		return err
	}
	defer src.Close()

	dst, err := os.Create(path + ".gz")
	if err != nil {
		return err
	}
	gw := gzip.NewWriter(dst)
	if _, err := io.Copy(gw, src); err != nil {
		gw.Close()
		dst.Close()
		return err
	}
	if err := gw.Close(); err != nil {
		dst.Close()
		return err
	}
	if err := dst.Close(); err != nil {
		return err
	}
	return os.Remove(path)
}

// Close flushes and closes the current file.
func (fr *FileRotator) Close() error {
	fr.mu.Lock()
	defer fr.mu.Unlock()
	if fr.fout == nil {
		return ErrAlreadyClosed
	}
	err := fr.fout.Close()
	fr.fout = nil
	return err
}
