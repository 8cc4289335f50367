package rlog

import (
	"fmt"
	"io"

	"github.com/rstracer/rstracer/internal/config"
	"github.com/rstracer/rstracer/internal/rlog/rotate"
)

// FromConfig builds a Logger from config.Logger, opening a time-bucketed
// rotating file writer when Directory is set and writing to stderr
// otherwise. The returned closer must be closed (if non-nil) on shutdown.
func FromConfig(cfg config.Logger) (Logger, io.Closer, error) {
	if cfg.Directory == "" {
		return New(Options{Level: cfg.Level}), nil, nil
	}

	bucket := rotate.Hourly
	switch cfg.Rotation {
	case "MINUTELY":
		bucket = rotate.Minutely
	case "DAILY":
		bucket = rotate.Daily
	case "", "HOURLY":
		bucket = rotate.Hourly
	default:
		return Logger{}, nil, fmt.Errorf("rlog: unknown rotation %q", cfg.Rotation)
	}

	fr, err := rotate.Open(cfg.Directory, "rstracer.log", bucket, 0o644)
	if err != nil {
		return Logger{}, nil, err
	}
	return New(Options{Level: cfg.Level, Output: fr}), fr, nil
}
