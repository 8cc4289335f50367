// Package config loads and validates rstracer.toml, the single external
// configuration surface named in spec.md §6.
package config

import (
	"errors"
	"fmt"
	"os"

	"github.com/pelletier/go-toml/v2"
)

// Channel configures one bounded producer/consumer pair: how deep the SQL
// channel is, how often the producer samples, and how many rows it batches
// per send.
type Channel struct {
	ChannelSize        int    `toml:"channel_size"`
	ProducerFrequency  uint64 `toml:"producer_frequency"`
	ConsumerBatchSize  int    `toml:"consumer_batch_size"`
}

// Lsof splits the open-files adapter into a slower regular-file cadence and
// a faster network-socket cadence, mirroring two independently scheduled
// producers over the same lsof parse.
type Lsof struct {
	Regular Channel `toml:"regular"`
	Network Channel `toml:"network"`
}

// Vacuum names the retention window, in seconds, for each medallion layer.
// A value of 0 means "retain forever" (spec.md §9 Open Question, resolved).
type Vacuum struct {
	Bronze uint64 `toml:"bronze"`
	Silver uint64 `toml:"silver"`
	Gold   uint64 `toml:"gold"`
}

// List renders Vacuum as ordered (layer, seconds) pairs for the vacuum task.
func (v Vacuum) List() []struct {
	Layer   string
	Seconds uint64
} {
	return []struct {
		Layer   string
		Seconds uint64
	}{
		{"bronze", v.Bronze},
		{"silver", v.Silver},
		{"gold", v.Gold},
	}
}

// Export configures the gold-layer export sink.
type Export struct {
	Directory string `toml:"directory"`
	Format    string `toml:"format"`
}

// Schedule names the tick interval, in seconds, for each periodic task.
type Schedule struct {
	Silver uint64 `toml:"silver"`
	Gold   uint64 `toml:"gold"`
	Vacuum uint64 `toml:"vacuum"`
	File   uint64 `toml:"file"`
	Export uint64 `toml:"export"`
}

// Logger configures the structured logger and its optional file rotation.
type Logger struct {
	Level     string `toml:"level"`
	Directory string `toml:"directory"`
	Rotation  string `toml:"rotation"`
}

// Metrics configures the optional, read-only Prometheus surface (SPEC_FULL.md
// §6.1). Empty Listen disables it.
type Metrics struct {
	Listen string `toml:"listen"`
}

// Config is the full rstracer.toml shape.
type Config struct {
	InMemory bool     `toml:"in_memory"`
	Path     string   `toml:"path"`
	Request  Channel  `toml:"request"`
	PS       Channel  `toml:"ps"`
	Lsof     Lsof     `toml:"lsof"`
	Network  Channel  `toml:"network"`
	Vacuum   Vacuum   `toml:"vacuum"`
	Export   Export   `toml:"export"`
	Schedule Schedule `toml:"schedule"`
	Logger   Logger   `toml:"logger"`
	Metrics  Metrics  `toml:"metrics"`
}

// Default returns the configuration the original rstracer.toml defaults to
// when a key, or the whole file, is absent (original_source/rstracer/src/
// config.rs's read_config builder defaults).
func Default() Config {
	return Config{
		InMemory: false,
		Path:     "rstracer.db",
		Request:  Channel{ChannelSize: 100, ConsumerBatchSize: 20},
		PS:       Channel{ProducerFrequency: 3, ConsumerBatchSize: 200},
		Lsof: Lsof{
			Regular: Channel{ProducerFrequency: 20, ConsumerBatchSize: 200},
			Network: Channel{ProducerFrequency: 3, ConsumerBatchSize: 200},
		},
		Network: Channel{ChannelSize: 500, ProducerFrequency: 1, ConsumerBatchSize: 200},
		Vacuum:  Vacuum{Bronze: 15, Silver: 15, Gold: 600},
		Export:  Export{Directory: "export/", Format: "parquet"},
		Schedule: Schedule{
			Silver: 10,
			Gold:   10,
			Vacuum: 15,
			File:   300,
			Export: 60,
		},
		Logger: Logger{Level: "INFO"},
	}
}

// Load reads rstracer.toml from path, merging it over Default(), and
// validates the result. A missing file is not an error: Default() alone is
// returned, validated.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			if verr := cfg.Validate(); verr != nil {
				return Config{}, verr
			}
			return cfg, nil
		}
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the config for the constraints the schedule engine and
// executor rely on, in the verify-after-load idiom of the teacher's
// ingesters/netflow/config.go verifyConfig.
func (c Config) Validate() error {
	if c.Request.ConsumerBatchSize <= 0 {
		return errors.New("config: request.consumer_batch_size must be > 0")
	}
	if c.Request.ChannelSize <= 0 {
		return errors.New("config: request.channel_size must be > 0")
	}
	if c.PS.ConsumerBatchSize <= 0 {
		return errors.New("config: ps.consumer_batch_size must be > 0")
	}
	if c.Lsof.Regular.ConsumerBatchSize <= 0 || c.Lsof.Network.ConsumerBatchSize <= 0 {
		return errors.New("config: lsof.{regular,network}.consumer_batch_size must be > 0")
	}
	if c.Network.ConsumerBatchSize <= 0 {
		return errors.New("config: network.consumer_batch_size must be > 0")
	}
	switch c.Export.Format {
	case "parquet", "csv", "json":
	default:
		return fmt.Errorf("config: export.format %q not one of parquet, csv, json", c.Export.Format)
	}
	switch lvl := c.Logger.Level; lvl {
	case "TRACE", "DEBUG", "INFO", "WARN", "ERROR":
	default:
		return fmt.Errorf("config: unknown logger.level %q", lvl)
	}
	if c.Logger.Rotation != "" {
		switch c.Logger.Rotation {
		case "MINUTELY", "HOURLY", "DAILY":
		default:
			return fmt.Errorf("config: unknown logger.rotation %q", c.Logger.Rotation)
		}
	}
	return nil
}
