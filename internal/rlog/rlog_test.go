package rlog

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rstracer/rstracer/internal/config"
)

func TestNewDefaultsToInfoLevel(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf})

	log.Debug().Msg("hidden")
	log.Info().Msg("visible")

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, "visible")
}

func TestParseLevelAcceptsCaseInsensitive(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Level: "debug", Output: &buf})
	log.Debug().Msg("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestWithComponentAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).WithComponent("executor")
	log.Info().Msg("hi")
	assert.Contains(t, buf.String(), `"component":"executor"`)
}

func TestWithTaskAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).WithTask("vacuum")
	log.Info().Msg("hi")
	assert.Contains(t, buf.String(), `"task":"vacuum"`)
}

func TestWithRunIDAddsField(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{Output: &buf}).WithRunID("abc-123")
	log.Info().Msg("hi")
	assert.Contains(t, buf.String(), `"run_id":"abc-123"`)
}

func TestFromConfigWritesToRotatingFile(t *testing.T) {
	dir := t.TempDir()
	log, closer, err := FromConfig(config.Logger{Level: "INFO", Directory: dir, Rotation: "DAILY"})
	require.NoError(t, err)
	require.NotNil(t, closer)
	defer closer.Close()

	log.Info().Msg("hello")
}

func TestFromConfigRejectsUnknownRotation(t *testing.T) {
	_, _, err := FromConfig(config.Logger{Level: "INFO", Directory: t.TempDir(), Rotation: "FORTNIGHTLY"})
	assert.Error(t, err)
}

func TestFromConfigWithoutDirectoryHasNoCloser(t *testing.T) {
	log, closer, err := FromConfig(config.Logger{Level: "INFO"})
	require.NoError(t, err)
	assert.Nil(t, closer)
	log.Info().Msg("stderr")
}
