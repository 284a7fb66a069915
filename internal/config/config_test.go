package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func apply(opts []contracts.Option) contracts.ClientOptions {
	var o contracts.ClientOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bridge.yaml")
	data := []byte(`
client_name: Muse Trainer
backend: rtmidi
poll_interval: 250ms
log_level: debug
log_file: /tmp/bridge.log
prune_removed: true
allow_duplicate_connections: true
`)
	require.NoError(t, os.WriteFile(path, data, 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Config{
		ClientName:      "Muse Trainer",
		Backend:         "rtmidi",
		PollInterval:    250 * time.Millisecond,
		LogLevel:        "debug",
		LogFile:         "/tmp/bridge.log",
		PruneRemoved:    true,
		AllowDuplicates: true,
	}, cfg)

	o := apply(cfg.Options())
	assert.Equal(t, contracts.RtMidiBackend, o.Backend)
	assert.Equal(t, contracts.DebugLevel, o.LogLevel)
	assert.Equal(t, "Muse Trainer", o.CoreMIDIConfig.ClientName)
	assert.Equal(t, 250*time.Millisecond, o.PollInterval)
	assert.Equal(t, "/tmp/bridge.log", o.LogFilePath)
	assert.True(t, o.PruneRemoved)
	assert.True(t, o.AllowDuplicates)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte(`{}`))
	require.NoError(t, err)

	o := apply(cfg.Options())
	assert.Equal(t, contracts.AutoBackend, o.Backend)
	assert.Equal(t, contracts.InfoLevel, o.LogLevel)
	assert.Nil(t, o.CoreMIDIConfig)
	assert.Zero(t, o.PollInterval)
}

func TestParse_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"backend":  "backend: alsa",
		"level":    "log_level: loud",
		"interval": "poll_interval: -1s",
		"syntax":   "client_name: [",
		"unknown":  "device: Launchkey",
	} {
		_, err := Parse([]byte(doc))
		assert.Error(t, err, name)
	}
}

func TestParse_Empty(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	assert.Equal(t, Config{}, cfg)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
