// Package config loads bridge settings from a YAML file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/leandrodaf/midibridge/sdk/contracts"
	"gopkg.in/yaml.v3"
)

// Config mirrors the bridge options that make sense in a file.
type Config struct {
	ClientName      string        `yaml:"client_name"`
	Backend         string        `yaml:"backend"`
	PollInterval    time.Duration `yaml:"poll_interval"`
	LogLevel        string        `yaml:"log_level"`
	LogFile         string        `yaml:"log_file"`
	PruneRemoved    bool          `yaml:"prune_removed"`
	AllowDuplicates bool          `yaml:"allow_duplicate_connections"`
}

var backends = map[string]contracts.Backend{
	"":         contracts.AutoBackend,
	"auto":     contracts.AutoBackend,
	"coremidi": contracts.CoreMIDIBackend,
	"winmm":    contracts.WinMMBackend,
	"rtmidi":   contracts.RtMidiBackend,
}

// Load reads and validates the file at path.
func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data. Unknown keys are rejected.
func Parse(data []byte) (Config, error) {
	var cfg Config
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks enumerated and numeric fields.
func (c Config) Validate() error {
	if _, ok := backends[c.Backend]; !ok {
		return fmt.Errorf("config: unknown backend %q", c.Backend)
	}
	if _, err := contracts.ParseLogLevel(c.LogLevel); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if c.PollInterval < 0 {
		return fmt.Errorf("config: poll_interval must not be negative, got %s", c.PollInterval)
	}
	return nil
}

// Options renders the config as bridge options. Zero values are left to the
// bridge defaults.
func (c Config) Options() []contracts.Option {
	level, _ := contracts.ParseLogLevel(c.LogLevel)
	opts := []contracts.Option{
		contracts.WithBackend(backends[c.Backend]),
		contracts.WithLogLevel(level),
		contracts.WithPruneRemoved(c.PruneRemoved),
		contracts.WithDuplicateConnections(c.AllowDuplicates),
	}
	if c.ClientName != "" {
		opts = append(opts, contracts.WithCoreMIDIConfig(contracts.CoreMIDIConfig{ClientName: c.ClientName}))
	}
	if c.PollInterval > 0 {
		opts = append(opts, contracts.WithPollInterval(c.PollInterval))
	}
	if c.LogFile != "" {
		opts = append(opts, contracts.WithLogFile(c.LogFile))
	}
	return opts
}
