package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go-piano/dsp"
	"go-piano/sequencer"
)

var (
	ErrSampleRate = errors.New("sample rate must be positive")
	ErrBlockSize  = errors.New("block size must be positive")
	ErrVoices     = errors.New("voice count must be positive")
	ErrTiming     = errors.New("gap, tail and start delay must not be negative")
)

// KeyboardConfig selects the live MIDI input
type KeyboardConfig struct {
	PortName    string `json:"portName,omitempty"`
	AutoConnect bool   `json:"autoConnect"`
}

// Config is the main configuration structure
type Config struct {
	SampleRate   int     `json:"sampleRate"`
	BlockSize    int     `json:"blockSize"`
	Voices       int     `json:"voices"`
	Backend      string  `json:"backend"`
	Song         string  `json:"song,omitempty"`
	GapMs        int     `json:"gapMs"`
	TailSeconds  float64 `json:"tailSeconds"`
	StartDelayMs int     `json:"startDelayMs"`
	ExactPitch   bool    `json:"exactPitch,omitempty"`

	// Palette is a GIMP .gpl file for the terminal UI; empty uses the built-in one
	Palette string `json:"palette,omitempty"`

	Timbre dsp.Timbre `json:"timbre"`

	// Plan replaces the built-in song when set
	Plan sequencer.Plan `json:"plan,omitempty"`

	Keyboard KeyboardConfig `json:"keyboard"`
}

// DefaultConfig returns a config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		SampleRate:   44100,
		BlockSize:    512,
		Voices:       8,
		Backend:      "oto",
		GapMs:        50,
		TailSeconds:  1.0,
		StartDelayMs: 100,
		Timbre:       dsp.SoftTimbre(),
		Keyboard: KeyboardConfig{
			AutoConnect: true,
		},
	}
}

// ConfigDir returns the config directory path
func ConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "go-piano"), nil
}

// ConfigPath returns the full path to config.json
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// Load reads the config from disk, or returns defaults if not found
func Load() (*Config, error) {
	path, err := ConfigPath()
	if err != nil {
		return DefaultConfig(), nil
	}
	return LoadFrom(path)
}

// LoadFrom reads path over the defaults, so a partial file only changes
// the fields it names
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, err
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes the config to disk
func (c *Config) Save() error {
	dir, err := ConfigDir()
	if err != nil {
		return err
	}

	// Create directory if it doesn't exist
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	path, err := ConfigPath()
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Validate checks the engine settings, the timbre and any custom plan
func (c *Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: %d", ErrSampleRate, c.SampleRate)
	case c.BlockSize <= 0:
		return fmt.Errorf("%w: %d", ErrBlockSize, c.BlockSize)
	case c.Voices <= 0:
		return fmt.Errorf("%w: %d", ErrVoices, c.Voices)
	case c.GapMs < 0 || c.TailSeconds < 0 || c.StartDelayMs < 0:
		return ErrTiming
	}
	if err := c.Timbre.Validate(); err != nil {
		return fmt.Errorf("timbre: %w", err)
	}
	if len(c.Plan) > 0 {
		if err := c.Plan.Validate(); err != nil {
			return fmt.Errorf("plan: %w", err)
		}
	}
	return nil
}

// SequencerOptions converts the timing fields
func (c *Config) SequencerOptions() sequencer.Options {
	opts := sequencer.DefaultOptions()
	opts.Gap = time.Duration(c.GapMs) * time.Millisecond
	opts.Tail = time.Duration(c.TailSeconds * float64(time.Second))
	opts.ExactPitch = c.ExactPitch
	return opts
}

// StartDelay is the pause between opening the device and the first note
func (c *Config) StartDelay() time.Duration {
	return time.Duration(c.StartDelayMs) * time.Millisecond
}
