package main

import (
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

// duration wraps time.Duration for TOML decoding ("30s", "1m", ...).
type duration struct {
	time.Duration
}

func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// ServerConfig is the TOML-backed server configuration.
type ServerConfig struct {
	Port           int      `toml:"port"`
	ReadTimeout    duration `toml:"read_timeout"`
	WriteTimeout   duration `toml:"write_timeout"`
	MaxRequestSize int      `toml:"max_request_size"`
	Concurrency    int      `toml:"concurrency"`
	WarmUp         bool     `toml:"warm_up"`
	LogFile        string   `toml:"log_file"`

	Comparator ComparatorConfig `toml:"comparator"`
	Avalanche  AvalancheConfig  `toml:"avalanche"`
}

// ComparatorConfig tunes the sequence comparator.
type ComparatorConfig struct {
	Threshold   float64 `toml:"threshold"`
	Precision   int     `toml:"precision"`
	Placeholder string  `toml:"placeholder"`
}

// AvalancheConfig tunes the band thresholds and algorithm selection.
type AvalancheConfig struct {
	PoorLow    float64  `toml:"poor_low"`
	WarnLow    float64  `toml:"warn_low"`
	WarnHigh   float64  `toml:"warn_high"`
	PoorHigh   float64  `toml:"poor_high"`
	Algorithms []string `toml:"algorithms"`
}

// DefaultServerConfig mirrors the command-line flag defaults.
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		Port:           DefaultPort,
		ReadTimeout:    duration{DefaultReadTimeout},
		WriteTimeout:   duration{DefaultWriteTimeout},
		MaxRequestSize: DefaultMaxRequestSize,
		Concurrency:    DefaultConcurrency,
		WarmUp:         true,
		Comparator: ComparatorConfig{
			Threshold: 90.0,
			Precision: 1,
		},
		Avalanche: AvalancheConfig{
			PoorLow:  35,
			WarnLow:  40,
			WarnHigh: 60,
			PoorHigh: 65,
		},
	}
}

// LoadServerConfig reads a TOML file over the defaults.
func LoadServerConfig(path string) (ServerConfig, error) {
	config := DefaultServerConfig()
	meta, err := toml.DecodeFile(path, &config)
	if err != nil {
		return config, fmt.Errorf("decoding config file: %w", err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return config, fmt.Errorf("unknown config keys: %v", undecoded)
	}
	return config, nil
}
