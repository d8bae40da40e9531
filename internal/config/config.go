// Package config loads the optional runtime configuration for the monitor.
package config

import (
	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"

	"github.com/cosocaf/orange4-emulator/internal/orange4"
)

// Config tunes the monitor's driver policy.
type Config struct {
	// ClockHZ is the run-mode tick rate.
	ClockHZ int `toml:"clock_hz"`

	// Autorun starts the run loop as soon as the monitor comes up.
	Autorun bool `toml:"autorun"`

	// ReleaseKeys clears the keypad after every step and run-loop tick.
	ReleaseKeys bool `toml:"release_keys"`
}

// Default is the configuration used when no file is given.
func Default() Config {
	return Config{
		ClockHZ:     orange4.HZ,
		ReleaseKeys: true,
	}
}

// Load reads a TOML config file over the defaults. Unknown keys are an error.
func Load(path string) (Config, error) {
	cfg := Default()
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return cfg, errors.Wrap(err, "decoding config")
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		return cfg, errors.Errorf("unknown config key %q", undecoded[0].String())
	}
	if cfg.ClockHZ <= 0 {
		return cfg, errors.New("clock_hz must be positive")
	}
	return cfg, nil
}
