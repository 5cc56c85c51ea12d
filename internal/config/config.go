// Package config loads and saves the seat's TOML configuration,
// adapted from ptt-fix.go's go:embed-default/DefaultPath resolution,
// with the struct shape and TOML encode/decode lifted from
// char5742-keyball-gestures's internal/config/config.go.
package config

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

//go:embed default.toml
var defaultFile string

// Config is the seat's full tunable configuration.
type Config struct {
	Motion  MotionConfig              `toml:"motion"`
	LEDs    LEDConfig                 `toml:"leds"`
	Devices map[string]DeviceOverride `toml:"devices"`
}

// MotionConfig covers the axis-step distance and pointer-acceleration
// profile parameters from spec.md §4.1/§4.4.
type MotionConfig struct {
	AxisStepDistance int     `toml:"axis_step_distance"`
	MouseDPI         int     `toml:"mouse_dpi"`
	Acceleration     float64 `toml:"acceleration"`
	Incline          float64 `toml:"incline"`

	// Profile selects the pointer-acceleration curve internal/accel
	// installs at device attach: "linear" (pointer_accel_profile_linear,
	// the default) or "smooth" (pointer_accel_profile_smooth_simple).
	Profile string `toml:"profile"`
}

// LEDConfig selects which LEDs the seat exposes to keyboard-capable
// devices, per spec.md §4.7.
type LEDConfig struct {
	NumLock    bool `toml:"num_lock"`
	CapsLock   bool `toml:"caps_lock"`
	ScrollLock bool `toml:"scroll_lock"`
}

// DeviceOverride is a per-device-name calibration-matrix override,
// mirroring the LIBINPUT_CALIBRATION_MATRIX udev property from
// spec.md §6.
type DeviceOverride struct {
	CalibrationMatrix [6]float32 `toml:"calibration_matrix"`
}

// Default returns the configuration embedded at build time.
func Default() (Config, error) {
	var c Config
	if _, err := toml.Decode(defaultFile, &c); err != nil {
		return Config{}, fmt.Errorf("decode embedded default config: %w", err)
	}
	return c, nil
}

// DefaultPath returns the per-user config file path, creating no
// directories itself.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "seatcore", "config.toml"), nil
}

// Load reads path, falling back to the embedded default (and writing
// it to path) if the file doesn't exist yet.
func Load(path string) (Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		c, err := Default()
		if err != nil {
			return Config{}, err
		}
		if err := Save(path, c); err != nil {
			return c, err
		}
		return c, nil
	}

	c, err := Default()
	if err != nil {
		return Config{}, err
	}
	if _, err := toml.DecodeFile(path, &c); err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return c, nil
}

// Save writes c to path as TOML, creating its parent directory if
// needed.
func Save(path string, c Config) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return nil
}
