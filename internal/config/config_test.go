package config_test

import (
	"path/filepath"
	"testing"

	"seatcore.dev/seatcore/internal/config"
)

func TestDefaultDecodes(t *testing.T) {
	c, err := config.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	if c.Motion.AxisStepDistance != 10 {
		t.Fatalf("AxisStepDistance = %v, want 10", c.Motion.AxisStepDistance)
	}
	if c.Motion.MouseDPI != 1000 {
		t.Fatalf("MouseDPI = %v, want 1000", c.Motion.MouseDPI)
	}
	if c.Motion.Profile != "linear" {
		t.Fatalf("Profile = %q, want %q", c.Motion.Profile, "linear")
	}
}

func TestLoadSeedsDefaultWhenMissing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if c.Motion.Acceleration != 2.0 {
		t.Fatalf("Acceleration = %v, want 2.0", c.Motion.Acceleration)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	want, err := config.Default()
	if err != nil {
		t.Fatalf("Default() error: %v", err)
	}
	want.Devices = map[string]config.DeviceOverride{
		"/dev/input/event3": {CalibrationMatrix: [6]float32{1, 0, 0, 0, 1, 0}},
	}

	if err := config.Save(path, want); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if got.Devices["/dev/input/event3"].CalibrationMatrix != want.Devices["/dev/input/event3"].CalibrationMatrix {
		t.Fatalf("round-tripped calibration matrix = %+v, want %+v",
			got.Devices["/dev/input/event3"], want.Devices["/dev/input/event3"])
	}
}
