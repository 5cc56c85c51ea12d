package calib_test

import (
	"math"
	"testing"

	"seatcore.dev/seatcore/internal/calib"
	"seatcore.dev/seatcore/internal/matrix"
)

func TestComposeIdentity(t *testing.T) {
	absX := calib.AbsRange{Minimum: 0, Maximum: 4095}
	absY := calib.AbsRange{Minimum: 0, Maximum: 4095}

	m, active := calib.Compose(absX, absY, matrix.Identity().ToArray6())
	if active {
		t.Fatal("identity calibration reported active")
	}
	if !m.IsIdentity() {
		t.Fatal("identity calibration did not yield the identity matrix")
	}
}

func TestComposeEndpointsMapToRange(t *testing.T) {
	absX := calib.AbsRange{Minimum: 0, Maximum: 999}
	absY := calib.AbsRange{Minimum: 0, Maximum: 999}

	// A calibration that restricts usable input to the right half of
	// the device: libinput's canonical "x' = 0.5x + 0.5" row.
	cal := [6]float32{0.5, 0, 0.5, 0, 1, 0}

	m, active := calib.Compose(absX, absY, cal)
	if !active {
		t.Fatal("non-identity calibration reported inactive")
	}

	x, _ := m.MultVec(float64(absX.Minimum), 0)
	if !almostEqual(x, 500, 2) {
		t.Fatalf("calibrated min-x = %v, want ~500", x)
	}

	x, _ = m.MultVec(float64(absX.Maximum), 0)
	if !almostEqual(x, 999, 2) {
		t.Fatalf("calibrated max-x = %v, want ~999", x)
	}
}

func TestDefaultMatrixIdentityWhenSquare(t *testing.T) {
	absX := calib.AbsRange{Minimum: 0, Maximum: 1999}
	absY := calib.AbsRange{Minimum: 0, Maximum: 1999}
	m := calib.DefaultMatrix(absX, absY, 10, 10)
	if !m.IsIdentity() {
		t.Fatal("matching resolutions did not yield identity")
	}
}

func TestDefaultMatrixCorrectsAspect(t *testing.T) {
	absX := calib.AbsRange{Minimum: 0, Maximum: 1999}
	absY := calib.AbsRange{Minimum: 0, Maximum: 999}
	m := calib.DefaultMatrix(absX, absY, 20, 20)
	if m.IsIdentity() {
		t.Fatal("mismatched physical aspect ratio yielded identity")
	}
}

func almostEqual(a, b, eps float64) bool {
	return math.Abs(a-b) <= eps
}
