package accel_test

import (
	"testing"

	"seatcore.dev/seatcore/internal/accel"
)

func TestNewLinearDefaultsInvalidDPI(t *testing.T) {
	f := accel.NewLinear(0)
	// A zero delta should always come back as zero, regardless of DPI,
	// since factor*0 == 0.
	got := f.Apply(accel.Delta{}, 0)
	if got.X != 0 || got.Y != 0 {
		t.Fatalf("Apply(zero delta) = %+v, want zero", got)
	}
}

func TestApplyScalesWithinAccelerationBound(t *testing.T) {
	f := accel.NewLinear(accel.DefaultMouseDPI)

	var timeUS int64
	for i := 0; i < 20; i++ {
		timeUS += 1000
		out := f.Apply(accel.Delta{X: 5, Y: 0}, timeUS)
		if out.X < 0 {
			t.Fatalf("iteration %d: negative output for positive input: %+v", i, out)
		}
		if out.X > accel.DefaultAcceleration*5+1e-6 {
			t.Fatalf("iteration %d: output %v exceeds DefaultAcceleration bound", i, out.X)
		}
	}
}

func TestApplyIsDeterministicForIdenticalHistory(t *testing.T) {
	f1 := accel.NewLinear(accel.DefaultMouseDPI)
	f2 := accel.NewLinear(accel.DefaultMouseDPI)

	var timeUS int64
	var out1, out2 accel.Delta
	for i := 0; i < 5; i++ {
		timeUS += 2000
		out1 = f1.Apply(accel.Delta{X: 3, Y: -2}, timeUS)
		out2 = f2.Apply(accel.Delta{X: 3, Y: -2}, timeUS)
	}
	if out1 != out2 {
		t.Fatalf("identical filter histories diverged: %+v vs %+v", out1, out2)
	}
}

// TestLinearProfileDampensVerySlowMotion exercises the linear
// profile's below-0.07ms precision branch: a very slow, steady motion
// should come back damped (factor under 1), not passed through
// unmodified.
func TestLinearProfileDampensVerySlowMotion(t *testing.T) {
	f := accel.NewLinear(accel.DefaultMouseDPI)

	var timeUS int64
	var out accel.Delta
	for i := 0; i < 5; i++ {
		timeUS += 50_000 // 50ms between samples, well below DefaultThreshold
		out = f.Apply(accel.Delta{X: 1, Y: 0}, timeUS)
	}
	if out.X >= 1 {
		t.Fatalf("slow linear motion = %v, want damped below the raw delta", out.X)
	}
}

// TestSmoothProfileDoesNotDampenSlowMotion exercises the one
// documented difference between the two profiles: the smooth variant
// has no below-threshold precision branch, so the same slow, steady
// motion the linear profile damps comes back roughly unscaled.
func TestSmoothProfileDoesNotDampenSlowMotion(t *testing.T) {
	f := accel.NewSmooth(accel.DefaultMouseDPI)

	var timeUS int64
	var out accel.Delta
	for i := 0; i < 5; i++ {
		timeUS += 50_000
		out = f.Apply(accel.Delta{X: 1, Y: 0}, timeUS)
	}
	if out.X < 1-1e-6 {
		t.Fatalf("slow smooth motion = %v, want at least the raw delta", out.X)
	}
}

// TestSmoothProfileAcceleratesFastMotion confirms the smooth variant
// still accelerates once speed crosses the threshold, rather than
// being a no-op filter.
func TestSmoothProfileAcceleratesFastMotion(t *testing.T) {
	f := accel.NewSmooth(accel.DefaultMouseDPI)

	var timeUS int64
	var out accel.Delta
	for i := 0; i < 20; i++ {
		timeUS += 1000 // 1ms between samples, well above DefaultThreshold
		out = f.Apply(accel.Delta{X: 5, Y: 0}, timeUS)
	}
	if out.X <= 5 {
		t.Fatalf("fast smooth motion = %v, want accelerated above the raw delta", out.X)
	}
}

func TestDestroyResetsHistory(t *testing.T) {
	f := accel.NewLinear(accel.DefaultMouseDPI)

	var timeUS int64
	for i := 0; i < 5; i++ {
		timeUS += 1000
		f.Apply(accel.Delta{X: 5, Y: 0}, timeUS)
	}

	f.Destroy()

	fresh := accel.NewLinear(accel.DefaultMouseDPI)
	got := f.Apply(accel.Delta{X: 5, Y: 0}, 1000)
	want := fresh.Apply(accel.Delta{X: 5, Y: 0}, 1000)
	if got != want {
		t.Fatalf("Apply after Destroy = %+v, want %+v (a filter with no history)", got, want)
	}
}
