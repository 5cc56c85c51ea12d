// Package accel implements the pointer-motion acceleration filter:
// a velocity tracker ring buffer feeding a profile curve selected at
// construction, mirroring motion_filter_interface/pointer_accelerator
// in filter.c.
package accel

import "math"

// DefaultMouseDPI is the DPI pointer-acceleration math is normalized
// against, matching DEFAULT_MOUSE_DPI in filter.c.
const DefaultMouseDPI = 1000

// Default curve constants, in units/µs and unitless factors, taken
// verbatim from filter.c's DEFAULT_THRESHOLD/DEFAULT_ACCELERATION/
// DEFAULT_INCLINE.
const (
	DefaultThreshold    = 0.4 / 1000.0 // v_ms2us(0.4)
	MinimumThreshold    = 0.2 / 1000.0 // v_ms2us(0.2)
	DefaultAcceleration = 2.0
	DefaultIncline      = 1.1
)

// numTrackers is the ring-buffer depth, NUM_POINTER_TRACKERS in filter.c.
const numTrackers = 16

// maxVelocityDiff bounds how much consecutive tracker velocities may
// differ before averaging stops, MAX_VELOCITY_DIFF in filter.c
// (v_ms2us(1)).
const maxVelocityDiff = 1.0 / 1000.0

// motionTimeoutUS is the time window, in microseconds, beyond which a
// tracker sample is considered stale. MOTION_TIMEOUT in filter.c.
const motionTimeoutUS = 1000 * 1000

// Delta is a 2D motion delta in device units.
type Delta struct {
	X, Y float64
}

func direction(d Delta) uint32 {
	if d.X == 0 && d.Y == 0 {
		return 0
	}
	var dir uint32
	switch {
	case d.X > 0:
		dir |= 1 << 0
	case d.X < 0:
		dir |= 1 << 1
	}
	switch {
	case d.Y > 0:
		dir |= 1 << 2
	case d.Y < 0:
		dir |= 1 << 3
	}
	return dir
}

type tracker struct {
	delta  Delta
	timeUS int64
	dir    uint32
}

// Filter is the polymorphic pointer-acceleration trait from filter.c's
// struct motion_filter_interface: apply the configured curve to a raw
// delta, or release whatever per-filter state the variant holds.
// internal/dispatch drives exactly one Filter per pointer-capable
// device, fed from the single seat processing goroutine; neither
// method is safe for concurrent use.
type Filter interface {
	// Apply feeds delta into the filter's velocity history at timeUS
	// (microseconds) and returns the accelerated delta.
	Apply(delta Delta, timeUS int64) Delta

	// Destroy releases the filter's velocity history, the Go analogue
	// of accelerator_destroy's free(). Call it once, when the owning
	// device is removed.
	Destroy()
}

// profileFunc computes the unitless acceleration factor for a given
// speed, the Go analogue of filter.c's accel_profile_func_t. Each
// constructor below picks one.
type profileFunc func(a *accelerator, speedIn float64) float64

// accelerator holds the velocity-tracker ring buffer shared by every
// profile variant; profile supplies the variant-specific curve,
// mirroring accelerator_filter_generic dispatching through
// motion_filter_interface.filter into a profile callback.
type accelerator struct {
	trackers   [numTrackers]tracker
	curTracker int

	lastVelocity float64

	dpi       int
	threshold float64
	accel     float64
	incline   float64

	profile profileFunc
}

func newAccelerator(dpi int, profile profileFunc) *accelerator {
	if dpi <= 0 {
		dpi = DefaultMouseDPI
	}
	return &accelerator{
		dpi:       dpi,
		threshold: DefaultThreshold,
		accel:     DefaultAcceleration,
		incline:   DefaultIncline,
		profile:   profile,
	}
}

// NewLinear builds a Filter using the DPI-normalized linear
// acceleration profile (pointer_accel_profile_linear): below 0.07ms a
// factor under 1.0 favors precision for very slow, deliberate motion,
// rising to a plateau around 1.0 at the threshold, then a
// constant-slope incline, capped at accel.
func NewLinear(dpi int) Filter {
	return newAccelerator(dpi, linearProfile)
}

// NewSmooth builds a Filter using the smooth-simple profile
// (pointer_accel_profile_smooth_simple in filter.h): "similar to
// nonaccelerated but with a smooth transition between accelerated and
// non-accelerated" — unlike the linear profile it carries no
// below-threshold precision branch, so slow motion passes through at
// an unmodified factor of 1 instead of being damped.
func NewSmooth(dpi int) Filter {
	return newAccelerator(dpi, smoothProfile)
}

func (a *accelerator) feedTrackers(delta Delta, timeUS int64) {
	for i := range a.trackers {
		a.trackers[i].delta.X += delta.X
		a.trackers[i].delta.Y += delta.Y
	}

	cur := (a.curTracker + 1) % numTrackers
	a.curTracker = cur

	a.trackers[cur].delta = Delta{}
	a.trackers[cur].timeUS = timeUS
	a.trackers[cur].dir = direction(delta)
}

func (a *accelerator) trackerByOffset(offset int) *tracker {
	idx := (a.curTracker + numTrackers - offset) % numTrackers
	return &a.trackers[idx]
}

func trackerVelocity(t *tracker, timeUS int64) float64 {
	tdelta := float64(timeUS-t.timeUS) + 1
	return math.Hypot(t.delta.X, t.delta.Y) / tdelta
}

func velocityAfterTimeout(t *tracker) float64 {
	return trackerVelocity(t, t.timeUS+motionTimeoutUS)
}

// calculateVelocity averages the tracker history, stopping at a
// direction change, a timeout, or too large a jump from the initial
// sample, mirroring calculate_velocity in filter.c.
func (a *accelerator) calculateVelocity(timeUS int64) float64 {
	dir := a.trackerByOffset(0).dir

	var result, initial float64
	for offset := 1; offset < numTrackers; offset++ {
		t := a.trackerByOffset(offset)

		if t.timeUS > timeUS {
			break
		}

		if timeUS-t.timeUS > motionTimeoutUS {
			if offset == 1 {
				result = velocityAfterTimeout(t)
			}
			break
		}

		velocity := trackerVelocity(t, timeUS)

		dir &= t.dir
		if dir == 0 {
			if offset == 1 {
				result = velocity
			}
			break
		}

		if initial == 0 {
			result, initial = velocity, velocity
		} else {
			if diff := math.Abs(initial - velocity); diff > maxVelocityDiff {
				break
			}
			result = velocity
		}
	}

	return result
}

// linearProfile is pointer_accel_profile_linear: a double-incline
// curve with a plateau at 1.0 from 0.07 units/ms up to a.threshold.
func linearProfile(a *accelerator, speedIn float64) float64 {
	speedIn = speedIn * DefaultMouseDPI / float64(a.dpi)

	var factor float64
	switch {
	case speedIn*1000 < 0.07:
		// Below 0.07ms, favor precision over speed: factor rises
		// linearly from 0.3 at zero speed to 1.0 at 0.07ms.
		factor = 10*speedIn*1000 + 0.3
	case speedIn < a.threshold:
		factor = 1
	default:
		factor = a.incline*(speedIn-a.threshold)*1000 + 1
	}

	if factor > a.accel {
		factor = a.accel
	}
	return factor
}

// smoothProfile is pointer_accel_profile_smooth_simple: unaccelerated
// (factor 1) below a.threshold, the same incline as linearProfile
// above it, with no below-threshold precision-damping branch.
func smoothProfile(a *accelerator, speedIn float64) float64 {
	speedIn = speedIn * DefaultMouseDPI / float64(a.dpi)

	factor := 1.0
	if speedIn >= a.threshold {
		factor = a.incline*(speedIn-a.threshold)*1000 + 1
	}

	if factor > a.accel {
		factor = a.accel
	}
	return factor
}

// calculateAcceleration applies Simpson's rule across the current and
// previous velocity to smooth step changes, mirroring
// calculate_acceleration in filter.c.
func (a *accelerator) calculateAcceleration(velocity, lastVelocity float64) float64 {
	factor := a.profile(a, velocity)
	factor += a.profile(a, lastVelocity)
	factor += 4.0 * a.profile(a, (lastVelocity+velocity)/2)
	return factor / 6.0
}

// Apply feeds delta into the tracker history at timeUS and returns the
// accelerated delta, mirroring accelerator_filter_generic in filter.c.
func (a *accelerator) Apply(delta Delta, timeUS int64) Delta {
	a.feedTrackers(delta, timeUS)
	velocity := a.calculateVelocity(timeUS)
	factor := a.calculateAcceleration(velocity, a.lastVelocity)
	a.lastVelocity = velocity

	return Delta{X: factor * delta.X, Y: factor * delta.Y}
}

// Destroy releases the tracker history, the Go analogue of
// accelerator_destroy's free() calls.
func (a *accelerator) Destroy() {
	a.trackers = [numTrackers]tracker{}
	a.curTracker = 0
	a.lastVelocity = 0
}

var _ Filter = (*accelerator)(nil)
