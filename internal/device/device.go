// Package device implements the per-device lifecycle from spec.md
// §4.6–§4.7: capability classification at create, the event drain
// loop, release-on-remove, and best-effort LED writes. A Device
// implements dispatch.Host so internal/dispatch's Fallback can process
// its events without depending on this package.
package device

import (
	"errors"
	"fmt"

	"log/slog"

	"seatcore.dev/seatcore/internal/accel"
	"seatcore.dev/seatcore/internal/calib"
	"seatcore.dev/seatcore/internal/dispatch"
	"seatcore.dev/seatcore/internal/keycount"
	"seatcore.dev/seatcore/internal/matrix"
	"seatcore.dev/seatcore/internal/notify"
	"seatcore.dev/seatcore/internal/pending"
	"seatcore.dev/seatcore/internal/rawevent"
	"seatcore.dev/seatcore/internal/slotalloc"
)

// ErrUnhandled is the DeviceUnhandled sentinel from spec.md §7: a
// device whose capability bitmaps classify into none of
// POINTER/KEYBOARD/TOUCH. Distinct from a nil error so callers can
// tell "not interesting" apart from "failed to open".
var ErrUnhandled = errors.New("device: no capability classified this device")

// Capabilities is the classification result from spec.md §4.6.
type Capabilities struct {
	Pointer  bool
	Keyboard bool
	Touch    bool
}

// LEDWriter is the optional capability a RawSource may implement to
// support the best-effort LED update in spec.md §4.7. Sources that
// don't implement it simply never receive LED writes.
type LEDWriter interface {
	WriteLEDs(states map[uint16]bool) error
}

// Config assembles a Device without touching any real hardware,
// the seam internal/device's tests and internal/device.Create both
// build on.
type Config struct {
	ID     notify.DeviceID
	Source rawevent.RawSource
	Sink   notify.Sink
	Logger *slog.Logger
	Seat   *slotalloc.Bitmap

	Caps      Capabilities
	SlotCount int

	HasAbsXY bool
	AbsX     calib.AbsRange
	AbsY     calib.AbsRange

	// ResolutionX/Y are each axis's EVIOCGABS resolution in units/mm.
	// A zero value is forced to 1 and recorded as faked, per spec.md
	// §3's invariant on physical-size queries.
	ResolutionX int32
	ResolutionY int32

	// DefaultMatrix seeds the default calibration, e.g. from the
	// LIBINPUT_CALIBRATION_MATRIX udev property (spec.md §6). Identity
	// if absent.
	DefaultMatrix [6]float32

	Dispatcher   dispatch.Dispatcher
	MotionFilter accel.Filter
}

// Device is one configured evdev device, owned exclusively by the
// seat's device list for its lifetime (spec.md §3).
type Device struct {
	id     notify.DeviceID
	source rawevent.RawSource
	sink   notify.Sink
	logger *slog.Logger
	seat   *slotalloc.Bitmap

	caps Capabilities

	pending *pending.State
	keys    *keycount.Counter

	hasAbsXY           bool
	absX, absY         calib.AbsRange
	resX, resY         int32
	fakeResX, fakeResY bool

	userMatrix       [6]float32
	defaultMatrix    [6]float32
	calibration      matrix.Matrix
	applyCalibration bool

	dispatcher dispatch.Dispatcher
	filter     accel.Filter
}

// New builds a Device from an explicit Config, bypassing any ioctl
// classification. Create uses this after querying a real evdev.Device;
// tests use it directly with a fake rawevent.RawSource.
func New(cfg Config) *Device {
	dispatcher := cfg.Dispatcher
	if dispatcher == nil {
		dispatcher = dispatch.Fallback{}
	}

	d := &Device{
		id:         cfg.ID,
		source:     cfg.Source,
		sink:       cfg.Sink,
		logger:     cfg.Logger,
		seat:       cfg.Seat,
		caps:       cfg.Caps,
		pending:    pending.New(cfg.Seat, cfg.SlotCount),
		keys:       keycount.New(),
		hasAbsXY:   cfg.HasAbsXY,
		absX:       cfg.AbsX,
		absY:       cfg.AbsY,
		dispatcher: dispatcher,
		filter:     cfg.MotionFilter,
	}

	d.resX, d.fakeResX = seedResolution(cfg.ResolutionX)
	d.resY, d.fakeResY = seedResolution(cfg.ResolutionY)

	d.defaultMatrix = cfg.DefaultMatrix
	if d.defaultMatrix == ([6]float32{}) {
		d.defaultMatrix = matrix.Identity().ToArray6()
	}
	d.applyCalibrationMatrix(d.defaultMatrix)

	return d
}

// seedResolution forces a zero resolution to 1 and reports it as
// faked, per spec.md §3.
func seedResolution(res int32) (int32, bool) {
	if res == 0 {
		return 1, true
	}
	return res, false
}

func (d *Device) applyCalibrationMatrix(m [6]float32) {
	d.userMatrix = m
	if !d.hasAbsXY {
		d.calibration = matrix.Identity()
		d.applyCalibration = false
		return
	}
	eff, active := calib.Compose(d.absX, d.absY, m)
	d.calibration = eff
	d.applyCalibration = active
}

// SetCalibration installs a new user calibration matrix. It always
// succeeds, per spec.md §4.3/§7.
func (d *Device) SetCalibration(m [6]float32) {
	d.applyCalibrationMatrix(m)
}

// Calibration returns the current user matrix and whether it is
// non-default (non-identity), the get_calibration contract from
// spec.md §6.
func (d *Device) Calibration() ([6]float32, bool) {
	return d.userMatrix, d.applyCalibration
}

// DefaultCalibration returns the matrix the device was seeded with at
// attach.
func (d *Device) DefaultCalibration() ([6]float32, bool) {
	return d.defaultMatrix, d.defaultMatrix != matrix.Identity().ToArray6()
}

// HasCalibrationMatrix reports whether the device has an absolute X/Y
// axis pair (ABS_X/ABS_Y, or ABS_MT_POSITION_X/Y when Create falls back
// to it), the precondition for the calibration capability to be active
// at all.
func (d *Device) HasCalibrationMatrix() bool {
	return d.hasAbsXY
}

// PhysicalSizeMM returns the device's physical extent in millimeters,
// or ok=false if either axis has a faked resolution (spec.md §3/§9).
func (d *Device) PhysicalSizeMM() (widthMM, heightMM float64, ok bool) {
	if !d.hasAbsXY || d.fakeResX || d.fakeResY {
		return 0, 0, false
	}
	widthMM = float64(d.absX.Maximum-d.absX.Minimum) / float64(d.resX)
	heightMM = float64(d.absY.Maximum-d.absY.Minimum) / float64(d.resY)
	return widthMM, heightMM, true
}

// dispatch.Host implementation.

func (d *Device) ID() notify.DeviceID  { return d.id }
func (d *Device) Sink() notify.Sink    { return d.sink }
func (d *Device) Logger() *slog.Logger { return d.logger }

func (d *Device) Pending() *pending.State { return d.pending }
func (d *Device) Keys() *keycount.Counter { return d.keys }

func (d *Device) IsPointer() bool  { return d.caps.Pointer }
func (d *Device) IsKeyboard() bool { return d.caps.Keyboard }
func (d *Device) IsTouch() bool    { return d.caps.Touch }

func (d *Device) ApplyCalibration(x, y float64) (float64, float64) {
	if !d.applyCalibration {
		return x, y
	}
	return d.calibration.MultVec(x, y)
}

func (d *Device) MotionFilter() accel.Filter { return d.filter }

// Source returns the device's underlying raw event stream, so a seat
// can run its own per-device reader goroutine against it.
func (d *Device) Source() rawevent.RawSource { return d.source }

// Process routes one raw event through the device's dispatcher.
func (d *Device) Process(ev rawevent.Event) {
	d.dispatcher.Process(d, ev)
}

// Resync recovers from a rawevent.ErrSync overflow: it synthesizes a
// SYN_REPORT to flush whatever frame was in progress, per spec.md
// §4.6/§7's OverflowRecovered handling.
func (d *Device) Resync(timeMS int64) {
	d.logger.Warn("sync dropped, flushing pending frame", "device", fmt.Sprint(d.id))
	d.dispatcher.Process(d, rawevent.Event{Type: rawevent.EV_SYN, Code: rawevent.SYN_REPORT, TimeMS: timeMS})
}

var _ dispatch.Host = (*Device)(nil)
