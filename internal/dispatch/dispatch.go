// Package dispatch implements the polymorphic process/destroy
// dispatch table from spec.md §4.5: a Fallback implementation routes
// typed raw events into the pending-event state machine, applies
// calibration and motion filtering on flush, and emits notifications.
// A Touchpad variant is out of scope (spec.md §1) and is represented
// only as the same Dispatcher interface, left for an external
// collaborator to implement.
package dispatch

import (
	"log/slog"

	"seatcore.dev/seatcore/internal/accel"
	"seatcore.dev/seatcore/internal/keycount"
	"seatcore.dev/seatcore/internal/notify"
	"seatcore.dev/seatcore/internal/pending"
	"seatcore.dev/seatcore/internal/rawevent"
)

// Host is everything a Dispatcher needs from the owning device to
// process one event: pending-event state, key bookkeeping, capability
// flags, calibration, and the sink to notify. internal/device's Device
// implements this.
type Host interface {
	ID() notify.DeviceID
	Sink() notify.Sink
	Logger() *slog.Logger

	Pending() *pending.State
	Keys() *keycount.Counter

	IsPointer() bool
	IsKeyboard() bool
	IsTouch() bool

	// ApplyCalibration transforms device-space (x, y) into the
	// calibrated coordinate space. Devices with no calibration
	// capability return the input unchanged.
	ApplyCalibration(x, y float64) (float64, float64)

	// MotionFilter returns the device's pointer acceleration filter,
	// or nil for the identity filter (spec.md §4.4 permits a null
	// filter).
	MotionFilter() accel.Filter
}

// Dispatcher is the polymorphic process/destroy surface from
// spec.md §4.5.
type Dispatcher interface {
	Process(host Host, ev rawevent.Event)
	Destroy(host Host)
}

// Fallback is the default Dispatcher: EV_REL -> relative motion,
// EV_ABS -> absolute motion (single-touch or multitouch by event code),
// EV_KEY -> key/button bookkeeping, EV_SYN -> flush plus an optional
// touch frame.
type Fallback struct{}

func (Fallback) Process(host Host, ev rawevent.Event) {
	switch ev.Type {
	case rawevent.EV_KEY:
		processKey(host, ev)
		return
	case rawevent.EV_REL, rawevent.EV_ABS:
		emitAll(host, host.Pending().Feed(ev))
		return
	case rawevent.EV_SYN:
		if ev.Code != rawevent.SYN_REPORT {
			return
		}
		touchClass := isTouchClassTag(host.Pending().Tag())
		emitAll(host, host.Pending().Feed(ev))
		if host.IsTouch() && touchClass {
			host.Sink().TouchFrame(host.ID(), ev.TimeMS)
		}
	}
}

func (Fallback) Destroy(host Host) {
	host.Pending().ReleaseActiveSlots()
}

func processKey(host Host, ev rawevent.Event) {
	if ev.Code == rawevent.BTN_TOUCH && !host.Pending().IsMT() {
		emitAll(host, host.Pending().FeedTouchButton(ev.Value != 0, ev.TimeMS))
		return
	}

	emitAll(host, host.Pending().Flush(ev.TimeMS))

	if ev.Value == 2 {
		// Kernel autorepeat never reaches bookkeeping.
		return
	}

	pressed := ev.Value != 0
	var transitioned bool
	if pressed {
		var count int
		transitioned, count = host.Keys().Press(ev.Code)
		if count > keycount.WarnThreshold {
			host.Logger().Warn("press counter exceeded threshold", "code", ev.Code, "count", count)
		}
	} else {
		if !host.Keys().IsDown(ev.Code) {
			host.Logger().Debug("release of code with no matching press, dropping", "code", ev.Code)
			return
		}
		transitioned = host.Keys().Release(ev.Code)
	}
	if !transitioned {
		return
	}

	state := notify.Released
	if pressed {
		state = notify.Pressed
	}

	switch keycount.Classify(ev.Code) {
	case keycount.Key:
		if host.IsKeyboard() {
			host.Sink().KeyboardKey(host.ID(), ev.TimeMS, ev.Code, state)
		}
	case keycount.Button:
		if host.IsPointer() {
			host.Sink().PointerButton(host.ID(), ev.TimeMS, ev.Code, state)
		}
	}
}

func isTouchClassTag(tag pending.Tag) bool {
	switch tag {
	case pending.TagAbsoluteMotion, pending.TagAbsoluteMTDown, pending.TagAbsoluteMTMotion,
		pending.TagAbsoluteMTUp, pending.TagAbsoluteTouchDown, pending.TagAbsoluteTouchUp:
		return true
	}
	return false
}

func emitAll(host Host, flushed []pending.Flushed) {
	for _, f := range flushed {
		emit(host, f)
	}
}

func emit(host Host, f pending.Flushed) {
	sink := host.ID()
	switch f.Kind {
	case pending.KindRelativeMotion:
		dx, dy := f.DX, f.DY
		if filter := host.MotionFilter(); filter != nil {
			// f.TimeMS is milliseconds; the accelerator's whole curve
			// (DefaultThreshold, motionTimeoutUS, ...) is defined in
			// microseconds, so scale before Apply or every delta reads
			// as ~1000x faster than it is.
			d := filter.Apply(accel.Delta{X: dx, Y: dy}, f.TimeMS*1000)
			dx, dy = d.X, d.Y
		}
		if dx == 0 && dy == 0 {
			return
		}
		if host.IsPointer() {
			host.Sink().PointerMotion(sink, f.TimeMS, dx, dy)
		}

	case pending.KindAbsoluteMotion:
		x, y := host.ApplyCalibration(f.X, f.Y)
		if host.IsTouch() {
			if seatSlot := host.Pending().TouchSeatSlot(); seatSlot >= 0 {
				host.Sink().TouchMotion(sink, f.TimeMS, -1, seatSlot, x, y)
			}
			return
		}
		if host.IsPointer() {
			host.Sink().PointerMotionAbsolute(sink, f.TimeMS, x, y)
		}

	case pending.KindMTDown:
		x, y := host.ApplyCalibration(f.X, f.Y)
		host.Sink().TouchDown(sink, f.TimeMS, f.Slot, f.SeatSlot, x, y)

	case pending.KindMTMotion:
		x, y := host.ApplyCalibration(f.X, f.Y)
		host.Sink().TouchMotion(sink, f.TimeMS, f.Slot, f.SeatSlot, x, y)

	case pending.KindMTUp:
		host.Sink().TouchUp(sink, f.TimeMS, f.Slot, f.SeatSlot)

	case pending.KindTouchDown:
		x, y := host.ApplyCalibration(f.X, f.Y)
		host.Sink().TouchDown(sink, f.TimeMS, -1, f.SeatSlot, x, y)

	case pending.KindTouchUp:
		host.Sink().TouchUp(sink, f.TimeMS, -1, f.SeatSlot)

	case pending.KindScrollV:
		host.Sink().PointerAxis(sink, f.TimeMS, notify.VScroll, f.DY)

	case pending.KindScrollH:
		host.Sink().PointerAxis(sink, f.TimeMS, notify.HScroll, f.DX)

	case pending.KindProtocolViolation:
		host.Logger().Warn("protocol violation: double multitouch down on slot", "slot", f.Slot)
	}
}
