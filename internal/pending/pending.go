// Package pending implements the per-device pending-event state
// machine: it accumulates rel/abs/multitouch field updates and flushes
// at most one semantic event per SYN_REPORT (or earlier, when a
// conflicting field update forces an early flush), mirroring the
// evdev_flush_pending_event / fallback_process logic in evdev.c.
package pending

import (
	"seatcore.dev/seatcore/internal/rawevent"
	"seatcore.dev/seatcore/internal/slotalloc"
)

// DefaultAxisStepDistance scales a single REL_WHEEL/REL_HWHEEL click
// into a scroll step, DEFAULT_AXIS_STEP_DISTANCE in evdev.c.
const DefaultAxisStepDistance = 10

// Tag is the pending-event state variable from spec.md §3.
type Tag int

const (
	TagNone Tag = iota
	TagRelativeMotion
	TagAbsoluteMotion
	TagAbsoluteMTDown
	TagAbsoluteMTMotion
	TagAbsoluteMTUp
	TagAbsoluteTouchDown
	TagAbsoluteTouchUp
)

// Kind identifies what a Flushed result represents.
type Kind int

const (
	KindRelativeMotion Kind = iota
	KindAbsoluteMotion
	KindMTDown
	KindMTMotion
	KindMTUp
	KindTouchDown
	KindTouchUp
	KindScrollV
	KindScrollH
	KindProtocolViolation
)

// Flushed is one semantic event produced by a flush. Fields not
// relevant to Kind are left zero.
type Flushed struct {
	Kind   Kind
	TimeMS int64

	DX, DY float64 // KindRelativeMotion, KindScrollV/H
	X, Y   float64 // KindAbsoluteMotion, KindMTDown/Motion, KindTouchDown

	Slot     int // device multitouch slot index, or -1 for non-MT
	SeatSlot int // allocated seat slot, or slotalloc.None
}

// takenWithoutSeat marks a slot that went down while the seat was
// saturated: it owns no seat slot and must emit nothing until its up,
// per spec.md §9's saturation open question.
const takenWithoutSeat = -2

// SlotRecord is the per-multitouch-slot state from spec.md §3.
type SlotRecord struct {
	X, Y     float64
	SeatSlot int
}

// State is one device's pending-event state machine. It is not safe
// for concurrent use; it is owned exclusively by the seat's single
// processing goroutine.
type State struct {
	seat *slotalloc.Bitmap

	tag Tag

	relDX, relDY float64
	absX, absY   float64

	isMT       bool
	curSlot    int
	slots      []SlotRecord
	touchSeatSlot int // non-MT BTN_TOUCH seat slot, spec's abs.seat_slot
}

// New returns a State for a device that shares seat's slot bitmap.
// nSlots is the device's multitouch slot count (0 for a non-MT
// device).
func New(seat *slotalloc.Bitmap, nSlots int) *State {
	slots := make([]SlotRecord, nSlots)
	for i := range slots {
		slots[i].SeatSlot = slotalloc.None
	}
	return &State{
		seat:          seat,
		isMT:          nSlots > 0,
		slots:         slots,
		touchSeatSlot: slotalloc.None,
	}
}

// Tag reports the current pending-event tag.
func (s *State) Tag() Tag { return s.tag }

// IsMT reports whether this device was configured with multitouch
// slots.
func (s *State) IsMT() bool { return s.isMT }

// TouchSeatSlot returns the seat slot currently owned by this
// device's single (non-MT) touch, or slotalloc.None if no touch is
// active or it is taken-without-a-seat-slot (spec.md §9 saturation).
func (s *State) TouchSeatSlot() int {
	if s.touchSeatSlot < 0 {
		return slotalloc.None
	}
	return s.touchSeatSlot
}

// Feed processes one raw REL/ABS/SYN event, returning zero or more
// Flushed results: a flush forced by a conflicting update (if any),
// followed by any immediate event (scroll). EV_KEY events other than
// BTN_TOUCH are not handled here; callers must call Flush explicitly
// before their own key bookkeeping, per spec.md §4.1's "otherwise
// flush pending" rule.
func (s *State) Feed(ev rawevent.Event) []Flushed {
	switch ev.Type {
	case rawevent.EV_REL:
		return s.feedRel(ev)
	case rawevent.EV_ABS:
		return s.feedAbs(ev)
	case rawevent.EV_SYN:
		if ev.Code == rawevent.SYN_REPORT {
			return s.Flush(ev.TimeMS)
		}
	}
	return nil
}

func (s *State) feedRel(ev rawevent.Event) []Flushed {
	switch ev.Code {
	case rawevent.REL_X, rawevent.REL_Y:
		var out []Flushed
		if s.tag != TagRelativeMotion {
			out = s.Flush(ev.TimeMS)
		}
		if ev.Code == rawevent.REL_X {
			s.relDX += float64(ev.Value)
		} else {
			s.relDY += float64(ev.Value)
		}
		s.tag = TagRelativeMotion
		return out

	case rawevent.REL_WHEEL:
		out := s.Flush(ev.TimeMS)
		step := float64(ev.Value) * DefaultAxisStepDistance
		return append(out, Flushed{Kind: KindScrollV, TimeMS: ev.TimeMS, DY: -step})

	case rawevent.REL_HWHEEL:
		out := s.Flush(ev.TimeMS)
		if ev.Value != 1 && ev.Value != -1 {
			// Open question in spec.md §9: values outside ±1 are
			// ignored for the horizontal axis.
			return out
		}
		step := float64(ev.Value) * DefaultAxisStepDistance
		return append(out, Flushed{Kind: KindScrollH, TimeMS: ev.TimeMS, DX: step})
	}
	return nil
}

func (s *State) feedAbs(ev rawevent.Event) []Flushed {
	switch ev.Code {
	case rawevent.ABS_X, rawevent.ABS_Y:
		if ev.Code == rawevent.ABS_X {
			s.absX = float64(ev.Value)
		} else {
			s.absY = float64(ev.Value)
		}
		if s.tag == TagNone {
			s.tag = TagAbsoluteMotion
		}
		return nil

	case rawevent.ABS_MT_SLOT:
		out := s.Flush(ev.TimeMS)
		if slot := int(ev.Value); slot >= 0 && slot < len(s.slots) {
			s.curSlot = slot
		}
		return out

	case rawevent.ABS_MT_TRACKING_ID:
		var out []Flushed
		if s.tag != TagNone && s.tag != TagAbsoluteMTMotion {
			out = s.Flush(ev.TimeMS)
		}
		if ev.Value >= 0 {
			s.tag = TagAbsoluteMTDown
		} else {
			s.tag = TagAbsoluteMTUp
		}
		return out

	case rawevent.ABS_MT_POSITION_X, rawevent.ABS_MT_POSITION_Y:
		if s.curSlot >= 0 && s.curSlot < len(s.slots) {
			if ev.Code == rawevent.ABS_MT_POSITION_X {
				s.slots[s.curSlot].X = float64(ev.Value)
			} else {
				s.slots[s.curSlot].Y = float64(ev.Value)
			}
		}
		if s.tag == TagNone {
			s.tag = TagAbsoluteMTMotion
		}
		return nil
	}
	return nil
}

// FeedTouchButton handles BTN_TOUCH on a non-multitouch device. Per
// spec.md §4.1 it flushes pending first unless the pending event is
// ABSOLUTE_MOTION, in which case the motion and the touch boundary are
// merged into a single down/up event carrying the final coordinates.
func (s *State) FeedTouchButton(pressed bool, timeMS int64) []Flushed {
	var out []Flushed
	if s.tag != TagAbsoluteMotion {
		out = s.Flush(timeMS)
	}
	if pressed {
		s.tag = TagAbsoluteTouchDown
	} else {
		s.tag = TagAbsoluteTouchUp
	}
	return out
}

// Flush finalizes whatever event is pending and resets the tag to
// NONE, per spec.md §4.1's flush semantics. Callers invoke it directly
// before key bookkeeping ("otherwise flush pending") and indirectly
// through Feed on SYN_REPORT.
func (s *State) Flush(timeMS int64) []Flushed {
	tag := s.tag
	s.tag = TagNone

	switch tag {
	case TagNone:
		return nil
	case TagRelativeMotion:
		dx, dy := s.relDX, s.relDY
		s.relDX, s.relDY = 0, 0
		return []Flushed{{Kind: KindRelativeMotion, TimeMS: timeMS, DX: dx, DY: dy}}
	case TagAbsoluteMotion:
		return []Flushed{{Kind: KindAbsoluteMotion, TimeMS: timeMS, X: s.absX, Y: s.absY, Slot: -1}}
	case TagAbsoluteMTDown:
		return s.flushMTDown(timeMS)
	case TagAbsoluteMTUp:
		return s.flushMTUp(timeMS)
	case TagAbsoluteMTMotion:
		return s.flushMTMotion(timeMS)
	case TagAbsoluteTouchDown:
		return s.flushTouchDown(timeMS)
	case TagAbsoluteTouchUp:
		return s.flushTouchUp(timeMS)
	}
	return nil
}

func (s *State) flushMTDown(timeMS int64) []Flushed {
	rec := &s.slots[s.curSlot]
	if rec.SeatSlot != slotalloc.None {
		// A compliant driver never double-downs the same slot.
		return []Flushed{{Kind: KindProtocolViolation, TimeMS: timeMS, Slot: s.curSlot}}
	}

	seatSlot, ok := s.seat.Acquire()
	if !ok {
		rec.SeatSlot = takenWithoutSeat
		return nil
	}
	rec.SeatSlot = seatSlot
	return []Flushed{{Kind: KindMTDown, TimeMS: timeMS, X: rec.X, Y: rec.Y, Slot: s.curSlot, SeatSlot: seatSlot}}
}

func (s *State) flushMTUp(timeMS int64) []Flushed {
	rec := &s.slots[s.curSlot]
	seatSlot := rec.SeatSlot
	rec.SeatSlot = slotalloc.None

	if seatSlot < 0 {
		return nil
	}
	s.seat.Release(seatSlot)
	return []Flushed{{Kind: KindMTUp, TimeMS: timeMS, Slot: s.curSlot, SeatSlot: seatSlot}}
}

func (s *State) flushMTMotion(timeMS int64) []Flushed {
	rec := &s.slots[s.curSlot]
	if rec.SeatSlot < 0 {
		return nil
	}
	return []Flushed{{Kind: KindMTMotion, TimeMS: timeMS, X: rec.X, Y: rec.Y, Slot: s.curSlot, SeatSlot: rec.SeatSlot}}
}

func (s *State) flushTouchDown(timeMS int64) []Flushed {
	if s.touchSeatSlot != slotalloc.None {
		return []Flushed{{Kind: KindProtocolViolation, TimeMS: timeMS, Slot: -1}}
	}
	seatSlot, ok := s.seat.Acquire()
	if !ok {
		s.touchSeatSlot = takenWithoutSeat
		return nil
	}
	s.touchSeatSlot = seatSlot
	return []Flushed{{Kind: KindTouchDown, TimeMS: timeMS, X: s.absX, Y: s.absY, Slot: -1, SeatSlot: seatSlot}}
}

func (s *State) flushTouchUp(timeMS int64) []Flushed {
	seatSlot := s.touchSeatSlot
	s.touchSeatSlot = slotalloc.None

	if seatSlot < 0 {
		return nil
	}
	s.seat.Release(seatSlot)
	return []Flushed{{Kind: KindTouchUp, TimeMS: timeMS, Slot: -1, SeatSlot: seatSlot}}
}

// ReleaseActiveSlots returns every seat slot this device currently
// owns to the seat bitmap and clears device-local slot state, without
// emitting touch-up notifications. Used on device removal, where the
// caller is responsible for synthesizing its own notifications if the
// protocol requires them.
func (s *State) ReleaseActiveSlots() {
	for i := range s.slots {
		if s.slots[i].SeatSlot >= 0 {
			s.seat.Release(s.slots[i].SeatSlot)
		}
		s.slots[i].SeatSlot = slotalloc.None
	}
	if s.touchSeatSlot >= 0 {
		s.seat.Release(s.touchSeatSlot)
	}
	s.touchSeatSlot = slotalloc.None
}
