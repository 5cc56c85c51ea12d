package device

import "seatcore.dev/seatcore/internal/rawevent"

// LEDReader is the optional capability a RawSource may implement to
// report its current LED state via EVIOCGLED, the read-side
// counterpart of LEDWriter.
type LEDReader interface {
	CurrentLEDs() ([]byte, error)
}

// LEDState is the NUM/CAPS/SCROLL lock state a seat-level keyboard
// tracker pushes down to every KEYBOARD-capable device, per spec.md
// §4.7.
type LEDState struct {
	NumLock    bool
	CapsLock   bool
	ScrollLock bool
}

// UpdateLEDs writes LEDState to the device's source if it implements
// LEDWriter. This is best-effort: a source that can't accept LED
// writes (or fails to) is silently skipped, since LED state never
// gates event delivery.
func (d *Device) UpdateLEDs(state LEDState) {
	w, ok := d.source.(LEDWriter)
	if !ok {
		return
	}
	states := map[uint16]bool{
		rawevent.LED_NUML:    state.NumLock,
		rawevent.LED_CAPSL:   state.CapsLock,
		rawevent.LED_SCROLLL: state.ScrollLock,
	}
	if err := w.WriteLEDs(states); err != nil {
		d.logger.Debug("LED update failed", "error", err)
	}
}

// CurrentLEDs reports the device's current lock-LED state via
// EVIOCGLED, if its source implements LEDReader. ok is false if the
// source doesn't support the query.
func (d *Device) CurrentLEDs() (state LEDState, ok bool) {
	r, isReader := d.source.(LEDReader)
	if !isReader {
		return LEDState{}, false
	}
	bits, err := r.CurrentLEDs()
	if err != nil {
		d.logger.Debug("query current LED state failed", "error", err)
		return LEDState{}, false
	}
	return LEDState{
		NumLock:    bitSet(bits, rawevent.LED_NUML),
		CapsLock:   bitSet(bits, rawevent.LED_CAPSL),
		ScrollLock: bitSet(bits, rawevent.LED_SCROLLL),
	}, true
}

func bitSet(bits []byte, code uint16) bool {
	i := int(code) / 8
	if i >= len(bits) {
		return false
	}
	return bits[i]&(1<<(code%8)) != 0
}
