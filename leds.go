package seatcore

import (
	"seatcore.dev/seatcore/internal/device"
	"seatcore.dev/seatcore/internal/notify"
	"seatcore.dev/seatcore/internal/rawevent"
)

// lockLEDSink wraps the seat's real sink, watching every KeyboardKey
// call for the three lock keys and pushing the resulting NUM/CAPS/
// SCROLL lock state to every keyboard-capable device on the seat, per
// spec.md §4.7. This is the tracker UpdateLEDs needs a caller from:
// without it, LED state only ever moves in response to an external
// set_leds request, never in response to the keys that actually toggle
// lock state.
type lockLEDSink struct {
	notify.Sink
	seat  *Seat
	state device.LEDState
}

func (s *lockLEDSink) KeyboardKey(dev notify.DeviceID, timeMS int64, code uint16, state notify.ButtonState) {
	s.Sink.KeyboardKey(dev, timeMS, code, state)

	if state != notify.Pressed {
		return
	}
	switch code {
	case rawevent.KEY_NUMLOCK:
		s.state.NumLock = !s.state.NumLock
	case rawevent.KEY_CAPSLOCK:
		s.state.CapsLock = !s.state.CapsLock
	case rawevent.KEY_SCROLLLOCK:
		s.state.ScrollLock = !s.state.ScrollLock
	default:
		return
	}
	s.seat.broadcastLEDs(s.state)
}

// broadcastLEDs pushes state, masked down to the LEDs the seat's
// config exposes, to every attached keyboard-capable device.
func (s *Seat) broadcastLEDs(state device.LEDState) {
	state.NumLock = state.NumLock && s.cfg.LEDs.NumLock
	state.CapsLock = state.CapsLock && s.cfg.LEDs.CapsLock
	state.ScrollLock = state.ScrollLock && s.cfg.LEDs.ScrollLock

	for _, dev := range s.devices {
		if dev.IsKeyboard() {
			dev.UpdateLEDs(state)
		}
	}
}
