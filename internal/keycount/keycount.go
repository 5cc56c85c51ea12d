// Package keycount tracks per-key/button press counts so that
// multiple physical sources asserting the same logical key (or a
// device re-sending a held key) never drop a release early, mirroring
// the debounce bookkeeping in gethiox's MIDI key mapper. It also
// classifies codes into KEY/BUTTON/NONE by the closed ranges evdev.c
// uses for get_key_type.
package keycount

import "seatcore.dev/seatcore/internal/rawevent"

// Type is the classification of a key/button code.
type Type int

const (
	None Type = iota
	Key
	Button
)

// Classify maps code to KEY, BUTTON, or NONE by the same closed ranges
// get_key_type uses in evdev.c.
func Classify(code uint16) Type {
	switch {
	case code >= rawevent.KEY_ESC && code <= rawevent.KEY_MICMUTE:
		return Key
	case code >= rawevent.KEY_OK && code <= rawevent.KEY_LIGHTS_TOGGLE:
		return Key
	case code >= rawevent.BTN_MISC && code <= rawevent.BTN_GEAR_UP:
		return Button
	case code >= rawevent.BTN_DPAD_UP && code <= rawevent.BTN_TRIGGER_HAPPY40:
		return Button
	default:
		return None
	}
}

// WarnThreshold is the press count above which a stuck-key warning
// should be logged, per spec.md §4.2.
const WarnThreshold = 32

// Counter tracks outstanding presses per code. A code is considered
// "down" as long as its count is greater than zero; this doubles as
// the release-filtering bitmap spec.md §4.2 describes, since presence
// in the map with a positive count is exactly "currently down".
type Counter struct {
	counts map[uint16]int
}

// New returns an empty Counter.
func New() *Counter {
	return &Counter{counts: make(map[uint16]int)}
}

// Press increments the count for code and reports whether this is the
// code's first press (a 0->1 transition, i.e. whether a down event
// should be emitted) along with the new count, so callers can log a
// stuck-key warning past WarnThreshold without failing the event.
func (c *Counter) Press(code uint16) (firstPress bool, count int) {
	c.counts[code]++
	n := c.counts[code]
	return n == 1, n
}

// Release decrements the count for code and reports whether this was
// the last outstanding press (a 1->0 transition), i.e. whether an up
// event should be emitted. Releasing a code already at zero is a
// no-op and reports false.
func (c *Counter) Release(code uint16) bool {
	n, ok := c.counts[code]
	if !ok || n <= 0 {
		return false
	}
	n--
	if n == 0 {
		delete(c.counts, code)
	} else {
		c.counts[code] = n
	}
	return n == 0
}

// Seed forces code's count to at least 1 without reporting a press,
// for adopting a key a device already reports as held at attach time
// (e.g. across a process restart) so a later release is honored
// instead of silently ignored by Release's already-at-zero check.
func (c *Counter) Seed(code uint16) {
	if c.counts[code] == 0 {
		c.counts[code] = 1
	}
}

// IsDown reports whether code currently has an outstanding press.
func (c *Counter) IsDown(code uint16) bool {
	return c.counts[code] > 0
}

// ReleaseAll clears every outstanding press, returning the codes that
// transitioned to released. Used when a contributing device is
// removed without sending explicit releases.
func (c *Counter) ReleaseAll() []uint16 {
	released := make([]uint16, 0, len(c.counts))
	for code := range c.counts {
		released = append(released, code)
	}
	c.counts = make(map[uint16]int)
	return released
}
