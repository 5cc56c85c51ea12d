// Package rawevent defines the wire-level representation of a decoded
// evdev event, independent of how it reached us (character device, test
// fixture, or protocol-A converter).
package rawevent

import "errors"

// ErrSync is returned by RawSource.NextEvent when the kernel reports
// SYN_DROPPED. The seat responds by injecting a synthetic SYN_REPORT
// (device.Resync) to flush any in-progress frame and then resumes
// normal reads; no resync stream of kernel state is read, so axis and
// key state that changed during the dropped events is not re-queried.
var ErrSync = errors.New("rawevent: sync dropped, resync required")

// RawSource is the inbound decoded-event source the core consumes,
// the "evdev decoding library" spec.md §1 calls an external
// collaborator. internal/evdev supplies one implementation; any other
// satisfies the same contract.
type RawSource interface {
	NextEvent() (Event, error)
	Close() error
}

// Event types, from linux/input-event-codes.h.
const (
	EV_SYN = 0x00
	EV_KEY = 0x01
	EV_REL = 0x02
	EV_ABS = 0x03
	EV_MSC = 0x04
	EV_LED = 0x11
)

// EV_SYN codes.
const (
	SYN_REPORT  = 0x00
	SYN_DROPPED = 0x03
)

// EV_REL codes.
const (
	REL_X      = 0x00
	REL_Y      = 0x01
	REL_WHEEL  = 0x08
	REL_HWHEEL = 0x06
)

// EV_ABS codes.
const (
	ABS_X             = 0x00
	ABS_Y             = 0x01
	ABS_MT_SLOT       = 0x2f
	ABS_MT_TOUCH_MAJOR = 0x30
	ABS_MT_POSITION_X = 0x35
	ABS_MT_POSITION_Y = 0x36
	ABS_MT_TRACKING_ID = 0x39
)

// EV_KEY codes referenced directly by the pending-event state machine.
const (
	BTN_TOUCH = 0x14a
)

// Key/button code ranges used by the key-type classifier (spec.md §4.2),
// mirrored here so both keycount and capability classification share one
// source of truth.
const (
	KEY_ESC            = 0x01
	KEY_MICMUTE        = 0xf8
	KEY_OK             = 0x160
	KEY_LIGHTS_TOGGLE  = 0x21e
	BTN_MISC           = 0x100
	BTN_GEAR_UP        = 0x151
	BTN_DPAD_UP        = 0x220
	BTN_TRIGGER_HAPPY40 = 0x2e7
)

// EV_LED codes.
const (
	LED_NUML    = 0x00
	LED_CAPSL   = 0x01
	LED_SCROLLL = 0x02
)

// EV_KEY codes for the three lock keys a seat-level keyboard tracker
// watches to drive LED state.
const (
	KEY_CAPSLOCK   = 0x3a
	KEY_NUMLOCK    = 0x45
	KEY_SCROLLLOCK = 0x46
)

// Event is a single decoded evdev report, timestamped in milliseconds
// (sec*1000 + usec/1000, per spec.md §6) on whatever clock the source
// stamps its events with.
type Event struct {
	Type   uint16
	Code   uint16
	Value  int32
	TimeMS int64
}

func (ev Event) Is(typ, code uint16) bool {
	return ev.Type == typ && ev.Code == code
}
