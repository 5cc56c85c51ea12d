// Package notify defines the outbound notification-sink contract: the
// full capability set a downstream consumer implements to receive
// normalized pointer/keyboard/touch events, grounded on handle.go's
// minimal sender interface and on gio's Queue/Event shape for an
// abstract event-sink contract.
package notify

// ButtonState is the PRESSED/RELEASED state carried by button and key
// notifications.
type ButtonState int

const (
	Released ButtonState = iota
	Pressed
)

// Axis identifies a scroll axis.
type Axis int

const (
	VScroll Axis = iota
	HScroll
)

// DeviceID identifies the device a notification originated from. It
// is opaque to the sink; the caller (internal/device) supplies
// whatever handle it uses internally.
type DeviceID interface{}

// Sink is the full outbound capability set from spec.md §6. Every
// method may be called re-entrantly from within a seat flush, so
// implementations must not block or assume calls are serialized across
// devices.
type Sink interface {
	PointerMotion(dev DeviceID, timeMS int64, dx, dy float64)
	PointerMotionAbsolute(dev DeviceID, timeMS int64, x, y float64)
	PointerButton(dev DeviceID, timeMS int64, button uint16, state ButtonState)
	PointerAxis(dev DeviceID, timeMS int64, axis Axis, value float64)

	KeyboardKey(dev DeviceID, timeMS int64, code uint16, state ButtonState)

	TouchDown(dev DeviceID, timeMS int64, slot, seatSlot int, x, y float64)
	TouchMotion(dev DeviceID, timeMS int64, slot, seatSlot int, x, y float64)
	TouchUp(dev DeviceID, timeMS int64, slot, seatSlot int)
	TouchFrame(dev DeviceID, timeMS int64)

	DeviceAdded(dev DeviceID)
	DeviceRemoved(dev DeviceID)
}

// MultiSink fans out every call to each of its member sinks, in order.
// A nil entry is skipped, so a MultiSink can be built once and have
// sinks disabled without reslicing.
type MultiSink []Sink

func (m MultiSink) PointerMotion(dev DeviceID, timeMS int64, dx, dy float64) {
	for _, s := range m {
		if s != nil {
			s.PointerMotion(dev, timeMS, dx, dy)
		}
	}
}

func (m MultiSink) PointerMotionAbsolute(dev DeviceID, timeMS int64, x, y float64) {
	for _, s := range m {
		if s != nil {
			s.PointerMotionAbsolute(dev, timeMS, x, y)
		}
	}
}

func (m MultiSink) PointerButton(dev DeviceID, timeMS int64, button uint16, state ButtonState) {
	for _, s := range m {
		if s != nil {
			s.PointerButton(dev, timeMS, button, state)
		}
	}
}

func (m MultiSink) PointerAxis(dev DeviceID, timeMS int64, axis Axis, value float64) {
	for _, s := range m {
		if s != nil {
			s.PointerAxis(dev, timeMS, axis, value)
		}
	}
}

func (m MultiSink) KeyboardKey(dev DeviceID, timeMS int64, code uint16, state ButtonState) {
	for _, s := range m {
		if s != nil {
			s.KeyboardKey(dev, timeMS, code, state)
		}
	}
}

func (m MultiSink) TouchDown(dev DeviceID, timeMS int64, slot, seatSlot int, x, y float64) {
	for _, s := range m {
		if s != nil {
			s.TouchDown(dev, timeMS, slot, seatSlot, x, y)
		}
	}
}

func (m MultiSink) TouchMotion(dev DeviceID, timeMS int64, slot, seatSlot int, x, y float64) {
	for _, s := range m {
		if s != nil {
			s.TouchMotion(dev, timeMS, slot, seatSlot, x, y)
		}
	}
}

func (m MultiSink) TouchUp(dev DeviceID, timeMS int64, slot, seatSlot int) {
	for _, s := range m {
		if s != nil {
			s.TouchUp(dev, timeMS, slot, seatSlot)
		}
	}
}

func (m MultiSink) TouchFrame(dev DeviceID, timeMS int64) {
	for _, s := range m {
		if s != nil {
			s.TouchFrame(dev, timeMS)
		}
	}
}

func (m MultiSink) DeviceAdded(dev DeviceID) {
	for _, s := range m {
		if s != nil {
			s.DeviceAdded(dev)
		}
	}
}

func (m MultiSink) DeviceRemoved(dev DeviceID) {
	for _, s := range m {
		if s != nil {
			s.DeviceRemoved(dev)
		}
	}
}
