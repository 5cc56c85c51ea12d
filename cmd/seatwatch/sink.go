package main

import (
	"log/slog"

	"seatcore.dev/seatcore/internal/notify"
)

// loggingSink logs every outbound notification (input events at debug
// level, device added/removed at info level), the
// human-operable counterpart to the scenario tests described in
// spec.md §8.
type loggingSink struct {
	logger *slog.Logger
}

func (s loggingSink) PointerMotion(dev notify.DeviceID, timeMS int64, dx, dy float64) {
	s.logger.Debug("pointer motion", "device", dev, "dx", dx, "dy", dy)
}

func (s loggingSink) PointerMotionAbsolute(dev notify.DeviceID, timeMS int64, x, y float64) {
	s.logger.Debug("pointer motion absolute", "device", dev, "x", x, "y", y)
}

func (s loggingSink) PointerButton(dev notify.DeviceID, timeMS int64, button uint16, state notify.ButtonState) {
	s.logger.Debug("pointer button", "device", dev, "button", button, "state", state)
}

func (s loggingSink) PointerAxis(dev notify.DeviceID, timeMS int64, axis notify.Axis, value float64) {
	s.logger.Debug("pointer axis", "device", dev, "axis", axis, "value", value)
}

func (s loggingSink) KeyboardKey(dev notify.DeviceID, timeMS int64, code uint16, state notify.ButtonState) {
	s.logger.Debug("keyboard key", "device", dev, "code", code, "state", state)
}

func (s loggingSink) TouchDown(dev notify.DeviceID, timeMS int64, slot, seatSlot int, x, y float64) {
	s.logger.Debug("touch down", "device", dev, "slot", slot, "seat_slot", seatSlot, "x", x, "y", y)
}

func (s loggingSink) TouchMotion(dev notify.DeviceID, timeMS int64, slot, seatSlot int, x, y float64) {
	s.logger.Debug("touch motion", "device", dev, "slot", slot, "seat_slot", seatSlot, "x", x, "y", y)
}

func (s loggingSink) TouchUp(dev notify.DeviceID, timeMS int64, slot, seatSlot int) {
	s.logger.Debug("touch up", "device", dev, "slot", slot, "seat_slot", seatSlot)
}

func (s loggingSink) TouchFrame(dev notify.DeviceID, timeMS int64) {
	s.logger.Debug("touch frame", "device", dev)
}

func (s loggingSink) DeviceAdded(dev notify.DeviceID) {
	s.logger.Info("device added", "device", dev)
}

func (s loggingSink) DeviceRemoved(dev notify.DeviceID) {
	s.logger.Info("device removed", "device", dev)
}

var _ notify.Sink = loggingSink{}
