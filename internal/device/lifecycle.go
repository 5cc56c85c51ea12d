package device

import (
	"fmt"

	"log/slog"

	"seatcore.dev/seatcore/internal/accel"
	"seatcore.dev/seatcore/internal/broker"
	"seatcore.dev/seatcore/internal/calib"
	"seatcore.dev/seatcore/internal/config"
	"seatcore.dev/seatcore/internal/evdev"
	"seatcore.dev/seatcore/internal/keycount"
	"seatcore.dev/seatcore/internal/notify"
	"seatcore.dev/seatcore/internal/rawevent"
	"seatcore.dev/seatcore/internal/slotalloc"
)

// Create opens path through opener, classifies its capabilities, and
// builds a configured Device, per spec.md §4.6. It returns
// ErrUnhandled if no capability classifies the device; the caller
// should not treat that as a failure, only as "not interested". motion
// carries the pointer-acceleration tuning from the seat's config.
func Create(opener broker.Opener, path string, id notify.DeviceID, seat *slotalloc.Bitmap, sink notify.Sink, logger *slog.Logger, motion config.MotionConfig) (*Device, error) {
	src, err := evdev.Open(opener, path)
	if err != nil {
		return nil, fmt.Errorf("device: open %s: %w", path, err)
	}

	caps, err := classify(src)
	if err != nil {
		src.Close()
		return nil, err
	}

	cfg := Config{
		ID:     id,
		Source: src,
		Sink:   sink,
		Logger: logger,
		Seat:   seat,
		Caps:   caps,
	}

	if rngX, rngY, ok, err := absRanges(src); err != nil {
		src.Close()
		return nil, fmt.Errorf("device: %s: %w", path, err)
	} else if ok {
		cfg.HasAbsXY = true
		cfg.AbsX = calib.AbsRange{Minimum: rngX.Minimum, Maximum: rngX.Maximum}
		cfg.AbsY = calib.AbsRange{Minimum: rngY.Minimum, Maximum: rngY.Maximum}
		cfg.ResolutionX = rngX.Resolution
		cfg.ResolutionY = rngY.Resolution
		cfg.DefaultMatrix = calib.DefaultMatrix(cfg.AbsX, cfg.AbsY, cfg.ResolutionX, cfg.ResolutionY).ToArray6()
	}

	slotCount, err := src.SlotCount()
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("device: %s: %w", path, err)
	}
	cfg.SlotCount = slotCount

	if caps.Pointer {
		cfg.MotionFilter = defaultMotionFilter(motion)
	}

	dev := New(cfg)
	seedHeldKeys(dev, src)
	if caps.Keyboard {
		if state, ok := dev.CurrentLEDs(); ok {
			dev.logger.Debug("adopted initial LED state", "num", state.NumLock, "caps", state.CapsLock, "scroll", state.ScrollLock)
		}
	}
	return dev, nil
}

// absRanges queries the axis pair calibration needs resolution X/Y
// ranges from, preferring the legacy single-touch ABS_X/ABS_Y pair and
// falling back to the protocol-B multitouch ABS_MT_POSITION_X/Y pair,
// per evdev_device_init_abs_range_observations in evdev.c: a
// touchscreen that only ever reports ABS_MT_POSITION_X/Y still needs a
// calibration range, not just devices with a legacy single-touch axis.
func absRanges(src *evdev.Device) (x, y evdev.AbsRange, ok bool, err error) {
	var codeX, codeY uint16 = rawevent.ABS_X, rawevent.ABS_Y
	if !src.HasEventCode(rawevent.EV_ABS, codeX) || !src.HasEventCode(rawevent.EV_ABS, codeY) {
		codeX, codeY = rawevent.ABS_MT_POSITION_X, rawevent.ABS_MT_POSITION_Y
		if !src.HasEventCode(rawevent.EV_ABS, codeX) || !src.HasEventCode(rawevent.EV_ABS, codeY) {
			return evdev.AbsRange{}, evdev.AbsRange{}, false, nil
		}
	}

	x, err = src.AbsInfo(codeX)
	if err != nil {
		return evdev.AbsRange{}, evdev.AbsRange{}, false, err
	}
	y, err = src.AbsInfo(codeY)
	if err != nil {
		return evdev.AbsRange{}, evdev.AbsRange{}, false, err
	}
	return x, y, true, nil
}

// seedHeldKeys adopts whatever keys/buttons EVIOCGKEY reports as
// already down at attach time, so a device re-opened mid-press (e.g.
// across a process restart) still gets a clean release instead of
// Remove silently dropping a release for a key it never saw pressed.
// A failed query is non-fatal: Create still succeeds, just without
// that adoption.
func seedHeldKeys(dev *Device, src *evdev.Device) {
	bits, err := src.CurrentKeys()
	if err != nil {
		dev.logger.Debug("query current key state failed", "error", err)
		return
	}
	ranges := [][2]uint16{
		{rawevent.KEY_ESC, rawevent.KEY_MICMUTE},
		{rawevent.KEY_OK, rawevent.KEY_LIGHTS_TOGGLE},
		{rawevent.BTN_MISC, rawevent.BTN_GEAR_UP},
		{rawevent.BTN_DPAD_UP, rawevent.BTN_TRIGGER_HAPPY40},
	}
	for _, r := range ranges {
		for code := r[0]; code <= r[1]; code++ {
			if evdev.BitSet(bits, code) {
				dev.keys.Seed(code)
			}
		}
	}
}

// defaultMotionFilter returns the pointer accelerator spec.md §4.6
// installs for every POINTER-capable device at create time, at the
// configured DPI and profile. An unrecognized or empty profile name
// falls back to linear.
func defaultMotionFilter(motion config.MotionConfig) accel.Filter {
	switch motion.Profile {
	case "smooth":
		return accel.NewSmooth(motion.MouseDPI)
	default:
		return accel.NewLinear(motion.MouseDPI)
	}
}

// classify implements the capability-classification rules from
// spec.md §4.6.
func classify(src *evdev.Device) (Capabilities, error) {
	hasButton := hasAnyInRange(src, rawevent.BTN_MISC, rawevent.BTN_GEAR_UP) ||
		hasAnyInRange(src, rawevent.BTN_DPAD_UP, rawevent.BTN_TRIGGER_HAPPY40)
	hasKey := hasAnyInRange(src, rawevent.KEY_ESC, rawevent.KEY_MICMUTE) ||
		hasAnyInRange(src, rawevent.KEY_OK, rawevent.KEY_LIGHTS_TOGGLE)
	hasAbsOrRel := src.HasEventType(rawevent.EV_ABS) || src.HasEventType(rawevent.EV_REL)
	hasLED := src.HasEventType(rawevent.EV_LED)
	hasTouch := src.HasEventCode(rawevent.EV_KEY, rawevent.BTN_TOUCH) ||
		src.HasEventCode(rawevent.EV_ABS, rawevent.ABS_MT_SLOT)

	caps := Capabilities{
		Pointer:  hasAbsOrRel && hasButton,
		Keyboard: hasKey || hasLED,
		Touch:    hasTouch && !hasButton,
	}

	if !caps.Pointer && !caps.Keyboard && !caps.Touch {
		return Capabilities{}, ErrUnhandled
	}
	return caps, nil
}

func hasAnyInRange(src *evdev.Device, lo, hi uint16) bool {
	for c := lo; c <= hi; c++ {
		if src.HasEventCode(rawevent.EV_KEY, c) {
			return true
		}
	}
	return false
}

// Remove detaches the device: it synthesizes a release for every code
// whose press counter is still positive, releases active touch slots
// without emitting touch-up, closes the source, and notifies removal,
// per spec.md §4.6.
func (d *Device) Remove(timeMS int64) {
	for _, code := range d.keys.ReleaseAll() {
		switch keycount.Classify(code) {
		case keycount.Key:
			if d.caps.Keyboard {
				d.sink.KeyboardKey(d.id, timeMS, code, notify.Released)
			}
		case keycount.Button:
			if d.caps.Pointer {
				d.sink.PointerButton(d.id, timeMS, code, notify.Released)
			}
		}
	}

	d.dispatcher.Destroy(d)

	if d.filter != nil {
		d.filter.Destroy()
	}

	if err := d.source.Close(); err != nil {
		d.logger.Warn("close device on remove", "error", err)
	}
	d.sink.DeviceRemoved(d.id)
}
