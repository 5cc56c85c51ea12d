// Package seatcore hosts the seat: the per-process owner of one
// shared multitouch seat-slot bitmap and the set of devices attached
// to it. Grounded on ptt-fix.go's run/listen shape: one reader goroutine
// per device feeding a channel, drained by a single processing
// goroutine, all supervised by golang.org/x/sync/errgroup and torn
// down on context cancellation. cmd/seatwatch is the only binary
// entrypoint that imports this package.
package seatcore

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/sync/errgroup"
	"log/slog"

	"seatcore.dev/seatcore/internal/broker"
	"seatcore.dev/seatcore/internal/config"
	"seatcore.dev/seatcore/internal/device"
	"seatcore.dev/seatcore/internal/evdev"
	"seatcore.dev/seatcore/internal/notify"
	"seatcore.dev/seatcore/internal/rawevent"
	"seatcore.dev/seatcore/internal/slotalloc"
)

// Seat owns the shared seat-slot bitmap and every device attached to
// it, per spec.md §3 ("the seat ... owns one 32-bit seat-slot bitmap
// shared by every device it hosts").
type Seat struct {
	opener broker.Opener
	sink   notify.Sink
	logger *slog.Logger
	cfg    config.Config

	bitmap  *slotalloc.Bitmap
	devices map[notify.DeviceID]*device.Device
}

// NewSeat builds an empty seat. sink is wrapped in a lockLEDSink so
// NUM/CAPS/SCROLL lock presses on any attached keyboard drive LED
// state on every keyboard-capable device, per spec.md §4.7.
func NewSeat(opener broker.Opener, sink notify.Sink, logger *slog.Logger, cfg config.Config) *Seat {
	s := &Seat{
		opener:  opener,
		logger:  logger,
		cfg:     cfg,
		bitmap:  &slotalloc.Bitmap{},
		devices: make(map[notify.DeviceID]*device.Device),
	}
	s.sink = &lockLEDSink{Sink: sink, seat: s}
	return s
}

// Attach opens path, classifies it, and adds it to the seat. It
// returns device.ErrUnhandled (not a fatal error) if no capability
// classified the device.
func (s *Seat) Attach(path string) (*device.Device, error) {
	dev, err := device.Create(s.opener, path, path, s.bitmap, s.sink, s.logger.With("device", path), s.cfg.Motion)
	if err != nil {
		return nil, err
	}
	if override, ok := s.cfg.Devices[path]; ok {
		dev.SetCalibration(override.CalibrationMatrix)
	}
	s.devices[path] = dev
	s.sink.DeviceAdded(path)
	return dev, nil
}

// deviceEvent is one decoded event (or read error) from a single
// device's reader goroutine, queued for the seat's single processing
// goroutine to serialize.
type deviceEvent struct {
	dev *device.Device
	ev  rawevent.Event
	err error
}

// Run drains every attached device until ctx is canceled or a reader
// hits a non-recoverable error. Each device gets its own reader
// goroutine (spec.md §5); a single goroutine here serializes delivery
// into each device's pending-event state machine, since that state is
// not safe for concurrent access across devices sharing the seat
// bitmap.
func (s *Seat) Run(ctx context.Context) error {
	eg, ctx := errgroup.WithContext(ctx)

	events := make(chan deviceEvent)
	for _, dev := range s.devices {
		dev := dev
		eg.Go(func() error { return s.readDevice(ctx, dev, events) })
	}

	eg.Go(func() error {
		for {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case de := <-events:
				s.handle(de)
			}
		}
	})

	err := eg.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

func (s *Seat) readDevice(ctx context.Context, dev *device.Device, out chan<- deviceEvent) error {
	src := dev.Source()
	for {
		ev, err := src.NextEvent()
		if err != nil && !errors.Is(err, rawevent.ErrSync) {
			return fmt.Errorf("read %v: %w", dev.ID(), err)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case out <- deviceEvent{dev: dev, ev: ev, err: err}:
		}
	}
}

func (s *Seat) handle(de deviceEvent) {
	if errors.Is(de.err, rawevent.ErrSync) {
		de.dev.Resync(evdev.Now())
		return
	}
	de.dev.Process(de.ev)
}

// Remove detaches and closes dev, synthesizing releases for anything
// still held down, per spec.md §4.6.
func (s *Seat) Remove(dev *device.Device) {
	delete(s.devices, dev.ID())
	dev.Remove(evdev.Now())
}
