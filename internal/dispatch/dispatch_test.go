package dispatch_test

import (
	"testing"

	"log/slog"

	"seatcore.dev/seatcore/internal/accel"
	"seatcore.dev/seatcore/internal/dispatch"
	"seatcore.dev/seatcore/internal/keycount"
	"seatcore.dev/seatcore/internal/notify"
	"seatcore.dev/seatcore/internal/pending"
	"seatcore.dev/seatcore/internal/rawevent"
	"seatcore.dev/seatcore/internal/slotalloc"
)

type fakeHost struct {
	id      notify.DeviceID
	sink    notify.Sink
	logger  *slog.Logger
	pending *pending.State
	keys    *keycount.Counter

	pointer, keyboard, touch bool
	filter                   accel.Filter
}

func newFakeHost(nSlots int) (*fakeHost, *slotalloc.Bitmap) {
	seat := &slotalloc.Bitmap{}
	return &fakeHost{
		id:      "fake",
		sink:    &notify.Recorder{},
		logger:  slog.New(slog.NewTextHandler(discard{}, nil)),
		pending: pending.New(seat, nSlots),
		keys:    keycount.New(),
	}, seat
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

func (h *fakeHost) ID() notify.DeviceID                              { return h.id }
func (h *fakeHost) Sink() notify.Sink                                { return h.sink }
func (h *fakeHost) Logger() *slog.Logger                             { return h.logger }
func (h *fakeHost) Pending() *pending.State                          { return h.pending }
func (h *fakeHost) Keys() *keycount.Counter                          { return h.keys }
func (h *fakeHost) IsPointer() bool                                  { return h.pointer }
func (h *fakeHost) IsKeyboard() bool                                 { return h.keyboard }
func (h *fakeHost) IsTouch() bool                                    { return h.touch }
func (h *fakeHost) ApplyCalibration(x, y float64) (float64, float64) { return x, y }
func (h *fakeHost) MotionFilter() accel.Filter                       { return h.filter }

var _ dispatch.Host = (*fakeHost)(nil)

// recordingFilter is an accel.Filter test double that records the
// timeUS it was last called with, so tests can assert on unit scaling
// without depending on the real accelerator's curve shape.
type recordingFilter struct {
	lastTimeUS int64
	destroyed  bool
}

func (f *recordingFilter) Apply(delta accel.Delta, timeUS int64) accel.Delta {
	f.lastTimeUS = timeUS
	return delta
}

func (f *recordingFilter) Destroy() { f.destroyed = true }

var _ accel.Filter = (*recordingFilter)(nil)

func TestFallbackRelativeMotionScalesMillisecondsToMicroseconds(t *testing.T) {
	h, _ := newFakeHost(0)
	h.pointer = true
	filter := &recordingFilter{}
	h.filter = filter
	d := dispatch.Fallback{}

	d.Process(h, rawevent.Event{Type: rawevent.EV_REL, Code: rawevent.REL_X, Value: 5, TimeMS: 42})
	d.Process(h, rawevent.Event{Type: rawevent.EV_SYN, Code: rawevent.SYN_REPORT, TimeMS: 42})

	if filter.lastTimeUS != 42*1000 {
		t.Fatalf("filter.Apply timeUS = %v, want %v (42ms in microseconds)", filter.lastTimeUS, 42*1000)
	}
}

func TestFallbackRelativeMotion(t *testing.T) {
	h, _ := newFakeHost(0)
	h.pointer = true
	d := dispatch.Fallback{}

	d.Process(h, rawevent.Event{Type: rawevent.EV_REL, Code: rawevent.REL_X, Value: 5, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_SYN, Code: rawevent.SYN_REPORT, TimeMS: 1})

	rec := h.sink.(*notify.Recorder)
	if len(rec.Calls) != 1 || rec.Calls[0].Method != "PointerMotion" {
		t.Fatalf("calls = %+v, want one PointerMotion", rec.Calls)
	}
}

func TestFallbackKeyPressRelease(t *testing.T) {
	h, _ := newFakeHost(0)
	h.keyboard = true
	d := dispatch.Fallback{}

	d.Process(h, rawevent.Event{Type: rawevent.EV_KEY, Code: rawevent.KEY_ESC, Value: 1, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_KEY, Code: rawevent.KEY_ESC, Value: 0, TimeMS: 1})

	rec := h.sink.(*notify.Recorder)
	if len(rec.Calls) != 2 {
		t.Fatalf("calls = %+v, want 2", rec.Calls)
	}
	if rec.Calls[0].State != notify.Pressed || rec.Calls[1].State != notify.Released {
		t.Fatalf("calls = %+v, want Pressed then Released", rec.Calls)
	}
}

func TestFallbackKeyAutorepeatIgnored(t *testing.T) {
	h, _ := newFakeHost(0)
	h.keyboard = true
	d := dispatch.Fallback{}

	d.Process(h, rawevent.Event{Type: rawevent.EV_KEY, Code: rawevent.KEY_ESC, Value: 1, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_KEY, Code: rawevent.KEY_ESC, Value: 2, TimeMS: 1})

	rec := h.sink.(*notify.Recorder)
	if len(rec.Calls) != 1 {
		t.Fatalf("calls = %+v, want 1 (autorepeat must not re-press)", rec.Calls)
	}
}

func TestFallbackTouchFrameEmittedOnlyForTouchClass(t *testing.T) {
	h, _ := newFakeHost(1)
	h.touch = true
	d := dispatch.Fallback{}

	d.Process(h, rawevent.Event{Type: rawevent.EV_ABS, Code: rawevent.ABS_MT_SLOT, Value: 0, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_ABS, Code: rawevent.ABS_MT_TRACKING_ID, Value: 1, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_ABS, Code: rawevent.ABS_MT_POSITION_X, Value: 10, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_ABS, Code: rawevent.ABS_MT_POSITION_Y, Value: 20, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_SYN, Code: rawevent.SYN_REPORT, TimeMS: 0})

	rec := h.sink.(*notify.Recorder)
	if len(rec.Calls) != 2 || rec.Calls[0].Method != "TouchDown" || rec.Calls[1].Method != "TouchFrame" {
		t.Fatalf("calls = %+v, want TouchDown then TouchFrame", rec.Calls)
	}
}

func TestDestroyReleasesActiveSlots(t *testing.T) {
	h, seat := newFakeHost(1)
	h.touch = true
	d := dispatch.Fallback{}

	d.Process(h, rawevent.Event{Type: rawevent.EV_ABS, Code: rawevent.ABS_MT_SLOT, Value: 0, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_ABS, Code: rawevent.ABS_MT_TRACKING_ID, Value: 1, TimeMS: 0})
	d.Process(h, rawevent.Event{Type: rawevent.EV_SYN, Code: rawevent.SYN_REPORT, TimeMS: 0})

	if seat.Popcount() != 1 {
		t.Fatalf("popcount before Destroy = %v, want 1", seat.Popcount())
	}
	d.Destroy(h)
	if seat.Popcount() != 0 {
		t.Fatalf("popcount after Destroy = %v, want 0", seat.Popcount())
	}
}
