package pending_test

import (
	"testing"

	"seatcore.dev/seatcore/internal/pending"
	"seatcore.dev/seatcore/internal/rawevent"
	"seatcore.dev/seatcore/internal/slotalloc"
)

func relEvent(code uint16, value int32, timeMS int64) rawevent.Event {
	return rawevent.Event{Type: rawevent.EV_REL, Code: code, Value: value, TimeMS: timeMS}
}

func absEvent(code uint16, value int32, timeMS int64) rawevent.Event {
	return rawevent.Event{Type: rawevent.EV_ABS, Code: code, Value: value, TimeMS: timeMS}
}

func synReport(timeMS int64) rawevent.Event {
	return rawevent.Event{Type: rawevent.EV_SYN, Code: rawevent.SYN_REPORT, TimeMS: timeMS}
}

func TestRelativeMotionCoalescesUntilSync(t *testing.T) {
	var seat slotalloc.Bitmap
	s := pending.New(&seat, 0)

	if out := s.Feed(relEvent(rawevent.REL_X, 3, 0)); len(out) != 0 {
		t.Fatalf("unexpected flush on first rel: %+v", out)
	}
	if out := s.Feed(relEvent(rawevent.REL_Y, -2, 0)); len(out) != 0 {
		t.Fatalf("unexpected flush on second rel: %+v", out)
	}

	out := s.Feed(synReport(10))
	if len(out) != 1 || out[0].Kind != pending.KindRelativeMotion {
		t.Fatalf("flush at SYN_REPORT = %+v, want one KindRelativeMotion", out)
	}
	if out[0].DX != 3 || out[0].DY != -2 {
		t.Fatalf("flushed delta = (%v, %v), want (3, -2)", out[0].DX, out[0].DY)
	}
}

func TestAbsoluteMotionFlushesBeforeRel(t *testing.T) {
	var seat slotalloc.Bitmap
	s := pending.New(&seat, 0)

	s.Feed(absEvent(rawevent.ABS_X, 100, 0))
	s.Feed(absEvent(rawevent.ABS_Y, 200, 0))

	out := s.Feed(relEvent(rawevent.REL_X, 1, 5))
	if len(out) != 1 || out[0].Kind != pending.KindAbsoluteMotion {
		t.Fatalf("flush on REL after ABS pending = %+v, want one KindAbsoluteMotion", out)
	}
	if out[0].X != 100 || out[0].Y != 200 {
		t.Fatalf("flushed abs coords = (%v, %v), want (100, 200)", out[0].X, out[0].Y)
	}
}

func TestMultitouchDownMotionUp(t *testing.T) {
	var seat slotalloc.Bitmap
	s := pending.New(&seat, 4)

	s.Feed(absEvent(rawevent.ABS_MT_SLOT, 0, 0))
	s.Feed(absEvent(rawevent.ABS_MT_TRACKING_ID, 7, 0))
	s.Feed(absEvent(rawevent.ABS_MT_POSITION_X, 50, 0))
	s.Feed(absEvent(rawevent.ABS_MT_POSITION_Y, 60, 0))
	out := s.Feed(synReport(0))
	if len(out) != 1 || out[0].Kind != pending.KindMTDown {
		t.Fatalf("MT down flush = %+v, want one KindMTDown", out)
	}
	seatSlot := out[0].SeatSlot
	if seatSlot != 0 {
		t.Fatalf("first MT down seat slot = %v, want 0", seatSlot)
	}
	if !seat.IsSet(seatSlot) {
		t.Fatal("seat bitmap did not record the acquired slot")
	}

	s.Feed(absEvent(rawevent.ABS_MT_POSITION_X, 55, 10))
	out = s.Feed(synReport(10))
	if len(out) != 1 || out[0].Kind != pending.KindMTMotion || out[0].SeatSlot != seatSlot {
		t.Fatalf("MT motion flush = %+v", out)
	}

	s.Feed(absEvent(rawevent.ABS_MT_TRACKING_ID, -1, 20))
	out = s.Feed(synReport(20))
	if len(out) != 1 || out[0].Kind != pending.KindMTUp || out[0].SeatSlot != seatSlot {
		t.Fatalf("MT up flush = %+v", out)
	}
	if seat.IsSet(seatSlot) {
		t.Fatal("seat slot not released on MT up")
	}
}

func TestBTNTouchMergesWithPendingAbsoluteMotion(t *testing.T) {
	var seat slotalloc.Bitmap
	s := pending.New(&seat, 0)

	s.Feed(absEvent(rawevent.ABS_X, 10, 0))
	s.Feed(absEvent(rawevent.ABS_Y, 20, 0))

	out := s.FeedTouchButton(true, 0)
	if len(out) != 0 {
		t.Fatalf("BTN_TOUCH down merge produced an early flush: %+v", out)
	}

	out = s.Flush(0)
	if len(out) != 1 || out[0].Kind != pending.KindTouchDown {
		t.Fatalf("merged flush = %+v, want one KindTouchDown", out)
	}
	if out[0].X != 10 || out[0].Y != 20 {
		t.Fatalf("merged touch-down coords = (%v, %v), want (10, 20)", out[0].X, out[0].Y)
	}
}

func TestSeatSaturationDropsSilently(t *testing.T) {
	var seat slotalloc.Bitmap
	for i := 0; i < slotalloc.MaxSlots; i++ {
		seat.Acquire()
	}

	s := pending.New(&seat, 1)
	s.Feed(absEvent(rawevent.ABS_MT_SLOT, 0, 0))
	s.Feed(absEvent(rawevent.ABS_MT_TRACKING_ID, 1, 0))
	out := s.Feed(synReport(0))
	if len(out) != 0 {
		t.Fatalf("MT down under seat saturation produced output: %+v, want none", out)
	}

	s.Feed(absEvent(rawevent.ABS_MT_TRACKING_ID, -1, 10))
	out = s.Feed(synReport(10))
	if len(out) != 0 {
		t.Fatalf("MT up of a taken-without-seat slot produced output: %+v, want none", out)
	}
}

func TestReleaseActiveSlotsReturnsToSeat(t *testing.T) {
	var seat slotalloc.Bitmap
	s := pending.New(&seat, 2)

	s.Feed(absEvent(rawevent.ABS_MT_SLOT, 0, 0))
	s.Feed(absEvent(rawevent.ABS_MT_TRACKING_ID, 1, 0))
	s.Feed(synReport(0))

	if seat.Popcount() != 1 {
		t.Fatalf("popcount before release = %v, want 1", seat.Popcount())
	}
	s.ReleaseActiveSlots()
	if seat.Popcount() != 0 {
		t.Fatalf("popcount after ReleaseActiveSlots = %v, want 0", seat.Popcount())
	}
}
