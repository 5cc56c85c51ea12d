package notify_test

import (
	"testing"

	"seatcore.dev/seatcore/internal/notify"
)

func TestMultiSinkFansOutToEveryMember(t *testing.T) {
	a, b := &notify.Recorder{}, &notify.Recorder{}
	m := notify.MultiSink{a, b}

	m.KeyboardKey("dev", 0, 1, notify.Pressed)

	if len(a.Calls) != 1 || len(b.Calls) != 1 {
		t.Fatalf("calls = %d, %d, want 1 each", len(a.Calls), len(b.Calls))
	}
	if a.Calls[0].Code != 1 || a.Calls[0].State != notify.Pressed {
		t.Fatalf("a.Calls[0] = %+v", a.Calls[0])
	}
}

func TestMultiSinkSkipsNilMembers(t *testing.T) {
	rec := &notify.Recorder{}
	m := notify.MultiSink{nil, rec, nil}

	m.DeviceAdded("dev")

	if len(rec.Calls) != 1 || rec.Calls[0].Method != "DeviceAdded" {
		t.Fatalf("calls = %+v, want one DeviceAdded", rec.Calls)
	}
}

func TestMultiSinkPreservesMemberOrder(t *testing.T) {
	var order []string
	first := orderSink{name: "first", order: &order}
	second := orderSink{name: "second", order: &order}
	m := notify.MultiSink{first, second}

	m.TouchFrame("dev", 0)

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v, want [first second]", order)
	}
}

// orderSink is a minimal notify.Sink that records only TouchFrame
// calls, for asserting MultiSink preserves member order.
type orderSink struct {
	name  string
	order *[]string
}

func (s orderSink) PointerMotion(notify.DeviceID, int64, float64, float64)         {}
func (s orderSink) PointerMotionAbsolute(notify.DeviceID, int64, float64, float64) {}
func (s orderSink) PointerButton(notify.DeviceID, int64, uint16, notify.ButtonState) {}
func (s orderSink) PointerAxis(notify.DeviceID, int64, notify.Axis, float64)         {}
func (s orderSink) KeyboardKey(notify.DeviceID, int64, uint16, notify.ButtonState)   {}
func (s orderSink) TouchDown(notify.DeviceID, int64, int, int, float64, float64)     {}
func (s orderSink) TouchMotion(notify.DeviceID, int64, int, int, float64, float64)   {}
func (s orderSink) TouchUp(notify.DeviceID, int64, int, int)                        {}
func (s orderSink) TouchFrame(notify.DeviceID, int64)                               { *s.order = append(*s.order, s.name) }
func (s orderSink) DeviceAdded(notify.DeviceID)                                     {}
func (s orderSink) DeviceRemoved(notify.DeviceID)                                   {}

var _ notify.Sink = orderSink{}
