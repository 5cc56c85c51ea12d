package notify

// Recorded is one call captured by a Recorder, tagged by method name
// so tests can assert on a flat, orderable event log.
type Recorded struct {
	Method   string
	Dev      DeviceID
	TimeMS   int64
	DX, DY   float64
	X, Y     float64
	Button   uint16
	Code     uint16
	State    ButtonState
	Axis     Axis
	Value    float64
	Slot     int
	SeatSlot int
}

// Recorder is a Sink that appends every call to Calls, for use in
// tests that assert on the exact notification sequence a scenario
// produces.
type Recorder struct {
	Calls []Recorded
}

func (r *Recorder) PointerMotion(dev DeviceID, timeMS int64, dx, dy float64) {
	r.Calls = append(r.Calls, Recorded{Method: "PointerMotion", Dev: dev, TimeMS: timeMS, DX: dx, DY: dy})
}

func (r *Recorder) PointerMotionAbsolute(dev DeviceID, timeMS int64, x, y float64) {
	r.Calls = append(r.Calls, Recorded{Method: "PointerMotionAbsolute", Dev: dev, TimeMS: timeMS, X: x, Y: y})
}

func (r *Recorder) PointerButton(dev DeviceID, timeMS int64, button uint16, state ButtonState) {
	r.Calls = append(r.Calls, Recorded{Method: "PointerButton", Dev: dev, TimeMS: timeMS, Button: button, State: state})
}

func (r *Recorder) PointerAxis(dev DeviceID, timeMS int64, axis Axis, value float64) {
	r.Calls = append(r.Calls, Recorded{Method: "PointerAxis", Dev: dev, TimeMS: timeMS, Axis: axis, Value: value})
}

func (r *Recorder) KeyboardKey(dev DeviceID, timeMS int64, code uint16, state ButtonState) {
	r.Calls = append(r.Calls, Recorded{Method: "KeyboardKey", Dev: dev, TimeMS: timeMS, Code: code, State: state})
}

func (r *Recorder) TouchDown(dev DeviceID, timeMS int64, slot, seatSlot int, x, y float64) {
	r.Calls = append(r.Calls, Recorded{Method: "TouchDown", Dev: dev, TimeMS: timeMS, Slot: slot, SeatSlot: seatSlot, X: x, Y: y})
}

func (r *Recorder) TouchMotion(dev DeviceID, timeMS int64, slot, seatSlot int, x, y float64) {
	r.Calls = append(r.Calls, Recorded{Method: "TouchMotion", Dev: dev, TimeMS: timeMS, Slot: slot, SeatSlot: seatSlot, X: x, Y: y})
}

func (r *Recorder) TouchUp(dev DeviceID, timeMS int64, slot, seatSlot int) {
	r.Calls = append(r.Calls, Recorded{Method: "TouchUp", Dev: dev, TimeMS: timeMS, Slot: slot, SeatSlot: seatSlot})
}

func (r *Recorder) TouchFrame(dev DeviceID, timeMS int64) {
	r.Calls = append(r.Calls, Recorded{Method: "TouchFrame", Dev: dev, TimeMS: timeMS})
}

func (r *Recorder) DeviceAdded(dev DeviceID) {
	r.Calls = append(r.Calls, Recorded{Method: "DeviceAdded", Dev: dev})
}

func (r *Recorder) DeviceRemoved(dev DeviceID) {
	r.Calls = append(r.Calls, Recorded{Method: "DeviceRemoved", Dev: dev})
}
