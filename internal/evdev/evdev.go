// Package evdev is a pure-Go evdev decode/ioctl layer: it opens a
// character device through a supplied broker.Opener, classifies its
// capability bitmaps, and decodes its raw input_event stream into
// rawevent.Event values with millisecond timestamps. It satisfies
// rawevent.RawSource, the interface the core actually depends on — a
// privileged caller may plug in a different implementation entirely.
//
// Adapted from ptt-fix.go's internal/evdev: the original computed
// EVIOCGABS's ioctl number without the per-axis term (see input.go)
// and never called it; this version adds AbsInfo, per-axis EVIOCGABS,
// EVIOCGRAB, EVIOCGKEY/EVIOCGLED state queries, and multitouch
// slot-count detection, none of which that X11-key-forwarding use
// case needed.
package evdev

import (
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"

	"seatcore.dev/seatcore/internal/broker"
	"seatcore.dev/seatcore/internal/rawevent"
)

// Device is one opened evdev character device.
type Device struct {
	file *os.File
	fd   int
	opener broker.Opener

	Name string
	ID   InputID

	bits                                                                 []byte
	bitsREL, bitsABS, bitsLED, bitsKEY, bitsSW, bitsMSC, bitsFF, bitsSND []byte
}

// Open opens path through opener in non-blocking read/write mode
// (spec.md §4.6) and queries its capability bitmaps and identity.
func Open(opener broker.Opener, path string) (*Device, error) {
	fd, err := opener.OpenRestricted(path, broker.OpenNonblockRDWR)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}

	d := &Device{
		file:   os.NewFile(uintptr(fd), path),
		fd:     fd,
		opener: opener,
	}
	if err := d.init(); err != nil {
		opener.CloseRestricted(fd)
		return nil, err
	}
	return d, nil
}

func (d *Device) init() error {
	conn, err := d.file.SyscallConn()
	if err != nil {
		return err
	}

	var buf [256]byte
	if err := cctl(conn, eviocgname(uintptr(len(buf))), &buf[0]); err != nil {
		return fmt.Errorf("get device name: %w", err)
	}
	d.Name = fromNTString(buf[:])

	if err := cctl(conn, eviocgid, &d.ID); err != nil {
		return fmt.Errorf("get device info: %w", err)
	}

	var bits [0x1F]byte
	if err := cctl(conn, eviocgbit(0, uintptr(len(bits))), &bits[0]); err != nil {
		return fmt.Errorf("get device capabilities: %w", err)
	}
	d.bits = bits[:]

	for _, tc := range []struct {
		evType uintptr
		dst    *[]byte
		n      int
	}{
		{evRel, &d.bitsREL, relCount},
		{evAbs, &d.bitsABS, absCount},
		{evLed, &d.bitsLED, ledCount},
		{evKey, &d.bitsKEY, keyCount},
		{evSw, &d.bitsSW, swCount},
		{evMsc, &d.bitsMSC, mscCount},
		{evFf, &d.bitsFF, ffCount},
		{evSnd, &d.bitsSND, sndCount},
	} {
		buf := make([]byte, (tc.n+int(wordbits)-1)/8)
		if err := cctl(conn, eviocgbit(tc.evType, uintptr(len(buf))), &buf[0]); err != nil {
			return fmt.Errorf("get type bits: %w", err)
		}
		*tc.dst = buf
	}

	return nil
}

// Grab requests exclusive access to the device via EVIOCGRAB, so that
// events stop reaching any other open handle (e.g. a legacy X server)
// while this process owns it.
func (d *Device) Grab() error {
	conn, err := d.file.SyscallConn()
	if err != nil {
		return err
	}
	v := int32(1)
	return cctl(conn, eviocgrab, &v)
}

func (d *Device) Close() error {
	d.opener.CloseRestricted(d.fd)
	return nil
}

func (d *Device) typeCodes(t uint16) []byte {
	switch t {
	case evKey:
		return d.bitsKEY
	case evRel:
		return d.bitsREL
	case evAbs:
		return d.bitsABS
	case evMsc:
		return d.bitsMSC
	case evSw:
		return d.bitsSW
	case evLed:
		return d.bitsLED
	case evSnd:
		return d.bitsSND
	case evFf:
		return d.bitsFF
	default:
		return nil
	}
}

func (d *Device) HasEventType(t uint16) bool {
	return isBitSet(d.bits, t)
}

func (d *Device) HasEventCode(t, code uint16) bool {
	return d.HasEventType(t) && isBitSet(d.typeCodes(t), code)
}

// BitSet reports whether code's bit is set in a bitmap returned by
// CurrentKeys or CurrentLEDs.
func BitSet(bits []byte, code uint16) bool {
	if int(code)/8 >= len(bits) {
		return false
	}
	return isBitSet(bits, code)
}

// CurrentKeys queries EVIOCGKEY for the set of key/button codes
// currently reported as held down, so a device attached while a key
// is already down (e.g. across a process restart) can adopt that
// state via BitSet instead of waiting for a release that will never
// come.
func (d *Device) CurrentKeys() ([]byte, error) {
	conn, err := d.file.SyscallConn()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, (keyCount+int(wordbits)-1)/8)
	if err := cctl(conn, eviocgkeyBase|(uintptr(len(buf))<<iocSizeShift), &buf[0]); err != nil {
		return nil, fmt.Errorf("get current key state: %w", err)
	}
	return buf, nil
}

// CurrentLEDs queries EVIOCGLED for the device's currently lit LEDs.
func (d *Device) CurrentLEDs() ([]byte, error) {
	conn, err := d.file.SyscallConn()
	if err != nil {
		return nil, err
	}
	buf := make([]byte, (ledCount+int(wordbits)-1)/8)
	if err := cctl(conn, eviocgledBase|(uintptr(len(buf))<<iocSizeShift), &buf[0]); err != nil {
		return nil, fmt.Errorf("get current LED state: %w", err)
	}
	return buf, nil
}

// AbsRange is an EVIOCGABS result, trimmed to the fields the
// calibration and multitouch-slot-count logic need.
type AbsRange struct {
	Minimum    int32
	Maximum    int32
	Resolution int32
}

// AbsInfo fetches the current EVIOCGABS data for code.
func (d *Device) AbsInfo(code uint16) (AbsRange, error) {
	conn, err := d.file.SyscallConn()
	if err != nil {
		return AbsRange{}, err
	}
	var info inputAbsInfo
	if err := cctl(conn, eviocgabs(code), &info); err != nil {
		return AbsRange{}, fmt.Errorf("get absinfo for code %d: %w", code, err)
	}
	return AbsRange{Minimum: info.Minimum, Maximum: info.Maximum, Resolution: info.Resolution}, nil
}

// SlotCount returns the device's multitouch slot count, derived from
// ABS_MT_SLOT's absinfo range (max - min + 1), or 0 if the device has
// no ABS_MT_SLOT axis.
func (d *Device) SlotCount() (int, error) {
	if !d.HasEventCode(evAbs, rawevent.ABS_MT_SLOT) {
		return 0, nil
	}
	rng, err := d.AbsInfo(rawevent.ABS_MT_SLOT)
	if err != nil {
		return 0, err
	}
	return int(rng.Maximum-rng.Minimum) + 1, nil
}

// evdevTimeval mirrors struct input_event's leading 16-byte
// timeval (two 8-byte fields on a 64-bit kernel ABI).
type evdevTimeval struct {
	Sec  int64
	Usec int64
}

type wireEvent struct {
	Time  evdevTimeval
	Type  uint16
	Code  uint16
	Value int32
}

// NextEvent reads one raw input_event and converts it into a
// rawevent.Event with a millisecond timestamp (sec*1000 + usec/1000,
// per spec.md §6). Open does not change the device's event clock, so
// the timestamp is on the kernel's default event clock, not
// CLOCK_MONOTONIC. It returns rawevent.ErrSync
// if the kernel reports an EV_SYN/SYN_DROPPED overflow.
func (d *Device) NextEvent() (rawevent.Event, error) {
	var buf [unsafe.Sizeof(wireEvent{})]byte
	if _, err := io.ReadFull(d.file, buf[:]); err != nil {
		return rawevent.Event{}, fmt.Errorf("read: %w", err)
	}
	we := (*wireEvent)(unsafe.Pointer(&buf[0]))

	ev := rawevent.Event{
		Type:   we.Type,
		Code:   we.Code,
		Value:  we.Value,
		TimeMS: we.Time.Sec*1000 + we.Time.Usec/1000,
	}
	if ev.Type == rawevent.EV_SYN && ev.Code == rawevent.SYN_DROPPED {
		return ev, rawevent.ErrSync
	}
	return ev, nil
}

// WriteLEDs writes one EV_LED event per entry in states followed by a
// terminating SYN_REPORT, satisfying device.LEDWriter for the
// best-effort LED update in spec.md §4.7. A write failure on any LED
// aborts the batch; the caller treats LED writes as best-effort and
// discards the error.
func (d *Device) WriteLEDs(states map[uint16]bool) error {
	for code, on := range states {
		if err := d.writeEvent(rawevent.EV_LED, code, boolToValue(on)); err != nil {
			return fmt.Errorf("write LED %d: %w", code, err)
		}
	}
	return d.writeEvent(rawevent.EV_SYN, rawevent.SYN_REPORT, 0)
}

func boolToValue(on bool) int32 {
	if on {
		return 1
	}
	return 0
}

func (d *Device) writeEvent(typ, code uint16, value int32) error {
	we := wireEvent{Type: typ, Code: code, Value: value}
	buf := (*[unsafe.Sizeof(wireEvent{})]byte)(unsafe.Pointer(&we))
	_, err := d.file.Write(buf[:])
	return err
}

// Now returns the current wall-clock time in milliseconds since the
// Unix epoch, for synthesizing events (e.g. release-on-remove) that did
// not come from the kernel. It is not a monotonic clock reading.
func Now() int64 {
	return time.Now().UnixMilli()
}

type InputID struct {
	BusType uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type inputAbsInfo struct {
	Value      int32
	Minimum    int32
	Maximum    int32
	Fuzz       int32
	Flat       int32
	Resolution int32
}

func control(conn syscall.RawConn, f func(uintptr) error) error {
	var ferr error
	err := conn.Control(func(fd uintptr) { ferr = f(fd) })
	return errors.Join(err, ferr)
}

func ioctl[T any](fd, name uintptr, data *T) unix.Errno {
	_, _, err := unix.Syscall(unix.SYS_IOCTL, fd, name, uintptr(unsafe.Pointer(data)))
	return err
}

func cctl[T any](conn syscall.RawConn, name uintptr, data *T) error {
	return control(conn, func(fd uintptr) error {
		return fromErrno(ioctl(fd, name, data))
	})
}

func fromErrno(err unix.Errno) error {
	if err == 0 {
		return nil
	}
	return err
}

func isBitSet(bits []byte, bit uint16) bool {
	return bits[bit/8]&(1<<(bit%8)) != 0
}

func fromNTString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return unsafe.String(&b[0], i)
		}
	}
	return unsafe.String(&b[0], len(b))
}

var _ rawevent.RawSource = (*Device)(nil)
