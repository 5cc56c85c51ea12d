// Package slotalloc implements the seat-wide bitmap of stable touch
// identifiers described by spec.md's Seat.slot_map: a 32-bit pool
// shared by every device on the seat, mutated only during a flush on
// the seat's single processing goroutine.
package slotalloc

import "math/bits"

// None is the seat-slot value for "no seat slot assigned", matching
// the data model's seat_slot == -1 convention.
const None = -1

// MaxSlots is the hard cap on simultaneous seat-wide touches: the
// bitmap is 32 bits, per spec.md §9 ("not a buffer").
const MaxSlots = 32

// Bitmap is a fixed 32-bit allocator: bit i set means seat slot i is
// currently in use by some device's slot record.
type Bitmap struct {
	used uint32
}

// Acquire claims the lowest clear bit, mirroring libinput's
// ffs(~slot_map) - 1. It reports ok=false if every slot is taken, in
// which case the caller must mark its slot "taken without a seat
// slot" per spec.md §9 and emit nothing until the matching up.
func (b *Bitmap) Acquire() (seatSlot int, ok bool) {
	free := ^b.used
	if free == 0 {
		return None, false
	}
	seatSlot = bits.TrailingZeros32(free)
	b.used |= 1 << uint(seatSlot)
	return seatSlot, true
}

// Release clears seatSlot's bit. Releasing None or an already-clear
// bit is a no-op.
func (b *Bitmap) Release(seatSlot int) {
	if seatSlot < 0 || seatSlot >= MaxSlots {
		return
	}
	b.used &^= 1 << uint(seatSlot)
}

// Popcount returns the number of seat slots currently in use, the
// left-hand side of the invariant in spec.md §3.
func (b *Bitmap) Popcount() int {
	return bits.OnesCount32(b.used)
}

// IsSet reports whether seatSlot is currently allocated.
func (b *Bitmap) IsSet(seatSlot int) bool {
	if seatSlot < 0 || seatSlot >= MaxSlots {
		return false
	}
	return b.used&(1<<uint(seatSlot)) != 0
}
