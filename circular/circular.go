package circular

import (
	"math/bits"

	"github.com/grailbio/cmbf/interval"
)

// NextExp2 returns the next power of 2 strictly greater than x.  (Useful when
// setting circular buffer size.)
func NextExp2(x int) int {
	log2 := 63 - bits.LeadingZeros64(uint64(x))
	return 2 << uint32(log2)
}

// Ring is a FIFO of interval records backed by a power-of-2 circular buffer.
// Records are appended at the back and dropped from the front, which is how a
// window slides along a chromosome.
type Ring struct {
	buf  []interval.Record
	mask int
	head int
	n    int
}

// NewRing returns a Ring able to hold at least capacity records.
func NewRing(capacity int) *Ring {
	if capacity < 1 {
		capacity = 1
	}
	size := NextExp2(capacity)
	return &Ring{
		buf:  make([]interval.Record, size),
		mask: size - 1,
	}
}

// Len returns the number of records in r.
func (r *Ring) Len() int { return r.n }

// Cap returns the number of records r can hold.
func (r *Ring) Cap() int { return len(r.buf) }

// PushBack appends rec.  It panics if the ring is full.
func (r *Ring) PushBack(rec interval.Record) {
	if r.n == len(r.buf) {
		panic("circular.Ring: PushBack on full ring")
	}
	r.buf[(r.head+r.n)&r.mask] = rec
	r.n++
}

// PopFront removes and returns the oldest record.  It panics if the ring is
// empty.
func (r *Ring) PopFront() interval.Record {
	if r.n == 0 {
		panic("circular.Ring: PopFront on empty ring")
	}
	rec := r.buf[r.head]
	r.buf[r.head] = interval.Record{}
	r.head = (r.head + 1) & r.mask
	r.n--
	return rec
}

// At returns a pointer to the i'th record from the front.  The pointer is
// invalidated by the next PopFront.
func (r *Ring) At(i int) *interval.Record {
	if i < 0 || i >= r.n {
		panic("circular.Ring: index out of range")
	}
	return &r.buf[(r.head+i)&r.mask]
}

// Front returns the oldest record.
func (r *Ring) Front() *interval.Record { return r.At(0) }

// Back returns the newest record.
func (r *Ring) Back() *interval.Record { return r.At(r.n - 1) }
