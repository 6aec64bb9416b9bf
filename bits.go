package bitrie

import (
	"math/bits"
	"strings"
)

// Bits is an immutable bit sequence, most significant bit first within each
// backing byte. Skip and Take return views over the same buffer, so the
// buffer must not be modified once a Bits refers to it.
type Bits struct {
	buf   []byte
	start int
	n     int
}

// BitsFromBytes returns the 8*len(b) bits of b. b is not copied.
func BitsFromBytes(b []byte) Bits {
	return Bits{buf: b, n: len(b) * 8}
}

// BitsFromBools packs a logical bit list, true being 1.
func BitsFromBools(list []bool) Bits {
	buf := make([]byte, (len(list)+7)/8)
	for i, bit := range list {
		if bit {
			buf[i>>3] |= 0x80 >> (i & 7)
		}
	}
	return Bits{buf: buf, n: len(list)}
}

func (b Bits) Len() int {
	return b.n
}

// At returns bit i as 0 or 1. It panics if i is out of range.
func (b Bits) At(i int) uint8 {
	if i < 0 || i >= b.n {
		panic("bitrie: bit index out of range")
	}
	pos := b.start + i
	return (b.buf[pos>>3] >> (7 - pos&7)) & 1
}

// First returns the leading bit.
func (b Bits) First() (uint8, error) {
	if b.n == 0 {
		return 0, ErrEmptySequence
	}
	return b.At(0), nil
}

// Skip drops the first n bits. Counts past the end give an empty sequence.
func (b Bits) Skip(n int) Bits {
	n = clampLen(n, b.n)
	return Bits{buf: b.buf, start: b.start + n, n: b.n - n}
}

// Take keeps the first n bits. Counts past the end give the whole sequence.
func (b Bits) Take(n int) Bits {
	n = clampLen(n, b.n)
	return Bits{buf: b.buf, start: b.start, n: n}
}

func clampLen(n, limit int) int {
	if n < 0 {
		return 0
	}
	if n > limit {
		return limit
	}
	return n
}

// load8 returns the 8 bits starting at bit i. Bits past the end of the
// backing buffer read as zero; bits past b.n are not masked.
func (b Bits) load8(i int) byte {
	pos := b.start + i
	idx, sh := pos>>3, pos&7
	if idx >= len(b.buf) {
		return 0
	}
	v := b.buf[idx] << sh
	if sh != 0 && idx+1 < len(b.buf) {
		v |= b.buf[idx+1] >> (8 - sh)
	}
	return v
}

// CommonPrefixLen returns the number of leading bits b and o share.
func (b Bits) CommonPrefixLen(o Bits) int {
	m := min(b.n, o.n)
	for i := 0; i < m; i += 8 {
		x := b.load8(i) ^ o.load8(i)
		if r := m - i; r < 8 {
			x &= 0xFF << (8 - r)
		}
		if x != 0 {
			return i + bits.LeadingZeros8(x)
		}
	}
	return m
}

func (b Bits) Equal(o Bits) bool {
	return b.n == o.n && b.CommonPrefixLen(o) == b.n
}

// Compare orders bit by bit; a proper prefix sorts before its extensions.
// For whole-byte sequences this agrees with bytes.Compare.
func (b Bits) Compare(o Bits) int {
	cpl := b.CommonPrefixLen(o)
	switch {
	case cpl == b.n && cpl == o.n:
		return 0
	case cpl == b.n:
		return -1
	case cpl == o.n:
		return 1
	case b.At(cpl) < o.At(cpl):
		return -1
	default:
		return 1
	}
}

// PaddedBytes packs the bits into ceil(Len/8) bytes, zero filling the tail
// of the last byte.
func (b Bits) PaddedBytes() []byte {
	out := make([]byte, (b.n+7)/8)
	if b.start&7 == 0 {
		copy(out, b.buf[b.start>>3:])
	} else {
		for i := range out {
			out[i] = b.load8(i * 8)
		}
	}
	if r := b.n & 7; r != 0 {
		out[len(out)-1] &= 0xFF << (8 - r)
	}
	return out
}

// Bytes is PaddedBytes for sequences made of whole bytes only.
func (b Bits) Bytes() ([]byte, error) {
	if b.n&7 != 0 {
		return nil, ErrPartialByte
	}
	return b.PaddedBytes(), nil
}

// Concat returns a new sequence holding b followed by o.
func (b Bits) Concat(o Bits) Bits {
	if o.n == 0 {
		return b
	}
	if b.n == 0 {
		return o
	}
	total := b.n + o.n
	out := make([]byte, (total+7)/8)
	copy(out, b.PaddedBytes())
	for i := 0; i < o.n; i += 8 {
		v := o.load8(i)
		if r := o.n - i; r < 8 {
			v &= 0xFF << (8 - r)
		}
		pos := b.n + i
		idx, sh := pos>>3, pos&7
		out[idx] |= v >> sh
		if sh != 0 && idx+1 < len(out) {
			out[idx+1] |= v << (8 - sh)
		}
	}
	return Bits{buf: out, n: total}
}

// Append returns b followed by a single bit.
func (b Bits) Append(bit uint8) Bits {
	return b.Concat(Bits{buf: []byte{bit << 7}, n: 1})
}

func (b Bits) Bools() []bool {
	out := make([]bool, b.n)
	for i := range out {
		out[i] = b.At(i) == 1
	}
	return out
}

func (b Bits) String() string {
	var sb strings.Builder
	sb.Grow(b.n)
	for i := 0; i < b.n; i++ {
		sb.WriteByte('0' + b.At(i))
	}
	return sb.String()
}
