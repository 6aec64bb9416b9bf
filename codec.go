package bitrie

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Node record layout, little-endian:
//
//	[0]      value presence flag, 0x00 or 0xFF
//	[1:5]    one child offset
//	[5:9]    one child live count
//	[9:13]   zero child offset
//	[13:17]  zero child live count
//	[17:19]  prefix length in bits
//	[19:]    prefix bits, MSB first, padded to a whole byte
//	         then, if present: value length (2 bytes) and value bytes
//
// Bytes [0:17] form the mutable header, the rest is written once.
const (
	flagAbsent  byte = 0x00
	flagPresent byte = 0xFF

	headerSize   = 17
	fixedSize    = headerSize + 2
	valueLenSize = 2

	maxPrefixBits = math.MaxUint16
	maxValueLen   = math.MaxUint16
)

func putU16(dst []byte, v uint16) { binary.LittleEndian.PutUint16(dst, v) }
func putU32(dst []byte, v uint32) { binary.LittleEndian.PutUint32(dst, v) }
func readU16(b []byte) uint16     { return binary.LittleEndian.Uint16(b) }
func readU32(b []byte) uint32     { return binary.LittleEndian.Uint32(b) }

func marshalHeader(dst []byte, n *node) {
	if n.hasValue {
		dst[0] = flagPresent
	} else {
		dst[0] = flagAbsent
	}
	putU32(dst[1:5], uint32(n.child[1]))
	putU32(dst[5:9], n.count[1])
	putU32(dst[9:13], uint32(n.child[0]))
	putU32(dst[13:17], n.count[0])
}

func unmarshalHeader(src []byte, n *node) error {
	switch src[0] {
	case flagAbsent:
		n.hasValue = false
	case flagPresent:
		n.hasValue = true
	default:
		return fmt.Errorf("%w: invalid value flag 0x%02x at offset %d", ErrCorruptStore, src[0], n.ref)
	}
	n.child[1] = nodeRef(readU32(src[1:5]))
	n.count[1] = readU32(src[5:9])
	n.child[0] = nodeRef(readU32(src[9:13]))
	n.count[0] = readU32(src[13:17])
	return nil
}

func recordSize(n *node) int {
	size := fixedSize + (n.prefix.Len()+7)/8
	if n.hasValue {
		size += valueLenSize + len(n.value)
	}
	return size
}

func checkLimits(prefix Bits, value []byte) error {
	if prefix.Len() > maxPrefixBits {
		return fmt.Errorf("%w: prefix of %d bits", ErrKeyTooLong, prefix.Len())
	}
	if len(value) > maxValueLen {
		return fmt.Errorf("%w: %d bytes", ErrValueTooLong, len(value))
	}
	return nil
}

// marshalRecord encodes the full record of n.
func marshalRecord(n *node) []byte {
	buf := make([]byte, recordSize(n))
	marshalHeader(buf, n)
	putU16(buf[headerSize:fixedSize], uint16(n.prefix.Len()))
	off := fixedSize + copy(buf[fixedSize:], n.prefix.PaddedBytes())
	if n.hasValue {
		putU16(buf[off:off+valueLenSize], uint16(len(n.value)))
		copy(buf[off+valueLenSize:], n.value)
	}
	return buf
}
