// Package utf8int implements FLAC's extended-UTF8 variable-width integer
// coding, used by frame headers to store sample and frame numbers. The
// encoding widens UTF-8's prefix scheme from a maximum of 4 bytes to 7,
// carrying up to 36 bits of payload.
package utf8int

import (
	"io"

	"github.com/icza/bitio"
	"github.com/mewkiz/pkg/errutil"
)

// MaxValue is the largest integer representable in 7 bytes (36 set bits).
const MaxValue = 1<<36 - 1

const (
	tx = 0x80 // 1000 0000
	t2 = 0xC0 // 1100 0000
	t3 = 0xE0 // 1110 0000
	t4 = 0xF0 // 1111 0000
	t5 = 0xF8 // 1111 1000
	t6 = 0xFC // 1111 1100
	t7 = 0xFE // 1111 1110

	maskx = 0x3F // 0011 1111
	mask2 = 0x1F // 0001 1111
	mask3 = 0x0F // 0000 1111
	mask4 = 0x07 // 0000 0111
	mask5 = 0x03 // 0000 0011
	mask6 = 0x01 // 0000 0001

	rune1Max = 1<<7 - 1
	rune2Max = 1<<11 - 1
	rune3Max = 1<<16 - 1
	rune4Max = 1<<21 - 1
	rune5Max = 1<<26 - 1
	rune6Max = 1<<31 - 1
	rune7Max = 1<<36 - 1
)

// Encode writes x to bw as an extended-UTF8 integer and returns the number of
// bytes written. It fails if x exceeds MaxValue.
func Encode(bw bitio.Writer, x uint64) (int, error) {
	if x > rune7Max {
		return 0, errutil.Newf("utf8int.Encode: value %d exceeds the 36-bit extended-UTF8 range", x)
	}

	// 1-byte, 7-bit sequence.
	if x <= rune1Max {
		if err := bw.WriteBits(x, 8); err != nil {
			return 0, errutil.Err(err)
		}
		return 1, nil
	}

	// Number of continuation bytes and the data bits carried by the lead byte.
	var (
		l    int
		bits uint64
	)
	switch {
	case x <= rune2Max:
		l = 1
		bits = uint64(t2) | (x>>6)&mask2
	case x <= rune3Max:
		l = 2
		bits = uint64(t3) | (x>>(6*2))&mask3
	case x <= rune4Max:
		l = 3
		bits = uint64(t4) | (x>>(6*3))&mask4
	case x <= rune5Max:
		l = 4
		bits = uint64(t5) | (x>>(6*4))&mask5
	case x <= rune6Max:
		l = 5
		bits = uint64(t6) | (x>>(6*5))&mask6
	default: // x <= rune7Max
		l = 6
		bits = uint64(t7)
	}
	if err := bw.WriteBits(bits, 8); err != nil {
		return 0, errutil.Err(err)
	}
	for i := l - 1; i >= 0; i-- {
		cont := uint64(tx) | (x>>uint(6*i))&maskx
		if err := bw.WriteBits(cont, 8); err != nil {
			return 0, errutil.Err(err)
		}
	}
	return l + 1, nil
}

// EncodeBytes is a convenience wrapper around Encode that returns the encoded
// bytes directly, without the caller having to manage a bitio.Writer.
func EncodeBytes(x uint64) ([]byte, error) {
	buf := make([]byte, 0, 7)
	w := &byteSliceWriter{buf: &buf}
	bw := bitio.NewWriter(w)
	if _, err := Encode(bw, x); err != nil {
		return nil, err
	}
	if err := bw.Close(); err != nil {
		return nil, errutil.Err(err)
	}
	return buf, nil
}

type byteSliceWriter struct {
	buf *[]byte
}

func (w *byteSliceWriter) Write(p []byte) (int, error) {
	*w.buf = append(*w.buf, p...)
	return len(p), nil
}

// Decode reads an extended-UTF8 integer from r and returns its value and the
// number of bytes consumed. Continuation bytes are not validated to begin
// with 0b10 before their low 6 bits are spliced in, matching the reference
// decoder this package is modeled on.
func Decode(r io.ByteReader) (uint64, int, error) {
	b0, err := r.ReadByte()
	if err != nil {
		return 0, 0, errutil.Err(err)
	}
	state := uint64(b0)

	var mask uint8
	switch {
	case b0 <= 0x7f:
		return state, 1, nil
	case b0>>5 == 0b110:
		mask = mask2
	case b0>>4 == 0b1110:
		mask = mask3
	case b0>>3 == 0b11110:
		mask = mask4
	case b0>>2 == 0b111110:
		mask = mask5
	case b0>>1 == 0b1111110:
		mask = mask6
	case b0 == 0xfe:
		mask = 0
	default:
		return 0, 0, errutil.Newf("utf8int.Decode: invalid extended-UTF8 leading byte 0x%02X", b0)
	}
	state &= uint64(mask)

	// The number of continuation bytes equals the count of leading 1 bits in
	// b0 minus one; continuationCount derives it from b0's prefix.
	n := continuationCount(b0)
	for i := 0; i < n; i++ {
		cb, err := r.ReadByte()
		if err != nil {
			return 0, 0, errutil.Err(err)
		}
		state = (state << 6) | uint64(cb&maskx)
	}
	return state, n + 1, nil
}

// continuationCount returns how many continuation bytes follow a lead byte
// whose top bits were already classified as a valid multi-byte prefix.
func continuationCount(b0 byte) int {
	switch {
	case b0>>5 == 0b110:
		return 1
	case b0>>4 == 0b1110:
		return 2
	case b0>>3 == 0b11110:
		return 3
	case b0>>2 == 0b111110:
		return 4
	case b0>>1 == 0b1111110:
		return 5
	case b0 == 0xfe:
		return 6
	}
	return 0
}
