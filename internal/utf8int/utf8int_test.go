package utf8int

import (
	"bufio"
	"bytes"
	"testing"

	"github.com/icza/bitio"
)

func encode(t *testing.T, x uint64) []byte {
	t.Helper()
	buf, err := EncodeBytes(x)
	if err != nil {
		t.Fatalf("EncodeBytes(%d): %v", x, err)
	}
	return buf
}

func decode(t *testing.T, buf []byte) (uint64, int) {
	t.Helper()
	val, n, err := Decode(bufio.NewReader(bytes.NewReader(buf)))
	if err != nil {
		t.Fatalf("Decode(%x): %v", buf, err)
	}
	return val, n
}

func TestRoundTripConcreteScenarios(t *testing.T) {
	cases := []struct {
		val    uint64
		length int
	}{
		{0x04, 1},
		{0x85, 2},
		{0x863, 3},
		{0x18427, 4},
		{0x0000f88204, 5},
		{0x000000008790, 3},
	}
	for _, c := range cases {
		buf := encode(t, c.val)
		if len(buf) != c.length {
			t.Errorf("encode(0x%X): length = %d, want %d", c.val, len(buf), c.length)
		}
		val, n := decode(t, buf)
		if val != c.val || n != c.length {
			t.Errorf("decode(encode(0x%X)) = (0x%X, %d), want (0x%X, %d)", c.val, val, n, c.val, c.length)
		}
	}
}

func TestRoundTripSweep(t *testing.T) {
	inputs := []uint64{
		0, 1, 0x7F, 0x80, 0x7FF, 0x800, 0xFFFF, 0x10000,
		0x1FFFFF, 0x200000, 0x3FFFFFF, 0x4000000,
		0x7FFFFFFF, 0x80000000, MaxValue,
	}
	for _, x := range inputs {
		buf := encode(t, x)
		val, n := decode(t, buf)
		if val != x || n != len(buf) {
			t.Errorf("decode(encode(%d)) = (%d, %d), want (%d, %d)", x, val, n, x, len(buf))
		}
	}
}

func TestEncodeTooLargeFails(t *testing.T) {
	if _, err := EncodeBytes(MaxValue + 1); err == nil {
		t.Fatal("expected an error encoding a value beyond the 36-bit range")
	}
}

func TestDecodeInvalidLeadByte(t *testing.T) {
	for _, b0 := range []byte{0x80, 0xBF, 0xFF} {
		if _, _, err := Decode(bufio.NewReader(bytes.NewReader([]byte{b0, 0x80}))); err == nil {
			t.Errorf("expected decode of lead byte 0x%02X to fail", b0)
		}
	}
}

func TestEncodeUsesExpectedLeadingMask(t *testing.T) {
	// A 7-byte encoding (36 bits) has a lead byte of exactly 0xFE.
	buf := encode(t, MaxValue)
	if len(buf) != 7 || buf[0] != 0xFE {
		t.Fatalf("encode(MaxValue) = %x, want 7 bytes starting with 0xFE", buf)
	}
}

func TestEncodeWritesViaBitioWriter(t *testing.T) {
	var out bytes.Buffer
	bw := bitio.NewWriter(&out)
	n, err := Encode(bw, 0x863)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("bw.Close: %v", err)
	}
	if n != out.Len() {
		t.Errorf("Encode reported %d bytes, wrote %d", n, out.Len())
	}
}
