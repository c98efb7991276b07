package offsetframe

import (
	"bytes"
	"encoding/binary"
	"testing"

	"github.com/cuesplit/cuesplit/internal/crcengine"
	"github.com/cuesplit/cuesplit/internal/utf8int"
)

// buildFrame assembles a syntactically valid, self-consistent FLAC frame for
// testing: a fixed sync/descriptor pair, the given sample number, the tail
// bytes its block-size/sample-rate encodings require, arbitrary subframe
// bytes, and correctly computed header/footer CRCs.
func buildFrame(t *testing.T, sampleNum uint64, blockEnc, rateEnc byte, blockTail, rateTail, subframes []byte) []byte {
	t.Helper()
	var buf bytes.Buffer
	buf.Write([]byte{0xFF, 0xF9}) // sync + reserved(0) + variable-blocksize(1)
	buf.Write([]byte{(blockEnc << 4) | rateEnc, 0x08})
	encoded, err := utf8int.EncodeBytes(sampleNum)
	if err != nil {
		t.Fatalf("encoding sample number %d: %v", sampleNum, err)
	}
	buf.Write(encoded)
	buf.Write(blockTail)
	buf.Write(rateTail)

	var headerCRC crcengine.CRC8
	headerCRC.ProcessBufBytes(buf.Bytes())
	buf.WriteByte(headerCRC.Sum())

	buf.Write(subframes)

	var footerCRC crcengine.CRC16
	footerCRC.ProcessBufBytes(buf.Bytes())
	var footerBuf [2]byte
	binary.BigEndian.PutUint16(footerBuf[:], footerCRC.Sum())
	buf.Write(footerBuf[:])

	return buf.Bytes()
}

func TestIdempotentAtZeroOffset(t *testing.T) {
	frame := buildFrame(t, 0, 0b0001, 0b1001, nil, nil, []byte{0xDE, 0xAD, 0xBE, 0xEF})

	var f OffsetFrame
	out, err := f.Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if !bytes.Equal(out, frame) {
		t.Errorf("frame starting at sample 0 should be rewritten byte-for-byte identical\ngot:  % X\nwant: % X", out, frame)
	}
}

func TestHeaderAndFooterCRCValidity(t *testing.T) {
	frame := buildFrame(t, 100, 0b0001, 0b1001, nil, nil, []byte{0x11, 0x22, 0x33, 0x44})
	var f OffsetFrame
	out, err := f.Process(frame)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}

	// sample 100 rebased to 0 (first frame establishes the base) encodes in
	// 1 byte, same width as the source, so the prelude layout is fixed.
	const prelude = 2 + 2 + 1
	headerByte := out[prelude]
	var headerCRC crcengine.CRC8
	headerCRC.ProcessBufBytes(out[:prelude])
	if headerCRC.Sum() != headerByte {
		t.Errorf("header CRC-8 mismatch: computed 0x%02X, embedded 0x%02X", headerCRC.Sum(), headerByte)
	}

	var footerCRC crcengine.CRC16
	footerCRC.ProcessBufBytes(out[:len(out)-2])
	gotFooter := binary.BigEndian.Uint16(out[len(out)-2:])
	if footerCRC.Sum() != gotFooter {
		t.Errorf("footer CRC-16 mismatch: computed 0x%04X, embedded 0x%04X", footerCRC.Sum(), gotFooter)
	}
}

func TestSecondFrameIsRebasedRelativeToFirst(t *testing.T) {
	first := buildFrame(t, 1000, 0b0001, 0b1001, nil, nil, []byte{0xAA})
	second := buildFrame(t, 1192, 0b0001, 0b1001, nil, nil, []byte{0xBB})

	var f OffsetFrame
	if _, err := f.Process(first); err != nil {
		t.Fatalf("Process(first): %v", err)
	}
	out, err := f.Process(second)
	if err != nil {
		t.Fatalf("Process(second): %v", err)
	}

	const prelude = 2 + 2
	val, n, err := utf8int.Decode(bytes.NewReader(out[prelude:]))
	if err != nil {
		t.Fatalf("decoding rebased sample number: %v", err)
	}
	if val != 192 {
		t.Errorf("second frame sample number = %d, want 192 (1192 - 1000)", val)
	}
	_ = n
}

func TestSamplesProcessedAccounting(t *testing.T) {
	frames := []struct {
		sampleNum       uint64
		blockEnc        byte
		blockTail       []byte
		expectedSamples uint64
	}{
		{0, 0b0001, nil, 192},                     // fixed 192
		{192, 0b0100, nil, 576 * 4},                // 576 * 2^(4-2)
		{192 + 576*4, 0b0110, []byte{0x63}, 0x63},  // 8-bit tail, verbatim n
		{192 + 576*4 + 0x63, 0b1000, nil, 256},     // 256 * 2^(8-8)
	}

	var f OffsetFrame
	var want uint64
	for _, fr := range frames {
		frame := buildFrame(t, fr.sampleNum, fr.blockEnc, 0b1001, fr.blockTail, nil, []byte{0x01})
		if _, err := f.Process(frame); err != nil {
			t.Fatalf("Process: %v", err)
		}
		want += fr.expectedSamples
	}
	if f.SamplesProcessed() != want {
		t.Errorf("SamplesProcessed() = %d, want %d", f.SamplesProcessed(), want)
	}
}

func TestReservedBlockSizeFails(t *testing.T) {
	frame := buildFrame(t, 0, 0b0000, 0b1001, nil, nil, []byte{0x01})
	var f OffsetFrame
	if _, err := f.Process(frame); err == nil {
		t.Fatal("expected reserved block-size encoding to fail")
	}
}

func TestInvalidSampleRateFails(t *testing.T) {
	frame := buildFrame(t, 0, 0b0001, 0b1111, nil, nil, []byte{0x01})
	var f OffsetFrame
	if _, err := f.Process(frame); err == nil {
		t.Fatal("expected sync-fooling sample-rate encoding to fail")
	}
}

func TestShortFrameFails(t *testing.T) {
	var f OffsetFrame
	if _, err := f.Process([]byte{0xFF, 0xF9, 0x19, 0x08}); err == nil {
		t.Fatal("expected a truncated frame to fail")
	}
}
