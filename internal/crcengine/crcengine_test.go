package crcengine

import "testing"

// check is the classic CRC catalog check string "123456789".
var check = []byte("123456789")

func TestCRC8KnownVector(t *testing.T) {
	var c CRC8
	c.ProcessBufBytes(check)
	if got, want := c.Sum(), byte(0xF4); got != want {
		t.Errorf("CRC8 of %q = 0x%02X, want 0x%02X", check, got, want)
	}
}

func TestCRC16KnownVector(t *testing.T) {
	var c CRC16
	c.ProcessBufBytes(check)
	if got, want := c.Sum(), uint16(0xBB3D); got != want {
		t.Errorf("CRC16 of %q = 0x%04X, want 0x%04X", check, got, want)
	}
}

func TestCRC8BatchMatchesByteAtATime(t *testing.T) {
	var byBuf, byByte CRC8
	byBuf.ProcessBufBytes(check)
	for _, b := range check {
		byByte.ProcessByte(b)
	}
	if byBuf.Sum() != byByte.Sum() {
		t.Errorf("buffered CRC8 (0x%02X) disagrees with byte-at-a-time (0x%02X)", byBuf.Sum(), byByte.Sum())
	}
}

func TestCRC16BatchMatchesByteAtATime(t *testing.T) {
	var byBuf, byByte CRC16
	byBuf.ProcessBufBytes(check)
	for _, b := range check {
		byByte.ProcessByte(b)
	}
	if byBuf.Sum() != byByte.Sum() {
		t.Errorf("buffered CRC16 (0x%04X) disagrees with byte-at-a-time (0x%04X)", byBuf.Sum(), byByte.Sum())
	}
}

func TestCRC16ProcessDoubleBytes(t *testing.T) {
	var viaDouble, viaSingle CRC16
	pairs := [][2]byte{{'1', '2'}, {'3', '4'}, {'5', '6'}, {'7', '8'}}
	for _, p := range pairs {
		viaDouble.ProcessDoubleBytes(p)
		viaSingle.ProcessByte(p[0])
		viaSingle.ProcessByte(p[1])
	}
	if viaDouble.Sum() != viaSingle.Sum() {
		t.Errorf("ProcessDoubleBytes (0x%04X) disagrees with two ProcessByte calls (0x%04X)", viaDouble.Sum(), viaSingle.Sum())
	}
}
