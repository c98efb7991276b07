package meta

import (
	"bytes"
	"testing"
)

func TestBlockHeaderRoundTrip(t *testing.T) {
	cases := []struct {
		isLast bool
		typ    BlockType
		length int
	}{
		{true, TypeStreamInfo, StreamInfoByteLength},
		{false, TypeVorbisComment, 1000},
		{false, TypePicture, 0xABCDE},
	}
	for _, c := range cases {
		var buf bytes.Buffer
		if err := WriteBlockHeader(&buf, c.isLast, c.typ, c.length); err != nil {
			t.Fatalf("WriteBlockHeader: %v", err)
		}
		h, err := NewBlockHeader(&buf)
		if err != nil {
			t.Fatalf("NewBlockHeader: %v", err)
		}
		if h.IsLast != c.isLast || h.BlockType != c.typ || h.Length != c.length {
			t.Errorf("round-tripped header = %+v, want {IsLast:%v BlockType:%v Length:%v}", h, c.isLast, c.typ, c.length)
		}
	}
}

func TestNewBlockParsesStreamInfo(t *testing.T) {
	si := &StreamInfo{
		MinBlockSize: 4096, MaxBlockSize: 4096,
		SampleRate: 44100, ChannelCount: 2, BitsPerSample: 16,
		SampleCount: 1000,
	}
	var body bytes.Buffer
	if err := WriteStreamInfo(&body, si); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	if err := WriteBlockHeader(&buf, true, TypeStreamInfo, body.Len()); err != nil {
		t.Fatal(err)
	}
	buf.Write(body.Bytes())

	block, err := NewBlock(&buf)
	if err != nil {
		t.Fatalf("NewBlock: %v", err)
	}
	got, ok := block.Body.(*StreamInfo)
	if !ok {
		t.Fatalf("block.Body has type %T, want *StreamInfo", block.Body)
	}
	if *got != *si {
		t.Errorf("parsed StreamInfo = %+v, want %+v", got, si)
	}
	if !block.Header.IsLast {
		t.Error("expected block header IsLast to be true")
	}
}

func TestNewBlockRejectsReservedType(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteBlockHeader(&buf, true, BlockType(10), 0); err != nil {
		t.Fatal(err)
	}
	if _, err := NewBlock(&buf); err == nil {
		t.Fatal("expected a reserved block type to be rejected")
	}
}
