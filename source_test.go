package cuesplit

import (
	"bytes"
	"testing"

	"github.com/cuesplit/cuesplit/meta"
	"github.com/cuesplit/cuesplit/track"
)

func TestParseRoundTripsWhatWriteOutputWrote(t *testing.T) {
	si := &meta.StreamInfo{
		MinBlockSize: 4096, MaxBlockSize: 4096,
		SampleRate: 44100, ChannelCount: 2, BitsPerSample: 16,
		SampleCount: 10000,
	}
	tags := []track.Tag{{Key: "TITLE", Value: "Example"}, {Key: "ARTIST", Value: "Example Artist"}}
	visuals := []*meta.Picture{{Type: 3, MIME: "image/png", Data: []byte{0x89, 0x50, 0x4E, 0x47}}}
	audio := []byte{0xFF, 0xF9, 0xDE, 0xAD, 0xBE, 0xEF}

	var buf bytes.Buffer
	if err := writeOutput(&buf, si, "test vendor", tags, visuals, 37, audio); err != nil {
		t.Fatalf("writeOutput: %v", err)
	}

	src, err := Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if *src.StreamInfo != *si {
		t.Errorf("StreamInfo = %+v, want %+v", src.StreamInfo, si)
	}
	if src.Vendor != "test vendor" {
		t.Errorf("Vendor = %q, want %q", src.Vendor, "test vendor")
	}
	if len(src.Tags) != len(tags) {
		t.Fatalf("Tags = %+v, want %+v", src.Tags, tags)
	}
	for i, tag := range tags {
		if src.Tags[i] != tag {
			t.Errorf("Tags[%d] = %+v, want %+v", i, src.Tags[i], tag)
		}
	}
	if len(src.Visuals) != 1 || src.Visuals[0].MIME != "image/png" {
		t.Errorf("Visuals = %+v, want one image/png picture", src.Visuals)
	}
	if !bytes.Equal(src.Audio, audio) {
		t.Errorf("Audio = % X, want % X", src.Audio, audio)
	}
}

func TestParseRejectsBadMagic(t *testing.T) {
	_, err := Parse(bytes.NewReader([]byte("nope")))
	if err == nil {
		t.Fatal("expected an error for a stream with no FLAC magic")
	}
}

func TestParseRejectsMissingStreamInfo(t *testing.T) {
	var buf bytes.Buffer
	buf.Write(flacMagic[:])
	if err := meta.WriteBlockHeader(&buf, true, meta.TypePadding, 4); err != nil {
		t.Fatal(err)
	}
	buf.Write(make([]byte, 4))
	if _, err := Parse(&buf); err == nil {
		t.Fatal("expected an error for a stream with no STREAMINFO block")
	}
}
