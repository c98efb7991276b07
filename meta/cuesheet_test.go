package meta

import (
	"bytes"
	"encoding/binary"
	"testing"
)

// buildCueSheet assembles a CUESHEET block body for a single-track,
// compact-disc cue sheet plus its mandatory lead-out track.
func buildCueSheet(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer

	mcn := make([]byte, 128)
	copy(mcn, "1234567890123")
	buf.Write(mcn)

	binary.Write(&buf, binary.BigEndian, uint64(88200)) // lead-in
	buf.WriteByte(0x80)                                 // is compact disc, reserved=0
	buf.Write(make([]byte, 258))                        // reserved
	buf.WriteByte(2)                                     // track count: 1 track + lead-out

	// Track 1.
	binary.Write(&buf, binary.BigEndian, uint64(0))
	buf.WriteByte(1)
	isrc := make([]byte, 12)
	buf.Write(isrc)
	buf.WriteByte(0x00) // audio, no pre-emphasis
	buf.Write(make([]byte, 13))
	buf.WriteByte(1) // one index point
	binary.Write(&buf, binary.BigEndian, uint64(0))
	buf.WriteByte(1)
	buf.Write(make([]byte, 3))

	// Lead-out track.
	binary.Write(&buf, binary.BigEndian, uint64(2469600))
	buf.WriteByte(170)
	buf.Write(isrc)
	buf.WriteByte(0x00)
	buf.Write(make([]byte, 13))
	buf.WriteByte(0) // no index points

	return buf.Bytes()
}

func TestCueSheetParsesLeadOut(t *testing.T) {
	cs, err := NewCueSheet(bytes.NewReader(buildCueSheet(t)))
	if err != nil {
		t.Fatalf("NewCueSheet: %v", err)
	}
	if cs.TrackCount != 2 {
		t.Fatalf("TrackCount = %d, want 2", cs.TrackCount)
	}
	last := cs.Tracks[len(cs.Tracks)-1]
	if last.TrackNum != cs.LeadOutTrackNum() {
		t.Errorf("lead-out track number = %d, want %d", last.TrackNum, cs.LeadOutTrackNum())
	}
	if len(last.TrackIndexes) != 0 {
		t.Errorf("lead-out track has %d index points, want 0", len(last.TrackIndexes))
	}
	if cs.Tracks[0].TrackNum != 1 || len(cs.Tracks[0].TrackIndexes) != 1 {
		t.Errorf("track 1 = %+v, want TrackNum=1 with one index point", cs.Tracks[0])
	}
}

func TestCueSheetRejectsNonCDDALeadIn(t *testing.T) {
	body := buildCueSheet(t)
	body[128+8] = 0x00 // clear the compact-disc bit, leaving a non-zero lead-in
	if _, err := NewCueSheet(bytes.NewReader(body)); err == nil {
		t.Fatal("expected a non-zero lead-in on a non-CD-DA cue sheet to be rejected")
	}
}
