// Package demux locates frame boundaries in a raw FLAC audio stream so the
// rewriter can see each frame as a whole packet without this system
// decoding a single subframe.
//
// FLAC frames do not carry their own length: the only way a decoder knows
// where one ends is to decode its subframes and see how many bits they
// consumed. Full subframe decoding is out of scope here, so Demuxer resyncs
// instead: it parses just enough of a header to know where the header ends,
// then scans forward for the next byte offset that looks like another valid
// header, corroborated by a matching CRC-8. Everything in between -- or
// between the last such point and end of stream -- is one frame's raw
// bytes, footer CRC-16 included.
//
// Grounded on original_source/flac-tracksplit/src/lib.rs's OffsetFrame
// driver, which receives whole frames from claxon's decoding packet reader
// (the resync here stands in for that decode-driven framing), and on this
// repository's teacher (mewkiz/flac's frame/header.go) for the
// header field layout, shared via internal/frameheader.
package demux

import (
	"bytes"
	"io"

	"github.com/pkg/errors"

	"github.com/cuesplit/cuesplit/internal/crcengine"
	"github.com/cuesplit/cuesplit/internal/frameheader"
	"github.com/cuesplit/cuesplit/internal/utf8int"
)

// Frame is one undecoded FLAC frame.
type Frame struct {
	// Data is the frame's raw bytes, header through footer CRC-16,
	// unmodified from the source stream.
	Data []byte
	// SampleCount is the number of samples in each of the frame's
	// subblocks, per its block-size encoding.
	SampleCount uint64
	// RawNumber is the frame header's extended-UTF8 coded number, verbatim.
	// Its meaning depends on IsVariableBlockSize: a sample number when true,
	// a frame number (multiply by the stream's fixed block size to recover
	// a sample number) when false.
	RawNumber uint64
	// IsVariableBlockSize reports whether the frame header's blocking
	// strategy bit marks RawNumber as a sample number rather than a frame
	// number.
	IsVariableBlockSize bool
}

// Demuxer splits a complete in-memory FLAC audio stream -- the bytes
// following a file's last metadata block -- into frames.
//
// The stream is held in memory because resyncing looks ahead of the frame
// currently being read, and because a FLAC file's audio data is read in
// full at least once regardless (the rewriter buffers a whole track before
// its STREAMINFO total_samples is known). Demuxer does not itself impose
// any further buffering cost beyond the caller's own.
type Demuxer struct {
	data   []byte
	offset int
}

// New returns a Demuxer over the raw frame bytes of a FLAC stream.
func New(data []byte) *Demuxer {
	return &Demuxer{data: data}
}

// Next returns the next frame, or io.EOF once the stream is exhausted.
func (d *Demuxer) Next() (*Frame, error) {
	if d.offset >= len(d.data) {
		return nil, io.EOF
	}

	hdrLen, sampleCount, rawNumber, isVariable, err := parseHeaderPrefix(d.data[d.offset:])
	if err != nil {
		return nil, errors.Wrapf(err, "demux: parsing frame header at offset %d", d.offset)
	}

	start := d.offset
	end := d.resync(start + hdrLen)
	d.offset = end

	return &Frame{
		Data:                d.data[start:end],
		SampleCount:         sampleCount,
		RawNumber:           rawNumber,
		IsVariableBlockSize: isVariable,
	}, nil
}

// resync scans forward from "from" for the next offset that looks like the
// start of a valid frame header, confirmed by a matching CRC-8. It returns
// len(d.data) if no such offset is found before the stream ends, meaning
// the current frame runs to end of stream.
func (d *Demuxer) resync(from int) int {
	for pos := from; pos+1 < len(d.data); pos++ {
		if !frameheader.LooksLikeSync(d.data[pos], d.data[pos+1]) {
			continue
		}
		if _, _, _, _, err := parseHeaderPrefix(d.data[pos:]); err == nil {
			return pos
		}
	}
	return len(d.data)
}

// parseHeaderPrefix parses a frame header far enough to validate its CRC-8
// and learn its total byte length and block sample count. It does not
// decode channel assignment or sample size, which the demuxer never needs.
func parseHeaderPrefix(buf []byte) (headerLen int, sampleCount, rawNumber uint64, isVariable bool, err error) {
	r := bytes.NewReader(buf)
	var headerCRC crcengine.CRC8

	var head [2]byte
	if _, err := io.ReadFull(r, head[:]); err != nil {
		return 0, 0, 0, false, err
	}
	if !frameheader.LooksLikeSync(head[0], head[1]) {
		return 0, 0, 0, false, errors.New("demux: invalid frame sync")
	}
	headerCRC.ProcessDoubleBytes(head)
	isVariable = head[1]&0x01 != 0

	var desc [2]byte
	if _, err := io.ReadFull(r, desc[:]); err != nil {
		return 0, 0, 0, false, err
	}
	headerCRC.ProcessDoubleBytes(desc)
	blockEnc := frameheader.BlockSizeEnc(desc[0] >> 4)
	rateEnc := desc[0] & 0x0F

	numStart := len(buf) - r.Len()
	rawNumber, _, err = utf8int.Decode(r)
	if err != nil {
		return 0, 0, 0, false, err
	}
	numEnd := len(buf) - r.Len()
	headerCRC.ProcessBufBytes(buf[numStart:numEnd])

	sampleCount, blockTail, err := frameheader.ReadBlockSizeTail(r, blockEnc)
	if err != nil {
		return 0, 0, 0, false, err
	}
	headerCRC.ProcessBufBytes(blockTail)

	rateTail, err := frameheader.ReadSampleRateTail(r, rateEnc)
	if err != nil {
		return 0, 0, 0, false, err
	}
	headerCRC.ProcessBufBytes(rateTail)

	var crcByte [1]byte
	if _, err := io.ReadFull(r, crcByte[:]); err != nil {
		return 0, 0, 0, false, err
	}
	if crcByte[0] != headerCRC.Sum() {
		return 0, 0, 0, false, errors.New("demux: header CRC-8 mismatch")
	}

	return len(buf) - r.Len(), sampleCount, rawNumber, isVariable, nil
}
