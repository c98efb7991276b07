// Package offsetframe implements the frame rewriter: the part of this
// system where correctness is binary-exact. It walks a single FLAC frame
// far enough to find the embedded sample/frame number, rewrites it relative
// to the first frame this OffsetFrame has seen, and recomputes the header
// CRC-8 and footer CRC-16 that cover it -- all without touching a subframe
// byte.
//
// Grounded on boinkor-net/flac-tracksplit's OffsetFrame::process (see
// original_source/flac-tracksplit/src/lib.rs), reworked onto the frame
// header field tables this repository's teacher (mewkiz/flac) carries in
// frame/header.go, factored out into internal/frameheader so the frame
// demultiplexer can share them.
package offsetframe

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"

	"github.com/cuesplit/cuesplit/internal/crcengine"
	"github.com/cuesplit/cuesplit/internal/frameheader"
	"github.com/cuesplit/cuesplit/internal/utf8int"
)

// OffsetFrame rewrites the frames of a single output track. It is not safe
// for concurrent use, and its frames must be processed in source order: the
// first frame seen establishes the base sample number every later frame is
// made relative to.
type OffsetFrame struct {
	initialOffset    *uint64
	samplesProcessed uint64
}

// SamplesProcessed returns the running total of block sample counts across
// every frame rewritten so far, used to patch STREAMINFO's total_samples.
func (f *OffsetFrame) SamplesProcessed() uint64 {
	return f.samplesProcessed
}

// Process rewrites a single source frame's sample number and CRCs, and
// returns the new frame bytes. The returned buffer has the same structure as
// the input: sync and descriptor untouched, sample number rebased to this
// OffsetFrame's first-seen offset, block-size/sample-rate tails untouched,
// header CRC-8 and footer CRC-16 recomputed.
func (f *OffsetFrame) Process(packet []byte) ([]byte, error) {
	r := bytes.NewReader(packet)
	var headerCRC crcengine.CRC8
	var footerCRC crcengine.CRC16
	out := make([]byte, 0, len(packet))

	// Sync word + reserved bit + blocking-strategy bit.
	sync, err := readN(r, 2)
	if err != nil {
		return nil, errors.Wrap(err, "offsetframe: reading frame sync")
	}
	headerCRC.ProcessDoubleBytes([2]byte{sync[0], sync[1]})
	footerCRC.ProcessDoubleBytes([2]byte{sync[0], sync[1]})
	out = append(out, sync...)

	// Descriptor: block-size / sample-rate / channel / sample-size nibbles.
	desc, err := readN(r, 2)
	if err != nil {
		return nil, errors.Wrap(err, "offsetframe: reading frame descriptor")
	}
	headerCRC.ProcessDoubleBytes([2]byte{desc[0], desc[1]})
	footerCRC.ProcessDoubleBytes([2]byte{desc[0], desc[1]})
	out = append(out, desc...)
	blockEnc := frameheader.BlockSizeEnc(desc[0] >> 4)
	rateEnc := desc[0] & 0x0F

	// Sample/frame number, "UTF-8" extended coding.
	origOffset, _, err := utf8int.Decode(r)
	if err != nil {
		return nil, errors.Wrap(err, "offsetframe: decoding the sample offset")
	}
	if f.initialOffset == nil {
		base := origOffset
		f.initialOffset = &base
	}
	rebased := origOffset - *f.initialOffset
	encoded, err := utf8int.EncodeBytes(rebased)
	if err != nil {
		return nil, errors.Wrap(err, "offsetframe: encoding the rebased offset")
	}
	headerCRC.ProcessBufBytes(encoded)
	footerCRC.ProcessBufBytes(encoded)
	out = append(out, encoded...)

	// Optional block-size tail, and the sample count it (or its absence)
	// implies.
	blockSamples, tail, err := frameheader.ReadBlockSizeTail(r, blockEnc)
	if err != nil {
		return nil, errors.Wrap(err, "offsetframe: reading block-size tail")
	}
	headerCRC.ProcessBufBytes(tail)
	footerCRC.ProcessBufBytes(tail)
	out = append(out, tail...)
	f.samplesProcessed += blockSamples

	// Optional sample-rate tail; its value is not needed here, only its
	// byte length and verbatim bytes.
	rateTail, err := frameheader.ReadSampleRateTail(r, rateEnc)
	if err != nil {
		return nil, errors.Wrap(err, "offsetframe: reading sample-rate tail")
	}
	headerCRC.ProcessBufBytes(rateTail)
	footerCRC.ProcessBufBytes(rateTail)
	out = append(out, rateTail...)

	// Header CRC-8: discard the source byte, emit the one just computed.
	if _, err := readN(r, 1); err != nil {
		return nil, errors.Wrap(err, "offsetframe: reading header CRC")
	}
	myHeaderCRC := headerCRC.Sum()
	footerCRC.ProcessByte(myHeaderCRC)
	out = append(out, myHeaderCRC)

	// Subframes, copied verbatim; footer CRC-16 only (the header CRC-8 is
	// already closed). The remainder of the packet is subframes followed by
	// the two footer CRC bytes.
	remainder := packet[len(packet)-r.Len():]
	if len(remainder) < 2 {
		return nil, errors.New("offsetframe: frame too short to contain a footer CRC")
	}
	subframes := remainder[:len(remainder)-2]
	footerCRC.ProcessBufBytes(subframes)
	out = append(out, subframes...)

	myFooterCRC := footerCRC.Sum()
	var footerBuf [2]byte
	binary.BigEndian.PutUint16(footerBuf[:], myFooterCRC)
	out = append(out, footerBuf[:]...)

	return out, nil
}

func readN(r *bytes.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
