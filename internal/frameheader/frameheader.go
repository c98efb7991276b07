// Package frameheader carries the frame header field tables shared by the
// rewriter and the frame demultiplexer: the sync word, and the block-size
// and sample-rate encodings that determine how many tail bytes follow the
// sample/frame number.
//
// Grounded on this repository's teacher (mewkiz/flac's frame/header.go),
// trimmed to the fields a rewriter that never touches a subframe needs --
// channel assignment and sample size are parsed by the teacher but are of
// no interest here, since this system copies subframes verbatim instead of
// decoding them.
package frameheader

import (
	"bytes"
	"encoding/binary"
	"io"

	"github.com/pkg/errors"
)

// BlockSizeEnc classifies how a frame header's block-size nibble encodes the
// frame's sample count.
type BlockSizeEnc uint8

const (
	BlockSizeReserved  BlockSizeEnc = 0b0000
	BlockSize192       BlockSizeEnc = 0b0001
	BlockSize8BitTail  BlockSizeEnc = 0b0110
	BlockSize16BitTail BlockSizeEnc = 0b0111
)

// Sample-rate nibble encodings that carry an explicit tail, or are invalid.
const (
	SampleRate8BitTail   = 0b1100
	SampleRate16BitTailA = 0b1101
	SampleRate16BitTailB = 0b1110
	SampleRateInvalid    = 0b1111
)

// SyncByte0 and the mask/value a frame header's second byte must match are
// the fixed 14-bit sync code (0b11111111111110) plus its trailing reserved
// bit, which must be zero; the low bit (blocking strategy) may be either.
const (
	SyncByte0    = 0xFF
	syncByte1Val = 0xF8
	syncByte1Msk = 0xFE
)

// LooksLikeSync reports whether two consecutive bytes could be the start of
// a frame header. It is a cheap pre-filter for a demuxer resyncing after a
// frame of unknown length; a true result still needs corroboration (a CRC-8
// match) before it is trusted.
func LooksLikeSync(b0, b1 byte) bool {
	return b0 == SyncByte0 && b1&syncByte1Msk == syncByte1Val
}

// ReadBlockSizeTail consumes the 0, 1, or 2 byte block-size tail named by
// enc and returns the block's sample count alongside the raw tail bytes
// (empty when the encoding carries no tail).
//
// The 8-bit and 16-bit tail forms store sample_count-1 per the FLAC format,
// but the reference implementation this system is grounded on
// (flac-tracksplit) reads the stored value verbatim, with no +1 correction.
// Matching it keeps sample accounting consistent with that reference.
func ReadBlockSizeTail(r *bytes.Reader, enc BlockSizeEnc) (sampleCount uint64, tail []byte, err error) {
	switch {
	case enc == BlockSizeReserved:
		return 0, nil, errors.New("frameheader: invalid block size, reserved bit pattern")
	case enc == BlockSize8BitTail:
		b, err := readN(r, 1)
		if err != nil {
			return 0, nil, err
		}
		return uint64(b[0]), b, nil
	case enc == BlockSize16BitTail:
		b, err := readN(r, 2)
		if err != nil {
			return 0, nil, err
		}
		return uint64(binary.BigEndian.Uint16(b)), b, nil
	case enc == BlockSize192:
		return 192, nil, nil
	case enc >= 0b0010 && enc <= 0b0101:
		return 576 * (1 << (uint(enc) - 2)), nil, nil
	case enc >= 0b1000 && enc <= 0b1111:
		return 256 * (1 << (uint(enc) - 8)), nil, nil
	default:
		return 0, nil, errors.Errorf("frameheader: invalid block size encoding: %04b", enc)
	}
}

// ReadSampleRateTail consumes the 0, 1, or 2 byte sample-rate tail named by
// enc and returns its raw bytes. The decoded rate itself is of no interest
// to a system that never needs to know the sample rate.
func ReadSampleRateTail(r *bytes.Reader, enc byte) ([]byte, error) {
	switch enc {
	case SampleRate8BitTail:
		return readN(r, 1)
	case SampleRate16BitTailA, SampleRate16BitTailB:
		return readN(r, 2)
	case SampleRateInvalid:
		return nil, errors.New("frameheader: invalid sample rate, sync-fooling string of 1s")
	default:
		return nil, nil
	}
}

func readN(r *bytes.Reader, n int) ([]byte, error) {
	buf := make([]byte, n)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, err
	}
	return buf, nil
}
