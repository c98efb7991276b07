// Package meta parses and writes FLAC metadata blocks: the structures that
// precede a stream's audio frames and describe it (STREAMINFO), carry its
// tags (VORBIS_COMMENT), cover art (PICTURE), cue points (CUESHEET), and a
// handful of less common block types this system only needs to read past.
//
// Reading follows the teacher's original layout (binary.Read over
// hand-rolled bit masks); writing is new, grounded on the field layouts
// documented alongside each block's reader and cross-checked against
// original_source/flac-writer's write_streaminfo and write_padding.
package meta

import (
	"encoding/binary"
	"fmt"
	"io"
)

// A Block is a metadata block, consisting of a block header and a body.
type Block struct {
	// Metadata block header.
	Header *BlockHeader
	// Metadata block body: StreamInfo, Application, SeekTable, etc. Nil for
	// Padding, whose content carries no information once verified.
	Body interface{}
}

// NewBlock parses and returns a new metadata block, which consists of a header
// and body.
func NewBlock(r io.Reader) (block *Block, err error) {
	// Read metadata block header.
	block = new(Block)
	block.Header, err = NewBlockHeader(r)
	if err != nil {
		return nil, err
	}

	// Read metadata block.
	lr := io.LimitReader(r, int64(block.Header.Length))
	switch block.Header.BlockType {
	case TypeStreamInfo:
		block.Body, err = NewStreamInfo(lr)
	case TypePadding:
		err = VerifyPadding(lr)
	case TypeApplication:
		block.Body, err = NewApplication(lr)
	case TypeSeekTable:
		block.Body, err = NewSeekTable(lr)
	case TypeVorbisComment:
		block.Body, err = NewVorbisComment(lr)
	case TypeCueSheet:
		block.Body, err = NewCueSheet(lr)
	case TypePicture:
		block.Body, err = NewPicture(lr)
	default:
		return nil, fmt.Errorf("meta.NewBlock: block type '%d' not yet supported.", block.Header.BlockType)
	}
	if err != nil {
		return nil, err
	}

	return block, nil
}

// BlockType is used to identify the metadata block type.
type BlockType uint8

// Metadata block types.
const (
	TypeStreamInfo BlockType = iota
	TypePadding
	TypeApplication
	TypeSeekTable
	TypeVorbisComment
	TypeCueSheet
	TypePicture
)

func (t BlockType) String() string {
	m := map[BlockType]string{
		TypeStreamInfo:    "stream info",
		TypePadding:       "padding",
		TypeApplication:   "application",
		TypeSeekTable:     "seek table",
		TypeVorbisComment: "vorbis comment",
		TypeCueSheet:      "cue sheet",
		TypePicture:       "picture",
	}
	return m[t]
}

// A BlockHeader contains type and length about a metadata block.
type BlockHeader struct {
	// IsLast is true if this block is the last metadata block before the audio
	// blocks, and false otherwise.
	IsLast bool
	// Block types:
	//    0: Streaminfo
	//    1: Padding
	//    2: Application
	//    3: Seektable
	//    4: Vorbis_comment
	//    5: Cuesheet
	//    6: Picture
	//    7-126: reserved
	//    127: invalid, to avoid confusion with a frame sync code
	BlockType BlockType
	// Length (in bytes) of metadata to follow (does not include the size of the
	// BlockHeader).
	Length int
}

// NewBlockHeader parses and returns a new metadata block header.
//
// Block header format (pseudo code):
//    // ref: http://flac.sourceforge.net/format.html#metadata_block_header
//
//    type METADATA_BLOCK_HEADER struct {
//       is_last    bool
//       block_type uint7
//       length     uint24
//    }
func NewBlockHeader(r io.Reader) (h *BlockHeader, err error) {
	const (
		IsLastMask = 0x80000000 // 1 bit
		TypeMask   = 0x7F000000 // 7 bits
		LengthMask = 0x00FFFFFF // 24 bits
	)
	var bits uint32
	err = binary.Read(r, binary.BigEndian, &bits)
	if err != nil {
		return nil, err
	}

	// Is last.
	h = new(BlockHeader)
	if bits&IsLastMask != 0 {
		h.IsLast = true
	}

	// Block type.
	h.BlockType = BlockType(bits & TypeMask >> 24)
	if h.BlockType >= 7 && h.BlockType <= 126 {
		// block type 7-126: reserved.
		return nil, fmt.Errorf("meta.NewBlockHeader: reserved block type.")
	} else if h.BlockType == 127 {
		// block type 127: invalid.
		return nil, fmt.Errorf("meta.NewBlockHeader: invalid block type.")
	}

	// Length.
	h.Length = int(bits & LengthMask) // won't overflow, since max is 0x00FFFFFF.

	return h, nil
}

// WriteBlockHeader writes a metadata block header for a block of the given
// type and body length, marking it as the stream's last metadata block when
// isLast is set.
func WriteBlockHeader(w io.Writer, isLast bool, blockType BlockType, length int) error {
	var lastBit uint32
	if isLast {
		lastBit = 0x80000000
	}
	bits := lastBit | uint32(blockType)<<24 | uint32(length)&0x00FFFFFF
	return binary.Write(w, binary.BigEndian, bits)
}
