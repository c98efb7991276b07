// Package cuesplit splits a FLAC file with an embedded cue sheet into one
// FLAC file per cue track, and extracts an arbitrary sample range from a
// FLAC file into a new one. Both operations copy audio frames verbatim --
// only their embedded sample numbers and CRCs are rewritten -- and rebuild
// the STREAMINFO, VORBIS_COMMENT, and PICTURE metadata blocks the new file
// needs.
//
// Grounded on this repository's teacher (mewkiz/flac's flac.go, whose
// Stream/Open pair this package's Source/Open follow) and on
// boinkor-net/flac-tracksplit's split_file.rs, which drives the same
// parse-then-rewrite sequence over claxon instead of a hand-rolled parser.
package cuesplit

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/cuesplit/cuesplit/internal/bufseekio"
	"github.com/cuesplit/cuesplit/meta"
	"github.com/cuesplit/cuesplit/track"
)

// flacMagic is the four bytes that must open every FLAC stream.
var flacMagic = [4]byte{'f', 'L', 'a', 'C'}

// Source is a parsed FLAC file: its STREAMINFO, tags, cover art, optional
// cue sheet, and the raw, unparsed bytes of its audio frames.
type Source struct {
	StreamInfo *meta.StreamInfo
	Vendor     string
	Tags       []track.Tag
	Visuals    []*meta.Picture
	CueSheet   *meta.CueSheet

	// Audio holds every byte following the last metadata block, unmodified.
	// internal/demux splits it into frames lazily, on demand.
	Audio []byte
}

// Open opens the named file and parses it into a Source.
func Open(path string) (*Source, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "cuesplit: opening %s", path)
	}
	defer f.Close()
	// Metadata parsing issues many small reads (a 4-byte header here, a
	// handful of fixed fields there); buffering avoids a syscall per field.
	// The bulk audio read that follows is one large io.ReadAll, for which
	// buffering is a pass-through, not a cost.
	src, err := Parse(bufseekio.NewReadSeeker(f))
	if err != nil {
		return nil, errors.Wrapf(err, "cuesplit: parsing %s", path)
	}
	return src, nil
}

// Parse reads a complete FLAC stream from r: the magic, every metadata
// block up to and including the one marked last, and the raw audio bytes
// that follow.
func Parse(r io.Reader) (*Source, error) {
	var magic [4]byte
	if _, err := io.ReadFull(r, magic[:]); err != nil {
		return nil, errors.Wrap(err, "reading FLAC magic")
	}
	if magic != flacMagic {
		return nil, errors.Errorf("not a FLAC stream; got magic % X", magic)
	}

	src := &Source{}
	for {
		block, err := meta.NewBlock(r)
		if err != nil {
			return nil, errors.Wrap(err, "parsing metadata block")
		}
		switch body := block.Body.(type) {
		case *meta.StreamInfo:
			src.StreamInfo = body
		case *meta.VorbisComment:
			src.Vendor = body.Vendor
			for _, e := range body.Entries {
				src.Tags = append(src.Tags, track.Tag{Key: e.Name, Value: e.Value})
			}
		case *meta.Picture:
			src.Visuals = append(src.Visuals, body)
		case *meta.CueSheet:
			src.CueSheet = body
		}
		if block.Header.IsLast {
			break
		}
	}
	if src.StreamInfo == nil {
		return nil, errors.New("stream has no STREAMINFO block")
	}

	audio, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, "reading audio frames")
	}
	src.Audio = audio
	return src, nil
}

// writeOutput writes a complete FLAC file: magic, si as the STREAMINFO
// block, the VORBIS_COMMENT, one PICTURE block per visual, a final
// PADDING block, then the rewritten audio bytes.
//
// Grounded on original_source/flac-writer's top-level write sequence
// (write_streaminfo, write_vorbis_comment, write_picture, write_padding in
// that order, STREAMINFO first and always non-last).
func writeOutput(w io.Writer, si *meta.StreamInfo, vendor string, tags []track.Tag, visuals []*meta.Picture, paddingBytes int, audio []byte) error {
	if _, err := w.Write(flacMagic[:]); err != nil {
		return err
	}

	var streamInfoBody bytes.Buffer
	if err := meta.WriteStreamInfo(&streamInfoBody, si); err != nil {
		return err
	}
	if err := meta.WriteBlockHeader(w, false, meta.TypeStreamInfo, streamInfoBody.Len()); err != nil {
		return err
	}
	if _, err := w.Write(streamInfoBody.Bytes()); err != nil {
		return err
	}

	vc := &meta.VorbisComment{Vendor: vendor}
	for _, tag := range tags {
		vc.Entries = append(vc.Entries, meta.VorbisEntry{Name: tag.Key, Value: tag.Value})
	}
	var vcBody bytes.Buffer
	if err := meta.WriteVorbisComment(&vcBody, vc); err != nil {
		return err
	}
	if err := meta.WriteBlockHeader(w, false, meta.TypeVorbisComment, vcBody.Len()); err != nil {
		return err
	}
	if _, err := w.Write(vcBody.Bytes()); err != nil {
		return err
	}

	for _, pic := range visuals {
		if err := meta.WriteBlockHeader(w, false, meta.TypePicture, pic.ByteLength()); err != nil {
			return err
		}
		if err := meta.WritePicture(w, pic); err != nil {
			return err
		}
	}

	// PADDING always closes the metadata, even when empty, so every output
	// file ends its metadata on the same block type regardless of padding size.
	if err := meta.WriteBlockHeader(w, true, meta.TypePadding, paddingBytes); err != nil {
		return err
	}
	if err := meta.WritePadding(w, paddingBytes); err != nil {
		return err
	}

	_, err := w.Write(audio)
	return err
}
