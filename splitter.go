package cuesplit

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/pkg/errors"

	"github.com/cuesplit/cuesplit/internal/demux"
	"github.com/cuesplit/cuesplit/meta"
	"github.com/cuesplit/cuesplit/offsetframe"
	"github.com/cuesplit/cuesplit/track"
)

// trackWindow is one output track's sample range, derived from a pair of
// adjacent cue entries.
type trackWindow struct {
	cue   track.Cue
	endTS uint64
}

// trackWindows walks a cue sheet's tracks in order and computes each real
// track's end timestamp: the next entry's offset, whether that entry is
// another track or the lead-out, or the stream's total sample count if
// there is no next entry at all.
//
// Grounded on boinkor-net/flac-tracksplit's track-boundary loop in
// split_file.rs, which derives end_ts from cuesheet::Track::next the same
// way.
func trackWindows(cs *meta.CueSheet, totalSamples uint64) []trackWindow {
	leadOut := cs.LeadOutTrackNum()
	var windows []trackWindow
	for i, t := range cs.Tracks {
		if t.TrackNum == leadOut {
			continue
		}
		endTS := totalSamples
		if i+1 < len(cs.Tracks) {
			endTS = cs.Tracks[i+1].Offset
		}
		windows = append(windows, trackWindow{
			cue:   track.Cue{Index: t.TrackNum, StartTS: t.Offset},
			endTS: endTS,
		})
	}
	sort.Slice(windows, func(i, j int) bool { return windows[i].cue.StartTS < windows[j].cue.StartTS })
	return windows
}

// absoluteSampleNumber recovers a frame's starting sample position from its
// header's raw coded number: a sample number directly, for a
// variable-blocksize stream, or a frame number to multiply by the stream's
// block size, for a fixed-blocksize one.
//
// This repository's reference (flac-tracksplit) only ever sees
// fixed-blocksize, CD-ripped sources, so it trusts the demultiplexer it
// sits on (claxon) to hand back sample-accurate packet timestamps without
// needing to reconstruct them; since this system's demuxer only resyncs
// frame boundaries rather than fully decoding packets, it reconstructs the
// timestamp itself using the block size convention described by the FLAC
// format (frame_number * blocksize = sample_number for a fixed-blocksize
// stream).
func absoluteSampleNumber(f *demux.Frame, maxBlockSize uint16) uint64 {
	if f.IsVariableBlockSize {
		return f.RawNumber
	}
	return f.RawNumber * uint64(maxBlockSize)
}

// SplitTracks splits the source into one output FLAC file per cue track,
// writing them under outDir at each track's computed Pathname. It returns
// the paths written, in track order. If the source carries no cue sheet, or
// an empty one, SplitTracks writes nothing and returns no error: per this
// system's design, a file without cue points is not itself an error, only
// nothing to split.
func (s *Source) SplitTracks(outDir string, paddingBytes int) ([]string, error) {
	if s.CueSheet == nil || len(s.CueSheet.Tracks) == 0 {
		return nil, nil
	}
	windows := trackWindows(s.CueSheet, s.StreamInfo.SampleCount)
	if len(windows) == 0 {
		return nil, nil
	}

	tracks := make([]*track.Track, len(windows))
	buffers := make([]bytes.Buffer, len(windows))
	offsets := make([]*offsetframe.OffsetFrame, len(windows))
	for i, w := range windows {
		tracks[i] = track.New(w.cue, w.endTS, s.Tags, s.Visuals)
		offsets[i] = &offsetframe.OffsetFrame{}
	}

	d := demux.New(s.Audio)
	idx := 0
	for idx < len(windows) {
		frame, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, errors.Wrap(err, "cuesplit: demultiplexing audio frames")
		}

		ts := absoluteSampleNumber(frame, s.StreamInfo.MaxBlockSize)
		for idx < len(windows) && ts >= windows[idx].endTS {
			idx++
		}
		if idx >= len(windows) {
			break
		}
		if ts < windows[idx].cue.StartTS {
			// Frame belongs to a pre-gap ahead of the first track; it is
			// not part of any output file.
			continue
		}

		out, err := offsets[idx].Process(frame.Data)
		if err != nil {
			return nil, errors.Wrapf(err, "cuesplit: rewriting frame for track %d", tracks[idx].Number)
		}
		buffers[idx].Write(out)
	}

	var written []string
	for i, tr := range tracks {
		tr.StreamInfo = &meta.StreamInfo{
			MinBlockSize:  s.StreamInfo.MinBlockSize,
			MaxBlockSize:  s.StreamInfo.MaxBlockSize,
			MinFrameSize:  s.StreamInfo.MinFrameSize,
			MaxFrameSize:  s.StreamInfo.MaxFrameSize,
			SampleRate:    s.StreamInfo.SampleRate,
			ChannelCount:  s.StreamInfo.ChannelCount,
			BitsPerSample: s.StreamInfo.BitsPerSample,
			SampleCount:   offsets[i].SamplesProcessed(),
		}

		pathname, err := tr.Pathname()
		if err != nil {
			return written, errors.Wrapf(err, "cuesplit: track %d", tr.Number)
		}
		fullPath := filepath.Join(outDir, pathname)
		if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
			return written, errors.Wrapf(err, "cuesplit: creating directory for %s", fullPath)
		}
		if err := writeTrackFile(fullPath, tr, s.Vendor, paddingBytes, buffers[i].Bytes()); err != nil {
			return written, errors.Wrapf(err, "cuesplit: writing %s", fullPath)
		}
		written = append(written, fullPath)
	}
	return written, nil
}

func writeTrackFile(path string, tr *track.Track, vendor string, paddingBytes int, audio []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if err := writeOutput(f, tr.StreamInfo, vendor, tr.Tags, tr.Visuals, paddingBytes, audio); err != nil {
		return err
	}
	return f.Close()
}

// String renders a trackWindow for diagnostic logging.
func (w trackWindow) String() string {
	return fmt.Sprintf("track %d: [%d, %d)", w.cue.Index, w.cue.StartTS, w.endTS)
}
