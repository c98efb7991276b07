package cuesplit

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"

	"github.com/cuesplit/cuesplit/internal/demux"
	"github.com/cuesplit/cuesplit/meta"
	"github.com/cuesplit/cuesplit/offsetframe"
)

// sampleRange converts a millisecond range to an absolute, clamped
// [from, to) sample range: negative values count from the end of the
// stream, and both ends are clamped to [0, totalSamples].
//
// Grounded on spec.md's sample-range extractor description; there is no
// equivalent in flac-tracksplit's reference implementation, which only
// ever splits by cue point.
func sampleRange(fromMs, toMs int64, sampleRate uint32, totalSamples uint64) (from, to uint64, err error) {
	toSample := func(ms int64) uint64 {
		samples := ms * int64(sampleRate) / 1000
		if samples < 0 {
			samples += int64(totalSamples)
		}
		if samples < 0 {
			return 0
		}
		if uint64(samples) > totalSamples {
			return totalSamples
		}
		return uint64(samples)
	}

	from = toSample(fromMs)
	to = toSample(toMs)
	if from >= to {
		return 0, 0, errors.Errorf("cuesplit: empty or inverted range after clamping: [%d, %d)", from, to)
	}
	return from, to, nil
}

// ExtractRange writes the samples in [fromMs, toMs) -- milliseconds,
// negative values counting from the end -- to a new FLAC file at path,
// reusing the same frame rewriter and metadata writer SplitTracks uses.
func (s *Source) ExtractRange(path string, fromMs, toMs int64, paddingBytes int) error {
	from, to, err := sampleRange(fromMs, toMs, s.StreamInfo.SampleRate, s.StreamInfo.SampleCount)
	if err != nil {
		return err
	}

	d := demux.New(s.Audio)
	off := &offsetframe.OffsetFrame{}
	var buf bytes.Buffer
	for {
		frame, err := d.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return errors.Wrap(err, "cuesplit: demultiplexing audio frames")
		}

		ts := absoluteSampleNumber(frame, s.StreamInfo.MaxBlockSize)
		if ts >= to {
			break
		}
		if ts < from {
			continue
		}

		out, err := off.Process(frame.Data)
		if err != nil {
			return errors.Wrap(err, "cuesplit: rewriting frame")
		}
		buf.Write(out)
	}

	si := &meta.StreamInfo{
		MinBlockSize:  s.StreamInfo.MinBlockSize,
		MaxBlockSize:  s.StreamInfo.MaxBlockSize,
		MinFrameSize:  s.StreamInfo.MinFrameSize,
		MaxFrameSize:  s.StreamInfo.MaxFrameSize,
		SampleRate:    s.StreamInfo.SampleRate,
		ChannelCount:  s.StreamInfo.ChannelCount,
		BitsPerSample: s.StreamInfo.BitsPerSample,
		SampleCount:   off.SamplesProcessed(),
	}

	f, err := os.Create(path)
	if err != nil {
		return errors.Wrapf(err, "cuesplit: creating %s", path)
	}
	defer f.Close()
	if err := writeOutput(f, si, s.Vendor, s.Tags, s.Visuals, paddingBytes, buf.Bytes()); err != nil {
		return errors.Wrapf(err, "cuesplit: writing %s", path)
	}
	return f.Close()
}
