package meta

import (
	"fmt"
	"io"
	"io/ioutil"
)

// RegisteredApplications maps from a registered application ID to a
// description.
//
// ref: http://flac.sourceforge.net/id.html
var RegisteredApplications = map[string]string{
	"ATCH": "FlacFile",
	"BSOL": "beSolo",
	"BUGS": "Bugs Player",
	"Cues": "GoldWave cue points (specification)",
	"Fica": "CUE Splitter",
	"Ftol": "flac-tools",
	"MOTB": "MOTB MetaCzar",
	"MPSE": "MP3 Stream Editor",
	"MuML": "MusicML: Music Metadata Language",
	"RIFF": "Sound Devices RIFF chunk storage",
	"SFFL": "Sound Font FLAC",
	"SONY": "Sony Creative Software",
	"SQEZ": "flacsqueeze",
	"TtWv": "TwistedWave",
	"UITS": "UITS Embedding tools",
	"aiff": "FLAC AIFF chunk storage",
	"imag": "flac-image application for storing arbitrary files in APPLICATION metadata blocks",
	"peem": "Parseable Embedded Extensible Metadata (specification)",
	"qfst": "QFLAC Studio",
	"riff": "FLAC RIFF chunk storage",
	"tune": "TagTuner",
	"xbat": "XBAT",
	"xmcd": "xmcd",
}

// An Application metadata block is for use by third-party applications. The
// only mandatory field is a 32-bit identifier. This ID is granted upon request
// to an application by the FLAC maintainers. The remainder of the block is
// defined by the registered application.
//
// This system never emits an APPLICATION block of its own; it only needs to
// parse past one when a source file carries it, so a split track's metadata
// can be built from scratch rather than copying blocks it has no use for.
type Application struct {
	// Registered application ID.
	ID string
	// Application data.
	Data []byte
}

// NewApplication parses and returns a new Application metadata block. The
// provided io.Reader should limit the amount of data that can be read to
// header.Length bytes.
//
// Application format (pseudo code):
//    // ref: http://flac.sourceforge.net/format.html#metadata_block_application
//
//    type METADATA_BLOCK_APPLICATION struct {
//       ID   uint32
//       Data [header.Length-4]byte
//    }
func NewApplication(r io.Reader) (app *Application, err error) {
	// Application ID (size: 4 bytes).
	buf := make([]byte, 4)
	_, err = io.ReadFull(r, buf)
	if err != nil {
		return nil, err
	}
	app = new(Application)
	app.ID = string(buf)
	_, ok := RegisteredApplications[app.ID]
	if !ok {
		return nil, fmt.Errorf("meta.NewApplication: unregistered application ID '%s'.", app.ID)
	}

	// Data.
	buf, err = ioutil.ReadAll(r)
	if err != nil {
		return nil, err
	}
	app.Data = buf

	return app, nil
}
