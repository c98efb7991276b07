package track

import "testing"

func TestFilterTagsKeepsTrackSuffixedAndUnsuffixedExceptCueAndLog(t *testing.T) {
	disc := []Tag{
		{Key: "ALBUM", Value: "Example Album"},
		{Key: "TITLE[1]", Value: "Track One"},
		{Key: "TITLE[2]", Value: "Track Two"},
		{Key: "CUESHEET", Value: "..."},
		{Key: "LOG", Value: "..."},
	}

	got := FilterTags(1, disc)
	want := map[string]string{"ALBUM": "Example Album", "TITLE": "Track One"}
	if len(got) != len(want) {
		t.Fatalf("FilterTags(1, ...) = %+v, want %d entries matching %+v", got, len(want), want)
	}
	for _, tag := range got {
		if want[tag.Key] != tag.Value {
			t.Errorf("tag %q = %q, want %q", tag.Key, tag.Value, want[tag.Key])
		}
	}
}

func TestPathnameFallbackArtistAndAlbum(t *testing.T) {
	tr := &Track{Tags: []Tag{{Key: "TRACKNUMBER", Value: "1"}, {Key: "TITLE", Value: "Foo"}}}
	got, err := tr.Pathname()
	if err != nil {
		t.Fatalf("Pathname: %v", err)
	}
	want := "Unknown Artist/Unknown Album/01.Foo.flac"
	if got != want {
		t.Errorf("Pathname() = %q, want %q", got, want)
	}
}

func TestPathnameDiscPrefix(t *testing.T) {
	tr := &Track{Tags: []Tag{
		{Key: "DISCNUMBER", Value: "2"},
		{Key: "TOTALDISCS", Value: "2"},
		{Key: "TRACKNUMBER", Value: "7"},
		{Key: "TITLE", Value: "Foo"},
	}}
	got, err := tr.Pathname()
	if err != nil {
		t.Fatalf("Pathname: %v", err)
	}
	if want := "Unknown Artist/Unknown Album/02-07.Foo.flac"; got != want {
		t.Errorf("Pathname() = %q, want %q", got, want)
	}

	tr.Tags[1] = Tag{Key: "TOTALDISCS", Value: "1"}
	got, err = tr.Pathname()
	if err != nil {
		t.Fatalf("Pathname: %v", err)
	}
	if want := "Unknown Artist/Unknown Album/07.Foo.flac"; got != want {
		t.Errorf("Pathname() with TOTALDISCS=1 = %q, want %q", got, want)
	}
}

func TestPathnameFallsBackToTrack99OnUnparseableNumber(t *testing.T) {
	tr := &Track{Tags: []Tag{{Key: "TRACKNUMBER", Value: "not-a-number"}, {Key: "TITLE", Value: "Foo"}}}
	got, err := tr.Pathname()
	if err != nil {
		t.Fatalf("Pathname: %v", err)
	}
	if want := "Unknown Artist/Unknown Album/99.Foo.flac"; got != want {
		t.Errorf("Pathname() = %q, want %q", got, want)
	}
}

func TestPathnameErrorsWithNeitherTitleNorTrackNumber(t *testing.T) {
	tr := &Track{Tags: []Tag{{Key: "ALBUM", Value: "Foo"}}}
	if _, err := tr.Pathname(); err == nil {
		t.Fatal("expected an error with no TITLE and no TRACKNUMBER")
	}
}

func TestPathnameBuildsFilenameWithEitherTagAloneEmpty(t *testing.T) {
	tr := &Track{Tags: []Tag{{Key: "TRACKNUMBER", Value: "1"}}}
	got, err := tr.Pathname()
	if err != nil {
		t.Fatalf("Pathname: %v", err)
	}
	if want := "Unknown Artist/Unknown Album/01..flac"; got != want {
		t.Errorf("Pathname() = %q, want %q", got, want)
	}
}

func TestPathnameSanitizesUnsafeCharacters(t *testing.T) {
	tr := &Track{Tags: []Tag{{Key: "TRACKNUMBER", Value: "1"}, {Key: "TITLE", Value: "A/B?"}}}
	got, err := tr.Pathname()
	if err != nil {
		t.Fatalf("Pathname: %v", err)
	}
	if want := "Unknown Artist/Unknown Album/01.A_B_.flac"; got != want {
		t.Errorf("Pathname() = %q, want %q", got, want)
	}
}
