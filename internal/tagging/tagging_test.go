package tagging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/cesargomez89/strume/internal/domain"
)

func TestNewVorbisComment(t *testing.T) {
	vc, err := newVorbisComment(domain.TrackInfo{Title: "Test Title", Artist: "Solo Artist", Genre: "Rock"})
	if err != nil {
		t.Fatalf("newVorbisComment failed: %v", err)
	}

	check := func(target string) {
		t.Helper()
		for _, entry := range vc.Comments {
			if entry == target {
				return
			}
		}
		t.Errorf("Field %s not found in VorbisComment", target)
	}

	check("TITLE=Test Title")
	check("ARTIST=Solo Artist")
	check("GENRE=Rock")
}

func TestNewVorbisCommentSkipsUnknown(t *testing.T) {
	vc, err := newVorbisComment(domain.TrackInfo{Title: "Song", Artist: "Unknown", Genre: ""})
	if err != nil {
		t.Fatalf("newVorbisComment failed: %v", err)
	}
	if len(vc.Comments) != 1 {
		t.Errorf("Expected 1 comment, got %v", vc.Comments)
	}
}

func TestTagFileWAVIsNoop(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.wav")
	data := []byte("RIFF....WAVE")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatal(err)
	}

	if err := TagFile(path, domain.TrackInfo{Title: "x"}); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}

	got, _ := os.ReadFile(path)
	if string(got) != string(data) {
		t.Error("Expected WAV file to be unchanged")
	}
}

func TestTagFileUnsupported(t *testing.T) {
	if err := TagFile("song.ogg", domain.TrackInfo{}); err == nil {
		t.Error("Expected error for unsupported format")
	}
}

func TestTagMP3(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.mp3")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}

	info := domain.TrackInfo{Title: "Song", Artist: "Band", Genre: "Jazz"}
	if err := TagFile(path, info); err != nil {
		t.Fatalf("TagFile failed: %v", err)
	}

	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer tag.Close()

	if tag.Title() != "Song" {
		t.Errorf("Expected title Song, got %q", tag.Title())
	}
	if tag.Artist() != "Band" {
		t.Errorf("Expected artist Band, got %q", tag.Artist())
	}
	if tag.Genre() != "Jazz" {
		t.Errorf("Expected genre Jazz, got %q", tag.Genre())
	}
}

// minimalFLAC is a stream marker and a single zeroed STREAMINFO block
// flagged as the last metadata block.
func minimalFLAC() []byte {
	data := []byte("fLaC")
	data = append(data, 0x80, 0x00, 0x00, 34)
	return append(data, make([]byte, 34)...)
}

func TestTagFLAC(t *testing.T) {
	path := filepath.Join(t.TempDir(), "song.flac")
	if err := os.WriteFile(path, minimalFLAC(), 0o644); err != nil {
		t.Fatal(err)
	}

	for _, title := range []string{"First", "Second"} {
		if err := TagFile(path, domain.TrackInfo{Title: title, Artist: "Band"}); err != nil {
			t.Fatalf("TagFile failed: %v", err)
		}
	}

	f, err := flac.ParseFile(path)
	if err != nil {
		t.Fatalf("reparse: %v", err)
	}

	blocks := 0
	var titles []string
	for _, m := range f.Meta {
		if m.Type != flac.VorbisComment {
			continue
		}
		blocks++
		vc, err := flacvorbis.ParseFromMetaDataBlock(*m)
		if err != nil {
			t.Fatalf("parse comments: %v", err)
		}
		titles, _ = vc.Get(flacvorbis.FIELD_TITLE)
	}

	if blocks != 1 {
		t.Errorf("Expected 1 comment block, got %d", blocks)
	}
	if len(titles) != 1 || titles[0] != "Second" {
		t.Errorf("Expected title Second, got %v", titles)
	}
}
