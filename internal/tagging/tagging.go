// Package tagging writes title, artist and genre into kept instrumentals.
package tagging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"

	"github.com/cesargomez89/strume/internal/constants"
	"github.com/cesargomez89/strume/internal/domain"
)

// TagFile writes info into the file at filePath. WAV files carry no tags
// and are left untouched.
func TagFile(filePath string, info domain.TrackInfo) error {
	ext := strings.ToLower(filepath.Ext(filePath))

	switch ext {
	case constants.ExtFLAC:
		return tagFLAC(filePath, info)
	case constants.ExtMP3:
		return tagMP3(filePath, info)
	case constants.ExtWAV:
		return nil
	default:
		return fmt.Errorf("unsupported file format: %s", ext)
	}
}

// tagFLAC replaces any existing Vorbis comment block and rewrites the file
// through a temp file in the same directory.
func tagFLAC(filePath string, info domain.TrackInfo) error {
	f, err := flac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to open FLAC file: %w", err)
	}

	cmts, err := newVorbisComment(info)
	if err != nil {
		return err
	}
	block := cmts.Marshal()

	replaced := false
	for i, m := range f.Meta {
		if m.Type == flac.VorbisComment {
			f.Meta[i] = &block
			replaced = true
			break
		}
	}
	if !replaced {
		f.Meta = append(f.Meta, &block)
	}

	tmp, err := os.CreateTemp(filepath.Dir(filePath), "*.flac.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	_ = tmp.Close()

	if err := f.Save(tmpPath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to write FLAC file: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		_ = os.Remove(tmpPath)
		return fmt.Errorf("failed to replace original FLAC file: %w", err)
	}
	return nil
}

func newVorbisComment(info domain.TrackInfo) (*flacvorbis.MetaDataBlockVorbisComment, error) {
	cmts := flacvorbis.New()
	fields := []struct {
		key, value string
	}{
		{flacvorbis.FIELD_TITLE, info.Title},
		{flacvorbis.FIELD_ARTIST, info.Artist},
		{flacvorbis.FIELD_GENRE, info.Genre},
	}
	for _, field := range fields {
		if field.value == "" || field.value == constants.UnknownValue {
			continue
		}
		if err := cmts.Add(field.key, field.value); err != nil {
			return nil, fmt.Errorf("failed to add %s comment: %w", field.key, err)
		}
	}
	return cmts, nil
}

func tagMP3(filePath string, info domain.TrackInfo) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file: %w", err)
	}
	defer tag.Close()

	tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	tag.SetVersion(4)

	if known(info.Title) {
		tag.SetTitle(info.Title)
	}
	if known(info.Artist) {
		tag.SetArtist(info.Artist)
	}
	if known(info.Genre) {
		tag.SetGenre(info.Genre)
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	return nil
}

func known(v string) bool {
	return v != "" && v != constants.UnknownValue
}
