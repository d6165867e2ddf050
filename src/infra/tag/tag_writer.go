package tag

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bogem/id3v2/v2"
	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"
)

// MarkerWriter writes the duplicate marker into audio files so a pair can be flagged as intentional.
type MarkerWriter struct{}

// NewMarkerWriter creates a new MarkerWriter
func NewMarkerWriter() *MarkerWriter {
	return &MarkerWriter{}
}

// WriteMarker sets the duplicate marker of filePath to marker. An empty marker removes it.
func (w *MarkerWriter) WriteMarker(ctx context.Context, filePath, marker string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	switch ext := strings.ToLower(filepath.Ext(filePath)); ext {
	case ".mp3":
		return w.markMP3(filePath, marker)
	case ".flac":
		return w.markFLAC(filePath, marker)
	default:
		return fmt.Errorf("unsupported format: %s", ext)
	}
}

// markMP3 replaces the DUPLICATE TXXX frame, keeping every other user defined frame.
func (w *MarkerWriter) markMP3(filePath, marker string) error {
	tag, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return fmt.Errorf("failed to open MP3 file for tagging: %w", err)
	}
	defer tag.Close()

	txxx := tag.CommonID("User defined text information frame")
	var keep []id3v2.UserDefinedTextFrame
	for _, frame := range tag.GetFrames(txxx) {
		if udtf, ok := frame.(id3v2.UserDefinedTextFrame); ok && !strings.EqualFold(udtf.Description, MarkerField) {
			keep = append(keep, udtf)
		}
	}
	tag.DeleteFrames(txxx)
	for _, udtf := range keep {
		tag.AddUserDefinedTextFrame(udtf)
	}
	if marker != "" {
		tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: MarkerField,
			Value:       marker,
		})
	}

	if err := tag.Save(); err != nil {
		return fmt.Errorf("failed to save MP3 tags: %w", err)
	}
	slog.Debug("Marker written", "path", filePath, "marker", marker)
	return nil
}

// markFLAC rewrites the vorbis comment block with the DUPLICATE field replaced.
func (w *MarkerWriter) markFLAC(filePath, marker string) error {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	var vorbisComment *flacvorbis.MetaDataBlockVorbisComment
	commentIndex := -1
	for idx, meta := range f.Meta {
		if meta.Type == goflac.VorbisComment {
			vorbisComment, err = flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			commentIndex = idx
			break
		}
	}
	if vorbisComment == nil {
		vorbisComment = flacvorbis.New()
	}

	// Comments are stored as FIELD=value
	comments := vorbisComment.Comments[:0]
	prefix := strings.ToUpper(MarkerField) + "="
	for _, c := range vorbisComment.Comments {
		if !strings.HasPrefix(strings.ToUpper(c), prefix) {
			comments = append(comments, c)
		}
	}
	vorbisComment.Comments = comments
	if marker != "" {
		if err := vorbisComment.Add(MarkerField, marker); err != nil {
			return fmt.Errorf("failed to add marker: %w", err)
		}
	}

	commentMeta := vorbisComment.Marshal()
	if commentIndex >= 0 {
		f.Meta[commentIndex] = &commentMeta
	} else {
		f.Meta = append(f.Meta, &commentMeta)
	}

	if err := f.Save(filePath); err != nil {
		return fmt.Errorf("failed to save FLAC file: %w", err)
	}
	slog.Debug("Marker written", "path", filePath, "marker", marker)
	return nil
}
