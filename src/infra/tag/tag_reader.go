package tag

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/bogem/id3v2/v2"
	"github.com/contre95/dupetrack/src/music"
	"github.com/dhowden/tag"
	goflac "github.com/go-flac/go-flac"
	"github.com/go-flac/flacvorbis"
	"github.com/tcolgate/mp3"
)

// MarkerField names the ID3v2 TXXX description and the vorbis comment field that hold the duplicate marker.
const MarkerField = "DUPLICATE"

// TagReader reads duplicate-detection tags. Artist and title come from dhowden/tag for every
// format it supports; marker and duration come from format-specific readers.
type TagReader struct{}

// NewTagReader creates a new TagReader
func NewTagReader() music.TagReader {
	return &TagReader{}
}

// ReadTags reads artist, title, duration and marker from a music file.
// Any failure is returned as a *music.TagReadError.
func (r *TagReader) ReadTags(ctx context.Context, filePath string) (music.Tags, error) {
	if err := ctx.Err(); err != nil {
		return music.Tags{}, err
	}
	tags := music.Tags{Path: filePath}

	file, err := os.Open(filePath)
	if err != nil {
		return tags, &music.TagReadError{Path: filePath, Err: fmt.Errorf("failed to open file: %w", err)}
	}
	defer file.Close()

	metadata, err := tag.ReadFrom(file)
	if err != nil {
		return tags, &music.TagReadError{Path: filePath, Err: fmt.Errorf("failed to read tags: %w", err)}
	}
	tags.Artist = metadata.Artist()
	tags.Title = metadata.Title()

	var duration float64
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".mp3":
		duration, tags.Marker, err = r.readMP3(file, filePath)
	case ".flac":
		duration, tags.Marker, err = r.readFLAC(filePath)
	default:
		tags.Marker = rawMarker(metadata.Raw())
	}
	if err != nil {
		return tags, &music.TagReadError{Path: filePath, Err: err}
	}
	tags.Duration = music.NormalizeDuration(duration)
	return tags, nil
}

// readMP3 reads the marker from a TXXX frame and the duration from TLEN,
// decoding MPEG frames when TLEN is missing.
func (r *TagReader) readMP3(file *os.File, filePath string) (float64, string, error) {
	id3, err := id3v2.Open(filePath, id3v2.Options{Parse: true})
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse ID3v2 tag: %w", err)
	}
	defer id3.Close()

	marker := ""
	for _, frame := range id3.GetFrames(id3.CommonID("User defined text information frame")) {
		udtf, ok := frame.(id3v2.UserDefinedTextFrame)
		if ok && strings.EqualFold(udtf.Description, MarkerField) {
			marker = strings.TrimSpace(udtf.Value)
			break
		}
	}

	if tlen := strings.TrimSpace(id3.GetTextFrame("TLEN").Text); tlen != "" {
		if ms, err := strconv.ParseFloat(tlen, 64); err == nil && ms > 0 {
			return ms / 1000, marker, nil
		}
	}

	if _, err := file.Seek(0, io.SeekStart); err != nil {
		return 0, marker, err
	}
	duration, err := decodeMP3Duration(file)
	if err != nil {
		// A bad audio stream is not a tag failure; the duration is treated as absent.
		slog.Debug("TagReader.readMP3: could not decode frames", "path", filePath, "error", err)
		return 0, marker, nil
	}
	return duration, marker, nil
}

func decodeMP3Duration(r io.Reader) (float64, error) {
	d := mp3.NewDecoder(r)
	var frame mp3.Frame
	skipped := 0
	total := 0.0
	for {
		if err := d.Decode(&frame, &skipped); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return total, nil
			}
			return total, err
		}
		total += frame.Duration().Seconds()
	}
}

// readFLAC reads the marker from the vorbis comment block and the duration from STREAMINFO.
func (r *TagReader) readFLAC(filePath string) (float64, string, error) {
	f, err := goflac.ParseFile(filePath)
	if err != nil {
		return 0, "", fmt.Errorf("failed to parse FLAC file: %w", err)
	}

	duration := 0.0
	marker := ""
	for _, meta := range f.Meta {
		switch meta.Type {
		case goflac.StreamInfo:
			duration = streamInfoDuration(meta.Data)
		case goflac.VorbisComment:
			cmt, err := flacvorbis.ParseFromMetaDataBlock(*meta)
			if err != nil {
				return 0, "", fmt.Errorf("failed to parse Vorbis comment: %w", err)
			}
			if values, err := cmt.Get(MarkerField); err == nil && len(values) > 0 {
				marker = strings.TrimSpace(values[0])
			}
		}
	}
	return duration, marker, nil
}

// streamInfoDuration computes seconds from the STREAMINFO sample rate (20 bits at byte 10)
// and total sample count (36 bits ending at byte 17).
func streamInfoDuration(data []byte) float64 {
	if len(data) < 18 {
		return 0
	}
	packed := binary.BigEndian.Uint64(data[10:18])
	sampleRate := packed >> 44
	totalSamples := packed & 0xFFFFFFFFF
	if sampleRate == 0 {
		return 0
	}
	return float64(totalSamples) / float64(sampleRate)
}

// rawMarker looks for the marker in the raw tag map of formats without a dedicated reader.
func rawMarker(raw map[string]interface{}) string {
	for key, value := range raw {
		if !strings.EqualFold(key, MarkerField) {
			continue
		}
		switch v := value.(type) {
		case string:
			return strings.TrimSpace(v)
		case []byte:
			return strings.TrimSpace(string(v))
		}
	}
	return ""
}
