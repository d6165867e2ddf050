package duplicates

import (
	"context"
	"errors"

	"github.com/contre95/dupetrack/src/music"
)

type fakeReader struct {
	tags  map[string]music.Tags
	reads map[string]int
}

func newFakeReader(tags ...music.Tags) *fakeReader {
	r := &fakeReader{tags: make(map[string]music.Tags), reads: make(map[string]int)}
	for _, t := range tags {
		r.tags[t.Path] = t
	}
	return r
}

func (r *fakeReader) ReadTags(ctx context.Context, path string) (music.Tags, error) {
	r.reads[path]++
	t, ok := r.tags[path]
	if !ok {
		return music.Tags{}, &music.TagReadError{Path: path, Err: errors.New("no tags")}
	}
	return t, nil
}

type fakeLibrary struct {
	records map[string]music.Record
}

func newFakeLibrary() *fakeLibrary {
	return &fakeLibrary{records: make(map[string]music.Record)}
}

func (l *fakeLibrary) Lookup(key string) (music.Record, bool) {
	rec, ok := l.records[key]
	return rec, ok
}

func (l *fakeLibrary) Add(key string, rec music.Record) {
	l.records[key] = rec
}

func (l *fakeLibrary) Len() int {
	return len(l.records)
}

type countingRecorder struct {
	classes   map[string]int
	tagErrors int
}

func (r *countingRecorder) Classified(class string) {
	if r.classes == nil {
		r.classes = make(map[string]int)
	}
	r.classes[class]++
}

func (r *countingRecorder) TagError() {
	r.tagErrors++
}
