package watcher

import (
	"time"
)

// FileEventType represents the type of file system event
type FileEventType string

const (
	FileCreated FileEventType = "created"
)

// FileEvent is a debounced batch of new supported files under the watched root.
type FileEvent struct {
	Root      string
	Paths     []string
	EventType FileEventType
	Timestamp time.Time
}
