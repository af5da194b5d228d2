package types

import (
	"time"

	"github.com/google/uuid"
)

// Entry types. File entries carry the source path in Content; image entries
// carry a display string there.
const (
	TypeText  = "text"
	TypeImage = "image"
	TypeFile  = "file"
)

// Entry is a single clipboard history item. The JSON field names are the
// on-disk contract inside each day bucket's items.json and must not change.
type Entry struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	Content    string    `json:"content"`
	Data       []byte    `json:"data,omitempty"` // in-memory payload, cleared once a sidecar exists
	FilePath   string    `json:"filePath,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	IsFavorite bool      `json:"isFavorite"`
}

// NewEntry creates an entry with a fresh ID and the current time.
func NewEntry(entryType, content string, data []byte) Entry {
	return Entry{
		ID:        uuid.NewString(),
		Type:      entryType,
		Content:   content,
		Data:      data,
		Timestamp: time.Now(),
	}
}

// DateBucket returns the local calendar-day bucket name for the entry.
func (e Entry) DateBucket() string {
	return e.Timestamp.Local().Format("2006-01-02")
}
