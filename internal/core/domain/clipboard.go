package domain

import "time"

// DefaultMaxTextSize is the default clipboard text size cap in bytes.
const DefaultMaxTextSize = 2 << 20 // 2 MiB

// ClipboardText is the single authoritative text value of a board.
//
// The value is replaced as a whole on every accepted update; it is
// never partially written. Version increases strictly with each
// accepted update and drives optimistic concurrency: an update must
// carry the version its author last observed.
type ClipboardText struct {
	// Content is the text payload.
	Content string `json:"content"`

	// Version is the monotonically increasing update counter.
	// Version 0 is the empty board before any update.
	Version uint64 `json:"version"`

	// UpdatedAt is the timestamp of the last accepted update (Unix milliseconds).
	UpdatedAt int64 `json:"updated_at"`

	// UpdatedBy is the client id of the last accepted author.
	UpdatedBy string `json:"updated_by"`
}

// Clone returns a copy of the clipboard text.
func (t *ClipboardText) Clone() *ClipboardText {
	clone := *t
	return &clone
}

// UpdatedAtTime returns UpdatedAt as time.Time.
func (t *ClipboardText) UpdatedAtTime() time.Time {
	return time.UnixMilli(t.UpdatedAt)
}
