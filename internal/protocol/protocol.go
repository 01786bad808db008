// Package protocol defines the wire messages exchanged with board clients.
//
// Intents flow client-to-server over the WebSocket; events flow
// server-to-client. Both are JSON envelopes tagged by a "type" field.
// Events are transient: they exist only on the wire and are never
// persisted.
package protocol

import (
	"encoding/json"

	"github.com/syncboard/syncboard/internal/core/domain"
)

// Intent types (client -> server).
const (
	IntentText            = "text"
	IntentFileMetaRequest = "file_meta_request"
)

// Event types (server -> client).
const (
	EventBoardSync    = "board_sync"
	EventTextUpdated  = "text_update"
	EventTextConflict = "text_conflict"
	EventFileAdded    = "file_added"
	EventFileRemoved  = "file_removed"
	EventPresence     = "presence"
	EventError        = "error"
)

// Intent is a client request parsed off the WebSocket.
type Intent struct {
	Type string `json:"type"`

	// Text submission fields.
	Content string `json:"content,omitempty"`
	Version uint64 `json:"version"`
}

// ParseIntent decodes a raw WebSocket frame into an Intent.
func ParseIntent(data []byte) (*Intent, error) {
	var in Intent
	if err := json.Unmarshal(data, &in); err != nil {
		return nil, domain.ErrBadRequest.WithCause(err)
	}
	switch in.Type {
	case IntentText, IntentFileMetaRequest:
		return &in, nil
	default:
		return nil, domain.ErrBadRequest.WithDetails("unknown intent type " + in.Type)
	}
}

// TextState is the clipboard payload carried by text events.
type TextState struct {
	Content   string `json:"content"`
	Version   uint64 `json:"version"`
	UpdatedAt int64  `json:"updated_at"`
	UpdatedBy string `json:"updated_by,omitempty"`
}

// FileMeta is the file payload carried by file events (no data bytes).
type FileMeta struct {
	ID         string `json:"id"`
	Filename   string `json:"filename"`
	MimeType   string `json:"mime_type,omitempty"`
	SizeBytes  int64  `json:"size_bytes"`
	UploadedAt int64  `json:"uploaded_at"`
	ExpiresAt  int64  `json:"expires_at"`
}

// Event is the tagged server-to-client message.
//
// Exactly the fields relevant to Type are populated; everything else
// stays at its zero value and is omitted on the wire.
type Event struct {
	Type string `json:"type"`

	// Text: text_update, text_conflict; also the board_sync snapshot.
	Text *TextState `json:"text,omitempty"`

	// File: file_added carries one entry; board_sync carries the
	// full live listing.
	File  *FileMeta  `json:"file,omitempty"`
	Files []FileMeta `json:"files,omitempty"`

	// FileID: file_removed.
	FileID string `json:"file_id,omitempty"`

	// Count: presence and board_sync client count.
	Count int `json:"count,omitempty"`

	// Code/Message: error replies to the originating client.
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
}

// Encode serializes an event to a wire frame.
func (e *Event) Encode() ([]byte, error) {
	return json.Marshal(e)
}

// ParseEvent decodes a wire frame into an Event (used by clients).
func ParseEvent(data []byte) (*Event, error) {
	var ev Event
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// NewTextState converts a domain clipboard value to its wire form.
func NewTextState(t *domain.ClipboardText) *TextState {
	return &TextState{
		Content:   t.Content,
		Version:   t.Version,
		UpdatedAt: t.UpdatedAt,
		UpdatedBy: t.UpdatedBy,
	}
}

// NewFileMeta converts a domain file entry to its wire form.
func NewFileMeta(f *domain.FileEntry) FileMeta {
	return FileMeta{
		ID:         f.ID,
		Filename:   f.Filename,
		MimeType:   f.MimeType,
		SizeBytes:  f.SizeBytes,
		UploadedAt: f.UploadedAt,
		ExpiresAt:  f.ExpiresAt,
	}
}

// NewBoardSync builds the state-sync event unicast to a joining client.
func NewBoardSync(text *domain.ClipboardText, files []*domain.FileEntry, count int) *Event {
	metas := make([]FileMeta, 0, len(files))
	for _, f := range files {
		metas = append(metas, NewFileMeta(f))
	}
	return &Event{
		Type:  EventBoardSync,
		Text:  NewTextState(text),
		Files: metas,
		Count: count,
	}
}

// NewTextUpdated builds the broadcast for an accepted text update.
func NewTextUpdated(t *domain.ClipboardText) *Event {
	return &Event{Type: EventTextUpdated, Text: NewTextState(t)}
}

// NewTextConflict builds the reconciliation reply for a stale update.
// It carries the authoritative current state so the loser can retry.
func NewTextConflict(current *domain.ClipboardText) *Event {
	return &Event{Type: EventTextConflict, Text: NewTextState(current)}
}

// NewFileAdded builds the broadcast for a stored file.
func NewFileAdded(f *domain.FileEntry) *Event {
	meta := NewFileMeta(f)
	return &Event{Type: EventFileAdded, File: &meta}
}

// NewFileRemoved builds the broadcast for an evicted or deleted file.
func NewFileRemoved(id string) *Event {
	return &Event{Type: EventFileRemoved, FileID: id}
}

// NewPresence builds a presence broadcast with the connected count.
func NewPresence(count int) *Event {
	return &Event{Type: EventPresence, Count: count}
}

// NewError builds an error reply for the originating client only.
func NewError(err error) *Event {
	code := domain.GetErrorCode(err)
	if code == "" {
		code = domain.ErrInternalServer.Code
	}
	return &Event{Type: EventError, Code: code, Message: err.Error()}
}
