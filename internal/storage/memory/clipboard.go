package memory

import (
	"fmt"
	"sync"
	"time"

	"github.com/syncboard/syncboard/internal/core/domain"
)

// ClipboardState holds the single authoritative clipboard text of a
// board, guarded by a short critical section. Writers use compare-and-set
// on the version counter instead of holding a lock across network I/O.
type ClipboardState struct {
	mu          sync.RWMutex
	text        domain.ClipboardText
	maxTextSize int
}

// NewClipboardState creates an empty clipboard at version 0.
// maxTextSize caps accepted content length in bytes; non-positive
// values fall back to the default.
func NewClipboardState(maxTextSize int) *ClipboardState {
	if maxTextSize <= 0 {
		maxTextSize = domain.DefaultMaxTextSize
	}
	return &ClipboardState{maxTextSize: maxTextSize}
}

// Current returns a copy of the latest value. It never blocks on
// writers longer than a single mutation.
func (s *ClipboardState) Current() *domain.ClipboardText {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.Clone()
}

// Update atomically replaces the clipboard content if expectedVersion
// matches the stored version.
//
// On a match the content is replaced, the version incremented, and
// UpdatedAt/UpdatedBy stamped; the new state is returned. On a
// mismatch the update fails with ErrStaleVersion carrying the current
// version so the caller can re-read and resubmit: among clients racing
// on the same version, the first update to reach the board wins.
// Oversized content fails with ErrTextTooLarge without mutating.
func (s *ClipboardState) Update(content string, expectedVersion uint64, authorID string) (*domain.ClipboardText, error) {
	if len(content) > s.maxTextSize {
		return nil, domain.ErrTextTooLarge.WithDetails(
			fmt.Sprintf("content is %d bytes, cap is %d", len(content), s.maxTextSize))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.text.Version != expectedVersion {
		return nil, domain.ErrStaleVersion.WithDetails(
			fmt.Sprintf("expected version %d, current is %d", expectedVersion, s.text.Version))
	}

	s.text.Content = content
	s.text.Version++
	s.text.UpdatedAt = time.Now().UnixMilli()
	s.text.UpdatedBy = authorID

	return s.text.Clone(), nil
}

// Version returns the current version without copying the content.
func (s *ClipboardState) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.text.Version
}
