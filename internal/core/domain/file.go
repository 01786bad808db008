package domain

import (
	"crypto/rand"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// File constraints.
const (
	MaxFilenameLength = 255
	MaxMimeTypeLength = 128

	// FileIDPrefix is the prefix for stored file ids.
	FileIDPrefix = "sbfl-"

	// DefaultFileTTL is the default lifetime of a stored file.
	DefaultFileTTL = time.Hour
)

// FileEntry is an in-memory file blob with metadata and expiry.
//
// Entries are immutable after creation: the store replaces, never
// updates. The Data buffer is owned by the store from Put until
// eviction or explicit removal.
type FileEntry struct {
	// ID is the unique identifier. Format: sbfl-{ulid_lowercase}.
	ID string `json:"id"`

	// Filename is the original upload filename.
	Filename string `json:"filename"`

	// MimeType is the declared content type.
	MimeType string `json:"mime_type"`

	// SizeBytes is the payload size.
	SizeBytes int64 `json:"size_bytes"`

	// Data is the payload. Omitted from metadata serialization.
	Data []byte `json:"-"`

	// UploadedAt is the creation timestamp (Unix milliseconds).
	UploadedAt int64 `json:"uploaded_at"`

	// ExpiresAt is the absolute expiry timestamp (Unix milliseconds).
	// Always UploadedAt + TTL.
	ExpiresAt int64 `json:"expires_at"`
}

// NewFileEntry creates a FileEntry with a generated id and expiry
// computed from the given TTL. The entry references data directly;
// the caller must hand over ownership of the slice.
func NewFileEntry(filename, mimeType string, data []byte, ttl time.Duration) (*FileEntry, error) {
	if err := validateFileMeta(filename, mimeType); err != nil {
		return nil, err
	}

	id, err := GenerateFileID()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	return &FileEntry{
		ID:         id,
		Filename:   filename,
		MimeType:   mimeType,
		SizeBytes:  int64(len(data)),
		Data:       data,
		UploadedAt: now.UnixMilli(),
		ExpiresAt:  now.Add(ttl).UnixMilli(),
	}, nil
}

// GenerateFileID generates a new file id using ULID.
func GenerateFileID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", ErrInternalServer.WithCause(err)
	}
	return FileIDPrefix + strings.ToLower(id.String()), nil
}

func validateFileMeta(filename, mimeType string) error {
	if filename == "" {
		return ErrFileValidation.WithDetails("filename is required")
	}
	if len(filename) > MaxFilenameLength {
		return ErrFileValidation.WithDetails("filename exceeds 255 characters")
	}
	if len(mimeType) > MaxMimeTypeLength {
		return ErrFileValidation.WithDetails("mime_type exceeds 128 characters")
	}
	return nil
}

// IsExpiredAt reports whether the entry is expired at the given time.
// Expiry is decided by timestamp so a read never depends on whether
// the background sweep has already run.
func (f *FileEntry) IsExpiredAt(now time.Time) bool {
	return now.UnixMilli() >= f.ExpiresAt
}

// IsExpired reports whether the entry is expired now.
func (f *FileEntry) IsExpired() bool {
	return f.IsExpiredAt(time.Now())
}

// Meta returns a copy of the entry without the payload, for fan-out
// and listings.
func (f *FileEntry) Meta() *FileEntry {
	meta := *f
	meta.Data = nil
	return &meta
}

// UploadedAtTime returns UploadedAt as time.Time.
func (f *FileEntry) UploadedAtTime() time.Time {
	return time.UnixMilli(f.UploadedAt)
}

// ExpiresAtTime returns ExpiresAt as time.Time.
func (f *FileEntry) ExpiresAtTime() time.Time {
	return time.UnixMilli(f.ExpiresAt)
}
