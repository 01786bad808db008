package memory

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/pkg/cmap"
)

// File store defaults.
const (
	DefaultMaxFileSize  = 64 << 20  // 64 MiB per upload
	DefaultMaxTotalSize = 512 << 20 // 512 MiB aggregate cap
)

// FileStoreConfig configures a FileStore.
type FileStoreConfig struct {
	// TTL is the lifetime of a stored entry.
	TTL time.Duration

	// MaxFileSize caps a single upload in bytes.
	MaxFileSize int64

	// MaxTotalSize caps the aggregate stored bytes. Uploads that
	// would exceed it are rejected before any allocation: with no
	// disk backing, this is the only guard against memory exhaustion.
	MaxTotalSize int64
}

func (c *FileStoreConfig) applyDefaults() {
	if c.TTL <= 0 {
		c.TTL = domain.DefaultFileTTL
	}
	if c.MaxFileSize <= 0 {
		c.MaxFileSize = DefaultMaxFileSize
	}
	if c.MaxTotalSize <= 0 {
		c.MaxTotalSize = DefaultMaxTotalSize
	}
}

// FileStore is the in-memory catalogue of file blobs with expiry.
//
// The catalogue is append-only: entries are never mutated after Put,
// only removed by explicit delete or by the expiry sweep. Reads check
// the expiry timestamp themselves, so an entry past its TTL is
// unreachable even before the sweep physically removes it.
type FileStore struct {
	entries *cmap.Map[*domain.FileEntry]
	cfg     FileStoreConfig

	// mu serializes Put/Remove/Sweep so the aggregate byte count and
	// the catalogue stay consistent. Get goes through the sharded map
	// and the per-entry timestamp check only.
	mu         sync.Mutex
	totalBytes int64
}

// NewFileStore creates an empty file store.
func NewFileStore(cfg FileStoreConfig) *FileStore {
	cfg.applyDefaults()
	return &FileStore{
		entries: cmap.New[*domain.FileEntry](),
		cfg:     cfg,
	}
}

// Put stores a new file and returns its metadata (without the data
// bytes) for broadcast. It fails with ErrFileTooLarge when the upload
// exceeds the per-file cap and ErrStorageFull when accepting it would
// exceed the aggregate cap; neither failure mutates the store.
func (s *FileStore) Put(filename, mimeType string, data []byte) (*domain.FileEntry, error) {
	size := int64(len(data))
	if size > s.cfg.MaxFileSize {
		return nil, domain.ErrFileTooLarge.WithDetails(
			fmt.Sprintf("upload is %d bytes, cap is %d", size, s.cfg.MaxFileSize))
	}

	entry, err := domain.NewFileEntry(filename, mimeType, data, s.cfg.TTL)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.totalBytes+size > s.cfg.MaxTotalSize {
		return nil, domain.ErrStorageFull.WithDetails(
			fmt.Sprintf("%d bytes stored, cap is %d", s.totalBytes, s.cfg.MaxTotalSize))
	}

	// ULIDs are unique for the process lifetime; a collision would
	// mean a broken entropy source.
	if !s.entries.SetIfAbsent(entry.ID, entry) {
		return nil, domain.ErrInternalServer.WithDetails("file id collision")
	}
	s.totalBytes += size

	return entry.Meta(), nil
}

// Get returns the entry including its data if present and unexpired.
// An entry past ExpiresAt is reported as ErrFileExpired even if the
// sweep has not yet removed it.
func (s *FileStore) Get(id string) (*domain.FileEntry, error) {
	entry, ok := s.entries.Get(id)
	if !ok {
		return nil, domain.ErrFileNotFound.WithDetails(id)
	}
	if entry.IsExpired() {
		return nil, domain.ErrFileExpired.WithDetails(id)
	}
	return entry, nil
}

// Remove deletes an entry, reporting whether the id was present.
// Idempotent: removing an absent id is a no-op.
func (s *FileStore) Remove(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.removeLocked(id)
}

func (s *FileStore) removeLocked(id string) bool {
	entry, ok := s.entries.Pop(id)
	if !ok {
		return false
	}
	s.totalBytes -= entry.SizeBytes
	return true
}

// Sweep removes every entry with ExpiresAt <= now and returns the
// removed ids so the caller can broadcast their removal. Entries that
// are not yet due are left untouched; calling Sweep again with no new
// entries removes nothing.
func (s *FileStore) Sweep(now time.Time) []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var expired []string
	s.entries.Range(func(id string, entry *domain.FileEntry) bool {
		if entry.IsExpiredAt(now) {
			expired = append(expired, id)
		}
		return true
	})

	removed := expired[:0]
	for _, id := range expired {
		if s.removeLocked(id) {
			removed = append(removed, id)
		}
	}
	sort.Strings(removed)
	return removed
}

// List returns metadata for all live (unexpired) entries, oldest first.
func (s *FileStore) List(now time.Time) []*domain.FileEntry {
	var metas []*domain.FileEntry
	s.entries.Range(func(_ string, entry *domain.FileEntry) bool {
		if !entry.IsExpiredAt(now) {
			metas = append(metas, entry.Meta())
		}
		return true
	})

	sort.Slice(metas, func(i, j int) bool {
		if metas[i].UploadedAt != metas[j].UploadedAt {
			return metas[i].UploadedAt < metas[j].UploadedAt
		}
		return metas[i].ID < metas[j].ID
	})
	return metas
}

// Count returns the number of stored entries, expired ones included
// until the sweep collects them.
func (s *FileStore) Count() int {
	return s.entries.Count()
}

// TotalBytes returns the aggregate stored payload size.
func (s *FileStore) TotalBytes() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.totalBytes
}
