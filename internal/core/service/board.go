// Package service provides the board services for SyncBoard.
//
// The BroadcastHub is the single mutation-and-fan-out gateway: the
// transport layer feeds client intents in, the hub mutates the board
// state and pushes the resulting events back out to every registered
// connection.
package service

import (
	"time"

	"github.com/syncboard/syncboard/internal/storage/memory"
)

// BoardConfig holds the state limits of a board.
type BoardConfig struct {
	// MaxTextSize caps clipboard text length in bytes.
	MaxTextSize int

	// FileTTL is the lifetime of a stored file.
	FileTTL time.Duration

	// MaxFileSize caps a single upload in bytes.
	MaxFileSize int64

	// MaxTotalSize caps the aggregate stored file bytes.
	MaxTotalSize int64
}

// Board is the shared clipboard session: the authoritative text, the
// stored files, and the connected clients. One process hosts one
// board today; keeping it an explicit aggregate leaves room for
// multiple boards keyed by session id later.
type Board struct {
	Clipboard *memory.ClipboardState
	Files     *memory.FileStore
	Clients   *memory.ConnectionRegistry
}

// NewBoard creates an empty board with the given limits.
func NewBoard(cfg BoardConfig) *Board {
	return &Board{
		Clipboard: memory.NewClipboardState(cfg.MaxTextSize),
		Files: memory.NewFileStore(memory.FileStoreConfig{
			TTL:          cfg.FileTTL,
			MaxFileSize:  cfg.MaxFileSize,
			MaxTotalSize: cfg.MaxTotalSize,
		}),
		Clients: memory.NewConnectionRegistry(),
	}
}
