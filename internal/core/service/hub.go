package service

import (
	"sync"
	"time"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/internal/protocol"
	"github.com/syncboard/syncboard/internal/telemetry/logger"
	"github.com/syncboard/syncboard/internal/telemetry/metric"
)

// Sender delivers events to individual clients. The websocket gateway
// implements it; tests substitute a fake.
type Sender interface {
	// SendTo queues an event for one client. It returns an error when
	// the client's outbound queue is full or its connection is gone.
	SendTo(clientID string, event *protocol.Event) error

	// Disconnect asks the transport to tear down a client connection.
	// The transport invokes OnClientDisconnected once teardown is done,
	// so the hub never unregisters a failed client directly.
	Disconnect(clientID string)
}

// Hub serializes every board mutation and fans the resulting events
// out to all registered clients. A single mutex covers both the
// mutation and the enqueueing of its events, so all clients observe
// updates in the same order.
type Hub struct {
	board   *Board
	log     logger.Logger
	metrics *metric.Registry

	mu     sync.Mutex
	sender Sender
}

// NewHub creates a hub for the given board. Call SetSender before
// accepting any client traffic.
func NewHub(board *Board, log logger.Logger, metrics *metric.Registry) *Hub {
	if log == nil {
		log = logger.Default()
	}
	if metrics == nil {
		metrics = metric.Global()
	}
	return &Hub{
		board:   board,
		log:     log,
		metrics: metrics,
	}
}

// SetSender wires the transport in. The hub and the gateway reference
// each other, so the sender is attached after both are constructed.
func (h *Hub) SetSender(s Sender) {
	h.mu.Lock()
	h.sender = s
	h.mu.Unlock()
}

// Board exposes the underlying aggregate for read-only callers such
// as HTTP handlers.
func (h *Hub) Board() *Board {
	return h.board
}

// OnClientConnected registers a client, sends it the full board
// snapshot, and announces the new presence count to everyone.
func (h *Hub) OnClientConnected(clientID string) error {
	h.mu.Lock()
	if _, err := h.board.Clients.Register(clientID); err != nil {
		h.mu.Unlock()
		return err
	}
	count := h.board.Clients.Count()
	h.metrics.ClientsConnected.Set(float64(count))

	snapshot := protocol.NewBoardSync(
		h.board.Clipboard.Current(),
		h.board.Files.List(time.Now()),
		count,
	)
	failed := h.sendToLocked(clientID, snapshot)
	failed = append(failed, h.broadcastLocked(protocol.NewPresence(count))...)
	h.mu.Unlock()

	h.log.Info("client connected", "client_id", clientID, "clients", count)
	h.disconnectAll(failed)
	return nil
}

// OnClientDisconnected removes a client and announces the updated
// presence count. Unknown client ids are ignored, so the transport
// may report the same disconnect more than once.
func (h *Hub) OnClientDisconnected(clientID string) {
	h.mu.Lock()
	if !h.board.Clients.Has(clientID) {
		h.mu.Unlock()
		return
	}
	h.board.Clients.Unregister(clientID)
	count := h.board.Clients.Count()
	h.metrics.ClientsConnected.Set(float64(count))
	failed := h.broadcastLocked(protocol.NewPresence(count))
	h.mu.Unlock()

	h.log.Info("client disconnected", "client_id", clientID, "clients", count)
	h.disconnectAll(failed)
}

// OnTextSubmit applies a clipboard write from clientID. On success the
// new text is broadcast to every client, the author included, so the
// author learns its accepted version from the same event as everyone
// else. A stale expected version is answered with a private
// text_conflict carrying the current state; any other rejection is
// answered with a private error event.
func (h *Hub) OnTextSubmit(clientID, content string, expectedVersion uint64) (*domain.ClipboardText, error) {
	h.mu.Lock()
	updated, err := h.board.Clipboard.Update(content, expectedVersion, clientID)
	if err != nil {
		var failed []string
		if domain.IsDomainError(err, domain.ErrStaleVersion.Code) {
			h.metrics.TextConflicts.Inc()
			failed = h.sendToLocked(clientID, protocol.NewTextConflict(h.board.Clipboard.Current()))
		} else {
			failed = h.sendToLocked(clientID, protocol.NewError(err))
		}
		h.mu.Unlock()
		h.disconnectAll(failed)
		return nil, err
	}
	h.metrics.TextUpdates.Inc()
	failed := h.broadcastLocked(protocol.NewTextUpdated(updated))
	h.mu.Unlock()

	h.disconnectAll(failed)
	return updated, nil
}

// OnBoardSyncRequest re-sends the full snapshot to one client.
func (h *Hub) OnBoardSyncRequest(clientID string) {
	h.mu.Lock()
	snapshot := protocol.NewBoardSync(
		h.board.Clipboard.Current(),
		h.board.Files.List(time.Now()),
		h.board.Clients.Count(),
	)
	failed := h.sendToLocked(clientID, snapshot)
	h.mu.Unlock()
	h.disconnectAll(failed)
}

// OnFileUpload stores an uploaded file and broadcasts its metadata.
// clientID may be empty when the upload arrives over plain HTTP from
// a client with no websocket attached; rejections are then reported
// only through the returned error.
func (h *Hub) OnFileUpload(clientID, filename, mimeType string, data []byte) (*domain.FileEntry, error) {
	h.mu.Lock()
	meta, err := h.board.Files.Put(filename, mimeType, data)
	if err != nil {
		var failed []string
		if clientID != "" && h.board.Clients.Has(clientID) {
			failed = h.sendToLocked(clientID, protocol.NewError(err))
		}
		h.mu.Unlock()
		h.disconnectAll(failed)
		return nil, err
	}
	h.metrics.FilesAdded.Inc()
	h.setFileGaugesLocked()
	failed := h.broadcastLocked(protocol.NewFileAdded(meta))
	h.mu.Unlock()

	h.log.Info("file stored",
		"file_id", meta.ID,
		"filename", meta.Filename,
		"size_bytes", meta.SizeBytes,
	)
	h.disconnectAll(failed)
	return meta, nil
}

// FileDownload fetches a stored file for serving. Expired entries are
// rejected even before the sweeper has run.
func (h *Hub) FileDownload(fileID string) (*domain.FileEntry, error) {
	return h.board.Files.Get(fileID)
}

// OnFileDelete removes a file on explicit client request and
// broadcasts the removal. Deleting an unknown or already removed id
// returns ErrFileNotFound.
func (h *Hub) OnFileDelete(fileID string) error {
	h.mu.Lock()
	if !h.board.Files.Remove(fileID) {
		h.mu.Unlock()
		return domain.ErrFileNotFound.WithDetails(fileID)
	}
	h.setFileGaugesLocked()
	failed := h.broadcastLocked(protocol.NewFileRemoved(fileID))
	h.mu.Unlock()

	h.log.Info("file removed", "file_id", fileID)
	h.disconnectAll(failed)
	return nil
}

// SweepExpired evicts every file whose TTL elapsed at or before now
// and broadcasts one file_removed per evicted id. It returns the
// evicted ids.
func (h *Hub) SweepExpired(now time.Time) []string {
	h.mu.Lock()
	removed := h.board.Files.Sweep(now)
	var failed []string
	if len(removed) > 0 {
		h.metrics.FilesExpired.Add(float64(len(removed)))
		h.setFileGaugesLocked()
		for _, id := range removed {
			failed = append(failed, h.broadcastLocked(protocol.NewFileRemoved(id))...)
		}
	}
	h.mu.Unlock()

	h.disconnectAll(dedupe(failed))
	return removed
}

// setFileGaugesLocked refreshes the file count and byte gauges. The
// hub mutex must be held.
func (h *Hub) setFileGaugesLocked() {
	h.metrics.FilesStored.Set(float64(h.board.Files.Count()))
	h.metrics.BytesStored.Set(float64(h.board.Files.TotalBytes()))
}

// broadcastLocked enqueues an event for every registered client and
// returns the ids whose delivery failed. The hub mutex must be held;
// failures are handled by the caller after unlocking, since tearing a
// client down re-enters the hub.
func (h *Hub) broadcastLocked(event *protocol.Event) []string {
	if h.sender == nil {
		return nil
	}
	var failed []string
	for _, id := range h.board.Clients.List() {
		if err := h.sender.SendTo(id, event); err != nil {
			failed = append(failed, id)
		}
	}
	h.metrics.EventsBroadcast.Inc()
	return failed
}

// sendToLocked enqueues an event for a single client, returning its
// id on failure so the caller shares the broadcast failure path.
func (h *Hub) sendToLocked(clientID string, event *protocol.Event) []string {
	if h.sender == nil {
		return nil
	}
	if err := h.sender.SendTo(clientID, event); err != nil {
		return []string{clientID}
	}
	return nil
}

// disconnectAll asks the transport to tear down every client that
// could not be delivered to. Must be called with the hub unlocked.
func (h *Hub) disconnectAll(clientIDs []string) {
	if len(clientIDs) == 0 || h.sender == nil {
		return
	}
	for _, id := range clientIDs {
		h.log.Warn("send failed, disconnecting client", "client_id", id)
		h.metrics.SendFailures.Inc()
		h.sender.Disconnect(id)
	}
}

func dedupe(ids []string) []string {
	if len(ids) < 2 {
		return ids
	}
	seen := make(map[string]struct{}, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
