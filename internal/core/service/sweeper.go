package service

import (
	"context"
	"time"
)

// DefaultSweepInterval is how often the background sweeper evicts
// expired files when no interval is configured.
const DefaultSweepInterval = time.Minute

// DefaultClientTimeout is how long a client may stay silent before
// the sweeper asks the transport to disconnect it. The websocket
// gateway refreshes liveness on every pong, so only genuinely dead
// connections cross this threshold.
const DefaultClientTimeout = 90 * time.Second

// RunSweeper evicts expired files and reaps silent clients on a fixed
// interval until ctx is cancelled. It is meant to run in its own
// goroutine for the lifetime of the server.
func (h *Hub) RunSweeper(ctx context.Context, interval, clientTimeout time.Duration) {
	if interval <= 0 {
		interval = DefaultSweepInterval
	}
	if clientTimeout <= 0 {
		clientTimeout = DefaultClientTimeout
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	h.log.Info("sweeper started", "interval", interval, "client_timeout", clientTimeout)
	for {
		select {
		case <-ctx.Done():
			h.log.Info("sweeper stopped")
			return
		case now := <-ticker.C:
			if removed := h.SweepExpired(now); len(removed) > 0 {
				h.log.Info("evicted expired files", "count", len(removed))
			}
			h.reapStaleClients(now, clientTimeout)
		}
	}
}

// reapStaleClients asks the transport to drop every client whose last
// activity predates now minus timeout. Teardown flows back through
// OnClientDisconnected, keeping presence counts consistent.
func (h *Hub) reapStaleClients(now time.Time, timeout time.Duration) {
	h.mu.Lock()
	sender := h.sender
	stale := h.board.Clients.StaleSince(now.Add(-timeout).UnixMilli())
	h.mu.Unlock()
	if sender == nil {
		return
	}
	for _, id := range stale {
		h.log.Warn("reaping silent client", "client_id", id, "timeout", timeout)
		sender.Disconnect(id)
	}
}
