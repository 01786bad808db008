package service

import (
	"context"
	"testing"
	"time"
)

func TestSweeper_EvictsFilesAndReapsSilentClients(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{FileTTL: time.Millisecond})
	hub.OnClientConnected("sbcl-a")

	if _, err := hub.OnFileUpload("sbcl-a", "tmp.txt", "text/plain", []byte("x")); err != nil {
		t.Fatalf("upload: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := make(chan struct{})
	go func() {
		hub.RunSweeper(ctx, 5*time.Millisecond, 20*time.Millisecond)
		close(done)
	}()

	deadline := time.Now().Add(2 * time.Second)
	for hub.Board().Files.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never evicted the expired file")
		}
		time.Sleep(time.Millisecond)
	}

	// The client sends no heartbeats, so the timeout reaper should ask
	// the transport to drop it.
	for hub.Board().Clients.Count() != 0 {
		if time.Now().After(deadline) {
			t.Fatal("sweeper never reaped the silent client")
		}
		time.Sleep(time.Millisecond)
	}

	sender.mu.Lock()
	reaped := len(sender.disconnected) > 0
	sender.mu.Unlock()
	if !reaped {
		t.Fatal("expected the transport to be asked to disconnect the client")
	}

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop on cancel")
	}
}
