package service

import (
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/internal/protocol"
	"github.com/syncboard/syncboard/internal/telemetry/metric"
)

// fakeSender records delivered events per client and can be told to
// fail delivery for specific ids. Disconnect feeds back into the hub
// the way the websocket gateway does after a real teardown.
type fakeSender struct {
	hub *Hub

	mu           sync.Mutex
	events       map[string][]*protocol.Event
	failing      map[string]bool
	disconnected []string
}

func newFakeSender() *fakeSender {
	return &fakeSender{
		events:  make(map[string][]*protocol.Event),
		failing: make(map[string]bool),
	}
}

func (s *fakeSender) SendTo(clientID string, event *protocol.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failing[clientID] {
		return errors.New("send queue full")
	}
	s.events[clientID] = append(s.events[clientID], event)
	return nil
}

func (s *fakeSender) Disconnect(clientID string) {
	s.mu.Lock()
	s.disconnected = append(s.disconnected, clientID)
	hub := s.hub
	s.mu.Unlock()
	if hub != nil {
		hub.OnClientDisconnected(clientID)
	}
}

func (s *fakeSender) eventsFor(clientID string) []*protocol.Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*protocol.Event, len(s.events[clientID]))
	copy(out, s.events[clientID])
	return out
}

func (s *fakeSender) setFailing(clientID string, fail bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failing[clientID] = fail
}

func newTestHub(t *testing.T, cfg BoardConfig) (*Hub, *fakeSender) {
	t.Helper()
	if cfg.FileTTL == 0 {
		cfg.FileTTL = time.Hour
	}
	hub := NewHub(NewBoard(cfg), nil, metric.NewRegistry())
	sender := newFakeSender()
	sender.hub = hub
	hub.SetSender(sender)
	return hub, sender
}

func lastEvent(t *testing.T, events []*protocol.Event) *protocol.Event {
	t.Helper()
	if len(events) == 0 {
		t.Fatal("expected at least one event")
	}
	return events[len(events)-1]
}

func TestHub_ConnectSendsSnapshotThenPresence(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})

	if err := hub.OnClientConnected("sbcl-a"); err != nil {
		t.Fatalf("OnClientConnected: %v", err)
	}

	got := sender.eventsFor("sbcl-a")
	if len(got) != 2 {
		t.Fatalf("expected snapshot and presence, got %d events", len(got))
	}
	if got[0].Type != protocol.EventBoardSync {
		t.Fatalf("first event type = %q, want %q", got[0].Type, protocol.EventBoardSync)
	}
	if got[0].Text == nil || got[0].Text.Version != 0 {
		t.Fatalf("snapshot should carry the empty board at version 0, got %+v", got[0].Text)
	}
	if got[1].Type != protocol.EventPresence || got[1].Count != 1 {
		t.Fatalf("second event = %+v, want presence with count 1", got[1])
	}

	if err := hub.OnClientConnected("sbcl-b"); err != nil {
		t.Fatalf("OnClientConnected: %v", err)
	}
	if ev := lastEvent(t, sender.eventsFor("sbcl-a")); ev.Type != protocol.EventPresence || ev.Count != 2 {
		t.Fatalf("existing client should see presence count 2, got %+v", ev)
	}
}

func TestHub_DuplicateClientIDRejected(t *testing.T) {
	hub, _ := newTestHub(t, BoardConfig{})

	if err := hub.OnClientConnected("sbcl-a"); err != nil {
		t.Fatalf("OnClientConnected: %v", err)
	}
	err := hub.OnClientConnected("sbcl-a")
	if !domain.IsDomainError(err, domain.ErrClientConflict.Code) {
		t.Fatalf("expected %s, got %v", domain.ErrClientConflict.Code, err)
	}
	if got := hub.Board().Clients.Count(); got != 1 {
		t.Fatalf("registry count = %d, want 1", got)
	}
}

func TestHub_TextUpdateBroadcastIncludesAuthor(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")
	hub.OnClientConnected("sbcl-b")

	updated, err := hub.OnTextSubmit("sbcl-a", "hello", 0)
	if err != nil {
		t.Fatalf("OnTextSubmit: %v", err)
	}
	if updated.Version != 1 {
		t.Fatalf("version = %d, want 1", updated.Version)
	}

	for _, id := range []string{"sbcl-a", "sbcl-b"} {
		ev := lastEvent(t, sender.eventsFor(id))
		if ev.Type != protocol.EventTextUpdated {
			t.Fatalf("client %s last event = %q, want %q", id, ev.Type, protocol.EventTextUpdated)
		}
		if ev.Text.Content != "hello" || ev.Text.Version != 1 || ev.Text.UpdatedBy != "sbcl-a" {
			t.Fatalf("client %s got %+v", id, ev.Text)
		}
	}
}

func TestHub_StaleSubmitGetsPrivateConflict(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")
	hub.OnClientConnected("sbcl-b")

	if _, err := hub.OnTextSubmit("sbcl-a", "hello", 0); err != nil {
		t.Fatalf("first submit: %v", err)
	}
	before := len(sender.eventsFor("sbcl-a"))

	_, err := hub.OnTextSubmit("sbcl-b", "world", 0)
	if !domain.IsDomainError(err, domain.ErrStaleVersion.Code) {
		t.Fatalf("expected %s, got %v", domain.ErrStaleVersion.Code, err)
	}

	ev := lastEvent(t, sender.eventsFor("sbcl-b"))
	if ev.Type != protocol.EventTextConflict {
		t.Fatalf("loser got %q, want %q", ev.Type, protocol.EventTextConflict)
	}
	if ev.Text.Content != "hello" || ev.Text.Version != 1 {
		t.Fatalf("conflict should carry the authoritative state, got %+v", ev.Text)
	}
	if got := len(sender.eventsFor("sbcl-a")); got != before {
		t.Fatalf("winner received %d extra events from the rejected submit", got-before)
	}
}

func TestHub_OversizedTextPrivateError(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{MaxTextSize: 8})
	hub.OnClientConnected("sbcl-a")
	hub.OnClientConnected("sbcl-b")
	otherBefore := len(sender.eventsFor("sbcl-b"))

	_, err := hub.OnTextSubmit("sbcl-a", strings.Repeat("x", 9), 0)
	if !domain.IsDomainError(err, domain.ErrTextTooLarge.Code) {
		t.Fatalf("expected %s, got %v", domain.ErrTextTooLarge.Code, err)
	}

	ev := lastEvent(t, sender.eventsFor("sbcl-a"))
	if ev.Type != protocol.EventError || ev.Code != domain.ErrTextTooLarge.Code {
		t.Fatalf("author got %+v, want error event with %s", ev, domain.ErrTextTooLarge.Code)
	}
	if got := len(sender.eventsFor("sbcl-b")); got != otherBefore {
		t.Fatal("rejected submit must not reach other clients")
	}
	if v := hub.Board().Clipboard.Version(); v != 0 {
		t.Fatalf("board version = %d, want 0", v)
	}
}

func TestHub_FileUploadBroadcastAndDownload(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")
	hub.OnClientConnected("sbcl-b")

	meta, err := hub.OnFileUpload("sbcl-a", "notes.txt", "text/plain", []byte("payload"))
	if err != nil {
		t.Fatalf("OnFileUpload: %v", err)
	}

	for _, id := range []string{"sbcl-a", "sbcl-b"} {
		ev := lastEvent(t, sender.eventsFor(id))
		if ev.Type != protocol.EventFileAdded {
			t.Fatalf("client %s last event = %q, want %q", id, ev.Type, protocol.EventFileAdded)
		}
		if ev.File == nil || ev.File.ID != meta.ID || ev.File.SizeBytes != 7 {
			t.Fatalf("client %s got file meta %+v", id, ev.File)
		}
	}

	entry, err := hub.FileDownload(meta.ID)
	if err != nil {
		t.Fatalf("FileDownload: %v", err)
	}
	if string(entry.Data) != "payload" {
		t.Fatalf("downloaded data = %q", entry.Data)
	}
}

func TestHub_RejectedUploadNotBroadcast(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{MaxFileSize: 4})
	hub.OnClientConnected("sbcl-a")
	hub.OnClientConnected("sbcl-b")
	otherBefore := len(sender.eventsFor("sbcl-b"))

	_, err := hub.OnFileUpload("sbcl-a", "big.bin", "application/octet-stream", []byte("12345"))
	if !domain.IsDomainError(err, domain.ErrFileTooLarge.Code) {
		t.Fatalf("expected %s, got %v", domain.ErrFileTooLarge.Code, err)
	}

	ev := lastEvent(t, sender.eventsFor("sbcl-a"))
	if ev.Type != protocol.EventError || ev.Code != domain.ErrFileTooLarge.Code {
		t.Fatalf("uploader got %+v", ev)
	}
	if got := len(sender.eventsFor("sbcl-b")); got != otherBefore {
		t.Fatal("rejected upload must not reach other clients")
	}
}

func TestHub_UploadWithoutWebSocketClient(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")

	meta, err := hub.OnFileUpload("", "drop.txt", "text/plain", []byte("x"))
	if err != nil {
		t.Fatalf("OnFileUpload: %v", err)
	}
	ev := lastEvent(t, sender.eventsFor("sbcl-a"))
	if ev.Type != protocol.EventFileAdded || ev.File.ID != meta.ID {
		t.Fatalf("connected client got %+v, want file_added for %s", ev, meta.ID)
	}
}

func TestHub_FileDeleteBroadcastsRemoval(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")

	meta, err := hub.OnFileUpload("sbcl-a", "gone.txt", "text/plain", []byte("x"))
	if err != nil {
		t.Fatalf("OnFileUpload: %v", err)
	}
	if err := hub.OnFileDelete(meta.ID); err != nil {
		t.Fatalf("OnFileDelete: %v", err)
	}
	ev := lastEvent(t, sender.eventsFor("sbcl-a"))
	if ev.Type != protocol.EventFileRemoved || ev.FileID != meta.ID {
		t.Fatalf("got %+v, want file_removed for %s", ev, meta.ID)
	}

	err = hub.OnFileDelete(meta.ID)
	if !domain.IsDomainError(err, domain.ErrFileNotFound.Code) {
		t.Fatalf("second delete: expected %s, got %v", domain.ErrFileNotFound.Code, err)
	}
}

func TestHub_SweepBroadcastsEachRemoval(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{FileTTL: time.Millisecond})
	hub.OnClientConnected("sbcl-a")

	first, err := hub.OnFileUpload("sbcl-a", "a.txt", "text/plain", []byte("a"))
	if err != nil {
		t.Fatalf("upload a: %v", err)
	}
	second, err := hub.OnFileUpload("sbcl-a", "b.txt", "text/plain", []byte("b"))
	if err != nil {
		t.Fatalf("upload b: %v", err)
	}

	removed := hub.SweepExpired(time.Now().Add(time.Second))
	if len(removed) != 2 {
		t.Fatalf("sweep removed %v, want both entries", removed)
	}

	var gotRemoved []string
	for _, ev := range sender.eventsFor("sbcl-a") {
		if ev.Type == protocol.EventFileRemoved {
			gotRemoved = append(gotRemoved, ev.FileID)
		}
	}
	if len(gotRemoved) != 2 {
		t.Fatalf("expected 2 file_removed events, got %v", gotRemoved)
	}
	want := map[string]bool{first.ID: true, second.ID: true}
	for _, id := range gotRemoved {
		if !want[id] {
			t.Fatalf("unexpected removed id %s", id)
		}
	}

	if again := hub.SweepExpired(time.Now().Add(time.Second)); len(again) != 0 {
		t.Fatalf("second sweep removed %v, want nothing", again)
	}
}

func TestHub_FailedDeliveryDisconnectsOnlyThatClient(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")
	hub.OnClientConnected("sbcl-b")
	sender.setFailing("sbcl-b", true)

	if _, err := hub.OnTextSubmit("sbcl-a", "hello", 0); err != nil {
		t.Fatalf("OnTextSubmit: %v", err)
	}

	if hub.Board().Clients.Has("sbcl-b") {
		t.Fatal("undeliverable client should be unregistered")
	}
	if !hub.Board().Clients.Has("sbcl-a") {
		t.Fatal("healthy client must survive the peer's failure")
	}

	events := sender.eventsFor("sbcl-a")
	gotUpdate := false
	for _, ev := range events {
		if ev.Type == protocol.EventTextUpdated && ev.Text.Content == "hello" {
			gotUpdate = true
		}
	}
	if !gotUpdate {
		t.Fatal("healthy client missed the text update")
	}
	if ev := lastEvent(t, events); ev.Type != protocol.EventPresence || ev.Count != 1 {
		t.Fatalf("healthy client should see presence drop to 1, got %+v", ev)
	}
}

func TestHub_DisconnectUnknownClientIsNoop(t *testing.T) {
	hub, sender := newTestHub(t, BoardConfig{})
	hub.OnClientConnected("sbcl-a")
	before := len(sender.eventsFor("sbcl-a"))

	hub.OnClientDisconnected("sbcl-ghost")

	if got := len(sender.eventsFor("sbcl-a")); got != before {
		t.Fatal("disconnecting an unknown client must not emit presence")
	}
	hub.OnClientDisconnected("sbcl-a")
	hub.OnClientDisconnected("sbcl-a")
	if got := hub.Board().Clients.Count(); got != 0 {
		t.Fatalf("count = %d, want 0", got)
	}
}

func TestHub_ConcurrentSubmitsExactlyOneWinnerPerVersion(t *testing.T) {
	hub, _ := newTestHub(t, BoardConfig{})
	const writers = 8
	for i := 0; i < writers; i++ {
		hub.OnClientConnected("sbcl-" + string(rune('a'+i)))
	}

	var wg sync.WaitGroup
	var wins, conflicts int64
	var mu sync.Mutex
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			_, err := hub.OnTextSubmit(id, "from "+id, 0)
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				wins++
			} else if domain.IsDomainError(err, domain.ErrStaleVersion.Code) {
				conflicts++
			}
		}("sbcl-" + string(rune('a'+i)))
	}
	wg.Wait()

	if wins != 1 || conflicts != writers-1 {
		t.Fatalf("wins = %d, conflicts = %d; want exactly one winner", wins, conflicts)
	}
	if v := hub.Board().Clipboard.Version(); v != 1 {
		t.Fatalf("version = %d, want 1", v)
	}
}
