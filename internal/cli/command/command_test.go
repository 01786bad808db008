package command

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

// newMockServer routes requests by path prefix and records the last
// method and path seen.
type mockServer struct {
	*httptest.Server
	handlers map[string]http.HandlerFunc

	lastMethod string
	lastPath   string
}

func newMockServer() *mockServer {
	m := &mockServer{handlers: make(map[string]http.HandlerFunc)}
	m.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		m.lastMethod, m.lastPath = r.Method, r.URL.Path
		for pattern, handler := range m.handlers {
			if strings.HasPrefix(r.URL.Path, pattern) {
				handler(w, r)
				return
			}
		}
		http.NotFound(w, r)
	}))
	return m
}

func (m *mockServer) handle(pattern string, handler http.HandlerFunc) {
	m.handlers[pattern] = handler
}

// okEnvelope writes a success envelope with the given data payload.
func okEnvelope(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"code":    "OK",
		"message": "Success",
		"data":    data,
	})
}

// runApp runs the CLI against the mock server.
func runApp(t *testing.T, srv *mockServer, args ...string) error {
	t.Helper()
	full := append([]string{"syncboard-cli", "--server", srv.URL}, args...)
	return App().Run(full)
}

func TestApp_Structure(t *testing.T) {
	app := App()
	if app.Name != "syncboard-cli" {
		t.Errorf("Name = %q, want syncboard-cli", app.Name)
	}

	names := make(map[string]bool)
	for _, cmd := range app.Commands {
		names[cmd.Name] = true
	}
	for _, want := range []string{"send", "watch", "files", "status"} {
		if !names[want] {
			t.Errorf("missing command: %s", want)
		}
	}
}

func TestFilesCommand_Structure(t *testing.T) {
	cmd := FilesCommand()
	subNames := make(map[string]bool)
	for _, sub := range cmd.Subcommands {
		subNames[sub.Name] = true
	}
	for _, want := range []string{"list", "upload", "download", "rm"} {
		if !subNames[want] {
			t.Errorf("missing subcommand: %s", want)
		}
	}
}

func TestFilesList(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/files", func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, []fileItem{
			{ID: "sbfl-01k0001", Filename: "notes.txt", SizeBytes: 1024, ExpiresAt: time.Now().Add(time.Hour).UnixMilli()},
		})
	})

	if err := runApp(t, srv, "files", "list"); err != nil {
		t.Fatalf("files list: %v", err)
	}
	if srv.lastMethod != http.MethodGet || srv.lastPath != "/files" {
		t.Errorf("request = %s %s, want GET /files", srv.lastMethod, srv.lastPath)
	}
}

func TestFilesUpload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.txt")
	if err := os.WriteFile(path, []byte("quarterly numbers"), 0o644); err != nil {
		t.Fatal(err)
	}

	var gotFilename string
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/upload", func(w http.ResponseWriter, r *http.Request) {
		_, header, err := r.FormFile("file")
		if err != nil {
			t.Errorf("FormFile: %v", err)
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		gotFilename = header.Filename
		okEnvelope(w, fileItem{ID: "sbfl-01k0002", Filename: header.Filename, SizeBytes: 17})
	})

	if err := runApp(t, srv, "files", "upload", path); err != nil {
		t.Fatalf("files upload: %v", err)
	}
	if gotFilename != "report.txt" {
		t.Errorf("uploaded filename = %q, want report.txt", gotFilename)
	}
}

func TestFilesDownload_WritesOutputFile(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/files/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		w.Header().Set("Content-Disposition", `attachment; filename="notes.txt"`)
		w.Write([]byte("downloaded body"))
	})

	// Flags precede the positional argument; urfave/cli stops flag
	// parsing at the first non-flag token.
	out := filepath.Join(t.TempDir(), "saved.txt")
	if err := runApp(t, srv, "files", "download", "--out", out, "sbfl-01k0003"); err != nil {
		t.Fatalf("files download: %v", err)
	}

	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("read output: %v", err)
	}
	if string(data) != "downloaded body" {
		t.Errorf("body = %q", data)
	}
}

func TestFilesDownload_TrailingFlagRejected(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()

	err := runApp(t, srv, "files", "download", "sbfl-01k0003", "--out", "ignored.txt")
	if err == nil || !strings.Contains(err.Error(), "flags go before") {
		t.Errorf("err = %v, want misplaced-flag rejection", err)
	}
}

func TestFilesDownload_NotFound(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/files/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]any{"code": "SB-FILE-4040", "message": "file not found"})
	})

	err := runApp(t, srv, "files", "download", "sbfl-missing")
	if err == nil || !strings.Contains(err.Error(), "SB-FILE-4040") {
		t.Errorf("err = %v, want SB-FILE-4040 surfaced", err)
	}
}

func TestFilesRemove(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/files/", func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, nil)
	})

	if err := runApp(t, srv, "files", "rm", "sbfl-01k0004"); err != nil {
		t.Fatalf("files rm: %v", err)
	}
	if srv.lastMethod != http.MethodDelete || srv.lastPath != "/files/sbfl-01k0004" {
		t.Errorf("request = %s %s, want DELETE /files/sbfl-01k0004", srv.lastMethod, srv.lastPath)
	}
}

func TestStatusCommand(t *testing.T) {
	srv := newMockServer()
	defer srv.Close()
	srv.handle("/board", func(w http.ResponseWriter, r *http.Request) {
		okEnvelope(w, map[string]any{
			"text":    map[string]any{"content": "hello", "version": 4},
			"files":   []any{},
			"clients": 2,
		})
	})

	if err := runApp(t, srv, "status"); err != nil {
		t.Fatalf("status: %v", err)
	}
	if srv.lastPath != "/board" {
		t.Errorf("path = %s, want /board", srv.lastPath)
	}
}

func TestPreviewText(t *testing.T) {
	if got := previewText("line one\nline two"); strings.ContainsRune(got, '\n') {
		t.Errorf("newline survived: %q", got)
	}
	long := strings.Repeat("x", 200)
	if got := previewText(long); len(got) != 63 || !strings.HasSuffix(got, "...") {
		t.Errorf("truncation = %q (len %d)", got, len(got))
	}
}
