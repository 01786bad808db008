// Package httpserver provides the HTTP server for SyncBoard.
package httpserver

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/syncboard/syncboard/internal/core/domain"
	"github.com/syncboard/syncboard/internal/telemetry/logger"
	"github.com/syncboard/syncboard/internal/telemetry/metric"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("ok"))
	})
}

func TestChain_OrderIsOutermostFirst(t *testing.T) {
	var order []string
	mw := func(name string) Middleware {
		return func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			})
		}
	}

	h := Chain(okHandler(), mw("first"), mw("second"))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))

	if len(order) != 2 || order[0] != "first" || order[1] != "second" {
		t.Fatalf("order = %v", order)
	}
}

func TestRequestID_GeneratesAndEchoes(t *testing.T) {
	var ctxID string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = logger.RequestIDFromContext(r.Context())
	})

	rec := httptest.NewRecorder()
	RequestID()(inner).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	headerID := rec.Header().Get("X-Request-ID")
	if headerID == "" {
		t.Fatal("X-Request-ID header missing")
	}
	if ctxID != headerID {
		t.Fatalf("context id %q != header id %q", ctxID, headerID)
	}
}

func TestRequestID_PreservesCallerProvided(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "caller-id-1")
	rec := httptest.NewRecorder()

	RequestID()(okHandler()).ServeHTTP(rec, req)
	if got := rec.Header().Get("X-Request-ID"); got != "caller-id-1" {
		t.Fatalf("X-Request-ID = %q, want caller's id", got)
	}
}

func TestRecover_TurnsPanicInto500(t *testing.T) {
	boom := http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("kaput")
	})

	rec := httptest.NewRecorder()
	Recover(discardLogger())(boom).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["code"] != domain.ErrInternalServer.Code {
		t.Errorf("code = %q, want %s", body["code"], domain.ErrInternalServer.Code)
	}
}

func TestRateLimit_BlocksBeyondBurst(t *testing.T) {
	h := RateLimit(1, 2)(okHandler())

	statuses := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = "192.168.1.50:1234"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		statuses = append(statuses, rec.Code)
	}

	if statuses[0] != http.StatusOK || statuses[1] != http.StatusOK {
		t.Fatalf("burst requests should pass, got %v", statuses)
	}
	if statuses[2] != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", statuses[2])
	}
}

func TestRateLimit_PerPeerIsolation(t *testing.T) {
	h := RateLimit(1, 1)(okHandler())

	first := httptest.NewRequest(http.MethodGet, "/", nil)
	first.RemoteAddr = "192.168.1.50:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, first)
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("same peer second request = %d, want 429", rec.Code)
	}

	other := httptest.NewRequest(http.MethodGet, "/", nil)
	other.RemoteAddr = "192.168.1.51:1234"
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, other)
	if rec.Code != http.StatusOK {
		t.Fatalf("different peer = %d, exhausting one bucket must not affect others", rec.Code)
	}
}

func TestGetClientIP(t *testing.T) {
	tests := []struct {
		name   string
		setup  func(*http.Request)
		remote string
		want   string
	}{
		{"x-forwarded-for first hop", func(r *http.Request) {
			r.Header.Set("X-Forwarded-For", "10.0.0.9, 10.0.0.1")
		}, "127.0.0.1:1", "10.0.0.9"},
		{"x-real-ip", func(r *http.Request) {
			r.Header.Set("X-Real-IP", "10.0.0.7")
		}, "127.0.0.1:1", "10.0.0.7"},
		{"remote addr ipv4", func(*http.Request) {}, "192.168.1.3:4567", "192.168.1.3"},
		{"remote addr ipv6", func(*http.Request) {}, "[::1]:4567", "::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			tt.setup(req)
			if got := getClientIP(req); got != tt.want {
				t.Errorf("getClientIP = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestMeasure_PassesThrough(t *testing.T) {
	m := metric.NewRegistry()
	rec := httptest.NewRecorder()
	Measure(m, "/board")(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/board", nil))

	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("response mangled: %d %q", rec.Code, rec.Body.String())
	}
}

func TestAudit_PassesThrough(t *testing.T) {
	rec := httptest.NewRecorder()
	Audit(discardLogger())(okHandler()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
}
