// Package httpserver provides the HTTP server for SyncBoard.
//
// It serves the browser UI, the REST surface for uploads and
// downloads, the WebSocket upgrade endpoint, and the operational
// endpoints (health, readiness, Prometheus metrics). Routing uses
// net/http method patterns; cross-cutting concerns are applied as a
// middleware chain.
package httpserver
