// Package main provides the entry point for syncboard-server.
//
// The server hosts one shared board per process:
//
//   - HTTP API for file upload/download and board snapshots
//   - WebSocket endpoint for live text and file events
//   - Embedded browser UI and a QR code for phones to join
//   - Health and Prometheus metrics endpoints
//
// Usage:
//
//	syncboard-server [flags]
//	syncboard-server --config /path/to/syncboard.yaml
//
// The server loads configuration, binds the listener, and runs until
// SIGINT or SIGTERM.
package main
