// Package handler implements the HTTP endpoints for SyncBoard.
//
// The surface is small: the embedded browser UI, file upload and
// download, a JSON snapshot of the board, the QR code for phones, and
// the health endpoints. Everything stateful goes through the hub so
// REST uploads are broadcast to WebSocket clients like any other
// mutation.
package handler
