// Package wsgateway carries board traffic over WebSocket connections.
//
// Each connection gets a registered client id, a buffered outbound
// queue drained by a single writer goroutine, and a reader that parses
// client intents and hands them to the hub. The gateway implements the
// hub's Sender interface, so event fan-out and connection teardown
// both flow through it.
package wsgateway
