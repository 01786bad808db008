// Package shutdown provides graceful shutdown for syncboard-server.
//
// This package handles process termination:
//
//   - Signal handling (SIGINT, SIGTERM)
//   - Programmatic triggering (fatal server errors)
//   - Timeout-based forced shutdown
//   - Cleanup hooks executed in reverse registration order
//
// Usage:
//
//	h := shutdown.NewHandler(10 * time.Second)
//	h.OnShutdown(srv.Close)
//	err := h.Wait() // blocks until a signal or Trigger()
package shutdown
