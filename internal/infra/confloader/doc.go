// Package confloader loads server configuration from layered sources.
//
// It is a thin wrapper around koanf. Sources are merged in priority
// order, highest last:
//
//  1. Default values (the caller seeds the target struct)
//  2. YAML configuration file
//  3. Environment variables (SYNCBOARD_ prefix)
//  4. Command-line overrides (via LoadMap)
//
// A companion Watcher reloads the file source when it changes on disk,
// so log levels and board limits can be adjusted without a restart.
package confloader
