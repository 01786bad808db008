// Package main provides the entry point for syncboard-cli.
//
// syncboard-cli is the command-line client for a SyncBoard server:
//
//   - send: put text on the shared clipboard
//   - watch: stream board events to the terminal
//   - files: list, upload, download, and remove shared files
//   - status: show the current board state
//
// Usage:
//
//	syncboard-cli --server 192.168.1.20:56321 send "meeting at 3pm"
//	syncboard-cli files upload ./report.pdf
//	syncboard-cli watch --output json
package main

import (
	"fmt"
	"os"

	"github.com/syncboard/syncboard/internal/cli/command"
)

func main() {
	app := command.App()

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
