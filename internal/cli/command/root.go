// Package command provides CLI command definitions for syncboard-cli.
//
// It uses urfave/cli/v2 for command parsing. Every command talks to a
// running board server over its REST or WebSocket surface.
package command

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"github.com/syncboard/syncboard/internal/cli/connection"
	"github.com/syncboard/syncboard/internal/infra/buildinfo"
)

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "syncboard-cli",
		Usage:   "SyncBoard command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			SendCommand(),
			WatchCommand(),
			FilesCommand(),
			StatusCommand(),
		},
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "Board server address (e.g., 192.168.1.20:56321)",
			EnvVars: []string{"SYNCBOARD_SERVER"},
			Value:   "localhost:56321",
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json",
			Value:   "table",
		},
	}
}

// GlobalFlags defines flags available to all commands.
type GlobalFlags struct {
	Server string
	Output string // table, json
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) *GlobalFlags {
	return &GlobalFlags{
		Server: c.String("server"),
		Output: c.String("output"),
	}
}

// restClient builds an HTTP client from the global server flag.
func restClient(c *cli.Context) *connection.HTTPClient {
	return connection.NewHTTPClient(ParseGlobalFlags(c).Server)
}

// PrintError prints an error message to stderr.
func PrintError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}
