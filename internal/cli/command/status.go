package command

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/syncboard/syncboard/internal/cli/connection"
	"github.com/syncboard/syncboard/internal/cli/output"
)

// boardSnapshot mirrors the GET /board response payload.
type boardSnapshot struct {
	Text struct {
		Content   string `json:"content"`
		Version   uint64 `json:"version"`
		UpdatedAt int64  `json:"updated_at"`
		UpdatedBy string `json:"updated_by"`
	} `json:"text"`
	Files   []fileItem `json:"files"`
	Clients int        `json:"clients"`
}

// StatusCommand returns the status command.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:   "status",
		Usage:  "Show the current board state",
		Action: boardStatus,
	}
}

func boardStatus(c *cli.Context) error {
	client := restClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/board")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var snap boardSnapshot
	if err := connection.ParseResponse(resp, &snap); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		return (&output.JSONFormatter{}).Format(os.Stdout, snap)
	}

	table := &output.Table{}
	table.AddRow("Server", client.BaseURL())
	table.AddRow("Clients", strconv.Itoa(snap.Clients))
	table.AddRow("Text version", strconv.FormatUint(snap.Text.Version, 10))
	if snap.Text.UpdatedAt > 0 {
		table.AddRow("Text updated", time.UnixMilli(snap.Text.UpdatedAt).Format("2006-01-02 15:04:05"))
	}
	table.AddRow("Files", strconv.Itoa(len(snap.Files)))
	if err := table.Render(os.Stdout); err != nil {
		return err
	}

	if snap.Text.Content != "" {
		fmt.Printf("\n%s\n", snap.Text.Content)
	}
	return nil
}
