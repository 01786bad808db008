package command

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/syncboard/syncboard/internal/cli/connection"
	"github.com/syncboard/syncboard/internal/cli/output"
	"github.com/syncboard/syncboard/internal/protocol"
)

// WatchCommand returns the watch command.
func WatchCommand() *cli.Command {
	return &cli.Command{
		Name:   "watch",
		Usage:  "Stream board events until interrupted",
		Action: watchBoard,
	}
}

func watchBoard(c *cli.Context) error {
	flags := ParseGlobalFlags(c)
	asJSON := output.Format(flags.Output) == output.FormatJSON

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ws, err := connection.DialWS(ctx, flags.Server)
	if err != nil {
		return err
	}
	defer ws.Close()

	// Interrupt unblocks the read loop by closing the socket.
	go func() {
		<-ctx.Done()
		ws.Close()
	}()

	enc := json.NewEncoder(os.Stdout)
	for {
		ev, err := ws.ReadEvent()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("connection lost: %w", err)
		}
		if asJSON {
			if err := enc.Encode(ev); err != nil {
				return err
			}
			continue
		}
		printEvent(ev)
	}
}

// printEvent renders one event as a human-readable log line.
func printEvent(ev *protocol.Event) {
	ts := time.Now().Format("15:04:05")
	switch ev.Type {
	case protocol.EventBoardSync:
		fmt.Printf("%s  joined: %d clients, %d files, text version %d\n",
			ts, ev.Count, len(ev.Files), ev.Text.Version)
	case protocol.EventTextUpdated:
		fmt.Printf("%s  text v%d (%s): %s\n",
			ts, ev.Text.Version, ev.Text.UpdatedBy, previewText(ev.Text.Content))
	case protocol.EventTextConflict:
		fmt.Printf("%s  conflict: board is at version %d\n", ts, ev.Text.Version)
	case protocol.EventFileAdded:
		fmt.Printf("%s  file added: %s %s (%s)\n",
			ts, ev.File.ID, ev.File.Filename, output.FormatBytes(ev.File.SizeBytes))
	case protocol.EventFileRemoved:
		fmt.Printf("%s  file removed: %s\n", ts, ev.FileID)
	case protocol.EventPresence:
		fmt.Printf("%s  presence: %d clients\n", ts, ev.Count)
	case protocol.EventError:
		fmt.Printf("%s  error [%s]: %s\n", ts, ev.Code, ev.Message)
	default:
		fmt.Printf("%s  %s\n", ts, ev.Type)
	}
}

// previewText truncates clipboard text to one displayable line.
func previewText(s string) string {
	const max = 60
	runes := []rune(s)
	truncated := len(runes) > max
	if truncated {
		runes = runes[:max]
	}
	for i, r := range runes {
		if r == '\n' || r == '\r' || r == '\t' {
			runes[i] = ' '
		}
	}
	if truncated {
		return string(runes) + "..."
	}
	return string(runes)
}
