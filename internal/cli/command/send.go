package command

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/syncboard/syncboard/internal/cli/connection"
	"github.com/syncboard/syncboard/internal/protocol"
)

// sendRetryLimit bounds how many times send re-submits after losing a
// version race to another client.
const sendRetryLimit = 3

// SendCommand returns the send command.
func SendCommand() *cli.Command {
	return &cli.Command{
		Name:      "send",
		Usage:     "Put text on the shared clipboard",
		ArgsUsage: "[TEXT]",
		Description: "Sends TEXT to the board. With no argument the text is read\n" +
			"from standard input, so it composes with pipes:\n\n" +
			"   cat notes.md | syncboard-cli send",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Value: 10 * time.Second,
				Usage: "How long to wait for the server to confirm",
			},
		},
		Action: sendText,
	}
}

func sendText(c *cli.Context) error {
	content := c.Args().First()
	if content == "" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		content = string(data)
	}
	if content == "" {
		return fmt.Errorf("nothing to send")
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.Duration("timeout"))
	defer cancel()

	ws, err := connection.DialWS(ctx, c.String("server"))
	if err != nil {
		return err
	}
	defer ws.Close()

	deadline, ok := ctx.Deadline()
	if ok {
		ws.SetReadDeadline(deadline)
	}

	// The join snapshot carries the current version; submissions must
	// quote it or the server rejects them as stale.
	version, err := awaitVersion(ws)
	if err != nil {
		return err
	}

	for attempt := 0; attempt <= sendRetryLimit; attempt++ {
		intent := &protocol.Intent{Type: protocol.IntentText, Content: content, Version: version}
		if err := ws.SendIntent(intent); err != nil {
			return fmt.Errorf("send: %w", err)
		}

		ev, err := awaitOutcome(ws)
		if err != nil {
			return err
		}
		switch ev.Type {
		case protocol.EventTextUpdated:
			if ev.Text.Content == content {
				fmt.Printf("sent (version %d)\n", ev.Text.Version)
				return nil
			}
			// A concurrent write from another client broadcast first;
			// retry on top of it.
			version = ev.Text.Version
		case protocol.EventTextConflict:
			// Another client won the race; retry on top of its write.
			version = ev.Text.Version
		case protocol.EventError:
			return fmt.Errorf("[%s] %s", ev.Code, ev.Message)
		}
	}
	return fmt.Errorf("gave up after %d conflicts", sendRetryLimit+1)
}

// awaitVersion reads events until the join snapshot arrives.
func awaitVersion(ws *connection.WSClient) (uint64, error) {
	for {
		ev, err := ws.ReadEvent()
		if err != nil {
			return 0, fmt.Errorf("await snapshot: %w", err)
		}
		if ev.Type == protocol.EventBoardSync && ev.Text != nil {
			return ev.Text.Version, nil
		}
	}
}

// awaitOutcome reads events until the server answers a text submission.
// Unrelated broadcasts (presence, file events) are skipped.
func awaitOutcome(ws *connection.WSClient) (*protocol.Event, error) {
	for {
		ev, err := ws.ReadEvent()
		if err != nil {
			return nil, fmt.Errorf("await outcome: %w", err)
		}
		switch ev.Type {
		case protocol.EventTextUpdated, protocol.EventTextConflict, protocol.EventError:
			return ev, nil
		}
	}
}
