package command

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/syncboard/syncboard/internal/cli/connection"
	"github.com/syncboard/syncboard/internal/cli/output"
)

// fileItem mirrors the file entries in REST responses.
type fileItem struct {
	ID        string `json:"id"`
	Filename  string `json:"filename"`
	MimeType  string `json:"mime_type"`
	SizeBytes int64  `json:"size_bytes"`
	ExpiresAt int64  `json:"expires_at"`
}

// FilesCommand returns the files subcommand group.
func FilesCommand() *cli.Command {
	return &cli.Command{
		Name:    "files",
		Aliases: []string{"f"},
		Usage:   "Manage files on the board",
		Subcommands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List files currently on the board",
				Action: filesList,
			},
			{
				Name:      "upload",
				Usage:     "Upload a file to the board",
				ArgsUsage: "PATH",
				Action:    filesUpload,
			},
			{
				Name:      "download",
				Usage:     "Download a file from the board",
				ArgsUsage: "FILE_ID",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"O"},
						Usage:   "Output path (defaults to the stored filename)",
					},
				},
				Action: filesDownload,
			},
			{
				Name:      "rm",
				Aliases:   []string{"delete"},
				Usage:     "Remove a file from the board",
				ArgsUsage: "FILE_ID",
				Action:    filesRemove,
			},
		},
	}
}

func filesList(c *cli.Context) error {
	client := restClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	resp, err := client.Get(ctx, "/files")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}

	var items []fileItem
	if err := connection.ParseResponse(resp, &items); err != nil {
		return err
	}

	flags := ParseGlobalFlags(c)
	if output.Format(flags.Output) == output.FormatJSON {
		return (&output.JSONFormatter{}).Format(os.Stdout, items)
	}

	table := &output.Table{Headers: []string{"FILE ID", "NAME", "SIZE", "EXPIRES"}}
	for _, f := range items {
		table.AddRow(f.ID, f.Filename, output.FormatBytes(f.SizeBytes),
			time.UnixMilli(f.ExpiresAt).Format("15:04:05"))
	}
	if err := table.Render(os.Stdout); err != nil {
		return err
	}
	fmt.Printf("\nTotal: %d files\n", len(items))
	return nil
}

func filesUpload(c *cli.Context) error {
	path := c.Args().First()
	if path == "" {
		return fmt.Errorf("file path required")
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	client := restClient(c)

	// Uploads of large files can outlast the default request timeout,
	// so the bound here is generous.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resp, err := client.PostMultipart(ctx, "/upload", "file", filepath.Base(path), f)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}

	var item fileItem
	if err := connection.ParseResponse(resp, &item); err != nil {
		return err
	}

	fmt.Printf("uploaded %s (%s)\n", item.ID, output.FormatBytes(item.SizeBytes))
	return nil
}

func filesDownload(c *cli.Context) error {
	fileID := c.Args().First()
	if fileID == "" {
		return fmt.Errorf("file ID required")
	}
	// Flag parsing stops at the first positional argument, so a
	// trailing --out would silently land here as an extra argument.
	if c.NArg() > 1 {
		return fmt.Errorf("unexpected arguments after FILE_ID (flags go before the argument)")
	}

	client := restClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	resp, err := client.Get(ctx, "/files/"+fileID)
	if err != nil {
		return fmt.Errorf("download failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return connection.ParseResponse(resp, nil)
	}

	outPath := c.String("out")
	if outPath == "" {
		outPath = downloadFilename(resp, fileID)
	}

	out, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer out.Close()

	n, err := io.Copy(out, resp.Body)
	if err != nil {
		return fmt.Errorf("write %s: %w", outPath, err)
	}

	fmt.Printf("saved %s (%s)\n", outPath, output.FormatBytes(n))
	return nil
}

// downloadFilename extracts the stored filename from the response's
// Content-Disposition header, falling back to the file ID.
func downloadFilename(resp *http.Response, fileID string) string {
	if cd := resp.Header.Get("Content-Disposition"); cd != "" {
		if _, params, err := mime.ParseMediaType(cd); err == nil {
			if name := filepath.Base(params["filename"]); name != "." && name != string(filepath.Separator) {
				return name
			}
		}
	}
	return fileID
}

func filesRemove(c *cli.Context) error {
	fileID := c.Args().First()
	if fileID == "" {
		return fmt.Errorf("file ID required")
	}

	client := restClient(c)

	ctx, cancel := context.WithTimeout(context.Background(), connection.DefaultTimeout)
	defer cancel()

	resp, err := client.Delete(ctx, "/files/"+fileID)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}

	fmt.Printf("removed %s\n", fileID)
	return nil
}
