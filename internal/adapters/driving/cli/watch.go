package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"

	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch [directory]",
	Short: "Upload new PDFs dropped into a directory",
	Long: `Watches a directory and uploads every PDF that appears in it.
Runs until interrupted with Ctrl-C.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

// watchSettle is how long a new file must stop growing before upload.
var watchSettle time.Duration

func init() {
	watchCmd.Flags().DurationVar(&watchSettle, "settle", 500*time.Millisecond, "wait for a file to stop changing before uploading")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	dir := args[0]
	info, err := os.Stat(dir)
	if err != nil {
		return fmt.Errorf("failed to access directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("not a directory: %s", dir)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch directory: %w", err)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cmd.Printf("Watching %s for PDFs. Press Ctrl-C to stop.\n", dir)

	for {
		select {
		case <-ctx.Done():
			cmd.Println("\nStopped.")
			return nil
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch: %v", err)
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}
			if strings.ToLower(filepath.Ext(event.Name)) != ".pdf" {
				continue
			}
			if err := uploadWhenSettled(ctx, cmd, event.Name); err != nil {
				cmd.PrintErrf("upload %s: %v\n", filepath.Base(event.Name), err)
			}
		}
	}
}

// uploadWhenSettled waits for the file to stop growing, then uploads it.
// Editors and downloads often create the file first and fill it after.
func uploadWhenSettled(ctx context.Context, cmd *cobra.Command, path string) error {
	var lastSize int64 = -1
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(watchSettle):
		}

		info, err := os.Stat(path)
		if err != nil {
			return fmt.Errorf("stat file: %w", err)
		}
		if info.Size() == lastSize {
			break
		}
		lastSize = info.Size()
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat file: %w", err)
	}

	doc, err := libraryService.Upload(ctx, filepath.Base(path), contentTypeFor(path), f, info.Size())
	if err != nil {
		return err
	}

	cmd.Printf("Uploaded %s as %s\n", doc.OriginalName, doc.ID)
	return nil
}
