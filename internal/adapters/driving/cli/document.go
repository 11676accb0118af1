package cli

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

var documentCmd = &cobra.Command{
	Use:   "document",
	Short: "Manage uploaded PDF documents",
	Long:  `Upload, list, download, or delete PDF documents on the backend.`,
}

var documentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List uploaded documents",
	Args:  cobra.NoArgs,
	RunE:  runDocumentList,
}

var documentUploadCmd = &cobra.Command{
	Use:   "upload [file]",
	Short: "Upload a PDF document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentUpload,
}

var documentDeleteCmd = &cobra.Command{
	Use:   "delete [doc-id]",
	Short: "Delete an uploaded document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentDelete,
}

var documentStatusCmd = &cobra.Command{
	Use:   "status [doc-id]",
	Short: "Show embedding status for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentStatus,
}

var documentReprocessCmd = &cobra.Command{
	Use:   "reprocess [doc-id]",
	Short: "Re-run the embedding pipeline for a document",
	Args:  cobra.ExactArgs(1),
	RunE:  runDocumentReprocess,
}

var documentFetchCmd = &cobra.Command{
	Use:   "fetch [doc-id] [output-file]",
	Short: "Download the original PDF",
	Args:  cobra.ExactArgs(2),
	RunE:  runDocumentFetch,
}

// uploadWait blocks the upload command until embeddings finish.
var uploadWait bool

func init() {
	documentUploadCmd.Flags().BoolVarP(&uploadWait, "wait", "w", false, "Wait until embedding processing completes")

	documentCmd.AddCommand(documentListCmd)
	documentCmd.AddCommand(documentUploadCmd)
	documentCmd.AddCommand(documentDeleteCmd)
	documentCmd.AddCommand(documentStatusCmd)
	documentCmd.AddCommand(documentReprocessCmd)
	documentCmd.AddCommand(documentFetchCmd)
	rootCmd.AddCommand(documentCmd)
}

func runDocumentList(cmd *cobra.Command, _ []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	ctx := context.Background()
	if err := libraryService.Start(ctx); err != nil {
		return fmt.Errorf("failed to load documents: %w", err)
	}
	defer libraryService.Stop()

	docs := libraryService.Documents()
	if len(docs) == 0 {
		cmd.Println("No documents uploaded yet.")
		return nil
	}

	cmd.Println("Documents:")
	cmd.Println()
	for i := range docs {
		cmd.Printf("  %s\n", docs[i].ID)
		cmd.Printf("    Name:      %s\n", docs[i].OriginalName)
		cmd.Printf("    Pages:     %d\n", docs[i].PageCount)
		cmd.Printf("    Size:      %d bytes\n", docs[i].Size)
		cmd.Printf("    Status:    %s\n", formatEmbeddingStatus(docs[i]))
		cmd.Printf("    Uploaded:  %s\n", docs[i].UploadedAt.Format("2006-01-02 15:04:05"))
		cmd.Println()
	}

	cmd.Printf("Total: %d documents\n", len(docs))
	return nil
}

func runDocumentUpload(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	path := args[0]
	ctx := context.Background()

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("failed to stat file: %w", err)
	}

	stopMeter := startUploadMeter()
	doc, err := libraryService.Upload(ctx, filepath.Base(path), contentTypeFor(path), f, info.Size())
	stopMeter()
	if err != nil {
		return fmt.Errorf("failed to upload document: %w", err)
	}

	cmd.Printf("Uploaded %s (%d pages) as %s\n", doc.OriginalName, doc.PageCount, doc.ID)

	if uploadWait {
		return waitForEmbeddings(ctx, cmd, doc.ID)
	}
	cmd.Printf("Embedding status: %s\n", doc.EmbeddingStatus)
	return nil
}

func runDocumentDelete(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := libraryService.Delete(ctx, docID); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	cmd.Printf("Document %s deleted.\n", docID)
	return nil
}

func runDocumentStatus(cmd *cobra.Command, args []string) error {
	if backendService == nil {
		return errors.New("backend not configured")
	}

	docID := args[0]
	ctx := context.Background()

	state, err := backendService.GetEmbeddingStatus(ctx, docID)
	if err != nil {
		return fmt.Errorf("failed to get embedding status: %w", err)
	}

	cmd.Printf("Document: %s\n\n", docID)
	cmd.Printf("  Status:    %s\n", state.Status)
	cmd.Printf("  Progress:  %d%%\n", state.Progress)
	if state.Error != "" {
		cmd.Printf("  Error:     %s\n", state.Error)
	}
	return nil
}

func runDocumentReprocess(cmd *cobra.Command, args []string) error {
	if libraryService == nil {
		return errors.New("library service not configured")
	}

	docID := args[0]
	ctx := context.Background()

	if err := libraryService.Reprocess(ctx, docID); err != nil {
		if errors.Is(err, domain.ErrNeedsReupload) {
			return fmt.Errorf("the original file is gone from the backend; upload it again: %w", err)
		}
		return fmt.Errorf("failed to reprocess document: %w", err)
	}

	cmd.Printf("Reprocessing started for %s.\n", docID)
	return nil
}

func runDocumentFetch(cmd *cobra.Command, args []string) error {
	if backendService == nil {
		return errors.New("backend not configured")
	}

	docID, output := args[0], args[1]
	ctx := context.Background()

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create output file: %w", err)
	}
	defer f.Close()

	if err := backendService.DownloadDocument(ctx, docID, f); err != nil {
		os.Remove(output)
		return fmt.Errorf("failed to download document: %w", err)
	}

	cmd.Printf("Saved document %s to %s\n", docID, output)
	return nil
}

// contentTypeFor maps a filename to a MIME type, preferring the PDF
// type for .pdf files regardless of platform MIME tables.
func contentTypeFor(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if ext == ".pdf" {
		return domain.PDFContentType
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// startUploadMeter renders upload progress on stderr while a terminal
// is attached. The returned func stops the meter and clears the line.
func startUploadMeter() func() {
	if libraryService == nil || !term.IsTerminal(int(os.Stderr.Fd())) {
		return func() {}
	}

	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		ticker := time.NewTicker(100 * time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-done:
				fmt.Fprint(os.Stderr, "\r\033[K")
				return
			case <-ticker.C:
				fmt.Fprintf(os.Stderr, "\rUploading... %d%%", libraryService.State().UploadProgress)
			}
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// waitForEmbeddings polls until the document reaches a terminal status.
func waitForEmbeddings(ctx context.Context, cmd *cobra.Command, docID string) error {
	ticker := time.NewTicker(2 * time.Second)
	defer ticker.Stop()

	for {
		state, err := backendService.GetEmbeddingStatus(ctx, docID)
		if err != nil {
			return fmt.Errorf("failed to get embedding status: %w", err)
		}
		if state.Status.IsTerminal() {
			if state.Status == domain.EmbeddingFailed {
				return fmt.Errorf("embedding processing failed: %s", state.Error)
			}
			cmd.Println("Embedding processing completed.")
			return nil
		}
		cmd.Printf("Processing... %d%%\n", state.Progress)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func formatEmbeddingStatus(d domain.Document) string {
	if d.EmbeddingStatus == domain.EmbeddingProcessing {
		return fmt.Sprintf("%s (%d%%)", d.EmbeddingStatus, d.EmbeddingProgress)
	}
	if !d.FileExists {
		return fmt.Sprintf("%s (file missing, re-upload required)", d.EmbeddingStatus)
	}
	return string(d.EmbeddingStatus)
}
