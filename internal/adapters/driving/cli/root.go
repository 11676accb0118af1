// Package cli wires the cobra command tree to the core services.
package cli

import (
	"github.com/spf13/cobra"

	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Services injected by the composition root before Execute runs.
var (
	libraryService  driving.LibraryService
	backendService  driven.Backend
	newConversation func(docID string) driving.ConversationService
)

var verbose bool

var rootCmd = &cobra.Command{
	Use:   "docpilot",
	Short: "Chat with your PDF documents from the terminal",
	Long: `Docpilot uploads PDF documents to a processing backend and lets you
ask questions about their contents once embeddings are ready.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

// SetLibraryService injects the document library controller.
func SetLibraryService(s driving.LibraryService) {
	libraryService = s
}

// SetBackend injects the resource client for operations that bypass the
// library controller (status probes, binary downloads).
func SetBackend(b driven.Backend) {
	backendService = b
}

// SetConversationFactory injects the constructor for per-document
// conversation controllers.
func SetConversationFactory(f func(docID string) driving.ConversationService) {
	newConversation = f
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
