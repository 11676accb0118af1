// Command docpilot is a terminal client for a PDF question-answering
// backend: upload documents, track embedding progress, and chat about
// their contents.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driven/backend"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driven/cache/sqlite"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driven/config/file"
	"github.com/docpilot-labs/docpilot-cli/internal/adapters/driving/cli"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
	"github.com/docpilot-labs/docpilot-cli/internal/core/services"
	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

func main() {
	// Optional; a missing .env file is not an error.
	_ = godotenv.Load()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("init config store: %w", err)
	}

	baseURL := configStore.GetString("api.base_url")
	if env := os.Getenv("DOCPILOT_API_URL"); env != "" {
		baseURL = env
	}

	client := backend.NewClient(backend.Config{
		BaseURL: baseURL,
		Timeout: time.Duration(configStore.GetInt("api.timeout_seconds")) * time.Second,
	})

	cache, err := sqlite.NewStore("",
		time.Duration(configStore.GetInt("cache.ttl_seconds"))*time.Second)
	if err != nil {
		return fmt.Errorf("init cache store: %w", err)
	}
	defer func() {
		if err := cache.Close(); err != nil {
			logger.Warn("closing cache: %v", err)
		}
	}()

	library := services.NewLibrary(client, cache, services.LibraryConfig{
		PollInterval:  time.Duration(configStore.GetInt("poll.interval_seconds")) * time.Second,
		MaxUploadSize: int64(configStore.GetInt("upload.max_bytes")),
	})
	defer library.Stop()

	cli.SetLibraryService(library)
	cli.SetBackend(client)
	cli.SetConversationFactory(func(docID string) driving.ConversationService {
		return services.NewConversation(client, docID)
	})

	return cli.Execute()
}
