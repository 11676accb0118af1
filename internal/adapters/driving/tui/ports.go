// Package tui provides an interactive terminal user interface for docpilot.
// It implements a driving adapter following hexagonal architecture principles.
package tui

import (
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the TUI.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Library manages the uploaded document list.
	Library driving.LibraryService

	// NewConversation builds a conversation controller for one document.
	NewConversation func(docID string) driving.ConversationService
}

// Validate ensures all required ports are set.
// Returns an error if any port is nil.
func (p *Ports) Validate() error {
	if p.Library == nil {
		return ErrMissingLibraryService
	}
	if p.NewConversation == nil {
		return ErrMissingConversationFactory
	}
	return nil
}
