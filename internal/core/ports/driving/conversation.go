package driving

import (
	"context"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

// ConversationState is a snapshot of the conversation controller.
type ConversationState struct {
	// Messages is the current message list, oldest first.
	Messages []domain.Message

	// IsLoading is true while a send awaits its answer.
	IsLoading bool

	// IsLoadingHistory is true while the initial history fetch runs.
	IsLoadingHistory bool
}

// ConversationService owns the message list for one document and
// implements optimistic send: a pending entry appears immediately and is
// replaced by the confirmed user/assistant pair, or removed on failure.
type ConversationService interface {
	// DocumentID returns the document this conversation belongs to.
	DocumentID() string

	// LoadHistory fetches the stored conversation. A placeholder
	// document id is a no-op; a backend 404 yields an empty history.
	LoadHistory(ctx context.Context) error

	// Send submits a question. Blank text or a placeholder document id
	// is a no-op.
	Send(ctx context.Context, text string) error

	// DeleteMessage removes a message locally first, then on the
	// backend. Pending messages cannot be deleted. A backend 404
	// confirms the removal.
	DeleteMessage(ctx context.Context, id string) error

	// Clear wipes the conversation on the backend, then locally.
	Clear(ctx context.Context) error

	// SearchSimilar returns ranked snippets for an advisory query.
	// Failures degrade to an empty result, never an error.
	SearchSimilar(ctx context.Context, query string, limit int) []domain.SimilarSnippet

	// Messages returns a copy of the current list.
	Messages() []domain.Message

	// State returns a snapshot for the view layer.
	State() ConversationState
}
