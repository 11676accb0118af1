package driving

import (
	"context"
	"io"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

// LibraryState is a snapshot of the library controller for rendering.
type LibraryState struct {
	// Documents is the current in-memory list, newest first.
	Documents []domain.Document

	// IsLoading is true while an explicit, user-visible refresh runs.
	IsLoading bool

	// IsInitialLoading distinguishes the first paint (possibly serving
	// stale cache) from later refreshes.
	IsInitialLoading bool

	// UploadProgress is 0-100 while an upload is in flight.
	UploadProgress int
}

// LibraryService owns the authoritative local list of uploaded documents.
// It merges cache-then-network results on startup, applies optimistic
// mutations, and polls embedding status in the background until every
// document reaches a terminal state.
type LibraryService interface {
	// Start activates the controller: serve the cache if fresh and
	// reconcile in the background, otherwise fetch in the foreground.
	Start(ctx context.Context) error

	// Stop tears down the background poller. Must be called when the
	// owning session ends.
	Stop()

	// Refresh fetches the full list from the backend. With showLoading
	// false the refresh is silent and failures are swallowed.
	Refresh(ctx context.Context, showLoading bool) error

	// Upload validates and uploads a PDF, prepending the created
	// document to the list. The created document is returned so the
	// caller can navigate to it.
	Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*domain.Document, error)

	// Delete removes a document locally first, then on the backend.
	// A backend 404 confirms the removal; other backend failures are
	// reported but the local removal stands.
	Delete(ctx context.Context, id string) error

	// Reprocess asks the backend to re-run the embedding pipeline and
	// locally marks the document as processing so polling resumes.
	Reprocess(ctx context.Context, id string) error

	// Documents returns a copy of the current list.
	Documents() []domain.Document

	// State returns a snapshot for the view layer.
	State() LibraryState
}
