package driven

import "github.com/docpilot-labs/docpilot-cli/internal/core/domain"

// DocumentCache is a single-slot expiring cache for the document list.
// Caching is a best-effort optimisation, never a correctness requirement:
// implementations swallow storage failures and report them as misses.
type DocumentCache interface {
	// Read returns the cached list and true on a fresh hit, or nil and
	// false on a miss (absent, expired or unreadable). It never fails.
	Read() ([]domain.Document, bool)

	// Write replaces the cached list with the given snapshot, stamped
	// with the current time. Storage failures are silent no-ops.
	Write(docs []domain.Document)

	// Clear removes the cached entry.
	Clear()
}
