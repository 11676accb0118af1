package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"
	"time"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

// Ensure Library implements the interface.
var _ driving.LibraryService = (*Library)(nil)

// Default configuration values.
const (
	DefaultPollInterval    = 3 * time.Second
	DefaultRefreshDebounce = 1 * time.Second
)

// LibraryConfig holds configuration for the library controller.
type LibraryConfig struct {
	// PollInterval is the embedding-status poll cadence (default: 3s).
	PollInterval time.Duration

	// RefreshDebounce delays the silent reconcile after a cache hit
	// (default: 1s).
	RefreshDebounce time.Duration

	// MaxUploadSize is the client-side upload limit in bytes
	// (default: domain.MaxUploadSize).
	MaxUploadSize int64
}

// Library owns the authoritative local list of uploaded documents.
//
// All state is guarded by mu: callbacks from the poller goroutine and
// from callers interleave freely. The cache is written with the same
// snapshot that updates the in-memory state, never independently.
type Library struct {
	backend driven.Backend
	cache   driven.DocumentCache
	config  LibraryConfig

	mu               sync.Mutex
	docs             []domain.Document
	isLoading        bool
	isInitialLoading bool
	uploadProgress   int

	// writeSeq increments on every local write so that a refresh
	// snapshot fetched before a later write can be recognised as stale
	// and discarded instead of clobbering the newer state.
	writeSeq uint64

	pollMu   sync.Mutex
	polling  bool
	inFlight bool
	stopCh   chan struct{}
	wg       sync.WaitGroup
}

// NewLibrary creates a library controller.
func NewLibrary(backend driven.Backend, cache driven.DocumentCache, config LibraryConfig) *Library {
	if config.PollInterval <= 0 {
		config.PollInterval = DefaultPollInterval
	}
	if config.RefreshDebounce <= 0 {
		config.RefreshDebounce = DefaultRefreshDebounce
	}
	if config.MaxUploadSize <= 0 {
		config.MaxUploadSize = domain.MaxUploadSize
	}

	return &Library{
		backend:          backend,
		cache:            cache,
		config:           config,
		isInitialLoading: true,
	}
}

// Start activates the controller. On a cache hit the view can render
// immediately and a silent refresh reconciles staleness shortly after;
// on a miss the first fetch is a foreground load.
func (l *Library) Start(ctx context.Context) error {
	if docs, ok := l.cache.Read(); ok {
		l.mu.Lock()
		l.docs = docs
		l.isInitialLoading = false
		l.mu.Unlock()

		l.ensurePolling(ctx)

		l.wg.Add(1)
		go func() {
			defer l.wg.Done()
			select {
			case <-time.After(l.config.RefreshDebounce):
			case <-ctx.Done():
				return
			}
			_ = l.Refresh(ctx, false)
		}()
		return nil
	}

	err := l.Refresh(ctx, true)
	l.mu.Lock()
	l.isInitialLoading = false
	l.mu.Unlock()
	return err
}

// Stop tears down the background poller and waits for it to finish.
func (l *Library) Stop() {
	l.pollMu.Lock()
	if l.stopCh != nil {
		close(l.stopCh)
		l.stopCh = nil
	}
	l.pollMu.Unlock()
	l.wg.Wait()
}

// Refresh fetches the full list from the backend and replaces state and
// cache with the same snapshot. A silent refresh (showLoading false)
// swallows failures; a stale response is discarded when a local write
// happened after the fetch started.
func (l *Library) Refresh(ctx context.Context, showLoading bool) error {
	l.mu.Lock()
	seq := l.writeSeq
	if showLoading {
		l.isLoading = true
	}
	l.mu.Unlock()

	docs, err := l.backend.ListDocuments(ctx)

	l.mu.Lock()
	if showLoading {
		l.isLoading = false
	}
	if err != nil {
		l.mu.Unlock()
		if !showLoading {
			log.Printf("library: background refresh failed: %v", err)
			return nil
		}
		return fmt.Errorf("refresh documents: %w", err)
	}
	if l.writeSeq != seq {
		l.mu.Unlock()
		logger.Debug("library: discarding stale refresh snapshot")
		return nil
	}
	l.docs = docs
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.cache.Write(snapshot)
	l.ensurePolling(ctx)
	return nil
}

// Upload validates and uploads a PDF, prepending the created document.
func (l *Library) Upload(ctx context.Context, filename, contentType string, r io.Reader, size int64) (*domain.Document, error) {
	if contentType != domain.PDFContentType {
		return nil, fmt.Errorf("%w: %q", domain.ErrNotPDF, contentType)
	}
	if size > l.config.MaxUploadSize {
		return nil, fmt.Errorf("%w: %d bytes (limit %d)", domain.ErrFileTooLarge, size, l.config.MaxUploadSize)
	}

	l.setUploadProgress(0)
	defer l.setUploadProgress(0)

	doc, err := l.backend.UploadDocument(ctx, filename, r, size, func(sent, total int64) {
		if total > 0 {
			l.setUploadProgress(int(sent * 100 / total))
		}
	})
	if err != nil {
		return nil, err
	}

	l.mu.Lock()
	l.docs = append([]domain.Document{*doc}, l.docs...)
	l.writeSeq++
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.cache.Write(snapshot)
	l.ensurePolling(ctx)
	return doc, nil
}

// Delete removes the document locally first, then on the backend. A 404
// confirms the removal. Other backend failures are reported, but the
// local removal stands: delete is idempotent from the user's
// perspective, so no rollback is attempted.
func (l *Library) Delete(ctx context.Context, id string) error {
	if domain.IsPlaceholderID(id) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}

	l.mu.Lock()
	kept := l.docs[:0:0]
	for _, d := range l.docs {
		if d.ID != id {
			kept = append(kept, d)
		}
	}
	l.docs = kept
	l.writeSeq++
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.cache.Write(snapshot)

	if err := l.backend.DeleteDocument(ctx, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Reprocess asks the backend to re-run the embedding pipeline and
// locally patches the document to processing so the poller picks it up
// without waiting for the next full refresh.
func (l *Library) Reprocess(ctx context.Context, id string) error {
	if domain.IsPlaceholderID(id) {
		return fmt.Errorf("%w: %q", domain.ErrInvalidID, id)
	}

	if err := l.backend.ReprocessEmbeddings(ctx, id); err != nil {
		return err
	}

	l.mu.Lock()
	for i := range l.docs {
		if l.docs[i].ID == id {
			l.docs[i].EmbeddingStatus = domain.EmbeddingProcessing
			l.docs[i].EmbeddingProgress = 0
		}
	}
	l.writeSeq++
	snapshot := l.snapshotLocked()
	l.mu.Unlock()

	l.cache.Write(snapshot)
	l.ensurePolling(ctx)
	return nil
}

// Documents returns a copy of the current list.
func (l *Library) Documents() []domain.Document {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshotLocked()
}

// State returns a snapshot for the view layer.
func (l *Library) State() driving.LibraryState {
	l.mu.Lock()
	defer l.mu.Unlock()
	return driving.LibraryState{
		Documents:        l.snapshotLocked(),
		IsLoading:        l.isLoading,
		IsInitialLoading: l.isInitialLoading,
		UploadProgress:   l.uploadProgress,
	}
}

// snapshotLocked copies the document list. Caller must hold mu.
func (l *Library) snapshotLocked() []domain.Document {
	snapshot := make([]domain.Document, len(l.docs))
	copy(snapshot, l.docs)
	return snapshot
}

func (l *Library) setUploadProgress(p int) {
	l.mu.Lock()
	l.uploadProgress = p
	l.mu.Unlock()
}

// nonTerminalIDs returns the ids still worth polling.
func (l *Library) nonTerminalIDs() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	var ids []string
	for _, d := range l.docs {
		if !d.EmbeddingStatus.IsTerminal() {
			ids = append(ids, d.ID)
		}
	}
	return ids
}

// ensurePolling starts the poll loop if any document is non-terminal
// and no loop is already running.
func (l *Library) ensurePolling(ctx context.Context) {
	l.pollMu.Lock()
	defer l.pollMu.Unlock()

	if l.polling {
		return
	}
	if len(l.nonTerminalIDs()) == 0 {
		return
	}

	l.polling = true
	l.stopCh = make(chan struct{})
	l.wg.Add(1)
	go l.pollLoop(ctx, l.stopCh)
}

// pollLoop checks status immediately, then on every tick, and exits as
// soon as no tracked document remains non-terminal.
func (l *Library) pollLoop(ctx context.Context, stopCh chan struct{}) {
	defer l.wg.Done()
	defer func() {
		l.pollMu.Lock()
		l.polling = false
		l.pollMu.Unlock()
	}()

	if !l.pollOnce(ctx) {
		return
	}

	ticker := time.NewTicker(l.config.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-stopCh:
			return
		case <-ticker.C:
			if !l.pollOnce(ctx) {
				return
			}
		}
	}
}

// pollOnce fetches status for every non-terminal document concurrently
// and merges the results. It returns false once nothing remains to poll.
// An in-flight guard skips a tick while the previous batch is still
// outstanding; a per-id failure leaves that entry unchanged for the tick.
func (l *Library) pollOnce(ctx context.Context) bool {
	l.pollMu.Lock()
	if l.inFlight {
		l.pollMu.Unlock()
		return true
	}
	l.inFlight = true
	l.pollMu.Unlock()

	defer func() {
		l.pollMu.Lock()
		l.inFlight = false
		l.pollMu.Unlock()
	}()

	ids := l.nonTerminalIDs()
	if len(ids) == 0 {
		return false
	}

	type update struct {
		id    string
		state *domain.EmbeddingState
	}
	results := make(chan update, len(ids))

	var wg sync.WaitGroup
	for _, id := range ids {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			state, err := l.backend.GetEmbeddingStatus(ctx, id)
			if err != nil {
				logger.Debug("library: status poll for %s failed: %v", id, err)
				return
			}
			results <- update{id: id, state: state}
		}(id)
	}
	wg.Wait()
	close(results)

	l.mu.Lock()
	for u := range results {
		for i := range l.docs {
			if l.docs[i].ID == u.id {
				l.docs[i].EmbeddingStatus = u.state.Status
				l.docs[i].EmbeddingProgress = u.state.Progress
			}
		}
	}
	snapshot := l.snapshotLocked()
	remaining := false
	for _, d := range l.docs {
		if !d.EmbeddingStatus.IsTerminal() {
			remaining = true
			break
		}
	}
	l.mu.Unlock()

	l.cache.Write(snapshot)
	return remaining
}
