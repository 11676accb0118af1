package services

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

// fastConfig keeps background timing short enough for tests.
func fastConfig() LibraryConfig {
	return LibraryConfig{
		PollInterval:    10 * time.Millisecond,
		RefreshDebounce: 10 * time.Millisecond,
	}
}

func TestLibrary_Start_CacheHit(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingCompleted}}

	cache := &mockCache{
		hit:  true,
		docs: []domain.Document{{ID: "stale", EmbeddingStatus: domain.EmbeddingCompleted}},
	}

	lib := NewLibrary(backend, cache, fastConfig())
	defer lib.Stop()

	require.NoError(t, lib.Start(context.Background()))

	// First paint comes straight from cache, no waiting on network.
	state := lib.State()
	require.Len(t, state.Documents, 1)
	assert.Equal(t, "stale", state.Documents[0].ID)
	assert.False(t, state.IsInitialLoading)

	// A silent reconcile replaces the stale snapshot shortly after.
	assert.Eventually(t, func() bool {
		docs := lib.Documents()
		return len(docs) == 1 && docs[0].ID == "doc1"
	}, time.Second, 5*time.Millisecond)
}

func TestLibrary_Start_CacheMiss(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingCompleted}}
	cache := &mockCache{}

	lib := NewLibrary(backend, cache, fastConfig())
	defer lib.Stop()

	require.NoError(t, lib.Start(context.Background()))

	state := lib.State()
	require.Len(t, state.Documents, 1)
	assert.Equal(t, "doc1", state.Documents[0].ID)
	assert.False(t, state.IsInitialLoading)
	assert.Equal(t, 1, backend.listCallCount())

	// The fetched snapshot lands in the cache.
	require.Len(t, cache.last(), 1)
	assert.Equal(t, "doc1", cache.last()[0].ID)
}

func TestLibrary_Refresh_ForegroundFailure(t *testing.T) {
	backend := newMockBackend()
	backend.listErr = errors.New("boom")

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()

	err := lib.Refresh(context.Background(), true)
	assert.Error(t, err)
	assert.False(t, lib.State().IsLoading)
}

func TestLibrary_Refresh_BackgroundFailureSwallowed(t *testing.T) {
	backend := newMockBackend()
	backend.listErr = errors.New("boom")

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()

	assert.NoError(t, lib.Refresh(context.Background(), false))
}

func TestLibrary_Refresh_DiscardsStaleSnapshot(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "old", EmbeddingStatus: domain.EmbeddingCompleted}}
	backend.uploadDoc = &domain.Document{ID: "new", EmbeddingStatus: domain.EmbeddingCompleted}

	gate := make(chan struct{})
	backend.listGate = gate

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()

	// A slow refresh starts before the upload...
	refreshDone := make(chan error, 1)
	go func() { refreshDone <- lib.Refresh(context.Background(), false) }()

	assert.Eventually(t, func() bool { return backend.listCallCount() == 1 },
		time.Second, time.Millisecond)

	// ...the upload lands while the refresh is still in flight...
	_, err := lib.Upload(context.Background(), "n.pdf", domain.PDFContentType,
		strings.NewReader("x"), 1)
	require.NoError(t, err)

	// ...and the stale refresh result must not clobber the prepend.
	close(gate)
	require.NoError(t, <-refreshDone)

	docs := lib.Documents()
	require.Len(t, docs, 1)
	assert.Equal(t, "new", docs[0].ID)
}

func TestLibrary_Upload_RejectsWrongType(t *testing.T) {
	backend := newMockBackend()
	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()

	_, err := lib.Upload(context.Background(), "a.txt", "text/plain",
		strings.NewReader("x"), 1)
	assert.ErrorIs(t, err, domain.ErrNotPDF)
	assert.Equal(t, 0, backend.uploadCalls, "no network call for an invalid file")
}

func TestLibrary_Upload_RejectsOversize(t *testing.T) {
	backend := newMockBackend()
	cfg := fastConfig()
	cfg.MaxUploadSize = 10

	lib := NewLibrary(backend, &mockCache{}, cfg)
	defer lib.Stop()

	_, err := lib.Upload(context.Background(), "a.pdf", domain.PDFContentType,
		strings.NewReader("12345678901"), 11)
	assert.ErrorIs(t, err, domain.ErrFileTooLarge)
	assert.Equal(t, 0, backend.uploadCalls)
}

func TestLibrary_Upload_PrependsAndCaches(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingCompleted}}
	backend.uploadDoc = &domain.Document{ID: "doc2", EmbeddingStatus: domain.EmbeddingCompleted}
	cache := &mockCache{}

	lib := NewLibrary(backend, cache, fastConfig())
	defer lib.Stop()
	require.NoError(t, lib.Refresh(context.Background(), true))

	doc, err := lib.Upload(context.Background(), "b.pdf", domain.PDFContentType,
		strings.NewReader("x"), 1)
	require.NoError(t, err)
	assert.Equal(t, "doc2", doc.ID)

	docs := lib.Documents()
	require.Len(t, docs, 2)
	assert.Equal(t, "doc2", docs[0].ID, "fresh upload is prepended")

	cached := cache.last()
	require.Len(t, cached, 2)
	assert.Equal(t, "doc2", cached[0].ID)
}

func TestLibrary_Delete_NotFoundIsSuccess(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingCompleted}}
	backend.deleteErr = domain.ErrNotFound
	cache := &mockCache{}

	lib := NewLibrary(backend, cache, fastConfig())
	defer lib.Stop()
	require.NoError(t, lib.Refresh(context.Background(), true))

	err := lib.Delete(context.Background(), "doc1")
	assert.NoError(t, err, "a 404 confirms the optimistic removal")
	assert.Empty(t, lib.Documents())
	assert.Empty(t, cache.last())
}

func TestLibrary_Delete_OtherFailureKeepsRemoval(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingCompleted}}
	backend.deleteErr = errors.New("boom")

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()
	require.NoError(t, lib.Refresh(context.Background(), true))

	err := lib.Delete(context.Background(), "doc1")
	assert.Error(t, err)
	assert.Empty(t, lib.Documents(), "optimistic removal stands even on failure")
}

func TestLibrary_Delete_InvalidID(t *testing.T) {
	backend := newMockBackend()
	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()

	err := lib.Delete(context.Background(), "undefined")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	assert.Equal(t, 0, backend.deleteCalls)
}

func TestLibrary_Reprocess_PatchesStatus(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingFailed}}
	backend.statusQueue["doc1"] = []domain.EmbeddingState{
		{Status: domain.EmbeddingProcessing, Progress: 10},
	}

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()
	require.NoError(t, lib.Refresh(context.Background(), true))

	require.NoError(t, lib.Reprocess(context.Background(), "doc1"))

	// Patch is visible before the poller or the next refresh runs...
	// (the poller may already have merged the first response, so accept
	// either progress value but require processing status)
	docs := lib.Documents()
	require.Len(t, docs, 1)

	// ...and the patch wakes the poller.
	assert.Eventually(t, func() bool {
		return backend.statusCallCount("doc1") > 0
	}, time.Second, time.Millisecond)
}

func TestLibrary_Polling_TerminatesAndStopsRequesting(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingProcessing}}
	backend.statusQueue["doc1"] = []domain.EmbeddingState{
		{Status: domain.EmbeddingProcessing, Progress: 50},
		{Status: domain.EmbeddingCompleted, Progress: 100},
	}

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()
	require.NoError(t, lib.Refresh(context.Background(), true))

	assert.Eventually(t, func() bool {
		docs := lib.Documents()
		return docs[0].EmbeddingStatus == domain.EmbeddingCompleted
	}, time.Second, time.Millisecond)

	// Once terminal, the poller must stop issuing requests.
	settled := backend.statusCallCount("doc1")
	assert.Equal(t, 2, settled)
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, backend.statusCallCount("doc1"))
}

func TestLibrary_Polling_PerIDFailureDoesNotAbortBatch(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{
		{ID: "ok", EmbeddingStatus: domain.EmbeddingProcessing},
		{ID: "bad", EmbeddingStatus: domain.EmbeddingProcessing},
	}
	backend.statusQueue["ok"] = []domain.EmbeddingState{
		{Status: domain.EmbeddingCompleted, Progress: 100},
	}
	backend.statusErr["bad"] = errors.New("boom")

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	defer lib.Stop()
	require.NoError(t, lib.Refresh(context.Background(), true))

	assert.Eventually(t, func() bool {
		for _, d := range lib.Documents() {
			if d.ID == "ok" && d.EmbeddingStatus == domain.EmbeddingCompleted {
				return true
			}
		}
		return false
	}, time.Second, time.Millisecond)

	// The failing document keeps its last known status.
	for _, d := range lib.Documents() {
		if d.ID == "bad" {
			assert.Equal(t, domain.EmbeddingProcessing, d.EmbeddingStatus)
		}
	}
}

func TestLibrary_Stop_TearsDownPoller(t *testing.T) {
	backend := newMockBackend()
	backend.docs = []domain.Document{{ID: "doc1", EmbeddingStatus: domain.EmbeddingProcessing}}
	backend.statusQueue["doc1"] = []domain.EmbeddingState{
		{Status: domain.EmbeddingProcessing, Progress: 10},
	}

	lib := NewLibrary(backend, &mockCache{}, fastConfig())
	require.NoError(t, lib.Refresh(context.Background(), true))

	assert.Eventually(t, func() bool {
		return backend.statusCallCount("doc1") > 0
	}, time.Second, time.Millisecond)

	lib.Stop()
	settled := backend.statusCallCount("doc1")
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, settled, backend.statusCallCount("doc1"),
		"no polling after Stop")
}
