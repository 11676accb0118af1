package services

import (
	"context"
	"io"
	"sync"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
)

// --- Mock implementations for controller testing ---

// mockBackend implements driven.Backend for testing. Response queues and
// gates make interleavings deterministic.
type mockBackend struct {
	mu sync.Mutex

	docs      []domain.Document
	listErr   error
	listCalls int
	// listGate, when set, blocks ListDocuments until closed.
	listGate chan struct{}

	uploadDoc   *domain.Document
	uploadErr   error
	uploadCalls int

	// statusQueue holds per-id response sequences; the last entry is
	// repeated once the queue drains.
	statusQueue map[string][]domain.EmbeddingState
	statusErr   map[string]error
	statusCalls map[string]int

	deleteErr   error
	deleteCalls int

	reprocessErr   error
	reprocessCalls int

	exchange *domain.ChatExchange
	sendErr  error
	// sendGate, when set, blocks SendMessage until closed.
	sendGate  chan struct{}
	sendCalls int

	conversation []domain.Message
	convErr      error
	convCalls    int

	deleteMsgErr   error
	deleteMsgCalls int

	clearErr   error
	clearCalls int

	similar     []domain.SimilarSnippet
	similarErr  error
	searchCalls int
}

var _ driven.Backend = (*mockBackend)(nil)

func newMockBackend() *mockBackend {
	return &mockBackend{
		statusQueue: make(map[string][]domain.EmbeddingState),
		statusErr:   make(map[string]error),
		statusCalls: make(map[string]int),
	}
}

func (m *mockBackend) ListDocuments(_ context.Context) ([]domain.Document, error) {
	m.mu.Lock()
	m.listCalls++
	gate := m.listGate
	docs := make([]domain.Document, len(m.docs))
	copy(docs, m.docs)
	err := m.listErr
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	return docs, nil
}

func (m *mockBackend) UploadDocument(_ context.Context, _ string, r io.Reader, _ int64, _ driven.UploadProgress) (*domain.Document, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.uploadCalls++
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	doc := *m.uploadDoc
	return &doc, nil
}

func (m *mockBackend) DownloadDocument(_ context.Context, _ string, _ io.Writer) error {
	return nil
}

func (m *mockBackend) GetEmbeddingStatus(_ context.Context, id string) (*domain.EmbeddingState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.statusCalls[id]++
	if err := m.statusErr[id]; err != nil {
		return nil, err
	}
	queue := m.statusQueue[id]
	if len(queue) == 0 {
		return &domain.EmbeddingState{Status: domain.EmbeddingCompleted, Progress: 100}, nil
	}
	state := queue[0]
	if len(queue) > 1 {
		m.statusQueue[id] = queue[1:]
	}
	return &state, nil
}

func (m *mockBackend) ReprocessEmbeddings(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.reprocessCalls++
	return m.reprocessErr
}

func (m *mockBackend) DeleteDocument(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteCalls++
	return m.deleteErr
}

func (m *mockBackend) SendMessage(_ context.Context, _, _ string) (*domain.ChatExchange, error) {
	m.mu.Lock()
	m.sendCalls++
	gate := m.sendGate
	err := m.sendErr
	exchange := m.exchange
	m.mu.Unlock()

	if gate != nil {
		<-gate
	}
	if err != nil {
		return nil, err
	}
	result := *exchange
	return &result, nil
}

func (m *mockBackend) GetConversation(_ context.Context, _ string) ([]domain.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.convCalls++
	if m.convErr != nil {
		return nil, m.convErr
	}
	msgs := make([]domain.Message, len(m.conversation))
	copy(msgs, m.conversation)
	return msgs, nil
}

func (m *mockBackend) DeleteMessage(_ context.Context, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteMsgCalls++
	return m.deleteMsgErr
}

func (m *mockBackend) ClearConversation(_ context.Context, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clearCalls++
	return m.clearErr
}

func (m *mockBackend) SearchSimilar(_ context.Context, _, _ string, _ int) ([]domain.SimilarSnippet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searchCalls++
	if m.similarErr != nil {
		return nil, m.similarErr
	}
	return m.similar, nil
}

func (m *mockBackend) listCallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.listCalls
}

func (m *mockBackend) statusCallCount(id string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.statusCalls[id]
}

// mockCache implements driven.DocumentCache for testing.
type mockCache struct {
	mu        sync.Mutex
	docs      []domain.Document
	hit       bool
	writes    int
	lastWrite []domain.Document
	clears    int
}

var _ driven.DocumentCache = (*mockCache)(nil)

func (m *mockCache) Read() ([]domain.Document, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.hit {
		return nil, false
	}
	docs := make([]domain.Document, len(m.docs))
	copy(docs, m.docs)
	return docs, true
}

func (m *mockCache) Write(docs []domain.Document) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes++
	m.lastWrite = make([]domain.Document, len(docs))
	copy(m.lastWrite, docs)
}

func (m *mockCache) Clear() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.clears++
}

func (m *mockCache) last() []domain.Document {
	m.mu.Lock()
	defer m.mu.Unlock()
	docs := make([]domain.Document, len(m.lastWrite))
	copy(docs, m.lastWrite)
	return docs
}
