package cli

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
)

// setupTestServices installs working mocks for all injected services
// and returns a cleanup func that restores the previous ones.
func setupTestServices() func() {
	oldLibrary := libraryService
	oldBackend := backendService
	oldFactory := newConversation

	lib := &mockLibraryService{
		docs: []domain.Document{
			{
				ID:              "doc-1",
				OriginalName:    "report.pdf",
				Size:            2048,
				PageCount:       10,
				UploadedAt:      time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC),
				FileExists:      true,
				EmbeddingStatus: domain.EmbeddingCompleted,
			},
		},
	}
	libraryService = lib
	backendService = &mockBackend{}
	newConversation = func(docID string) driving.ConversationService {
		return &mockConversationService{docID: docID}
	}

	return func() {
		libraryService = oldLibrary
		backendService = oldBackend
		newConversation = oldFactory
	}
}

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	docs      []domain.Document
	uploadErr error
	deleteErr error
}

func (m *mockLibraryService) Start(_ context.Context) error { return nil }

func (m *mockLibraryService) Stop() {}

func (m *mockLibraryService) Refresh(_ context.Context, _ bool) error { return nil }

func (m *mockLibraryService) Upload(_ context.Context, filename, contentType string, r io.Reader, size int64) (*domain.Document, error) {
	if m.uploadErr != nil {
		return nil, m.uploadErr
	}
	if contentType != domain.PDFContentType {
		return nil, domain.ErrNotPDF
	}
	if r != nil {
		_, _ = io.Copy(io.Discard, r)
	}
	doc := domain.Document{
		ID:              "doc-new",
		OriginalName:    filename,
		Size:            size,
		PageCount:       3,
		EmbeddingStatus: domain.EmbeddingProcessing,
	}
	m.docs = append([]domain.Document{doc}, m.docs...)
	return &doc, nil
}

func (m *mockLibraryService) Delete(_ context.Context, id string) error {
	if m.deleteErr != nil {
		return m.deleteErr
	}
	if domain.IsPlaceholderID(id) {
		return domain.ErrInvalidID
	}
	return nil
}

func (m *mockLibraryService) Reprocess(_ context.Context, _ string) error { return nil }

func (m *mockLibraryService) Documents() []domain.Document { return m.docs }

func (m *mockLibraryService) State() driving.LibraryState {
	return driving.LibraryState{Documents: m.docs}
}

// mockBackend is a mock implementation of driven.Backend.
type mockBackend struct {
	statusErr   error
	downloadErr error
}

func (m *mockBackend) ListDocuments(_ context.Context) ([]domain.Document, error) {
	return nil, nil
}

func (m *mockBackend) UploadDocument(_ context.Context, _ string, _ io.Reader, _ int64, _ driven.UploadProgress) (*domain.Document, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBackend) DownloadDocument(_ context.Context, _ string, w io.Writer) error {
	if m.downloadErr != nil {
		return m.downloadErr
	}
	_, err := w.Write([]byte("%PDF-1.4 test"))
	return err
}

func (m *mockBackend) GetEmbeddingStatus(_ context.Context, _ string) (*domain.EmbeddingState, error) {
	if m.statusErr != nil {
		return nil, m.statusErr
	}
	return &domain.EmbeddingState{Status: domain.EmbeddingProcessing, Progress: 42}, nil
}

func (m *mockBackend) ReprocessEmbeddings(_ context.Context, _ string) error { return nil }

func (m *mockBackend) DeleteDocument(_ context.Context, _ string) error { return nil }

func (m *mockBackend) SendMessage(_ context.Context, _, _ string) (*domain.ChatExchange, error) {
	return nil, errors.New("not implemented")
}

func (m *mockBackend) GetConversation(_ context.Context, _ string) ([]domain.Message, error) {
	return nil, nil
}

func (m *mockBackend) DeleteMessage(_ context.Context, _, _ string) error { return nil }

func (m *mockBackend) ClearConversation(_ context.Context, _ string) error { return nil }

func (m *mockBackend) SearchSimilar(_ context.Context, _, _ string, _ int) ([]domain.SimilarSnippet, error) {
	return nil, nil
}

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	docID    string
	messages []domain.Message
	sendErr  error
}

func (m *mockConversationService) DocumentID() string { return m.docID }

func (m *mockConversationService) LoadHistory(_ context.Context) error {
	m.messages = []domain.Message{
		{ID: "m1", Role: domain.RoleUser, Content: "What is chapter one about?"},
		{ID: "m2", Role: domain.RoleAssistant, Content: "Chapter one introduces the topic.",
			Citations: []domain.Citation{{Page: 1}}},
	}
	return nil
}

func (m *mockConversationService) Send(_ context.Context, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages,
		domain.Message{ID: "u1", Role: domain.RoleUser, Content: text},
		domain.Message{ID: "a1", Role: domain.RoleAssistant, Content: "The answer is 42.",
			Citations: []domain.Citation{{Page: 7}}},
	)
	return nil
}

func (m *mockConversationService) DeleteMessage(_ context.Context, id string) error {
	if domain.IsTempID(id) {
		return domain.ErrPendingMessage
	}
	return nil
}

func (m *mockConversationService) Clear(_ context.Context) error { return nil }

func (m *mockConversationService) SearchSimilar(_ context.Context, _ string, _ int) []domain.SimilarSnippet {
	return []domain.SimilarSnippet{{Content: "a relevant passage", Page: 3, Score: 0.87}}
}

func (m *mockConversationService) Messages() []domain.Message { return m.messages }

func (m *mockConversationService) State() driving.ConversationState {
	return driving.ConversationState{Messages: m.messages}
}
