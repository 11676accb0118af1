package mcp

import (
	"context"
	"io"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
)

// mockLibraryService is a mock implementation of driving.LibraryService.
type mockLibraryService struct {
	docs       []domain.Document
	refreshErr error
}

func (m *mockLibraryService) Start(_ context.Context) error { return nil }

func (m *mockLibraryService) Stop() {}

func (m *mockLibraryService) Refresh(_ context.Context, _ bool) error {
	return m.refreshErr
}

func (m *mockLibraryService) Upload(_ context.Context, _, _ string, _ io.Reader, _ int64) (*domain.Document, error) {
	return nil, nil
}

func (m *mockLibraryService) Delete(_ context.Context, _ string) error { return nil }

func (m *mockLibraryService) Reprocess(_ context.Context, _ string) error { return nil }

func (m *mockLibraryService) Documents() []domain.Document { return m.docs }

func (m *mockLibraryService) State() driving.LibraryState {
	return driving.LibraryState{Documents: m.docs}
}

// mockConversationService is a mock implementation of driving.ConversationService.
type mockConversationService struct {
	docID    string
	messages []domain.Message
	snippets []domain.SimilarSnippet
	sendErr  error
}

func (m *mockConversationService) DocumentID() string { return m.docID }

func (m *mockConversationService) LoadHistory(_ context.Context) error { return nil }

func (m *mockConversationService) Send(_ context.Context, text string) error {
	if m.sendErr != nil {
		return m.sendErr
	}
	m.messages = append(m.messages,
		domain.Message{ID: "u1", Role: domain.RoleUser, Content: text},
		domain.Message{
			ID: "a1", Role: domain.RoleAssistant, Content: "The answer",
			Citations: []domain.Citation{{Page: 4}},
		},
	)
	return nil
}

func (m *mockConversationService) DeleteMessage(_ context.Context, _ string) error { return nil }

func (m *mockConversationService) Clear(_ context.Context) error { return nil }

func (m *mockConversationService) SearchSimilar(_ context.Context, _ string, _ int) []domain.SimilarSnippet {
	return m.snippets
}

func (m *mockConversationService) Messages() []domain.Message { return m.messages }

func (m *mockConversationService) State() driving.ConversationState {
	return driving.ConversationState{Messages: m.messages}
}
