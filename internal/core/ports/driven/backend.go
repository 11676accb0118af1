package driven

import (
	"context"
	"io"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
)

// UploadProgress is called as upload bytes go out. total is the file size;
// sent is how many bytes have been written so far.
type UploadProgress func(sent, total int64)

// Backend is the typed client for the PDF-chat backend service.
//
// Every operation validates identifiers before dispatch: a missing or
// placeholder id fails with domain.ErrInvalidID and no network call is
// made. Failures are normalised: a 404 satisfies
// errors.Is(err, domain.ErrNotFound) and an unreachable backend satisfies
// errors.Is(err, domain.ErrBackendUnavailable).
type Backend interface {
	// ListDocuments returns all uploaded documents.
	ListDocuments(ctx context.Context) ([]domain.Document, error)

	// UploadDocument uploads a PDF and returns the created document.
	// onProgress may be nil.
	UploadDocument(ctx context.Context, filename string, r io.Reader, size int64, onProgress UploadProgress) (*domain.Document, error)

	// DownloadDocument streams the raw PDF bytes to w, for feeding a viewer.
	DownloadDocument(ctx context.Context, id string, w io.Writer) error

	// GetEmbeddingStatus returns the indexing state of one document.
	GetEmbeddingStatus(ctx context.Context, id string) (*domain.EmbeddingState, error)

	// ReprocessEmbeddings asks the backend to re-run the embedding
	// pipeline. Returns domain.ErrNeedsReupload when the backend no
	// longer holds the file bytes.
	ReprocessEmbeddings(ctx context.Context, id string) error

	// DeleteDocument removes a document.
	DeleteDocument(ctx context.Context, id string) error

	// SendMessage asks a question about a document and returns the
	// confirmed user/assistant pair.
	SendMessage(ctx context.Context, docID, text string) (*domain.ChatExchange, error)

	// GetConversation returns the stored message history for a document.
	GetConversation(ctx context.Context, docID string) ([]domain.Message, error)

	// DeleteMessage removes one message from a conversation.
	DeleteMessage(ctx context.Context, docID, messageID string) error

	// ClearConversation removes all messages for a document.
	ClearConversation(ctx context.Context, docID string) error

	// SearchSimilar returns ranked snippets similar to the query.
	SearchSimilar(ctx context.Context, docID, query string, limit int) ([]domain.SimilarSnippet, error)
}
