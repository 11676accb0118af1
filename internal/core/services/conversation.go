package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/docpilot-labs/docpilot-cli/internal/core/domain"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driven"
	"github.com/docpilot-labs/docpilot-cli/internal/core/ports/driving"
	"github.com/docpilot-labs/docpilot-cli/internal/logger"
)

// Ensure Conversation implements the interface.
var _ driving.ConversationService = (*Conversation)(nil)

// Conversation owns the message list for one document.
//
// Send is optimistic: a pending user message appears immediately and is
// replaced by the confirmed user/assistant pair on success, or removed
// on failure. A pending message never outlives its send.
type Conversation struct {
	backend driven.Backend
	docID   string

	mu               sync.Mutex
	messages         []domain.Message
	isLoading        bool
	isLoadingHistory bool
}

// NewConversation creates a conversation controller for one document.
func NewConversation(backend driven.Backend, docID string) *Conversation {
	return &Conversation{
		backend: backend,
		docID:   docID,
	}
}

// DocumentID returns the document this conversation belongs to.
func (c *Conversation) DocumentID() string {
	return c.docID
}

// LoadHistory fetches the stored conversation. A placeholder document id
// is a silent no-op; a backend 404 means no conversation exists yet and
// yields an empty history, not an error.
func (c *Conversation) LoadHistory(ctx context.Context) error {
	if domain.IsPlaceholderID(c.docID) {
		return nil
	}

	c.mu.Lock()
	c.isLoadingHistory = true
	c.mu.Unlock()

	msgs, err := c.backend.GetConversation(ctx, c.docID)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.isLoadingHistory = false

	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			c.messages = nil
			return nil
		}
		return fmt.Errorf("load conversation: %w", err)
	}
	c.messages = msgs
	return nil
}

// Send submits a question about the document. Blank text or a
// placeholder document id is a no-op. The loading flag is cleared on
// every exit path.
func (c *Conversation) Send(ctx context.Context, text string) error {
	text = strings.TrimSpace(text)
	if text == "" || domain.IsPlaceholderID(c.docID) {
		return nil
	}

	temp := domain.Message{
		ID:        domain.TempIDPrefix + uuid.NewString(),
		Role:      domain.RoleUser,
		Content:   text,
		Timestamp: time.Now(),
		Pending:   true,
	}

	c.mu.Lock()
	c.messages = append(c.messages, temp)
	c.isLoading = true
	c.mu.Unlock()

	exchange, err := c.backend.SendMessage(ctx, c.docID, text)

	c.mu.Lock()
	c.messages = removeMessage(c.messages, temp.ID)
	if err == nil {
		c.messages = append(c.messages, exchange.UserMessage, exchange.AssistantMessage)
	}
	c.isLoading = false
	c.mu.Unlock()

	if err != nil {
		return fmt.Errorf("send message: %w", err)
	}
	return nil
}

// DeleteMessage removes a message locally first, then on the backend.
// A pending message cannot be deleted server-side and is rejected before
// any network call. A 404 confirms the already-applied removal. Other
// failures are reported, but the removal stands (same idempotent-delete
// rationale as document delete).
func (c *Conversation) DeleteMessage(ctx context.Context, id string) error {
	if domain.IsTempID(id) {
		return fmt.Errorf("%w: %s", domain.ErrPendingMessage, id)
	}

	c.mu.Lock()
	c.messages = removeMessage(c.messages, id)
	c.mu.Unlock()

	if err := c.backend.DeleteMessage(ctx, c.docID, id); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

// Clear wipes the conversation on the backend, then resets the local
// list only on success.
func (c *Conversation) Clear(ctx context.Context) error {
	if err := c.backend.ClearConversation(ctx, c.docID); err != nil {
		return err
	}

	c.mu.Lock()
	c.messages = nil
	c.mu.Unlock()
	return nil
}

// SearchSimilar returns ranked snippets for an advisory query. The
// operation feeds auxiliary UI, so failures degrade to an empty result
// instead of propagating.
func (c *Conversation) SearchSimilar(ctx context.Context, query string, limit int) []domain.SimilarSnippet {
	results, err := c.backend.SearchSimilar(ctx, c.docID, query, limit)
	if err != nil {
		logger.Debug("conversation: similarity search failed: %v", err)
		return nil
	}
	return results
}

// Messages returns a copy of the current list.
func (c *Conversation) Messages() []domain.Message {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// State returns a snapshot for the view layer.
func (c *Conversation) State() driving.ConversationState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return driving.ConversationState{
		Messages:         c.snapshotLocked(),
		IsLoading:        c.isLoading,
		IsLoadingHistory: c.isLoadingHistory,
	}
}

// snapshotLocked copies the message list. Caller must hold mu.
func (c *Conversation) snapshotLocked() []domain.Message {
	snapshot := make([]domain.Message, len(c.messages))
	copy(snapshot, c.messages)
	return snapshot
}

// removeMessage filters one message out by id.
func removeMessage(msgs []domain.Message, id string) []domain.Message {
	kept := msgs[:0:0]
	for _, m := range msgs {
		if m.ID != id {
			kept = append(kept, m)
		}
	}
	return kept
}
