package domain

import (
	"strings"
	"time"
)

// TempIDPrefix namespaces identifiers of messages that exist only locally,
// before the backend has confirmed them.
const TempIDPrefix = "temp-"

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser is a message written by the user.
	RoleUser Role = "user"

	// RoleAssistant is a generated answer.
	RoleAssistant Role = "assistant"
)

// Citation points at a page of the document backing an answer.
type Citation struct {
	// Page is the 1-based page number.
	Page int `json:"page"`
}

// Message is one chat entry, scoped to a single document.
type Message struct {
	// ID is the backend identifier, or a TempIDPrefix id for entries
	// not yet confirmed.
	ID string `json:"id"`

	// Role is user or assistant.
	Role Role `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Citations are page references, set on assistant messages.
	Citations []Citation `json:"citations,omitempty"`

	// Timestamp is client-assigned for pending entries and overwritten
	// by the backend value on confirmation.
	Timestamp time.Time `json:"timestamp"`

	// SearchMethod records how the answer was retrieved, when reported.
	SearchMethod string `json:"searchMethod,omitempty"`

	// RelevanceScore is optional retrieval diagnostics.
	RelevanceScore float64 `json:"relevanceScore,omitempty"`

	// Pending marks a local, unconfirmed entry. A pending message is
	// either replaced by the confirmed pair or removed; it never persists.
	Pending bool `json:"-"`
}

// IsTempID reports whether an identifier belongs to the local,
// unconfirmed namespace.
func IsTempID(id string) bool {
	return strings.HasPrefix(id, TempIDPrefix)
}

// ChatExchange is the confirmed pair returned by a successful send.
type ChatExchange struct {
	// UserMessage is the stored copy of what the user sent.
	UserMessage Message `json:"userMessage"`

	// AssistantMessage is the generated answer.
	AssistantMessage Message `json:"assistantMessage"`
}

// SimilarSnippet is one ranked result of an advisory similarity search.
type SimilarSnippet struct {
	// Content is the matched text.
	Content string `json:"content"`

	// Page is the page the snippet came from.
	Page int `json:"page"`

	// Score is the retrieval relevance score.
	Score float64 `json:"score"`
}
