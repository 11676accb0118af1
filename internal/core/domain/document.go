package domain

import (
	"strings"
	"time"
)

// PDFContentType is the only MIME type accepted for upload.
const PDFContentType = "application/pdf"

// MaxUploadSize is the default upload limit (50 MiB), matching the backend.
const MaxUploadSize = 50 * 1024 * 1024

// EmbeddingStatus is the server-side indexing state of a document.
// It moves pending -> processing -> completed/failed, and may regress
// to processing through an explicit reprocess.
type EmbeddingStatus string

const (
	// EmbeddingPending means the document is queued but not yet indexed.
	EmbeddingPending EmbeddingStatus = "pending"

	// EmbeddingProcessing means indexing is under way.
	EmbeddingProcessing EmbeddingStatus = "processing"

	// EmbeddingCompleted means the document is fully indexed.
	EmbeddingCompleted EmbeddingStatus = "completed"

	// EmbeddingFailed means indexing gave up.
	EmbeddingFailed EmbeddingStatus = "failed"
)

// IsTerminal reports whether the status will no longer change without
// user action. Polling must stop once a document reaches a terminal state.
func (s EmbeddingStatus) IsTerminal() bool {
	return s == EmbeddingCompleted || s == EmbeddingFailed
}

// Valid reports whether the status is one of the known values.
func (s EmbeddingStatus) Valid() bool {
	switch s {
	case EmbeddingPending, EmbeddingProcessing, EmbeddingCompleted, EmbeddingFailed:
		return true
	default:
		return false
	}
}

// Document represents one uploaded PDF tracked by the backend.
// The client mirrors it locally and never mutates it except for the
// optimistic status patch applied on reprocess.
type Document struct {
	// ID is the opaque identifier assigned by the backend on upload.
	ID string `json:"id"`

	// OriginalName is the filename as uploaded.
	OriginalName string `json:"originalName"`

	// Size is the file size in bytes.
	Size int64 `json:"size"`

	// PageCount is the number of pages.
	PageCount int `json:"pageCount"`

	// UploadedAt is when the backend accepted the upload.
	UploadedAt time.Time `json:"uploadedAt"`

	// FileExists reports whether the backend still holds the file bytes.
	FileExists bool `json:"fileExists"`

	// EmbeddingStatus is the indexing pipeline state.
	EmbeddingStatus EmbeddingStatus `json:"embeddingStatus"`

	// EmbeddingProgress is 0-100, meaningful only while processing.
	EmbeddingProgress int `json:"embeddingProgress"`
}

// EmbeddingState is the payload of the embedding-status endpoint.
type EmbeddingState struct {
	// Status is the pipeline state.
	Status EmbeddingStatus `json:"status"`

	// Progress is 0-100.
	Progress int `json:"progress"`

	// Error carries the failure reason when Status is failed.
	Error string `json:"error,omitempty"`
}

// IsPlaceholderID reports whether an identifier is missing or one of the
// sentinel strings produced by broken template interpolation upstream.
// Such identifiers must never reach the network.
func IsPlaceholderID(id string) bool {
	switch strings.ToLower(strings.TrimSpace(id)) {
	case "", "undefined", "null":
		return true
	default:
		return false
	}
}
