package domain

import "errors"

var (
	// ErrNotFound indicates a requested resource does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID indicates a missing or placeholder identifier.
	ErrInvalidID = errors.New("invalid identifier")

	// ErrEmptyMessage indicates a blank chat message.
	ErrEmptyMessage = errors.New("empty message")

	// ErrNotPDF indicates a file that is not a PDF.
	ErrNotPDF = errors.New("not a PDF file")

	// ErrFileTooLarge indicates a file over the upload limit.
	ErrFileTooLarge = errors.New("file exceeds upload size limit")

	// ErrPendingMessage indicates an operation on a message the backend
	// has not confirmed yet.
	ErrPendingMessage = errors.New("message not yet confirmed")

	// ErrNeedsReupload indicates the backend lost the file bytes and the
	// document must be uploaded again before reprocessing.
	ErrNeedsReupload = errors.New("document needs re-upload")

	// ErrBackendUnavailable indicates the backend could not be reached.
	ErrBackendUnavailable = errors.New("backend unavailable")
)
