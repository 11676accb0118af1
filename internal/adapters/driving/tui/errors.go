package tui

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("tui: library service is required")

// ErrMissingConversationFactory is returned when the conversation factory is not provided.
var ErrMissingConversationFactory = errors.New("tui: conversation factory is required")
