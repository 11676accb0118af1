// Package mcp provides an MCP (Model Context Protocol) server adapter for Docpilot.
// It lets AI assistants browse uploaded documents and ask questions about them.
package mcp

import "errors"

// ErrMissingLibraryService is returned when the library service is not provided.
var ErrMissingLibraryService = errors.New("mcp: library service is required")

// ErrMissingConversationFactory is returned when the conversation factory is not provided.
var ErrMissingConversationFactory = errors.New("mcp: conversation factory is required")
