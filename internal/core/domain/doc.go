// Package domain defines the core business entities for docpilot.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - Document: An uploaded PDF mirrored from the backend
//   - EmbeddingState: Server-side indexing progress for a document
//   - Message: One chat entry, confirmed or still pending
//   - ChatExchange: The confirmed user/assistant pair returned on send
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
