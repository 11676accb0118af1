// Package services implements the core controllers of docpilot.
//
// Library owns the local document list: cache-then-network startup,
// optimistic mutations and background embedding-status polling.
// Conversation owns the message list for one document and implements
// optimistic send with rollback.
//
// Services depend only on domain types and driven ports, never on
// adapters.
package services
