// Package driven defines the driven (outbound) ports of the hexagon.
//
// Driven ports are interfaces the core calls out through: the backend
// HTTP service, the local document cache and the configuration store.
// Adapters under internal/adapters/driven implement them.
package driven
