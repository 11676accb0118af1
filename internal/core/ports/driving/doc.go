// Package driving defines the driving (inbound) ports of the hexagon.
//
// Driving ports are the interfaces through which the CLI, TUI and MCP
// adapters invoke core behaviour: the document library controller and
// the per-document conversation controller.
package driving
