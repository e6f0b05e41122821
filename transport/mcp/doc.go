// Package mcp provides a Model Context Protocol interface to the Scopa
// Table server.
//
// The package implements a thin MCP client that proxies every tool call to
// the REST API. It holds no room state of its own: the HTTP server remains
// the single authority, so rooms created over MCP are visible to WebSocket
// and REST clients and vice versa.
//
// Available tools:
//   - create_room: Create a passcode-protected room
//   - join_room: Join a room as a user
//   - draw_card: Draw the top card of the shared deck
//   - reshuffle_deck: Rebuild and reshuffle the deck
//   - view_deck: Inspect the remaining deck and members
//   - list_rooms: List active rooms
//   - list_presets: List available deck presets
//   - table_instructions: Get usage instructions
//
// The MCP server runs over stdio (see the -mcp flag on the main binary)
// while the REST API runs elsewhere; the base URL points the proxy at it.
package mcp
