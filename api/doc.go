// Package api provides the REST API server for the Scopa Table service.
//
// The api package implements:
//   - HTTP endpoints for room lifecycle and table operations
//   - Error-to-status mapping with the same codes for the same failures
//     on every endpoint
//   - Broadcast hand-off: mutating handlers build the room event and pass
//     it to the WebSocket hub after the state change commits
//
// Endpoints:
//
//	POST /create-room             - Create a passcode-protected room
//	POST /join-room               - Join a room (passcode required)
//	POST /draw-card               - Draw the top card of the shared deck
//	POST /reshuffle-deck          - Rebuild and reshuffle the full deck
//	GET  /view-deck/{roomCode}/{userId} - Inspect the deck (members only)
//	GET  /rooms                   - List active rooms
//	GET  /presets                 - List available deck presets
//	GET  /health                  - Health check
//	GET  /ws                      - WebSocket upgrade
//
// Status codes are uniform across endpoints: 400 for missing or invalid
// input and an empty deck, 404 for an unknown room, 401 for a wrong
// passcode, 403 for a non-member acting on a room.
//
// The server depends on the service layer through the service.RoomService
// interface and on the hub through a narrow broadcaster interface, which
// makes handlers testable with simple mocks.
package api
