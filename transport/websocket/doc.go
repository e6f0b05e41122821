// Package websocket provides the WebSocket transport for the Scopa Table
// server.
//
// The websocket package implements:
//   - The authenticate handshake binding a connection to a room membership
//   - Per-room client sets and event broadcasting
//   - Connection lifecycle management and disconnect cleanup
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// connections. Each client connection is handled by a dedicated pair of
// goroutines (readPump/writePump) that manage reading, writing, ping/pong
// keepalive, and cleanup.
//
// Connection Lifecycle:
//
// A connection starts unauthenticated and is not part of any room. The only
// inbound message the server recognizes is:
//
//	{"type": "authenticate", "roomCode": "R1", "userId": "alice"}
//
// Authentication succeeds only when the room exists and the user is already
// a member (membership is established over HTTP before the socket opens).
// On success the connection is tagged with (roomCode, userId) and joins the
// room's client set. On failure the client receives an error event and the
// connection is closed. Any other payload gets an error event reply and the
// connection stays open.
//
// When an authenticated connection drops, the hub removes it from its room,
// removes the user from the room's member list, and broadcasts user_left to
// the remaining clients - but only if the membership actually changed.
//
// Broadcast Semantics:
//
// Events are marshaled once and delivered to every client currently in the
// room. A client whose send buffer is full is skipped; slow or dead peers
// never stall delivery to the rest of the room. Closed connections are
// cleaned up by their own disconnect path, not by the broadcaster.
package websocket
