// Package service provides the business logic layer for the Scopa Table
// server.
//
// The service package implements:
//   - Room lifecycle operations (create, join, draw, reshuffle, view, leave)
//   - Deck preset resolution at room creation
//   - Broadcast event construction
//   - Membership checks for the WebSocket authentication handshake
//
// Core Interfaces:
//
// RoomService is the main service interface providing high-level room
// operations. The transports (HTTP, WebSocket, MCP) all sit on top of it.
//
// Architecture:
//
// The service layer sits between the transport layer and the room registry,
// translating transport requests into registry operations and packaging the
// post-mutation snapshots into result and event values. Mutation and
// snapshot capture happen atomically under the room's lock inside game/room;
// by the time a result is returned, the state it describes is already
// committed, so handlers can broadcast it without observing torn state.
//
// Events:
//
// Every mutating operation that other room members must observe has a
// matching event constructor (NewUserJoinedEvent, NewCardDrawnEvent, ...).
// The action handler builds the event from the operation result and hands it
// to the broadcast hub as an explicit, separate step; the service itself
// never touches connections.
//
// Usage:
//
//	registry := room.NewRegistry()
//	presets, _ := config.NewManager("configs")
//	svc := service.NewRoomService(registry, presets)
//
//	result, err := svc.JoinRoom(ctx, "R1", "p", "alice")
package service
