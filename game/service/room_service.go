package service

import (
	"context"

	"github.com/wricardo/scopa-table/game/config"
)

// RoomService defines all room-related operations exposed to the transports.
type RoomService interface {
	// Room lifecycle
	CreateRoom(ctx context.Context, roomCode, passcode, presetName string) (*CreateResult, error)
	JoinRoom(ctx context.Context, roomCode, passcode, userID string) (*JoinResult, error)
	LeaveRoom(ctx context.Context, roomCode, userID string) (*LeaveResult, error)

	// Table operations
	DrawCard(ctx context.Context, roomCode, userID string) (*DrawResult, error)
	ReshuffleDeck(ctx context.Context, roomCode, userID string) (*ReshuffleResult, error)
	ViewDeck(ctx context.Context, roomCode, userID string) (*DeckView, error)

	// Introspection
	ListRooms(ctx context.Context) ([]*RoomInfo, error)
	ListPresets(ctx context.Context) ([]*config.PresetInfo, error)

	// Authenticate verifies that userID is a current member of roomCode.
	// The WebSocket handshake uses it to bind a connection to an
	// already-established membership.
	Authenticate(ctx context.Context, roomCode, userID string) error
}
