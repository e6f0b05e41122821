package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/wricardo/scopa-table/game/config"
	"github.com/wricardo/scopa-table/game/room"
)

// ErrInvalidInput is returned when a required field is empty. The HTTP layer
// also rejects missing fields, but the service guards too so other
// transports get the same contract.
var ErrInvalidInput = errors.New("room code and passcode are required")

// roomService implements the RoomService interface.
type roomService struct {
	registry *room.Registry
	presets  *config.Manager
}

// NewRoomService creates a room service over the given registry and preset
// manager. There is no service-level lock: the registry and each room carry
// their own, which keeps unrelated rooms from contending.
func NewRoomService(registry *room.Registry, presets *config.Manager) RoomService {
	return &roomService{
		registry: registry,
		presets:  presets,
	}
}

// CreateRoom builds a freshly shuffled room under roomCode. An empty
// presetName selects the default deck preset.
func (s *roomService) CreateRoom(ctx context.Context, roomCode, passcode, presetName string) (*CreateResult, error) {
	if roomCode == "" || passcode == "" {
		return nil, ErrInvalidInput
	}

	preset := s.presets.GetDefault()
	if presetName != "" {
		var err error
		preset, err = s.presets.LoadPreset(presetName)
		if err != nil {
			if errors.Is(err, config.ErrPresetNotFound) {
				available, listErr := s.presets.ListPresets()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, p := range available {
						ids = append(ids, p.PresetID)
					}
					return nil, fmt.Errorf("%w: '%s'. Available presets: %s", config.ErrPresetNotFound, presetName, strings.Join(ids, ", "))
				}
			}
			return nil, fmt.Errorf("failed to load deck preset %s: %w", presetName, err)
		}
	}

	if _, err := s.registry.Create(roomCode, passcode, preset.Suits, preset.Values); err != nil {
		return nil, err
	}

	return &CreateResult{
		Message:  "Room created successfully.",
		RoomCode: roomCode,
	}, nil
}

// JoinRoom verifies the passcode and adds userID to the room. The returned
// snapshot was captured under the room lock at join time, so it is safe to
// broadcast as-is.
func (s *roomService) JoinRoom(ctx context.Context, roomCode, passcode, userID string) (*JoinResult, error) {
	r, err := s.registry.Get(roomCode)
	if err != nil {
		return nil, err
	}

	snap, err := r.Join(passcode, userID)
	if err != nil {
		return nil, err
	}

	return &JoinResult{
		Message: fmt.Sprintf("User %s joined room %s.", userID, roomCode),
		Deck:    snap.Deck,
		Users:   snap.Users,
	}, nil
}

// DrawCard removes the top card for userID.
func (s *roomService) DrawCard(ctx context.Context, roomCode, userID string) (*DrawResult, error) {
	r, err := s.registry.Get(roomCode)
	if err != nil {
		return nil, err
	}

	card, remaining, err := r.Draw(userID)
	if err != nil {
		return nil, err
	}

	return &DrawResult{
		Card:           card,
		RemainingCards: remaining,
	}, nil
}

// ReshuffleDeck replaces the room's deck with a full rebuilt one.
func (s *roomService) ReshuffleDeck(ctx context.Context, roomCode, userID string) (*ReshuffleResult, error) {
	r, err := s.registry.Get(roomCode)
	if err != nil {
		return nil, err
	}

	snap, err := r.Reshuffle(userID)
	if err != nil {
		return nil, err
	}

	return &ReshuffleResult{
		Message: "Deck reshuffled successfully.",
		Deck:    snap.Deck,
	}, nil
}

// ViewDeck returns a read-only snapshot for reconnection/refresh.
func (s *roomService) ViewDeck(ctx context.Context, roomCode, userID string) (*DeckView, error) {
	r, err := s.registry.Get(roomCode)
	if err != nil {
		return nil, err
	}

	snap, err := r.View(userID)
	if err != nil {
		return nil, err
	}

	return &DeckView{
		Deck:           snap.Deck,
		RemainingCards: snap.Remaining,
		Users:          snap.Users,
	}, nil
}

// LeaveRoom removes userID from the room if present. Missing rooms are
// treated as an already-completed leave so disconnect cleanup stays
// idempotent.
func (s *roomService) LeaveRoom(ctx context.Context, roomCode, userID string) (*LeaveResult, error) {
	r, err := s.registry.Get(roomCode)
	if err != nil {
		if errors.Is(err, room.ErrRoomNotFound) {
			return &LeaveResult{Left: false}, nil
		}
		return nil, err
	}

	left, users := r.Leave(userID)
	return &LeaveResult{
		Left:  left,
		Users: users,
	}, nil
}

// ListRooms summarizes every room in the registry.
func (s *roomService) ListRooms(ctx context.Context) ([]*RoomInfo, error) {
	rooms := s.registry.List()
	result := make([]*RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		result = append(result, &RoomInfo{
			RoomCode:       r.Code,
			Users:          r.MemberCount(),
			RemainingCards: r.Remaining(),
		})
	}
	return result, nil
}

// ListPresets lists the deck presets available for room creation.
func (s *roomService) ListPresets(ctx context.Context) ([]*config.PresetInfo, error) {
	return s.presets.ListPresets()
}

// Authenticate succeeds only when the room exists and userID is currently a
// member.
func (s *roomService) Authenticate(ctx context.Context, roomCode, userID string) error {
	r, err := s.registry.Get(roomCode)
	if err != nil {
		return err
	}
	if !r.HasMember(userID) {
		return room.ErrNotInRoom
	}
	return nil
}
