package room

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/wricardo/scopa-table/game/deck"
)

var (
	ErrRoomNotFound    = errors.New("room not found")
	ErrRoomExists      = errors.New("room already exists")
	ErrInvalidPasscode = errors.New("invalid passcode")
	ErrAlreadyInRoom   = errors.New("user already in room")
	ErrNotInRoom       = errors.New("user not in this room")
)

// Room is one shared card table: a deck, the set of joined members, and the
// passcode that gates entry. All mutating operations lock the room, so
// concurrent requests against the same room are linearized.
type Room struct {
	Code string

	passcode string
	suits    []string
	values   []string

	mu         sync.Mutex
	deck       deck.Deck
	members    map[string]time.Time
	createdAt  time.Time
	lastActive time.Time
}

// Snapshot is a read-only view of room state. The deck is a copy; callers
// cannot mutate the room through it.
type Snapshot struct {
	Deck      deck.Deck
	Remaining int
	Users     []string
}

func newRoom(code, passcode string, suits, values []string) *Room {
	now := time.Now()
	d := deck.New(suits, values)
	d.Shuffle()
	return &Room{
		Code:       code,
		passcode:   passcode,
		suits:      append([]string(nil), suits...),
		values:     append([]string(nil), values...),
		deck:       d,
		members:    make(map[string]time.Time),
		createdAt:  now,
		lastActive: now,
	}
}

// Join verifies the passcode and adds userID to the member set. It returns a
// snapshot of the room as of the join. The passcode is compared verbatim.
func (r *Room) Join(passcode, userID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.passcode != passcode {
		return nil, ErrInvalidPasscode
	}
	if _, exists := r.members[userID]; exists {
		return nil, ErrAlreadyInRoom
	}

	r.members[userID] = time.Now()
	r.lastActive = time.Now()

	return r.snapshotLocked(), nil
}

// Draw removes and returns the top card for a member, plus the number of
// cards remaining. The failed paths leave the room untouched.
func (r *Room) Draw(userID string) (deck.Card, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[userID]; !exists {
		return deck.Card{}, 0, ErrNotInRoom
	}

	card, err := r.deck.Draw()
	if err != nil {
		return deck.Card{}, 0, err
	}

	r.lastActive = time.Now()
	return card, len(r.deck), nil
}

// Reshuffle replaces the deck with a freshly built, freshly shuffled full
// deck using the vocabularies the room was created with.
func (r *Room) Reshuffle(userID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[userID]; !exists {
		return nil, ErrNotInRoom
	}

	d := deck.New(r.suits, r.values)
	d.Shuffle()
	r.deck = d
	r.lastActive = time.Now()

	return r.snapshotLocked(), nil
}

// View returns a read-only snapshot for a member. It never mutates state;
// reconnecting clients use it to refresh their view.
func (r *Room) View(userID string) (*Snapshot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.members[userID]; !exists {
		return nil, ErrNotInRoom
	}

	return r.snapshotLocked(), nil
}

// Leave removes userID from the member set if present. It reports whether a
// removal actually occurred, so callers can decide whether to broadcast, and
// returns the member list after the removal. Leave is idempotent.
func (r *Room) Leave(userID string) (bool, []string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, exists := r.members[userID]
	if exists {
		delete(r.members, userID)
		r.lastActive = time.Now()
	}

	return exists, r.usersLocked()
}

// Users returns the current member IDs in join order.
func (r *Room) Users() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.usersLocked()
}

// MemberCount returns the number of joined members.
func (r *Room) MemberCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members)
}

// Remaining returns the number of undrawn cards.
func (r *Room) Remaining() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.deck)
}

// HasMember reports whether userID is currently joined.
func (r *Room) HasMember(userID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, exists := r.members[userID]
	return exists
}

// IsIdle reports whether the room is empty and has seen no activity since
// the cutoff. Used by the optional registry sweep.
func (r *Room) IsIdle(cutoff time.Time) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.members) == 0 && r.lastActive.Before(cutoff)
}

func (r *Room) snapshotLocked() *Snapshot {
	return &Snapshot{
		Deck:      r.deck.Copy(),
		Remaining: len(r.deck),
		Users:     r.usersLocked(),
	}
}

// usersLocked returns member IDs ordered by join time, so the list clients
// see is stable across broadcasts.
func (r *Room) usersLocked() []string {
	users := make([]string, 0, len(r.members))
	for id := range r.members {
		users = append(users, id)
	}
	sort.Slice(users, func(i, j int) bool {
		ti, tj := r.members[users[i]], r.members[users[j]]
		if ti.Equal(tj) {
			return users[i] < users[j]
		}
		return ti.Before(tj)
	})
	return users
}
