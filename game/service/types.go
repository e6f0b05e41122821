package service

import (
	"github.com/wricardo/scopa-table/game/deck"
)

// CreateResult is returned after a room is created.
type CreateResult struct {
	Message  string `json:"message"`
	RoomCode string `json:"roomCode"`
}

// JoinResult is returned to the joining caller. Deck and Users are copies of
// room state captured under the room lock at join time.
type JoinResult struct {
	Message string    `json:"message"`
	Deck    deck.Deck `json:"deck"`
	Users   []string  `json:"users"`
}

// DrawResult carries the drawn card and the count left on the table.
type DrawResult struct {
	Card           deck.Card `json:"card"`
	RemainingCards int       `json:"remainingCards"`
}

// ReshuffleResult carries the rebuilt deck. The payload is {message, deck}
// only; callers that need a count take len(Deck).
type ReshuffleResult struct {
	Message string    `json:"message"`
	Deck    deck.Deck `json:"deck"`
}

// DeckView is the read-only snapshot served to view requests.
type DeckView struct {
	Deck           deck.Deck `json:"deck"`
	RemainingCards int       `json:"remainingCards"`
	Users          []string  `json:"users"`
}

// LeaveResult reports whether the leave changed membership; callers only
// broadcast user_left when it did.
type LeaveResult struct {
	Left  bool     `json:"left"`
	Users []string `json:"users"`
}

// RoomInfo summarizes a room for the listing endpoint.
type RoomInfo struct {
	RoomCode       string `json:"roomCode"`
	Users          int    `json:"users"`
	RemainingCards int    `json:"remainingCards"`
}
