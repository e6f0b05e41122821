package service

import (
	"github.com/wricardo/scopa-table/game/deck"
)

// Outbound broadcast event types.
const (
	EventUserJoined     = "user_joined"
	EventUserLeft       = "user_left"
	EventCardDrawn      = "card_drawn"
	EventDeckReshuffled = "deck_reshuffled"
	EventError          = "error"
)

// UserJoinedEvent is broadcast to a room when a member joins.
type UserJoinedEvent struct {
	Type   string   `json:"type"`
	UserID string   `json:"userId"`
	Users  []string `json:"users"`
}

// UserLeftEvent is broadcast to a room when a member leaves or disconnects.
type UserLeftEvent struct {
	Type   string   `json:"type"`
	UserID string   `json:"userId"`
	Users  []string `json:"users"`
}

// CardDrawnEvent is broadcast to a room when a member draws a card.
type CardDrawnEvent struct {
	Type           string    `json:"type"`
	UserID         string    `json:"userId"`
	Card           deck.Card `json:"card"`
	RemainingCards int       `json:"remainingCards"`
}

// DeckReshuffledEvent is broadcast to a room when a member rebuilds the deck.
type DeckReshuffledEvent struct {
	Type           string    `json:"type"`
	UserID         string    `json:"userId"`
	Deck           deck.Deck `json:"deck"`
	RemainingCards int       `json:"remainingCards"`
}

// ErrorEvent is sent point-to-point on authentication failure or malformed
// input; it is never broadcast room-wide.
type ErrorEvent struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func NewUserJoinedEvent(userID string, users []string) UserJoinedEvent {
	return UserJoinedEvent{Type: EventUserJoined, UserID: userID, Users: users}
}

func NewUserLeftEvent(userID string, users []string) UserLeftEvent {
	return UserLeftEvent{Type: EventUserLeft, UserID: userID, Users: users}
}

func NewCardDrawnEvent(userID string, card deck.Card, remaining int) CardDrawnEvent {
	return CardDrawnEvent{Type: EventCardDrawn, UserID: userID, Card: card, RemainingCards: remaining}
}

func NewDeckReshuffledEvent(userID string, d deck.Deck, remaining int) DeckReshuffledEvent {
	return DeckReshuffledEvent{Type: EventDeckReshuffled, UserID: userID, Deck: d, RemainingCards: remaining}
}

func NewErrorEvent(message string) ErrorEvent {
	return ErrorEvent{Type: EventError, Message: message}
}
