package deck

import (
	"errors"
	"math/rand/v2"
)

// ErrEmptyDeck is returned by Draw when no cards remain.
var ErrEmptyDeck = errors.New("deck is empty")

// Card is a single playing card. Suit and value are opaque to the server;
// they come from whichever preset the room was created with.
type Card struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

// Deck is an ordered sequence of cards. The last element is the top of the
// deck and is the next card drawn.
type Deck []Card

// New builds a full deck as the suit-major cross product of suits and values:
// one card per (suit, value) pair, in deterministic enumeration order.
func New(suits, values []string) Deck {
	d := make(Deck, 0, len(suits)*len(values))
	for _, suit := range suits {
		for _, value := range values {
			d = append(d, Card{Suit: suit, Value: value})
		}
	}
	return d
}

// Shuffle permutes the deck in place using Fisher-Yates: walk from the last
// index down, swapping each position with a uniformly chosen earlier (or
// same) position. Uniformity of the permutation is what matters here, not
// cryptographic quality.
func (d Deck) Shuffle() {
	for i := len(d) - 1; i > 0; i-- {
		j := rand.IntN(i + 1)
		d[i], d[j] = d[j], d[i]
	}
}

// Draw removes and returns the top card. It returns ErrEmptyDeck without
// mutating the deck when no cards remain, so callers can distinguish
// exhaustion from other failures.
func (d *Deck) Draw() (Card, error) {
	if len(*d) == 0 {
		return Card{}, ErrEmptyDeck
	}
	card := (*d)[len(*d)-1]
	*d = (*d)[:len(*d)-1]
	return card, nil
}

// Copy returns an independent copy of the deck. Snapshots handed to callers
// go through this so room state cannot be mutated from outside.
func (d Deck) Copy() Deck {
	out := make(Deck, len(d))
	copy(out, d)
	return out
}
