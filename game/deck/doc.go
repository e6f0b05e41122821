// Package deck provides the card deck primitives for the Scopa Table server.
//
// The deck package implements:
//   - Deterministic deck construction from suit/value vocabularies
//   - In-place Fisher-Yates shuffling
//   - Destructive top-card draws
//
// Core Types:
//
// Card is an immutable (suit, value) pair. The server treats both fields as
// opaque strings; the vocabulary comes from a deck preset (see game/config).
// Deck is an ordered sequence of cards where the last element is the top.
//
// Usage:
//
//	d := deck.New(preset.Suits, preset.Values)
//	d.Shuffle()
//
//	card, err := d.Draw()
//	if errors.Is(err, deck.ErrEmptyDeck) {
//		// reshuffle to continue
//	}
//
// Construction enumerates suits in order and, within each suit, values in
// order, producing exactly one card per (suit, value) pair. Shuffling only
// permutes the deck; the multiset of cards is unchanged.
package deck
