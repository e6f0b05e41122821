// Package room provides room state and the process-wide room registry for
// the Scopa Table server.
//
// The room package implements:
//   - Room lifecycle: creation, membership, deck mutation
//   - Passcode verification on join
//   - Read-only snapshots for broadcast and view requests
//   - The Registry mapping room codes to rooms
//
// Concurrency:
//
// Every operation that reads or writes a room's deck or member set runs
// under that room's mutex, so concurrent draws against the same room are
// linearized and can never remove the same card twice. Unrelated rooms do
// not contend: the Registry only holds its own lock while resolving a code
// to a room.
//
// Lifecycle:
//
// Rooms are created explicitly and live for the process lifetime. The
// Registry never deletes a room on its own; the optional idle sweep (see
// CleanupIdleRooms) only removes rooms that have no members and have been
// inactive past a caller-chosen TTL.
//
// Usage:
//
//	registry := room.NewRegistry()
//	r, err := registry.Create("R1", "p", preset.Suits, preset.Values)
//
//	snap, err := r.Join("p", "alice")
//	card, remaining, err := r.Draw("alice")
package room
