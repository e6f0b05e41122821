package room

import (
	"sync"
	"time"
)

// Registry owns the process-wide mapping from room code to room. It is
// created empty at startup and injected into whatever needs room access;
// there is no package-level state.
type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		rooms: make(map[string]*Room),
	}
}

// Create builds a room with a fresh shuffled deck and inserts it under code.
// Codes are unique; creating an existing code fails with ErrRoomExists.
func (g *Registry) Create(code, passcode string, suits, values []string) (*Room, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if _, exists := g.rooms[code]; exists {
		return nil, ErrRoomExists
	}

	r := newRoom(code, passcode, suits, values)
	g.rooms[code] = r
	return r, nil
}

// Get resolves a room code.
func (g *Registry) Get(code string) (*Room, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	r, exists := g.rooms[code]
	if !exists {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// List returns all rooms in no particular order.
func (g *Registry) List() []*Room {
	g.mu.RLock()
	defer g.mu.RUnlock()

	result := make([]*Room, 0, len(g.rooms))
	for _, r := range g.rooms {
		result = append(result, r)
	}
	return result
}

// Count returns the number of rooms.
func (g *Registry) Count() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.rooms)
}

// CleanupIdleRooms removes rooms that have no members and have been inactive
// longer than maxAge, returning how many were removed. Rooms with members
// are never touched, so enabling the sweep does not change the external
// contract for live rooms.
func (g *Registry) CleanupIdleRooms(maxAge time.Duration) int {
	cutoff := time.Now().Add(-maxAge)

	g.mu.Lock()
	defer g.mu.Unlock()

	removed := 0
	for code, r := range g.rooms {
		if r.IsIdle(cutoff) {
			delete(g.rooms, code)
			removed++
		}
	}
	return removed
}
