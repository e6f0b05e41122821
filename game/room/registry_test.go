package room

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestRegistryCreate(t *testing.T) {
	registry := NewRegistry()

	r, err := registry.Create("R1", "p", testSuits, testValues)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if r.Code != "R1" {
		t.Errorf("Expected code R1, got %s", r.Code)
	}
	if r.Remaining() != 40 {
		t.Errorf("Expected fresh 40-card deck, got %d", r.Remaining())
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 room, got %d", registry.Count())
	}
}

func TestRegistryCreate_Duplicate(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Create("R1", "p", testSuits, testValues); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	_, err := registry.Create("R1", "other", testSuits, testValues)
	if !errors.Is(err, ErrRoomExists) {
		t.Fatalf("Expected ErrRoomExists, got %v", err)
	}
	if registry.Count() != 1 {
		t.Errorf("Failed create changed room count to %d", registry.Count())
	}
}

func TestRegistryGet(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Get("missing"); !errors.Is(err, ErrRoomNotFound) {
		t.Fatalf("Expected ErrRoomNotFound, got %v", err)
	}

	created, err := registry.Create("R1", "p", testSuits, testValues)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := registry.Get("R1")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if got != created {
		t.Error("Get returned a different room than Create")
	}
}

func TestRegistryRoomsAreIsolated(t *testing.T) {
	registry := NewRegistry()

	r1, _ := registry.Create("R1", "p", testSuits, testValues)
	r2, _ := registry.Create("R2", "p", testSuits, testValues)

	if _, err := r1.Join("p", "alice"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}
	if _, _, err := r1.Draw("alice"); err != nil {
		t.Fatalf("Draw failed: %v", err)
	}

	if r2.Remaining() != 40 {
		t.Errorf("Draw in R1 affected R2, %d remaining", r2.Remaining())
	}
	if r2.MemberCount() != 0 {
		t.Errorf("Join in R1 affected R2 members: %d", r2.MemberCount())
	}
}

func TestRegistryConcurrentCreate(t *testing.T) {
	registry := NewRegistry()

	var wg sync.WaitGroup
	errs := make(chan error, 10)
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := registry.Create("same", "p", testSuits, testValues); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)

	failures := 0
	for err := range errs {
		if !errors.Is(err, ErrRoomExists) {
			t.Errorf("Unexpected error: %v", err)
		}
		failures++
	}
	if failures != 9 {
		t.Errorf("Expected exactly 9 duplicate failures, got %d", failures)
	}
	if registry.Count() != 1 {
		t.Errorf("Expected 1 room, got %d", registry.Count())
	}
}

func TestCleanupIdleRooms(t *testing.T) {
	registry := NewRegistry()

	for i := 0; i < 3; i++ {
		if _, err := registry.Create(fmt.Sprintf("empty-%d", i), "p", testSuits, testValues); err != nil {
			t.Fatalf("Create failed: %v", err)
		}
	}
	occupied, err := registry.Create("occupied", "p", testSuits, testValues)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if _, err := occupied.Join("p", "alice"); err != nil {
		t.Fatalf("Join failed: %v", err)
	}

	time.Sleep(10 * time.Millisecond)

	removed := registry.CleanupIdleRooms(time.Millisecond)
	if removed != 3 {
		t.Errorf("Expected 3 rooms removed, got %d", removed)
	}
	if _, err := registry.Get("occupied"); err != nil {
		t.Errorf("Occupied room should survive the sweep: %v", err)
	}
}

func TestCleanupIdleRooms_FreshRoomsSurvive(t *testing.T) {
	registry := NewRegistry()

	if _, err := registry.Create("fresh", "p", testSuits, testValues); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	removed := registry.CleanupIdleRooms(time.Hour)
	if removed != 0 {
		t.Errorf("Fresh room was swept, removed=%d", removed)
	}
}
