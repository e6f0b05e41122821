package websocket

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/wricardo/scopa-table/game/deck"
	"github.com/wricardo/scopa-table/game/service"
)

// mockDirectory implements MembershipDirectory for testing.
type mockDirectory struct {
	authenticateFunc func(ctx context.Context, roomCode, userID string) error
	leaveRoomFunc    func(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error)
}

func (m *mockDirectory) Authenticate(ctx context.Context, roomCode, userID string) error {
	if m.authenticateFunc != nil {
		return m.authenticateFunc(ctx, roomCode, userID)
	}
	return nil
}

func (m *mockDirectory) LeaveRoom(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error) {
	if m.leaveRoomFunc != nil {
		return m.leaveRoomFunc(ctx, roomCode, userID)
	}
	return &service.LeaveResult{Left: true, Users: []string{}}, nil
}

func TestNewHub(t *testing.T) {
	hub := NewHub(&mockDirectory{})

	if hub == nil {
		t.Fatal("NewHub() returned nil")
	}

	if hub.rooms == nil {
		t.Error("Hub rooms map is nil")
	}

	if hub.broadcast == nil {
		t.Error("Hub broadcast channel is nil")
	}

	if hub.register == nil {
		t.Error("Hub register channel is nil")
	}

	if hub.unregister == nil {
		t.Error("Hub unregister channel is nil")
	}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(&mockDirectory{})

	client := &Client{
		hub:           hub,
		roomCode:      "TESTROOM",
		userID:        "alice",
		authenticated: true,
		send:          make(chan []byte, 256),
	}

	hub.registerClient(client)

	if _, exists := hub.rooms["TESTROOM"]; !exists {
		t.Error("Room client set was not created")
	}

	if !hub.rooms["TESTROOM"][client] {
		t.Error("Client was not registered in room")
	}

	if len(hub.rooms["TESTROOM"]) != 1 {
		t.Errorf("Expected 1 client in room, got %d", len(hub.rooms["TESTROOM"]))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(&mockDirectory{})

	client := &Client{
		hub:           hub,
		roomCode:      "TESTROOM",
		userID:        "alice",
		authenticated: true,
		send:          make(chan []byte, 256),
	}

	hub.registerClient(client)
	hub.unregisterClient(client)

	if _, exists := hub.rooms["TESTROOM"]; exists {
		t.Error("Room entry should have been cleaned up after last client unregistered")
	}

	// Send channel should be closed so writePump shuts down.
	select {
	case _, ok := <-client.send:
		if ok {
			t.Error("Expected send channel to be closed")
		}
	default:
		t.Error("Expected send channel to be closed")
	}
}

func TestHubUnregisterUnauthenticatedClient(t *testing.T) {
	leaveCalled := false
	hub := NewHub(&mockDirectory{
		leaveRoomFunc: func(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error) {
			leaveCalled = true
			return &service.LeaveResult{Left: true}, nil
		},
	})

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}

	// A client that never authenticated is not in any room and must not
	// trigger membership removal.
	hub.unregisterClient(client)

	if leaveCalled {
		t.Error("LeaveRoom should not be called for an unauthenticated client")
	}
}

func TestHubUnregisterBroadcastsUserLeft(t *testing.T) {
	hub := NewHub(&mockDirectory{
		leaveRoomFunc: func(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error) {
			return &service.LeaveResult{Left: true, Users: []string{"bob"}}, nil
		},
	})

	leaving := &Client{
		hub:           hub,
		roomCode:      "TESTROOM",
		userID:        "alice",
		authenticated: true,
		send:          make(chan []byte, 256),
	}
	remaining := &Client{
		hub:           hub,
		roomCode:      "TESTROOM",
		userID:        "bob",
		authenticated: true,
		send:          make(chan []byte, 256),
	}

	hub.registerClient(leaving)
	hub.registerClient(remaining)
	hub.unregisterClient(leaving)

	select {
	case data := <-remaining.send:
		var event service.UserLeftEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		if event.Type != service.EventUserLeft {
			t.Errorf("Expected event type %q, got %q", service.EventUserLeft, event.Type)
		}
		if event.UserID != "alice" {
			t.Errorf("Expected userId 'alice', got %q", event.UserID)
		}
		if len(event.Users) != 1 || event.Users[0] != "bob" {
			t.Errorf("Expected users [bob], got %v", event.Users)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No user_left event received within timeout")
	}
}

func TestHubUnregisterSkipsUserLeftWhenMembershipUnchanged(t *testing.T) {
	hub := NewHub(&mockDirectory{
		leaveRoomFunc: func(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error) {
			return &service.LeaveResult{Left: false}, nil
		},
	})

	leaving := &Client{
		hub:           hub,
		roomCode:      "TESTROOM",
		userID:        "alice",
		authenticated: true,
		send:          make(chan []byte, 256),
	}
	remaining := &Client{
		hub:           hub,
		roomCode:      "TESTROOM",
		userID:        "bob",
		authenticated: true,
		send:          make(chan []byte, 256),
	}

	hub.registerClient(leaving)
	hub.registerClient(remaining)
	hub.unregisterClient(leaving)

	select {
	case data := <-remaining.send:
		t.Errorf("Expected no broadcast, got %s", data)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestHubDeliverToRoom(t *testing.T) {
	hub := NewHub(&mockDirectory{})

	inRoom := &Client{
		hub:           hub,
		roomCode:      "ROOM1",
		userID:        "alice",
		authenticated: true,
		send:          make(chan []byte, 256),
	}
	otherRoom := &Client{
		hub:           hub,
		roomCode:      "ROOM2",
		userID:        "bob",
		authenticated: true,
		send:          make(chan []byte, 256),
	}

	hub.registerClient(inRoom)
	hub.registerClient(otherRoom)

	event := service.NewCardDrawnEvent("alice", deck.Card{Suit: "spade", Value: "7"}, 39)
	data, _ := json.Marshal(event)
	hub.deliver("ROOM1", data)

	select {
	case got := <-inRoom.send:
		var decoded service.CardDrawnEvent
		if err := json.Unmarshal(got, &decoded); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		if decoded.Type != service.EventCardDrawn {
			t.Errorf("Expected type %q, got %q", service.EventCardDrawn, decoded.Type)
		}
		if decoded.RemainingCards != 39 {
			t.Errorf("Expected remainingCards 39, got %d", decoded.RemainingCards)
		}
	case <-time.After(100 * time.Millisecond):
		t.Error("No event received within timeout")
	}

	select {
	case got := <-otherRoom.send:
		t.Errorf("Client in another room received event: %s", got)
	default:
	}
}

func TestHubDeliverSkipsSlowClient(t *testing.T) {
	hub := NewHub(&mockDirectory{})

	slow := &Client{
		hub:           hub,
		roomCode:      "ROOM1",
		userID:        "alice",
		authenticated: true,
		send:          make(chan []byte), // unbuffered with no reader
	}
	healthy := &Client{
		hub:           hub,
		roomCode:      "ROOM1",
		userID:        "bob",
		authenticated: true,
		send:          make(chan []byte, 256),
	}

	hub.registerClient(slow)
	hub.registerClient(healthy)

	done := make(chan struct{})
	go func() {
		hub.deliver("ROOM1", []byte(`{"type":"card_drawn"}`))
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(100 * time.Millisecond):
		t.Fatal("deliver blocked on a slow client")
	}

	select {
	case <-healthy.send:
	case <-time.After(100 * time.Millisecond):
		t.Error("Healthy client did not receive the event")
	}

	// The slow client stays in the room; its own disconnect path is
	// responsible for removal.
	if !hub.rooms["ROOM1"][slow] {
		t.Error("Slow client should not be removed by the broadcaster")
	}
}

// dialHub spins up a test server around the hub and dials it.
func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, *httptest.Server) {
	t.Helper()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		server.Close()
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	return conn, server
}

func TestWebSocketAuthenticateSuccess(t *testing.T) {
	hub := NewHub(&mockDirectory{
		authenticateFunc: func(ctx context.Context, roomCode, userID string) error {
			if roomCode == "GAME1" && userID == "alice" {
				return nil
			}
			return errors.New("unknown membership")
		},
	})
	go hub.Run()

	conn, server := dialHub(t, hub)
	defer server.Close()
	defer conn.Close()

	auth := map[string]string{"type": "authenticate", "roomCode": "GAME1", "userId": "alice"}
	if err := conn.WriteJSON(auth); err != nil {
		t.Fatalf("Failed to send authenticate message: %v", err)
	}

	// Give the hub time to process registration.
	time.Sleep(50 * time.Millisecond)

	if len(hub.rooms["GAME1"]) != 1 {
		t.Errorf("Expected 1 client in room GAME1, got %d", len(hub.rooms["GAME1"]))
	}
}

func TestWebSocketAuthenticateFailureClosesConnection(t *testing.T) {
	hub := NewHub(&mockDirectory{
		authenticateFunc: func(ctx context.Context, roomCode, userID string) error {
			return errors.New("unknown membership")
		},
	})
	go hub.Run()

	conn, server := dialHub(t, hub)
	defer server.Close()
	defer conn.Close()

	auth := map[string]string{"type": "authenticate", "roomCode": "NOPE", "userId": "ghost"}
	if err := conn.WriteJSON(auth); err != nil {
		t.Fatalf("Failed to send authenticate message: %v", err)
	}

	// First an error event, then the server closes the connection.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected an error event before close, got read error: %v", err)
	}

	var event service.ErrorEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal error event: %v", err)
	}
	if event.Type != service.EventError {
		t.Errorf("Expected event type %q, got %q", service.EventError, event.Type)
	}
	if event.Message == "" {
		t.Error("Expected a non-empty error message")
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after a failed authentication")
	}

	time.Sleep(50 * time.Millisecond)
	if len(hub.rooms) != 0 {
		t.Errorf("Expected no rooms with clients, got %d", len(hub.rooms))
	}
}

func TestHandleMessageAfterFailedAuthenticate(t *testing.T) {
	hub := NewHub(&mockDirectory{})

	client := &Client{
		hub:  hub,
		send: make(chan []byte, 256),
	}

	client.handleMessage([]byte(`{"type":"authenticate","roomCode":"","userId":""}`))

	// A frame already buffered on the wire can still reach the read loop
	// after the failed handshake shut the client down. It must be dropped,
	// not panic on the closed send channel.
	client.handleMessage([]byte(`{"type":"ping"}`))

	data, ok := <-client.send
	if !ok {
		t.Fatal("Expected the queued error event before the channel closed")
	}
	var event service.ErrorEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal error event: %v", err)
	}
	if event.Type != service.EventError {
		t.Errorf("Expected event type %q, got %q", service.EventError, event.Type)
	}

	if _, ok := <-client.send; ok {
		t.Error("Expected no further events after shutdown")
	}
}

func TestWebSocketMessageAfterFailedAuthenticate(t *testing.T) {
	hub := NewHub(&mockDirectory{
		authenticateFunc: func(ctx context.Context, roomCode, userID string) error {
			return errors.New("unknown membership")
		},
	})
	go hub.Run()

	conn, server := dialHub(t, hub)
	defer server.Close()
	defer conn.Close()

	// Write both frames back to back so the second is already on the wire
	// when the server processes the failed handshake.
	if err := conn.WriteJSON(map[string]string{"type": "authenticate", "roomCode": "NOPE", "userId": "ghost"}); err != nil {
		t.Fatalf("Failed to send authenticate message: %v", err)
	}
	if err := conn.WriteJSON(map[string]string{"type": "chat", "text": "hello"}); err != nil {
		t.Fatalf("Failed to send follow-up message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected an error event before close, got read error: %v", err)
	}

	var event service.ErrorEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal error event: %v", err)
	}
	if event.Type != service.EventError {
		t.Errorf("Expected event type %q, got %q", service.EventError, event.Type)
	}

	// The follow-up frame is dropped and the connection closes cleanly.
	conn.SetReadDeadline(time.Now().Add(time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to be closed after a failed authentication")
	}
}

func TestWebSocketMalformedMessageKeepsConnectionOpen(t *testing.T) {
	hub := NewHub(&mockDirectory{})
	go hub.Run()

	conn, server := dialHub(t, hub)
	defer server.Close()
	defer conn.Close()

	if err := conn.WriteMessage(websocket.TextMessage, []byte("not json")); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected an error event, got read error: %v", err)
	}

	var event service.ErrorEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal error event: %v", err)
	}
	if event.Type != service.EventError {
		t.Errorf("Expected event type %q, got %q", service.EventError, event.Type)
	}

	// The connection should still be usable for a real handshake.
	auth := map[string]string{"type": "authenticate", "roomCode": "GAME1", "userId": "alice"}
	if err := conn.WriteJSON(auth); err != nil {
		t.Fatalf("Connection unusable after malformed message: %v", err)
	}

	time.Sleep(50 * time.Millisecond)
	if len(hub.rooms["GAME1"]) != 1 {
		t.Errorf("Expected 1 client in room GAME1 after recovery, got %d", len(hub.rooms["GAME1"]))
	}
}

func TestWebSocketUnsupportedTypeGetsErrorEvent(t *testing.T) {
	hub := NewHub(&mockDirectory{})
	go hub.Run()

	conn, server := dialHub(t, hub)
	defer server.Close()
	defer conn.Close()

	if err := conn.WriteJSON(map[string]string{"type": "chat", "text": "hello"}); err != nil {
		t.Fatalf("Failed to send message: %v", err)
	}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("Expected an error event, got read error: %v", err)
	}

	var event service.ErrorEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal error event: %v", err)
	}
	if event.Type != service.EventError {
		t.Errorf("Expected event type %q, got %q", service.EventError, event.Type)
	}
}

func TestWebSocketBroadcastReachesAuthenticatedClients(t *testing.T) {
	hub := NewHub(&mockDirectory{})
	go hub.Run()

	conn1, server := dialHub(t, hub)
	defer server.Close()
	defer conn1.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn2, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect second client: %v", err)
	}
	defer conn2.Close()

	for i, conn := range []*websocket.Conn{conn1, conn2} {
		user := []string{"alice", "bob"}[i]
		auth := map[string]string{"type": "authenticate", "roomCode": "GAME1", "userId": user}
		if err := conn.WriteJSON(auth); err != nil {
			t.Fatalf("Failed to authenticate %s: %v", user, err)
		}
	}

	time.Sleep(50 * time.Millisecond)

	hub.Broadcast("GAME1", service.NewDeckReshuffledEvent("alice", deck.New([]string{"denari", "coppe", "bastoni", "spade"}, []string{"1", "2", "3", "4", "5", "6", "7", "alfiere", "regina", "re"}), 40))

	for _, conn := range []*websocket.Conn{conn1, conn2} {
		conn.SetReadDeadline(time.Now().Add(time.Second))
		_, data, err := conn.ReadMessage()
		if err != nil {
			t.Fatalf("Failed to read broadcast: %v", err)
		}

		var event service.DeckReshuffledEvent
		if err := json.Unmarshal(data, &event); err != nil {
			t.Fatalf("Failed to unmarshal event: %v", err)
		}
		if event.Type != service.EventDeckReshuffled {
			t.Errorf("Expected type %q, got %q", service.EventDeckReshuffled, event.Type)
		}
		if event.RemainingCards != 40 {
			t.Errorf("Expected remainingCards 40, got %d", event.RemainingCards)
		}
	}
}

func TestWebSocketDisconnectRemovesMembership(t *testing.T) {
	var leftRoom, leftUser string
	hub := NewHub(&mockDirectory{
		leaveRoomFunc: func(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error) {
			leftRoom, leftUser = roomCode, userID
			return &service.LeaveResult{Left: true, Users: []string{"bob"}}, nil
		},
	})
	go hub.Run()

	conn1, server := dialHub(t, hub)
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http")
	conn2, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect second client: %v", err)
	}
	defer conn2.Close()

	if err := conn1.WriteJSON(map[string]string{"type": "authenticate", "roomCode": "GAME1", "userId": "alice"}); err != nil {
		t.Fatalf("Failed to authenticate alice: %v", err)
	}
	if err := conn2.WriteJSON(map[string]string{"type": "authenticate", "roomCode": "GAME1", "userId": "bob"}); err != nil {
		t.Fatalf("Failed to authenticate bob: %v", err)
	}

	time.Sleep(50 * time.Millisecond)

	conn1.Close()

	conn2.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn2.ReadMessage()
	if err != nil {
		t.Fatalf("Failed to read user_left event: %v", err)
	}

	var event service.UserLeftEvent
	if err := json.Unmarshal(data, &event); err != nil {
		t.Fatalf("Failed to unmarshal event: %v", err)
	}
	if event.Type != service.EventUserLeft {
		t.Errorf("Expected type %q, got %q", service.EventUserLeft, event.Type)
	}
	if event.UserID != "alice" {
		t.Errorf("Expected userId 'alice', got %q", event.UserID)
	}

	if leftRoom != "GAME1" || leftUser != "alice" {
		t.Errorf("Expected LeaveRoom(GAME1, alice), got LeaveRoom(%s, %s)", leftRoom, leftUser)
	}

	time.Sleep(50 * time.Millisecond)
	if len(hub.rooms["GAME1"]) != 1 {
		t.Errorf("Expected 1 client remaining in room, got %d", len(hub.rooms["GAME1"]))
	}
}
