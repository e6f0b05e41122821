package websocket

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/wricardo/scopa-table/game/service"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// Allow connections from any origin. Rooms are guarded by their
		// passcode, not by the origin of the page that opens the socket.
		return true
	},
}

// MembershipDirectory is the slice of the room service the hub needs: it
// verifies authenticate handshakes and removes members on disconnect.
type MembershipDirectory interface {
	Authenticate(ctx context.Context, roomCode, userID string) error
	LeaveRoom(ctx context.Context, roomCode, userID string) (*service.LeaveResult, error)
}

// inboundMessage is the shape of messages clients send over the socket.
// The server only acts on type "authenticate".
type inboundMessage struct {
	Type     string `json:"type"`
	RoomCode string `json:"roomCode"`
	UserID   string `json:"userId"`
}

// roomEvent pairs a pre-marshaled event payload with the room it targets.
type roomEvent struct {
	roomCode string
	data     []byte
}

// Client represents a single WebSocket connection. A client starts
// unauthenticated; roomCode and userID are set only after a successful
// authenticate handshake.
type Client struct {
	hub  *Hub
	conn *websocket.Conn

	// Buffered channel of outbound messages.
	send chan []byte

	// Unique connection ID, used for logging. Distinct from userID because
	// a user may reconnect and briefly have two live connections.
	id string

	roomCode      string
	userID        string
	authenticated bool

	// mu guards closed and the close of send. shutdown can race with
	// enqueue across goroutines, so send is never written or closed
	// without holding mu.
	mu     sync.Mutex
	closed bool
}

// enqueue marshals v and queues it for delivery to this client. Messages
// are dropped rather than blocking when the client is shutting down or its
// buffer is full.
func (c *Client) enqueue(v any) {
	data, err := json.Marshal(v)
	if err != nil {
		log.Printf("[WS] Failed to marshal message for client %s: %v", c.id, err)
		return
	}
	if !c.trySend(data) {
		log.Printf("[WS] Dropping message for client %s", c.id)
	}
}

// trySend queues data for the writePump. It reports false when the client
// has been shut down or its buffer is full.
func (c *Client) trySend(data []byte) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- data:
		return true
	default:
		return false
	}
}

// shutdown closes the client's send channel exactly once. The writePump
// drains any queued messages, sends a close frame, and closes the
// underlying connection. Later enqueues are dropped, so the readPump may
// keep consuming frames until the connection tears down.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// Hub maintains the set of connected clients per room and dispatches
// events to them. All map mutations happen on the Run goroutine, so no
// locking is needed on the room index itself.
type Hub struct {
	directory MembershipDirectory

	// Clients grouped by room code. Only authenticated clients appear here.
	rooms map[string]map[*Client]bool

	broadcast  chan roomEvent
	register   chan *Client
	unregister chan *Client
}

// NewHub creates a hub backed by the given membership directory.
func NewHub(directory MembershipDirectory) *Hub {
	return &Hub{
		directory:  directory,
		rooms:      make(map[string]map[*Client]bool),
		broadcast:  make(chan roomEvent),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run processes register, unregister, and broadcast requests. It should be
// started once, in its own goroutine, before the HTTP server accepts
// connections.
func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.registerClient(client)
		case client := <-h.unregister:
			h.unregisterClient(client)
		case ev := <-h.broadcast:
			h.deliver(ev.roomCode, ev.data)
		}
	}
}

// Broadcast marshals the event once and fans it out to every client in the
// room. It returns as soon as the hub has accepted the event; delivery to
// individual peers is best-effort and never confirmed to the caller.
func (h *Hub) Broadcast(roomCode string, event any) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[WS] Failed to marshal broadcast for room %s: %v", roomCode, err)
		return
	}
	h.broadcast <- roomEvent{roomCode: roomCode, data: data}
}

func (h *Hub) registerClient(client *Client) {
	clients, ok := h.rooms[client.roomCode]
	if !ok {
		clients = make(map[*Client]bool)
		h.rooms[client.roomCode] = clients
	}
	clients[client] = true
	log.Printf("[WS] Client %s authenticated as %s in room %s (%d connected)",
		client.id, client.userID, client.roomCode, len(clients))
}

func (h *Hub) unregisterClient(client *Client) {
	client.shutdown()

	if !client.authenticated {
		return
	}

	if clients, ok := h.rooms[client.roomCode]; ok {
		if _, ok := clients[client]; ok {
			delete(clients, client)
			if len(clients) == 0 {
				delete(h.rooms, client.roomCode)
			}
		}
	}
	log.Printf("[WS] Client %s (%s) disconnected from room %s",
		client.id, client.userID, client.roomCode)

	result, err := h.directory.LeaveRoom(context.Background(), client.roomCode, client.userID)
	if err != nil {
		log.Printf("[WS] Failed to remove %s from room %s: %v", client.userID, client.roomCode, err)
		return
	}
	if result.Left {
		data, err := json.Marshal(service.NewUserLeftEvent(client.userID, result.Users))
		if err != nil {
			log.Printf("[WS] Failed to marshal user_left for room %s: %v", client.roomCode, err)
			return
		}
		h.deliver(client.roomCode, data)
	}
}

// deliver writes data to every client in the room. Clients whose buffers
// are full are skipped; their own disconnect path cleans them up.
func (h *Hub) deliver(roomCode string, data []byte) {
	for client := range h.rooms[roomCode] {
		if !client.trySend(data) {
			log.Printf("[WS] Skipping slow client %s in room %s", client.id, roomCode)
		}
	}
}

// ServeWS upgrades an HTTP request to a WebSocket connection and starts the
// read/write pumps. The connection stays outside every room until it
// completes the authenticate handshake.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("[WS] Upgrade failed: %v", err)
		return
	}

	client := &Client{
		hub:  h,
		conn: conn,
		send: make(chan []byte, 256),
		id:   uuid.New().String(),
	}
	log.Printf("[WS] Client %s connected", client.id)

	go client.writePump()
	go client.readPump()
}

// readPump reads messages from the connection and drives the authenticate
// state machine. It runs in its own goroutine; there is at most one reader
// per connection.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister <- c
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure, websocket.CloseNormalClosure) {
				log.Printf("[WS] Client %s read error: %v", c.id, err)
			}
			break
		}
		c.handleMessage(raw)
	}
}

// handleMessage processes one inbound payload. Authentication failures end
// the connection; every other problem gets an error event reply with the
// connection left open.
func (c *Client) handleMessage(raw []byte) {
	var msg inboundMessage
	if err := json.Unmarshal(raw, &msg); err != nil {
		c.enqueue(service.NewErrorEvent("Invalid message format."))
		return
	}

	if msg.Type != "authenticate" {
		c.enqueue(service.NewErrorEvent("Unsupported message type."))
		return
	}

	if c.authenticated {
		c.enqueue(service.NewErrorEvent("Connection is already authenticated."))
		return
	}

	if msg.RoomCode == "" || msg.UserID == "" {
		c.enqueue(service.NewErrorEvent("Authentication failed. Room code and user ID are required."))
		c.shutdown()
		return
	}

	if err := c.hub.directory.Authenticate(context.Background(), msg.RoomCode, msg.UserID); err != nil {
		log.Printf("[WS] Client %s failed authentication for room %s as %s: %v",
			c.id, msg.RoomCode, msg.UserID, err)
		c.enqueue(service.NewErrorEvent("Authentication failed. Invalid room code or user ID."))
		c.shutdown()
		return
	}

	c.roomCode = msg.RoomCode
	c.userID = msg.UserID
	c.authenticated = true
	c.hub.register <- c
}

// writePump pushes messages from the send channel to the connection and
// keeps the peer alive with periodic pings. It runs in its own goroutine;
// there is at most one writer per connection.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel; flush a close frame so the
				// peer sees a clean shutdown.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
