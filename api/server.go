package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/wricardo/scopa-table/game/config"
	"github.com/wricardo/scopa-table/game/deck"
	"github.com/wricardo/scopa-table/game/room"
	"github.com/wricardo/scopa-table/game/service"
)

// EventHub is the slice of the WebSocket hub the API needs: it accepts the
// upgrade request and fans events out to a room.
type EventHub interface {
	Broadcast(roomCode string, event any)
	ServeWS(w http.ResponseWriter, r *http.Request)
}

// Server represents the REST API server
type Server struct {
	service service.RoomService
	hub     EventHub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(roomService service.RoomService, hub EventHub) *Server {
	s := &Server{
		service: roomService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	// Room lifecycle
	s.router.HandleFunc("/create-room", s.handleCreateRoom).Methods("POST")
	s.router.HandleFunc("/join-room", s.handleJoinRoom).Methods("POST")

	// Table operations
	s.router.HandleFunc("/draw-card", s.handleDrawCard).Methods("POST")
	s.router.HandleFunc("/reshuffle-deck", s.handleReshuffleDeck).Methods("POST")
	s.router.HandleFunc("/view-deck/{roomCode}/{userId}", s.handleViewDeck).Methods("GET")

	// Introspection
	s.router.HandleFunc("/rooms", s.handleListRooms).Methods("GET")
	s.router.HandleFunc("/presets", s.handleListPresets).Methods("GET")
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Static files (if needed)
	s.router.PathPrefix("/").Handler(http.FileServer(http.Dir("./static/")))
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers
func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps service-layer failures to status codes. The same
// failure gets the same code and message on every endpoint.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, room.ErrRoomNotFound):
		respondError(w, http.StatusNotFound, "Room not found.")
	case errors.Is(err, room.ErrInvalidPasscode):
		respondError(w, http.StatusUnauthorized, "Invalid passcode.")
	case errors.Is(err, room.ErrAlreadyInRoom):
		respondError(w, http.StatusBadRequest, "User already in room.")
	case errors.Is(err, room.ErrNotInRoom):
		respondError(w, http.StatusForbidden, "User not in this room.")
	case errors.Is(err, room.ErrRoomExists):
		respondError(w, http.StatusBadRequest, "Room already exists.")
	case errors.Is(err, deck.ErrEmptyDeck):
		respondError(w, http.StatusBadRequest, "Deck is empty. Reshuffle to continue.")
	case errors.Is(err, config.ErrPresetNotFound), errors.Is(err, config.ErrInvalidPreset):
		// A bad preset name is a caller mistake, not a server fault.
		respondError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrInvalidInput):
		respondError(w, http.StatusBadRequest, err.Error())
	default:
		respondError(w, http.StatusInternalServerError, err.Error())
	}
}

// Room Lifecycle Handlers

func (s *Server) handleCreateRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomCode string `json:"roomCode"`
		Passcode string `json:"passcode"`
		Preset   string `json:"preset,omitempty"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RoomCode == "" || req.Passcode == "" {
		respondError(w, http.StatusBadRequest, "Room code and passcode are required.")
		return
	}

	result, err := s.service.CreateRoom(r.Context(), req.RoomCode, req.Passcode, req.Preset)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	fmt.Printf("[CREATE] room=%s preset=%s\n", req.RoomCode, req.Preset)

	respondJSON(w, http.StatusCreated, result)
}

func (s *Server) handleJoinRoom(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomCode string `json:"roomCode"`
		Passcode string `json:"passcode"`
		UserID   string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RoomCode == "" || req.Passcode == "" || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Room code, passcode, and user ID are required.")
		return
	}

	result, err := s.service.JoinRoom(r.Context(), req.RoomCode, req.Passcode, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Notify the room after the membership change committed.
	if s.hub != nil {
		s.hub.Broadcast(req.RoomCode, service.NewUserJoinedEvent(req.UserID, result.Users))
	}

	fmt.Printf("[JOIN] room=%s user=%s members=%d\n", req.RoomCode, req.UserID, len(result.Users))

	respondJSON(w, http.StatusOK, result)
}

// Table Operation Handlers

func (s *Server) handleDrawCard(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomCode string `json:"roomCode"`
		UserID   string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RoomCode == "" || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Room code and user ID are required.")
		return
	}

	result, err := s.service.DrawCard(r.Context(), req.RoomCode, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(req.RoomCode, service.NewCardDrawnEvent(req.UserID, result.Card, result.RemainingCards))
	}

	fmt.Printf("[DRAW] room=%s user=%s card=%s-%s remaining=%d\n",
		req.RoomCode, req.UserID, result.Card.Suit, result.Card.Value, result.RemainingCards)

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleReshuffleDeck(w http.ResponseWriter, r *http.Request) {
	var req struct {
		RoomCode string `json:"roomCode"`
		UserID   string `json:"userId"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if req.RoomCode == "" || req.UserID == "" {
		respondError(w, http.StatusBadRequest, "Room code and user ID are required.")
		return
	}

	result, err := s.service.ReshuffleDeck(r.Context(), req.RoomCode, req.UserID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	if s.hub != nil {
		s.hub.Broadcast(req.RoomCode, service.NewDeckReshuffledEvent(req.UserID, result.Deck, len(result.Deck)))
	}

	fmt.Printf("[RESHUFFLE] room=%s user=%s remaining=%d\n",
		req.RoomCode, req.UserID, len(result.Deck))

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleViewDeck(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	roomCode := vars["roomCode"]
	userID := vars["userId"]

	view, err := s.service.ViewDeck(r.Context(), roomCode, userID)
	if err != nil {
		// Viewing is restricted to members; the generic membership error
		// gets a view-specific message here.
		if errors.Is(err, room.ErrNotInRoom) {
			respondError(w, http.StatusForbidden, "User not authorized to view this deck.")
			return
		}
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, view)
}

// Introspection Handlers

func (s *Server) handleListRooms(w http.ResponseWriter, r *http.Request) {
	rooms, err := s.service.ListRooms(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count": len(rooms),
		"rooms": rooms,
	})
}

func (s *Server) handleListPresets(w http.ResponseWriter, r *http.Request) {
	presets, err := s.service.ListPresets(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, presets)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	// The socket starts unauthenticated; the authenticate handshake binds
	// it to a membership after the upgrade.
	s.hub.ServeWS(w, r)
}
