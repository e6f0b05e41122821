package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/scopa-table/game/config"
	"github.com/wricardo/scopa-table/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Scopa Table",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Scopa Table - MCP Interface

This is a thin client that proxies all requests to the REST API server.

Rooms hold a shared 40-card Italian deck. Create a room with a passcode,
join it as a user, then draw cards from the shared deck. Anyone in the
room can draw or reshuffle at any time; there is no turn order.

AVAILABLE TOOLS:
- create_room: Create a passcode-protected room
- join_room: Join a room (passcode required)
- draw_card: Draw the top card of the room's deck
- reshuffle_deck: Rebuild and reshuffle the full deck
- view_deck: See the remaining cards and who is in the room
- list_rooms: List active rooms
- list_presets: List available deck presets
- table_instructions: Get these instructions again

NOTE: join a room before drawing; draw and view require membership.`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Room lifecycle
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_room",
		Description: "Create a new passcode-protected room with a freshly shuffled deck",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Unique code identifying the room",
				},
				"passcode": map[string]interface{}{
					"type":        "string",
					"description": "Passcode users must present to join",
				},
				"preset": map[string]interface{}{
					"type":        "string",
					"description": "Deck preset to deal from (optional, defaults to the Italian 40-card deck)",
				},
			},
			Required: []string{"room_code", "passcode"},
		},
	}, c.handleCreateRoom)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "join_room",
		Description: "Join an existing room as a user",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Code of the room to join",
				},
				"passcode": map[string]interface{}{
					"type":        "string",
					"description": "Room passcode",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User ID to join as",
				},
			},
			Required: []string{"room_code", "passcode", "user_id"},
		},
	}, c.handleJoinRoom)

	// Table operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "draw_card",
		Description: "Draw the top card of the room's shared deck",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User drawing the card (must be a room member)",
				},
			},
			Required: []string{"room_code", "user_id"},
		},
	}, c.handleDrawCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reshuffle_deck",
		Description: "Rebuild the full deck and shuffle it",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User requesting the reshuffle (must be a room member)",
				},
			},
			Required: []string{"room_code", "user_id"},
		},
	}, c.handleReshuffleDeck)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "view_deck",
		Description: "View the remaining deck and the users in the room",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"room_code": map[string]interface{}{
					"type":        "string",
					"description": "Room code",
				},
				"user_id": map[string]interface{}{
					"type":        "string",
					"description": "User viewing the deck (must be a room member)",
				},
			},
			Required: []string{"room_code", "user_id"},
		},
	}, c.handleViewDeck)

	// Introspection
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_rooms",
		Description: "List all active rooms",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListRooms)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_presets",
		Description: "List available deck presets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListPresets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "table_instructions",
		Description: "Get usage instructions for the card table",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleTableInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// Tool handlers

func (c *Client) handleCreateRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)
	passcode, _ := args["passcode"].(string)
	preset, _ := args["preset"].(string)

	body := map[string]string{
		"roomCode": roomCode,
		"passcode": passcode,
	}
	if preset != "" {
		body["preset"] = preset
	}

	var result service.CreateResult
	err := c.apiCall("POST", "/create-room", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("%s Room code: %s", result.Message, result.RoomCode)), nil
}

func (c *Client) handleJoinRoom(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)
	passcode, _ := args["passcode"].(string)
	userID, _ := args["user_id"].(string)

	body := map[string]string{
		"roomCode": roomCode,
		"passcode": passcode,
		"userId":   userID,
	}

	var result service.JoinResult
	err := c.apiCall("POST", "/join-room", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("%s\nUsers: %s\nCards in deck: %d",
		result.Message, strings.Join(result.Users, ", "), len(result.Deck))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleDrawCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)
	userID, _ := args["user_id"].(string)

	body := map[string]string{
		"roomCode": roomCode,
		"userId":   userID,
	}

	var result service.DrawResult
	err := c.apiCall("POST", "/draw-card", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("Drew %s of %s. %d cards remaining.",
		result.Card.Value, result.Card.Suit, result.RemainingCards)
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleReshuffleDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)
	userID, _ := args["user_id"].(string)

	body := map[string]string{
		"roomCode": roomCode,
		"userId":   userID,
	}

	var result service.ReshuffleResult
	err := c.apiCall("POST", "/reshuffle-deck", body, &result)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	text := fmt.Sprintf("%s %d cards in the deck.", result.Message, len(result.Deck))
	return mcp.NewToolResultText(text), nil
}

func (c *Client) handleViewDeck(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	roomCode, _ := args["room_code"].(string)
	userID, _ := args["user_id"].(string)

	var view service.DeckView
	err := c.apiCall("GET", fmt.Sprintf("/view-deck/%s/%s", roomCode, userID), nil, &view)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatDeckView(roomCode, &view)), nil
}

func (c *Client) handleListRooms(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count int                 `json:"count"`
		Rooms []*service.RoomInfo `json:"rooms"`
	}

	err := c.apiCall("GET", "/rooms", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Rooms (%d):\n\n", response.Count)
	for _, r := range response.Rooms {
		result += fmt.Sprintf("- %s (%d users, %d cards remaining)\n",
			r.RoomCode, r.Users, r.RemainingCards)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListPresets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var presets []*config.PresetInfo

	err := c.apiCall("GET", "/presets", nil, &presets)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Deck Presets (%d):\n\n", len(presets))
	for _, p := range presets {
		result += fmt.Sprintf("- %s: %s (%d cards)\n", p.PresetID, p.Name, p.CardCount)
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleTableInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `Scopa Table - How to Use

1. create_room with a room_code and passcode. The room starts with a full
   shuffled deck (40 cards for the default Italian preset).
2. join_room with the same room_code, the passcode, and your user_id.
3. draw_card to take the top card. Everyone in the room shares one deck,
   and there is no turn order.
4. When the deck runs out, reshuffle_deck rebuilds and shuffles all cards.
5. view_deck shows the remaining cards and the users in the room.

Membership rules:
- Joining requires the room passcode.
- Drawing, reshuffling, and viewing require membership in the room.
- A user ID can only be in a room once at a time.`

	return mcp.NewToolResultText(instructions), nil
}

// formatDeckView renders a deck snapshot for tool output.
func formatDeckView(roomCode string, view *service.DeckView) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Room %s\n", roomCode)
	fmt.Fprintf(&b, "Users: %s\n", strings.Join(view.Users, ", "))
	fmt.Fprintf(&b, "Cards remaining: %d\n", view.RemainingCards)

	if len(view.Deck) > 0 {
		b.WriteString("\nDeck (top card last):\n")
		for _, card := range view.Deck {
			fmt.Fprintf(&b, "- %s of %s\n", card.Value, card.Suit)
		}
	}

	return b.String()
}
