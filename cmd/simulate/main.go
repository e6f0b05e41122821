// Command simulate drives a card room end to end against a running server.
// It creates a room, joins a set of users, opens a WebSocket connection for
// each of them, and draws cards until the deck runs out, reshuffling and
// printing the events every client receives along the way.
//
// Useful for exercising broadcast fan-out and concurrent draws by hand:
//
//	simulate --server http://localhost:3030 --room SMOKE1 --users 3 --draws 45
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
)

type card struct {
	Suit  string `json:"suit"`
	Value string `json:"value"`
}

type event struct {
	Type           string   `json:"type"`
	UserID         string   `json:"userId"`
	Users          []string `json:"users"`
	Card           *card    `json:"card"`
	RemainingCards int      `json:"remainingCards"`
	Message        string   `json:"message"`
}

// tableClient wraps the REST API for one simulated user.
type tableClient struct {
	baseURL string
	client  *http.Client
}

func newTableClient(baseURL string) *tableClient {
	return &tableClient{
		baseURL: baseURL,
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (c *tableClient) post(path string, body map[string]string, result interface{}) error {
	data, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	resp, err := c.client.Post(c.baseURL+path, "application/json", bytes.NewBuffer(data))
	if err != nil {
		return fmt.Errorf("POST %s: %w", path, err)
	}
	defer resp.Body.Close()

	respBody, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(respBody, &errResp) == nil && errResp["error"] != "" {
			return fmt.Errorf("%s: %s", path, errResp["error"])
		}
		return fmt.Errorf("POST %s failed: %s - %s", path, resp.Status, string(respBody))
	}

	if result != nil {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("parse %s response: %w", path, err)
		}
	}
	return nil
}

func (c *tableClient) createRoom(roomCode, passcode, preset string) error {
	body := map[string]string{"roomCode": roomCode, "passcode": passcode}
	if preset != "" {
		body["preset"] = preset
	}
	return c.post("/create-room", body, nil)
}

func (c *tableClient) joinRoom(roomCode, passcode, userID string) (int, error) {
	var result struct {
		Deck []card `json:"deck"`
	}
	err := c.post("/join-room", map[string]string{
		"roomCode": roomCode,
		"passcode": passcode,
		"userId":   userID,
	}, &result)
	return len(result.Deck), err
}

func (c *tableClient) drawCard(roomCode, userID string) (*card, int, error) {
	var result struct {
		Card           card `json:"card"`
		RemainingCards int  `json:"remainingCards"`
	}
	err := c.post("/draw-card", map[string]string{"roomCode": roomCode, "userId": userID}, &result)
	if err != nil {
		return nil, 0, err
	}
	return &result.Card, result.RemainingCards, nil
}

func (c *tableClient) reshuffleDeck(roomCode, userID string) error {
	return c.post("/reshuffle-deck", map[string]string{"roomCode": roomCode, "userId": userID}, nil)
}

// listen opens a WebSocket, performs the authenticate handshake, and prints
// every event the server pushes until the connection closes.
func listen(wsURL, roomCode, userID string, wg *sync.WaitGroup) (*websocket.Conn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", wsURL, err)
	}

	auth := map[string]string{"type": "authenticate", "roomCode": roomCode, "userId": userID}
	if err := conn.WriteJSON(auth); err != nil {
		conn.Close()
		return nil, fmt.Errorf("authenticate %s: %w", userID, err)
	}

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			var ev event
			if err := conn.ReadJSON(&ev); err != nil {
				return
			}
			switch ev.Type {
			case "card_drawn":
				fmt.Printf("  [%s] saw card_drawn by=%s card=%s-%s remaining=%d\n",
					userID, ev.UserID, ev.Card.Suit, ev.Card.Value, ev.RemainingCards)
			case "deck_reshuffled":
				fmt.Printf("  [%s] saw deck_reshuffled by=%s remaining=%d\n",
					userID, ev.UserID, ev.RemainingCards)
			case "user_joined", "user_left":
				fmt.Printf("  [%s] saw %s user=%s users=%s\n",
					userID, ev.Type, ev.UserID, strings.Join(ev.Users, ","))
			case "error":
				fmt.Printf("  [%s] saw error: %s\n", userID, ev.Message)
			default:
				fmt.Printf("  [%s] saw unknown event type=%q\n", userID, ev.Type)
			}
		}
	}()

	return conn, nil
}

func run(ctx context.Context, cmd *cli.Command) error {
	server := cmd.String("server")
	roomCode := cmd.String("room")
	passcode := cmd.String("passcode")
	preset := cmd.String("preset")
	users := int(cmd.Int("users"))
	draws := int(cmd.Int("draws"))

	if users < 1 {
		return fmt.Errorf("need at least one user, got %d", users)
	}

	wsURL := "ws" + strings.TrimPrefix(server, "http") + "/ws"
	client := newTableClient(server)

	fmt.Printf("Creating room %s...\n", roomCode)
	if err := client.createRoom(roomCode, passcode, preset); err != nil {
		return err
	}

	userIDs := make([]string, users)
	for i := range userIDs {
		userIDs[i] = fmt.Sprintf("sim-user-%d", i+1)
	}

	var wg sync.WaitGroup
	conns := make([]*websocket.Conn, 0, users)
	defer func() {
		for _, conn := range conns {
			conn.Close()
		}
		wg.Wait()
	}()

	for _, userID := range userIDs {
		deckSize, err := client.joinRoom(roomCode, passcode, userID)
		if err != nil {
			return err
		}
		fmt.Printf("%s joined (deck has %d cards)\n", userID, deckSize)

		conn, err := listen(wsURL, roomCode, userID, &wg)
		if err != nil {
			return err
		}
		conns = append(conns, conn)
	}

	// Round-robin draws across the users; reshuffle whenever the deck
	// runs out mid-run.
	for i := 0; i < draws; i++ {
		userID := userIDs[i%len(userIDs)]

		drawn, remaining, err := client.drawCard(roomCode, userID)
		if err != nil {
			if !strings.Contains(err.Error(), "Deck is empty") {
				return err
			}
			fmt.Printf("%s hit an empty deck, reshuffling\n", userID)
			if err := client.reshuffleDeck(roomCode, userID); err != nil {
				return err
			}
			continue
		}
		fmt.Printf("%s drew %s-%s (%d left)\n", userID, drawn.Suit, drawn.Value, remaining)
	}

	// Let the last broadcasts land before tearing the sockets down.
	time.Sleep(200 * time.Millisecond)
	fmt.Println("Simulation complete")
	return nil
}

func main() {
	cmd := &cli.Command{
		Name:  "simulate",
		Usage: "drive a card room against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "server",
				Value: "http://localhost:3030",
				Usage: "base URL of the server",
			},
			&cli.StringFlag{
				Name:  "room",
				Value: fmt.Sprintf("SIM%d", time.Now().Unix()%100000),
				Usage: "room code to create",
			},
			&cli.StringFlag{
				Name:  "passcode",
				Value: "simulate",
				Usage: "room passcode",
			},
			&cli.StringFlag{
				Name:  "preset",
				Usage: "deck preset to deal from (defaults to the server's default)",
			},
			&cli.IntFlag{
				Name:  "users",
				Value: 2,
				Usage: "number of users to join",
			},
			&cli.IntFlag{
				Name:  "draws",
				Value: 45,
				Usage: "total draws to attempt across all users",
			},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}
