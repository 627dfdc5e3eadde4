package cli

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"
)

func newWatchCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "watch <room-id>",
		Short: "Stream live events from a room",
		Long: `Connect to the WebSocket endpoint, subscribe to a room, and print
events in real-time.

Events include:
  - update_data: Full room snapshot after any accepted change
  - transaction_notification: Money arrived or the bank adjusted you
  - transaction_error: One of your requests was rejected
  - room_deleted: The room is gone (admin, expired, or empty)

Press Ctrl+C to disconnect.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(args[0], jsonOutput)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")

	return cmd
}

// Event is a server-to-client event envelope
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

func watchRoom(roomID string, jsonOutput bool) error {
	wsURL, err := websocketURL(cfg.ServerURL, cfg.Token)
	if err != nil {
		return err
	}

	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()

	// Subscribe to the room
	join := map[string]string{"type": "join_room", "roomId": roomID}
	if err := conn.WriteJSON(join); err != nil {
		return fmt.Errorf("failed to join room: %w", err)
	}

	if !jsonOutput {
		fmt.Printf("Watching room %s\n", roomID)
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		_ = conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		_ = conn.Close()
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				if !jsonOutput {
					fmt.Println("Disconnected")
				}
				return nil
			}
			if !jsonOutput {
				fmt.Println("\nDisconnected")
				return nil
			}
			return fmt.Errorf("stream error: %w", err)
		}

		var evt Event
		if err := json.Unmarshal(data, &evt); err != nil {
			continue
		}

		printEvent(evt, jsonOutput)

		if evt.Type == "room_deleted" {
			return nil
		}
	}
}

// websocketURL builds the /ws dial URL, carrying the session token as a
// query parameter
func websocketURL(serverURL, token string) (string, error) {
	u, err := url.Parse(strings.TrimSuffix(serverURL, "/"))
	if err != nil {
		return "", fmt.Errorf("invalid server URL: %w", err)
	}

	switch u.Scheme {
	case "https":
		u.Scheme = "wss"
	default:
		u.Scheme = "ws"
	}
	u.Path = "/ws"

	if token != "" {
		q := u.Query()
		q.Set("token", token)
		u.RawQuery = q.Encode()
	}

	return u.String(), nil
}

func printEvent(evt Event, jsonOutput bool) {
	if jsonOutput {
		data, _ := json.Marshal(evt)
		fmt.Println(string(data))
		return
	}

	timestamp := time.Now().Format("2006-01-02 15:04:05")
	displayData := string(evt.Data)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", timestamp, evt.Type, displayData)
}
