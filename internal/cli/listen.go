package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/spf13/cobra"

	"github.com/wordduel/wordduel/internal/model"
)

func newListenCmd() *cobra.Command {
	var (
		jsonOutput  bool
		interactive bool
	)

	cmd := &cobra.Command{
		Use:   "listen",
		Short: "Connect to the game server and stream events",
		Long: `Connect to the websocket endpoint and stream events in real-time.

With --interactive, commands read from stdin are sent to the server:

  online                     signal presence
  friends                    list online friends
  invite <userId>            invite a friend to a match
  accept <inviteId>          accept an invite
  reject <inviteId>          reject an invite
  ready <roomId>             signal readiness
  guess <roomId> <word>      submit a guess
  leave <roomId>             leave the room
  quit                       disconnect

Press Ctrl+C to disconnect.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return listen(jsonOutput, interactive)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Output events as JSON lines")
	cmd.Flags().BoolVarP(&interactive, "interactive", "i", false, "Read commands from stdin")

	return cmd
}

// WireEvent is a received frame with its arrival time
type WireEvent struct {
	Time  time.Time       `json:"time"`
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func listen(jsonOutput, interactive bool) error {
	if cfg.Token == "" {
		return fmt.Errorf("no token; run 'wordduel token' first or pass --token")
	}

	url, err := client.WebsocketURL()
	if err != nil {
		return err
	}

	conn, resp, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		if resp != nil {
			return fmt.Errorf("connection refused: HTTP %d", resp.StatusCode)
		}
		return fmt.Errorf("connection failed: %w", err)
	}
	defer func() { _ = conn.Close() }()
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}

	if !jsonOutput {
		fmt.Printf("Connected to %s\n", cfg.ServerURL)
	}

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan error, 1)
	go func() {
		for {
			var frame model.Frame
			if err := conn.ReadJSON(&frame); err != nil {
				done <- err
				return
			}
			printFrame(frame, jsonOutput)
		}
	}()

	if interactive {
		go readCommands(conn)
	}

	select {
	case <-sigCh:
		if !jsonOutput {
			fmt.Println("\nDisconnected")
		}
		return nil
	case err := <-done:
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			if !jsonOutput {
				fmt.Println("Disconnected")
			}
			return nil
		}
		return fmt.Errorf("stream error: %w", err)
	}
}

// readCommands parses stdin lines into outbound frames
func readCommands(conn *websocket.Conn) {
	scanner := bufio.NewScanner(os.Stdin)
	for scanner.Scan() {
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		frame, err := commandToFrame(fields)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			continue
		}
		if frame == nil {
			// quit
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}

		if err := conn.WriteJSON(frame); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %s\n", err)
			return
		}
	}
}

func commandToFrame(fields []string) (*model.Frame, error) {
	build := func(event model.EventType, payload any) (*model.Frame, error) {
		frame, err := model.NewFrame(event, payload)
		if err != nil {
			return nil, err
		}
		return &frame, nil
	}

	switch cmd, args := fields[0], fields[1:]; cmd {
	case "online":
		return build(model.EventSetOnline, nil)
	case "friends":
		return build(model.EventGetOnlineFriends, nil)
	case "invite":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: invite <userId>")
		}
		return build(model.EventInvite, model.InviteRequest{ToID: model.UserID(args[0])})
	case "accept":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: accept <inviteId>")
		}
		return build(model.EventAcceptInvite, model.InviteActionRequest{InviteID: model.InviteID(args[0])})
	case "reject":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: reject <inviteId>")
		}
		return build(model.EventRejectInvite, model.InviteActionRequest{InviteID: model.InviteID(args[0])})
	case "ready":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: ready <roomId>")
		}
		return build(model.EventReady, model.RoomRequest{RoomID: model.RoomID(args[0])})
	case "guess":
		if len(args) != 2 {
			return nil, fmt.Errorf("usage: guess <roomId> <word>")
		}
		return build(model.EventGuess, model.GuessRequest{RoomID: model.RoomID(args[0]), Guess: args[1]})
	case "leave":
		if len(args) != 1 {
			return nil, fmt.Errorf("usage: leave <roomId>")
		}
		return build(model.EventLeave, model.RoomRequest{RoomID: model.RoomID(args[0])})
	case "quit", "exit":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown command: %s", cmd)
	}
}

func printFrame(frame model.Frame, jsonOutput bool) {
	now := time.Now()

	if jsonOutput {
		evt := WireEvent{
			Time:  now,
			Event: string(frame.Event),
			Data:  frame.Data,
		}
		jsonData, _ := json.Marshal(evt)
		fmt.Println(string(jsonData))
		return
	}

	timestamp := now.Format("2006-01-02 15:04:05")
	displayData := string(frame.Data)
	if len(displayData) > 100 {
		displayData = displayData[:100] + "..."
	}
	fmt.Printf("[%s] %s: %s\n", timestamp, frame.Event, displayData)
}
