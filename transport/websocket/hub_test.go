package websocket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/wricardo/tilematch/game/engine"
)

func newTestClient(hub *Hub, sessionID string) *Client {
	return &Client{hub: hub, sessionID: sessionID, send: make(chan []byte, 256)}
}

func TestHubRegisterClient(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "test-session")

	hub.registerClient(client)

	if !hub.sessions["test-session"][client] {
		t.Error("Client was not registered in session")
	}
	if hub.ClientCount("test-session") != 1 {
		t.Errorf("Expected 1 client in session, got %d", hub.ClientCount("test-session"))
	}
}

func TestHubUnregisterClient(t *testing.T) {
	hub := NewHub(nil)
	client1 := newTestClient(hub, "s")
	client2 := newTestClient(hub, "s")

	hub.registerClient(client1)
	hub.registerClient(client2)
	hub.unregisterClient(client1)

	if hub.ClientCount("s") != 1 {
		t.Errorf("Expected 1 client remaining, got %d", hub.ClientCount("s"))
	}
	if _, ok := <-client1.send; ok {
		t.Error("Expected client1 send channel to be closed")
	}

	hub.unregisterClient(client2)
	if _, exists := hub.sessions["s"]; exists {
		t.Error("Session should have been cleaned up after last client unregistered")
	}

	// unregistering twice is a no-op
	hub.unregisterClient(client2)
}

func TestHubBroadcastMessage(t *testing.T) {
	hub := NewHub(nil)
	client := newTestClient(hub, "broadcast-test")
	other := newTestClient(hub, "other")
	hub.registerClient(client)
	hub.registerClient(other)

	hub.broadcastMessage(&Message{
		SessionID: "broadcast-test",
		Event:     EventStateUpdate,
		State:     &engine.State{Name: "corner", TileSide: 100},
	})

	select {
	case data := <-client.send:
		var message Message
		if err := json.Unmarshal(data, &message); err != nil {
			t.Fatalf("Failed to unmarshal message: %v", err)
		}
		if message.Event != EventStateUpdate {
			t.Errorf("Expected event %s, got %s", EventStateUpdate, message.Event)
		}
		if message.State == nil || message.State.Name != "corner" {
			t.Errorf("State not correctly transmitted: %+v", message.State)
		}
	default:
		t.Error("No message queued for client")
	}

	select {
	case <-other.send:
		t.Error("Client in another session received the message")
	default:
	}
}

func TestHubSendWithoutClients(t *testing.T) {
	hub := NewHub(nil)
	hub.BroadcastEvent("nobody", EventValidated, true)

	if len(hub.broadcast) != 0 {
		t.Error("Messages for sessions without clients should be dropped")
	}
}

func TestWebSocketBroadcast(t *testing.T) {
	hub := NewHub(nil)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hub.Run(ctx)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hub.ServeWS(w, r, r.URL.Query().Get("session"))
	}))
	defer server.Close()

	wsURL := "ws" + strings.TrimPrefix(server.URL, "http") + "?session=ws-test"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("Failed to connect to WebSocket: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount("ws-test") == 0 {
		if time.Now().After(deadline) {
			t.Fatal("Client was never registered")
		}
		time.Sleep(10 * time.Millisecond)
	}

	hub.BroadcastToSession("ws-test", &engine.State{Name: "ab"})
	hub.BroadcastEvent("ws-test", EventPuzzleSelected, map[string]string{"puzzle": "line"})

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	for _, want := range []string{EventStateUpdate, EventPuzzleSelected} {
		var message Message
		if err := conn.ReadJSON(&message); err != nil {
			t.Fatalf("Failed to read message: %v", err)
		}
		if message.Event != want {
			t.Errorf("Expected event %s, got %s", want, message.Event)
		}
		if message.SessionID != "ws-test" {
			t.Errorf("Expected session ws-test, got %s", message.SessionID)
		}
	}

	cancel()
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Error("Expected the connection to close when the hub stops")
	}
}
