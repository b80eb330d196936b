package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/jadrxma/presentation-go/internal/domain"
)

func dialHub(t *testing.T, hub *Hub) (*websocket.Conn, func()) {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(hub.HandleWS))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("expected the websocket dial to succeed, got %v", err)
	}

	// Registration happens in the handler goroutine after the handshake.
	deadline := time.Now().Add(2 * time.Second)
	for hub.ClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if hub.ClientCount() == 0 {
		conn.Close()
		srv.Close()
		t.Fatal("expected the client to register with the hub")
	}

	return conn, func() {
		conn.Close()
		srv.Close()
	}
}

func TestHubBroadcastsJobEvents(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	hub.Publish(domain.JobEvent{
		JobID:  "job-1",
		DeckID: "deck-1",
		Phase:  domain.JobPhaseRendering,
		At:     time.Now(),
	})

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, msg, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("expected a broadcast frame, got %v", err)
	}

	var event domain.JobEvent
	if err := json.Unmarshal(msg, &event); err != nil {
		t.Fatalf("expected a JSON job event, got %v", err)
	}
	if event.JobID != "job-1" || event.Phase != domain.JobPhaseRendering {
		t.Fatalf("unexpected event: %+v", event)
	}
}

func TestHubCloseDisconnectsClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn, cleanup := dialHub(t, hub)
	defer cleanup()

	hub.Close()
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients after close, got %d", hub.ClientCount())
	}

	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	if _, _, err := conn.ReadMessage(); err == nil {
		t.Fatal("expected the connection to be closed")
	}
}

func TestHubPublishWithoutClients(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// Publishing into an empty hub must be a no-op, not a panic.
	hub.Publish(domain.JobEvent{JobID: "job-1", Phase: domain.JobPhaseGenerated, At: time.Now()})
	if hub.ClientCount() != 0 {
		t.Fatalf("expected no clients, got %d", hub.ClientCount())
	}
}
