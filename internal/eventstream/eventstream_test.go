package eventstream

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
)

func TestDirectionOfDistinguishesLocalAndRemoteOrigin(t *testing.T) {
	if directionOf(nil) != Outbound {
		t.Errorf("expected nil origin to be outbound")
	}
	if directionOf(&transport.MessageOrigin{FromEndpoint: "peer-1"}) != Inbound {
		t.Errorf("expected populated origin to be inbound")
	}
}

func TestOnEventPublishesEnvelopeToBroadcast(t *testing.T) {
	hub := NewHub()
	bus := signalbus.New()
	hub.Subscribe(bus)

	host := domain.NewHost("eventstream1!h1", bus)
	bus.Publish(signalbus.Event{Kind: domain.KindCheckIntervalChanged, Object: host, Origin: nil})

	select {
	case env := <-hub.broadcast:
		if env.Method != "event::SetCheckInterval" {
			t.Errorf("expected SetCheckInterval method, got %q", env.Method)
		}
		if env.Direction != Outbound {
			t.Errorf("expected outbound direction, got %q", env.Direction)
		}
		if !strings.Contains(env.Object, "h1") {
			t.Errorf("expected object name to mention h1, got %q", env.Object)
		}
	case <-time.After(time.Second):
		t.Fatal("expected an envelope on the broadcast channel")
	}
}

func TestClientEnqueueDropsOldestWhenFull(t *testing.T) {
	c := &client{send: make(chan Envelope, 2)}
	c.enqueue(Envelope{Method: "a"})
	c.enqueue(Envelope{Method: "b"})
	c.enqueue(Envelope{Method: "c"})

	first := <-c.send
	second := <-c.send
	if first.Method != "b" || second.Method != "c" {
		t.Errorf("expected oldest entry dropped, got %q then %q", first.Method, second.Method)
	}
}

func TestServeWSUpgradesAndBroadcasts(t *testing.T) {
	hub := NewHub()
	go hub.Run()

	server := httptest.NewServer(http.HandlerFunc(hub.ServeWS))
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(time.Second)
	for hub.GetClientCount() == 0 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if hub.GetClientCount() != 1 {
		t.Fatalf("expected 1 registered client, got %d", hub.GetClientCount())
	}

	hub.broadcast <- Envelope{Method: "event::SetCheckInterval", Direction: Outbound}

	conn.SetReadDeadline(time.Now().Add(time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	if !strings.Contains(string(data), "SetCheckInterval") {
		t.Errorf("expected broadcast payload, got %q", string(data))
	}
}
