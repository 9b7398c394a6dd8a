package beacon

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
)

type fakePeer struct {
	relayed []transport.Message
}

func (f *fakePeer) RelayMessage(origin *transport.MessageOrigin, scope transport.Scope, msg transport.Message, logged bool) {
	f.relayed = append(f.relayed, msg)
}

func (f *fakePeer) SyncSendMessage(destEndpoint string, msg transport.Message) error { return nil }

func TestTickRelaysInventoryOnFirstCall(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("beacon1!h1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()
	domain.NewService(h, "ping", bus)

	peer := &fakePeer{}
	s := New("ep1", "master", "", peer)

	s.tick()

	if len(peer.relayed) != 1 {
		t.Fatalf("expected 1 relayed message on first tick, got %d", len(peer.relayed))
	}
	if peer.relayed[0].Method != "event::UpdateRepository" {
		t.Errorf("expected UpdateRepository method, got %q", peer.relayed[0].Method)
	}

	var payload map[string]any
	if err := json.Unmarshal(peer.relayed[0].Params, &payload); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	hosts, ok := payload["hosts"].(map[string]any)
	if !ok {
		t.Fatalf("expected hosts map in payload, got %v", payload)
	}
	if _, ok := hosts["beacon1!h1"]; !ok {
		t.Errorf("expected beacon1!h1 in hosts, got %v", hosts)
	}
}

func TestTickRelaysEveryCallRegardlessOfUnchangedInventory(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("beacon2!h1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	peer := &fakePeer{}
	s := New("ep2", "master", "", peer)

	s.tick()
	s.tick()

	if len(peer.relayed) != 2 {
		t.Fatalf("expected every tick to relay, got %d relayed messages", len(peer.relayed))
	}
}

func TestTickRelaysAgainAfterInventoryChanges(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("beacon3!h1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	peer := &fakePeer{}
	s := New("ep3", "master", "", peer)

	s.tick()
	domain.NewService(h, "ping", bus)
	s.tick()

	if len(peer.relayed) != 2 {
		t.Fatalf("expected changed inventory to relay again, got %d messages", len(peer.relayed))
	}
}

func TestStartStopDoesNotPanic(t *testing.T) {
	s := New("ep4", "master", "", nil)
	s.Start()
	time.Sleep(10 * time.Millisecond)
	s.Stop()
}
