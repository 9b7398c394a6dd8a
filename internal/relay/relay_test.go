package relay

import (
	"encoding/json"
	"testing"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
)

type fakePeer struct {
	relayed []transport.Message
	origins []*transport.MessageOrigin
}

func (f *fakePeer) RelayMessage(origin *transport.MessageOrigin, scope transport.Scope, msg transport.Message, logged bool) {
	f.relayed = append(f.relayed, msg)
	f.origins = append(f.origins, origin)
}

func (f *fakePeer) SyncSendMessage(destEndpoint string, msg transport.Message) error { return nil }

func TestRelayBuildsEventMessageWithHost(t *testing.T) {
	bus := signalbus.New()
	peer := &fakePeer{}
	svc := New(peer)
	svc.Subscribe(bus)

	h := domain.NewHost("relaytest!h1", bus)
	h.SetZoneName("z1")
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	if err := h.SetCheckInterval(90, nil); err != nil {
		t.Fatalf("SetCheckInterval: %v", err)
	}

	if len(peer.relayed) != 1 {
		t.Fatalf("expected 1 relayed message, got %d", len(peer.relayed))
	}
	msg := peer.relayed[0]
	if msg.Method != "event::SetCheckInterval" {
		t.Errorf("expected method event::SetCheckInterval, got %q", msg.Method)
	}

	var params map[string]any
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	if params["host"] != "relaytest!h1" {
		t.Errorf("expected host param, got %v", params["host"])
	}
	if _, hasService := params["service"]; hasService {
		t.Errorf("did not expect service param for a Host")
	}
}

func TestRelayStandaloneModeDoesNothing(t *testing.T) {
	bus := signalbus.New()
	svc := New(nil)
	svc.Subscribe(bus)

	h := domain.NewHost("relaytest!h2", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	if err := h.SetCheckInterval(30, nil); err != nil {
		t.Fatalf("SetCheckInterval: %v", err)
	}
}
