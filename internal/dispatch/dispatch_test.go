package dispatch

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
)

type fakePeer struct {
	relayed []transport.Message
	synced  map[string][]transport.Message
}

func newFakePeer() *fakePeer {
	return &fakePeer{synced: make(map[string][]transport.Message)}
}

func (f *fakePeer) RelayMessage(origin *transport.MessageOrigin, scope transport.Scope, msg transport.Message, logged bool) {
	f.relayed = append(f.relayed, msg)
}

func (f *fakePeer) SyncSendMessage(destEndpoint string, msg transport.Message) error {
	f.synced[destEndpoint] = append(f.synced[destEndpoint], msg)
	return nil
}

func setupZones(t *testing.T, bus *signalbus.Bus) {
	t.Helper()
	parent := domain.NewZone("master", bus)
	if err := parent.Register(); err != nil {
		t.Fatalf("Register master: %v", err)
	}
	t.Cleanup(parent.Unregister)
	child := domain.NewZone("satellite", bus)
	child.SetParent(parent)
	if err := child.Register(); err != nil {
		t.Fatalf("Register satellite: %v", err)
	}
	t.Cleanup(child.Unregister)
	domain.SetZoneMembers("master", []string{"master-1"})
	domain.SetZoneMembers("satellite", []string{"sat-1"})
}

func newTarget(t *testing.T, bus *signalbus.Bus, name, zone string) *domain.Host {
	t.Helper()
	h := domain.NewHost(name, bus)
	h.SetZoneName(zone)
	if err := h.Register(); err != nil {
		t.Fatalf("Register host: %v", err)
	}
	t.Cleanup(h.Unregister)
	return h
}

func TestDispatchSimpleSetterAppliesAndAuthorizes(t *testing.T) {
	bus := signalbus.New()
	setupZones(t, bus)
	h := newTarget(t, bus, "dispatch1!host1", "satellite")

	d := New(Config{SelfEndpoint: "sat-1", LocalZone: "satellite", StateDir: t.TempDir(), Product: "zonecore"}, bus, nil, nil)

	params, _ := json.Marshal(map[string]any{"host": "dispatch1!host1", "interval": 120.0})
	d.Dispatch(&transport.MessageOrigin{FromEndpoint: "master-1", FromZone: "master"}, transport.Message{
		Method: "event::SetCheckInterval",
		Params: params,
	})

	if got := h.CheckInterval(); got != 120.0 {
		t.Errorf("expected check interval 120, got %v", got)
	}
}

func TestDispatchRejectsUnauthorizedZone(t *testing.T) {
	bus := signalbus.New()
	setupZones(t, bus)
	h := newTarget(t, bus, "dispatch2!host1", "master")

	d := New(Config{SelfEndpoint: "master-1", LocalZone: "master", StateDir: t.TempDir(), Product: "zonecore"}, bus, nil, nil)

	params, _ := json.Marshal(map[string]any{"host": "dispatch2!host1", "interval": 50.0})
	d.Dispatch(&transport.MessageOrigin{FromEndpoint: "sat-1", FromZone: "satellite"}, transport.Message{
		Method: "event::SetCheckInterval",
		Params: params,
	})

	if got := h.CheckInterval(); got == 50.0 {
		t.Errorf("expected check interval to remain unchanged, got %v", got)
	}
}

func TestDispatchUpdateRepositoryWritesFileAndRelays(t *testing.T) {
	bus := signalbus.New()
	setupZones(t, bus)
	peer := newFakePeer()
	stateDir := t.TempDir()

	d := New(Config{SelfEndpoint: "master-1", LocalZone: "master", StateDir: stateDir, Product: "zonecore"}, bus, peer, nil)

	params, _ := json.Marshal(map[string]any{"host": "dispatch3!host1", "checksums": []any{"a"}})
	d.Dispatch(&transport.MessageOrigin{FromEndpoint: "sat-1", FromZone: "satellite"}, transport.Message{
		Method: "event::UpdateRepository",
		Params: params,
	})

	repoDir := filepath.Join(stateDir, "lib", "zonecore", "api", "repository")
	entries, err := os.ReadDir(repoDir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 repository file, got %d", len(entries))
	}
	if len(peer.relayed) != 1 {
		t.Fatalf("expected UpdateRepository to be re-relayed, got %d messages", len(peer.relayed))
	}
}

func TestDispatchExecuteCommandRefusesUnknownCommand(t *testing.T) {
	bus := signalbus.New()
	setupZones(t, bus)
	peer := newFakePeer()

	d := New(Config{SelfEndpoint: "sat-1", LocalZone: "satellite", StateDir: t.TempDir(), Product: "zonecore", AcceptCommands: true}, bus, peer, nil)

	params, _ := json.Marshal(map[string]any{"host": "unknownhost", "command": "check_nope"})
	d.Dispatch(&transport.MessageOrigin{FromEndpoint: "master-1", FromZone: "master"}, transport.Message{
		Method: "event::ExecuteCommand",
		Params: params,
	})

	msgs := peer.synced["master-1"]
	if len(msgs) != 1 {
		t.Fatalf("expected 1 synthetic reply, got %d", len(msgs))
	}
	var p map[string]any
	if err := json.Unmarshal(msgs[0].Params, &p); err != nil {
		t.Fatalf("unmarshal params: %v", err)
	}
	cr, ok := p["cr"].(map[string]any)
	if !ok {
		t.Fatalf("expected cr field in reply, got %v", p)
	}
	if int(cr["state"].(float64)) != int(domain.StateUnknown) {
		t.Errorf("expected Unknown state, got %v", cr["state"])
	}
}

func TestDispatchExecuteCommandDiscardsNonAncestorZoneSilently(t *testing.T) {
	bus := signalbus.New()
	setupZones(t, bus)
	peer := newFakePeer()

	// self is "master", sender is "satellite" — a satellite is never an
	// ancestor of master, so the command is discarded without a reply.
	d := New(Config{SelfEndpoint: "master-1", LocalZone: "master", StateDir: t.TempDir(), Product: "zonecore", AcceptCommands: true}, bus, peer, nil)

	params, _ := json.Marshal(map[string]any{"host": "anyhost", "command": "check_ping"})
	d.Dispatch(&transport.MessageOrigin{FromEndpoint: "sat-1", FromZone: "satellite"}, transport.Message{
		Method: "event::ExecuteCommand",
		Params: params,
	})

	if msgs := peer.synced["sat-1"]; len(msgs) != 0 {
		t.Fatalf("expected no reply to an unauthorized zone, got %d", len(msgs))
	}
}
