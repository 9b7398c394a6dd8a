package passive

import (
	"encoding/json"
	"testing"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

type fakeMessage struct {
	topic   string
	payload []byte
}

func (m *fakeMessage) Duplicate() bool   { return false }
func (m *fakeMessage) Qos() byte         { return 0 }
func (m *fakeMessage) Retained() bool    { return false }
func (m *fakeMessage) Topic() string     { return m.topic }
func (m *fakeMessage) MessageID() uint16 { return 0 }
func (m *fakeMessage) Payload() []byte   { return m.payload }
func (m *fakeMessage) Ack()              {}

func TestHandleAppliesCheckResultFromPayloadHostService(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("passive1!h1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register host: %v", err)
	}
	defer h.Unregister()
	svc := domain.NewService(h, "ping", bus)
	if err := svc.Register(); err != nil {
		t.Fatalf("Register service: %v", err)
	}
	defer svc.Unregister()

	s := New(nil)
	body, _ := json.Marshal(submission{
		Host:    "passive1!h1",
		Service: "ping",
		State:   int(domain.StateOK),
		Output:  "PING OK",
	})
	s.handle(nil, &fakeMessage{topic: "checkresults/passive1!h1/ping", payload: body})

	if svc.LastCheckResult() == nil || svc.LastCheckResult().Output != "PING OK" {
		t.Fatalf("expected check result applied, got %v", svc.LastCheckResult())
	}
}

func TestHandleFallsBackToTopicForHostService(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("passive2!h1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register host: %v", err)
	}
	defer h.Unregister()

	s := New(nil)
	body, _ := json.Marshal(submission{State: int(domain.StateCritical), Output: "down"})
	s.handle(nil, &fakeMessage{topic: "checkresults/passive2!h1/", payload: body})

	if h.LastCheckResult() == nil || h.LastCheckResult().State != domain.StateCritical {
		t.Fatalf("expected host check result applied from topic fallback, got %v", h.LastCheckResult())
	}
}

func TestHandleIgnoresUnknownTarget(t *testing.T) {
	s := New(nil)
	body, _ := json.Marshal(submission{Host: "nope!nope", State: int(domain.StateOK)})
	s.handle(nil, &fakeMessage{topic: "checkresults/nope!nope/", payload: body})
}

func TestHandleIgnoresMalformedPayload(t *testing.T) {
	s := New(nil)
	s.handle(nil, &fakeMessage{topic: "checkresults/x/y", payload: []byte("not json")})
}
