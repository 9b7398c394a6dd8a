package serializer

import (
	"testing"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

func TestSerializeFiltersByMask(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("test!host1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	if err := h.SetCheckInterval(120, nil); err != nil {
		t.Fatalf("SetCheckInterval: %v", err)
	}

	configOnly, err := Serialize(h, objtype.Config)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, ok := configOnly[domain.FieldCheckInterval]; !ok {
		t.Errorf("expected check_interval in config-masked output")
	}
	if _, ok := configOnly[domain.FieldLastCheckResult]; ok {
		t.Errorf("did not expect last_check_result (a State field) in config-masked output")
	}

	stateOnly, err := Serialize(h, objtype.State)
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	if _, ok := stateOnly[domain.FieldCheckInterval]; ok {
		t.Errorf("did not expect check_interval in state-masked output")
	}
}

func TestDeserializeAppliesKnownFieldsAndSkipsUnknownWhenSafe(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("test!host2", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	tree := map[string]any{
		domain.FieldCheckInterval: 300.0,
		"not_a_real_field":        "ignored",
	}

	if err := Deserialize(h, tree, true, objtype.Config); err != nil {
		t.Fatalf("Deserialize with safe=true should not error: %v", err)
	}
	if h.CheckInterval() != 300.0 {
		t.Errorf("expected check_interval 300, got %v", h.CheckInterval())
	}

	if err := Deserialize(h, tree, false, objtype.Config); err == nil {
		t.Errorf("expected error for unknown field with safe=false")
	}
}
