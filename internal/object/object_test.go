package object

import (
	"testing"

	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/valuetree"
)

func newTestObject(t *testing.T, typeName string) *Base {
	t.Helper()
	typ := objtype.RegisterType(typeName, typeName+"s", []objtype.FieldDescriptor{
		{Name: "vars", Class: objtype.Config},
		{Name: "check_interval", Class: objtype.Config},
		{Name: "last_check", Class: objtype.State},
	}, nil)
	return New(typ, "obj1", signalbus.New())
}

func TestNestedModificationScenario(t *testing.T) {
	b := newTestObject(t, "NestedScenarioType")
	b.SetDefault("vars", map[string]any{})

	if err := b.ModifyAttribute("vars.os", "linux"); err != nil {
		t.Fatalf("ModifyAttribute 1: %v", err)
	}
	if err := b.ModifyAttribute("vars.os", "bsd"); err != nil {
		t.Fatalf("ModifyAttribute 2: %v", err)
	}

	vars, _ := b.GetField("vars")
	vd := vars.(valuetree.Dict)
	if vd["os"] != "bsd" {
		t.Errorf("vars[os] = %v, want bsd", vd["os"])
	}

	orig := b.OriginalAttributes()
	if len(orig) != 1 {
		t.Fatalf("OriginalAttributes has %d entries, want 1", len(orig))
	}
	snap, ok := orig["vars.os"]
	if !ok {
		t.Fatalf("missing original-attributes entry for vars.os")
	}
	if snap != nil {
		if m, ok := snap.(valuetree.Dict); !ok || len(m) != 0 {
			t.Errorf("original-attributes[vars.os] = %v, want empty map (value of vars before first call)", snap)
		}
	}

	if b.Version() != 2 {
		t.Errorf("version = %d, want 2", b.Version())
	}
}

func TestVersionIncrementsPerModify(t *testing.T) {
	b := newTestObject(t, "VersionScenarioType")
	start := b.Version()
	for i := 0; i < 5; i++ {
		if err := b.ModifyAttribute("check_interval", i); err != nil {
			t.Fatalf("ModifyAttribute: %v", err)
		}
	}
	if got := b.Version(); got != start+5 {
		t.Errorf("version = %d, want %d", got, start+5)
	}
}

func TestIsAttributeModifiedMatchesTracking(t *testing.T) {
	b := newTestObject(t, "TrackingScenarioType")
	if b.IsAttributeModified("check_interval") {
		t.Errorf("field should not be modified before any ModifyAttribute call")
	}
	_ = b.ModifyAttribute("check_interval", 60)
	if !b.IsAttributeModified("check_interval") {
		t.Errorf("field should be modified after ModifyAttribute")
	}
}

func TestModifyThenRestoreReturnsPriorFieldValue(t *testing.T) {
	b := newTestObject(t, "RestoreScenarioType")
	b.SetDefault("vars", map[string]any{})
	_ = b.ModifyAttribute("vars.os", "linux")
	_ = b.ModifyAttribute("vars.os", "bsd")

	before, _ := b.GetField("vars")
	_ = before

	if err := b.RestoreAttribute("vars.os"); err != nil {
		t.Fatalf("RestoreAttribute: %v", err)
	}

	vars, _ := b.GetField("vars")
	vd, ok := vars.(valuetree.Dict)
	if !ok || len(vd) != 0 {
		t.Errorf("vars after RestoreAttribute = %v, want the empty value observed before the first modification", vars)
	}
}

func TestModifyAttributeFailsOnNonMappingIntermediate(t *testing.T) {
	b := newTestObject(t, "InvalidIntermediateType")
	if err := b.ModifyAttribute("check_interval", "not-a-map"); err != nil {
		t.Fatalf("setup ModifyAttribute: %v", err)
	}
	if err := b.ModifyAttribute("check_interval.nested", "x"); err == nil {
		t.Errorf("expected ValidationError when an intermediate value is not a mapping")
	}
}

func TestActivationLifecycle(t *testing.T) {
	b := newTestObject(t, "LifecycleScenarioType")

	if err := b.Activate(); err != nil {
		t.Fatalf("Activate: %v", err)
	}
	if !b.Active() {
		t.Errorf("object should be active after Activate")
	}
	if b.Paused() {
		t.Errorf("object should not be paused immediately after Activate")
	}

	if err := b.Deactivate(); err != nil {
		t.Fatalf("Deactivate: %v", err)
	}
	if b.Active() {
		t.Errorf("object should not be active after Deactivate")
	}
}

func TestActivateTwicePanics(t *testing.T) {
	b := newTestObject(t, "DoubleActivateType")
	_ = b.Activate()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic on double Activate")
		}
	}()
	_ = b.Activate()
}
