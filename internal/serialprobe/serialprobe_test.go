package serialprobe

import (
	"testing"
	"time"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

func TestParseLineSpaceSeparated(t *testing.T) {
	fields := parseLine("temperature=21.5 humidity=44.0")
	if fields["temperature"] != "21.5" || fields["humidity"] != "44.0" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestParseLineCommaSeparated(t *testing.T) {
	fields := parseLine("temperature=21.5,humidity=44.0")
	if fields["temperature"] != "21.5" || fields["humidity"] != "44.0" {
		t.Fatalf("unexpected fields: %v", fields)
	}
}

func TestParseLineEmpty(t *testing.T) {
	if fields := parseLine("   "); fields != nil {
		t.Fatalf("expected nil fields for blank line, got %v", fields)
	}
}

func TestApplyWritesCheckResultToConfiguredHost(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("probe1!rack1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	s := New(Config{Host: "probe1!rack1"})
	s.apply("temperature=19.0 humidity=55.0")

	cr := h.LastCheckResult()
	if cr == nil {
		t.Fatal("expected check result applied")
	}
	if len(cr.PerformanceData) != 2 {
		t.Errorf("expected 2 perfdata entries, got %d", len(cr.PerformanceData))
	}
}

func TestApplyIgnoresUnknownHost(t *testing.T) {
	s := New(Config{Host: "probe2!missing"})
	s.apply("temperature=19.0")
}

func TestSimulatedStartStopDoesNotPanic(t *testing.T) {
	bus := signalbus.New()
	h := domain.NewHost("probe3!rack1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	s := New(Config{Host: "probe3!rack1", Simulate: true, SimInterval: 5 * time.Millisecond})
	if err := s.Start(); err != nil {
		t.Fatalf("Start: %v", err)
	}
	time.Sleep(20 * time.Millisecond)
	s.Stop()

	if h.LastCheckResult() == nil {
		t.Error("expected simulated tick to produce a check result")
	}
}
