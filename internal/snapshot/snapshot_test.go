package snapshot

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

func TestDumpAndRestoreRoundTrip(t *testing.T) {
	bus := signalbus.New()

	h := domain.NewHost("snaptest!host1", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	if err := h.SetNextCheck(12345, nil); err != nil {
		t.Fatalf("SetNextCheck: %v", err)
	}

	dir := t.TempDir()
	path := filepath.Join(dir, "state.dump")

	if err := DumpObjects(path, objtype.State); err != nil {
		t.Fatalf("DumpObjects: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected dump file to exist: %v", err)
	}

	// Reset locally before restoring, so the round trip is observable.
	if err := h.SetNextCheck(0, nil); err != nil {
		t.Fatalf("reset SetNextCheck: %v", err)
	}

	if err := RestoreObjects(path, objtype.State, 4); err != nil {
		t.Fatalf("RestoreObjects: %v", err)
	}

	if h.NextCheck() != 12345 {
		t.Errorf("expected next_check restored to 12345, got %v", h.NextCheck())
	}
	if !h.StateLoaded() {
		t.Errorf("expected StateLoaded to be true after restore")
	}
}

func TestRestoreObjectsMissingFileIsFatal(t *testing.T) {
	if err := RestoreObjects("/nonexistent/path/state.dump", objtype.State, 2); err == nil {
		t.Errorf("expected error for unreadable file")
	}
}
