package configsvc

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/valuetree"
)

func TestCreateObjectWritesConfigAndActivates(t *testing.T) {
	bus := signalbus.New()
	dir := t.TempDir()
	svc := New(dir, bus)
	svc.RegisterConstructor("Host", func(fullName string, bus *signalbus.Bus) (ManagedObject, error) {
		return domain.NewHost(fullName, bus), nil
	})

	ok, errs := svc.CreateObject(domain.HostType, "api!host1", nil, valuetree.Dict{
		domain.FieldAddress: "192.0.2.1",
	})
	if !ok {
		t.Fatalf("CreateObject failed: %v", errs)
	}

	h, found := domain.ByNameHost("api!host1")
	if !found {
		t.Fatalf("expected host to be registered")
	}
	if h.Address() != "192.0.2.1" {
		t.Errorf("expected address 192.0.2.1, got %q", h.Address())
	}
	if !h.Active() {
		t.Errorf("expected host to be active after CreateObject")
	}

	path := svc.GetObjectConfigPath(domain.HostType, "api!host1")
	if _, err := os.Stat(path); err != nil {
		t.Errorf("expected config file to exist at %s: %v", path, err)
	}
}

func TestDeleteObjectRefusesNonAPIObjects(t *testing.T) {
	bus := signalbus.New()
	svc := New(t.TempDir(), bus)

	h := domain.NewHost("api!nonapi", bus)
	if err := h.Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}
	defer h.Unregister()

	ok, errs := svc.DeleteObject(domain.HostType, h)
	if ok {
		t.Errorf("expected DeleteObject to refuse an object not created via the API")
	}
	if len(errs) == 0 {
		t.Errorf("expected an explanatory error")
	}
}

func TestGetObjectConfigPathUsesLowercasePluralAndEscapesName(t *testing.T) {
	svc := New("/data", signalbus.New())
	path := svc.GetObjectConfigPath(domain.HostType, "weird/name")
	if filepath.Base(filepath.Dir(path)) != "hosts" {
		t.Errorf("expected parent dir 'hosts', got path %s", path)
	}
}
