package domain

import (
	"sync"

	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

// Host is a monitored endpoint in its own right: it owns zero or more
// Services and is itself Checkable.
type Host struct {
	*Checkable

	smu      sync.RWMutex
	services map[string]*Service
}

// NewHost constructs a Host named fullName, registered nowhere yet —
// callers must call Register (embedded via *object.Base) before use.
func NewHost(fullName string, bus *signalbus.Bus) *Host {
	base := object.New(HostType, fullName, bus)
	h := &Host{
		Checkable: newCheckable(base, bus),
		services:  make(map[string]*Service),
	}
	base.SetSelf(h)
	base.SetDefault(FieldAddress, "")
	return h
}

func (h *Host) HostName() string         { return h.FullName() }
func (h *Host) ServiceShortName() string { return "" }

// Register adds h to the Host type index under its FullName.
func (h *Host) Register() error { return HostType.Register(h) }

// Unregister removes h from the Host type index.
func (h *Host) Unregister() { HostType.Unregister(h) }

// Address returns the configured network address.
func (h *Host) Address() string {
	v, _ := h.GetField(FieldAddress)
	s, _ := v.(string)
	return s
}

// ByNameHost looks up a registered Host.
func ByNameHost(name string) (*Host, bool) {
	obj, ok := HostType.ByName(name)
	if !ok {
		return nil, false
	}
	h, ok := obj.(*Host)
	return h, ok
}

// addService registers svc as one of h's children. Called by NewService.
func (h *Host) addService(svc *Service) {
	h.smu.Lock()
	defer h.smu.Unlock()
	h.services[svc.ShortName()] = svc
}

// ServiceByShortName resolves a child service by its short name, per
// apievents.cpp's Host::GetServiceByShortName.
func (h *Host) ServiceByShortName(short string) (*Service, bool) {
	h.smu.RLock()
	defer h.smu.RUnlock()
	svc, ok := h.services[short]
	return svc, ok
}

// Services returns every registered child service.
func (h *Host) Services() []*Service {
	h.smu.RLock()
	defer h.smu.RUnlock()
	out := make([]*Service, 0, len(h.services))
	for _, s := range h.services {
		out = append(out, s)
	}
	return out
}

// AllHosts returns every registered Host, used by the repository beacon
// (C8) to build its inventory.
func AllHosts() []*Host {
	var out []*Host
	for _, obj := range HostType.All() {
		if h, ok := obj.(*Host); ok {
			out = append(out, h)
		}
	}
	return out
}
