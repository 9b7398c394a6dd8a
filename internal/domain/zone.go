package domain

import (
	"sync"

	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

// ZoneScoped is anything a Zone's access check can be asked about:
// Checkable, Notification, User, and the command types all qualify via
// their owning zone.
type ZoneScoped interface {
	ZoneName() string
}

// Zone is an authorization and routing unit; zones form a tree via
// Parent. It is process-global and rarely mutated after startup; its
// parent link and child set are guarded by mu.
type Zone struct {
	*object.Base

	mu       sync.RWMutex
	parent   string
	children map[string]bool
}

func NewZone(name string, bus *signalbus.Bus) *Zone {
	base := object.New(ZoneType, name, bus)
	z := &Zone{Base: base, children: make(map[string]bool)}
	base.SetSelf(z)
	return z
}

// Register adds z to the Zone type index.
func (z *Zone) Register() error { return ZoneType.Register(z) }

// Unregister removes z from the Zone type index.
func (z *Zone) Unregister() { ZoneType.Unregister(z) }

// SetParent records the parent zone name and updates the parent's child
// set, so IsChildOf walks a real tree rather than following a dangling
// string.
func (z *Zone) SetParent(parent *Zone) {
	z.mu.Lock()
	if parent != nil {
		z.parent = parent.FullName()
	} else {
		z.parent = ""
	}
	z.mu.Unlock()

	if parent != nil {
		parent.mu.Lock()
		parent.children[z.FullName()] = true
		parent.mu.Unlock()
	}
}

func (z *Zone) Parent() (*Zone, bool) {
	z.mu.RLock()
	name := z.parent
	z.mu.RUnlock()
	if name == "" {
		return nil, false
	}
	return ByNameZone(name)
}

// IsChildOf reports whether z descends from ancestor anywhere up the
// parent chain — used by C9's stricter authorization ("a parent may
// command a child, never vice-versa").
func (z *Zone) IsChildOf(ancestor *Zone) bool {
	if ancestor == nil {
		return false
	}
	cur := z
	for {
		p, ok := cur.Parent()
		if !ok {
			return false
		}
		if p.FullName() == ancestor.FullName() {
			return true
		}
		cur = p
	}
}

// endpointsMu guards the zone -> member-endpoint-names association,
// populated through SetZoneMembers by cmd/zonecored's startup wiring.
var (
	endpointsMu sync.RWMutex
	zoneMembers = make(map[string][]string)
)

// SetZoneMembers records the endpoint names belonging to zone.
func SetZoneMembers(zone string, endpoints []string) {
	endpointsMu.Lock()
	defer endpointsMu.Unlock()
	zoneMembers[zone] = append([]string(nil), endpoints...)
}

// Endpoints returns the endpoint names belonging to zone, satisfying
// transport.ZoneDirectory.
func Endpoints(zone string) []string {
	endpointsMu.RLock()
	defer endpointsMu.RUnlock()
	return append([]string(nil), zoneMembers[zone]...)
}

// EndpointZone reverse-looks-up the zone an endpoint belongs to, used by
// C7's dispatcher to populate MessageOrigin.FromZone when the transport
// itself has no endpoint->zone direction to consult (see
// internal/transport.Listener.endpointZone).
func EndpointZone(endpoint string) string {
	endpointsMu.RLock()
	defer endpointsMu.RUnlock()
	for zone, members := range zoneMembers {
		for _, m := range members {
			if m == endpoint {
				return zone
			}
		}
	}
	return ""
}

// CanAccessObject reports whether z is permitted to mutate obj: obj's own
// zone must be z itself or a descendant of z. This is the "zone access"
// rule every C7 handler consults before applying an inbound mutation.
func (z *Zone) CanAccessObject(obj ZoneScoped) bool {
	objZone, ok := ByNameZone(obj.ZoneName())
	if !ok {
		return false
	}
	if objZone.FullName() == z.FullName() {
		return true
	}
	return objZone.IsChildOf(z)
}

func ByNameZone(name string) (*Zone, bool) {
	obj, ok := ZoneType.ByName(name)
	if !ok {
		return nil, false
	}
	z, ok := obj.(*Zone)
	return z, ok
}

// IsChildOfName is a convenience wrapper over IsChildOf for callers that
// only have zone names (transport.ZoneDirectory's signature), used by
// C9's authorization check.
func IsChildOfName(childZone, ancestorZone string) bool {
	child, ok := ByNameZone(childZone)
	if !ok {
		return false
	}
	ancestor, ok := ByNameZone(ancestorZone)
	if !ok {
		return false
	}
	return child.IsChildOf(ancestor)
}

// Directory adapts the package-level zone registry to
// transport.ZoneDirectory.
type Directory struct{}

func (Directory) Endpoints(zoneName string) []string { return Endpoints(zoneName) }

func (Directory) IsChildOf(childZone, ancestorZone string) bool {
	return IsChildOfName(childZone, ancestorZone)
}
