package domain

import (
	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

// Endpoint is a named peer process, belonging to exactly one Zone.
type Endpoint struct {
	*object.Base

	zoneName string
}

func NewEndpoint(name, zoneName string, bus *signalbus.Bus) *Endpoint {
	base := object.New(EndpointType, name, bus)
	e := &Endpoint{Base: base, zoneName: zoneName}
	base.SetSelf(e)
	return e
}

func (e *Endpoint) ZoneName() string { return e.zoneName }

// Register adds e to the Endpoint type index.
func (e *Endpoint) Register() error { return EndpointType.Register(e) }

// Unregister removes e from the Endpoint type index.
func (e *Endpoint) Unregister() { EndpointType.Unregister(e) }

func ByNameEndpoint(name string) (*Endpoint, bool) {
	obj, ok := EndpointType.ByName(name)
	if !ok {
		return nil, false
	}
	e, ok := obj.(*Endpoint)
	return e, ok
}
