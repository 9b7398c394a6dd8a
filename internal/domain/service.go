package domain

import (
	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

// Service is a single checkable attached to a Host, addressed by the
// composite "host!service" name (see serviceComposer).
type Service struct {
	*Checkable

	host      *Host
	shortName string
}

// NewService constructs a Service on host named shortName. The object's
// FullName is the composite "host!shortName" form the serviceComposer
// decomposes.
func NewService(host *Host, shortName string, bus *signalbus.Bus) *Service {
	fullName := host.FullName() + "!" + shortName
	base := object.New(ServiceType, fullName, bus)
	s := &Service{
		Checkable: newCheckable(base, bus),
		host:      host,
		shortName: shortName,
	}
	base.SetSelf(s)
	host.addService(s)
	return s
}

func (s *Service) HostName() string         { return s.host.FullName() }
func (s *Service) ServiceShortName() string { return s.shortName }
func (s *Service) ShortName() string        { return s.shortName }
func (s *Service) Host() *Host              { return s.host }

// Register adds s to the Service type index under its composite FullName.
func (s *Service) Register() error { return ServiceType.Register(s) }

// Unregister removes s from the Service type index.
func (s *Service) Unregister() { ServiceType.Unregister(s) }

// ByNameService looks up a registered Service by composite full name.
func ByNameService(fullName string) (*Service, bool) {
	obj, ok := ServiceType.ByName(fullName)
	if !ok {
		return nil, false
	}
	s, ok := obj.(*Service)
	return s, ok
}
