// Package beacon is C8: a periodic repository advertisement that tells
// the local zone's peers which hosts and services this endpoint knows
// about, grounded on
// original_source/lib/icinga/apievents.cpp's RepositoryTimerHandler.
package beacon

import (
	"encoding/json"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("beacon")

const tickInterval = 30 * time.Second

// Service periodically advertises this endpoint's local inventory to its
// zone. A nil PeerListener makes it a no-op ticker.
type Service struct {
	selfEndpoint string
	localZone    string
	parentZone   string
	peer         transport.PeerListener

	stopCh chan struct{}
	wg     sync.WaitGroup
}

func New(selfEndpoint, localZone, parentZone string, peer transport.PeerListener) *Service {
	return &Service{
		selfEndpoint: selfEndpoint,
		localZone:    localZone,
		parentZone:   parentZone,
		peer:         peer,
		stopCh:       make(chan struct{}),
	}
}

// Start fires an immediate tick, then ticks every 30 seconds until Stop.
func (s *Service) Start() {
	s.wg.Add(1)
	go s.run()
}

func (s *Service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
}

func (s *Service) run() {
	defer s.wg.Done()

	s.tick()

	ticker := time.NewTicker(tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tick()
		}
	}
}

// inventory is the {hostName -> [serviceNames]} shape the repository
// message carries.
func (s *Service) inventory() map[string][]string {
	out := make(map[string][]string)
	for _, h := range domain.AllHosts() {
		names := make([]string, 0)
		for _, svc := range h.Services() {
			names = append(names, svc.ShortName())
		}
		sort.Strings(names)
		out[h.HostName()] = names
	}
	return out
}

func (s *Service) tick() {
	if s.peer == nil {
		return
	}

	inv := s.inventory()

	payload := map[string]any{
		"seen":     float64(time.Now().Unix()),
		"endpoint": s.selfEndpoint,
		"zone":     s.localZone,
		"hosts":    inv,
	}
	if s.parentZone != "" {
		payload["parent_zone"] = s.parentZone
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Warning("marshal repository payload failed", zap.Error(err))
		return
	}

	msg := transport.Message{JSONRPC: "2.0", Method: "event::UpdateRepository", Params: body}
	s.peer.RelayMessage(nil, localZoneScope{s.localZone}, msg, false)
}

type localZoneScope struct{ zone string }

func (l localZoneScope) ZoneName() string { return l.zone }
