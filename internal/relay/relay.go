// Package relay is C6: subscribes to every checkable/notification/
// custom-var signal at startup and turns each into an outbound
// JSON-RPC event message, per apievents.cpp's
// REGISTER_APIFUNCTION-driven *ChangedAPIHandler table.
package relay

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("relay")

// Service holds the peer listener C6 relays through. A nil listener
// means standalone mode: every signal is observed and silently dropped.
type Service struct {
	peer transport.PeerListener
}

func New(peer transport.PeerListener) *Service {
	return &Service{peer: peer}
}

// Subscribe wires every relayed signal kind on bus to this service's
// handler. Called once at startup.
func (s *Service) Subscribe(bus *signalbus.Bus) {
	kinds := []signalbus.Kind{
		domain.KindCheckResult,
		domain.KindNextCheckChanged,
		domain.KindNextNotificationChanged,
		domain.KindForceNextCheckChanged,
		domain.KindForceNextNotifChanged,
		domain.KindEnableActiveChecksChanged,
		domain.KindEnablePassiveChecksChanged,
		domain.KindEnableNotificationsChanged,
		domain.KindEnableFlappingChanged,
		domain.KindEnableEventHandlerChanged,
		domain.KindEnablePerfdataChanged,
		domain.KindCheckIntervalChanged,
		domain.KindRetryIntervalChanged,
		domain.KindMaxCheckAttemptsChanged,
		domain.KindEventCommandChanged,
		domain.KindCheckCommandChanged,
		domain.KindCheckPeriodChanged,
		domain.KindVarsChanged,
		domain.KindCommentAdded,
		domain.KindCommentRemoved,
		domain.KindDowntimeAdded,
		domain.KindDowntimeRemoved,
		domain.KindAcknowledgementSet,
		domain.KindAcknowledgementCleared,
	}
	for _, k := range kinds {
		bus.Subscribe(k, s.handle)
	}
}

func (s *Service) handle(ev signalbus.Event) {
	if s.peer == nil {
		return
	}

	params := make(map[string]any, len(ev.Data)+2)
	for k, v := range ev.Data {
		params[k] = v
	}

	if hs, ok := ev.Object.(domain.HostService); ok {
		params["host"] = hs.HostName()
		if svc := hs.ServiceShortName(); svc != "" {
			params["service"] = svc
		}
	} else if named, ok := ev.Object.(interface{ FullName() string }); ok {
		params["object"] = named.FullName()
	}

	scope, ok := ev.Object.(transport.Scope)
	if !ok {
		log.Debug("relay: object has no zone scope, dropping", zap.String("kind", string(ev.Kind)))
		return
	}

	body, err := json.Marshal(params)
	if err != nil {
		log.Warning("relay: marshal params failed", zap.Error(err))
		return
	}

	msg := transport.Message{
		JSONRPC: "2.0",
		Method:  "event::" + string(ev.Kind),
		Params:  body,
	}

	origin, _ := ev.Origin.(*transport.MessageOrigin)
	s.peer.RelayMessage(origin, scope, msg, true)
}
