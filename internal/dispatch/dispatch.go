// Package dispatch is C7: the inbound method-name-keyed handler table,
// grounded on original_source/lib/icinga/apievents.cpp's
// REGISTER_APIFUNCTION table and its *ChangedAPIHandler functions.
package dispatch

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/domain"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/valuetree"
	"github.com/beaconhq/zonecore/internal/zlog"
)

var log = zlog.Component("dispatch")

// checkable is the subset of *domain.Checkable's promoted method set the
// generic setter table needs. *domain.Host and *domain.Service both
// satisfy it through embedding.
type checkable interface {
	domain.HostService
	ZoneName() string

	SetNextCheck(float64, *transport.MessageOrigin) error
	SetForceNextCheck(bool, *transport.MessageOrigin) error
	SetForceNextNotification(bool, *transport.MessageOrigin) error
	SetEnableActiveChecks(bool, *transport.MessageOrigin) error
	SetEnablePassiveChecks(bool, *transport.MessageOrigin) error
	SetEnableNotifications(bool, *transport.MessageOrigin) error
	SetEnableFlapping(bool, *transport.MessageOrigin) error
	SetEnableEventHandler(bool, *transport.MessageOrigin) error
	SetEnablePerfdata(bool, *transport.MessageOrigin) error
	SetCheckInterval(float64, *transport.MessageOrigin) error
	SetRetryInterval(float64, *transport.MessageOrigin) error
	SetMaxCheckAttempts(int, *transport.MessageOrigin) error
	SetEventCommandName(string, *transport.MessageOrigin) error
	SetCheckCommandName(string, *transport.MessageOrigin) error
	SetCheckPeriodName(string, *transport.MessageOrigin) error
	SetAcknowledgement(int, string, string, bool, float64, *transport.MessageOrigin) error
	ClearAcknowledgement(*transport.MessageOrigin) error
	ProcessCheckResult(*domain.CheckResult, *transport.MessageOrigin) error
	AddComment(entryType int, author, text string, expireTime float64, id string, origin *transport.MessageOrigin) *domain.Comment
	RemoveComment(id string, origin *transport.MessageOrigin)
	AddDowntime(author, comment string, start, end float64, fixed bool, triggeredBy string, duration float64, scheduledBy, id string, origin *transport.MessageOrigin) *domain.Downtime
	RemoveDowntime(id string, origin *transport.MessageOrigin)

	CommandEndpoint() string
}

// CommandExecutor runs a check or event handler command. The check
// execution engine itself is external to this core; with a nil Executor,
// ExecuteCommand runs nothing and answers with a synthetic Unknown result
// saying no execution engine is configured.
type CommandExecutor interface {
	ExecuteRemoteCheck(macros map[string]any) (*domain.CheckResult, error)
	ExecuteEventHandler(macros map[string]any) error
}

// Dispatcher implements transport.Dispatcher: one handle(origin, msg)
// entry point that demultiplexes by msg.Method.
type Dispatcher struct {
	selfEndpoint   string
	localZone      string
	stateDir       string
	product        string
	acceptCommands bool
	peer           transport.PeerListener
	executor       CommandExecutor
	bus            *signalbus.Bus

	table map[string]func(origin *transport.MessageOrigin, params map[string]any)
}

// Config carries the values every Dispatcher needs that are not
// discoverable at runtime.
type Config struct {
	SelfEndpoint   string
	LocalZone      string
	StateDir       string
	Product        string
	AcceptCommands bool
}

func New(cfg Config, bus *signalbus.Bus, peer transport.PeerListener, executor CommandExecutor) *Dispatcher {
	d := &Dispatcher{
		selfEndpoint:   cfg.SelfEndpoint,
		localZone:      cfg.LocalZone,
		stateDir:       cfg.StateDir,
		product:        cfg.Product,
		acceptCommands: cfg.AcceptCommands,
		peer:           peer,
		executor:       executor,
		bus:            bus,
	}
	d.table = d.buildTable()
	return d
}

// SetPeer wires the peer transport after construction, breaking the
// construction cycle between transport.Listener (which needs a
// Dispatcher) and Dispatcher (which needs a PeerListener for
// UpdateRepository re-relay and ExecuteCommand replies).
func (d *Dispatcher) SetPeer(peer transport.PeerListener) {
	d.peer = peer
}

// Dispatch satisfies transport.Dispatcher.
func (d *Dispatcher) Dispatch(origin *transport.MessageOrigin, msg transport.Message) {
	if origin == nil || origin.FromEndpoint == "" {
		log.Notice("invalid endpoint origin", zap.String("method", msg.Method))
		return
	}
	if origin.FromZone == "" {
		origin = &transport.MessageOrigin{
			FromEndpoint: origin.FromEndpoint,
			FromZone:     domain.EndpointZone(origin.FromEndpoint),
		}
	}

	switch msg.Method {
	case "event::CheckResult":
		d.handleCheckResult(origin, msg)
		return
	case "event::SetVars":
		d.handleVars(origin, msg)
		return
	case "event::AddComment":
		d.handleAddComment(origin, msg)
		return
	case "event::AddDowntime":
		d.handleAddDowntime(origin, msg)
		return
	case "event::UpdateRepository":
		d.handleUpdateRepository(origin, msg)
		return
	case "event::ExecuteCommand":
		d.handleExecuteCommand(origin, msg)
		return
	}

	h, ok := d.table[msg.Method]
	if !ok {
		log.Debug("no handler for method", zap.String("method", msg.Method))
		return
	}

	params, ok := decodeParams(msg)
	if !ok {
		return
	}
	h(origin, params)
}

func decodeParams(msg transport.Message) (map[string]any, bool) {
	if len(msg.Params) == 0 {
		return nil, false
	}
	var params map[string]any
	if err := json.Unmarshal(msg.Params, &params); err != nil {
		log.Warning("malformed params", zap.String("method", msg.Method), zap.Error(err))
		return nil, false
	}
	return params, true
}

// resolveTarget applies the common host/service lookup pattern: resolve
// the host by name, then narrow to a service by short name if one is
// given in params.
func resolveTarget(params map[string]any) (checkable, bool) {
	hostName, _ := params["host"].(string)
	if hostName == "" {
		return nil, false
	}
	host, ok := domain.ByNameHost(hostName)
	if !ok {
		return nil, false
	}

	if svcName, _ := params["service"].(string); svcName != "" {
		svc, ok := host.ServiceByShortName(svcName)
		if !ok {
			return nil, false
		}
		return svc, true
	}
	return host, true
}

// authorized reports whether origin's zone may mutate target via
// Zone.CanAccessObject. The check only ever rejects; when origin or
// its zone can't be resolved there is nothing to check against, so the
// mutation is allowed to proceed.
func authorized(origin *transport.MessageOrigin, target domain.ZoneScoped) bool {
	if origin == nil || origin.FromZone == "" {
		return true
	}
	zone, ok := domain.ByNameZone(origin.FromZone)
	if !ok {
		return true
	}
	return zone.CanAccessObject(target)
}

func floatParam(p map[string]any, key string) float64 {
	v, _ := p[key].(float64)
	return v
}

func boolParam(p map[string]any, key string) bool {
	v, _ := p[key].(bool)
	return v
}

func stringParam(p map[string]any, key string) string {
	v, _ := p[key].(string)
	return v
}

func intParam(p map[string]any, key string) int {
	switch t := p[key].(type) {
	case float64:
		return int(t)
	case int:
		return t
	default:
		return 0
	}
}

// buildTable wires every simple per-field setter, the table-driven
// shape apievents.cpp's REGISTER_APIFUNCTION(name, ...) calls realize.
func (d *Dispatcher) buildTable() map[string]func(*transport.MessageOrigin, map[string]any) {
	setters := map[string]func(checkable, *transport.MessageOrigin, map[string]any) error{
		"event::SetNextCheck": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetNextCheck(floatParam(p, "next_check"), o)
		},
		"event::SetForceNextCheck": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetForceNextCheck(boolParam(p, "forced"), o)
		},
		"event::SetForceNextNotification": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetForceNextNotification(boolParam(p, "forced"), o)
		},
		"event::SetEnableActiveChecks": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEnableActiveChecks(boolParam(p, "enabled"), o)
		},
		"event::SetEnablePassiveChecks": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEnablePassiveChecks(boolParam(p, "enabled"), o)
		},
		"event::SetEnableNotifications": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEnableNotifications(boolParam(p, "enabled"), o)
		},
		"event::SetEnableFlapping": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEnableFlapping(boolParam(p, "enabled"), o)
		},
		"event::SetEnableEventHandler": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEnableEventHandler(boolParam(p, "enabled"), o)
		},
		"event::SetEnablePerfdata": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEnablePerfdata(boolParam(p, "enabled"), o)
		},
		"event::SetCheckInterval": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetCheckInterval(floatParam(p, "interval"), o)
		},
		"event::SetRetryInterval": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetRetryInterval(floatParam(p, "interval"), o)
		},
		"event::SetMaxCheckAttempts": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetMaxCheckAttempts(intParam(p, "max_check_attempts"), o)
		},
		"event::SetEventCommand": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetEventCommandName(stringParam(p, "event_command"), o)
		},
		"event::SetCheckCommand": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetCheckCommandName(stringParam(p, "check_command"), o)
		},
		"event::SetCheckPeriod": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetCheckPeriodName(stringParam(p, "check_period"), o)
		},
		"event::SetAcknowledgement": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.SetAcknowledgement(intParam(p, "acktype"), stringParam(p, "author"), stringParam(p, "comment"), boolParam(p, "notify"), floatParam(p, "expiry"), o)
		},
		"event::ClearAcknowledgement": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			return t.ClearAcknowledgement(o)
		},
		"event::RemoveComment": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			t.RemoveComment(stringParam(p, "id"), o)
			return nil
		},
		"event::RemoveDowntime": func(t checkable, o *transport.MessageOrigin, p map[string]any) error {
			t.RemoveDowntime(stringParam(p, "id"), o)
			return nil
		},
	}

	table := make(map[string]func(*transport.MessageOrigin, map[string]any), len(setters))
	for method, fn := range setters {
		fn := fn
		table[method] = func(origin *transport.MessageOrigin, params map[string]any) {
			target, ok := resolveTarget(params)
			if !ok {
				return
			}
			if !authorized(origin, target) {
				log.Notice("unauthorized", zap.String("method", method), zap.String("host", stringParam(params, "host")))
				return
			}
			if err := fn(target, origin, params); err != nil {
				log.Warning("apply failed", zap.String("method", method), zap.Error(err))
			}
		}
	}
	return table
}

// handleCheckResult extracts performance_data, reconstructing mapping
// entries as domain.PerfdataValue and preserving anything else verbatim.
// If the sending endpoint is the target's configured command-endpoint
// (a delegated agent's reply), the result is processed with a nil
// origin so the normal local reaction applies; otherwise it is
// processed with the inbound origin so the relay forwards onward.
func (d *Dispatcher) handleCheckResult(origin *transport.MessageOrigin, msg transport.Message) {
	params, ok := decodeParams(msg)
	if !ok {
		return
	}
	target, ok := resolveTarget(params)
	if !ok {
		return
	}
	if !authorized(origin, target) {
		log.Notice("unauthorized", zap.String("method", msg.Method), zap.String("host", stringParam(params, "host")))
		return
	}

	cr := buildCheckResult(params)

	applyOrigin := origin
	if target.CommandEndpoint() == origin.FromEndpoint {
		applyOrigin = nil
	}
	if err := target.ProcessCheckResult(cr, applyOrigin); err != nil {
		log.Warning("process check result failed", zap.Error(err))
	}
}

func buildCheckResult(params map[string]any) *domain.CheckResult {
	cr, ok := params["cr"].(map[string]any)
	if !ok {
		cr = params
	}

	result := &domain.CheckResult{
		State:          domain.State(intParam(cr, "state")),
		Output:         stringParam(cr, "output"),
		CheckSource:    stringParam(cr, "check_source"),
		ScheduleStart:  floatParam(cr, "schedule_start"),
		ScheduleEnd:    floatParam(cr, "schedule_end"),
		ExecutionStart: floatParam(cr, "execution_start"),
		ExecutionEnd:   floatParam(cr, "execution_end"),
	}

	if raw, ok := cr["performance_data"].([]any); ok {
		for _, item := range raw {
			if m, ok := item.(map[string]any); ok {
				pv := domain.PerfdataValue{
					Label: stringParam(m, "label"),
					Value: floatParam(m, "value"),
					UnitOfMeasurement: stringParam(m, "unit"),
				}
				result.PerformanceData = append(result.PerformanceData, pv)
				continue
			}
			result.PerformanceData = append(result.PerformanceData, item)
		}
	}

	return result
}

// handleVars resolves the target polymorphically: object_type selects a
// specific lookup if present; otherwise it falls back through Host,
// Service, User, EventCommand, CheckCommand, NotificationCommand,
// Service — the duplicate Service entry is preserved from the legacy
// fallback chain even though it appears vestigial.
func (d *Dispatcher) handleVars(origin *transport.MessageOrigin, msg transport.Message) {
	params, ok := decodeParams(msg)
	if !ok {
		return
	}
	name := stringParam(params, "object")
	if name == "" {
		name = stringParam(params, "host")
	}
	if name == "" {
		return
	}

	varsRaw, _ := params["vars"].(map[string]any)
	vars := valuetree.Dict(varsRaw)
	objType := stringParam(params, "object_type")

	target, setVars, ok := resolveVarsTarget(objType, name)
	if !ok {
		return
	}
	if !authorized(origin, target) {
		log.Notice("unauthorized", zap.String("method", msg.Method), zap.String("object", name))
		return
	}
	if err := setVars(target, vars, origin); err != nil {
		log.Warning("set vars failed", zap.Error(err))
	}
}

type varsSetter func(object any, vars valuetree.Dict, origin *transport.MessageOrigin) error

func resolveVarsTarget(objType, name string) (domain.ZoneScoped, varsSetter, bool) {
	lookup := func() (domain.ZoneScoped, varsSetter, bool) {
		if h, ok := domain.ByNameHost(name); ok {
			return h, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return h.SetVars(o, v, or) }, true
		}
		return nil, nil, false
	}

	switch objType {
	case "Host":
		return lookup()
	case "Service":
		if s, ok := domain.ByNameService(name); ok {
			return s, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return s.SetVars(o, v, or) }, true
		}
		return nil, nil, false
	case "User":
		if u, ok := domain.ByNameUser(name); ok {
			return u, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return u.SetVars(o, v, or) }, true
		}
		return nil, nil, false
	case "EventCommand":
		if c, ok := domain.ByNameEventCommand(name); ok {
			return c, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return c.SetVars(o, v, or) }, true
		}
		return nil, nil, false
	case "CheckCommand":
		if c, ok := domain.ByNameCheckCommand(name); ok {
			return c, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return c.SetVars(o, v, or) }, true
		}
		return nil, nil, false
	case "NotificationCommand":
		if c, ok := domain.ByNameNotificationCommand(name); ok {
			return c, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return c.SetVars(o, v, or) }, true
		}
		return nil, nil, false
	}

	// Legacy fallback chain, no object_type given: Host, Service, User,
	// EventCommand, CheckCommand, NotificationCommand, Service again.
	if t, s, ok := lookup(); ok {
		return t, s, ok
	}
	if s, ok := domain.ByNameService(name); ok {
		return s, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return s.SetVars(o, v, or) }, true
	}
	if u, ok := domain.ByNameUser(name); ok {
		return u, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return u.SetVars(o, v, or) }, true
	}
	if c, ok := domain.ByNameEventCommand(name); ok {
		return c, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return c.SetVars(o, v, or) }, true
	}
	if c, ok := domain.ByNameCheckCommand(name); ok {
		return c, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return c.SetVars(o, v, or) }, true
	}
	if c, ok := domain.ByNameNotificationCommand(name); ok {
		return c, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return c.SetVars(o, v, or) }, true
	}
	if s, ok := domain.ByNameService(name); ok {
		return s, func(o any, v valuetree.Dict, or *transport.MessageOrigin) error { return s.SetVars(o, v, or) }, true
	}
	return nil, nil, false
}

func (d *Dispatcher) handleAddComment(origin *transport.MessageOrigin, msg transport.Message) {
	params, ok := decodeParams(msg)
	if !ok {
		return
	}
	target, ok := resolveTarget(params)
	if !ok {
		return
	}
	if !authorized(origin, target) {
		log.Notice("unauthorized", zap.String("method", msg.Method))
		return
	}
	target.AddComment(intParam(params, "entry_type"), stringParam(params, "author"), stringParam(params, "text"), floatParam(params, "expire_time"), stringParam(params, "id"), origin)
}

func (d *Dispatcher) handleAddDowntime(origin *transport.MessageOrigin, msg transport.Message) {
	params, ok := decodeParams(msg)
	if !ok {
		return
	}
	target, ok := resolveTarget(params)
	if !ok {
		return
	}
	if !authorized(origin, target) {
		log.Notice("unauthorized", zap.String("method", msg.Method))
		return
	}
	target.AddDowntime(
		stringParam(params, "author"), stringParam(params, "comment"),
		floatParam(params, "start_time"), floatParam(params, "end_time"),
		boolParam(params, "fixed"), stringParam(params, "triggered_by"),
		floatParam(params, "duration"), stringParam(params, "scheduled_by"),
		stringParam(params, "id"), origin,
	)
}

// handleUpdateRepository persists params as JSON to
// <stateDir>/lib/<product>/api/repository/<sha256-hex(endpoint)>.repo
// atomically, then re-relays to the local zone so siblings observe it.
func (d *Dispatcher) handleUpdateRepository(origin *transport.MessageOrigin, msg transport.Message) {
	params, ok := decodeParams(msg)
	if !ok {
		return
	}

	if err := d.writeRepositoryFile(origin.FromEndpoint, params); err != nil {
		log.Warning("write repository file failed", zap.Error(err))
		return
	}

	if d.peer == nil {
		return
	}
	d.peer.RelayMessage(origin, localZoneScope{d.localZone}, msg, false)
}

type localZoneScope struct{ zone string }

func (s localZoneScope) ZoneName() string { return s.zone }

func (d *Dispatcher) writeRepositoryFile(endpoint string, params map[string]any) error {
	dir := filepath.Join(d.stateDir, "lib", d.product, "api", "repository")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("dispatch: mkdir repository dir: %w", err)
	}

	sum := sha256.Sum256([]byte(endpoint))
	path := filepath.Join(dir, hex.EncodeToString(sum[:])+".repo")

	body, err := json.Marshal(params)
	if err != nil {
		return fmt.Errorf("dispatch: marshal repository params: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, body, 0600); err != nil {
		return fmt.Errorf("dispatch: write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("dispatch: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

// handleExecuteCommand services a remote-command request. Authorization
// is stricter than every other handler: the sender's zone must be an
// ancestor of the local zone, never merely have access to the target.
// A failed ancestor check is discarded silently, the same way every
// other unauthorized-sender case in this file is handled; only the
// later acceptCommands/unknown-command/execution-failure cases reply
// with a synthetic result, since those are failures the requester
// needs to see.
func (d *Dispatcher) handleExecuteCommand(origin *transport.MessageOrigin, msg transport.Message) {
	params, ok := decodeParams(msg)
	if !ok {
		return
	}

	hostName := stringParam(params, "host")
	serviceName := stringParam(params, "service")

	if !domain.IsChildOfName(d.localZone, origin.FromZone) {
		log.Notice("discarding execute command message from unauthorized zone", zap.String("from_zone", origin.FromZone), zap.String("local_zone", d.localZone))
		return
	}

	if !d.acceptCommands {
		d.refuseCommand(origin, hostName, serviceName, fmt.Sprintf("Endpoint '%s' does not accept commands.", d.selfEndpoint))
		return
	}

	commandType := stringParam(params, "command_type") // "check" or "event"
	commandName := stringParam(params, "command")

	var commandLine string
	switch commandType {
	case "event":
		c, ok := domain.ByNameEventCommand(commandName)
		if !ok {
			d.refuseCommand(origin, hostName, serviceName, fmt.Sprintf("Event command '%s' does not exist.", commandName))
			return
		}
		commandLine = c.CommandLine()
	default:
		c, ok := domain.ByNameCheckCommand(commandName)
		if !ok {
			d.refuseCommand(origin, hostName, serviceName, fmt.Sprintf("Check command '%s' does not exist.", commandName))
			return
		}
		commandLine = c.CommandLine()
	}

	// Fabricate a transient, unregistered host carrying the requested
	// command type and requesting endpoint as extensions — nothing
	// about this object is persisted or added to the Host registry.
	virtualHost := domain.NewHost(hostName, d.bus)
	virtualHost.SetExtension("command_type", commandType)
	virtualHost.SetExtension("endpoint", origin.FromEndpoint)

	macros, _ := params["macros"].(map[string]any)
	if macros == nil {
		macros = map[string]any{}
	}
	macros["command_line"] = commandLine
	macros["host_name"] = hostName
	if serviceName != "" {
		macros["service_name"] = serviceName
	}

	if d.executor == nil {
		d.refuseCommand(origin, hostName, serviceName, fmt.Sprintf("Command '%s' could not be executed: no execution engine configured.", commandName))
		return
	}

	if commandType == "event" {
		if err := d.executor.ExecuteEventHandler(macros); err != nil {
			d.refuseCommand(origin, hostName, serviceName, fmt.Sprintf("Exception occurred while executing event handler: %s", err.Error()))
		}
		return
	}

	cr, err := d.executor.ExecuteRemoteCheck(macros)
	if err != nil {
		d.refuseCommand(origin, hostName, serviceName, fmt.Sprintf("Exception occurred while executing check: %s", err.Error()))
		return
	}

	d.sendCheckResult(origin.FromEndpoint, hostName, serviceName, cr)
}

// refuseCommand reports a synthetic Unknown result point-to-point to the
// requester.
func (d *Dispatcher) refuseCommand(origin *transport.MessageOrigin, hostName, serviceName, reason string) {
	d.sendCheckResult(origin.FromEndpoint, hostName, serviceName, &domain.CheckResult{
		State:  domain.StateUnknown,
		Output: reason,
	})
}

func (d *Dispatcher) sendCheckResult(destEndpoint, hostName, serviceName string, cr *domain.CheckResult) {
	if d.peer == nil {
		return
	}
	params := map[string]any{"host": hostName, "cr": cr}
	if serviceName != "" {
		params["service"] = serviceName
	}
	body, err := json.Marshal(params)
	if err != nil {
		log.Warning("marshal synthetic check result failed", zap.Error(err))
		return
	}
	msg := transport.Message{JSONRPC: "2.0", Method: "event::CheckResult", Params: body}
	if err := d.peer.SyncSendMessage(destEndpoint, msg); err != nil {
		log.Warning("send synthetic check result failed", zap.String("dest", destEndpoint), zap.Error(err))
	}
}
