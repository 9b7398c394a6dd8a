package domain

import (
	"sync"

	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
)

// Kind values mirror apievents.cpp's REGISTER_APIFUNCTION table: one per
// outbound event method, used as the signalbus.Kind subscribers key on.
const (
	KindCheckResult               signalbus.Kind = "CheckResult"
	KindNextCheckChanged           signalbus.Kind = "SetNextCheck"
	KindNextNotificationChanged    signalbus.Kind = "SetNextNotification"
	KindForceNextCheckChanged      signalbus.Kind = "SetForceNextCheck"
	KindForceNextNotifChanged      signalbus.Kind = "SetForceNextNotification"
	KindEnableActiveChecksChanged  signalbus.Kind = "SetEnableActiveChecks"
	KindEnablePassiveChecksChanged signalbus.Kind = "SetEnablePassiveChecks"
	KindEnableNotificationsChanged signalbus.Kind = "SetEnableNotifications"
	KindEnableFlappingChanged      signalbus.Kind = "SetEnableFlapping"
	KindEnableEventHandlerChanged  signalbus.Kind = "SetEnableEventHandler"
	KindEnablePerfdataChanged      signalbus.Kind = "SetEnablePerfdata"
	KindCheckIntervalChanged       signalbus.Kind = "SetCheckInterval"
	KindRetryIntervalChanged       signalbus.Kind = "SetRetryInterval"
	KindMaxCheckAttemptsChanged    signalbus.Kind = "SetMaxCheckAttempts"
	KindEventCommandChanged        signalbus.Kind = "SetEventCommand"
	KindCheckCommandChanged        signalbus.Kind = "SetCheckCommand"
	KindCheckPeriodChanged         signalbus.Kind = "SetCheckPeriod"
	KindVarsChanged                signalbus.Kind = "SetVars"
	KindCommentAdded               signalbus.Kind = "AddComment"
	KindCommentRemoved              signalbus.Kind = "RemoveComment"
	KindDowntimeAdded              signalbus.Kind = "AddDowntime"
	KindDowntimeRemoved             signalbus.Kind = "RemoveDowntime"
	KindAcknowledgementSet         signalbus.Kind = "SetAcknowledgement"
	KindAcknowledgementCleared     signalbus.Kind = "ClearAcknowledgement"
	KindUpdateRepository           signalbus.Kind = "UpdateRepository"
)

// HostService reports the (host, service) identity the relay needs for
// every per-checkable message, per apievents.cpp's GetHostService helper.
// Host returns itself with a nil Service.
type HostService interface {
	HostName() string
	ServiceShortName() string // "" for a Host
}

// Checkable is the shared base embedded by Host and Service: every field
// and signal the relay subscribes to.
type Checkable struct {
	*object.Base
	*CustomVars

	bus      *signalbus.Bus
	zoneName string

	cmu       sync.Mutex
	comments  map[string]*Comment
	downtimes map[string]*Downtime
}

// ZoneName satisfies transport.Scope so a Checkable can be relayed
// directly as a per-object scope.
func (c *Checkable) ZoneName() string { return c.zoneName }

// SetZoneName records the zone this object is owned by, used for
// authorization (Zone.CanAccessObject) and relay scoping.
func (c *Checkable) SetZoneName(z string) { c.zoneName = z }

func newCheckable(base *object.Base, bus *signalbus.Bus) *Checkable {
	c := &Checkable{
		Base:       base,
		CustomVars: newCustomVars(base, bus),
		bus:        bus,
		comments:   make(map[string]*Comment),
		downtimes:  make(map[string]*Downtime),
	}
	c.Base.SetDefault(FieldEnableActiveChecks, true)
	c.Base.SetDefault(FieldEnablePassiveChecks, true)
	c.Base.SetDefault(FieldEnableNotifications, true)
	c.Base.SetDefault(FieldEnableFlapping, true)
	c.Base.SetDefault(FieldEnableEventHandler, true)
	c.Base.SetDefault(FieldEnablePerfdata, true)
	c.Base.SetDefault(FieldCheckInterval, 60.0)
	c.Base.SetDefault(FieldRetryInterval, 30.0)
	c.Base.SetDefault(FieldMaxCheckAttempts, 3)
	return c
}

func boolField(c *Checkable, name string) bool {
	v, _ := c.GetField(name)
	b, _ := v.(bool)
	return b
}

func float64Field(c *Checkable, name string) float64 {
	v, _ := c.GetField(name)
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	default:
		return 0
	}
}

func stringField(c *Checkable, name string) string {
	v, _ := c.GetField(name)
	s, _ := v.(string)
	return s
}

func intField(c *Checkable, name string) int {
	v, _ := c.GetField(name)
	switch t := v.(type) {
	case int:
		return t
	case float64:
		return int(t)
	default:
		return 0
	}
}

// publish fires a named Kind event with the given data, tagged with
// origin. It is the single site every setter below goes through, so the
// relay's subscription surface matches the field list exactly.
func (c *Checkable) publish(k signalbus.Kind, origin *transport.MessageOrigin, data map[string]any) {
	c.bus.Publish(signalbus.Event{Kind: k, Object: c, Origin: origin, Data: data})
}

func (c *Checkable) NextCheck() float64 { return float64Field(c, FieldNextCheck) }

// SetNextCheck commits the field and fires SetNextCheck, per
// apievents.cpp's NextCheckChangedHandler/APIHandler pair.
func (c *Checkable) SetNextCheck(value float64, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldNextCheck, value); err != nil {
		return err
	}
	c.publish(KindNextCheckChanged, origin, map[string]any{"next_check": value})
	return nil
}

func (c *Checkable) ForceNextCheck() bool { return boolField(c, FieldForceNextCheck) }

func (c *Checkable) SetForceNextCheck(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldForceNextCheck, value); err != nil {
		return err
	}
	c.publish(KindForceNextCheckChanged, origin, map[string]any{"forced": value})
	return nil
}

func (c *Checkable) ForceNextNotification() bool { return boolField(c, FieldForceNextNotification) }

func (c *Checkable) SetForceNextNotification(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldForceNextNotification, value); err != nil {
		return err
	}
	c.publish(KindForceNextNotifChanged, origin, map[string]any{"forced": value})
	return nil
}

func (c *Checkable) EnableActiveChecks() bool { return boolField(c, FieldEnableActiveChecks) }

func (c *Checkable) SetEnableActiveChecks(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEnableActiveChecks, value); err != nil {
		return err
	}
	c.publish(KindEnableActiveChecksChanged, origin, map[string]any{"enabled": value})
	return nil
}

func (c *Checkable) EnablePassiveChecks() bool { return boolField(c, FieldEnablePassiveChecks) }

func (c *Checkable) SetEnablePassiveChecks(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEnablePassiveChecks, value); err != nil {
		return err
	}
	c.publish(KindEnablePassiveChecksChanged, origin, map[string]any{"enabled": value})
	return nil
}

func (c *Checkable) EnableNotifications() bool { return boolField(c, FieldEnableNotifications) }

func (c *Checkable) SetEnableNotifications(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEnableNotifications, value); err != nil {
		return err
	}
	c.publish(KindEnableNotificationsChanged, origin, map[string]any{"enabled": value})
	return nil
}

func (c *Checkable) EnableFlapping() bool { return boolField(c, FieldEnableFlapping) }

func (c *Checkable) SetEnableFlapping(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEnableFlapping, value); err != nil {
		return err
	}
	c.publish(KindEnableFlappingChanged, origin, map[string]any{"enabled": value})
	return nil
}

func (c *Checkable) EnableEventHandler() bool { return boolField(c, FieldEnableEventHandler) }

func (c *Checkable) SetEnableEventHandler(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEnableEventHandler, value); err != nil {
		return err
	}
	c.publish(KindEnableEventHandlerChanged, origin, map[string]any{"enabled": value})
	return nil
}

func (c *Checkable) EnablePerfdata() bool { return boolField(c, FieldEnablePerfdata) }

func (c *Checkable) SetEnablePerfdata(value bool, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEnablePerfdata, value); err != nil {
		return err
	}
	c.publish(KindEnablePerfdataChanged, origin, map[string]any{"enabled": value})
	return nil
}

func (c *Checkable) CheckInterval() float64 { return float64Field(c, FieldCheckInterval) }

func (c *Checkable) SetCheckInterval(value float64, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldCheckInterval, value); err != nil {
		return err
	}
	c.publish(KindCheckIntervalChanged, origin, map[string]any{"interval": value})
	return nil
}

func (c *Checkable) RetryInterval() float64 { return float64Field(c, FieldRetryInterval) }

func (c *Checkable) SetRetryInterval(value float64, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldRetryInterval, value); err != nil {
		return err
	}
	c.publish(KindRetryIntervalChanged, origin, map[string]any{"interval": value})
	return nil
}

func (c *Checkable) MaxCheckAttempts() int { return intField(c, FieldMaxCheckAttempts) }

func (c *Checkable) SetMaxCheckAttempts(value int, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldMaxCheckAttempts, value); err != nil {
		return err
	}
	c.publish(KindMaxCheckAttemptsChanged, origin, map[string]any{"max_check_attempts": value})
	return nil
}

func (c *Checkable) EventCommandName() string { return stringField(c, FieldEventCommand) }

func (c *Checkable) SetEventCommandName(value string, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldEventCommand, value); err != nil {
		return err
	}
	c.publish(KindEventCommandChanged, origin, map[string]any{"event_command": value})
	return nil
}

func (c *Checkable) CheckCommandName() string { return stringField(c, FieldCheckCommand) }

func (c *Checkable) SetCheckCommandName(value string, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldCheckCommand, value); err != nil {
		return err
	}
	c.publish(KindCheckCommandChanged, origin, map[string]any{"check_command": value})
	return nil
}

func (c *Checkable) CheckPeriodName() string { return stringField(c, FieldCheckPeriod) }

func (c *Checkable) SetCheckPeriodName(value string, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldCheckPeriod, value); err != nil {
		return err
	}
	c.publish(KindCheckPeriodChanged, origin, map[string]any{"check_period": value})
	return nil
}

func (c *Checkable) CommandEndpoint() string { return stringField(c, FieldCommandEndpoint) }

// SetCommandEndpoint is a plain attribute write: it fires no named signal,
// so the command-endpoint value is never itself relayed as an event.
func (c *Checkable) SetCommandEndpoint(value string) error {
	return c.ModifyAttribute(FieldCommandEndpoint, value)
}

func (c *Checkable) LastCheckResult() *CheckResult {
	v, _ := c.GetField(FieldLastCheckResult)
	cr, _ := v.(*CheckResult)
	return cr
}

// ProcessCheckResult applies cr as this object's latest result and fires
// CheckResult. origin is nil for a locally-produced result or a delegated
// agent's reply (the normal local reaction applies), or the inbound
// MessageOrigin when this result arrived as a peer relay — in every case
// the signal fires and the relay forwards onward, excluding only the
// endpoint a non-nil origin names.
func (c *Checkable) ProcessCheckResult(cr *CheckResult, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldLastCheckResult, cr); err != nil {
		return err
	}
	c.publish(KindCheckResult, origin, map[string]any{"cr": cr})
	return nil
}

// AddComment attaches a comment and fires AddComment.
func (c *Checkable) AddComment(entryType int, author, text string, expireTime float64, id string, origin *transport.MessageOrigin) *Comment {
	cm := &Comment{ID: id, EntryType: entryType, Author: author, Text: text, ExpireTime: expireTime}
	c.cmu.Lock()
	c.comments[id] = cm
	c.cmu.Unlock()
	c.publish(KindCommentAdded, origin, map[string]any{"comment": cm})
	return cm
}

// RemoveComment detaches a comment by id and fires RemoveComment. It is a
// no-op if the id is unknown, matching the original's tolerant removal.
func (c *Checkable) RemoveComment(id string, origin *transport.MessageOrigin) {
	c.cmu.Lock()
	_, ok := c.comments[id]
	delete(c.comments, id)
	c.cmu.Unlock()
	if !ok {
		return
	}
	c.publish(KindCommentRemoved, origin, map[string]any{"id": id})
}

// Comments returns a snapshot of attached comments, keyed by id.
func (c *Checkable) Comments() map[string]*Comment {
	c.cmu.Lock()
	defer c.cmu.Unlock()
	out := make(map[string]*Comment, len(c.comments))
	for k, v := range c.comments {
		out[k] = v
	}
	return out
}

// AddDowntime attaches a scheduled downtime and fires AddDowntime.
func (c *Checkable) AddDowntime(author, comment string, start, end float64, fixed bool, triggeredBy string, duration float64, scheduledBy, id string, origin *transport.MessageOrigin) *Downtime {
	dt := &Downtime{
		ID: id, Author: author, Comment: comment, StartTime: start, EndTime: end,
		Fixed: fixed, TriggeredBy: triggeredBy, Duration: duration, ScheduledBy: scheduledBy,
	}
	c.cmu.Lock()
	c.downtimes[id] = dt
	c.cmu.Unlock()
	c.publish(KindDowntimeAdded, origin, map[string]any{"downtime": dt})
	return dt
}

// RemoveDowntime detaches a downtime by id and fires RemoveDowntime.
func (c *Checkable) RemoveDowntime(id string, origin *transport.MessageOrigin) {
	c.cmu.Lock()
	_, ok := c.downtimes[id]
	delete(c.downtimes, id)
	c.cmu.Unlock()
	if !ok {
		return
	}
	c.publish(KindDowntimeRemoved, origin, map[string]any{"id": id})
}

// Downtimes returns a snapshot of attached downtimes, keyed by id.
func (c *Checkable) Downtimes() map[string]*Downtime {
	c.cmu.Lock()
	defer c.cmu.Unlock()
	out := make(map[string]*Downtime, len(c.downtimes))
	for k, v := range c.downtimes {
		out[k] = v
	}
	return out
}

func (c *Checkable) AcknowledgementType() int { return intField(c, FieldAcknowledgementType) }

// SetAcknowledgement marks the object acknowledged and fires
// SetAcknowledgement with the full parameter set apievents.cpp relays
// (author, comment, acktype, notify, expiry).
func (c *Checkable) SetAcknowledgement(ackType int, author, comment string, notify bool, expiry float64, origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldAcknowledgementType, ackType); err != nil {
		return err
	}
	if err := c.ModifyAttribute(FieldAcknowledgementExpiry, expiry); err != nil {
		return err
	}
	c.publish(KindAcknowledgementSet, origin, map[string]any{
		"author": author, "comment": comment, "acktype": ackType, "notify": notify, "expiry": expiry,
	})
	return nil
}

// ClearAcknowledgement resets the acknowledgement state and fires
// ClearAcknowledgement.
func (c *Checkable) ClearAcknowledgement(origin *transport.MessageOrigin) error {
	if err := c.ModifyAttribute(FieldAcknowledgementType, 0); err != nil {
		return err
	}
	c.publish(KindAcknowledgementCleared, origin, nil)
	return nil
}
