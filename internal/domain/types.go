// Package domain holds the concrete typed objects C2-C9 operate on:
// Host, Service, Notification, User, the three command types, Zone,
// Endpoint, CheckResult and PerfdataValue, plus the shared Checkable and
// CustomVars building blocks. Each registers its objtype.TypeDescriptor
// during package initialization and is never destroyed afterward.
package domain

import "github.com/beaconhq/zonecore/internal/objtype"

// Field name constants shared across type descriptors and setters, so a
// rename only touches one place instead of every string literal site.
const (
	FieldName    = "name"
	FieldAddress = "address"

	FieldVars = "vars"

	FieldNextCheck             = "next_check"
	FieldForceNextCheck        = "force_next_check"
	FieldForceNextNotification = "force_next_notification"
	FieldEnableActiveChecks    = "enable_active_checks"
	FieldEnablePassiveChecks   = "enable_passive_checks"
	FieldEnableNotifications   = "enable_notifications"
	FieldEnableFlapping        = "enable_flapping"
	FieldEnableEventHandler    = "enable_event_handler"
	FieldEnablePerfdata        = "enable_perfdata"
	FieldCheckInterval         = "check_interval"
	FieldRetryInterval         = "retry_interval"
	FieldMaxCheckAttempts      = "max_check_attempts"
	FieldEventCommand          = "event_command"
	FieldCheckCommand          = "check_command"
	FieldCheckPeriod           = "check_period"
	FieldCommandEndpoint       = "command_endpoint"
	FieldLastCheckResult       = "last_check_result"
	FieldAcknowledgementType   = "acknowledgement_type"
	FieldAcknowledgementExpiry = "acknowledgement_expiry"

	FieldNextNotification = "next_notification"
)

// checkableFields is the field list every Checkable-embedding type
// (Host, Service) carries, mirroring the relay's subscribed-signal list.
var checkableFields = []objtype.FieldDescriptor{
	{Name: FieldVars, Class: objtype.Config},
	{Name: FieldNextCheck, Class: objtype.State},
	{Name: FieldForceNextCheck, Class: objtype.State},
	{Name: FieldForceNextNotification, Class: objtype.State},
	{Name: FieldEnableActiveChecks, Class: objtype.Config},
	{Name: FieldEnablePassiveChecks, Class: objtype.Config},
	{Name: FieldEnableNotifications, Class: objtype.Config},
	{Name: FieldEnableFlapping, Class: objtype.Config},
	{Name: FieldEnableEventHandler, Class: objtype.Config},
	{Name: FieldEnablePerfdata, Class: objtype.Config},
	{Name: FieldCheckInterval, Class: objtype.Config},
	{Name: FieldRetryInterval, Class: objtype.Config},
	{Name: FieldMaxCheckAttempts, Class: objtype.Config},
	{Name: FieldEventCommand, Class: objtype.Config},
	{Name: FieldCheckCommand, Class: objtype.Config},
	{Name: FieldCheckPeriod, Class: objtype.Config},
	{Name: FieldCommandEndpoint, Class: objtype.Config},
	{Name: FieldLastCheckResult, Class: objtype.State},
	{Name: FieldAcknowledgementType, Class: objtype.State},
	{Name: FieldAcknowledgementExpiry, Class: objtype.State},
}

func withFields(extra ...objtype.FieldDescriptor) []objtype.FieldDescriptor {
	out := make([]objtype.FieldDescriptor, 0, len(checkableFields)+len(extra))
	out = append(out, checkableFields...)
	out = append(out, extra...)
	return out
}

// serviceComposer decomposes a "host!service" fully-qualified name into its
// structural parts.
type serviceComposer struct{}

func (serviceComposer) Decompose(fullName string) map[string]any {
	for i := 0; i < len(fullName); i++ {
		if fullName[i] == '!' {
			return map[string]any{
				"host": fullName[:i],
				"name": fullName[i+1:],
			}
		}
	}
	return map[string]any{"name": fullName}
}

var (
	HostType                 *objtype.TypeDescriptor
	ServiceType               *objtype.TypeDescriptor
	NotificationType          *objtype.TypeDescriptor
	UserType                  *objtype.TypeDescriptor
	CheckCommandType          *objtype.TypeDescriptor
	EventCommandType          *objtype.TypeDescriptor
	NotificationCommandType   *objtype.TypeDescriptor
	ZoneType                  *objtype.TypeDescriptor
	EndpointType              *objtype.TypeDescriptor
)

func init() {
	HostType = objtype.RegisterType("Host", "Hosts", withFields(
		objtype.FieldDescriptor{Name: FieldAddress, Class: objtype.Config},
	), nil)

	ServiceType = objtype.RegisterType("Service", "Services", withFields(), serviceComposer{})

	NotificationType = objtype.RegisterType("Notification", "Notifications", []objtype.FieldDescriptor{
		{Name: FieldNextNotification, Class: objtype.State},
	}, nil)

	UserType = objtype.RegisterType("User", "Users", []objtype.FieldDescriptor{
		{Name: FieldVars, Class: objtype.Config},
	}, nil)

	CheckCommandType = objtype.RegisterType("CheckCommand", "CheckCommands", []objtype.FieldDescriptor{
		{Name: FieldVars, Class: objtype.Config},
		{Name: "command_line", Class: objtype.Config},
	}, nil)

	EventCommandType = objtype.RegisterType("EventCommand", "EventCommands", []objtype.FieldDescriptor{
		{Name: FieldVars, Class: objtype.Config},
		{Name: "command_line", Class: objtype.Config},
	}, nil)

	NotificationCommandType = objtype.RegisterType("NotificationCommand", "NotificationCommands", []objtype.FieldDescriptor{
		{Name: FieldVars, Class: objtype.Config},
		{Name: "command_line", Class: objtype.Config},
	}, nil)

	ZoneType = objtype.RegisterType("Zone", "Zones", []objtype.FieldDescriptor{
		{Name: "parent", Class: objtype.Config},
	}, nil)

	EndpointType = objtype.RegisterType("Endpoint", "Endpoints", []objtype.FieldDescriptor{
		{Name: "zone", Class: objtype.Config},
	}, nil)
}
