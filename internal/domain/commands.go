package domain

import (
	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

// command is the shared shape of CheckCommand, EventCommand, and
// NotificationCommand: a named command line plus custom variables. The
// three are kept as distinct types (distinct objtype.TypeDescriptors,
// distinct constructors) because ExecuteCommandAPIHandler (C9) and the
// legacy Vars fallback chain (C7) both look objects up by one specific
// type name at a time, never polymorphically across the three.
type command struct {
	*object.Base
	*CustomVars
}

func (c *command) CommandLine() string {
	v, _ := c.GetField("command_line")
	s, _ := v.(string)
	return s
}

func newCommand(typ *objtype.TypeDescriptor, fullName string, bus *signalbus.Bus) *command {
	base := object.New(typ, fullName, bus)
	c := &command{Base: base, CustomVars: newCustomVars(base, bus)}
	base.SetSelf(c)
	return c
}

type CheckCommand struct{ *command }

func NewCheckCommand(fullName string, bus *signalbus.Bus) *CheckCommand {
	return &CheckCommand{command: newCommand(CheckCommandType, fullName, bus)}
}

// Register adds c to the CheckCommand type index.
func (c *CheckCommand) Register() error { return CheckCommandType.Register(c.command) }

// Unregister removes c from the CheckCommand type index.
func (c *CheckCommand) Unregister() { CheckCommandType.Unregister(c.command) }

func ByNameCheckCommand(name string) (*CheckCommand, bool) {
	obj, ok := CheckCommandType.ByName(name)
	if !ok {
		return nil, false
	}
	c, ok := obj.(*command)
	if !ok {
		return nil, false
	}
	return &CheckCommand{command: c}, true
}

type EventCommand struct{ *command }

func NewEventCommand(fullName string, bus *signalbus.Bus) *EventCommand {
	return &EventCommand{command: newCommand(EventCommandType, fullName, bus)}
}

// Register adds c to the EventCommand type index.
func (c *EventCommand) Register() error { return EventCommandType.Register(c.command) }

// Unregister removes c from the EventCommand type index.
func (c *EventCommand) Unregister() { EventCommandType.Unregister(c.command) }

func ByNameEventCommand(name string) (*EventCommand, bool) {
	obj, ok := EventCommandType.ByName(name)
	if !ok {
		return nil, false
	}
	c, ok := obj.(*command)
	if !ok {
		return nil, false
	}
	return &EventCommand{command: c}, true
}

type NotificationCommand struct{ *command }

func NewNotificationCommand(fullName string, bus *signalbus.Bus) *NotificationCommand {
	return &NotificationCommand{command: newCommand(NotificationCommandType, fullName, bus)}
}

// Register adds c to the NotificationCommand type index.
func (c *NotificationCommand) Register() error {
	return NotificationCommandType.Register(c.command)
}

// Unregister removes c from the NotificationCommand type index.
func (c *NotificationCommand) Unregister() { NotificationCommandType.Unregister(c.command) }

func ByNameNotificationCommand(name string) (*NotificationCommand, bool) {
	obj, ok := NotificationCommandType.ByName(name)
	if !ok {
		return nil, false
	}
	c, ok := obj.(*command)
	if !ok {
		return nil, false
	}
	return &NotificationCommand{command: c}, true
}
