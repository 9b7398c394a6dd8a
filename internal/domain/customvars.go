package domain

import (
	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
	"github.com/beaconhq/zonecore/internal/valuetree"
)

// CustomVars is the CustomVarObject behavior shared by every type
// apievents.cpp's legacy VarsChangedAPIHandler fallback chain tries:
// Host, Service (via Checkable), User, EventCommand, CheckCommand,
// NotificationCommand.
type CustomVars struct {
	base     *object.Base
	bus      *signalbus.Bus
	zoneName string
}

func newCustomVars(base *object.Base, bus *signalbus.Bus) *CustomVars {
	cv := &CustomVars{base: base, bus: bus}
	cv.base.SetDefault(FieldVars, valuetree.Dict{})
	return cv
}

// ZoneName satisfies ZoneScoped so a User or command object can be the
// target of Zone.CanAccessObject, per the legacy Vars fallback chain
// (C7) which may touch any of them.
func (cv *CustomVars) ZoneName() string { return cv.zoneName }

// SetZoneName records the owning zone, set once at construction time by
// whoever provisions the object (configsvc or the startup wiring).
func (cv *CustomVars) SetZoneName(z string) { cv.zoneName = z }

// Vars returns the object's custom variable dictionary.
func (cv *CustomVars) Vars() valuetree.Dict {
	v, _ := cv.base.GetField(FieldVars)
	d, ok := v.(valuetree.Dict)
	if !ok {
		if m, ok := v.(map[string]any); ok {
			return valuetree.Dict(m)
		}
		return valuetree.Dict{}
	}
	return d
}

// SetVars replaces the whole vars dictionary and fires SetVars, per
// apievents.cpp's VarsChangedHandler/VarsChangedAPIHandler pair. object is
// the owning Checkable/User/Command passed through as the signal's
// Object field, so subscribers see the concrete type rather than this
// embedded helper.
func (cv *CustomVars) SetVars(object any, vars valuetree.Dict, origin *transport.MessageOrigin) error {
	if err := cv.base.ModifyAttribute(FieldVars, vars); err != nil {
		return err
	}
	cv.bus.Publish(signalbus.Event{
		Kind:   KindVarsChanged,
		Object: object,
		Origin: origin,
		Data:   map[string]any{"vars": vars, "object_type": cv.base.TypeName()},
	})
	return nil
}
