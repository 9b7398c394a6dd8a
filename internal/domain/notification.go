package domain

import (
	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/transport"
)

// Notification tracks when a checkable is next due for a repeat
// notification, independently of the checkable's own check schedule.
type Notification struct {
	*object.Base
	bus      *signalbus.Bus
	zoneName string
}

func NewNotification(fullName string, bus *signalbus.Bus) *Notification {
	base := object.New(NotificationType, fullName, bus)
	n := &Notification{Base: base, bus: bus}
	base.SetSelf(n)
	base.SetDefault(FieldNextNotification, 0.0)
	return n
}

// ZoneName satisfies ZoneScoped.
func (n *Notification) ZoneName() string { return n.zoneName }

// SetZoneName records the owning zone.
func (n *Notification) SetZoneName(z string) { n.zoneName = z }

func (n *Notification) NextNotification() float64 {
	v, _ := n.GetField(FieldNextNotification)
	f, _ := v.(float64)
	return f
}

// SetNextNotification commits the field and fires SetNextNotification,
// per apievents.cpp's NextNotificationChangedHandler/APIHandler pair.
func (n *Notification) SetNextNotification(value float64, origin *transport.MessageOrigin) error {
	if err := n.ModifyAttribute(FieldNextNotification, value); err != nil {
		return err
	}
	n.bus.Publish(signalbus.Event{
		Kind:   KindNextNotificationChanged,
		Object: n,
		Origin: origin,
		Data:   map[string]any{"notification": n.FullName(), "next_notification": value},
	})
	return nil
}

// Register adds n to the Notification type index.
func (n *Notification) Register() error { return NotificationType.Register(n) }

// Unregister removes n from the Notification type index.
func (n *Notification) Unregister() { NotificationType.Unregister(n) }

// ByNameNotification looks up a registered Notification.
func ByNameNotification(name string) (*Notification, bool) {
	obj, ok := NotificationType.ByName(name)
	if !ok {
		return nil, false
	}
	n, ok := obj.(*Notification)
	return n, ok
}
