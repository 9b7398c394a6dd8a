package domain

import (
	"github.com/beaconhq/zonecore/internal/object"
	"github.com/beaconhq/zonecore/internal/signalbus"
)

// User is a notification recipient. It carries custom variables only —
// it is not Checkable.
type User struct {
	*object.Base
	*CustomVars
}

func NewUser(fullName string, bus *signalbus.Bus) *User {
	base := object.New(UserType, fullName, bus)
	u := &User{Base: base, CustomVars: newCustomVars(base, bus)}
	base.SetSelf(u)
	return u
}

// Register adds u to the User type index.
func (u *User) Register() error { return UserType.Register(u) }

// Unregister removes u from the User type index.
func (u *User) Unregister() { UserType.Unregister(u) }

func ByNameUser(name string) (*User, bool) {
	obj, ok := UserType.ByName(name)
	if !ok {
		return nil, false
	}
	u, ok := obj.(*User)
	return u, ok
}
