// Package object implements the configurable object base (C2): reflective
// field access with modification tracking, an activation/pause lifecycle,
// and an extension bag. Every replicated domain type (internal/domain)
// embeds *Base.
package object

import (
	"fmt"
	"strings"
	"sync"

	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/valuetree"
)

// Lifecycle is the overridable half of the activation state machine. Base
// provides a no-op implementation of each method that marks its own
// *-called flag; a concrete type overrides by defining its own method of
// the same name and must call the corresponding Mark*Called method itself
// — Activate/Deactivate/SetAuthority verify the flag was set after calling
// out to self and treat its absence as a programming error (a panic), not
// a runtime condition.
type Lifecycle interface {
	Start()
	Stop()
	Pause()
	Resume()
}

// Base is embedded by every domain type. It must be constructed with New
// and have SetSelf called once, before Register, so that Activate calls
// the concrete type's Start/Stop/Pause/Resume overrides rather than Base's
// own no-ops.
type Base struct {
	mu sync.Mutex

	typ      *objtype.TypeDescriptor
	fullName string
	self     Lifecycle
	bus      *signalbus.Bus
	validate func(fieldName, path string, value any) error

	fields map[string]any
	version uint64

	active, paused                                     bool
	startCalled, stopCalled, pauseCalled, resumeCalled bool
	stateLoaded                                         bool

	extensions         map[string]any
	originalAttributes map[string]any
}

// New constructs a Base for the given type and fully-qualified name. The
// caller must call SetSelf before the object is used.
func New(typ *objtype.TypeDescriptor, fullName string, bus *signalbus.Bus) *Base {
	return &Base{
		typ:                typ,
		fullName:           fullName,
		bus:                bus,
		fields:             make(map[string]any),
		extensions:         make(map[string]any),
		originalAttributes: make(map[string]any),
	}
}

// SetSelf records the concrete object Activate should dispatch
// Start/Stop/Pause/Resume to. Until called, Base dispatches to itself
// (its own no-ops).
func (b *Base) SetSelf(self Lifecycle) {
	b.self = self
}

// SetValidator installs the field-schema validator ModifyAttribute
// consults in step 5. Nil means every value is accepted.
func (b *Base) SetValidator(v func(fieldName, path string, value any) error) {
	b.validate = v
}

func (b *Base) self_() Lifecycle {
	if b.self != nil {
		return b.self
	}
	return b
}

// FullName satisfies objtype.Registrable.
func (b *Base) FullName() string { return b.fullName }

// TypeName returns the owning type's name.
func (b *Base) TypeName() string { return b.typ.Name }

// Version returns the current modification counter.
func (b *Base) Version() uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.version
}

// GetField reads a top-level field value.
func (b *Base) GetField(name string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.fields[name]
	return v, ok
}

// setFieldLocked commits a top-level field value and bumps version. Caller
// must hold b.mu.
func (b *Base) setFieldLocked(name string, value any) {
	b.fields[name] = value
	b.version++
}

// SetDefault populates a field's zero value at construction time, before
// Register. Unlike ModifyAttribute it does not bump version, track the
// field in original-attributes, or fire a signal — it establishes the
// "constructed" state the lifecycle starts from.
func (b *Base) SetDefault(name string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.fields[name] = value
}

// ModifyAttribute applies a dotted-path mutation to a Config-or-State
// field:
//  1. tokens[0] names the top-level field.
//  2. the field's current value is read as `old`.
//  3. if the field is Config-classed and `path` is not yet tracked, the
//     pre-modification top-level value is recorded in original-attributes.
//  4. single-token paths replace the field outright; longer paths clone
//     `old`, walk/create nested maps, and fail with a *ValidationError if
//     an intermediate value exists but is not a mapping.
//  5. the proposed value is validated.
//  6. the new field value is committed and version bumped; if step 3
//     newly tracked the path, an "original-attributes-changed" signal
//     fires.
func (b *Base) ModifyAttribute(path string, value any) error {
	tokens := strings.Split(path, ".")
	if len(tokens) == 0 || tokens[0] == "" {
		return newValidationError(path, "empty attribute path")
	}
	head := tokens[0]

	fd, ok := b.typ.FieldByName(head)
	if !ok {
		return newValidationError(path, fmt.Sprintf("no such field %q on type %s", head, b.typ.Name))
	}

	if b.validate != nil {
		if err := b.validate(head, path, value); err != nil {
			return newValidationError(path, err.Error())
		}
	}

	b.mu.Lock()

	old, hadOld := b.fields[head]

	newlyTracked := false
	if fd.Class.Intersects(objtype.Config) {
		if _, tracked := b.originalAttributes[path]; !tracked {
			var snapshot any
			if hadOld {
				snapshot = valuetree.Clone(old)
			}
			b.originalAttributes[path] = snapshot
			newlyTracked = true
		}
	}

	var newFieldValue any
	if len(tokens) == 1 {
		newFieldValue = value
	} else {
		cloned := valuetree.Clone(old)
		updated, err := valuetree.SetPath(cloned, tokens[1:], value)
		if err != nil {
			b.mu.Unlock()
			return newValidationError(path, err.Error())
		}
		newFieldValue = updated
	}

	b.setFieldLocked(head, newFieldValue)
	b.mu.Unlock()

	if newlyTracked {
		b.bus.Publish(signalbus.Event{
			Kind:   "original-attributes-changed",
			Object: b,
			Data:   map[string]any{"path": path},
		})
	}

	return nil
}

// RestoreAttribute writes the tracked pre-modification value for path back
// to tokens[0] — the top-level field, not the exact nested sub-path. This
// preserves a known limitation of the original design: nested paths are
// tracked precisely but restored only at field granularity.
func (b *Base) RestoreAttribute(path string) error {
	head := strings.SplitN(path, ".", 2)[0]

	b.mu.Lock()
	defer b.mu.Unlock()

	snapshot, tracked := b.originalAttributes[path]
	if !tracked {
		return nil
	}
	b.setFieldLocked(head, snapshot)
	return nil
}

// IsAttributeModified reports whether path has a recorded original value.
func (b *Base) IsAttributeModified(path string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, tracked := b.originalAttributes[path]
	return tracked
}

// OriginalAttributes returns a copy of the tracked pre-modification
// values, keyed by dotted path.
func (b *Base) OriginalAttributes() map[string]any {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make(map[string]any, len(b.originalAttributes))
	for k, v := range b.originalAttributes {
		out[k] = v
	}
	return out
}

// SetExtension attaches transient, never-persisted context (e.g.
// "agent_service_name") to the object.
func (b *Base) SetExtension(key string, value any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.extensions[key] = value
}

// Extension reads a previously attached extension value.
func (b *Base) Extension(key string) (any, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	v, ok := b.extensions[key]
	return v, ok
}

// Base's own Lifecycle no-ops. A concrete type that does not override one
// of these inherits a trivially-satisfied postcondition.
func (b *Base) Start()   { b.mu.Lock(); b.startCalled = true; b.mu.Unlock() }
func (b *Base) Stop()    { b.mu.Lock(); b.stopCalled = true; b.mu.Unlock() }
func (b *Base) Pause()   { b.mu.Lock(); b.pauseCalled = true; b.mu.Unlock() }
func (b *Base) Resume()  { b.mu.Lock(); b.resumeCalled = true; b.mu.Unlock() }

// MarkStartCalled etc. let an overriding Start/Stop/Pause/Resume satisfy
// Activate/Deactivate/SetAuthority's postcondition check without needing
// to reach into Base's unexported fields.
func (b *Base) MarkStartCalled()  { b.mu.Lock(); b.startCalled = true; b.mu.Unlock() }
func (b *Base) MarkStopCalled()   { b.mu.Lock(); b.stopCalled = true; b.mu.Unlock() }
func (b *Base) MarkPauseCalled()  { b.mu.Lock(); b.pauseCalled = true; b.mu.Unlock() }
func (b *Base) MarkResumeCalled() { b.mu.Lock(); b.resumeCalled = true; b.mu.Unlock() }

// Active, Paused, StateLoaded report current lifecycle flags.
func (b *Base) Active() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.active
}

func (b *Base) Paused() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.paused
}

func (b *Base) StateLoaded() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLoaded
}

// MarkStateLoaded records that OnStateLoaded has run for this object,
// whether or not it appeared in the restored snapshot.
func (b *Base) MarkStateLoaded() {
	b.mu.Lock()
	b.stateLoaded = true
	b.mu.Unlock()
}

// Activate is a precondition-guarded transition: !Active required. It
// calls self.Start() exactly once (observable via start-called), sets
// active=true, then calls SetAuthority(true).
//
// Register/Unregister/Activate/Deactivate must never be called while the
// caller already holds this object's monitor — unlike the original, Go
// has no portable OwnsLock() check, so this precondition is carried by
// never calling these from inside a locked section, not by a runtime
// assertion.
func (b *Base) Activate() error {
	if b.Active() {
		panic(fmt.Sprintf("object: Activate called on already-active object %s", b.fullName))
	}

	b.self_().Start()
	b.mu.Lock()
	started := b.startCalled
	b.mu.Unlock()
	if !started {
		panic(fmt.Sprintf("object: Start() override on %s did not mark start-called", b.fullName))
	}

	b.mu.Lock()
	b.active = true
	b.version++
	b.mu.Unlock()

	return b.SetAuthority(true)
}

// Deactivate sets authority false; if the object is active, sets
// active=false and calls self.Stop(). It is a no-op if already inactive.
func (b *Base) Deactivate() error {
	if err := b.SetAuthority(false); err != nil {
		return err
	}

	if !b.Active() {
		return nil
	}

	b.mu.Lock()
	b.active = false
	b.version++
	b.mu.Unlock()

	b.self_().Stop()
	b.mu.Lock()
	stopped := b.stopCalled
	b.mu.Unlock()
	if !stopped {
		panic(fmt.Sprintf("object: Stop() override on %s did not mark stop-called", b.fullName))
	}
	return nil
}

// SetAuthority(true) on a paused object calls Resume() then clears paused.
// SetAuthority(false) on a non-paused object calls Pause() then sets
// paused. Otherwise idempotent.
func (b *Base) SetAuthority(authority bool) error {
	b.mu.Lock()
	paused := b.paused
	b.mu.Unlock()

	if authority && paused {
		b.self_().Resume()
		b.mu.Lock()
		resumed := b.resumeCalled
		b.mu.Unlock()
		if !resumed {
			panic(fmt.Sprintf("object: Resume() override on %s did not mark resume-called", b.fullName))
		}
		b.mu.Lock()
		b.paused = false
		b.mu.Unlock()
		return nil
	}

	if !authority && !paused {
		b.self_().Pause()
		b.mu.Lock()
		pausedCalled := b.pauseCalled
		b.mu.Unlock()
		if !pausedCalled {
			panic(fmt.Sprintf("object: Pause() override on %s did not mark pause-called", b.fullName))
		}
		b.mu.Lock()
		b.paused = true
		b.mu.Unlock()
		return nil
	}

	return nil
}

// Register adds the object to its type's index. self must have been set
// if the concrete type needs to be retrievable as itself via
// TypeDescriptor.ByName; Base satisfies objtype.Registrable directly, so
// concrete types normally register themselves (not the embedded Base) by
// calling typ.Register(concreteObj) directly rather than through this
// helper when they need type-asserted lookups. Register is provided for
// types that are fine being looked up as *Base.
func (b *Base) Register() error {
	return b.typ.Register(b)
}

// Unregister removes the object from its type's index.
func (b *Base) Unregister() {
	b.typ.Unregister(b)
}
