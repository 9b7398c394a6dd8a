package objtype

import (
	"fmt"
	"sync"

	"github.com/beaconhq/zonecore/pkg/hashring"
)

const defaultShards = 16

// TypeDescriptor is a process-wide, never-destroyed registration for one
// type name: its field list, plural name, optional name composer, and a
// sharded index of live instances.
type TypeDescriptor struct {
	Name    string
	Plural  string
	Fields  []FieldDescriptor
	Composer NameComposer

	ring   *hashring.Ring
	shards []*shard
}

type shard struct {
	mu      sync.RWMutex
	objects map[string]Registrable
}

// FieldByName returns the descriptor for a named field.
func (t *TypeDescriptor) FieldByName(name string) (FieldDescriptor, bool) {
	for _, f := range t.Fields {
		if f.Name == name {
			return f, true
		}
	}
	return FieldDescriptor{}, false
}

// Register adds obj to the type's index under its FullName. It returns an
// error if an object of that name is already registered — at most one
// object per (type, name), per spec.
//
// Callers must not hold the object's own monitor when calling Register;
// neither the registry nor the base object checks this at runtime.
func (t *TypeDescriptor) Register(obj Registrable) error {
	s := t.shardFor(obj.FullName())
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.objects[obj.FullName()]; exists {
		return fmt.Errorf("object %s of type %s is already registered", obj.FullName(), t.Name)
	}
	s.objects[obj.FullName()] = obj
	return nil
}

// Unregister removes an object from the index. It is a no-op if the object
// is not present.
func (t *TypeDescriptor) Unregister(obj Registrable) {
	s := t.shardFor(obj.FullName())
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.objects, obj.FullName())
}

// ByName looks up a live object by fully-qualified name.
func (t *TypeDescriptor) ByName(name string) (Registrable, bool) {
	s := t.shardFor(name)
	s.mu.RLock()
	defer s.mu.RUnlock()
	obj, ok := s.objects[name]
	return obj, ok
}

// All returns every live instance of the type, across all shards, in no
// particular order.
func (t *TypeDescriptor) All() []Registrable {
	var out []Registrable
	for _, s := range t.shards {
		s.mu.RLock()
		for _, obj := range s.objects {
			out = append(out, obj)
		}
		s.mu.RUnlock()
	}
	return out
}

func (t *TypeDescriptor) shardFor(name string) *shard {
	return t.shards[t.ring.Bucket(name)]
}

// registry is the process-wide type registry: type name -> descriptor.
// Populated once during static initialization by each domain type's
// init(), never mutated afterward except for additions, so a plain
// RWMutex (rather than sharding) is sufficient here — it is the per-type
// *object* index that needs sharding, per the design note this realizes.
var (
	registryMu sync.RWMutex
	registry   = make(map[string]*TypeDescriptor)
)

// RegisterType creates and records a new TypeDescriptor. It panics if the
// type name is already registered — a duplicate RegisterType call is a
// programming error (double static initialization), not a runtime
// condition.
func RegisterType(name, plural string, fields []FieldDescriptor, composer NameComposer) *TypeDescriptor {
	registryMu.Lock()
	defer registryMu.Unlock()

	if _, exists := registry[name]; exists {
		panic(fmt.Sprintf("objtype: type %q already registered", name))
	}

	shards := make([]*shard, defaultShards)
	for i := range shards {
		shards[i] = &shard{objects: make(map[string]Registrable)}
	}

	t := &TypeDescriptor{
		Name:     name,
		Plural:   plural,
		Fields:   fields,
		Composer: composer,
		ring:     hashring.New(defaultShards, 64),
		shards:   shards,
	}
	registry[name] = t
	return t
}

// GetByName returns the descriptor registered under a type name.
func GetByName(name string) (*TypeDescriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	t, ok := registry[name]
	return t, ok
}

// TypeFromPluralName finds the descriptor whose Plural matches, used by
// the HTTP create-object handler which addresses types by plural name.
func TypeFromPluralName(plural string) (*TypeDescriptor, bool) {
	registryMu.RLock()
	defer registryMu.RUnlock()
	for _, t := range registry {
		if t.Plural == plural {
			return t, true
		}
	}
	return nil, false
}

// All returns every registered type descriptor, used by DumpObjects to
// walk every type's index.
func All() []*TypeDescriptor {
	registryMu.RLock()
	defer registryMu.RUnlock()
	out := make([]*TypeDescriptor, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	return out
}
