// Package objtype is the type registry (C1): type descriptors carrying
// field metadata, plural names, and optional name composers, plus a
// sharded per-type index of live instances keyed by fully-qualified name.
package objtype

// FieldClass is the attribute-class bitmask every field carries.
type FieldClass uint8

const (
	// Config fields are declared in a source file, survive restart via
	// config, and have their mutations tracked in original-attributes.
	Config FieldClass = 1 << iota
	// State fields are runtime-only but persisted across restarts via
	// the snapshot file.
	State
	// Internal fields are never serialized.
	Internal
)

// Intersects reports whether the field's class bitmask shares any bit with
// mask — the rule the serializer and snapshot writer filter fields by.
func (c FieldClass) Intersects(mask FieldClass) bool {
	return c&mask != 0
}

// FieldDescriptor describes one reflective field on a type.
type FieldDescriptor struct {
	Name  string
	Class FieldClass
}

// NameComposer decomposes a fully-qualified name into the structural parts
// that become implicit attributes during config emission (e.g. a
// "host!service" composite name decomposes into {host: "...", name:
// "..."}). Types without a composer treat the full name as the only part.
type NameComposer interface {
	Decompose(fullName string) map[string]any
}

// Registrable is anything a TypeDescriptor can hold in its object index.
type Registrable interface {
	FullName() string
}
