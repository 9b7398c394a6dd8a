// Package serializer implements C3: converting a configurable object
// to/from a self-describing value tree filtered by an attribute-class
// mask, the same shape apievents.cpp's Serialize/Deserialize helpers use
// ahead of every snapshot write and config PUT handler.
package serializer

import (
	"fmt"

	"github.com/beaconhq/zonecore/internal/objtype"
)

// Object is the subset of *object.Base's promoted method set the
// serializer needs. Every domain type satisfies it through embedding.
type Object interface {
	FullName() string
	TypeName() string
	GetField(name string) (any, bool)
	ModifyAttribute(path string, value any) error
}

// Serialize produces a mapping from field name to value for every field
// of obj's type whose class bitmask intersects mask. A field value that
// is itself an Object (a nested configurable object) recurses.
func Serialize(obj Object, mask objtype.FieldClass) (map[string]any, error) {
	typ, ok := objtype.GetByName(obj.TypeName())
	if !ok {
		return nil, fmt.Errorf("serializer: unknown type %q", obj.TypeName())
	}

	out := make(map[string]any)
	for _, fd := range typ.Fields {
		if !fd.Class.Intersects(mask) {
			continue
		}
		v, ok := obj.GetField(fd.Name)
		if !ok {
			continue
		}
		if nested, ok := v.(Object); ok {
			sub, err := Serialize(nested, mask)
			if err != nil {
				return nil, err
			}
			out[fd.Name] = sub
			continue
		}
		out[fd.Name] = v
	}
	return out, nil
}

// Deserialize applies the inverse of Serialize: every key in tree whose
// field is known to obj's type and whose class intersects mask is
// written via ModifyAttribute. safe=true means tree came from an
// untrusted peer: an unknown field name is skipped rather than treated
// as an error, matching apievents.cpp's tolerant inbound deserialize.
func Deserialize(obj Object, tree map[string]any, safe bool, mask objtype.FieldClass) error {
	typ, ok := objtype.GetByName(obj.TypeName())
	if !ok {
		return fmt.Errorf("serializer: unknown type %q", obj.TypeName())
	}

	for name, value := range tree {
		fd, ok := typ.FieldByName(name)
		if !ok {
			if safe {
				continue
			}
			return fmt.Errorf("serializer: no such field %q on type %s", name, obj.TypeName())
		}
		if !fd.Class.Intersects(mask) {
			continue
		}
		if err := obj.ModifyAttribute(name, value); err != nil {
			if safe {
				continue
			}
			return fmt.Errorf("serializer: apply %q: %w", name, err)
		}
	}
	return nil
}
