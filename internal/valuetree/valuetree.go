// Package valuetree is the generic self-describing value tree the
// serializer produces and ModifyAttribute walks into: maps of string to
// arbitrary JSON-shaped values, with nested maps for dotted attribute
// paths such as "vars.os".
package valuetree

import "fmt"

// Dict is a self-describing mapping, the tree shape both the serializer
// (C3) and the config emitter (C5) walk.
type Dict map[string]any

// Clone deep-copies a value so mutation through one reference (e.g. the
// snapshot recorded in original-attributes) never aliases another (the
// live field value being walked by ModifyAttribute).
func Clone(v any) any {
	switch t := v.(type) {
	case Dict:
		out := make(Dict, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case map[string]any:
		out := make(Dict, len(t))
		for k, val := range t {
			out[k] = Clone(val)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = Clone(val)
		}
		return out
	default:
		return v
	}
}

// SetPath walks tokens[:len-1] into d, creating empty Dicts for any missing
// intermediate key, and sets tokens[last] to value in the deepest Dict. It
// returns an InvalidArgument-flavored error if an intermediate value exists
// but is not itself a Dict.
func SetPath(root any, tokens []string, value any) (any, error) {
	if len(tokens) == 0 {
		return value, nil
	}
	if len(tokens) == 1 {
		d, err := asDict(root)
		if err != nil {
			return nil, err
		}
		d[tokens[0]] = value
		return d, nil
	}

	d, err := asDict(root)
	if err != nil {
		return nil, err
	}

	head, rest := tokens[0], tokens[1:]
	child, err := SetPath(d[head], rest, value)
	if err != nil {
		return nil, err
	}
	d[head] = child
	return d, nil
}

// GetPath reads the value at a dotted path, walking nested Dicts. ok is
// false if any intermediate segment is missing or not a Dict.
func GetPath(root any, tokens []string) (value any, ok bool) {
	cur := root
	for _, tok := range tokens {
		d, isDict := toDict(cur)
		if !isDict {
			return nil, false
		}
		v, present := d[tok]
		if !present {
			return nil, false
		}
		cur = v
	}
	return cur, true
}

// asDict returns root as a Dict, creating a fresh empty Dict if root is nil
// or an empty Dict/map, and failing if root is any other non-Dict value.
func asDict(root any) (Dict, error) {
	if root == nil {
		return Dict{}, nil
	}
	if d, ok := toDict(root); ok {
		if len(d) == 0 {
			return Dict{}, nil
		}
		return d, nil
	}
	return nil, fmt.Errorf("invalid argument: intermediate value is not a mapping")
}

func toDict(v any) (Dict, bool) {
	switch t := v.(type) {
	case Dict:
		return t, true
	case map[string]any:
		return Dict(t), true
	default:
		return nil, false
	}
}
