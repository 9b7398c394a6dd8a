// Package configwriter is C5's emitter half: grammar-faithful text
// generation for the declarative configuration dialect CreateObjectConfig
// (internal/configsvc) writes to disk. Grounded on
// original_source/lib/config/configwriter.cpp, translated from
// ostream-writing methods into methods on a strings.Builder-backed Writer.
package configwriter

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/beaconhq/zonecore/internal/valuetree"
)

// keywords are the dialect's reserved words; colliding identifiers are
// emitted with an "@" escape prefix rather than bare.
var keywords = map[string]bool{
	"object": true, "template": true, "include": true, "include_recursive": true,
	"include_zones": true, "import": true, "apply": true, "to": true, "where": true,
	"assign": true, "ignore": true, "any": true, "all": true, "null": true,
	"true": true, "false": true, "partial": true, "let": true, "while": true,
	"for": true, "continue": true, "break": true, "return": true, "function": true,
	"do": true, "if": true, "else": true, "in": true, "namespace": true,
	"using": true, "globals": true, "local": true,
}

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// Writer accumulates emitted text. The zero value is ready to use.
type Writer struct {
	b strings.Builder
}

func (w *Writer) String() string { return w.b.String() }

func (w *Writer) EmitBoolean(val bool) {
	if val {
		w.b.WriteString("true")
	} else {
		w.b.WriteString("false")
	}
}

func (w *Writer) EmitNumber(val float64) {
	w.b.WriteString(strconv.FormatFloat(val, 'g', -1, 64))
}

func (w *Writer) EmitString(val string) {
	w.b.WriteByte('"')
	w.b.WriteString(EscapeIcingaString(val))
	w.b.WriteByte('"')
}

func (w *Writer) EmitEmpty() {
	w.b.WriteString("null")
}

func (w *Writer) EmitRaw(val string) {
	w.b.WriteString(val)
}

func (w *Writer) EmitIndent(level int) {
	for i := 0; i < level; i++ {
		w.b.WriteByte('\t')
	}
}

// EmitIdentifier writes identifier bare if it matches the bare-identifier
// grammar and is not a keyword, "@"-prefixed if it collides with a
// keyword, quoted if inAssignment and otherwise invalid, or returns an
// error if used outside assignment position and still invalid.
func (w *Writer) EmitIdentifier(identifier string, inAssignment bool) error {
	if keywords[identifier] {
		w.b.WriteByte('@')
		w.b.WriteString(identifier)
		return nil
	}
	if identRe.MatchString(identifier) {
		w.b.WriteString(identifier)
		return nil
	}
	if inAssignment {
		w.EmitString(identifier)
		return nil
	}
	return fmt.Errorf("configwriter: invalid identifier %q", identifier)
}

// EmitArrayItems writes the comma-separated elements of vals, without the
// surrounding brackets.
func (w *Writer) EmitArrayItems(vals []any) error {
	for i, v := range vals {
		if i > 0 {
			w.b.WriteString(", ")
		}
		if err := w.EmitValue(0, v); err != nil {
			return err
		}
	}
	return nil
}

func (w *Writer) EmitArray(vals []any) error {
	w.b.WriteString("[ ")
	if err := w.EmitArrayItems(vals); err != nil {
		return err
	}
	w.b.WriteString(" ]")
	return nil
}

// EmitScope writes a `{ ... }` block: optional import lines, then one
// `<id> = <value>` line per key in val, sorted for deterministic output.
// Dotted keys ("a.b.c") render as `a["b"]["c"]` on the left-hand side.
func (w *Writer) EmitScope(indentLevel int, val valuetree.Dict, imports []string) error {
	w.b.WriteByte('{')

	for _, imp := range imports {
		w.b.WriteByte('\n')
		w.EmitIndent(indentLevel)
		w.b.WriteString("import ")
		w.EmitString(imp)
	}

	keys := make([]string, 0, len(val))
	for k := range val {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, k := range keys {
		w.b.WriteByte('\n')
		w.EmitIndent(indentLevel)

		tokens := strings.Split(k, ".")
		if err := w.EmitIdentifier(tokens[0], true); err != nil {
			return err
		}
		for _, tok := range tokens[1:] {
			w.b.WriteByte('[')
			w.EmitString(tok)
			w.b.WriteByte(']')
		}

		w.b.WriteString(" = ")
		if err := w.EmitValue(indentLevel+1, val[k]); err != nil {
			return err
		}
	}

	w.b.WriteByte('\n')
	w.EmitIndent(indentLevel - 1)
	w.b.WriteByte('}')
	return nil
}

// EmitValue dispatches on val's dynamic type to the matching Emit* method.
func (w *Writer) EmitValue(indentLevel int, val any) error {
	switch t := val.(type) {
	case nil:
		w.EmitEmpty()
	case []any:
		return w.EmitArray(t)
	case valuetree.Dict:
		return w.EmitScope(indentLevel, t, nil)
	case map[string]any:
		return w.EmitScope(indentLevel, valuetree.Dict(t), nil)
	case string:
		w.EmitString(t)
	case bool:
		w.EmitBoolean(t)
	case float64:
		w.EmitNumber(t)
	case int:
		w.EmitNumber(float64(t))
	default:
		return fmt.Errorf("configwriter: unrepresentable value of type %T", val)
	}
	return nil
}

// EmitConfigItem writes a full top-level `object <Type> "<name>" { ... }`
// (or `template` when isTemplate) declaration.
func (w *Writer) EmitConfigItem(typ, name string, isTemplate bool, imports []string, attrs valuetree.Dict) error {
	if isTemplate {
		w.b.WriteString("template ")
	} else {
		w.b.WriteString("object ")
	}
	if err := w.EmitIdentifier(typ, false); err != nil {
		return err
	}
	w.b.WriteByte(' ')
	w.EmitString(name)
	w.b.WriteByte(' ')
	return w.EmitScope(1, attrs, imports)
}

func (w *Writer) EmitComment(text string) {
	w.b.WriteString("/* ")
	w.b.WriteString(text)
	w.b.WriteString(" */\n")
}

func (w *Writer) EmitFunctionCall(name string, arguments []any) error {
	if err := w.EmitIdentifier(name, false); err != nil {
		return err
	}
	w.b.WriteByte('(')
	if err := w.EmitArrayItems(arguments); err != nil {
		return err
	}
	w.b.WriteByte(')')
	return nil
}

// EscapeIcingaString escapes the characters the dialect's double-quoted
// string grammar requires.
func EscapeIcingaString(s string) string {
	var b strings.Builder
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\t':
			b.WriteString(`\t`)
		case '\r':
			b.WriteString(`\r`)
		case '\b':
			b.WriteString(`\b`)
		case '\f':
			b.WriteString(`\f`)
		case '"':
			b.WriteString(`\"`)
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
