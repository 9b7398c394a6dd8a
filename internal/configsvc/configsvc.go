// Package configsvc is C5's object-config service half: on-disk config
// file management plus a constructor registry that plays the role of
// the original's config compiler/script-frame evaluation step.
// Grounded on original_source/lib/remote/configobjectutility.cpp.
package configsvc

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/beaconhq/zonecore/internal/configwriter"
	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/serializer"
	"github.com/beaconhq/zonecore/internal/signalbus"
	"github.com/beaconhq/zonecore/internal/valuetree"
	"github.com/beaconhq/zonecore/internal/zlog"
	"go.uber.org/zap"
)

var log = zlog.Component("configsvc")

// ManagedObject is what a Constructor must return: enough of
// *object.Base's promoted surface for the service to apply attrs,
// register, and activate it.
type ManagedObject interface {
	serializer.Object
	Register() error
	Unregister()
	Activate() error
	Deactivate() error
}

// Constructor builds a zero-valued instance of a type named fullName,
// not yet registered or activated. Service looks one up by type name
// when CreateObject is asked to materialize a new object.
type Constructor func(fullName string, bus *signalbus.Bus) (ManagedObject, error)

// Service implements the create/delete half of C5 against a directory
// tree rooted at moduleDir (the "_api" config module's active stage).
type Service struct {
	moduleDir    string
	bus          *signalbus.Bus
	constructors map[string]Constructor

	createdMu sync.Mutex
	created   map[string]bool // "Type/fullName" -> created via this service
}

func New(moduleDir string, bus *signalbus.Bus) *Service {
	return &Service{
		moduleDir:    moduleDir,
		bus:          bus,
		constructors: make(map[string]Constructor),
		created:      make(map[string]bool),
	}
}

// RegisterConstructor wires a type name to the factory configsvc uses
// when CreateObject needs to materialize a live instance, the stand-in
// for the original's config-compiler-and-script-frame evaluation step.
func (s *Service) RegisterConstructor(typeName string, c Constructor) {
	s.constructors[typeName] = c
}

// GetConfigDir returns the active "_api" module stage directory.
func (s *Service) GetConfigDir() string {
	return filepath.Join(s.moduleDir, "_api", "active")
}

// GetObjectConfigPath returns the on-disk path CreateObject writes to
// and DeleteObject unlinks, one file per object under a per-type,
// lower-cased plural subdirectory.
func (s *Service) GetObjectConfigPath(typ *objtype.TypeDescriptor, fullName string) string {
	typeDir := strings.ToLower(typ.Plural)
	return filepath.Join(s.GetConfigDir(), "conf.d", typeDir, EscapeName(fullName)+".conf")
}

// EscapeName percent-encodes the characters illegal in a filename
// (<>:"/\|?*), a reversible escape so a restart can still map a
// config file back to the object name it names.
func EscapeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		if strings.ContainsRune(`<>:"/\|?*`, r) {
			b.WriteString(url.QueryEscape(string(r)))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// CreateObjectConfig renders the declarative text for one object:
// decomposes fullName via the type's name composer if any, merges the
// decomposed parts into attrs (minus the literal "name" key), and emits
// an `object <Type> "<name>" { ... }` declaration.
func CreateObjectConfig(typ *objtype.TypeDescriptor, fullName string, templates []string, attrs valuetree.Dict) (string, error) {
	name := fullName
	allAttrs := make(valuetree.Dict, len(attrs))
	for k, v := range attrs {
		allAttrs[k] = v
	}

	if typ.Composer != nil {
		parts := typ.Composer.Decompose(fullName)
		if n, ok := parts["name"].(string); ok {
			name = n
		}
		for k, v := range parts {
			allAttrs[k] = v
		}
	}
	delete(allAttrs, "name")

	var w configwriter.Writer
	if err := w.EmitConfigItem(typ.Name, name, false, templates, allAttrs); err != nil {
		return "", fmt.Errorf("configsvc: emit config item: %w", err)
	}
	w.EmitRaw("\n")
	return w.String(), nil
}

// CreateObject writes fullName's rendered config to disk, then
// materializes and activates the live object: applies attrs (Config
// fields only) via the serializer, registers it with its type, and
// activates it. Any failure collects a message into errors and returns
// false without leaving a half-registered object — construction error,
// deserialize error, and register error are all treated the same way
// the original treats a caught evaluation exception.
func (s *Service) CreateObject(typ *objtype.TypeDescriptor, fullName string, templates []string, attrs valuetree.Dict) (bool, []string) {
	var errors []string

	config, err := CreateObjectConfig(typ, fullName, templates, attrs)
	if err != nil {
		return false, []string{err.Error()}
	}

	path := s.GetObjectConfigPath(typ, fullName)
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return false, []string{fmt.Sprintf("configsvc: mkdir: %v", err)}
	}
	if err := os.WriteFile(path, []byte(config), 0600); err != nil {
		return false, []string{fmt.Sprintf("configsvc: write config: %v", err)}
	}

	ctor, ok := s.constructors[typ.Name]
	if !ok {
		return false, []string{fmt.Sprintf("configsvc: no constructor registered for type %q", typ.Name)}
	}

	obj, err := ctor(fullName, s.bus)
	if err != nil {
		return false, []string{err.Error()}
	}

	if err := serializer.Deserialize(obj, attrs, false, objtype.Config); err != nil {
		return false, []string{err.Error()}
	}

	if err := obj.Register(); err != nil {
		return false, []string{err.Error()}
	}

	if err := obj.Activate(); err != nil {
		obj.Unregister()
		return false, []string{err.Error()}
	}

	s.createdMu.Lock()
	s.created[typ.Name+"/"+fullName] = true
	s.createdMu.Unlock()

	log.Notice("created object via API", zap.String("type", typ.Name), zap.String("name", fullName))
	return true, errors
}

// DeleteObject refuses unless obj was created through this service
// (the stand-in for the original's "module == _api" check, since
// zonecore has no general config-module concept). Otherwise it
// deactivates, unregisters, and unlinks the on-disk config file.
func (s *Service) DeleteObject(typ *objtype.TypeDescriptor, obj ManagedObject) (bool, []string) {
	key := typ.Name + "/" + obj.FullName()

	s.createdMu.Lock()
	createdByAPI := s.created[key]
	s.createdMu.Unlock()

	if !createdByAPI {
		return false, []string{"Object cannot be deleted because it was not created using the API."}
	}

	if err := obj.Deactivate(); err != nil {
		return false, []string{err.Error()}
	}
	obj.Unregister()

	s.createdMu.Lock()
	delete(s.created, key)
	s.createdMu.Unlock()

	path := s.GetObjectConfigPath(typ, obj.FullName())
	if _, err := os.Stat(path); err == nil {
		if err := os.Remove(path); err != nil {
			return false, []string{fmt.Sprintf("configsvc: unlink: %v", err)}
		}
	}

	return true, nil
}
