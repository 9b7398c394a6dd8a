// Package snapshot implements C4: dumping and restoring configurable
// object state to a net-string-framed file, grounded on
// configobject.cpp's DumpObjects/RestoreObjects pair and persisted using
// pkg/netstring's length-prefixed record framing.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/beaconhq/zonecore/internal/objtype"
	"github.com/beaconhq/zonecore/internal/serializer"
	"github.com/beaconhq/zonecore/internal/zlog"
	"github.com/beaconhq/zonecore/pkg/netstring"
)

var log = zlog.Component("snapshot")

// Object is everything DumpObjects/RestoreObjects needs from a live
// configurable object: field access for (de)serialization plus the
// lifecycle flags that gate restoration.
type Object interface {
	serializer.Object
	Active() bool
	StateLoaded() bool
	MarkStateLoaded()
}

// StateLoadable is implemented by domain types that need to finalize
// once their snapshot record (or its absence) has been processed.
type StateLoadable interface {
	OnStateLoaded()
}

type record struct {
	Type   string         `json:"type"`
	Name   string         `json:"name"`
	Update map[string]any `json:"update"`
}

// DumpObjects writes every live object of every registered type to path,
// filtered by mask. Writes go to path+".tmp" first; on success the temp
// file is renamed over path, an atomic replace on POSIX filesystems.
func DumpObjects(path string, mask objtype.FieldClass) error {
	tmp := path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("snapshot: create %s: %w", tmp, err)
	}

	nw := netstring.NewWriter(f)
	var writeErr error

	for _, typ := range objtype.All() {
		for _, obj := range typ.All() {
			o, ok := obj.(Object)
			if !ok {
				continue
			}
			fields, err := serializer.Serialize(o, mask)
			if err != nil {
				writeErr = fmt.Errorf("snapshot: serialize %s %s: %w", typ.Name, o.FullName(), err)
				break
			}
			if len(fields) == 0 {
				continue
			}
			rec := record{Type: typ.Name, Name: o.FullName(), Update: fields}
			b, err := json.Marshal(rec)
			if err != nil {
				writeErr = fmt.Errorf("snapshot: marshal %s %s: %w", typ.Name, o.FullName(), err)
				break
			}
			if err := nw.WriteRecord(b); err != nil {
				writeErr = fmt.Errorf("snapshot: write record: %w", err)
				break
			}
		}
		if writeErr != nil {
			break
		}
	}

	if err := f.Close(); err != nil && writeErr == nil {
		writeErr = fmt.Errorf("snapshot: close %s: %w", tmp, err)
	}
	if writeErr != nil {
		os.Remove(tmp)
		return writeErr
	}

	if err := os.Rename(tmp, path); err != nil {
		return fmt.Errorf("snapshot: rename %s to %s: %w", tmp, path, err)
	}
	return nil
}

const queueCapacity = 25000

// RestoreObjects reads path and applies each record's fields to the
// matching live object, with parallelism workers draining a bounded
// queue. An unreadable file is a fatal I/O error; a malformed or
// stale individual record is logged and skipped. After the queue
// drains, every registered object not touched by a record still
// receives OnStateLoaded once.
func RestoreObjects(path string, mask objtype.FieldClass, parallelism int) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	defer f.Close()

	nr := netstring.NewReader(f)

	if parallelism < 1 {
		parallelism = 1
	}

	queue := make(chan []byte, queueCapacity)
	touched := make(chan string, queueCapacity)
	done := make(chan struct{})

	for i := 0; i < parallelism; i++ {
		go func() {
			for raw := range queue {
				if name, ok := restoreRecord(raw, mask); ok {
					touched <- name
				}
			}
			done <- struct{}{}
		}()
	}

	touchedNames := make(map[string]bool)
	collectDone := make(chan struct{})
	go func() {
		for name := range touched {
			touchedNames[name] = true
		}
		close(collectDone)
	}()

	for {
		raw, err := nr.ReadRecord()
		if err != nil {
			break
		}
		// Copy: the reader's buffer is reused across ReadRecord calls in
		// some implementations, and workers read this asynchronously.
		cp := append([]byte(nil), raw...)
		queue <- cp
	}
	close(queue)

	for i := 0; i < parallelism; i++ {
		<-done
	}
	close(touched)
	<-collectDone

	for _, typ := range objtype.All() {
		for _, obj := range typ.All() {
			o, ok := obj.(Object)
			if !ok {
				continue
			}
			if touchedNames[typ.Name+"/"+o.FullName()] {
				continue
			}
			finalizeStateLoad(o)
		}
	}

	return nil
}

// restoreRecord applies one record and returns the "type/name" key that
// was touched, or false if the record was skipped.
func restoreRecord(raw []byte, mask objtype.FieldClass) (string, bool) {
	var rec record
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Warning("malformed snapshot record", zap.Error(err))
		return "", false
	}

	typ, ok := objtype.GetByName(rec.Type)
	if !ok {
		log.Debug("stale snapshot record: unknown type", zap.String("type", rec.Type))
		return "", false
	}

	raw2, ok := typ.ByName(rec.Name)
	if !ok {
		log.Debug("stale snapshot record: unknown object", zap.String("type", rec.Type), zap.String("name", rec.Name))
		return "", false
	}

	o, ok := raw2.(Object)
	if !ok {
		return "", false
	}

	if o.Active() {
		log.Warning("snapshot record for already-active object", zap.String("type", rec.Type), zap.String("name", rec.Name))
		return "", false
	}

	if err := serializer.Deserialize(o, rec.Update, true, mask); err != nil {
		log.Warning("snapshot record deserialize failed", zap.String("type", rec.Type), zap.String("name", rec.Name), zap.Error(err))
		return "", false
	}

	finalizeStateLoad(o)
	return rec.Type + "/" + rec.Name, true
}

func finalizeStateLoad(o Object) {
	if sl, ok := o.(StateLoadable); ok {
		sl.OnStateLoaded()
	}
	o.MarkStateLoaded()
}
