package objstore

import (
	"errors"
	"fmt"
	"sort"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// ODB is a priority-ordered collection of backends. It does not itself
// parse, validate, hash, or cache objects; it is a dispatch layer that
// probes backends in priority order (ties broken by insertion order)
// until one satisfies the request.
type ODB struct {
	backends []Backend
	seq      []int // insertion sequence per backend, parallel to backends
	next     int
}

// New creates an empty ODB.
func New() *ODB {
	return &ODB{}
}

// Open composes the default backend stack for an object directory: a
// loose-object backend and a packed backend. Either may silently decline
// if its on-disk substrate is absent; an empty ODB is not itself an
// error, but subsequent reads will fail with ErrNotFound.
func Open(objectsDir string) (*ODB, error) {
	db := New()

	loose, err := OpenLooseBackend(objectsDir)
	if err == nil {
		if addErr := db.AddBackend(loose); addErr != nil {
			db.Close()
			return nil, addErr
		}
	}

	packed, err := OpenPackBackend(objectsDir)
	if err == nil {
		if addErr := db.AddBackend(packed); addErr != nil {
			db.Close()
			return nil, addErr
		}
	}

	return db, nil
}

// backendOwner is implemented by backends that track which ODB they are
// bound to, so AddBackend can reject re-use across distinct ODBs.
type backendOwner interface {
	boundODB() *ODB
	bindODB(*ODB)
}

// AddBackend inserts b into the collection and re-sorts by descending
// priority. Rejects with ErrBusy if b is already bound to a different
// ODB.
func (db *ODB) AddBackend(b Backend) error {
	if owner, ok := b.(backendOwner); ok {
		if bound := owner.boundODB(); bound != nil && bound != db {
			return fmt.Errorf("objstore: add backend: %w", ErrBusy)
		}
		owner.bindODB(db)
	}

	db.backends = append(db.backends, b)
	db.seq = append(db.seq, db.next)
	db.next++
	db.sort()
	return nil
}

func (db *ODB) sort() {
	type indexed struct {
		b   Backend
		seq int
	}
	idx := make([]indexed, len(db.backends))
	for i, b := range db.backends {
		idx[i] = indexed{b, db.seq[i]}
	}
	sort.SliceStable(idx, func(i, j int) bool {
		if idx[i].b.Priority() != idx[j].b.Priority() {
			return idx[i].b.Priority() > idx[j].b.Priority()
		}
		return idx[i].seq < idx[j].seq
	})
	for i, e := range idx {
		db.backends[i] = e.b
		db.seq[i] = e.seq
	}
}

// Exists probes backends in priority order, returning true on the first
// backend that confirms.
func (db *ODB) Exists(id digest.Digest) bool {
	for _, b := range db.backends {
		if b.Exists(id) {
			return true
		}
	}
	return false
}

// Read probes backends in priority order; the first backend to succeed
// wins. Fails with ErrNotFound iff every backend reports not-found.
func (db *ODB) Read(id digest.Digest) (*RawObject, error) {
	var otherErr error
	for _, b := range db.backends {
		obj, err := b.Read(id)
		if err == nil {
			return obj, nil
		}
		if otherErr == nil && !errors.Is(err, ErrNotFound) {
			otherErr = err
		}
	}
	if otherErr != nil {
		return nil, fmt.Errorf("objstore: read %s: %w", id, otherErr)
	}
	return nil, fmt.Errorf("objstore: read %s: %w", id, ErrNotFound)
}

// ReadHeader probes backends that advertise header support, first
// success wins. If all decline or fail, it degrades to a full Read
// followed by an immediate release of the payload, so the caller still
// receives type and length.
func (db *ODB) ReadHeader(id digest.Digest) (*RawObject, error) {
	for _, b := range db.backends {
		if hc, ok := b.(HeaderCapable); !ok || !hc.SupportsHeader() {
			continue
		}
		obj, err := b.ReadHeader(id)
		if err == nil {
			return obj, nil
		}
	}

	obj, err := db.Read(id)
	if err != nil {
		return nil, err
	}
	obj.Bytes = nil
	return obj, nil
}

// Write probes backends in priority order; the first backend that
// advertises Write is asked. If it fails, the next writable backend is
// tried. Returns an error if no backend can write.
func (db *ODB) Write(obj *RawObject) (digest.Digest, error) {
	var lastErr error
	for _, b := range db.backends {
		if w, ok := b.(Writable); ok && !w.Writable() {
			continue
		}
		id, err := b.Write(obj)
		if err == nil {
			return id, nil
		}
		lastErr = err
	}
	if lastErr != nil {
		return digest.Digest{}, fmt.Errorf("objstore: write: %w", lastErr)
	}
	return digest.Digest{}, fmt.Errorf("objstore: write: no backend can write")
}

// Close invokes each backend's Close hook, then releases the collection.
func (db *ODB) Close() error {
	var firstErr error
	for _, b := range db.backends {
		if err := b.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	db.backends = nil
	db.seq = nil
	return firstErr
}

// Backends returns the current priority-ordered backend list. The slice
// is a copy; mutating it does not affect the ODB.
func (db *ODB) Backends() []Backend {
	out := make([]Backend, len(db.backends))
	copy(out, db.backends)
	return out
}
