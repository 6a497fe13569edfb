package objstore

import (
	"fmt"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// fakeBackend is a minimal in-memory Backend used to exercise ODB
// dispatch order without touching the filesystem.
type fakeBackend struct {
	name     string
	priority int
	odb      *ODB
	objects  map[digest.Digest]*RawObject
	writable bool
	header   bool
	reads    *[]string // records every backend probed by Read, in call order
}

func newFakeBackend(name string, priority int, reads *[]string) *fakeBackend {
	return &fakeBackend{name: name, priority: priority, objects: make(map[digest.Digest]*RawObject), reads: reads}
}

func (f *fakeBackend) Priority() int    { return f.priority }
func (f *fakeBackend) boundODB() *ODB   { return f.odb }
func (f *fakeBackend) bindODB(db *ODB)  { f.odb = db }
func (f *fakeBackend) Writable() bool   { return f.writable }
func (f *fakeBackend) SupportsHeader() bool { return f.header }
func (f *fakeBackend) Close() error     { return nil }

func (f *fakeBackend) Exists(id digest.Digest) bool {
	_, ok := f.objects[id]
	return ok
}

func (f *fakeBackend) Read(id digest.Digest) (*RawObject, error) {
	if f.reads != nil {
		*f.reads = append(*f.reads, f.name)
	}
	obj, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("fake %s: %w", f.name, ErrNotFound)
	}
	return &RawObject{Type: obj.Type, Length: obj.Length, Bytes: obj.Bytes}, nil
}

func (f *fakeBackend) ReadHeader(id digest.Digest) (*RawObject, error) {
	if !f.header {
		return nil, fmt.Errorf("fake %s: %w", f.name, ErrNotFound)
	}
	obj, ok := f.objects[id]
	if !ok {
		return nil, fmt.Errorf("fake %s: %w", f.name, ErrNotFound)
	}
	return &RawObject{Type: obj.Type, Length: obj.Length}, nil
}

func (f *fakeBackend) Write(obj *RawObject) (digest.Digest, error) {
	if !f.writable {
		return digest.Digest{}, fmt.Errorf("fake %s: read-only", f.name)
	}
	id, err := HashRawObject(obj)
	if err != nil {
		return digest.Digest{}, err
	}
	f.objects[id] = obj
	return id, nil
}
