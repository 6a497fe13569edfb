package objstore

import "github.com/odvcencio/gitstore/pkg/digest"

// Backend is a storage provider contributing to the ODB. Exists,
// ReadHeader, and Write are optional capabilities: a backend that does
// not support one returns false (Exists), ErrNotFound (ReadHeader), or a
// non-nil error (Write) so the ODB can fall through to the next backend. Read is
// mandatory. Priority is intrinsic to the backend, not negotiated by the
// ODB; ties break by insertion order.
type Backend interface {
	Priority() int
	Exists(id digest.Digest) bool
	Read(id digest.Digest) (*RawObject, error)
	ReadHeader(id digest.Digest) (*RawObject, error)
	Write(obj *RawObject) (digest.Digest, error)
	Close() error
}

// Writable is implemented by backends that actually accept writes;
// read-only backends (e.g. a pack backend with no writer configured)
// return false so the ODB skips them without attempting a write.
type Writable interface {
	Writable() bool
}

// HeaderCapable is implemented by backends that can answer ReadHeader
// without materializing the full payload. Backends without this
// capability should have ReadHeader return ErrNotFound so the ODB
// degrades to a full Read.
type HeaderCapable interface {
	SupportsHeader() bool
}
