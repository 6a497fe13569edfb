package repository

import (
	"fmt"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/gitobject"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

// sourceSlot is the buffer backing an Object during write-back: it holds
// the active write buffer while Write runs and is empty otherwise. The
// as-read raw bytes are not stored here; Lookup hands them straight to
// the parser.
type sourceSlot struct {
	buf *objstore.WriteBuffer
}

func (s *sourceSlot) open() bool { return s.buf != nil }

func (s *sourceSlot) close() {
	s.buf = nil
}

// Object is the typed object envelope: a digest-identified, optionally
// in-memory commit, tree, blob, or tag, bound to the repository that
// produced or will receive it.
type Object struct {
	repo     *Repository
	kind     objstore.Type
	id       digest.Digest
	inMemory bool
	modified bool
	slot     sourceSlot
	payload  any // *gitobject.Commit | *gitobject.Tree | *gitobject.Blob | *gitobject.Tag
}

// Digest returns the object's content digest. It is the zero digest for
// an in-memory object that has never been written.
func (o *Object) Digest() digest.Digest { return o.id }

// Kind reports which of the four loose types this object is.
func (o *Object) Kind() objstore.Type { return o.kind }

// Repository returns the owning repository.
func (o *Object) Repository() *Repository { return o.repo }

// InMemory reports whether the object has never been written to the
// object database; its digest is undefined.
func (o *Object) InMemory() bool { return o.inMemory }

// Modified reports whether in-memory state diverges from what Digest
// names (always true while InMemory).
func (o *Object) Modified() bool { return o.modified }

// MarkModified flags the object as diverging from its last written
// digest. Callers must invoke this after mutating a payload obtained
// from Commit/Tree/Blob/Tag so the next Write call serializes it.
func (o *Object) MarkModified() { o.modified = true }

// Commit returns the object's commit payload, if its Kind is Commit.
func (o *Object) Commit() (*gitobject.Commit, bool) {
	c, ok := o.payload.(*gitobject.Commit)
	return c, ok
}

// Tree returns the object's tree payload, if its Kind is Tree.
func (o *Object) Tree() (*gitobject.Tree, bool) {
	t, ok := o.payload.(*gitobject.Tree)
	return t, ok
}

// Blob returns the object's blob payload, if its Kind is Blob.
func (o *Object) Blob() (*gitobject.Blob, bool) {
	b, ok := o.payload.(*gitobject.Blob)
	return b, ok
}

// Tag returns the object's tag payload, if its Kind is Tag.
func (o *Object) Tag() (*gitobject.Tag, bool) {
	t, ok := o.payload.(*gitobject.Tag)
	return t, ok
}

func newPayload(kind objstore.Type) (any, error) {
	switch kind {
	case objstore.TypeCommit:
		return &gitobject.Commit{}, nil
	case objstore.TypeTree:
		return &gitobject.Tree{}, nil
	case objstore.TypeBlob:
		return &gitobject.Blob{}, nil
	case objstore.TypeTag:
		return &gitobject.Tag{}, nil
	default:
		return nil, fmt.Errorf("repository: new: %w", objstore.ErrInvalidType)
	}
}

func parsePayload(kind objstore.Type, data []byte) (any, error) {
	switch kind {
	case objstore.TypeCommit:
		return gitobject.ParseCommit(data)
	case objstore.TypeTree:
		return gitobject.ParseTree(data)
	case objstore.TypeBlob:
		return gitobject.ParseBlob(data)
	case objstore.TypeTag:
		return gitobject.ParseTag(data)
	default:
		return nil, fmt.Errorf("repository: parse: %w", objstore.ErrInvalidType)
	}
}

func marshalPayload(kind objstore.Type, payload any) ([]byte, error) {
	switch kind {
	case objstore.TypeCommit:
		c, ok := payload.(*gitobject.Commit)
		if !ok {
			return nil, fmt.Errorf("repository: serialize: %w", objstore.ErrInvalidType)
		}
		return gitobject.MarshalCommit(c), nil
	case objstore.TypeTree:
		t, ok := payload.(*gitobject.Tree)
		if !ok {
			return nil, fmt.Errorf("repository: serialize: %w", objstore.ErrInvalidType)
		}
		return gitobject.MarshalTree(t), nil
	case objstore.TypeBlob:
		b, ok := payload.(*gitobject.Blob)
		if !ok {
			return nil, fmt.Errorf("repository: serialize: %w", objstore.ErrInvalidType)
		}
		return gitobject.MarshalBlob(b), nil
	case objstore.TypeTag:
		t, ok := payload.(*gitobject.Tag)
		if !ok {
			return nil, fmt.Errorf("repository: serialize: %w", objstore.ErrInvalidType)
		}
		return gitobject.MarshalTag(t), nil
	default:
		return nil, fmt.Errorf("repository: serialize: %w", objstore.ErrInvalidType)
	}
}
