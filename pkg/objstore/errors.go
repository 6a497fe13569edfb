package objstore

import "errors"

// Sentinel error kinds forming the exit surface shared by the object
// database, cache, and repository layers. Operations wrap one of these
// with errors.Wrap-style context; callers should use errors.Is to branch.
var (
	// ErrNotFound means a requested object, directory, or file is absent.
	ErrNotFound = errors.New("objstore: not found")
	// ErrNotARepository means path discovery failed its structural check.
	ErrNotARepository = errors.New("objstore: not a repository")
	// ErrInvalidType means a type mismatch at lookup, or an unsupported
	// type at construction.
	ErrInvalidType = errors.New("objstore: invalid type")
	// ErrBusy means a backend is already bound to a different ODB.
	ErrBusy = errors.New("objstore: backend busy")
)
