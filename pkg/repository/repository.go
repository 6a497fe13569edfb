// Package repository ties the object database, the typed object cache,
// and repository layout discovery together: it is the lookup/new/write
// pipeline the rest of the module is built around.
package repository

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/gitobject"
	"github.com/odvcencio/gitstore/pkg/objcache"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

// Repository owns its on-disk layout, its object database, its typed
// object cache, and a lazily-opened index. Use from a single goroutine
// at a time; a Repository does not synchronize internally.
type Repository struct {
	pathRepository string
	pathODB        string
	pathIndex      string
	pathWorkdir    string // empty iff bare
	bare           bool

	odb   *objstore.ODB
	cache *objcache.Cache[*Object]

	indexOpened bool
	index       *Index

	signer gitobject.CommitSigner
}

// Open classifies path as a repository by the structural check in
// section 4.1: objects/ must be a directory and HEAD must exist. Whether
// the repository is bare is decided by the final path component: a
// basename of ".git" is non-bare, anything else is bare.
func Open(path string) (*Repository, error) {
	info, err := os.Stat(path)
	if err != nil || !info.IsDir() {
		return nil, fmt.Errorf("repository: open %s: %w", path, objstore.ErrNotARepository)
	}

	repoPath := path
	if !strings.HasSuffix(repoPath, string(filepath.Separator)) {
		repoPath += string(filepath.Separator)
	}

	objectsDir := filepath.Join(repoPath, "objects")
	if st, err := os.Stat(objectsDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("repository: open %s: %w", path, objstore.ErrNotARepository)
	}

	headPath := filepath.Join(repoPath, "HEAD")
	if _, err := os.Stat(headPath); err != nil {
		return nil, fmt.Errorf("repository: open %s: %w", path, objstore.ErrNotARepository)
	}

	bare := filepath.Base(filepath.Clean(repoPath)) != ".git"

	var indexPath, workdir string
	if !bare {
		indexPath = filepath.Join(repoPath, "index")
		workdir = filepath.Dir(filepath.Clean(repoPath)) + string(filepath.Separator)
	}

	odb, err := objstore.Open(objectsDir)
	if err != nil {
		return nil, fmt.Errorf("repository: open %s: %w", path, err)
	}

	return &Repository{
		pathRepository: repoPath,
		pathODB:        objectsDir,
		pathIndex:      indexPath,
		pathWorkdir:    workdir,
		bare:           bare,
		odb:            odb,
		cache:          objcache.New[*Object](),
	}, nil
}

// OpenOptions names the explicit paths accepted by Open2. GitDir is
// mandatory; the others default relative to it when empty.
type OpenOptions struct {
	GitDir          string
	ObjectDirectory string
	IndexFile       string
	WorkTree        string
}

// Open2 applies no basename heuristics: every path is explicit or
// defaulted relative to GitDir. GitDir, the object directory, and the
// index file must exist; WorkTree is taken as given without a check.
// Absence of WorkTree implies a bare repository.
func Open2(opts OpenOptions) (*Repository, error) {
	if opts.GitDir == "" {
		return nil, fmt.Errorf("repository: open2: git dir is required: %w", objstore.ErrNotFound)
	}
	if st, err := os.Stat(opts.GitDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("repository: open2: git dir %s: %w", opts.GitDir, objstore.ErrNotFound)
	}
	gitDir := opts.GitDir
	if !strings.HasSuffix(gitDir, string(filepath.Separator)) {
		gitDir += string(filepath.Separator)
	}

	objectsDir := opts.ObjectDirectory
	if objectsDir == "" {
		objectsDir = filepath.Join(gitDir, "objects")
	}
	if st, err := os.Stat(objectsDir); err != nil || !st.IsDir() {
		return nil, fmt.Errorf("repository: open2: object directory %s: %w", objectsDir, objstore.ErrNotFound)
	}

	indexFile := opts.IndexFile
	if indexFile == "" {
		indexFile = filepath.Join(gitDir, "index")
	}
	if _, err := os.Stat(indexFile); err != nil {
		return nil, fmt.Errorf("repository: open2: index file %s: %w", indexFile, objstore.ErrNotFound)
	}

	odb, err := objstore.Open(objectsDir)
	if err != nil {
		return nil, fmt.Errorf("repository: open2: %w", err)
	}

	return &Repository{
		pathRepository: gitDir,
		pathODB:        objectsDir,
		pathIndex:      indexFile,
		pathWorkdir:    opts.WorkTree,
		bare:           opts.WorkTree == "",
		odb:            odb,
		cache:          objcache.New[*Object](),
	}, nil
}

// Path returns the repository directory path (trailing separator).
func (r *Repository) Path() string { return r.pathRepository }

// ObjectsPath returns the object database root.
func (r *Repository) ObjectsPath() string { return r.pathODB }

// IndexPath returns the configured index file path, possibly empty for
// a bare repository opened via Open.
func (r *Repository) IndexPath() string { return r.pathIndex }

// WorkdirPath returns the working tree root, or "" if bare.
func (r *Repository) WorkdirPath() string { return r.pathWorkdir }

// IsBare reports whether the repository has no working tree.
func (r *Repository) IsBare() bool { return r.bare }

// DB returns the repository's underlying object database, for
// collaborators (such as bundle import/export) that operate on raw
// objects below the typed cache.
func (r *Repository) DB() *objstore.ODB { return r.odb }

// SetSigner installs the signer used by SignCommit and SignTag.
func (r *Repository) SetSigner(s gitobject.CommitSigner) { r.signer = s }

// Lookup implements the lookup pipeline (section 4.8). A nil expected
// type skips the type check (the spec's ANY). A cache hit is returned
// without touching expected at all, matching the no-type-check-on-hit
// rule.
func (r *Repository) Lookup(id digest.Digest, expected *objstore.Type) (*Object, error) {
	if obj, ok := r.cache.Get(id); ok {
		return obj, nil
	}

	raw, err := r.odb.Read(id)
	if err != nil {
		return nil, fmt.Errorf("repository: lookup %s: %w", id, err)
	}

	if expected != nil && *expected != raw.Type {
		raw.Close()
		return nil, fmt.Errorf("repository: lookup %s: want %v, found %v: %w", id, *expected, raw.Type, objstore.ErrInvalidType)
	}

	payload, err := parsePayload(raw.Type, raw.Bytes)
	if err != nil {
		raw.Close()
		return nil, fmt.Errorf("repository: lookup %s: %w", id, err)
	}
	raw.Close()

	obj := &Object{repo: r, kind: raw.Type, id: id, payload: payload}
	r.cache.Insert(id, obj)
	return obj, nil
}

// New implements the new-object pipeline (section 4.9): a zero-filled,
// in-memory, modified object with no digest and no cache binding.
func (r *Repository) New(kind objstore.Type) (*Object, error) {
	payload, err := newPayload(kind)
	if err != nil {
		return nil, fmt.Errorf("repository: new: %w", err)
	}
	return &Object{repo: r, kind: kind, inMemory: true, modified: true, payload: payload}, nil
}

// Write implements the write-back pipeline (section 4.10).
func (r *Repository) Write(obj *Object) error {
	if obj.repo != r {
		return fmt.Errorf("repository: write: object belongs to a different repository")
	}
	if !obj.modified {
		return nil
	}

	obj.slot.buf = objstore.NewWriteBuffer()
	marshaled, err := marshalPayload(obj.kind, obj.payload)
	if err != nil {
		obj.slot.close()
		return fmt.Errorf("repository: write: %w", err)
	}
	if _, err := obj.slot.buf.Write(marshaled); err != nil {
		obj.slot.close()
		return fmt.Errorf("repository: write: %w", err)
	}

	raw := &objstore.RawObject{Type: obj.kind, Length: int64(obj.slot.buf.Len()), Bytes: obj.slot.buf.Bytes()}
	newID, err := r.odb.Write(raw)
	if err != nil {
		obj.slot.close()
		return fmt.Errorf("repository: write: %w", err)
	}

	if !obj.inMemory {
		r.cache.Remove(obj.id)
	}

	obj.id = newID
	obj.modified = false
	obj.inMemory = false
	obj.slot.close()
	r.cache.Insert(newID, obj)
	return nil
}

// SignCommit signs obj's commit payload with the repository's installed
// signer and marks the object modified. Fails if obj is not a commit or
// no signer has been configured.
func (r *Repository) SignCommit(obj *Object) error {
	if r.signer == nil {
		return fmt.Errorf("repository: sign commit: no signer configured")
	}
	c, ok := obj.Commit()
	if !ok {
		return fmt.Errorf("repository: sign commit: %w", objstore.ErrInvalidType)
	}
	payload := gitobject.CommitSigningPayload(c)
	sig, err := r.signer(payload)
	if err != nil {
		return fmt.Errorf("repository: sign commit: %w", err)
	}
	c.Signature = sig
	obj.MarkModified()
	return nil
}

// SignTag signs obj's tag payload with the repository's installed
// signer and marks the object modified. Fails if obj is not a tag or no
// signer has been configured. Mirrors SignCommit, using the tag's own
// payload renderer (section 4.13).
func (r *Repository) SignTag(obj *Object) error {
	if r.signer == nil {
		return fmt.Errorf("repository: sign tag: no signer configured")
	}
	t, ok := obj.Tag()
	if !ok {
		return fmt.Errorf("repository: sign tag: %w", objstore.ErrInvalidType)
	}
	payload := gitobject.TagSigningPayload(t)
	sig, err := r.signer(payload)
	if err != nil {
		return fmt.Errorf("repository: sign tag: %w", err)
	}
	t.Signature = sig
	obj.MarkModified()
	return nil
}

// Index lazily opens the working-directory index on first call; the
// opened instance (or nil on failure) is cached for subsequent calls.
// Errors are never propagated, matching section 4.11.
func (r *Repository) Index() *Index {
	if r.indexOpened {
		return r.index
	}
	r.indexOpened = true
	idx, err := openIndex(r.pathIndex)
	if err != nil {
		r.index = nil
		return nil
	}
	r.index = idx
	return r.index
}

// Close tears down the repository: it drops every cached object,
// releases the lazily-opened index, and closes the object database
// (which in turn closes every backend).
func (r *Repository) Close() error {
	r.cache = objcache.New[*Object]()
	r.index = nil
	r.indexOpened = false
	return r.odb.Close()
}
