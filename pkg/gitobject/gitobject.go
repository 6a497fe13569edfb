// Package gitobject implements the per-type parsers and serializers for
// the four loose-representable object kinds: blobs, trees, commits, and
// tags. These are pure functions over byte slices; none of them touch a
// repository, an ODB, or a cache.
package gitobject

import (
	"github.com/odvcencio/gitstore/pkg/digest"
)

// Tree entry mode strings, compatible with Git's canonical mode encoding.
const (
	ModeDir  = "40000"
	ModeFile = "100644"
	ModeExec = "100755"
)

// Blob holds a file's raw byte content. Its canonical serialization is
// its content, verbatim.
type Blob struct {
	Data []byte
}

// TreeEntry names one child of a tree: either a subtree (ModeDir) or a
// blob (ModeFile / ModeExec), identified by digest.
type TreeEntry struct {
	Name string
	Mode string
	ID   digest.Digest
}

// Tree is an ordered set of named entries, always serialized sorted by
// Name.
type Tree struct {
	Entries []TreeEntry
}

// Commit records a tree snapshot, its parent commits, and authorship.
type Commit struct {
	Tree       digest.Digest
	Parents    []digest.Digest
	Author     string
	AuthorTime int64
	Committer  string
	CommitTime int64
	Signature  string
	Message    string
}

// Tag is an annotated pointer at another object, optionally signed.
type Tag struct {
	Target     digest.Digest
	TargetType string
	Name       string
	Tagger     string
	TaggerTime int64
	Signature  string
	Message    string
}
