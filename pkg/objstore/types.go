// Package objstore implements the object database: a priority-ordered
// stack of storage backends that collectively satisfy exists/read/
// read-header/write on raw, content-addressed objects.
package objstore

import "fmt"

// Type identifies the kind of a raw object.
type Type uint8

const (
	TypeExt1     Type = 0
	TypeCommit   Type = 1
	TypeTree     Type = 2
	TypeBlob     Type = 3
	TypeTag      Type = 4
	TypeExt2     Type = 5
	TypeOfsDelta Type = 6
	TypeRefDelta Type = 7
	TypeBad      Type = 255
)

var typeNames = [...]string{
	TypeExt1:     "",
	TypeCommit:   "commit",
	TypeTree:     "tree",
	TypeBlob:     "blob",
	TypeTag:      "tag",
	TypeExt2:     "",
	TypeOfsDelta: "OFS_DELTA",
	TypeRefDelta: "REF_DELTA",
}

// String returns the type's name from the type-name table: the lowercase
// hashing-header name for the four loose types, "OFS_DELTA" or
// "REF_DELTA" for the delta types, and "" for types with none.
func (t Type) String() string {
	if int(t) < len(typeNames) {
		return typeNames[t]
	}
	return ""
}

// TypeFromString maps a header type name back to its Type, or TypeBad if
// the name is not recognized.
func TypeFromString(s string) Type {
	if s == "" {
		return TypeBad
	}
	for i, name := range typeNames {
		if name == s && name != "" {
			return Type(i)
		}
	}
	return TypeBad
}

// Loose reports whether t may be hashed and stored as a standalone loose
// object (commit, tree, blob, tag).
func (t Type) Loose() bool {
	switch t {
	case TypeCommit, TypeTree, TypeBlob, TypeTag:
		return true
	default:
		return false
	}
}

// RawObject holds an object's type, declared length, and payload bytes.
// Bytes holds Length bytes; a header-only result from ReadHeader carries
// Type and Length with nil Bytes.
type RawObject struct {
	Type   Type
	Length int64
	Bytes  []byte
}

// Close releases the object's byte buffer.
func (o *RawObject) Close() {
	o.Bytes = nil
	o.Length = 0
}

// Header renders the canonical pre-image header for hashing: the
// lowercase type name, one space, the decimal length, and a trailing NUL.
func (o *RawObject) Header() (string, error) {
	if !o.Type.Loose() {
		return "", fmt.Errorf("objstore: type %v is not loose-representable", o.Type)
	}
	return fmt.Sprintf("%s %d\x00", o.Type, o.Length), nil
}
