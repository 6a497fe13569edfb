package objstore

import (
	"fmt"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// HashRawObject computes the content digest of a raw object: the SHA-1 of
// its header ("<type> <len>\0") followed immediately by its payload, with
// no additional separator. Only loose-representable types may be hashed.
func HashRawObject(o *RawObject) (digest.Digest, error) {
	if !o.Type.Loose() {
		return digest.Digest{}, fmt.Errorf("objstore: cannot hash type %v", o.Type)
	}
	if o.Bytes == nil && o.Length != 0 {
		return digest.Digest{}, fmt.Errorf("objstore: nil payload with length %d", o.Length)
	}

	header, err := o.Header()
	if err != nil {
		return digest.Digest{}, err
	}
	return digest.Sum([]byte(header), o.Bytes), nil
}
