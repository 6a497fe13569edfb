package gitobject

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

// TagSigningPayload renders the bytes a signer signs: the tag serialized
// as if it carried no signature, mirroring CommitSigningPayload.
func TagSigningPayload(t *Tag) []byte {
	unsigned := *t
	unsigned.Signature = ""
	return MarshalTag(&unsigned)
}

// MarshalTag renders a tag's canonical bytes:
//
//	object <hex>
//	type <target-type>
//	tag <name>
//	tagger <name> <unix-seconds>
//	signature <sig>   (only if present)
//
//	<message>
func MarshalTag(t *Tag) []byte {
	buf := objstore.NewWriteBuffer()
	buf.Printf("object %s\n", t.Target)
	buf.Printf("type %s\n", t.TargetType)
	buf.Printf("tag %s\n", t.Name)
	buf.Printf("tagger %s %d\n", t.Tagger, t.TaggerTime)
	if strings.TrimSpace(t.Signature) != "" {
		buf.Printf("signature %s\n", t.Signature)
	}
	buf.Printf("\n%s", t.Message)
	return buf.Bytes()
}

// ParseTag parses a tag from its canonical bytes.
func ParseTag(data []byte) (*Tag, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("gitobject: parse tag: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	t := &Tag{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("gitobject: parse tag: malformed header line %q", line)
		}
		switch key {
		case "object":
			id, err := digest.Parse(val)
			if err != nil {
				return nil, fmt.Errorf("gitobject: parse tag: object: %w", err)
			}
			t.Target = id
		case "type":
			t.TargetType = val
		case "tag":
			t.Name = val
		case "tagger":
			name, ts, err := splitActor(val)
			if err != nil {
				return nil, fmt.Errorf("gitobject: parse tag: tagger: %w", err)
			}
			t.Tagger, t.TaggerTime = name, ts
		case "signature":
			t.Signature = val
		default:
			return nil, fmt.Errorf("gitobject: parse tag: unknown header key %q", key)
		}
	}
	if t.Target.Zero() {
		return nil, fmt.Errorf("gitobject: parse tag: missing object")
	}
	return t, nil
}
