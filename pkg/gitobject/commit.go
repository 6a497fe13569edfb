package gitobject

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

// CommitSigner signs a commit's canonical signing payload and returns an
// encoded signature string to be stored in Commit.Signature.
type CommitSigner func(payload []byte) (string, error)

// CommitSigningPayload renders the bytes a signer signs: the commit
// serialized as if it carried no signature. Signing happens before the
// signature field exists, so it cannot be part of its own payload.
func CommitSigningPayload(c *Commit) []byte {
	unsigned := *c
	unsigned.Signature = ""
	return MarshalCommit(&unsigned)
}

// MarshalCommit renders a commit's canonical bytes:
//
//	tree <hex>
//	parent <hex>   (zero or more, in order)
//	author <name> <unix-seconds>
//	committer <name> <unix-seconds>
//	signature <sig>   (only if present)
//
//	<message>
func MarshalCommit(c *Commit) []byte {
	buf := objstore.NewWriteBuffer()
	buf.Printf("tree %s\n", c.Tree)
	for _, p := range c.Parents {
		buf.Printf("parent %s\n", p)
	}
	buf.Printf("author %s %d\n", c.Author, c.AuthorTime)
	buf.Printf("committer %s %d\n", c.Committer, c.CommitTime)
	if strings.TrimSpace(c.Signature) != "" {
		buf.Printf("signature %s\n", c.Signature)
	}
	buf.Printf("\n%s", c.Message)
	return buf.Bytes()
}

// ParseCommit parses a commit from its canonical bytes.
func ParseCommit(data []byte) (*Commit, error) {
	idx := bytes.Index(data, []byte("\n\n"))
	if idx < 0 {
		return nil, fmt.Errorf("gitobject: parse commit: missing header/message separator")
	}
	header := string(data[:idx])
	message := string(data[idx+2:])

	c := &Commit{Message: message}
	for _, line := range strings.Split(header, "\n") {
		key, val, ok := strings.Cut(line, " ")
		if !ok {
			return nil, fmt.Errorf("gitobject: parse commit: malformed header line %q", line)
		}
		switch key {
		case "tree":
			id, err := digest.Parse(val)
			if err != nil {
				return nil, fmt.Errorf("gitobject: parse commit: tree: %w", err)
			}
			c.Tree = id
		case "parent":
			id, err := digest.Parse(val)
			if err != nil {
				return nil, fmt.Errorf("gitobject: parse commit: parent: %w", err)
			}
			c.Parents = append(c.Parents, id)
		case "author":
			name, ts, err := splitActor(val)
			if err != nil {
				return nil, fmt.Errorf("gitobject: parse commit: author: %w", err)
			}
			c.Author, c.AuthorTime = name, ts
		case "committer":
			name, ts, err := splitActor(val)
			if err != nil {
				return nil, fmt.Errorf("gitobject: parse commit: committer: %w", err)
			}
			c.Committer, c.CommitTime = name, ts
		case "signature":
			c.Signature = val
		default:
			return nil, fmt.Errorf("gitobject: parse commit: unknown header key %q", key)
		}
	}
	if c.Tree.Zero() {
		return nil, fmt.Errorf("gitobject: parse commit: missing tree")
	}
	return c, nil
}

// splitActor separates a "<name> <unix-seconds>" field, where name is
// permitted to contain spaces.
func splitActor(s string) (string, int64, error) {
	space := strings.LastIndex(s, " ")
	if space < 0 {
		return "", 0, fmt.Errorf("malformed actor field %q", s)
	}
	name := s[:space]
	ts, err := strconv.ParseInt(s[space+1:], 10, 64)
	if err != nil {
		return "", 0, fmt.Errorf("bad timestamp in %q: %w", s, err)
	}
	return name, ts, nil
}
