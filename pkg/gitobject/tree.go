package gitobject

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

// MarshalTree renders a tree's canonical bytes: entries sorted by Name,
// each encoded as "<mode> <name>\x00" followed by the entry's raw 20-byte
// digest, concatenated with no additional separators.
func MarshalTree(t *Tree) []byte {
	sorted := make([]TreeEntry, len(t.Entries))
	copy(sorted, t.Entries)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Name < sorted[j].Name })

	buf := objstore.NewWriteBuffer()
	for _, e := range sorted {
		mode := e.Mode
		if mode == "" {
			mode = ModeFile
		}
		buf.Printf("%s %s\x00", mode, e.Name)
		buf.Write(e.ID[:])
	}
	return buf.Bytes()
}

// ParseTree parses a tree from its canonical bytes.
func ParseTree(data []byte) (*Tree, error) {
	t := &Tree{}
	for len(data) > 0 {
		sep := bytes.IndexByte(data, 0)
		if sep < 0 {
			return nil, fmt.Errorf("gitobject: parse tree: missing NUL after entry header")
		}
		header := string(data[:sep])
		data = data[sep+1:]

		if len(data) < digest.Size {
			return nil, fmt.Errorf("gitobject: parse tree: truncated entry digest")
		}
		id, err := digest.ParseBytes(data[:digest.Size])
		if err != nil {
			return nil, fmt.Errorf("gitobject: parse tree: %w", err)
		}
		data = data[digest.Size:]

		space := bytes.IndexByte([]byte(header), ' ')
		if space < 0 {
			return nil, fmt.Errorf("gitobject: parse tree: malformed entry header %q", header)
		}
		mode := header[:space]
		name := header[space+1:]
		if err := validMode(mode); err != nil {
			return nil, err
		}

		t.Entries = append(t.Entries, TreeEntry{Name: name, Mode: mode, ID: id})
	}
	return t, nil
}

func validMode(mode string) error {
	switch mode {
	case ModeDir, ModeFile, ModeExec:
		return nil
	default:
		return fmt.Errorf("gitobject: parse tree: unrecognized mode %q", mode)
	}
}
