package objstore

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// LoosePriority is the default priority of the loose-object backend: it
// is probed before the packed backend since newly written objects land
// here first.
const LoosePriority = 10

// LooseBackend stores each object as its own zlib-deflated file under a
// two-hex-digit fan-out directory, mirroring Git's loose object layout.
type LooseBackend struct {
	root string
	odb  *ODB
}

// OpenLooseBackend binds a loose backend to objectsDir. The directory is
// created lazily on first write, so this never fails on a missing
// directory; it only fails if objectsDir exists and is not a directory.
func OpenLooseBackend(objectsDir string) (*LooseBackend, error) {
	if info, err := os.Stat(objectsDir); err == nil && !info.IsDir() {
		return nil, fmt.Errorf("objstore: %s is not a directory", objectsDir)
	}
	return &LooseBackend{root: objectsDir}, nil
}

func (l *LooseBackend) Priority() int { return LoosePriority }

func (l *LooseBackend) boundODB() *ODB  { return l.odb }
func (l *LooseBackend) bindODB(db *ODB) { l.odb = db }

func (l *LooseBackend) path(id digest.Digest) string {
	return filepath.Join(l.root, filepath.FromSlash(id.Path()))
}

func (l *LooseBackend) Exists(id digest.Digest) bool {
	_, err := os.Stat(l.path(id))
	return err == nil
}

func (l *LooseBackend) Writable() bool { return true }

// SupportsHeader reports that this backend can answer ReadHeader without
// inflating the whole payload: it only needs to decompress the initial
// header bytes.
func (l *LooseBackend) SupportsHeader() bool { return true }

func (l *LooseBackend) Read(id digest.Digest) (*RawObject, error) {
	raw, err := os.ReadFile(l.path(id))
	if err != nil {
		return nil, fmt.Errorf("objstore: loose read %s: %w", id, ErrNotFound)
	}
	return inflateObject(raw)
}

func (l *LooseBackend) ReadHeader(id digest.Digest) (*RawObject, error) {
	f, err := os.Open(l.path(id))
	if err != nil {
		return nil, fmt.Errorf("objstore: loose read-header %s: %w", id, ErrNotFound)
	}
	defer f.Close()

	zr, err := zlib.NewReader(f)
	if err != nil {
		return nil, fmt.Errorf("objstore: loose read-header %s: inflate: %w", id, err)
	}
	defer zr.Close()

	objType, length, _, err := readObjectHeader(zr)
	if err != nil {
		return nil, fmt.Errorf("objstore: loose read-header %s: %w", id, err)
	}
	return &RawObject{Type: objType, Length: length}, nil
}

// Write deflates and atomically stores obj, returning its content digest.
// Writes are idempotent: if the destination already exists, the write is
// a no-op.
func (l *LooseBackend) Write(obj *RawObject) (digest.Digest, error) {
	id, err := HashRawObject(obj)
	if err != nil {
		return digest.Digest{}, err
	}
	if l.Exists(id) {
		return id, nil
	}

	deflated, err := deflateObject(obj)
	if err != nil {
		return digest.Digest{}, fmt.Errorf("objstore: loose write %s: %w", id, err)
	}

	dest := l.path(id)
	dir := filepath.Dir(dest)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return digest.Digest{}, fmt.Errorf("objstore: loose write %s: mkdir: %w", id, err)
	}

	tmp, err := os.CreateTemp(dir, ".tmp-obj-*")
	if err != nil {
		return digest.Digest{}, fmt.Errorf("objstore: loose write %s: tmpfile: %w", id, err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(deflated); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return digest.Digest{}, fmt.Errorf("objstore: loose write %s: %w", id, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return digest.Digest{}, fmt.Errorf("objstore: loose write %s: close: %w", id, err)
	}
	if err := os.Rename(tmpName, dest); err != nil {
		os.Remove(tmpName)
		return digest.Digest{}, fmt.Errorf("objstore: loose write %s: rename: %w", id, err)
	}

	return id, nil
}

func (l *LooseBackend) Close() error { return nil }

// ListAll walks the fan-out directories and returns every loose object
// digest found on disk, sorted for deterministic iteration. Exported for
// collaborators outside this package (e.g. bundle export) that need to
// enumerate the loose set without a pack's index.
func (l *LooseBackend) ListAll() ([]digest.Digest, error) {
	return l.listAll()
}

func (l *LooseBackend) listAll() ([]digest.Digest, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("objstore: list loose objects: %w", err)
	}

	var out []digest.Digest
	for _, fanout := range entries {
		if !fanout.IsDir() || fanout.Name() == "pack" || len(fanout.Name()) != 2 {
			continue
		}
		sub, err := os.ReadDir(filepath.Join(l.root, fanout.Name()))
		if err != nil {
			return nil, fmt.Errorf("objstore: list loose objects: %w", err)
		}
		for _, f := range sub {
			if f.IsDir() || len(f.Name()) != digest.Size*2-2 {
				continue
			}
			id, err := digest.Parse(fanout.Name() + f.Name())
			if err != nil {
				continue
			}
			out = append(out, id)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Compare(out[j]) < 0 })
	return out, nil
}

func deflateObject(obj *RawObject) ([]byte, error) {
	header, err := obj.Header()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write([]byte(header)); err != nil {
		zw.Close()
		return nil, err
	}
	if _, err := zw.Write(obj.Bytes); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func inflateObject(raw []byte) (*RawObject, error) {
	zr, err := zlib.NewReader(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("objstore: inflate: %w", err)
	}
	defer zr.Close()

	objType, length, headerLen, err := readObjectHeader(zr)
	if err != nil {
		return nil, err
	}
	_ = headerLen

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, fmt.Errorf("objstore: inflate: decompress payload: %w", err)
	}
	if int64(len(payload)) != length {
		return nil, fmt.Errorf("objstore: inflate: length mismatch header=%d actual=%d", length, len(payload))
	}

	var bytesOut []byte
	if length > 0 {
		bytesOut = payload
	}
	return &RawObject{Type: objType, Length: length, Bytes: bytesOut}, nil
}

// readObjectHeader reads the "<type> <len>\0" header from r, byte by
// byte, so callers can stop early (ReadHeader) without materializing the
// payload.
func readObjectHeader(r io.Reader) (Type, int64, int, error) {
	var typeBuf, lenBuf bytes.Buffer
	one := make([]byte, 1)
	n := 0

	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return TypeBad, 0, n, fmt.Errorf("truncated header: %w", err)
		}
		n++
		if one[0] == ' ' {
			break
		}
		typeBuf.WriteByte(one[0])
	}

	for {
		if _, err := io.ReadFull(r, one); err != nil {
			return TypeBad, 0, n, fmt.Errorf("truncated header: %w", err)
		}
		n++
		if one[0] == 0 {
			break
		}
		lenBuf.WriteByte(one[0])
	}

	objType := TypeFromString(typeBuf.String())
	if objType == TypeBad {
		return TypeBad, 0, n, fmt.Errorf("unrecognized type %q", typeBuf.String())
	}

	var length int64
	if _, err := fmt.Sscanf(lenBuf.String(), "%d", &length); err != nil {
		return TypeBad, 0, n, fmt.Errorf("bad length %q: %w", lenBuf.String(), err)
	}

	return objType, length, n, nil
}
