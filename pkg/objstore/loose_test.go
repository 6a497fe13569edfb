package objstore

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLooseWriteReadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	l, err := OpenLooseBackend(dir)
	if err != nil {
		t.Fatalf("OpenLooseBackend: %v", err)
	}

	obj := &RawObject{Type: TypeBlob, Length: 5, Bytes: []byte("hello")}
	id, err := l.Write(obj)
	if err != nil {
		t.Fatalf("Write: %v", err)
	}
	if id.String() != "b6fc4c620b67d95f953a5c1c1230aaab5db5a1b0" {
		t.Fatalf("digest: got %s", id)
	}

	if !l.Exists(id) {
		t.Fatal("expected Exists() to report true after write")
	}

	got, err := l.Read(id)
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	if got.Type != TypeBlob || string(got.Bytes) != "hello" {
		t.Fatalf("Read: got %+v", got)
	}
}

func TestLooseWriteIsIdempotent(t *testing.T) {
	dir := t.TempDir()
	l, _ := OpenLooseBackend(dir)
	obj := &RawObject{Type: TypeBlob, Length: 5, Bytes: []byte("hello")}

	id1, err := l.Write(obj)
	if err != nil {
		t.Fatalf("first Write: %v", err)
	}
	id2, err := l.Write(obj)
	if err != nil {
		t.Fatalf("second Write: %v", err)
	}
	if id1 != id2 {
		t.Fatalf("expected identical digest on rewrite: %s vs %s", id1, id2)
	}
}

func TestLooseWriteFansOutIntoTwoHexDigitDirectory(t *testing.T) {
	dir := t.TempDir()
	l, _ := OpenLooseBackend(dir)
	obj := &RawObject{Type: TypeBlob, Length: 5, Bytes: []byte("hello")}
	id, err := l.Write(obj)
	if err != nil {
		t.Fatal(err)
	}

	full := filepath.Join(dir, filepath.FromSlash(id.Path()))
	if _, err := os.Stat(full); err != nil {
		t.Fatalf("expected object file at %s: %v", full, err)
	}
	fanout := id.String()[:2]
	if _, err := os.Stat(filepath.Join(dir, fanout)); err != nil {
		t.Fatalf("expected fan-out directory %s: %v", fanout, err)
	}
}

func TestLooseReadHeaderDoesNotMaterializePayload(t *testing.T) {
	dir := t.TempDir()
	l, _ := OpenLooseBackend(dir)
	obj := &RawObject{Type: TypeTree, Length: 4, Bytes: []byte("tree")}
	id, err := l.Write(obj)
	if err != nil {
		t.Fatal(err)
	}

	got, err := l.ReadHeader(id)
	if err != nil {
		t.Fatalf("ReadHeader: %v", err)
	}
	if got.Type != TypeTree || got.Length != 4 {
		t.Fatalf("ReadHeader: got %+v", got)
	}
	if got.Bytes != nil {
		t.Fatal("expected ReadHeader to leave Bytes nil")
	}
}

func TestLooseReadMissingObjectFails(t *testing.T) {
	dir := t.TempDir()
	l, _ := OpenLooseBackend(dir)
	missing, err := HashRawObject(&RawObject{Type: TypeBlob, Length: 14, Bytes: []byte("does not exist")})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := l.Read(missing); err == nil {
		t.Fatal("expected error reading a missing loose object")
	}
	if _, err := l.ReadHeader(missing); err == nil {
		t.Fatal("expected error reading the header of a missing loose object")
	}
}

func TestOpenLooseBackendRejectsNonDirectoryPath(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "not-a-dir")
	if err := os.WriteFile(file, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := OpenLooseBackend(file); err == nil {
		t.Fatal("expected error opening a loose backend over a plain file")
	}
}

func TestLooseListAllFindsWrittenObjects(t *testing.T) {
	dir := t.TempDir()
	l, _ := OpenLooseBackend(dir)

	ids := make([]string, 0, 3)
	for _, s := range []string{"one", "two", "three"} {
		id, err := l.Write(&RawObject{Type: TypeBlob, Length: int64(len(s)), Bytes: []byte(s)})
		if err != nil {
			t.Fatal(err)
		}
		ids = append(ids, id.String())
	}

	found, err := l.listAll()
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if len(found) != 3 {
		t.Fatalf("listAll: got %d entries, want 3", len(found))
	}
	for i := 1; i < len(found); i++ {
		if found[i-1].Compare(found[i]) >= 0 {
			t.Fatal("expected listAll to return digests in sorted order")
		}
	}
}

func TestLooseListAllOnMissingDirectoryIsEmpty(t *testing.T) {
	l, _ := OpenLooseBackend(filepath.Join(t.TempDir(), "does-not-exist"))
	found, err := l.listAll()
	if err != nil {
		t.Fatalf("listAll: %v", err)
	}
	if len(found) != 0 {
		t.Fatalf("expected empty result, got %d", len(found))
	}
}
