package objstore

import (
	"bytes"
	"testing"
)

func TestPackHeaderMarshalUnmarshalRoundTrip(t *testing.T) {
	h := packHeader{Version: supportedPackVersion, NumObjects: 3}
	data := h.marshal()
	if len(data) != packHeaderSize {
		t.Fatalf("marshal: got %d bytes, want %d", len(data), packHeaderSize)
	}
	if string(data[:4]) != "PACK" {
		t.Fatalf("marshal: bad magic %q", data[:4])
	}

	got, err := unmarshalPackHeader(data)
	if err != nil {
		t.Fatalf("unmarshalPackHeader: %v", err)
	}
	if got.Version != h.Version || got.NumObjects != h.NumObjects {
		t.Fatalf("unmarshal: got %+v, want %+v", got, h)
	}
}

func TestUnmarshalPackHeaderRejectsBadMagic(t *testing.T) {
	data := []byte("XXXX\x00\x00\x00\x02\x00\x00\x00\x03")
	if _, err := unmarshalPackHeader(data); err == nil {
		t.Fatal("expected error on bad magic")
	}
}

func TestUnmarshalPackHeaderRejectsUnsupportedVersion(t *testing.T) {
	h := packHeader{Version: 99, NumObjects: 1}
	if _, err := unmarshalPackHeader(h.marshal()); err == nil {
		t.Fatal("expected error on unsupported version")
	}
}

func TestUnmarshalPackHeaderRejectsShortInput(t *testing.T) {
	if _, err := unmarshalPackHeader([]byte("PACK")); err == nil {
		t.Fatal("expected error on truncated header")
	}
}

func TestPackEntryHeaderRoundTripSmallSize(t *testing.T) {
	encoded := encodePackEntryHeader(PackBlob, 5)
	gotType, gotSize, consumed, err := decodePackEntryHeader(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotType != PackBlob || gotSize != 5 || consumed != len(encoded) {
		t.Fatalf("decode: got type=%d size=%d consumed=%d", gotType, gotSize, consumed)
	}
}

func TestPackEntryHeaderRoundTripLargeSize(t *testing.T) {
	// A size large enough to require several continuation bytes.
	const size = uint64(1) << 40
	encoded := encodePackEntryHeader(PackTree, size)
	if len(encoded) < 2 {
		t.Fatalf("expected multi-byte header for large size, got %d bytes", len(encoded))
	}
	gotType, gotSize, consumed, err := decodePackEntryHeader(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotType != PackTree || gotSize != size || consumed != len(encoded) {
		t.Fatalf("decode: got type=%d size=%d consumed=%d, want type=%d size=%d", gotType, gotSize, consumed, PackTree, size)
	}
}

func TestPackEntryHeaderRoundTripZeroSize(t *testing.T) {
	encoded := encodePackEntryHeader(PackCommit, 0)
	gotType, gotSize, _, err := decodePackEntryHeader(encoded)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if gotType != PackCommit || gotSize != 0 {
		t.Fatalf("decode: got type=%d size=%d", gotType, gotSize)
	}
}

func TestDecodePackEntryHeaderRejectsEmptyInput(t *testing.T) {
	if _, _, _, err := decodePackEntryHeader(nil); err == nil {
		t.Fatal("expected error decoding empty entry header")
	}
}

func TestPackWriterReaderRoundTrip(t *testing.T) {
	entries := []struct {
		typ  Type
		data []byte
	}{
		{TypeBlob, []byte("hello")},
		{TypeTree, []byte("tree-payload")},
		{TypeCommit, []byte("commit-payload")},
	}

	var buf bytes.Buffer
	pw, err := NewPackWriter(&buf, uint32(len(entries)))
	if err != nil {
		t.Fatalf("NewPackWriter: %v", err)
	}
	var offsets []uint64
	for _, e := range entries {
		offsets = append(offsets, pw.CurrentOffset())
		if err := pw.WriteEntry(e.typ, e.data); err != nil {
			t.Fatalf("WriteEntry: %v", err)
		}
	}
	checksum, err := pw.Finish()
	if err != nil {
		t.Fatalf("Finish: %v", err)
	}
	if checksum.Zero() {
		t.Fatal("expected non-zero pack checksum")
	}

	pf, err := ReadPack(buf.Bytes())
	if err != nil {
		t.Fatalf("ReadPack: %v", err)
	}
	if pf.Checksum != checksum {
		t.Fatalf("checksum mismatch: got %s, want %s", pf.Checksum, checksum)
	}
	if len(pf.Entries) != len(entries) {
		t.Fatalf("entry count: got %d, want %d", len(pf.Entries), len(entries))
	}
	for i, e := range entries {
		got := pf.Entries[i]
		if string(got.Data) != string(e.data) {
			t.Errorf("entry %d: data mismatch: got %q, want %q", i, got.Data, e.data)
		}
		if got.Offset != offsets[i] {
			t.Errorf("entry %d: offset mismatch: got %d, want %d", i, got.Offset, offsets[i])
		}
	}
}

func TestPackWriterRejectsNonPackableType(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewPackWriter(&buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := pw.WriteEntry(TypeOfsDelta, []byte("x")); err == nil {
		t.Fatal("expected error writing a non-packable entry type")
	}
}

func TestPackWriterFinishRejectsCountMismatch(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewPackWriter(&buf, 2)
	if err != nil {
		t.Fatal(err)
	}
	if err := pw.WriteEntry(TypeBlob, []byte("only-one")); err != nil {
		t.Fatal(err)
	}
	if _, err := pw.Finish(); err == nil {
		t.Fatal("expected Finish to reject a count mismatch")
	}
}

func TestPackWriterRejectsWritesAfterExpectedCount(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewPackWriter(&buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := pw.WriteEntry(TypeBlob, []byte("one")); err != nil {
		t.Fatal(err)
	}
	if err := pw.WriteEntry(TypeBlob, []byte("two")); err == nil {
		t.Fatal("expected error exceeding the declared object count")
	}
}

func TestReadPackRejectsChecksumMismatch(t *testing.T) {
	var buf bytes.Buffer
	pw, err := NewPackWriter(&buf, 1)
	if err != nil {
		t.Fatal(err)
	}
	if err := pw.WriteEntry(TypeBlob, []byte("hello")); err != nil {
		t.Fatal(err)
	}
	if _, err := pw.Finish(); err != nil {
		t.Fatal(err)
	}

	corrupt := buf.Bytes()
	corrupt[len(corrupt)-1] ^= 0xff
	if _, err := ReadPack(corrupt); err == nil {
		t.Fatal("expected error on corrupted trailer checksum")
	}
}
