// Package bundle implements zstd-compressed export and import of an
// object database's loose object set, for transferring objects between
// machines outside of any network protocol.
package bundle

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/klauspost/compress/zstd"

	"github.com/odvcencio/gitstore/pkg/digest"
	"github.com/odvcencio/gitstore/pkg/objstore"
)

// frameHeaderSize is digest.Size (20) + 1 type byte + 8 length bytes.
const frameHeaderSize = digest.Size + 1 + 8

// Export enumerates every loose object in loose, frames it as
// {digest}{type}{big-endian length}{payload}, and writes the whole
// concatenation to out compressed with zstd.
func Export(loose *objstore.LooseBackend, out io.Writer) (int, error) {
	ids, err := loose.ListAll()
	if err != nil {
		return 0, fmt.Errorf("bundle: export: list loose objects: %w", err)
	}

	enc, err := zstd.NewWriter(out)
	if err != nil {
		return 0, fmt.Errorf("bundle: export: %w", err)
	}

	for _, id := range ids {
		obj, err := loose.Read(id)
		if err != nil {
			enc.Close()
			return 0, fmt.Errorf("bundle: export: read %s: %w", id, err)
		}
		if err := writeFrame(enc, id, obj); err != nil {
			enc.Close()
			return 0, fmt.Errorf("bundle: export: write frame %s: %w", id, err)
		}
	}

	if err := enc.Close(); err != nil {
		return 0, fmt.Errorf("bundle: export: %w", err)
	}
	return len(ids), nil
}

func writeFrame(w io.Writer, id digest.Digest, obj *objstore.RawObject) error {
	var header [frameHeaderSize]byte
	copy(header[:digest.Size], id[:])
	header[digest.Size] = byte(obj.Type)
	binary.BigEndian.PutUint64(header[digest.Size+1:], uint64(obj.Length))
	if _, err := w.Write(header[:]); err != nil {
		return err
	}
	if obj.Length > 0 {
		if _, err := w.Write(obj.Bytes); err != nil {
			return err
		}
	}
	return nil
}

// Import decompresses in and writes every framed object through db.
// Writes are idempotent, so importing into an ODB that already has some
// of the objects is safe.
func Import(db *objstore.ODB, in io.Reader) (int, error) {
	dec, err := zstd.NewReader(in)
	if err != nil {
		return 0, fmt.Errorf("bundle: import: %w", err)
	}
	defer dec.Close()

	count := 0
	header := make([]byte, frameHeaderSize)
	for {
		if _, err := io.ReadFull(dec, header); err != nil {
			if err == io.EOF {
				break
			}
			return count, fmt.Errorf("bundle: import: read frame header: %w", err)
		}

		var id digest.Digest
		copy(id[:], header[:digest.Size])
		objType := objstore.Type(header[digest.Size])
		length := int64(binary.BigEndian.Uint64(header[digest.Size+1:]))

		var payload []byte
		if length > 0 {
			payload = make([]byte, length)
			if _, err := io.ReadFull(dec, payload); err != nil {
				return count, fmt.Errorf("bundle: import: read frame payload for %s: %w", id, err)
			}
		}

		if _, err := db.Write(&objstore.RawObject{Type: objType, Length: length, Bytes: payload}); err != nil {
			return count, fmt.Errorf("bundle: import: write %s: %w", id, err)
		}
		count++
	}
	return count, nil
}

// ExportBytes is a convenience wrapper around Export for callers that
// want the compressed bundle as an in-memory value.
func ExportBytes(loose *objstore.LooseBackend) ([]byte, int, error) {
	var buf bytes.Buffer
	n, err := Export(loose, &buf)
	return buf.Bytes(), n, err
}
