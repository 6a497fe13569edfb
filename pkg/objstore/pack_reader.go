package objstore

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"fmt"
	"io"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// PackEntry is one decoded object entry from a pack stream.
type PackEntry struct {
	Type   PackType
	Size   uint64
	Data   []byte
	Offset uint64
}

// PackFile is the fully decoded content of a pack stream.
type PackFile struct {
	Header   packHeader
	Entries  []PackEntry
	Checksum digest.Digest
}

// ReadPack parses a complete pack byte slice, verifies the trailer
// checksum, and returns decoded entries with their stream offsets.
func ReadPack(data []byte) (*PackFile, error) {
	if len(data) < packHeaderSize+sha1.Size {
		return nil, fmt.Errorf("pack too short: %d", len(data))
	}

	payload := data[:len(data)-sha1.Size]
	trailer := data[len(data)-sha1.Size:]

	sum := sha1.Sum(payload)
	if !bytes.Equal(sum[:], trailer) {
		return nil, fmt.Errorf("pack checksum mismatch")
	}

	header, err := unmarshalPackHeader(payload[:packHeaderSize])
	if err != nil {
		return nil, err
	}

	offset := packHeaderSize
	entries := make([]PackEntry, 0, header.NumObjects)
	for i := uint32(0); i < header.NumObjects; i++ {
		entryStart := uint64(offset)
		objType, size, n, err := decodePackEntryHeader(payload[offset:])
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		offset += n
		if offset >= len(payload) {
			return nil, fmt.Errorf("entry %d: missing compressed payload", i)
		}

		sub := bytes.NewReader(payload[offset:])
		zr, err := zlib.NewReader(sub)
		if err != nil {
			return nil, fmt.Errorf("entry %d: zlib reader: %w", i, err)
		}
		raw, err := io.ReadAll(zr)
		if err != nil {
			zr.Close()
			return nil, fmt.Errorf("entry %d: decompress: %w", i, err)
		}
		if err := zr.Close(); err != nil {
			return nil, fmt.Errorf("entry %d: close zlib stream: %w", i, err)
		}
		if uint64(len(raw)) != size {
			return nil, fmt.Errorf("entry %d: size mismatch header=%d decoded=%d", i, size, len(raw))
		}

		consumed := len(payload[offset:]) - sub.Len()
		offset += consumed

		entries = append(entries, PackEntry{
			Type:   objType,
			Size:   size,
			Data:   raw,
			Offset: entryStart,
		})
	}

	if offset != len(payload) {
		return nil, fmt.Errorf("pack has trailing undecoded bytes: %d", len(payload)-offset)
	}

	id, err := digest.ParseBytes(trailer)
	if err != nil {
		return nil, err
	}
	return &PackFile{Header: *header, Entries: entries, Checksum: id}, nil
}

func decodeIndexedPackEntry(expected digest.Digest, entry PackEntry) (*RawObject, error) {
	objType, ok := typeForPackType(entry.Type)
	if !ok {
		return nil, fmt.Errorf("unsupported packed object type %d", entry.Type)
	}
	obj := &RawObject{Type: objType, Length: int64(len(entry.Data)), Bytes: entry.Data}
	computed, err := HashRawObject(obj)
	if err != nil {
		return nil, err
	}
	if computed != expected {
		return nil, fmt.Errorf("packed object hash mismatch: expected %s, computed %s", expected, computed)
	}
	return obj, nil
}
