package objstore

import (
	"crypto/sha1"
	"encoding/binary"
	"fmt"

	"github.com/odvcencio/gitstore/pkg/digest"
)

// PackIndex is the in-memory form of a parsed idx-v2 file.
type PackIndex struct {
	fanout        [256]uint32
	entries       []PackIndexEntry
	PackChecksum  digest.Digest
	IndexChecksum digest.Digest
}

// Entries returns a copy of all index entries in digest order.
func (idx *PackIndex) Entries() []PackIndexEntry {
	out := make([]PackIndexEntry, len(idx.entries))
	copy(out, idx.entries)
	return out
}

// Find performs a fanout-bounded binary search for id.
func (idx *PackIndex) Find(id digest.Digest) (PackIndexEntry, bool) {
	bucket := int(id[0])
	start := uint32(0)
	if bucket > 0 {
		start = idx.fanout[bucket-1]
	}
	end := idx.fanout[bucket]
	if end <= start {
		return PackIndexEntry{}, false
	}

	lo, hi := int(start), int(end)
	for lo < hi {
		mid := lo + (hi-lo)/2
		if idx.entries[mid].Digest.Compare(id) < 0 {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < int(end) && idx.entries[lo].Digest == id {
		return idx.entries[lo], true
	}
	return PackIndexEntry{}, false
}

// ReadPackIndex parses and validates an idx-v2 byte slice.
func ReadPackIndex(data []byte) (*PackIndex, error) {
	minLen := packIndexHeaderSize + packIndexFanoutSize + digest.Size*2
	if len(data) < minLen {
		return nil, fmt.Errorf("pack index too short: %d", len(data))
	}
	if string(data[:4]) != string(packIndexMagic[:]) {
		return nil, fmt.Errorf("invalid pack index magic %q", data[:4])
	}
	version := binary.BigEndian.Uint32(data[4:8])
	if version != packIndexVersion {
		return nil, fmt.Errorf("unsupported pack index version %d", version)
	}

	gotChecksum := data[len(data)-digest.Size:]
	sum := sha1.Sum(data[:len(data)-digest.Size])
	if !bytesEqual(gotChecksum, sum[:]) {
		return nil, fmt.Errorf("pack index checksum mismatch")
	}

	var fanout [256]uint32
	cursor := packIndexHeaderSize
	for i := 0; i < 256; i++ {
		fanout[i] = binary.BigEndian.Uint32(data[cursor:])
		cursor += 4
	}
	n := int(fanout[255])

	namesLen := n * digest.Size
	crcLen := n * 4
	offsetLen := n * 4
	if cursor+namesLen+crcLen+offsetLen+digest.Size*2 > len(data) {
		return nil, fmt.Errorf("pack index truncated")
	}

	namesStart := cursor
	cursor += namesLen
	crcStart := cursor
	cursor += crcLen
	offsetStart := cursor
	cursor += offsetLen

	offset32 := make([]uint32, n)
	var largeNeeded uint32
	for i := 0; i < n; i++ {
		v := binary.BigEndian.Uint32(data[offsetStart+i*4:])
		offset32[i] = v
		if v&packIndexLargeBit != 0 {
			if ref := (v &^ packIndexLargeBit) + 1; ref > largeNeeded {
				largeNeeded = ref
			}
		}
	}

	largeOffsets := make([]uint64, largeNeeded)
	for i := uint32(0); i < largeNeeded; i++ {
		if cursor+8 > len(data)-digest.Size*2 {
			return nil, fmt.Errorf("pack index large-offset table truncated")
		}
		largeOffsets[i] = binary.BigEndian.Uint64(data[cursor:])
		cursor += 8
	}

	if cursor+digest.Size*2 != len(data) {
		return nil, fmt.Errorf("pack index trailing data: %d bytes", len(data)-(cursor+digest.Size*2))
	}

	packChecksumRaw := data[cursor : cursor+digest.Size]
	cursor += digest.Size
	indexChecksumRaw := data[cursor : cursor+digest.Size]

	entries := make([]PackIndexEntry, n)
	for i := 0; i < n; i++ {
		var id digest.Digest
		copy(id[:], data[namesStart+i*digest.Size:namesStart+(i+1)*digest.Size])

		offset := uint64(offset32[i])
		if offset32[i]&packIndexLargeBit != 0 {
			ref := offset32[i] &^ packIndexLargeBit
			if int(ref) >= len(largeOffsets) {
				return nil, fmt.Errorf("pack index invalid large offset reference %d", ref)
			}
			offset = largeOffsets[ref]
		}

		entries[i] = PackIndexEntry{
			Digest: id,
			CRC32:  binary.BigEndian.Uint32(data[crcStart+i*4:]),
			Offset: offset,
		}
	}

	packChecksum, err := digest.ParseBytes(packChecksumRaw)
	if err != nil {
		return nil, err
	}
	indexChecksum, err := digest.ParseBytes(indexChecksumRaw)
	if err != nil {
		return nil, err
	}

	return &PackIndex{
		fanout:        fanout,
		entries:       entries,
		PackChecksum:  packChecksum,
		IndexChecksum: indexChecksum,
	}, nil
}

func bytesEqual(a, b []byte) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
