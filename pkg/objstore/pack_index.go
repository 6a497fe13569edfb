package objstore

import (
	"bytes"
	"crypto/sha1"
	"encoding/binary"
	"fmt"
	"io"
	"sort"

	"github.com/odvcencio/gitstore/pkg/digest"
)

const (
	packIndexVersion    = 2
	packIndexHeaderSize = 8
	packIndexFanoutSize = 256 * 4
	packIndexLargeBit   = uint32(1 << 31)
)

var packIndexMagic = [4]byte{0xff, 't', 'O', 'c'}

// PackIndexEntry is one row of a pack index: which digest lives at which
// byte offset within the paired pack file.
type PackIndexEntry struct {
	Digest digest.Digest
	Offset uint64
	CRC32  uint32
}

func sortedIndexEntries(entries []PackIndexEntry) []PackIndexEntry {
	out := make([]PackIndexEntry, len(entries))
	copy(out, entries)
	sort.Slice(out, func(i, j int) bool {
		return out[i].Digest.Compare(out[j].Digest) < 0
	})
	return out
}

// WritePackIndex writes a Git idx-v2-style index for entries paired with
// a pack whose trailer checksum is packChecksum. Returns the index's own
// checksum.
func WritePackIndex(w io.Writer, entries []PackIndexEntry, packChecksum digest.Digest) (digest.Digest, error) {
	sorted := sortedIndexEntries(entries)

	var buf bytes.Buffer
	buf.Write(packIndexMagic[:])
	_ = binary.Write(&buf, binary.BigEndian, uint32(packIndexVersion))

	fanout := buildFanout(sorted)
	for i := 0; i < 256; i++ {
		_ = binary.Write(&buf, binary.BigEndian, fanout[i])
	}

	for _, e := range sorted {
		buf.Write(e.Digest[:])
	}
	for _, e := range sorted {
		_ = binary.Write(&buf, binary.BigEndian, e.CRC32)
	}

	largeOffsets := make([]uint64, 0)
	for _, e := range sorted {
		if e.Offset < uint64(packIndexLargeBit) {
			_ = binary.Write(&buf, binary.BigEndian, uint32(e.Offset))
			continue
		}
		pos := uint32(len(largeOffsets))
		_ = binary.Write(&buf, binary.BigEndian, packIndexLargeBit|pos)
		largeOffsets = append(largeOffsets, e.Offset)
	}
	for _, off := range largeOffsets {
		_ = binary.Write(&buf, binary.BigEndian, off)
	}

	buf.Write(packChecksum[:])
	indexSum := sha1.Sum(buf.Bytes())
	buf.Write(indexSum[:])

	if _, err := w.Write(buf.Bytes()); err != nil {
		return digest.Digest{}, fmt.Errorf("write pack index: %w", err)
	}
	return digest.Digest(indexSum), nil
}

func buildFanout(entries []PackIndexEntry) [256]uint32 {
	var counts [256]uint32
	for _, e := range entries {
		counts[e.Digest[0]]++
	}
	var fanout [256]uint32
	var total uint32
	for i := 0; i < 256; i++ {
		total += counts[i]
		fanout[i] = total
	}
	return fanout
}
