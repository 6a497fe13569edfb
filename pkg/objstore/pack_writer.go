package objstore

import (
	"bytes"
	"compress/zlib"
	"crypto/sha1"
	"fmt"
	"hash"
	"io"

	"github.com/odvcencio/gitstore/pkg/digest"
)

type packCountedWriter struct {
	w io.Writer
	n uint64
}

func (cw *packCountedWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += uint64(n)
	return n, err
}

func (cw *packCountedWriter) Count() uint64 { return cw.n }

func compressPackPayload(raw []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(raw); err != nil {
		zw.Close()
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// PackWriter writes Git-compatible pack streams with zlib-compressed
// object entries. The trailer checksum is a SHA-1 over all bytes
// preceding the trailer, matching Git's own pack format.
type PackWriter struct {
	out      io.Writer
	hasher   hash.Hash
	hashedW  io.Writer
	counter  *packCountedWriter
	expected uint32
	written  uint32
	finished bool
}

// NewPackWriter initializes a writer and writes the fixed pack header.
func NewPackWriter(out io.Writer, numObjects uint32) (*PackWriter, error) {
	hasher := sha1.New()
	counter := &packCountedWriter{w: out}
	pw := &PackWriter{
		out:      out,
		hasher:   hasher,
		hashedW:  io.MultiWriter(counter, hasher),
		counter:  counter,
		expected: numObjects,
	}

	header := packHeader{Version: supportedPackVersion, NumObjects: numObjects}
	if _, err := pw.hashedW.Write(header.marshal()); err != nil {
		return nil, fmt.Errorf("write pack header: %w", err)
	}
	return pw, nil
}

// CurrentOffset returns the current byte offset from the pack start,
// excluding the trailing checksum written by Finish.
func (p *PackWriter) CurrentOffset() uint64 { return p.counter.Count() }

// WriteEntry appends one loose-representable object entry to the stream.
func (p *PackWriter) WriteEntry(objType Type, data []byte) error {
	if p.finished {
		return fmt.Errorf("pack writer already finished")
	}
	if p.written >= p.expected {
		return fmt.Errorf("pack object count exceeded: expected %d", p.expected)
	}
	packType, ok := packTypeFor(objType)
	if !ok {
		return fmt.Errorf("pack writer: type %v is not packable", objType)
	}

	header := encodePackEntryHeader(packType, uint64(len(data)))
	if _, err := p.hashedW.Write(header); err != nil {
		return fmt.Errorf("write pack entry header: %w", err)
	}

	compressed, err := compressPackPayload(data)
	if err != nil {
		return fmt.Errorf("compress pack entry: %w", err)
	}
	if _, err := p.hashedW.Write(compressed); err != nil {
		return fmt.Errorf("write compressed pack entry: %w", err)
	}

	p.written++
	return nil
}

// Finish validates the object count, writes the trailing checksum, and
// returns it as a digest.
func (p *PackWriter) Finish() (digest.Digest, error) {
	if p.finished {
		return digest.Digest{}, fmt.Errorf("pack writer already finished")
	}
	if p.written != p.expected {
		return digest.Digest{}, fmt.Errorf("pack object count mismatch: wrote %d, expected %d", p.written, p.expected)
	}

	sum := p.hasher.Sum(nil)
	if _, err := p.out.Write(sum); err != nil {
		return digest.Digest{}, fmt.Errorf("write pack trailer checksum: %w", err)
	}
	p.finished = true

	id, err := digest.ParseBytes(sum)
	if err != nil {
		return digest.Digest{}, err
	}
	return id, nil
}
