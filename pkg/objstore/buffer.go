package objstore

import "fmt"

// baseBufferCapacity is the initial capacity of a freshly prepared write
// buffer.
const baseBufferCapacity = 4096

// WriteBuffer is the growable byte sink type-specific serializers write
// into. It grows geometrically, doubling capacity whenever an append
// would equal or exceed it, and preserves already-written bytes across a
// resize.
type WriteBuffer struct {
	data    []byte
	written int
	open    bool
}

// NewWriteBuffer allocates a fresh buffer at base capacity, ready to
// accept writes.
func NewWriteBuffer() *WriteBuffer {
	return &WriteBuffer{
		data: make([]byte, baseBufferCapacity),
		open: true,
	}
}

// Open reports whether the buffer currently holds meaningful bytes.
func (b *WriteBuffer) Open() bool { return b.open }

// Len returns the number of bytes written so far.
func (b *WriteBuffer) Len() int { return b.written }

// Close discards the buffer's contents.
func (b *WriteBuffer) Close() {
	b.data = nil
	b.written = 0
	b.open = false
}

func (b *WriteBuffer) resizeFor(extra int) {
	need := b.written + extra
	newCap := len(b.data)
	if newCap == 0 {
		newCap = baseBufferCapacity
	}
	for newCap <= need {
		newCap *= 2
	}
	grown := make([]byte, newCap)
	copy(grown, b.data[:b.written])
	b.data = grown
}

// Write appends p to the buffer, resizing as needed.
func (b *WriteBuffer) Write(p []byte) (int, error) {
	if !b.open {
		return 0, fmt.Errorf("objstore: write to closed buffer")
	}
	if b.written+len(p) >= len(b.data) {
		b.resizeFor(len(p))
	}
	copy(b.data[b.written:], p)
	b.written += len(p)
	return len(p), nil
}

// Printf renders a formatted string once and appends it with Write, whose
// resize doubles capacity as many times as the rendered text needs.
func (b *WriteBuffer) Printf(format string, args ...any) error {
	if !b.open {
		return fmt.Errorf("objstore: printf to closed buffer")
	}
	rendered := fmt.Sprintf(format, args...)
	_, err := b.Write([]byte(rendered))
	return err
}

// Bytes returns the bytes written so far, trimmed to length. The backing
// array is still owned by the buffer.
func (b *WriteBuffer) Bytes() []byte {
	return b.data[:b.written]
}
