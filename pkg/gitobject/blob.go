package gitobject

// MarshalBlob renders a blob's canonical bytes: its content, unchanged.
func MarshalBlob(b *Blob) []byte {
	out := make([]byte, len(b.Data))
	copy(out, b.Data)
	return out
}

// ParseBlob builds a Blob from its canonical bytes. Never fails: any byte
// sequence is a valid blob.
func ParseBlob(data []byte) (*Blob, error) {
	out := make([]byte, len(data))
	copy(out, data)
	return &Blob{Data: out}, nil
}
