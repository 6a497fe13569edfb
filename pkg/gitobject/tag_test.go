package gitobject

import "testing"

func TestTagRoundTrip(t *testing.T) {
	tag := &Tag{
		Target:     digestOf("commit"),
		TargetType: "commit",
		Name:       "v1.0.0",
		Tagger:     "Ada Lovelace <ada@example.com>",
		TaggerTime: 2000,
		Message:    "release\n",
	}

	marshaled := MarshalTag(tag)
	got, err := ParseTag(marshaled)
	if err != nil {
		t.Fatalf("ParseTag: %v", err)
	}
	if got.Target != tag.Target {
		t.Error("target digest mismatch")
	}
	if got.TargetType != tag.TargetType {
		t.Errorf("target type: got %q, want %q", got.TargetType, tag.TargetType)
	}
	if got.Name != tag.Name {
		t.Errorf("name: got %q, want %q", got.Name, tag.Name)
	}
	if got.Tagger != tag.Tagger || got.TaggerTime != tag.TaggerTime {
		t.Errorf("tagger mismatch: got %q/%d", got.Tagger, got.TaggerTime)
	}
	if got.Message != tag.Message {
		t.Errorf("message: got %q, want %q", got.Message, tag.Message)
	}
}

func TestTagWithSignature(t *testing.T) {
	tag := &Tag{
		Target:     digestOf("commit"),
		TargetType: "commit",
		Name:       "v1.0.0",
		Tagger:     "a b",
		TaggerTime: 1,
		Signature:  "sshsig-v1:ssh-ed25519:aaaa:bbbb",
		Message:    "m",
	}
	got, err := ParseTag(MarshalTag(tag))
	if err != nil {
		t.Fatalf("ParseTag: %v", err)
	}
	if got.Signature != tag.Signature {
		t.Errorf("signature: got %q, want %q", got.Signature, tag.Signature)
	}
}

func TestTagRejectsMissingObject(t *testing.T) {
	data := []byte("type commit\ntag v1\ntagger a 1\n\nmsg")
	if _, err := ParseTag(data); err == nil {
		t.Fatal("expected error for tag missing object")
	}
}
