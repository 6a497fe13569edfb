package gitobject

import (
	"testing"

	"github.com/odvcencio/gitstore/pkg/digest"
)

func TestCommitRoundTrip(t *testing.T) {
	c := &Commit{
		Tree:       digestOf("tree"),
		Parents:    []digest.Digest{digestOf("parent1"), digestOf("parent2")},
		Author:     "Ada Lovelace <ada@example.com>",
		AuthorTime: 1000,
		Committer:  "Ada Lovelace <ada@example.com>",
		CommitTime: 1001,
		Message:    "initial commit\n",
	}

	marshaled := MarshalCommit(c)
	got, err := ParseCommit(marshaled)
	if err != nil {
		t.Fatalf("ParseCommit: %v", err)
	}
	if got.Tree != c.Tree {
		t.Error("tree digest mismatch")
	}
	if len(got.Parents) != 2 || got.Parents[0] != c.Parents[0] || got.Parents[1] != c.Parents[1] {
		t.Errorf("parents mismatch: got %v, want %v", got.Parents, c.Parents)
	}
	if got.Author != c.Author || got.AuthorTime != c.AuthorTime {
		t.Errorf("author mismatch: got %q/%d, want %q/%d", got.Author, got.AuthorTime, c.Author, c.AuthorTime)
	}
	if got.Message != c.Message {
		t.Errorf("message mismatch: got %q, want %q", got.Message, c.Message)
	}
	if got.Signature != "" {
		t.Errorf("expected no signature, got %q", got.Signature)
	}
}

func TestCommitSigningPayloadExcludesSignature(t *testing.T) {
	c := &Commit{
		Tree:       digestOf("tree"),
		Author:     "a",
		AuthorTime: 1,
		Committer:  "a",
		CommitTime: 1,
		Message:    "m",
	}
	unsigned := CommitSigningPayload(c)

	c.Signature = "sshsig-v1:ssh-ed25519:aaaa:bbbb"
	signed := MarshalCommit(c)
	if string(unsigned) == string(signed) {
		t.Fatal("signed and unsigned serializations should differ")
	}

	// The payload signed is exactly the marshaling of the object with an
	// empty signature.
	c.Signature = ""
	if string(unsigned) != string(MarshalCommit(c)) {
		t.Fatal("signing payload should equal the unsigned marshaling")
	}
}

func TestCommitRejectsMissingTree(t *testing.T) {
	data := []byte("author a 1\ncommitter a 1\n\nmsg")
	if _, err := ParseCommit(data); err == nil {
		t.Fatal("expected error for commit missing tree")
	}
}

func TestCommitRejectsMalformedActor(t *testing.T) {
	data := []byte("tree " + digestOf("t").String() + "\nauthor noname\ncommitter a 1\n\nmsg")
	if _, err := ParseCommit(data); err == nil {
		t.Fatal("expected error for malformed author field")
	}
}
