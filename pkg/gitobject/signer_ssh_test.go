package gitobject

import (
	"crypto/ed25519"
	"encoding/base64"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func writeTestEd25519Key(t *testing.T, dir, name string) (path string, pub ed25519.PublicKey) {
	t.Helper()
	pubKey, privKey, err := ed25519.GenerateKey(nil)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(privKey, "")
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}
	path = filepath.Join(dir, name)
	if err := os.WriteFile(path, pem.EncodeToMemory(block), 0600); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path, pubKey
}

func TestNewSSHCommitSignerProducesVerifiableSignature(t *testing.T) {
	dir := t.TempDir()
	keyPath, pub := writeTestEd25519Key(t, dir, "id_ed25519")

	sign, resolved, err := NewSSHCommitSigner(keyPath)
	if err != nil {
		t.Fatalf("NewSSHCommitSigner: %v", err)
	}
	if resolved != keyPath {
		t.Errorf("resolved path: got %q, want %q", resolved, keyPath)
	}

	payload := []byte("tree deadbeef\nauthor a <a@example.com> 1 +0000\n\nmsg\n")
	sig, err := sign(payload)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if !strings.HasPrefix(sig, commitSignaturePrefix+":") {
		t.Fatalf("signature %q missing prefix %q", sig, commitSignaturePrefix)
	}

	parts := strings.SplitN(sig, ":", 4)
	if len(parts) != 4 {
		t.Fatalf("signature %q does not have 4 colon-separated fields", sig)
	}

	verifier, err := ssh.NewPublicKey(pub)
	if err != nil {
		t.Fatalf("NewPublicKey: %v", err)
	}
	sshSig := decodeTestSignature(t, parts[1], parts[3])
	if err := verifier.Verify(payload, sshSig); err != nil {
		t.Errorf("signature does not verify against the signer's own public key: %v", err)
	}
}

func TestNewSSHCommitSignerFindsDefaultIdentity(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	sshDir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(sshDir, 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	keyPath, _ := writeTestEd25519Key(t, sshDir, "id_ed25519")

	_, resolved, err := NewSSHCommitSigner("")
	if err != nil {
		t.Fatalf("NewSSHCommitSigner: %v", err)
	}
	if resolved != keyPath {
		t.Errorf("resolved path: got %q, want %q", resolved, keyPath)
	}
}

func TestNewSSHCommitSignerFailsWithNoDefaultIdentity(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	if _, _, err := NewSSHCommitSigner(""); err == nil {
		t.Fatal("expected an error when ~/.ssh has no default identity")
	}
}

func TestNewSSHCommitSignerExpandsTildePath(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	sshDir := filepath.Join(home, ".ssh")
	if err := os.MkdirAll(sshDir, 0700); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	keyPath, _ := writeTestEd25519Key(t, sshDir, "custom_key")

	_, resolved, err := NewSSHCommitSigner("~/.ssh/custom_key")
	if err != nil {
		t.Fatalf("NewSSHCommitSigner: %v", err)
	}
	if resolved != keyPath {
		t.Errorf("resolved path: got %q, want %q", resolved, keyPath)
	}
}

func decodeTestSignature(t *testing.T, format, blobB64 string) *ssh.Signature {
	t.Helper()
	blob, err := base64.StdEncoding.DecodeString(blobB64)
	if err != nil {
		t.Fatalf("decode signature blob: %v", err)
	}
	return &ssh.Signature{Format: format, Blob: blob}
}
