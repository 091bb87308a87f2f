package devshell

import (
	"crypto/ed25519"
	"io"
	"testing"

	"xdao.co/carrier/keys"
)

type countingReader struct{ b byte }

func (r *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.b
		r.b++
	}
	return len(p), nil
}

func TestSignEd25519RoundTrip(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))
	seed := make([]byte, ed25519.SeedSize)
	for i := range seed {
		seed[i] = byte(i)
	}

	if err := m.VerifySignature(); RuleID(err) != "SHELL-CRYPTO-005" {
		t.Fatalf("unsigned manifest: got %v", err)
	}
	if err := m.SignEd25519(seed); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate after signing: %v", err)
	}
	if err := m.VerifySignature(); err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}

	// Any change to the signed content must break the signature.
	m.Toolchain.Channel = "1.82.0"
	if err := m.VerifySignature(); RuleID(err) != "SHELL-CRYPTO-010" {
		t.Fatalf("tampered manifest verified: %v", err)
	}
}

func TestSignDilithium3RoundTrip(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))
	pk, sk, err := keys.GenerateDilithium3Keypair(io.Reader(&countingReader{}))
	if err != nil {
		t.Fatalf("GenerateDilithium3Keypair: %v", err)
	}

	if err := m.SignDilithium3("sha3-256", pk, sk); err != nil {
		t.Fatalf("SignDilithium3: %v", err)
	}
	if err := m.VerifySignature(); err != nil {
		t.Fatalf("VerifySignature: %v", err)
	}

	m.Inputs = append(m.Inputs, "cmake")
	if err := m.VerifySignature(); RuleID(err) != "SHELL-CRYPTO-010" {
		t.Fatalf("tampered manifest verified: %v", err)
	}
}

func TestVerifySignatureAlgMismatch(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))
	seed := make([]byte, ed25519.SeedSize)
	if err := m.SignEd25519(seed); err != nil {
		t.Fatalf("SignEd25519: %v", err)
	}
	m.Signature.Alg = "dilithium3"
	if err := m.VerifySignature(); RuleID(err) != "SHELL-CRYPTO-007" {
		t.Fatalf("expected SHELL-CRYPTO-007, got %v", err)
	}
}
