package devshell

import (
	"crypto/ed25519"
	"encoding/base64"
	"strings"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"gopkg.in/yaml.v3"

	"xdao.co/carrier/keys"
)

// SigningBytes returns the canonical bytes a manifest signature covers: the
// YAML encoding of the manifest with the signature block stripped.
func (m *Manifest) SigningBytes() ([]byte, error) {
	unsigned := *m
	unsigned.Signature = nil
	b, err := yaml.Marshal(&unsigned)
	if err != nil {
		return nil, wrapError(KindCrypto, "SHELL-CRYPTO-001", "manifest canonicalization failed", err)
	}
	return b, nil
}

// SignEd25519 attaches an ed25519 signature for the given seed.
func (m *Manifest) SignEd25519(seed []byte) error {
	if len(seed) != ed25519.SeedSize {
		return newError(KindCrypto, "SHELL-CRYPTO-002", "invalid ed25519 seed length")
	}
	msg, err := m.SigningBytes()
	if err != nil {
		return err
	}
	priv := ed25519.NewKeyFromSeed(seed)
	m.Signature = &Signature{
		Alg: "ed25519",
		Key: keys.SignerKeyFromSeed(seed),
		Sig: keys.SignEd25519SHA256(msg, priv),
	}
	return nil
}

// SignDilithium3 attaches a dilithium3 signature with the given hash algorithm.
func (m *Manifest) SignDilithium3(hashAlg string, pub *mode3.PublicKey, priv *mode3.PrivateKey) error {
	msg, err := m.SigningBytes()
	if err != nil {
		return err
	}
	sig, err := keys.SignDilithium3(msg, hashAlg, priv)
	if err != nil {
		return wrapError(KindCrypto, "SHELL-CRYPTO-003", "dilithium3 signing failed", err)
	}
	key, err := keys.SignerKeyFromDilithium3(pub)
	if err != nil {
		return wrapError(KindCrypto, "SHELL-CRYPTO-004", "invalid dilithium3 public key", err)
	}
	m.Signature = &Signature{Alg: "dilithium3", HashAlg: hashAlg, Key: key, Sig: sig}
	return nil
}

// VerifySignature checks the attached signature against the embedded signer
// key. A manifest without a signature block fails verification.
func (m *Manifest) VerifySignature() error {
	if m.Signature == nil {
		return newError(KindCrypto, "SHELL-CRYPTO-005", "manifest is not signed")
	}
	msg, err := m.SigningBytes()
	if err != nil {
		return err
	}

	alg, enc, ok := strings.Cut(m.Signature.Key, ":")
	if !ok {
		return newError(KindCrypto, "SHELL-CRYPTO-006", "invalid signer key encoding")
	}
	if alg != m.Signature.Alg {
		return newError(KindCrypto, "SHELL-CRYPTO-007", "signer key and signature alg disagree")
	}
	pub, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return wrapError(KindCrypto, "SHELL-CRYPTO-008", "invalid signer key base64", err)
	}

	switch alg {
	case "ed25519":
		if len(pub) != ed25519.PublicKeySize {
			return newError(KindCrypto, "SHELL-CRYPTO-009", "invalid ed25519 public key length")
		}
		if !keys.VerifyEd25519SHA256(msg, m.Signature.Sig, ed25519.PublicKey(pub)) {
			return newError(KindCrypto, "SHELL-CRYPTO-010", "signature verification failed")
		}
	case "dilithium3":
		var pk mode3.PublicKey
		if err := pk.UnmarshalBinary(pub); err != nil {
			return wrapError(KindCrypto, "SHELL-CRYPTO-011", "invalid dilithium3 public key", err)
		}
		hashAlg := m.Signature.HashAlg
		if hashAlg == "" {
			hashAlg = "sha256"
		}
		if !keys.VerifyDilithium3(msg, hashAlg, m.Signature.Sig, &pk) {
			return newError(KindCrypto, "SHELL-CRYPTO-010", "signature verification failed")
		}
	default:
		return newError(KindCrypto, "SHELL-CRYPTO-012", "unsupported signature alg")
	}
	return nil
}
