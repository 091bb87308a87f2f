package devshell

import (
	"fmt"
	"os"
	"strings"

	"github.com/ipfs/go-cid"

	"xdao.co/carrier/cidutil"
	"xdao.co/carrier/store"
)

// VerifyArtifact checks data against the manifest's toolchain pin. A mismatch
// is an Integrity error; environment construction must not proceed past it.
func (m *Manifest) VerifyArtifact(data []byte) error {
	want, err := m.PinCID()
	if err != nil {
		return err
	}
	got, err := cidutil.CIDv1RawSHA256CID(data)
	if err != nil {
		return wrapError(KindIntegrity, "SHELL-INT-001", "artifact hashing failed", err)
	}
	if !got.Equals(want) {
		return newError(KindIntegrity, "SHELL-INT-002",
			fmt.Sprintf("artifact hash mismatch: got %s want %s", got, want))
	}
	return nil
}

// Materialize verifies data against the pin and records it in the artifact
// store, returning its content address.
func (m *Manifest) Materialize(s store.Store, data []byte) (cid.Cid, error) {
	if err := m.VerifyArtifact(data); err != nil {
		return cid.Undef, err
	}
	id, err := s.Put(data)
	if err != nil {
		return cid.Undef, wrapError(KindIntegrity, "SHELL-INT-003", "artifact store rejected the artifact", err)
	}
	return id, nil
}

// ResolveEnv returns the manifest's env variables with ToolchainRef expanded
// against the materialized toolchain root.
func (m *Manifest) ResolveEnv(root string) map[string]string {
	env := make(map[string]string, len(m.Env))
	for name, value := range m.Env {
		env[name] = strings.ReplaceAll(value, ToolchainRef, root)
	}
	return env
}

// EnvReady verifies that every env variable referencing the toolchain root
// resolves to an existing directory under root.
func (m *Manifest) EnvReady(root string) error {
	for name, value := range m.Env {
		if !strings.Contains(value, ToolchainRef) {
			continue
		}
		resolved := strings.ReplaceAll(value, ToolchainRef, root)
		info, err := os.Stat(resolved)
		if err != nil {
			return wrapError(KindIntegrity, "SHELL-INT-004",
				fmt.Sprintf("env %s: path %s is not materialized", name, resolved), err)
		}
		if !info.IsDir() {
			return newError(KindIntegrity, "SHELL-INT-005",
				fmt.Sprintf("env %s: path %s is not a directory", name, resolved))
		}
	}
	return nil
}
