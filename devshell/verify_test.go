package devshell

import (
	"os"
	"path/filepath"
	"testing"

	"xdao.co/carrier/store/localdir"
)

func TestVerifyArtifact(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))

	if err := m.VerifyArtifact([]byte(testArtifact)); err != nil {
		t.Fatalf("VerifyArtifact: %v", err)
	}
	err := m.VerifyArtifact([]byte("tampered bytes"))
	if !IsKind(err, KindIntegrity) || RuleID(err) != "SHELL-INT-002" {
		t.Fatalf("expected SHELL-INT-002, got %v", err)
	}
}

func TestMaterialize(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))
	s, err := localdir.New(t.TempDir())
	if err != nil {
		t.Fatalf("localdir.New: %v", err)
	}

	id, err := m.Materialize(s, []byte(testArtifact))
	if err != nil {
		t.Fatalf("Materialize: %v", err)
	}
	if !s.Has(id) {
		t.Fatal("artifact not stored")
	}
	want, err := m.PinCID()
	if err != nil {
		t.Fatalf("PinCID: %v", err)
	}
	if !id.Equals(want) {
		t.Fatalf("stored under %s, pin is %s", id, want)
	}

	if _, err := m.Materialize(s, []byte("tampered bytes")); !IsKind(err, KindIntegrity) {
		t.Fatalf("tampered artifact materialized: %v", err)
	}
}

// The exported source-path variable must resolve to an existing directory
// once the toolchain is materialized.
func TestEnvReady(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))
	root := t.TempDir()

	if err := m.EnvReady(root); RuleID(err) != "SHELL-INT-004" {
		t.Fatalf("expected SHELL-INT-004 before materialization, got %v", err)
	}

	src := filepath.Join(root, "lib", "rustlib", "src", "rust", "library")
	if err := os.MkdirAll(src, 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := m.EnvReady(root); err != nil {
		t.Fatalf("EnvReady: %v", err)
	}

	resolved := m.ResolveEnv(root)
	if resolved["RUST_SRC_PATH"] != src {
		t.Fatalf("ResolveEnv: got %q want %q", resolved["RUST_SRC_PATH"], src)
	}
}
