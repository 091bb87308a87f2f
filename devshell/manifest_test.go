package devshell

import (
	"strings"
	"testing"

	"xdao.co/carrier/cidutil"
)

const testArtifact = "toolchain artifact bytes"

func testManifestYAML(t *testing.T) string {
	t.Helper()
	pin := cidutil.CIDv1RawSHA256([]byte(testArtifact))
	return `version: 1
toolchain:
  channel: "1.81.0"
  components: [rustc, clippy, rustfmt, rust-src, rust-analyzer]
  artifact:
    url: https://static.rust-lang.org/dist/rust-1.81.0.tar.xz
    cid: ` + pin + `
inputs: [protobuf]
platforms:
  x86_64-linux:
    inputs: [gcc]
  aarch64-darwin: {}
env:
  RUST_SRC_PATH: "{toolchain}/lib/rustlib/src/rust/library"
`
}

func mustParse(t *testing.T, src string) *Manifest {
	t.Helper()
	m, err := Parse([]byte(src))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return m
}

func TestParseAndValidate(t *testing.T) {
	m := mustParse(t, testManifestYAML(t))
	if err := m.Validate(); err != nil {
		t.Fatalf("Validate: %v", err)
	}
	if got := m.PlatformNames(); len(got) != 2 || got[0] != "aarch64-darwin" || got[1] != "x86_64-linux" {
		t.Fatalf("PlatformNames: %v", got)
	}
}

func TestParseRejectsUnknownFields(t *testing.T) {
	_, err := Parse([]byte("version: 1\nbogus: true\n"))
	if !IsKind(err, KindParse) {
		t.Fatalf("expected Parse error, got %v", err)
	}
}

func TestParseRejectsTrailingDocument(t *testing.T) {
	_, err := Parse([]byte("version: 1\n---\nversion: 2\n"))
	if RuleID(err) != "SHELL-PARSE-002" {
		t.Fatalf("expected SHELL-PARSE-002, got %v", err)
	}
}

func TestValidateRules(t *testing.T) {
	base := testManifestYAML(t)
	cases := []struct {
		name   string
		mutate func(*Manifest)
		ruleID string
	}{
		{"BadVersion", func(m *Manifest) { m.Version = 2 }, "SHELL-VAL-001"},
		{"MissingChannel", func(m *Manifest) { m.Toolchain.Channel = "" }, "SHELL-VAL-002"},
		{"NonVersionChannel", func(m *Manifest) { m.Toolchain.Channel = "nightly" }, "SHELL-VAL-003"},
		{"NoComponents", func(m *Manifest) { m.Toolchain.Components = nil }, "SHELL-VAL-004"},
		{"MissingCID", func(m *Manifest) { m.Toolchain.Artifact.CID = "" }, "SHELL-VAL-006"},
		{"BadCID", func(m *Manifest) { m.Toolchain.Artifact.CID = "not-a-cid" }, "SHELL-VAL-015"},
		{"NoPlatforms", func(m *Manifest) { m.Platforms = nil }, "SHELL-VAL-007"},
		{"EmptyInput", func(m *Manifest) { m.Inputs = []string{" "} }, "SHELL-VAL-010"},
		{"NoInputs", func(m *Manifest) { m.Inputs = nil }, "SHELL-VAL-016"},
		{"NoSchemaCompiler", func(m *Manifest) { m.Inputs = []string{"gcc"} }, "SHELL-VAL-017"},
		{"EmptyEnvValue", func(m *Manifest) { m.Env["EMPTY"] = "" }, "SHELL-VAL-012"},
		{"BadSigAlg", func(m *Manifest) { m.Signature = &Signature{Alg: "rsa", Key: "k", Sig: "s"} }, "SHELL-VAL-013"},
		{"IncompleteSig", func(m *Manifest) { m.Signature = &Signature{Alg: "ed25519"} }, "SHELL-VAL-014"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := mustParse(t, base)
			tc.mutate(m)
			err := m.Validate()
			if RuleID(err) != tc.ruleID {
				t.Fatalf("got %v (rule %q), want rule %s", err, RuleID(err), tc.ruleID)
			}
		})
	}
}

func TestRenderExportsQuoting(t *testing.T) {
	var sb strings.Builder
	err := RenderExports(&sb, map[string]string{"A": "plain", "B": "it's quoted"})
	if err != nil {
		t.Fatalf("RenderExports: %v", err)
	}
	want := "export A='plain'\nexport B='it'\\''s quoted'\n"
	if sb.String() != want {
		t.Fatalf("got %q want %q", sb.String(), want)
	}
}
