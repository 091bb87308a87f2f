// Package devshell models the declarative development-environment descriptor:
// a pinned, hash-verified toolchain, declared build inputs, per-platform shell
// composition, and exported environment variables.
//
// The descriptor is a YAML manifest. This package parses and validates it,
// composes per-platform environments, and verifies toolchain artifacts
// against their content-address pin. It does not build environments.
package devshell

import (
	"bytes"
	"errors"
	"io"
	"sort"
	"strings"

	"github.com/Masterminds/semver/v3"
	"github.com/ipfs/go-cid"
	"gopkg.in/yaml.v3"
)

// ToolchainRef is the placeholder in env values that resolves to the
// materialized toolchain root.
const ToolchainRef = "{toolchain}"

// SchemaCompilerInput is the one build input every manifest must declare:
// the schema/interface-definition compiler the wire messages are generated
// from.
const SchemaCompilerInput = "protobuf"

// Manifest is a parsed development-environment descriptor.
type Manifest struct {
	Version   int                 `yaml:"version"`
	Toolchain Toolchain           `yaml:"toolchain"`
	Inputs    []string            `yaml:"inputs"`
	Platforms map[string]Platform `yaml:"platforms"`
	Env       map[string]string   `yaml:"env"`
	Signature *Signature          `yaml:"signature,omitempty"`
}

// Toolchain pins a compiler toolchain: a channel identifier, its component
// set, and the content-addressed artifact it resolves to.
type Toolchain struct {
	Channel    string   `yaml:"channel"`
	Components []string `yaml:"components"`
	Artifact   Artifact `yaml:"artifact"`
}

// Artifact is the pinned toolchain artifact: where to fetch it and the
// content address its bytes must hash to.
type Artifact struct {
	URL string `yaml:"url"`
	CID string `yaml:"cid"`
}

// Platform declares additional build inputs for one platform.
type Platform struct {
	Inputs []string `yaml:"inputs"`
}

// Signature is a detached signature over the manifest's signing bytes.
type Signature struct {
	Alg     string `yaml:"alg"`
	HashAlg string `yaml:"hash_alg,omitempty"`
	Key     string `yaml:"key"`
	Sig     string `yaml:"sig"`
}

// Parse decodes a manifest and rejects unknown fields. It does not validate;
// call Validate.
func Parse(data []byte) (*Manifest, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	var m Manifest
	if err := dec.Decode(&m); err != nil {
		return nil, wrapError(KindParse, "SHELL-PARSE-001", "invalid manifest YAML", err)
	}
	// A manifest is exactly one document.
	if err := dec.Decode(new(struct{})); !errors.Is(err, io.EOF) {
		return nil, newError(KindParse, "SHELL-PARSE-002", "trailing YAML document")
	}
	return &m, nil
}

// Validate checks structural and semantic rules. A manifest that validates
// can compose every declared platform.
func (m *Manifest) Validate() error {
	if m.Version != 1 {
		return newError(KindValidation, "SHELL-VAL-001", "unsupported manifest version")
	}
	if m.Toolchain.Channel == "" {
		return newError(KindValidation, "SHELL-VAL-002", "missing toolchain channel")
	}
	if _, err := semver.NewVersion(m.Toolchain.Channel); err != nil {
		return wrapError(KindValidation, "SHELL-VAL-003", "toolchain channel is not a version", err)
	}
	if len(m.Toolchain.Components) == 0 {
		return newError(KindValidation, "SHELL-VAL-004", "toolchain has no components")
	}
	for _, c := range m.Toolchain.Components {
		if strings.TrimSpace(c) == "" {
			return newError(KindValidation, "SHELL-VAL-005", "empty toolchain component")
		}
	}
	if m.Toolchain.Artifact.CID == "" {
		return newError(KindValidation, "SHELL-VAL-006", "missing toolchain artifact cid")
	}
	if _, err := m.PinCID(); err != nil {
		return err
	}
	if len(m.Platforms) == 0 {
		return newError(KindValidation, "SHELL-VAL-007", "no platforms declared")
	}
	for name, p := range m.Platforms {
		if strings.TrimSpace(name) == "" {
			return newError(KindValidation, "SHELL-VAL-008", "empty platform name")
		}
		for _, in := range p.Inputs {
			if strings.TrimSpace(in) == "" {
				return newError(KindValidation, "SHELL-VAL-009", "empty platform input")
			}
		}
	}
	if len(m.Inputs) == 0 {
		return newError(KindValidation, "SHELL-VAL-016", "no build inputs declared")
	}
	schemaCompiler := false
	for _, in := range m.Inputs {
		if strings.TrimSpace(in) == "" {
			return newError(KindValidation, "SHELL-VAL-010", "empty build input")
		}
		schemaCompiler = schemaCompiler || in == SchemaCompilerInput
	}
	if !schemaCompiler {
		return newError(KindValidation, "SHELL-VAL-017", "build inputs must include "+SchemaCompilerInput)
	}
	for name, value := range m.Env {
		if strings.TrimSpace(name) == "" {
			return newError(KindValidation, "SHELL-VAL-011", "empty env variable name")
		}
		if value == "" {
			return newError(KindValidation, "SHELL-VAL-012", "empty env variable value")
		}
	}
	if m.Signature != nil {
		switch m.Signature.Alg {
		case "ed25519", "dilithium3":
		default:
			return newError(KindValidation, "SHELL-VAL-013", "unsupported signature alg")
		}
		if m.Signature.Key == "" || m.Signature.Sig == "" {
			return newError(KindValidation, "SHELL-VAL-014", "incomplete signature block")
		}
	}
	return nil
}

// PinCID returns the decoded content address of the toolchain artifact.
func (m *Manifest) PinCID() (cid.Cid, error) {
	id, err := cid.Decode(m.Toolchain.Artifact.CID)
	if err != nil || !id.Defined() {
		return cid.Undef, wrapError(KindValidation, "SHELL-VAL-015", "invalid toolchain artifact cid", err)
	}
	return id, nil
}

// Platforms returns the declared platform names, sorted.
func (m *Manifest) PlatformNames() []string {
	names := make([]string, 0, len(m.Platforms))
	for name := range m.Platforms {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
