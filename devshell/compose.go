package devshell

import "fmt"

// Environment is a composed per-platform development shell: the fixed list of
// build inputs and the exported environment variables (unresolved; see
// ResolveEnv).
type Environment struct {
	Platform string
	Inputs   []string
	Env      map[string]string
}

// Compose assembles the development shell for platform: toolchain components,
// then common inputs, then platform inputs, deduplicated in declaration order.
//
// An undeclared platform is a Compose error; a validated manifest composes
// successfully for every platform it declares.
func (m *Manifest) Compose(platform string) (Environment, error) {
	p, ok := m.Platforms[platform]
	if !ok {
		return Environment{}, wrapError(KindCompose, "SHELL-COMP-001",
			fmt.Sprintf("platform %q not declared", platform), nil)
	}

	seen := make(map[string]struct{})
	var inputs []string
	add := func(names []string) {
		for _, name := range names {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			inputs = append(inputs, name)
		}
	}
	add(m.Toolchain.Components)
	add(m.Inputs)
	add(p.Inputs)

	env := make(map[string]string, len(m.Env))
	for name, value := range m.Env {
		env[name] = value
	}
	return Environment{Platform: platform, Inputs: inputs, Env: env}, nil
}
