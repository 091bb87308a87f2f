package devshell

import (
	"fmt"
	"io"
	"sort"
	"strings"
)

// RenderExports writes sorted POSIX export lines for env.
//
// Values are single-quoted; embedded single quotes are escaped the POSIX way.
func RenderExports(w io.Writer, env map[string]string) error {
	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		value := strings.ReplaceAll(env[name], "'", `'\''`)
		if _, err := fmt.Fprintf(w, "export %s='%s'\n", name, value); err != nil {
			return err
		}
	}
	return nil
}

// Render writes a shell-sourceable description of a composed environment:
// the input list as a comment block, then the exports.
func (e Environment) Render(w io.Writer, resolvedEnv map[string]string) error {
	if _, err := fmt.Fprintf(w, "# platform: %s\n", e.Platform); err != nil {
		return err
	}
	for _, input := range e.Inputs {
		if _, err := fmt.Fprintf(w, "# input: %s\n", input); err != nil {
			return err
		}
	}
	return RenderExports(w, resolvedEnv)
}
