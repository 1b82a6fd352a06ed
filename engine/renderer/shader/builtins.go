package shader

import (
	"embed"
	"path"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/engine/renderer/uniform"
)

//go:embed builtins/*.glsl
var builtinFiles embed.FS

// builtins maps a czm_ identifier to the GLSL that defines it. One file per identifier, named
// after it.
var builtins = map[string]string{}

func init() {
	entries, err := builtinFiles.ReadDir("builtins")
	if err != nil {
		panic("shader: failed to read embedded built-ins: " + err.Error())
	}
	for _, e := range entries {
		data, err := builtinFiles.ReadFile(path.Join("builtins", e.Name()))
		if err != nil {
			panic("shader: failed to read embedded built-in " + e.Name() + ": " + err.Error())
		}
		builtins[strings.TrimSuffix(e.Name(), ".glsl")] = strings.TrimRight(string(data), "\n")
	}
}

// Resolver maps a czm_ identifier to the dependency-graph node that declares it.
//
// Parameters:
//   - name: the czm_ prefixed identifier found in source
//
// Returns:
//   - string: the node name; several identifiers may share one node (uniform blocks)
//   - string: the GLSL emitted for the node
//   - bool: false when the identifier is unknown and should be left alone
type Resolver func(name string) (node, source string, ok bool)

// DefaultResolver resolves built-in functions, structs and constants first and automatic
// uniforms second.
func DefaultResolver(name string) (string, string, bool) {
	if src, ok := builtins[name]; ok {
		return name, src, true
	}
	return uniform.Declaration(name)
}

// MapResolver returns a Resolver over a fixed name to source table.
//
// Parameters:
//   - table: identifier to GLSL source
//
// Returns:
//   - Resolver: a resolver that reports every table key as its own node
func MapResolver(table map[string]string) Resolver {
	return func(name string) (string, string, bool) {
		src, ok := table[name]
		return name, src, ok
	}
}

// BuiltinNames returns the names of every embedded built-in in sorted order.
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
