package shader

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-globe/common"
)

// DefaultVersion is emitted when no source carries a #version directive.
const DefaultVersion = "#version 300 es"

// fragmentPrecisionPreamble selects the best float precision the fragment stage supports.
const fragmentPrecisionPreamble = `#ifdef GL_FRAGMENT_PRECISION_HIGH
    precision highp float;
    precision highp int;
#else
    precision mediump float;
    precision mediump int;
    #define highp mediump
#endif
`

// shaderSource is the implementation of the ShaderSource interface.
type shaderSource struct {
	sources         []string
	defines         []string
	includeBuiltIns bool
	resolver        Resolver
}

// ShaderSource is the GLSL text of one shader stage before compilation: an ordered list of
// source fragments, a list of #define names and whether czm_ built-ins are resolved. It is
// immutable once built; Clone derives variants.
type ShaderSource interface {
	// Sources returns the source fragments in concatenation order.
	//
	// Returns:
	//   - []string: the fragments
	Sources() []string

	// Defines returns the macro names emitted as #define lines.
	//
	// Returns:
	//   - []string: the define list, possibly containing empty entries which are skipped
	Defines() []string

	// IncludeBuiltIns reports whether CombineShader resolves czm_ identifiers.
	//
	// Returns:
	//   - bool: true when built-ins are resolved
	IncludeBuiltIns() bool

	// CombineShader produces the final stage text. Comments are stripped with line numbers
	// kept, the #version line (or DefaultVersion) and any #extension lines are hoisted to the
	// top, followed by the #define lines, the fragment precision preamble (fragment stage
	// only) and every built-in the source depends on, directly or through other built-ins,
	// ordered so each definition precedes its first use. Each fragment is preceded by
	// "#line 0" so compiler diagnostics refer to fragment-local lines.
	//
	// Panics with a *common.PreconditionError when the built-ins depend on each other
	// circularly.
	//
	// Parameters:
	//   - isFragment: true for the fragment stage
	//
	// Returns:
	//   - string: the combined GLSL text
	CombineShader(isFragment bool) string

	// Clone returns a copy with the given options applied on top of this source's settings.
	// WithSources and WithDefines append to the copied lists.
	//
	// Parameters:
	//   - options: variadic list of ShaderSourceBuilderOption to apply to the copy
	//
	// Returns:
	//   - ShaderSource: the derived source
	Clone(options ...ShaderSourceBuilderOption) ShaderSource
}

var _ ShaderSource = &shaderSource{}

// NewShaderSource creates a ShaderSource with the given options applied. Built-ins are
// included and resolved with DefaultResolver unless an option says otherwise.
//
// Parameters:
//   - options: variadic list of ShaderSourceBuilderOption
//
// Returns:
//   - ShaderSource: the new shader source
func NewShaderSource(options ...ShaderSourceBuilderOption) ShaderSource {
	s := &shaderSource{
		includeBuiltIns: true,
		resolver:        DefaultResolver,
	}
	for _, opt := range options {
		opt(s)
	}
	return s
}

func (s *shaderSource) Sources() []string {
	return append([]string(nil), s.sources...)
}

func (s *shaderSource) Defines() []string {
	return append([]string(nil), s.defines...)
}

func (s *shaderSource) IncludeBuiltIns() bool {
	return s.includeBuiltIns
}

func (s *shaderSource) Clone(options ...ShaderSourceBuilderOption) ShaderSource {
	c := &shaderSource{
		sources:         s.Sources(),
		defines:         s.Defines(),
		includeBuiltIns: s.includeBuiltIns,
		resolver:        s.resolver,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (s *shaderSource) CombineShader(isFragment bool) string {
	var combined strings.Builder
	for _, src := range s.sources {
		combined.WriteString("\n#line 0\n")
		combined.WriteString(src)
	}

	version := DefaultVersion
	var extensions []string
	lines := strings.Split(stripComments(combined.String()), "\n")
	for i, line := range lines {
		switch {
		case versionRegex.MatchString(line):
			version = strings.TrimSpace(line)
			lines[i] = ""
		case extensionRegex.MatchString(line):
			extensions = append(extensions, strings.TrimSpace(line))
			lines[i] = ""
		}
	}
	body := strings.Join(lines, "\n")

	var out strings.Builder
	out.WriteString(version)
	out.WriteByte('\n')
	for _, ext := range extensions {
		out.WriteString(ext)
		out.WriteByte('\n')
	}
	for _, d := range s.defines {
		if d = strings.TrimSpace(d); d != "" {
			out.WriteString("#define " + d + "\n")
		}
	}
	if isFragment {
		out.WriteString(fragmentPrecisionPreamble)
	}
	if s.includeBuiltIns {
		out.WriteString(resolveBuiltins(body, s.resolver))
	}
	out.WriteString(body)
	return out.String()
}

// dependencyNode is one vertex of the built-in dependency graph.
type dependencyNode struct {
	name       string
	source     string
	dependsOn  []*dependencyNode
	requiredBy []*dependencyNode
	evaluated  bool
}

// resolveBuiltins returns the GLSL of every node body transitively depends on, dependencies
// first, one node per line group.
func resolveBuiltins(body string, resolve Resolver) string {
	root := &dependencyNode{name: "main", source: body}
	byName := map[string]*dependencyNode{}
	nodes := []*dependencyNode{root}
	generateDependencies(root, byName, &nodes, resolve)

	sorted := sortDependencies(nodes)
	var b strings.Builder
	for i := len(sorted) - 1; i >= 0; i-- {
		if sorted[i] == root {
			continue
		}
		b.WriteString(sorted[i].source)
		b.WriteByte('\n')
	}
	return b.String()
}

func generateDependencies(current *dependencyNode, byName map[string]*dependencyNode, nodes *[]*dependencyNode, resolve Resolver) {
	if current.evaluated {
		return
	}
	current.evaluated = true

	for _, id := range findCzmIdentifiers(stripComments(current.source)) {
		name, src, ok := resolve(id)
		// block members resolve to the block they are declared in
		if !ok || name == current.name {
			continue
		}
		dep, exists := byName[name]
		if !exists {
			dep = &dependencyNode{name: name, source: src}
			byName[name] = dep
			*nodes = append(*nodes, dep)
		}
		if !containsNode(current.dependsOn, dep) {
			current.dependsOn = append(current.dependsOn, dep)
			dep.requiredBy = append(dep.requiredBy, current)
		}
		generateDependencies(dep, byName, nodes, resolve)
	}
}

func containsNode(nodes []*dependencyNode, n *dependencyNode) bool {
	for _, x := range nodes {
		if x == n {
			return true
		}
	}
	return false
}

// sortDependencies orders nodes so every node precedes the nodes it depends on (Kahn's
// algorithm over requiredBy in-degree). Nodes left with unresolved in-degree form at least
// one cycle; they are all reported in a single panic.
func sortDependencies(nodes []*dependencyNode) []*dependencyNode {
	inDegree := make(map[*dependencyNode]int, len(nodes))
	var queue []*dependencyNode
	for _, n := range nodes {
		inDegree[n] = len(n.requiredBy)
		if inDegree[n] == 0 {
			queue = append(queue, n)
		}
	}

	sorted := make([]*dependencyNode, 0, len(nodes))
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		sorted = append(sorted, n)
		for _, dep := range n.dependsOn {
			inDegree[dep]--
			if inDegree[dep] == 0 {
				queue = append(queue, dep)
			}
		}
	}

	if len(sorted) != len(nodes) {
		var cyclic []string
		for _, n := range nodes {
			if inDegree[n] > 0 {
				cyclic = append(cyclic, n.name)
			}
		}
		sort.Strings(cyclic)
		panic(common.NewPreconditionError(
			"A circular dependency was found in the following built-in functions/structs/constants: %s",
			strings.Join(cyclic, ", ")))
	}
	return sorted
}

// readSource loads one GLSL fragment from disk.
func readSource(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		panic(common.NewPreconditionError("shader: failed to read source file %q: %v", path, err))
	}
	return string(data)
}

// String summarizes the source for logs.
func (s *shaderSource) String() string {
	return fmt.Sprintf("ShaderSource{sources: %d, defines: %v}", len(s.sources), s.defines)
}
