package shader

// ShaderSourceBuilderOption is a functional option for configuring a ShaderSource.
type ShaderSourceBuilderOption func(*shaderSource)

// WithSources appends GLSL fragments. Fragments are concatenated in order.
//
// Parameters:
//   - sources: the GLSL text fragments
//
// Returns:
//   - ShaderSourceBuilderOption: a function that applies the sources option
func WithSources(sources ...string) ShaderSourceBuilderOption {
	return func(s *shaderSource) {
		s.sources = append(s.sources, sources...)
	}
}

// WithSourceFromPath appends the contents of a GLSL file as one fragment. Panics if the file
// cannot be read.
//
// Parameters:
//   - path: the file path to read GLSL source from
//
// Returns:
//   - ShaderSourceBuilderOption: a function that applies the source option
func WithSourceFromPath(path string) ShaderSourceBuilderOption {
	return func(s *shaderSource) {
		s.sources = append(s.sources, readSource(path))
	}
}

// WithDefines appends macro names emitted as #define lines.
//
// Parameters:
//   - defines: the macro names, optionally followed by a value ("NAME 1")
//
// Returns:
//   - ShaderSourceBuilderOption: a function that applies the defines option
func WithDefines(defines ...string) ShaderSourceBuilderOption {
	return func(s *shaderSource) {
		s.defines = append(s.defines, defines...)
	}
}

// WithIncludeBuiltIns sets whether czm_ identifiers are resolved. Defaults to true.
//
// Parameters:
//   - include: false to leave the source untouched apart from the header
//
// Returns:
//   - ShaderSourceBuilderOption: a function that applies the built-ins option
func WithIncludeBuiltIns(include bool) ShaderSourceBuilderOption {
	return func(s *shaderSource) {
		s.includeBuiltIns = include
	}
}

// WithResolver replaces DefaultResolver.
//
// Parameters:
//   - r: the resolver consulted for every czm_ identifier
//
// Returns:
//   - ShaderSourceBuilderOption: a function that applies the resolver option
func WithResolver(r Resolver) ShaderSourceBuilderOption {
	return func(s *shaderSource) {
		if r != nil {
			s.resolver = r
		}
	}
}
