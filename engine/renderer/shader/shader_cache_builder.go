package shader

// ShaderCacheBuilderOption is a functional option for configuring a ShaderCache.
type ShaderCacheBuilderOption func(*shaderCache)

// WithMaxPrograms caps the number of live programs. Zero, the default, means unlimited.
//
// Parameters:
//   - n: the program limit
//
// Returns:
//   - ShaderCacheBuilderOption: a function that applies the limit option
func WithMaxPrograms(n int) ShaderCacheBuilderOption {
	return func(c *shaderCache) {
		c.maxPrograms = n
	}
}

// WithGlobalDefines adds #define lines to both stages of every program the cache builds.
//
// Parameters:
//   - defines: the macro names
//
// Returns:
//   - ShaderCacheBuilderOption: a function that applies the defines option
func WithGlobalDefines(defines ...string) ShaderCacheBuilderOption {
	return func(c *shaderCache) {
		c.globalDefines = append(c.globalDefines, defines...)
	}
}
