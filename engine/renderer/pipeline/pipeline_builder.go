package pipeline

// PipelineCacheBuilderOption is a functional option used to configure a PipelineCache during construction.
type PipelineCacheBuilderOption func(*pipelineCache)

// WithMaxPipelines caps the number of live pipelines. Zero, the default, means unlimited.
//
// Parameters:
//   - n: the pipeline limit
//
// Returns:
//   - PipelineCacheBuilderOption: a function that sets the pipeline limit
func WithMaxPipelines(n int) PipelineCacheBuilderOption {
	return func(c *pipelineCache) {
		c.maxPipelines = n
	}
}
