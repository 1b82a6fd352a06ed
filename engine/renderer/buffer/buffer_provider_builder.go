package buffer

import "github.com/Carmen-Shannon/oxy-globe/engine/renderer/gpu"

// BufferProviderBuilderOption is a functional option used to configure a BufferProvider during construction.
type BufferProviderBuilderOption func(*bufferProvider)

// WithInflightBuffersCount sets how many buffers the ring holds. Defaults to BufferSyncStateCount.
//
// Parameters:
//   - count: the number of buffers, at least 1
//
// Returns:
//   - BufferProviderBuilderOption: a function that sets the buffer count
func WithInflightBuffersCount(count int) BufferProviderBuilderOption {
	return func(p *bufferProvider) {
		p.inflightBuffersCount = count
	}
}

// WithUsage sets the buffer usage. Defaults to gpu.BufferUsageUniform.
//
// Parameters:
//   - usage: the usage bit set
//
// Returns:
//   - BufferProviderBuilderOption: a function that sets the usage
func WithUsage(usage gpu.BufferUsage) BufferProviderBuilderOption {
	return func(p *bufferProvider) {
		p.usage = usage
	}
}

// WithLabel sets the debug label prefix of the buffers.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - BufferProviderBuilderOption: a function that sets the label
func WithLabel(label string) BufferProviderBuilderOption {
	return func(p *bufferProvider) {
		p.label = label
	}
}
