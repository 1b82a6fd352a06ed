package buffer

// UniformBufferProviderBuilderOption is a functional option used to configure a UniformBufferProvider during construction.
type UniformBufferProviderBuilderOption func(*uniformBufferProvider)

// WithSlotCount sets how many blocks each buffer holds. Defaults to 1.
//
// Parameters:
//   - count: the number of block slots
//
// Returns:
//   - UniformBufferProviderBuilderOption: a function that sets the slot count
func WithSlotCount(count int) UniformBufferProviderBuilderOption {
	return func(p *uniformBufferProvider) {
		p.slotCount = count
	}
}

// WithOffsetAlignment sets the alignment of block offsets. Defaults to DefaultUniformOffsetAlignment.
//
// Parameters:
//   - alignment: the offset alignment in bytes
//
// Returns:
//   - UniformBufferProviderBuilderOption: a function that sets the alignment
func WithOffsetAlignment(alignment int) UniformBufferProviderBuilderOption {
	return func(p *uniformBufferProvider) {
		p.alignment = alignment
	}
}

// WithUniformLabel sets the debug label prefix of the buffers.
//
// Parameters:
//   - label: the label prefix
//
// Returns:
//   - UniformBufferProviderBuilderOption: a function that sets the label
func WithUniformLabel(label string) UniformBufferProviderBuilderOption {
	return func(p *uniformBufferProvider) {
		p.label = label
	}
}
