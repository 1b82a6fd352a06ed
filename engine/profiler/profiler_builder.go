package profiler

import "time"

// ProfilerBuilderOption is a functional option applied to a Profiler during construction via
// NewProfiler.
type ProfilerBuilderOption func(*Profiler)

// WithInterval sets how often statistics are reported.
//
// Parameters:
//   - d: the report interval
//
// Returns:
//   - ProfilerBuilderOption: option function to apply
func WithInterval(d time.Duration) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.updateInterval = d
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.now = now
	}
}

// WithSampleCallback receives every reported Sample after it is logged.
func WithSampleCallback(callback func(Sample)) ProfilerBuilderOption {
	return func(p *Profiler) {
		p.onSample = callback
	}
}
