package worker

import "time"

// DefaultMaxActiveTasks is the number of tasks a processor accepts before ScheduleTask
// returns ErrQueueFull.
const DefaultMaxActiveTasks = 8

// TaskProcessorBuilderOption is a functional option applied to a TaskProcessor during
// construction via NewTaskProcessor.
type TaskProcessorBuilderOption func(*taskProcessor)

// WithMaxActiveTasks sets how many tasks may be scheduled and not yet handed back.
//
// Parameters:
//   - n: the limit, greater than zero
//
// Returns:
//   - TaskProcessorBuilderOption: a function that sets the limit
func WithMaxActiveTasks(n int) TaskProcessorBuilderOption {
	return func(p *taskProcessor) {
		p.maxActiveTasks = n
	}
}

// WithLabel names the processor in log records.
func WithLabel(label string) TaskProcessorBuilderOption {
	return func(p *taskProcessor) {
		p.label = label
	}
}

// WithIdleTimeout sets the idle timeout passed to the underlying worker pool.
func WithIdleTimeout(d time.Duration) TaskProcessorBuilderOption {
	return func(p *taskProcessor) {
		p.idleTimeout = d
	}
}
