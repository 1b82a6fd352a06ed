// Package worker runs CPU work off the render goroutine and hands the results back to it.
package worker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	automation "github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-globe/common"
)

var (
	// ErrQueueFull is returned by ScheduleTask when the processor already holds its maximum
	// number of active tasks. Callers retry on a later frame.
	ErrQueueFull = errors.New("worker: task queue is full")

	// ErrProcessorClosed is returned by ScheduleTask after Close.
	ErrProcessorClosed = errors.New("worker: task processor is closed")
)

// TaskFunc is the work run on the worker goroutine. It must not touch GPU resources.
type TaskFunc func() (any, error)

// DoneFunc receives the result of a TaskFunc on the goroutine that calls ProcessCompleted.
type DoneFunc func(result any, err error)

type completedTask struct {
	id     int
	result any
	err    error
	onDone DoneFunc
}

// taskProcessor is the implementation of the TaskProcessor interface.
type taskProcessor struct {
	mu sync.Mutex

	label          string
	maxActiveTasks int
	idleTimeout    time.Duration

	pool      automation.DynamicWorkerPool
	nextID    int
	active    int
	completed []completedTask
	closed    bool
}

// TaskProcessor is a bounded serial queue. Tasks run one at a time, in submission order, on a
// single worker goroutine; their results wait until the render goroutine collects them with
// ProcessCompleted, so GPU resources created from a result are created on the goroutine that
// owns the device.
//
// A task counts as active from ScheduleTask until its DoneFunc has run.
type TaskProcessor interface {
	// ScheduleTask queues fn. onDone may be nil.
	//
	// Parameters:
	//   - fn: the work to run off the render goroutine
	//   - onDone: called from ProcessCompleted with fn's result
	//
	// Returns:
	//   - error: ErrQueueFull when too many tasks are active, ErrProcessorClosed after Close
	ScheduleTask(fn TaskFunc, onDone DoneFunc) error

	// ProcessCompleted runs the DoneFunc of every finished task, in completion order, on the
	// calling goroutine.
	//
	// Returns:
	//   - int: the number of tasks handed back
	ProcessCompleted() int

	// ActiveTasks returns the number of tasks scheduled and not yet handed back.
	//
	// Returns:
	//   - int: the active task count
	ActiveTasks() int

	// MaxActiveTasks returns the scheduling limit.
	//
	// Returns:
	//   - int: the maximum number of active tasks
	MaxActiveTasks() int

	// Close drops queued tasks and stops the worker. A task already running finishes, but its
	// result is discarded.
	Close()
}

var _ TaskProcessor = &taskProcessor{}

// NewTaskProcessor creates a TaskProcessor and starts its worker.
//
// Parameters:
//   - options: variadic list of TaskProcessorBuilderOption
//
// Returns:
//   - TaskProcessor: the new processor
func NewTaskProcessor(options ...TaskProcessorBuilderOption) TaskProcessor {
	p := &taskProcessor{
		label:          "task processor",
		maxActiveTasks: DefaultMaxActiveTasks,
		idleTimeout:    time.Second,
	}
	for _, opt := range options {
		opt(p)
	}
	common.Assert(p.maxActiveTasks > 0, "worker: maxActiveTasks must be > 0, got %d", p.maxActiveTasks)

	// One worker keeps tasks serial. The queue holds every active task, so SubmitTask never blocks.
	p.pool = automation.NewDynamicWorkerPool(1, p.maxActiveTasks, p.idleTimeout)
	return p
}

func (p *taskProcessor) ScheduleTask(fn TaskFunc, onDone DoneFunc) error {
	common.Assert(fn != nil, "worker: %s: nil task", p.label)

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrProcessorClosed
	}
	if p.active >= p.maxActiveTasks {
		p.mu.Unlock()
		common.Logger().Debug("task rejected", "processor", p.label, "active", p.active)
		return ErrQueueFull
	}
	p.active++
	id := p.nextID
	p.nextID++
	p.mu.Unlock()

	p.pool.SubmitTask(automation.Task{
		ID: id,
		Do: func() (any, error) {
			result, err := run(fn)
			p.complete(completedTask{id: id, result: result, err: err, onDone: onDone})
			return result, err
		},
	})
	return nil
}

// run converts a panic in fn into an error so a faulty task cannot kill the worker.
func run(fn TaskFunc) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker: task panicked: %v", r)
		}
	}()
	return fn()
}

func (p *taskProcessor) complete(t completedTask) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return
	}
	p.completed = append(p.completed, t)
}

func (p *taskProcessor) ProcessCompleted() int {
	p.mu.Lock()
	done := p.completed
	p.completed = nil
	p.active -= len(done)
	p.mu.Unlock()

	for _, t := range done {
		if t.err != nil {
			common.Logger().Debug("task failed", "processor", p.label, "task", t.id, "error", t.err)
		}
		if t.onDone != nil {
			t.onDone(t.result, t.err)
		}
	}
	return len(done)
}

func (p *taskProcessor) ActiveTasks() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.active
}

func (p *taskProcessor) MaxActiveTasks() int {
	return p.maxActiveTasks
}

func (p *taskProcessor) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	dropped := p.active - len(p.completed)
	p.completed = nil
	p.active = 0
	p.mu.Unlock()

	p.pool.ClearTaskQueue()
	p.pool.Stop()
	if dropped > 0 {
		common.Logger().Warn("task processor closed with pending tasks", "processor", p.label, "dropped", dropped)
	}
}
