package worker

import (
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-globe/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// drain calls ProcessCompleted until n tasks have been handed back.
func drain(t *testing.T, p TaskProcessor, n int) {
	t.Helper()
	handed := 0
	require.Eventually(t, func() bool {
		handed += p.ProcessCompleted()
		return handed >= n
	}, time.Second, time.Millisecond)
}

func TestTasksRunSeriallyInOrder(t *testing.T) {
	p := NewTaskProcessor(WithMaxActiveTasks(16))
	defer p.Close()

	var (
		mu      sync.Mutex
		running int
		overlap bool
		ran     []int
	)
	var handed []int
	for i := range 10 {
		err := p.ScheduleTask(func() (any, error) {
			mu.Lock()
			running++
			overlap = overlap || running > 1
			ran = append(ran, i)
			mu.Unlock()

			time.Sleep(time.Millisecond)

			mu.Lock()
			running--
			mu.Unlock()
			return i * i, nil
		}, func(result any, err error) {
			assert.NoError(t, err)
			handed = append(handed, result.(int))
		})
		require.NoError(t, err)
	}

	drain(t, p, 10)
	assert.False(t, overlap, "tasks must not run concurrently")
	assert.Equal(t, []int{0, 1, 2, 3, 4, 5, 6, 7, 8, 9}, ran)
	assert.Equal(t, []int{0, 1, 4, 9, 16, 25, 36, 49, 64, 81}, handed)
	assert.Equal(t, 0, p.ActiveTasks())
}

func TestResultsWaitForProcessCompleted(t *testing.T) {
	p := NewTaskProcessor()
	defer p.Close()

	finished := make(chan struct{})
	called := false
	require.NoError(t, p.ScheduleTask(func() (any, error) {
		defer close(finished)
		return "glyph", nil
	}, func(result any, err error) {
		called = true
	}))

	<-finished
	assert.False(t, called, "the done callback only runs from ProcessCompleted")
	assert.Equal(t, 1, p.ActiveTasks())

	drain(t, p, 1)
	assert.True(t, called)
	assert.Equal(t, 0, p.ActiveTasks())
}

func TestScheduleTaskRejectsWhenFull(t *testing.T) {
	p := NewTaskProcessor(WithMaxActiveTasks(2))
	defer p.Close()

	release := make(chan struct{})
	block := func() (any, error) {
		<-release
		return nil, nil
	}
	require.NoError(t, p.ScheduleTask(block, nil))
	require.NoError(t, p.ScheduleTask(block, nil))
	assert.ErrorIs(t, p.ScheduleTask(block, nil), ErrQueueFull)
	assert.Equal(t, 2, p.ActiveTasks())

	close(release)
	drain(t, p, 2)
	assert.NoError(t, p.ScheduleTask(func() (any, error) { return nil, nil }, nil))
	drain(t, p, 1)
}

func TestTaskErrorsAndPanicsAreHandedBack(t *testing.T) {
	p := NewTaskProcessor()
	defer p.Close()

	sentinel := errors.New("bad glyph")
	var errs []error
	onDone := func(_ any, err error) { errs = append(errs, err) }

	require.NoError(t, p.ScheduleTask(func() (any, error) { return nil, sentinel }, onDone))
	require.NoError(t, p.ScheduleTask(func() (any, error) { panic("index out of range") }, onDone))
	require.NoError(t, p.ScheduleTask(func() (any, error) { return 1, nil }, onDone))
	drain(t, p, 3)

	require.Len(t, errs, 3)
	assert.ErrorIs(t, errs[0], sentinel)
	assert.ErrorContains(t, errs[1], "index out of range")
	assert.NoError(t, errs[2], "the worker survives a panicking task")
}

func TestCloseRejectsNewTasks(t *testing.T) {
	p := NewTaskProcessor()
	require.NoError(t, p.ScheduleTask(func() (any, error) { return nil, nil }, nil))

	p.Close()
	p.Close()
	assert.ErrorIs(t, p.ScheduleTask(func() (any, error) { return nil, nil }, nil), ErrProcessorClosed)
	assert.Equal(t, 0, p.ActiveTasks())
	assert.Equal(t, 0, p.ProcessCompleted())
}

func TestNewTaskProcessorRejectsZeroLimit(t *testing.T) {
	defer func() {
		r := recover()
		var pe *common.PreconditionError
		require.True(t, errors.As(r.(error), &pe))
	}()
	NewTaskProcessor(WithMaxActiveTasks(0))
}
