package common

import (
	"bytes"
	"errors"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recovered(fn func()) (err error) {
	defer func() {
		err, _ = recover().(error)
	}()
	fn()
	return nil
}

func TestAssert(t *testing.T) {
	assert.NotPanics(t, func() { Assert(true, "unused") })

	err := recovered(func() { Assert(false, "count must be > %d", 0) })
	var precondition *PreconditionError
	require.ErrorAs(t, err, &precondition)
	assert.Equal(t, "count must be > 0", precondition.Message)
}

func TestFatalWrapsCause(t *testing.T) {
	cause := errors.New("compile failed")
	err := recovered(func() { Fatal(cause, "program %q", "globe") })
	assert.ErrorIs(t, err, cause)
	assert.EqualError(t, err, `program "globe": compile failed`)
}

func TestExhausted(t *testing.T) {
	err := recovered(func() { Exhausted("shader programs", 4) })
	var exhausted *ResourceExhaustedError
	require.ErrorAs(t, err, &exhausted)
	assert.Equal(t, 4, exhausted.Limit)
	assert.EqualError(t, err, "shader programs exhausted (limit 4)")
}

func TestSetLogger(t *testing.T) {
	t.Cleanup(func() { SetLogger(nil) })

	var out bytes.Buffer
	SetLogger(slog.New(slog.NewTextHandler(&out, nil)))
	Logger().Info("hello", "frame", 3)
	assert.Contains(t, out.String(), "msg=hello frame=3")

	SetLogger(nil)
	Logger().Error("dropped")
	assert.NotContains(t, out.String(), "dropped")
}
