package common

import "fmt"

// PreconditionError reports a programmer or authoring defect: invalid state ranges, shader
// compile failures, missing command fields. It is raised with panic because no caller can
// recover from it at runtime.
type PreconditionError struct {
	Message string
	Err     error
}

func (e *PreconditionError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *PreconditionError) Unwrap() error {
	return e.Err
}

// NewPreconditionError formats a PreconditionError.
func NewPreconditionError(format string, args ...any) *PreconditionError {
	return &PreconditionError{Message: fmt.Sprintf(format, args...)}
}

// ResourceExhaustedError reports that a bounded resource (cache capacity, identifier space,
// per-frame slots) ran out. It is fatal like PreconditionError but a distinct kind so callers
// recovering at a boundary can tell "ran out" from "malformed input".
type ResourceExhaustedError struct {
	Resource string
	Limit    int
}

func (e *ResourceExhaustedError) Error() string {
	return fmt.Sprintf("%s exhausted (limit %d)", e.Resource, e.Limit)
}

// Assert panics with a PreconditionError when cond is false.
//
// Parameters:
//   - cond: the condition that must hold
//   - format: fmt-style message describing the violated precondition
//   - args: format arguments
func Assert(cond bool, format string, args ...any) {
	if !cond {
		panic(NewPreconditionError(format, args...))
	}
}

// Fatal panics with a PreconditionError wrapping err.
func Fatal(err error, format string, args ...any) {
	panic(&PreconditionError{Message: fmt.Sprintf(format, args...), Err: err})
}

// Exhausted panics with a ResourceExhaustedError.
func Exhausted(resource string, limit int) {
	panic(&ResourceExhaustedError{Resource: resource, Limit: limit})
}
