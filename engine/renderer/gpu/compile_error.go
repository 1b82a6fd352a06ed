package gpu

import (
	"fmt"
	"strings"
)

// CompileError is returned by Device.CreateProgram when a stage fails to compile or the
// program fails to link. Line numbers in Log refer to Source, the fully generated text
// handed to the driver, so both are kept.
type CompileError struct {
	Label  string
	Stage  string
	Source string
	Log    string
}

func (e *CompileError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s shader %q failed to compile:\n%s\n", e.Stage, e.Label, strings.TrimSpace(e.Log))
	b.WriteString("source:\n")
	for i, line := range strings.Split(e.Source, "\n") {
		fmt.Fprintf(&b, "%4d: %s\n", i+1, line)
	}
	return b.String()
}
