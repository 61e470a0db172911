package main

import (
	"fmt"
	"io"
	"os"
)

// Reporter accumulates diagnostics the way spec.md §7 describes: syntax,
// resource, and structural errors are recorded and processing continues;
// a Fatalf call is reserved for the handful of conditions the engine
// cannot recover from (buffer overflow, input-stack depth, allocation
// failure) and terminates the process immediately.
type Reporter struct {
	w        io.Writer
	errCount int
}

func newReporter(w io.Writer) *Reporter {
	return &Reporter{w: w}
}

// Errorf records a non-fatal diagnostic with a "<source>:<line>: "
// prefix, matching the teacher's own `<file>: error: ...` framing in
// main.go's convertFunctionParameters, generalized to a stream rather
// than a single returned error.
func (r *Reporter) Errorf(source string, line int, format string, args ...any) {
	r.errCount++
	msg := fmt.Sprintf(format, args...)
	if source != "" {
		fmt.Fprintf(r.w, "%s:%d: %s\n", source, line, msg)
	} else {
		fmt.Fprintln(r.w, msg)
	}
}

// HadError reports whether any diagnostic has been recorded.
func (r *Reporter) HadError() bool {
	return r.errCount > 0
}

// Fatalf prints a diagnostic and terminates the process, mirroring the
// teacher's uniform os.Exit(1)-after-Fprintln convention in main.go.
func (r *Reporter) Fatalf(format string, args ...any) {
	fmt.Fprintf(r.w, "masp: fatal: %s\n", fmt.Sprintf(format, args...))
	os.Exit(1)
}
