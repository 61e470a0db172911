package main

import (
	"fmt"
	"io"
)

// Emitter writes translated lines to the output sink, optionally
// prefixed with a comment-wrapped copy of the original input line
// (spec.md §4.H).
type Emitter struct {
	w           io.Writer
	report      *Reporter
	copySource  bool
	commentChar byte
}

func newEmitter(w io.Writer, report *Reporter, copySource bool, commentChar byte) *Emitter {
	if commentChar == 0 {
		commentChar = ';'
	}
	return &Emitter{w: w, report: report, copySource: copySource, commentChar: commentChar}
}

// Emit writes the translated line, preceded by a commented copy of
// original when copy-source mode is on. source/line identify the input
// position for write-failure diagnostics.
func (e *Emitter) Emit(original, translated, source string, line int) {
	if e.copySource {
		if _, err := fmt.Fprintf(e.w, "%c%s\n", e.commentChar, original); err != nil {
			e.report.Errorf(source, line, "write failed: %v", err)
			return
		}
	}
	if _, err := fmt.Fprintf(e.w, "%s\n", translated); err != nil {
		e.report.Errorf(source, line, "write failed: %v", err)
	}
}
