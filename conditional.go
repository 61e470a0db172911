package main

import "errors"

// ErrUnmatchedAelse and ErrUnmatchedAendi are reported as syntax errors
// (spec.md §4.E, §7); they never terminate the process.
var (
	ErrUnmatchedAelse = errors.New("unmatched .AELSE")
	ErrUnmatchedAendi = errors.New("unmatched .AENDI")
)

type condFrame struct {
	emitting bool
	elseSeen bool
}

// conditionalStack tracks .AIF/.AELSE/.AENDI nesting. Output is
// emitted only while the top frame reports emitting == true; each push
// already folds in the enclosing frame's suppression, so callers only
// ever need to inspect the top.
type conditionalStack struct {
	frames []condFrame
}

func newConditionalStack() *conditionalStack {
	return &conditionalStack{}
}

// parentEmits reports whether the enclosing context (the current top
// frame, or the top level if the stack is empty) currently emits.
func (c *conditionalStack) parentEmits() bool {
	if len(c.frames) == 0 {
		return true
	}
	return c.frames[len(c.frames)-1].emitting
}

// AIF pushes a new frame. Its emitting state is predicate && the
// enclosing frame's emitting state, so a suppressed outer frame forces
// every nested frame to suppress regardless of the inner predicate.
func (c *conditionalStack) AIF(predicate bool) {
	c.frames = append(c.frames, condFrame{emitting: predicate && c.parentEmits()})
}

// AElse toggles the top frame's emitting state, provided the enclosing
// frame emits and this frame has not already seen an .AELSE.
func (c *conditionalStack) AElse() error {
	if len(c.frames) == 0 {
		return ErrUnmatchedAelse
	}
	top := len(c.frames) - 1
	if c.frames[top].elseSeen {
		return ErrUnmatchedAelse
	}
	c.frames[top].elseSeen = true

	enclosingEmits := true
	if top > 0 {
		enclosingEmits = c.frames[top-1].emitting
	}
	if enclosingEmits {
		c.frames[top].emitting = !c.frames[top].emitting
	}
	return nil
}

// AEndi pops the top frame.
func (c *conditionalStack) AEndi() error {
	if len(c.frames) == 0 {
		return ErrUnmatchedAendi
	}
	c.frames = c.frames[:len(c.frames)-1]
	return nil
}

// Suppressed reports whether output should currently be discarded.
func (c *conditionalStack) Suppressed() bool {
	if len(c.frames) == 0 {
		return false
	}
	return !c.frames[len(c.frames)-1].emitting
}

// Unclosed returns the number of still-open frames, for the
// end-of-source structural-error report.
func (c *conditionalStack) Unclosed() int {
	return len(c.frames)
}
