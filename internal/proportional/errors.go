package proportional

import (
	"errors"
	"fmt"
)

var (
	// ErrUserInput marks problems in the source or target text that the user
	// can fix by supplying a corrected translation.
	ErrUserInput = errors.New("invalid translation input")
	// ErrInvariant marks a broken bookkeeping invariant. It is never caused
	// by user input and always indicates a bug.
	ErrInvariant = errors.New("allocation invariant violated")
)

// LineCountMismatchError reports that the source and target texts have a
// different number of lines.
type LineCountMismatchError struct {
	Expected int // source lines
	Got      int // target lines
}

func (e *LineCountMismatchError) Error() string {
	return fmt.Sprintf("there are %d lines in source and %d lines in target; number of lines must be equal", e.Expected, e.Got)
}

func (e *LineCountMismatchError) Unwrap() error { return ErrUserInput }

// DegenerateSourceLineError reports a line pair whose source has no words
// while its target has some, so no word can carry them.
type DegenerateSourceLineError struct {
	Line   int // 1-based; 0 when unknown
	Target string
}

func (e *DegenerateSourceLineError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d has no source words but target %q", e.Line, e.Target)
	}
	return fmt.Sprintf("source line has no words but target %q", e.Target)
}

func (e *DegenerateSourceLineError) Unwrap() error { return ErrUserInput }

// ConservationError reports that a distributor did not hand out exactly the
// target words it was given.
type ConservationError struct {
	Source  string
	Target  string
	Reason  string
	Overage string
}

func (e *ConservationError) Error() string {
	return fmt.Sprintf("%s (overage %s) while distributing %q onto %q", e.Reason, e.Overage, e.Target, e.Source)
}

func (e *ConservationError) Unwrap() error { return ErrInvariant }
