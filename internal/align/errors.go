package align

import (
	"errors"
	"fmt"
)

// ErrSyncDefect marks a divergence between the text that was handed to
// translation and the text walked during alignment. It is never caused by
// user input.
var ErrSyncDefect = errors.New("alignment out of sync")

// TokenSyncMismatchError reports a subtitle word that does not equal the
// source word of the next allocation.
type TokenSyncMismatchError struct {
	Expected string // source word of the allocation
	Observed string // word token found in the entry
	Entry    int    // subtitle index
	Offset   int    // byte offset of the token in the entry text
}

func (e *TokenSyncMismatchError) Error() string {
	return fmt.Sprintf("entry %d offset %d: expected word %q, found %q", e.Entry, e.Offset, e.Expected, e.Observed)
}

func (e *TokenSyncMismatchError) Unwrap() error { return ErrSyncDefect }

// StreamExhaustionError reports that allocations ran out while words were
// left, or that allocations were left after the last entry.
type StreamExhaustionError struct {
	Entry    int // subtitle index of the unmatched word, 0 when Leftover is set
	Leftover int // allocations remaining after all entries
}

func (e *StreamExhaustionError) Error() string {
	if e.Leftover > 0 {
		return fmt.Sprintf("%d allocations left after the last entry", e.Leftover)
	}
	return fmt.Sprintf("entry %d: no allocations left for remaining words", e.Entry)
}

func (e *StreamExhaustionError) Unwrap() error { return ErrSyncDefect }
