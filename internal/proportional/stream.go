package proportional

import (
	"errors"
	"fmt"
	"io"
	"strings"
)

// Stream flattens the allocations of a sequence of line pairs into a single
// ordered stream. Distributors are created lazily, one line at a time.
type Stream struct {
	pairs   []LinePair
	next    int
	current *Distributor
}

// NewStream checks every pair for lines that cannot be distributed and
// returns a stream over all of their allocations.
func NewStream(pairs []LinePair) (*Stream, error) {
	for i, p := range pairs {
		if len(strings.Fields(p.Source)) == 0 && len(strings.Fields(p.Target)) > 0 {
			return nil, &DegenerateSourceLineError{Line: i + 1, Target: p.Target}
		}
	}
	return &Stream{pairs: pairs}, nil
}

// Allocate pairs source and target line by line and returns the allocation
// stream over all lines.
func Allocate(source, target string) (*Stream, error) {
	pairs, err := Pair(source, target)
	if err != nil {
		return nil, err
	}
	return NewStream(pairs)
}

// Next returns the next allocation across all lines, or io.EOF when every
// line has been exhausted.
func (s *Stream) Next() (Allocation, error) {
	for {
		if s.current == nil {
			if s.next == len(s.pairs) {
				return Allocation{}, io.EOF
			}
			p := s.pairs[s.next]
			d, err := NewDistributor(p.Source, p.Target)
			if err != nil {
				var degenerate *DegenerateSourceLineError
				if errors.As(err, &degenerate) {
					degenerate.Line = s.next + 1
				}
				return Allocation{}, err
			}
			s.current = d
			s.next++
		}

		a, err := s.current.Next()
		if err == nil {
			return a, nil
		}
		if !errors.Is(err, io.EOF) {
			return Allocation{}, fmt.Errorf("line %d: %w", s.next, err)
		}
		s.current = nil
	}
}
