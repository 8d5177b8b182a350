package align_test

import (
	"errors"
	"io"
	"testing"
	"time"

	"github.com/valpere/subtran/internal/align"
	"github.com/valpere/subtran/internal/proportional"
	"github.com/valpere/subtran/internal/subtitle"
)

func entries(texts ...string) []subtitle.Entry {
	out := make([]subtitle.Entry, len(texts))
	for i, text := range texts {
		out[i] = subtitle.Entry{
			Index: i + 1,
			Start: time.Duration(i) * time.Second,
			End:   time.Duration(i+1) * time.Second,
			Text:  text,
		}
	}
	return out
}

func assertTexts(t *testing.T, got []subtitle.Entry, want ...string) {
	t.Helper()
	if len(got) != len(want) {
		t.Fatalf("expected %d entries, got %d: %+v", len(want), len(got), got)
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], got[i].Text)
		}
	}
}

// sliceSource replays fixed allocations.
type sliceSource struct {
	allocs []proportional.Allocation
	err    error
}

func (s *sliceSource) Next() (proportional.Allocation, error) {
	if len(s.allocs) == 0 {
		if s.err != nil {
			return proportional.Allocation{}, s.err
		}
		return proportional.Allocation{}, io.EOF
	}
	a := s.allocs[0]
	s.allocs = s.allocs[1:]
	return a, nil
}

func TestTranslate_EqualLength(t *testing.T) {
	got, err := align.Translate(entries("Source text"), "Source text", "Target text")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTexts(t, got, "Target text")
}

func TestTranslate_TwoEntriesOneLine(t *testing.T) {
	es := entries("Es geht um Mountainbiker\nund die Frage:", "Wer darf hier wie den Wald nutzen?")
	source := subtitle.ExtractText(es)

	got, err := align.Translate(es, source,
		"It's about mountain bikers and the question: Who is allowed to use the forest here and how?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTexts(t, got,
		"It's about mountain bikers\nand the question: Who",
		"is allowed to use the forest here and how?")

	for i := range es {
		if got[i].Index != es[i].Index || got[i].Start != es[i].Start || got[i].End != es[i].End {
			t.Errorf("entry %d: index or timing changed: %+v", i, got[i])
		}
	}
}

func TestTranslate_EmptyAllocationsCollapseSpaces(t *testing.T) {
	text := "Wir haben euch gefragt, hat von euch schon mal jemand gecatfisht?"
	got, err := align.Translate(entries(text), text, "We asked you, has anyone of you ever catfished?")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTexts(t, got, "We asked you, has anyone of you ever catfished?")
}

func TestTranslate_LineCountMismatch(t *testing.T) {
	_, err := align.Translate(entries("a", "b"), "a\nb", "x")
	if !errors.Is(err, proportional.ErrUserInput) {
		t.Fatalf("expected user input error, got %v", err)
	}
}

func TestAlign_TokenMismatch(t *testing.T) {
	src := &sliceSource{allocs: []proportional.Allocation{
		{Source: "Hallo", Target: []string{"Hello"}},
		{Source: "Welt", Target: []string{"world"}},
	}}

	got, err := align.Align(entries("Hallo Erde"), src)
	if got != nil {
		t.Errorf("expected no entries on error, got %+v", got)
	}

	var mismatch *align.TokenSyncMismatchError
	if !errors.As(err, &mismatch) {
		t.Fatalf("expected TokenSyncMismatchError, got %v", err)
	}
	if mismatch.Expected != "Welt" || mismatch.Observed != "Erde" || mismatch.Entry != 1 || mismatch.Offset != 6 {
		t.Errorf("unexpected mismatch: %+v", mismatch)
	}
	if !errors.Is(err, align.ErrSyncDefect) {
		t.Error("expected error to wrap ErrSyncDefect")
	}
}

func TestAlign_StreamExhausted(t *testing.T) {
	src := &sliceSource{allocs: []proportional.Allocation{
		{Source: "eins", Target: []string{"one"}},
	}}

	got, err := align.Align(entries("eins", "zwei"), src)
	if got != nil {
		t.Errorf("expected no entries on error, got %+v", got)
	}

	var exhausted *align.StreamExhaustionError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected StreamExhaustionError, got %v", err)
	}
	if exhausted.Entry != 2 {
		t.Errorf("expected entry 2, got %d", exhausted.Entry)
	}
	if !errors.Is(err, align.ErrSyncDefect) {
		t.Error("expected error to wrap ErrSyncDefect")
	}
}

func TestAlign_LeftoverAllocations(t *testing.T) {
	src := &sliceSource{allocs: []proportional.Allocation{
		{Source: "eins", Target: []string{"one"}},
		{Source: "zwei", Target: []string{"two"}},
		{Source: "drei", Target: []string{"three"}},
	}}

	_, err := align.Align(entries("eins"), src)

	var exhausted *align.StreamExhaustionError
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected StreamExhaustionError, got %v", err)
	}
	if exhausted.Leftover != 2 {
		t.Errorf("expected 2 leftover allocations, got %d", exhausted.Leftover)
	}
}

func TestAlign_PropagatesStreamErrors(t *testing.T) {
	defect := &proportional.ConservationError{Reason: "broken"}
	src := &sliceSource{err: defect}

	_, err := align.Align(entries("eins"), src)
	if !errors.Is(err, proportional.ErrInvariant) {
		t.Fatalf("expected invariant error, got %v", err)
	}
}

func TestAlign_KeepsWhitespaceLayout(t *testing.T) {
	src := &sliceSource{allocs: []proportional.Allocation{
		{Source: "a", Target: []string{"x"}},
		{Source: "b", Target: []string{"y", "z"}},
		{Source: "c", Target: nil},
	}}

	got, err := align.Align(entries("a\nb\tc"), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTexts(t, got, "x\ny z")
}

func TestAlign_TrimsNewlineLeftByEmptyAllocation(t *testing.T) {
	src := &sliceSource{allocs: []proportional.Allocation{
		{Source: "a", Target: []string{"x"}},
		{Source: "b", Target: nil},
	}}

	got, err := align.Align(entries("a\nb"), src)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	assertTexts(t, got, "x")
}

func TestAlign_Empty(t *testing.T) {
	got, err := align.Align(nil, &sliceSource{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected no entries, got %+v", got)
	}
}
