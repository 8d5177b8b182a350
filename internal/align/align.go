// Package align writes translated words back into subtitle entries. It walks
// every entry's text token by token in lockstep with a stream of word
// allocations, replacing each source word with its target words while
// keeping the whitespace layout of the entry.
package align

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"regexp"
	"strings"

	"github.com/valpere/subtran/internal/proportional"
	"github.com/valpere/subtran/internal/subtitle"
	"github.com/valpere/subtran/internal/tokenize"
)

// AllocationSource yields word allocations in document order and returns
// io.EOF once exhausted.
type AllocationSource interface {
	Next() (proportional.Allocation, error)
}

// An empty allocation between two spaces leaves a double space behind.
var multiSpaceRe = regexp.MustCompile(`[ ]{2,}`)

// Align rewrites the text of every entry from stream. The returned entries
// keep index and timing. On error no entries are returned.
func Align(entries []subtitle.Entry, stream AllocationSource) ([]subtitle.Entry, error) {
	out := make([]subtitle.Entry, len(entries))

	var b strings.Builder
	for i, e := range entries {
		b.Reset()
		for _, tok := range tokenize.Tokenize(e.Text) {
			if tok.Kind == tokenize.Space {
				b.WriteString(tok.Text)
				continue
			}

			a, err := stream.Next()
			if errors.Is(err, io.EOF) {
				return nil, &StreamExhaustionError{Entry: e.Index}
			}
			if err != nil {
				return nil, fmt.Errorf("entry %d: %w", e.Index, err)
			}
			if a.Source != tok.Text {
				return nil, &TokenSyncMismatchError{
					Expected: a.Source,
					Observed: tok.Text,
					Entry:    e.Index,
					Offset:   tok.Start,
				}
			}
			b.WriteString(strings.Join(a.Target, " "))
		}

		// Any edge whitespace is trimmed, a newline left by an empty last
		// allocation included. Cleaned entries carry none of their own.
		text := multiSpaceRe.ReplaceAllString(b.String(), " ")
		out[i] = subtitle.Entry{
			Index: e.Index,
			Start: e.Start,
			End:   e.End,
			Text:  strings.TrimSpace(text),
		}
	}

	leftover := 0
	for {
		_, err := stream.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("after last entry: %w", err)
		}
		leftover++
	}
	if leftover > 0 {
		return nil, &StreamExhaustionError{Leftover: leftover}
	}

	slog.Debug("aligned entries", "count", len(out))
	return out, nil
}

// Translate distributes targetText over sourceText line by line and aligns
// the result onto entries. sourceText must be the text extracted from
// entries.
func Translate(entries []subtitle.Entry, sourceText, targetText string) ([]subtitle.Entry, error) {
	stream, err := proportional.Allocate(sourceText, targetText)
	if err != nil {
		return nil, err
	}
	return Align(entries, stream)
}
