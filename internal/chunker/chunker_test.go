package chunker_test

import (
	"strings"
	"testing"

	"github.com/valpere/subtran/internal/chunker"
)

// --- Lines tests ---

func TestLines_Empty(t *testing.T) {
	if batches := chunker.Lines(nil, 100, 10); batches != nil {
		t.Errorf("expected no batches, got %v", batches)
	}
}

func TestLines_Unlimited(t *testing.T) {
	lines := strings.Split(strings.Repeat("word\n", 500), "\n")
	batches := chunker.Lines(lines, 0, 0)
	if len(batches) != 1 {
		t.Fatalf("expected 1 batch when unlimited, got %d", len(batches))
	}
	if len(batches[0]) != len(lines) {
		t.Errorf("expected %d lines, got %d", len(lines), len(batches[0]))
	}
}

func TestLines_MaxLines(t *testing.T) {
	lines := []string{"a", "b", "c", "d", "e"}
	batches := chunker.Lines(lines, 0, 2)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d: %v", len(batches), batches)
	}
	if strings.Join(batches[2], "|") != "e" {
		t.Errorf("unexpected last batch: %v", batches[2])
	}
}

func TestLines_MaxChars(t *testing.T) {
	// Each line costs its length plus one separator.
	lines := []string{"12345", "12345", "12345"}
	batches := chunker.Lines(lines, 12, 0)
	if len(batches) != 2 {
		t.Fatalf("expected 2 batches, got %d: %v", len(batches), batches)
	}
	if len(batches[0]) != 2 || len(batches[1]) != 1 {
		t.Errorf("unexpected batch sizes: %v", batches)
	}
}

func TestLines_OversizedLineAlone(t *testing.T) {
	lines := []string{"short", strings.Repeat("x", 50), "short"}
	batches := chunker.Lines(lines, 10, 0)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[1]) != 1 || len(batches[1][0]) != 50 {
		t.Errorf("oversized line should be alone: %v", batches[1])
	}
}

func TestLines_PreservesLines(t *testing.T) {
	lines := []string{"Es geht um Mountainbiker.", "", "Wer darf hier?", "Ü ö ä", "Ende."}
	var rejoined []string
	for _, b := range chunker.Lines(lines, 20, 2) {
		if len(b) == 0 {
			t.Fatal("empty batch")
		}
		rejoined = append(rejoined, b...)
	}
	if strings.Join(rejoined, "\n") != strings.Join(lines, "\n") || len(rejoined) != len(lines) {
		t.Errorf("lines changed: %q", rejoined)
	}
}

// --- ExtractContext tests ---

func TestExtractContext_FewerWordsThanLimit(t *testing.T) {
	text := "short text"
	ctx := chunker.ExtractContext(text, 25)
	if ctx != text {
		t.Errorf("expected %q, got %q", text, ctx)
	}
}

func TestExtractContext_ExactWordCount(t *testing.T) {
	words := make([]string, 25)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	ctx := chunker.ExtractContext(text, 25)
	if ctx != text {
		t.Errorf("expected same text back, got %q", ctx)
	}
}

func TestExtractContext_MoreWordsThanLimit(t *testing.T) {
	words := make([]string, 50)
	for i := range words {
		words[i] = "word"
	}
	text := strings.Join(words, " ")
	ctx := chunker.ExtractContext(text, 25)
	got := len(strings.Fields(ctx))
	if got != 25 {
		t.Errorf("expected 25 words, got %d", got)
	}
}

func TestExtractContext_DefaultWordCount(t *testing.T) {
	// wordCount ≤ 0 should use DefaultContextWords (25).
	words := make([]string, 50)
	for i := range words {
		words[i] = "w"
	}
	text := strings.Join(words, " ")
	ctx := chunker.ExtractContext(text, 0)
	got := len(strings.Fields(ctx))
	if got != chunker.DefaultContextWords {
		t.Errorf("expected %d words, got %d", chunker.DefaultContextWords, got)
	}
}

func TestExtractContext_LastWordsCorrect(t *testing.T) {
	text := "alpha beta gamma delta epsilon"
	ctx := chunker.ExtractContext(text, 3)
	if ctx != "gamma delta epsilon" {
		t.Errorf("expected last 3 words, got %q", ctx)
	}
}
