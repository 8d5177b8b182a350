package subtitle_test

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/valpere/subtran/internal/subtitle"
)

const sample = "\ufeff1\r\n00:00:01,000 --> 00:00:02,500\r\nEs geht um Mountainbiker\r\nund die Frage:\r\n\r\n" +
	"2\r\n00:00:02,600 --> 00:00:05,000\r\nWer darf hier wie den Wald nutzen?\r\n"

func TestParse(t *testing.T) {
	entries, err := subtitle.Parse(strings.NewReader(sample))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}

	first := entries[0]
	if first.Index != 1 {
		t.Errorf("expected index 1, got %d", first.Index)
	}
	if first.Start != time.Second || first.End != 2500*time.Millisecond {
		t.Errorf("unexpected timing: %v --> %v", first.Start, first.End)
	}
	if first.Text != "Es geht um Mountainbiker\nund die Frage:" {
		t.Errorf("unexpected text: %q", first.Text)
	}
	if entries[1].Text != "Wer darf hier wie den Wald nutzen?" {
		t.Errorf("unexpected text: %q", entries[1].Text)
	}
}

func TestParse_InvalidTimeLine(t *testing.T) {
	_, err := subtitle.Parse(strings.NewReader("1\nnot a time\nText\n"))
	if err == nil {
		t.Fatal("expected error for malformed time line")
	}
}

func TestParse_InvalidSequence(t *testing.T) {
	_, err := subtitle.Parse(strings.NewReader("one\n00:00:01,000 --> 00:00:02,000\nText\n"))
	if err == nil {
		t.Fatal("expected error for malformed sequence line")
	}
}

func TestWriteParseRoundTrip(t *testing.T) {
	entries := []subtitle.Entry{
		{Index: 1, Start: 0, End: 1500 * time.Millisecond, Text: "It's about mountain bikers\nand the question: Who"},
		{Index: 2, Start: time.Hour + 2*time.Minute + 3*time.Second + 4*time.Millisecond, End: 2 * time.Hour, Text: "is allowed to use the forest here and how?"},
	}

	var buf bytes.Buffer
	if err := subtitle.Write(&buf, entries); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if !strings.Contains(buf.String(), "01:02:03,004 --> 02:00:00,000") {
		t.Errorf("unexpected timestamp rendering:\n%s", buf.String())
	}

	got, err := subtitle.Parse(&buf)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(got) != len(entries) {
		t.Fatalf("expected %d entries, got %d", len(entries), len(got))
	}
	for i := range entries {
		if got[i] != entries[i] {
			t.Errorf("entry %d: expected %+v, got %+v", i, entries[i], got[i])
		}
	}
}

func TestWriteFile_CreatesDirectories(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.srt")
	entries := []subtitle.Entry{{Index: 1, End: time.Second, Text: "Hallo"}}

	if err := subtitle.WriteFile(path, entries); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected file to exist: %v", err)
	}

	got, err := subtitle.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if len(got) != 1 || got[0].Text != "Hallo" {
		t.Errorf("unexpected entries: %+v", got)
	}
}

func TestOutputPath(t *testing.T) {
	tests := []struct {
		src, lang, dir string
		want           string
	}{
		{"/videos/talk.de.srt", "en", "", "/videos/talk.de.en.srt"},
		{"/videos/talk.srt", "", "", "/videos/talk.translated.srt"},
		{"/videos/talk.srt", "fr", "/out", "/out/talk.fr.srt"},
	}

	for _, tt := range tests {
		got := subtitle.OutputPath(tt.src, tt.lang, tt.dir)
		if got != filepath.FromSlash(tt.want) {
			t.Errorf("OutputPath(%q, %q, %q) = %q, want %q", tt.src, tt.lang, tt.dir, got, tt.want)
		}
	}
}
