// Package subtitle holds timed subtitle entries and the text passes that run
// on them before and after translation: SRT reading and writing, cleaning,
// continuation repair and sentence extraction.
package subtitle

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"
)

// Entry is one timed subtitle. Only Text is rewritten by translation;
// Index and timing pass through unchanged.
type Entry struct {
	Index int
	Start time.Duration
	End   time.Duration
	Text  string
}

var timeLineRe = regexp.MustCompile(`^(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})\s*-->\s*(\d{1,2}):(\d{2}):(\d{2})[,.](\d{3})`)

// Parse reads SRT blocks from r: a sequence number line, a timing line and
// text lines up to the next blank line.
func Parse(r io.Reader) ([]Entry, error) {
	br := bufio.NewReader(r)
	var entries []Entry
	first := true

	for {
		seqLine, eof, err := readTrimmedLine(br)
		if err != nil {
			return nil, err
		}
		if first {
			seqLine = strings.TrimPrefix(seqLine, "\ufeff")
			first = false
		}
		if eof {
			break
		}
		seqLine = strings.TrimSpace(seqLine)
		if seqLine == "" {
			continue
		}
		index, err := strconv.Atoi(seqLine)
		if err != nil {
			return nil, fmt.Errorf("srt format error: invalid sequence line: %q", seqLine)
		}

		timeLine, _, err := readTrimmedLine(br)
		if err != nil {
			return nil, err
		}
		start, end, err := parseTimeLine(timeLine)
		if err != nil {
			return nil, err
		}

		var texts []string
		for {
			line, e, err := readTrimmedLine(br)
			if err != nil {
				return nil, err
			}
			if strings.TrimSpace(line) == "" || e {
				break
			}
			texts = append(texts, line)
		}

		text := strings.Join(texts, "\n")
		if !utf8.ValidString(text) {
			return nil, fmt.Errorf("srt decode error: invalid UTF-8 in entry %d", index)
		}

		entries = append(entries, Entry{Index: index, Start: start, End: end, Text: text})
	}
	return entries, nil
}

// Write renders entries in SRT format.
func Write(w io.Writer, entries []Entry) error {
	bw := bufio.NewWriter(w)
	for i, e := range entries {
		if i > 0 {
			if _, err := bw.WriteString("\n"); err != nil {
				return err
			}
		}
		if _, err := fmt.Fprintf(bw, "%d\n%s --> %s\n%s\n",
			e.Index, FormatTimestamp(e.Start), FormatTimestamp(e.End), e.Text); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// ReadFile parses the SRT file at path.
func ReadFile(path string) ([]Entry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open subtitles: %w", err)
	}
	defer f.Close()

	entries, err := Parse(f)
	if err != nil {
		return nil, fmt.Errorf("failed to read subtitles at %s: %w", path, err)
	}
	return entries, nil
}

// WriteFile writes entries to path, creating missing parent directories.
func WriteFile(path string, entries []Entry) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create subtitles file: %w", err)
	}
	if err := Write(f, entries); err != nil {
		f.Close()
		return fmt.Errorf("failed to save subtitles: %w", err)
	}
	return f.Close()
}

// FormatTimestamp renders d as HH:MM:SS,mmm.
func FormatTimestamp(d time.Duration) string {
	ms := d.Milliseconds()
	h := ms / 3_600_000
	ms -= h * 3_600_000
	m := ms / 60_000
	ms -= m * 60_000
	s := ms / 1000
	ms -= s * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", h, m, s, ms)
}

func parseTimeLine(line string) (time.Duration, time.Duration, error) {
	m := timeLineRe.FindStringSubmatch(strings.TrimSpace(line))
	if m == nil {
		return 0, 0, fmt.Errorf("srt format error: invalid time line: %q", line)
	}
	return timestamp(m[1:5]), timestamp(m[5:9]), nil
}

func timestamp(parts []string) time.Duration {
	var v [4]int
	for i, p := range parts {
		v[i], _ = strconv.Atoi(p)
	}
	return time.Duration(v[0])*time.Hour +
		time.Duration(v[1])*time.Minute +
		time.Duration(v[2])*time.Second +
		time.Duration(v[3])*time.Millisecond
}

// readTrimmedLine reads one line, normalises CRLF to LF and strips the line
// terminator. eof is true only when nothing was left to read.
func readTrimmedLine(br *bufio.Reader) (line string, eof bool, err error) {
	s, err := br.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) {
			eof = true
		} else {
			return "", false, err
		}
	}
	s = strings.TrimSuffix(s, "\n")
	s = strings.TrimSuffix(s, "\r")
	return s, eof && s == "", nil
}
