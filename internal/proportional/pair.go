package proportional

import "strings"

// LinePair is one line of the source text together with the line of the
// translation at the same position.
type LinePair struct {
	Source string
	Target string
}

// Pair splits source and target into lines and zips them in order. Both
// texts must have the same number of lines.
func Pair(source, target string) ([]LinePair, error) {
	src := SplitLines(source)
	tgt := SplitLines(target)

	if len(src) != len(tgt) {
		return nil, &LineCountMismatchError{Expected: len(src), Got: len(tgt)}
	}

	pairs := make([]LinePair, len(src))
	for i := range src {
		pairs[i] = LinePair{Source: src[i], Target: tgt[i]}
	}
	return pairs, nil
}

// SplitLines splits text on "\n", dropping a trailing "\r" from each line.
// A final line terminator does not start another line, so "a\nb\n" has two
// lines and "" has none.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
