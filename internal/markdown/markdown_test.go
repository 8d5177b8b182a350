package markdown

import (
	"strings"
	"testing"

	"github.com/valpere/subtran/internal/proportional"
)

func TestPairsTable(t *testing.T) {
	got := PairsTable([]proportional.LinePair{
		{Source: "Es geht um Mountainbiker", Target: "It's about mountain bikers"},
		{Source: "a | b", Target: "c\nd"},
	})

	want := "| Source | Translated |\n" +
		"| --- | --- |\n" +
		"| Es geht um Mountainbiker | It's about mountain bikers |\n" +
		"| a \\| b | c d |\n"
	if got != want {
		t.Errorf("unexpected table:\n%s\nwant:\n%s", got, want)
	}
}

func TestPairsTable_ToHTML(t *testing.T) {
	md := PairsTable([]proportional.LinePair{{Source: "Hallo", Target: "Hello"}})
	out := ToHTML([]byte(md))

	for _, want := range []string{"<table>", "<th>Source</th>", "<td>Hallo</td>", "<td>Hello</td>"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in output:\n%s", want, out)
		}
	}
}
