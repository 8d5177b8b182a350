package subtitle_test

import (
	"testing"

	"github.com/valpere/subtran/internal/subtitle"
)

func entries(texts ...string) []subtitle.Entry {
	out := make([]subtitle.Entry, len(texts))
	for i, text := range texts {
		out[i] = subtitle.Entry{Index: i + 1, Text: text}
	}
	return out
}

func texts(entries []subtitle.Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

func assertTexts(t *testing.T, got []subtitle.Entry, want ...string) {
	t.Helper()
	gotTexts := texts(got)
	if len(gotTexts) != len(want) {
		t.Fatalf("expected %d entries, got %d: %q", len(want), len(gotTexts), gotTexts)
	}
	for i := range want {
		if gotTexts[i] != want[i] {
			t.Errorf("entry %d: expected %q, got %q", i, want[i], gotTexts[i])
		}
	}
}

func TestClean_Markup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"html tags", "<i>Hallo</i> <b>Welt</b>", "Hallo Welt"},
		{"hard spaces", "Vielleicht sind wir früh dran und entstanden\\h\nquasi vor allem anderen Leben\\h\\h", "Vielleicht sind wir früh dran und entstanden\nquasi vor allem anderen Leben"},
		{"multiple spaces", "zu   viele  Leerzeichen", "zu viele Leerzeichen"},
		{"spaces around newline", "erste Zeile  \n   zweite Zeile", "erste Zeile\nzweite Zeile"},
		{"surrounding whitespace", "  Text \n", "Text"},
		{"hyphen inside entry", "dass 70% der Insel und des um-\nliegenden Archipels zerstört wurden.", "dass 70% der Insel und des umliegenden\nArchipels zerstört wurden."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			es := entries(tt.in)
			subtitle.Clean(es)
			assertTexts(t, es, tt.want)
		})
	}
}

func TestClean_RepairsHyphenAcrossEntries(t *testing.T) {
	es := entries("Und die haben vielleicht mal für Y-", "Kollektiv irgendwas gedreht.")
	subtitle.Clean(es)
	assertTexts(t, es, "Und die haben vielleicht mal für Y-Kollektiv", "irgendwas gedreht.")
}

func TestRepairContinuations_SingleWordNextEntry(t *testing.T) {
	es := entries("für Y-", "Kollektiv")
	subtitle.RepairContinuations(es)
	assertTexts(t, es, "für Y-", "Kollektiv")
}

func TestRepairContinuations_IgnoresDashAfterSpace(t *testing.T) {
	es := entries("Die Folgen -", "damals wie heute")
	subtitle.RepairContinuations(es)
	assertTexts(t, es, "Die Folgen -", "damals wie heute")
}

func TestRepairContinuations_DoesNotFollowChains(t *testing.T) {
	es := entries("a Nord-", "Süd b-", "c d")
	subtitle.RepairContinuations(es)
	assertTexts(t, es, "a Nord-Süd", "b-", "c d")
}

func TestRepairContinuations_UnmodifiedEntryStillChecked(t *testing.T) {
	es := entries("a", "Nord-", "Süd b", "Ost-", "West c")
	subtitle.RepairContinuations(es)
	assertTexts(t, es, "a", "Nord-Süd", "b", "Ost-West", "c")
}

func TestRepairContinuations_PreservesEntryCount(t *testing.T) {
	es := entries("x-", "y z", "", "w")
	subtitle.RepairContinuations(es)
	if len(es) != 4 {
		t.Fatalf("expected 4 entries, got %d", len(es))
	}
	if es[0].Index != 1 || es[3].Index != 4 {
		t.Errorf("indices changed: %+v", es)
	}
}
