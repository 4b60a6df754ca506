package scanner

import (
	"slices"
	"testing"

	"github.com/ppiankov/tablespectre/internal/tables"
)

func collect(m *Matcher, text string) []Match {
	return slices.Collect(m.Matches(text))
}

func TestMatcher_WholeWord(t *testing.T) {
	m := NewMatcher(tables.Default())

	tests := []struct {
		name string
		text string
		want []string
	}{
		{"plain", "SELECT * FROM MSEG.", []string{"MSEG"}},
		{"lowercase", "select * from mseg", []string{"MSEG"}},
		{"mixed case", "SELECT * FROM MsEg", []string{"MSEG"}},
		{"suffix", "SELECT * FROM MSEGX.", nil},
		{"prefix", "SELECT * FROM XMSEG.", nil},
		{"underscore", "DATA lt_mseg TYPE TABLE OF mseg_tab.", nil},
		{"digit", "MSEG1 = 1.", nil},
		{"field access", "ls_mseg-matnr = MSEG-MATNR.", []string{"MSEG"}},
		{"two tables", "SELECT * FROM MKPF INNER JOIN MSEG ON mkpf~mblnr = mseg~mblnr.", []string{"MKPF", "MSEG", "MKPF", "MSEG"}},
		{"accented suffix", "SELECT * FROM MSEGé.", nil},
		{"accented prefix", "SELECT * FROM éMSEG.", nil},
		{"arabic digit", "MSEG٣ = 1.", nil},
		{"umlaut neighbours", "* Größe: MSEG über MKPF", []string{"MSEG", "MKPF"}},
		{"accented longer name", "SELECT * FROM MARDHä.", nil},
		{"no tables", "WRITE 'hello'.", nil},
		{"empty", "", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got []string
			for _, mt := range collect(m, tt.text) {
				got = append(got, mt.Table)
			}
			if !slices.Equal(got, tt.want) {
				t.Errorf("Matches(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

func TestMatcher_LongestFirst(t *testing.T) {
	m := NewMatcher(tables.Default())

	got := collect(m, "SELECT * FROM MARDH WHERE x IN ( SELECT y FROM MARD ).")
	if len(got) != 2 {
		t.Fatalf("expected 2 matches, got %v", got)
	}
	if got[0].Table != "MARDH" || got[0].Replacement != "NSDM_V_MARDH" {
		t.Errorf("first match = %+v, want MARDH", got[0])
	}
	if got[1].Table != "MARD" {
		t.Errorf("second match = %+v, want MARD", got[1])
	}
}

func TestMatcher_LongestFirst_SharedPrefixCustomBase(t *testing.T) {
	kb := tables.MustNew([]tables.Entry{
		{Obsolete: "AB", Replacement: "NEW_AB"},
		{Obsolete: "AB_CD", Replacement: "NEW_AB_CD"},
	})
	m := NewMatcher(kb)

	got := collect(m, "read ab_cd and ab")
	if len(got) != 2 || got[0].Table != "AB_CD" || got[1].Table != "AB" {
		t.Errorf("got %+v", got)
	}
}

func TestMatcher_Offsets(t *testing.T) {
	m := NewMatcher(tables.Default())
	text := "x\nSELECT * FROM mkpf."

	got := collect(m, text)
	if len(got) != 1 {
		t.Fatalf("got %v", got)
	}
	if text[got[0].Offset:got[0].Offset+4] != "mkpf" {
		t.Errorf("offset %d points at %q", got[0].Offset, text[got[0].Offset:])
	}
}

func TestMatcher_Restartable(t *testing.T) {
	m := NewMatcher(tables.Default())
	seq := m.Matches("MSEG MKPF MARC")

	first := slices.Collect(seq)
	second := slices.Collect(seq)
	if !slices.Equal(first, second) || len(first) != 3 {
		t.Errorf("first=%v second=%v", first, second)
	}
}

func TestMatcher_EarlyStop(t *testing.T) {
	m := NewMatcher(tables.Default())
	n := 0
	for range m.Matches("MSEG MKPF MARC MARD") {
		n++
		if n == 2 {
			break
		}
	}
	if n != 2 {
		t.Errorf("n = %d", n)
	}
}

func TestMatcher_EmptyBase(t *testing.T) {
	m := NewMatcher(tables.MustNew(nil))
	if m.Pattern() != "" {
		t.Errorf("pattern = %q", m.Pattern())
	}
	if got := collect(m, "SELECT * FROM MSEG"); len(got) != 0 {
		t.Errorf("expected no matches, got %v", got)
	}
}

func TestMatcher_Pattern(t *testing.T) {
	kb := tables.MustNew([]tables.Entry{
		{Obsolete: "MARD", Replacement: "A"},
		{Obsolete: "MARDH", Replacement: "B"},
	})
	if got, want := NewMatcher(kb).Pattern(), `(?i)\b(?:MARDH|MARD)\b`; got != want {
		t.Errorf("pattern = %q, want %q", got, want)
	}
}
