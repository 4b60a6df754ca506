package scanner

import (
	"iter"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/ppiankov/tablespectre/internal/tables"
)

// Match is one whole-word occurrence of an obsolete table name.
type Match struct {
	Table       string // upper-cased
	Replacement string
	Offset      int // byte offset of the first character
}

// Matcher finds obsolete table names in text. It is immutable and safe for
// concurrent use.
type Matcher struct {
	kb *tables.KnowledgeBase
	re *regexp.Regexp
}

// NewMatcher compiles a single case-insensitive alternation of every name in
// kb. Alternation is leftmost-first, so names are tried longest first.
// RE2's \b is ASCII-only; Matches rejects hits next to non-ASCII word runes.
func NewMatcher(kb *tables.KnowledgeBase) *Matcher {
	names := kb.Names()
	if len(names) == 0 {
		return &Matcher{kb: kb}
	}

	quoted := make([]string, len(names))
	for i, n := range names {
		quoted[i] = regexp.QuoteMeta(n)
	}
	re := regexp.MustCompile(`(?i)\b(?:` + strings.Join(quoted, "|") + `)\b`)
	return &Matcher{kb: kb, re: re}
}

// Pattern returns the compiled expression source, or "" for an empty base.
func (m *Matcher) Pattern() string {
	if m.re == nil {
		return ""
	}
	return m.re.String()
}

// Matches yields matches in text from left to right. Each call scans text
// from the beginning.
func (m *Matcher) Matches(text string) iter.Seq[Match] {
	return func(yield func(Match) bool) {
		if m.re == nil {
			return
		}
		pos := 0
		for pos < len(text) {
			loc := m.re.FindStringIndex(text[pos:])
			if loc == nil {
				return
			}
			start, end := pos+loc[0], pos+loc[1]
			pos = end

			if !wordBoundary(text, start, end) {
				continue
			}
			table := strings.ToUpper(text[start:end])
			repl, ok := m.kb.Lookup(table)
			if !ok {
				continue
			}
			if !yield(Match{Table: table, Replacement: repl, Offset: start}) {
				return
			}
		}
	}
}

// wordBoundary reports whether text[start:end] is not embedded in a longer
// token. Letters and numbers in any script count as word runes.
func wordBoundary(text string, start, end int) bool {
	if start > 0 {
		r, _ := utf8.DecodeLastRuneInString(text[:start])
		if isWordRune(r) {
			return false
		}
	}
	if end < len(text) {
		r, _ := utf8.DecodeRuneInString(text[end:])
		if isWordRune(r) {
			return false
		}
	}
	return true
}

func isWordRune(r rune) bool {
	return r == '_' || unicode.IsLetter(r) || unicode.IsNumber(r)
}
