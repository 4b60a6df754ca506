package scanner

import (
	"runtime"
	"strings"

	"github.com/ppiankov/tablespectre/internal/tables"
)

// Engine scans code units for obsolete table references. It holds only
// immutable state and is safe for concurrent use.
type Engine struct {
	kb      *tables.KnowledgeBase
	matcher *Matcher
	workers int
}

// Option configures an Engine.
type Option func(*Engine)

// WithWorkers sets the number of goroutines used by batch scans.
// n <= 0 means runtime.NumCPU().
func WithWorkers(n int) Option {
	return func(e *Engine) {
		if n > 0 {
			e.workers = n
		}
	}
}

// NewEngine builds an Engine over kb.
func NewEngine(kb *tables.KnowledgeBase, opts ...Option) *Engine {
	e := &Engine{
		kb:      kb,
		matcher: NewMatcher(kb),
		workers: runtime.NumCPU(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// KnowledgeBase returns the table map the engine matches against.
func (e *Engine) KnowledgeBase() *tables.KnowledgeBase {
	return e.kb
}

// Scan returns the findings for unit in source order. The result is never nil.
func (e *Engine) Scan(unit *CodeUnit) []Finding {
	src := unit.Code
	findings := make([]Finding, 0)

	line, prev := 1, 0
	for m := range e.matcher.Matches(src) {
		line += strings.Count(src[prev:m.Offset], "\n")
		prev = m.Offset

		snippet := LineTextAt(src, m.Offset)
		if IsWriteTarget(m.Table, strings.ToUpper(snippet)) {
			continue
		}
		findings = append(findings, NewFinding(unit, m.Table, m.Replacement, line, snippet))
	}
	return findings
}

// ScanUnit returns a copy of unit with Findings replaced by the scan result.
func (e *Engine) ScanUnit(unit CodeUnit) CodeUnit {
	unit.Findings = e.Scan(&unit)
	return unit
}
