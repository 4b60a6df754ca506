package scanner

import "fmt"

// NewFinding builds the finding for one surviving match.
func NewFinding(unit *CodeUnit, table, replacement string, line int, snippet string) Finding {
	return Finding{
		Program:     unit.Program,
		Include:     unit.Include,
		Type:        unit.Type,
		Block:       unit.Block,
		StartLine:   line,
		EndLine:     line,
		IssueType:   IssueObsoleteTable,
		Severity:    SeverityError,
		Message:     fmt.Sprintf("Obsolete table '%s' used. Replace with '%s'.", table, replacement),
		Suggestion:  fmt.Sprintf("Replace '%s' with '%s'.", table, replacement),
		Snippet:     snippet,
		Table:       table,
		Replacement: replacement,
	}
}
