package scanner

import "strings"

var writePrefixes = []string{"UPDATE ", "MODIFY ", "DELETE FROM "}

// IsWriteTarget reports whether upperLine starts a modification statement
// against table. upperLine must already be trimmed and upper-cased.
//
// Only the start of the line is inspected: a label or any other token before
// the keyword, or a statement split across lines, is not recognized.
func IsWriteTarget(table, upperLine string) bool {
	for _, p := range writePrefixes {
		if strings.HasPrefix(upperLine, p+table) {
			return true
		}
	}
	return false
}
