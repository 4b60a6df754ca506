package scanner

// IssueObsoleteTable is the category of every finding this rule emits.
const IssueObsoleteTable = "MM_ObsoleteTable"

// SeverityError is the severity of every finding this rule emits.
const SeverityError = "error"

// CodeUnit is one chunk of source submitted for scanning.
// A nil or absent Code is scanned as empty text.
type CodeUnit struct {
	Program  string    `json:"pgm_name"`
	Include  string    `json:"inc_name"`
	Type     string    `json:"type"`
	Block    string    `json:"name,omitempty"`
	Code     string    `json:"code"`
	Source   string    `json:"source,omitempty"`
	Findings []Finding `json:"findings"`
}

// Finding is a single obsolete table reference at one source line.
type Finding struct {
	Program     string `json:"prog_name"`
	Include     string `json:"incl_name"`
	Type        string `json:"types"`
	Block       string `json:"blockname,omitempty"`
	StartLine   int    `json:"starting_line"`
	EndLine     int    `json:"ending_line"`
	IssueType   string `json:"issues_type"`
	Severity    string `json:"severity"`
	Message     string `json:"message"`
	Suggestion  string `json:"suggestion"`
	Snippet     string `json:"snippet"`
	Table       string `json:"table,omitempty"`
	Replacement string `json:"replacement,omitempty"`
}
