package suppress

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/ppiankov/tablespectre/internal/scanner"
	"go.yaml.in/yaml/v3"
)

// FileName is the ignore file looked up in the working directory.
const FileName = ".tablespectre-ignore.yml"

// InlineMarker on a source line drops findings reported for that line.
const InlineMarker = "tablespectre:ignore"

// Suppression is a single rule in the ignore file. Empty fields match anything;
// Table, Program and Include accept a trailing '*' wildcard.
type Suppression struct {
	Table   string `yaml:"table,omitempty"`
	Program string `yaml:"program,omitempty"`
	Include string `yaml:"include,omitempty"`
	Reason  string `yaml:"reason,omitempty"`
}

// IgnoreFile is the structure of .tablespectre-ignore.yml.
type IgnoreFile struct {
	Suppressions []Suppression `yaml:"suppressions"`
}

// Rules holds loaded suppression rules from all sources.
type Rules struct {
	ignoreFile IgnoreFile
	// from config exclude.tables / exclude.programs
	excludeTables   []string
	excludePrograms []string
	excludesOnly    bool
}

// LoadRules loads suppression rules from .tablespectre-ignore.yml in the given directory.
func LoadRules(dir string) (*Rules, error) {
	r := &Rules{}

	path := filepath.Join(dir, FileName)
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return r, nil
	}
	if err != nil {
		return nil, err
	}

	if err := yaml.Unmarshal(data, &r.ignoreFile); err != nil {
		return nil, err
	}
	return r, nil
}

// WithExcludes adds table and program exclusions from config.
func (r *Rules) WithExcludes(tables, programs []string) *Rules {
	r.excludeTables = tables
	r.excludePrograms = programs
	return r
}

// Excludes returns rules holding only config exclusions. The inline marker
// and the ignore file are not consulted.
func Excludes(tables, programs []string) *Rules {
	return &Rules{excludeTables: tables, excludePrograms: programs, excludesOnly: true}
}

// Empty reports whether the rules can never suppress anything.
func (r *Rules) Empty() bool {
	return r.excludesOnly && len(r.excludeTables) == 0 && len(r.excludePrograms) == 0
}

// IsSuppressed returns true if the finding should be suppressed.
func (r *Rules) IsSuppressed(f *scanner.Finding) bool {
	if !r.excludesOnly && HasInlineIgnore(f.Snippet) {
		return true
	}

	for _, t := range r.excludeTables {
		if match(t, f.Table) {
			return true
		}
	}
	for _, p := range r.excludePrograms {
		if match(p, f.Program) {
			return true
		}
	}

	for _, s := range r.ignoreFile.Suppressions {
		if s.Table == "" && s.Program == "" && s.Include == "" {
			continue
		}
		if matchOptional(s.Table, f.Table) &&
			matchOptional(s.Program, f.Program) &&
			matchOptional(s.Include, f.Include) {
			return true
		}
	}

	return false
}

// Filter removes suppressed findings and returns the remaining ones.
// Returns the filtered list and the number of suppressed findings.
func (r *Rules) Filter(findings []scanner.Finding) ([]scanner.Finding, int) {
	filtered := make([]scanner.Finding, 0, len(findings))
	suppressed := 0
	for i := range findings {
		if r.IsSuppressed(&findings[i]) {
			suppressed++
		} else {
			filtered = append(filtered, findings[i])
		}
	}
	return filtered, suppressed
}

// FilterUnits applies Filter to every unit's findings. Units are copied; the
// input slice is left untouched.
func (r *Rules) FilterUnits(units []scanner.CodeUnit) ([]scanner.CodeUnit, int) {
	out := make([]scanner.CodeUnit, len(units))
	total := 0
	for i, u := range units {
		var n int
		u.Findings, n = r.Filter(u.Findings)
		total += n
		out[i] = u
	}
	return out, total
}

func matchOptional(pattern, value string) bool {
	return pattern == "" || match(pattern, value)
}

// match compares case-insensitively; a trailing '*' matches any suffix.
func match(pattern, value string) bool {
	pattern = strings.ToUpper(strings.TrimSpace(pattern))
	value = strings.ToUpper(value)

	if strings.HasSuffix(pattern, "*") {
		return strings.HasPrefix(value, strings.TrimSuffix(pattern, "*"))
	}
	return pattern == value
}

// HasInlineIgnore returns true if the line contains a tablespectre:ignore comment.
func HasInlineIgnore(line string) bool {
	return strings.Contains(line, InlineMarker)
}
