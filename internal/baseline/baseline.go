package baseline

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/tablespectre/internal/scanner"
)

// Baseline holds fingerprints of previously accepted findings.
type Baseline struct {
	Fingerprints []string `json:"fingerprints"`
	set          map[string]bool
}

// Load reads a baseline file. Returns an empty baseline if the file does not exist.
func Load(path string) (*Baseline, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return &Baseline{set: make(map[string]bool)}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read baseline: %w", err)
	}

	var b Baseline
	if err := json.Unmarshal(data, &b); err != nil {
		return nil, fmt.Errorf("parse baseline: %w", err)
	}
	b.set = make(map[string]bool, len(b.Fingerprints))
	for _, fp := range b.Fingerprints {
		b.set[fp] = true
	}
	return &b, nil
}

// Save writes the fingerprints of every finding in units to path.
func Save(path string, units []scanner.CodeUnit) error {
	var fps []string
	seen := make(map[string]bool)
	for _, u := range units {
		for i := range u.Findings {
			fp := Fingerprint(&u.Findings[i])
			if !seen[fp] {
				fps = append(fps, fp)
				seen[fp] = true
			}
		}
	}
	sort.Strings(fps)
	if fps == nil {
		fps = []string{}
	}

	b := Baseline{Fingerprints: fps}
	data, err := json.MarshalIndent(b, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal baseline: %w", err)
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}

// Contains returns true if the finding's fingerprint is in the baseline.
func (b *Baseline) Contains(f *scanner.Finding) bool {
	return b.set[Fingerprint(f)]
}

// Filter removes baselined findings from every unit and returns the number
// removed. Units are copied; the input slice is left untouched.
func (b *Baseline) Filter(units []scanner.CodeUnit) ([]scanner.CodeUnit, int) {
	if len(b.set) == 0 {
		return units, 0
	}

	out := make([]scanner.CodeUnit, len(units))
	suppressed := 0
	for i, u := range units {
		kept := make([]scanner.Finding, 0, len(u.Findings))
		for j := range u.Findings {
			if b.Contains(&u.Findings[j]) {
				suppressed++
			} else {
				kept = append(kept, u.Findings[j])
			}
		}
		u.Findings = kept
		out[i] = u
	}
	return out, suppressed
}

// Fingerprint computes a stable identifier for a finding. Line numbers are
// left out so a baseline survives edits elsewhere in the unit.
func Fingerprint(f *scanner.Finding) string {
	key := strings.Join([]string{
		f.IssueType,
		f.Program,
		f.Include,
		f.Block,
		f.Table,
		strings.Join(strings.Fields(strings.ToUpper(f.Snippet)), " "),
	}, "|")
	h := sha256.Sum256([]byte(key))
	return fmt.Sprintf("%x", h[:16])
}
