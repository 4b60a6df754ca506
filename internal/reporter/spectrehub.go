package reporter

import (
	"crypto/sha256"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"
)

// SpectreHubEnvelope is the spectre/v1 cross-tool ingestion format.
type SpectreHubEnvelope struct {
	Schema    string              `json:"schema"`
	Tool      string              `json:"tool"`
	Version   string              `json:"version"`
	Timestamp string              `json:"timestamp"`
	Target    SpectreHubTarget    `json:"target"`
	Findings  []SpectreHubFinding `json:"findings"`
	Summary   SpectreHubSummary   `json:"summary"`
}

// SpectreHubTarget describes the scanned source tree.
type SpectreHubTarget struct {
	Type    string `json:"type"`
	URIHash string `json:"uri_hash"`
}

// SpectreHubFinding is a single finding in the spectre/v1 format.
type SpectreHubFinding struct {
	ID       string         `json:"id"`
	Severity string         `json:"severity"`
	Location string         `json:"location"`
	Message  string         `json:"message"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// SpectreHubSummary counts findings by severity. Every obsolete table
// finding is high.
type SpectreHubSummary struct {
	Total  int `json:"total"`
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Info   int `json:"info"`
}

// HashTarget produces a sha256 hash of the absolute scan target so that
// local paths are not leaked into the envelope.
func HashTarget(target string) string {
	if abs, err := filepath.Abs(target); err == nil && target != "" {
		target = abs
	}
	h := sha256.Sum256([]byte(target))
	return fmt.Sprintf("sha256:%x", h)
}

func writeSpectreHub(w io.Writer, report *Report) error {
	envelope := SpectreHubEnvelope{
		Schema:    "spectre/v1",
		Tool:      "tablespectre",
		Version:   report.Metadata.Version,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Target: SpectreHubTarget{
			Type:    "abap",
			URIHash: HashTarget(report.Metadata.Target),
		},
		Summary: SpectreHubSummary{
			Total: report.Summary.Findings,
			High:  report.Summary.Findings,
		},
		Findings: []SpectreHubFinding{},
	}

	for _, u := range report.Units {
		for i := range u.Findings {
			f := &u.Findings[i]
			envelope.Findings = append(envelope.Findings, SpectreHubFinding{
				ID:       f.IssueType,
				Severity: "high",
				Location: fmt.Sprintf("%s:%d", artifactURI(&u, f), f.StartLine),
				Message:  f.Message,
				Metadata: map[string]any{
					"table":       f.Table,
					"replacement": f.Replacement,
				},
			})
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(envelope)
}
