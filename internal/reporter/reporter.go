package reporter

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/ppiankov/tablespectre/internal/scanner"
)

// Format controls report output format.
type Format string

const (
	FormatText       Format = "text"
	FormatJSON       Format = "json"
	FormatSARIF      Format = "sarif"
	FormatSpectreHub Format = "spectrehub"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatText, FormatJSON, FormatSARIF, FormatSpectreHub:
		return f, nil
	case "":
		return FormatText, nil
	default:
		return "", fmt.Errorf("unknown format %q (want text, json, sarif or spectrehub)", s)
	}
}

// Metadata holds report context.
type Metadata struct {
	Tool      string `json:"tool"`
	Version   string `json:"version"`
	Command   string `json:"command"`
	Target    string `json:"target,omitempty"`
	Timestamp string `json:"timestamp"`
}

// Summary counts scanned units and findings.
type Summary struct {
	Units             int            `json:"units"`
	UnitsWithFindings int            `json:"unitsWithFindings"`
	Findings          int            `json:"findings"`
	Suppressed        int            `json:"suppressed,omitempty"`
	ByTable           map[string]int `json:"byTable"`
}

// Report is the top-level scan output.
type Report struct {
	Metadata Metadata           `json:"metadata"`
	Units    []scanner.CodeUnit `json:"units"`
	Summary  Summary            `json:"summary"`
}

// NewReport builds a report from scanned units. Units without findings are
// counted but left out of the report body.
func NewReport(command, version, target string, units []scanner.CodeUnit) Report {
	summary := Summary{ByTable: make(map[string]int)}
	withFindings := make([]scanner.CodeUnit, 0, len(units))
	for _, u := range units {
		summary.Units++
		if len(u.Findings) == 0 {
			continue
		}
		summary.UnitsWithFindings++
		withFindings = append(withFindings, u)
		for _, f := range u.Findings {
			summary.Findings++
			summary.ByTable[f.Table]++
		}
	}

	return Report{
		Metadata: Metadata{
			Tool:      "tablespectre",
			Version:   version,
			Command:   command,
			Target:    target,
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		},
		Units:   withFindings,
		Summary: summary,
	}
}

// Write outputs the report in the given format.
func Write(w io.Writer, report *Report, format Format) error {
	switch format {
	case FormatJSON:
		return writeJSON(w, report)
	case FormatSARIF:
		return writeSARIF(w, report)
	case FormatSpectreHub:
		return writeSpectreHub(w, report)
	default:
		return writeText(w, report)
	}
}

func writeJSON(w io.Writer, report *Report) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func writeText(w io.Writer, report *Report) error {
	color := isTTY(w)
	paint := func(code, s string) string {
		if !color {
			return s
		}
		return code + s + colorReset
	}

	if report.Summary.Findings == 0 {
		_, err := fmt.Fprintf(w, "No findings (%d units scanned).\n", report.Summary.Units)
		return err
	}

	for _, u := range report.Units {
		header := u.Program + "/" + u.Include
		if u.Block != "" {
			header += " (" + u.Block + ")"
		}
		if _, err := fmt.Fprintln(w, paint(colorBold, header)); err != nil {
			return err
		}
		for _, f := range u.Findings {
			_, err := fmt.Fprintf(w, "  %s line %d: %s\n",
				paint(colorRed, "[ERROR]"), f.StartLine, f.Message)
			if err != nil {
				return err
			}
			if f.Snippet != "" {
				if _, err := fmt.Fprintf(w, "    %s\n", paint(colorGray, f.Snippet)); err != nil {
					return err
				}
			}
		}
	}

	if _, err := fmt.Fprintf(w, "\nSummary: %d findings in %d of %d units\n",
		report.Summary.Findings, report.Summary.UnitsWithFindings, report.Summary.Units); err != nil {
		return err
	}
	for _, table := range slices.Sorted(maps.Keys(report.Summary.ByTable)) {
		if _, err := fmt.Fprintf(w, "  %-8s %d\n", table, report.Summary.ByTable[table]); err != nil {
			return err
		}
	}
	return nil
}
