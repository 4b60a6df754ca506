package reporter

import (
	"fmt"
	"io"
	"path"

	"github.com/owenrumney/go-sarif/v2/sarif"
	"github.com/ppiankov/tablespectre/internal/scanner"
)

const (
	sarifRuleID = "tablespectre/" + scanner.IssueObsoleteTable
	sarifInfo   = "https://github.com/ppiankov/tablespectre"
)

var severityToLevel = map[string]string{
	scanner.SeverityError: "error",
}

// artifactURI is the file a finding is reported against: the unit's source
// path when it was loaded from disk, else program/include.
func artifactURI(u *scanner.CodeUnit, f *scanner.Finding) string {
	if u.Source != "" {
		return u.Source
	}
	return path.Join(f.Program, f.Include)
}

func writeSARIF(w io.Writer, report *Report) error {
	log, err := sarif.New(sarif.Version210)
	if err != nil {
		return fmt.Errorf("create SARIF report: %w", err)
	}

	run := sarif.NewRunWithInformationURI("tablespectre", sarifInfo)
	if report.Metadata.Version != "" {
		version := report.Metadata.Version
		run.Tool.Driver.Version = &version
	}

	rule := run.AddRule(sarifRuleID).
		WithDescription("Table removed or replaced by a compatibility view in S/4HANA MM-IM").
		WithDefaultConfiguration(&sarif.ReportingConfiguration{Level: "error"})

	for _, u := range report.Units {
		for i := range u.Findings {
			f := &u.Findings[i]
			level := severityToLevel[f.Severity]
			if level == "" {
				level = "warning"
			}

			location := sarif.NewLocation().WithPhysicalLocation(
				sarif.NewPhysicalLocation().
					WithArtifactLocation(sarif.NewArtifactLocation().WithUri(artifactURI(&u, f))).
					WithRegion(sarif.NewRegion().WithStartLine(f.StartLine).WithEndLine(f.EndLine)),
			)

			result := sarif.NewRuleResult(rule.ID).
				WithMessage(sarif.NewTextMessage(f.Message + " " + f.Suggestion)).
				WithLevel(level).
				WithLocations([]*sarif.Location{location})
			run.AddResult(result)
		}
	}
	log.AddRun(run)

	if err := log.PrettyWrite(w); err != nil {
		return fmt.Errorf("encode SARIF: %w", err)
	}
	return nil
}
