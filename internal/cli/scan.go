package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ppiankov/tablespectre/internal/baseline"
	"github.com/ppiankov/tablespectre/internal/reporter"
	"github.com/ppiankov/tablespectre/internal/scanner"
	"github.com/ppiankov/tablespectre/internal/store"
	"github.com/ppiankov/tablespectre/internal/suppress"
	"github.com/ppiankov/tablespectre/internal/tables"
	"github.com/spf13/cobra"
)

func newScanCmd(info BuildInfo) *cobra.Command {
	var (
		repo           string
		unitsPath      string
		format         string
		parallel       int
		failOn         string
		strict         bool
		baselinePath   string
		updateBaseline string
	)

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Scan ABAP sources or a JSON unit file for obsolete table reads",
		RunE: func(cmd *cobra.Command, args []string) error {
			if (repo == "") == (unitsPath == "") {
				return errors.New("exactly one of --repo or --units is required")
			}

			// Use config defaults if flags not explicitly set
			if !cmd.Flags().Changed("format") && cfg.Defaults.Format != "" {
				format = cfg.Defaults.Format
			}
			if !cmd.Flags().Changed("parallel") && cfg.Scan.Workers > 0 {
				parallel = cfg.Scan.Workers
			}
			outFormat, err := reporter.ParseFormat(format)
			if err != nil {
				return err
			}

			units, target, err := loadUnits(repo, unitsPath)
			if err != nil {
				return err
			}

			eng := scanner.NewEngine(kb, scanner.WithWorkers(parallel))
			results := eng.ScanAll(cmd.Context(), units)
			if err := cmd.Context().Err(); err != nil {
				return fmt.Errorf("scan: %w", err)
			}
			slog.Info("scan complete", "units", len(results), "tables", kb.Len())

			// Save baseline before filtering
			if updateBaseline != "" {
				if err := baseline.Save(updateBaseline, results); err != nil {
					return fmt.Errorf("save baseline: %w", err)
				}
				slog.Info("baseline saved", "path", updateBaseline)
			}

			results, suppressed, err := filterUnits(results, baselinePath)
			if err != nil {
				return err
			}

			report := reporter.NewReport("scan", info.Version, target, results)
			report.Summary.Suppressed = suppressed
			if suppressed > 0 {
				slog.Info("findings filtered", "total", report.Summary.Findings+suppressed, "suppressed", suppressed)
			}

			if dbURL != "" {
				if err := saveRun(cmd.Context(), info, target, results); err != nil {
					return err
				}
			}

			if err := reporter.Write(cmd.OutOrStdout(), &report, outFormat); err != nil {
				return fmt.Errorf("write report: %w", err)
			}

			if failOn != "" && shouldFailOn(results, failOn, kb) {
				return &ExitError{Code: 2}
			}
			if strict && report.Summary.Findings > 0 {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&repo, "repo", "", "directory of ABAP sources to scan")
	cmd.Flags().StringVar(&unitsPath, "units", "", "JSON file of code units (array or single object, - for stdin)")
	cmd.Flags().StringVar(&format, "format", "text", "output format: text, json, sarif, or spectrehub")
	cmd.Flags().IntVar(&parallel, "parallel", 0, "number of scanner goroutines (0=NumCPU, 1=sequential)")
	cmd.Flags().StringVar(&failOn, "fail-on", "", "exit 2 if findings match (comma-separated tables, groups, severity, or any)")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit 1 if any finding remains after filters")
	cmd.Flags().StringVar(&baselinePath, "baseline", "", "path to baseline file (suppress known findings)")
	cmd.Flags().StringVar(&updateBaseline, "update-baseline", "", "save current findings as new baseline")

	return cmd
}

// loadUnits reads code units from a directory tree or a JSON file and
// returns them with the target they came from.
func loadUnits(repo, unitsPath string) ([]scanner.CodeUnit, string, error) {
	if repo != "" {
		slog.Debug("loading repo", "path", repo)
		res, err := scanner.LoadDir(repo, cfg.Scan.Extensions...)
		if err != nil {
			return nil, "", fmt.Errorf("load repo: %w", err)
		}
		slog.Info("repo loaded", "files", res.FilesLoaded, "skipped", res.FilesSkipped)
		return res.Units, repo, nil
	}

	in := os.Stdin
	if unitsPath != "-" {
		f, err := os.Open(unitsPath)
		if err != nil {
			return nil, "", fmt.Errorf("open units: %w", err)
		}
		defer func() { _ = f.Close() }()
		in = f
	}
	units, err := scanner.LoadUnitsJSON(in)
	if err != nil {
		return nil, "", err
	}
	return units, unitsPath, nil
}

// filterUnits applies baseline and suppression rules to findings.
func filterUnits(units []scanner.CodeUnit, baselinePath string) ([]scanner.CodeUnit, int, error) {
	totalSuppressed := 0

	if baselinePath != "" {
		bl, err := baseline.Load(baselinePath)
		if err != nil {
			return nil, 0, fmt.Errorf("load baseline: %w", err)
		}
		var n int
		units, n = bl.Filter(units)
		totalSuppressed += n
	}

	rules, err := loadSuppressRules()
	if err != nil {
		return nil, 0, err
	}
	var n int
	units, n = rules.FilterUnits(units)
	totalSuppressed += n

	return units, totalSuppressed, nil
}

// loadSuppressRules reads .tablespectre-ignore.yml and config exclusions.
func loadSuppressRules() (*suppress.Rules, error) {
	cwd, err := os.Getwd()
	if err != nil {
		cwd = "."
	}
	rules, err := suppress.LoadRules(cwd)
	if err != nil {
		return nil, fmt.Errorf("load suppress rules: %w", err)
	}
	return rules.WithExcludes(cfg.Exclude.Tables, cfg.Exclude.Programs), nil
}

// shouldFailOn returns true if any finding matches the fail-on criteria.
// Criteria can be table names (MSEG), groups (hybrid), severity (error),
// the issue type, or "any".
func shouldFailOn(units []scanner.CodeUnit, failOn string, kb *tables.KnowledgeBase) bool {
	criteria := make(map[string]bool)
	for p := range strings.SplitSeq(failOn, ",") {
		if p = strings.TrimSpace(p); p != "" {
			criteria[strings.ToUpper(p)] = true
		}
	}

	for _, u := range units {
		for _, f := range u.Findings {
			if criteria["ANY"] ||
				criteria[strings.ToUpper(f.Table)] ||
				criteria[strings.ToUpper(f.Severity)] ||
				criteria[strings.ToUpper(f.IssueType)] {
				return true
			}
			if e, ok := kb.Entry(f.Table); ok && criteria[strings.ToUpper(string(e.Group))] {
				return true
			}
		}
	}
	return false
}

// saveRun persists the filtered results to the findings store.
func saveRun(ctx context.Context, info BuildInfo, target string, units []scanner.CodeUnit) error {
	ctx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
	defer cancel()

	st, err := store.Open(ctx, dbURL)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	if err := st.Migrate(ctx); err != nil {
		return err
	}
	id, err := st.SaveRun(ctx, store.Run{Source: "cli", Target: target, ToolVersion: info.Version}, units)
	if err != nil {
		return fmt.Errorf("save run: %w", err)
	}
	slog.Info("run saved", "id", id)
	return nil
}
