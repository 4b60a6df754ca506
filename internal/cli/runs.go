package cli

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/ppiankov/tablespectre/internal/store"
	"github.com/spf13/cobra"
)

// runHistory is the read side of the findings store.
type runHistory interface {
	RecentRuns(ctx context.Context, limit int) ([]store.Run, error)
	FindingsByTable(ctx context.Context) (map[string]int, error)
}

type runsOutput struct {
	Runs    []store.Run    `json:"runs"`
	ByTable map[string]int `json:"byTable"`
}

func newRunsCmd() *cobra.Command {
	var (
		format string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs and per-table totals from the findings store",
		RunE: func(cmd *cobra.Command, args []string) error {
			if dbURL == "" {
				return errors.New("runs requires --db-url or TABLESPECTRE_DB_URL")
			}
			if format != "text" && format != "json" {
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), cfg.TimeoutDuration())
			defer cancel()

			st, err := store.Open(ctx, dbURL)
			if err != nil {
				return fmt.Errorf("open store: %w", err)
			}
			defer st.Close()

			out, err := loadRuns(ctx, st, limit)
			if err != nil {
				return err
			}
			if format == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(out)
			}
			return writeRunsText(cmd.OutOrStdout(), out)
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of runs to list")

	return cmd
}

func loadRuns(ctx context.Context, h runHistory, limit int) (runsOutput, error) {
	runs, err := h.RecentRuns(ctx, limit)
	if err != nil {
		return runsOutput{}, err
	}
	counts, err := h.FindingsByTable(ctx)
	if err != nil {
		return runsOutput{}, err
	}
	if runs == nil {
		runs = []store.Run{}
	}
	return runsOutput{Runs: runs, ByTable: counts}, nil
}

func writeRunsText(w io.Writer, out runsOutput) error {
	if len(out.Runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	for _, r := range out.Runs {
		if _, err := fmt.Fprintf(w, "%s  %-16s %4d findings in %d units  %s\n",
			r.StartedAt.UTC().Format(time.RFC3339), r.Source, r.Findings, r.Units, r.Target); err != nil {
			return err
		}
	}
	if len(out.ByTable) == 0 {
		return nil
	}
	if _, err := fmt.Fprintln(w, "\nFindings by table:"); err != nil {
		return err
	}
	for _, t := range slices.Sorted(maps.Keys(out.ByTable)) {
		if _, err := fmt.Fprintf(w, "  %-8s %d\n", t, out.ByTable[t]); err != nil {
			return err
		}
	}
	return nil
}
