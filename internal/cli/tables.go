package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/ppiankov/tablespectre/internal/tables"
	"github.com/spf13/cobra"
)

func newTablesCmd() *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "tables",
		Short: "Print the obsolete table knowledge base",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch format {
			case "json":
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(kb.Entries())
			case "text", "":
				return writeTablesText(cmd.OutOrStdout(), kb)
			default:
				return fmt.Errorf("unknown format %q (want text or json)", format)
			}
		},
	}

	cmd.Flags().StringVar(&format, "format", "text", "output format: text or json")

	return cmd
}

func writeTablesText(w io.Writer, kb *tables.KnowledgeBase) error {
	groups := kb.Groups()
	for _, g := range slices.Sorted(maps.Keys(groups)) {
		if _, err := fmt.Fprintf(w, "%s (%d):\n", g, len(groups[g])); err != nil {
			return err
		}
		for _, e := range groups[g] {
			if _, err := fmt.Fprintf(w, "  %-8s -> %s\n", e.Obsolete, e.Replacement); err != nil {
				return err
			}
		}
	}
	_, err := fmt.Fprintf(w, "\n%d obsolete tables\n", kb.Len())
	return err
}
