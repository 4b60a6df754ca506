package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/ppiankov/tablespectre/internal/config"
	"github.com/ppiankov/tablespectre/internal/logging"
	"github.com/ppiankov/tablespectre/internal/tables"
	"github.com/spf13/cobra"
)

// BuildInfo is stamped into the binary at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

var (
	dbURL      string
	verbose    bool
	configPath string
	tablesPath string
	cfg        config.Config
	kb         *tables.KnowledgeBase
)

func newRootCmd(info BuildInfo) *cobra.Command {
	root := &cobra.Command{
		Use:           "tablespectre",
		Short:         "Obsolete MM-IM table scanner for S/4HANA custom code",
		Long:          "Finds reads of MM-IM tables replaced by MATDOC and NSDM_V_* compatibility views in ABAP code units, as a CLI or an HTTP rule service.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load()
			logging.Init(verbose, cmd.ErrOrStderr())

			var err error
			if configPath != "" {
				cfg, err = config.LoadFile(configPath)
			} else {
				cwd, werr := os.Getwd()
				if werr != nil {
					cwd = "."
				}
				cfg, err = config.Load(cwd)
			}
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			cfg.ApplyEnv()
			slog.Debug("config loaded", "path", configPath)

			// Flags win over env and config file
			if dbURL == "" {
				dbURL = cfg.DBURL
			}
			if tablesPath == "" {
				tablesPath = cfg.TablesFile
			}

			kb, err = tables.LoadFile(tablesPath)
			if err != nil {
				return err
			}
			slog.Debug("tables loaded", "path", tablesPath, "tables", kb.Len())
			return nil
		},
	}

	root.PersistentFlags().StringVar(&dbURL, "db-url", "", "PostgreSQL findings store URL (or set TABLESPECTRE_DB_URL)")
	root.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable debug-level logging")
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default .tablespectre.yml in cwd or $HOME)")
	root.PersistentFlags().StringVar(&tablesPath, "tables", "", "table map YAML replacing or extending the built-in tables")

	root.AddCommand(newVersionCmd(info))
	root.AddCommand(newScanCmd(info))
	root.AddCommand(newServeCmd(info))
	root.AddCommand(newTablesCmd())
	root.AddCommand(newRunsCmd())

	return root
}

func newVersionCmd(info BuildInfo) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "tablespectre %s (commit %s, built %s)\n", info.Version, info.Commit, info.Date)
			return err
		},
	}
}

// Execute runs the root command.
func Execute(info BuildInfo) error {
	return newRootCmd(info).Execute()
}
