package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ppiankov/tablespectre/internal/logging"
	"github.com/ppiankov/tablespectre/internal/server"
	"github.com/ppiankov/tablespectre/internal/store"
	"github.com/ppiankov/tablespectre/internal/suppress"
	"github.com/ppiankov/tablespectre/internal/tables"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd(info BuildInfo) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP rule service (/remediate, /remediate-array, /health)",
		RunE: func(cmd *cobra.Command, args []string) error {
			// Request logs are Info; keep them visible
			if !verbose {
				logging.InitLevel(slog.LevelInfo, cmd.ErrOrStderr())
			}
			if addr == "" {
				addr = cfg.Server.Addr
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			srv, closeStore, err := buildServer(ctx, info)
			if err != nil {
				return err
			}
			defer closeStore()

			httpSrv := &http.Server{
				Addr:         addr,
				Handler:      srv.Handler(),
				ReadTimeout:  cfg.ReadTimeout(),
				WriteTimeout: cfg.WriteTimeout(),
			}

			hup := make(chan os.Signal, 1)
			signal.Notify(hup, syscall.SIGHUP)
			defer signal.Stop(hup)

			errCh := make(chan error, 1)
			go func() {
				slog.Info("listening", "addr", addr, "tables", srv.Engine().KnowledgeBase().Len())
				if err := httpSrv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
			}()

			for {
				select {
				case <-hup:
					reloadTables(srv, tablesPath)
				case err := <-errCh:
					return fmt.Errorf("server: %w", err)
				case <-ctx.Done():
					slog.Info("shutting down")
					shutCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
					defer cancel()
					if err := httpSrv.Shutdown(shutCtx); err != nil {
						return fmt.Errorf("shutdown: %w", err)
					}
					srv.Wait()
					return nil
				}
			}
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config, :8080)")

	return cmd
}

// buildServer wires the loaded tables, config exclusions and optional
// findings store into a server. The returned func closes the store.
// Inline markers and the ignore file belong to repo scans and are not applied.
func buildServer(ctx context.Context, info BuildInfo) (*server.Server, func(), error) {
	opts := []server.Option{
		server.WithWorkers(cfg.Scan.Workers),
		server.WithMaxBodyBytes(cfg.Server.MaxBodyBytes),
	}
	if rules := suppress.Excludes(cfg.Exclude.Tables, cfg.Exclude.Programs); !rules.Empty() {
		opts = append(opts, server.WithFilter(rules))
	}

	closeStore := func() {}
	if dbURL != "" {
		openCtx, cancel := context.WithTimeout(ctx, cfg.TimeoutDuration())
		defer cancel()

		st, err := store.Open(openCtx, dbURL)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w", err)
		}
		if err := st.Migrate(openCtx); err != nil {
			st.Close()
			return nil, nil, err
		}
		opts = append(opts, server.WithRecorder(st.WithVersion(info.Version)))
		closeStore = st.Close
		slog.Info("findings store enabled")
	}

	return server.New(kb, opts...), closeStore, nil
}

// reloadTables re-reads the table map and swaps it into srv. A bad file
// keeps the current tables.
func reloadTables(srv *server.Server, path string) {
	if path == "" {
		slog.Info("reload requested but no tables file configured")
		return
	}
	next, err := tables.LoadFile(path)
	if err != nil {
		slog.Error("reload failed, keeping current tables", "path", path, "error", err)
		return
	}
	srv.Reload(next)
}
