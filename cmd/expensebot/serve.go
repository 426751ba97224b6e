package main

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/sync/errgroup"

	"expensebot/internal/config"
	"expensebot/internal/server"
)

func serveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the webhook and chat API server",
		Long: `Start the HTTP server: the WhatsApp-style webhook, the JSON chat API,
the demo chat page, and Prometheus metrics.

The server keeps per-user conversation state in memory, so clarification
follow-ups land on the same pending expense.`,
		RunE: runServe,
	}

	cmd.Flags().String("addr", "", "listen address (default :8080)")
	cmd.Flags().Bool("mock", false, "use the deterministic keyword classifier instead of an LLM")

	_ = viper.BindPFlag("server.addr", cmd.Flags().Lookup("addr"))

	return cmd
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	mock, _ := cmd.Flags().GetBool("mock")

	// Hooks feed the Prometheus dialogue counters on /metrics.
	app, err := buildApp(ctx, mock, server.EngineHooks())
	if err != nil {
		return err
	}
	defer app.Close()

	addr := viper.GetString("server.addr")
	if addr == "" {
		addr = ":8080"
	}

	srv := server.New(addr, app.engine, app.store, app.reporter)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return srv.Run(gctx)
	})

	// Hot-reload the category mapping while the server runs.
	if viper.GetBool("categories.watch") {
		mappingFile := viper.GetString("categories.mapping_file")
		if mappingFile == "" {
			return fmt.Errorf("categories.watch requires categories.mapping_file")
		}
		path := config.ExpandPath(mappingFile)
		g.Go(func() error {
			if err := app.resolver.Watch(gctx, path); err != nil {
				return fmt.Errorf("failed to watch category mapping: %w", err)
			}
			slog.Info("Watching category mapping for changes", "path", path)
			<-gctx.Done()
			return nil
		})
	}

	return g.Wait()
}
