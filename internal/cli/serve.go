package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/billfold/billfold/internal/api"
	"github.com/billfold/billfold/internal/blob"
	"github.com/billfold/billfold/internal/config"
	"github.com/billfold/billfold/internal/engine"
	"github.com/billfold/billfold/internal/gateway"
	"github.com/billfold/billfold/internal/index"
)

// NewServeCommand creates the serve command.
func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the engine with its HTTP transport and autosave ticker",
		Long: `Run the invoice engine: seed the summary index from the drive, restore
settings, expose every engine operation over HTTP, and flush dirty state
on a debounced autosave tick. Shutting down flushes the focal document.`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(rootOpts)
		},
	}
	return cmd
}

func runServe(opts *RootOptions) error {
	cfg, err := config.Load(opts.ConfigPath)
	if err != nil {
		return err
	}
	setupLogger(cfg.LogLevel, cfg.LogFormat, opts.Verbose)
	log := slog.Default()

	store, err := blob.NewOS(cfg.Root)
	if err != nil {
		return err
	}
	ix, err := index.Open()
	if err != nil {
		return err
	}
	defer ix.Close()

	gw := gateway.New(store, log)
	eng := engine.New(gw, ix, engine.WithLogger(log))
	if err := eng.Init(); err != nil {
		return fmt.Errorf("initialize engine: %w", err)
	}

	server := api.NewServer(eng, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	httpServer := &http.Server{
		Addr:    cfg.Listen,
		Handler: server.Router(),
	}

	go server.AutosaveLoop(ctx, cfg.AutosaveInterval)

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = httpServer.Shutdown(shutdownCtx)
	}()

	log.Info("serving", "addr", cfg.Listen, "root", store.Root())
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http server: %w", err)
	}
	log.Info("shut down")
	return nil
}
