package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/RichardoC/envask/internal/api"
	"github.com/RichardoC/envask/internal/config"
	"github.com/RichardoC/envask/internal/logging"
)

const shutdownTimeout = 5 * time.Second

// NewServeCmd is the web form server. It is also the whole of cmd/server.
func NewServeCmd() *cobra.Command {
	g := &globalFlags{}
	cmd := newServeCmd(g)
	g.register(cmd)
	return cmd
}

func newServeCmd(g *globalFlags) *cobra.Command {
	var listen string

	cmd := &cobra.Command{
		Use:          "serve",
		Short:        "Serve the query form to browsers",
		Long:         `Serve the single-page query form and forward its /ask calls to the answering server.`,
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := g.load(cmd)
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("listen") {
				cfg.Listen = listen
			}
			return serve(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&listen, "listen", "l", config.DefaultListen, "Address to listen on")
	return cmd
}

func serve(ctx context.Context, cfg config.Config) (err error) {
	output := cfg.LogFile
	if output == "" {
		output = "stderr"
	}
	logger, err := logging.New(cfg.LogLevel, output)
	if err != nil {
		return err
	}
	defer func() {
		if cfg.LogFile != "" {
			err = multierr.Append(err, logger.Sync())
		}
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	handler, err := api.NewHandler(cfg.Server, logger, reg, reg)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              cfg.Listen,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	serverErrors := make(chan error, 1)
	go func() {
		logger.Info("Starting server",
			zap.String("addr", srv.Addr),
			zap.String("server", cfg.Server))
		serverErrors <- srv.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server error: %w", err)

	case <-ctx.Done():
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Warn("Graceful shutdown did not complete", zap.Duration("timeout", shutdownTimeout), zap.Error(err))
			return multierr.Append(err, srv.Close())
		}
		logger.Info("Server stopped")
		return nil
	}
}
