package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/megharajeev28/resume-matcher/internal/document"
	"github.com/megharajeev28/resume-matcher/internal/relevance"
	"github.com/megharajeev28/resume-matcher/internal/server"
)

const (
	readTimeout     = 30 * time.Second
	shutdownTimeout = 10 * time.Second
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve relevance checks over HTTP",
	RunE: func(_ *cobra.Command, _ []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("listen", "l", "", "address to listen on (default is server.listen, :8080)")

	viper.BindPFlag("server.listen", serveCmd.Flags().Lookup("listen"))
}

func runServe() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger := newLogger()
	defer logger.Sync()

	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("getting a config: %w", err)
	}

	logger.Info("starting the resume-matcher server", zap.String("version", version))

	catalog, err := cfg.Catalog()
	if err != nil {
		return err
	}

	checker := relevance.NewChecker(catalog, newJudge(ctx, cfg, logger), logger)

	// A check may hold the connection for the whole semantic timeout.
	var writeTimeout time.Duration
	if cfg.AI.Timeout > 0 {
		writeTimeout = cfg.AI.Timeout + readTimeout
	}

	srv := server.New(server.Config{
		MaxUploadSize: cfg.Server.MaxUploadSize,
		Version:       version,
		ReadTimeout:   readTimeout,
		WriteTimeout:  writeTimeout,
	}, checker, document.NewExtractor(logger), logger)

	go func() {
		<-ctx.Done()
		logger.Info("shutting down the server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("server forced to shutdown", zap.Error(err))
		}
	}()

	if err := srv.Listen(cfg.Server.Listen); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("serving http: %w", err)
	}

	return nil
}
