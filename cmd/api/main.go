package main

import (
	"context"
	"errors"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"DietAdvisor/internal/config"
	"DietAdvisor/internal/server"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func setupLogging(cfg config.LoggingConfig) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DefaultContextLogger = &log.Logger
}

// shutdownGracePeriod is how long in-flight requests get to finish. A diet
// plan request can legitimately run for the whole Gemini timeout.
func shutdownGracePeriod(cfg *config.Config) time.Duration {
	const slack = 5 * time.Second
	if cfg.Gemini.Timeout <= 0 {
		return slack
	}
	return cfg.Gemini.Timeout + slack
}

func gracefulShutdown(ctx context.Context, apiServer *http.Server, grace time.Duration) error {
	// Wait for the interrupt signal.
	<-ctx.Done()

	log.Info().Dur("grace", grace).Msg("shutting down gracefully, press Ctrl+C again to force")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := apiServer.Shutdown(shutdownCtx); err != nil {
		// Requests still running are cut off; that is not a startup failure.
		log.Warn().Err(err).Msg("Server forced to shutdown")
		if err := apiServer.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close server")
		}
		return nil
	}

	log.Info().Msg("Server exiting")
	return nil
}

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("could not load configuration")
	}
	setupLogging(cfg.Logging)

	apiServer, err := server.NewServer(cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could not initialize server")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Info().Str("addr", apiServer.Addr).Msg("HTTP server listening")
		if err := apiServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		err := gracefulShutdown(gctx, apiServer, shutdownGracePeriod(cfg))
		// Allow Ctrl+C to force shutdown
		stop()
		return err
	})

	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("http server error")
	}
	log.Info().Msg("Graceful shutdown complete.")
}
