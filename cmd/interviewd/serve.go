package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/open-event-systems/interview/internal/config"
	"github.com/open-event-systems/interview/internal/logging"
	"github.com/open-event-systems/interview/internal/server"
	"github.com/open-event-systems/interview/pkg/logic"
	"github.com/open-event-systems/interview/pkg/storage"
	"github.com/open-event-systems/interview/pkg/storage/memory"
	redisstore "github.com/open-event-systems/interview/pkg/storage/redis"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the stateless HTTP server",
	Long:  `Starts the interview engine in server mode, exposing a JSON API over HTTP. State lives in the configured store; the API is stateless.`,
	Run: func(cmd *cobra.Command, args []string) {
		cfgPath, _ := cmd.Flags().GetString("config")
		addr, _ := cmd.Flags().GetString("addr")

		cfg, err := config.Load(cfgPath)
		if err != nil {
			fmt.Printf("Error loading config: %v\n", err)
			os.Exit(1)
		}
		if addr != "" {
			cfg.Server.Addr = addr
		}

		level, err := logging.ParseLevel(cfg.Logging.Level)
		if err != nil {
			fmt.Printf("Error in config: %v\n", err)
			os.Exit(1)
		}
		logger := logging.New(level)

		interviews, err := config.LoadInterviews(cfg.Interviews, logic.NewEvaluator(0))
		if err != nil {
			logger.Error("failed to load interviews", "error", err, "path", cfg.Interviews)
			os.Exit(1)
		}

		store, err := buildStore(cfg)
		if err != nil {
			logger.Error("failed to initialize storage", "error", err)
			os.Exit(1)
		}
		defer store.Close()

		srv := &http.Server{
			Addr:    cfg.Server.Addr,
			Handler: server.NewHandler(interviews, store, logger),
		}

		// Channel to listen for errors coming from the listener.
		serverErrors := make(chan error, 1)

		go func() {
			logger.Info("starting interview server",
				"addr", srv.Addr,
				"interviews", interviews.IDs(),
				"storage", cfg.Storage.Type)
			serverErrors <- srv.ListenAndServe()
		}()

		// Channel to listen for interrupt or terminate signals.
		shutdown := make(chan os.Signal, 1)
		signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

		// Blocking main and waiting for shutdown.
		select {
		case err := <-serverErrors:
			logger.Error("server error", "error", err)
			os.Exit(1)

		case sig := <-shutdown:
			logger.Info("starting shutdown", "signal", sig.String())

			// Give outstanding requests a deadline for completion.
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()

			if err := srv.Shutdown(ctx); err != nil {
				logger.Error("graceful shutdown did not complete", "error", err)
				if err := srv.Close(); err != nil {
					logger.Error("error killing server", "error", err)
				}
			}
			logger.Info("interview server stopped gracefully")
		}
	},
}

func buildStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "redis":
		var opts []redisstore.Option
		if cfg.Storage.Redis.TTL != 0 {
			opts = append(opts, redisstore.WithTTL(cfg.Storage.Redis.TTL))
		}
		if cfg.Storage.Redis.Prefix != "" {
			opts = append(opts, redisstore.WithPrefix(cfg.Storage.Redis.Prefix))
		}
		return redisstore.New(cfg.Storage.Redis.Addr, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB, opts...), nil
	case "memory", "":
		return memory.New(), nil
	default:
		return nil, fmt.Errorf("unknown storage type %q", cfg.Storage.Type)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().StringP("addr", "a", "", "Listen address (overrides config)")
}
