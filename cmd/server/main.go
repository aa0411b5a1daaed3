package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/cors"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/sync/errgroup"

	"github.com/calvinwijaya/lucky-money-be/internal/api"
	"github.com/calvinwijaya/lucky-money-be/internal/config"
	"github.com/calvinwijaya/lucky-money-be/internal/game"
	"github.com/calvinwijaya/lucky-money-be/internal/store"
	"github.com/calvinwijaya/lucky-money-be/internal/wish"
)

var (
	configPath string
	port       string
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "lucky-money",
	Short: "Lucky money card table server",
	Long: `Serves the lucky money envelope game to the browser.

Each table deals a grid of hidden envelopes from a denomination pool.
Flipping an envelope adds its amount to the running total, fires confetti
for big wins and asks a language model for a short New Year wish.`,
	SilenceUsage: true,
	RunE:         runServer,
}

func init() {
	rootCmd.Flags().StringVarP(&configPath, "config", "c", "config.yaml", "Path to the YAML config file")
	rootCmd.Flags().StringVarP(&port, "port", "p", "", "Server port (overrides config)")
	rootCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	zc := zap.NewProductionConfig()
	if cfg.Format == "console" {
		zc = zap.NewDevelopmentConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		level = zapcore.InfoLevel
	}
	if verbose {
		level = zapcore.DebugLevel
	}
	zc.Level = zap.NewAtomicLevelAt(level)

	return zc.Build()
}

func newWishGenerator(ctx context.Context, cfg *config.Config) (wish.Generator, error) {
	switch cfg.Wish.Provider {
	case "gemini":
		return wish.NewGemini(ctx, cfg.Wish.APIKey, cfg.Wish.Model, cfg.Wish.Temperature)
	case "openrouter":
		return wish.NewOpenRouter(
			&http.Client{Timeout: cfg.GetWishTimeout()},
			cfg.Wish.APIKey,
			cfg.Wish.BaseURL,
			cfg.Wish.Model,
			cfg.Wish.Temperature,
		), nil
	default:
		return wish.NewStatic(), nil
	}
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if port != "" {
		cfg.Server.Port = port
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger, err := newLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	generator, err := newWishGenerator(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize wish generator: %w", err)
	}
	composer := wish.NewFallback(generator, cfg.Wish.Fallback, logger.Named("wish"))
	logger.Info("wish generator ready",
		zap.String("provider", cfg.Wish.Provider),
		zap.String("model", cfg.Wish.Model),
		zap.String("fallback", composer.Text()),
	)

	// Tables live in memory only
	tableStore := store.NewMemoryStore()

	hub := api.NewHub(logger.Named("ws"))
	dispatcher := api.NewWishDispatcher(ctx, tableStore, composer, hub, cfg.GetWishTimeout(), logger.Named("wish"))

	handlers := api.NewHandlers(tableStore, hub, dispatcher, api.Options{
		Settings:      cfg.Settings(),
		Denominations: cfg.Game.Denominations,
		Celebration:   cfg.CelebrationPolicy(),
		Client: api.ClientConfig{
			Notes:          cfg.Game.Notes,
			WelcomeMessage: cfg.Game.WelcomeMessage,
			ResetMessage:   cfg.Game.ResetMessage,
			Confetti:       cfg.Celebration,
			Music:          cfg.Music,
			DeckSize:       cfg.Game.DeckSize,
			TurnLimit:      cfg.Game.TurnLimit,
			Threshold:      cfg.Game.HighValueThreshold,
		},
		RNG: game.StdRNG{},
	}, logger.Named("api"))

	// Set up router
	r := mux.NewRouter()
	r.Use(api.RequestIDMiddleware)
	r.Use(api.LoggingMiddleware(logger.Named("http")))
	handlers.RegisterRoutes(r)

	// Configure CORS
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.Server.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization", "X-Request-Id"},
		ExposedHeaders:   []string{"X-Request-Id"},
		AllowCredentials: true,
	})

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      c.Handler(r),
		ReadTimeout:  cfg.GetReadTimeout(),
		WriteTimeout: cfg.GetWriteTimeout(),
		IdleTimeout:  cfg.GetIdleTimeout(),
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return hub.Run(gctx)
	})

	g.Go(func() error {
		return store.RunSweeper(gctx, tableStore, cfg.GetIdleTTL(), cfg.GetSweepInterval(), func(ids []string) {
			logger.Info("evicted idle tables", zap.Strings("table_ids", ids))
		})
	})

	g.Go(func() error {
		logger.Info("starting server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	dispatcher.Wait()
	return err
}
