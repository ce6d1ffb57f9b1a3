package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Potowai/nomad-nantes/internal/chat"
	"github.com/Potowai/nomad-nantes/internal/config"
	"github.com/Potowai/nomad-nantes/internal/database"
	"github.com/Potowai/nomad-nantes/internal/events"
	"github.com/Potowai/nomad-nantes/internal/ids"
	"github.com/Potowai/nomad-nantes/internal/kv"
	"github.com/Potowai/nomad-nantes/internal/logging"
	"github.com/Potowai/nomad-nantes/internal/mapsync"
	"github.com/Potowai/nomad-nantes/internal/messages"
	"github.com/Potowai/nomad-nantes/internal/metrics"
	"github.com/Potowai/nomad-nantes/internal/planner"
	"github.com/Potowai/nomad-nantes/internal/profile"
	"github.com/Potowai/nomad-nantes/internal/server"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var (
	cfgFile string
)

func main() {
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "nomadtable-api",
		Short: "Nomadtable backend service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context())
		},
	}

	setupFlags(rootCmd)
	rootCmd.AddCommand(newInspectCommand())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupFlags(cmd *cobra.Command) {
	config.ApplyDefaults(viper.GetViper())
	defaults := config.NewViper()
	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Path to configuration file")
	cmd.PersistentFlags().String("http-address", defaults.GetString("http.address"), "HTTP listen address")
	cmd.PersistentFlags().String("storage-path", defaults.GetString("storage.path"), "Key/value storage directory")
	cmd.PersistentFlags().String("store-work-dir", defaults.GetString("store.work_dir"), "Working directory for the message database (temporary when empty)")
	cmd.PersistentFlags().String("chat-ordering", defaults.GetString("chat.ordering"), "Chat message ordering (insertion, timestamp)")
	cmd.PersistentFlags().String("log-level", defaults.GetString("log.level"), "Log level (debug, info, warn, error)")
	cmd.PersistentFlags().String("log-format", defaults.GetString("log.format"), "Log format (json, console)")
	cmd.PersistentFlags().String("gemini-api-key", "", "Gemini API key (overrides env)")
	cmd.PersistentFlags().String("gemini-model", defaults.GetString("gemini.model"), "Gemini model name")

	bindFlag(cmd, "http.address", "http-address")
	bindFlag(cmd, "storage.path", "storage-path")
	bindFlag(cmd, "store.work_dir", "store-work-dir")
	bindFlag(cmd, "chat.ordering", "chat-ordering")
	bindFlag(cmd, "log.level", "log-level")
	bindFlag(cmd, "log.format", "log-format")
	bindFlag(cmd, "gemini.api_key", "gemini-api-key")
	bindFlag(cmd, "gemini.model", "gemini-model")
}

func bindFlag(cmd *cobra.Command, key, flag string) {
	if err := viper.BindPFlag(key, cmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(err)
	}
}

func initConfig() error {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configNotFound viper.ConfigFileNotFoundError
		if cfgFile != "" && errors.As(err, &configNotFound) {
			return err
		}
	}

	return nil
}

// openMessageStore opens the key/value storage and an uninitialized message
// store on top of it. The returned closer releases both.
func openMessageStore(appConfig config.AppConfig, logger *zap.Logger, recorder messages.Recorder) (*kv.Store, *messages.Store, func(), error) {
	storage, err := kv.Open(kv.Options{Path: appConfig.StoragePath, Logger: logger})
	if err != nil {
		return nil, nil, nil, err
	}
	ordering, err := messages.ParseOrdering(appConfig.ChatOrdering)
	if err != nil {
		_ = storage.Close()
		return nil, nil, nil, err
	}
	store, err := messages.NewStore(messages.StoreConfig{
		Storage:  storage,
		WorkDir:  appConfig.StoreWorkDir,
		Ordering: ordering,
		Opener:   database.MessageOpener(logger),
		Logger:   logger,
		Recorder: recorder,
	})
	if err != nil {
		_ = storage.Close()
		return nil, nil, nil, err
	}
	closer := func() {
		if err := store.Close(); err != nil {
			logger.Warn("failed to close message store", zap.Error(err))
		}
		if err := storage.Close(); err != nil {
			logger.Warn("failed to close key/value storage", zap.Error(err))
		}
	}
	return storage, store, closer, nil
}

func runServer(ctx context.Context) error {
	appConfig, err := config.Load(viper.GetViper())
	if err != nil {
		return err
	}

	logger, err := logging.NewLogger(appConfig.LogLevel, appConfig.LogFormat)
	if err != nil {
		return err
	}
	defer logger.Sync() //nolint:errcheck

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.NewMetrics()
	if err := appMetrics.Register(registry); err != nil {
		return err
	}

	storage, store, closeStore, err := openMessageStore(appConfig, logger, appMetrics)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Initialize(ctx); err != nil {
		return err
	}

	catalog, err := events.NewCatalog(events.CatalogConfig{
		Seed:       events.SeedEvents(),
		IDProvider: ids.NewUUIDProvider(),
		Resolver:   events.NewOffsetResolver(),
		Logger:     logger,
		Recorder:   appMetrics,
	})
	if err != nil {
		return err
	}

	engine, err := mapsync.NewEngine(mapsync.Config{
		Catalog:  catalog,
		Viewport: mapsync.NewMemoryViewport(),
		Logger:   logger,
		Recorder: appMetrics,
	})
	if err != nil {
		return err
	}
	engine.Mount()

	session := chat.NewSession(chat.Config{
		Store:      store,
		IDProvider: ids.NewUUIDProvider(),
		Logger:     logger,
	})

	advisor := planner.NewClient(planner.Config{
		APIKey:   appConfig.GeminiAPIKey,
		Model:    appConfig.GeminiModel,
		Endpoint: appConfig.GeminiEndpoint,
		Logger:   logger,
	})
	if !advisor.Enabled() {
		logger.Info("gemini api key not configured, AI recommendations disabled")
	}
	matcher, err := planner.NewCategoryMatcher()
	if err != nil {
		return err
	}

	handler, err := server.NewHTTPHandler(server.Dependencies{
		Catalog:        catalog,
		Engine:         engine,
		Chat:           session,
		Profiles:       profile.NewService(storage, logger),
		Advisor:        advisor,
		Matcher:        matcher,
		Realtime:       server.NewRealtimeDispatcher(),
		MetricsHandler: promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
		Logger:         logger,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:    appConfig.HTTPAddress,
		Handler: handler,
	}

	signalCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("address", appConfig.HTTPAddress))
		err := httpServer.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case <-signalCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}
