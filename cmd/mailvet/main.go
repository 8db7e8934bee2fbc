package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/lmittmann/tint"
	_ "golang.org/x/crypto/x509roots/fallback" // Embed CA certs for scratch container

	openaiadapter "github.com/hyunwookim/mailvet/internal/adapter/driven/openai"
	sqliteadapter "github.com/hyunwookim/mailvet/internal/adapter/driven/sqlite"
	httphandler "github.com/hyunwookim/mailvet/internal/adapter/driving/http"
	"github.com/hyunwookim/mailvet/internal/application"
	"github.com/hyunwookim/mailvet/internal/config"
)

func main() {
	if err := run(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// 1. Load configuration (fail fast on invalid env vars).
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := setupLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	logger.Info("config loaded",
		"listen_addr", cfg.ListenAddr,
		"db_path", cfg.DBPath,
	)

	// 2. Setup signal-based context (SIGINT, SIGTERM).
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// 3. Open database (dual reader/writer with WAL mode).
	db, err := sqliteadapter.NewDB(ctx, cfg.DBPath)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			logger.Error("error closing database", "error", closeErr)
		}
	}()
	logger.Info("database opened", "path", cfg.DBPath)

	// 4. Run migrations on writer connection.
	if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
		return err
	}
	logger.Info("migrations complete")

	// 5. Wire adapters.
	emailStore := sqliteadapter.NewEmailRepo(db)
	serviceStore := sqliteadapter.NewServiceRepo(db)
	linkStore := sqliteadapter.NewLinkRepo(db)
	userStore := sqliteadapter.NewUserRepo(db)
	credentialStore := sqliteadapter.NewCredentialRepo(db, cfg.EncryptionKey())

	// 6. Resolve the OpenAI API key: a stored credential takes priority over
	// the environment.
	apiKey := cfg.OpenAIAPIKey
	if stored, err := credentialStore.Get(ctx, "openai"); err == nil && stored != "" {
		apiKey = stored
		logger.Info("using stored openai credential")
	}

	oracleFactory := func(key string) application.Oracle {
		return openaiadapter.NewClient(openaiadapter.Config{
			APIKey: key,
			Model:  cfg.OpenAIModel,
		}, nil, logger)
	}

	var initialOracle application.Oracle
	if apiKey != "" {
		initialOracle = oracleFactory(apiKey)
	} else {
		logger.Warn("no openai api key configured, oracle calls will fail until one is provided")
	}
	oracle := application.NewOracleProvider(initialOracle, oracleFactory)

	// 7. Create application services.
	resolver := application.NewResolver(serviceStore)
	linker := application.NewLinker(linkStore)
	classifySvc := application.NewClassifyService(oracle, emailStore, resolver, linker, logger)
	evalSvc := application.NewEvaluationService(oracle, serviceStore, nil, logger)
	dirSvc := application.NewDirectoryService(linkStore, userStore)

	// 8. Create HTTP handler and server.
	apiHandler := httphandler.NewHandler(emailStore, serviceStore, userStore, credentialStore, classifySvc, evalSvc, dirSvc, oracle, logger)
	handler := httphandler.NewServeMux(apiHandler, logger)

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second, // Oracle-backed endpoints are slow.
		IdleTimeout:       120 * time.Second,
	}

	go func() {
		logger.Info("http server starting", "addr", cfg.ListenAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	logger.Info("mailvet started", "listen_addr", cfg.ListenAddr)

	// 9. Wait for shutdown signal, then drain.
	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}

	logger.Info("shutdown complete")
	return nil
}

func setupLogger(level, format string) *slog.Logger {
	logLevel := parseLevel(level)

	var handler slog.Handler
	if format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel})
	} else {
		handler = tint.NewHandler(os.Stdout, &tint.Options{
			Level:      logLevel,
			TimeFormat: time.DateTime,
		})
	}

	return slog.New(handler)
}

func parseLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
