package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/iwvelando/staffing-forecast/internal/cache"
	"github.com/iwvelando/staffing-forecast/internal/logging"
	"github.com/iwvelando/staffing-forecast/internal/referentiel"
	"github.com/iwvelando/staffing-forecast/internal/server"
	"github.com/iwvelando/staffing-forecast/pkg/constants"
	"go.uber.org/zap"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

const shutdownTimeout = 10 * time.Second

func main() {
	configLocation := flag.String("config", constants.DefaultServerConfigFile, "path to server configuration file")
	standardsFlag := flag.String("standards", "", "référentiel file override")
	addressFlag := flag.String("address", "", "listen address override")
	logLevel := flag.String("log-level", "", "log level override (debug, info, warn, error)")
	flag.Parse()

	cfg, err := server.LoadConfig(*configLocation)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to load server configuration at %s\", \"error\": \"%v\"}\n", *configLocation, err)
		os.Exit(1)
	}
	if *addressFlag != "" {
		cfg.Address = *addressFlag
	}
	if *standardsFlag != "" {
		cfg.StandardsFile = *standardsFlag
	}

	logger, err := logging.New(cfg.Logging, *logLevel)
	if err != nil {
		fmt.Printf("{\"op\": \"main\", \"level\": \"fatal\", \"msg\": \"failed to initialize logger\", \"error\": \"%v\"}\n", err)
		os.Exit(1)
	}
	defer func() {
		_ = logger.Sync()
	}()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store := referentiel.NewStaticStore(nil)
	if cfg.StandardsFile != "" {
		store, err = referentiel.NewStore(logger, cfg.StandardsFile)
		if err != nil {
			logger.Fatal("failed to load référentiel",
				zap.String("op", "main"),
				zap.String("path", cfg.StandardsFile),
				zap.Error(err),
			)
		}
		go func() {
			if err := store.Watch(ctx); err != nil {
				logger.Error("référentiel watcher stopped",
					zap.String("op", "main"),
					zap.Error(err),
				)
			}
		}()
	} else {
		logger.Warn("no référentiel configured, requests must carry their own standards",
			zap.String("op", "main"),
		)
	}

	var results cache.Repository = cache.NewMemoryCache()
	if cfg.Cache.RedisAddress != "" {
		redisCache := cache.NewRedisCache(cfg.Cache.RedisAddress, cfg.Cache.RedisPassword, cfg.Cache.RedisDB)
		defer func() {
			_ = redisCache.Close()
		}()
		if err := redisCache.Ping(ctx); err != nil {
			logger.Warn("redis unavailable, cache lookups will fail open",
				zap.String("op", "main"),
				zap.String("address", cfg.Cache.RedisAddress),
				zap.Error(err),
			)
		}
		results = redisCache
	}

	handler := server.NewHandler(logger, store, results, server.Options{
		MaxUploadSize: cfg.UploadSizeBytes(),
		CacheTTL:      cfg.Cache.TTL(),
		Version:       version,
	})

	srv := &http.Server{
		Addr:              cfg.Address,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("graceful shutdown failed",
				zap.String("op", "main"),
				zap.Error(err),
			)
		}
	}()

	logger.Info("staffing server listening",
		zap.String("op", "main"),
		zap.String("address", cfg.Address),
		zap.String("version", version),
		zap.Bool("redis", cfg.Cache.RedisAddress != ""),
	)

	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal("server failed",
			zap.String("op", "main"),
			zap.Error(err),
		)
	}
	logger.Info("staffing server stopped", zap.String("op", "main"))
}
