package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"position_monitor/internal/app/service"
	"position_monitor/internal/client"
	"position_monitor/internal/infrastructure/configloader"
	"position_monitor/internal/infrastructure/network/definition"
	"position_monitor/internal/infrastructure/restapi"
	"position_monitor/internal/infrastructure/walletloader"
	applogger "position_monitor/internal/pkg/logger"
	"position_monitor/pkg/metrics"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
)

func main() {
	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetOutput(os.Stdout)
	log.SetLevel(logrus.InfoLevel)

	zapLogger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("Failed to initialize zap logger: %v", err)
	}
	defer zapLogger.Sync()

	slogHandler := zapslog.NewHandler(zapLogger.Core(), &zapslog.HandlerOptions{})
	slog.SetDefault(slog.New(slogHandler))

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/config.yml"
	}
	cfg, err := configloader.Load(cfgPath)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	level, err := logrus.ParseLevel(cfg.Logging.Level)
	if err != nil {
		log.Warnf("Invalid log level in config: %s. Defaulting to Info.", cfg.Logging.Level)
		level = logrus.InfoLevel
	}
	log.SetLevel(level)

	zapLogger.Info("Configuration loaded", zap.String("path", cfgPath))

	metrics.MustRegisterMetrics()

	portLogger := applogger.NewSlogAdapter()

	chainProvider := definition.NewChainDefinitionProvider(portLogger)

	walletProvider := walletloader.NewWalletFileLoader(cfg.Wallets.FilePath, portLogger.Info)

	morphoClient := client.NewMorphoClient(
		cfg.Morpho.GraphQLURL,
		time.Duration(cfg.Morpho.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.Morpho.RequestsPerSecond,
		cfg.Morpho.MaxRetries,
		time.Duration(cfg.Morpho.RetryDelayMillis)*time.Millisecond,
	)
	zapLogger.Info("Morpho client initialized", zap.String("endpoint", cfg.Morpho.GraphQLURL))

	dexScreenerClient := client.NewDEXScreenerClient(
		cfg.DEXScreener.BaseURL,
		time.Duration(cfg.DEXScreener.RequestTimeoutMillis)*time.Millisecond,
		zapLogger,
		cfg.DEXScreener.RequestsPerSecond,
		cfg.PriceService.MaxTokensPerBatchRequest,
	)
	zapLogger.Info("DEXScreener client initialized")

	priceService := service.NewPriceService(
		dexScreenerClient,
		chainProvider,
		portLogger,
		time.Duration(cfg.PriceService.CacheTTLMinutes)*time.Minute,
		time.Duration(cfg.PriceService.CacheTTLMinutes)*2*time.Minute,
		cfg.PriceService.MaxTokensPerBatchRequest,
		time.Duration(cfg.PriceService.RequestTimeoutMillis)*time.Millisecond,
	)

	fetcher := service.NewMorphoPositionFetcher(morphoClient, portLogger)
	normalizer := service.NewNormalizer(priceService, portLogger)
	aggregator := service.NewAggregator(normalizer, portLogger)

	reportService := service.NewReportService(
		walletProvider,
		chainProvider,
		fetcher,
		priceService,
		aggregator,
		portLogger,
		cfg.Performance.MaxConcurrentRoutines,
	)
	zapLogger.Info("ReportService initialized")

	reportHandler := restapi.NewReportHandler(reportService, chainProvider, cfg, portLogger)
	router := restapi.SetupRouter(reportHandler, zapLogger)

	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeoutSeconds) * time.Second,
	}

	go func() {
		zapLogger.Info(fmt.Sprintf("Server starting on port %s", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	zapLogger.Info("Shutting down server...")

	ctxShutdown, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()

	if err := srv.Shutdown(ctxShutdown); err != nil {
		zapLogger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	zapLogger.Info("Server exiting")
}
