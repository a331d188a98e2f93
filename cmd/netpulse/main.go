package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	applicationPort "github.com/dreschagin/netpulse/internal/application/port"
	"github.com/dreschagin/netpulse/internal/application/usecase"

	"github.com/dreschagin/netpulse/internal/domain/service"

	"github.com/dreschagin/netpulse/internal/infrastructure/cache/redis"
	"github.com/dreschagin/netpulse/internal/infrastructure/collector"
	natsInfra "github.com/dreschagin/netpulse/internal/infrastructure/messaging/nats"
	wsInfra "github.com/dreschagin/netpulse/internal/infrastructure/notification/websocket"
	"github.com/dreschagin/netpulse/internal/infrastructure/observability/cloudwatch"
	dynamodbRepo "github.com/dreschagin/netpulse/internal/infrastructure/persistence/dynamodb"
	"github.com/dreschagin/netpulse/internal/infrastructure/persistence/postgres"
	"github.com/dreschagin/netpulse/internal/infrastructure/probe"
	s3storage "github.com/dreschagin/netpulse/internal/infrastructure/storage/s3"

	"github.com/dreschagin/netpulse/internal/monitor"

	httpInterface "github.com/dreschagin/netpulse/internal/interfaces/http"
	"github.com/dreschagin/netpulse/internal/interfaces/http/handler"
	"github.com/dreschagin/netpulse/internal/interfaces/http/middleware"

	"github.com/dreschagin/netpulse/pkg/config"
	"github.com/dreschagin/netpulse/pkg/logger"

	_ "github.com/lib/pq"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// 2. Logger
	log := logger.New(os.Getenv("LOG_LEVEL"))
	log.Info("Starting NetPulse network monitor")

	// 3. Database
	db, err := sql.Open("postgres", cfg.Database.DSN())
	if err != nil {
		log.Error("Failed to open database", err)
		os.Exit(1)
	}
	defer db.Close()

	db.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	db.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.Database.ConnMaxLifetime)
	db.SetConnMaxIdleTime(cfg.Database.ConnMaxIdleTime)

	if err := db.Ping(); err != nil {
		log.Error("Failed to ping database", err)
		os.Exit(1)
	}

	if err := postgres.EnsureSchema(context.Background(), db); err != nil {
		log.Error("Failed to ensure database schema", err)
		os.Exit(1)
	}
	log.Info("Database connected")

	sampleRepository := postgres.NewPostgresSampleRepository(db)
	alertRepository := postgres.NewPostgresAlertRepository(db)

	// 4. Optional cache
	var cache applicationPort.Cache
	if cfg.Redis.Enabled {
		redisCache, initErr := redis.NewRedisCache(
			cfg.Redis.Host, cfg.Redis.Port, cfg.Redis.Password, cfg.Redis.DB,
			cfg.Redis.TTL, cfg.Redis.PoolSize, cfg.Redis.MinIdleConns,
			cfg.Redis.DialTimeout, cfg.Redis.ReadTimeout, cfg.Redis.WriteTimeout,
		)
		if initErr != nil {
			log.Warn("Failed to connect to Redis, continuing without cache", "error", initErr.Error())
		} else {
			cache = redisCache
			defer redisCache.Close()
			log.Info("Redis cache connected")
		}
	} else {
		log.Warn("Redis cache is disabled")
	}

	// 5. Optional CloudWatch metrics
	var metricsPublisher applicationPort.MetricsPublisher
	if cfg.CloudWatch.MetricsEnabled {
		publisherImpl, initErr := cloudwatch.NewMetricsPublisher(context.Background(),
			cloudwatch.MetricsPublisherConfig{
				Namespace:         cfg.CloudWatch.MetricsNamespace,
				Region:            cfg.CloudWatch.Region,
				Endpoint:          cfg.CloudWatch.Endpoint,
				AccessKeyID:       cfg.CloudWatch.AccessKeyID,
				SecretAccessKey:   cfg.CloudWatch.SecretAccessKey,
				DefaultDimensions: cfg.CloudWatch.MetricsDimensions,
				BufferSize:        cfg.CloudWatch.MetricsBufferSize,
				FlushInterval:     cfg.CloudWatch.MetricsFlushInterval,
				StorageResolution: cfg.CloudWatch.MetricsStorageResolution,
			})
		if initErr != nil {
			log.Error("Failed to initialize CloudWatch metrics publisher", initErr)
			os.Exit(1)
		}
		metricsPublisher = publisherImpl
		log.Info("CloudWatch metrics publisher initialized")
	} else {
		log.Warn("CloudWatch metrics publishing is disabled")
	}

	// 6. Optional CloudWatch logs
	var logsPublisher applicationPort.LogPublisher
	if cfg.CloudWatch.LogsEnabled {
		publisherImpl, initErr := cloudwatch.NewLogsPublisher(context.Background(),
			cloudwatch.LogsPublisherConfig{
				LogGroupName:    cfg.CloudWatch.LogGroupName,
				LogStreamName:   cfg.CloudWatch.LogStreamName,
				Region:          cfg.CloudWatch.Region,
				Endpoint:        cfg.CloudWatch.Endpoint,
				AccessKeyID:     cfg.CloudWatch.AccessKeyID,
				SecretAccessKey: cfg.CloudWatch.SecretAccessKey,
				BufferSize:      cfg.CloudWatch.LogsBufferSize,
				FlushInterval:   cfg.CloudWatch.LogsFlushInterval,
				AutoCreate:      true,
			})
		if initErr != nil {
			log.Error("Failed to initialize CloudWatch logs publisher", initErr)
			os.Exit(1)
		}
		logsPublisher = publisherImpl
		log.SetLogPublisher(cloudwatch.NewLoggerBridge(logsPublisher))
		log.Info("CloudWatch logs publisher initialized")
	} else {
		log.Warn("CloudWatch logs publishing is disabled")
	}

	// 7. Optional NATS event publisher
	var eventPublisher applicationPort.EventPublisher
	if cfg.NATS.Enabled {
		publisherImpl, initErr := natsInfra.NewNATSPublisher(cfg.NATS.URL, log)
		if initErr != nil {
			log.Warn("Failed to connect to NATS, continuing without event publishing", "error", initErr.Error())
		} else {
			eventPublisher = publisherImpl
			defer eventPublisher.Close()
			log.Info("NATS event publisher initialized", "url", cfg.NATS.URL)
		}
	} else {
		log.Warn("NATS event publishing is disabled")
	}

	// 8. Sampling pipeline
	prober := probe.NewTCPProber(cfg.Probe.Target, cfg.Probe.Count, cfg.Probe.Timeout, log)
	sampler := collector.NewNetworkSampler(collector.NewGopsutilCounterSource(), prober, log)

	hub := wsInfra.NewHub(log)

	thresholds := service.Thresholds{
		BandwidthMbps:     cfg.Network.BandwidthThresholdMbps,
		LatencyMs:         cfg.Network.LatencyThresholdMs,
		PacketLossPercent: cfg.Network.PacketLossThresholdPercent,
	}
	evaluator := service.NewThresholdEvaluator()
	detector := service.NewAnomalyDetector(
		cfg.Network.LearningWindow,
		cfg.Network.AnomalyThresholdStdDev,
		cfg.Network.WindowCapacity,
	)
	forecaster := service.NewTrendForecaster()

	// 9. Use cases
	collectSampleUC := usecase.NewCollectSampleUseCase(
		sampler,
		evaluator,
		thresholds,
		detector,
		alertRepository,
		hub,
		eventPublisher,   // nil when NATS disabled
		metricsPublisher, // nil when CloudWatch disabled
		log,
	)
	persistSamplesUC := usecase.NewPersistSamplesUseCase(sampleRepository, cache, log)
	getHistoryUC := usecase.NewGetHistoryUseCase(sampleRepository, cache, log)
	getTrendReportUC := usecase.NewGetTrendReportUseCase(sampleRepository, forecaster, log)
	getActiveAlertsUC := usecase.NewGetActiveAlertsUseCase(alertRepository, log)
	resolveAlertUC := usecase.NewResolveAlertUseCase(alertRepository, log)

	// 10. Optional archive pipeline
	var archiveStorage applicationPort.ArchiveStorage
	var archiveIndex applicationPort.ArchiveIndex
	if cfg.Archive.Enabled {
		storageImpl, initErr := s3storage.NewArchiveStorage(context.Background(), s3storage.Config{
			Bucket:          cfg.Archive.Bucket,
			Region:          cfg.Archive.Region,
			Endpoint:        cfg.Archive.Endpoint,
			AccessKeyID:     cfg.Archive.AccessKeyID,
			SecretAccessKey: cfg.Archive.SecretAccessKey,
			UsePathStyle:    cfg.Archive.UsePathStyle,
			URLMode:         s3storage.URLMode(cfg.Archive.URLMode),
			PresignedTTL:    cfg.Archive.PresignedTTL,
		})
		if initErr != nil {
			log.Error("Failed to initialize archive storage", initErr)
			os.Exit(1)
		}
		archiveStorage = storageImpl
		log.Info("Archive storage initialized", "bucket", cfg.Archive.Bucket)

		if cfg.Archive.IndexEnabled {
			indexImpl, initErr := dynamodbRepo.NewArchiveIndexRepository(context.Background(), dynamodbRepo.Config{
				TableName:       cfg.Archive.IndexTable,
				Region:          cfg.Archive.IndexRegion,
				Endpoint:        cfg.Archive.IndexEndpoint,
				AccessKeyID:     cfg.Archive.AccessKeyID,
				SecretAccessKey: cfg.Archive.SecretAccessKey,
			})
			if initErr != nil {
				log.Error("Failed to initialize archive index", initErr)
				os.Exit(1)
			}
			archiveIndex = indexImpl
			log.Info("Archive index initialized", "table", cfg.Archive.IndexTable)
		}
	} else {
		log.Warn("Sample archiving is disabled, retention pruning only")
	}

	archiveHistoryUC := usecase.NewArchiveHistoryUseCase(
		sampleRepository,
		alertRepository,
		archiveStorage,
		archiveIndex,
		time.Duration(cfg.Archive.RetentionDays)*24*time.Hour,
		time.Duration(cfg.Archive.IndexTTLDays)*24*time.Hour,
		log,
	)

	// 11. Monitor runner
	runner := monitor.NewRunner(
		collectSampleUC,
		persistSamplesUC,
		log,
		cfg.Network.CollectionInterval,
		cfg.Network.PersistInterval,
	)

	// 12. HTTP handlers and router
	authConfig := middleware.AuthConfig{
		Enabled:     cfg.Security.AuthEnabled,
		BearerToken: cfg.Security.AuthToken,
	}

	networkAPIHandler := handler.NewNetworkAPIHandler(runner, getHistoryUC, getTrendReportUC, 24*time.Hour, log)
	alertsAPIHandler := handler.NewAlertsAPIHandler(getActiveAlertsUC, resolveAlertUC, log)
	websocketHandler := handler.NewWebSocketHandler(hub, cfg.Security.AllowedOrigins, authConfig, log)

	var archivesHandler *handler.ArchivesAPIHandler
	if archiveIndex != nil {
		archivesHandler = handler.NewArchivesAPIHandler(archiveIndex, log)
	}

	rateLimiter := middleware.NewIPRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)

	router := httpInterface.NewRouter(
		networkAPIHandler,
		alertsAPIHandler,
		archivesHandler,
		websocketHandler,
		rateLimiter,
		cfg.Security,
		log,
	)

	// 13. Background processes
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go hub.Run(ctx)

	if err := sampler.Start(ctx); err != nil {
		log.Error("Failed to prime network sampler", err)
		os.Exit(1)
	}
	go runner.Start(ctx)
	log.Info("Monitor runner started",
		"collect_interval", cfg.Network.CollectionInterval.String(),
		"persist_interval", cfg.Network.PersistInterval.String())

	// Retention loop. Runs one pass shortly after startup, then on the
	// configured interval.
	go func() {
		startupDelay := time.NewTimer(time.Minute)
		defer startupDelay.Stop()
		select {
		case <-startupDelay.C:
			if err := archiveHistoryUC.Execute(ctx); err != nil {
				log.Error("Retention pass failed", err)
			}
		case <-ctx.Done():
			return
		}

		ticker := time.NewTicker(cfg.Archive.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				if err := archiveHistoryUC.Execute(ctx); err != nil {
					log.Error("Retention pass failed", err)
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	// 14. HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router.Setup(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		log.Info("HTTP server starting", "port", cfg.Server.Port)

		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("HTTP server failed", err)
			os.Exit(1)
		}
	}()

	// 15. Graceful shutdown
	<-sigChan
	log.Info("Shutdown signal received, starting graceful shutdown...")

	cancel()

	if err := sampler.Stop(); err != nil {
		log.Error("Failed to stop sampler", err)
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer shutdownCancel()

	if metricsPublisher != nil {
		if err := metricsPublisher.Flush(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch metrics", err)
		}
	}
	if logsPublisher != nil {
		if err := logsPublisher.Flush(shutdownCtx); err != nil {
			log.Error("Failed to flush CloudWatch logs", err)
		}
	}

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server shutdown error", err)
	}

	log.Info("Server stopped gracefully")
}
