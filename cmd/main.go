package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/campuslink/matchengine/internal/adapters/http/api"
	recomputequeue "github.com/campuslink/matchengine/internal/adapters/mq/queue"
	"github.com/campuslink/matchengine/internal/adapters/repository"
	service "github.com/campuslink/matchengine/internal/app"
	"github.com/campuslink/matchengine/internal/config"
	"github.com/campuslink/matchengine/internal/domain/availability"
	"github.com/campuslink/matchengine/internal/seed"
	"github.com/campuslink/matchengine/pkg/logger"
	"github.com/campuslink/matchengine/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout            = 10 * time.Second
	writeTimeout           = 10 * time.Second
	idleTimeout            = 60 * time.Second
	readHeaderTimeout      = 5 * time.Second
	shutdownTimeout        = 30 * time.Second
	systemMetricsInterval  = 10 * time.Second
	serviceMetricsInterval = 5 * time.Second
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics;
	// the engine exports its own system gauges.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(nil); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	// Source records come from Postgres when a DSN is configured,
	// otherwise from the in-memory store.
	var sources repository.SourceStore
	if cfg.PostgresDSN != "" {
		pg, err := repository.NewPostgresSourceStore(ctx, cfg.PostgresDSN)
		if err != nil {
			os.Stderr.WriteString("failed to connect to postgres: " + err.Error() + "\n")
			return
		}
		defer func() {
			_ = pg.Close()
		}()
		sources = pg
		log.Info(ctx, "using postgres source store")
	} else {
		mem := repository.NewMemorySourceStore()
		if cfg.SeedDemo {
			sum := seed.Demo(mem)
			log.Info(ctx, "seeded demo fixtures",
				logger.Int("students", sum.Students),
				logger.Int("listings", sum.Listings),
				logger.Int("seasons", sum.Seasons),
				logger.Int("schedules", sum.Schedules))
		}
		sources = mem
		log.Info(ctx, "using in-memory source store")
	}

	queue := recomputequeue.New(
		recomputequeue.WithCapacity(cfg.QueueCapacity),
		recomputequeue.WithMaxAttempts(cfg.MaxAttempts),
		recomputequeue.WithLease(cfg.Lease),
		recomputequeue.WithBackoff(cfg.RetryBackoff, cfg.RetryBackoffMax),
	)

	builder := availability.NewBuilder(
		availability.WithWeeklyCapacity(cfg.WeeklyCapacityHours),
		availability.WithThresholds(cfg.AvailabilityLowHours, cfg.AvailabilityMediumHours),
	)

	svc := service.New(
		service.WithLogger(log),
		service.WithSourceStore(sources),
		service.WithQueue(queue),
		service.WithAvailabilityBuilder(builder),
		service.WithWeights(cfg.Weights),
		service.WithWorkerCount(cfg.WorkerCount),
		service.WithScoreTTL(cfg.ScoreTTL),
		service.WithTTLSweepInterval(cfg.TTLSweepInterval),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop()

	go startSystemMetricsUpdater(ctx)
	go startServiceMetricsUpdater(ctx, svc)

	// HTTP mux and routes.
	mux := http.NewServeMux()
	api.NewServer(svc).Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			return
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startSystemMetricsUpdater refreshes process-level gauges on a fixed tick.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			var m runtime.MemStats
			runtime.ReadMemStats(&m)
			metrics.UpdateSystemMemoryUsage(m.Alloc)
			metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
		}
	}
}

// startServiceMetricsUpdater refreshes score and queue gauges. The
// stats call itself pushes the current counts into the registry.
func startServiceMetricsUpdater(ctx context.Context, svc *service.Service) {
	ticker := time.NewTicker(serviceMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			stats := svc.Stats(ctx)
			metrics.UpdateQueuePending(stats.Queue.Pending)
		}
	}
}
