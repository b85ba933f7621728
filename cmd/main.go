package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/time/rate"

	"github.com/talenti/fitscore/internal/adapters/http/api"
	"github.com/talenti/fitscore/internal/adapters/http/swagger"
	"github.com/talenti/fitscore/internal/adapters/predict"
	"github.com/talenti/fitscore/internal/adapters/repository"
	app "github.com/talenti/fitscore/internal/app"
	"github.com/talenti/fitscore/internal/config"
	"github.com/talenti/fitscore/internal/domain/culture"
	"github.com/talenti/fitscore/pkg/logger"
	"github.com/talenti/fitscore/pkg/metrics"
)

// HTTP server timeout constants.
const (
	readTimeout               = 10 * time.Second
	writeTimeoutSlack         = 5 * time.Second
	idleTimeout               = 60 * time.Second
	readHeaderTimeout         = 5 * time.Second
	shutdownTimeout           = 30 * time.Second
	systemMetricsInterval     = 10 * time.Second
	predictorHealthInterval   = 30 * time.Second
	nanosecondsPerMillisecond = 1e6
)

func main() {
	// Disable default Go metrics collection to avoid duplicate metrics
	// We collect our own custom system metrics instead
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() { _ = logger.Sync() }()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env)
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}
	if cfg.LogFormat != "text" {
		if err := logger.Init(logger.WithFormat(cfg.LogFormat)); err != nil {
			os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
			return
		}
	}
	loggerInstance := logger.Get()

	// Apply configured log level (fallback to info on invalid input)
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		loggerInstance.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	store, err := repository.Open(cfg.DBPath, repository.WithLogger(loggerInstance.Named("store")))
	if err != nil {
		os.Stderr.WriteString("failed to open store: " + err.Error() + "\n")
		return
	}
	defer func() { _ = store.Close() }()

	client := newPredictClient(cfg, loggerInstance.Named("predict"))
	defer client.Close()

	svc := newService(cfg, store, client, loggerInstance)

	go startSystemMetricsUpdater(ctx)
	go startPredictorHealthUpdater(ctx, svc)

	mux := newMux(ctx, svc, loggerInstance)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      cfg.RequestTimeout() + writeTimeoutSlack,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		loggerInstance.Info(ctx, "starting HTTP server",
			logger.String("addr", cfg.Addr),
			logger.String("service_a_url", cfg.ServiceAURL),
			logger.String("service_b_url", cfg.ServiceBURL),
		)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			loggerInstance.Error(ctx, "HTTP server failed", logger.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	loggerInstance.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		loggerInstance.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	loggerInstance.Info(ctx, "server stopped")
}

// newPredictClient builds the prediction client from configuration.
func newPredictClient(cfg *config.Config, l logger.Logger) *predict.Client {
	mws := []predict.Middleware{predict.TracingMiddleware(), predict.MetricsMiddleware()}
	if cfg.PredictRateLimit > 0 {
		mws = append(mws, predict.RateLimitMiddleware(rate.Limit(cfg.PredictRateLimit), cfg.PredictRateBurst))
	}
	return predict.New(cfg.ServiceAURL, cfg.ServiceBURL,
		predict.WithTimeout(cfg.PredictTimeout()),
		predict.WithHealthTimeout(cfg.HealthTimeout()),
		predict.WithMaxRetries(cfg.PredictMaxRetries),
		predict.WithBackoffBase(cfg.PredictBackoffBase()),
		predict.WithMiddleware(mws...),
		predict.WithLogger(l),
	)
}

// newService wires the scoring service over its collaborators.
func newService(cfg *config.Config, dir culture.Directory, p app.Predictor, l logger.Logger) *app.Service {
	return app.New(
		app.WithLogger(l.Named("scoring")),
		app.WithResolver(culture.NewResolver(dir, culture.WithLogger(l.Named("culture")))),
		app.WithPredictor(p),
		app.WithRequestTimeout(cfg.RequestTimeout()),
	)
}

// newMux registers every route.
func newMux(ctx context.Context, svc api.Dependencies, l logger.Logger) *http.ServeMux {
	mux := http.NewServeMux()
	swagger.Register(ctx, mux)
	api.NewServer(svc, api.WithLogger(l.Named("api"))).Register(ctx, mux)
	return mux
}

// startSystemMetricsUpdater starts a background goroutine that updates system metrics.
func startSystemMetricsUpdater(ctx context.Context) {
	ticker := time.NewTicker(systemMetricsInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			updateSystemMetrics()
		}
	}
}

// startPredictorHealthUpdater probes the prediction services periodically so
// the health gauges stay current between requests.
func startPredictorHealthUpdater(ctx context.Context, svc *app.Service) {
	ticker := time.NewTicker(predictorHealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			svc.Health(ctx)
		}
	}
}

// updateSystemMetrics updates system-level metrics.
func updateSystemMetrics() {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)
	metrics.UpdateSystemStats(m.Alloc, runtime.NumGoroutine())

	if m.NumGC > 0 {
		avgPauseMs := float64(m.PauseTotalNs) / float64(m.NumGC) / nanosecondsPerMillisecond
		metrics.RecordSystemGCPauseTime(avgPauseMs)
	}
}
