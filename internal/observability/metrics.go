package observability

import (
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	goredis "github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/yungbote/nexovate-backend/internal/platform/logger"
)

const namespace = "nexovate"

// Metrics is nil-safe: every method is a no-op on a nil receiver so callers
// never need to check whether metrics are enabled.
type Metrics struct {
	registry *prometheus.Registry

	apiRequests   *prometheus.CounterVec
	apiLatency    *prometheus.HistogramVec
	apiInflight   prometheus.Gauge
	genDuration   *prometheus.HistogramVec
	genFailures   *prometheus.CounterVec
	artifacts     prometheus.Counter
	cleanupFailed prometheus.Counter
	staleLocked   prometheus.Gauge
	dbHealthFail  prometheus.Counter
	dbStats       *prometheus.GaugeVec
	redisUp       prometheus.Gauge
}

// New registers all collectors on a fresh registry, plus Go and process collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "http_requests_total",
			Help: "HTTP requests by method, route and status.",
		}, []string{"method", "route", "status"}),
		apiLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "http_request_duration_seconds",
			Help:    "HTTP request latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
		apiInflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "http_inflight_requests",
			Help: "HTTP requests currently being served.",
		}),
		genDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Name: "generation_duration_seconds",
			Help:    "Generation engine call duration by mode and outcome.",
			Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 60, 120, 180, 300},
		}, []string{"mode", "outcome"}),
		genFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Name: "generation_failures_total",
			Help: "Failed generation calls by mode and error kind.",
		}, []string{"mode", "kind"}),
		artifacts: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "artifacts_saved_total",
			Help: "Document artifacts persisted.",
		}),
		cleanupFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "cleanup_failures_total",
			Help: "Post-save questionnaire purges that failed.",
		}),
		staleLocked: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "stale_locked_questionnaires",
			Help: "Locked questionnaires older than the stale threshold with no artifact.",
		}),
		dbHealthFail: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace, Name: "db_health_failures_total",
			Help: "Failed periodic database health checks.",
		}),
		dbStats: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace, Name: "db_pool_stats",
			Help: "database/sql pool stats.",
		}, []string{"metric"}),
		redisUp: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace, Name: "redis_up",
			Help: "Redis connectivity (1=up, 0=down).",
		}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.apiRequests, m.apiLatency, m.apiInflight,
		m.genDuration, m.genFailures,
		m.artifacts, m.cleanupFailed, m.staleLocked,
		m.dbHealthFail, m.dbStats, m.redisUp,
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveAPI(method, route string, status int, dur time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.apiRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.apiLatency.WithLabelValues(method, route).Observe(dur.Seconds())
}

func (m *Metrics) ApiInflightInc() {
	if m == nil {
		return
	}
	m.apiInflight.Inc()
}

func (m *Metrics) ApiInflightDec() {
	if m == nil {
		return
	}
	m.apiInflight.Dec()
}

// ObserveGeneration records one engine call. kind is empty on success.
func (m *Metrics) ObserveGeneration(mode, kind string, dur time.Duration) {
	if m == nil {
		return
	}
	outcome := "success"
	if kind != "" {
		outcome = "failure"
		m.genFailures.WithLabelValues(mode, kind).Inc()
	}
	m.genDuration.WithLabelValues(mode, outcome).Observe(dur.Seconds())
}

func (m *Metrics) IncArtifactSaved() {
	if m == nil {
		return
	}
	m.artifacts.Inc()
}

func (m *Metrics) IncCleanupFailure() {
	if m == nil {
		return
	}
	m.cleanupFailed.Inc()
}

func (m *Metrics) SetStaleLocked(n int) {
	if m == nil {
		return
	}
	m.staleLocked.Set(float64(n))
}

func (m *Metrics) IncDBHealthFailure() {
	if m == nil {
		return
	}
	m.dbHealthFail.Inc()
}

// StartDBCollector samples pool stats every interval until ctx ends.
func (m *Metrics) StartDBCollector(ctx context.Context, log *logger.Logger, db *gorm.DB, interval time.Duration) {
	if m == nil || db == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				sqlDB, err := db.DB()
				if err != nil {
					log.Warn("metrics: db stats unavailable", "error", err)
					continue
				}
				stats := sqlDB.Stats()
				m.dbStats.WithLabelValues("open_connections").Set(float64(stats.OpenConnections))
				m.dbStats.WithLabelValues("in_use").Set(float64(stats.InUse))
				m.dbStats.WithLabelValues("idle").Set(float64(stats.Idle))
				m.dbStats.WithLabelValues("wait_count").Set(float64(stats.WaitCount))
				m.dbStats.WithLabelValues("wait_duration_seconds").Set(stats.WaitDuration.Seconds())
			}
		}
	}()
}

// StartRedisCollector pings rdb every interval until ctx ends.
func (m *Metrics) StartRedisCollector(ctx context.Context, log *logger.Logger, rdb goredis.UniversalClient, interval time.Duration) {
	if m == nil || rdb == nil {
		return
	}
	if interval <= 0 {
		interval = 10 * time.Second
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				if err := rdb.Ping(ctx).Err(); err != nil {
					m.redisUp.Set(0)
					log.Warn("metrics: redis ping failed", "error", err)
					continue
				}
				m.redisUp.Set(1)
			}
		}
	}()
}
