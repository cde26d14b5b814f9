// Package metrics provides Prometheus metrics for the FAQ bot.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"faqbot/internal/domain"
)

// Metrics holds all Prometheus metrics for the FAQ bot.
type Metrics struct {
	registry *prometheus.Registry

	Replies         *prometheus.CounterVec
	MatchScore      prometheus.Histogram
	RequestDuration prometheus.Histogram
	CacheHits       prometheus.Counter
	CacheMisses     prometheus.Counter
}

// New creates the metrics on a fresh registry so tests and multiple
// servers in one process do not collide.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		Replies: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "faqbot_replies_total",
			Help: "Total number of replies by kind",
		}, []string{"kind"}),
		MatchScore: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "faqbot_match_score",
			Help:    "Top-1 similarity score of semantic matches",
			Buckets: prometheus.LinearBuckets(0, 0.1, 11),
		}),
		RequestDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "faqbot_request_duration_seconds",
			Help:    "Duration of answer requests in seconds",
			Buckets: prometheus.ExponentialBuckets(0.0005, 2, 12), // 0.5ms to ~1s
		}),
		CacheHits: factory.NewCounter(prometheus.CounterOpts{
			Name: "faqbot_ranker_cache_hits_total",
			Help: "Total number of ranker cache hits",
		}),
		CacheMisses: factory.NewCounter(prometheus.CounterOpts{
			Name: "faqbot_ranker_cache_misses_total",
			Help: "Total number of ranker cache misses",
		}),
	}
}

// ObserveReply records one reply.
func (m *Metrics) ObserveReply(reply domain.Reply, elapsed time.Duration) {
	m.Replies.WithLabelValues(string(reply.Kind)).Inc()
	if reply.Kind == domain.ReplyAnswered || reply.Kind == domain.ReplySuggested {
		m.MatchScore.Observe(reply.Confidence)
	}
	m.RequestDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) CacheHit() {
	m.CacheHits.Inc()
}

func (m *Metrics) CacheMiss() {
	m.CacheMisses.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}
