package monitoring

import (
	"time"

	"vodnet/internal/core/domain"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type PrometheusCollector struct {
	// Session lifecycle
	sessionState       *prometheus.GaugeVec
	loginsTotal        *prometheus.CounterVec
	registrationsTotal *prometheus.CounterVec
	logoutsTotal       prometheus.Counter

	// Provider transport
	providerRequestDuration *prometheus.HistogramVec
	providerErrorsTotal     *prometheus.CounterVec

	// Playback gating
	playbackDecisionsTotal *prometheus.CounterVec

	// Catalog cache
	catalogCacheHits   prometheus.Counter
	catalogCacheMisses prometheus.Counter
}

func NewPrometheusCollector() *PrometheusCollector {
	return &PrometheusCollector{
		sessionState: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Name: "vodnet_session_state",
			Help: "Current session state (one series set to 1, the rest 0)",
		}, []string{"state"}),

		loginsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vodnet_logins_total",
			Help: "Total number of login attempts by outcome",
		}, []string{"outcome"}),

		registrationsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vodnet_registrations_total",
			Help: "Total number of registration attempts by outcome",
		}, []string{"outcome"}),

		logoutsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vodnet_logouts_total",
			Help: "Total number of logouts",
		}),

		providerRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "vodnet_provider_request_duration_seconds",
			Help:    "Duration of requests to the hosted backend",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2, 5},
		}, []string{"operation"}),

		providerErrorsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vodnet_provider_errors_total",
			Help: "Total number of failed requests to the hosted backend",
		}, []string{"operation"}),

		playbackDecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "vodnet_playback_decisions_total",
			Help: "Playback authorization decisions by outcome",
		}, []string{"outcome"}),

		catalogCacheHits: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vodnet_catalog_cache_hits_total",
			Help: "Total number of catalog cache hits",
		}),

		catalogCacheMisses: promauto.NewCounter(prometheus.CounterOpts{
			Name: "vodnet_catalog_cache_misses_total",
			Help: "Total number of catalog cache misses",
		}),
	}
}

// RecordSessionState flips the state gauge so exactly one series reads 1.
func (p *PrometheusCollector) RecordSessionState(status domain.SessionStatus) {
	states := []domain.SessionStatus{
		domain.SessionUninitialized,
		domain.SessionLoading,
		domain.SessionAuthenticated,
		domain.SessionAnonymous,
	}
	for _, state := range states {
		value := 0.0
		if state == status {
			value = 1.0
		}
		p.sessionState.WithLabelValues(string(state)).Set(value)
	}
}

func (p *PrometheusCollector) RecordLogin(success bool) {
	p.loginsTotal.WithLabelValues(outcomeLabel(success)).Inc()
}

func (p *PrometheusCollector) RecordRegistration(success bool) {
	p.registrationsTotal.WithLabelValues(outcomeLabel(success)).Inc()
}

func (p *PrometheusCollector) RecordLogout() {
	p.logoutsTotal.Inc()
}

func (p *PrometheusCollector) RecordProviderRequest(operation string, duration time.Duration, err error) {
	p.providerRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		p.providerErrorsTotal.WithLabelValues(operation).Inc()
	}
}

func (p *PrometheusCollector) RecordPlaybackDecision(granted bool) {
	outcome := "denied"
	if granted {
		outcome = "granted"
	}
	p.playbackDecisionsTotal.WithLabelValues(outcome).Inc()
}

func (p *PrometheusCollector) RecordCatalogCacheHit() {
	p.catalogCacheHits.Inc()
}

func (p *PrometheusCollector) RecordCatalogCacheMiss() {
	p.catalogCacheMisses.Inc()
}

func outcomeLabel(success bool) string {
	if success {
		return "success"
	}
	return "failure"
}
