package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"
)

var (
	LoginSuccessTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedlift_logins_success_total",
		Help: "Total number of successful logins.",
	})
	LoginFailureTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedlift_logins_failure_total",
		Help: "Total number of failed logins.",
	})
	TokensReissuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedlift_tokens_reissued_total",
		Help: "Total number of successful access/refresh token re-issues.",
	})
	TokenReissueDeniedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedlift_token_reissue_denied_total",
		Help: "Total number of denied token re-issue attempts.",
	})
	SessionsRevokedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "seedlift_sessions_revoked_total",
		Help: "Total number of sessions revoked, by reason.",
	}, []string{"reason"})
	GeolocationFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "seedlift_geolocation_failures_total",
		Help: "Total number of failed or timed-out geolocation lookups.",
	})
)

// Register registers all custom metrics on the given registerer. It should
// be called once at application startup.
func Register(reg prometheus.Registerer) {
	if reg == nil {
		log.Error().Msg("Prometheus registry is nil, cannot register custom metrics.")
		return
	}
	collectors := []prometheus.Collector{
		LoginSuccessTotal,
		LoginFailureTotal,
		TokensReissuedTotal,
		TokenReissueDeniedTotal,
		SessionsRevokedTotal,
		GeolocationFailuresTotal,
	}
	for _, c := range collectors {
		if err := reg.Register(c); err != nil {
			log.Warn().Err(err).Msg("Failed to register Prometheus metric")
		}
	}
}
