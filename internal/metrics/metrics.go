// Package metrics holds the Prometheus collectors for authentication and storage.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Outcome labels.
const (
	OutcomeSuccess  = "success"
	OutcomeRejected = "rejected"
	OutcomeError    = "error"
)

var (
	authAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onxpoint_auth_attempts_total",
		Help: "Total number of credential checks by outcome",
	}, []string{"outcome"})

	tokenVerifications = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onxpoint_token_verifications_total",
		Help: "Total number of bearer token verifications by outcome",
	}, []string{"outcome"})

	storeWrites = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "onxpoint_store_writes_total",
		Help: "Total number of entity writes by entity and outcome",
	}, []string{"entity", "outcome"})
)

// RecordAuthAttempt counts one credential check.
func RecordAuthAttempt(outcome string) {
	authAttempts.WithLabelValues(outcome).Inc()
}

// RecordTokenVerification counts one bearer token check.
func RecordTokenVerification(outcome string) {
	tokenVerifications.WithLabelValues(outcome).Inc()
}

// RecordStoreWrite counts one entity write ("review", "shortlink", "credential").
func RecordStoreWrite(entity string, err error) {
	outcome := OutcomeSuccess
	if err != nil {
		outcome = OutcomeError
	}

	storeWrites.WithLabelValues(entity, outcome).Inc()
}
