// Package metrics defines and registers the custom Prometheus metrics of the
// accounts API. It is the single source of truth for metric names, labels,
// and help strings. HTTP request metrics come from echoprometheus.
package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/99minutos/accounts-service/internal/core/domain"
)

const namespace = "accounts"

// ── Auth metrics ──────────────────────────────────────────────────────────────

// AuthAttemptsTotal counts auth workflow calls.
// Labels:
//   - operation: "register", "login" or "refresh"
//   - result: "success" or a short failure reason (see Reason)
var AuthAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "auth_attempts_total",
		Help:      "Total number of register, login and refresh attempts, by outcome.",
	},
	[]string{"operation", "result"},
)

// GateRejectionsTotal counts requests turned away by the authentication gate.
// Label:
//   - reason: "missing_token", "invalid_token" or "blocked"
var GateRejectionsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "gate_rejections_total",
		Help:      "Total number of requests rejected by the authentication gate.",
	},
	[]string{"reason"},
)

// ── User metrics ──────────────────────────────────────────────────────────────

// UserStatusChangesTotal counts successful block/unblock operations.
// Label:
//   - action: "activated" or "blocked"
var UserStatusChangesTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "user_status_changes_total",
		Help:      "Total number of user activation status changes.",
	},
	[]string{"action"},
)

// ObserveAuth records the outcome of one auth workflow call.
func ObserveAuth(operation string, err error) {
	AuthAttemptsTotal.WithLabelValues(operation, Reason(err)).Inc()
}

// Reason reduces err to a low-cardinality label value.
func Reason(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, domain.ErrValidation):
		return "validation"
	case errors.Is(err, domain.ErrDuplicateEmail):
		return "duplicate_email"
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "invalid_credentials"
	case errors.Is(err, domain.ErrInvalidToken):
		return "invalid_token"
	case errors.Is(err, domain.ErrAccountBlocked):
		return "blocked"
	case errors.Is(err, domain.ErrUserNotFound):
		return "not_found"
	default:
		return "error"
	}
}
