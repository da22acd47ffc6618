package auth

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"MoviesApp/pkg/kit"
)

// Gate enforces a Policy on routes.
type Gate struct {
	policy    Policy
	log       *zap.Logger
	decisions *prometheus.CounterVec
}

// NewGate builds a gate. reg may be nil to skip decision metrics.
func NewGate(policy Policy, log *zap.Logger, reg prometheus.Registerer) *Gate {
	if log == nil {
		log = zap.NewNop()
	}

	g := &Gate{policy: policy, log: log}
	if reg != nil {
		g.decisions = prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "access_decisions_total",
				Help: "Access gate decisions by operation",
			},
			[]string{"operation", "decision"},
		)
		reg.MustRegister(g.decisions)
	}
	return g
}

// Check decides op for the presented roles.
func (g *Gate) Check(op Operation, presented Roles) Decision {
	if g.policy.Public(op) {
		return Allow
	}

	d := Authorize(g.policy[op], presented)
	if g.decisions != nil {
		g.decisions.WithLabelValues(string(op), d.String()).Inc()
	}
	return d
}

// Require short-circuits with 403 unless the request principal may perform op.
// Anonymous requests present no roles.
func (g *Gate) Require(op Operation) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if g.policy.Public(op) {
			return next
		}

		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var presented Roles
			p, ok := PrincipalFromContext(r.Context())
			if ok {
				presented = p.Roles
			}

			if g.Check(op, presented) == Deny {
				g.log.Debug("access denied",
					zap.String("operation", string(op)),
					zap.String("subject", p.Subject),
					zap.Stringer("roles", presented),
				)
				kit.WriteError(w, r, http.StatusForbidden, "forbidden", nil)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
