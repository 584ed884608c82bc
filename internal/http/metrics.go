package http

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	loginsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_logins_total",
		Help: "Login attempts by result.",
	}, []string{"result"})

	refreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_refreshes_total",
		Help: "Refresh token rotations by result.",
	}, []string{"result"})

	rateLimitedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "auth_login_rate_limited_total",
		Help: "Login requests rejected by the rate limiter.",
	})
)
