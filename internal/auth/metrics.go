package auth

import (
	"github.com/companeros-en-ruta/api/internal/models"
	"github.com/prometheus/client_golang/prometheus"
)

var resolutionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "auth_resolutions_total",
		Help: "Authorization resolutions by required role and outcome.",
	},
	[]string{"role", "outcome"},
)

// RegisterMetrics registers the auth collectors with reg
func RegisterMetrics(reg prometheus.Registerer) error {
	return reg.Register(resolutionsTotal)
}

func observe(role models.Role, err error) {
	outcome := "ok"
	if err != nil {
		outcome = KindOf(err).String()
	}
	resolutionsTotal.WithLabelValues(string(role), outcome).Inc()
}
