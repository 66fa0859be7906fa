package poetbook

import (
	"strings"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/eringen/poetbook/collection"
)

const metricsSubsystem = "poetbook"

type metrics struct {
	mutations *prometheus.CounterVec
	logins    *prometheus.CounterVec
}

func newMetrics(reg *prometheus.Registry, store *collection.Store) *metrics {
	f := promauto.With(reg)
	f.NewGaugeFunc(prometheus.GaugeOpts{
		Subsystem: metricsSubsystem,
		Name:      "poems",
		Help:      "Number of poems in the collection.",
	}, func() float64 {
		return float64(store.Len())
	})
	return &metrics{
		mutations: f.NewCounterVec(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "collection_mutations_total",
			Help:      "Collection writes by operation and outcome.",
		}, []string{"op", "result"}),
		logins: f.NewCounterVec(prometheus.CounterOpts{
			Subsystem: metricsSubsystem,
			Name:      "admin_logins_total",
			Help:      "Admin login attempts by result.",
		}, []string{"result"}),
	}
}

func (m *metrics) mutation(op string, err error) {
	result := "ok"
	switch {
	case err == nil:
	case collection.IsValidation(err):
		result = "invalid"
	default:
		result = "error"
	}
	m.mutations.WithLabelValues(op, result).Inc()
}

func (a *App) metricsMiddleware() echo.MiddlewareFunc {
	return echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  metricsSubsystem,
		Registerer: a.registry,
		Skipper: func(c echo.Context) bool {
			p := c.Request().URL.Path
			return p == "/metrics" || strings.HasPrefix(p, "/public/")
		},
	})
}

func (a *App) metricsHandler() echo.HandlerFunc {
	return echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: a.registry})
}
