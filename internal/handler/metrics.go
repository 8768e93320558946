package handler

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the HTTP request instruments. A dedicated registry keeps
// tests free of duplicate-registration panics.
type Metrics struct {
	registry *prometheus.Registry
	count    *prometheus.CounterVec
	latency  *prometheus.SummaryVec
}

func NewMetrics(namespace, subsystem string) *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		count: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "request_count",
			Help:      "Number of requests received.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewSummaryVec(prometheus.SummaryOpts{
			Namespace:  namespace,
			Subsystem:  subsystem,
			Objectives: map[float64]float64{0.5: 0.05, 0.9: 0.01, 0.99: 0.001},
			Name:       "request_latency_microseconds",
			Help:       "Total duration of requests in microseconds.",
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.count,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

// Middleware records one observation per request, keyed by the route template
// so path parameters do not blow up label cardinality.
func (m *Metrics) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		method := c.Request.Method
		m.count.WithLabelValues(method, route, strconv.Itoa(c.Writer.Status())).Inc()
		m.latency.WithLabelValues(method, route).Observe(float64(time.Since(start).Microseconds()))
	}
}

// RegisterMetrics installs the middleware and serves /metrics from the dedicated registry.
// Call it before Register: gin only applies middleware to routes added afterwards.
func RegisterMetrics(r *gin.Engine, m *Metrics) {
	r.Use(m.Middleware())
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})))
}
