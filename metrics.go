package main

import (
	"context"
	"net/http"
	"time"

	"connectrpc.com/connect"
	"git.fiblab.net/sim/transit-catalogue/router"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics serve模式下的Prometheus指标
type Metrics struct {
	reg *prometheus.Registry

	Requests *prometheus.CounterVec   // procedure, code
	Duration *prometheus.HistogramVec // procedure

	Stops       prometheus.Gauge
	BusWaitTime prometheus.Gauge // 分钟
	BusVelocity prometheus.Gauge // km/h
}

func NewMetrics(stopCount int, settings router.Settings) *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		reg: reg,
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "transit_requests_total",
			Help: "Handled catalogue requests by procedure and result code.",
		}, []string{"procedure", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "transit_request_duration_seconds",
			Help:    "Duration of catalogue requests.",
			Buckets: prometheus.ExponentialBuckets(0.00001, 2, 18),
		}, []string{"procedure"}),
		Stops: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_stops",
			Help: "Number of stops in the loaded catalogue.",
		}),
		BusWaitTime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_bus_wait_time_minutes",
			Help: "Bus wait time used by the router.",
		}),
		BusVelocity: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "transit_bus_velocity_kmh",
			Help: "Bus velocity used by the router.",
		}),
	}
	reg.MustRegister(m.Requests, m.Duration, m.Stops, m.BusWaitTime, m.BusVelocity)

	m.Stops.Set(float64(stopCount))
	m.BusWaitTime.Set(settings.BusWaitTime)
	m.BusVelocity.Set(settings.BusVelocity)
	return m
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{})
}

// 记录每个请求的结果与耗时
func (m *Metrics) Interceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			res, err := next(ctx, req)
			procedure := req.Spec().Procedure
			code := "ok"
			if err != nil {
				code = connect.CodeOf(err).String()
			}
			m.Requests.WithLabelValues(procedure, code).Inc()
			m.Duration.WithLabelValues(procedure).Observe(time.Since(start).Seconds())
			return res, err
		}
	}
}
