// Package metrics stellt Prometheus-Metriken für Buchungen und HTTP bereit.
package metrics

import (
	"context"
	"strconv"
	"time"

	"lager-backend/internal/database"
	"lager-backend/internal/models"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type Metrics struct {
	registry *prometheus.Registry

	bookings    *prometheus.CounterVec
	bookedUnits *prometheus.CounterVec
	requests    *prometheus.CounterVec
	latency     *prometheus.HistogramVec
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		bookings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lager_bookings_total",
			Help: "Committete Buchungen je Typ.",
		}, []string{"type"}),
		bookedUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lager_booked_units_total",
			Help: "Gebuchte Mengen (Betrag) je Typ.",
		}, []string{"type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "lager_http_requests_total",
			Help: "HTTP-Requests je Route und Status.",
		}, []string{"method", "route", "status"}),
		latency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "lager_http_request_duration_seconds",
			Help:    "Antwortzeit je Route.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	m.registry.MustRegister(
		m.bookings,
		m.bookedUnits,
		m.requests,
		m.latency,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// BookingCommitted wird vom Inventar-Service nach jedem Commit aufgerufen.
func (m *Metrics) BookingCommitted(b models.Booking) {
	m.bookings.WithLabelValues(string(b.Type)).Inc()
	units := b.Change
	if units < 0 {
		units = -units
	}
	m.bookedUnits.WithLabelValues(string(b.Type)).Add(float64(units))
}

// WatchStore registriert Gauges, die beim Scrape aus dem aktuellen Stand berechnet werden.
func (m *Metrics) WatchStore(store database.Store) {
	count := func(fn func(doc *models.Document) int) func() float64 {
		return func() float64 {
			n := 0
			_ = store.View(context.Background(), func(doc *models.Document) error {
				n = fn(doc)
				return nil
			})
			return float64(n)
		}
	}

	m.registry.MustRegister(
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "lager_articles",
			Help: "Anzahl Artikel im Katalog.",
		}, count(func(doc *models.Document) int { return len(doc.Articles) })),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "lager_warnlist_articles",
			Help: "Artikel unter Mindestbestand.",
		}, count(func(doc *models.Document) int {
			n := 0
			for _, a := range doc.Articles {
				if a.BelowMinimum() {
					n++
				}
			}
			return n
		})),
	)
}

// Middleware zählt Requests nach Routenmuster, nicht nach konkretem Pfad.
func (m *Metrics) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		route := c.Route().Path
		m.requests.WithLabelValues(c.Method(), route, strconv.Itoa(status)).Inc()
		m.latency.WithLabelValues(c.Method(), route).Observe(time.Since(start).Seconds())
		return err
	}
}

// Handler: GET /metrics
func (m *Metrics) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{}))
}
