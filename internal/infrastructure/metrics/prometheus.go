// Package metrics publica en Prometheus los contadores del libro de stock y del HTTP.
package metrics

import (
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/jhoicas/erp-electrico/internal/application/ports"
	"github.com/jhoicas/erp-electrico/internal/domain/entity"
)

const namespace = "erp"

// Registry agrupa las métricas en un registro propio (sin colisiones con el global).
type Registry struct {
	registry *prometheus.Registry

	movementsTotal   *prometheus.CounterVec
	movementUnits    *prometheus.CounterVec
	transitionsTotal *prometheus.CounterVec
	rejectedTotal    *prometheus.CounterVec
	httpRequests     *prometheus.CounterVec
	httpDuration     *prometheus.HistogramVec
}

var _ ports.LedgerMetrics = (*Registry)(nil)

// New crea el registro con los colectores de proceso y de runtime de Go.
func New() *Registry {
	r := &Registry{
		registry: prometheus.NewRegistry(),
		movementsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stock",
			Name: "movements_total",
			Help: "Movimientos registrados en el libro de stock.",
		}, []string{"type"}),
		movementUnits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "stock",
			Name: "movement_units_total",
			Help: "Unidades movidas por tipo de movimiento.",
		}, []string{"type"}),
		transitionsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders",
			Name: "transitions_total",
			Help: "Cambios de estado de órdenes de compra y ventas.",
		}, []string{"kind", "status"}),
		rejectedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "orders",
			Name: "rejected_total",
			Help: "Operaciones rechazadas por regla de negocio.",
		}, []string{"operation", "reason"}),
		httpRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace, Subsystem: "http",
			Name: "requests_total",
			Help: "Peticiones HTTP atendidas.",
		}, []string{"method", "route", "status"}),
		httpDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace, Subsystem: "http",
			Name:    "request_duration_seconds",
			Help:    "Duración de las peticiones HTTP.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	r.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		r.movementsTotal, r.movementUnits, r.transitionsTotal, r.rejectedTotal,
		r.httpRequests, r.httpDuration,
	)
	return r
}

func (r *Registry) StockMovement(t entity.MovementType, quantity int) {
	r.movementsTotal.WithLabelValues(string(t)).Inc()
	r.movementUnits.WithLabelValues(string(t)).Add(float64(quantity))
}

func (r *Registry) OrderTransition(kind, status string) {
	r.transitionsTotal.WithLabelValues(kind, status).Inc()
}

func (r *Registry) Rejected(operation, reason string) {
	r.rejectedTotal.WithLabelValues(operation, reason).Inc()
}

// Gatherer expone el registro (tests y handlers externos).
func (r *Registry) Gatherer() prometheus.Gatherer {
	return r.registry
}

// Handler sirve /metrics sobre Fiber.
func (r *Registry) Handler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{}))
}

// Middleware mide cada petición. Usa la ruta registrada (no la URL) para acotar la cardinalidad.
func (r *Registry) Middleware() fiber.Handler {
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
		if route == "" {
			route = "desconocida"
		}
		method := c.Method()
		r.httpRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
		r.httpDuration.WithLabelValues(method, route).Observe(time.Since(start).Seconds())
		return err
	}
}
