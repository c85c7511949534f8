package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jhoicas/Inventario-costeo/internal/application/inventory"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/shopspring/decimal"
)

var _ inventory.Metrics = (*Metrics)(nil)

// Metrics contadores del motor de costeo y del API HTTP.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	LayersAppended     *prometheus.CounterVec
	QuantityReceived   *prometheus.CounterVec
	QuantityConsumed   *prometheus.CounterVec
	CostConsumed       *prometheus.CounterVec
	InsufficientStocks prometheus.Counter
	StockDrifts        prometheus.Counter
	Allocations        *prometheus.CounterVec
	AllocationLines    prometheus.Histogram
}

// Config configuración de las métricas.
type Config struct {
	Namespace string
}

// DefaultConfig namespace "costing".
func DefaultConfig() *Config {
	return &Config{Namespace: "costing"}
}

// New crea un registro propio con los colectores de Go y del proceso.
func New(config *Config) *Metrics {
	if config == nil {
		config = DefaultConfig()
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(prometheus.NewGoCollector())
	registry.MustRegister(prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}))

	ns := config.Namespace
	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "http_requests_total", Help: "Total de peticiones HTTP"},
		[]string{"method", "path", "status"},
	)
	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "http_request_duration_seconds",
			Help:      "Duración de las peticiones HTTP en segundos",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)
	m.LayersAppended = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "layers_appended_total", Help: "Capas creadas por origen"},
		[]string{"source"},
	)
	m.QuantityReceived = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "quantity_received_total", Help: "Unidades recibidas por origen"},
		[]string{"source"},
	)
	m.QuantityConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "quantity_consumed_total", Help: "Unidades consumidas por tipo de movimiento"},
		[]string{"type"},
	)
	m.CostConsumed = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "cost_consumed_total", Help: "Costo FIFO consumido por tipo de movimiento"},
		[]string{"type"},
	)
	m.InsufficientStocks = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: ns, Name: "insufficient_stock_total", Help: "Consumos rechazados por existencias insuficientes"},
	)
	m.StockDrifts = prometheus.NewCounter(
		prometheus.CounterOpts{Namespace: ns, Name: "stock_drift_total", Help: "Descuadres detectados entre contador y capas"},
	)
	m.Allocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{Namespace: ns, Name: "allocations_total", Help: "Distribuciones de costos de importación"},
		[]string{"charges_distributed"},
	)
	m.AllocationLines = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: ns,
			Name:      "allocation_lines",
			Help:      "Líneas por embarque distribuido",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal, m.HTTPRequestDuration,
		m.LayersAppended, m.QuantityReceived, m.QuantityConsumed, m.CostConsumed,
		m.InsufficientStocks, m.StockDrifts, m.Allocations, m.AllocationLines,
	)
	return m
}

// Handler expone el registro en formato Prometheus.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{EnableOpenMetrics: true})
}

// Registry devuelve el registro propio.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// RecordHTTPRequest registra una petición atendida.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

func (m *Metrics) LayerAppended(source string, quantity decimal.Decimal) {
	m.LayersAppended.WithLabelValues(source).Inc()
	m.QuantityReceived.WithLabelValues(source).Add(quantity.InexactFloat64())
}

func (m *Metrics) Consumed(movementType string, quantity, cost decimal.Decimal) {
	m.QuantityConsumed.WithLabelValues(movementType).Add(quantity.Abs().InexactFloat64())
	m.CostConsumed.WithLabelValues(movementType).Add(cost.Abs().InexactFloat64())
}

func (m *Metrics) InsufficientStock() { m.InsufficientStocks.Inc() }

func (m *Metrics) StockDrift() { m.StockDrifts.Inc() }

func (m *Metrics) Allocation(lines int, chargesNotDistributed bool) {
	m.Allocations.WithLabelValues(strconv.FormatBool(!chargesNotDistributed)).Inc()
	m.AllocationLines.Observe(float64(lines))
}
