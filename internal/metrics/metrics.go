package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "brewbean"

// Outcome label values.
const (
	OutcomeSuccess   = "success"
	OutcomeDeclined  = "declined"
	OutcomeCancelled = "cancelled"
	OutcomeFailed    = "failed"
)

// Metrics holds the application's collectors on a private registry. A nil
// *Metrics is valid and records nothing.
type Metrics struct {
	reg *prometheus.Registry

	PaymentsTotal    *prometheus.CounterVec
	OrdersTotal      *prometheus.CounterVec
	CheckoutDuration *prometheus.HistogramVec
	BasketItems      prometheus.Gauge
	BasketTotal      prometheus.Gauge
	StreamClients    prometheus.Gauge
}

func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	return &Metrics{
		reg: reg,
		PaymentsTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "payment",
			Name:      "attempts_total",
			Help:      "Simulated payment attempts by method and outcome",
		}, []string{"method", "outcome"}),
		OrdersTotal: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "orders_total",
			Help:      "Checkout attempts by final result",
		}, []string{"result"}),
		CheckoutDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "checkout",
			Name:      "duration_seconds",
			Help:      "Time from entering processing to success or failure",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 5, 10},
		}, []string{"result"}),
		BasketItems: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "basket",
			Name:      "items",
			Help:      "Number of units currently in the basket",
		}),
		BasketTotal: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "basket",
			Name:      "total",
			Help:      "Current basket total",
		}),
		StreamClients: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "stream",
			Name:      "clients",
			Help:      "Connected live update clients",
		}),
	}
}

func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}

func (m *Metrics) ObservePayment(method, outcome string) {
	if m == nil {
		return
	}
	m.PaymentsTotal.WithLabelValues(method, outcome).Inc()
}

func (m *Metrics) ObserveCheckout(result string, d time.Duration) {
	if m == nil {
		return
	}
	m.OrdersTotal.WithLabelValues(result).Inc()
	m.CheckoutDuration.WithLabelValues(result).Observe(d.Seconds())
}

func (m *Metrics) SetBasket(items int, total float64) {
	if m == nil {
		return
	}
	m.BasketItems.Set(float64(items))
	m.BasketTotal.Set(total)
}

func (m *Metrics) StreamConnected() {
	if m == nil {
		return
	}
	m.StreamClients.Inc()
}

func (m *Metrics) StreamDisconnected() {
	if m == nil {
		return
	}
	m.StreamClients.Dec()
}
