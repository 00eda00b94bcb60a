package openai

import (
	"github.com/prometheus/client_golang/prometheus"

	llmprovider "github.com/haowjy/meridian-responses-go"
)

// Metrics holds Prometheus collectors for the converters and the transport.
// All methods are safe on a nil *Metrics.
type Metrics struct {
	EventsTotal      *prometheus.CounterVec
	PartsTotal       *prometheus.CounterVec
	ParseErrorsTotal prometheus.Counter
	FinishTotal      *prometheus.CounterVec
	RequestsTotal    *prometheus.CounterVec
}

// NewMetrics creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		EventsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmprovider",
			Subsystem: "openai",
			Name:      "stream_events_total",
			Help:      "Stream events received, by event type.",
		}, []string{"type"}),
		PartsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmprovider",
			Subsystem: "openai",
			Name:      "parts_total",
			Help:      "Normalized parts produced, by part type.",
		}, []string{"type"}),
		ParseErrorsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "llmprovider",
			Subsystem: "openai",
			Name:      "output_parse_errors_total",
			Help:      "Tool calls whose arguments could not be parsed.",
		}),
		FinishTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmprovider",
			Subsystem: "openai",
			Name:      "finish_total",
			Help:      "Responses finished, by finish reason.",
		}, []string{"reason"}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "llmprovider",
			Subsystem: "openai",
			Name:      "requests_total",
			Help:      "HTTP requests sent, by mode and outcome.",
		}, []string{"mode", "outcome"}),
	}
	if reg != nil {
		reg.MustRegister(m.EventsTotal, m.PartsTotal, m.ParseErrorsTotal, m.FinishTotal, m.RequestsTotal)
	}
	return m
}

func (m *Metrics) observeEvent(eventType string) {
	if m == nil {
		return
	}
	m.EventsTotal.WithLabelValues(eventType).Inc()
}

func (m *Metrics) observeParts(parts []llmprovider.Part) {
	if m == nil {
		return
	}
	for _, p := range parts {
		m.PartsTotal.WithLabelValues(string(p.Type())).Inc()
		if f, ok := p.(llmprovider.FinishPart); ok {
			m.FinishTotal.WithLabelValues(f.Reason.String()).Inc()
		}
	}
}

func (m *Metrics) observeParseError() {
	if m == nil {
		return
	}
	m.ParseErrorsTotal.Inc()
}

func (m *Metrics) observeRequest(mode, outcome string) {
	if m == nil {
		return
	}
	m.RequestsTotal.WithLabelValues(mode, outcome).Inc()
}
