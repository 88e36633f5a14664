package core

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
)

const StateLabel = "state"

// Metrics counts what sessions do.  Each Metrics has its own
// registry so that sessions in one process don't collide.
type Metrics struct {
	Registry *prometheus.Registry

	Steps        prometheus.Counter
	Detections   prometheus.Counter
	Solves       prometheus.Counter
	Alternatives prometheus.Histogram
	Outcomes     *prometheus.CounterVec
}

func NewMetrics() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),

		Steps: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "koala_steps_total",
				Help: "Monotonic count of committed steps",
			},
		),

		Detections: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "koala_detections_total",
				Help: "Monotonic count of alternative detections",
			},
		),

		Solves: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "koala_solves_total",
				Help: "Monotonic count of SAT solver calls made by the constraint store",
			},
		),

		Alternatives: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "koala_alternatives",
				Help:    "Number of goal literals that could fire at each detection",
				Buckets: []float64{0, 1, 2, 4, 8, 16, 32},
			},
		),

		Outcomes: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "koala_detection_outcomes_total",
				Help: "Detections by resulting session state",
			},
			[]string{StateLabel},
		),
	}

	m.Registry.MustRegister(m.Steps)
	m.Registry.MustRegister(m.Detections)
	m.Registry.MustRegister(m.Solves)
	m.Registry.MustRegister(m.Alternatives)
	m.Registry.MustRegister(m.Outcomes)

	return m
}

func (s *Session) observeSolves() {
	n := s.Store.Solves()
	if s.Metrics != nil && s.solves < n {
		s.Metrics.Solves.Add(float64(n - s.solves))
	}
	s.solves = n
}

func (s *Session) observeDetection(d *Detection) {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Detections.Inc()
	s.Metrics.Alternatives.Observe(float64(len(d.Alternatives)))
	s.Metrics.Outcomes.WithLabelValues(d.State.String()).Inc()
	s.observeSolves()
}

func (s *Session) observeCommit() {
	if s.Metrics == nil {
		return
	}
	s.Metrics.Steps.Inc()
	s.observeSolves()
}

// Dump writes one line per sample in the registry.
func (m *Metrics) Dump(w io.Writer) error {
	fams, err := m.Registry.Gather()
	if err != nil {
		return err
	}
	for _, fam := range fams {
		for _, metric := range fam.GetMetric() {
			name := fam.GetName() + labels(metric)
			var err error
			switch fam.GetType() {
			case dto.MetricType_COUNTER:
				_, err = fmt.Fprintf(w, "%s %v\n", name, metric.GetCounter().GetValue())
			case dto.MetricType_GAUGE:
				_, err = fmt.Fprintf(w, "%s %v\n", name, metric.GetGauge().GetValue())
			case dto.MetricType_HISTOGRAM:
				h := metric.GetHistogram()
				_, err = fmt.Fprintf(w, "%s_count %d\n%s_sum %v\n",
					name, h.GetSampleCount(), name, h.GetSampleSum())
			}
			if err != nil {
				return err
			}
		}
	}
	return nil
}

func labels(m *dto.Metric) string {
	if len(m.GetLabel()) == 0 {
		return ""
	}
	acc := "{"
	for i, l := range m.GetLabel() {
		if 0 < i {
			acc += ","
		}
		acc += fmt.Sprintf("%s=%q", l.GetName(), l.GetValue())
	}
	return acc + "}"
}
