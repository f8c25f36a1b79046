// Package metrics exposes Prometheus counters for the semantic metadata
// engine. A Metrics value is wired to an engine as a listener and as its
// cycle hook:
//
//	m, _ := metrics.New(prometheus.NewRegistry())
//	eng := engine.New(graph, reg, engine.WithListener(m), engine.WithCycleHook(m.CycleHook))
package metrics

import (
	"fmt"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"

	"github.com/roach88/semmeta/internal/engine"
	"github.com/roach88/semmeta/internal/ir"
)

const namespace = "semmeta"

// Metrics counts emitted changes and membership cycles and tracks the
// number of live records.
type Metrics struct {
	changes *prometheus.CounterVec // By kind (added/updated/removed)
	cycles  prometheus.Counter
	records prometheus.Gauge
}

var _ engine.Listener = (*Metrics)(nil)

// New creates the metrics and registers them with reg.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		changes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "changes_total",
			Help:      "Total number of record change notifications",
		}, []string{"kind"}),

		cycles: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cycles_total",
			Help:      "Total number of recursive group memberships detected",
		}),

		records: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "records",
			Help:      "Current number of derived semantic records",
		}),
	}

	for _, c := range []prometheus.Collector{m.changes, m.cycles, m.records} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("register metrics: %w", err)
		}
	}

	// Pre-create each kind so all series are exported from the start.
	for _, kind := range []ir.ChangeKind{ir.ChangeAdded, ir.ChangeUpdated, ir.ChangeRemoved} {
		m.changes.WithLabelValues(string(kind))
	}

	return m, nil
}

func (m *Metrics) Added(_ string, _ ir.Metadata) {
	m.changes.WithLabelValues(string(ir.ChangeAdded)).Inc()
	m.records.Inc()
}

func (m *Metrics) Updated(_ string, _, _ ir.Metadata) {
	m.changes.WithLabelValues(string(ir.ChangeUpdated)).Inc()
}

func (m *Metrics) Removed(_ string, _ ir.Metadata) {
	m.changes.WithLabelValues(string(ir.ChangeRemoved)).Inc()
	m.records.Dec()
}

// CycleHook counts a detected cycle. Pass it to engine.WithCycleHook.
func (m *Metrics) CycleHook(_ *engine.RuntimeError) {
	m.cycles.Inc()
}

// Sample is one gathered metric value.
type Sample struct {
	Name   string            `json:"name"`
	Labels map[string]string `json:"labels,omitempty"`
	Value  float64           `json:"value"`
}

// Snapshot gathers every semmeta metric from g, sorted by name then labels.
func Snapshot(g prometheus.Gatherer) ([]Sample, error) {
	families, err := g.Gather()
	if err != nil {
		return nil, fmt.Errorf("gather metrics: %w", err)
	}

	var out []Sample
	for _, family := range families {
		for _, m := range family.GetMetric() {
			s := Sample{Name: family.GetName(), Labels: map[string]string{}}
			for _, label := range m.GetLabel() {
				s.Labels[label.GetName()] = label.GetValue()
			}
			switch family.GetType() {
			case dto.MetricType_COUNTER:
				s.Value = m.GetCounter().GetValue()
			case dto.MetricType_GAUGE:
				s.Value = m.GetGauge().GetValue()
			default:
				continue
			}
			out = append(out, s)
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Name != out[j].Name {
			return out[i].Name < out[j].Name
		}
		return out[i].Labels["kind"] < out[j].Labels["kind"]
	})
	return out, nil
}
