package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/fieldsim/internal/metrics"
	"github.com/san-kum/fieldsim/internal/sim"
)

// Registry maps metric names to constructors. Metrics that depend on the
// viewport receive its logical size.
type Registry struct {
	metrics map[string]func(width, height float64) sim.Metric
}

func NewRegistry() *Registry {
	r := &Registry{
		metrics: make(map[string]func(width, height float64) sim.Metric),
	}

	r.metrics["edge_density"] = func(_, _ float64) sim.Metric { return metrics.NewEdgeDensity() }
	r.metrics["mean_speed"] = func(_, _ float64) sim.Metric { return metrics.NewMeanSpeed() }
	r.metrics["peak_velocity"] = func(_, _ float64) sim.Metric { return metrics.NewPeakVelocity() }
	r.metrics["active_ratio"] = func(_, _ float64) sim.Metric { return metrics.NewActiveRatio() }
	r.metrics["containment"] = func(w, h float64) sim.Metric { return metrics.NewContainment(w, h) }

	return r
}

func (r *Registry) GetMetric(name string, width, height float64) (sim.Metric, error) {
	fn, ok := r.metrics[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return fn(width, height), nil
}

// Metrics builds the named metrics, or the standard set when names is empty.
func (r *Registry) Metrics(names []string, width, height float64) ([]sim.Metric, error) {
	if len(names) == 0 {
		return r.DefaultMetrics(width, height), nil
	}
	out := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, err := r.GetMetric(name, width, height)
		if err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, nil
}

func (r *Registry) ListMetrics() []string {
	names := make([]string, 0, len(r.metrics))
	for name := range r.metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (r *Registry) DefaultMetrics(width, height float64) []sim.Metric {
	return metrics.Standard(width, height)
}
