// Package metrics names and documents statistics so reports, the terminal
// summary and exports can refer to them by a stable identifier.
package metrics

import (
	"maps"
	"slices"
)

// Metric computes a typed output from a typed input and describes itself.
type Metric[In, Out any] interface {
	// Name is the stable snake_case identifier.
	Name() string
	DisplayName() string
	Description() string
	// Type is one of TypeAggregate, TypeTimeSeries or TypeSummary.
	Type() string
	Compute(input In) Out
}

// Metric categories.
const (
	TypeAggregate  = "aggregate"
	TypeTimeSeries = "time_series"
	TypeSummary    = "summary"
)

// MetricMeta implements the descriptive half of Metric. Embed it.
type MetricMeta struct {
	MetricName        string
	MetricDisplayName string
	MetricDescription string
	MetricType        string
}

func (m MetricMeta) Name() string        { return m.MetricName }
func (m MetricMeta) DisplayName() string { return m.MetricDisplayName }
func (m MetricMeta) Description() string { return m.MetricDescription }
func (m MetricMeta) Type() string        { return m.MetricType }

// Registry indexes metrics of any input and output type by name.
type Registry struct {
	byName map[string]any
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{byName: make(map[string]any)}
}

// Register adds m, replacing a metric registered under the same name.
func Register[In, Out any](r *Registry, m Metric[In, Out]) {
	r.byName[m.Name()] = m
}

// Get returns the metric registered as name.
func (r *Registry) Get(name string) (any, bool) {
	m, ok := r.byName[name]

	return m, ok
}

// Lookup returns the metric registered as name if it has the requested
// input and output types.
func Lookup[In, Out any](r *Registry, name string) (Metric[In, Out], bool) {
	typed, ok := r.byName[name].(Metric[In, Out])

	return typed, ok
}

// Names lists registered names in ascending order.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.byName))
}
