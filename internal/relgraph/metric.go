package relgraph

import (
	"errors"
	"fmt"

	"tracelens/internal/types"
)

// ErrUnknownMetric is returned by ParseMetric for names outside the metric set.
var ErrUnknownMetric = errors.New("unknown node metric")

// Metric is a node-level list length tracked for ranking.
type Metric uint8

const (
	MetricUnionTypes Metric = iota
	MetricIntersectionTypes
	MetricTypeArguments
	MetricAliasTypeArguments

	metricCount
)

// NumMetrics is the number of node metrics.
const NumMetrics = int(metricCount)

// Metrics returns every metric in declaration order.
func Metrics() []Metric {
	return []Metric{MetricUnionTypes, MetricIntersectionTypes, MetricTypeArguments, MetricAliasTypeArguments}
}

// Relation returns the list relation the metric measures.
func (m Metric) Relation() types.RelationKind {
	switch m {
	case MetricUnionTypes:
		return types.RelUnionTypes
	case MetricIntersectionTypes:
		return types.RelIntersectionTypes
	case MetricTypeArguments:
		return types.RelTypeArguments
	case MetricAliasTypeArguments:
		return types.RelAliasTypeArguments
	default:
		panic(fmt.Sprintf("relgraph: no relation for metric %d", m))
	}
}

func (m Metric) String() string {
	if m < metricCount {
		return m.Relation().String()
	}
	return fmt.Sprintf("Metric(%d)", m)
}

// ParseMetric accepts the relation key of a metric ("unionTypes", ...).
func ParseMetric(s string) (Metric, error) {
	for _, m := range Metrics() {
		if m.String() == s {
			return m, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownMetric, s)
}

// MetricFor returns the metric measuring kind, if any.
func MetricFor(kind types.RelationKind) (Metric, bool) {
	for _, m := range Metrics() {
		if m.Relation() == kind {
			return m, true
		}
	}
	return 0, false
}
