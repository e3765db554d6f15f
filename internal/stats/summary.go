// Package stats reduces a sample of durations to the figures shown next to
// a hotspot breakdown.
package stats

import (
	"math"
	"sort"
)

// TopN is the length of the Top10 and Bottom10 lists.
const TopN = 10

// Summary is a deterministic reduction of a multiset of values.
type Summary struct {
	Winner            float64   `json:"winner" yaml:"winner"`
	Median            float64   `json:"median" yaml:"median"`
	Mean              float64   `json:"mean" yaml:"mean"`
	StandardDeviation float64   `json:"standardDeviation" yaml:"standardDeviation"`
	Samples           int       `json:"samples" yaml:"samples"`
	Top10             []float64 `json:"top10" yaml:"top10"`
	Bottom10          []float64 `json:"bottom10" yaml:"bottom10"`
}

// Summarize computes population mean and standard deviation, the median
// (mean of the two middle values for even sample counts), the maximum and
// the ten largest and smallest values. Ties keep input order. An empty
// input yields the zero Summary with empty lists.
func Summarize(values []float64) Summary {
	n := len(values)
	s := Summary{Samples: n, Top10: []float64{}, Bottom10: []float64{}}
	if n == 0 {
		return s
	}

	asc := append([]float64(nil), values...)
	sort.SliceStable(asc, func(i, j int) bool { return asc[i] < asc[j] })
	desc := append([]float64(nil), values...)
	sort.SliceStable(desc, func(i, j int) bool { return desc[i] > desc[j] })

	s.Winner = desc[0]
	if n%2 == 0 {
		s.Median = (asc[n/2-1] + asc[n/2]) / 2
	} else {
		s.Median = asc[n/2]
	}

	var sum float64
	for _, v := range values {
		sum += v
	}
	s.Mean = sum / float64(n)

	var sq float64
	for _, v := range values {
		d := v - s.Mean
		sq += d * d
	}
	s.StandardDeviation = math.Sqrt(sq / float64(n))

	s.Top10 = desc[:min(TopN, n)]
	s.Bottom10 = asc[:min(TopN, n)]
	return s
}

// Ranked is a labelled value. Rank orders labelled samples the way
// Summarize orders bare ones.
type Ranked[T any] struct {
	Item  T
	Value float64
}

// Rank sorts items by value, largest first, keeping input order on ties.
func Rank[T any](items []Ranked[T]) []Ranked[T] {
	out := append([]Ranked[T](nil), items...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Value > out[j].Value })
	return out
}
