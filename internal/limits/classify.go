// Package limits partitions the analyzer's depth-limit events by kind.
//
// Classification is a single pass that keeps every hit, in trace order, with
// its payload untouched. Repeated hits for the same type are not merged: each
// one is the limit firing again. A Policy only annotates hits; it never
// drops them.
package limits

import (
	"fmt"
	"sort"

	"tracelens/internal/diag"
	"tracelens/internal/trace"
	"tracelens/internal/types"
)

// Hit is one depth-limit event.
type Hit struct {
	Kind    Kind       `json:"-" yaml:"-"`
	Index   int        `json:"index" yaml:"index"`
	TS      int64      `json:"ts" yaml:"ts"`
	PID     int        `json:"pid" yaml:"pid"`
	TID     int        `json:"tid" yaml:"tid"`
	Payload trace.Args `json:"payload" yaml:"payload"`

	// Metric is the payload's magnitude for the kind (see Kind.MetricName).
	Metric    int64 `json:"metric" yaml:"metric"`
	Exceeds   bool  `json:"exceeds" yaml:"exceeds"`
	HardError bool  `json:"hardError" yaml:"hardError"`
}

// Severity grades the hit for reporting.
func (h Hit) Severity() diag.Severity {
	switch {
	case h.HardError && h.Exceeds:
		return diag.SevError
	case h.Exceeds:
		return diag.SevWarning
	default:
		return diag.SevInfo
	}
}

// Collection is the classified depth-limit hits of one trace.
type Collection struct {
	policy Policy
	lists  [kindCount][]Hit
}

// Classify collects the depth-limit events of events, one ordered list per
// kind, annotating each hit with policy.
func Classify(events []trace.Event, policy Policy) *Collection {
	c := &Collection{policy: policy}
	for i := range events {
		ev := &events[i]
		k, ok := KindOf(ev.Variant)
		if !ok {
			continue
		}
		rule := policy.Rule(k)
		metric := measure(ev.Args)
		c.lists[k] = append(c.lists[k], Hit{
			Kind:      k,
			Index:     ev.Index,
			TS:        ev.TS,
			PID:       ev.PID,
			TID:       ev.TID,
			Payload:   ev.Args,
			Metric:    metric,
			Exceeds:   exceeds(ev.Args, metric, rule),
			HardError: rule.HardError,
		})
	}
	return c
}

// measure extracts the magnitude a kind is ranked by.
func measure(args trace.Args) int64 {
	switch a := args.(type) {
	case *trace.InstantiateTypeDepthLimit:
		return int64(a.InstantiationDepth)
	case *trace.RecursiveTypeRelatedToDepthLimit:
		return int64(max(a.Depth, a.TargetDepth))
	case *trace.TypeRelatedToDiscriminatedTypeDepthLimit:
		return int64(a.NumCombinations)
	case *trace.CheckCrossProductUnionDepthLimit:
		return int64(a.Size)
	case *trace.GetTypeAtFlowNodeDepthLimit:
		return 0
	case *trace.RemoveSubtypesDepthLimit:
		return int64(len(a.TypeIDs))
	case *trace.TraceUnionsOrIntersectionsTooLargeDepthLimit:
		return int64(a.SourceSize) * int64(a.TargetSize)
	case *trace.CheckTypeRelatedToDepthLimit:
		return int64(max(a.Depth, a.TargetDepth))
	default:
		panic(fmt.Sprintf("limits: unexpected payload %T", args))
	}
}

// exceeds applies rule to a hit. The instantiation budget is a second,
// independent trigger for instantiateType.
func exceeds(args trace.Args, metric int64, rule Rule) bool {
	if metric >= rule.Threshold {
		return true
	}
	if a, ok := args.(*trace.InstantiateTypeDepthLimit); ok && rule.CountThreshold > 0 {
		return int64(a.InstantiationCount) >= rule.CountThreshold
	}
	return false
}

// Policy returns the policy the collection was classified with.
func (c *Collection) Policy() Policy { return c.policy }

// Hits returns the hits of kind k in trace order.
// The slice is shared and must not be modified.
func (c *Collection) Hits(k Kind) []Hit {
	if k >= kindCount {
		return nil
	}
	return c.lists[k]
}

// Len returns the total number of hits.
func (c *Collection) Len() int {
	n := 0
	for k := range c.lists {
		n += len(c.lists[k])
	}
	return n
}

// Counts returns the number of hits per kind, indexed by Kind.
func (c *Collection) Counts() []int {
	out := make([]int, kindCount)
	for k := range c.lists {
		out[k] = len(c.lists[k])
	}
	return out
}

// Worst returns up to n hits of kind k with the largest metric, trace order
// breaking ties. n <= 0 returns all of them.
func (c *Collection) Worst(k Kind, n int) []Hit {
	hits := append([]Hit(nil), c.Hits(k)...)
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Metric > hits[j].Metric })
	if n > 0 && len(hits) > n {
		hits = hits[:n]
	}
	return hits
}

// Report emits one finding per hit, kinds in catalog order.
func (c *Collection) Report(r diag.Reporter) {
	for k := range c.lists {
		for _, h := range c.lists[k] {
			b := diag.NewReportBuilder(r, h.Severity(), h.Kind.Code(), diag.Subject{
				Artifact: trace.ArtifactName,
				Index:    h.Index,
				TS:       h.TS,
			}, Describe(h))
			for _, id := range h.TypeIDs() {
				b.WithNote(diag.Subject{Artifact: types.ArtifactName, Index: -1}, fmt.Sprintf("type #%d", id))
			}
			b.Emit()
		}
	}
}

// TypeIDs returns the type identifiers the hit's payload names, in field
// order, without duplicates.
func (h Hit) TypeIDs() []types.TypeID {
	var ids []types.TypeID
	add := func(list ...types.TypeID) {
		for _, id := range list {
			dup := false
			for _, seen := range ids {
				if seen == id {
					dup = true
					break
				}
			}
			if !dup {
				ids = append(ids, id)
			}
		}
	}
	switch a := h.Payload.(type) {
	case *trace.InstantiateTypeDepthLimit:
		add(a.TypeID)
	case *trace.RecursiveTypeRelatedToDepthLimit:
		add(a.SourceID, a.TargetID)
	case *trace.TypeRelatedToDiscriminatedTypeDepthLimit:
		add(a.SourceID, a.TargetID)
	case *trace.CheckCrossProductUnionDepthLimit:
		add(a.TypeIDs...)
	case *trace.RemoveSubtypesDepthLimit:
		add(a.TypeIDs...)
	case *trace.TraceUnionsOrIntersectionsTooLargeDepthLimit:
		add(a.SourceID, a.TargetID)
	case *trace.CheckTypeRelatedToDepthLimit:
		add(a.SourceID, a.TargetID)
	}
	return ids
}

// Describe renders a one-line summary of the hit's payload.
func Describe(h Hit) string {
	switch a := h.Payload.(type) {
	case *trace.InstantiateTypeDepthLimit:
		return fmt.Sprintf("instantiating #%d reached depth %d after %d instantiations", a.TypeID, a.InstantiationDepth, a.InstantiationCount)
	case *trace.RecursiveTypeRelatedToDepthLimit:
		return fmt.Sprintf("relating #%d to #%d reached depth %d/%d", a.SourceID, a.TargetID, a.Depth, a.TargetDepth)
	case *trace.TypeRelatedToDiscriminatedTypeDepthLimit:
		return fmt.Sprintf("relating #%d to discriminated #%d needs %d combinations", a.SourceID, a.TargetID, a.NumCombinations)
	case *trace.CheckCrossProductUnionDepthLimit:
		return fmt.Sprintf("cross product of %d unions has size %d", len(a.TypeIDs), a.Size)
	case *trace.GetTypeAtFlowNodeDepthLimit:
		return fmt.Sprintf("flow analysis gave up at flow node %d", a.FlowID)
	case *trace.RemoveSubtypesDepthLimit:
		return fmt.Sprintf("subtype reduction gave up over %d types", len(a.TypeIDs))
	case *trace.TraceUnionsOrIntersectionsTooLargeDepthLimit:
		return fmt.Sprintf("comparing #%d (%d members) with #%d (%d members)", a.SourceID, a.SourceSize, a.TargetID, a.TargetSize)
	case *trace.CheckTypeRelatedToDepthLimit:
		return fmt.Sprintf("checking #%d against #%d overflowed at depth %d/%d", a.SourceID, a.TargetID, a.Depth, a.TargetDepth)
	}
	return h.Kind.String()
}
