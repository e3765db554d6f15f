package relgraph

import (
	"sort"

	"tracelens/internal/types"
)

// Edge is one typed reference from Source to Target.
type Edge struct {
	Source types.TypeID       `json:"source" yaml:"source"`
	Kind   types.RelationKind `json:"-" yaml:"-"`
	Target types.TypeID       `json:"target" yaml:"target"`
}

// Stat aggregates one relation kind over the whole catalog.
//
// Max groups list kinds by source (the longest list, e.g. the widest union)
// and scalar kinds by target (the most referenced type). MaxOut and MaxIn
// expose both groupings regardless of kind.
type Stat struct {
	Kind   types.RelationKind `json:"-" yaml:"-"`
	Count  int                `json:"count" yaml:"count"`
	Max    int                `json:"max" yaml:"max"`
	MaxOut int                `json:"maxOut" yaml:"maxOut"`
	MaxIn  int                `json:"maxIn" yaml:"maxIn"`
}

// NodeRank is the maximum of a node metric and the types reaching it, in
// catalog order.
type NodeRank struct {
	Metric Metric         `json:"-" yaml:"-"`
	Max    int            `json:"max" yaml:"max"`
	Types  []types.TypeID `json:"types" yaml:"types"`
}

// Ranked is a type paired with its value for some metric.
type Ranked struct {
	ID    types.TypeID `json:"id" yaml:"id"`
	Value int          `json:"value" yaml:"value"`
}

// Graph is the immutable relation multigraph of one catalog.
type Graph struct {
	order    []types.TypeID
	position map[types.TypeID]int

	stats [types.NumRelations]Stat
	out   [types.NumRelations]map[types.TypeID][]types.TypeID
	in    [types.NumRelations]map[types.TypeID][]types.TypeID
	edges [types.NumRelations][]Edge

	lengths [metricCount][]int // indexed by catalog position
	ranks   [metricCount]NodeRank
}

// Build indexes every relation of every type. It is a single pass; self
// references and cycles need no special handling because nothing is walked.
func Build(catalog []types.ResolvedType) *Graph {
	g := &Graph{
		order:    make([]types.TypeID, len(catalog)),
		position: make(map[types.TypeID]int, len(catalog)),
	}
	for k := range g.stats {
		g.stats[k].Kind = types.RelationKind(k)
		g.out[k] = make(map[types.TypeID][]types.TypeID)
		g.in[k] = make(map[types.TypeID][]types.TypeID)
	}
	for m := range g.lengths {
		g.lengths[m] = make([]int, len(catalog))
		g.ranks[m].Metric = Metric(m)
	}

	for pos := range catalog {
		t := &catalog[pos]
		g.order[pos] = t.ID
		g.position[t.ID] = pos

		for _, kind := range types.AllRelations() {
			refs := t.Refs(kind)
			if len(refs) == 0 {
				continue
			}
			st := &g.stats[kind]
			st.Count += len(refs)

			out := append(g.out[kind][t.ID], refs...)
			g.out[kind][t.ID] = out
			st.MaxOut = max(st.MaxOut, len(out))

			for _, target := range refs {
				in := append(g.in[kind][target], t.ID)
				g.in[kind][target] = in
				st.MaxIn = max(st.MaxIn, len(in))
				g.edges[kind] = append(g.edges[kind], Edge{Source: t.ID, Kind: kind, Target: target})
			}

			if m, ok := MetricFor(kind); ok {
				n := len(refs)
				g.lengths[m][pos] = n
				r := &g.ranks[m]
				switch {
				case n > r.Max:
					r.Max = n
					r.Types = append(r.Types[:0], t.ID)
				case n == r.Max:
					r.Types = append(r.Types, t.ID)
				}
			}
		}
	}

	for k := range g.stats {
		st := &g.stats[k]
		if types.RelationKind(k).IsList() {
			st.Max = st.MaxOut
		} else {
			st.Max = st.MaxIn
		}
	}
	return g
}

// Len returns the number of types in the catalog the graph was built from.
func (g *Graph) Len() int { return len(g.order) }

// Has reports whether id names a type of the catalog.
func (g *Graph) Has(id types.TypeID) bool {
	_, ok := g.position[id]
	return ok
}

// Position returns the catalog index of id.
func (g *Graph) Position(id types.TypeID) (int, bool) {
	p, ok := g.position[id]
	return p, ok
}

// Targets returns what id points at through kind, in field order.
// The slice is shared and must not be modified.
func (g *Graph) Targets(id types.TypeID, kind types.RelationKind) []types.TypeID {
	if int(kind) >= types.NumRelations {
		return nil
	}
	return g.out[kind][id]
}

// Sources returns the types pointing at id through kind, in catalog order.
// The slice is shared and must not be modified.
func (g *Graph) Sources(id types.TypeID, kind types.RelationKind) []types.TypeID {
	if int(kind) >= types.NumRelations {
		return nil
	}
	return g.in[kind][id]
}

// Stat returns the aggregate statistics of kind.
func (g *Graph) Stat(kind types.RelationKind) Stat {
	if int(kind) >= types.NumRelations {
		return Stat{Kind: kind}
	}
	return g.stats[kind]
}

// Stats returns the statistics of every kind in relation order.
func (g *Graph) Stats() []Stat {
	out := make([]Stat, types.NumRelations)
	copy(out, g.stats[:])
	return out
}

// Edges returns every edge of kind in catalog order.
// The slice is shared and must not be modified.
func (g *Graph) Edges(kind types.RelationKind) []Edge {
	if int(kind) >= types.NumRelations {
		return nil
	}
	return g.edges[kind]
}

// Outgoing returns every edge leaving id, grouped by relation kind.
func (g *Graph) Outgoing(id types.TypeID) []Edge {
	var out []Edge
	for k := range g.out {
		for _, target := range g.out[k][id] {
			out = append(out, Edge{Source: id, Kind: types.RelationKind(k), Target: target})
		}
	}
	return out
}

// Incoming returns every edge arriving at id, grouped by relation kind.
func (g *Graph) Incoming(id types.TypeID) []Edge {
	var in []Edge
	for k := range g.in {
		for _, source := range g.in[k][id] {
			in = append(in, Edge{Source: source, Kind: types.RelationKind(k), Target: id})
		}
	}
	return in
}

// NodeMetric returns the maximum list length of m and the types reaching it.
func (g *Graph) NodeMetric(m Metric) NodeRank {
	if m >= metricCount {
		return NodeRank{Metric: m}
	}
	r := g.ranks[m]
	r.Types = append([]types.TypeID(nil), r.Types...)
	return r
}

// TopK ranks types by the list length of m, longest first, ties in catalog
// order. Types without the list are skipped. k <= 0 returns every type.
func (g *Graph) TopK(m Metric, k int) []Ranked {
	if m >= metricCount {
		return nil
	}
	var ranked []Ranked
	for pos, n := range g.lengths[m] {
		if n > 0 {
			ranked = append(ranked, Ranked{ID: g.order[pos], Value: n})
		}
	}
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].Value > ranked[j].Value })
	if k > 0 && len(ranked) > k {
		ranked = ranked[:k]
	}
	return ranked
}

// Dangling returns the edges whose target is not part of the catalog, in
// relation order then catalog order.
func (g *Graph) Dangling() []Edge {
	var out []Edge
	for k := range g.edges {
		for _, e := range g.edges[k] {
			if !g.Has(e.Target) {
				out = append(out, e)
			}
		}
	}
	return out
}
