package relgraph

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/types"
)

func sampleCatalog() []types.ResolvedType {
	return []types.ResolvedType{
		{ID: 1, Flags: []string{"String"}, IntrinsicName: "string"},
		{ID: 2, Flags: []string{"Number"}, IntrinsicName: "number"},
		{ID: 3, Flags: []string{"Union"}, UnionTypes: []types.TypeID{1, 2}},
		{ID: 4, Flags: []string{"Union"}, UnionTypes: []types.TypeID{1, 2, 7}},
		{ID: 5, Flags: []string{"Object"}, TypeArguments: []types.TypeID{1}, InstantiatedType: 5},
		{ID: 6, Flags: []string{"Object"}, TypeArguments: []types.TypeID{2}, InstantiatedType: 5},
		{ID: 7, Flags: []string{"Union"}, UnionTypes: []types.TypeID{3, 2, 99}},
		{ID: 8, Flags: []string{"Index"}, KeyofType: 3, ConstraintType: types.SentinelTypeID},
	}
}

func TestBuildStats(t *testing.T) {
	g := Build(sampleCatalog())
	require.Equal(t, 8, g.Len())

	union := g.Stat(types.RelUnionTypes)
	assert.Equal(t, 8, union.Count)
	assert.Equal(t, 3, union.Max, "widest union")
	assert.Equal(t, 3, union.MaxOut)
	assert.Equal(t, 3, union.MaxIn, "type 2 is a member of three unions")

	inst := g.Stat(types.RelInstantiatedType)
	assert.Equal(t, 2, inst.Count)
	assert.Equal(t, 2, inst.Max, "type 5 is instantiated twice")
	assert.Equal(t, 1, inst.MaxOut)

	none := g.Stat(types.RelEvolvingArrayFinalType)
	assert.Equal(t, Stat{Kind: types.RelEvolvingArrayFinalType}, none)

	assert.Len(t, g.Stats(), types.NumRelations)
}

func TestForwardAndInverseQueries(t *testing.T) {
	g := Build(sampleCatalog())

	assert.Equal(t, []types.TypeID{1, 2, 7}, g.Targets(4, types.RelUnionTypes))
	assert.Equal(t, []types.TypeID{3, 4, 7}, g.Sources(2, types.RelUnionTypes))
	assert.Equal(t, []types.TypeID{5, 6}, g.Sources(5, types.RelInstantiatedType))
	assert.Nil(t, g.Targets(1, types.RelUnionTypes))
	assert.Nil(t, g.Sources(42, types.RelKeyofType))

	out := g.Outgoing(5)
	assert.Equal(t, []Edge{
		{Source: 5, Kind: types.RelTypeArguments, Target: 1},
		{Source: 5, Kind: types.RelInstantiatedType, Target: 5},
	}, out)

	in := g.Incoming(3)
	assert.Equal(t, []Edge{
		{Source: 7, Kind: types.RelUnionTypes, Target: 3},
		{Source: 8, Kind: types.RelKeyofType, Target: 3},
	}, in)
}

func TestSelfEdgeCountedOnce(t *testing.T) {
	g := Build([]types.ResolvedType{{ID: 9, Flags: []string{}, InstantiatedType: 9}})
	st := g.Stat(types.RelInstantiatedType)
	assert.Equal(t, 1, st.Count)
	assert.Equal(t, []types.TypeID{9}, g.Targets(9, types.RelInstantiatedType))
	assert.Equal(t, []types.TypeID{9}, g.Sources(9, types.RelInstantiatedType))
	assert.Len(t, g.Edges(types.RelInstantiatedType), 1)
}

func TestNodeMetrics(t *testing.T) {
	g := Build(sampleCatalog())

	r := g.NodeMetric(MetricUnionTypes)
	assert.Equal(t, 3, r.Max)
	assert.Equal(t, []types.TypeID{4, 7}, r.Types, "ties in catalog order")

	r = g.NodeMetric(MetricTypeArguments)
	assert.Equal(t, 1, r.Max)
	assert.Equal(t, []types.TypeID{5, 6}, r.Types)

	r = g.NodeMetric(MetricAliasTypeArguments)
	assert.Zero(t, r.Max)
	assert.Empty(t, r.Types)

	top := g.TopK(MetricUnionTypes, 2)
	assert.Equal(t, []Ranked{{ID: 4, Value: 3}, {ID: 7, Value: 3}}, top)
	assert.Len(t, g.TopK(MetricUnionTypes, 0), 3)
}

func TestDanglingEdges(t *testing.T) {
	g := Build(sampleCatalog())
	assert.Equal(t, []Edge{
		{Source: 7, Kind: types.RelUnionTypes, Target: 99},
		{Source: 8, Kind: types.RelConstraintType, Target: types.SentinelTypeID},
	}, g.Dangling())
	assert.False(t, g.Has(99))
	assert.True(t, g.Has(8))
}

func TestBuildIsOrderIndependent(t *testing.T) {
	base := Build(sampleCatalog())
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 20; i++ {
		cat := sampleCatalog()
		rng.Shuffle(len(cat), func(a, b int) { cat[a], cat[b] = cat[b], cat[a] })
		g := Build(cat)
		for _, k := range types.AllRelations() {
			want, got := base.Stat(k), g.Stat(k)
			assert.Equal(t, want.Count, got.Count, k.String())
			assert.Equal(t, want.Max, got.Max, k.String())
		}
		for _, m := range Metrics() {
			want, got := base.NodeMetric(m), g.NodeMetric(m)
			assert.Equal(t, want.Max, got.Max)
			assert.ElementsMatch(t, want.Types, got.Types)
			// ties follow the new catalog order
			for j := 1; j < len(got.Types); j++ {
				p0, _ := g.Position(got.Types[j-1])
				p1, _ := g.Position(got.Types[j])
				assert.Less(t, p0, p1)
			}
		}
	}
}

func TestParseMetric(t *testing.T) {
	m, err := ParseMetric("intersectionTypes")
	require.NoError(t, err)
	assert.Equal(t, MetricIntersectionTypes, m)
	assert.Equal(t, types.RelIntersectionTypes, m.Relation())

	_, err = ParseMetric("keyofType")
	assert.True(t, errors.Is(err, ErrUnknownMetric))
	_, ok := MetricFor(types.RelKeyofType)
	assert.False(t, ok)
}
