package present

import (
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/relgraph"
	"tracelens/internal/types"
)

func newPresenter(t *testing.T, recs []types.ResolvedType) *Presenter {
	t.Helper()
	cat, err := types.NewCatalog(recs)
	require.NoError(t, err)
	p, err := New(relgraph.Build(cat.Types()), cat, Options{})
	require.NoError(t, err)
	return p
}

func TestEveryFieldIsClassified(t *testing.T) {
	rt := reflect.TypeOf(types.ResolvedType{})
	fields := Fields()
	require.Len(t, fields, rt.NumField())

	refs := 0
	for i, f := range fields {
		name, _, _ := strings.Cut(rt.Field(i).Tag.Get("json"), ",")
		assert.Equal(t, name, f.Name)
		if f.Kind == FieldSingle || f.Kind == FieldList {
			refs++
			assert.Equal(t, f.Kind == FieldList, f.Relation.IsList(), f.Name)
			assert.Equal(t, f.Name, f.Relation.String())
		}
	}
	assert.Equal(t, types.NumRelations, refs)
}

func TestUnclassifiedFieldPanics(t *testing.T) {
	assert.Panics(t, func() { classify("aliasSymbol") })
	assert.Panics(t, func() { displayValue(&types.ResolvedType{}, "keyofType") })
	assert.Panics(t, func() { locationValue(&types.ResolvedType{}, "display") })
}

func TestMutualRecursionTruncates(t *testing.T) {
	p := newPresenter(t, []types.ResolvedType{
		{ID: 1, Flags: []string{"Object"}, SymbolName: "A", TypeArguments: []types.TypeID{2}},
		{ID: 2, Flags: []string{"Object"}, SymbolName: "B", TypeArguments: []types.TypeID{1}},
	})
	root, err := p.Present(1, 10)
	require.NoError(t, err)

	var truncatedAt []int
	Walk(root, func(n *Node, depth int) {
		if n.Kind == NodeTruncated {
			truncatedAt = append(truncatedAt, depth)
		}
		assert.LessOrEqual(t, depth, 10)
	})
	require.Len(t, truncatedAt, 1)
	assert.Equal(t, 10, truncatedAt[0])
	assert.Equal(t, 11, Depth(root))
	assert.Equal(t, "A", root.Name)
	assert.Equal(t, "B", root.Children[0].Node.Name)
	assert.Equal(t, "typeArguments", root.Children[0].Field)
}

func TestSelfReferenceIsElided(t *testing.T) {
	p := newPresenter(t, []types.ResolvedType{
		{ID: 7, Flags: []string{"Object"}, SymbolName: "Node", InstantiatedType: 7, TypeArguments: []types.TypeID{7, 8}},
		{ID: 8, Flags: []string{"String"}, IntrinsicName: "string"},
	})
	root, err := p.Present(7, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"typeArguments", "instantiatedType"}, root.SelfRefs)
	require.Len(t, root.Children, 1)
	assert.Equal(t, types.TypeID(8), root.Children[0].Node.ID)
	assert.Equal(t, 2, Depth(root))
}

func TestPlaceholders(t *testing.T) {
	p := newPresenter(t, []types.ResolvedType{
		{ID: 3, Flags: []string{"Union"}, UnionTypes: []types.TypeID{4, 99}, ConstraintType: types.SentinelTypeID},
		{ID: 4, Flags: []string{"Null"}, IntrinsicName: "null"},
	})
	root, err := p.Present(3, 5)
	require.NoError(t, err)
	require.Len(t, root.Children, 3)
	assert.Equal(t, NodeType, root.Children[0].Node.Kind)
	assert.Equal(t, NodePlaceholder, root.Children[1].Node.Kind)
	assert.Equal(t, types.TypeID(99), root.Children[1].Node.ID)
	assert.Equal(t, "constraintType", root.Children[2].Field)
	assert.Equal(t, NodePlaceholder, root.Children[2].Node.Kind)

	zero, err := p.Present(types.NoTypeID, 5)
	require.NoError(t, err)
	assert.Equal(t, NodePlaceholder, zero.Kind)

	missing, err := p.Present(1234, 5)
	require.NoError(t, err)
	assert.Equal(t, NodePlaceholder, missing.Kind)
}

func TestLabelsAndLocations(t *testing.T) {
	p := newPresenter(t, []types.ResolvedType{{
		ID:               5,
		Flags:            []string{"Object", "Narrowable"},
		Display:          "Box<string>",
		SymbolName:       "Box",
		IsTuple:          true,
		FirstDeclaration: &types.Location{Path: "a.ts", Start: types.Position{Line: 1, Character: 2}},
	}})
	root, err := p.Present(5, 3)
	require.NoError(t, err)
	assert.Equal(t, "Box<string>", root.Name)
	assert.Equal(t, []Label{
		{Field: "flags", Value: "Object|Narrowable"},
		{Field: "display", Value: "Box<string>"},
		{Field: "symbolName", Value: "Box"},
	}, root.Labels)
	assert.Equal(t, []Label{{Field: "firstDeclaration", Value: "a.ts:1:2"}}, root.Locations)
}

func TestDepthBounds(t *testing.T) {
	p := newPresenter(t, []types.ResolvedType{{ID: 1, Flags: []string{}}})
	_, err := p.Present(1, MaxDepthLimit+1)
	assert.True(t, errors.Is(err, ErrDepthOutOfRange))

	_, err = New(relgraph.Build(nil), &types.Catalog{}, Options{MaxDepth: MaxDepthLimit + 1})
	assert.True(t, errors.Is(err, ErrDepthOutOfRange))

	root, err := p.Present(1, 1)
	require.NoError(t, err)
	assert.Equal(t, NodeType, root.Kind)
	assert.Equal(t, DefaultMaxDepth, p.MaxDepth())
}

func TestPresentIsReentrant(t *testing.T) {
	recs := make([]types.ResolvedType, 0, 50)
	for i := 1; i <= 50; i++ {
		next := types.TypeID(i%50 + 1)
		recs = append(recs, types.ResolvedType{ID: types.TypeID(i), Flags: []string{"Object"}, TypeArguments: []types.TypeID{next}, ConstraintType: types.TypeID(i)})
	}
	p := newPresenter(t, recs)

	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 1; i <= 50; i++ {
				n, err := p.Present(types.TypeID(i), 6)
				if !assert.NoError(t, err) {
					return
				}
				assert.Equal(t, 7, Depth(n))
			}
		}(g)
	}
	wg.Wait()
}
