package hotspot

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracelens/internal/stats"
	"tracelens/internal/trace"
)

func check(index int, kind trace.Kind, ts, dur int64, path string) trace.Event {
	ev := trace.Event{
		Index:   index,
		Variant: trace.VarCheckSourceFile,
		Kind:    kind,
		Phase:   trace.PhaseCheck,
		PID:     1,
		TID:     1,
		TS:      ts,
		Dur:     dur,
	}
	if path != "" {
		ev.Args = &trace.PathArgs{Path: path}
	}
	return ev
}

func sampleEvents() []trace.Event {
	return []trace.Event{
		check(0, trace.KindComplete, 10, 40, "/p/src/a.ts"),
		check(1, trace.KindComplete, 60, 10, "/p/src/b.ts"),
		check(2, trace.KindBegin, 100, 0, "/p/lib/c.ts"),
		check(3, trace.KindEnd, 130, 0, ""),
		check(4, trace.KindComplete, 200, 20, "/p/node_modules/x/index.d.ts"),
		{Index: 5, Variant: trace.VarBindSourceFile, Kind: trace.KindComplete, TS: 300, Dur: 999, PID: 1, TID: 1, Args: &trace.PathArgs{Path: "/p/src/a.ts"}},
	}
}

func TestAggregateAttributesToAncestors(t *testing.T) {
	tree := Aggregate(sampleEvents(), Options{})

	assert.Equal(t, int64(100), tree.Total())
	p := tree.Find("/p")
	require.NotNil(t, p)
	assert.Equal(t, int64(100), p.Duration)
	assert.Equal(t, 4, p.Files)

	src := tree.Find("/p/src")
	require.NotNil(t, src)
	assert.Equal(t, int64(50), src.Duration)
	assert.Equal(t, "p/src", src.Path)
	assert.Equal(t, []string{"a.ts", "b.ts"}, names(src.Children))

	lib := tree.Find("/p/lib/c.ts")
	require.NotNil(t, lib)
	assert.Equal(t, int64(30), lib.Duration, "paired begin/end span")
	assert.True(t, lib.IsFile())

	assert.Equal(t, []string{"src", "lib", "node_modules"}, names(p.Children))
	assert.Nil(t, tree.Find("/p/missing"))
}

func TestAggregateExclude(t *testing.T) {
	tree := Aggregate(sampleEvents(), Options{Exclude: []string{"**/node_modules"}})
	assert.Equal(t, 1, tree.Excluded())
	assert.Equal(t, int64(80), tree.Total())
	assert.Nil(t, tree.Find("/p/node_modules"))

	tree = Aggregate(sampleEvents(), Options{Exclude: []string{"/p/src/*.ts"}})
	assert.Equal(t, 2, tree.Excluded())
}

func TestFilesRankedAndSummarised(t *testing.T) {
	tree := Aggregate(sampleEvents(), Options{})
	files := tree.Files()
	require.Len(t, files, 4)
	assert.Equal(t, "p/src/a.ts", files[0].Path)
	assert.Equal(t, "p/src/b.ts", files[3].Path)

	s := stats.Summarize(tree.Durations())
	assert.Equal(t, 40.0, s.Winner)
	assert.Equal(t, 25.0, s.Median)
	assert.Equal(t, 4, s.Samples)
}

func TestRepeatedChecksAccumulate(t *testing.T) {
	tree := Aggregate([]trace.Event{
		check(0, trace.KindComplete, 10, 5, "src/a.ts"),
		check(1, trace.KindComplete, 20, 7, "src/a.ts"),
	}, Options{})
	a := tree.Find("src/a.ts")
	require.NotNil(t, a)
	assert.Equal(t, int64(12), a.Duration)
	assert.Equal(t, 1, tree.Root().Files)
	assert.Equal(t, "src/a.ts", a.Path)
}

func TestAbsoluteAndRelativePathsShareANode(t *testing.T) {
	tree := Aggregate([]trace.Event{
		check(0, trace.KindComplete, 10, 5, "a/b.ts"),
		check(1, trace.KindComplete, 20, 7, "/a/b.ts"),
	}, Options{})
	require.Len(t, tree.Files(), 1)
	f := tree.Files()[0]
	assert.Equal(t, "a/b.ts", f.Path)
	assert.Equal(t, int64(12), f.Self)
	assert.Same(t, f, tree.Find("/a/b.ts"))
}

func TestFileThatPrefixesAnotherFile(t *testing.T) {
	tree := Aggregate([]trace.Event{
		check(0, trace.KindComplete, 10, 30, "/p/a"),
		check(1, trace.KindComplete, 50, 10, "/p/a/b.ts"),
	}, Options{})

	files := tree.Files()
	require.Len(t, files, 2)
	assert.Equal(t, "p/a", files[0].Path)
	assert.Equal(t, int64(30), files[0].Self)
	assert.Equal(t, int64(40), files[0].Duration, "includes the file below it")
	assert.True(t, files[0].IsFile())
	assert.True(t, files[0].IsDir())
	assert.Equal(t, []float64{30, 10}, tree.Durations())
	assert.Equal(t, 2, tree.Root().Files)
	assert.Equal(t, 2, tree.Find("p/a").Files)
}

func TestNormalizeComposesUnicode(t *testing.T) {
	decomposed := "/p/cafe\u0301.ts"
	composed := "p/caf\u00e9.ts"
	tree := Aggregate([]trace.Event{
		check(0, trace.KindComplete, 10, 5, decomposed),
		check(1, trace.KindComplete, 20, 5, composed),
	}, Options{})
	require.Len(t, tree.Files(), 1)
	assert.Equal(t, composed, tree.Files()[0].Path)
	assert.Equal(t, "p/a/b.ts", Normalize(`\p\a\b.ts`))
	assert.Equal(t, "p/a/b.ts", Normalize("/p//a/b.ts"))
}

func TestValidatePatterns(t *testing.T) {
	_, ok := ValidatePatterns([]string{"**/*.d.ts", "/abs/**"})
	assert.True(t, ok)
	bad, ok := ValidatePatterns([]string{"src/**", "[a-"})
	assert.False(t, ok)
	assert.Equal(t, "[a-", bad)
}

func names(nodes []*Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func TestPruneCopiesToDepth(t *testing.T) {
	tree := Aggregate(sampleEvents(), Options{})
	top := Prune(tree.Root(), 1)
	assert.Empty(t, top.Children)
	assert.Equal(t, tree.Total(), top.Duration)

	two := Prune(tree.Root(), 2)
	require.Len(t, two.Children, len(tree.Root().Children))
	for _, c := range two.Children {
		assert.Empty(t, c.Children)
	}

	full := Prune(tree.Root(), 0)
	assert.Equal(t, len(tree.Files()), countFiles(full))
}

func countFiles(n *Node) int {
	total := 0
	if n.IsFile() {
		total++
	}
	for _, c := range n.Children {
		total += countFiles(c)
	}
	return total
}
