// Package present renders a type and what it references as a bounded tree.
//
// The relation graph may contain self references and cycles of any length.
// The walk elides direct self references and cuts every branch at a fixed
// depth, leaving a truncation marker, so it always terminates.
package present

import (
	"errors"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"tracelens/internal/relgraph"
	"tracelens/internal/types"
)

const (
	// DefaultMaxDepth bounds the walk when the caller does not.
	DefaultMaxDepth = 10
	// MaxDepthLimit is the largest bound a caller may ask for.
	MaxDepthLimit = 64

	defaultCacheSize = 4096
)

// ErrDepthOutOfRange is returned for depth bounds above MaxDepthLimit.
var ErrDepthOutOfRange = errors.New("depth bound out of range")

// Lookup resolves a type identifier to its record. *types.Catalog
// implements it.
type Lookup interface {
	Lookup(id types.TypeID) (*types.ResolvedType, bool)
}

// NodeKind tells resolved types apart from the markers the walk emits.
type NodeKind uint8

const (
	NodeType        NodeKind = iota // a resolved type
	NodePlaceholder                 // id 0 or an id missing from the catalog
	NodeTruncated                   // depth bound reached
)

func (k NodeKind) String() string {
	switch k {
	case NodeType:
		return "type"
	case NodePlaceholder:
		return "placeholder"
	case NodeTruncated:
		return "truncated"
	}
	return fmt.Sprintf("NodeKind(%d)", k)
}

func (k NodeKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Label is a named display value.
type Label struct {
	Field string `json:"field" yaml:"field"`
	Value string `json:"value" yaml:"value"`
}

// Child is an edge of the presented tree.
type Child struct {
	Field string `json:"field" yaml:"field"`
	Node  *Node  `json:"node" yaml:"node"`
}

// Node is one entry of the presented tree. Subtrees may be shared between
// parents; treat them as read-only.
type Node struct {
	Kind      NodeKind     `json:"kind" yaml:"kind"`
	ID        types.TypeID `json:"id" yaml:"id"`
	Name      string       `json:"name,omitempty" yaml:"name,omitempty"`
	Labels    []Label      `json:"labels,omitempty" yaml:"labels,omitempty"`
	Locations []Label      `json:"locations,omitempty" yaml:"locations,omitempty"`
	Children  []Child      `json:"children,omitempty" yaml:"children,omitempty"`
	// SelfRefs lists the fields that pointed back at this node and were not
	// followed.
	SelfRefs []string `json:"selfRefs,omitempty" yaml:"selfRefs,omitempty"`
}

// Options configures a Presenter.
type Options struct {
	// MaxDepth is used when Present is called with maxDepth <= 0.
	MaxDepth int
	// CacheSize bounds the number of memoised subtrees.
	CacheSize int
}

type memoKey struct {
	id     types.TypeID
	budget int
}

// Presenter walks an immutable graph. It is safe for concurrent use.
type Presenter struct {
	graph  *relgraph.Graph
	lookup Lookup
	depth  int
	memo   *lru.Cache[memoKey, *Node]
}

// New returns a presenter over graph, resolving records through lookup.
func New(graph *relgraph.Graph, lookup Lookup, opts Options) (*Presenter, error) {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	if opts.MaxDepth > MaxDepthLimit {
		return nil, fmt.Errorf("%w: default %d > %d", ErrDepthOutOfRange, opts.MaxDepth, MaxDepthLimit)
	}
	if opts.CacheSize <= 0 {
		opts.CacheSize = defaultCacheSize
	}
	memo, err := lru.New[memoKey, *Node](opts.CacheSize)
	if err != nil {
		return nil, fmt.Errorf("create presenter cache: %w", err)
	}
	return &Presenter{graph: graph, lookup: lookup, depth: opts.MaxDepth, memo: memo}, nil
}

// MaxDepth returns the default depth bound.
func (p *Presenter) MaxDepth() int { return p.depth }

// Present returns the tree rooted at id. Nodes at depth maxDepth are
// replaced by truncation markers; maxDepth <= 0 selects the default bound.
func (p *Presenter) Present(id types.TypeID, maxDepth int) (*Node, error) {
	if maxDepth <= 0 {
		maxDepth = p.depth
	}
	if maxDepth > MaxDepthLimit {
		return nil, fmt.Errorf("%w: %d > %d", ErrDepthOutOfRange, maxDepth, MaxDepthLimit)
	}
	return p.walk(id, maxDepth), nil
}

// walk presents id with budget levels left, the root counting as one.
func (p *Presenter) walk(id types.TypeID, budget int) *Node {
	if budget <= 0 {
		return &Node{Kind: NodeTruncated, ID: id}
	}
	if id == types.NoTypeID {
		return &Node{Kind: NodePlaceholder, ID: id}
	}
	rec, ok := p.lookup.Lookup(id)
	if !ok {
		return &Node{Kind: NodePlaceholder, ID: id}
	}
	key := memoKey{id: id, budget: budget}
	if n, ok := p.memo.Get(key); ok {
		return n
	}

	n := &Node{Kind: NodeType, ID: id, Name: rec.Name()}
	for _, f := range fieldTable {
		switch f.Kind {
		case FieldIgnore:
		case FieldDisplay:
			if v := displayValue(rec, f.Name); v != "" {
				n.Labels = append(n.Labels, Label{Field: f.Name, Value: v})
			}
		case FieldLocation:
			if loc := locationValue(rec, f.Name); loc != nil {
				n.Locations = append(n.Locations, Label{Field: f.Name, Value: loc.String()})
			}
		case FieldSingle, FieldList:
			for _, target := range p.graph.Targets(id, f.Relation) {
				if target == id {
					n.SelfRefs = append(n.SelfRefs, f.Name)
					continue
				}
				n.Children = append(n.Children, Child{Field: f.Name, Node: p.walk(target, budget-1)})
			}
		default:
			panic(fmt.Sprintf("present: field %q has kind %s", f.Name, f.Kind))
		}
	}
	p.memo.Add(key, n)
	return n
}

// Depth returns the number of levels of n, markers included.
func Depth(n *Node) int {
	if n == nil {
		return 0
	}
	d := 0
	for _, c := range n.Children {
		d = max(d, Depth(c.Node))
	}
	return d + 1
}

// Walk calls fn for n and each descendant, depth first, with its depth.
func Walk(n *Node, fn func(n *Node, depth int)) {
	var rec func(*Node, int)
	rec = func(n *Node, d int) {
		fn(n, d)
		for _, c := range n.Children {
			rec(c.Node, d+1)
		}
	}
	if n != nil {
		rec(n, 0)
	}
}
