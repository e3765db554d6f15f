// Package hotspot attributes file check time to directories.
//
// Every checkSourceFile span contributes its duration to the file and to
// each of its ancestor directories, root to leaf. Both complete records and
// paired begin/end records are counted.
package hotspot

import (
	"sort"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"golang.org/x/text/unicode/norm"

	"tracelens/internal/trace"
)

// Options controls which files are aggregated.
type Options struct {
	// Exclude holds doublestar patterns matched against the normalized path
	// (see Normalize). Invalid patterns match nothing.
	Exclude []string
}

// Node is a directory or file of the hotspot tree, keyed by its normalized
// path. A path checked as a file that also prefixes other files is both.
// Durations are in microseconds.
type Node struct {
	Name     string  `json:"name" yaml:"name"`
	Path     string  `json:"path" yaml:"path"`
	Duration int64   `json:"duration" yaml:"duration"`
	// Self is the check time of the file itself, without descendants.
	Self     int64   `json:"self,omitempty" yaml:"self,omitempty"`
	File     bool    `json:"file,omitempty" yaml:"file,omitempty"`
	Files    int     `json:"files" yaml:"files"`
	Children []*Node `json:"children,omitempty" yaml:"children,omitempty"`

	byName map[string]*Node
	first  int // order of first contribution, for stable ties
}

// IsFile reports whether n was checked as a file.
func (n *Node) IsFile() bool { return n.File }

// IsDir reports whether other files live below n.
func (n *Node) IsDir() bool { return len(n.Children) > 0 }

func (n *Node) child(name, path string, seq int) *Node {
	if c, ok := n.byName[name]; ok {
		return c
	}
	c := &Node{Name: name, Path: path, first: seq}
	if n.byName == nil {
		n.byName = make(map[string]*Node)
	}
	n.byName[name] = c
	n.Children = append(n.Children, c)
	return c
}

// Tree is the hotspot breakdown of one trace.
type Tree struct {
	root     *Node
	files    []*Node
	excluded int
}

// Aggregate builds the tree from the file check spans of events.
func Aggregate(events []trace.Event, opts Options) *Tree {
	t := &Tree{root: &Node{}}
	spans, _ := trace.Pair(events)
	seq := 0
	for _, sp := range spans {
		if sp.Variant != trace.VarCheckSourceFile {
			continue
		}
		args, ok := sp.Args.(*trace.PathArgs)
		if !ok {
			continue
		}
		path := Normalize(args.Path)
		if excluded(opts.Exclude, path) {
			t.excluded++
			continue
		}
		t.add(path, sp.Dur, seq)
		seq++
	}
	sortNodes(t.root)
	t.collectFiles()
	return t
}

func (t *Tree) add(path string, dur int64, seq int) {
	segs := segments(path)
	if len(segs) == 0 {
		return
	}

	n := t.root
	n.Duration += dur
	for i, seg := range segs {
		n = n.child(seg, strings.Join(segs[:i+1], "/"), seq)
		n.Duration += dur
	}
	n.Self += dur
	if !n.File {
		n.File = true
		c := t.root
		c.Files++
		for _, seg := range segs {
			c = c.byName[seg]
			c.Files++
		}
	}
}

// sortNodes orders children by duration, longest first, then by first
// appearance in the trace.
func sortNodes(n *Node) {
	sort.SliceStable(n.Children, func(i, j int) bool {
		a, b := n.Children[i], n.Children[j]
		if a.Duration != b.Duration {
			return a.Duration > b.Duration
		}
		return a.first < b.first
	})
	for _, c := range n.Children {
		sortNodes(c)
	}
}

func (t *Tree) collectFiles() {
	var walk func(*Node)
	walk = func(n *Node) {
		if n.File {
			t.files = append(t.files, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(t.root)
	sort.SliceStable(t.files, func(i, j int) bool {
		a, b := t.files[i], t.files[j]
		if a.Self != b.Self {
			return a.Self > b.Self
		}
		return a.first < b.first
	})
}

// Root returns the root node; its duration is the total check time.
func (t *Tree) Root() *Node { return t.root }

// Total returns the summed check time in microseconds.
func (t *Tree) Total() int64 { return t.root.Duration }

// Excluded returns how many spans were dropped by exclude patterns.
func (t *Tree) Excluded() int { return t.excluded }

// Files returns the checked files ranked by their own check time, longest
// first. The slice is shared and must not be modified.
func (t *Tree) Files() []*Node { return t.files }

// Durations returns the per-file check times in Files order, for
// summarising.
func (t *Tree) Durations() []float64 {
	out := make([]float64, len(t.files))
	for i, f := range t.files {
		out[i] = float64(f.Self)
	}
	return out
}

// Find returns the node at path, or nil.
func (t *Tree) Find(path string) *Node {
	n := t.root
	for _, seg := range segments(path) {
		n = n.byName[seg]
		if n == nil {
			return nil
		}
	}
	return n
}

// Prune returns a copy of n keeping depth levels of descendants. A depth
// of 0 or less copies the whole subtree.
func Prune(n *Node, depth int) *Node {
	c := &Node{Name: n.Name, Path: n.Path, Duration: n.Duration, Self: n.Self, File: n.File, Files: n.Files}
	if depth == 1 {
		return c
	}
	for _, ch := range n.Children {
		c.Children = append(c.Children, Prune(ch, depth-1))
	}
	return c
}

// Normalize converts path to the key nodes are stored under: NFC, forward
// slashes, no leading slash and no empty segments. "/a/b.ts", "a//b.ts" and
// `\a\b.ts` all become "a/b.ts".
func Normalize(path string) string {
	return strings.Join(segments(path), "/")
}

func segments(path string) []string {
	path = norm.NFC.String(strings.ReplaceAll(path, `\`, "/"))
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}

func excluded(patterns []string, rel string) bool {
	for _, p := range patterns {
		p = strings.TrimPrefix(p, "/")
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
		if !strings.HasSuffix(p, "/**") {
			if ok, _ := doublestar.Match(p+"/**", rel); ok {
				return true
			}
		}
	}
	return false
}

// ValidatePatterns reports the first pattern doublestar cannot parse.
func ValidatePatterns(patterns []string) (string, bool) {
	for _, p := range patterns {
		if !doublestar.ValidatePattern(strings.TrimPrefix(p, "/")) {
			return p, false
		}
	}
	return "", true
}
