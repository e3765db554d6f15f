package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"tracelens/internal/analysis"
	"tracelens/internal/hotspot"
	"tracelens/internal/limits"
	"tracelens/internal/present"
	"tracelens/internal/relgraph"
	"tracelens/internal/stats"
	"tracelens/internal/types"
)

// Printer renders human-readable reports.
type Printer struct {
	w io.Writer

	head *color.Color
	dim  *color.Color
	sev  map[string]*color.Color
}

// NewPrinter returns a Printer writing to w, colouring output when useColor
// is set.
func NewPrinter(w io.Writer, useColor bool) *Printer {
	p := &Printer{
		w:    w,
		head: color.New(color.Bold),
		dim:  color.New(color.Faint),
		sev: map[string]*color.Color{
			"ERROR":   color.New(color.FgRed, color.Bold),
			"WARNING": color.New(color.FgYellow, color.Bold),
			"INFO":    color.New(color.FgCyan),
		},
	}
	for _, c := range p.colors() {
		if useColor {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return p
}

func (p *Printer) colors() []*color.Color {
	out := []*color.Color{p.head, p.dim}
	for _, c := range p.sev {
		out = append(out, c)
	}
	return out
}

func (p *Printer) printf(format string, args ...any) {
	fmt.Fprintf(p.w, format, args...)
}

func (p *Printer) heading(title string) {
	p.printf("%s\n", p.head.Sprint(title))
}

// Micros formats a duration given in microseconds.
func Micros(us int64) string {
	switch {
	case us < 1000:
		return fmt.Sprintf("%dµs", us)
	case us < 1_000_000:
		return fmt.Sprintf("%.2fms", float64(us)/1e3)
	default:
		return fmt.Sprintf("%.2fs", float64(us)/1e6)
	}
}

func pad(s string, width int) string {
	return runewidth.FillRight(s, width)
}

func padLeft(s string, width int) string {
	return runewidth.FillLeft(s, width)
}

// Validation prints the artifact counts of a successful validation.
func (p *Printer) Validation(events, typeCount int) {
	p.printf("trace: %d events ok\n", events)
	p.printf("types: %d types ok\n", typeCount)
}

// Findings prints one line per finding, with notes indented below when
// notes is set.
func (p *Printer) Findings(findings []analysis.Finding, notes bool) {
	for _, f := range findings {
		sev := strings.ToLower(f.Severity)
		if c, ok := p.sev[f.Severity]; ok {
			sev = c.Sprint(sev)
		}
		p.printf("%s %s %s %s\n", sev, f.Code, f.Subject, f.Message)
		if notes {
			for _, n := range f.Notes {
				p.printf("  %s %s\n", p.dim.Sprint("note"), n)
			}
		}
	}
}

// Relations prints the per-kind relation statistics.
func (p *Printer) Relations(rows []analysis.RelationSummary) {
	width := len("relation")
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Kind))
	}
	p.heading(fmt.Sprintf("%s %8s %6s %7s %6s", pad("relation", width), "count", "max", "maxOut", "maxIn"))
	for _, r := range rows {
		p.printf("%s %8d %6d %7d %6d\n", pad(r.Kind, width), r.Count, r.Max, r.MaxOut, r.MaxIn)
	}
}

// Edges prints the outgoing and incoming edges of one type.
func (p *Printer) Edges(id types.TypeID, out, in []relgraph.Edge) {
	p.heading(fmt.Sprintf("type #%d", id))
	if len(out) == 0 && len(in) == 0 {
		p.printf("  no relations\n")
		return
	}
	for _, e := range out {
		p.printf("  %s -> #%d\n", pad(e.Kind.String(), 28), e.Target)
	}
	for _, e := range in {
		p.printf("  %s <- #%d\n", pad(e.Kind.String(), 28), e.Source)
	}
}

// Ranking prints the types with the largest value for metric. name may be
// nil.
func (p *Printer) Ranking(metric relgraph.Metric, ranked []relgraph.Ranked, name func(types.TypeID) string) {
	p.heading(fmt.Sprintf("top %s", metric))
	for i, r := range ranked {
		label := fmt.Sprintf("#%d", r.ID)
		if name != nil {
			if n := name(r.ID); n != "" && n != label {
				label += " " + n
			}
		}
		p.printf("%3d. %s %s\n", i+1, padLeft(fmt.Sprint(r.Value), 6), label)
	}
}

// Limits prints the hit counts of every kind followed by the worst hits of
// each non-empty kind.
func (p *Printer) Limits(rows []analysis.LimitSummary) {
	width := len("limit")
	for _, r := range rows {
		width = max(width, runewidth.StringWidth(r.Kind))
	}
	p.heading(fmt.Sprintf("%s %6s %9s %5s %8s  %s", pad("limit", width), "hits", "exceeding", "hard", "worst", "metric"))
	for _, r := range rows {
		p.printf("%s %6d %9d %5d %8d  %s\n", pad(r.Kind, width), r.Hits, r.Exceeding, r.HardErrors, r.Worst, p.dim.Sprint(r.Metric))
	}
}

// Hits prints the given hits of one kind.
func (p *Printer) Hits(k limits.Kind, hits []limits.Hit) {
	p.heading(fmt.Sprintf("%s (%d)", k, len(hits)))
	for _, h := range hits {
		sev := h.Severity().String()
		label := strings.ToLower(sev)
		if c, ok := p.sev[sev]; ok {
			label = c.Sprint(label)
		}
		p.printf("  %s trace[%d] ts=%d %s\n", label, h.Index, h.TS, limits.Describe(h))
	}
}

// Tree prints the hotspot tree down to depth levels below the root (0 for
// unlimited), with each node's share of the total.
func (p *Printer) Tree(t *hotspot.Tree, depth int) {
	total := t.Total()
	p.heading(fmt.Sprintf("check time %s across %d files", Micros(total), len(t.Files())))
	var walk func(n *hotspot.Node, level int)
	walk = func(n *hotspot.Node, level int) {
		for _, c := range n.Children {
			share := 0.0
			if total > 0 {
				share = float64(c.Duration) * 100 / float64(total)
			}
			name := c.Name
			if c.IsDir() {
				name += "/"
			}
			p.printf("%s%s %s %s\n", strings.Repeat("  ", level), padLeft(Micros(c.Duration), 10), padLeft(fmt.Sprintf("%.1f%%", share), 6), name)
			if depth <= 0 || level+1 < depth {
				walk(c, level+1)
			}
		}
	}
	walk(t.Root(), 0)
}

// Files prints the slowest files.
func (p *Printer) Files(files []analysis.FileTime) {
	for i, f := range files {
		p.printf("%3d. %s %s\n", i+1, padLeft(Micros(f.Duration), 10), f.Path)
	}
}

// Stats prints a summary of file check durations.
func (p *Printer) Stats(s stats.Summary) {
	p.printf("samples %d  winner %s  median %s  mean %s  stddev %s\n",
		s.Samples, Micros(int64(s.Winner)), Micros(int64(s.Median)), Micros(int64(s.Mean)), Micros(int64(s.StandardDeviation)))
}

// Present prints a presented type tree, one node per line.
func (p *Printer) Present(root *present.Node) {
	p.presentNode(root, "", "")
}

func (p *Printer) presentNode(n *present.Node, field, indent string) {
	prefix := indent
	if field != "" {
		prefix += p.dim.Sprint(field+": ")
	}
	switch n.Kind {
	case present.NodeTruncated:
		p.printf("%s…\n", prefix)
		return
	case present.NodePlaceholder:
		p.printf("%s#%d %s\n", prefix, n.ID, p.dim.Sprint("(unresolved)"))
		return
	}
	line := fmt.Sprintf("%s#%d %s", prefix, n.ID, n.Name)
	for _, l := range n.Labels {
		if l.Field == "flags" {
			line += " " + p.dim.Sprint("["+l.Value+"]")
		}
	}
	p.printf("%s\n", line)
	for _, l := range n.Locations {
		p.printf("%s  %s %s\n", indent, p.dim.Sprint(l.Field+":"), l.Value)
	}
	if len(n.SelfRefs) > 0 {
		p.printf("%s  %s %s\n", indent, p.dim.Sprint("self:"), strings.Join(n.SelfRefs, ", "))
	}
	for _, c := range n.Children {
		p.presentNode(c.Node, c.Field, indent+"  ")
	}
}

// Summary prints the digest of a whole run.
func (p *Printer) Summary(s *analysis.Summary, notes bool) {
	p.printf("%s %s\n", p.head.Sprint("run"), s.RunID)
	p.Validation(s.Events, s.Types)
	p.printf("\n")
	p.Relations(s.Relations)
	p.printf("\n")
	p.Limits(s.Limits)
	p.printf("\n")
	p.heading(fmt.Sprintf("check time %s across %d files (%d excluded)", Micros(s.Hotspots.Total), s.Hotspots.Files, s.Hotspots.Excluded))
	p.Stats(s.Hotspots.Stats)
	p.Files(s.Hotspots.Top)
	p.printf("\n")
	p.printf("spans %d  unmatched %d  unterminated %d\n", s.Spans.Spans, s.Spans.Unmatched, s.Spans.Unterminated)
	if len(s.Findings) > 0 {
		p.printf("\n")
		p.Findings(s.Findings, notes)
	}
	if s.Dropped > 0 {
		p.printf("%s\n", p.dim.Sprintf("%d more findings not shown", s.Dropped))
	}
}
