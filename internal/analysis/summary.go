package analysis

import (
	"fmt"

	"github.com/vmihailenco/msgpack/v5"

	"tracelens/internal/diag"
	"tracelens/internal/limits"
	"tracelens/internal/stats"
	"tracelens/internal/types"
)

// Summary is the serializable digest of a run. It is what `analyze` prints
// and what the disk cache stores.
type Summary struct {
	RunID     string            `json:"runId" yaml:"runId"`
	Events    int               `json:"events" yaml:"events"`
	Types     int               `json:"types" yaml:"types"`
	Relations []RelationSummary `json:"relations" yaml:"relations"`
	Limits    []LimitSummary    `json:"limits" yaml:"limits"`
	Hotspots  HotspotSummary    `json:"hotspots" yaml:"hotspots"`
	Spans     SpanSummary       `json:"spans" yaml:"spans"`
	Findings  []Finding         `json:"findings" yaml:"findings"`
	Dropped   int               `json:"droppedFindings,omitempty" yaml:"droppedFindings,omitempty"`
}

type RelationSummary struct {
	Kind   string `json:"kind" yaml:"kind"`
	Count  int    `json:"count" yaml:"count"`
	Max    int    `json:"max" yaml:"max"`
	MaxOut int    `json:"maxOut" yaml:"maxOut"`
	MaxIn  int    `json:"maxIn" yaml:"maxIn"`
}

type LimitSummary struct {
	Kind       string `json:"kind" yaml:"kind"`
	Metric     string `json:"metric" yaml:"metric"`
	Hits       int    `json:"hits" yaml:"hits"`
	Exceeding  int    `json:"exceeding" yaml:"exceeding"`
	HardErrors int    `json:"hardErrors" yaml:"hardErrors"`
	Worst      int64  `json:"worst" yaml:"worst"`
}

type HotspotSummary struct {
	Total    int64         `json:"total" yaml:"total"` // microseconds
	Files    int           `json:"files" yaml:"files"`
	Excluded int           `json:"excluded" yaml:"excluded"`
	Stats    stats.Summary `json:"stats" yaml:"stats"`
	Top      []FileTime    `json:"top" yaml:"top"`
}

type FileTime struct {
	Path     string `json:"path" yaml:"path"`
	Duration int64  `json:"duration" yaml:"duration"`
}

type SpanSummary struct {
	Spans        int `json:"spans" yaml:"spans"`
	Unmatched    int `json:"unmatched" yaml:"unmatched"`
	Unterminated int `json:"unterminated" yaml:"unterminated"`
}

// Finding is a flattened diag.Diagnostic.
type Finding struct {
	Severity string   `json:"severity" yaml:"severity"`
	Code     string   `json:"code" yaml:"code"`
	Subject  string   `json:"subject" yaml:"subject"`
	Message  string   `json:"message" yaml:"message"`
	Notes    []string `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// Summarize digests r, keeping at most top hotspot files.
func (r *Result) Summarize(top int) Summary {
	s := Summary{
		RunID:  r.ID.String(),
		Events: len(r.Events),
		Types:  r.Catalog.Len(),
		Spans: SpanSummary{
			Spans:        len(r.Spans),
			Unmatched:    r.SpanStats.Unmatched,
			Unterminated: r.SpanStats.Unterminated,
		},
		Findings: []Finding{},
	}

	for _, k := range types.AllRelations() {
		st := r.Graph.Stat(k)
		s.Relations = append(s.Relations, RelationSummary{
			Kind:   k.String(),
			Count:  st.Count,
			Max:    st.Max,
			MaxOut: st.MaxOut,
			MaxIn:  st.MaxIn,
		})
	}

	for _, k := range limits.Kinds() {
		ls := LimitSummary{Kind: k.String(), Metric: k.MetricName()}
		for i, h := range r.Limits.Hits(k) {
			ls.Hits++
			if h.Exceeds {
				ls.Exceeding++
				if h.HardError {
					ls.HardErrors++
				}
			}
			if i == 0 || h.Metric > ls.Worst {
				ls.Worst = h.Metric
			}
		}
		s.Limits = append(s.Limits, ls)
	}

	files := r.Hotspots.Files()
	s.Hotspots = HotspotSummary{
		Total:    r.Hotspots.Total(),
		Files:    len(files),
		Excluded: r.Hotspots.Excluded(),
		Stats:    r.FileStats,
		Top:      []FileTime{},
	}
	for i, f := range files {
		if top > 0 && i >= top {
			break
		}
		s.Hotspots.Top = append(s.Hotspots.Top, FileTime{Path: f.Path, Duration: f.Self})
	}

	for _, d := range r.Diagnostics.Items() {
		s.Findings = append(s.Findings, Flatten(d))
	}
	s.Dropped = r.Diagnostics.Dropped()
	return s
}

// Flatten converts a diagnostic into its serializable form.
func Flatten(d diag.Diagnostic) Finding {
	f := Finding{
		Severity: d.Severity.String(),
		Code:     d.Code.ID(),
		Subject:  d.Primary.String(),
		Message:  d.Message,
	}
	for _, n := range d.Notes {
		f.Notes = append(f.Notes, fmt.Sprintf("%s: %s", n.Subject, n.Msg))
	}
	return f
}

// HasErrors reports whether any finding has error severity.
func (s *Summary) HasErrors() bool {
	for _, f := range s.Findings {
		if f.Severity == diag.SevError.String() {
			return true
		}
	}
	return false
}

// Fingerprint encodes every option that changes a Summary, for use as part
// of a cache key.
func Fingerprint(opts Options, top int) ([]byte, error) {
	policy := opts.policy()
	rules := make([]limits.Rule, 0, limits.NumKinds)
	for _, k := range limits.Kinds() {
		rules = append(rules, policy.Rule(k))
	}
	b, err := msgpack.Marshal(struct {
		Rules     []limits.Rule
		Exclude   []string
		DiagLimit int
		Top       int
	}{rules, opts.Hotspots.Exclude, opts.DiagLimit, top})
	if err != nil {
		return nil, fmt.Errorf("encode fingerprint: %w", err)
	}
	return b, nil
}
