package analysis

import (
	"errors"
	"fmt"

	"tracelens/internal/diag"
	"tracelens/internal/relgraph"
	"tracelens/internal/schema"
	"tracelens/internal/trace"
	"tracelens/internal/types"
)

func collectFindings(res *Result, limit int) *diag.Bag {
	bag := diag.NewBag(limit)
	rep := diag.NewDedupReporter(diag.BagReporter{Bag: bag})

	res.Limits.Report(rep)
	reportDangling(rep, res.Graph)
	reportSpans(rep, res.SpanStats, len(res.Hotspots.Files()))

	bag.Sort()
	return bag
}

// reportDangling flags relations whose target is not in the catalog. The
// sentinel is expected in real catalogs and is only informational.
func reportDangling(r diag.Reporter, g *relgraph.Graph) {
	for _, e := range g.Dangling() {
		pos, _ := g.Position(e.Source)
		sub := diag.Subject{Artifact: types.ArtifactName, Index: pos}
		if e.Target == types.SentinelTypeID {
			diag.ReportInfo(r, diag.GrfSentinelReference, sub,
				fmt.Sprintf("%s of #%d refers to the sentinel type", e.Kind, e.Source)).Emit()
			continue
		}
		diag.ReportWarning(r, diag.GrfDanglingReference, sub,
			fmt.Sprintf("%s of #%d refers to unknown type #%d", e.Kind, e.Source, e.Target)).Emit()
	}
}

func reportSpans(r diag.Reporter, st trace.PairStats, files int) {
	sub := diag.Subject{Artifact: trace.ArtifactName, Index: -1}
	if st.Unmatched > 0 {
		diag.ReportWarning(r, diag.TrcUnmatchedEnd, sub,
			fmt.Sprintf("%d end records had no open begin", st.Unmatched)).Emit()
	}
	if st.Unterminated > 0 {
		diag.ReportWarning(r, diag.TrcUnterminated, sub,
			fmt.Sprintf("%d begin records were never closed", st.Unterminated)).Emit()
	}
	if files == 0 {
		diag.ReportInfo(r, diag.TrcNoCheckSpans, sub, "no checkSourceFile spans, hotspot tree is empty").Emit()
	}
}

// SchemaDiagnostic converts a validation failure into a finding. It returns
// false when err does not carry a *schema.Error.
func SchemaDiagnostic(err error) (diag.Diagnostic, bool) {
	var se *schema.Error
	if !errors.As(err, &se) {
		return diag.Diagnostic{}, false
	}
	code := diag.SchTraceInvalid
	switch {
	case se.Reason == schema.ReasonDuplicateID:
		code = diag.SchDuplicateType
	case se.Artifact == types.ArtifactName:
		code = diag.SchTypesInvalid
	}

	msg := se.Reason.String()
	if se.Field != "" {
		msg = se.Field + ": " + msg
	}
	if se.Detail != "" {
		msg += ": " + se.Detail
	}
	if se.Tag != "" {
		msg = "(" + se.Tag + ") " + msg
	}
	return diag.NewError(code, diag.Subject{Artifact: se.Artifact, Index: se.Index}, msg), true
}
