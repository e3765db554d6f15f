package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"tracelens/internal/analysis"
	"tracelens/internal/diag"
	"tracelens/internal/limits"
	"tracelens/internal/report"
)

var limitsCmd = &cobra.Command{
	Use:   "limits [flags] <dir>",
	Short: "List depth-limit hits",
	Long: `Limits classifies the depth-limit events of trace.json by kind, in trace order,
and grades each hit against the thresholds in tracelens.toml. The command
exits with status 1 when a hit is graded as an error, or as a warning with
--strict.`,
	Args: cobra.ExactArgs(1),
	RunE: runLimits,
}

func init() {
	limitsCmd.Flags().String("format", "text", "output format (text|json|yaml)")
	limitsCmd.Flags().String("kind", "", "restrict to one depth-limit kind (e.g. instantiateType)")
	limitsCmd.Flags().Int("worst", 5, "hits shown per kind, worst first (0 = all, in trace order)")
	limitsCmd.Flags().Bool("strict", false, "exit with status 1 on warnings too")
}

// kindReporter forwards the findings of the selected kinds only.
type kindReporter struct {
	codes map[diag.Code]bool
	next  diag.Reporter
}

func (r kindReporter) Report(code diag.Code, sev diag.Severity, primary diag.Subject, msg string, notes []diag.Note) {
	if r.codes[code] {
		r.next.Report(code, sev, primary, msg, notes)
	}
}

type kindHits struct {
	Kind string       `json:"kind"`
	Hits []limits.Hit `json:"hits"`
}

type limitsJSON struct {
	Limits []analysis.LimitSummary `json:"limits"`
	Hits   []kindHits              `json:"hits"`
}

func runLimits(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd)
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	kindStr, err := cmd.Flags().GetString("kind")
	if err != nil {
		return fmt.Errorf("failed to get kind flag: %w", err)
	}
	worst, err := cmd.Flags().GetInt("worst")
	if err != nil {
		return fmt.Errorf("failed to get worst flag: %w", err)
	}
	strict, err := cmd.Flags().GetBool("strict")
	if err != nil {
		return fmt.Errorf("failed to get strict flag: %w", err)
	}

	selected := limits.Kinds()
	if kindStr != "" {
		k, err := limits.ParseKind(kindStr)
		if err != nil {
			return err
		}
		selected = []limits.Kind{k}
	}

	res, err := runDir(cmd, env, args[0], env.analysisOptions())
	if err != nil {
		return err
	}
	defer env.finish(cmd)

	summary := res.Summarize(0)
	out := limitsJSON{Hits: []kindHits{}}
	codes := make(map[diag.Code]bool, len(selected))
	for _, k := range selected {
		codes[k.Code()] = true
		out.Limits = append(out.Limits, summary.Limits[k])
		hits := res.Limits.Hits(k)
		if worst > 0 {
			hits = res.Limits.Worst(k, worst)
		}
		if len(hits) > 0 {
			out.Hits = append(out.Hits, kindHits{Kind: k.String(), Hits: hits})
		}
	}
	findings := diag.NewBag(0)
	res.Limits.Report(kindReporter{codes: codes, next: diag.BagReporter{Bag: findings}})
	if findings.HasErrors() || (strict && findings.HasWarnings()) {
		exitCode = 1
	}
	env.log.Debug("limit findings", "errors", findings.Count(diag.SevError), "warnings", findings.Count(diag.SevWarning))

	if format != report.FormatText {
		return report.Encode(cmd.OutOrStdout(), format, out)
	}
	p := env.printer(cmd)
	p.Limits(out.Limits)
	for _, kh := range out.Hits {
		k, _ := limits.ParseKind(kh.Kind)
		fmt.Fprintln(cmd.OutOrStdout())
		p.Hits(k, kh.Hits)
	}
	return nil
}
