package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"tracelens/internal/analysis"
	"tracelens/internal/diag"
	"tracelens/internal/report"
	"tracelens/internal/trace"
	"tracelens/internal/types"
)

var validateCmd = &cobra.Command{
	Use:   "validate [flags] <dir|trace.json|types.json>",
	Short: "Validate trace and type artifacts",
	Long: `Validate runs the strict schema checks on trace.json and types.json (or on the
single artifact given) and reports the first offending record of each.`,
	Args: cobra.ExactArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().String("format", "text", "output format (text|json|yaml)")
}

type artifactStatus struct {
	Path    string            `json:"path"`
	Records int               `json:"records"`
	Error   *analysis.Finding `json:"error,omitempty"`
}

type validationReport struct {
	Trace *artifactStatus `json:"trace,omitempty"`
	Types *artifactStatus `json:"types,omitempty"`
}

func (r validationReport) failed() bool {
	return (r.Trace != nil && r.Trace.Error != nil) || (r.Types != nil && r.Types.Error != nil)
}

func runValidate(cmd *cobra.Command, args []string) error {
	env := envFrom(cmd)
	format, err := formatFlag(cmd)
	if err != nil {
		return err
	}
	paths, err := resolveArtifacts(args[0], env.cfg)
	if err != nil {
		return err
	}
	traceData, typesData, err := readArtifacts(paths)
	if err != nil {
		return err
	}

	var (
		rep   validationReport
		diags []diag.Diagnostic
	)
	check := func(path string, decode func() (int, error)) (*artifactStatus, error) {
		st := &artifactStatus{Path: path}
		n, err := decode()
		if err == nil {
			st.Records = n
			return st, nil
		}
		d, ok := analysis.SchemaDiagnostic(err)
		if !ok {
			return nil, err
		}
		diags = append(diags, d)
		finding := analysis.Flatten(d)
		st.Error = &finding
		return st, nil
	}
	if paths.trace != "" {
		idx := env.timer.Begin("validate trace")
		rep.Trace, err = check(paths.trace, func() (int, error) {
			events, err := trace.Decode(traceData)
			return len(events), err
		})
		env.timer.End(idx, "")
		if err != nil {
			return err
		}
	}
	if paths.types != "" {
		idx := env.timer.Begin("validate types")
		rep.Types, err = check(paths.types, func() (int, error) {
			c, err := types.Decode(typesData)
			if err != nil {
				return 0, err
			}
			return c.Len(), nil
		})
		env.timer.End(idx, "")
		if err != nil {
			return err
		}
	}
	defer env.finish(cmd)

	if format != report.FormatText {
		if err := report.Encode(cmd.OutOrStdout(), format, rep); err != nil {
			return err
		}
	} else {
		out := cmd.OutOrStdout()
		if len(diags) > 0 {
			fmt.Fprint(cmd.ErrOrStderr(), diag.FormatShort(diags, false))
		}
		if !env.quiet {
			for _, st := range []*artifactStatus{rep.Trace, rep.Types} {
				if st != nil && st.Error == nil {
					fmt.Fprintf(out, "%s: %d records ok\n", st.Path, st.Records)
				}
			}
		}
	}
	if rep.failed() {
		return errors.New("validation failed")
	}
	return nil
}
