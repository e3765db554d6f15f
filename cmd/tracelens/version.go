package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"tracelens/internal/report"
	"tracelens/internal/version"
)

type versionInfo struct {
	Tool          string `json:"tool"`
	Version       string `json:"version"`
	SchemaVersion string `json:"schema_version"`
	GitCommit     string `json:"git_commit,omitempty"`
	BuildDate     string `json:"build_date,omitempty"`
}

var (
	versionFormat   string
	versionShowHash bool
	versionShowDate bool
	versionShowFull bool
)

func init() {
	versionCmd.Flags().BoolVar(&versionShowHash, "hash", false, "include git commit hash")
	versionCmd.Flags().BoolVar(&versionShowDate, "date", false, "include build timestamp")
	versionCmd.Flags().BoolVar(&versionShowFull, "full", false, "show every recorded bit of build metadata")
	versionCmd.Flags().StringVar(&versionFormat, "format", "text", "output format (text|json|yaml)")
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show tracelens build metadata",
	RunE: func(cmd *cobra.Command, args []string) error {
		format, err := report.ParseFormat(versionFormat)
		if err != nil {
			return err
		}
		showHash := versionShowHash || versionShowFull
		showDate := versionShowDate || versionShowFull

		info := collectVersionInfo(showHash, showDate)
		if format != report.FormatText {
			return report.Encode(cmd.OutOrStdout(), format, info)
		}
		renderVersionPretty(cmd.OutOrStdout(), info, showHash, showDate)
		return nil
	},
}

func collectVersionInfo(showHash, showDate bool) versionInfo {
	v := strings.TrimSpace(version.Version)
	if v == "" {
		v = "dev"
	}
	info := versionInfo{
		Tool:          version.Tool,
		Version:       v,
		SchemaVersion: version.SchemaVersion,
	}
	if showHash {
		info.GitCommit = valueOrUnknown(strings.TrimSpace(version.GitCommit))
	}
	if showDate {
		info.BuildDate = valueOrUnknown(strings.TrimSpace(version.BuildDate))
	}
	return info
}

func renderVersionPretty(out io.Writer, info versionInfo, showHash, showDate bool) {
	fmt.Fprintf(out, "%s %s (trace schema %s)\n", info.Tool, info.Version, info.SchemaVersion)
	if showHash {
		fmt.Fprintf(out, "commit: %s\n", info.GitCommit)
	}
	if showDate {
		fmt.Fprintf(out, "built:  %s\n", info.BuildDate)
	}
}

func valueOrUnknown(s string) string {
	if s == "" {
		return "unknown"
	}
	return s
}
