package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tracelens/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "tracelens",
	Short: "Inspect type checker traces",
	Long: `tracelens validates a trace.json/types.json pair produced by a type checker
and reports relation statistics, depth-limit hits, file check hotspots and
bounded views of individual types.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepareEnv,
}

func init() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(graphCmd)
	rootCmd.AddCommand(limitsCmd)
	rootCmd.AddCommand(hotspotsCmd)
	rootCmd.AddCommand(presentCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().String("log-level", "warn", "log level (debug|info|warn|error)")
	rootCmd.PersistentFlags().String("config", "", "path to tracelens.toml (default: nearest one above the working directory)")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of findings to keep (0 = all)")
	rootCmd.PersistentFlags().String("cpu-profile", "", "write a CPU profile to file")
	rootCmd.PersistentFlags().String("mem-profile", "", "write a heap profile to file on exit")
	rootCmd.PersistentFlags().String("runtime-trace", "", "write a Go runtime trace to file")
}

// main executes the root command. Profiles started by a command are flushed
// before exit.
func main() {
	err := rootCmd.Execute()
	stopProfiling()
	if err != nil {
		os.Exit(1)
	}
	os.Exit(exitCode)
}

// exitCode is set by commands that succeed but found errors.
var exitCode int

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
