package main

import (
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"regionck/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "regionck",
	Short: "Region-based data-race checker for lowered IR modules",
	Long:  `regionck diagnoses non-thread-safe values crossing concurrency-isolation boundaries in serialized LIR modules`,
}

// main initializes the CLI by setting the command version, registering
// subcommands and persistent flags, and then executes the root command.
func main() {
	// Устанавливаем версию для автоматического флага --version
	rootCmd.Version = version.Version

	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 0, "maximum number of diagnostics to show (0 = config value)")
	rootCmd.PersistentFlags().String("config", "regionck.toml", "path to the configuration file")

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
