package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"regionck/internal/diag"
	"regionck/internal/diagfmt"
	"regionck/internal/driver"
	"regionck/internal/trace"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.lirb|directory>",
	Short: "Check serialized LIR modules for cross-isolation data races",
	Long:  `Check analyzes every function of the given .lirb module (or all *.lirb files within a directory) and reports non-thread-safe values that cross an isolation boundary and are accessed afterwards`,
	Args:  cobra.ExactArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "output format (pretty|json|short)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers per module (0=config/auto)")
	checkCmd.Flags().Int("requirements-per-send", 0, "racy access sites reported per send (0=config default)")
	checkCmd.Flags().Bool("no-cache", false, "disable the disk result cache")
	checkCmd.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	checkCmd.Flags().Bool("fullpath", false, "emit absolute file paths in output")
}

// runCheck executes the "check" command: it loads configuration, runs the
// region analysis over the given path and renders the diagnostics in the
// chosen output format. It returns a non-nil error when any diagnostics
// carry error severity.
func runCheck(cmd *cobra.Command, args []string) error {
	path := args[0]

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	jobs, err := cmd.Flags().GetInt("jobs")
	if err != nil {
		return fmt.Errorf("failed to get jobs flag: %w", err)
	}
	reqPerSend, err := cmd.Flags().GetInt("requirements-per-send")
	if err != nil {
		return fmt.Errorf("failed to get requirements-per-send flag: %w", err)
	}
	noCache, err := cmd.Flags().GetBool("no-cache")
	if err != nil {
		return fmt.Errorf("failed to get no-cache flag: %w", err)
	}
	withNotes, err := cmd.Flags().GetBool("with-notes")
	if err != nil {
		return fmt.Errorf("failed to get with-notes flag: %w", err)
	}
	fullpath, err := cmd.Flags().GetBool("fullpath")
	if err != nil {
		return fmt.Errorf("failed to get fullpath flag: %w", err)
	}
	configPath, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return fmt.Errorf("failed to get config flag: %w", err)
	}
	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	showTimings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return fmt.Errorf("failed to get timings flag: %w", err)
	}
	quiet, err := cmd.Root().PersistentFlags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to get quiet flag: %w", err)
	}

	cfg, err := driver.LoadConfig(configPath)
	if err != nil {
		return err
	}
	// Флаги командной строки важнее конфига.
	if jobs > 0 {
		cfg.Analysis.Jobs = jobs
	}
	if reqPerSend > 0 {
		cfg.Analysis.RequirementsPerSend = reqPerSend
	}
	if maxDiagnostics > 0 {
		cfg.Analysis.MaxDiagnostics = maxDiagnostics
	}

	useColor, err := colorEnabled(cmd)
	if err != nil {
		return err
	}

	tracer, err := setupTracer(cfg.Trace)
	if err != nil {
		return err
	}
	defer func() {
		// Кольцевой буфер печатается при выходе, иначе он бы пропал.
		dumpRing(tracer, cmd.ErrOrStderr())
		_ = tracer.Close()
	}()
	ctx := trace.WithTracer(cmd.Context(), tracer)

	opts := driver.CheckOptions{
		EmitTimings: showTimings,
		Heartbeat:   cfg.Trace.HeartbeatInterval(),
	}
	if cfg.Cache.Enabled && !noCache {
		cache, err := driver.OpenResultCache("regionck", cfg.Cache.Dir)
		if err != nil {
			return fmt.Errorf("failed to open result cache: %w", err)
		}
		opts.Cache = cache
	}

	info, err := os.Stat(path)
	if err != nil {
		return err
	}

	var results []*driver.Result
	if info.IsDir() {
		results, err = driver.CheckDir(ctx, path, cfg, opts)
		if err != nil {
			return err
		}
	} else {
		results = []*driver.Result{driver.CheckFile(ctx, path, cfg, opts)}
	}

	pathMode := diagfmt.PathModeAuto
	if fullpath {
		pathMode = diagfmt.PathModeAbsolute
	}

	errorCount := 0
	for _, res := range results {
		res.Bag.Sort()
		for _, d := range res.Bag.Items() {
			if d.Severity == diag.SevError {
				errorCount++
			}
		}
		if res.Skipped && !quiet {
			fmt.Fprintf(cmd.ErrOrStderr(), "%s: deferred thread-safety checking is off, skipped\n", res.Path)
		}
	}

	switch format {
	case "pretty":
		prettyOpts := diagfmt.PrettyOpts{Color: useColor, PathMode: pathMode, ShowNotes: withNotes}
		for _, res := range results {
			diagfmt.Pretty(cmd.OutOrStdout(), res.Bag, res.FileSet, prettyOpts)
		}
	case "short":
		for _, res := range results {
			items := res.Bag.Items()
			ptrs := make([]*diag.Diagnostic, len(items))
			for i := range items {
				ptrs[i] = &items[i]
			}
			fmt.Fprint(cmd.OutOrStdout(), diag.FormatShortDiagnostics(ptrs, res.FileSet, withNotes))
		}
	case "json":
		outputs := make([]diagfmt.DiagnosticsOutput, 0, len(results))
		for _, res := range results {
			out := diagfmt.BuildDiagnosticsOutput(res.Bag, res.FileSet, diagfmt.JSONOpts{
				IncludePositions: true,
				PathMode:         pathMode,
				IncludeNotes:     withNotes,
			})
			out.Module = res.Module
			outputs = append(outputs, out)
		}
		if err := writeJSON(cmd.OutOrStdout(), outputs); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q (must be pretty, json or short)", format)
	}

	if errorCount > 0 {
		cmd.SilenceUsage = true
		return fmt.Errorf("found %d error(s)", errorCount)
	}
	return nil
}

// colorEnabled resolves the --color persistent flag, probing the terminal
// in auto mode, and toggles the global color state for version output.
func colorEnabled(cmd *cobra.Command) (bool, error) {
	mode, err := cmd.Root().PersistentFlags().GetString("color")
	if err != nil {
		return false, fmt.Errorf("failed to get color flag: %w", err)
	}
	var enabled bool
	switch mode {
	case "on":
		enabled = true
	case "off":
		enabled = false
	case "auto":
		enabled = isTerminal(os.Stdout)
	default:
		return false, fmt.Errorf("unsupported color mode %q (must be auto, on or off)", mode)
	}
	color.NoColor = !enabled
	return enabled, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// setupTracer builds a tracer from the [trace] config section.
func setupTracer(cfg driver.TraceConfig) (trace.Tracer, error) {
	level := trace.LevelOff
	if cfg.Level != "" {
		var err error
		level, err = trace.ParseLevel(cfg.Level)
		if err != nil {
			return nil, err
		}
	}
	if level == trace.LevelOff {
		return trace.Nop, nil
	}
	mode := trace.ModeRing
	if cfg.Mode != "" {
		var err error
		mode, err = trace.ParseMode(cfg.Mode)
		if err != nil {
			return nil, err
		}
	}
	return trace.New(trace.Config{
		Level:      level,
		Mode:       mode,
		OutputPath: cfg.Output,
	})
}

// dumpRing flushes buffered trace events of ring-mode tracers to w. Stream
// tracers already wrote everything; ring buffers only exist in memory.
func dumpRing(tracer trace.Tracer, w io.Writer) {
	if rt, ok := tracer.(*trace.RingTracer); ok && tracer.Enabled() {
		_ = rt.Dump(w, trace.FormatText)
	}
}
