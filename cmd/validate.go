/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/metrics"
	"github.com/fulmenhq/docneat/internal/report"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/exitcode"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newValidateCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate [path]",
		Short: "Validate new and changed documents",
		Long: `Validate scans the document root, skips documents whose content is
unchanged since the last run, and checks the rest for metadata, naming and
markdown problems.

Exit codes: 0 passed, 3 issues at or above --fail-on, 2 configuration
error, 4 cache or filesystem error.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
	cmd.Flags().Bool("force", false, "Revalidate every document, ignoring the cache")
	cmd.Flags().StringSlice("tags", nil, "Only validate documents carrying one of these tags")
	cmd.Flags().Bool("fix", false, "Auto-fix fixable issues")
	cmd.Flags().Bool("preview", false, "With --fix, report fixes without writing")
	cmd.Flags().Bool("conflicts", false, "Run cross-document conflict detection")
	addReportFlags(cmd.Flags())
	cmd.Flags().String("fail-on", "", "Lowest severity that fails the run (error|warning|info)")
	cmd.Flags().String("min-severity", "", "Lowest severity to report (error|warning|info)")
	cmd.Flags().String("metrics-file", "", "Write Prometheus textfile metrics here")
	return cmd
}

// addReportFlags registers the flags shared by every report-producing command.
func addReportFlags(fs *pflag.FlagSet) {
	fs.String("format", "", "Report format (console|markdown|json|junit)")
	fs.String("output", "", "Write the report to a file instead of stdout")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root, err := rootArg(args, cfg)
	if err != nil {
		return err
	}

	opts := engine.Options{}
	opts.Force, _ = cmd.Flags().GetBool("force")
	opts.Tags, _ = cmd.Flags().GetStringSlice("tags")
	opts.Fix, _ = cmd.Flags().GetBool("fix")
	opts.Preview, _ = cmd.Flags().GetBool("preview")
	opts.Conflicts, _ = cmd.Flags().GetBool("conflicts")
	if opts.Conflicts {
		cfg.Validation.Conflicts.Enabled = true
	}
	if opts.Preview && !opts.Fix {
		logger.Warn("--preview has no effect without --fix")
	}
	if opts.MinSeverity, err = severityFlag(cmd, "min-severity", cfg.Validation.MinSeverity); err != nil {
		return err
	}
	if opts.FailOn, err = severityFlag(cmd, "fail-on", cfg.Validation.FailOn); err != nil {
		return err
	}
	format, err := formatFlag(cmd, cfg)
	if err != nil {
		return err
	}

	eng, err := engine.New(cfg, root, logger.Default())
	if err != nil {
		return err
	}
	rep, err := eng.Run(cmd.Context(), opts)
	if err != nil {
		return err
	}

	if err := writeReport(cmd, cfg, func(w io.Writer, ro report.Options) error {
		return report.Validation(w, format, rep, ro)
	}); err != nil {
		return err
	}

	metricsFile, _ := cmd.Flags().GetString("metrics-file")
	if metricsFile == "" {
		metricsFile = cfg.Reporting.MetricsFile
	}
	if metricsFile != "" {
		rec := metrics.New()
		rec.Observe(rep)
		if err := rec.WriteTextfile(engine.ResolvePath(eng.Root(), metricsFile)); err != nil {
			return withCode(exitcode.FileSystemError, err)
		}
	}

	if rep.Failed() {
		return withCode(exitcode.ValidationError, nil)
	}
	return nil
}

// severityFlag reads a severity flag, falling back to the configured value.
func severityFlag(cmd *cobra.Command, name, fallback string) (issue.Severity, error) {
	v, _ := cmd.Flags().GetString(name)
	if v == "" {
		v = fallback
	}
	if v == "" {
		return "", nil
	}
	s, err := issue.ParseSeverity(v)
	if err != nil {
		return "", withCode(exitcode.ConfigError, fmt.Errorf("--%s: %w", name, err))
	}
	return s, nil
}

func formatFlag(cmd *cobra.Command, cfg *config.Config) (report.Format, error) {
	v, _ := cmd.Flags().GetString("format")
	if v == "" {
		v = cfg.Reporting.Format
	}
	if v == "" {
		v = string(report.FormatConsole)
	}
	f, err := report.ParseFormat(v)
	if err != nil {
		return "", withCode(exitcode.ConfigError, fmt.Errorf("--format: %w", err))
	}
	return f, nil
}

// writeReport opens --output (or reporting.output) and renders into it.
// Color is only used for terminal output.
func writeReport(cmd *cobra.Command, cfg *config.Config, render func(io.Writer, report.Options) error) error {
	output, _ := cmd.Flags().GetString("output")
	if output == "" {
		output = cfg.Reporting.Output
	}
	w, closeFn, err := openOutput(cmd, output)
	if err != nil {
		return err
	}
	renderErr := render(w, report.Options{Color: output == "" && useColor(cmd)})
	if err := closeFn(); err != nil && renderErr == nil {
		renderErr = withCode(exitcode.FileSystemError, err)
	}
	if renderErr == nil && output != "" {
		logger.Info("report written", logger.String("path", output))
	}
	return renderErr
}
