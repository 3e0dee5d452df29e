/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/issue"
	"github.com/fulmenhq/docneat/internal/report"
	"github.com/fulmenhq/docneat/pkg/exitcode"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newConflictsCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "conflicts [path]",
		Short: "Detect contradictions across documents",
		Long: `Conflicts analyzes every document under the root for status value
variations, tag synonyms, disagreeing prices and links to deprecated
documents. The cache is neither read nor updated.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runConflicts,
	}
	addReportFlags(cmd.Flags())
	cmd.Flags().String("fail-on", "", "Lowest conflict severity that fails the run (error|warning|info)")
	return cmd
}

func runConflicts(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root, err := rootArg(args, cfg)
	if err != nil {
		return err
	}
	format, err := formatFlag(cmd, cfg)
	if err != nil {
		return err
	}
	failOn, err := severityFlag(cmd, "fail-on", cfg.Validation.FailOn)
	if err != nil {
		return err
	}
	if failOn == "" {
		failOn = issue.SeverityError
	}

	cfg.Validation.Conflicts.Enabled = true
	eng, err := engine.New(cfg, root, logger.Default())
	if err != nil {
		return err
	}
	rep, paths, err := eng.Conflicts()
	if err != nil {
		return err
	}
	logger.Info("conflict detection complete", logger.Int("documents", len(paths)), logger.Int("conflicts", rep.Total()))

	set := report.ConflictSet{Report: rep, Documents: len(paths)}
	if err := writeReport(cmd, cfg, func(w io.Writer, ro report.Options) error {
		return report.Conflicts(w, format, set, ro)
	}); err != nil {
		return err
	}
	if engine.ExceedsThreshold(rep.Issues(), failOn) {
		return withCode(exitcode.ValidationError, nil)
	}
	return nil
}
