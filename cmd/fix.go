/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/report"
	"github.com/fulmenhq/docneat/pkg/exitcode"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newFixCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fix [path]",
		Short: "Preview or apply automatic metadata fixes",
		Long: `Fix revalidates every document and repairs missing metadata blocks,
missing required fields and scalar tags. Without --apply nothing is
written. Applied fixes back up the original file first.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runFix,
	}
	cmd.Flags().Bool("apply", false, "Write fixes to disk (default is preview)")
	addReportFlags(cmd.Flags())
	return cmd
}

func runFix(cmd *cobra.Command, args []string) error {
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
	if format == report.FormatJUnit {
		return withCode(exitcode.ConfigError, fmt.Errorf("--format junit is not available for fix reports"))
	}
	apply, _ := cmd.Flags().GetBool("apply")

	eng, err := engine.New(cfg, root, logger.Default())
	if err != nil {
		return err
	}
	rep, err := eng.Run(cmd.Context(), engine.Options{Force: true, Fix: true, Preview: !apply})
	if err != nil {
		return err
	}

	set := report.FixSet{Results: rep.Fixes, Preview: !apply}
	if err := writeReport(cmd, cfg, func(w io.Writer, ro report.Options) error {
		return report.Fixes(w, format, set, ro)
	}); err != nil {
		return err
	}
	for _, r := range rep.Fixes {
		if !r.Success {
			return withCode(exitcode.ValidationError, nil)
		}
	}
	return nil
}
