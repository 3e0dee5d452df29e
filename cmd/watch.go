/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/changes"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/internal/report"
	"github.com/fulmenhq/docneat/internal/watch"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newWatchCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch [path]",
		Short: "Revalidate documents as they change",
		Long: `Watch runs an incremental validation, then repeats it whenever documents
under the root change. Bursts of edits are batched. Stop with Ctrl-C.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runWatch,
	}
	cmd.Flags().Bool("conflicts", false, "Run cross-document conflict detection on each pass")
	cmd.Flags().String("fail-on", "", "Lowest severity that fails a pass (error|warning|info)")
	cmd.Flags().String("min-severity", "", "Lowest severity to report (error|warning|info)")
	cmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a batch of changes is processed")
	return cmd
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	root, err := rootArg(args, cfg)
	if err != nil {
		return err
	}
	withConflicts, _ := cmd.Flags().GetBool("conflicts")
	if withConflicts {
		cfg.Validation.Conflicts.Enabled = true
	}
	debounce, _ := cmd.Flags().GetDuration("debounce")
	minSev, err := severityFlag(cmd, "min-severity", cfg.Validation.MinSeverity)
	if err != nil {
		return err
	}
	failOn, err := severityFlag(cmd, "fail-on", cfg.Validation.FailOn)
	if err != nil {
		return err
	}

	log := logger.Default()
	eng, err := engine.New(cfg, root, log)
	if err != nil {
		return err
	}
	opts := engine.Options{Conflicts: withConflicts, MinSeverity: minSev, FailOn: failOn}
	colored := useColor(cmd)
	pass := func(ctx context.Context) error {
		rep, err := eng.Run(ctx, opts)
		if err != nil {
			return err
		}
		return report.Validation(cmd.OutOrStdout(), report.FormatConsole, rep, report.Options{Color: colored})
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := pass(ctx); err != nil {
		return err
	}

	include, exclude := cfg.Processing.Include, cfg.Processing.Exclude
	w, err := watch.New(eng.Root(), watch.Options{
		Debounce: debounce,
		Match:    func(rel string) bool { return changes.Selected(rel, include, exclude) },
		SkipDir:  func(rel string) bool { return changes.Excluded(rel, exclude) },
	}, log)
	if err != nil {
		return err
	}
	defer func() { _ = w.Close() }()

	err = w.Run(ctx, func(ctx context.Context, changed []string) error {
		log.Info("documents changed", logger.Int("count", len(changed)))
		return pass(ctx)
	})
	if ctx.Err() != nil {
		return nil
	}
	return err
}
