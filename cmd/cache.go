/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/cache"
	"github.com/fulmenhq/docneat/internal/engine"
	"github.com/fulmenhq/docneat/pkg/exitcode"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newCacheCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or reset the document cache",
		Long: `The cache records a content fingerprint and the last validation outcome
of every document, so unchanged documents are skipped on the next run.`,
	}

	stats := &cobra.Command{
		Use:   "stats [path]",
		Short: "Show cached validation totals",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheStats,
	}
	stats.Flags().String("format", "console", "Output format (console|json)")

	clearCmd := &cobra.Command{
		Use:   "clear [path]",
		Short: "Remove every cache entry",
		Args:  cobra.MaximumNArgs(1),
		RunE:  runCacheClear,
	}

	cmd.AddCommand(stats, clearCmd)
	return cmd
}

func openCache(cmd *cobra.Command, args []string) (*cache.Store, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	root, err := rootArg(args, cfg)
	if err != nil {
		return nil, err
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return nil, err
	}
	return cache.Open(engine.ResolvePath(abs, cfg.Processing.CacheFile), logger.Default())
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd, args)
	if err != nil {
		return err
	}
	st := store.Stats()
	out := cmd.OutOrStdout()

	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "json":
		data, err := json.MarshalIndent(st, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
	case "console", "":
		last := "never"
		if !st.LastUpdated.IsZero() {
			last = st.LastUpdated.Local().Format(time.DateTime)
		}
		fmt.Fprintf(out, "Cache file:      %s\n", st.Path)
		fmt.Fprintf(out, "Documents:       %d\n", st.Total)
		fmt.Fprintf(out, "Passed:          %d\n", st.Passed)
		fmt.Fprintf(out, "Failed:          %d\n", st.Failed)
		fmt.Fprintf(out, "Total errors:    %d\n", st.TotalErrors)
		fmt.Fprintf(out, "Total warnings:  %d\n", st.TotalWarnings)
		fmt.Fprintf(out, "Last updated:    %s\n", last)
	default:
		return withCode(exitcode.ConfigError, fmt.Errorf("unknown format %q (want console or json)", format))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openCache(cmd, args)
	if err != nil {
		return err
	}
	n := store.Len()
	if err := store.Clear(); err != nil {
		return err
	}
	logger.Info("cache cleared", logger.String("path", store.Path()), logger.Int("removed", n))
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d cache entries from %s\n", n, store.Path())
	return nil
}
