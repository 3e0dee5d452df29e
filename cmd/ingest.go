/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/ingest"
	"github.com/fulmenhq/docneat/pkg/logger"
)

func newIngestCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ingest <file.html>...",
		Short: "Convert saved HTML pages into documents",
		Long: `Ingest extracts the title and main content of saved web pages, converts
them to markdown and writes documents with complete metadata. Existing
files are never overwritten.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}
	cmd.Flags().String("out", "", "Output directory (default: processing.root)")
	cmd.Flags().StringSlice("tags", nil, "Tags for the new documents (default: web-content, extracted)")
	return cmd
}

func runIngest(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	outDir, _ := cmd.Flags().GetString("out")
	if outDir == "" {
		outDir = cfg.Processing.Root
	}
	tags, _ := cmd.Flags().GetStringSlice("tags")

	in := ingest.New(ingest.Options{
		Status:    cfg.Fix.DefaultStatus,
		Delimiter: cfg.Metadata.Delimiter,
	}, logger.Default())

	out := cmd.OutOrStdout()
	for _, src := range args {
		res, err := in.Ingest(src, outDir, tags)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Created %s (%s)\n", res.Path, res.Title)
	}
	return nil
}
