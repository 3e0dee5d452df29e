/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/assets"
	"github.com/fulmenhq/docneat/pkg/buildinfo"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("extended", false, "Show detailed build information")
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	extended, _ := cmd.Flags().GetBool("extended")
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	info := buildinfo.Read()

	if jsonOutput {
		data, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	}

	fmt.Fprintf(out, "docneat %s\n", info.Version)
	if !extended {
		return nil
	}
	if info.Module != "" {
		fmt.Fprintf(out, "Module:     %s\n", info.Module)
	}
	fmt.Fprintf(out, "Go version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "Platform:   %s/%s\n", info.Platform, info.Arch)
	if info.Revision != "" {
		dirty := ""
		if info.Modified {
			dirty = " (modified)"
		}
		fmt.Fprintf(out, "Revision:   %s%s\n", info.Revision, dirty)
	}

	fmt.Fprintln(out, "Embedded assets:")
	for _, a := range assets.Registry {
		data, err := assets.GetEmbeddedAsset(a.Path)
		if err != nil {
			fmt.Fprintf(out, "  %-9s %-7s %s (missing)\n", a.Family, a.Version, a.Path)
			continue
		}
		fmt.Fprintf(out, "  %-9s %-7s %s (%d bytes)\n", a.Family, a.Version, a.Path, len(data))
	}
	return nil
}
