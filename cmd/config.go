/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/exitcode"
	"github.com/fulmenhq/docneat/pkg/ignore"
)

func newConfigCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show the effective configuration",
		Long: `Config prints the configuration docneat would run with: built-in
defaults, overlaid by the config file and DOCNEAT_* environment variables.`,
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print every setting",
		Args:  cobra.NoArgs,
		RunE:  runConfigShow,
	}
	show.Flags().String("format", "yaml", "Output format (yaml|json|toml)")

	get := &cobra.Command{
		Use:   "get <key>",
		Short: "Print one setting by dotted key",
		Args:  cobra.ExactArgs(1),
		RunE:  runConfigGet,
	}

	home := &cobra.Command{
		Use:   "home",
		Short: "Create and print the docneat home directory",
		Long: `Home creates $DOCNEAT_HOME (default ~/.docneat) when missing and prints
where docneat looks for the user config file and global ignore patterns.`,
		Args: cobra.NoArgs,
		RunE: runConfigHome,
	}

	cmd.AddCommand(show, get, home)
	return cmd
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	format, _ := cmd.Flags().GetString("format")
	out := cmd.OutOrStdout()
	if f := cfg.File(); f != "" {
		if format != "json" {
			fmt.Fprintf(out, "# source: %s\n", f)
		}
	}
	return encodeSettings(out, format, cfg.AllSettings())
}

func encodeSettings(w io.Writer, format string, v any) error {
	switch format {
	case "yaml", "yml", "":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "toml":
		enc := toml.NewEncoder(w)
		enc.SetIndentTables(true)
		return enc.Encode(v)
	default:
		return withCode(exitcode.ConfigError, fmt.Errorf("unknown format %q (want yaml, json or toml)", format))
	}
}

func runConfigHome(cmd *cobra.Command, _ []string) error {
	home, err := config.EnsureDocneatHome()
	if err != nil {
		return withCode(exitcode.FileSystemError, err)
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Home:        %s\n", home)
	fmt.Fprintf(out, "Config file: %s\n", config.UserConfigFile(home))
	fmt.Fprintf(out, "Ignore file: %s\n", filepath.Join(home, ignore.FileName))
	return nil
}

func runConfigGet(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	v, ok := cfg.Get(args[0])
	if !ok {
		return withCode(exitcode.ConfigError, fmt.Errorf("unknown config key %q", args[0]))
	}
	out := cmd.OutOrStdout()
	switch v.(type) {
	case map[string]any, []any, []string:
		return encodeSettings(out, "yaml", v)
	default:
		fmt.Fprintln(out, v)
		return nil
	}
}
