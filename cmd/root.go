/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fulmenhq/docneat/internal/cache"
	"github.com/fulmenhq/docneat/internal/changes"
	"github.com/fulmenhq/docneat/internal/ops"
	"github.com/fulmenhq/docneat/pkg/buildinfo"
	"github.com/fulmenhq/docneat/pkg/config"
	"github.com/fulmenhq/docneat/pkg/exitcode"
	"github.com/fulmenhq/docneat/pkg/logger"
)

// newRootCommand creates a fresh root command instance.
// Tests build isolated trees from it without shared state.
func newRootCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "docneat",
		Short: "Document corpus validation and maintenance",
		Long: `Docneat keeps a markdown knowledge base consistent. It validates
metadata, file naming and markdown structure, detects conflicts between
documents, and fixes the common problems automatically.

Examples:
   docneat validate docs            # Validate changed documents
   docneat validate --force --fix   # Revalidate everything and apply fixes
   docneat conflicts docs           # Cross-document conflict report
   docneat cache stats              # Show cached validation outcomes`,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			initializeLogger(cmd)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().String("log-level", "info", "Set log level (trace|debug|info|warn|error)")
	cmd.PersistentFlags().Bool("json", false, "Output logs in JSON format")
	cmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
	cmd.PersistentFlags().String("config", "", "Config file (default: ./docneat.yaml or $DOCNEAT_HOME/config)")

	cmd.Version = buildinfo.BinaryVersion
	cmd.SetVersionTemplate("docneat {{.Version}}\n")

	reg := ops.NewRegistry()
	registerSubcommands(cmd, reg)

	cmd.SetHelpFunc(func(c *cobra.Command, _ []string) {
		if c != cmd {
			c.Println(c.Long)
			c.Println()
			c.Print(c.UsageString())
			return
		}
		c.Println(c.Long)
		for _, g := range ops.Groups {
			c.Println()
			c.Printf("%s:\n", g.Title())
			for _, r := range reg.Group(g) {
				c.Printf("  %-12s %s\n", r.Name, r.Description)
			}
		}
		c.Println()
		c.Println("Flags:")
		c.Print(c.LocalFlags().FlagUsages())
	})

	return cmd
}

// registerSubcommands adds all subcommands to the root command.
func registerSubcommands(root *cobra.Command, reg *ops.Registry) {
	add := func(g ops.CommandGroup, c *cobra.Command) {
		if err := reg.Register(g, c); err != nil {
			panic(fmt.Sprintf("failed to register %s command: %v", c.Name(), err))
		}
		root.AddCommand(c)
	}
	add(ops.GroupDocs, newValidateCommand())
	add(ops.GroupDocs, newConflictsCommand())
	add(ops.GroupDocs, newFixCommand())
	add(ops.GroupMaintenance, newCacheCommand())
	add(ops.GroupMaintenance, newIngestCommand())
	add(ops.GroupMaintenance, newWatchCommand())
	add(ops.GroupSupport, newConfigCommand())
	add(ops.GroupSupport, newVersionCommand())
}

// Execute runs the CLI and exits with the mapped exit code.
// This is called by main.main().
func Execute() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func run(args []string, stdout, stderr io.Writer) int {
	root := newRootCommand()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.Execute()
	code := exitCodeFor(err)
	if err != nil {
		var ee *exitError
		if !errors.As(err, &ee) || ee.err != nil {
			logger.Error("command failed", logger.Err(err), logger.Int("exit_code", code))
			fmt.Fprintf(stderr, "Error: %v\n", err)
		}
	}
	return code
}

// exitError carries an explicit exit code. A nil err means the command
// already reported the outcome and only the code is left to return.
type exitError struct {
	code int
	err  error
}

func (e *exitError) Error() string {
	if e.err == nil {
		return exitcode.String(e.code)
	}
	return e.err.Error()
}

func (e *exitError) Unwrap() error { return e.err }

func withCode(code int, err error) error {
	return &exitError{code: code, err: err}
}

// exitCodeFor maps an error onto the documented exit codes.
func exitCodeFor(err error) int {
	if err == nil {
		return exitcode.Success
	}
	var ee *exitError
	if errors.As(err, &ee) {
		return ee.code
	}
	var cfgErr *config.Error
	if errors.As(err, &cfgErr) {
		return exitcode.ConfigError
	}
	var cacheErr *cache.Error
	var scanErr *changes.ScanError
	var pathErr *os.PathError
	if errors.As(err, &cacheErr) || errors.As(err, &scanErr) || errors.As(err, &pathErr) {
		return exitcode.FileSystemError
	}
	return exitcode.GeneralError
}

// initializeLogger sets up the logger based on command flags
func initializeLogger(cmd *cobra.Command) {
	logLevelStr, _ := cmd.Flags().GetString("log-level")
	jsonLogs, _ := cmd.Flags().GetBool("json")
	noColor, _ := cmd.Flags().GetBool("no-color")

	cfg := logger.Config{
		Level:     logger.ParseLevel(logLevelStr),
		UseColor:  !noColor && !color.NoColor,
		JSON:      jsonLogs,
		Component: "docneat",
	}
	if err := logger.Initialize(cfg); err != nil {
		_, _ = os.Stderr.WriteString("Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(exitcode.ConfigError)
	}
}

// loadConfig reads the configuration named by --config. Logging settings
// from the file apply only where the matching flag was left at its default.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}
	flags := cmd.Flags()
	if (cfg.Logging.Level != "" && !flags.Changed("log-level")) || (cfg.Logging.JSON && !flags.Changed("json")) {
		noColor, _ := flags.GetBool("no-color")
		level, _ := flags.GetString("log-level")
		if !flags.Changed("log-level") && cfg.Logging.Level != "" {
			level = cfg.Logging.Level
		}
		jsonLogs, _ := flags.GetBool("json")
		if !flags.Changed("json") {
			jsonLogs = jsonLogs || cfg.Logging.JSON
		}
		_ = logger.Initialize(logger.Config{
			Level:     logger.ParseLevel(level),
			UseColor:  !noColor && !color.NoColor,
			JSON:      jsonLogs,
			Component: "docneat",
		})
	}
	if f := cfg.File(); f != "" {
		logger.Debug("loaded configuration", logger.String("file", f))
	}
	return cfg, nil
}

// rootArg picks the document root: the positional path, else the
// configured processing.root.
func rootArg(args []string, cfg *config.Config) (string, error) {
	root := cfg.Processing.Root
	if len(args) > 0 && args[0] != "" {
		root = args[0]
	}
	if root == "" {
		root = "."
	}
	info, err := os.Stat(root)
	if err != nil {
		return "", withCode(exitcode.FileSystemError, fmt.Errorf("document root %s: %w", root, err))
	}
	if !info.IsDir() {
		return "", withCode(exitcode.FileSystemError, fmt.Errorf("document root %s is not a directory", root))
	}
	return filepath.Clean(root), nil
}

func useColor(cmd *cobra.Command) bool {
	noColor, _ := cmd.Flags().GetBool("no-color")
	return !noColor && !color.NoColor
}

// openOutput returns the report destination: stdout, or the --output file.
func openOutput(cmd *cobra.Command, path string) (io.Writer, func() error, error) {
	if path == "" {
		return cmd.OutOrStdout(), func() error { return nil }, nil
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, nil, withCode(exitcode.FileSystemError, fmt.Errorf("create report directory: %w", err))
		}
	}
	f, err := os.Create(path) // #nosec G304 -- operator-chosen report path
	if err != nil {
		return nil, nil, withCode(exitcode.FileSystemError, fmt.Errorf("create report file: %w", err))
	}
	return f, f.Close, nil
}
