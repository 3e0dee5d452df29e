package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for docneat
type Config struct {
	Processing ProcessingConfig `mapstructure:"processing" json:"processing"`
	Metadata   MetadataConfig   `mapstructure:"metadata" json:"metadata"`
	Validation ValidationConfig `mapstructure:"validation" json:"validation"`
	Fix        FixConfig        `mapstructure:"fix" json:"fix"`
	Reporting  ReportingConfig  `mapstructure:"reporting" json:"reporting"`
	Logging    LoggingConfig    `mapstructure:"logging" json:"logging"`

	v    *viper.Viper
	file string
}

// ProcessingConfig controls scanning, caching and backups
type ProcessingConfig struct {
	Root               string   `mapstructure:"root" json:"root"`
	Include            []string `mapstructure:"include" json:"include"`
	Exclude            []string `mapstructure:"exclude" json:"exclude"`
	UseIgnoreFiles     bool     `mapstructure:"use_ignore_files" json:"use_ignore_files"`
	CacheFile          string   `mapstructure:"cache_file" json:"cache_file"`
	BackupDir          string   `mapstructure:"backup_dir" json:"backup_dir"`
	Concurrency        int      `mapstructure:"concurrency" json:"concurrency"`
	ConcurrencyPercent int      `mapstructure:"concurrency_percent" json:"concurrency_percent"`
}

// MetadataConfig describes the metadata block on disk
type MetadataConfig struct {
	Delimiter string `mapstructure:"delimiter" json:"delimiter"`
}

// ValidationConfig groups every validator's settings
type ValidationConfig struct {
	MinSeverity string          `mapstructure:"min_severity" json:"min_severity"`
	FailOn      string          `mapstructure:"fail_on" json:"fail_on"`
	YAML        YAMLConfig      `mapstructure:"yaml" json:"yaml"`
	Naming      NamingConfig    `mapstructure:"naming" json:"naming"`
	Markdown    MarkdownConfig  `mapstructure:"markdown" json:"markdown"`
	Conflicts   ConflictsConfig `mapstructure:"conflicts" json:"conflicts"`
}

// YAMLConfig holds metadata validator options
type YAMLConfig struct {
	Enabled         bool     `mapstructure:"enabled" json:"enabled"`
	RequiredFields  []string `mapstructure:"required_fields" json:"required_fields"`
	AllowedStatuses []string `mapstructure:"allowed_statuses" json:"allowed_statuses"`
}

// NamingConfig holds naming validator options
type NamingConfig struct {
	Enabled               bool     `mapstructure:"enabled" json:"enabled"`
	MinLength             int      `mapstructure:"min_length" json:"min_length"`
	MaxLength             int      `mapstructure:"max_length" json:"max_length"`
	NoVersionNumbers      bool     `mapstructure:"no_version_numbers" json:"no_version_numbers"`
	CheckDirectories      bool     `mapstructure:"check_directories" json:"check_directories"`
	AllowUppercaseFiles   []string `mapstructure:"allow_uppercase_files" json:"allow_uppercase_files"`
	AllowSpacesExtensions []string `mapstructure:"allow_spaces_extensions" json:"allow_spaces_extensions"`
}

// MarkdownConfig holds markdown syntax validator options
type MarkdownConfig struct {
	Enabled                     bool   `mapstructure:"enabled" json:"enabled"`
	EnforceHeadingHierarchy     bool   `mapstructure:"enforce_heading_hierarchy" json:"enforce_heading_hierarchy"`
	RequireLanguageInCodeBlocks bool   `mapstructure:"require_language_in_code_blocks" json:"require_language_in_code_blocks"`
	RelativeLinksOnly           bool   `mapstructure:"relative_links_only" json:"relative_links_only"`
	CheckTrailingWhitespace     bool   `mapstructure:"check_trailing_whitespace" json:"check_trailing_whitespace"`
	HorizontalRuleFormat        string `mapstructure:"horizontal_rule_format" json:"horizontal_rule_format"`
}

// ConflictsConfig holds cross-document conflict detection options
type ConflictsConfig struct {
	Enabled          bool              `mapstructure:"enabled" json:"enabled"`
	Checks           ConflictChecks    `mapstructure:"checks" json:"checks"`
	TagSynonyms      map[string]string `mapstructure:"tag_synonyms" json:"tag_synonyms"`
	PlanTiers        []string          `mapstructure:"plan_tiers" json:"plan_tiers"`
	PricingContexts  []string          `mapstructure:"pricing_contexts" json:"pricing_contexts"`
	DeprecatedStatus string            `mapstructure:"deprecated_status" json:"deprecated_status"`
}

// ConflictChecks toggles individual analyses
type ConflictChecks struct {
	Status          bool `mapstructure:"status" json:"status"`
	Tags            bool `mapstructure:"tags" json:"tags"`
	Pricing         bool `mapstructure:"pricing" json:"pricing"`
	CrossReferences bool `mapstructure:"cross_references" json:"cross_references"`
}

// FixConfig holds auto-fixer defaults
type FixConfig struct {
	DefaultStatus string   `mapstructure:"default_status" json:"default_status"`
	DefaultTag    string   `mapstructure:"default_tag" json:"default_tag"`
	KnownTags     []string `mapstructure:"known_tags" json:"known_tags"`
}

// ReportingConfig selects the report renderer
type ReportingConfig struct {
	Format      string `mapstructure:"format" json:"format"`
	Output      string `mapstructure:"output" json:"output"`
	MetricsFile string `mapstructure:"metrics_file" json:"metrics_file"`
}

// LoggingConfig holds log defaults; CLI flags win
type LoggingConfig struct {
	Level string `mapstructure:"level" json:"level"`
	JSON  bool   `mapstructure:"json" json:"json"`
}

var defaultConfig = Config{
	Processing: ProcessingConfig{
		Root:               ".",
		Include:            []string{"**/*.md"},
		Exclude:            []string{"_meta/**", "node_modules/**", ".git/**"},
		UseIgnoreFiles:     true,
		CacheFile:          "_meta/.document-cache.json",
		BackupDir:          "_meta/.backups",
		Concurrency:        0,
		ConcurrencyPercent: 50,
	},
	Metadata: MetadataConfig{Delimiter: "---"},
	Validation: ValidationConfig{
		MinSeverity: "info",
		FailOn:      "error",
		YAML: YAMLConfig{
			Enabled:         true,
			RequiredFields:  []string{"title", "tags", "status"},
			AllowedStatuses: []string{"draft", "review", "approved", "active", "deprecated", "archived"},
		},
		Naming: NamingConfig{
			Enabled:               true,
			MinLength:             5,
			MaxLength:             50,
			NoVersionNumbers:      true,
			CheckDirectories:      true,
			AllowUppercaseFiles:   []string{"README.md", "LICENSE", "CHANGELOG.md", "CONTRIBUTING.md", "CLAUDE.md"},
			AllowSpacesExtensions: []string{".csv"},
		},
		Markdown: MarkdownConfig{
			Enabled:                     true,
			EnforceHeadingHierarchy:     true,
			RequireLanguageInCodeBlocks: true,
			RelativeLinksOnly:           true,
			CheckTrailingWhitespace:     true,
			HorizontalRuleFormat:        "---",
		},
		Conflicts: ConflictsConfig{
			Enabled: true,
			Checks:  ConflictChecks{Status: true, Tags: true, Pricing: true, CrossReferences: true},
			TagSynonyms: map[string]string{
				"ghl": "gohighlevel",
				"wp":  "wordpress",
				"sc":  "symphony-core",
			},
			PlanTiers:        []string{"basic", "standard", "premium", "pro", "enterprise", "starter"},
			PricingContexts:  []string{"pricing", "sales"},
			DeprecatedStatus: "deprecated",
		},
	},
	Fix: FixConfig{
		DefaultStatus: "draft",
		DefaultTag:    "general",
		KnownTags:     []string{"pricing", "policy", "policies", "product-specs", "support", "billing", "operations", "sop", "legal"},
	},
	Reporting: ReportingConfig{Format: "console"},
	Logging:   LoggingConfig{Level: "info"},
}

// Default returns the built-in configuration without reading files or the
// environment.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		c := defaultConfig
		return &c
	}
	cfg.v = v
	return cfg
}

func setDefaults(v *viper.Viper) {
	d := defaultConfig

	v.SetDefault("processing.root", d.Processing.Root)
	v.SetDefault("processing.include", d.Processing.Include)
	v.SetDefault("processing.exclude", d.Processing.Exclude)
	v.SetDefault("processing.use_ignore_files", d.Processing.UseIgnoreFiles)
	v.SetDefault("processing.cache_file", d.Processing.CacheFile)
	v.SetDefault("processing.backup_dir", d.Processing.BackupDir)
	v.SetDefault("processing.concurrency", d.Processing.Concurrency)
	v.SetDefault("processing.concurrency_percent", d.Processing.ConcurrencyPercent)

	v.SetDefault("metadata.delimiter", d.Metadata.Delimiter)

	v.SetDefault("validation.min_severity", d.Validation.MinSeverity)
	v.SetDefault("validation.fail_on", d.Validation.FailOn)

	v.SetDefault("validation.yaml.enabled", d.Validation.YAML.Enabled)
	v.SetDefault("validation.yaml.required_fields", d.Validation.YAML.RequiredFields)
	v.SetDefault("validation.yaml.allowed_statuses", d.Validation.YAML.AllowedStatuses)

	v.SetDefault("validation.naming.enabled", d.Validation.Naming.Enabled)
	v.SetDefault("validation.naming.min_length", d.Validation.Naming.MinLength)
	v.SetDefault("validation.naming.max_length", d.Validation.Naming.MaxLength)
	v.SetDefault("validation.naming.no_version_numbers", d.Validation.Naming.NoVersionNumbers)
	v.SetDefault("validation.naming.check_directories", d.Validation.Naming.CheckDirectories)
	v.SetDefault("validation.naming.allow_uppercase_files", d.Validation.Naming.AllowUppercaseFiles)
	v.SetDefault("validation.naming.allow_spaces_extensions", d.Validation.Naming.AllowSpacesExtensions)

	v.SetDefault("validation.markdown.enabled", d.Validation.Markdown.Enabled)
	v.SetDefault("validation.markdown.enforce_heading_hierarchy", d.Validation.Markdown.EnforceHeadingHierarchy)
	v.SetDefault("validation.markdown.require_language_in_code_blocks", d.Validation.Markdown.RequireLanguageInCodeBlocks)
	v.SetDefault("validation.markdown.relative_links_only", d.Validation.Markdown.RelativeLinksOnly)
	v.SetDefault("validation.markdown.check_trailing_whitespace", d.Validation.Markdown.CheckTrailingWhitespace)
	v.SetDefault("validation.markdown.horizontal_rule_format", d.Validation.Markdown.HorizontalRuleFormat)

	v.SetDefault("validation.conflicts.enabled", d.Validation.Conflicts.Enabled)
	v.SetDefault("validation.conflicts.checks.status", d.Validation.Conflicts.Checks.Status)
	v.SetDefault("validation.conflicts.checks.tags", d.Validation.Conflicts.Checks.Tags)
	v.SetDefault("validation.conflicts.checks.pricing", d.Validation.Conflicts.Checks.Pricing)
	v.SetDefault("validation.conflicts.checks.cross_references", d.Validation.Conflicts.Checks.CrossReferences)
	v.SetDefault("validation.conflicts.tag_synonyms", d.Validation.Conflicts.TagSynonyms)
	v.SetDefault("validation.conflicts.plan_tiers", d.Validation.Conflicts.PlanTiers)
	v.SetDefault("validation.conflicts.pricing_contexts", d.Validation.Conflicts.PricingContexts)
	v.SetDefault("validation.conflicts.deprecated_status", d.Validation.Conflicts.DeprecatedStatus)

	v.SetDefault("fix.default_status", d.Fix.DefaultStatus)
	v.SetDefault("fix.default_tag", d.Fix.DefaultTag)
	v.SetDefault("fix.known_tags", d.Fix.KnownTags)

	v.SetDefault("reporting.format", d.Reporting.Format)
	v.SetDefault("reporting.output", d.Reporting.Output)
	v.SetDefault("reporting.metrics_file", d.Reporting.MetricsFile)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.json", d.Logging.JSON)
}

// projectConfigs are searched in the working directory, in order.
var projectConfigs = []string{
	"docneat.yaml",
	"docneat.yml",
	".docneat.yaml",
	".docneat.yml",
}

// findConfigFile returns the first project or user config file that exists.
func findConfigFile() string {
	for _, name := range projectConfigs {
		if _, err := os.Stat(name); err == nil {
			return name
		}
	}
	if home, err := GetDocneatHome(); err == nil {
		candidate := UserConfigFile(home)
		if _, err := os.Stat(candidate); err == nil {
			return candidate
		}
	}
	return ""
}

// Load builds the configuration from defaults, a config file and DOCNEAT_*
// environment variables, then validates it. An empty path searches the
// standard locations; a missing explicit path is an error.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	file := path
	if file == "" {
		file = findConfigFile()
	}
	if file != "" {
		v.SetConfigFile(file)
		if filepath.Ext(file) == "" {
			v.SetConfigType("yaml")
		}
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) || os.IsNotExist(err) {
				return nil, &Error{Key: "config", Message: fmt.Sprintf("config file %s not found", file), Example: "docneat --config ./docneat.yaml"}
			}
			return nil, &Error{Key: "config", Message: fmt.Sprintf("cannot read %s: %v", file, err), Example: "processing:\n  root: docs"}
		}
	}

	v.SetEnvPrefix("DOCNEAT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, &Error{Key: "config", Message: fmt.Sprintf("error unmarshaling config: %v", err)}
	}
	cfg.v = v
	cfg.file = v.ConfigFileUsed()

	if err := ValidateSchema(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// File returns the config file that was read, if any.
func (c *Config) File() string { return c.file }

// Get looks up a dotted key such as "validation.naming.max_length".
func (c *Config) Get(key string) (any, bool) {
	if c == nil || c.v == nil {
		return nil, false
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if !c.v.IsSet(key) {
		return nil, false
	}
	return c.v.Get(key), true
}

// AllSettings returns the effective settings as a nested map.
func (c *Config) AllSettings() map[string]any {
	if c == nil || c.v == nil {
		return map[string]any{}
	}
	return c.v.AllSettings()
}

// GetDocneatHome returns the docneat home directory
func GetDocneatHome() (string, error) {
	if home := os.Getenv("DOCNEAT_HOME"); home != "" {
		return home, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %v", err)
	}
	return filepath.Join(homeDir, ".docneat"), nil
}

// UserConfigFile is the per-user config file under the given home directory.
func UserConfigFile(home string) string {
	return filepath.Join(home, "config", "docneat.yaml")
}

// EnsureDocneatHome creates the docneat home directory if it doesn't exist
func EnsureDocneatHome() (string, error) {
	homeDir, err := GetDocneatHome()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(homeDir, 0750); err != nil {
		return "", fmt.Errorf("failed to create docneat home directory: %v", err)
	}
	return homeDir, nil
}
