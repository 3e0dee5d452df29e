package config

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/fulmenhq/docneat/internal/assets"
)

// SchemaVersion is the configuration schema this build validates against.
const SchemaVersion = "1.0.0"

// loadSchema converts the embedded YAML schema into a gojsonschema loader.
func loadSchema() (gojsonschema.JSONLoader, error) {
	raw, ok := assets.GetSchema(assets.ConfigSchemaPath)
	if !ok {
		return nil, fmt.Errorf("embedded config schema %s not found", assets.ConfigSchemaPath)
	}
	var doc map[string]interface{}
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("parse config schema: %w", err)
	}
	return gojsonschema.NewGoLoader(doc), nil
}

// ValidateSchema checks the effective settings against the embedded JSON
// Schema. The first violation (by field path) is returned as *Error.
func ValidateSchema(cfg *Config) error {
	schemaLoader, err := loadSchema()
	if err != nil {
		return err
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("render config: %w", err)
	}
	result, err := gojsonschema.Validate(schemaLoader, gojsonschema.NewBytesLoader(data))
	if err != nil {
		return fmt.Errorf("schema validation error: %v", err)
	}
	if result.Valid() {
		return nil
	}

	errs := result.Errors()
	sort.SliceStable(errs, func(i, j int) bool { return errs[i].Field() < errs[j].Field() })
	first := errs[0]
	key := strings.TrimPrefix(first.Field(), "(root).")
	// Array element paths come back as "processing.include.0".
	if idx := strings.LastIndex(key, "."); idx > 0 && isDigits(key[idx+1:]) {
		key = key[:idx]
	}
	msg := first.Description()
	if len(errs) > 1 {
		msg = fmt.Sprintf("%s (and %d more)", msg, len(errs)-1)
	}
	return newError(key, msg)
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
