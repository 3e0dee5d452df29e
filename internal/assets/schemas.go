package assets

import (
	"encoding/json"
	"io/fs"
	"strings"

	"gopkg.in/yaml.v3"
)

// ConfigSchemaPath is the docneat configuration schema under the schemas root.
const ConfigSchemaPath = "config/docneat-config-v1.0.0.yaml"

// SchemaInfo holds schema metadata.
type SchemaInfo struct {
	Name  string `json:"name"`
	Path  string `json:"path"`
	Draft string `json:"draft"`
}

// GetSchema returns the embedded schema bytes by relative path.
func GetSchema(relPath string) ([]byte, bool) {
	data, err := fs.ReadFile(GetSchemasFS(), relPath)
	return data, err == nil
}

// GetSchemaNames returns the embedded schemas with their detected draft.
func GetSchemaNames() []SchemaInfo {
	var infos []SchemaInfo
	for _, a := range Registry {
		if a.Family != "schema" {
			continue
		}
		if _, ok := GetSchema(a.Path); ok {
			name := strings.TrimSuffix(a.Path[strings.LastIndex(a.Path, "/")+1:], ".yaml")
			infos = append(infos, SchemaInfo{Name: name, Path: a.Path, Draft: detectDraft(a.Path)})
		}
	}
	return infos
}

// detectDraft heuristically detects draft from schema bytes via $schema key.
func detectDraft(path string) string {
	bytes, ok := GetSchema(path)
	if !ok {
		return "unknown"
	}
	var doc interface{}
	if err := yaml.Unmarshal(bytes, &doc); err != nil {
		if err := json.Unmarshal(bytes, &doc); err != nil {
			return "unknown"
		}
	}
	if m, ok := doc.(map[string]interface{}); ok {
		if v, ok := m["$schema"].(string); ok {
			if strings.Contains(v, "draft-07") {
				return "Draft-07"
			}
			if strings.Contains(v, "2020-12") {
				return "Draft-2020-12"
			}
		}
	}
	return "unknown"
}
