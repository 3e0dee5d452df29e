package assets

// Registry lists embedded assets available at runtime.
// Update this when adding/removing curated assets.

type AssetInfo struct {
	Family  string // schema, template
	Version string
	Path    string // path under the family's embed root
}

var Registry = []AssetInfo{
	{Family: "schema", Version: "v1.0.0", Path: ConfigSchemaPath},
	{Family: "template", Version: "v1", Path: "reports/validation.md.hbs"},
	{Family: "template", Version: "v1", Path: "reports/conflicts.md.hbs"},
	{Family: "template", Version: "v1", Path: "reports/fixes.md.hbs"},
}
