package report

import (
	"encoding/json"
	"io"

	"github.com/fulmenhq/docneat/internal/conflicts"
	"github.com/fulmenhq/docneat/internal/fix"
)

type conflictJSON struct {
	Documents int              `json:"documents"`
	Total     int              `json:"total"`
	Conflicts conflicts.Report `json:"conflicts"`
}

type fixJSON struct {
	Preview bool         `json:"preview"`
	Results []fix.Result `json:"results"`
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
