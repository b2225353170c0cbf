package storage

import (
	"encoding/json"
	"io"
)

type ExportData struct {
	RunMetadata
	Cycles []Row `json:"cycles"`
}

// ExportJSON writes meta and rows as one indented JSON document.
func ExportJSON(w io.Writer, meta RunMetadata, rows []Row) error {
	if rows == nil {
		rows = []Row{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ExportData{RunMetadata: meta, Cycles: rows})
}
