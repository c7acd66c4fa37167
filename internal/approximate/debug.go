package approximate

import (
	"encoding/json"
	"os"
	"path/filepath"

	"liquidityShaper/internal/model"
)

// SampleEntries returns one diagnostic record per sample, in sample order.
func (a *Approximation) SampleEntries() []model.SampleEntry {
	totalK := a.TotalK()
	entries := make([]model.SampleEntry, 0, len(a.Samples))
	for i, sample := range a.Samples {
		entries = append(entries, model.SampleEntry{
			Payoff:       a.Payoffs[i],
			CurrentPrice: a.Request.CurrentPrice,
			Index:        sample.Index,
			Pair:         a.Request.Pair,
			Alpha:        sample.Alpha,
			TotalK:       totalK,
		})
	}
	return entries
}

// WriteDiagnostics writes entries to path as a single JSON array, replacing
// any existing file.
func WriteDiagnostics(path string, entries []model.SampleEntry) error {
	if entries == nil {
		entries = []model.SampleEntry{}
	}
	data, err := json.Marshal(entries)
	if err != nil {
		return &DiagnosticError{Path: path, Stage: "serialize", Err: err}
	}

	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &DiagnosticError{Path: path, Stage: "create", Err: err}
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return &DiagnosticError{Path: path, Stage: "create", Err: err}
	}
	if _, err := file.Write(data); err != nil {
		file.Close()
		return &DiagnosticError{Path: path, Stage: "write", Err: err}
	}
	if err := file.Close(); err != nil {
		return &DiagnosticError{Path: path, Stage: "write", Err: err}
	}
	return nil
}
