package report

import (
	"bytes"
	"encoding/json"

	"github.com/jamesainslie/attest/pkg/attest/types"
)

// jsonOutput represents the full JSON summary structure.
type jsonOutput struct {
	Results []jsonResult `json:"results"`
	Counts  jsonCounts   `json:"counts"`
	Elapsed string       `json:"elapsed"`
}

// jsonResult represents a single classified path.
type jsonResult struct {
	Path     string `json:"path"`
	Status   string `json:"status"`
	Expected string `json:"expected,omitempty"`
	Actual   string `json:"actual,omitempty"`
	Error    string `json:"error,omitempty"`
}

// jsonCounts represents the aggregate counts.
type jsonCounts struct {
	TotalFiles int64 `json:"total_files"`
	Verified   int64 `json:"verified"`
	Failed     int64 `json:"failed"`
	Mismatched int64 `json:"mismatched"`
	Unexpected int64 `json:"unexpected"`
	Missing    int64 `json:"missing"`
}

// JSONFormatter outputs the summary as indented JSON.
type JSONFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *JSONFormatter) Format(w *bytes.Buffer, sum *types.Summary) error {
	out := jsonOutput{
		Results: make([]jsonResult, 0, len(sum.Results)),
		Counts: jsonCounts{
			TotalFiles: sum.TotalWalked(),
			Verified:   sum.Verified,
			Failed:     sum.Failed(),
			Mismatched: sum.Mismatched,
			Unexpected: sum.Unexpected,
			Missing:    sum.Missing,
		},
		Elapsed: sum.Elapsed.String(),
	}

	for _, res := range sum.Results {
		out.Results = append(out.Results, jsonResult{
			Path:     res.Path,
			Status:   string(res.Status),
			Expected: res.Expected,
			Actual:   res.Actual,
			Error:    res.Error,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func init() {
	Register("json", func() Formatter {
		return &JSONFormatter{}
	})
}

// Ensure JSONFormatter implements Formatter.
var _ Formatter = (*JSONFormatter)(nil)
