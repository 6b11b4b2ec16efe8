package report

import (
	"bytes"

	"github.com/jamesainslie/attest/pkg/attest/types"
	"gopkg.in/yaml.v3"
)

// yamlOutput represents the full YAML summary structure.
type yamlOutput struct {
	Results []yamlResult `yaml:"results"`
	Counts  yamlCounts   `yaml:"counts"`
	Elapsed string       `yaml:"elapsed"`
}

// yamlResult represents a single classified path.
type yamlResult struct {
	Path     string `yaml:"path"`
	Status   string `yaml:"status"`
	Expected string `yaml:"expected,omitempty"`
	Actual   string `yaml:"actual,omitempty"`
	Error    string `yaml:"error,omitempty"`
}

// yamlCounts represents the aggregate counts.
type yamlCounts struct {
	TotalFiles int64 `yaml:"total_files"`
	Verified   int64 `yaml:"verified"`
	Failed     int64 `yaml:"failed"`
	Mismatched int64 `yaml:"mismatched"`
	Unexpected int64 `yaml:"unexpected"`
	Missing    int64 `yaml:"missing"`
}

// YAMLFormatter outputs the summary as YAML.
type YAMLFormatter struct{}

// Format writes the formatted summary to the buffer.
func (f *YAMLFormatter) Format(w *bytes.Buffer, sum *types.Summary) error {
	out := yamlOutput{
		Results: make([]yamlResult, 0, len(sum.Results)),
		Counts: yamlCounts{
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
		out.Results = append(out.Results, yamlResult{
			Path:     res.Path,
			Status:   string(res.Status),
			Expected: res.Expected,
			Actual:   res.Actual,
			Error:    res.Error,
		})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return err
	}
	return enc.Close()
}

func init() {
	Register("yaml", func() Formatter {
		return &YAMLFormatter{}
	})
}

// Ensure YAMLFormatter implements Formatter.
var _ Formatter = (*YAMLFormatter)(nil)
