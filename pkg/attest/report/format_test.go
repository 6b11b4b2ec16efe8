package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/jamesainslie/attest/pkg/attest/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestRegistryGetUnknown(t *testing.T) {
	_, err := Get("nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown formatter")
}

func TestRegistryAvailable(t *testing.T) {
	names := Available()
	assert.Contains(t, names, "json")
	assert.Contains(t, names, "yaml")
}

func TestJSONFormatter(t *testing.T) {
	f, err := Get("json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleSummary()))

	var out struct {
		Results []struct {
			Path   string `json:"path"`
			Status string `json:"status"`
		} `json:"results"`
		Counts struct {
			TotalFiles int64 `json:"total_files"`
			Verified   int64 `json:"verified"`
			Failed     int64 `json:"failed"`
			Missing    int64 `json:"missing"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Results, 3)
	assert.Equal(t, "a.txt", out.Results[0].Path)
	assert.Equal(t, "verified", out.Results[0].Status)
	assert.Equal(t, int64(2), out.Counts.TotalFiles)
	assert.Equal(t, int64(1), out.Counts.Verified)
	assert.Equal(t, int64(1), out.Counts.Failed)
	assert.Equal(t, int64(1), out.Counts.Missing)
}

func TestYAMLFormatter(t *testing.T) {
	f, err := Get("yaml")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, sampleSummary()))

	var out struct {
		Results []struct {
			Path   string `yaml:"path"`
			Status string `yaml:"status"`
		} `yaml:"results"`
		Counts struct {
			Verified int64 `yaml:"verified"`
			Missing  int64 `yaml:"missing"`
		} `yaml:"counts"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &out))

	require.Len(t, out.Results, 3)
	assert.Equal(t, int64(1), out.Counts.Verified)
	assert.Equal(t, int64(1), out.Counts.Missing)
}

func TestJSONFormatterEmptySummary(t *testing.T) {
	f, err := Get("json")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, f.Format(&buf, &types.Summary{}))
	assert.Contains(t, buf.String(), `"results": []`)
}
