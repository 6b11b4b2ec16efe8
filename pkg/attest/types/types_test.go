package types

import "testing"

func TestSummaryTotals(t *testing.T) {
	tests := []struct {
		name       string
		summary    Summary
		wantWalked int64
		wantFailed int64
	}{
		{
			name:       "empty",
			summary:    Summary{},
			wantWalked: 0,
			wantFailed: 0,
		},
		{
			name:       "all verified",
			summary:    Summary{Verified: 5},
			wantWalked: 5,
			wantFailed: 0,
		},
		{
			name:       "mixed",
			summary:    Summary{Verified: 3, Mismatched: 2, Unexpected: 1, Missing: 4},
			wantWalked: 6,
			wantFailed: 3,
		},
		{
			name:       "missing does not count as walked",
			summary:    Summary{Missing: 7},
			wantWalked: 0,
			wantFailed: 0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.summary.TotalWalked(); got != tt.wantWalked {
				t.Errorf("TotalWalked() = %d, want %d", got, tt.wantWalked)
			}
			if got := tt.summary.Failed(); got != tt.wantFailed {
				t.Errorf("Failed() = %d, want %d", got, tt.wantFailed)
			}
		})
	}
}

func TestSummaryWalkedIsVerifiedPlusFailed(t *testing.T) {
	s := Summary{Verified: 10, Mismatched: 3, Unexpected: 2, Missing: 5}
	if s.TotalWalked() != s.Verified+s.Failed() {
		t.Errorf("TotalWalked() = %d, want Verified+Failed = %d", s.TotalWalked(), s.Verified+s.Failed())
	}
}

func TestFormatSize(t *testing.T) {
	tests := []struct {
		bytes int64
		want  string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{1048576, "1.0 MiB"},
		{1073741824, "1.0 GiB"},
	}

	for _, tt := range tests {
		if got := FormatSize(tt.bytes); got != tt.want {
			t.Errorf("FormatSize(%d) = %q, want %q", tt.bytes, got, tt.want)
		}
	}
}
