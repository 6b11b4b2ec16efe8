// Package config provides configuration management for attest.
package config

// Default configuration values for attest.
const (
	// DefaultManifestName is the manifest artifact name used when no
	// explicit output path is given.
	DefaultManifestName = "backup_hashes.txt"

	// DefaultReportName is the verification report artifact name used
	// when no explicit report path is given.
	DefaultReportName = "backup_verification_summary.txt"

	// DefaultOutput is the default console summary format.
	DefaultOutput = "pretty"

	// DefaultRetentionDays is the default number of days to retain
	// journal entries.
	DefaultRetentionDays = 30
)
