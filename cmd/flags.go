// File: cmd/flags.go
package cmd

import (
	"os"

	"github.com/edespino/cbcrash/crashhandler"
	"github.com/edespino/cbcrash/reporter"
)

// Environment variables providing flag defaults.
const (
	envOutputDir = "CBCRASH_OUTPUT_DIR"
	envFormat    = "CBCRASH_FORMAT"
)

// Shared command flags
var (
	formatFlag    string // Common flag for output format (yaml/json)
	outputDir     string // Directory receiving crash reports
	crashInfoFlag string // Shared memory name of a crash info record
)

// validateFormat checks if the provided format is either "json" or "yaml"
func validateFormat(format string) error {
	return reporter.ValidateFormat(format)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// initSharedFlags initializes flags that are shared across multiple commands
func initSharedFlags() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&formatFlag, "format", envOr(envFormat, "yaml"), "Output format: yaml or json (env "+envFormat+")")
	flags.StringVar(&outputDir, "output-dir", envOr(envOutputDir, "."), "Directory to store crash reports (env "+envOutputDir+")")
	flags.StringVar(&crashInfoFlag, crashhandler.CrashInfoFlag[2:], "", "Build the report for the crash info record with this name")
}
