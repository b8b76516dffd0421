// File: cmd/report.go
package cmd

import (
	"fmt"

	"github.com/edespino/cbcrash/crashhandler"
	"github.com/edespino/cbcrash/reporter"
	"github.com/spf13/cobra"
)

// reportCmd builds a crash report from a crash info record.
var reportCmd = &cobra.Command{
	Use:   "report --crashinfo=<name>",
	Short: "Build the report for a crash info record",
	Long: `Build the crash report for the crash info record published by a
crashing process. This is what the crashing process starts; running it by
hand is useful when a reporter was interrupted and the record still exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if crashInfoFlag == "" {
			return fmt.Errorf("please specify --crashinfo=<name>")
		}
		return runReport(crashInfoFlag)
	},
}

func init() {
	rootCmd.AddCommand(reportCmd)
}

func newReporter() *reporter.Reporter {
	return &reporter.Reporter{OutputDir: outputDir, Format: formatFlag}
}

// runReport attaches to the record, builds the report and releases the
// crashing process. The record is removed once it has been read.
func runReport(name string) error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}

	rec, err := crashhandler.Attach(name)
	if err != nil {
		return fmt.Errorf("report: failed to attach crash info %s: %w", name, err)
	}
	defer rec.Close()

	runErr := newReporter().Run(rec)
	if err := rec.Remove(); err != nil {
		fmt.Printf("Error removing crash info %s: %v\n", name, err)
	}
	return runErr
}
