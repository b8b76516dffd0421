// File: cmd/reports.go
package cmd

import (
	"fmt"
	"os"

	"github.com/edespino/cbcrash/reporter"
	"github.com/spf13/cobra"
)

var (
	compareFlag bool
	detailFlag  bool
)

// reportsCmd lists saved crash reports.
var reportsCmd = &cobra.Command{
	Use:   "reports [directory]",
	Short: "List saved crash reports",
	Long: `List the crash reports saved in a directory (default: --output-dir).

With --compare the reports are grouped by signal and by the top program
frames of the crashed goroutine, and the recurring crash patterns are saved
next to the reports:
  cbcrash reports /var/crash --compare`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := outputDir
		if len(args) == 1 {
			dir = args[0]
		}
		return runReports(dir)
	},
}

func init() {
	rootCmd.AddCommand(reportsCmd)
	reportsCmd.Flags().BoolVar(&compareFlag, "compare", false, "Compare reports and identify crash patterns")
	reportsCmd.Flags().BoolVar(&detailFlag, "detail", false, "Print every report in full")
}

func runReports(dir string) error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}

	reports, err := reporter.LoadReports(dir)
	if err != nil {
		return err
	}
	if len(reports) == 0 {
		return fmt.Errorf("no crash reports found in %s", dir)
	}

	if detailFlag {
		for _, report := range reports {
			reporter.PrintReport(os.Stdout, report)
		}
	} else {
		reporter.PrintReports(os.Stdout, reports)
	}

	if compareFlag && len(reports) > 1 {
		comparison := reporter.CompareReports(reports)
		fmt.Println()
		reporter.PrintComparison(os.Stdout, comparison)

		path, err := reporter.SaveComparison(comparison, dir, formatFlag)
		if err != nil {
			fmt.Printf("Error saving comparison results: %v\n", err)
		} else {
			fmt.Printf("Comparison results saved to: %s\n", path)
		}
	}
	return nil
}
