// Description:
// This file implements the `sysinfo` command, which prints the system
// information that is attached to every crash report.
//
// Usage:
// - Example: `cbcrash sysinfo --format=json`
//
// Note:
// - Probes that fail are listed in a summary; the remaining information is
//   printed anyway.
//

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/edespino/cbcrash/sysinfo"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v2"
)

// sysinfoCmd represents the sysinfo command that gathers and displays system information.
// It supports output in either YAML (default) or JSON format via the --format flag.
var sysinfoCmd = &cobra.Command{
	Use:   "sysinfo",
	Short: "Display system information",
	Long:  `Gather and display the system information attached to crash reports.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return RunSysInfo(cmd, args)
	},
}

// RunSysInfo gathers and displays system information in the format given by
// the global formatFlag ("yaml" or "json").
func RunSysInfo(cmd *cobra.Command, args []string) error {
	if err := validateFormat(formatFlag); err != nil {
		return err
	}

	info, errs := sysinfo.Collect()
	if len(errs) > 0 {
		fmt.Println("\nSummary of errors:")
		for _, err := range errs {
			fmt.Println("-", err)
		}
	}

	var output []byte
	var err error
	if formatFlag == "json" {
		output, err = json.MarshalIndent(info, "", "  ")
	} else {
		output, err = yaml.Marshal(info)
	}
	if err != nil {
		return fmt.Errorf("output: failed to generate: %w", err)
	}

	fmt.Println(string(output))
	return nil
}

func init() {
	rootCmd.AddCommand(sysinfoCmd)
}
