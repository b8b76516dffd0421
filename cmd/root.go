// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// File: root.go
// Package: cmd
//
// Description:
// This file contains the entry point and base configuration for the `cbcrash`
// CLI. The root command doubles as the crash reporter: a crashing process
// re-runs its own executable with `--crashinfo=<name>`, and the root command
// then builds the report from the shared crash info record instead of
// printing help.
//
// Features:
// - Global flags for the report format and output directory, with
//   CBCRASH_FORMAT and CBCRASH_OUTPUT_DIR as defaults.
// - Crash report mode through `--crashinfo=<name>`.
// - Subcommands `report`, `reports`, `simulate` and `sysinfo`.
//
// Usage:
// - Run the `cbcrash` command without any arguments to see the help message:
//   `./cbcrash`
// - Crash report mode, as started by a crashing process:
//   `./cbcrash --crashinfo=cbcrash-8c1d...`
//
// Authors:
// - Cloudberry Open Source Contributors

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "cbcrash",
	Short: "Crash capture and reporting",
	Long: `The cbcrash CLI captures fatal process failures and turns them into
crash reports. A crashing process hands its crash info record to a
reporter started as 'cbcrash --crashinfo=<name>'.

Examples:
  - Display help for the root command:
    ./cbcrash --help

  - Crash on purpose and produce a report:
    ./cbcrash simulate --signal SEGV --output-dir /tmp/crashes

  - List saved reports and group recurring crashes:
    ./cbcrash reports /tmp/crashes --compare`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if crashInfoFlag != "" {
			return runReport(crashInfoFlag)
		}
		return cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This function is called by main.main() to start the application.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

// init initializes the root command by defining global flags and configurations.
func init() {
	initSharedFlags()
}
