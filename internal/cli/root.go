// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

// Package cli provides the command-line interface for contractlens.
package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// Global flags
var (
	cfgFile string
	verbose bool
	quiet   bool
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "contractlens",
	Short: "Static verifier for FastAPI/NestJS/TypeScript contract chains",
	Long: `contractlens statically traces a data contract from a frontend API call
through an OpenAPI document (when one is configured) to the backend route
and schema that serve it, flagging type, field and normalization
mismatches along the way.

Example:
  contractlens init                   # Write a template config file
  contractlens check                  # Run the pipeline and write a report
  contractlens check --format=markdown
  contractlens visualize              # Write a DOT graph per adapter`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// exitCodeError pairs an error with the process exit code it should
// produce, letting a RunE function signal a specific non-zero code (spec.md
// §9 calls for distinct codes for config errors versus analysis findings)
// without calling os.Exit itself — which would abort an in-process test run
// invoking rootCmd.Execute() directly.
type exitCodeError struct {
	code int
	err  error
}

func (e *exitCodeError) Error() string { return e.err.Error() }

func newExitCodeError(code int, err error) error {
	return &exitCodeError{code: code, err: err}
}

// Execute adds all child commands to the root command and sets flags
// appropriately, runs the command tree, and exits the process with the
// code an exitCodeError carries (or 1, for any other error). This is
// called by main.main(); it only needs to happen once.
func Execute() error {
	err := rootCmd.Execute()
	if err == nil {
		return nil
	}
	if ece, ok := err.(*exitCodeError); ok {
		fmt.Fprintf(os.Stderr, "Error: %v\n", ece.err)
		os.Exit(ece.code)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default: contractlens.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose output")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress non-error output")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(visualizeCmd)
}

// printInfo prints a message if not in quiet mode.
func printInfo(format string, args ...interface{}) {
	if !quiet {
		fmt.Fprintf(os.Stdout, format+"\n", args...)
	}
}

// printVerbose prints a message if verbose mode is enabled.
func printVerbose(format string, args ...interface{}) {
	if verbose && !quiet {
		fmt.Fprintf(os.Stdout, format+"\n", args...)
	}
}
