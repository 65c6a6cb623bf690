// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/contractlens/contractlens/internal/cache"
	"github.com/contractlens/contractlens/internal/config"
	"github.com/contractlens/contractlens/internal/pipeline"
	"github.com/contractlens/contractlens/internal/report"
)

// Exit codes for the check command, per spec.md §9: zero on success with
// no critical mismatches, distinct non-zero codes for config errors versus
// analysis findings.
const (
	ExitCodeClean         = 0
	ExitCodeCriticalFound = 1
	ExitCodeConfigError   = 2
)

var (
	checkFormat   string
	checkOutput   string
	checkCacheDir string
	checkNoCache  bool
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run the pipeline and write a contract report",
	Long: `Check scans every configured adapter's source tree, links an optional
OpenAPI document, extracts and checks every contract chain, and writes a
report in JSON or Markdown form.

Exit codes:
  0  No critical mismatches found
  1  At least one critical mismatch found
  2  Configuration error

Example:
  contractlens check
  contractlens check --format markdown
  contractlens check --output report.json`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkFormat, "format", "", "report format: json or markdown (default: from config)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "", "report output path (default: from config)")
	checkCmd.Flags().StringVar(&checkCacheDir, "cache-dir", ".contractlens", "directory for the extraction cache database")
	checkCmd.Flags().BoolVar(&checkNoCache, "no-cache", false, "disable the extraction cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("failed to load config: %w", err))
	}

	if checkFormat != "" {
		cfg.Output.Format = checkFormat
	}
	if checkOutput != "" {
		cfg.Output.Path = checkOutput
	}

	if err := cfg.Validate(); err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("invalid configuration: %w", err))
	}

	printVerbose("Adapters: %d configured", len(cfg.Adapters))
	printVerbose("Report format: %s", cfg.Output.Format)
	printVerbose("Report path: %s", cfg.Output.Path)

	var c *cache.Cache
	if !checkNoCache {
		c, err = cache.Open(filepath.Join(checkCacheDir, "graph.db"))
		if err != nil {
			printVerbose("cache unavailable, continuing without it: %v", err)
			c = nil
		} else {
			defer c.Close()
		}
	}

	result, err := pipeline.New(cfg, c).Run()
	if err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("pipeline failed: %w", err))
	}

	for _, d := range result.Diagnostics {
		printVerbose("[%s] %s: %s", d.Stage, d.Path, d.Message)
	}

	writer := report.NewWriter()
	if err := writer.WriteFile(result.Report, cfg.Output.Path, cfg.Output.Format); err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("failed to write report: %w", err))
	}

	printInfo("Wrote report to %s", cfg.Output.Path)
	printInfo("%d chain(s): %d critical, %d warning, %d valid",
		result.Report.Summary.TotalChains,
		result.Report.Summary.CriticalIssues,
		result.Report.Summary.Warnings,
		result.Report.Summary.ValidChains,
	)

	if result.Report.Summary.CriticalIssues > 0 {
		return newExitCodeError(ExitCodeCriticalFound, fmt.Errorf("%d critical mismatch(es) found", result.Report.Summary.CriticalIssues))
	}

	return nil
}
