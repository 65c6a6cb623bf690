// SPDX-FileCopyrightText: 2026 contractlens
// SPDX-License-Identifier: FSL-1.1-MIT

package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/contractlens/contractlens/internal/cache"
	"github.com/contractlens/contractlens/internal/config"
	"github.com/contractlens/contractlens/internal/pipeline"
	"github.com/contractlens/contractlens/internal/report"
)

var visualizeOutput string

var visualizeCmd = &cobra.Command{
	Use:   "visualize",
	Short: "Write a DOT graph of every adapter's modules and edges",
	Long: `Visualize runs the same pipeline as check (scan, extract, assemble,
chain extraction and checking), then writes one digraph per adapter to
a DOT file: a node per module labeled by its path, and each edge drawn
between its endpoints' NodeIds and labeled by its edge kind. No contract
report is written.

Example:
  contractlens visualize
  contractlens visualize --output graph.dot`,
	RunE: runVisualize,
}

func init() {
	visualizeCmd.Flags().StringVarP(&visualizeOutput, "output", "o", "contractlens-graph.dot", "DOT file output path")
}

func runVisualize(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("failed to load config: %w", err))
	}

	if err := cfg.Validate(); err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("invalid configuration: %w", err))
	}

	var c *cache.Cache
	if cc, err := cache.Open(".contractlens/graph.db"); err == nil {
		c = cc
		defer c.Close()
	}

	result, err := pipeline.New(cfg, c).Run()
	if err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("pipeline failed: %w", err))
	}

	for _, d := range result.Diagnostics {
		printVerbose("[%s] %s: %s", d.Stage, d.Path, d.Message)
	}

	f, err := os.Create(visualizeOutput)
	if err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("failed to create %s: %w", visualizeOutput, err))
	}
	defer f.Close()

	writer := report.NewWriter()
	if err := writer.WriteDOT(result.Graph, f); err != nil {
		return newExitCodeError(ExitCodeConfigError, fmt.Errorf("failed to write graph: %w", err))
	}

	printInfo("Wrote graph to %s", visualizeOutput)
	return nil
}
