// camkernel - adaptive pocket toolpath generation and G-code simulation
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/log"
)

var (
	version = "0.1.0"
	commit  = "dev"
)

// CLI flags
var (
	toolDiameter    float64
	stepover        float64
	margin          float64
	islandClearance float64
	depth           float64
	stepdown        float64
	safeZ           float64
	strategyFlag    string
	smoothing       float64
	conventional    bool
	feed            float64
	plungeFeed      float64
	profileName     string
	outputFile      string
	verbose         bool
)

func main() {
	cobra.OnInitialize(func() {
		if verbose {
			log.SetDefaultLevel(log.DEBUG)
		}
	})
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "camkernel",
	Short: "Adaptive pocket toolpaths and G-code simulation",
	Long: `camkernel generates adaptive pocket-clearing toolpaths from 2D
geometry and simulates G-code programs against a machine model.

Geometry files are JSON: {"boundary": [[x,y], ...], "islands": [[[x,y], ...], ...]}`,
	Version:       fmt.Sprintf("%s (%s)", version, commit),
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.Float64Var(&toolDiameter, "tool", 6, "tool diameter in mm")
	pf.Float64Var(&stepover, "stepover", 0, "stepover in mm (default 45% of tool)")
	pf.Float64Var(&margin, "margin", 0, "stock to leave on walls in mm")
	pf.Float64Var(&islandClearance, "island-clearance", 0, "extra clearance around islands in mm")
	pf.Float64Var(&depth, "depth", 3, "total pocket depth in mm")
	pf.Float64Var(&stepdown, "stepdown", 1.5, "per-pass depth in mm")
	pf.Float64Var(&safeZ, "safe-z", 5, "retract height in mm")
	pf.StringVar(&strategyFlag, "strategy", "spiral", "toolpath strategy: spiral, lanes, trochoidal")
	pf.Float64Var(&smoothing, "smoothing", 0.5, "corner smoothing, 0 to 1")
	pf.BoolVar(&conventional, "conventional", false, "conventional milling instead of climb")
	pf.Float64Var(&feed, "feed", 800, "cutting feed in mm/min")
	pf.Float64Var(&plungeFeed, "plunge-feed", 200, "plunge feed in mm/min")
	pf.StringVar(&profileName, "machine", "grbl", "machine profile name or YAML path")
	pf.StringVarP(&outputFile, "out", "o", "", "output file (default stdout)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	rootCmd.AddCommand(planCmd, gcodeCmd, offsetCmd, simulateCmd, profilesCmd)
}
