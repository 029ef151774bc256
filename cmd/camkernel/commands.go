// Subcommand implementations
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/planner"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/post"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/sim"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/toolpath"
)

// geometryFile is the on-disk geometry format: loops as [x,y] pairs.
type geometryFile struct {
	Boundary [][]float64   `json:"boundary"`
	Islands  [][][]float64 `json:"islands"`
}

func loadGeometry(path string) (planner.Geometry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return planner.Geometry{}, err
	}
	var gf geometryFile
	if err := json.Unmarshal(data, &gf); err != nil {
		return planner.Geometry{}, fmt.Errorf("parsing geometry %s: %w", path, err)
	}

	toLoop := func(pairs [][]float64) (geom.Loop, error) {
		loop := make(geom.Loop, 0, len(pairs))
		for _, p := range pairs {
			if len(p) != 2 {
				return nil, fmt.Errorf("geometry point must be [x, y], got %v", p)
			}
			loop = append(loop, geom.Point{X: p[0], Y: p[1]})
		}
		return loop, nil
	}

	g := planner.Geometry{}
	if g.Boundary, err = toLoop(gf.Boundary); err != nil {
		return planner.Geometry{}, err
	}
	for _, isl := range gf.Islands {
		loop, err := toLoop(isl)
		if err != nil {
			return planner.Geometry{}, err
		}
		g.Islands = append(g.Islands, loop)
	}
	return g, nil
}

func buildParams() (planner.Params, error) {
	p := planner.DefaultParams(toolDiameter)
	if stepover > 0 {
		p.Stepover = stepover
	}
	p.Margin = margin
	p.IslandClearance = islandClearance
	p.Depth = depth
	p.Stepdown = stepdown
	p.SafeZ = safeZ
	p.Smoothing = smoothing
	p.Climb = !conventional
	p.Feeds.Base = feed
	p.Feeds.Plunge = plungeFeed
	p.FloorRadius = 0.6 * toolDiameter

	strat, err := toolpath.ParseStrategy(strategyFlag)
	if err != nil {
		return planner.Params{}, err
	}
	p.Strategy = strat
	return p, nil
}

func openOutput() (*os.File, func(), error) {
	if outputFile == "" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(outputFile)
	if err != nil {
		return nil, nil, err
	}
	return f, func() { f.Close() }, nil
}

func writeJSON(v any) error {
	out, closeFn, err := openOutput()
	if err != nil {
		return err
	}
	defer closeFn()
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var planCmd = &cobra.Command{
	Use:   "plan [geometry.json]",
	Short: "Plan a pocket and print the job summary",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGeometry(args[0])
		if err != nil {
			return err
		}
		params, err := buildParams()
		if err != nil {
			return err
		}
		plan, err := planner.PlanPocket(g, params)
		if err != nil {
			return err
		}
		return writeJSON(plan.Summary)
	},
}

var gcodeCmd = &cobra.Command{
	Use:   "gcode [geometry.json]",
	Short: "Plan a pocket and write the G-code program",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGeometry(args[0])
		if err != nil {
			return err
		}
		params, err := buildParams()
		if err != nil {
			return err
		}
		profile, err := post.Resolve(profileName)
		if err != nil {
			return err
		}
		plan, err := planner.PlanPocket(g, params)
		if err != nil {
			return err
		}
		program, err := planner.EmitGCode(plan, profile)
		if err != nil {
			return err
		}

		out, closeFn, err := openOutput()
		if err != nil {
			return err
		}
		defer closeFn()
		_, err = out.WriteString(program)
		return err
	},
}

var offsetCmd = &cobra.Command{
	Use:   "offset [geometry.json]",
	Short: "Print the offset ring family for a pocket",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := loadGeometry(args[0])
		if err != nil {
			return err
		}
		params, err := buildParams()
		if err != nil {
			return err
		}
		rings, err := planner.OffsetPreview(g, params)
		if err != nil {
			return err
		}
		return writeJSON(rings)
	},
}

var simulateCmd = &cobra.Command{
	Use:   "simulate [program.nc]",
	Short: "Simulate a G-code program and report lengths, time, and issues",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(args[0])
		if err != nil {
			return err
		}
		profile, err := post.Resolve(profileName)
		if err != nil {
			return err
		}
		res := planner.SimulateProgram(string(data), profile, sim.DefaultParams())

		type report struct {
			RapidLengthMM float64     `json:"rapid_length_mm"`
			FeedLengthMM  float64     `json:"feed_length_mm"`
			TotalTimeS    float64     `json:"total_time_s"`
			Moves         int         `json:"moves"`
			Issues        []sim.Issue `json:"issues,omitempty"`
		}
		return writeJSON(report{
			RapidLengthMM: res.RapidLength,
			FeedLengthMM:  res.FeedLength,
			TotalTimeS:    res.TotalTime,
			Moves:         len(res.Moves),
			Issues:        res.Issues,
		})
	},
}

var profilesCmd = &cobra.Command{
	Use:   "profiles",
	Short: "List built-in machine profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		for _, n := range post.Names() {
			fmt.Println(n)
		}
		return nil
	},
}
