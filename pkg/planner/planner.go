// Pocket planning orchestration
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package planner ties the kernel together: it validates a pocket job,
// runs the offset and stitching stages, lowers the path through the
// stepdown levels into motion records, and renders or simulates the
// finished program.
package planner

import (
	"math"

	"github.com/google/uuid"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/log"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/motion"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/offset"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/sim"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/toolpath"
)

var logger = log.NewLogger("planner")

// Geometry is the pocket input: one outer boundary and zero or more
// islands that stay uncut.
type Geometry struct {
	Boundary geom.Loop   `json:"boundary"`
	Islands  []geom.Loop `json:"islands,omitempty"`
}

// Params is the full job configuration. DefaultParams fills sensible
// values for everything but the tool.
type Params struct {
	ToolDiameter    float64
	Stepover        float64
	Margin          float64
	IslandClearance float64

	// Depth is the total pocket depth, positive. Stepdown is the per-pass
	// depth increment.
	Depth    float64
	Stepdown float64
	SafeZ    float64

	Strategy  toolpath.Strategy
	Smoothing float64
	Climb     bool
	Join      offset.JoinStyle

	Feeds        motion.Feeds
	FeedFloorPct float64
	FloorRadius  float64
	// FloorTrochoids applies the feed floor inside trochoid loops.
	FloorTrochoids bool

	ArcTolerance float64
	MinArcRadius float64
	MaxArcRadius float64
}

// DefaultParams returns a working configuration for the given tool.
func DefaultParams(toolDiameter float64) Params {
	return Params{
		ToolDiameter:    toolDiameter,
		Stepover:        0.45 * toolDiameter,
		IslandClearance: 0,
		Depth:           3,
		Stepdown:        1.5,
		SafeZ:           5,
		Strategy:        toolpath.Spiral,
		Smoothing:       0.5,
		Climb:           true,
		Join:            offset.JoinRound,
		Feeds:           motion.Feeds{Base: 800, Plunge: 200, Min: 100},
		FeedFloorPct:    0.6,
		FloorRadius:     0.6 * toolDiameter,
		FloorTrochoids:  true,
		ArcTolerance:    0.01,
		MinArcRadius:    0.05,
		MaxArcRadius:    1000,
	}
}

// validate fails fast on the first out-of-range parameter.
func (p Params) validate() error {
	switch {
	case p.ToolDiameter <= 0:
		return errors.ParameterError("tool_diameter", p.ToolDiameter, "must be positive")
	case p.Stepover <= 0 || p.Stepover > p.ToolDiameter:
		return errors.ParameterError("stepover", p.Stepover, "must be in (0, tool_diameter]")
	case p.Margin < 0:
		return errors.ParameterError("margin", p.Margin, "must not be negative")
	case p.Depth <= 0:
		return errors.ParameterError("depth", p.Depth, "must be positive")
	case p.Stepdown <= 0:
		return errors.ParameterError("stepdown", p.Stepdown, "must be positive")
	case p.SafeZ <= 0:
		return errors.ParameterError("safe_z", p.SafeZ, "must be positive")
	case p.Smoothing < 0 || p.Smoothing > 1:
		return errors.ParameterError("smoothing", p.Smoothing, "must be in [0,1]")
	case p.Feeds.Base <= 0:
		return errors.ParameterError("feed", p.Feeds.Base, "must be positive")
	case p.Feeds.Plunge <= 0:
		return errors.ParameterError("plunge_feed", p.Feeds.Plunge, "must be positive")
	case p.FeedFloorPct < 0 || p.FeedFloorPct > 1:
		return errors.ParameterError("feed_floor_pct", p.FeedFloorPct, "must be in [0,1]")
	}
	return nil
}

func (p Params) offsetParams() offset.Params {
	return offset.Params{
		ToolDiameter:    p.ToolDiameter,
		Stepover:        p.Stepover,
		Margin:          p.Margin,
		IslandClearance: p.IslandClearance,
		Join:            p.Join,
		ArcTolerance:    p.ArcTolerance,
	}
}

// Summary is the per-plan accounting block.
type Summary struct {
	ID          string  `json:"id"`
	PathLength  float64 `json:"path_length_mm"`
	RapidLength float64 `json:"rapid_length_mm"`
	MoveCount   int     `json:"move_count"`
	RingCount   int     `json:"ring_count"`
	PassCount   int     `json:"pass_count"`
	AreaCleared float64 `json:"area_cleared_mm2"`
	Volume      float64 `json:"volume_mm3"`
	// EstimatedTime is seconds under the trapezoidal model.
	EstimatedTime float64 `json:"estimated_time_s"`
}

// Plan is a finished pocket job.
type Plan struct {
	ID      string
	Params  Params
	Rings   []offset.Ring
	Path    []toolpath.PathPoint
	Records []motion.Record
	Summary Summary
}

// OffsetPreview runs only the offset stage, for inspection and plotting.
func OffsetPreview(g Geometry, p Params) ([]offset.Ring, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := g.Boundary.Validate(); err != nil {
		return nil, err
	}
	return offset.ToolpathOffsets(g.Boundary, g.Islands, p.offsetParams())
}

// PlanPocket runs the whole pipeline for one pocket. The returned plan
// carries the intermediate stages so callers can inspect rings and the
// stitched path as well as the final records.
func PlanPocket(g Geometry, p Params) (*Plan, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}
	if err := g.Boundary.Validate(); err != nil {
		return nil, err
	}

	rings, err := offset.ToolpathOffsets(g.Boundary, g.Islands, p.offsetParams())
	if err != nil {
		return nil, err
	}
	if len(rings) == 0 {
		return nil, errors.New(errors.ErrGeometryDegenerate, "pocket too small for the tool")
	}

	keepOut, err := offset.KeepOutLoops(g.Islands, p.offsetParams())
	if err != nil {
		return nil, err
	}

	path, err := toolpath.Stitch(rings, toolpath.Params{
		Strategy:     p.Strategy,
		Smoothing:    p.Smoothing,
		Climb:        p.Climb,
		ToolDiameter: p.ToolDiameter,
		Stepover:     p.Stepover,
		KeepOut:      keepOut,
	})
	if err != nil {
		return nil, err
	}
	if len(path) < 2 {
		return nil, errors.New(errors.ErrGeometryDegenerate, "stitching produced no usable path")
	}

	records, passes, err := lowerToRecords(path, p)
	if err != nil {
		return nil, err
	}

	plan := &Plan{
		ID:      uuid.NewString(),
		Params:  p,
		Rings:   rings,
		Path:    path,
		Records: records,
	}
	plan.Summary = summarize(plan, g, passes)
	logger.Infof("planned pocket %s: %d rings, %d passes, %d records",
		plan.ID, len(rings), passes, len(records))
	return plan, nil
}

// lowerToRecords repeats the stitched path once per stepdown level. Every
// level starts with a lift to the safe height, a rapid to the path entry,
// and a plunge at the plunge feed; the first cutting move of each level
// runs at the floored feed.
func lowerToRecords(path []toolpath.PathPoint, p Params) ([]motion.Record, int, error) {
	start := path[0].P
	records := []motion.Record{
		{Kind: motion.Rapid, X: start.X, Y: start.Y, Z: p.SafeZ},
	}

	passes := 0
	for depth := p.Stepdown; ; depth += p.Stepdown {
		z := -math.Min(depth, p.Depth)
		passes++

		if passes > 1 {
			records = append(records,
				motion.Record{Kind: motion.Rapid, X: records[len(records)-1].X, Y: records[len(records)-1].Y, Z: p.SafeZ},
				motion.Record{Kind: motion.Rapid, X: start.X, Y: start.Y, Z: p.SafeZ},
			)
		}
		records = append(records, motion.Record{
			Kind: motion.Linear, X: start.X, Y: start.Y, Z: z, Feed: p.Feeds.Plunge,
		})

		pass, err := motion.Emit(path, motion.EmitParams{
			Z:              z,
			Feeds:          p.Feeds,
			ArcTolerance:   p.ArcTolerance,
			MinArcRadius:   p.MinArcRadius,
			MaxArcRadius:   p.MaxArcRadius,
			FeedFloorPct:   p.FeedFloorPct,
			FloorRadius:    p.FloorRadius,
			FloorTrochoids: p.FloorTrochoids,
			AfterPlunge:    true,
			SafeZ:          p.SafeZ,
		})
		if err != nil {
			return nil, 0, err
		}
		records = append(records, pass...)

		if -z >= p.Depth-geom.Eps {
			break
		}
	}

	last := records[len(records)-1]
	records = append(records, motion.Record{Kind: motion.Rapid, X: last.X, Y: last.Y, Z: p.SafeZ})
	return records, passes, nil
}

func summarize(plan *Plan, g Geometry, passes int) Summary {
	res := sim.Simulate(plan.Records, sim.Params{
		RapidRate:   3000,
		DefaultFeed: plan.Params.Feeds.Base,
		Accel:       500,
		ClearanceZ:  plan.Params.SafeZ,
		StartX:      plan.Records[0].X,
		StartY:      plan.Records[0].Y,
		StartZ:      plan.Params.SafeZ,
	})

	area := math.Abs(g.Boundary.Area())
	for _, isl := range g.Islands {
		area -= math.Abs(isl.Area())
	}
	return Summary{
		ID:            plan.ID,
		PathLength:    res.FeedLength,
		RapidLength:   res.RapidLength,
		MoveCount:     len(plan.Records),
		RingCount:     len(plan.Rings),
		PassCount:     passes,
		AreaCleared:   area,
		Volume:        area * plan.Params.Depth,
		EstimatedTime: res.TotalTime,
	}
}

// Simulate runs the plan's records through the machine model with the
// given parameters.
func (pl *Plan) Simulate(p sim.Params) sim.Result {
	return sim.Simulate(pl.Records, p)
}
