// Offset ring sequences for pocketing passes
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package offset

import (
	"math"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
)

// Ring is one offset contour of a pocketing sequence, ordered from the
// outermost pass inward. Distance is the signed offset from the original
// boundary (negative = inward). Pass groups loops produced by the same
// offset distance: a concave boundary can split one pass into several
// rings.
type Ring struct {
	Loop     geom.Loop
	Distance float64
	Index    int
	Pass     int
}

// Params configures ring generation.
type Params struct {
	ToolDiameter    float64
	Stepover        float64
	Margin          float64
	IslandClearance float64
	Join            JoinStyle
	ArcTolerance    float64
	MinFeatureArea  float64
}

// EstimatePasses predicts the ring pass count from the boundary extents so
// the output buffer can be sized up front instead of growing unbounded.
func EstimatePasses(boundary geom.Loop, p Params) int {
	min, max := boundary.BoundingBox()
	halfSpan := math.Min(max.X-min.X, max.Y-min.Y) / 2
	step := effectiveStep(p)
	if step <= 0 {
		return 0
	}
	return int(halfSpan/step) + 2
}

func effectiveStep(p Params) float64 {
	// A stepover beyond the tool radius would leave uncut ridges between
	// passes.
	return math.Min(p.Stepover, p.ToolDiameter/2)
}

// islandKeepOut offsets every island outward by the tool radius plus
// clearance and unions the results into one clip region the cutter center
// must never enter.
func islandKeepOut(islands []geom.Loop, p Params) (polyclip.Polygon, error) {
	var keepOut polyclip.Polygon
	grow := p.ToolDiameter/2 + p.IslandClearance
	for i, island := range islands {
		loops, err := Offset(island, grow, p.Join, p.ArcTolerance)
		if err != nil {
			return nil, errors.IslandError(i, err.Error())
		}
		for _, l := range loops {
			if keepOut == nil {
				keepOut = toPolygon(l)
				continue
			}
			keepOut = keepOut.Construct(polyclip.UNION, toPolygon(l))
		}
	}
	return keepOut, nil
}

// KeepOutLoops returns each island grown outward by the tool radius plus
// clearance, as explicit loops. The stitcher uses them to keep ring
// bridges out of the islands; they are the same regions ToolpathOffsets
// subtracts from every pass.
func KeepOutLoops(islands []geom.Loop, p Params) ([]geom.Loop, error) {
	region, err := islandKeepOut(islands, p)
	if err != nil {
		return nil, err
	}
	if region == nil {
		return nil, nil
	}
	return fromPolygon(region, 0), nil
}

// validateIslands rejects islands that are not fully contained in the
// boundary or that overlap each other. An island that merely touches the
// boundary outline is allowed; downstream that degenerates into a single
// near-zero ring, which callers treat as "nothing left to offset".
func validateIslands(boundary geom.Loop, islands []geom.Loop) error {
	for i, island := range islands {
		if err := island.Validate(); err != nil {
			return errors.IslandError(i, err.Error())
		}
		c := island.Canonical()
		for _, p := range c {
			if !boundary.Contains(p) && boundary.DistanceToPoint(p) > 10*geom.Eps {
				return errors.IslandError(i, "not contained in boundary")
			}
		}
		for j := 0; j < i; j++ {
			other := islands[j].Canonical()
			if other.Contains(c[0]) || c.Contains(other[0]) {
				return errors.IslandError(i, "overlaps another island")
			}
		}
	}
	return nil
}

// ToolpathOffsets produces the full inward ring sequence for a pocket:
// the first pass is inset by margin plus tool radius, each further pass by
// one stepover, halting when a pass collapses below the minimum feature
// area. Island keep-out regions are subtracted from every pass.
func ToolpathOffsets(boundary geom.Loop, islands []geom.Loop, p Params) ([]Ring, error) {
	if err := boundary.Validate(); err != nil {
		return nil, err
	}
	if p.ToolDiameter <= 0 {
		return nil, errors.ParameterError("tool_diameter", p.ToolDiameter, "must be positive")
	}
	if p.Stepover <= 0 {
		return nil, errors.ParameterError("stepover", p.Stepover, "must be positive")
	}
	if err := validateIslands(boundary, islands); err != nil {
		return nil, err
	}
	minArea := p.MinFeatureArea
	if minArea <= 0 {
		minArea = DefaultMinFeatureArea
	}

	keepOut, err := islandKeepOut(islands, p)
	if err != nil {
		return nil, err
	}

	step := effectiveStep(p)
	estimate := EstimatePasses(boundary, p)
	rings := make([]Ring, 0, estimate)
	maxPasses := estimate*4 + 8

	prevArea := math.Inf(1)
	for pass := 0; pass < maxPasses; pass++ {
		dist := p.Margin + p.ToolDiameter/2 + float64(pass)*step
		loops, err := Offset(boundary, -dist, p.Join, p.ArcTolerance)
		if err != nil {
			return nil, err
		}
		if len(loops) == 0 {
			break
		}
		if keepOut != nil {
			clipped := toPolygon(loops...).Construct(polyclip.DIFFERENCE, keepOut)
			loops = fromPolygon(clipped, 0)
		}

		passArea := 0.0
		kept := loops[:0]
		for _, l := range loops {
			a := math.Abs(l.Area())
			if a < minArea {
				continue
			}
			passArea += a
			kept = append(kept, l)
		}
		if len(kept) == 0 {
			if pass == 0 && len(loops) > 0 {
				// Island touching the boundary: keep the largest sliver as
				// the single degenerate ring the caller expects.
				rings = append(rings, Ring{Loop: loops[0], Distance: -dist, Index: 0, Pass: 0})
			}
			break
		}
		// Ring area must shrink strictly pass over pass; a stall means the
		// offset has stopped making progress.
		if passArea >= prevArea-geom.Eps {
			break
		}
		prevArea = passArea

		for _, l := range kept {
			rings = append(rings, Ring{
				Loop:     l,
				Distance: -dist,
				Index:    len(rings),
				Pass:     pass,
			})
		}
	}
	return rings, nil
}
