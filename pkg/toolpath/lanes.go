// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/offset"
)

// laneSegment is one horizontal in-material span at a scan height.
type laneSegment struct {
	x0, x1, y float64
	row       int
}

// laneStrip is a vertically connected run of lane segments that the
// serpentine can traverse without crossing an island.
type laneStrip struct {
	segs    []laneSegment
	lastRow int
}

// stitchLanes rasters the pocket with parallel lanes spaced at the
// stepover. The sweep region is the outermost ring pass (boundary inset
// by tool radius with island keep-outs already subtracted), so lanes are
// wall-safe by construction. Segments are grouped into vertically
// contiguous strips; islands split a row into several segments and each
// side continues as its own strip.
func stitchLanes(rings []offset.Ring, p Params) []PathPoint {
	var region []geom.Loop
	for _, r := range rings {
		if r.Pass == 0 {
			region = append(region, r.Loop)
		}
	}
	if len(region) == 0 {
		return nil
	}

	min, max := region[0].BoundingBox()
	for _, l := range region[1:] {
		lmin, lmax := l.BoundingBox()
		min.X = math.Min(min.X, lmin.X)
		min.Y = math.Min(min.Y, lmin.Y)
		max.X = math.Max(max.X, lmax.X)
		max.Y = math.Max(max.Y, lmax.Y)
	}

	step := p.Stepover
	if step <= 0 {
		step = p.ToolDiameter / 2
	}

	var strips []*laneStrip
	row := 0
	for y := min.Y + step/2; y < max.Y; y += step {
		// Even-odd pairing of the crossings over every region loop gives
		// the in-material spans, islands excluded.
		var xs []float64
		for _, l := range region {
			xs = append(xs, l.XCrossings(y)...)
		}
		sortAscending(xs)
		for i := 0; i+1 < len(xs); i += 2 {
			if xs[i+1]-xs[i] < 10*geom.Eps {
				continue
			}
			seg := laneSegment{x0: xs[i], x1: xs[i+1], y: y, row: row}
			attachSegment(&strips, seg)
		}
		row++
	}

	return serpentine(strips, region)
}

func sortAscending(xs []float64) {
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// attachSegment joins seg to the first strip whose newest segment sits on
// the previous row and overlaps in X; otherwise it opens a new strip.
func attachSegment(strips *[]*laneStrip, seg laneSegment) {
	for _, s := range *strips {
		if s.lastRow != seg.row-1 {
			continue
		}
		last := s.segs[len(s.segs)-1]
		if seg.x0 <= last.x1 && last.x0 <= seg.x1 {
			s.segs = append(s.segs, seg)
			s.lastRow = seg.row
			return
		}
	}
	*strips = append(*strips, &laneStrip{segs: []laneSegment{seg}, lastRow: seg.row})
}

// serpentine emits each strip as a zigzag, linking strip to strip along
// the region outline so the connection never cuts across an island.
func serpentine(strips []*laneStrip, region []geom.Loop) []PathPoint {
	var pts []PathPoint
	for _, strip := range strips {
		leftToRight := true
		first := strip.segs[0]
		entry := geom.Point{X: first.x0, Y: first.y}

		if len(pts) > 0 {
			pts = append(pts, walkOutline(region, pts[len(pts)-1].P, entry)...)
		}
		for _, seg := range strip.segs {
			a := geom.Point{X: seg.x0, Y: seg.y}
			b := geom.Point{X: seg.x1, Y: seg.y}
			if !leftToRight {
				a, b = b, a
			}
			pts = append(pts,
				PathPoint{P: a, Kind: Straight},
				PathPoint{P: b, Kind: Straight},
			)
			leftToRight = !leftToRight
		}
	}
	return pts
}

// walkOutline routes from one point to another along the largest region
// loop, keeping the link inside already-cleared or boundary-adjacent
// material instead of jumping straight across the pocket.
func walkOutline(region []geom.Loop, from, to geom.Point) []PathPoint {
	outline := region[0]
	if len(outline) < 3 || from.DistanceTo(to) < outline.Perimeter()/float64(len(outline)) {
		return []PathPoint{{P: to, Kind: Straight}}
	}
	return append(outlineWalk(outline, from, to), PathPoint{P: to, Kind: Straight})
}

func pathLength(pts []PathPoint) float64 {
	d := 0.0
	for i := 1; i < len(pts); i++ {
		d += pts[i].P.DistanceTo(pts[i-1].P)
	}
	return d
}
