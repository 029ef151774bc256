// Toolpath strategy selection and ring stitching
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package toolpath converts offset ring sequences into one continuous
// ordered cutter-center path. Three strategies are supported: spiral
// stitching, lane rastering, and a trochoidal spiral variant that bounds
// radial engagement in tight corners.
package toolpath

import (
	"fmt"
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/offset"
)

// MoveKind annotates how the emitter should treat a path point.
type MoveKind uint8

const (
	// Straight is an ordinary linear cut point.
	Straight MoveKind = iota
	// FilletStart is the on-arc guide point of a smoothed corner.
	FilletStart
	// FilletEnd is the exit point of a smoothed corner.
	FilletEnd
	// TrochoidLoop marks points of an inserted engagement-limiting loop.
	TrochoidLoop
	// Retract marks a link point that must be reached by lifting to the
	// safe height, traversing, and re-plunging: cutting straight to it
	// would cross an island keep-out.
	Retract
)

// PathPoint is one step of the cutter-center path.
type PathPoint struct {
	P    geom.Point
	Kind MoveKind
}

// Strategy is the closed set of stitching strategies. The variant set is
// fixed and small, so dispatch is a single switch per call rather than a
// handler registry.
type Strategy int

const (
	// Spiral walks rings outermost to innermost, joined by nearest-point
	// bridges into one continuous cut.
	Spiral Strategy = iota
	// Lanes rasters the pocket with parallel zigzag lanes.
	Lanes
	// Trochoidal is Spiral with small circular loops inserted at sharp
	// corners to bound the engagement angle.
	Trochoidal
)

// String returns the strategy name used in profiles and the CLI.
func (s Strategy) String() string {
	switch s {
	case Spiral:
		return "spiral"
	case Lanes:
		return "lanes"
	case Trochoidal:
		return "trochoidal"
	default:
		return fmt.Sprintf("strategy(%d)", int(s))
	}
}

// ParseStrategy parses a strategy name.
func ParseStrategy(name string) (Strategy, error) {
	switch name {
	case "spiral":
		return Spiral, nil
	case "lanes":
		return Lanes, nil
	case "trochoidal":
		return Trochoidal, nil
	default:
		return Spiral, errors.New(errors.ErrParamRange,
			fmt.Sprintf("unknown strategy %q (want spiral, lanes, or trochoidal)", name))
	}
}

// Params configures stitching.
type Params struct {
	Strategy     Strategy
	Smoothing    float64 // [0,1]; 0 disables corner rounding
	Climb        bool
	ToolDiameter float64
	Stepover     float64

	// KeepOut lists the island keep-out outlines (islands grown by the
	// tool radius plus clearance). Link moves between rings must not
	// enter them.
	KeepOut []geom.Loop
}

const (
	// minFilletTurn is the smallest corner turn worth rounding.
	minFilletTurn = 15 * math.Pi / 180
	// maxFilletTurn: beyond this the corner is a near-reversal and a
	// fillet arc would degenerate.
	maxFilletTurn = 170 * math.Pi / 180
	// trochoidTurn is the turn angle above which the tool would fully
	// re-engage and a trochoid loop is inserted.
	trochoidTurn = 60 * math.Pi / 180
	// trochoidSegments is the polygonal resolution of one inserted loop.
	trochoidSegments = 12
)

// Stitch produces the ordered cutter-center path for the given rings.
// The output never contains a zero-length segment and is deterministic
// for identical inputs: nearest-point ties break by ring index, then
// point index.
func Stitch(rings []offset.Ring, p Params) ([]PathPoint, error) {
	if p.Smoothing < 0 || p.Smoothing > 1 {
		return nil, errors.ParameterError("smoothing", p.Smoothing, "must be in [0,1]")
	}
	if len(rings) == 0 {
		return nil, nil
	}

	var pts []PathPoint
	switch p.Strategy {
	case Lanes:
		pts = stitchLanes(rings, p)
	case Trochoidal:
		pts = insertTrochoids(stitchSpiral(rings, p), p)
	default:
		pts = stitchSpiral(rings, p)
	}

	pts = smoothCorners(pts, p)
	return dedupe(pts), nil
}

// dedupe removes consecutive points closer than the coordinate tolerance
// so no zero-length segment survives.
func dedupe(pts []PathPoint) []PathPoint {
	out := pts[:0]
	for _, pt := range pts {
		if len(out) > 0 && out[len(out)-1].P.AlmostEqual(pt.P) {
			// Keep the more specific kind when collapsing duplicates.
			if pt.Kind != Straight {
				out[len(out)-1].Kind = pt.Kind
			}
			continue
		}
		out = append(out, pt)
	}
	return out
}

// orient returns the ring loop wound for the requested milling mode:
// conventional milling walks an inward pocket ring clockwise, climb
// milling counter-clockwise. Rings arrive CCW-normalized from the offset
// engine.
func orient(l geom.Loop, climb bool) geom.Loop {
	ccw := l.IsCCW()
	if climb != ccw {
		return l.Reverse()
	}
	return l
}

// nearestVertex returns the index of the loop vertex nearest to p.
// Equal distances resolve to the lower index.
func nearestVertex(l geom.Loop, p geom.Point) int {
	best := 0
	bestDist := math.Inf(1)
	for i, v := range l {
		d := v.DistanceTo(p)
		if d < bestDist-geom.Eps {
			bestDist = d
			best = i
		}
	}
	return best
}

// nearestPair returns the vertex indices of the globally shortest chord
// between two loops. Equal distances resolve to the lower index on a,
// then on b.
func nearestPair(a, b geom.Loop) (ai, bi int) {
	best := math.Inf(1)
	for i, p := range a {
		for j, q := range b {
			if d := p.DistanceTo(q); d < best-geom.Eps {
				best = d
				ai, bi = i, j
			}
		}
	}
	return ai, bi
}

// outlineWalk returns the outline vertices from the vertex nearest from
// to the vertex nearest to, walking whichever direction is shorter.
func outlineWalk(outline geom.Loop, from, to geom.Point) []PathPoint {
	n := len(outline)
	i := nearestVertex(outline, from)
	j := nearestVertex(outline, to)
	if i == j {
		return []PathPoint{{P: outline[i], Kind: Straight}}
	}

	fwd := []PathPoint{}
	for k := i; k != j; k = (k + 1) % n {
		fwd = append(fwd, PathPoint{P: outline[k], Kind: Straight})
	}
	fwd = append(fwd, PathPoint{P: outline[j], Kind: Straight})
	bwd := []PathPoint{}
	for k := i; k != j; k = (k - 1 + n) % n {
		bwd = append(bwd, PathPoint{P: outline[k], Kind: Straight})
	}
	bwd = append(bwd, PathPoint{P: outline[j], Kind: Straight})

	if pathLength(bwd) < pathLength(fwd) {
		return bwd
	}
	return fwd
}

// segmentBlocked reports whether the segment a-b enters any keep-out
// outline: it crosses an outline edge, or an interior sample lands
// inside.
func segmentBlocked(a, b geom.Point, keepOut []geom.Loop) bool {
	for _, loop := range keepOut {
		n := len(loop)
		for i := 0; i < n; i++ {
			if geom.SegmentsCross(a, b, loop[i], loop[(i+1)%n]) {
				return true
			}
		}
		for _, t := range []float64{0.25, 0.5, 0.75} {
			if loop.Contains(a.Add(b.Sub(a).Scale(t))) {
				return true
			}
		}
	}
	return false
}

// smoothCorners rewrites sharp straight corners as entry + guide + exit
// triples (FilletStart/FilletEnd) so the emitter can substitute arcs.
// Smoothing 0 leaves the path untouched.
func smoothCorners(pts []PathPoint, p Params) []PathPoint {
	if p.Smoothing <= 0 || len(pts) < 3 {
		return pts
	}
	out := make([]PathPoint, 0, len(pts)+len(pts)/4)
	out = append(out, pts[0])
	for i := 1; i < len(pts)-1; i++ {
		cur, next := pts[i], pts[i+1]
		prev := out[len(out)-1]
		if cur.Kind != Straight || next.Kind != Straight || prev.Kind == TrochoidLoop {
			out = append(out, cur)
			continue
		}
		v := cur.P
		u := v.Sub(prev.P).Normalize()
		w := next.P.Sub(v).Normalize()
		turn := math.Abs(math.Atan2(u.Cross(w), u.Dot(w)))
		if turn < minFilletTurn || turn > maxFilletTurn {
			out = append(out, cur)
			continue
		}
		len0 := v.DistanceTo(prev.P)
		len1 := next.P.DistanceTo(v)
		trim := p.Smoothing * math.Min(0.4*math.Min(len0, len1), p.ToolDiameter/2)
		if trim < 10*geom.Eps {
			out = append(out, cur)
			continue
		}
		radius := trim / math.Tan(turn/2)
		bisector := w.Sub(u)
		if bisector.Length() < geom.Eps || radius < 10*geom.Eps {
			out = append(out, cur)
			continue
		}
		center := v.Add(bisector.Normalize().Scale(radius / math.Cos(turn/2)))
		guide := center.Add(v.Sub(center).Normalize().Scale(radius))
		out = append(out,
			PathPoint{P: v.Sub(u.Scale(trim)), Kind: Straight},
			PathPoint{P: guide, Kind: FilletStart},
			PathPoint{P: v.Add(w.Scale(trim)), Kind: FilletEnd},
		)
	}
	out = append(out, pts[len(pts)-1])
	return out
}
