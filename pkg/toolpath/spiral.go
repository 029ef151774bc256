// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/offset"
)

// stitchSpiral walks rings from outermost to innermost. Each ring is cut
// as a full closed circuit entered at the globally shortest chord between
// it and the previous ring (nearest-pair search, ties to the lower
// indices). The cutter reaches the chord by travelling along the finished
// ring, so the whole pocket stays one continuous cut; only a bridge that
// cannot avoid an island keep-out becomes a retract link.
func stitchSpiral(rings []offset.Ring, p Params) []PathPoint {
	var pts []PathPoint
	var prev geom.Loop
	for _, r := range rings {
		loop := orient(r.Loop, p.Climb)
		n := len(loop)
		if n < 3 {
			continue
		}
		start := 0
		if prev != nil {
			exit, entry := nearestPair(prev, loop)
			start = entry
			pts = append(pts, linkRings(prev, pts[len(pts)-1].P, prev[exit], loop[entry], p.KeepOut)...)
		}
		for k := 0; k <= n; k++ {
			pts = append(pts, PathPoint{P: loop[(start+k)%n], Kind: Straight})
		}
		prev = loop
	}
	return pts
}

// linkRings produces the moves taking the cutter from its current
// position to the next ring's entry vertex: along the finished ring to
// the bridge exit, then across the bridge chord. A chord that would pass
// through an island keep-out is replaced by a Retract entry so the
// emitter lifts over the island instead of cutting through it.
func linkRings(prev geom.Loop, from, exit, entry geom.Point, keepOut []geom.Loop) []PathPoint {
	var link []PathPoint
	if !from.AlmostEqual(exit) {
		link = outlineWalk(prev, from, exit)
	}
	if segmentBlocked(exit, entry, keepOut) {
		return append(link, PathPoint{P: entry, Kind: Retract})
	}
	return link
}

// insertTrochoids inserts a small circular loop wherever the turn angle
// exceeds the engagement threshold, bounding the instantaneous radial
// engagement no matter how concave the boundary is. The loop radius grows
// with smoothing and tool diameter.
func insertTrochoids(pts []PathPoint, p Params) []PathPoint {
	if len(pts) < 3 {
		return pts
	}
	radius := (0.1 + 0.4*p.Smoothing) * p.ToolDiameter / 2
	if radius < 10*geom.Eps {
		return pts
	}

	out := make([]PathPoint, 0, len(pts))
	out = append(out, pts[0])
	for i := 1; i < len(pts)-1; i++ {
		v := pts[i].P
		u := v.Sub(pts[i-1].P).Normalize()
		w := pts[i+1].P.Sub(v).Normalize()
		turn := math.Abs(math.Atan2(u.Cross(w), u.Dot(w)))
		out = append(out, pts[i])
		if pts[i].Kind != Straight || turn < trochoidTurn {
			continue
		}

		// Loop through v around a center pulled back into the cut along
		// the corner bisector.
		bisector := w.Sub(u)
		if bisector.Length() < geom.Eps {
			continue
		}
		center := v.Add(bisector.Normalize().Scale(radius))
		startAngle := math.Atan2(v.Y-center.Y, v.X-center.X)
		dir := -1.0
		if p.Climb {
			dir = 1.0
		}
		for k := 1; k <= trochoidSegments; k++ {
			a := startAngle + dir*2*math.Pi*float64(k)/trochoidSegments
			out = append(out, PathPoint{
				P:    geom.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)},
				Kind: TrochoidLoop,
			})
		}
	}
	out = append(out, pts[len(pts)-1])
	return out
}
