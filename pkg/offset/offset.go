// Robust polygon offsetting for pocketing and profiling
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package offset turns boundary and island loops into sequences of inward
// or outward offset contours. The radial translation and join geometry are
// built explicitly (round, miter, bevel); the resulting pieces are then
// resolved through robust polygon boolean operations so self-intersecting
// contours never reach the toolpath strategist.
package offset

import (
	"math"
	"sort"

	polyclip "github.com/ctessum/polyclip-go"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
)

// JoinStyle selects how the offset contour bridges the gap at a convex
// vertex.
type JoinStyle int

const (
	// JoinRound approximates a circular join with segments bounded by the
	// arc tolerance.
	JoinRound JoinStyle = iota
	// JoinMiter extends both edges to their intersection, falling back to
	// bevel past the miter limit.
	JoinMiter
	// JoinBevel closes the gap with a single chord.
	JoinBevel
)

const (
	// fixedGrid is the fixed-point snap applied before boolean operations.
	// Clipping on a 0.1 micron grid sidesteps the float robustness failures
	// that near-degenerate vertex arrangements provoke.
	fixedGrid = 1e-4

	// miterLimit caps the miter tip extension, as a multiple of the offset
	// distance.
	miterLimit = 2.0

	// DefaultMinFeatureArea is the collapse threshold in mm^2: offset loops
	// enclosing less than this are treated as degenerate.
	DefaultMinFeatureArea = 0.01
)

func snap(v float64) float64 {
	return math.Round(v/fixedGrid) * fixedGrid
}

func snapLoop(l geom.Loop) geom.Loop {
	out := make(geom.Loop, len(l))
	for i, p := range l {
		out[i] = geom.Point{X: snap(p.X), Y: snap(p.Y)}
	}
	return out.Canonical()
}

func toContour(l geom.Loop) polyclip.Contour {
	c := make(polyclip.Contour, len(l))
	for i, p := range l {
		c[i] = polyclip.Point{X: p.X, Y: p.Y}
	}
	return c
}

func toPolygon(loops ...geom.Loop) polyclip.Polygon {
	poly := make(polyclip.Polygon, 0, len(loops))
	for _, l := range loops {
		if len(l) >= 3 {
			poly = append(poly, toContour(l))
		}
	}
	return poly
}

// fromPolygon extracts loops from a boolean result, dropping contours
// below minArea and normalizing winding: outer contours CCW, hole contours
// CW. Output order is deterministic (descending area, then lexicographic
// bounding-box corner) regardless of the clipper's internal ordering.
func fromPolygon(poly polyclip.Polygon, minArea float64) []geom.Loop {
	var loops []geom.Loop
	for _, c := range poly {
		l := make(geom.Loop, len(c))
		for i, p := range c {
			l[i] = geom.Point{X: p.X, Y: p.Y}
		}
		l = l.Canonical()
		if len(l) < 3 || math.Abs(l.Area()) < minArea {
			continue
		}
		loops = append(loops, l)
	}

	// Hole classification by containment parity.
	holes := make([]bool, len(loops))
	for i, l := range loops {
		depth := 0
		probe := l[0]
		for j, other := range loops {
			if i == j {
				continue
			}
			if other.Contains(probe) {
				depth++
			}
		}
		holes[i] = depth%2 == 1
	}
	for i, l := range loops {
		if holes[i] == l.IsCCW() {
			loops[i] = l.Reverse()
		}
	}

	sort.SliceStable(loops, func(i, j int) bool {
		ai, aj := math.Abs(loops[i].Area()), math.Abs(loops[j].Area())
		if math.Abs(ai-aj) > geom.Eps {
			return ai > aj
		}
		mi, _ := loops[i].BoundingBox()
		mj, _ := loops[j].BoundingBox()
		if mi.X != mj.X {
			return mi.X < mj.X
		}
		return mi.Y < mj.Y
	})
	return loops
}

// edgeNormal returns the unit normal of edge a->b pointing to the offset
// side (outside for outward offsets of a CCW loop, inside for inward).
func edgeNormal(a, b geom.Point, outward bool) geom.Point {
	dir := b.Sub(a).Normalize()
	if outward {
		return geom.Point{X: dir.Y, Y: -dir.X}
	}
	return geom.Point{X: -dir.Y, Y: dir.X}
}

// joinWedge builds the polygon that fills the gap between the offset edges
// meeting at v, rotating from normal n0 to normal n1.
func joinWedge(v geom.Point, n0, n1 geom.Point, d, arcTol float64, join JoinStyle) geom.Loop {
	angle := math.Atan2(n0.Cross(n1), n0.Dot(n1))
	if math.Abs(angle) < 1e-4 {
		return nil
	}
	p0 := v.Add(n0.Scale(d))
	p1 := v.Add(n1.Scale(d))

	switch join {
	case JoinMiter:
		sum := n0.Add(n1)
		cosHalf := math.Cos(angle / 2)
		if sum.Length() > geom.Eps && cosHalf > 1/miterLimit {
			tip := v.Add(sum.Normalize().Scale(d / cosHalf))
			return geom.Loop{v, p0, tip, p1}
		}
		// Past the miter limit the join degrades to a bevel.
		return geom.Loop{v, p0, p1}
	case JoinBevel:
		return geom.Loop{v, p0, p1}
	default: // JoinRound
		if arcTol <= 0 || arcTol >= d {
			arcTol = math.Min(0.02*d+1e-3, d/2)
		}
		maxStep := 2 * math.Acos(1-arcTol/d)
		steps := int(math.Ceil(math.Abs(angle) / maxStep))
		if steps < 1 {
			steps = 1
		}
		wedge := geom.Loop{v}
		for k := 0; k <= steps; k++ {
			n := n0.Rotate(angle * float64(k) / float64(steps))
			wedge = append(wedge, v.Add(n.Scale(d)))
		}
		return wedge
	}
}

// Offset returns the contour(s) of the input loop displaced by distance
// (negative = inward/pocketing, positive = outward/profiling). A nil slice
// with a nil error means the offset collapsed the polygon to nothing —
// the degenerate result is typed, not an error. Concave boundaries may
// split; every returned loop is closed, self-intersection free, and wound
// CCW (holes CW).
func Offset(loop geom.Loop, distance float64, join JoinStyle, arcTol float64) ([]geom.Loop, error) {
	if err := loop.Validate(); err != nil {
		return nil, err
	}
	base := snapLoop(loop.Canonical())
	if !base.IsCCW() {
		base = base.Reverse()
	}
	if len(base) < 3 {
		return nil, base.Validate()
	}

	d := math.Abs(distance)
	if d < 2*fixedGrid {
		return []geom.Loop{base.Clone()}, nil
	}
	outward := distance > 0

	n := len(base)
	pieces := make([]geom.Loop, 0, 2*n)
	normals := make([]geom.Point, n)
	for i := 0; i < n; i++ {
		a, b := base[i], base[(i+1)%n]
		nm := edgeNormal(a, b, outward)
		normals[i] = nm
		band := geom.Loop{a, b, b.Add(nm.Scale(d)), a.Add(nm.Scale(d))}
		pieces = append(pieces, band)
	}
	for i := 0; i < n; i++ {
		prev := (i - 1 + n) % n
		if w := joinWedge(base[i], normals[prev], normals[i], d, arcTol, join); w != nil {
			pieces = append(pieces, w)
		}
	}

	op := polyclip.DIFFERENCE
	if outward {
		op = polyclip.UNION
	}
	region := toPolygon(base)
	for _, piece := range pieces {
		p := snapLoop(piece)
		if len(p) < 3 {
			continue
		}
		if !p.IsCCW() {
			p = p.Reverse()
		}
		region = region.Construct(op, toPolygon(p))
	}

	loops := fromPolygon(region, DefaultMinFeatureArea)
	if len(loops) == 0 {
		return nil, nil
	}
	return loops, nil
}
