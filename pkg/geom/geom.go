// 2D geometry primitives for the CAM toolpath kernel.
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package geom provides the point and loop types shared by the offset
// engine, the toolpath strategist, and the simulator. All coordinates are
// millimeters; inch inputs are converted at the application boundary.
package geom

import (
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
)

// Eps is the coordinate comparison tolerance in mm.
const Eps = 1e-6

// Point is a 2D coordinate in mm.
type Point struct {
	X float64
	Y float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y} }

// Scale returns p scaled by s.
func (p Point) Scale(s float64) Point { return Point{p.X * s, p.Y * s} }

// Dot returns the dot product p·q.
func (p Point) Dot(q Point) float64 { return p.X*q.X + p.Y*q.Y }

// Cross returns the z component of the cross product p×q.
func (p Point) Cross(q Point) float64 { return p.X*q.Y - p.Y*q.X }

// Length returns the Euclidean norm of p.
func (p Point) Length() float64 { return math.Hypot(p.X, p.Y) }

// DistanceTo returns the distance between p and q.
func (p Point) DistanceTo(q Point) float64 { return p.Sub(q).Length() }

// Normalize returns p scaled to unit length. The zero vector is returned
// unchanged so callers do not have to special-case degenerate edges.
func (p Point) Normalize() Point {
	l := p.Length()
	if l < Eps {
		return p
	}
	return Point{p.X / l, p.Y / l}
}

// Perp returns p rotated 90 degrees counter-clockwise.
func (p Point) Perp() Point { return Point{-p.Y, p.X} }

// Rotate returns p rotated by the given angle (radians, CCW) around the
// origin.
func (p Point) Rotate(angle float64) Point {
	s, c := math.Sincos(angle)
	return Point{p.X*c - p.Y*s, p.X*s + p.Y*c}
}

// AlmostEqual reports whether p and q coincide within Eps.
func (p Point) AlmostEqual(q Point) bool {
	return math.Abs(p.X-q.X) < Eps && math.Abs(p.Y-q.Y) < Eps
}

// Loop is an ordered vertex sequence describing an implicitly closed
// polygon: the edge from the last vertex back to the first is part of the
// loop whether or not the first vertex is repeated at the end.
type Loop []Point

// Canonical returns a copy of l with a duplicated closing vertex and any
// zero-length edges removed.
func (l Loop) Canonical() Loop {
	out := make(Loop, 0, len(l))
	for _, p := range l {
		if len(out) > 0 && out[len(out)-1].AlmostEqual(p) {
			continue
		}
		out = append(out, p)
	}
	if len(out) > 1 && out[0].AlmostEqual(out[len(out)-1]) {
		out = out[:len(out)-1]
	}
	return out
}

// Clone returns an independent copy of l.
func (l Loop) Clone() Loop {
	out := make(Loop, len(l))
	copy(out, l)
	return out
}

// Area returns the signed area of l (positive for counter-clockwise
// winding).
func (l Loop) Area() float64 {
	n := len(l)
	if n < 3 {
		return 0
	}
	a := 0.0
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		a += l[i].X*l[j].Y - l[j].X*l[i].Y
	}
	return a / 2
}

// Perimeter returns the closed perimeter length of l.
func (l Loop) Perimeter() float64 {
	n := len(l)
	if n < 2 {
		return 0
	}
	d := 0.0
	for i := 0; i < n; i++ {
		d += l[i].DistanceTo(l[(i+1)%n])
	}
	return d
}

// IsCCW reports whether l winds counter-clockwise.
func (l Loop) IsCCW() bool { return l.Area() > 0 }

// Reverse returns a copy of l with the winding direction flipped.
func (l Loop) Reverse() Loop {
	out := make(Loop, len(l))
	for i, p := range l {
		out[len(l)-1-i] = p
	}
	return out
}

// BoundingBox returns the axis-aligned bounds of l.
func (l Loop) BoundingBox() (min, max Point) {
	if len(l) == 0 {
		return Point{}, Point{}
	}
	min, max = l[0], l[0]
	for _, p := range l[1:] {
		min.X = math.Min(min.X, p.X)
		min.Y = math.Min(min.Y, p.Y)
		max.X = math.Max(max.X, p.X)
		max.Y = math.Max(max.Y, p.Y)
	}
	return min, max
}

// Contains reports whether p lies strictly inside l, using the even-odd
// ray-cast rule. Points on the border count as outside.
func (l Loop) Contains(p Point) bool {
	n := len(l)
	inside := false
	for i := 0; i < n; i++ {
		a, b := l[i], l[(i+1)%n]
		if (a.Y > p.Y) != (b.Y > p.Y) {
			x := a.X + (p.Y-a.Y)/(b.Y-a.Y)*(b.X-a.X)
			if p.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Validate rejects loops that cannot describe a boundary or island: fewer
// than 3 distinct vertices, near-zero area, or self-intersection.
func (l Loop) Validate() error {
	c := l.Canonical()
	if len(c) < 3 {
		return errors.DegenerateLoopError(len(c))
	}
	if math.Abs(c.Area()) < Eps {
		return errors.ZeroAreaLoopError()
	}
	if c.SelfIntersects() {
		return errors.SelfIntersectError()
	}
	return nil
}

// SelfIntersects reports whether any two non-adjacent edges of l cross.
// This is the O(n^2) pairwise sweep; loop sizes in this kernel stay in the
// hundreds, so the simple form wins over a Bentley-Ottmann setup.
func (l Loop) SelfIntersects() bool {
	c := l.Canonical()
	n := len(c)
	if n < 4 {
		return false
	}
	for i := 0; i < n; i++ {
		a1, a2 := c[i], c[(i+1)%n]
		for j := i + 2; j < n; j++ {
			// Skip edges adjacent to edge i (shared vertex is not a crossing).
			if i == 0 && j == n-1 {
				continue
			}
			b1, b2 := c[j], c[(j+1)%n]
			if SegmentsCross(a1, a2, b1, b2) {
				return true
			}
		}
	}
	return false
}

// SegmentsCross reports whether segments a1-a2 and b1-b2 properly
// intersect (touching endpoints do not count).
func SegmentsCross(a1, a2, b1, b2 Point) bool {
	d1 := a2.Sub(a1).Cross(b1.Sub(a1))
	d2 := a2.Sub(a1).Cross(b2.Sub(a1))
	d3 := b2.Sub(b1).Cross(a1.Sub(b1))
	d4 := b2.Sub(b1).Cross(a2.Sub(b1))
	return ((d1 > Eps && d2 < -Eps) || (d1 < -Eps && d2 > Eps)) &&
		((d3 > Eps && d4 < -Eps) || (d3 < -Eps && d4 > Eps))
}

// XCrossings returns the sorted X coordinates where the horizontal line at
// y crosses the edges of l. Used by the lane raster sweep.
func (l Loop) XCrossings(y float64) []float64 {
	n := len(l)
	var xs []float64
	for i := 0; i < n; i++ {
		a, b := l[i], l[(i+1)%n]
		if (a.Y > y) == (b.Y > y) {
			continue
		}
		xs = append(xs, a.X+(y-a.Y)/(b.Y-a.Y)*(b.X-a.X))
	}
	sortFloats(xs)
	return xs
}

func sortFloats(xs []float64) {
	// Insertion sort; crossing lists are tiny.
	for i := 1; i < len(xs); i++ {
		for j := i; j > 0 && xs[j] < xs[j-1]; j-- {
			xs[j], xs[j-1] = xs[j-1], xs[j]
		}
	}
}

// CircleFrom3 returns the center and radius of the circle through a, b, c.
// ok is false when the points are collinear within tolerance.
func CircleFrom3(a, b, c Point) (center Point, radius float64, ok bool) {
	d := 2 * (a.X*(b.Y-c.Y) + b.X*(c.Y-a.Y) + c.X*(a.Y-b.Y))
	if math.Abs(d) < Eps {
		return Point{}, 0, false
	}
	a2 := a.X*a.X + a.Y*a.Y
	b2 := b.X*b.X + b.Y*b.Y
	c2 := c.X*c.X + c.Y*c.Y
	center = Point{
		X: (a2*(b.Y-c.Y) + b2*(c.Y-a.Y) + c2*(a.Y-b.Y)) / d,
		Y: (a2*(c.X-b.X) + b2*(a.X-c.X) + c2*(b.X-a.X)) / d,
	}
	return center, center.DistanceTo(a), true
}
