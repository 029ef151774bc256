// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package geom

import "math"

// SegmentDistance returns the distance from p to the segment a-b.
func SegmentDistance(p, a, b Point) float64 {
	ab := b.Sub(a)
	l2 := ab.Dot(ab)
	if l2 < Eps*Eps {
		return p.DistanceTo(a)
	}
	t := p.Sub(a).Dot(ab) / l2
	if t < 0 {
		t = 0
	} else if t > 1 {
		t = 1
	}
	return p.DistanceTo(a.Add(ab.Scale(t)))
}

// DistanceToPoint returns the minimum distance from p to the closed
// outline of l.
func (l Loop) DistanceToPoint(p Point) float64 {
	n := len(l)
	if n == 0 {
		return math.Inf(1)
	}
	if n == 1 {
		return p.DistanceTo(l[0])
	}
	best := math.Inf(1)
	for i := 0; i < n; i++ {
		d := SegmentDistance(p, l[i], l[(i+1)%n])
		if d < best {
			best = d
		}
	}
	return best
}
