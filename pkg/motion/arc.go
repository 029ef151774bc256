// Arc geometry shared by the emitter, formatter, and simulator
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package motion

import (
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
)

// ArcSweep returns the swept angle from start to end around center in the
// given rotational sense, normalized into (0, 2pi]. Coincident endpoints
// mean a full circle.
func ArcSweep(start, end, center geom.Point, ccw bool) float64 {
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	a1 := math.Atan2(end.Y-center.Y, end.X-center.X)
	d := a1 - a0
	if !ccw {
		d = -d
	}
	for d <= 1e-12 {
		d += 2 * math.Pi
	}
	for d > 2*math.Pi {
		d -= 2 * math.Pi
	}
	return d
}

// RadiusFormCenter resolves the center of a radius-form arc. Two mirror
// centers satisfy any valid radius; the correct one is the one whose
// implied sweep is consistent with the commanded direction and the radius
// sign convention (positive radius selects the minor arc, negative the
// major). A radius smaller than half the chord has no solution and is an
// ArcGeometryError, never a silent clamp.
func RadiusFormCenter(start, end geom.Point, radius float64, ccw bool) (geom.Point, error) {
	chord := end.Sub(start)
	c := chord.Length()
	r := math.Abs(radius)
	if c < geom.Eps {
		return geom.Point{}, errors.ArcDirectionError("radius-form arc with coincident endpoints is ambiguous")
	}
	if r < c/2-geom.Eps {
		return geom.Point{}, errors.ArcRadiusError(r, c/2)
	}
	if r < c/2 {
		r = c / 2
	}
	h := math.Sqrt(math.Max(0, r*r-(c/2)*(c/2)))
	mid := start.Add(chord.Scale(0.5))
	perp := chord.Normalize().Perp()

	c1 := mid.Add(perp.Scale(h))
	c2 := mid.Sub(perp.Scale(h))
	wantMinor := radius >= 0
	if (ArcSweep(start, end, c1, ccw) <= math.Pi+geom.Eps) == wantMinor {
		return c1, nil
	}
	return c2, nil
}

// OffsetFormFromCenter converts a resolved center back to the I/J offset
// relative to the start point.
func OffsetFormFromCenter(start, center geom.Point) (i, j float64) {
	return center.X - start.X, center.Y - start.Y
}
