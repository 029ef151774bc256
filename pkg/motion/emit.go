// Path-point to motion-record emission
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package motion

import (
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/toolpath"
)

// Feeds carries the feed rates for one pass, mm/min.
type Feeds struct {
	Base   float64
	Plunge float64
	Min    float64
}

// EmitParams configures one Z-level emission pass. The caller owns the
// multi-pass stepdown loop and calls Emit once per level.
type EmitParams struct {
	// Z is the cutting depth of this pass.
	Z float64

	Feeds Feeds

	// ArcTolerance bounds the chordal deviation accepted when a corner
	// fillet is replaced by an arc record.
	ArcTolerance float64

	// MinArcRadius and MaxArcRadius bound acceptable substituted arcs.
	MinArcRadius float64
	MaxArcRadius float64

	// FeedFloorPct scales the base feed for risk-elevated moves; the
	// result never drops below Feeds.Min.
	FeedFloorPct float64

	// FloorRadius: moves with a local curvature radius below this get the
	// floored feed.
	FloorRadius float64

	// FloorTrochoids applies the feed floor to trochoid-loop moves
	// themselves, not only the move following them.
	FloorTrochoids bool

	// AfterPlunge marks that the first cutting move of this pass follows
	// a Z plunge and must run at the floored feed.
	AfterPlunge bool

	// SafeZ is the traverse height used when a Retract link point makes
	// the cutter lift over an island instead of cutting across it.
	SafeZ float64
}

// flooredFeed returns the reduced feed applied after plunges and in tight
// curvature.
func (p EmitParams) flooredFeed() float64 {
	f := p.Feeds.Base * p.FeedFloorPct
	return math.Max(p.Feeds.Min, f)
}

// Emit walks one pass of path points and produces the motion records for
// it. Fillet triples become arc records when the three-point circle fits
// the radius bounds and chordal tolerance; otherwise the corner stays as
// straight segments. Output is byte-deterministic for identical input.
func Emit(points []toolpath.PathPoint, p EmitParams) ([]Record, error) {
	if p.Feeds.Base <= 0 {
		return nil, errors.ParameterError("base_feed", p.Feeds.Base, "must be positive")
	}
	if p.FeedFloorPct < 0 || p.FeedFloorPct > 1 {
		return nil, errors.ParameterError("feed_floor_pct", p.FeedFloorPct, "must be in [0,1]")
	}
	if len(points) < 2 {
		return nil, nil
	}

	records := make([]Record, 0, len(points))
	pos := points[0].P
	afterPlunge := p.AfterPlunge

	appendRecord := func(r Record) {
		records = append(records, r)
		pos = r.End()
		afterPlunge = false
	}

	for i := 1; i < len(points); i++ {
		pt := points[i]

		if pt.Kind == toolpath.FilletStart && i+1 < len(points) && points[i+1].Kind == toolpath.FilletEnd {
			if rec, ok := arcSubstitute(pos, pt.P, points[i+1].P, p); ok {
				feed := p.Feeds.Base
				if afterPlunge || arcRadius(rec, pos) < p.FloorRadius {
					feed = p.flooredFeed()
				}
				rec.Feed = feed
				rec.Z = p.Z
				appendRecord(rec)
				i++ // consumed the FilletEnd point
				continue
			}
		}

		if pt.Kind == toolpath.Retract && p.SafeZ > p.Z {
			records = append(records,
				Record{Kind: Rapid, X: pos.X, Y: pos.Y, Z: p.SafeZ},
				Record{Kind: Rapid, X: pt.P.X, Y: pt.P.Y, Z: p.SafeZ},
				Record{Kind: Linear, X: pt.P.X, Y: pt.P.Y, Z: p.Z, Feed: p.Feeds.Plunge},
			)
			pos = pt.P
			afterPlunge = true
			continue
		}

		if pt.P.AlmostEqual(pos) {
			continue
		}
		feed := p.Feeds.Base
		if afterPlunge {
			feed = p.flooredFeed()
		}
		if pt.Kind == toolpath.TrochoidLoop && p.FloorTrochoids {
			feed = p.flooredFeed()
		}
		appendRecord(Record{
			Kind: Linear,
			X:    pt.P.X, Y: pt.P.Y, Z: p.Z,
			Feed: feed,
		})
	}
	return records, nil
}

// arcSubstitute fits the circle through (previous, guide, exit) and
// returns the replacing arc record when it passes the acceptance checks.
// Substitution is never forced: any failure keeps the straight segments.
func arcSubstitute(prev, guide, exit geom.Point, p EmitParams) (Record, bool) {
	center, radius, ok := geom.CircleFrom3(prev, guide, exit)
	if !ok {
		return Record{}, false
	}
	minR, maxR := p.MinArcRadius, p.MaxArcRadius
	if maxR <= 0 {
		maxR = 1000
	}
	if radius < minR || radius > maxR {
		return Record{}, false
	}
	if p.ArcTolerance > 0 {
		// Largest deviation between the arc and the two replaced chords.
		dev := math.Max(sagitta(radius, prev.DistanceTo(guide)), sagitta(radius, guide.DistanceTo(exit)))
		if dev > p.ArcTolerance {
			return Record{}, false
		}
	}

	kind := ArcCW
	if guide.Sub(prev).Cross(exit.Sub(guide)) > 0 {
		kind = ArcCCW
	}
	return Record{
		Kind: kind,
		X:    exit.X, Y: exit.Y,
		I: center.X - prev.X, J: center.Y - prev.Y,
		CenterForm: true,
	}, true
}

// sagitta is the bulge height of an arc of the given radius over a chord.
func sagitta(radius, chord float64) float64 {
	h := chord / 2
	if h >= radius {
		return radius
	}
	return radius - math.Sqrt(radius*radius-h*h)
}

func arcRadius(r Record, start geom.Point) float64 {
	if !r.IsArc() {
		return math.Inf(1)
	}
	if r.CenterForm {
		return math.Hypot(r.I, r.J)
	}
	return math.Abs(r.R)
}
