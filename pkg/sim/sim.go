// Program simulation: lengths, timing, and safety issues
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package sim reconstructs machine motion from a record sequence or a
// textual G-code program. It reports cut and rapid lengths, a trapezoidal
// time estimate, the traversed bounding box, and a list of issues
// (envelope violations, unsafe rapids, arc geometry failures, parse
// failures). Simulation never stops at the first problem; every issue is
// collected and motion continues with a degraded move where needed.
package sim

import (
	"math"
	"strings"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/log"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/motion"
)

var logger = log.NewLogger("sim")

// Envelope is the reachable machine volume in millimeters.
type Envelope struct {
	MinX, MinY, MinZ float64
	MaxX, MaxY, MaxZ float64
}

func (e Envelope) contains(x, y, z float64) bool {
	return x >= e.MinX-geom.Eps && x <= e.MaxX+geom.Eps &&
		y >= e.MinY-geom.Eps && y <= e.MaxY+geom.Eps &&
		z >= e.MinZ-geom.Eps && z <= e.MaxZ+geom.Eps
}

// Params configures a simulation run.
type Params struct {
	// Envelope enables travel-limit checking when non-nil.
	Envelope *Envelope

	// RapidRate is the positioning speed, mm/min.
	RapidRate float64

	// DefaultFeed substitutes for cutting moves before any F word.
	DefaultFeed float64

	// Accel is the per-move acceleration for the trapezoidal time model,
	// mm/s^2. Zero disables the model and times moves at constant speed.
	Accel float64

	// ClearanceZ is the height above which XY rapids are considered safe.
	ClearanceZ float64

	// AutoLift rewrites an unsafe XY rapid into lift, traverse, and
	// re-plunge rapids instead of only flagging it.
	AutoLift bool

	// LiftZ is the traverse height AutoLift raises to.
	LiftZ float64

	StartX, StartY, StartZ float64
}

// DefaultParams returns conservative hobby-router defaults.
func DefaultParams() Params {
	return Params{
		RapidRate:   3000,
		DefaultFeed: 600,
		Accel:       500,
		ClearanceZ:  1,
		LiftZ:       5,
	}
}

// IssueKind classifies a simulation finding.
type IssueKind string

const (
	IssueEnvelope    IssueKind = "envelope_violation"
	IssueUnsafeRapid IssueKind = "unsafe_rapid"
	IssueArcGeometry IssueKind = "arc_geometry"
	IssueParse       IssueKind = "parse_error"
)

// Issue is one finding, tied to the source line when the input was text.
type Issue struct {
	Kind    IssueKind
	Line    int
	Message string
}

// Move is one reconstructed motion with its resolved geometry and timing.
type Move struct {
	Kind       motion.Kind
	From, To   geom.Point
	FromZ, ToZ float64
	Center     geom.Point
	Radius     float64
	Length     float64
	Feed       float64
	Time       float64
	Line       int
}

// Result is the simulation outcome.
type Result struct {
	RapidLength float64
	FeedLength  float64
	TotalTime   float64

	Moves  []Move
	Issues []Issue

	BBoxMin, BBoxMax geom.Point
	MinZ, MaxZ       float64
}

// HasIssue reports whether any issue of the kind was found.
func (r Result) HasIssue(kind IssueKind) bool {
	for _, is := range r.Issues {
		if is.Kind == kind {
			return true
		}
	}
	return false
}

// Simulate runs a record sequence through the machine model. Records are
// always XY-plane absolute millimeter moves, so no modal state applies.
func Simulate(records []motion.Record, p Params) Result {
	mc := newMachine(p)
	for _, r := range records {
		switch r.Kind {
		case motion.Rapid:
			mc.doRapid(r.X, r.Y, r.Z, 0)
		case motion.Linear:
			mc.doLinear(r.X, r.Y, r.Z, mc.feedOr(r.Feed), 0)
		case motion.ArcCW, motion.ArcCCW:
			ccw := r.Kind == motion.ArcCCW
			var center geom.Point
			if r.CenterForm {
				center = r.Center(geom.Point{X: mc.x, Y: mc.y})
			} else {
				c, err := motion.RadiusFormCenter(geom.Point{X: mc.x, Y: mc.y}, r.End(), r.R, ccw)
				if err != nil {
					mc.issue(IssueArcGeometry, 0, err.Error())
					mc.doLinear(r.X, r.Y, r.Z, mc.feedOr(r.Feed), 0)
					continue
				}
				center = c
			}
			mc.doArcUV(ccw, r.X, r.Y, r.Z, center.X, center.Y, mc.feedOr(r.Feed), 0)
		}
	}
	return mc.res
}

// SimulateText parses and simulates a textual G-code program. Lines that
// fail to parse become issues and are skipped; execution continues.
func SimulateText(program string, p Params) Result {
	mc := newMachine(p)
	for i, line := range strings.Split(program, "\n") {
		mc.execLine(line, i+1)
	}
	return mc.res
}

type machine struct {
	p Params
	m modal

	x, y, z float64
	res     Result
}

func newMachine(p Params) *machine {
	if p.RapidRate <= 0 {
		p.RapidRate = 3000
	}
	if p.DefaultFeed <= 0 {
		p.DefaultFeed = 600
	}
	mc := &machine{
		p: p,
		m: newModal(p.DefaultFeed),
		x: p.StartX, y: p.StartY, z: p.StartZ,
	}
	mc.res.BBoxMin = geom.Point{X: p.StartX, Y: p.StartY}
	mc.res.BBoxMax = mc.res.BBoxMin
	mc.res.MinZ, mc.res.MaxZ = p.StartZ, p.StartZ
	return mc
}

func (mc *machine) feedOr(f float64) float64 {
	if f > 0 {
		return f
	}
	return mc.p.DefaultFeed
}

func (mc *machine) issue(kind IssueKind, line int, msg string) {
	logger.Debugf("line %d: %s: %s", line, kind, msg)
	mc.res.Issues = append(mc.res.Issues, Issue{Kind: kind, Line: line, Message: msg})
}

// moveTime applies the trapezoidal profile: a move long enough to reach
// the commanded speed gets a cruise phase, a shorter one peaks early
// (triangular profile). Inverse-time moves take exactly 1/F minutes.
func (mc *machine) moveTime(length, feedMMMin float64, inverseTime bool) float64 {
	if length <= 0 {
		return 0
	}
	if inverseTime {
		if feedMMMin <= 0 {
			return 0
		}
		return 60 / feedMMMin
	}
	v := feedMMMin / 60
	a := mc.p.Accel
	if a <= 0 {
		return length / v
	}
	if length >= v*v/a {
		return length/v + v/a
	}
	return 2 * math.Sqrt(length/a)
}

func (mc *machine) addMove(mv Move) {
	mc.res.Moves = append(mc.res.Moves, mv)
	if mv.Kind == motion.Rapid {
		mc.res.RapidLength += mv.Length
	} else {
		mc.res.FeedLength += mv.Length
	}
	mc.res.TotalTime += mv.Time

	mc.res.BBoxMin.X = math.Min(mc.res.BBoxMin.X, mv.To.X)
	mc.res.BBoxMin.Y = math.Min(mc.res.BBoxMin.Y, mv.To.Y)
	mc.res.BBoxMax.X = math.Max(mc.res.BBoxMax.X, mv.To.X)
	mc.res.BBoxMax.Y = math.Max(mc.res.BBoxMax.Y, mv.To.Y)
	mc.res.MinZ = math.Min(mc.res.MinZ, mv.ToZ)
	mc.res.MaxZ = math.Max(mc.res.MaxZ, mv.ToZ)

	if mc.p.Envelope != nil && !mc.p.Envelope.contains(mv.To.X, mv.To.Y, mv.ToZ) {
		mc.issue(IssueEnvelope, mv.Line, "move endpoint outside machine envelope")
	}

	mc.x, mc.y, mc.z = mv.To.X, mv.To.Y, mv.ToZ
}

func (mc *machine) doRapid(tx, ty, tz float64, line int) {
	xyMove := math.Abs(tx-mc.x) > geom.Eps || math.Abs(ty-mc.y) > geom.Eps
	below := mc.z < mc.p.ClearanceZ-geom.Eps || tz < mc.p.ClearanceZ-geom.Eps
	if xyMove && below {
		if mc.p.AutoLift {
			mc.issue(IssueUnsafeRapid, line, "XY rapid below clearance height, rewritten as lift and traverse")
			mc.rapidSegment(mc.x, mc.y, mc.p.LiftZ, line)
			mc.rapidSegment(tx, ty, mc.p.LiftZ, line)
			mc.rapidSegment(tx, ty, tz, line)
			return
		}
		mc.issue(IssueUnsafeRapid, line, "XY rapid below clearance height")
	}
	mc.rapidSegment(tx, ty, tz, line)
}

func (mc *machine) rapidSegment(tx, ty, tz float64, line int) {
	length := dist3(mc.x, mc.y, mc.z, tx, ty, tz)
	if length < geom.Eps {
		return
	}
	mc.addMove(Move{
		Kind: motion.Rapid,
		From: geom.Point{X: mc.x, Y: mc.y}, To: geom.Point{X: tx, Y: ty},
		FromZ: mc.z, ToZ: tz,
		Length: length,
		Feed:   mc.p.RapidRate,
		Time:   mc.moveTime(length, mc.p.RapidRate, false),
		Line:   line,
	})
}

func (mc *machine) doLinear(tx, ty, tz, feed float64, line int) {
	length := dist3(mc.x, mc.y, mc.z, tx, ty, tz)
	if length < geom.Eps {
		return
	}
	mc.addMove(Move{
		Kind: motion.Linear,
		From: geom.Point{X: mc.x, Y: mc.y}, To: geom.Point{X: tx, Y: ty},
		FromZ: mc.z, ToZ: tz,
		Length: length,
		Feed:   feed,
		Time:   mc.moveTime(length, feed, mc.m.inverseTime),
		Line:   line,
	})
}

// doArcUV executes an arc whose center is already resolved in the active
// plane's (u,v) coordinates. The off-plane axis moves linearly, making
// the path a helix whose length is the hypotenuse of the arc length and
// the off-plane travel.
func (mc *machine) doArcUV(ccw bool, tx, ty, tz, cu, cv, feed float64, line int) {
	u0, v0, w0 := mc.planeCoords(mc.x, mc.y, mc.z)
	u1, v1, w1 := mc.planeCoords(tx, ty, tz)

	start := geom.Point{X: u0, Y: v0}
	end := geom.Point{X: u1, Y: v1}
	center := geom.Point{X: cu, Y: cv}
	r0 := center.DistanceTo(start)
	r1 := center.DistanceTo(end)
	if r0 < geom.Eps {
		mc.issue(IssueArcGeometry, line, "arc center coincides with start point")
		mc.doLinear(tx, ty, tz, feed, line)
		return
	}
	if math.Abs(r0-r1) > 0.5 {
		mc.issue(IssueArcGeometry, line, "arc endpoint radius disagrees with start radius")
		mc.doLinear(tx, ty, tz, feed, line)
		return
	}

	sweep := motion.ArcSweep(start, end, center, ccw)
	length := math.Hypot(r0*sweep, w1-w0)

	// The bulge of the arc can leave the envelope even when both
	// endpoints are inside it, so the axis-aligned quadrant extremes
	// within the sweep are checked too.
	a0 := math.Atan2(start.Y-center.Y, start.X-center.X)
	flagged := false
	for q := 0; q < 4; q++ {
		qa := float64(q) * math.Pi / 2
		delta := qa - a0
		if !ccw {
			delta = a0 - qa
		}
		for delta < -geom.Eps {
			delta += 2 * math.Pi
		}
		for delta >= 2*math.Pi {
			delta -= 2 * math.Pi
		}
		if delta > sweep {
			continue
		}
		px, py, pz := mc.planeToMachine(
			cu+r0*math.Cos(qa), cv+r0*math.Sin(qa), w0+(w1-w0)*delta/sweep)
		mc.boundPoint(px, py, pz)
		if !flagged && mc.p.Envelope != nil && !mc.p.Envelope.contains(px, py, pz) {
			flagged = true
			mc.issue(IssueEnvelope, line, "arc passes outside machine envelope")
		}
	}

	kind := motion.ArcCW
	if ccw {
		kind = motion.ArcCCW
	}
	mc.addMove(Move{
		Kind: kind,
		From: geom.Point{X: mc.x, Y: mc.y}, To: geom.Point{X: tx, Y: ty},
		FromZ: mc.z, ToZ: tz,
		Center: center,
		Radius: r0,
		Length: length,
		Feed:   feed,
		Time:   mc.moveTime(length, feed, mc.m.inverseTime),
		Line:   line,
	})
}

// planeCoords maps machine coordinates into the active plane pair (u,v)
// plus the off-plane axis w. Axis order follows the standard viewing
// convention (G18 is Z then X, as seen from +Y) so the G2/G3 sense is
// preserved.
func (mc *machine) planeCoords(x, y, z float64) (u, v, w float64) {
	switch mc.m.plane {
	case planeZX:
		return z, x, y
	case planeYZ:
		return y, z, x
	default:
		return x, y, z
	}
}

// planeToMachine maps plane coordinates back to machine axes; inverse of
// planeCoords.
func (mc *machine) planeToMachine(u, v, w float64) (x, y, z float64) {
	switch mc.m.plane {
	case planeZX:
		return v, w, u
	case planeYZ:
		return w, u, v
	default:
		return u, v, w
	}
}

// boundPoint folds an intermediate path point into the traversed
// bounding box.
func (mc *machine) boundPoint(x, y, z float64) {
	mc.res.BBoxMin.X = math.Min(mc.res.BBoxMin.X, x)
	mc.res.BBoxMin.Y = math.Min(mc.res.BBoxMin.Y, y)
	mc.res.BBoxMax.X = math.Max(mc.res.BBoxMax.X, x)
	mc.res.BBoxMax.Y = math.Max(mc.res.BBoxMax.Y, y)
	mc.res.MinZ = math.Min(mc.res.MinZ, z)
	mc.res.MaxZ = math.Max(mc.res.MaxZ, z)
}

func dist3(x0, y0, z0, x1, y1, z1 float64) float64 {
	dx, dy, dz := x1-x0, y1-y0, z1-z0
	return math.Sqrt(dx*dx + dy*dy + dz*dz)
}
