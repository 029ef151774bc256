// Motion records shared by the emitter and the simulator
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package motion defines the discrete motion record type that the emitter
// produces and the simulator reconstructs, plus the path-to-record
// emitter and the textual G-code formatter. A finished program is an
// append-only record sequence; records are plain values and never mutated
// after emission.
package motion

import "github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"

// Kind is the motion record discriminator.
type Kind uint8

const (
	// Rapid is an unloaded positioning move (G0).
	Rapid Kind = iota
	// Linear is a cutting move at a feed rate (G1).
	Linear
	// ArcCW is a clockwise arc (G2).
	ArcCW
	// ArcCCW is a counter-clockwise arc (G3).
	ArcCCW
)

// String returns the G-code word for the kind.
func (k Kind) String() string {
	switch k {
	case Rapid:
		return "G0"
	case Linear:
		return "G1"
	case ArcCW:
		return "G2"
	case ArcCCW:
		return "G3"
	default:
		return "G?"
	}
}

// Record is one discrete motion. Endpoints are absolute millimeter
// coordinates. Arc records carry either a center offset (I/J, relative to
// the move's start point) or a radius; CenterForm tells which. Feed is
// mm/min and zero for rapids.
type Record struct {
	Kind Kind

	X, Y, Z float64

	// Arc geometry: center-offset form (I, J) or radius form (R).
	I, J       float64
	R          float64
	CenterForm bool

	Feed float64
}

// IsArc reports whether the record is an arc move.
func (r Record) IsArc() bool { return r.Kind == ArcCW || r.Kind == ArcCCW }

// End returns the XY endpoint of the record.
func (r Record) End() geom.Point { return geom.Point{X: r.X, Y: r.Y} }

// Center resolves the arc center for a center-form record given the
// move's start point.
func (r Record) Center(start geom.Point) geom.Point {
	return geom.Point{X: start.X + r.I, Y: start.Y + r.J}
}
