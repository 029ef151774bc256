// Textual G-code formatting of motion records
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package motion

import (
	"fmt"
	"math"
	"strings"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
)

// ArcForm selects how arc geometry is written.
type ArcForm int

const (
	// ArcCenterForm writes arcs with I/J center offsets.
	ArcCenterForm ArcForm = iota
	// ArcRadiusForm writes arcs with an R word. R is negative when the
	// sweep exceeds a half circle.
	ArcRadiusForm
)

// ParseArcForm maps a profile string to an arc form.
func ParseArcForm(s string) (ArcForm, error) {
	switch s {
	case "offset", "center", "ij", "":
		return ArcCenterForm, nil
	case "radius", "r":
		return ArcRadiusForm, nil
	}
	return ArcCenterForm, errors.New(errors.ErrParamRange,
		fmt.Sprintf("unknown arc form %q (want offset or radius)", s))
}

// FormatOptions controls the textual rendering of a record sequence.
type FormatOptions struct {
	ArcForm ArcForm

	// MaxArcSweepDeg splits arcs sweeping more than this many degrees into
	// equal pieces. Zero disables splitting. Radius-form output for
	// controllers that reject over-half-circle R words wants 180 here.
	MaxArcSweepDeg float64

	// Precision is the number of decimal places per coordinate word.
	// Zero means the default of 3.
	Precision int

	// Start and StartZ seed the position tracker so the first words can be
	// suppressed when unchanged.
	Start  geom.Point
	StartZ float64
}

// Format renders records as G-code lines, one per move. Word order is
// fixed (axis words, then arc words, then F), feed is modal, and every
// number goes through the same precision so identical inputs produce
// byte-identical text.
func Format(records []Record, o FormatOptions) (string, error) {
	prec := o.Precision
	if prec <= 0 {
		prec = 3
	}
	f := &formatter{opts: o, prec: prec, pos: o.Start, z: o.StartZ, feed: -1}
	for _, r := range records {
		if err := f.write(r); err != nil {
			return "", err
		}
	}
	return f.b.String(), nil
}

type formatter struct {
	opts FormatOptions
	prec int
	b    strings.Builder

	pos  geom.Point
	z    float64
	feed float64
}

func (f *formatter) num(v float64) string {
	s := fmt.Sprintf("%.*f", f.prec, v)
	if s == "-0."+strings.Repeat("0", f.prec) {
		s = s[1:]
	}
	return s
}

func (f *formatter) write(r Record) error {
	if r.IsArc() {
		return f.writeArc(r)
	}

	var words []string
	end := r.End()
	if math.Abs(end.X-f.pos.X) > geom.Eps || math.Abs(end.Y-f.pos.Y) > geom.Eps {
		words = append(words, "X"+f.num(end.X), "Y"+f.num(end.Y))
	}
	if math.Abs(r.Z-f.z) > geom.Eps {
		words = append(words, "Z"+f.num(r.Z))
	}
	if len(words) == 0 {
		return nil
	}
	if r.Kind == Linear && r.Feed > 0 && r.Feed != f.feed {
		words = append(words, "F"+f.num(r.Feed))
		f.feed = r.Feed
	}
	f.b.WriteString(r.Kind.String() + " " + strings.Join(words, " ") + "\n")
	f.pos, f.z = end, r.Z
	return nil
}

func (f *formatter) writeArc(r Record) error {
	var center geom.Point
	if r.CenterForm {
		center = r.Center(f.pos)
	} else {
		c, err := RadiusFormCenter(f.pos, r.End(), r.R, r.Kind == ArcCCW)
		if err != nil {
			return err
		}
		center = c
	}

	ccw := r.Kind == ArcCCW
	sweep := ArcSweep(f.pos, r.End(), center, ccw)
	pieces := 1
	if f.opts.MaxArcSweepDeg > 0 {
		maxRad := f.opts.MaxArcSweepDeg * math.Pi / 180
		pieces = int(math.Ceil(sweep / (maxRad + geom.Eps)))
		if pieces < 1 {
			pieces = 1
		}
	}

	radius := center.DistanceTo(f.pos)
	a0 := math.Atan2(f.pos.Y-center.Y, f.pos.X-center.X)
	dir := -1.0
	if ccw {
		dir = 1.0
	}
	z0 := f.z
	for k := 1; k <= pieces; k++ {
		frac := float64(k) / float64(pieces)
		end := r.End()
		if k < pieces {
			a := a0 + dir*sweep*frac
			end = geom.Point{X: center.X + radius*math.Cos(a), Y: center.Y + radius*math.Sin(a)}
		}
		zEnd := z0 + (r.Z-z0)*frac

		words := []string{"X" + f.num(end.X), "Y" + f.num(end.Y)}
		if math.Abs(zEnd-f.z) > geom.Eps {
			words = append(words, "Z"+f.num(zEnd))
		}
		switch f.opts.ArcForm {
		case ArcRadiusForm:
			rWord := radius
			if sweep/float64(pieces) > math.Pi+geom.Eps {
				rWord = -radius
			}
			words = append(words, "R"+f.num(rWord))
		default:
			i, j := OffsetFormFromCenter(f.pos, center)
			words = append(words, "I"+f.num(i), "J"+f.num(j))
		}
		if r.Feed > 0 && r.Feed != f.feed {
			words = append(words, "F"+f.num(r.Feed))
			f.feed = r.Feed
		}
		f.b.WriteString(r.Kind.String() + " " + strings.Join(words, " ") + "\n")
		f.pos, f.z = end, zEnd
	}
	return nil
}
