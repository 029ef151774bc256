// Line-by-line program execution
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package sim

import (
	"fmt"
	"math"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/motion"
)

// lineWords is the decoded content of one line before execution.
type lineWords struct {
	motionWord int // 0..3, -1 when absent

	hasX, hasY, hasZ bool
	x, y, z          float64

	hasI, hasJ, hasK bool
	i, j, k          float64

	hasR bool
	r    float64

	dwell float64 // seconds from G4 P
}

// execLine decodes and runs one source line. Modal words apply in order
// before the motion executes, so "G91 G1 X5" moves relatively.
func (mc *machine) execLine(line string, lineNo int) {
	words, err := parseLine(line, lineNo)
	if err != nil {
		mc.issue(IssueParse, lineNo, err.Error())
		return
	}
	if len(words) == 0 {
		return
	}

	lw := lineWords{motionWord: -1}
	dwellNext := false
	for _, w := range words {
		switch w.letter {
		case 'G':
			c := w.value
			if c >= 0 && c <= 3 && c == math.Trunc(c) {
				lw.motionWord = int(c)
			} else if c == 4 {
				dwellNext = true
			} else if !mc.m.applyG(c) {
				logger.Debugf("line %d: ignoring unsupported G%g", lineNo, c)
			}
		case 'M', 'T':
			// Tool, spindle and coolant words do not affect geometry.
		case 'F':
			if w.value <= 0 {
				mc.issue(IssueParse, lineNo, "feed rate must be positive")
				return
			}
			if mc.m.inverseTime {
				mc.m.feed = w.value
			} else {
				mc.m.feed = w.value * mc.m.unitScale
			}
		case 'S':
			mc.m.spindle = w.value
		case 'P':
			if dwellNext {
				lw.dwell = w.value
			}
		case 'X':
			lw.hasX, lw.x = true, w.value*mc.m.unitScale
		case 'Y':
			lw.hasY, lw.y = true, w.value*mc.m.unitScale
		case 'Z':
			lw.hasZ, lw.z = true, w.value*mc.m.unitScale
		case 'I':
			lw.hasI, lw.i = true, w.value*mc.m.unitScale
		case 'J':
			lw.hasJ, lw.j = true, w.value*mc.m.unitScale
		case 'K':
			lw.hasK, lw.k = true, w.value*mc.m.unitScale
		case 'R':
			lw.hasR, lw.r = true, w.value*mc.m.unitScale
		default:
			mc.issue(IssueParse, lineNo, fmt.Sprintf("unsupported word %c%g", w.letter, w.value))
			return
		}
	}

	if lw.dwell > 0 {
		mc.res.TotalTime += lw.dwell
	}
	if lw.motionWord >= 0 {
		mc.m.motion = lw.motionWord
	}
	if !lw.hasX && !lw.hasY && !lw.hasZ {
		return
	}
	if mc.m.motion < 0 {
		mc.issue(IssueParse, lineNo, "axis words before any motion mode")
		return
	}
	mc.execMove(lw, lineNo)
}

func (mc *machine) execMove(lw lineWords, lineNo int) {
	tx, ty, tz := mc.x, mc.y, mc.z
	if mc.m.absolute {
		if lw.hasX {
			tx = lw.x
		}
		if lw.hasY {
			ty = lw.y
		}
		if lw.hasZ {
			tz = lw.z
		}
	} else {
		if lw.hasX {
			tx += lw.x
		}
		if lw.hasY {
			ty += lw.y
		}
		if lw.hasZ {
			tz += lw.z
		}
	}

	switch mc.m.motion {
	case 0:
		mc.doRapid(tx, ty, tz, lineNo)
	case 1:
		mc.doLinear(tx, ty, tz, mc.m.feed, lineNo)
	case 2, 3:
		mc.execArc(lw, tx, ty, tz, lineNo)
	}
}

// execArc resolves the arc center from either the offset words of the
// active plane or the R word, then hands off to the shared arc model.
// Unresolvable geometry degrades to a straight move so the rest of the
// program still simulates.
func (mc *machine) execArc(lw lineWords, tx, ty, tz float64, lineNo int) {
	ccw := mc.m.motion == 3
	u0, v0, _ := mc.planeCoords(mc.x, mc.y, mc.z)
	u1, v1, _ := mc.planeCoords(tx, ty, tz)

	if lw.hasR {
		center, err := motion.RadiusFormCenter(
			geom.Point{X: u0, Y: v0}, geom.Point{X: u1, Y: v1}, lw.r, ccw)
		if err != nil {
			mc.issue(IssueArcGeometry, lineNo, err.Error())
			mc.doLinear(tx, ty, tz, mc.m.feed, lineNo)
			return
		}
		mc.doArcUV(ccw, tx, ty, tz, center.X, center.Y, mc.m.feed, lineNo)
		return
	}

	var du, dv float64
	var ok bool
	switch mc.m.plane {
	case planeZX:
		du, dv = lw.k, lw.i
		ok = lw.hasI || lw.hasK
	case planeYZ:
		du, dv = lw.j, lw.k
		ok = lw.hasJ || lw.hasK
	default:
		du, dv = lw.i, lw.j
		ok = lw.hasI || lw.hasJ
	}
	if !ok {
		mc.issue(IssueArcGeometry, lineNo, "arc without center offsets or radius")
		mc.doLinear(tx, ty, tz, mc.m.feed, lineNo)
		return
	}
	mc.doArcUV(ccw, tx, ty, tz, u0+du, v0+dv, mc.m.feed, lineNo)
}
