// Modal interpreter state
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package sim

// plane is the active arc plane.
type plane int

const (
	planeXY plane = iota // G17, offsets I/J
	planeZX              // G18, offsets I/K
	planeYZ              // G19, offsets J/K
)

// modal holds the sticky interpreter state. Every field persists across
// lines until a word changes it, matching how a controller executes a
// program stream.
type modal struct {
	// unitScale converts incoming coordinate words to millimeters.
	// 1 under G21, 25.4 under G20.
	unitScale float64

	absolute    bool
	plane       plane
	inverseTime bool // G93; feed words mean 1/minutes per move

	feed    float64 // mm/min under G94
	spindle float64

	// motion is the sticky motion mode, 0..3 for G0..G3, -1 before any
	// motion word has been seen.
	motion int
}

func newModal(defaultFeed float64) modal {
	return modal{
		unitScale: 1,
		absolute:  true,
		plane:     planeXY,
		feed:      defaultFeed,
		motion:    -1,
	}
}

// applyG handles a non-motion G word. Returns false when the word is not
// a recognized modal setting.
func (m *modal) applyG(code float64) bool {
	switch code {
	case 17:
		m.plane = planeXY
	case 18:
		m.plane = planeZX
	case 19:
		m.plane = planeYZ
	case 20:
		m.unitScale = 25.4
	case 21:
		m.unitScale = 1
	case 90:
		m.absolute = true
	case 91:
		m.absolute = false
	case 93:
		m.inverseTime = true
	case 94:
		m.inverseTime = false
	default:
		return false
	}
	return true
}
