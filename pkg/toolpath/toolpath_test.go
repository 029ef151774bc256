// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package toolpath

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/offset"
)

func testRings(t *testing.T, boundary geom.Loop) []offset.Ring {
	t.Helper()
	rings, err := offset.ToolpathOffsets(boundary, nil, offset.Params{
		ToolDiameter: 6,
		Stepover:     2.7,
		ArcTolerance: 0.01,
	})
	require.NoError(t, err)
	require.NotEmpty(t, rings)
	return rings
}

func rect(w, h float64) geom.Loop {
	return geom.Loop{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

func TestParseStrategy(t *testing.T) {
	for _, s := range []Strategy{Spiral, Lanes, Trochoidal} {
		got, err := ParseStrategy(s.String())
		require.NoError(t, err)
		assert.Equal(t, s, got)
	}
	_, err := ParseStrategy("zigzag")
	assert.Error(t, err)
}

func TestStitchRejectsBadSmoothing(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	_, err := Stitch(rings, Params{Strategy: Spiral, Smoothing: 1.5, ToolDiameter: 6})
	assert.Error(t, err)
	_, err = Stitch(rings, Params{Strategy: Spiral, Smoothing: -0.1, ToolDiameter: 6})
	assert.Error(t, err)
}

func TestStitchSpiralNoZeroSegments(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	pts, err := Stitch(rings, Params{Strategy: Spiral, Smoothing: 0.5, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)
	require.Greater(t, len(pts), 2)

	for i := 1; i < len(pts); i++ {
		assert.False(t, pts[i].P.AlmostEqual(pts[i-1].P),
			"zero-length segment at index %d (%v)", i, pts[i].P)
	}
}

func TestStitchDeterministic(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	p := Params{Strategy: Spiral, Smoothing: 0.5, ToolDiameter: 6, Stepover: 2.7}
	a, err := Stitch(rings, p)
	require.NoError(t, err)
	b, err := Stitch(rings, p)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestStitchStartsOnOutermostRing(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	pts, err := Stitch(rings, Params{Strategy: Spiral, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)

	found := false
	for _, v := range rings[0].Loop {
		if v.AlmostEqual(pts[0].P) {
			found = true
			break
		}
	}
	assert.True(t, found, "path start %v is not a vertex of the outermost ring", pts[0].P)
}

func TestSmoothingInsertsFillets(t *testing.T) {
	rings := testRings(t, rect(100, 60))

	plain, err := Stitch(rings, Params{Strategy: Spiral, Smoothing: 0, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)
	for _, pt := range plain {
		assert.Equal(t, Straight, pt.Kind)
	}

	smoothed, err := Stitch(rings, Params{Strategy: Spiral, Smoothing: 0.8, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)
	starts, ends := 0, 0
	for _, pt := range smoothed {
		switch pt.Kind {
		case FilletStart:
			starts++
		case FilletEnd:
			ends++
		}
	}
	assert.Greater(t, starts, 0, "no fillets on a rectangle path")
	assert.Equal(t, starts, ends, "unbalanced fillet markers")
}

func TestFilletGuidesPairWithEnds(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	pts, err := Stitch(rings, Params{Strategy: Spiral, Smoothing: 0.8, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)

	for i, pt := range pts {
		if pt.Kind == FilletStart {
			require.Less(t, i+1, len(pts), "fillet guide at path end")
			assert.Equal(t, FilletEnd, pts[i+1].Kind, "guide at %d not followed by exit", i)
		}
	}
}

func TestTrochoidalInsertsLoops(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	pts, err := Stitch(rings, Params{
		Strategy: Trochoidal, Smoothing: 0.5, ToolDiameter: 6, Stepover: 2.7,
	})
	require.NoError(t, err)

	loops := 0
	for _, pt := range pts {
		if pt.Kind == TrochoidLoop {
			loops++
		}
	}
	// Square rings turn 90 degrees at every corner, well past the
	// engagement threshold.
	assert.Greater(t, loops, trochoidSegments, "no trochoid loops on sharp corners")
}

func TestLanesStayInsidePocket(t *testing.T) {
	rings := testRings(t, rect(100, 60))
	pts, err := Stitch(rings, Params{Strategy: Lanes, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)
	require.NotEmpty(t, pts)

	for _, pt := range pts {
		assert.GreaterOrEqual(t, pt.P.X, 3-0.01)
		assert.LessOrEqual(t, pt.P.X, 97+0.01)
		assert.GreaterOrEqual(t, pt.P.Y, 3-0.01)
		assert.LessOrEqual(t, pt.P.Y, 57+0.01)
	}
}

func TestOrientWinding(t *testing.T) {
	ccw := rect(10, 10)
	assert.True(t, orient(ccw, true).IsCCW(), "climb path should run CCW")
	assert.False(t, orient(ccw, false).IsCCW(), "conventional path should run CW")
}

func TestNearestVertexTieBreak(t *testing.T) {
	square := rect(10, 10)
	// (5,5) is equidistant from all four corners; the lowest index wins.
	assert.Equal(t, 0, nearestVertex(square, geom.Point{X: 5, Y: 5}))
}

func TestSpiralBridgeUsesNearestPair(t *testing.T) {
	outer := geom.Loop{{X: 0, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 0, Y: 10}}
	inner := geom.Loop{{X: 8, Y: 8}, {X: 9, Y: 8}, {X: 9, Y: 9}, {X: 8, Y: 9}}
	rings := []offset.Ring{
		{Loop: outer, Index: 0, Pass: 0},
		{Loop: inner, Index: 1, Pass: 1},
	}
	pts, err := Stitch(rings, Params{Strategy: Spiral, Climb: true, ToolDiameter: 6, Stepover: 2.7})
	require.NoError(t, err)

	// The globally shortest chord between the rings runs (10,10) to
	// (9,9); the bridge must use it even though the outer circuit
	// finishes back at (0,0).
	entry := -1
	for i, pt := range pts {
		if pt.P.AlmostEqual(geom.Point{X: 9, Y: 9}) {
			entry = i
			break
		}
	}
	require.GreaterOrEqual(t, entry, 1, "inner ring entry vertex missing from path")
	assert.True(t, pts[entry-1].P.AlmostEqual(geom.Point{X: 10, Y: 10}),
		"bridge leaves from %v, want (10,10)", pts[entry-1].P)
}

func TestSpiralBridgeAvoidsKeepOut(t *testing.T) {
	// Two ring lobes separated by a keep-out wall: no straight bridge
	// exists, so the link must become a retract.
	left := geom.Loop{{X: 0, Y: 0}, {X: 3, Y: 0}, {X: 3, Y: 10}, {X: 0, Y: 10}}
	right := geom.Loop{{X: 7, Y: 0}, {X: 10, Y: 0}, {X: 10, Y: 10}, {X: 7, Y: 10}}
	wall := geom.Loop{{X: 4, Y: -2}, {X: 6, Y: -2}, {X: 6, Y: 12}, {X: 4, Y: 12}}
	rings := []offset.Ring{
		{Loop: left, Index: 0, Pass: 0},
		{Loop: right, Index: 1, Pass: 0},
	}
	pts, err := Stitch(rings, Params{
		Strategy: Spiral, Climb: true, ToolDiameter: 6, Stepover: 2.7,
		KeepOut: []geom.Loop{wall},
	})
	require.NoError(t, err)

	retracts := 0
	for i := 1; i < len(pts); i++ {
		if pts[i].Kind == Retract {
			retracts++
			continue
		}
		assert.False(t, segmentBlocked(pts[i-1].P, pts[i].P, []geom.Loop{wall}),
			"cutting segment %v to %v crosses the keep-out", pts[i-1].P, pts[i].P)
	}
	assert.Equal(t, 1, retracts, "bridge across the keep-out must retract")
}

func TestSpiralIslandBridgesStayClear(t *testing.T) {
	boundary := rect(100, 60)
	island := geom.Loop{{X: 40, Y: 20}, {X: 60, Y: 20}, {X: 60, Y: 40}, {X: 40, Y: 40}}
	op := offset.Params{ToolDiameter: 6, Stepover: 2.7, ArcTolerance: 0.01}
	rings, err := offset.ToolpathOffsets(boundary, []geom.Loop{island}, op)
	require.NoError(t, err)
	keepOut, err := offset.KeepOutLoops([]geom.Loop{island}, op)
	require.NoError(t, err)
	require.NotEmpty(t, keepOut)

	pts, err := Stitch(rings, Params{
		Strategy: Spiral, Climb: true, ToolDiameter: 6, Stepover: 2.7,
		KeepOut: keepOut,
	})
	require.NoError(t, err)

	// Every cutting segment, sampled along its interior, must stay out
	// of the island.
	for i := 1; i < len(pts); i++ {
		if pts[i].Kind == Retract {
			continue
		}
		a, b := pts[i-1].P, pts[i].P
		for _, f := range []float64{0.1, 0.3, 0.5, 0.7, 0.9} {
			s := a.Add(b.Sub(a).Scale(f))
			require.False(t, island.Contains(s),
				"segment %v to %v passes through the island at %v", a, b, s)
		}
	}
}

func TestStitchEmptyRings(t *testing.T) {
	pts, err := Stitch(nil, Params{Strategy: Spiral, ToolDiameter: 6})
	require.NoError(t, err)
	assert.Empty(t, pts)
}
