// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/motion"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/post"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/sim"
)

func pocketGeometry() Geometry {
	return Geometry{
		Boundary: geom.Loop{{X: 0, Y: 0}, {X: 100, Y: 0}, {X: 100, Y: 60}, {X: 0, Y: 60}},
	}
}

func pocketParams() Params {
	p := DefaultParams(6)
	p.Stepover = 2.7
	p.Depth = 3
	p.Stepdown = 3
	return p
}

func TestPlanPocketRectangle(t *testing.T) {
	plan, err := PlanPocket(pocketGeometry(), pocketParams())
	require.NoError(t, err)

	assert.GreaterOrEqual(t, plan.Summary.RingCount, 8)
	assert.LessOrEqual(t, plan.Summary.RingCount, 12)
	assert.Equal(t, 1, plan.Summary.PassCount)
	assert.NotEmpty(t, plan.ID)

	// Spiraling a 100x60 pocket at 2.7 mm stepover covers roughly the ring
	// perimeters: 10 rectangles shrinking from 94x54.
	assert.Greater(t, plan.Summary.PathLength, 1500.0)
	assert.Less(t, plan.Summary.PathLength, 2500.0)

	assert.InDelta(t, 6000, plan.Summary.AreaCleared, 1e-9)
	assert.InDelta(t, 18000, plan.Summary.Volume, 1e-9)
	assert.Greater(t, plan.Summary.EstimatedTime, 0.0)
}

func TestPlanPocketNoEnvelopeIssues(t *testing.T) {
	plan, err := PlanPocket(pocketGeometry(), pocketParams())
	require.NoError(t, err)

	res := plan.Simulate(sim.Params{
		Envelope:    &sim.Envelope{MinX: -1, MinY: -1, MinZ: -10, MaxX: 101, MaxY: 61, MaxZ: 50},
		RapidRate:   3000,
		DefaultFeed: 800,
		Accel:       500,
		ClearanceZ:  plan.Params.SafeZ,
		StartZ:      plan.Params.SafeZ,
	})
	for _, issue := range res.Issues {
		t.Errorf("unexpected issue: %+v", issue)
	}
}

func TestPlanPocketMultiplePasses(t *testing.T) {
	p := pocketParams()
	p.Depth = 5
	p.Stepdown = 2
	plan, err := PlanPocket(pocketGeometry(), p)
	require.NoError(t, err)
	assert.Equal(t, 3, plan.Summary.PassCount)

	// Deepest cut is exactly the target depth, never beyond.
	minZ := 0.0
	for _, r := range plan.Records {
		if r.Z < minZ {
			minZ = r.Z
		}
	}
	assert.InDelta(t, -5, minZ, 1e-9)
}

func TestPlanPocketDeterministic(t *testing.T) {
	a, err := PlanPocket(pocketGeometry(), pocketParams())
	require.NoError(t, err)
	b, err := PlanPocket(pocketGeometry(), pocketParams())
	require.NoError(t, err)

	// IDs differ per plan; the motion itself must be identical.
	require.Equal(t, len(a.Records), len(b.Records))
	assert.Equal(t, a.Records, b.Records)
	assert.NotEqual(t, a.ID, b.ID)
}

func TestPlanPocketIsland(t *testing.T) {
	g := pocketGeometry()
	island := geom.Loop{{X: 40, Y: 20}, {X: 60, Y: 20}, {X: 60, Y: 40}, {X: 40, Y: 40}}
	g.Islands = []geom.Loop{island}

	plan, err := PlanPocket(g, pocketParams())
	require.NoError(t, err)

	// No cutting segment may pass over the island, endpoints or
	// interior, and the cutter center keeps the tool radius away. Links
	// the stitcher could not route around the island travel as rapids at
	// the safe height instead.
	toolR := plan.Params.ToolDiameter / 2
	pos := plan.Records[0].End()
	for _, r := range plan.Records[1:] {
		end := r.End()
		if r.Kind == motion.Linear {
			for _, f := range []float64{0, 0.25, 0.5, 0.75, 1} {
				s := geom.Point{X: pos.X + (end.X-pos.X)*f, Y: pos.Y + (end.Y-pos.Y)*f}
				require.False(t, island.Contains(s),
					"cut from %v to %v passes through the island at %v", pos, end, s)
				assert.GreaterOrEqual(t, island.DistanceToPoint(s), toolR-0.05,
					"cutter center %v gouges the island", s)
			}
		}
		pos = end
	}
}

func TestPlanPocketRejectsBadInput(t *testing.T) {
	p := pocketParams()
	p.Stepover = 10 // beyond the tool diameter
	_, err := PlanPocket(pocketGeometry(), p)
	assert.True(t, errors.IsParameter(err), "stepover > tool accepted: %v", err)

	bowtie := Geometry{Boundary: geom.Loop{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}}
	_, err = PlanPocket(bowtie, pocketParams())
	assert.True(t, errors.IsGeometry(err), "bowtie accepted: %v", err)

	tiny := Geometry{Boundary: geom.Loop{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}}
	_, err = PlanPocket(tiny, pocketParams())
	assert.Error(t, err, "pocket smaller than the tool accepted")
}

func TestOffsetPreview(t *testing.T) {
	rings, err := OffsetPreview(pocketGeometry(), pocketParams())
	require.NoError(t, err)
	assert.NotEmpty(t, rings)
}

func TestEmitGCode(t *testing.T) {
	plan, err := PlanPocket(pocketGeometry(), pocketParams())
	require.NoError(t, err)

	profile, err := post.Builtin("grbl")
	require.NoError(t, err)
	program, err := EmitGCode(plan, profile)
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(program, "G21\n"), "header missing")
	assert.Contains(t, program, plan.ID)
	assert.Contains(t, program, "G1 ")
	assert.True(t, strings.HasSuffix(program, "M2\n"), "footer missing")
}

func TestEmitGCodeSimulatesClean(t *testing.T) {
	plan, err := PlanPocket(pocketGeometry(), pocketParams())
	require.NoError(t, err)
	profile, err := post.Builtin("grbl")
	require.NoError(t, err)
	program, err := EmitGCode(plan, profile)
	require.NoError(t, err)

	// The program the planner writes must parse and simulate without a
	// single issue on its own machine profile.
	res := SimulateProgram(program, profile, sim.Params{
		DefaultFeed: 800,
		Accel:       500,
		StartZ:      plan.Params.SafeZ,
	})
	for _, issue := range res.Issues {
		t.Errorf("round-trip issue: %+v", issue)
	}
	assert.Greater(t, res.FeedLength, 0.0)
}

func TestWrapProgram(t *testing.T) {
	profile := post.Profile{Header: []string{"G21", "G90"}, Footer: []string{"M2"}}
	got := WrapProgram("G1 X1.000 F100.000\n", "job 42", profile)
	want := "G21\nG90\n( job 42 )\nG1 X1.000 F100.000\nM2\n"
	assert.Equal(t, want, got)
}
