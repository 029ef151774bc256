// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package offset

import (
	"math"
	"testing"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/geom"
)

func rect(w, h float64) geom.Loop {
	return geom.Loop{{X: 0, Y: 0}, {X: w, Y: 0}, {X: w, Y: h}, {X: 0, Y: h}}
}

func totalArea(loops []geom.Loop) float64 {
	a := 0.0
	for _, l := range loops {
		a += math.Abs(l.Area())
	}
	return a
}

func TestOffsetInwardShrinks(t *testing.T) {
	loops, err := Offset(rect(100, 60), -3, JoinRound, 0.01)
	if err != nil {
		t.Fatalf("offset failed: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	// 94 x 54 interior.
	if a := totalArea(loops); a < 4950 || a > 5200 {
		t.Errorf("inward area = %v, want about 5076", a)
	}
	min, max := loops[0].BoundingBox()
	if min.X < 3-0.01 || min.Y < 3-0.01 || max.X > 97+0.01 || max.Y > 57+0.01 {
		t.Errorf("inward offset escaped the inset band: bbox %v %v", min, max)
	}
}

func TestOffsetOutwardGrows(t *testing.T) {
	loops, err := Offset(rect(100, 60), 3, JoinRound, 0.01)
	if err != nil {
		t.Fatalf("offset failed: %v", err)
	}
	if len(loops) != 1 {
		t.Fatalf("got %d loops, want 1", len(loops))
	}
	// Rectangle + perimeter band + rounded corners.
	want := 6000 + 320*3 + math.Pi*9
	if a := totalArea(loops); math.Abs(a-want) > 25 {
		t.Errorf("outward area = %v, want about %v", a, want)
	}
}

func TestOffsetResultWellFormed(t *testing.T) {
	// L-shaped concave boundary.
	boundary := geom.Loop{
		{X: 0, Y: 0}, {X: 80, Y: 0}, {X: 80, Y: 30},
		{X: 40, Y: 30}, {X: 40, Y: 60}, {X: 0, Y: 60},
	}
	for _, dist := range []float64{-2, -5, -8} {
		loops, err := Offset(boundary, dist, JoinRound, 0.01)
		if err != nil {
			t.Fatalf("offset %v failed: %v", dist, err)
		}
		for i, l := range loops {
			if len(l) < 3 {
				t.Errorf("offset %v loop %d has %d vertices", dist, i, len(l))
			}
			if l.SelfIntersects() {
				t.Errorf("offset %v loop %d self-intersects", dist, i)
			}
		}
	}
}

func TestOffsetCollapse(t *testing.T) {
	loops, err := Offset(rect(10, 10), -6, JoinRound, 0.01)
	if err != nil {
		t.Fatalf("offset failed: %v", err)
	}
	if len(loops) != 0 {
		t.Errorf("over-inset square returned %d loops, want collapse", len(loops))
	}
}

func TestOffsetMonotonicity(t *testing.T) {
	boundary := rect(100, 60)
	prev := math.Inf(1)
	for _, dist := range []float64{-3, -6, -9, -12, -15} {
		loops, err := Offset(boundary, dist, JoinRound, 0.01)
		if err != nil {
			t.Fatalf("offset %v failed: %v", dist, err)
		}
		a := totalArea(loops)
		if a >= prev {
			t.Errorf("area did not shrink at %v: %v >= %v", dist, a, prev)
		}
		prev = a
	}
}

func TestOffsetRejectsBadLoop(t *testing.T) {
	bowtie := geom.Loop{{X: 0, Y: 0}, {X: 10, Y: 10}, {X: 10, Y: 0}, {X: 0, Y: 10}}
	if _, err := Offset(bowtie, -1, JoinRound, 0.01); !errors.Is(err, errors.ErrGeometrySelfIntersect) {
		t.Errorf("bowtie offset: err = %v, want self-intersect", err)
	}
}

func TestJoinStyles(t *testing.T) {
	for _, join := range []JoinStyle{JoinRound, JoinMiter, JoinBevel} {
		loops, err := Offset(rect(40, 40), 2, join, 0.01)
		if err != nil {
			t.Fatalf("join %v failed: %v", join, err)
		}
		if len(loops) != 1 {
			t.Fatalf("join %v: got %d loops", join, len(loops))
		}
		a := totalArea(loops)
		// 1600 + 320 for the band, plus 8 (bevel), 4pi (round), or 16
		// (miter) at the corners.
		if a < 1925 || a > 1940 {
			t.Errorf("join %v area = %v, outside the corner treatment band", join, a)
		}
	}
}

func TestToolpathOffsetsRectangle(t *testing.T) {
	rings, err := ToolpathOffsets(rect(100, 60), nil, Params{
		ToolDiameter: 6,
		Stepover:     2.7,
		ArcTolerance: 0.01,
	})
	if err != nil {
		t.Fatalf("ToolpathOffsets failed: %v", err)
	}
	if len(rings) < 8 || len(rings) > 12 {
		t.Fatalf("ring count = %d, want 8..12", len(rings))
	}

	// Passes shrink strictly inward.
	for i := 1; i < len(rings); i++ {
		if rings[i].Pass != rings[i-1].Pass {
			a0 := math.Abs(rings[i-1].Loop.Area())
			a1 := math.Abs(rings[i].Loop.Area())
			if a1 >= a0 {
				t.Errorf("ring %d area %v not smaller than previous pass %v", i, a1, a0)
			}
		}
		if rings[i].Distance >= rings[i-1].Distance && rings[i].Pass != rings[i-1].Pass {
			t.Errorf("ring %d distance %v did not move inward", i, rings[i].Distance)
		}
	}

	// First pass is inset by the tool radius.
	min, _ := rings[0].Loop.BoundingBox()
	if math.Abs(min.X-3) > 0.05 || math.Abs(min.Y-3) > 0.05 {
		t.Errorf("outermost ring starts at %v, want (3,3)", min)
	}
}

func TestToolpathOffsetsIslandKeepOut(t *testing.T) {
	boundary := rect(100, 60)
	island := geom.Loop{{X: 40, Y: 20}, {X: 60, Y: 20}, {X: 60, Y: 40}, {X: 40, Y: 40}}
	rings, err := ToolpathOffsets(boundary, []geom.Loop{island}, Params{
		ToolDiameter: 6,
		Stepover:     2.7,
		ArcTolerance: 0.01,
	})
	if err != nil {
		t.Fatalf("ToolpathOffsets failed: %v", err)
	}
	if len(rings) == 0 {
		t.Fatal("no rings produced")
	}

	// No ring vertex may fall inside the island keep-out.
	for _, r := range rings {
		for _, p := range r.Loop {
			if island.Contains(p) {
				t.Fatalf("ring %d vertex %v inside island", r.Index, p)
			}
			if island.DistanceToPoint(p) < 3-0.05 && !island.Contains(p) {
				t.Fatalf("ring %d vertex %v closer than tool radius to island", r.Index, p)
			}
		}
	}
}

func TestToolpathOffsetsIslandValidation(t *testing.T) {
	boundary := rect(50, 50)
	outside := geom.Loop{{X: 100, Y: 100}, {X: 110, Y: 100}, {X: 110, Y: 110}, {X: 100, Y: 110}}
	_, err := ToolpathOffsets(boundary, []geom.Loop{outside}, Params{ToolDiameter: 6, Stepover: 2.7})
	if !errors.Is(err, errors.ErrGeometryIsland) {
		t.Errorf("escaping island: err = %v, want island error", err)
	}

	a := geom.Loop{{X: 10, Y: 10}, {X: 30, Y: 10}, {X: 30, Y: 30}, {X: 10, Y: 30}}
	b := geom.Loop{{X: 20, Y: 20}, {X: 40, Y: 20}, {X: 40, Y: 40}, {X: 20, Y: 40}}
	_, err = ToolpathOffsets(boundary, []geom.Loop{a, b}, Params{ToolDiameter: 6, Stepover: 2.7})
	if !errors.Is(err, errors.ErrGeometryIsland) {
		t.Errorf("overlapping islands: err = %v, want island error", err)
	}
}

func TestToolpathOffsetsTooSmall(t *testing.T) {
	rings, err := ToolpathOffsets(rect(5, 5), nil, Params{ToolDiameter: 6, Stepover: 2.7})
	if err != nil {
		t.Fatalf("ToolpathOffsets failed: %v", err)
	}
	if len(rings) != 0 {
		t.Errorf("pocket smaller than the tool produced %d rings", len(rings))
	}
}
