// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package motion

import (
	"strings"
	"testing"
)

func TestFormatBasicProgram(t *testing.T) {
	records := []Record{
		{Kind: Rapid, X: 10, Y: 5, Z: 5},
		{Kind: Linear, X: 10, Y: 5, Z: -1, Feed: 200},
		{Kind: Linear, X: 30, Y: 5, Z: -1, Feed: 800},
		{Kind: Linear, X: 30, Y: 25, Z: -1, Feed: 800},
	}
	got, err := Format(records, FormatOptions{})
	if err != nil {
		t.Fatalf("format failed: %v", err)
	}
	want := "G0 X10.000 Y5.000 Z5.000\n" +
		"G1 Z-1.000 F200.000\n" +
		"G1 X30.000 Y5.000 F800.000\n" +
		"G1 X30.000 Y25.000\n"
	if got != want {
		t.Errorf("program mismatch:\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestFormatModalFeed(t *testing.T) {
	records := []Record{
		{Kind: Linear, X: 10, Y: 0, Feed: 500},
		{Kind: Linear, X: 20, Y: 0, Feed: 500},
		{Kind: Linear, X: 30, Y: 0, Feed: 250},
	}
	got, err := Format(records, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if strings.Count(got, "F500.000") != 1 {
		t.Errorf("repeated feed not modal:\n%s", got)
	}
	if !strings.Contains(got, "F250.000") {
		t.Errorf("feed change not written:\n%s", got)
	}
}

func TestFormatCenterFormArc(t *testing.T) {
	records := []Record{
		{Kind: Linear, X: 10, Y: 0, Feed: 600},
		{Kind: ArcCCW, X: 0, Y: 10, I: -10, J: 0, CenterForm: true, Feed: 600},
	}
	got, err := Format(records, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "G3 X0.000 Y10.000 I-10.000 J0.000") {
		t.Errorf("arc line missing or malformed:\n%s", got)
	}
}

func TestFormatRadiusFormArc(t *testing.T) {
	records := []Record{
		{Kind: Linear, X: 10, Y: 0, Feed: 600},
		// Quarter circle around the origin.
		{Kind: ArcCCW, X: 0, Y: 10, I: -10, J: 0, CenterForm: true, Feed: 600},
	}
	got, err := Format(records, FormatOptions{ArcForm: ArcRadiusForm})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "R10.000") {
		t.Errorf("radius word missing:\n%s", got)
	}
	if strings.Contains(got, "I-10.000") {
		t.Errorf("center words emitted in radius form:\n%s", got)
	}
}

func TestFormatRadiusSignOverHalfCircle(t *testing.T) {
	records := []Record{
		{Kind: Linear, X: 10, Y: 0, Feed: 600},
		// 270 degrees CCW around the origin, ending at (0,-10).
		{Kind: ArcCCW, X: 0, Y: -10, I: -10, J: 0, CenterForm: true, Feed: 600},
	}
	got, err := Format(records, FormatOptions{ArcForm: ArcRadiusForm})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "R-10.000") {
		t.Errorf("over-half-circle arc needs a negative R:\n%s", got)
	}
}

func TestFormatSplitsLongArcs(t *testing.T) {
	records := []Record{
		{Kind: Linear, X: 10, Y: 0, Feed: 600},
		{Kind: ArcCCW, X: 0, Y: -10, I: -10, J: 0, CenterForm: true, Feed: 600},
	}
	got, err := Format(records, FormatOptions{MaxArcSweepDeg: 180})
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(got, "G3 "); n != 2 {
		t.Errorf("270-degree arc split into %d pieces, want 2:\n%s", n, got)
	}
	// The split endpoint sits on the circle, 135 degrees around.
	if !strings.Contains(got, "X-7.071 Y7.071") {
		t.Errorf("split endpoint missing:\n%s", got)
	}
	// Every piece keeps the same center, re-expressed from its own start.
	if !strings.Contains(got, "I-10.000 J0.000") {
		t.Errorf("first piece center wrong:\n%s", got)
	}
	if !strings.Contains(got, "I7.071 J-7.071") {
		t.Errorf("second piece center wrong:\n%s", got)
	}
}

func TestFormatPrecision(t *testing.T) {
	records := []Record{{Kind: Linear, X: 1.23456, Y: 0, Feed: 100}}
	got, err := Format(records, FormatOptions{Precision: 4})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(got, "X1.2346") {
		t.Errorf("precision 4 not applied:\n%s", got)
	}
}

func TestFormatSkipsNullMoves(t *testing.T) {
	records := []Record{
		{Kind: Linear, X: 10, Y: 0, Feed: 100},
		{Kind: Linear, X: 10, Y: 0, Feed: 100},
	}
	got, err := Format(records, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if n := strings.Count(got, "\n"); n != 1 {
		t.Errorf("null move not dropped, %d lines:\n%s", n, got)
	}
}

func TestFormatDeterministic(t *testing.T) {
	records := []Record{
		{Kind: Rapid, X: 5, Y: 5, Z: 5},
		{Kind: Linear, X: 5, Y: 5, Z: -1, Feed: 200},
		{Kind: ArcCW, X: 15, Y: 5, I: 5, J: 0, CenterForm: true, Feed: 800},
	}
	a, err := Format(records, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Format(records, FormatOptions{})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Error("identical records formatted differently")
	}
}
