// Program rendering against a machine profile
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package planner

import (
	"strings"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/motion"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/post"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/sim"
)

// EmitGCode renders the plan as a complete program in the profile's
// dialect, header and footer included. The plan ID goes into a comment so
// a program on disk can be traced back to its job.
func EmitGCode(pl *Plan, profile post.Profile) (string, error) {
	// Start stays at the origin: the machine position before the program
	// is unknown, so the opening rapid must be written in full.
	body, err := motion.Format(pl.Records, profile.FormatOptions())
	if err != nil {
		return "", err
	}
	return WrapProgram(body, "pocket "+pl.ID, profile), nil
}

// WrapProgram wraps a motion body in the profile's header and footer
// blocks, with an optional traceability comment after the header.
func WrapProgram(body, comment string, profile post.Profile) string {
	var b strings.Builder
	for _, line := range profile.Header {
		b.WriteString(line + "\n")
	}
	if comment != "" {
		b.WriteString("( " + comment + " )\n")
	}
	b.WriteString(body)
	for _, line := range profile.Footer {
		b.WriteString(line + "\n")
	}
	return b.String()
}

// SimulateProgram parses and simulates a textual program with the
// profile's rapid rate and clearance applied.
func SimulateProgram(program string, profile post.Profile, p sim.Params) sim.Result {
	if p.RapidRate <= 0 {
		p.RapidRate = profile.RapidRate
	}
	if p.ClearanceZ == 0 {
		p.ClearanceZ = profile.ClearanceZ
	}
	return sim.SimulateText(program, p)
}
