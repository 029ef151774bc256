// Machine output profiles
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package post holds per-controller output profiles: arc form, numeric
// precision, header and footer blocks. Built-in profiles cover the common
// hobby controllers; custom ones load from YAML.
package post

import (
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/errors"
	"github.com/HanzoRazer/luthiers-toolbox-sub005/pkg/motion"
)

// Profile describes one target controller's G-code dialect.
type Profile struct {
	Name string `yaml:"name"`

	// ArcForm is "offset" (I/J words) or "radius" (R word).
	ArcForm string `yaml:"arc_form"`

	// Precision is decimal places per coordinate word.
	Precision int `yaml:"precision"`

	// MaxArcSweepDeg splits longer arcs. Zero keeps arcs whole.
	MaxArcSweepDeg float64 `yaml:"max_arc_sweep_deg"`

	// RapidRate is the controller's rapid speed, mm/min, used by the
	// simulator for time estimates.
	RapidRate float64 `yaml:"rapid_rate"`

	// ClearanceZ is the safe traverse height written into preamble rapids.
	ClearanceZ float64 `yaml:"clearance_z"`

	Header []string `yaml:"header"`
	Footer []string `yaml:"footer"`
}

// builtin profiles, keyed by name.
var builtin = map[string]Profile{
	"grbl": {
		Name:           "grbl",
		ArcForm:        "offset",
		Precision:      3,
		MaxArcSweepDeg: 0,
		RapidRate:      3000,
		ClearanceZ:     5,
		Header:         []string{"G21", "G90", "G17", "G94"},
		Footer:         []string{"M5", "G0 Z5", "M2"},
	},
	"linuxcnc": {
		Name:           "linuxcnc",
		ArcForm:        "offset",
		Precision:      4,
		MaxArcSweepDeg: 0,
		RapidRate:      5000,
		ClearanceZ:     5,
		Header:         []string{"G21", "G90", "G17", "G94", "G64 P0.01"},
		Footer:         []string{"M5", "G0 Z5", "M2"},
	},
	"mach3": {
		Name:           "mach3",
		ArcForm:        "radius",
		Precision:      3,
		MaxArcSweepDeg: 180,
		RapidRate:      4000,
		ClearanceZ:     5,
		Header:         []string{"G21", "G90", "G17", "G94"},
		Footer:         []string{"M5", "G0 Z5", "M30"},
	},
}

// Builtin returns the named built-in profile.
func Builtin(name string) (Profile, error) {
	p, ok := builtin[name]
	if !ok {
		return Profile{}, errors.UnknownProfileError(name)
	}
	return p, nil
}

// Names lists the built-in profile names, sorted.
func Names() []string {
	names := make([]string, 0, len(builtin))
	for n := range builtin {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Load reads a profile from a YAML file. Missing fields fall back to grbl
// defaults so a profile file only needs to state what differs.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, fmt.Errorf("reading profile: %w", err)
	}
	p := builtin["grbl"]
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, fmt.Errorf("parsing profile %s: %w", path, err)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, err
	}
	return p, nil
}

// Resolve returns the built-in profile for name, or loads name as a YAML
// path when it is not a known built-in.
func Resolve(name string) (Profile, error) {
	if p, err := Builtin(name); err == nil {
		return p, nil
	}
	if _, err := os.Stat(name); err == nil {
		return Load(name)
	}
	return Profile{}, errors.UnknownProfileError(name)
}

// Validate checks the profile fields that the formatter depends on.
func (p Profile) Validate() error {
	if _, err := motion.ParseArcForm(p.ArcForm); err != nil {
		return err
	}
	if p.Precision < 0 || p.Precision > 8 {
		return errors.ParameterError("precision", float64(p.Precision), "must be in [0,8]")
	}
	if p.MaxArcSweepDeg < 0 {
		return errors.ParameterError("max_arc_sweep_deg", p.MaxArcSweepDeg, "must not be negative")
	}
	return nil
}

// FormatOptions converts the profile into formatter options.
func (p Profile) FormatOptions() motion.FormatOptions {
	form, _ := motion.ParseArcForm(p.ArcForm)
	return motion.FormatOptions{
		ArcForm:        form,
		MaxArcSweepDeg: p.MaxArcSweepDeg,
		Precision:      p.Precision,
	}
}
