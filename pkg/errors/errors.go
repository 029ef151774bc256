// Unified error handling for the CAM toolpath kernel
//
// Copyright (C) 2026  Luthier's Toolbox CAM
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package errors

import "fmt"

// ErrorCode represents the category of error
type ErrorCode string

const (
	// Geometry errors (fatal to the planning call)
	ErrGeometryDegenerate    ErrorCode = "GEOMETRY_DEGENERATE"
	ErrGeometryZeroArea      ErrorCode = "GEOMETRY_ZERO_AREA"
	ErrGeometrySelfIntersect ErrorCode = "GEOMETRY_SELF_INTERSECT"
	ErrGeometryIsland        ErrorCode = "GEOMETRY_ISLAND"

	// Arc geometry errors (fatal to one move during simulation)
	ErrArcRadius    ErrorCode = "ARC_RADIUS"
	ErrArcDirection ErrorCode = "ARC_DIRECTION"

	// Parameter errors (fail fast, before any geometry work)
	ErrParamRange ErrorCode = "PARAM_RANGE"

	// Program text errors
	ErrParse   ErrorCode = "PARSE"
	ErrProfile ErrorCode = "PROFILE_UNKNOWN"
)

// KernelError is the unified error type for the toolpath kernel
type KernelError struct {
	// Code is the error category
	Code ErrorCode

	// Message is a human-readable error description
	Message string

	// Op names the operation that failed (e.g. "offset", "stitch")
	Op string

	// Line is the program line number, when the error came from parsing
	Line int

	// Err wraps the underlying error
	Err error

	// Context provides additional context
	Context map[string]interface{}
}

// Error implements the error interface
func (e *KernelError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Code, e.Op, e.Message)
	}
	return fmt.Sprintf("[%s] %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *KernelError) Unwrap() error {
	return e.Err
}

// SetOp sets the failing operation name
func (e *KernelError) SetOp(op string) *KernelError {
	e.Op = op
	return e
}

// SetLine sets the program line number
func (e *KernelError) SetLine(line int) *KernelError {
	e.Line = line
	return e
}

// SetContext adds additional context
func (e *KernelError) SetContext(key string, value interface{}) *KernelError {
	if e.Context == nil {
		e.Context = make(map[string]interface{})
	}
	e.Context[key] = value
	return e
}

// New creates a new KernelError
func New(code ErrorCode, message string) *KernelError {
	return &KernelError{
		Code:    code,
		Message: message,
	}
}

// Wrap wraps an existing error with additional context
func Wrap(err error, code ErrorCode, message string) *KernelError {
	return &KernelError{
		Code:    code,
		Message: message,
		Err:     err,
	}
}

// Geometry errors

// DegenerateLoopError creates an error for a loop with too few vertices
func DegenerateLoopError(vertices int) *KernelError {
	return New(ErrGeometryDegenerate, fmt.Sprintf("loop has %d distinct vertices, need at least 3", vertices))
}

// ZeroAreaLoopError creates an error for a loop with near-zero area
func ZeroAreaLoopError() *KernelError {
	return New(ErrGeometryZeroArea, "loop encloses no area")
}

// SelfIntersectError creates an error for a self-intersecting loop
func SelfIntersectError() *KernelError {
	return New(ErrGeometrySelfIntersect, "loop intersects itself; the kernel rejects (does not repair) such input")
}

// IslandError creates an error for an island that violates containment
func IslandError(index int, reason string) *KernelError {
	return New(ErrGeometryIsland, fmt.Sprintf("island %d: %s", index, reason)).
		SetContext("island", index)
}

// Arc errors

// ArcRadiusError creates an error for a radius-form arc whose radius is
// smaller than half the chord length
func ArcRadiusError(radius, halfChord float64) *KernelError {
	return New(ErrArcRadius, fmt.Sprintf("arc radius %.4f smaller than half-chord %.4f", radius, halfChord))
}

// ArcDirectionError creates an error for an arc with no geometrically
// consistent sweep direction
func ArcDirectionError(message string) *KernelError {
	return New(ErrArcDirection, message)
}

// Parameter errors

// ParameterError creates an error for an out-of-range numeric input
func ParameterError(name string, value float64, reason string) *KernelError {
	return New(ErrParamRange, fmt.Sprintf("parameter %s=%g: %s", name, value, reason)).
		SetContext("parameter", name)
}

// Program text errors

// ParseError creates an error for a malformed program line
func ParseError(line int, text, reason string) *KernelError {
	return New(ErrParse, fmt.Sprintf("line %d %q: %s", line, text, reason)).
		SetLine(line)
}

// UnknownProfileError creates an error for an unknown machine profile
func UnknownProfileError(name string) *KernelError {
	return New(ErrProfile, fmt.Sprintf("unknown machine profile %q", name))
}

// Is checks if error matches given error code
func Is(err error, code ErrorCode) bool {
	if kerr, ok := err.(*KernelError); ok {
		return kerr.Code == code
	}
	return false
}

// IsGeometry checks if error is a geometry error
func IsGeometry(err error) bool {
	return Is(err, ErrGeometryDegenerate) ||
		Is(err, ErrGeometryZeroArea) ||
		Is(err, ErrGeometrySelfIntersect) ||
		Is(err, ErrGeometryIsland)
}

// IsArc checks if error is an arc geometry error
func IsArc(err error) bool {
	return Is(err, ErrArcRadius) || Is(err, ErrArcDirection)
}

// IsParameter checks if error is a parameter range error
func IsParameter(err error) bool {
	return Is(err, ErrParamRange)
}
