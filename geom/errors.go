// SPDX-License-Identifier: MIT
// Package: lvshape/geom
//
// errors.go - sentinel errors.
//
// Callers MUST match with errors.Is; context is attached with %w at the
// detection site.

package geom

import (
	"errors"
	"fmt"
)

var (
	// ErrNotPositiveDefinite is returned when a quadrupole does not describe a
	// real ellipse (Ixx <= 0, Iyy <= 0 or Ixx*Iyy <= Ixy²).
	ErrNotPositiveDefinite = errors.New("geom: quadrupole is not positive definite")

	// ErrInvalidAxes is returned for non-positive or non-finite axis lengths.
	ErrInvalidAxes = errors.New("geom: invalid ellipse axes")

	// ErrSingular is returned when a linear transform cannot be inverted.
	ErrSingular = errors.New("geom: singular transform")

	// ErrNaNInf signals a NaN or ±Inf parameter.
	ErrNaNInf = errors.New("geom: NaN or Inf encountered")
)

// geomErrorf wraps a sentinel with a method context tag.
func geomErrorf(method string, err error) error {
	return fmt.Errorf("%s: %w", method, err)
}
