// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// errors.go - sentinel errors for the shapelet package.
//
// Error policy:
//   • Only package-level sentinels are exposed; callers branch with errors.Is.
//   • Context is attached at the detection site with %w, never baked into the
//     sentinel text.
//   • Algorithms never panic on user input; option constructors (WithX) panic
//     on programmer errors such as nil collaborators.

package shapelet

import (
	"errors"
	"fmt"
)

var (
	// ErrLengthMismatch indicates that the x and y coordinate sequences passed
	// to a builder constructor have different lengths.
	ErrLengthMismatch = errors.New("shapelet: x and y lengths differ")

	// ErrShapeMismatch indicates a matrix or vector whose dimensions disagree
	// with the configured point count or basis size.
	ErrShapeMismatch = errors.New("shapelet: shape mismatch")

	// ErrNotImplemented marks a configuration that is deliberately
	// unsupported, e.g. a multi-element PSF combined with a multi-component
	// basis. It signals a missing feature rather than bad input.
	ErrNotImplemented = errors.New("shapelet: not implemented")

	// ErrInvalidOrder indicates a negative basis order.
	ErrInvalidOrder = errors.New("shapelet: invalid order")

	// ErrInvalidRadius indicates a non-positive or non-finite radius/scale.
	ErrInvalidRadius = errors.New("shapelet: invalid radius")

	// ErrInvalidSize indicates a non-positive aggregate basis size.
	ErrInvalidSize = errors.New("shapelet: invalid basis size")

	// ErrEmptyInput indicates an empty point set or an empty component list.
	ErrEmptyInput = errors.New("shapelet: empty input")

	// ErrNilInput indicates a nil psf, basis, function or output matrix.
	ErrNilInput = errors.New("shapelet: nil input")

	// ErrDegenerateBasis is returned by Normalize when a basis column
	// integrates to zero and cannot be rescaled.
	ErrDegenerateBasis = errors.New("shapelet: basis column integrates to zero")

	// ErrZeroFlux is returned when a function must be divided by its integral
	// (Normalized, Moments) and that integral is zero.
	ErrZeroFlux = errors.New("shapelet: function integrates to zero")
)

// ---------- method context tags ----------

const (
	methodNewMatrixBuilder          = "NewMatrixBuilder"
	methodNewConvolvedMatrixBuilder = "NewConvolvedMatrixBuilder"
	methodNewMultiPsfMatrixBuilder  = "NewMultiPsfMatrixBuilder"
	methodNewBasisMatrixBuilder     = "NewBasisMatrixBuilder"
	methodNewConvolvedBasisBuilder  = "NewConvolvedBasisMatrixBuilder"
	methodApply                     = "Apply"
	methodNewShapeletFunction       = "NewShapeletFunction"
	methodNewMultiShapeletFunction  = "NewMultiShapeletFunction"
	methodNewMultiShapeletBasis     = "NewMultiShapeletBasis"
	methodAddComponent              = "AddComponent"
	methodScale                     = "Scale"
	methodMerge                     = "Merge"
	methodNormalize                 = "Normalize"
	methodMakeFunction              = "MakeFunction"
	methodNewGaussianConvolution    = "NewGaussianConvolution"
	methodComputeOrder              = "ComputeOrder"
	methodConvolve                  = "Convolve"
	methodNormalized                = "Normalized"
	methodMoments                   = "Moments"
	methodEvaluate                  = "Evaluate"
	methodIntegrate                 = "Integrate"
)

// wrapf attaches "<method>: <message>" context to a sentinel.
func wrapf(method string, err error, format string, args ...interface{}) error {
	return fmt.Errorf("%s: %s: %w", method, fmt.Sprintf(format, args...), err)
}
