// SPDX-License-Identifier: MIT
// Package: lvshape/geom
//
// ellipse.go - ellipse cores and positioned ellipses.
//
// Purpose:
//   - Represent an ellipse by its quadrupole moments and a center.
//   - Provide the grid transform used to evaluate basis functions in the
//     ellipse's dimensionless frame.
//   - Provide convolution (moment addition) and core scaling.
//
// Complexity quicksheet:
//   - every operation is O(1) and allocation-free.

package geom

import (
	"math"
)

// ---------- error context tags ----------

const (
	ctxNewQuadrupole = "NewQuadrupole"
	ctxNewAxes       = "NewAxes"
	ctxNewEllipse    = "NewEllipse"
	ctxValidate      = "Ellipse.Validate"
	ctxInverse       = "LinearTransform.Inverse"
)

// Quadrupole is an ellipse core parameterized by its second moments.
type Quadrupole struct {
	Ixx, Iyy, Ixy float64
}

// NewQuadrupole validates and returns a quadrupole core.
//
// Errors:
//   - ErrNaNInf for non-finite moments.
//   - ErrNotPositiveDefinite when the moments do not form an ellipse.
func NewQuadrupole(ixx, iyy, ixy float64) (Quadrupole, error) {
	q := Quadrupole{Ixx: ixx, Iyy: iyy, Ixy: ixy}
	if err := q.validate(); err != nil {
		return Quadrupole{}, geomErrorf(ctxNewQuadrupole, err)
	}

	return q, nil
}

func (q Quadrupole) validate() error {
	if !isFinite(q.Ixx) || !isFinite(q.Iyy) || !isFinite(q.Ixy) {
		return ErrNaNInf
	}
	if q.Ixx <= 0 || q.Iyy <= 0 || q.Determinant() <= 0 {
		return ErrNotPositiveDefinite
	}

	return nil
}

// Determinant returns Ixx*Iyy - Ixy².
func (q Quadrupole) Determinant() float64 {
	return q.Ixx*q.Iyy - q.Ixy*q.Ixy
}

// DeterminantRadius returns det(Q)^(1/4), the geometric-mean radius.
func (q Quadrupole) DeterminantRadius() float64 {
	return math.Pow(q.Determinant(), 0.25)
}

// Axes converts the moments to semi-axes and position angle.
// The major axis is returned in A; theta is in (-π/2, π/2].
func (q Quadrupole) Axes() Axes {
	mean := 0.5 * (q.Ixx + q.Iyy)
	half := 0.5 * (q.Ixx - q.Iyy)
	spread := math.Hypot(half, q.Ixy)

	return Axes{
		A:     math.Sqrt(mean + spread),
		B:     math.Sqrt(math.Max(mean-spread, 0)),
		Theta: 0.5 * math.Atan2(2*q.Ixy, q.Ixx-q.Iyy),
	}
}

// Scale multiplies the linear size of the core by factor (moments by factor²).
func (q Quadrupole) Scale(factor float64) Quadrupole {
	f2 := factor * factor
	return Quadrupole{Ixx: q.Ixx * f2, Iyy: q.Iyy * f2, Ixy: q.Ixy * f2}
}

// Transform returns the moments of the image of q under l, i.e. l·Q·lᵀ.
// The result is not validated: a signed distribution may have indefinite
// second moments.
func (q Quadrupole) Transform(l LinearTransform) Quadrupole {
	// rows of l·Q
	ax := l.XX*q.Ixx + l.XY*q.Ixy
	ay := l.XX*q.Ixy + l.XY*q.Iyy
	bx := l.YX*q.Ixx + l.YY*q.Ixy
	by := l.YX*q.Ixy + l.YY*q.Iyy

	return Quadrupole{
		Ixx: ax*l.XX + ay*l.XY,
		Iyy: bx*l.YX + by*l.YY,
		Ixy: ax*l.YX + ay*l.YY,
	}
}

// Add returns the moment sum, i.e. the core of the convolution of two
// Gaussians with cores q and other.
func (q Quadrupole) Add(other Quadrupole) Quadrupole {
	return Quadrupole{Ixx: q.Ixx + other.Ixx, Iyy: q.Iyy + other.Iyy, Ixy: q.Ixy + other.Ixy}
}

// Axes is an ellipse core parameterized by semi-axes and position angle.
type Axes struct {
	A, B  float64 // semi-major, semi-minor
	Theta float64 // radians, counter-clockwise from +x
}

// NewAxes validates axis lengths and returns the core.
func NewAxes(a, b, theta float64) (Axes, error) {
	if !isFinite(a) || !isFinite(b) || !isFinite(theta) {
		return Axes{}, geomErrorf(ctxNewAxes, ErrNaNInf)
	}
	if a <= 0 || b <= 0 {
		return Axes{}, geomErrorf(ctxNewAxes, ErrInvalidAxes)
	}

	return Axes{A: a, B: b, Theta: theta}, nil
}

// Quadrupole converts axes to moments.
func (ax Axes) Quadrupole() Quadrupole {
	c, s := math.Cos(ax.Theta), math.Sin(ax.Theta)
	a2, b2 := ax.A*ax.A, ax.B*ax.B

	return Quadrupole{
		Ixx: a2*c*c + b2*s*s,
		Iyy: a2*s*s + b2*c*c,
		Ixy: (a2 - b2) * s * c,
	}
}

// Ellipse is a positioned ellipse: a quadrupole core plus a center.
// The zero value is not a valid ellipse; use NewEllipse or UnitCircle.
type Ellipse struct {
	core   Quadrupole
	center Point
}

// NewEllipse validates the core and returns a positioned ellipse.
func NewEllipse(core Quadrupole, center Point) (Ellipse, error) {
	if err := core.validate(); err != nil {
		return Ellipse{}, geomErrorf(ctxNewEllipse, err)
	}
	if !isFinite(center.X) || !isFinite(center.Y) {
		return Ellipse{}, geomErrorf(ctxNewEllipse, ErrNaNInf)
	}

	return Ellipse{core: core, center: center}, nil
}

// NewAxesEllipse is a convenience constructor from semi-axes and angle.
func NewAxesEllipse(a, b, theta float64, center Point) (Ellipse, error) {
	ax, err := NewAxes(a, b, theta)
	if err != nil {
		return Ellipse{}, err
	}

	return NewEllipse(ax.Quadrupole(), center)
}

// UnitCircle returns the circle of radius 1 centered at the origin; its grid
// transform is the identity.
func UnitCircle() Ellipse {
	return Ellipse{core: Quadrupole{Ixx: 1, Iyy: 1}}
}

// Validate reports whether e describes a real ellipse; the zero value does not.
func (e Ellipse) Validate() error {
	if err := e.core.validate(); err != nil {
		return geomErrorf(ctxValidate, err)
	}
	if !isFinite(e.center.X) || !isFinite(e.center.Y) {
		return geomErrorf(ctxValidate, ErrNaNInf)
	}

	return nil
}

// Core returns the quadrupole moments.
func (e Ellipse) Core() Quadrupole { return e.core }

// Center returns the ellipse center.
func (e Ellipse) Center() Point { return e.center }

// WithCenter returns a copy of e moved to center.
func (e Ellipse) WithCenter(center Point) Ellipse {
	return Ellipse{core: e.core, center: center}
}

// Scale returns a copy whose core is scaled by factor; the center is kept.
func (e Ellipse) Scale(factor float64) Ellipse {
	return Ellipse{core: e.core.Scale(factor), center: e.center}
}

// Convolve returns the ellipse of the convolution of two Gaussians described
// by e and other: moments add and centers add.
func (e Ellipse) Convolve(other Ellipse) Ellipse {
	return Ellipse{
		core:   e.core.Add(other.core),
		center: Point{X: e.center.X + other.center.X, Y: e.center.Y + other.center.Y},
	}
}

// GridTransform returns the affine map taking e onto the unit circle at the
// origin: p ↦ S·R(-θ)·(p - center), S = diag(1/a, 1/b).
// Determinant of the linear part is 1/(a*b) = det(Q)^(-1/2).
func (e Ellipse) GridTransform() AffineTransform {
	ax := e.core.Axes()
	c, s := math.Cos(ax.Theta), math.Sin(ax.Theta)
	linear := LinearTransform{
		XX: c / ax.A, XY: s / ax.A,
		YX: -s / ax.B, YY: c / ax.B,
	}
	shift := linear.Apply(e.center)

	return AffineTransform{
		Linear:      linear,
		Translation: Point{X: -shift.X, Y: -shift.Y},
	}
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
