// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// moments.go - zeroth, first and second moments of function objects.
//
// Moments are computed analytically in the unit-circle frame u = T(p) and
// then carried back through p = center + A·u with A = T⁻¹, so A·Aᵀ equals
// the ellipse quadrupole.

package shapelet

import (
	"math"

	"github.com/katalvlaran/lvshape/geom"
)

// Moments summarizes a function by its flux, centroid and central second
// moments. Quadrupole is not validated: a signed expansion may have
// indefinite second moments.
type Moments struct {
	Flux       float64
	Centroid   geom.Point
	Quadrupole geom.Quadrupole
}

// rawMoments holds unnormalized sums ∫f, ∫f·p and ∫f·p·pᵀ in absolute
// coordinates. They add across elements.
type rawMoments struct {
	m0       float64
	mx, my   float64
	mxx, myy float64
	mxy      float64
}

func (r *rawMoments) add(o rawMoments) {
	r.m0 += o.m0
	r.mx += o.mx
	r.my += o.my
	r.mxx += o.mxx
	r.myy += o.myy
	r.mxy += o.mxy
}

func (r rawMoments) moments(method string) (Moments, error) {
	if r.m0 == 0 {
		return Moments{}, wrapf(method, ErrZeroFlux, "cannot normalize moments")
	}
	cx, cy := r.mx/r.m0, r.my/r.m0

	return Moments{
		Flux:     r.m0,
		Centroid: geom.Point{X: cx, Y: cy},
		Quadrupole: geom.Quadrupole{
			Ixx: r.mxx/r.m0 - cx*cx,
			Iyy: r.myy/r.m0 - cy*cy,
			Ixy: r.mxy/r.m0 - cx*cy,
		},
	}, nil
}

// hermiteMoment returns ∫t^m·ψ_n(t)dt for m ≤ 2 using
// t·ψ_n = √((n+1)/2)·ψ_{n+1} + √(n/2)·ψ_{n-1}.
func hermiteMoment(m, n int) float64 {
	if n < 0 {
		return 0
	}
	if m == 0 {
		return hermiteIntegral(n)
	}

	return math.Sqrt(float64(n+1)/2)*hermiteMoment(m-1, n+1) +
		math.Sqrt(float64(n)/2)*hermiteMoment(m-1, n-1)
}

// raw computes the absolute-frame raw moments of f. f must have passed check.
func (f *ShapeletFunction) raw() (rawMoments, error) {
	var u rawMoments
	for p := (PackedIndex{}); p.Order() <= f.order; p.Next() {
		c := f.coefficients[p.Index()]
		if c == 0 {
			continue
		}
		x0, y0 := hermiteMoment(0, p.X()), hermiteMoment(0, p.Y())
		x1, y1 := hermiteMoment(1, p.X()), hermiteMoment(1, p.Y())
		u.m0 += c * x0 * y0
		u.mx += c * x1 * y0
		u.my += c * x0 * y1
		u.mxx += c * hermiteMoment(2, p.X()) * y0
		u.myy += c * x0 * hermiteMoment(2, p.Y())
		u.mxy += c * x1 * y1
	}

	a, err := f.ellipse.GridTransform().Linear.Inverse()
	if err != nil {
		return rawMoments{}, wrapf(methodMoments, err, "ellipse grid transform")
	}
	center := f.ellipse.Center()
	am := a.Apply(geom.Point{X: u.mx, Y: u.my})
	second := geom.Quadrupole{Ixx: u.mxx, Iyy: u.myy, Ixy: u.mxy}.Transform(a)

	// p = center + A·u
	return rawMoments{
		m0:  u.m0,
		mx:  u.m0*center.X + am.X,
		my:  u.m0*center.Y + am.Y,
		mxx: u.m0*center.X*center.X + 2*center.X*am.X + second.Ixx,
		myy: u.m0*center.Y*center.Y + 2*center.Y*am.Y + second.Iyy,
		mxy: u.m0*center.X*center.Y + center.X*am.Y + am.X*center.Y + second.Ixy,
	}, nil
}

// Moments returns the flux, centroid and central second moments of f, or
// ErrZeroFlux when f integrates to zero.
func (f *ShapeletFunction) Moments() (Moments, error) {
	if err := f.check(methodMoments); err != nil {
		return Moments{}, err
	}
	r, err := f.raw()
	if err != nil {
		return Moments{}, err
	}

	return r.moments(methodMoments)
}

// Moments returns the moments of the sum of all elements. An empty sum has
// zero flux.
func (m *MultiShapeletFunction) Moments() (Moments, error) {
	if m == nil {
		return Moments{}, wrapf(methodMoments, ErrNilInput, "multi-shapelet function is nil")
	}
	var total rawMoments
	for _, e := range m.elements {
		r, err := e.raw()
		if err != nil {
			return Moments{}, err
		}
		total.add(r)
	}

	return total.moments(methodMoments)
}
