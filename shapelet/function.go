// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// function.go - function objects.
//
// A ShapeletFunction is an elliptical Gauss-Hermite expansion:
//
//	f(p) = Σ_i c_i · ψ_nx(i)(x') · ψ_ny(i)(y') · det(T)
//
// where (x', y') = T(p) is the ellipse grid transform and ψ_n are the
// normalized 1-D Hermite functions. With this convention the order-0 element
// integrates to FluxFactor for any ellipse.

package shapelet

import (
	"math"

	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// ShapeletFunction is one elliptical Gauss-Hermite expansion.
type ShapeletFunction struct {
	order        int
	ellipse      geom.Ellipse
	coefficients []float64
}

// NewShapeletFunction builds a function of the given order. A nil
// coefficients slice yields all-zero coefficients; otherwise its length must
// be ComputeSize(order). The slice is copied.
func NewShapeletFunction(order int, ellipse geom.Ellipse, coefficients []float64) (*ShapeletFunction, error) {
	if order < 0 {
		return nil, wrapf(methodNewShapeletFunction, ErrInvalidOrder, "order %d", order)
	}
	size := ComputeSize(order)
	coeffs := make([]float64, size)
	if coefficients != nil {
		if len(coefficients) != size {
			return nil, wrapf(methodNewShapeletFunction, ErrShapeMismatch,
				"order %d needs %d coefficients, got %d", order, size, len(coefficients))
		}
		copy(coeffs, coefficients)
	}

	return &ShapeletFunction{order: order, ellipse: ellipse, coefficients: coeffs}, nil
}

// Order returns the maximum total Hermite degree.
func (f *ShapeletFunction) Order() int { return f.order }

// Ellipse returns the function's ellipse.
func (f *ShapeletFunction) Ellipse() geom.Ellipse { return f.ellipse }

// Coefficients returns a copy of the packed coefficient vector.
func (f *ShapeletFunction) Coefficients() []float64 {
	out := make([]float64, len(f.coefficients))
	copy(out, f.coefficients)

	return out
}

// check rejects nil functions and values not built by NewShapeletFunction,
// whose coefficient vector does not match the order.
func (f *ShapeletFunction) check(method string) error {
	if f == nil {
		return wrapf(method, ErrNilInput, "shapelet function is nil")
	}
	if f.order < 0 || len(f.coefficients) != ComputeSize(f.order) {
		return wrapf(method, ErrShapeMismatch,
			"order %d needs %d coefficients, have %d", f.order, ComputeSize(max(f.order, 0)), len(f.coefficients))
	}

	return nil
}

// Evaluate returns f at every (x[i], y[i]).
func (f *ShapeletFunction) Evaluate(x, y []float64) ([]float64, error) {
	if err := f.check(methodEvaluate); err != nil {
		return nil, err
	}
	out := make([]float64, len(x))
	if err := f.addTo(out, x, y); err != nil {
		return nil, err
	}

	return out, nil
}

// addTo accumulates f(x, y) into out through a design matrix.
func (f *ShapeletFunction) addTo(out, x, y []float64) error {
	builder, err := NewMatrixBuilder(x, y, f.order)
	if err != nil {
		return err
	}
	design := mat.NewDense(builder.PointCount(), builder.BasisSize(), nil)
	if err = builder.Apply(design, f.ellipse); err != nil {
		return err
	}
	values := mat.NewVecDense(len(out), nil)
	values.MulVec(design, mat.NewVecDense(len(f.coefficients), f.coefficients))
	floats.Add(out, values.RawVector().Data)

	return nil
}

// Integrate returns the integral of f over the plane. A function whose
// coefficients do not match its order integrates to zero.
func (f *ShapeletFunction) Integrate() float64 {
	if f.check(methodIntegrate) != nil {
		return 0
	}
	var sum float64
	for p := (PackedIndex{}); p.Order() <= f.order; p.Next() {
		sum += f.coefficients[p.Index()] * hermiteIntegral(p.X()) * hermiteIntegral(p.Y())
	}

	return sum
}

// Normalized returns a copy of f scaled so that it integrates to value.
func (f *ShapeletFunction) Normalized(value float64) (*ShapeletFunction, error) {
	if err := f.check(methodNormalized); err != nil {
		return nil, err
	}
	total := f.Integrate()
	if total == 0 {
		return nil, wrapf(methodNormalized, ErrZeroFlux, "order %d", f.order)
	}
	out := &ShapeletFunction{order: f.order, ellipse: f.ellipse, coefficients: f.Coefficients()}
	floats.Scale(value/total, out.coefficients)

	return out, nil
}

// Convolve returns f convolved with other. Only two order-0 functions have a
// closed form: ellipse moments and centers add, and the coefficient is
// c_f·c_other·FluxFactor so that fluxes multiply. Higher orders return
// ErrNotImplemented.
func (f *ShapeletFunction) Convolve(other *ShapeletFunction) (*ShapeletFunction, error) {
	if err := f.check(methodConvolve); err != nil {
		return nil, err
	}
	if err := other.check(methodConvolve); err != nil {
		return nil, err
	}
	if f.order != 0 || other.order != 0 {
		return nil, wrapf(methodConvolve, ErrNotImplemented,
			"closed form requires order 0 functions, got %d and %d", f.order, other.order)
	}

	return &ShapeletFunction{
		order:        0,
		ellipse:      f.ellipse.Convolve(other.ellipse),
		coefficients: []float64{f.coefficients[0] * other.coefficients[0] * FluxFactor},
	}, nil
}

// hermiteIntegral returns ∫ψ_n(t)dt: zero for odd n, √2·π^(1/4) for n = 0 and
// I_n = √((n-1)/n)·I_{n-2} otherwise.
func hermiteIntegral(n int) float64 {
	if n%2 == 1 {
		return 0
	}
	v := math.Sqrt2 / BasisNormalization
	for j := 2; j <= n; j += 2 {
		v *= math.Sqrt(float64(j-1) / float64(j))
	}

	return v
}

// MultiShapeletFunction is a sum of ShapeletFunctions.
type MultiShapeletFunction struct {
	elements []*ShapeletFunction
}

// NewMultiShapeletFunction builds a sum from the given elements. Nil elements
// are rejected with ErrNilInput and elements not built by NewShapeletFunction
// with ErrShapeMismatch.
func NewMultiShapeletFunction(elements ...*ShapeletFunction) (*MultiShapeletFunction, error) {
	for _, e := range elements {
		if err := e.check(methodNewMultiShapeletFunction); err != nil {
			return nil, err
		}
	}
	out := make([]*ShapeletFunction, len(elements))
	copy(out, elements)

	return &MultiShapeletFunction{elements: out}, nil
}

// Elements returns the elements in order.
func (m *MultiShapeletFunction) Elements() []*ShapeletFunction {
	out := make([]*ShapeletFunction, len(m.elements))
	copy(out, m.elements)

	return out
}

// Len returns the number of elements.
func (m *MultiShapeletFunction) Len() int { return len(m.elements) }

// Evaluate returns the sum of all elements at every (x[i], y[i]).
func (m *MultiShapeletFunction) Evaluate(x, y []float64) ([]float64, error) {
	out := make([]float64, len(x))
	for _, e := range m.elements {
		if err := e.addTo(out, x, y); err != nil {
			return nil, err
		}
	}

	return out, nil
}

// Integrate returns the sum of the element integrals.
func (m *MultiShapeletFunction) Integrate() float64 {
	var sum float64
	for _, e := range m.elements {
		sum += e.Integrate()
	}

	return sum
}

// Normalized returns a copy of m with every element scaled by the same factor
// so that the sum integrates to value. Elements are copied, never shared.
func (m *MultiShapeletFunction) Normalized(value float64) (*MultiShapeletFunction, error) {
	total := m.Integrate()
	if total == 0 {
		return nil, wrapf(methodNormalized, ErrZeroFlux, "%d elements", len(m.elements))
	}
	factor := value / total
	out := &MultiShapeletFunction{elements: make([]*ShapeletFunction, len(m.elements))}
	for i, e := range m.elements {
		c := e.Coefficients()
		floats.Scale(factor, c)
		out.elements[i] = &ShapeletFunction{order: e.order, ellipse: e.ellipse, coefficients: c}
	}

	return out, nil
}

// Convolve returns the pairwise convolution of m with other: for every
// element of m, in order, every element of other, in order.
func (m *MultiShapeletFunction) Convolve(other *MultiShapeletFunction) (*MultiShapeletFunction, error) {
	if other == nil {
		return nil, wrapf(methodConvolve, ErrNilInput, "other function is nil")
	}
	out := &MultiShapeletFunction{elements: make([]*ShapeletFunction, 0, len(m.elements)*len(other.elements))}
	for _, a := range m.elements {
		for _, b := range other.elements {
			c, err := a.Convolve(b)
			if err != nil {
				return nil, err
			}
			out.elements = append(out.elements, c)
		}
	}

	return out, nil
}
