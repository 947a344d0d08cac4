// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// basis.go - multi-component bases.
//
// A MultiShapeletBasis of size K is a list of components; component k has a
// radius r_k, an order n_k and a constant ComputeSize(n_k)×K matrix M_k. For
// aggregate coefficients c the basis describes the MultiShapeletFunction whose
// k-th element lives on the ellipse scaled by r_k with coefficients M_k·c.

package shapelet

import (
	"math"

	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/mat"
)

// BasisComponent is one sub-basis of a MultiShapeletBasis.
type BasisComponent struct {
	radius float64
	order  int
	matrix *mat.Dense
}

// Radius returns the component radius relative to the basis ellipse.
func (c BasisComponent) Radius() float64 { return c.radius }

// Order returns the component's shapelet order.
func (c BasisComponent) Order() int { return c.order }

// Matrix returns the ComputeSize(Order())×Size() map into the aggregate
// basis. The result must be treated as read-only.
func (c BasisComponent) Matrix() mat.Matrix { return c.matrix }

// MultiShapeletBasis is an aggregate basis built from shapelet sub-bases at
// different radii.
type MultiShapeletBasis struct {
	size       int
	components []BasisComponent
}

// NewMultiShapeletBasis returns an empty basis with size aggregate elements.
func NewMultiShapeletBasis(size int) (*MultiShapeletBasis, error) {
	if size <= 0 {
		return nil, wrapf(methodNewMultiShapeletBasis, ErrInvalidSize, "size %d", size)
	}

	return &MultiShapeletBasis{size: size}, nil
}

// Size returns the number of aggregate basis elements (output columns).
func (b *MultiShapeletBasis) Size() int { return b.size }

// ComponentCount returns the number of sub-bases.
func (b *MultiShapeletBasis) ComponentCount() int { return len(b.components) }

// Components returns the sub-bases in evaluation order.
func (b *MultiShapeletBasis) Components() []BasisComponent {
	out := make([]BasisComponent, len(b.components))
	copy(out, b.components)

	return out
}

// AddComponent appends a sub-basis. matrix must be ComputeSize(order)×Size();
// it is copied.
func (b *MultiShapeletBasis) AddComponent(radius float64, order int, matrix mat.Matrix) error {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return wrapf(methodAddComponent, ErrInvalidRadius, "radius %g", radius)
	}
	if order < 0 {
		return wrapf(methodAddComponent, ErrInvalidOrder, "order %d", order)
	}
	if matrix == nil {
		return wrapf(methodAddComponent, ErrNilInput, "matrix is nil")
	}
	r, c := matrix.Dims()
	if r != ComputeSize(order) || c != b.size {
		return wrapf(methodAddComponent, ErrShapeMismatch,
			"matrix is %d×%d, want %d×%d", r, c, ComputeSize(order), b.size)
	}
	b.components = append(b.components, BasisComponent{
		radius: radius,
		order:  order,
		matrix: mat.DenseCopyOf(matrix),
	})

	return nil
}

// Scale multiplies every component radius by factor.
func (b *MultiShapeletBasis) Scale(factor float64) error {
	if !(factor > 0) || math.IsInf(factor, 0) {
		return wrapf(methodScale, ErrInvalidRadius, "factor %g", factor)
	}
	for i := range b.components {
		b.components[i].radius *= factor
	}

	return nil
}

// Merge appends the elements of other after the existing ones: the new size
// is Size()+other.Size(), existing components map into the leading columns
// and other's components into the trailing ones.
func (b *MultiShapeletBasis) Merge(other *MultiShapeletBasis) error {
	if other == nil {
		return wrapf(methodMerge, ErrNilInput, "other basis is nil")
	}
	newSize := b.size + other.size
	merged := make([]BasisComponent, 0, len(b.components)+len(other.components))
	for _, c := range b.components {
		merged = append(merged, c.widened(newSize, 0))
	}
	for _, c := range other.components {
		merged = append(merged, c.widened(newSize, b.size))
	}
	b.size = newSize
	b.components = merged

	return nil
}

// widened copies c into a matrix with cols columns starting at column offset.
func (c BasisComponent) widened(cols, offset int) BasisComponent {
	rows, width := c.matrix.Dims()
	m := mat.NewDense(rows, cols, nil)
	m.Slice(0, rows, offset, offset+width).(*mat.Dense).Copy(c.matrix)

	return BasisComponent{radius: c.radius, order: c.order, matrix: m}
}

// Normalize rescales every aggregate element so that its function integrates
// to one. It fails with ErrDegenerateBasis if some element integrates to zero;
// the basis is left unchanged in that case.
func (b *MultiShapeletBasis) Normalize() error {
	integrals := make([]float64, b.size)
	for _, c := range b.components {
		for p := (PackedIndex{}); p.Order() <= c.order; p.Next() {
			w := hermiteIntegral(p.X()) * hermiteIntegral(p.Y())
			if w == 0 {
				continue
			}
			for j := 0; j < b.size; j++ {
				integrals[j] += w * c.matrix.At(p.Index(), j)
			}
		}
	}
	for j, v := range integrals {
		if v == 0 {
			return wrapf(methodNormalize, ErrDegenerateBasis, "element %d", j)
		}
	}
	for _, c := range b.components {
		rows, _ := c.matrix.Dims()
		for i := 0; i < rows; i++ {
			for j, v := range integrals {
				c.matrix.Set(i, j, c.matrix.At(i, j)/v)
			}
		}
	}

	return nil
}

// MakeFunction returns the function described by aggregate coefficients on
// ellipse.
func (b *MultiShapeletBasis) MakeFunction(ellipse geom.Ellipse, coefficients []float64) (*MultiShapeletFunction, error) {
	if len(coefficients) != b.size {
		return nil, wrapf(methodMakeFunction, ErrShapeMismatch,
			"basis size %d, got %d coefficients", b.size, len(coefficients))
	}
	c := mat.NewVecDense(b.size, coefficients)
	elements := make([]*ShapeletFunction, 0, len(b.components))
	for _, comp := range b.components {
		var v mat.VecDense
		v.MulVec(comp.matrix, c)
		f, err := NewShapeletFunction(comp.order, ellipse.Scale(comp.radius), v.RawVector().Data)
		if err != nil {
			return nil, err
		}
		elements = append(elements, f)
	}

	return NewMultiShapeletFunction(elements...)
}

// clone deep-copies the basis so builders are isolated from later Scale,
// Merge or Normalize calls on the caller's value.
func (b *MultiShapeletBasis) clone() *MultiShapeletBasis {
	out := &MultiShapeletBasis{size: b.size, components: make([]BasisComponent, len(b.components))}
	for i, c := range b.components {
		out.components[i] = BasisComponent{radius: c.radius, order: c.order, matrix: mat.DenseCopyOf(c.matrix)}
	}

	return out
}
