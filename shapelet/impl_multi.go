// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// impl_multi.go - multi-component builders.
//
// MultiShapelet: the ellipse transform is computed once and each component
// only rescales the transformed coordinates by radius/previousRadius.
//
// Convolved-MultiShapelet: every (component, PSF element) pair needs its own
// convolved ellipse, so the transform is recomputed per pair.

package shapelet

import (
	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

var (
	_ MatrixBuilder = (*multiShapeletMatrixBuilder)(nil)
	_ MatrixBuilder = (*convolvedMultiShapeletMatrixBuilder)(nil)
)

// multiShapeletMatrixBuilder accumulates, per component,
// hermite(N×size(order_k)) · M_k(size(order_k)×K) into the output.
type multiShapeletMatrixBuilder struct {
	builderBase
	components []BasisComponent
	ws         *workspace
	ellipseH   ellipseHelper
	shapeletH  shapeletHelper
	scratch    blas64.General
}

func newMultiShapeletMatrixBuilder(method string, x, y []float64, basis *MultiShapeletBasis) (*multiShapeletMatrixBuilder, error) {
	if len(basis.components) == 0 {
		return nil, wrapf(method, ErrEmptyInput, "basis has no components")
	}
	base, err := newBuilderBase(method, x, y, basis.size)
	if err != nil {
		return nil, err
	}
	maxOrder := 0
	for _, c := range basis.components {
		maxOrder = max(maxOrder, c.order)
	}
	n := base.PointCount()
	maxSize := ComputeSize(maxOrder)
	ws := newWorkspace(ellipseWorkspaceSize(n) + shapeletWorkspaceSize(n, maxOrder) + n*maxSize)

	return &multiShapeletMatrixBuilder{
		builderBase: base,
		components:  basis.components,
		ws:          ws,
		ellipseH:    newEllipseHelper(ws, n),
		shapeletH:   newShapeletHelper(ws, n, maxOrder),
		scratch:     ws.general(n, maxSize),
	}, nil
}

func (b *multiShapeletMatrixBuilder) Apply(output *mat.Dense, ellipse geom.Ellipse) error {
	raw, err := b.prepare(output, ellipse)
	if err != nil {
		return err
	}
	b.ellipseH.readEllipse(b.x, b.y, ellipse)
	lastRadius := 1.0
	for _, c := range b.components {
		b.ellipseH.scale(c.radius / lastRadius)
		view := window(b.scratch, b.scratch.Rows, ComputeSize(c.order))
		zeroGeneral(view)
		b.shapeletH.apply(&b.ellipseH, view.Data, view.Stride, c.order)
		gemm(view, c.matrix.RawMatrix(), 1, raw)
		lastRadius = c.radius
	}

	return nil
}

// convolvedComponent pairs one basis component with one PSF element.
type convolvedComponent struct {
	conv   Convolution
	radius float64
	matrix *mat.Dense
}

func (c convolvedComponent) rowSize() int { return ComputeSize(c.conv.RowOrder()) }

func (c convolvedComponent) colSize() int { return ComputeSize(c.conv.ColOrder()) }

// convolvedMultiShapeletMatrixBuilder accumulates, per (component, PSF
// element) pair, hermite(N×rowSize) · (op(rowSize×colSize) · M_k(colSize×K)).
type convolvedMultiShapeletMatrixBuilder struct {
	builderBase
	components []convolvedComponent
	ws         *workspace
	ellipseH   ellipseHelper
	shapeletH  shapeletHelper
	basisWS    blas64.General
	productWS  blas64.General
}

func newConvolvedMultiShapeletMatrixBuilder(
	method string,
	x, y []float64,
	psfElements []*ShapeletFunction,
	basis *MultiShapeletBasis,
	factory ConvolutionFactory,
) (*convolvedMultiShapeletMatrixBuilder, error) {
	if len(basis.components) == 0 || len(psfElements) == 0 {
		return nil, wrapf(method, ErrEmptyInput, "basis and psf must both be non-empty")
	}
	base, err := newBuilderBase(method, x, y, basis.size)
	if err != nil {
		return nil, err
	}
	components := make([]convolvedComponent, 0, len(basis.components)*len(psfElements))
	maxRowOrder := 0
	for _, bc := range basis.components {
		for _, psf := range psfElements {
			conv, err := factory(bc.order, psf)
			if err != nil {
				return nil, err
			}
			if conv.ColOrder() != bc.order || conv.RowOrder() < 0 {
				return nil, wrapf(method, ErrShapeMismatch,
					"convolution orders (row %d, col %d) do not fit component order %d",
					conv.RowOrder(), conv.ColOrder(), bc.order)
			}
			components = append(components, convolvedComponent{conv: conv, radius: bc.radius, matrix: bc.matrix})
			maxRowOrder = max(maxRowOrder, conv.RowOrder())
		}
	}
	n := base.PointCount()
	maxRowSize := ComputeSize(maxRowOrder)
	ws := newWorkspace(ellipseWorkspaceSize(n) + shapeletWorkspaceSize(n, maxRowOrder) +
		n*maxRowSize + maxRowSize*basis.size)

	return &convolvedMultiShapeletMatrixBuilder{
		builderBase: base,
		components:  components,
		ws:          ws,
		ellipseH:    newEllipseHelper(ws, n),
		shapeletH:   newShapeletHelper(ws, n, maxRowOrder),
		basisWS:     ws.general(n, maxRowSize),
		productWS:   ws.general(maxRowSize, basis.size),
	}, nil
}

func (b *convolvedMultiShapeletMatrixBuilder) Apply(output *mat.Dense, ellipse geom.Ellipse) error {
	raw, err := b.prepare(output, ellipse)
	if err != nil {
		return err
	}
	for _, c := range b.components {
		op, convolved, err := c.conv.Evaluate(ellipse.Scale(c.radius))
		if err == nil {
			err = checkOperator(op, c.rowSize(), c.colSize())
		}
		if err != nil {
			// earlier pairs are already accumulated; never hand back a partial sum
			zeroGeneral(raw)
			return err
		}
		rowSize := c.rowSize()
		b.ellipseH.readEllipse(b.x, b.y, convolved)

		basisView := window(b.basisWS, b.basisWS.Rows, rowSize)
		zeroGeneral(basisView)
		b.shapeletH.apply(&b.ellipseH, basisView.Data, basisView.Stride, c.conv.RowOrder())

		productView := window(b.productWS, rowSize, b.productWS.Cols)
		gemm(op.RawMatrix(), c.matrix.RawMatrix(), 0, productView)

		gemm(basisView, productView, 1, raw)
	}

	return nil
}
