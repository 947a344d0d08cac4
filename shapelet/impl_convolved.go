// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// impl_convolved.go - single-component builder convolved through a Convolution operator.

package shapelet

import (
	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

var _ MatrixBuilder = (*convolvedShapeletMatrixBuilder)(nil)

// convolvedShapeletMatrixBuilder evaluates the basis of RowOrder on the
// convolved ellipse and projects it onto the target order with the
// convolution operator: output = basis(N×rowSize) · op(rowSize×colSize).
type convolvedShapeletMatrixBuilder struct {
	builderBase
	conv      Convolution
	ws        *workspace
	ellipseH  ellipseHelper
	shapeletH shapeletHelper
	scratch   blas64.General
}

func newConvolvedShapeletMatrixBuilder(
	method string,
	x, y []float64,
	conv Convolution,
	order int,
) (*convolvedShapeletMatrixBuilder, error) {
	if conv == nil {
		return nil, wrapf(method, ErrNilInput, "convolution is nil")
	}
	if conv.ColOrder() != order || conv.RowOrder() < 0 {
		return nil, wrapf(method, ErrShapeMismatch,
			"convolution orders (row %d, col %d) do not fit basis order %d",
			conv.RowOrder(), conv.ColOrder(), order)
	}
	base, err := newBuilderBase(method, x, y, ComputeSize(order))
	if err != nil {
		return nil, err
	}
	n := base.PointCount()
	rowOrder := conv.RowOrder()
	rowSize := ComputeSize(rowOrder)
	ws := newWorkspace(ellipseWorkspaceSize(n) + shapeletWorkspaceSize(n, rowOrder) + n*rowSize)

	return &convolvedShapeletMatrixBuilder{
		builderBase: base,
		conv:        conv,
		ws:          ws,
		ellipseH:    newEllipseHelper(ws, n),
		shapeletH:   newShapeletHelper(ws, n, rowOrder),
		scratch:     ws.general(n, rowSize),
	}, nil
}

func (b *convolvedShapeletMatrixBuilder) Apply(output *mat.Dense, ellipse geom.Ellipse) error {
	raw, err := b.prepare(output, ellipse)
	if err != nil {
		return err
	}
	op, convolved, err := b.conv.Evaluate(ellipse)
	if err != nil {
		return err
	}
	if err = checkOperator(op, b.scratch.Cols, b.basisSize); err != nil {
		return err
	}
	zeroGeneral(b.scratch)
	b.ellipseH.readEllipse(b.x, b.y, convolved)
	b.shapeletH.apply(&b.ellipseH, b.scratch.Data, b.scratch.Stride, b.conv.RowOrder())
	gemm(b.scratch, op.RawMatrix(), 0, raw)

	return nil
}

// checkOperator verifies the shape of a convolution operator before it is
// handed to BLAS.
func checkOperator(op *mat.Dense, rows, cols int) error {
	if op == nil {
		return wrapf(methodApply, ErrNilInput, "convolution returned a nil operator")
	}
	r, c := op.Dims()
	if r != rows || c != cols {
		return wrapf(methodApply, ErrShapeMismatch,
			"convolution operator is %d×%d, want %d×%d", r, c, rows, cols)
	}

	return nil
}
