// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// impl_builders.go - unconvolved single-component builders and the
// closed-form convolved Gaussian.

package shapelet

import (
	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/mat"
)

// gaussianMatrixBuilder fills the single order-0 column.
type gaussianMatrixBuilder struct {
	builderBase
	ws       *workspace
	ellipseH ellipseHelper
	gaussH   gaussianHelper
}

var (
	_ MatrixBuilder = (*gaussianMatrixBuilder)(nil)
	_ MatrixBuilder = (*convolvedGaussianMatrixBuilder)(nil)
	_ MatrixBuilder = (*shapeletMatrixBuilder)(nil)
)

func newGaussianMatrixBuilder(method string, x, y []float64) (*gaussianMatrixBuilder, error) {
	base, err := newBuilderBase(method, x, y, 1)
	if err != nil {
		return nil, err
	}
	n := base.PointCount()
	ws := newWorkspace(ellipseWorkspaceSize(n))

	return &gaussianMatrixBuilder{
		builderBase: base,
		ws:          ws,
		ellipseH:    newEllipseHelper(ws, n),
	}, nil
}

func (b *gaussianMatrixBuilder) Apply(output *mat.Dense, ellipse geom.Ellipse) error {
	raw, err := b.prepare(output, ellipse)
	if err != nil {
		return err
	}
	b.ellipseH.readEllipse(b.x, b.y, ellipse)
	b.gaussH.apply(&b.ellipseH, raw.Data, raw.Stride)

	return nil
}

// convolvedGaussianMatrixBuilder evaluates the Gaussian on the ellipse
// convolved with an order-0 PSF and scales it by psfCoefficient/FluxFactor.
type convolvedGaussianMatrixBuilder struct {
	builderBase
	ws             *workspace
	ellipseH       ellipseHelper
	gaussH         gaussianHelper
	psfEllipse     geom.Ellipse
	psfCoefficient float64
}

func newConvolvedGaussianMatrixBuilder(
	method string,
	x, y []float64,
	psfEllipse geom.Ellipse,
	psfCoefficient float64,
) (*convolvedGaussianMatrixBuilder, error) {
	base, err := newBuilderBase(method, x, y, 1)
	if err != nil {
		return nil, err
	}
	n := base.PointCount()
	ws := newWorkspace(ellipseWorkspaceSize(n))

	return &convolvedGaussianMatrixBuilder{
		builderBase:    base,
		ws:             ws,
		ellipseH:       newEllipseHelper(ws, n),
		psfEllipse:     psfEllipse,
		psfCoefficient: psfCoefficient,
	}, nil
}

func (b *convolvedGaussianMatrixBuilder) Apply(output *mat.Dense, ellipse geom.Ellipse) error {
	raw, err := b.prepare(output, ellipse)
	if err != nil {
		return err
	}
	b.ellipseH.readEllipse(b.x, b.y, ellipse.Convolve(b.psfEllipse))
	b.gaussH.apply(&b.ellipseH, raw.Data, raw.Stride)
	factor := b.psfCoefficient / FluxFactor
	for i := 0; i < raw.Rows; i++ {
		raw.Data[i*raw.Stride] *= factor
	}

	return nil
}

// shapeletMatrixBuilder fills the packed Gauss-Hermite basis up to order.
type shapeletMatrixBuilder struct {
	builderBase
	order     int
	ws        *workspace
	ellipseH  ellipseHelper
	shapeletH shapeletHelper
}

func newShapeletMatrixBuilder(method string, x, y []float64, order int) (*shapeletMatrixBuilder, error) {
	base, err := newBuilderBase(method, x, y, ComputeSize(order))
	if err != nil {
		return nil, err
	}
	n := base.PointCount()
	ws := newWorkspace(ellipseWorkspaceSize(n) + shapeletWorkspaceSize(n, order))

	return &shapeletMatrixBuilder{
		builderBase: base,
		order:       order,
		ws:          ws,
		ellipseH:    newEllipseHelper(ws, n),
		shapeletH:   newShapeletHelper(ws, n, order),
	}, nil
}

func (b *shapeletMatrixBuilder) Apply(output *mat.Dense, ellipse geom.Ellipse) error {
	raw, err := b.prepare(output, ellipse)
	if err != nil {
		return err
	}
	b.ellipseH.readEllipse(b.x, b.y, ellipse)
	b.shapeletH.apply(&b.ellipseH, raw.Data, raw.Stride, b.order)

	return nil
}
