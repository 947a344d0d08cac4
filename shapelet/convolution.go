// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// convolution.go - PSF convolution collaborator and its closed-form Gaussian default.

package shapelet

import (
	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/mat"
)

// Convolution maps the coefficients of an unconvolved basis of ColOrder onto
// the coefficients of a basis of RowOrder defined on the convolved ellipse.
//
// Builders treat a Convolution as a pure function of the ellipse: Evaluate is
// called on every Apply and its result is only read. The returned operator
// must have ComputeSize(RowOrder()) rows and ComputeSize(ColOrder()) columns.
type Convolution interface {
	RowOrder() int
	ColOrder() int
	Evaluate(ellipse geom.Ellipse) (op *mat.Dense, convolved geom.Ellipse, err error)
}

// ConvolutionFactory builds the Convolution of a basis of the given order with
// psf. It is injected with WithConvolutionFactory.
type ConvolutionFactory func(order int, psf *ShapeletFunction) (Convolution, error)

// gaussianConvolution is the closed-form convolution of an order-0 basis with
// an order-0 PSF: a 1×1 operator holding psfCoefficient/FluxFactor.
type gaussianConvolution struct {
	psfEllipse geom.Ellipse
	op         *mat.Dense
}

// NewGaussianConvolution is the default ConvolutionFactory. It supports only
// an order-0 basis with an order-0 PSF and returns ErrNotImplemented for
// anything else; supply a general factory with WithConvolutionFactory.
func NewGaussianConvolution(order int, psf *ShapeletFunction) (Convolution, error) {
	if err := psf.check(methodNewGaussianConvolution); err != nil {
		return nil, err
	}
	if order != 0 || psf.Order() != 0 {
		return nil, wrapf(methodNewGaussianConvolution, ErrNotImplemented,
			"closed form requires order 0 basis and PSF, got %d and %d", order, psf.Order())
	}

	return &gaussianConvolution{
		psfEllipse: psf.Ellipse(),
		op:         mat.NewDense(1, 1, []float64{psf.coefficients[0] / FluxFactor}),
	}, nil
}

func (c *gaussianConvolution) RowOrder() int { return 0 }

func (c *gaussianConvolution) ColOrder() int { return 0 }

func (c *gaussianConvolution) Evaluate(ellipse geom.Ellipse) (*mat.Dense, geom.Ellipse, error) {
	return c.op, ellipse.Convolve(c.psfEllipse), nil
}
