// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// builder.go - MatrixBuilder contract and constructors.
//
// Variant selection:
//
//	order 0, no PSF                      → Gaussian
//	order > 0, no PSF                    → Shapelet
//	PSF, order 0, PSF order 0            → Convolved-Gaussian
//	PSF otherwise                        → Convolved-Shapelet
//	basis, no PSF                        → MultiShapelet
//	basis, single-element PSF            → Convolved-MultiShapelet
//	basis, multi-element PSF             → ErrNotImplemented
//	multi-element PSF with a plain order → ErrNotImplemented

package shapelet

import (
	"github.com/katalvlaran/lvshape/geom"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/blas/blas64"
	"gonum.org/v1/gonum/mat"
)

// MatrixBuilder fills design matrices for a fixed point set and basis.
type MatrixBuilder interface {
	// Apply overwrites output (PointCount()×BasisSize()) with the basis
	// evaluated on ellipse. It returns ErrShapeMismatch for a wrongly sized
	// output and ErrNilInput for a nil one; output is not modified then.
	Apply(output *mat.Dense, ellipse geom.Ellipse) error

	// BasisSize returns the number of output columns.
	BasisSize() int

	// PointCount returns the number of output rows.
	PointCount() int
}

// Variant names reported in construction logs.
const (
	variantGaussian               = "gaussian"
	variantShapelet               = "shapelet"
	variantConvolvedGaussian      = "convolved-gaussian"
	variantConvolvedShapelet      = "convolved-shapelet"
	variantMultiShapelet          = "multi-shapelet"
	variantConvolvedMultiShapelet = "convolved-multi-shapelet"
)

// builderBase holds the immutable point set shared by all variants.
type builderBase struct {
	x, y      []float64
	basisSize int
}

// newBuilderBase validates and copies the point set.
func newBuilderBase(method string, x, y []float64, basisSize int) (builderBase, error) {
	if len(x) != len(y) {
		return builderBase{}, wrapf(method, ErrLengthMismatch,
			"size of x array (%d) does not match size of y array (%d)", len(x), len(y))
	}
	if len(x) == 0 {
		return builderBase{}, wrapf(method, ErrEmptyInput, "no sample points")
	}
	xs := make([]float64, len(x))
	ys := make([]float64, len(y))
	copy(xs, x)
	copy(ys, y)

	return builderBase{x: xs, y: ys, basisSize: basisSize}, nil
}

func (b *builderBase) BasisSize() int { return b.basisSize }

func (b *builderBase) PointCount() int { return len(b.x) }

// prepare validates output and ellipse, zeroes output and returns its raw
// storage.
func (b *builderBase) prepare(output *mat.Dense, ellipse geom.Ellipse) (blas64.General, error) {
	if output == nil {
		return blas64.General{}, wrapf(methodApply, ErrNilInput, "output matrix is nil")
	}
	r, c := output.Dims()
	if r != len(b.x) || c != b.basisSize {
		return blas64.General{}, wrapf(methodApply, ErrShapeMismatch,
			"output is %d×%d, want %d×%d", r, c, len(b.x), b.basisSize)
	}
	if err := ellipse.Validate(); err != nil {
		return blas64.General{}, wrapf(methodApply, err, "invalid ellipse")
	}
	output.Zero()

	return output.RawMatrix(), nil
}

// NewMatrixBuilder returns a builder for the unconvolved shapelet basis of
// the given order, or the lightweight Gaussian builder for order 0.
func NewMatrixBuilder(x, y []float64, order int, opts ...Option) (MatrixBuilder, error) {
	cfg := newBuilderConfig(opts...)
	if order < 0 {
		return nil, wrapf(methodNewMatrixBuilder, ErrInvalidOrder, "order %d", order)
	}
	if order == 0 {
		b, err := newGaussianMatrixBuilder(methodNewMatrixBuilder, x, y)
		if err != nil {
			return nil, err
		}
		logBuilder(cfg.logger, variantGaussian, b, len(b.ws.buf))

		return b, nil
	}
	b, err := newShapeletMatrixBuilder(methodNewMatrixBuilder, x, y, order)
	if err != nil {
		return nil, err
	}
	logBuilder(cfg.logger, variantShapelet, b, len(b.ws.buf), zap.Int("order", order))

	return b, nil
}

// NewConvolvedMatrixBuilder returns a builder for the basis of the given
// order convolved with psf. An order-0 basis with an order-0 PSF uses the
// closed-form Gaussian convolution; every other case obtains a Convolution
// from the configured ConvolutionFactory.
func NewConvolvedMatrixBuilder(x, y []float64, psf *ShapeletFunction, order int, opts ...Option) (MatrixBuilder, error) {
	cfg := newBuilderConfig(opts...)
	if err := psf.check(methodNewConvolvedMatrixBuilder); err != nil {
		return nil, err
	}
	if order < 0 {
		return nil, wrapf(methodNewConvolvedMatrixBuilder, ErrInvalidOrder, "order %d", order)
	}
	if order == 0 && psf.Order() == 0 {
		b, err := newConvolvedGaussianMatrixBuilder(methodNewConvolvedMatrixBuilder, x, y,
			psf.Ellipse(), psf.coefficients[0])
		if err != nil {
			return nil, err
		}
		logBuilder(cfg.logger, variantConvolvedGaussian, b, len(b.ws.buf))

		return b, nil
	}
	conv, err := cfg.convolutionFactory(order, psf)
	if err != nil {
		return nil, err
	}
	b, err := newConvolvedShapeletMatrixBuilder(methodNewConvolvedMatrixBuilder, x, y, conv, order)
	if err != nil {
		return nil, err
	}
	logBuilder(cfg.logger, variantConvolvedShapelet, b, len(b.ws.buf),
		zap.Int("order", order), zap.Int("psfOrder", psf.Order()), zap.Int("rowOrder", conv.RowOrder()))

	return b, nil
}

// NewMultiPsfMatrixBuilder is NewConvolvedMatrixBuilder for a PSF given as a
// MultiShapeletFunction. Only single-element PSFs are supported; anything
// else fails with ErrNotImplemented.
func NewMultiPsfMatrixBuilder(x, y []float64, psf *MultiShapeletFunction, order int, opts ...Option) (MatrixBuilder, error) {
	if psf == nil {
		return nil, wrapf(methodNewMultiPsfMatrixBuilder, ErrNilInput, "psf is nil")
	}
	if psf.Len() != 1 {
		return nil, wrapf(methodNewMultiPsfMatrixBuilder, ErrNotImplemented,
			"multi-element PSF (%d elements) with a single shapelet basis", psf.Len())
	}

	return NewConvolvedMatrixBuilder(x, y, psf.elements[0], order, opts...)
}

// NewBasisMatrixBuilder returns a builder for an unconvolved
// MultiShapeletBasis. The basis is copied; later changes to it do not affect
// the builder.
func NewBasisMatrixBuilder(x, y []float64, basis *MultiShapeletBasis, opts ...Option) (MatrixBuilder, error) {
	cfg := newBuilderConfig(opts...)
	if basis == nil {
		return nil, wrapf(methodNewBasisMatrixBuilder, ErrNilInput, "basis is nil")
	}
	b, err := newMultiShapeletMatrixBuilder(methodNewBasisMatrixBuilder, x, y, basis.clone())
	if err != nil {
		return nil, err
	}
	logBuilder(cfg.logger, variantMultiShapelet, b, len(b.ws.buf),
		zap.Int("components", len(b.components)))

	return b, nil
}

// NewConvolvedBasisMatrixBuilder returns a builder for a MultiShapeletBasis
// convolved with psf. Only single-element PSFs are supported: a multi-element
// PSF combined with a multi-component basis fails with ErrNotImplemented.
func NewConvolvedBasisMatrixBuilder(
	x, y []float64,
	psf *MultiShapeletFunction,
	basis *MultiShapeletBasis,
	opts ...Option,
) (MatrixBuilder, error) {
	cfg := newBuilderConfig(opts...)
	if psf == nil || basis == nil {
		return nil, wrapf(methodNewConvolvedBasisBuilder, ErrNilInput, "psf and basis are required")
	}
	if psf.Len() != 1 {
		return nil, wrapf(methodNewConvolvedBasisBuilder, ErrNotImplemented,
			"multi-element PSF (%d elements) with a multi-component basis", psf.Len())
	}
	b, err := newConvolvedMultiShapeletMatrixBuilder(methodNewConvolvedBasisBuilder, x, y,
		psf.elements, basis.clone(), cfg.convolutionFactory)
	if err != nil {
		return nil, err
	}
	logBuilder(cfg.logger, variantConvolvedMultiShapelet, b, len(b.ws.buf),
		zap.Int("components", len(b.components)))

	return b, nil
}

func logBuilder(l *zap.Logger, variant string, b MatrixBuilder, workspace int, fields ...zap.Field) {
	if ce := l.Check(zap.DebugLevel, "shapelet: matrix builder ready"); ce != nil {
		ce.Write(append([]zap.Field{
			zap.String("variant", variant),
			zap.Int("points", b.PointCount()),
			zap.Int("basisSize", b.BasisSize()),
			zap.Int("workspace", workspace),
		}, fields...)...)
	}
}
