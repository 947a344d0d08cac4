package shapelet_test

import (
	"errors"
	"math"
	"testing"

	"github.com/katalvlaran/lvshape/geom"
	"github.com/katalvlaran/lvshape/shapelet"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// TestGaussianIdentityEllipse compares the order-0 column with the closed
// form exp(-r²/2)/√π on the unit circle (Jacobian 1).
func TestGaussianIdentityEllipse(t *testing.T) {
	x, y := gridPoints(-3, 3, 0.5)
	b, err := shapelet.NewMatrixBuilder(x, y, 0)
	require.NoError(t, err)
	require.Equal(t, 1, b.BasisSize())
	require.Equal(t, len(x), b.PointCount())

	out := apply(t, b, geom.UnitCircle())
	for i := range x {
		want := math.Exp(-0.5*(x[i]*x[i]+y[i]*y[i])) / math.Sqrt(math.Pi)
		require.InDelta(t, want, out.At(i, 0), 1e-15)
	}
}

// TestGaussianJacobian checks the det(T) factor for a non-trivial ellipse.
func TestGaussianJacobian(t *testing.T) {
	x := []float64{0.5, -1, 2}
	y := []float64{0, 1.5, -0.5}
	e := mustEllipse(t, 6, 5, 2, 0.25, -0.5)
	b, err := shapelet.NewMatrixBuilder(x, y, 0)
	require.NoError(t, err)
	out := apply(t, b, e)

	q := e.Core()
	det := q.Determinant()
	for i := range x {
		dx, dy := x[i]-e.Center().X, y[i]-e.Center().Y
		r2 := (q.Iyy*dx*dx - 2*q.Ixy*dx*dy + q.Ixx*dy*dy) / det
		want := math.Exp(-0.5*r2) / (math.Sqrt(math.Pi) * math.Sqrt(det))
		require.InDelta(t, want, out.At(i, 0), 1e-14)
	}
}

// TestEndToEndOrderOne covers the three-point order-1 scenario.
func TestEndToEndOrderOne(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{0, 0, 0}
	b, err := shapelet.NewMatrixBuilder(x, y, 1)
	require.NoError(t, err)
	out := apply(t, b, geom.UnitCircle())

	r, c := out.Dims()
	require.Equal(t, 3, r)
	require.Equal(t, 3, c)

	// order-0 column strictly decreases with |x|
	require.Greater(t, out.At(0, 0), out.At(1, 0))
	require.Greater(t, out.At(1, 0), out.At(2, 0))

	// order-1 columns: (1,0) is odd in x, (0,1) vanishes on y = 0
	mirror, err := shapelet.NewMatrixBuilder([]float64{0, -1, -2}, y, 1)
	require.NoError(t, err)
	outMirror := apply(t, mirror, geom.UnitCircle())
	for i := range x {
		require.InDelta(t, -out.At(i, 1), outMirror.At(i, 1), 1e-15)
		require.InDelta(t, out.At(i, 0), outMirror.At(i, 0), 1e-15)
		require.Zero(t, out.At(i, 2))
		envelope := math.Exp(-0.5 * x[i] * x[i])
		require.InDelta(t, math.Sqrt2*x[i]*envelope/math.Sqrt(math.Pi), out.At(i, 1), 1e-15)
	}
	require.Zero(t, out.At(0, 1))
	require.Positive(t, out.At(1, 1))
}

// TestShapeletOrderZeroMatchesGaussian checks that the order-0 column of the
// shapelet builder equals the lightweight Gaussian builder.
func TestShapeletOrderZeroMatchesGaussian(t *testing.T) {
	x, y := gridPoints(-2, 2, 0.5)
	e := mustEllipse(t, 2, 1, 0.3, 0.1, -0.2)

	g, err := shapelet.NewMatrixBuilder(x, y, 0)
	require.NoError(t, err)
	s, err := shapelet.NewMatrixBuilder(x, y, 4)
	require.NoError(t, err)
	require.Equal(t, 15, s.BasisSize())

	gOut := apply(t, g, e)
	sOut := apply(t, s, e)
	requireMatrixInDelta(t, gOut, sOut.Slice(0, len(x), 0, 1), 1e-15)
}

// TestApplyOverwritesOutput verifies zero-then-accumulate semantics across
// repeated calls and different ellipses.
func TestApplyOverwritesOutput(t *testing.T) {
	x, y := gridPoints(-1, 1, 0.5)
	b, err := shapelet.NewMatrixBuilder(x, y, 3)
	require.NoError(t, err)
	e1 := mustEllipse(t, 1, 1, 0, 0, 0)
	e2 := mustEllipse(t, 3, 2, -0.5, 0.4, 0.1)

	want := apply(t, b, e2)
	out := mat.NewDense(b.PointCount(), b.BasisSize(), nil)
	for i := 0; i < 3; i++ {
		out.Apply(func(_, _ int, _ float64) float64 { return math.NaN() }, out)
		require.NoError(t, b.Apply(out, e1))
		require.NoError(t, b.Apply(out, e2))
	}
	requireMatrixInDelta(t, want, out, 0)
}

// TestApplyShapeErrors covers output validation.
func TestApplyShapeErrors(t *testing.T) {
	x, y := []float64{0, 1}, []float64{1, 0}
	b, err := shapelet.NewMatrixBuilder(x, y, 2)
	require.NoError(t, err)

	err = b.Apply(mat.NewDense(2, 5, nil), geom.UnitCircle())
	require.ErrorIs(t, err, shapelet.ErrShapeMismatch)
	err = b.Apply(mat.NewDense(3, 6, nil), geom.UnitCircle())
	require.ErrorIs(t, err, shapelet.ErrShapeMismatch)
	err = b.Apply(nil, geom.UnitCircle())
	require.ErrorIs(t, err, shapelet.ErrNilInput)

	out := mat.NewDense(2, 6, []float64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12})
	err = b.Apply(out, geom.Ellipse{})
	require.ErrorIs(t, err, geom.ErrNotPositiveDefinite)
	require.Equal(t, 1.0, out.At(0, 0), "output must be untouched on validation failure")
}

// TestConstructionErrors covers the length, order and unsupported checks.
func TestConstructionErrors(t *testing.T) {
	x5 := []float64{0, 1, 2, 3, 4}
	y3 := []float64{0, 1, 2}

	_, err := shapelet.NewMatrixBuilder(x5, y3, 2)
	require.ErrorIs(t, err, shapelet.ErrLengthMismatch)
	_, err = shapelet.NewMatrixBuilder(x5, y3, 0)
	require.ErrorIs(t, err, shapelet.ErrLengthMismatch)
	_, err = shapelet.NewMatrixBuilder(y3, y3, -1)
	require.ErrorIs(t, err, shapelet.ErrInvalidOrder)
	_, err = shapelet.NewMatrixBuilder(nil, nil, 1)
	require.ErrorIs(t, err, shapelet.ErrEmptyInput)

	psfA, err := shapelet.NewShapeletFunction(0, mustEllipse(t, 1, 1, 0, 0, 0), []float64{1})
	require.NoError(t, err)
	psfB, err := shapelet.NewShapeletFunction(0, mustEllipse(t, 2, 2, 0, 0, 0), []float64{1})
	require.NoError(t, err)
	multiPsf, err := shapelet.NewMultiShapeletFunction(psfA, psfB)
	require.NoError(t, err)
	basis := makeBasis(t, 1, 2, componentSpec{1, 0})

	_, err = shapelet.NewConvolvedBasisMatrixBuilder(y3, y3, multiPsf, basis)
	require.ErrorIs(t, err, shapelet.ErrNotImplemented)
	_, err = shapelet.NewMultiPsfMatrixBuilder(y3, y3, multiPsf, 0)
	require.ErrorIs(t, err, shapelet.ErrNotImplemented)
	_, err = shapelet.NewConvolvedMatrixBuilder(y3, y3, nil, 0)
	require.ErrorIs(t, err, shapelet.ErrNilInput)
	_, err = shapelet.NewBasisMatrixBuilder(y3, y3, nil)
	require.ErrorIs(t, err, shapelet.ErrNilInput)

	// lengths are checked even for the convolved variants
	singlePsf, err := shapelet.NewMultiShapeletFunction(psfA)
	require.NoError(t, err)
	_, err = shapelet.NewConvolvedBasisMatrixBuilder(x5, y3, singlePsf, basis)
	require.ErrorIs(t, err, shapelet.ErrLengthMismatch)
	_, err = shapelet.NewBasisMatrixBuilder(x5, y3, basis)
	require.ErrorIs(t, err, shapelet.ErrLengthMismatch)

	// the default convolution only covers the closed-form Gaussian case
	_, err = shapelet.NewConvolvedMatrixBuilder(y3, y3, psfA, 2)
	require.ErrorIs(t, err, shapelet.ErrNotImplemented)

	empty, err := shapelet.NewMultiShapeletBasis(2)
	require.NoError(t, err)
	_, err = shapelet.NewBasisMatrixBuilder(y3, y3, empty)
	require.ErrorIs(t, err, shapelet.ErrEmptyInput)
}

// TestConvolvedGaussianAnalytic compares with the closed-form convolution of
// two Gaussians: covariances and centers add.
func TestConvolvedGaussianAnalytic(t *testing.T) {
	x, y := gridPoints(-6, 6, 1)
	galaxy := mustEllipse(t, 6, 5, 2, 0.5, -0.3)
	psfEllipse := mustEllipse(t, 7, 12, -2, 0.1, 0.2)
	const psfCoefficient = 0.8
	psf, err := shapelet.NewShapeletFunction(0, psfEllipse, []float64{psfCoefficient})
	require.NoError(t, err)

	b, err := shapelet.NewConvolvedMatrixBuilder(x, y, psf, 0)
	require.NoError(t, err)
	out := apply(t, b, galaxy)

	sxx, syy, sxy := 6.0+7.0, 5.0+12.0, 2.0-2.0
	det := sxx*syy - sxy*sxy
	cx, cy := 0.5+0.1, -0.3+0.2
	for i := range x {
		dx, dy := x[i]-cx, y[i]-cy
		r2 := (syy*dx*dx - 2*sxy*dx*dy + sxx*dy*dy) / det
		want := psfCoefficient / shapelet.FluxFactor * math.Exp(-0.5*r2) / (math.Sqrt(math.Pi) * math.Sqrt(det))
		require.InDelta(t, want, out.At(i, 0), 1e-15)
	}

	// the same result through a one-element multi-function PSF
	multiPsf, err := shapelet.NewMultiShapeletFunction(psf)
	require.NoError(t, err)
	b2, err := shapelet.NewMultiPsfMatrixBuilder(x, y, multiPsf, 0)
	require.NoError(t, err)
	requireMatrixInDelta(t, out, apply(t, b2, galaxy), 0)
}

// TestConvolvedShapeletUsesOperator checks output = hermite(rowOrder) · op on
// the convolved ellipse with an injected convolution.
func TestConvolvedShapeletUsesOperator(t *testing.T) {
	x, y := gridPoints(-3, 3, 0.75)
	galaxy := mustEllipse(t, 2, 1.5, 0.2, 0.1, 0)
	psf, err := shapelet.NewShapeletFunction(1, mustEllipse(t, 0.5, 0.6, 0.1, 0, 0.05), []float64{1, 0.1, -0.1})
	require.NoError(t, err)
	const order = 2

	b, err := shapelet.NewConvolvedMatrixBuilder(x, y, psf, order, shapelet.WithConvolutionFactory(fakeFactory()))
	require.NoError(t, err)
	require.Equal(t, shapelet.ComputeSize(order), b.BasisSize())
	got := apply(t, b, galaxy)

	conv, err := fakeFactory()(order, psf)
	require.NoError(t, err)
	op, convolved, err := conv.Evaluate(galaxy)
	require.NoError(t, err)
	raw, err := shapelet.NewMatrixBuilder(x, y, conv.RowOrder())
	require.NoError(t, err)
	var want mat.Dense
	want.Mul(apply(t, raw, convolved), op)
	requireMatrixInDelta(t, &want, got, 1e-14)
}

// TestConvolvedShapeletMatchesConvolvedGaussian routes an order-0 request
// through the generic convolved path with the closed-form convolution.
func TestConvolvedShapeletMatchesConvolvedGaussian(t *testing.T) {
	x, y := gridPoints(-4, 4, 1)
	galaxy := mustEllipse(t, 3, 2, 0.4, 0, 0)
	psf, err := shapelet.NewShapeletFunction(0, mustEllipse(t, 1, 1.5, 0, 0.2, 0.2), []float64{1.3})
	require.NoError(t, err)

	direct, err := shapelet.NewConvolvedMatrixBuilder(x, y, psf, 0)
	require.NoError(t, err)

	// the basis path always goes through the factory
	calls := 0
	factory := func(order int, p *shapelet.ShapeletFunction) (shapelet.Convolution, error) {
		calls++
		return shapelet.NewGaussianConvolution(order, p)
	}
	basis := makeBasis(t, 3, 1, componentSpec{1, 0})
	require.NoError(t, basis.Normalize())
	single, err := shapelet.NewMultiShapeletFunction(psf)
	require.NoError(t, err)
	viaBasis, err := shapelet.NewConvolvedBasisMatrixBuilder(x, y, single, basis, shapelet.WithConvolutionFactory(factory))
	require.NoError(t, err)
	require.Equal(t, 1, calls)

	want := apply(t, direct, galaxy)
	got := apply(t, viaBasis, galaxy)
	m := basis.Components()[0].Matrix().At(0, 0)
	want.Scale(m, want)
	requireMatrixInDelta(t, want, got, 1e-15)
}

// TestMultiShapeletMatchesMakeFunction checks output·c against evaluating
// the function the basis makes from c.
func TestMultiShapeletMatchesMakeFunction(t *testing.T) {
	x, y := gridPoints(-3, 3, 0.5)
	basis := makeBasis(t, 500, 2, componentSpec{0.5, 1}, componentSpec{1.0, 2}, componentSpec{1.2, 0})
	ellipse := mustEllipse(t, 2.5, 1.5, 0.4, 0.3, -0.2)

	b, err := shapelet.NewBasisMatrixBuilder(x, y, basis)
	require.NoError(t, err)
	require.Equal(t, 2, b.BasisSize())
	out := apply(t, b, ellipse)

	for k := 0; k < basis.Size(); k++ {
		f, err := basis.MakeFunction(ellipse, unitVector(k, basis.Size()))
		require.NoError(t, err)
		values, err := f.Evaluate(x, y)
		require.NoError(t, err)
		for i := range x {
			require.InDelta(t, values[i], out.At(i, k), 1e-13)
		}
	}
}

// TestMultiShapeletScaleInvariance: scaling the basis radii by c and the
// ellipse by 1/c leaves the output unchanged.
func TestMultiShapeletScaleInvariance(t *testing.T) {
	x, y := gridPoints(-3, 3, 0.5)
	basis := makeBasis(t, 7, 3, componentSpec{0.4, 1}, componentSpec{1.1, 2}, componentSpec{1.6, 0})
	ellipse := mustEllipse(t, 2, 1, 0.2, 0.1, 0.1)

	b1, err := shapelet.NewBasisMatrixBuilder(x, y, basis)
	require.NoError(t, err)
	out1 := apply(t, b1, ellipse)

	// builders copy the basis, so scaling it afterwards must not leak
	require.NoError(t, basis.Scale(2))
	requireMatrixInDelta(t, out1, apply(t, b1, ellipse), 0)

	b2, err := shapelet.NewBasisMatrixBuilder(x, y, basis)
	require.NoError(t, err)
	out2 := apply(t, b2, ellipse.Scale(0.5))
	requireMatrixInDelta(t, out1, out2, 1e-13)
}

// TestMultiShapeletCoordinateScaling: scaling the sample coordinates and the
// ellipse by c gives the same dimensionless frame, so the output only changes
// by the Jacobian 1/c².
func TestMultiShapeletCoordinateScaling(t *testing.T) {
	const c = 2.5
	x, y := gridPoints(-2, 2, 0.5)
	xs, ys := make([]float64, len(x)), make([]float64, len(y))
	for i := range x {
		xs[i], ys[i] = c*x[i], c*y[i]
	}
	basis := makeBasis(t, 11, 2, componentSpec{0.7, 2}, componentSpec{1.3, 1})
	ellipse := mustEllipse(t, 1.5, 1, -0.3, 0.2, -0.1)
	scaled := ellipse.Scale(c).WithCenter(geom.Point{X: c * 0.2, Y: c * -0.1})

	b1, err := shapelet.NewBasisMatrixBuilder(x, y, basis)
	require.NoError(t, err)
	b2, err := shapelet.NewBasisMatrixBuilder(xs, ys, basis)
	require.NoError(t, err)

	out1 := apply(t, b1, ellipse)
	out2 := apply(t, b2, scaled)
	out2.Scale(c*c, out2)
	requireMatrixInDelta(t, out1, out2, 1e-13)
}

// TestConvolvedMultiShapelet checks the pairwise accumulation with an
// injected convolution against single-component reconstructions.
func TestConvolvedMultiShapelet(t *testing.T) {
	x, y := gridPoints(-3, 3, 0.75)
	basis := makeBasis(t, 42, 2, componentSpec{0.6, 1}, componentSpec{1.4, 2})
	psfFn, err := shapelet.NewShapeletFunction(1, mustEllipse(t, 0.3, 0.4, 0.05, 0, 0), []float64{1, 0.2, 0.1})
	require.NoError(t, err)
	psf, err := shapelet.NewMultiShapeletFunction(psfFn)
	require.NoError(t, err)
	ellipse := mustEllipse(t, 2, 1.2, 0.3, -0.1, 0.2)

	b, err := shapelet.NewConvolvedBasisMatrixBuilder(x, y, psf, basis, shapelet.WithConvolutionFactory(fakeFactory()))
	require.NoError(t, err)
	got := apply(t, b, ellipse)

	want := mat.NewDense(len(x), basis.Size(), nil)
	for _, comp := range basis.Components() {
		conv, err := fakeFactory()(comp.Order(), psfFn)
		require.NoError(t, err)
		op, convolved, err := conv.Evaluate(ellipse.Scale(comp.Radius()))
		require.NoError(t, err)
		raw, err := shapelet.NewMatrixBuilder(x, y, conv.RowOrder())
		require.NoError(t, err)
		var product, term mat.Dense
		product.Mul(op, comp.Matrix())
		term.Mul(apply(t, raw, convolved), &product)
		want.Add(want, &term)
	}
	requireMatrixInDelta(t, want, got, 1e-13)
}

// failingConvolution delegates to a working Convolution until the shared
// call counter reaches failAt.
type failingConvolution struct {
	shapelet.Convolution
	calls  *int
	failAt int
}

var errEvaluate = errors.New("evaluate failed")

func (f *failingConvolution) Evaluate(e geom.Ellipse) (*mat.Dense, geom.Ellipse, error) {
	*f.calls++
	if *f.calls >= f.failAt {
		return nil, geom.Ellipse{}, errEvaluate
	}

	return f.Convolution.Evaluate(e)
}

// TestConvolvedMultiShapeletErrorZeroesOutput fails the second component's
// convolution after the first has been accumulated.
func TestConvolvedMultiShapeletErrorZeroesOutput(t *testing.T) {
	x, y := gridPoints(-2, 2, 1)
	basis := makeBasis(t, 3, 2, componentSpec{0.6, 1}, componentSpec{1.4, 0})
	psfFn, err := shapelet.NewShapeletFunction(0, mustEllipse(t, 0.3, 0.4, 0.05, 0, 0), []float64{1})
	require.NoError(t, err)
	psf, err := shapelet.NewMultiShapeletFunction(psfFn)
	require.NoError(t, err)

	calls := 0
	factory := func(order int, p *shapelet.ShapeletFunction) (shapelet.Convolution, error) {
		conv, err := fakeFactory()(order, p)
		if err != nil {
			return nil, err
		}
		return &failingConvolution{Convolution: conv, calls: &calls, failAt: 2}, nil
	}
	b, err := shapelet.NewConvolvedBasisMatrixBuilder(x, y, psf, basis, shapelet.WithConvolutionFactory(factory))
	require.NoError(t, err)

	out := mat.NewDense(b.PointCount(), b.BasisSize(), nil)
	out.Apply(func(_, _ int, _ float64) float64 { return 1 }, out)
	err = b.Apply(out, mustEllipse(t, 2, 1.2, 0.3, -0.1, 0.2))
	require.ErrorIs(t, err, errEvaluate)
	require.Equal(t, 2, calls)
	requireMatrixInDelta(t, mat.NewDense(b.PointCount(), b.BasisSize(), nil), out, 0)
}

// TestBuildersAreIndependent runs two builders over the same point slice and
// mutates the caller's slices afterwards.
func TestBuildersAreIndependent(t *testing.T) {
	x := []float64{0, 1, 2}
	y := []float64{0, 0, 0}
	b, err := shapelet.NewMatrixBuilder(x, y, 2)
	require.NoError(t, err)
	before := apply(t, b, geom.UnitCircle())
	x[1], y[2] = 100, -100
	requireMatrixInDelta(t, before, apply(t, b, geom.UnitCircle()), 0)
}
