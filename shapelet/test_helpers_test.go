// Package shapelet_test holds helpers shared by the black-box tests.
package shapelet_test

import (
	"math/rand"
	"testing"

	"github.com/katalvlaran/lvshape/geom"
	"github.com/katalvlaran/lvshape/shapelet"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"
)

// mustEllipse builds a validated ellipse or fails the test.
func mustEllipse(tb testing.TB, ixx, iyy, ixy, cx, cy float64) geom.Ellipse {
	tb.Helper()
	e, err := geom.NewEllipse(geom.Quadrupole{Ixx: ixx, Iyy: iyy, Ixy: ixy}, geom.Point{X: cx, Y: cy})
	require.NoError(tb, err)

	return e
}

// gridPoints returns the flattened (x, y) samples of a square grid.
func gridPoints(lo, hi, step float64) (x, y []float64) {
	n := int((hi-lo)/step+0.5) + 1
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			x = append(x, lo+float64(j)*step)
			y = append(y, lo+float64(i)*step)
		}
	}

	return x, y
}

// apply allocates an output of the right shape and fills it.
func apply(tb testing.TB, b shapelet.MatrixBuilder, e geom.Ellipse) *mat.Dense {
	tb.Helper()
	out := mat.NewDense(b.PointCount(), b.BasisSize(), nil)
	require.NoError(tb, b.Apply(out, e))

	return out
}

// requireMatrixInDelta compares two matrices element-wise.
func requireMatrixInDelta(tb testing.TB, want, got mat.Matrix, delta float64) {
	tb.Helper()
	wr, wc := want.Dims()
	gr, gc := got.Dims()
	require.Equal(tb, wr, gr, "rows")
	require.Equal(tb, wc, gc, "cols")
	for i := 0; i < wr; i++ {
		for j := 0; j < wc; j++ {
			require.InDeltaf(tb, want.At(i, j), got.At(i, j), delta, "element (%d,%d)", i, j)
		}
	}
}

// randomMatrix returns an r×c matrix of standard normal draws.
func randomMatrix(rng *rand.Rand, r, c int) *mat.Dense {
	data := make([]float64, r*c)
	for i := range data {
		data[i] = rng.NormFloat64()
	}

	return mat.NewDense(r, c, data)
}

// componentSpec describes one sub-basis for makeBasis.
type componentSpec struct {
	radius float64
	order  int
}

// makeBasis builds a basis with random matrices drawn from seed.
func makeBasis(tb testing.TB, seed int64, size int, specs ...componentSpec) *shapelet.MultiShapeletBasis {
	tb.Helper()
	rng := rand.New(rand.NewSource(seed))
	basis, err := shapelet.NewMultiShapeletBasis(size)
	require.NoError(tb, err)
	for _, s := range specs {
		require.NoError(tb, basis.AddComponent(s.radius, s.order, randomMatrix(rng, shapelet.ComputeSize(s.order), size)))
	}

	return basis
}

// unitVector returns e_i of length n.
func unitVector(i, n int) []float64 {
	v := make([]float64, n)
	v[i] = 1

	return v
}

// fakeConvolution is a Convolution with a fixed operator; it convolves the
// ellipse with psf like a real operator would.
type fakeConvolution struct {
	rowOrder, colOrder int
	op                 *mat.Dense
	psf                geom.Ellipse
}

func (f *fakeConvolution) RowOrder() int { return f.rowOrder }

func (f *fakeConvolution) ColOrder() int { return f.colOrder }

func (f *fakeConvolution) Evaluate(e geom.Ellipse) (*mat.Dense, geom.Ellipse, error) {
	return f.op, e.Convolve(f.psf), nil
}

// fakeFactory returns a ConvolutionFactory whose row order is order +
// psf.Order() and whose operator is deterministic in its shape.
func fakeFactory() shapelet.ConvolutionFactory {
	return func(order int, psf *shapelet.ShapeletFunction) (shapelet.Convolution, error) {
		row := order + psf.Order()
		rs, cs := shapelet.ComputeSize(row), shapelet.ComputeSize(order)
		op := mat.NewDense(rs, cs, nil)
		for i := 0; i < rs; i++ {
			for j := 0; j < cs; j++ {
				op.Set(i, j, 1/float64(1+i+2*j))
			}
		}
		return &fakeConvolution{rowOrder: row, colOrder: order, op: op, psf: psf.Ellipse()}, nil
	}
}
