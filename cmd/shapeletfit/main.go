// SPDX-License-Identifier: MIT

// Command shapeletfit synthesizes an image from a random shapelet model,
// builds the design matrix for the configured basis and recovers the model
// by linear least squares.
//
// Settings come from the environment (SHAPELET_*, LOG_LEVEL, LOG_DEV); see
// internal/config. A multi-component basis can be supplied as YAML through
// SHAPELET_BASIS_FILE.
package main

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/katalvlaran/lvshape/geom"
	"github.com/katalvlaran/lvshape/shapelet"
	"github.com/katalvlaran/lvshape/internal/config"
	"github.com/katalvlaran/lvshape/internal/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	logger, err := logging.New(logging.Config{
		Level:       cfg.Logging.Level,
		Development: cfg.Logging.Development,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	defer func() { _ = logger.Sync() }()
	logger = logger.With(zap.String("run", uuid.NewString()))

	res, err := run(cfg, logger)
	if err != nil {
		logger.Error("fit failed", zap.Error(err))
		_ = logger.Sync()
		os.Exit(1)
	}
	fmt.Printf("coefficients=%d rms=%.3g maxCoefficientError=%.3g flux=%.6g trueFlux=%.6g\n",
		len(res.Fitted), res.RMS, res.MaxCoefficientError, res.Flux, res.TrueFlux)
}

// result summarizes one synthetic fit.
type result struct {
	Truth, Fitted       []float64
	RMS                 float64
	MaxCoefficientError float64
	Flux, TrueFlux      float64
}

// model couples a builder with the function family it spans, so fitted
// coefficients can be turned back into a flux.
type model struct {
	builder shapelet.MatrixBuilder
	basis   *shapelet.MultiShapeletBasis // nil for a single-order shapelet model
	order   int
}

func (m model) flux(ellipse geom.Ellipse, coefficients []float64) (float64, error) {
	if m.basis != nil {
		f, err := m.basis.MakeFunction(ellipse, coefficients)
		if err != nil {
			return 0, err
		}
		return f.Integrate(), nil
	}
	f, err := shapelet.NewShapeletFunction(m.order, ellipse, coefficients)
	if err != nil {
		return 0, err
	}
	return f.Integrate(), nil
}

func run(cfg *config.Config, logger *zap.Logger) (*result, error) {
	x, y := pixelGrid(cfg.Fit.GridSize, cfg.Fit.PixelScale)
	ellipse, err := geom.NewAxesEllipse(cfg.Model.A, cfg.Model.B, cfg.Model.Theta,
		geom.Point{X: cfg.Model.X, Y: cfg.Model.Y})
	if err != nil {
		return nil, err
	}
	m, err := newModel(cfg, x, y, logger)
	if err != nil {
		return nil, err
	}
	n, k := m.builder.PointCount(), m.builder.BasisSize()
	if n < k {
		return nil, fmt.Errorf("grid has %d pixels, fewer than %d basis functions", n, k)
	}

	design := mat.NewDense(n, k, nil)
	if err = m.builder.Apply(design, ellipse); err != nil {
		return nil, err
	}

	rng := rand.New(rand.NewSource(cfg.Fit.Seed))
	truth := make([]float64, k)
	for i := range truth {
		truth[i] = rng.NormFloat64()
	}
	var data mat.VecDense
	data.MulVec(design, mat.NewVecDense(k, truth))
	for i := 0; i < n; i++ {
		data.SetVec(i, data.AtVec(i)+cfg.Fit.Noise*rng.NormFloat64())
	}

	fitted, err := solve(design, &data)
	if err != nil {
		return nil, err
	}
	var predicted mat.VecDense
	predicted.MulVec(design, mat.NewVecDense(k, fitted))

	res := &result{
		Truth:               truth,
		Fitted:              fitted,
		RMS:                 floats.Distance(predicted.RawVector().Data, data.RawVector().Data, 2) / math.Sqrt(float64(n)),
		MaxCoefficientError: floats.Distance(fitted, truth, math.Inf(1)),
	}
	if res.Flux, err = m.flux(ellipse, fitted); err != nil {
		return nil, err
	}
	if res.TrueFlux, err = m.flux(ellipse, truth); err != nil {
		return nil, err
	}
	logger.Info("fit complete",
		zap.Int("pixels", n),
		zap.Int("coefficients", k),
		zap.Float64("rms", res.RMS),
		zap.Float64("maxCoefficientError", res.MaxCoefficientError),
		zap.Float64("flux", res.Flux),
	)

	return res, nil
}

// newModel picks the builder variant for cfg: a YAML basis or a single
// order, optionally convolved with a circular Gaussian PSF of unit flux.
func newModel(cfg *config.Config, x, y []float64, logger *zap.Logger) (model, error) {
	opts := []shapelet.Option{shapelet.WithLogger(logger)}

	var psf *shapelet.ShapeletFunction
	if cfg.Fit.PSFSigma > 0 {
		s2 := cfg.Fit.PSFSigma * cfg.Fit.PSFSigma
		psfEllipse, err := geom.NewEllipse(geom.Quadrupole{Ixx: s2, Iyy: s2}, geom.Point{})
		if err != nil {
			return model{}, err
		}
		psf, err = shapelet.NewShapeletFunction(0, psfEllipse, []float64{1 / shapelet.FluxFactor})
		if err != nil {
			return model{}, err
		}
	}

	if cfg.Fit.BasisFile != "" {
		basis, err := config.LoadBasis(cfg.Fit.BasisFile)
		if err != nil {
			return model{}, err
		}
		var b shapelet.MatrixBuilder
		if psf != nil {
			multi, err := shapelet.NewMultiShapeletFunction(psf)
			if err != nil {
				return model{}, err
			}
			b, err = shapelet.NewConvolvedBasisMatrixBuilder(x, y, multi, basis, opts...)
			if err != nil {
				return model{}, err
			}
		} else if b, err = shapelet.NewBasisMatrixBuilder(x, y, basis, opts...); err != nil {
			return model{}, err
		}
		return model{builder: b, basis: basis}, nil
	}

	var (
		b   shapelet.MatrixBuilder
		err error
	)
	if psf != nil {
		b, err = shapelet.NewConvolvedMatrixBuilder(x, y, psf, cfg.Fit.Order, opts...)
	} else {
		b, err = shapelet.NewMatrixBuilder(x, y, cfg.Fit.Order, opts...)
	}
	if err != nil {
		return model{}, err
	}
	return model{builder: b, order: cfg.Fit.Order}, nil
}

// pixelGrid returns the centers of a size×size pixel grid centered on the
// origin, row-major.
func pixelGrid(size int, scale float64) (x, y []float64) {
	x = make([]float64, 0, size*size)
	y = make([]float64, 0, size*size)
	half := 0.5 * float64(size-1)
	for i := 0; i < size; i++ {
		for j := 0; j < size; j++ {
			x = append(x, (float64(j)-half)*scale)
			y = append(y, (float64(i)-half)*scale)
		}
	}
	return x, y
}

// solve returns the least-squares solution of design·c = data.
func solve(design *mat.Dense, data *mat.VecDense) ([]float64, error) {
	_, k := design.Dims()
	qr := new(mat.QR)
	qr.Factorize(design)
	c := mat.NewVecDense(k, nil)
	if err := qr.SolveVecTo(c, false, data); err != nil {
		return nil, fmt.Errorf("could not solve QR: %w", err)
	}
	return c.RawVector().Data, nil
}
