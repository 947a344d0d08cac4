// Package shapelet evaluates 2-D Gauss-Hermite ("shapelet") basis functions at
// a fixed set of sample points and assembles them into dense design matrices
// for linear least-squares fitting of basis coefficients to pixel data.
//
// The package offers the following key components:
//
//   - Basis bookkeeping:
//     – PackedIndex, ComputeSize, ComputeOffset, ComputeIndex, ComputeOrder:
//     the canonical (nx, ny) ↔ column ordering. Callers interpret matrix
//     columns positionally, so this ordering is part of the public contract.
//     – BasisNormalization, FluxFactor: normalization constants.
//   - Function objects:
//     – ShapeletFunction:      one elliptical Gauss-Hermite expansion.
//     – MultiShapeletFunction: a sum of ShapeletFunctions.
//     – MultiShapeletBasis:    several fixed sub-bases at different radii,
//     each projected into a shared aggregate basis by a constant matrix.
//   - Matrix builders (MatrixBuilder):
//     – NewMatrixBuilder:               plain Gaussian (order 0) or shapelet.
//     – NewConvolvedMatrixBuilder:      the same convolved with a PSF.
//     – NewMultiPsfMatrixBuilder:       PSF given as a one-element multi-function.
//     – NewBasisMatrixBuilder:          a MultiShapeletBasis.
//     – NewConvolvedBasisMatrixBuilder: a MultiShapeletBasis convolved with a PSF.
//   - Convolution: the injected collaborator producing the linear operator that
//     maps unconvolved coefficients onto the convolved basis.
//
// Lifecycle:
//
// A builder is constructed once per point set and basis configuration, then
// Apply(output, ellipse) is called many times as the ellipse varies, e.g. in
// an iterative fit. The builder owns a scratch arena sized at construction and
// reuses it on every call; Apply never retains output.
//
// Concurrency:
//
// Apply mutates the builder's arena, so a single builder MUST NOT be used
// from several goroutines at once. Distinct builders share nothing and may
// run fully in parallel.
//
// Errors are package-level sentinels (see errors.go) matched with errors.Is.
package shapelet
