// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// constants.go - normalization constants shared by kernels and function objects.

package shapelet

const (
	// BasisNormalization is π^(-1/4), the value of the zeroth normalized
	// Hermite function at the origin (without the Gaussian factor).
	BasisNormalization = 0.75112554446494248285870300477623

	// FluxFactor is 2√π, the integral of the order-0 basis function with unit
	// coefficient. A Gaussian of total flux F has coefficient F/FluxFactor.
	FluxFactor = 3.5449077018110320545963349666823

	// gaussianNormalization is 1/√π = BasisNormalization².
	gaussianNormalization = 0.56418958354775628694807945156077
)
