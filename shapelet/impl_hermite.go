// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// impl_hermite.go - Gaussian and Gauss-Hermite evaluation kernels.
//
// Both helpers ADD into their target so that several sub-evaluations can be
// superposed in one buffer; callers zero the target first.
//
// Hermite tables are stored degree-major: degree j of an axis occupies
// table[j*n : (j+1)*n] for n points.

package shapelet

import (
	"math"
)

// gaussianHelper writes the order-0 column exp(-r²/2)·det/√π.
type gaussianHelper struct{}

// apply accumulates into column 0 of a row-major target with the given stride.
func (gaussianHelper) apply(eh *ellipseHelper, out []float64, stride int) {
	norm := eh.detFactor * gaussianNormalization
	for i, x := range eh.xt {
		y := eh.yt[i]
		out[i*stride] += math.Exp(-0.5*(x*x+y*y)) * norm
	}
}

// shapeletHelper evaluates the packed Gauss-Hermite basis up to maxOrder.
type shapeletHelper struct {
	maxOrder int
	n        int
	envelope []float64
	xTable   []float64
	yTable   []float64
}

func shapeletWorkspaceSize(dataSize, maxOrder int) int {
	return dataSize * (1 + 2*(maxOrder+1))
}

func newShapeletHelper(ws *workspace, dataSize, maxOrder int) shapeletHelper {
	return shapeletHelper{
		maxOrder: maxOrder,
		n:        dataSize,
		envelope: ws.vector(dataSize),
		xTable:   ws.vector(dataSize * (maxOrder + 1)),
		yTable:   ws.vector(dataSize * (maxOrder + 1)),
	}
}

// apply accumulates envelope·H_nx(xt)·H_ny(yt) into column ComputeIndex(nx, ny)
// of a row-major target for every nx+ny ≤ order. order must not exceed
// maxOrder.
func (h *shapeletHelper) apply(eh *ellipseHelper, out []float64, stride, order int) {
	for i, x := range eh.xt {
		y := eh.yt[i]
		h.envelope[i] = math.Exp(-0.5*(x*x+y*y)) * eh.detFactor
	}
	fillHermite1d(h.xTable, h.n, eh.xt, order)
	fillHermite1d(h.yTable, h.n, eh.yt, order)
	for p := (PackedIndex{}); p.Order() <= order; p.Next() {
		col := p.Index()
		hx := h.xTable[p.X()*h.n : (p.X()+1)*h.n]
		hy := h.yTable[p.Y()*h.n : (p.Y()+1)*h.n]
		for i, e := range h.envelope {
			out[i*stride+col] += e * hx[i] * hy[i]
		}
	}
}

// fillHermite1d fills degrees 0..order of the normalized Hermite table for
// coord:
//
//	H_0 = π^(-1/4)
//	H_1 = √2·t·H_0
//	H_j = √(2/j)·t·H_{j-1} - √((j-1)/j)·H_{j-2}
func fillHermite1d(table []float64, n int, coord []float64, order int) {
	h0 := table[:n]
	for i := range h0 {
		h0[i] = BasisNormalization
	}
	if order < 1 {
		return
	}
	h1 := table[n : 2*n]
	for i, t := range coord {
		h1[i] = math.Sqrt2 * t * h0[i]
	}
	for j := 2; j <= order; j++ {
		a := math.Sqrt(2 / float64(j))
		b := math.Sqrt(float64(j-1) / float64(j))
		cur := table[j*n : (j+1)*n]
		prev := table[(j-1)*n : j*n]
		prev2 := table[(j-2)*n : (j-1)*n]
		for i, t := range coord {
			cur[i] = a*t*prev[i] - b*prev2[i]
		}
	}
}
