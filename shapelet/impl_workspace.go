// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// impl_workspace.go - builder scratch arena.
//
// Every builder allocates one flat []float64 at construction and carves it
// into fixed views. Views never overlap and are reused on every Apply, so the
// steady state of an optimizer loop performs no allocation inside the
// builders themselves.

package shapelet

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas64"
)

// workspace hands out consecutive views of a single buffer.
type workspace struct {
	buf []float64
	off int
}

func newWorkspace(size int) *workspace {
	return &workspace{buf: make([]float64, size)}
}

// vector returns the next n elements. Panics if the arena was under-sized,
// which is a sizing bug in this package, never a user error.
func (w *workspace) vector(n int) []float64 {
	v := w.buf[w.off : w.off+n : w.off+n]
	w.off += n

	return v
}

// general returns the next rows×cols block as a row-major matrix.
func (w *workspace) general(rows, cols int) blas64.General {
	return blas64.General{Rows: rows, Cols: cols, Stride: cols, Data: w.vector(rows * cols)}
}

// window returns the leading rows×cols block of g, sharing storage.
func window(g blas64.General, rows, cols int) blas64.General {
	return blas64.General{Rows: rows, Cols: cols, Stride: g.Stride, Data: g.Data}
}

// zeroGeneral clears the visible elements of g.
func zeroGeneral(g blas64.General) {
	for i := 0; i < g.Rows; i++ {
		row := g.Data[i*g.Stride : i*g.Stride+g.Cols]
		for j := range row {
			row[j] = 0
		}
	}
}

// gemm computes dst = a·b + beta·dst.
func gemm(a, b blas64.General, beta float64, dst blas64.General) {
	blas64.Gemm(blas.NoTrans, blas.NoTrans, 1, a, b, beta, dst)
}
