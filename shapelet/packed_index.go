// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// packed_index.go - packed basis indexing.
//
// Basis elements (nx, ny) with nx+ny ≤ order are stored by increasing total
// order n = nx+ny. Within order n the first element is (n, 0) and nx
// decreases while ny increases:
//
//	index: 0      1      2      3      4      5      6 ...
//	(x,y): (0,0)  (1,0)  (0,1)  (2,0)  (1,1)  (0,2)  (3,0) ...

package shapelet

import (
	"math"
)

// ComputeOffset returns the index of the first element of the given order.
func ComputeOffset(order int) int {
	return order * (order + 1) / 2
}

// ComputeSize returns the number of basis elements up to and including order,
// (order+1)(order+2)/2.
func ComputeSize(order int) int {
	return ComputeOffset(order + 1)
}

// ComputeIndex returns the packed column index of (nx, ny).
func ComputeIndex(nx, ny int) int {
	return ComputeOffset(nx+ny) + ny
}

// ComputeOrder inverts ComputeSize. It returns ErrShapeMismatch when size is
// not the size of any complete order.
func ComputeOrder(size int) (int, error) {
	if size <= 0 {
		return 0, wrapf(methodComputeOrder, ErrShapeMismatch, "size %d is not a packed basis size", size)
	}
	order := int(math.Round((math.Sqrt(float64(8*size+1)) - 3) / 2))
	if ComputeSize(order) != size {
		return 0, wrapf(methodComputeOrder, ErrShapeMismatch, "size %d is not a packed basis size", size)
	}

	return order, nil
}

// PackedIndex iterates basis elements in packed order. The zero value points
// at (0, 0) with index 0.
//
//	for p := (PackedIndex{}); p.Order() <= order; p.Next() { ... }
type PackedIndex struct {
	n, x, y, i int
}

// Next advances to the following basis element.
func (p *PackedIndex) Next() {
	p.i++
	if p.x == 0 {
		p.n++
		p.x = p.n
		p.y = 0
		return
	}
	p.x--
	p.y++
}

// Order returns nx+ny of the current element.
func (p PackedIndex) Order() int { return p.n }

// X returns the x-degree of the current element.
func (p PackedIndex) X() int { return p.x }

// Y returns the y-degree of the current element.
func (p PackedIndex) Y() int { return p.y }

// Index returns the packed column index of the current element.
func (p PackedIndex) Index() int { return p.i }
