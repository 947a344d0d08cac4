// SPDX-License-Identifier: MIT
// Package: lvshape/shapelet
//
// impl_ellipse_helper.go - maps sample points into the dimensionless frame of an ellipse.

package shapelet

import (
	"github.com/katalvlaran/lvshape/geom"
	"gonum.org/v1/gonum/floats"
)

// ellipseHelper maps sample points into the dimensionless frame of an
// ellipse. xt and yt are valid only after the first readEllipse and always
// reflect the latest readEllipse followed by any scale calls.
type ellipseHelper struct {
	detFactor float64
	xt, yt    []float64
}

func ellipseWorkspaceSize(dataSize int) int {
	return 2 * dataSize
}

func newEllipseHelper(ws *workspace, dataSize int) ellipseHelper {
	return ellipseHelper{
		detFactor: 1,
		xt:        ws.vector(dataSize),
		yt:        ws.vector(dataSize),
	}
}

// readEllipse applies the ellipse grid transform to every (x[i], y[i]) and
// records the Jacobian of the transform.
func (h *ellipseHelper) readEllipse(x, y []float64, ellipse geom.Ellipse) {
	gt := ellipse.GridTransform()
	l, t := gt.Linear, gt.Translation
	for i := range x {
		h.xt[i] = l.XX*x[i] + l.XY*y[i] + t.X
		h.yt[i] = l.YX*x[i] + l.YY*y[i] + t.Y
	}
	h.detFactor = l.Determinant()
}

// scale moves the frame to an ellipse factor times larger: coordinates are
// divided by factor and the Jacobian by factor². This is not a
// coordinates-only rescale; keeping detFactor in step is what makes a scaled
// component equal to a ShapeletFunction on ellipse.Scale(factor).
func (h *ellipseHelper) scale(factor float64) {
	inv := 1 / factor
	floats.Scale(inv, h.xt)
	floats.Scale(inv, h.yt)
	h.detFactor *= inv * inv
}
