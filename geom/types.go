// SPDX-License-Identifier: MIT
// Package: lvshape/geom
//
// types.go - points and 2×2 linear/affine transforms.

package geom

// Point is a position (or displacement) in the plane.
type Point struct {
	X, Y float64
}

// LinearTransform is a 2×2 matrix
//
//	| XX  XY |
//	| YX  YY |
//
// acting on column vectors.
type LinearTransform struct {
	XX, XY float64
	YX, YY float64
}

// IdentityLinear returns the 2×2 identity.
func IdentityLinear() LinearTransform {
	return LinearTransform{XX: 1, YY: 1}
}

// Determinant returns XX*YY - XY*YX.
func (l LinearTransform) Determinant() float64 {
	return l.XX*l.YY - l.XY*l.YX
}

// Apply returns l·p.
func (l LinearTransform) Apply(p Point) Point {
	return Point{
		X: l.XX*p.X + l.XY*p.Y,
		Y: l.YX*p.X + l.YY*p.Y,
	}
}

// Compose returns the transform equivalent to applying other first, then l.
func (l LinearTransform) Compose(other LinearTransform) LinearTransform {
	return LinearTransform{
		XX: l.XX*other.XX + l.XY*other.YX,
		XY: l.XX*other.XY + l.XY*other.YY,
		YX: l.YX*other.XX + l.YY*other.YX,
		YY: l.YX*other.XY + l.YY*other.YY,
	}
}

// Inverse returns l⁻¹, or ErrSingular when l has a zero (or non-finite)
// determinant.
func (l LinearTransform) Inverse() (LinearTransform, error) {
	det := l.Determinant()
	if det == 0 || !isFinite(det) {
		return LinearTransform{}, geomErrorf(ctxInverse, ErrSingular)
	}
	inv := 1 / det

	return LinearTransform{
		XX: l.YY * inv, XY: -l.XY * inv,
		YX: -l.YX * inv, YY: l.XX * inv,
	}, nil
}

// AffineTransform maps p to Linear·p + Translation.
type AffineTransform struct {
	Linear      LinearTransform
	Translation Point
}

// Apply maps a single point.
func (a AffineTransform) Apply(p Point) Point {
	q := a.Linear.Apply(p)
	return Point{X: q.X + a.Translation.X, Y: q.Y + a.Translation.Y}
}

// Determinant of the linear part; this is the Jacobian of the map.
func (a AffineTransform) Determinant() float64 {
	return a.Linear.Determinant()
}
