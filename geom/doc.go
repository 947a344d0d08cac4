// Package geom provides the small amount of 2-D ellipse geometry consumed by
// the shapelet matrix builders.
//
// The package offers:
//
//   - Point, LinearTransform and AffineTransform value types.
//   - Quadrupole and Axes parameterizations of an ellipse core.
//   - Ellipse (core + center) with the three operations the builders rely on:
//     GridTransform, Convolve and Scale.
//
// All types are immutable values; every operation returns a new value and no
// method mutates its receiver. This makes an Ellipse safe to share across
// goroutines and across repeated calls inside an optimizer loop.
//
// Conventions:
//
//   - A Quadrupole holds the second moments (Ixx, Iyy, Ixy) and must be
//     positive definite.
//   - Axes holds semi-major a, semi-minor b and position angle theta (radians,
//     counter-clockwise from +x).
//   - GridTransform maps the ellipse onto the unit circle centered at the
//     origin: first translate by -center, then rotate by -theta, then scale by
//     (1/a, 1/b). Its determinant is 1/(a*b).
package geom
