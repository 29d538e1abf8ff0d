// Package channel implements the two-ray propagation and bit-error-rate
// model that converts reader/tag geometry and link budget into a
// per-transaction decode probability (spec.md §4.C/§4.D).
package channel

import "math"

// Vec3 is a position, direction, or velocity vector in the simulator's
// 3D coordinate space.
type Vec3 struct {
	X, Y, Z float64
}

func (v Vec3) Add(o Vec3) Vec3 { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3 { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }

func (v Vec3) Dot(o Vec3) float64 { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Norm() float64 { return math.Sqrt(v.Dot(v)) }

// Unit returns v scaled to length 1. The zero vector is returned
// unchanged.
func (v Vec3) Unit() Vec3 {
	n := v.Norm()
	if n == 0 {
		return v
	}
	return v.Scale(1 / n)
}

// MirrorX reflects v across the plane x=0, the wall-mounted ground
// plane spec.md §4.C uses for the second (reflected) ray.
func (v Vec3) MirrorX() Vec3 { return Vec3{-v.X, v.Y, v.Z} }

// toSin converts a cosine to the corresponding non-negative sine.
func toSin(cos float64) float64 {
	return math.Sqrt(1 - cos*cos)
}

// toPowerDB converts a squared field magnitude |value|^2 into a power
// level in dB: 10*log10(magSquared), or -Inf below tol.
func toPowerDB(magSquared float64, tol float64) float64 {
	if magSquared < tol {
		return math.Inf(-1)
	}
	return 10 * math.Log10(magSquared)
}

// fromLogLinear converts a dB quantity back to a linear ratio.
func fromLogLinear(db float64) float64 {
	return math.Pow(10, db/10)
}
