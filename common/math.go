package common

import (
	"cmp"
	"math"
)

// / Returns the square of the value.
func Sqr[T IT](a T) T {
	return a * a
}

func Sqrt(x float64) float64 {
	return math.Sqrt(x)
}

// / Performs a vector subtraction. (@p v1 - @p v2)
func Vsub(v1, v2 Vec3) Vec3 {
	return Vec3{v1[0] - v2[0], v1[1] - v2[1], v1[2] - v2[2]}
}

// / Derives the cross product of two vectors. (@p v1 x @p v2)
func Vcross(v1, v2 Vec3) Vec3 {
	return Vec3{
		v1[1]*v2[2] - v1[2]*v2[1],
		v1[2]*v2[0] - v1[0]*v2[2],
		v1[0]*v2[1] - v1[1]*v2[0],
	}
}

// / Normalizes the vector. A zero vector is returned unchanged.
func Vnormalize(v Vec3) Vec3 {
	d := Sqrt(float64(Sqr(v[0]) + Sqr(v[1]) + Sqr(v[2])))
	if d == 0 {
		return v
	}
	s := float32(1.0 / d)
	return Vec3{v[0] * s, v[1] * s, v[2] * s}
}

// VexactEqual compares two points component-wise with ==. No tolerance is
// applied, unlike the sloppy colocation checks used for rendering.
func VexactEqual(a, b Vec3) bool {
	return a[0] == b[0] && a[1] == b[1] && a[2] == b[2]
}

// VcompareLex orders points lexicographically on (x, y, z). NaN sorts before
// any number so the order stays total.
func VcompareLex(a, b Vec3) int {
	if c := cmp.Compare(a[0], b[0]); c != 0 {
		return c
	}
	if c := cmp.Compare(a[1], b[1]); c != 0 {
		return c
	}
	return cmp.Compare(a[2], b[2])
}
