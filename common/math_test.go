package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVcompareLex(t *testing.T) {
	assert.Equal(t, -1, VcompareLex(Vec3{0, 5, 5}, Vec3{1, 0, 0}))
	assert.Equal(t, 1, VcompareLex(Vec3{1, 2, 0}, Vec3{1, 1, 9}))
	assert.Equal(t, -1, VcompareLex(Vec3{1, 1, 1}, Vec3{1, 1, 2}))
	assert.Equal(t, 0, VcompareLex(Vec3{1, 1, 1}, Vec3{1, 1, 1}))

	nan := float32(math.NaN())
	assert.Equal(t, -1, VcompareLex(Vec3{nan, 0, 0}, Vec3{-1, 0, 0}))
	assert.Equal(t, 0, VcompareLex(Vec3{nan, 0, 0}, Vec3{nan, 0, 0}))
	assert.False(t, VexactEqual(Vec3{nan, 0, 0}, Vec3{nan, 0, 0}))
}

func TestVcross(t *testing.T) {
	assert.Equal(t, Vec3{-15, -2, 39}, Vcross(Vec3{3, -3, 1}, Vec3{4, 9, 2}))
	assert.Equal(t, Vec3{}, Vcross(Vec3{3, -3, 1}, Vec3{3, -3, 1}))
}

func TestVnormalize(t *testing.T) {
	assert.Equal(t, Vec3{0, 1, 0}, Vnormalize(Vec3{0, 4, 0}))
	assert.Equal(t, Vec3{}, Vnormalize(Vec3{}))
}

func TestFlatten(t *testing.T) {
	vs := []Vec3{{1, 2, 3}, {4, 5, 6}}
	flat := FlattenVec3(vs)
	assert.Equal(t, []float32{1, 2, 3, 4, 5, 6}, flat)
	assert.Equal(t, vs, UnflattenVec3(append(flat, 7)))
	assert.Equal(t, []int{0, 1, 2}, Identity(3))
}
