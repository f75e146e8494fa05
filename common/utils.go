package common

import "github.com/go-gl/mathgl/mgl32"

type Vec3 = mgl32.Vec3

type IT interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}
type IIndex interface {
	~int | ~int8 | ~int16 | ~int32 | ~uint | ~uint8 | ~uint16 | ~uint32
}

func GetVert3[T IT, T1 IIndex](verts []T, index T1) []T {
	return verts[index*3 : index*3+3]
}

// FlattenVec3 packs vectors into an interleaved x,y,z slice.
func FlattenVec3(vs []Vec3) []float32 {
	res := make([]float32, 3*len(vs))
	for i, v := range vs {
		copy(GetVert3(res, i), v[:])
	}
	return res
}

// UnflattenVec3 is the inverse of FlattenVec3. Trailing values that do not
// form a full vector are dropped.
func UnflattenVec3(verts []float32) []Vec3 {
	res := make([]Vec3, len(verts)/3)
	for i := range res {
		v := GetVert3(verts, i)
		res[i] = Vec3{v[0], v[1], v[2]}
	}
	return res
}

// Identity returns [0, 1, ..., n-1].
func Identity(n int) []int {
	res := make([]int, n)
	for i := range res {
		res[i] = i
	}
	return res
}
